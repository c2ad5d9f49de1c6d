package db

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"eventx/config"
	"eventx/models"
)

// unicodeLower is registered on SQLite because its LOWER and LIKE fold ASCII
// only.
const unicodeLower = "eventx_lower"

func init() {
	// modernc registers itself as "sqlite", which sqlx does not know about.
	sqlx.BindDriver("sqlite", sqlx.QUESTION)

	sqlite.MustRegisterDeterministicScalarFunction(unicodeLower, 1,
		func(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
			switch v := args[0].(type) {
			case string:
				return strings.ToLower(v), nil
			case []byte:
				return strings.ToLower(string(v)), nil
			default:
				return v, nil
			}
		})
}

var (
	ErrNotFound   = errors.New("record not found")
	ErrEmailTaken = errors.New("email already registered")
)

// DB represents our database layer
type DB struct {
	*sqlx.DB
	timeout time.Duration
}

// NewDB opens and pings the configured database.
func NewDB(cfg config.DatabaseConfig) (*DB, error) {
	db, err := sqlx.Open(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite wants a single writer to avoid "database is locked" errors.
	maxOpen := cfg.MaxOpenConns
	if cfg.Driver == "sqlite" {
		maxOpen = 1
	}
	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{DB: db, timeout: cfg.QueryTimeout}, nil
}

// Wrap adopts an already open connection, e.g. a sqlmock in tests.
func Wrap(conn *sql.DB, driverName string, timeout time.Duration) *DB {
	return &DB{DB: sqlx.NewDb(conn, driverName), timeout: timeout}
}

// Health pings the database within the query timeout.
func (db *DB) Health(ctx context.Context) error {
	ctx, cancel := db.withTimeout(ctx)
	defer cancel()
	return db.PingContext(ctx)
}

func (db *DB) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if db.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, db.timeout)
}

// UserExists reports whether a user with the given id is present.
func (db *DB) UserExists(ctx context.Context, id int64) (bool, error) {
	ctx, cancel := db.withTimeout(ctx)
	defer cancel()

	var found int64
	err := db.QueryRowxContext(ctx, db.Rebind(`SELECT id FROM users WHERE id = ?`), id).Scan(&found)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to look up user %d: %w", id, err)
	}
	return true, nil
}

// EmailExists reports whether the email is already taken.
func (db *DB) EmailExists(ctx context.Context, email string) (bool, error) {
	ctx, cancel := db.withTimeout(ctx)
	defer cancel()

	var found int64
	err := db.QueryRowxContext(ctx, db.Rebind(`SELECT id FROM users WHERE email = ?`), email).Scan(&found)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to look up email: %w", err)
	}
	return true, nil
}

// FindUserByEmail returns ErrNotFound when no account uses the email.
func (db *DB) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	ctx, cancel := db.withTimeout(ctx)
	defer cancel()

	var u models.User
	err := db.GetContext(ctx, &u, db.Rebind(`SELECT id, name, email, password, phone FROM users WHERE email = ?`), email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return &u, nil
}

// CreateUser inserts the user and sets its ID. A concurrent insert of the same
// email surfaces as ErrEmailTaken.
func (db *DB) CreateUser(ctx context.Context, u *models.User) error {
	ctx, cancel := db.withTimeout(ctx)
	defer cancel()

	id, err := insertID(ctx, db.DB,
		`INSERT INTO users (name, email, password, phone) VALUES (?, ?, ?, ?)`,
		u.Name, u.Email, u.PasswordHash, u.Phone)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrEmailTaken
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}
	u.ID = id
	return nil
}

const eventColumns = `id, name, date, location, cost, category, image, description`

// FindEvent returns ErrNotFound for an unknown id.
func (db *DB) FindEvent(ctx context.Context, id int64) (*models.Event, error) {
	ctx, cancel := db.withTimeout(ctx)
	defer cancel()

	var e models.Event
	err := db.GetContext(ctx, &e, db.Rebind(`SELECT `+eventColumns+` FROM events WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find event %d: %w", id, err)
	}
	return &e, nil
}

// ListEvents returns the events matching every non-empty filter field,
// earliest first.
func (db *DB) ListEvents(ctx context.Context, f models.EventFilter) ([]models.Event, error) {
	ctx, cancel := db.withTimeout(ctx)
	defer cancel()

	query := `SELECT ` + eventColumns + ` FROM events WHERE 1=1`
	var args []any

	if f.Search != "" {
		lower := db.lowerFunc()
		query += ` AND (` + lower + `(name) LIKE ? ESCAPE '!' OR ` + lower + `(location) LIKE ? ESCAPE '!')`
		pattern := "%" + escapeLike(strings.ToLower(f.Search)) + "%"
		args = append(args, pattern, pattern)
	}
	if f.Category != "" {
		query += ` AND category = ?`
		args = append(args, f.Category)
	}
	if f.Date != "" {
		query += ` AND date = ?`
		args = append(args, f.Date)
	}
	query += ` ORDER BY date ASC, id ASC`

	events := []models.Event{}
	if err := db.SelectContext(ctx, &events, db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	return events, nil
}

// lowerFunc names the SQL function that lowercases text the same way
// strings.ToLower does. Postgres and MySQL LOWER are Unicode-aware.
func (db *DB) lowerFunc() string {
	if db.DriverName() == "sqlite" {
		return unicodeLower
	}
	return "LOWER"
}

func escapeLike(s string) string {
	return strings.NewReplacer("!", "!!", "%", "!%", "_", "!_").Replace(s)
}

// CreateRegistration inserts a booking and sets its ID. The same user may book
// the same event any number of times.
func (db *DB) CreateRegistration(ctx context.Context, r *models.Registration) error {
	ctx, cancel := db.withTimeout(ctx)
	defer cancel()

	id, err := insertID(ctx, db.DB,
		`INSERT INTO registrations (user_id, event_id, tickets, notes) VALUES (?, ?, ?, ?)`,
		r.UserID, r.EventID, r.Tickets, r.Notes)
	if err != nil {
		return fmt.Errorf("failed to insert registration: %w", err)
	}
	r.ID = id
	return nil
}

// insertID runs an INSERT and returns the new row id. PostgreSQL has no
// LastInsertId, so the id comes back through RETURNING there.
func insertID(ctx context.Context, ext sqlx.ExtContext, query string, args ...any) (int64, error) {
	if ext.DriverName() == "postgres" {
		var id int64
		err := ext.QueryRowxContext(ctx, ext.Rebind(query+` RETURNING id`), args...).Scan(&id)
		return id, err
	}

	res, err := ext.ExecContext(ctx, ext.Rebind(query), args...)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == 1062
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		code := liteErr.Code()
		return code == sqlite3.SQLITE_CONSTRAINT_UNIQUE ||
			(code&0xff == sqlite3.SQLITE_CONSTRAINT && strings.Contains(liteErr.Error(), "UNIQUE"))
	}
	return false
}
