package db

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventx/models"
)

func newMockDB(t *testing.T, driverName string, monitorPings bool) (*DB, sqlmock.Sqlmock) {
	t.Helper()

	conn, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(monitorPings))
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	return Wrap(conn, driverName, time.Second), mock
}

func TestUserExists_QueryError(t *testing.T) {
	db, mock := newMockDB(t, "sqlmock", false)

	mock.ExpectQuery(`SELECT id FROM users WHERE id = \?`).
		WithArgs(int64(3)).
		WillReturnError(errors.New("connection reset"))

	_, err := db.UserExists(context.Background(), 3)
	assert.ErrorContains(t, err, "connection reset")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserExists_NoRows(t *testing.T) {
	db, mock := newMockDB(t, "sqlmock", false)

	mock.ExpectQuery(`SELECT id FROM users WHERE id = \?`).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	ok, err := db.UserExists(context.Background(), 3)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateRegistration_PostgresUsesReturning(t *testing.T) {
	db, mock := newMockDB(t, "postgres", false)

	mock.ExpectQuery(`INSERT INTO registrations \(user_id, event_id, tickets, notes\) VALUES \(\$1, \$2, \$3, \$4\) RETURNING id`).
		WithArgs(int64(1), int64(2), int64(3), "front row").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(99)))

	r := &models.Registration{UserID: 1, EventID: 2, Tickets: 3, Notes: "front row"}
	require.NoError(t, db.CreateRegistration(context.Background(), r))
	assert.Equal(t, int64(99), r.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateRegistration_ExecError(t *testing.T) {
	db, mock := newMockDB(t, "mysql", false)

	mock.ExpectExec(`INSERT INTO registrations`).
		WillReturnError(&mysql.MySQLError{Number: 1452, Message: "Cannot add or update a child row"})

	err := db.CreateRegistration(context.Background(), &models.Registration{UserID: 1, EventID: 2, Tickets: 1})
	assert.ErrorContains(t, err, "failed to insert registration")
	assert.ErrorContains(t, err, "child row")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateUser_UniqueViolationPostgres(t *testing.T) {
	db, mock := newMockDB(t, "postgres", false)

	mock.ExpectQuery(`INSERT INTO users .* RETURNING id`).
		WillReturnError(&pq.Error{Code: "23505", Message: "duplicate key value violates unique constraint"})

	err := db.CreateUser(context.Background(), &models.User{Email: "a@b.co"})
	assert.ErrorIs(t, err, ErrEmailTaken)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListEvents_QueryError(t *testing.T) {
	db, mock := newMockDB(t, "sqlmock", false)

	mock.ExpectQuery(`SELECT .* FROM events WHERE 1=1 AND category = \? ORDER BY date ASC, id ASC`).
		WithArgs("music").
		WillReturnError(errors.New("no such table: events"))

	_, err := db.ListEvents(context.Background(), models.EventFilter{Category: "music"})
	assert.ErrorContains(t, err, "failed to list events")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHealth_PingFailure(t *testing.T) {
	db, mock := newMockDB(t, "sqlmock", true)

	mock.ExpectPing().WillReturnError(errors.New("server gone"))

	assert.Error(t, db.Health(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, isUniqueViolation(&pq.Error{Code: "23505"}))
	assert.False(t, isUniqueViolation(&pq.Error{Code: "23503"}))
	assert.True(t, isUniqueViolation(fmt.Errorf("wrapped: %w", &mysql.MySQLError{Number: 1062})))
	assert.False(t, isUniqueViolation(&mysql.MySQLError{Number: 1452}))
	assert.False(t, isUniqueViolation(errors.New("UNIQUE constraint failed")))
}

func TestInitSchema_UnknownDriver(t *testing.T) {
	db, _ := newMockDB(t, "sqlmock", false)
	assert.ErrorContains(t, db.InitSchema(context.Background()), "no schema")
}
