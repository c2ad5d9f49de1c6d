package models

import "github.com/shopspring/decimal"

// User is an account as stored. PasswordHash never leaves the server.
type User struct {
	ID           int64  `db:"id"`
	Name         string `db:"name"`
	Email        string `db:"email"`
	PasswordHash string `db:"password"`
	Phone        string `db:"phone"`
}

// Public strips the credential from a user record.
func (u User) Public() PublicUser {
	return PublicUser{
		ID:    u.ID,
		Name:  u.Name,
		Email: u.Email,
		Phone: u.Phone,
	}
}

// PublicUser is what login and register hand back to the client.
type PublicUser struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// Event represents something users can book tickets for.
type Event struct {
	ID          int64           `db:"id"`
	Name        string          `db:"name"`
	Date        Date            `db:"date"`
	Location    string          `db:"location"`
	Cost        decimal.Decimal `db:"cost"`
	Category    string          `db:"category"`
	Image       string          `db:"image"`
	Description string          `db:"description"`
}

// View projects an event into its catalog representation.
func (e Event) View() EventView {
	return EventView{
		ID:          e.ID,
		Name:        e.Name,
		Date:        e.Date,
		Location:    e.Location,
		Cost:        e.Cost.InexactFloat64(),
		Category:    e.Category,
		Image:       e.Image,
		Description: e.Description,
	}
}

// EventView is the catalog record sent over the wire; cost is a plain number.
type EventView struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Date        Date    `json:"date"`
	Location    string  `json:"location"`
	Cost        float64 `json:"cost"`
	Category    string  `json:"category"`
	Image       string  `json:"image"`
	Description string  `json:"description"`
}

// EventFilter narrows the catalog. Zero fields are ignored.
type EventFilter struct {
	Search   string
	Category string
	Date     string
}

// Registration represents a user's booking for an event. created_at is
// filled in by the database.
type Registration struct {
	ID      int64  `db:"id"`
	UserID  int64  `db:"user_id"`
	EventID int64  `db:"event_id"`
	Tickets int    `db:"tickets"`
	Notes   string `db:"notes"`
}

// RegistrationRequest is the booking payload.
type RegistrationRequest struct {
	UserID  int64  `json:"user_id"`
	EventID int64  `json:"event_id"`
	Tickets int    `json:"tickets"`
	Notes   string `json:"notes"`
}

// Confirmation is returned after a successful booking.
type Confirmation struct {
	RegistrationID int64  `json:"registration_id"`
	EventName      string `json:"event_name"`
	Tickets        int    `json:"tickets"`
	TotalCost      string `json:"total_cost"`
	Notes          string `json:"notes"`
}

// Envelope wraps every API response.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}
