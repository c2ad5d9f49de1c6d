package client

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"eventx/models"
	"eventx/rules"
)

type Field string

const (
	FieldName    Field = "name"
	FieldEmail   Field = "email"
	FieldPhone   Field = "phone"
	FieldEvent   Field = "event"
	FieldTickets Field = "tickets"
	FieldNotes   Field = "notes"
)

// RequiredFields in display order. Notes is optional.
var RequiredFields = []Field{FieldName, FieldEmail, FieldPhone, FieldEvent, FieldTickets}

var (
	ErrSubmitInFlight = errors.New("a booking is already being submitted")
	ErrLoginRequired  = errors.New("please login or register first to complete your booking")
	ErrInvalidForm    = errors.New("please fill all required fields correctly")
	ErrReadOnly       = errors.New("field is read-only")
	ErrUnknownField   = errors.New("unknown field")
)

// Booker sends a booking. *Client implements it.
type Booker interface {
	RegisterForEvent(ctx context.Context, req models.RegistrationRequest) (*models.Confirmation, error)
}

// Catalog lists events. *Client implements it.
type Catalog interface {
	ListEvents(ctx context.Context, f models.EventFilter) ([]models.EventView, error)
}

func positiveInt(message string) validation.Rule {
	return validation.By(func(value any) error {
		s, _ := value.(string)
		if s == "" {
			return nil
		}
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil || n < 1 {
			return errors.New(message)
		}
		return nil
	})
}

var fieldRules = map[Field][]validation.Rule{
	FieldName: {
		validation.Required.Error("Name is required"),
		validation.Length(2, 0).Error("Name must be at least 2 characters"),
	},
	FieldEmail: {
		validation.Required.Error("Email is required"),
		rules.EmailShape.Error("Please enter a valid email address"),
	},
	FieldPhone: {
		validation.Required.Error("Phone number is required"),
		rules.EgyptianPhone.Error("Please enter a valid Egyptian phone number (01XXXXXXXXX)"),
	},
	FieldEvent: {
		validation.Required.Error("Please select an event"),
		positiveInt("Please select an event"),
	},
	FieldTickets: {
		validation.Required.Error("Please enter a valid number of tickets"),
		positiveInt("Please enter a valid number of tickets"),
	},
	FieldNotes: nil,
}

// BookingForm is the state behind the booking page: field values, per-field
// errors, and a guard so that only one submission is in flight at a time.
type BookingForm struct {
	booker  Booker
	session *Session

	mu       sync.Mutex
	values   map[Field]string
	errs     map[Field]string
	readOnly map[Field]bool

	submitting atomic.Bool
}

// NewBookingForm pre-fills and locks the contact fields when someone is
// signed in.
func NewBookingForm(b Booker, s *Session) *BookingForm {
	f := &BookingForm{
		booker:   b,
		session:  s,
		values:   map[Field]string{},
		errs:     map[Field]string{},
		readOnly: map[Field]bool{},
	}
	if u := s.User(); u != nil {
		f.values[FieldName] = u.Name
		f.values[FieldEmail] = u.Email
		f.values[FieldPhone] = u.Phone
		f.readOnly[FieldName] = true
		f.readOnly[FieldEmail] = true
		f.readOnly[FieldPhone] = true
	}
	return f
}

// Set stores a value as typed and clears that field's error.
func (f *BookingForm) Set(field Field, value string) error {
	if _, ok := fieldRules[field]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownField, field)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.readOnly[field] {
		return fmt.Errorf("%s: %w", field, ErrReadOnly)
	}
	f.values[field] = value
	delete(f.errs, field)
	return nil
}

func (f *BookingForm) Value(field Field) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.values[field]
}

func (f *BookingForm) ReadOnly(field Field) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.readOnly[field]
}

// Preselect chooses an event, e.g. from an ?event= link.
func (f *BookingForm) Preselect(eventID int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.values[FieldEvent] = strconv.FormatInt(eventID, 10)
	delete(f.errs, FieldEvent)
}

// Blur validates a single field, recording or clearing its error.
func (f *BookingForm) Blur(field Field) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.check(field)
}

// Validate checks every required field and records all failures.
func (f *BookingForm) Validate() bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	ok := true
	for _, field := range RequiredFields {
		if !f.check(field) {
			ok = false
		}
	}
	return ok
}

func (f *BookingForm) check(field Field) bool {
	value := strings.TrimSpace(f.values[field])
	if err := validation.Validate(value, fieldRules[field]...); err != nil {
		f.errs[field] = err.Error()
		return false
	}
	delete(f.errs, field)
	return true
}

// Errors returns the outstanding field errors.
func (f *BookingForm) Errors() map[Field]string {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make(map[Field]string, len(f.errs))
	for k, v := range f.errs {
		out[k] = v
	}
	return out
}

// Submitting reports whether a submission is in flight.
func (f *BookingForm) Submitting() bool {
	return f.submitting.Load()
}

// Submit validates the form and sends the booking for the signed-in user.
// A call made while another is in flight returns ErrSubmitInFlight without
// touching the network. A signed-in identity without an id is cleared.
func (f *BookingForm) Submit(ctx context.Context) (*models.Confirmation, error) {
	if !f.submitting.CompareAndSwap(false, true) {
		return nil, ErrSubmitInFlight
	}
	defer f.submitting.Store(false)

	if !f.Validate() {
		return nil, ErrInvalidForm
	}

	user := f.session.User()
	if user == nil {
		return nil, ErrLoginRequired
	}
	if user.ID == 0 {
		if err := f.session.SignOut(); err != nil {
			slog.Warn("failed to clear invalid session", "error", err)
		}
		return nil, ErrLoginRequired
	}

	f.mu.Lock()
	eventID, _ := strconv.ParseInt(strings.TrimSpace(f.values[FieldEvent]), 10, 64)
	tickets, _ := strconv.Atoi(strings.TrimSpace(f.values[FieldTickets]))
	notes := strings.TrimSpace(f.values[FieldNotes])
	f.mu.Unlock()

	req := models.RegistrationRequest{
		UserID:  user.ID,
		EventID: eventID,
		Tickets: tickets,
		Notes:   notes,
	}

	// Once sent, a booking runs to completion even if ctx is cancelled.
	return f.booker.RegisterForEvent(context.WithoutCancel(ctx), req)
}

// Option is one entry of the event selector.
type Option struct {
	Value string
	Label string
}

// EventOptions builds the selector entries, labelled "Name - cost EGP".
func EventOptions(ctx context.Context, c Catalog) ([]Option, error) {
	events, err := c.ListEvents(ctx, models.EventFilter{})
	if err != nil {
		return nil, err
	}

	opts := make([]Option, 0, len(events))
	for _, e := range events {
		opts = append(opts, Option{
			Value: strconv.FormatInt(e.ID, 10),
			Label: fmt.Sprintf("%s - %s EGP", e.Name, strconv.FormatFloat(e.Cost, 'f', -1, 64)),
		})
	}
	return opts, nil
}
