package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/dustin/go-humanize"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/shopspring/decimal"

	"eventx/db"
	"eventx/models"
	"eventx/rules"
)

// bookingPayload uses pointers so a missing field and an explicit zero can
// be told apart.
type bookingPayload struct {
	UserID  *int64 `json:"user_id"`
	EventID *int64 `json:"event_id"`
	Tickets *int   `json:"tickets"`
	Notes   string `json:"notes"`
}

var atLeastOneTicket = validation.By(func(value any) error {
	n, ok := value.(*int)
	if ok && n != nil && *n < 1 {
		return errors.New("Number of tickets must be at least 1.")
	}
	return nil
})

type check struct {
	value any
	rules []validation.Rule
}

// validate returns the first failure in order.
func (p *bookingPayload) validate() error {
	checks := []check{
		{p.UserID, []validation.Rule{validation.Required.Error("User ID is required.")}},
		{p.EventID, []validation.Rule{validation.Required.Error("Event ID is required.")}},
		{p.Tickets, []validation.Rule{validation.NotNil.Error("Number of tickets is required."), atLeastOneTicket}},
		{p.UserID, []validation.Rule{validation.Min(int64(1)).Error("Invalid User ID.")}},
		{p.EventID, []validation.Rule{validation.Min(int64(1)).Error("Invalid Event ID.")}},
	}
	for _, c := range checks {
		if err := validation.Validate(c.value, c.rules...); err != nil {
			return err
		}
	}
	return nil
}

// TotalCost is cost × tickets rounded to two places.
func TotalCost(cost decimal.Decimal, tickets int) decimal.Decimal {
	return cost.Mul(decimal.NewFromInt(int64(tickets))).Round(2)
}

// FormatMoney renders an amount with thousands grouping and two decimals,
// e.g. 1500 → "1,500.00".
func FormatMoney(d decimal.Decimal) string {
	d = d.Round(2)
	whole := d.Truncate(0)
	frac := d.Sub(whole).Abs().StringFixed(2) // "0.xx"
	return humanize.BigComma(whole.BigInt()) + frac[1:]
}

// RegisterForEvent handles POST /api/registrations
func (h *Handlers) RegisterForEvent(r *http.Request) (Result, error) {
	var p bookingPayload
	if err := decodeJSON(r, &p); err != nil {
		return Result{}, fail(http.StatusBadRequest, "Invalid JSON data: "+err.Error())
	}

	if err := p.validate(); err != nil {
		return Result{}, fail(http.StatusBadRequest, err.Error())
	}

	ctx := r.Context()

	ok, err := h.Store.UserExists(ctx, *p.UserID)
	if err != nil {
		return Result{}, failWith(http.StatusInternalServerError, "Registration failed. Please try again.", err)
	}
	if !ok {
		return Result{}, fail(http.StatusNotFound, "User not found. Please login again.")
	}

	event, err := h.Store.FindEvent(ctx, *p.EventID)
	if errors.Is(err, db.ErrNotFound) {
		return Result{}, fail(http.StatusNotFound, "Event not found. Please select a valid event.")
	}
	if err != nil {
		return Result{}, failWith(http.StatusInternalServerError, "Registration failed. Please try again.", err)
	}

	reg := &models.Registration{
		UserID:  *p.UserID,
		EventID: event.ID,
		Tickets: *p.Tickets,
		Notes:   rules.Sanitize(p.Notes),
	}
	if err := h.Store.CreateRegistration(ctx, reg); err != nil {
		return Result{}, failWith(http.StatusInternalServerError,
			"Registration failed. Please try again. Error: "+err.Error(), err)
	}

	h.Metrics.RegistrationCreated(reg.Tickets)
	slog.Info("registration created",
		"registration_id", reg.ID,
		"user_id", reg.UserID,
		"event_id", reg.EventID,
		"tickets", reg.Tickets,
	)

	return Result{
		Status:  http.StatusCreated,
		Message: "Registration successful!",
		Data: models.Confirmation{
			RegistrationID: reg.ID,
			EventName:      event.Name,
			Tickets:        reg.Tickets,
			TotalCost:      FormatMoney(TotalCost(event.Cost, reg.Tickets)),
			Notes:          reg.Notes,
		},
	}, nil
}
