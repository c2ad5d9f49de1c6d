package handlers

import (
	"net/http"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"eventx/models"
)

// ListEvents handles GET /api/events?search=&category=&date=
func (h *Handlers) ListEvents(r *http.Request) (Result, error) {
	q := r.URL.Query()
	filter := models.EventFilter{
		Search:   strings.TrimSpace(q.Get("search")),
		Category: strings.TrimSpace(q.Get("category")),
		Date:     strings.TrimSpace(q.Get("date")),
	}

	if err := validation.Validate(filter.Date, validation.Date(models.DateLayout)); err != nil {
		return Result{}, fail(http.StatusBadRequest, "Invalid date filter. Use YYYY-MM-DD.")
	}

	events, err := h.Store.ListEvents(r.Context(), filter)
	if err != nil {
		return Result{}, failWith(http.StatusInternalServerError, "Failed to fetch events.", err)
	}

	views := make([]models.EventView, 0, len(events))
	for _, e := range events {
		views = append(views, e.View())
	}

	return Result{Message: "Events fetched successfully.", Data: views}, nil
}
