package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventx/models"
)

func envelopeServer(t *testing.T, status int, body string, check func(r *http.Request)) *Client {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if check != nil {
			check(r)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	return New(srv.URL+"/", 2*time.Second)
}

func TestListEvents_EncodesFilter(t *testing.T) {
	c := envelopeServer(t, http.StatusOK,
		`{"success":true,"message":"Events fetched successfully.","data":[{"id":1,"name":"Cairo Jazz Night","date":"2025-12-01","cost":350}]}`,
		func(r *http.Request) {
			assert.Equal(t, "/api/events", r.URL.Path)
			assert.Equal(t, "jazz night", r.URL.Query().Get("search"))
			assert.Equal(t, "music", r.URL.Query().Get("category"))
			assert.False(t, r.URL.Query().Has("date"))
		})

	events, err := c.ListEvents(context.Background(), models.EventFilter{Search: "jazz night", Category: "music"})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "Cairo Jazz Night", events[0].Name)
	assert.Equal(t, "2025-12-01", events[0].Date.String())
	assert.Equal(t, 350.0, events[0].Cost)
}

func TestRegisterForEvent_SendsJSON(t *testing.T) {
	c := envelopeServer(t, http.StatusCreated,
		`{"success":true,"message":"Registration successful!","data":{"registration_id":9,"event_name":"Nile Food Festival","tickets":2,"total_cost":"300.00","notes":""}}`,
		func(r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

			var body map[string]any
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, 4.0, body["user_id"])
			assert.Equal(t, 3.0, body["event_id"])
			assert.Equal(t, 2.0, body["tickets"])
		})

	conf, err := c.RegisterForEvent(context.Background(), models.RegistrationRequest{UserID: 4, EventID: 3, Tickets: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(9), conf.RegistrationID)
	assert.Equal(t, "300.00", conf.TotalCost)
}

func TestFailureEnvelopeBecomesAPIError(t *testing.T) {
	c := envelopeServer(t, http.StatusUnauthorized,
		`{"success":false,"message":"Invalid email or password.","data":null}`, nil)

	_, err := c.Login(context.Background(), "a@b.co", "nope")

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, "Invalid email or password.", apiErr.Message)
}

func TestNonJSONResponse(t *testing.T) {
	c := envelopeServer(t, http.StatusBadGateway, `<html>bad gateway</html>`, nil)

	_, err := c.ListEvents(context.Background(), models.EventFilter{})
	assert.ErrorContains(t, err, "invalid response from server")
}
