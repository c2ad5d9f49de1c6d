package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventx/budget"
	"eventx/client"
	"eventx/config"
	"eventx/db"
	"eventx/models"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, parseLevel("warning"))
	assert.Equal(t, slog.LevelError, parseLevel("error"))
	assert.Equal(t, slog.LevelInfo, parseLevel("whatever"))
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer

	newLogger(config.LogConfig{Level: "info", Format: "auto"}, &buf).Info("hello", "k", 1)
	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "hello", line["msg"])

	buf.Reset()
	newLogger(config.LogConfig{Level: "warn", Format: "text"}, &buf).Info("dropped")
	assert.Empty(t, buf.String())

	newLogger(config.LogConfig{Level: "debug", Format: "text"}, &buf).Debug("kept")
	assert.Contains(t, buf.String(), "msg=kept")
}

func TestPrintEstimate(t *testing.T) {
	est, err := budget.Calculate(100, []string{"catering", "venue"})
	require.NoError(t, err)

	var buf bytes.Buffer
	printEstimate(&buf, est)
	out := buf.String()
	assert.Contains(t, out, "Catering")
	assert.Contains(t, out, "30000 EGP")
	assert.Contains(t, out, "Venue Rental")
	assert.Contains(t, out, "Total: 40000 EGP")
}

func TestPrintEvents(t *testing.T) {
	var buf bytes.Buffer
	printEvents(&buf, nil)
	assert.Equal(t, "No events found.\n", buf.String())

	buf.Reset()
	printEvents(&buf, []models.EventView{
		{ID: 1, Name: "Cairo Jazz Night", Date: models.MustDate("2025-12-01"), Location: "Cairo Opera House", Cost: 350, Category: "music"},
	})
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "ID"))
	assert.Contains(t, lines[1], "Cairo Jazz Night")
	assert.Contains(t, lines[1], "2025-12-01")
	assert.Contains(t, lines[1], "350.00")
}

func TestRunBook_InvalidFormListsErrors(t *testing.T) {
	session, err := client.LoadSession(client.NewFileStore(filepath.Join(t.TempDir(), "s.json")))
	require.NoError(t, err)

	bookEvent, bookTickets, bookNotes = 0, "0", ""
	t.Cleanup(func() { bookEvent, bookTickets = 0, "1" })

	var buf bytes.Buffer
	err = runBook(context.Background(), &buf, client.NewBookingForm(client.New("http://127.0.0.1:1", 0), session))
	assert.ErrorIs(t, err, client.ErrInvalidForm)
	assert.Contains(t, buf.String(), "name: Name is required")
	assert.Contains(t, buf.String(), "event: Please select an event")
	assert.Contains(t, buf.String(), "tickets: Please enter a valid number of tickets")
}

func TestBudgetCommand(t *testing.T) {
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetArgs([]string{"budget", "--guests", "10", "--services", "catering,photography"})
	t.Cleanup(func() { rootCmd.SetOut(nil); rootCmd.SetArgs(nil) })

	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, buf.String(), "Total: 8000 EGP")
}

func TestMigrateCommandSeeds(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cli.db")
	dsn := fmt.Sprintf("file:%s?_pragma=foreign_keys(1)", path)

	rootCmd.SetArgs([]string{"migrate", "--seed", "--dsn", dsn})
	t.Cleanup(func() { rootCmd.SetArgs(nil) })
	require.NoError(t, rootCmd.Execute())

	dc := config.Default().Database
	dc.DSN = dsn
	store, err := db.NewDB(dc)
	require.NoError(t, err)
	defer store.Close()

	var n int
	require.NoError(t, store.Get(&n, `SELECT COUNT(*) FROM events`))
	assert.Equal(t, 6, n)
}

func TestUnderscoreFlags(t *testing.T) {
	assert.Equal(t, "log-level", string(underscoreFlags(nil, "log_level")))
	assert.Equal(t, "dsn", string(underscoreFlags(nil, "dsn")))
}
