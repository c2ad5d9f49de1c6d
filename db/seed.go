package db

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"eventx/models"
)

//go:embed seed.yaml
var seedYAML []byte

type seedEvent struct {
	Name        string `yaml:"name"`
	Date        string `yaml:"date"`
	Location    string `yaml:"location"`
	Cost        string `yaml:"cost"`
	Category    string `yaml:"category"`
	Image       string `yaml:"image"`
	Description string `yaml:"description"`
}

// SeedEvents decodes the bundled event catalogue.
func SeedEvents() ([]models.Event, error) {
	return parseSeed(seedYAML)
}

func parseSeed(raw []byte) ([]models.Event, error) {
	var entries []seedEvent
	if err := yaml.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode seed events: %w", err)
	}

	events := make([]models.Event, 0, len(entries))
	for _, s := range entries {
		date, err := models.ParseDate(s.Date)
		if err != nil {
			return nil, fmt.Errorf("seed event %q: %w", s.Name, err)
		}
		cost, err := decimal.NewFromString(s.Cost)
		if err != nil {
			return nil, fmt.Errorf("seed event %q: invalid cost: %w", s.Name, err)
		}
		events = append(events, models.Event{
			Name:        s.Name,
			Date:        date,
			Location:    s.Location,
			Cost:        cost,
			Category:    s.Category,
			Image:       s.Image,
			Description: s.Description,
		})
	}
	return events, nil
}

// Seed inserts events when the catalogue is empty and reports how many were
// added. A non-empty catalogue is left alone.
func (db *DB) Seed(ctx context.Context, events []models.Event) (int, error) {
	var count int
	if err := db.GetContext(ctx, &count, `SELECT COUNT(*) FROM events`); err != nil {
		return 0, fmt.Errorf("failed to count events: %w", err)
	}
	if count > 0 {
		return 0, nil
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback()

	for i := range events {
		e := &events[i]
		id, err := insertID(ctx, tx,
			`INSERT INTO events (name, date, location, cost, category, image, description) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			e.Name, e.Date, e.Location, e.Cost, e.Category, e.Image, e.Description)
		if err != nil {
			return 0, fmt.Errorf("failed to insert event %q: %w", e.Name, err)
		}
		e.ID = id
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit tx: %w", err)
	}
	return len(events), nil
}
