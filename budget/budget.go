// Package budget estimates the cost of organising an event from a fixed
// price list.
package budget

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

type Service struct {
	ID        string
	Name      string
	BaseCost  decimal.Decimal
	PerPerson bool
}

// Services is the price list in EGP, in display order.
var Services = []Service{
	{ID: "catering", Name: "Catering", BaseCost: decimal.NewFromInt(300), PerPerson: true},
	{ID: "photography", Name: "Photography", BaseCost: decimal.NewFromInt(5000)},
	{ID: "venue", Name: "Venue Rental", BaseCost: decimal.NewFromInt(10000)},
	{ID: "decorations", Name: "Decorations", BaseCost: decimal.NewFromInt(7000)},
	{ID: "entertainment", Name: "Entertainment", BaseCost: decimal.NewFromInt(15000)},
}

var ErrNegativeGuests = errors.New("guest count cannot be negative")

type Line struct {
	Service string
	Name    string
	Cost    decimal.Decimal
}

type Estimate struct {
	Guests int
	Lines  []Line
	Total  decimal.Decimal
}

func lookup(id string) (Service, bool) {
	for _, s := range Services {
		if s.ID == id {
			return s, true
		}
	}
	return Service{}, false
}

// Calculate prices the selected services for the given number of guests.
// Selecting a service twice counts it once. Lines follow the price list order.
func Calculate(guests int, selected []string) (*Estimate, error) {
	if guests < 0 {
		return nil, ErrNegativeGuests
	}

	picked := map[string]bool{}
	for _, id := range selected {
		id = strings.ToLower(strings.TrimSpace(id))
		if id == "" {
			continue
		}
		if _, ok := lookup(id); !ok {
			return nil, fmt.Errorf("unknown service %q (known: %s)", id, strings.Join(IDs(), ", "))
		}
		picked[id] = true
	}

	est := &Estimate{Guests: guests, Lines: []Line{}, Total: decimal.Zero}
	for _, s := range Services {
		if !picked[s.ID] {
			continue
		}
		cost := s.BaseCost
		if s.PerPerson {
			cost = cost.Mul(decimal.NewFromInt(int64(guests)))
		}
		est.Lines = append(est.Lines, Line{Service: s.ID, Name: s.Name, Cost: cost})
		est.Total = est.Total.Add(cost)
	}
	return est, nil
}

// IDs lists the known service ids, sorted.
func IDs() []string {
	ids := make([]string, 0, len(Services))
	for _, s := range Services {
		ids = append(ids, s.ID)
	}
	sort.Strings(ids)
	return ids
}
