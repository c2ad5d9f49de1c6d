package db

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"eventx/models"
)

// TestDuplicateBookingsAreIndependent fires many identical bookings for the
// same user and event at once. Every one of them must produce its own row.
func TestDuplicateBookingsAreIndependent(t *testing.T) {
	db := newTestDB(t)
	seeded := seedTestDB(t, db)
	user := createTestUser(t, db, "gopher@example.com")
	event := seeded[0]

	ctx := context.Background()
	numRequests := 50

	var successCount, errorCount int32
	ids := make([]int64, numRequests)

	var wg sync.WaitGroup
	wg.Add(numRequests)

	t.Logf("Firing %d concurrent bookings for user %d on event %d...", numRequests, user.ID, event.ID)

	for i := 0; i < numRequests; i++ {
		go func(requestID int) {
			defer wg.Done()

			r := &models.Registration{
				UserID:  user.ID,
				EventID: event.ID,
				Tickets: 1 + requestID%4,
				Notes:   fmt.Sprintf("request %d", requestID),
			}
			if err := db.CreateRegistration(ctx, r); err != nil {
				t.Logf("Unexpected error for request %d: %v", requestID, err)
				atomic.AddInt32(&errorCount, 1)
				return
			}
			ids[requestID] = r.ID
			atomic.AddInt32(&successCount, 1)
		}(i)
	}

	wg.Wait()

	t.Logf("Results -> Successes: %d | Errors: %d", successCount, errorCount)

	if successCount != int32(numRequests) {
		t.Errorf("Expected %d successful bookings, got %d", numRequests, successCount)
	}

	seen := make(map[int64]bool, numRequests)
	for _, id := range ids {
		if seen[id] {
			t.Errorf("Registration id %d handed out twice", id)
		}
		seen[id] = true
	}

	var rows int
	if err := db.Get(&rows, `SELECT COUNT(*) FROM registrations WHERE user_id = ? AND event_id = ?`, user.ID, event.ID); err != nil {
		t.Fatalf("Failed to count registrations: %v", err)
	}
	if rows != numRequests {
		t.Errorf("Expected %d registration rows, got %d", numRequests, rows)
	}
}
