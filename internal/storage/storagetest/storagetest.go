// Package storagetest holds the behavioural tests every storage.Store
// implementation must pass.
package storagetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmynk/travelsplit/internal/models"
	"github.com/mmynk/travelsplit/internal/storage"
)

var baseTime = time.Date(2024, 7, 14, 9, 30, 0, 123456789, time.UTC)

// SampleTrip returns a trip with participants, a split expense and a
// transfer, built through the model constructors.
func SampleTrip(t *testing.T, name string) *models.Trip {
	t.Helper()
	trip, err := models.NewTrip(name, "Lisbon", "", "", baseTime)
	if err != nil {
		t.Fatalf("NewTrip failed: %v", err)
	}
	for _, p := range []string{"Alice", "Bob", "Carol"} {
		if _, err := trip.AddParticipant(p); err != nil {
			t.Fatalf("AddParticipant failed: %v", err)
		}
	}

	now := baseTime.Add(time.Minute)
	expense, err := models.NewExpense(trip.NextEntryID(now), models.ExpenseInput{
		Payer:       "Alice",
		Amount:      decimal.RequireFromString("100"),
		Description: "Dinner",
		Date:        "2024-07-12",
		Splits: []models.Split{
			{Participant: "Alice", Amount: decimal.RequireFromString("33.34")},
			{Participant: "Bob", Amount: decimal.RequireFromString("33.33")},
			{Participant: "Carol", Amount: decimal.RequireFromString("33.33")},
		},
	}, now)
	if err != nil {
		t.Fatalf("NewExpense failed: %v", err)
	}
	if err := trip.AddExpense(expense); err != nil {
		t.Fatalf("AddExpense failed: %v", err)
	}

	now = now.Add(time.Minute)
	transfer, err := models.NewTransfer(trip.NextEntryID(now), models.TransferInput{
		From: "Bob", To: "Alice", Amount: decimal.RequireFromString("20.5"),
	}, now)
	if err != nil {
		t.Fatalf("NewTransfer failed: %v", err)
	}
	if err := trip.AddTransfer(transfer); err != nil {
		t.Fatalf("AddTransfer failed: %v", err)
	}
	return trip
}

// AssertTripsEqual compares two trips field by field.
func AssertTripsEqual(t *testing.T, got, want *models.Trip) {
	t.Helper()
	if got.ID != want.ID || got.Name != want.Name || got.Location != want.Location {
		t.Errorf("trip header = %d/%q/%q, want %d/%q/%q",
			got.ID, got.Name, got.Location, want.ID, want.Name, want.Location)
	}
	if got.StartDate != want.StartDate || got.EndDate != want.EndDate ||
		got.StartDateInferred != want.StartDateInferred || got.EndDateInferred != want.EndDateInferred {
		t.Errorf("trip dates = %s..%s (%v/%v), want %s..%s (%v/%v)",
			got.StartDate, got.EndDate, got.StartDateInferred, got.EndDateInferred,
			want.StartDate, want.EndDate, want.StartDateInferred, want.EndDateInferred)
	}
	if !got.CreatedAt.Equal(want.CreatedAt) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, want.CreatedAt)
	}
	if len(got.Participants) != len(want.Participants) {
		t.Fatalf("participants = %v, want %v", got.Participants, want.Participants)
	}
	for i := range want.Participants {
		if got.Participants[i] != want.Participants[i] {
			t.Errorf("participant %d = %q, want %q", i, got.Participants[i], want.Participants[i])
		}
	}

	if len(got.Expenses) != len(want.Expenses) {
		t.Fatalf("got %d expenses, want %d", len(got.Expenses), len(want.Expenses))
	}
	for i, w := range want.Expenses {
		g := got.Expenses[i]
		if g.ID != w.ID || g.Payer != w.Payer || !g.Amount.Equal(w.Amount) ||
			g.Description != w.Description || g.Date != w.Date || !g.CreatedAt.Equal(w.CreatedAt) {
			t.Errorf("expense %d = %+v, want %+v", i, g, w)
		}
		if len(g.Splits) != len(w.Splits) {
			t.Fatalf("expense %d has %d splits, want %d", i, len(g.Splits), len(w.Splits))
		}
		for j := range w.Splits {
			if g.Splits[j].Participant != w.Splits[j].Participant || !g.Splits[j].Amount.Equal(w.Splits[j].Amount) {
				t.Errorf("expense %d split %d = %+v, want %+v", i, j, g.Splits[j], w.Splits[j])
			}
		}
	}

	if len(got.Transfers) != len(want.Transfers) {
		t.Fatalf("got %d transfers, want %d", len(got.Transfers), len(want.Transfers))
	}
	for i, w := range want.Transfers {
		g := got.Transfers[i]
		if g.ID != w.ID || g.From != w.From || g.To != w.To || !g.Amount.Equal(w.Amount) ||
			g.Date != w.Date || !g.CreatedAt.Equal(w.CreatedAt) {
			t.Errorf("transfer %d = %+v, want %+v", i, g, w)
		}
	}
}

// Run exercises store. newStore must return an empty store; it is called
// once per subtest.
func Run(t *testing.T, newStore func(t *testing.T) storage.Store) {
	ctx := context.Background()

	t.Run("CreateTrip assigns increasing IDs", func(t *testing.T) {
		store := newStore(t)
		first := SampleTrip(t, "First")
		second := SampleTrip(t, "Second")
		if err := store.CreateTrip(ctx, first); err != nil {
			t.Fatalf("CreateTrip failed: %v", err)
		}
		if err := store.CreateTrip(ctx, second); err != nil {
			t.Fatalf("CreateTrip failed: %v", err)
		}
		if first.ID <= 0 || second.ID <= first.ID {
			t.Errorf("IDs = %d, %d, want positive and increasing", first.ID, second.ID)
		}
	})

	t.Run("GetTrip round trips the full record", func(t *testing.T) {
		store := newStore(t)
		trip := SampleTrip(t, "Lisbon")
		if err := store.CreateTrip(ctx, trip); err != nil {
			t.Fatalf("CreateTrip failed: %v", err)
		}

		got, err := store.GetTrip(ctx, trip.ID)
		if err != nil {
			t.Fatalf("GetTrip failed: %v", err)
		}
		AssertTripsEqual(t, got, trip)
	})

	t.Run("GetTrip returns ErrNotFound", func(t *testing.T) {
		store := newStore(t)
		if _, err := store.GetTrip(ctx, 999); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("err = %v, want ErrNotFound", err)
		}
	})

	t.Run("returned trips are detached", func(t *testing.T) {
		store := newStore(t)
		trip := SampleTrip(t, "Detached")
		if err := store.CreateTrip(ctx, trip); err != nil {
			t.Fatalf("CreateTrip failed: %v", err)
		}
		trip.Participants[0] = "Mallory"

		got, err := store.GetTrip(ctx, trip.ID)
		if err != nil {
			t.Fatalf("GetTrip failed: %v", err)
		}
		if got.Participants[0] != "Alice" {
			t.Errorf("store shares memory with caller: participant = %q", got.Participants[0])
		}
		got.Expenses[0].Splits[0].Participant = "Mallory"

		again, err := store.GetTrip(ctx, trip.ID)
		if err != nil {
			t.Fatalf("GetTrip failed: %v", err)
		}
		if again.Expenses[0].Splits[0].Participant != "Alice" {
			t.Error("store shares memory with reader")
		}
	})

	t.Run("SaveTrip overwrites the record", func(t *testing.T) {
		store := newStore(t)
		trip := SampleTrip(t, "Before")
		if err := store.CreateTrip(ctx, trip); err != nil {
			t.Fatalf("CreateTrip failed: %v", err)
		}

		if err := trip.Rename("After"); err != nil {
			t.Fatal(err)
		}
		trip.RemoveParticipant("Carol")
		if _, err := trip.AddParticipant("Dave"); err != nil {
			t.Fatal(err)
		}
		if err := store.SaveTrip(ctx, trip); err != nil {
			t.Fatalf("SaveTrip failed: %v", err)
		}

		got, err := store.GetTrip(ctx, trip.ID)
		if err != nil {
			t.Fatalf("GetTrip failed: %v", err)
		}
		AssertTripsEqual(t, got, trip)
		if len(got.Expenses) != 0 {
			t.Errorf("expected cascade to have removed the expense, got %d", len(got.Expenses))
		}
	})

	t.Run("SaveTrip of unknown trip returns ErrNotFound", func(t *testing.T) {
		store := newStore(t)
		trip := SampleTrip(t, "Ghost")
		trip.ID = 42
		if err := store.SaveTrip(ctx, trip); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("err = %v, want ErrNotFound", err)
		}
	})

	t.Run("DeleteTrip removes the trip", func(t *testing.T) {
		store := newStore(t)
		trip := SampleTrip(t, "Gone")
		if err := store.CreateTrip(ctx, trip); err != nil {
			t.Fatalf("CreateTrip failed: %v", err)
		}
		if err := store.DeleteTrip(ctx, trip.ID); err != nil {
			t.Fatalf("DeleteTrip failed: %v", err)
		}
		if _, err := store.GetTrip(ctx, trip.ID); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("GetTrip after delete: err = %v, want ErrNotFound", err)
		}
		if err := store.DeleteTrip(ctx, trip.ID); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("second DeleteTrip: err = %v, want ErrNotFound", err)
		}
	})

	t.Run("ListTrips orders by ID", func(t *testing.T) {
		store := newStore(t)
		trips, err := store.ListTrips(ctx)
		if err != nil {
			t.Fatalf("ListTrips failed: %v", err)
		}
		if len(trips) != 0 {
			t.Fatalf("new store lists %d trips", len(trips))
		}

		for _, name := range []string{"One", "Two", "Three"} {
			if err := store.CreateTrip(ctx, SampleTrip(t, name)); err != nil {
				t.Fatalf("CreateTrip failed: %v", err)
			}
		}
		trips, err = store.ListTrips(ctx)
		if err != nil {
			t.Fatalf("ListTrips failed: %v", err)
		}
		if len(trips) != 3 {
			t.Fatalf("got %d trips, want 3", len(trips))
		}
		for i, want := range []string{"One", "Two", "Three"} {
			if trips[i].Name != want {
				t.Errorf("trips[%d] = %q, want %q", i, trips[i].Name, want)
			}
			if len(trips[i].Expenses) != 1 || len(trips[i].Transfers) != 1 {
				t.Errorf("trips[%d] lost its entries", i)
			}
		}
	})

	t.Run("ReplaceAll swaps the data set", func(t *testing.T) {
		store := newStore(t)
		old := SampleTrip(t, "Old")
		if err := store.CreateTrip(ctx, old); err != nil {
			t.Fatalf("CreateTrip failed: %v", err)
		}

		imported := SampleTrip(t, "Imported")
		imported.ID = 7
		if err := store.ReplaceAll(ctx, []*models.Trip{imported}); err != nil {
			t.Fatalf("ReplaceAll failed: %v", err)
		}

		trips, err := store.ListTrips(ctx)
		if err != nil {
			t.Fatalf("ListTrips failed: %v", err)
		}
		if len(trips) != 1 {
			t.Fatalf("got %d trips, want 1", len(trips))
		}
		AssertTripsEqual(t, trips[0], imported)

		next := SampleTrip(t, "Next")
		if err := store.CreateTrip(ctx, next); err != nil {
			t.Fatalf("CreateTrip failed: %v", err)
		}
		if next.ID <= imported.ID {
			t.Errorf("new ID %d does not follow imported ID %d", next.ID, imported.ID)
		}
	})

	t.Run("ReplaceAll with nothing empties the store", func(t *testing.T) {
		store := newStore(t)
		if err := store.CreateTrip(ctx, SampleTrip(t, "Old")); err != nil {
			t.Fatalf("CreateTrip failed: %v", err)
		}
		if err := store.ReplaceAll(ctx, nil); err != nil {
			t.Fatalf("ReplaceAll failed: %v", err)
		}
		trips, err := store.ListTrips(ctx)
		if err != nil {
			t.Fatalf("ListTrips failed: %v", err)
		}
		if len(trips) != 0 {
			t.Errorf("got %d trips, want 0", len(trips))
		}
	})

	t.Run("empty trip round trips", func(t *testing.T) {
		store := newStore(t)
		trip, err := models.NewTrip("Empty", "", "2024-01-01", "2024-01-03", baseTime)
		if err != nil {
			t.Fatal(err)
		}
		if err := store.CreateTrip(ctx, trip); err != nil {
			t.Fatalf("CreateTrip failed: %v", err)
		}
		got, err := store.GetTrip(ctx, trip.ID)
		if err != nil {
			t.Fatalf("GetTrip failed: %v", err)
		}
		AssertTripsEqual(t, got, trip)
		if got.Participants == nil || got.Expenses == nil || got.Transfers == nil {
			t.Error("empty collections came back nil")
		}
	})
}
