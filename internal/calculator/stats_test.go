package calculator

import "testing"

func TestGetTripStats(t *testing.T) {
	t.Run("totals and average", func(t *testing.T) {
		trip := newTrip(t, "Alice", "Bob", "Carol").
			expense("Alice", "90", "Alice", "30", "Bob", "30", "Carol", "30").
			expense("Bob", "10", "Bob", "5", "Carol", "5").
			transfer("Carol", "Alice", "20").trip

		stats := GetTripStats(trip)
		if !stats.TotalExpenses.Equal(d("100")) {
			t.Errorf("TotalExpenses = %s, want 100", stats.TotalExpenses)
		}
		if !stats.TotalTransfers.Equal(d("20")) {
			t.Errorf("TotalTransfers = %s, want 20", stats.TotalTransfers)
		}
		if stats.ExpenseCount != 2 || stats.TransferCount != 1 || stats.ParticipantCount != 3 {
			t.Errorf("counts = %d/%d/%d, want 2/1/3", stats.ExpenseCount, stats.TransferCount, stats.ParticipantCount)
		}
		if got := stats.AveragePerPerson.StringFixed(2); got != "33.33" {
			t.Errorf("AveragePerPerson = %s, want 33.33", got)
		}
	})

	t.Run("empty trip", func(t *testing.T) {
		stats := GetTripStats(newTrip(t).trip)
		if !stats.TotalExpenses.IsZero() || !stats.AveragePerPerson.IsZero() {
			t.Errorf("stats = %+v, want zeros", stats)
		}
		if stats.ParticipantCount != 0 {
			t.Errorf("ParticipantCount = %d, want 0", stats.ParticipantCount)
		}
	})
}
