package calculator

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmynk/travelsplit/internal/models"
)

var testNow = time.Date(2024, 7, 14, 9, 30, 0, 0, time.UTC)

// tripBuilder assembles trips through the model constructors so tests only
// ever see histories the service could have produced.
type tripBuilder struct {
	t    *testing.T
	trip *models.Trip
	now  time.Time
}

func newTrip(t *testing.T, participants ...string) *tripBuilder {
	t.Helper()
	trip, err := models.NewTrip("Test trip", "", "", "", testNow)
	if err != nil {
		t.Fatalf("NewTrip failed: %v", err)
	}
	for _, p := range participants {
		if _, err := trip.AddParticipant(p); err != nil {
			t.Fatalf("AddParticipant failed: %v", err)
		}
	}
	return &tripBuilder{t: t, trip: trip, now: testNow}
}

func (b *tripBuilder) tick() time.Time {
	b.now = b.now.Add(time.Second)
	return b.now
}

// expense adds an expense; shares alternate participant name and amount.
func (b *tripBuilder) expense(payer, amount string, shares ...string) *tripBuilder {
	b.t.Helper()
	var splits []models.Split
	for i := 0; i+1 < len(shares); i += 2 {
		splits = append(splits, models.Split{Participant: shares[i], Amount: d(shares[i+1])})
	}
	now := b.tick()
	e, err := models.NewExpense(b.trip.NextEntryID(now), models.ExpenseInput{
		Payer: payer, Amount: d(amount), Description: "expense", Splits: splits,
	}, now)
	if err != nil {
		b.t.Fatalf("NewExpense failed: %v", err)
	}
	if err := b.trip.AddExpense(e); err != nil {
		b.t.Fatalf("AddExpense failed: %v", err)
	}
	return b
}

func (b *tripBuilder) transfer(from, to, amount string) *tripBuilder {
	b.t.Helper()
	now := b.tick()
	tr, err := models.NewTransfer(b.trip.NextEntryID(now), models.TransferInput{
		From: from, To: to, Amount: d(amount),
	}, now)
	if err != nil {
		b.t.Fatalf("NewTransfer failed: %v", err)
	}
	if err := b.trip.AddTransfer(tr); err != nil {
		b.t.Fatalf("AddTransfer failed: %v", err)
	}
	return b
}

func assertBalances(t *testing.T, got Balances, want map[string]string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d balances, want %d: %+v", len(got), len(want), got)
	}
	for name, amount := range want {
		bal, ok := got.Get(name)
		if !ok {
			t.Errorf("missing balance for %s", name)
			continue
		}
		if !bal.Equal(d(amount)) {
			t.Errorf("%s balance = %s, want %s", name, bal, amount)
		}
	}
}

func TestCalculateBalances(t *testing.T) {
	t.Run("three-way dinner", func(t *testing.T) {
		trip := newTrip(t, "Alice", "Bob", "Carol").
			expense("Alice", "90", "Alice", "30", "Bob", "30", "Carol", "30").trip

		balances := CalculateBalances(trip)
		assertBalances(t, balances, map[string]string{"Alice": "60", "Bob": "-30", "Carol": "-30"})

		alice := balances[0]
		if alice.Participant != "Alice" || !alice.TotalPaid.Equal(d("90")) || !alice.TotalOwed.Equal(d("30")) {
			t.Errorf("Alice = %+v, want paid 90 owed 30", alice)
		}
	})

	t.Run("transfer settles the debt", func(t *testing.T) {
		trip := newTrip(t, "Alice", "Bob").
			expense("Alice", "100", "Alice", "50", "Bob", "50").
			transfer("Bob", "Alice", "50").trip

		assertBalances(t, CalculateBalances(trip), map[string]string{"Alice": "0", "Bob": "0"})
	})

	t.Run("order follows participant insertion", func(t *testing.T) {
		trip := newTrip(t, "Zoe", "Adam", "Mia").trip
		balances := CalculateBalances(trip)
		for i, want := range []string{"Zoe", "Adam", "Mia"} {
			if balances[i].Participant != want {
				t.Errorf("balances[%d] = %s, want %s", i, balances[i].Participant, want)
			}
			if !balances[i].NetBalance.IsZero() {
				t.Errorf("%s starts at %s, want 0", want, balances[i].NetBalance)
			}
		}
	})

	t.Run("removed participant leaves no trace", func(t *testing.T) {
		b := newTrip(t, "Alice", "Bob", "Carol").
			expense("Alice", "90", "Alice", "30", "Bob", "30", "Carol", "30").
			expense("Carol", "20", "Alice", "10", "Carol", "10")
		b.trip.RemoveParticipant("Bob")

		balances := CalculateBalances(b.trip)
		assertBalances(t, balances, map[string]string{"Alice": "-10", "Carol": "10"})
		if _, ok := balances.Get("Bob"); ok {
			t.Error("Bob still has a balance")
		}
	})

	t.Run("dangling references are ignored", func(t *testing.T) {
		// Built by hand: the constructors would reject these references.
		trip := &models.Trip{
			Participants: []string{"Alice", "Bob"},
			Expenses: []models.Expense{{
				Payer: "Ghost", Amount: d("30"),
				Splits: []models.Split{{Participant: "Alice", Amount: d("15")}, {Participant: "Ghost", Amount: d("15")}},
			}},
			Transfers: []models.Transfer{{From: "Bob", To: "Ghost", Amount: d("5")}},
		}
		assertBalances(t, CalculateBalances(trip), map[string]string{"Alice": "-15", "Bob": "5"})
	})
}

func TestCalculateBalancesIsIdempotent(t *testing.T) {
	trip := newTrip(t, "Alice", "Bob", "Carol").
		expense("Alice", "100", "Alice", "33.34", "Bob", "33.33", "Carol", "33.33").
		transfer("Carol", "Alice", "10").trip

	first := CalculateBalances(trip)
	second := CalculateBalances(trip)
	for i := range first {
		if first[i].Participant != second[i].Participant || !first[i].NetBalance.Equal(second[i].NetBalance) {
			t.Errorf("run 1 %+v != run 2 %+v", first[i], second[i])
		}
	}
}

// randomTrip builds a random but valid history for property tests.
func randomTrip(t *testing.T, rng *rand.Rand) *models.Trip {
	t.Helper()
	names := []string{"Alice", "Bob", "Carol", "Dave", "Erin"}[:2+rng.IntN(4)]
	b := newTrip(t, names...)
	for range 1 + rng.IntN(12) {
		if rng.IntN(3) == 0 {
			from := names[rng.IntN(len(names))]
			to := names[rng.IntN(len(names))]
			if from == to {
				continue
			}
			b.transfer(from, to, decimal.New(int64(1+rng.IntN(20000)), -2).String())
			continue
		}
		payer := names[rng.IntN(len(names))]
		amount := decimal.New(int64(1+rng.IntN(50000)), -2)
		sharers := names[:1+rng.IntN(len(names))]
		splits, err := EqualSplits(amount, sharers)
		if err != nil {
			t.Fatal(err)
		}
		var shares []string
		for _, s := range splits {
			shares = append(shares, s.Participant, s.Amount.String())
		}
		b.expense(payer, amount.String(), shares...)
	}
	return b.trip
}

func TestBalancesAreConserved(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	tolerance := decimal.New(1, -6)
	for i := range 200 {
		trip := randomTrip(t, rng)
		if sum := CalculateBalances(trip).Sum(); sum.Abs().GreaterThan(tolerance) {
			t.Fatalf("iteration %d: balances sum to %s", i, sum)
		}
	}
}

func TestIsSettled(t *testing.T) {
	tests := []struct {
		amount string
		want   bool
	}{
		{"0", true},
		{"0.01", true},
		{"-0.01", true},
		{"0.011", false},
		{"-5", false},
	}
	for _, tt := range tests {
		if got := IsSettled(d(tt.amount)); got != tt.want {
			t.Errorf("IsSettled(%s) = %v, want %v", tt.amount, got, tt.want)
		}
	}
}
