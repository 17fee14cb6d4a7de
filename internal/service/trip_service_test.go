package service

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"connectrpc.com/connect"
	"github.com/shopspring/decimal"

	"github.com/mmynk/travelsplit/internal/ledger"
	"github.com/mmynk/travelsplit/internal/storage/sqlite"
	"github.com/mmynk/travelsplit/pkg/api"
	"github.com/mmynk/travelsplit/pkg/api/apiconnect"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// setupTestServer creates a test server backed by a temporary SQLite database.
func setupTestServer(t *testing.T) (*apiconnect.TripServiceClient, func()) {
	t.Helper()

	// Create temp database
	tmpFile, err := os.CreateTemp("", "test-*.db")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	tmpFile.Close()

	store, err := sqlite.New(tmpFile.Name())
	if err != nil {
		os.Remove(tmpFile.Name())
		t.Fatalf("failed to create store: %v", err)
	}

	path, handler := apiconnect.NewTripServiceHandler(NewTripService(ledger.New(store)))
	mux := http.NewServeMux()
	mux.Handle(path, handler)
	server := httptest.NewServer(mux)

	client := apiconnect.NewTripServiceClient(http.DefaultClient, server.URL)

	cleanup := func() {
		server.Close()
		store.Close()
		os.Remove(tmpFile.Name())
	}
	return client, cleanup
}

func createTestTrip(t *testing.T, client *apiconnect.TripServiceClient, participants ...string) *api.Trip {
	t.Helper()
	resp, err := client.CreateTrip(context.Background(), connect.NewRequest(&api.CreateTripRequest{
		Name:         "Lisbon",
		Location:     "Portugal",
		Participants: participants,
	}))
	if err != nil {
		t.Fatalf("CreateTrip failed: %v", err)
	}
	return resp.Msg.Trip
}

func assertCode(t *testing.T, err error, want connect.Code) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %v error, got nil", want)
	}
	var connectErr *connect.Error
	if !errors.As(err, &connectErr) {
		t.Fatalf("expected connect error, got %T: %v", err, err)
	}
	if connectErr.Code() != want {
		t.Errorf("expected code %v, got %v (%s)", want, connectErr.Code(), connectErr.Message())
	}
}

func TestCreateTrip_And_GetTrip(t *testing.T) {
	client, cleanup := setupTestServer(t)
	defer cleanup()

	created := createTestTrip(t, client, "Alice", "Bob")
	if created.ID == 0 {
		t.Fatal("expected trip ID to be generated")
	}
	if created.CreatedAt.IsZero() {
		t.Error("expected CreatedAt to be set")
	}

	resp, err := client.GetTrip(context.Background(), connect.NewRequest(&api.GetTripRequest{TripID: created.ID}))
	if err != nil {
		t.Fatalf("GetTrip failed: %v", err)
	}
	trip := resp.Msg.Trip
	if trip.Name != "Lisbon" || trip.Location != "Portugal" {
		t.Errorf("expected Lisbon/Portugal, got %s/%s", trip.Name, trip.Location)
	}
	if len(trip.Participants) != 2 || trip.Participants[0] != "Alice" || trip.Participants[1] != "Bob" {
		t.Errorf("expected [Alice Bob], got %v", trip.Participants)
	}
}

func TestCreateTrip_InvalidName(t *testing.T) {
	client, cleanup := setupTestServer(t)
	defer cleanup()

	_, err := client.CreateTrip(context.Background(), connect.NewRequest(&api.CreateTripRequest{Name: " "}))
	assertCode(t, err, connect.CodeInvalidArgument)
}

func TestGetTrip_NotFound(t *testing.T) {
	client, cleanup := setupTestServer(t)
	defer cleanup()

	_, err := client.GetTrip(context.Background(), connect.NewRequest(&api.GetTripRequest{TripID: 12345}))
	assertCode(t, err, connect.CodeNotFound)
}

func TestListTrips(t *testing.T) {
	client, cleanup := setupTestServer(t)
	defer cleanup()
	ctx := context.Background()

	resp, err := client.ListTrips(ctx, connect.NewRequest(&api.ListTripsRequest{}))
	if err != nil {
		t.Fatalf("ListTrips failed: %v", err)
	}
	if len(resp.Msg.Trips) != 0 {
		t.Errorf("expected 0 trips, got %d", len(resp.Msg.Trips))
	}

	createTestTrip(t, client, "Alice")
	createTestTrip(t, client, "Bob")

	resp, err = client.ListTrips(ctx, connect.NewRequest(&api.ListTripsRequest{}))
	if err != nil {
		t.Fatalf("ListTrips failed: %v", err)
	}
	if len(resp.Msg.Trips) != 2 {
		t.Errorf("expected 2 trips, got %d", len(resp.Msg.Trips))
	}
}

func TestUpdateTrip(t *testing.T) {
	client, cleanup := setupTestServer(t)
	defer cleanup()
	ctx := context.Background()

	trip := createTestTrip(t, client, "Alice")
	name, start, end := "Lisbon & Porto", "2024-07-01", "2024-07-10"

	resp, err := client.UpdateTrip(ctx, connect.NewRequest(&api.UpdateTripRequest{
		TripID: trip.ID, Name: &name, StartDate: &start, EndDate: &end,
	}))
	if err != nil {
		t.Fatalf("UpdateTrip failed: %v", err)
	}
	if resp.Msg.Trip.Name != name || resp.Msg.Trip.StartDate != start || resp.Msg.Trip.EndDate != end {
		t.Errorf("unexpected trip after update: %+v", resp.Msg.Trip)
	}
	if resp.Msg.Trip.Location != "Portugal" {
		t.Errorf("expected location to be untouched, got %q", resp.Msg.Trip.Location)
	}

	bad := "07/01/2024"
	_, err = client.UpdateTrip(ctx, connect.NewRequest(&api.UpdateTripRequest{TripID: trip.ID, StartDate: &bad}))
	assertCode(t, err, connect.CodeInvalidArgument)
}

func TestUpdateTrip_NotFound(t *testing.T) {
	client, cleanup := setupTestServer(t)
	defer cleanup()

	name := "Nowhere"
	_, err := client.UpdateTrip(context.Background(), connect.NewRequest(&api.UpdateTripRequest{TripID: 999, Name: &name}))
	assertCode(t, err, connect.CodeNotFound)
}

func TestDeleteTrip(t *testing.T) {
	client, cleanup := setupTestServer(t)
	defer cleanup()
	ctx := context.Background()

	trip := createTestTrip(t, client, "Alice")
	if _, err := client.DeleteTrip(ctx, connect.NewRequest(&api.DeleteTripRequest{TripID: trip.ID})); err != nil {
		t.Fatalf("DeleteTrip failed: %v", err)
	}

	_, err := client.GetTrip(ctx, connect.NewRequest(&api.GetTripRequest{TripID: trip.ID}))
	assertCode(t, err, connect.CodeNotFound)

	_, err = client.DeleteTrip(ctx, connect.NewRequest(&api.DeleteTripRequest{TripID: trip.ID}))
	assertCode(t, err, connect.CodeNotFound)
}

func TestParticipants_AddAndRemove(t *testing.T) {
	client, cleanup := setupTestServer(t)
	defer cleanup()
	ctx := context.Background()

	trip := createTestTrip(t, client, "Alice", "Bob")

	added, err := client.AddParticipant(ctx, connect.NewRequest(&api.AddParticipantRequest{TripID: trip.ID, Name: "Carol"}))
	if err != nil {
		t.Fatalf("AddParticipant failed: %v", err)
	}
	if !added.Msg.Added || len(added.Msg.Trip.Participants) != 3 {
		t.Errorf("expected Carol to be added, got %+v", added.Msg)
	}

	dup, err := client.AddParticipant(ctx, connect.NewRequest(&api.AddParticipantRequest{TripID: trip.ID, Name: "Carol"}))
	if err != nil {
		t.Fatalf("duplicate AddParticipant failed: %v", err)
	}
	if dup.Msg.Added {
		t.Error("expected duplicate participant to report Added=false")
	}

	_, err = client.AddParticipant(ctx, connect.NewRequest(&api.AddParticipantRequest{TripID: trip.ID, Name: ""}))
	assertCode(t, err, connect.CodeInvalidArgument)

	_, err = client.AddExpense(ctx, connect.NewRequest(&api.AddExpenseRequest{
		TripID: trip.ID, Payer: "Alice", Amount: d("90"), Description: "Dinner",
		SplitEqually: []string{"Alice", "Bob", "Carol"},
	}))
	if err != nil {
		t.Fatalf("AddExpense failed: %v", err)
	}

	removed, err := client.RemoveParticipant(ctx, connect.NewRequest(&api.RemoveParticipantRequest{TripID: trip.ID, Name: "Bob"}))
	if err != nil {
		t.Fatalf("RemoveParticipant failed: %v", err)
	}
	if removed.Msg.DeletedExpenses != 1 || removed.Msg.DeletedTransfers != 0 {
		t.Errorf("expected 1 deleted expense, got %+v", removed.Msg)
	}

	_, err = client.RemoveParticipant(ctx, connect.NewRequest(&api.RemoveParticipantRequest{TripID: trip.ID, Name: "Bob"}))
	assertCode(t, err, connect.CodeNotFound)
}

func TestAddExpense_Validation(t *testing.T) {
	client, cleanup := setupTestServer(t)
	defer cleanup()
	ctx := context.Background()

	trip := createTestTrip(t, client, "Alice", "Bob")

	tests := []struct {
		name string
		req  *api.AddExpenseRequest
	}{
		{"zero amount", &api.AddExpenseRequest{TripID: trip.ID, Payer: "Alice", Amount: d("0"), Description: "x", SplitEqually: []string{"Alice"}}},
		{"no description", &api.AddExpenseRequest{TripID: trip.ID, Payer: "Alice", Amount: d("10"), SplitEqually: []string{"Alice"}}},
		{"unknown payer", &api.AddExpenseRequest{TripID: trip.ID, Payer: "Zed", Amount: d("10"), Description: "x", SplitEqually: []string{"Alice"}}},
		{"no splits", &api.AddExpenseRequest{TripID: trip.ID, Payer: "Alice", Amount: d("10"), Description: "x"}},
		{"sum mismatch", &api.AddExpenseRequest{
			TripID: trip.ID, Payer: "Alice", Amount: d("10"), Description: "x",
			Splits: []api.Split{{Participant: "Alice", Amount: d("4")}, {Participant: "Bob", Amount: d("4")}},
		}},
		{"bad date", &api.AddExpenseRequest{TripID: trip.ID, Payer: "Alice", Amount: d("10"), Description: "x", Date: "yesterday", SplitEqually: []string{"Alice"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := client.AddExpense(ctx, connect.NewRequest(tt.req))
			assertCode(t, err, connect.CodeInvalidArgument)
		})
	}

	resp, err := client.GetTrip(ctx, connect.NewRequest(&api.GetTripRequest{TripID: trip.ID}))
	if err != nil {
		t.Fatal(err)
	}
	if len(resp.Msg.Trip.Expenses) != 0 {
		t.Errorf("rejected expenses were stored: %+v", resp.Msg.Trip.Expenses)
	}
}

func TestGetBalances_DinnerScenario(t *testing.T) {
	client, cleanup := setupTestServer(t)
	defer cleanup()
	ctx := context.Background()

	trip := createTestTrip(t, client, "Alice", "Bob", "Carol")
	_, err := client.AddExpense(ctx, connect.NewRequest(&api.AddExpenseRequest{
		TripID: trip.ID, Payer: "Alice", Amount: d("90"), Description: "Dinner", Date: "2024-07-12",
		Splits: []api.Split{
			{Participant: "Alice", Amount: d("30")},
			{Participant: "Bob", Amount: d("30")},
			{Participant: "Carol", Amount: d("30")},
		},
	}))
	if err != nil {
		t.Fatalf("AddExpense failed: %v", err)
	}

	resp, err := client.GetBalances(ctx, connect.NewRequest(&api.GetBalancesRequest{TripID: trip.ID}))
	if err != nil {
		t.Fatalf("GetBalances failed: %v", err)
	}

	want := map[string]string{"Alice": "60", "Bob": "-30", "Carol": "-30"}
	for _, b := range resp.Msg.Balances {
		if !b.NetBalance.Equal(d(want[b.Participant])) {
			t.Errorf("expected %s balance %s, got %s", b.Participant, want[b.Participant], b.NetBalance)
		}
		if b.Settled {
			t.Errorf("expected %s to be unsettled", b.Participant)
		}
	}

	settlements := resp.Msg.Settlements
	if len(settlements) != 2 {
		t.Fatalf("expected 2 settlements, got %d", len(settlements))
	}
	for i, from := range []string{"Bob", "Carol"} {
		s := settlements[i]
		if s.From != from || s.To != "Alice" || !s.Amount.Equal(d("30")) {
			t.Errorf("settlement %d: expected %s -> Alice 30, got %+v", i, from, s)
		}
	}

	matrix, err := client.GetDebtMatrix(ctx, connect.NewRequest(&api.GetDebtMatrixRequest{TripID: trip.ID}))
	if err != nil {
		t.Fatalf("GetDebtMatrix failed: %v", err)
	}
	if got := matrix.Msg.Matrix["Bob"]["Alice"]; !got.Equal(d("30")) {
		t.Errorf("expected Bob to owe Alice 30, got %s", got)
	}
	if len(matrix.Msg.Debts) != 2 {
		t.Errorf("expected 2 debts, got %d", len(matrix.Msg.Debts))
	}

	stats, err := client.GetTripStats(ctx, connect.NewRequest(&api.GetTripStatsRequest{TripID: trip.ID}))
	if err != nil {
		t.Fatalf("GetTripStats failed: %v", err)
	}
	if !stats.Msg.Stats.TotalExpenses.Equal(d("90")) || stats.Msg.Stats.ParticipantCount != 3 {
		t.Errorf("unexpected stats: %+v", stats.Msg.Stats)
	}

	got, err := client.GetTrip(ctx, connect.NewRequest(&api.GetTripRequest{TripID: trip.ID}))
	if err != nil {
		t.Fatal(err)
	}
	if got.Msg.Trip.StartDate != "2024-07-12" || !got.Msg.Trip.StartDateInferred {
		t.Errorf("expected start date inferred from expense, got %q (%v)", got.Msg.Trip.StartDate, got.Msg.Trip.StartDateInferred)
	}
}

func TestAddTransfer_SettlesDebt(t *testing.T) {
	client, cleanup := setupTestServer(t)
	defer cleanup()
	ctx := context.Background()

	trip := createTestTrip(t, client, "Alice", "Bob")
	if _, err := client.AddExpense(ctx, connect.NewRequest(&api.AddExpenseRequest{
		TripID: trip.ID, Payer: "Alice", Amount: d("100"), Description: "Hotel",
		SplitEqually: []string{"Alice", "Bob"},
	})); err != nil {
		t.Fatalf("AddExpense failed: %v", err)
	}

	_, err := client.AddTransfer(ctx, connect.NewRequest(&api.AddTransferRequest{
		TripID: trip.ID, From: "Bob", To: "Bob", Amount: d("50"),
	}))
	assertCode(t, err, connect.CodeInvalidArgument)

	transfer, err := client.AddTransfer(ctx, connect.NewRequest(&api.AddTransferRequest{
		TripID: trip.ID, From: "Bob", To: "Alice", Amount: d("50"),
	}))
	if err != nil {
		t.Fatalf("AddTransfer failed: %v", err)
	}

	resp, err := client.GetBalances(ctx, connect.NewRequest(&api.GetBalancesRequest{TripID: trip.ID}))
	if err != nil {
		t.Fatalf("GetBalances failed: %v", err)
	}
	for _, b := range resp.Msg.Balances {
		if !b.NetBalance.IsZero() || !b.Settled {
			t.Errorf("expected %s to be settled, got %s", b.Participant, b.NetBalance)
		}
	}
	if len(resp.Msg.Settlements) != 0 {
		t.Errorf("expected no settlements, got %+v", resp.Msg.Settlements)
	}

	if _, err := client.DeleteTransfer(ctx, connect.NewRequest(&api.DeleteTransferRequest{
		TripID: trip.ID, TransferID: transfer.Msg.Transfer.ID,
	})); err != nil {
		t.Fatalf("DeleteTransfer failed: %v", err)
	}
	_, err = client.DeleteTransfer(ctx, connect.NewRequest(&api.DeleteTransferRequest{
		TripID: trip.ID, TransferID: transfer.Msg.Transfer.ID,
	}))
	assertCode(t, err, connect.CodeNotFound)

	_, err = client.DeleteExpense(ctx, connect.NewRequest(&api.DeleteExpenseRequest{TripID: trip.ID, ExpenseID: 1}))
	assertCode(t, err, connect.CodeNotFound)
}

func TestExport_And_Import(t *testing.T) {
	client, cleanup := setupTestServer(t)
	defer cleanup()
	ctx := context.Background()

	trip := createTestTrip(t, client, "Alice", "Bob")
	if _, err := client.AddExpense(ctx, connect.NewRequest(&api.AddExpenseRequest{
		TripID: trip.ID, Payer: "Bob", Amount: d("12.50"), Description: "Pastéis",
		SplitEqually: []string{"Alice", "Bob"},
	})); err != nil {
		t.Fatal(err)
	}

	exported, err := client.Export(ctx, connect.NewRequest(&api.ExportRequest{}))
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	data := exported.Msg.Data
	if data.Version != "1.0" || len(data.Trips) != 1 {
		t.Fatalf("unexpected export: version %q, %d trips", data.Version, len(data.Trips))
	}

	appended, err := client.Import(ctx, connect.NewRequest(&api.ImportRequest{Mode: "append", Data: data}))
	if err != nil {
		t.Fatalf("Import append failed: %v", err)
	}
	if appended.Msg.Imported != 1 {
		t.Errorf("expected 1 imported trip, got %d", appended.Msg.Imported)
	}
	list, err := client.ListTrips(ctx, connect.NewRequest(&api.ListTripsRequest{}))
	if err != nil {
		t.Fatal(err)
	}
	if len(list.Msg.Trips) != 2 || list.Msg.Trips[1].ID == trip.ID {
		t.Fatalf("expected a second trip with a new ID, got %d trips", len(list.Msg.Trips))
	}

	if _, err := client.Import(ctx, connect.NewRequest(&api.ImportRequest{Data: data})); err != nil {
		t.Fatalf("Import replace failed: %v", err)
	}
	list, err = client.ListTrips(ctx, connect.NewRequest(&api.ListTripsRequest{}))
	if err != nil {
		t.Fatal(err)
	}
	if len(list.Msg.Trips) != 1 || list.Msg.Trips[0].ID != trip.ID {
		t.Fatalf("expected only the original trip after replace, got %+v", list.Msg.Trips)
	}
	if got := list.Msg.Trips[0].Expenses[0].Amount; !got.Equal(d("12.50")) {
		t.Errorf("expected amount 12.50 to survive the round trip, got %s", got)
	}

	_, err = client.Import(ctx, connect.NewRequest(&api.ImportRequest{Mode: "merge", Data: data}))
	assertCode(t, err, connect.CodeInvalidArgument)

	broken := &api.ExportData{Version: "1.0", Trips: []*api.Trip{{Name: ""}}}
	_, err = client.Import(ctx, connect.NewRequest(&api.ImportRequest{Data: broken}))
	assertCode(t, err, connect.CodeInvalidArgument)
}
