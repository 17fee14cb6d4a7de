package service

import (
	"context"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/travelsplit/internal/ledger"
	"github.com/mmynk/travelsplit/pkg/api"
	"github.com/mmynk/travelsplit/pkg/api/apiconnect"
)

var _ apiconnect.TripServiceHandler = (*TripService)(nil)

// TripService implements the Connect TripService on top of the ledger.
type TripService struct {
	ledger *ledger.Service
}

// NewTripService creates a new TripService.
func NewTripService(l *ledger.Service) *TripService {
	return &TripService{ledger: l}
}

// CreateTrip creates a new trip, optionally with its first participants.
func (s *TripService) CreateTrip(ctx context.Context, req *connect.Request[api.CreateTripRequest]) (*connect.Response[api.CreateTripResponse], error) {
	slog.Info("CreateTrip request received",
		"name", req.Msg.Name,
		"participants_count", len(req.Msg.Participants),
	)

	trip, err := s.ledger.CreateTrip(ctx, ledger.TripInput{
		Name:         req.Msg.Name,
		Location:     req.Msg.Location,
		StartDate:    req.Msg.StartDate,
		EndDate:      req.Msg.EndDate,
		Participants: req.Msg.Participants,
	})
	if err != nil {
		return nil, toConnectError("CreateTrip", err)
	}

	return connect.NewResponse(&api.CreateTripResponse{Trip: tripToAPI(trip)}), nil
}

// GetTrip retrieves a trip by ID.
func (s *TripService) GetTrip(ctx context.Context, req *connect.Request[api.GetTripRequest]) (*connect.Response[api.GetTripResponse], error) {
	trip, err := s.ledger.GetTrip(ctx, req.Msg.TripID)
	if err != nil {
		return nil, toConnectError("GetTrip", err)
	}
	return connect.NewResponse(&api.GetTripResponse{Trip: tripToAPI(trip)}), nil
}

// ListTrips retrieves all trips.
func (s *TripService) ListTrips(ctx context.Context, req *connect.Request[api.ListTripsRequest]) (*connect.Response[api.ListTripsResponse], error) {
	trips, err := s.ledger.ListTrips(ctx)
	if err != nil {
		return nil, toConnectError("ListTrips", err)
	}

	out := make([]*api.Trip, len(trips))
	for i, trip := range trips {
		out[i] = tripToAPI(trip)
	}
	slog.Info("ListTrips successful", "count", len(trips))

	return connect.NewResponse(&api.ListTripsResponse{Trips: out}), nil
}

// UpdateTrip changes the name, location or dates of a trip.
func (s *TripService) UpdateTrip(ctx context.Context, req *connect.Request[api.UpdateTripRequest]) (*connect.Response[api.UpdateTripResponse], error) {
	slog.Info("UpdateTrip request received", "trip_id", req.Msg.TripID)

	trip, err := s.ledger.UpdateTrip(ctx, req.Msg.TripID, ledger.TripUpdate{
		Name:      req.Msg.Name,
		Location:  req.Msg.Location,
		StartDate: req.Msg.StartDate,
		EndDate:   req.Msg.EndDate,
	})
	if err != nil {
		return nil, toConnectError("UpdateTrip", err)
	}
	return connect.NewResponse(&api.UpdateTripResponse{Trip: tripToAPI(trip)}), nil
}

// DeleteTrip deletes a trip and everything in it.
func (s *TripService) DeleteTrip(ctx context.Context, req *connect.Request[api.DeleteTripRequest]) (*connect.Response[api.DeleteTripResponse], error) {
	slog.Info("DeleteTrip request received", "trip_id", req.Msg.TripID)

	if err := s.ledger.DeleteTrip(ctx, req.Msg.TripID); err != nil {
		return nil, toConnectError("DeleteTrip", err)
	}
	return connect.NewResponse(&api.DeleteTripResponse{}), nil
}

// AddParticipant adds a participant. Adding an existing name succeeds with Added=false.
func (s *TripService) AddParticipant(ctx context.Context, req *connect.Request[api.AddParticipantRequest]) (*connect.Response[api.AddParticipantResponse], error) {
	trip, added, err := s.ledger.AddParticipant(ctx, req.Msg.TripID, req.Msg.Name)
	if err != nil {
		return nil, toConnectError("AddParticipant", err)
	}
	return connect.NewResponse(&api.AddParticipantResponse{Added: added, Trip: tripToAPI(trip)}), nil
}

// RemoveParticipant removes a participant together with every expense and
// transfer they are part of.
func (s *TripService) RemoveParticipant(ctx context.Context, req *connect.Request[api.RemoveParticipantRequest]) (*connect.Response[api.RemoveParticipantResponse], error) {
	removed, err := s.ledger.RemoveParticipant(ctx, req.Msg.TripID, req.Msg.Name)
	if err != nil {
		return nil, toConnectError("RemoveParticipant", err)
	}
	return connect.NewResponse(&api.RemoveParticipantResponse{
		DeletedExpenses:  removed.Expenses,
		DeletedTransfers: removed.Transfers,
	}), nil
}

// AddExpense records an expense with explicit or equal splits.
func (s *TripService) AddExpense(ctx context.Context, req *connect.Request[api.AddExpenseRequest]) (*connect.Response[api.AddExpenseResponse], error) {
	slog.Info("AddExpense request received",
		"trip_id", req.Msg.TripID,
		"payer", req.Msg.Payer,
		"amount", req.Msg.Amount.String(),
		"splits_count", len(req.Msg.Splits),
		"split_equally_count", len(req.Msg.SplitEqually),
	)

	expense, err := s.ledger.AddExpense(ctx, req.Msg.TripID, ledger.ExpenseRequest{
		Payer:        req.Msg.Payer,
		Amount:       req.Msg.Amount,
		Description:  req.Msg.Description,
		Date:         req.Msg.Date,
		Splits:       splitsFromAPI(req.Msg.Splits),
		SplitEqually: req.Msg.SplitEqually,
	})
	if err != nil {
		return nil, toConnectError("AddExpense", err)
	}
	return connect.NewResponse(&api.AddExpenseResponse{Expense: expenseToAPI(expense)}), nil
}

// AddTransfer records that one participant paid another.
func (s *TripService) AddTransfer(ctx context.Context, req *connect.Request[api.AddTransferRequest]) (*connect.Response[api.AddTransferResponse], error) {
	transfer, err := s.ledger.AddTransfer(ctx, req.Msg.TripID, ledger.TransferRequest{
		From:   req.Msg.From,
		To:     req.Msg.To,
		Amount: req.Msg.Amount,
		Date:   req.Msg.Date,
	})
	if err != nil {
		return nil, toConnectError("AddTransfer", err)
	}
	return connect.NewResponse(&api.AddTransferResponse{Transfer: transferToAPI(transfer)}), nil
}

func (s *TripService) DeleteExpense(ctx context.Context, req *connect.Request[api.DeleteExpenseRequest]) (*connect.Response[api.DeleteExpenseResponse], error) {
	if err := s.ledger.DeleteExpense(ctx, req.Msg.TripID, req.Msg.ExpenseID); err != nil {
		return nil, toConnectError("DeleteExpense", err)
	}
	return connect.NewResponse(&api.DeleteExpenseResponse{}), nil
}

func (s *TripService) DeleteTransfer(ctx context.Context, req *connect.Request[api.DeleteTransferRequest]) (*connect.Response[api.DeleteTransferResponse], error) {
	if err := s.ledger.DeleteTransfer(ctx, req.Msg.TripID, req.Msg.TransferID); err != nil {
		return nil, toConnectError("DeleteTransfer", err)
	}
	return connect.NewResponse(&api.DeleteTransferResponse{}), nil
}

// GetBalances returns every participant's balance and the settlement plan.
func (s *TripService) GetBalances(ctx context.Context, req *connect.Request[api.GetBalancesRequest]) (*connect.Response[api.GetBalancesResponse], error) {
	balances, settlements, err := s.ledger.CalculateSettlements(ctx, req.Msg.TripID)
	if err != nil {
		return nil, toConnectError("GetBalances", err)
	}

	slog.Info("GetBalances successful",
		"trip_id", req.Msg.TripID,
		"participants", len(balances),
		"settlements", len(settlements),
	)

	return connect.NewResponse(&api.GetBalancesResponse{
		Balances:    balancesToAPI(balances),
		Settlements: settlementsToAPI(settlements),
	}), nil
}

// GetDebtMatrix returns pairwise debts between participants.
func (s *TripService) GetDebtMatrix(ctx context.Context, req *connect.Request[api.GetDebtMatrixRequest]) (*connect.Response[api.GetDebtMatrixResponse], error) {
	matrix, err := s.ledger.CalculateDebtMatrix(ctx, req.Msg.TripID)
	if err != nil {
		return nil, toConnectError("GetDebtMatrix", err)
	}

	edges := matrix.Edges()
	debts := make([]api.Debt, len(edges))
	for i, e := range edges {
		debts[i] = api.Debt{From: e.From, To: e.To, Amount: e.Amount}
	}
	return connect.NewResponse(&api.GetDebtMatrixResponse{Matrix: matrix.Map(), Debts: debts}), nil
}

func (s *TripService) GetTripStats(ctx context.Context, req *connect.Request[api.GetTripStatsRequest]) (*connect.Response[api.GetTripStatsResponse], error) {
	stats, err := s.ledger.GetTripStats(ctx, req.Msg.TripID)
	if err != nil {
		return nil, toConnectError("GetTripStats", err)
	}
	return connect.NewResponse(&api.GetTripStatsResponse{Stats: api.TripStats{
		TotalExpenses:    stats.TotalExpenses,
		TotalTransfers:   stats.TotalTransfers,
		ExpenseCount:     stats.ExpenseCount,
		TransferCount:    stats.TransferCount,
		ParticipantCount: stats.ParticipantCount,
		AveragePerPerson: stats.AveragePerPerson,
	}}), nil
}

// Export returns every trip in the backup envelope.
func (s *TripService) Export(ctx context.Context, req *connect.Request[api.ExportRequest]) (*connect.Response[api.ExportResponse], error) {
	export, err := s.ledger.Export(ctx)
	if err != nil {
		return nil, toConnectError("Export", err)
	}
	return connect.NewResponse(&api.ExportResponse{Data: ExportToAPI(export)}), nil
}

// Import restores a backup envelope.
func (s *TripService) Import(ctx context.Context, req *connect.Request[api.ImportRequest]) (*connect.Response[api.ImportResponse], error) {
	mode, err := ledger.ParseImportMode(req.Msg.Mode)
	if err != nil {
		return nil, toConnectError("Import", err)
	}
	n, err := s.ledger.Import(ctx, ExportFromAPI(req.Msg.Data), mode)
	if err != nil {
		return nil, toConnectError("Import", err)
	}
	return connect.NewResponse(&api.ImportResponse{Imported: n}), nil
}
