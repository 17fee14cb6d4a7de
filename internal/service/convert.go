package service

import (
	"github.com/mmynk/travelsplit/internal/calculator"
	"github.com/mmynk/travelsplit/internal/models"
	"github.com/mmynk/travelsplit/pkg/api"
)

func tripToAPI(t *models.Trip) *api.Trip {
	out := &api.Trip{
		ID:                t.ID,
		Name:              t.Name,
		Location:          t.Location,
		StartDate:         t.StartDate,
		EndDate:           t.EndDate,
		StartDateInferred: t.StartDateInferred,
		EndDateInferred:   t.EndDateInferred,
		Participants:      append([]string{}, t.Participants...),
		Expenses:          make([]api.Expense, len(t.Expenses)),
		Transfers:         make([]api.Transfer, len(t.Transfers)),
		CreatedAt:         t.CreatedAt,
	}
	for i, e := range t.Expenses {
		out.Expenses[i] = expenseToAPI(e)
	}
	for i, tr := range t.Transfers {
		out.Transfers[i] = transferToAPI(tr)
	}
	return out
}

func tripFromAPI(t *api.Trip) *models.Trip {
	if t == nil {
		return nil
	}
	out := &models.Trip{
		ID:                t.ID,
		Name:              t.Name,
		Location:          t.Location,
		StartDate:         t.StartDate,
		EndDate:           t.EndDate,
		StartDateInferred: t.StartDateInferred,
		EndDateInferred:   t.EndDateInferred,
		Participants:      append([]string{}, t.Participants...),
		Expenses:          make([]models.Expense, len(t.Expenses)),
		Transfers:         make([]models.Transfer, len(t.Transfers)),
		CreatedAt:         t.CreatedAt,
	}
	for i, e := range t.Expenses {
		out.Expenses[i] = models.Expense{
			ID:          e.ID,
			Payer:       e.Payer,
			Amount:      e.Amount,
			Description: e.Description,
			Date:        e.Date,
			Splits:      splitsFromAPI(e.Splits),
			CreatedAt:   e.CreatedAt,
		}
	}
	for i, tr := range t.Transfers {
		out.Transfers[i] = models.Transfer{
			ID:        tr.ID,
			From:      tr.From,
			To:        tr.To,
			Amount:    tr.Amount,
			Date:      tr.Date,
			CreatedAt: tr.CreatedAt,
		}
	}
	return out
}

func expenseToAPI(e models.Expense) api.Expense {
	splits := make([]api.Split, len(e.Splits))
	for i, s := range e.Splits {
		splits[i] = api.Split{Participant: s.Participant, Amount: s.Amount}
	}
	return api.Expense{
		ID:          e.ID,
		Payer:       e.Payer,
		Amount:      e.Amount,
		Description: e.Description,
		Date:        e.Date,
		Splits:      splits,
		CreatedAt:   e.CreatedAt,
	}
}

func splitsFromAPI(in []api.Split) []models.Split {
	if in == nil {
		return nil
	}
	out := make([]models.Split, len(in))
	for i, s := range in {
		out[i] = models.Split{Participant: s.Participant, Amount: s.Amount}
	}
	return out
}

func transferToAPI(t models.Transfer) api.Transfer {
	return api.Transfer{
		ID:        t.ID,
		From:      t.From,
		To:        t.To,
		Amount:    t.Amount,
		Date:      t.Date,
		CreatedAt: t.CreatedAt,
	}
}

func balancesToAPI(balances calculator.Balances) []api.Balance {
	out := make([]api.Balance, len(balances))
	for i, b := range balances {
		out[i] = api.Balance{
			Participant: b.Participant,
			NetBalance:  b.NetBalance,
			TotalPaid:   b.TotalPaid,
			TotalOwed:   b.TotalOwed,
			Settled:     calculator.IsSettled(b.NetBalance),
		}
	}
	return out
}

func settlementsToAPI(settlements []calculator.Settlement) []api.Settlement {
	out := make([]api.Settlement, len(settlements))
	for i, s := range settlements {
		out[i] = api.Settlement{From: s.From, To: s.To, Amount: s.Amount}
	}
	return out
}

// ExportToAPI converts a ledger export into the wire envelope.
func ExportToAPI(e *models.Export) *api.ExportData {
	trips := make([]*api.Trip, len(e.Trips))
	for i, t := range e.Trips {
		trips[i] = tripToAPI(t)
	}
	return &api.ExportData{Trips: trips, ExportDate: e.ExportDate, Version: e.Version}
}

// ExportFromAPI converts a wire envelope into a ledger export.
func ExportFromAPI(e *api.ExportData) *models.Export {
	if e == nil {
		return nil
	}
	trips := make([]*models.Trip, len(e.Trips))
	for i, t := range e.Trips {
		trips[i] = tripFromAPI(t)
	}
	return &models.Export{Trips: trips, ExportDate: e.ExportDate, Version: e.Version}
}
