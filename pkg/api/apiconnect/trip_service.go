// Package apiconnect wires the travelsplit.v1.TripService messages to Connect
// handlers and clients.
package apiconnect

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/travelsplit/pkg/api"
)

// TripServiceName is the fully-qualified name of the TripService service.
const TripServiceName = "travelsplit.v1.TripService"

// Procedure paths, relative to the server root.
const (
	TripServiceCreateTripProcedure        = "/travelsplit.v1.TripService/CreateTrip"
	TripServiceGetTripProcedure           = "/travelsplit.v1.TripService/GetTrip"
	TripServiceListTripsProcedure         = "/travelsplit.v1.TripService/ListTrips"
	TripServiceUpdateTripProcedure        = "/travelsplit.v1.TripService/UpdateTrip"
	TripServiceDeleteTripProcedure        = "/travelsplit.v1.TripService/DeleteTrip"
	TripServiceAddParticipantProcedure    = "/travelsplit.v1.TripService/AddParticipant"
	TripServiceRemoveParticipantProcedure = "/travelsplit.v1.TripService/RemoveParticipant"
	TripServiceAddExpenseProcedure        = "/travelsplit.v1.TripService/AddExpense"
	TripServiceAddTransferProcedure       = "/travelsplit.v1.TripService/AddTransfer"
	TripServiceDeleteExpenseProcedure     = "/travelsplit.v1.TripService/DeleteExpense"
	TripServiceDeleteTransferProcedure    = "/travelsplit.v1.TripService/DeleteTransfer"
	TripServiceGetBalancesProcedure       = "/travelsplit.v1.TripService/GetBalances"
	TripServiceGetDebtMatrixProcedure     = "/travelsplit.v1.TripService/GetDebtMatrix"
	TripServiceGetTripStatsProcedure      = "/travelsplit.v1.TripService/GetTripStats"
	TripServiceExportProcedure            = "/travelsplit.v1.TripService/Export"
	TripServiceImportProcedure            = "/travelsplit.v1.TripService/Import"
)

// TripServiceHandler is implemented by the server.
type TripServiceHandler interface {
	CreateTrip(context.Context, *connect.Request[api.CreateTripRequest]) (*connect.Response[api.CreateTripResponse], error)
	GetTrip(context.Context, *connect.Request[api.GetTripRequest]) (*connect.Response[api.GetTripResponse], error)
	ListTrips(context.Context, *connect.Request[api.ListTripsRequest]) (*connect.Response[api.ListTripsResponse], error)
	UpdateTrip(context.Context, *connect.Request[api.UpdateTripRequest]) (*connect.Response[api.UpdateTripResponse], error)
	DeleteTrip(context.Context, *connect.Request[api.DeleteTripRequest]) (*connect.Response[api.DeleteTripResponse], error)
	AddParticipant(context.Context, *connect.Request[api.AddParticipantRequest]) (*connect.Response[api.AddParticipantResponse], error)
	RemoveParticipant(context.Context, *connect.Request[api.RemoveParticipantRequest]) (*connect.Response[api.RemoveParticipantResponse], error)
	AddExpense(context.Context, *connect.Request[api.AddExpenseRequest]) (*connect.Response[api.AddExpenseResponse], error)
	AddTransfer(context.Context, *connect.Request[api.AddTransferRequest]) (*connect.Response[api.AddTransferResponse], error)
	DeleteExpense(context.Context, *connect.Request[api.DeleteExpenseRequest]) (*connect.Response[api.DeleteExpenseResponse], error)
	DeleteTransfer(context.Context, *connect.Request[api.DeleteTransferRequest]) (*connect.Response[api.DeleteTransferResponse], error)
	GetBalances(context.Context, *connect.Request[api.GetBalancesRequest]) (*connect.Response[api.GetBalancesResponse], error)
	GetDebtMatrix(context.Context, *connect.Request[api.GetDebtMatrixRequest]) (*connect.Response[api.GetDebtMatrixResponse], error)
	GetTripStats(context.Context, *connect.Request[api.GetTripStatsRequest]) (*connect.Response[api.GetTripStatsResponse], error)
	Export(context.Context, *connect.Request[api.ExportRequest]) (*connect.Response[api.ExportResponse], error)
	Import(context.Context, *connect.Request[api.ImportRequest]) (*connect.Response[api.ImportResponse], error)
}

// NewTripServiceHandler builds an HTTP handler for every TripService
// procedure. It returns the path to mount the handler on. The JSON codec is
// always installed; opts are applied after it.
func NewTripServiceHandler(svc TripServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(Codec{})}, opts...)

	handlers := map[string]http.Handler{
		TripServiceCreateTripProcedure:        connect.NewUnaryHandler(TripServiceCreateTripProcedure, svc.CreateTrip, opts...),
		TripServiceGetTripProcedure:           connect.NewUnaryHandler(TripServiceGetTripProcedure, svc.GetTrip, opts...),
		TripServiceListTripsProcedure:         connect.NewUnaryHandler(TripServiceListTripsProcedure, svc.ListTrips, opts...),
		TripServiceUpdateTripProcedure:        connect.NewUnaryHandler(TripServiceUpdateTripProcedure, svc.UpdateTrip, opts...),
		TripServiceDeleteTripProcedure:        connect.NewUnaryHandler(TripServiceDeleteTripProcedure, svc.DeleteTrip, opts...),
		TripServiceAddParticipantProcedure:    connect.NewUnaryHandler(TripServiceAddParticipantProcedure, svc.AddParticipant, opts...),
		TripServiceRemoveParticipantProcedure: connect.NewUnaryHandler(TripServiceRemoveParticipantProcedure, svc.RemoveParticipant, opts...),
		TripServiceAddExpenseProcedure:        connect.NewUnaryHandler(TripServiceAddExpenseProcedure, svc.AddExpense, opts...),
		TripServiceAddTransferProcedure:       connect.NewUnaryHandler(TripServiceAddTransferProcedure, svc.AddTransfer, opts...),
		TripServiceDeleteExpenseProcedure:     connect.NewUnaryHandler(TripServiceDeleteExpenseProcedure, svc.DeleteExpense, opts...),
		TripServiceDeleteTransferProcedure:    connect.NewUnaryHandler(TripServiceDeleteTransferProcedure, svc.DeleteTransfer, opts...),
		TripServiceGetBalancesProcedure:       connect.NewUnaryHandler(TripServiceGetBalancesProcedure, svc.GetBalances, opts...),
		TripServiceGetDebtMatrixProcedure:     connect.NewUnaryHandler(TripServiceGetDebtMatrixProcedure, svc.GetDebtMatrix, opts...),
		TripServiceGetTripStatsProcedure:      connect.NewUnaryHandler(TripServiceGetTripStatsProcedure, svc.GetTripStats, opts...),
		TripServiceExportProcedure:            connect.NewUnaryHandler(TripServiceExportProcedure, svc.Export, opts...),
		TripServiceImportProcedure:            connect.NewUnaryHandler(TripServiceImportProcedure, svc.Import, opts...),
	}

	return "/" + TripServiceName + "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h, ok := handlers[r.URL.Path]; ok {
			h.ServeHTTP(w, r)
			return
		}
		http.NotFound(w, r)
	})
}

// TripServiceClient calls TripService over Connect.
type TripServiceClient struct {
	createTrip        *connect.Client[api.CreateTripRequest, api.CreateTripResponse]
	getTrip           *connect.Client[api.GetTripRequest, api.GetTripResponse]
	listTrips         *connect.Client[api.ListTripsRequest, api.ListTripsResponse]
	updateTrip        *connect.Client[api.UpdateTripRequest, api.UpdateTripResponse]
	deleteTrip        *connect.Client[api.DeleteTripRequest, api.DeleteTripResponse]
	addParticipant    *connect.Client[api.AddParticipantRequest, api.AddParticipantResponse]
	removeParticipant *connect.Client[api.RemoveParticipantRequest, api.RemoveParticipantResponse]
	addExpense        *connect.Client[api.AddExpenseRequest, api.AddExpenseResponse]
	addTransfer       *connect.Client[api.AddTransferRequest, api.AddTransferResponse]
	deleteExpense     *connect.Client[api.DeleteExpenseRequest, api.DeleteExpenseResponse]
	deleteTransfer    *connect.Client[api.DeleteTransferRequest, api.DeleteTransferResponse]
	getBalances       *connect.Client[api.GetBalancesRequest, api.GetBalancesResponse]
	getDebtMatrix     *connect.Client[api.GetDebtMatrixRequest, api.GetDebtMatrixResponse]
	getTripStats      *connect.Client[api.GetTripStatsRequest, api.GetTripStatsResponse]
	export            *connect.Client[api.ExportRequest, api.ExportResponse]
	importData        *connect.Client[api.ImportRequest, api.ImportResponse]
}

// NewTripServiceClient returns a client for the server at baseURL, for
// example http://localhost:8080. Requests use the JSON codec.
func NewTripServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *TripServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{connect.WithCodec(Codec{})}, opts...)
	return &TripServiceClient{
		createTrip:        connect.NewClient[api.CreateTripRequest, api.CreateTripResponse](httpClient, baseURL+TripServiceCreateTripProcedure, opts...),
		getTrip:           connect.NewClient[api.GetTripRequest, api.GetTripResponse](httpClient, baseURL+TripServiceGetTripProcedure, opts...),
		listTrips:         connect.NewClient[api.ListTripsRequest, api.ListTripsResponse](httpClient, baseURL+TripServiceListTripsProcedure, opts...),
		updateTrip:        connect.NewClient[api.UpdateTripRequest, api.UpdateTripResponse](httpClient, baseURL+TripServiceUpdateTripProcedure, opts...),
		deleteTrip:        connect.NewClient[api.DeleteTripRequest, api.DeleteTripResponse](httpClient, baseURL+TripServiceDeleteTripProcedure, opts...),
		addParticipant:    connect.NewClient[api.AddParticipantRequest, api.AddParticipantResponse](httpClient, baseURL+TripServiceAddParticipantProcedure, opts...),
		removeParticipant: connect.NewClient[api.RemoveParticipantRequest, api.RemoveParticipantResponse](httpClient, baseURL+TripServiceRemoveParticipantProcedure, opts...),
		addExpense:        connect.NewClient[api.AddExpenseRequest, api.AddExpenseResponse](httpClient, baseURL+TripServiceAddExpenseProcedure, opts...),
		addTransfer:       connect.NewClient[api.AddTransferRequest, api.AddTransferResponse](httpClient, baseURL+TripServiceAddTransferProcedure, opts...),
		deleteExpense:     connect.NewClient[api.DeleteExpenseRequest, api.DeleteExpenseResponse](httpClient, baseURL+TripServiceDeleteExpenseProcedure, opts...),
		deleteTransfer:    connect.NewClient[api.DeleteTransferRequest, api.DeleteTransferResponse](httpClient, baseURL+TripServiceDeleteTransferProcedure, opts...),
		getBalances:       connect.NewClient[api.GetBalancesRequest, api.GetBalancesResponse](httpClient, baseURL+TripServiceGetBalancesProcedure, opts...),
		getDebtMatrix:     connect.NewClient[api.GetDebtMatrixRequest, api.GetDebtMatrixResponse](httpClient, baseURL+TripServiceGetDebtMatrixProcedure, opts...),
		getTripStats:      connect.NewClient[api.GetTripStatsRequest, api.GetTripStatsResponse](httpClient, baseURL+TripServiceGetTripStatsProcedure, opts...),
		export:            connect.NewClient[api.ExportRequest, api.ExportResponse](httpClient, baseURL+TripServiceExportProcedure, opts...),
		importData:        connect.NewClient[api.ImportRequest, api.ImportResponse](httpClient, baseURL+TripServiceImportProcedure, opts...),
	}
}

func (c *TripServiceClient) CreateTrip(ctx context.Context, req *connect.Request[api.CreateTripRequest]) (*connect.Response[api.CreateTripResponse], error) {
	return c.createTrip.CallUnary(ctx, req)
}

func (c *TripServiceClient) GetTrip(ctx context.Context, req *connect.Request[api.GetTripRequest]) (*connect.Response[api.GetTripResponse], error) {
	return c.getTrip.CallUnary(ctx, req)
}

func (c *TripServiceClient) ListTrips(ctx context.Context, req *connect.Request[api.ListTripsRequest]) (*connect.Response[api.ListTripsResponse], error) {
	return c.listTrips.CallUnary(ctx, req)
}

func (c *TripServiceClient) UpdateTrip(ctx context.Context, req *connect.Request[api.UpdateTripRequest]) (*connect.Response[api.UpdateTripResponse], error) {
	return c.updateTrip.CallUnary(ctx, req)
}

func (c *TripServiceClient) DeleteTrip(ctx context.Context, req *connect.Request[api.DeleteTripRequest]) (*connect.Response[api.DeleteTripResponse], error) {
	return c.deleteTrip.CallUnary(ctx, req)
}

func (c *TripServiceClient) AddParticipant(ctx context.Context, req *connect.Request[api.AddParticipantRequest]) (*connect.Response[api.AddParticipantResponse], error) {
	return c.addParticipant.CallUnary(ctx, req)
}

func (c *TripServiceClient) RemoveParticipant(ctx context.Context, req *connect.Request[api.RemoveParticipantRequest]) (*connect.Response[api.RemoveParticipantResponse], error) {
	return c.removeParticipant.CallUnary(ctx, req)
}

func (c *TripServiceClient) AddExpense(ctx context.Context, req *connect.Request[api.AddExpenseRequest]) (*connect.Response[api.AddExpenseResponse], error) {
	return c.addExpense.CallUnary(ctx, req)
}

func (c *TripServiceClient) AddTransfer(ctx context.Context, req *connect.Request[api.AddTransferRequest]) (*connect.Response[api.AddTransferResponse], error) {
	return c.addTransfer.CallUnary(ctx, req)
}

func (c *TripServiceClient) DeleteExpense(ctx context.Context, req *connect.Request[api.DeleteExpenseRequest]) (*connect.Response[api.DeleteExpenseResponse], error) {
	return c.deleteExpense.CallUnary(ctx, req)
}

func (c *TripServiceClient) DeleteTransfer(ctx context.Context, req *connect.Request[api.DeleteTransferRequest]) (*connect.Response[api.DeleteTransferResponse], error) {
	return c.deleteTransfer.CallUnary(ctx, req)
}

func (c *TripServiceClient) GetBalances(ctx context.Context, req *connect.Request[api.GetBalancesRequest]) (*connect.Response[api.GetBalancesResponse], error) {
	return c.getBalances.CallUnary(ctx, req)
}

func (c *TripServiceClient) GetDebtMatrix(ctx context.Context, req *connect.Request[api.GetDebtMatrixRequest]) (*connect.Response[api.GetDebtMatrixResponse], error) {
	return c.getDebtMatrix.CallUnary(ctx, req)
}

func (c *TripServiceClient) GetTripStats(ctx context.Context, req *connect.Request[api.GetTripStatsRequest]) (*connect.Response[api.GetTripStatsResponse], error) {
	return c.getTripStats.CallUnary(ctx, req)
}

func (c *TripServiceClient) Export(ctx context.Context, req *connect.Request[api.ExportRequest]) (*connect.Response[api.ExportResponse], error) {
	return c.export.CallUnary(ctx, req)
}

func (c *TripServiceClient) Import(ctx context.Context, req *connect.Request[api.ImportRequest]) (*connect.Response[api.ImportResponse], error) {
	return c.importData.CallUnary(ctx, req)
}
