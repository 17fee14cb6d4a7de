// Package server assembles the HTTP surface: the Connect TripService, health
// and metrics endpoints, and plain-HTTP backup download and restore.
package server

import (
	"net/http"

	"connectrpc.com/connect"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/mmynk/travelsplit/internal/ledger"
	"github.com/mmynk/travelsplit/internal/metrics"
	"github.com/mmynk/travelsplit/internal/middleware"
	"github.com/mmynk/travelsplit/internal/service"
	"github.com/mmynk/travelsplit/pkg/api/apiconnect"
)

// maxImportBytes caps the body of /import and /share.
const maxImportBytes = 32 << 20

// Options tunes the router.
type Options struct {
	// CORSOrigin is sent as Access-Control-Allow-Origin. Empty means "*".
	CORSOrigin string
}

type server struct {
	ledger *ledger.Service
}

// New returns the router serving every endpoint. m may be nil, in which case
// /metrics is not mounted.
func New(l *ledger.Service, m *metrics.Metrics, opts Options) http.Handler {
	s := &server{ledger: l}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(middleware.Logging)
	r.Use(middleware.CORS(opts.CORSOrigin))

	r.Get("/healthz", s.handleHealth)
	if m != nil {
		r.Method(http.MethodGet, "/metrics", m.Handler())
	}

	r.Get("/export", s.handleExport)
	r.Post("/import", s.handleImport)
	r.Get("/share", s.handleShareLink)
	r.Post("/share", s.handleShareImport)

	path, handler := apiconnect.NewTripServiceHandler(
		service.NewTripService(l),
		connect.WithInterceptors(middleware.LoggingInterceptor(m)),
	)
	r.Mount(path, handler)

	return r
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("ok"))
}
