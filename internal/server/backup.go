package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/mmynk/travelsplit/internal/ledger"
	"github.com/mmynk/travelsplit/internal/models"
	"github.com/mmynk/travelsplit/internal/service"
	"github.com/mmynk/travelsplit/pkg/api"
)

type importResult struct {
	Imported int `json:"imported"`
}

type errorBody struct {
	Error string `json:"error"`
}

// handleExport downloads every trip as travelsplit-backup-YYYY-MM-DD.json.
func (s *server) handleExport(w http.ResponseWriter, r *http.Request) {
	export, err := s.ledger.Export(r.Context())
	if err != nil {
		slog.Error("Export failed", "error", err)
		writeError(w, http.StatusInternalServerError, errors.New("export failed"))
		return
	}

	filename := fmt.Sprintf("travelsplit-backup-%s.json", export.ExportDate.Format("2006-01-02"))
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	writeJSON(w, http.StatusOK, service.ExportToAPI(export))
}

// handleImport restores an uploaded backup. ?mode= is replace (default) or append.
func (s *server) handleImport(w http.ResponseWriter, r *http.Request) {
	var data api.ExportData
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxImportBytes))
	if err := dec.Decode(&data); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid backup file: %w", err))
		return
	}
	s.importData(w, r, &data)
}

func (s *server) importData(w http.ResponseWriter, r *http.Request, data *api.ExportData) {
	mode, err := ledger.ParseImportMode(r.URL.Query().Get("mode"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	n, err := s.ledger.Import(r.Context(), service.ExportFromAPI(data), mode)
	if err != nil {
		if models.IsValidation(err) {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		slog.Error("Import failed", "mode", mode, "error", err)
		writeError(w, http.StatusInternalServerError, errors.New("import failed"))
		return
	}

	writeJSON(w, http.StatusOK, importResult{Imported: n})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("Failed to write response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorBody{Error: err.Error()})
}
