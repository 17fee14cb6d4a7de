package server

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/mmynk/travelsplit/internal/service"
	"github.com/mmynk/travelsplit/pkg/api"
)

// ShareParam is the query parameter carrying a share code.
const ShareParam = "import"

var errEmptyShareCode = errors.New("missing share code")

type shareLink struct {
	// URL imports the data set when POSTed to; a GET on it is not an import.
	URL    string `json:"url"`
	Method string `json:"method"`
	Code   string `json:"code"`
}

// EncodeShareCode packs an export envelope into a URL-safe string.
func EncodeShareCode(data *api.ExportData) (string, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("failed to encode share data: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}

// DecodeShareCode reverses EncodeShareCode. Standard padded base64 is
// accepted too.
func DecodeShareCode(code string) (*api.ExportData, error) {
	if code == "" {
		return nil, errEmptyShareCode
	}
	raw, err := base64.RawURLEncoding.DecodeString(code)
	if err != nil {
		var stdErr error
		if raw, stdErr = base64.StdEncoding.DecodeString(code); stdErr != nil {
			return nil, fmt.Errorf("share code is not base64: %w", err)
		}
	}

	var data api.ExportData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("share code is not an export: %w", err)
	}
	return &data, nil
}

// handleShareLink returns a share code for the current data set and the
// /share URL that imports it when POSTed to.
func (s *server) handleShareLink(w http.ResponseWriter, r *http.Request) {
	export, err := s.ledger.Export(r.Context())
	if err != nil {
		slog.Error("Share export failed", "error", err)
		writeError(w, http.StatusInternalServerError, errors.New("export failed"))
		return
	}
	code, err := EncodeShareCode(service.ExportToAPI(export))
	if err != nil {
		slog.Error("Share encode failed", "error", err)
		writeError(w, http.StatusInternalServerError, errors.New("export failed"))
		return
	}

	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	link := url.URL{
		Scheme:   scheme,
		Host:     r.Host,
		Path:     "/share",
		RawQuery: url.Values{ShareParam: {code}}.Encode(),
	}
	writeJSON(w, http.StatusOK, shareLink{URL: link.String(), Method: http.MethodPost, Code: code})
}

// handleShareImport restores the data set carried by ?import=, or by the
// request body when the code is too long for a URL.
func (s *server) handleShareImport(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get(ShareParam)
	if code == "" {
		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxImportBytes))
		if err != nil {
			writeError(w, http.StatusRequestEntityTooLarge, err)
			return
		}
		code = strings.TrimSpace(string(body))
	}

	data, err := DecodeShareCode(code)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	s.importData(w, r, data)
}
