package service

import (
	"errors"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/travelsplit/internal/models"
)

// toConnectError maps ledger errors onto Connect codes. Anything that is not
// a validation or not-found error is an internal failure and is logged.
func toConnectError(op string, err error) error {
	switch {
	case models.IsValidation(err):
		slog.Warn(op+" rejected", "error", err)
		return connect.NewError(connect.CodeInvalidArgument, err)
	case errors.Is(err, models.ErrNotFound):
		slog.Warn(op+" failed", "error", err)
		return connect.NewError(connect.CodeNotFound, err)
	default:
		slog.Error(op+" failed", "error", err)
		return connect.NewError(connect.CodeInternal, err)
	}
}
