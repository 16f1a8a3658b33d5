package analyses

import (
	"context"
	"errors"

	"legal-backend/internal/intake"
	"legal-backend/internal/legal"
)

var ErrNotFound = errors.New("not found")

const (
	ErrorCodeUnavailable    = "ANALYSIS_UNAVAILABLE"
	ErrorCodeTimeout        = "ANALYSIS_TIMEOUT"
	ErrorCodeCanceled       = "ANALYSIS_CANCELED"
	ErrorCodeSchemaMismatch = "SCHEMA_MISMATCH"
	ErrorCodeSuperseded     = "SUPERSEDED"
)

// errorCode maps an analysis failure onto a stable code stored with the record.
func errorCode(err error) string {
	var verr *legal.ValidationError
	switch {
	case errors.Is(err, intake.ErrSuperseded):
		return ErrorCodeSuperseded
	case errors.Is(err, context.DeadlineExceeded):
		return ErrorCodeTimeout
	case errors.Is(err, context.Canceled):
		return ErrorCodeCanceled
	case errors.As(err, &verr):
		return ErrorCodeSchemaMismatch
	default:
		return ErrorCodeUnavailable
	}
}
