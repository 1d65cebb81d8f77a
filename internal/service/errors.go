package service

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/RubachokBoss/kattis-report/internal/config"
	"github.com/RubachokBoss/kattis-report/internal/models"
	"github.com/RubachokBoss/kattis-report/internal/service/integration"
)

// Error kinds. Every one of them ends the run with exit code 1.
var (
	// Configuration.
	ErrConfigMissing = config.ErrConfigMissing
	ErrConfigInvalid = config.ErrConfigInvalid

	// Kattis.
	ErrAuthFailed        = errors.New("login failed")
	ErrTransport         = integration.ErrTransport
	ErrUnexpectedStatus  = integration.ErrUnexpectedStatus
	ErrStandingsNotFound = errors.New("standings table not found")

	// Report data.
	ErrMalformedExport   = models.ErrMalformedExport
	ErrDataInconsistency = errors.New("course export is inconsistent")
)

// AuthError is a non-200 login response.
type AuthError struct {
	StatusCode int
}

func (e *AuthError) Error() string {
	switch e.StatusCode {
	case http.StatusForbidden:
		return "Incorrect username or password/token (403)"
	case http.StatusNotFound:
		return "Incorrect login URL (404)"
	default:
		return fmt.Sprintf("Status code: %d", e.StatusCode)
	}
}

func (e *AuthError) Unwrap() error {
	return ErrAuthFailed
}

// InconsistencyError is a reference in a course export that does not resolve.
type InconsistencyError struct {
	Kind string
	Ref  string
}

func (e *InconsistencyError) Error() string {
	return fmt.Sprintf("%s: unknown %s %q", ErrDataInconsistency, e.Kind, e.Ref)
}

func (e *InconsistencyError) Unwrap() error {
	return ErrDataInconsistency
}
