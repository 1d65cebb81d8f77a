package app

import (
	"errors"

	"github.com/RubachokBoss/kattis-report/internal/config"
	"github.com/RubachokBoss/kattis-report/internal/service"
	"github.com/RubachokBoss/kattis-report/internal/service/integration"
)

// ErrFileWithDump is returned when a run asks to both read the export from
// a file and dump a downloaded one.
var ErrFileWithDump = errors.New("--file and --output cannot be used together")

// ExitCode is 0 on success and 1 for every failure kind.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	return 1
}

// Describe turns a run error into the message shown to the user.
func Describe(err error) string {
	var authErr *service.AuthError
	var transportErr *integration.TransportError

	switch {
	case err == nil:
		return ""
	case errors.Is(err, service.ErrConfigMissing):
		return config.MissingConfigHelp
	case errors.Is(err, config.ErrMissingSecret):
		return config.CorruptConfigHelp
	case errors.As(err, &authErr):
		return "Login failed.\n" + authErr.Error()
	case errors.As(err, &transportErr):
		return transportErr.Error()
	default:
		return "Error: " + err.Error()
	}
}
