package commands

import (
	"errors"
	"fmt"
	osexec "os/exec"

	"github.com/systmms/opz/internal/backend"
	"github.com/systmms/opz/internal/cache"
	"github.com/systmms/opz/internal/dotenv"
	dserrors "github.com/systmms/opz/internal/errors"
	"github.com/systmms/opz/internal/execenv"
	"github.com/systmms/opz/internal/resolve"
)

// UserFacing converts domain errors into errors with a suggestion for the
// person at the terminal. Unknown errors are returned unchanged.
func UserFacing(err error) error {
	if err == nil {
		return nil
	}

	var (
		userErr   dserrors.UserError
		cfgErr    dserrors.ConfigError
		be        *backend.BackendError
		notFound  *resolve.NotFoundError
		ambiguous *resolve.AmbiguousTitleError
		noVault   *resolve.VaultRequiredError
		corrupt   *cache.CorruptError
		malformed *dotenv.MalformedSourceError
		launch    *execenv.LaunchError
	)

	switch {
	case errors.As(err, &userErr), errors.As(err, &cfgErr):
		return err
	case errors.As(err, &be):
		if errors.Is(be.Err, osexec.ErrNotFound) {
			return dserrors.WrapCommandNotFound(be.Program, be.Err)
		}
		return dserrors.UserError{
			Message:    fmt.Sprintf("Backend %s call failed", be.Op),
			Details:    be.Error(),
			Suggestion: dserrors.BackendSuggestion(be.Stderr),
			Err:        err,
		}
	case errors.As(err, &notFound):
		return dserrors.UserError{
			Message:    notFound.Error(),
			Suggestion: fmt.Sprintf("Search titles with 'opz find %s' or check --vault", notFound.Title),
			Err:        err,
		}
	case errors.As(err, &ambiguous):
		msg := ambiguous.Error()
		if ambiguous.Total > len(ambiguous.Candidates) {
			msg += fmt.Sprintf(", showing the first %d", len(ambiguous.Candidates))
		}
		return dserrors.UserError{
			Message:    msg,
			Suggestion: "Be more specific, or use 'opz find <query>' and pass the exact title",
			Err:        err,
		}
	case errors.As(err, &noVault):
		return dserrors.UserError{
			Message:    noVault.Error(),
			Suggestion: "Pass --vault to select the vault explicitly",
			Err:        err,
		}
	case errors.As(err, &corrupt):
		return dserrors.UserError{
			Message:    "The item list cache is corrupt",
			Details:    corrupt.Error(),
			Suggestion: "Run 'opz cache clear' and try again",
			Err:        err,
		}
	case errors.As(err, &malformed):
		return dserrors.UserError{
			Message:    fmt.Sprintf("Cannot read %s", malformed.Path),
			Details:    malformed.Err.Error(),
			Suggestion: "Check the file path and permissions",
			Err:        err,
		}
	case errors.As(err, &launch):
		if errors.Is(launch.Err, osexec.ErrNotFound) {
			return dserrors.WrapCommandNotFound(launch.Command, launch.Err)
		}
		return dserrors.CommandError{
			Command:    launch.Command,
			Message:    launch.Err.Error(),
			Suggestion: "Check that the command is executable",
		}
	}
	return err
}

func configError(field string, value interface{}, err error) error {
	return dserrors.ConfigError{
		Field:   field,
		Value:   value,
		Message: err.Error(),
	}
}

func usageError(message, usage string) error {
	return dserrors.UserError{
		Message:    message,
		Suggestion: "Usage: " + usage,
	}
}
