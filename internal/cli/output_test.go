package cli

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExitError_Error(t *testing.T) {
	err := NewExitError(ExitFailure, "2 of 5 cases failed")
	assert.Equal(t, "2 of 5 cases failed", err.Error())
}

func TestExitError_WrapsUnderlying(t *testing.T) {
	cause := errors.New("no such file")
	err := WrapExitError(ExitCommandError, "failed to load suites", cause)

	assert.Equal(t, "failed to load suites: no such file", err.Error())
	assert.ErrorIs(t, err, cause)
}

func TestGetExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"failure", NewExitError(ExitFailure, "cases failed"), ExitFailure},
		{"command_error", NewExitError(ExitCommandError, "bad config"), ExitCommandError},
		{"plain_error", errors.New("something broke"), ExitFailure},
		{"wrapped_exit_error", fmt.Errorf("outer: %w", NewExitError(ExitCommandError, "inner")), ExitCommandError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GetExitCode(tt.err))
		})
	}
}

func TestGetExitCode_WrappedCauseStillUnwraps(t *testing.T) {
	cause := errors.New("disk full")
	err := WrapExitError(ExitCommandError, "failed to open archive", cause)

	var exitErr *ExitError
	require.ErrorAs(t, error(err), &exitErr)
	assert.Equal(t, ExitCommandError, exitErr.Code)
	assert.ErrorIs(t, err, cause)
}
