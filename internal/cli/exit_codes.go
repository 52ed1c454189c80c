package cli

// Exit codes for the progressdots CLI
// These codes support programmatic composition and CI/CD integration
const (
	// ExitSuccess indicates successful command execution
	ExitSuccess = 0

	// ExitFailure indicates an unexpected error, e.g. a failed terminal write
	ExitFailure = 1

	// ExitTaskFailed indicates at least one task failed on a host
	ExitTaskFailed = 2

	// ExitInvalidArguments indicates invalid command arguments
	ExitInvalidArguments = 3

	// ExitConfigError indicates an invalid configuration value
	ExitConfigError = 4

	// ExitPlaybookError indicates a missing or malformed playbook
	ExitPlaybookError = 5

	// ExitInterrupted indicates the run was interrupted by a signal
	ExitInterrupted = 130
)

// ExitError carries an exit code through cobra's error return.
type ExitError struct {
	Code int
	Err  error
	// Quiet suppresses printing, for failures the command already reported.
	Quiet bool
}

// Error implements the error interface.
func (e *ExitError) Error() string {
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *ExitError) Unwrap() error {
	return e.Err
}
