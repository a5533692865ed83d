package cli

import "fmt"

// ConfigError reports a problem found while assembling the proxy's runtime
// from configuration. Field holds the dotted config path when the problem
// maps to one ("signing.sweep_schedule"); load-wide failures leave it empty.
type ConfigError struct {
	Field   string
	Message string
}

// NewConfigError creates a ConfigError for the given config path.
func NewConfigError(field, message string) *ConfigError {
	return &ConfigError{Field: field, Message: message}
}

func (e *ConfigError) Error() string {
	if e.Field == "" {
		return "invalid configuration: " + e.Message
	}
	return fmt.Sprintf("invalid configuration at %s: %s", e.Field, e.Message)
}

// CommandError marks a failure with the subcommand it came from, so the
// entry point prints "run failed: ..." while errors.Is and errors.As still
// reach the underlying cause.
type CommandError struct {
	Command string
	Err     error
}

// NewCommandError wraps err with the failing subcommand's name.
func NewCommandError(command string, err error) *CommandError {
	return &CommandError{Command: command, Err: err}
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Command, e.Err)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}
