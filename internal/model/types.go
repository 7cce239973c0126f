package model

import (
	"fmt"
	"math"
)

// MillimetersPerMeter is the fixed conversion factor between the input
// and output units.
const MillimetersPerMeter = 1000

// Meters is a length in meters, stored in single precision.
type Meters float32

// Millimeters is a length in millimeters, stored in single precision.
type Millimeters float32

// IsFinite reports whether the length is neither infinite nor NaN.
func (m Meters) IsFinite() bool {
	return isFinite32(float32(m))
}

// IsFinite reports whether the length is neither infinite nor NaN.
func (mm Millimeters) IsFinite() bool {
	return isFinite32(float32(mm))
}

func isFinite32(v float32) bool {
	f := float64(v)
	return !math.IsInf(f, 0) && !math.IsNaN(f)
}

// Conversion is the result of a single meters-to-millimeters conversion.
// It doubles as the JSON document printed by the --json flag.
type Conversion struct {
	// Input is the parsed command-line value.
	Input Meters `json:"meters"`

	// Output is Input multiplied by MillimetersPerMeter.
	Output Millimeters `json:"millimeters"`
}

// Validate checks that both sides of the conversion are finite numbers.
func (c Conversion) Validate() error {
	if !c.Input.IsFinite() {
		return fmt.Errorf("conversion: input %v is not a finite number", float32(c.Input))
	}
	if !c.Output.IsFinite() {
		return fmt.Errorf("conversion: output for %v m overflows single precision", float32(c.Input))
	}
	return nil
}

// ExitCode defines the process exit codes of the CLI.
// These codes allow scripts to programmatically determine
// the outcome of a command.
type ExitCode int

const (
	// ExitSuccess indicates the conversion was written successfully.
	ExitSuccess ExitCode = 0

	// ExitGeneralError indicates an unspecified error occurred.
	ExitGeneralError ExitCode = 1

	// ExitUsage indicates the positional argument was missing or
	// more than one was given.
	ExitUsage ExitCode = 2

	// ExitParseError indicates the argument is not a valid decimal number.
	ExitParseError ExitCode = 3

	// ExitIOError indicates the output file could not be opened,
	// written or closed.
	ExitIOError ExitCode = 4

	// ExitConfigError indicates the config file is missing or malformed.
	ExitConfigError ExitCode = 5
)

// String returns the symbolic name of the exit code.
func (c ExitCode) String() string {
	switch c {
	case ExitSuccess:
		return "success"
	case ExitGeneralError:
		return "general-error"
	case ExitUsage:
		return "usage"
	case ExitParseError:
		return "parse-error"
	case ExitIOError:
		return "io-error"
	case ExitConfigError:
		return "config-error"
	default:
		return fmt.Sprintf("exit-%d", int(c))
	}
}

// CLIError is a custom error type that carries an exit code.
// This allows the CLI layer to translate domain errors into
// appropriate process exit codes.
type CLIError struct {
	// Code is the exit code to return to the OS.
	Code ExitCode

	// Message is the human-readable error description.
	Message string

	// Err is the underlying error, if any.
	Err error
}

// Error satisfies the error interface. It returns the human-readable
// error message, optionally including the underlying error.
func (e *CLIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for use with errors.Is/errors.As.
func (e *CLIError) Unwrap() error {
	return e.Err
}

// NewCLIError creates a new CLIError with the given exit code and message.
func NewCLIError(code ExitCode, message string) *CLIError {
	return &CLIError{Code: code, Message: message}
}

// WrapCLIError creates a new CLIError that wraps an existing error.
func WrapCLIError(code ExitCode, message string, err error) *CLIError {
	return &CLIError{Code: code, Message: message, Err: err}
}
