// Package model defines the value types shared by the convert-units CLI.
//
// This package contains pure data structures with no external dependencies.
// Lengths (Meters, Millimeters) and the Conversion record are transient:
// they live for the duration of a single process run.
//
// The package also defines exit codes (ExitCode) and a custom error type
// (CLIError) that carries exit codes for proper OS process exit handling.
package model
