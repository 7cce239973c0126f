// Package cli implements the cobra-based command line of convert-units.
//
// The tool has a single command, so the root command does the work itself
// (see convert.go). This file defines the root command, its global flags,
// and the translation of errors into exit codes.
package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/spf13/cobra"

	"github.com/shinji-kodama/convert-units/internal/convert"
	"github.com/shinji-kodama/convert-units/internal/model"
)

// Global flag variables. They are bound to persistent flags on the root
// command in NewRootCommand.
var (
	// jsonOutput controls whether output (results and errors) is JSON.
	// resolveConfig also sets it from the config file's "json" key.
	jsonOutput bool

	// verbose enables [verbose] diagnostics on stderr.
	verbose bool

	// logOutput is where VerboseLog writes. It follows the command's
	// stderr so tests can capture it.
	logOutput io.Writer = os.Stderr
)

// version, commit, and date are set at build time via ldflags.
// They are injected from the main package to display version information.
var (
	// Version is the semantic version of the binary (e.g., "1.0.0").
	Version = "dev"

	// Commit is the Git commit hash the binary was built from.
	Commit = "none"

	// Date is the build timestamp.
	Date = "unknown"
)

// NewRootCommand creates and configures the root cobra command.
func NewRootCommand() *cobra.Command {
	flags := &convertFlags{}

	rootCmd := &cobra.Command{
		Use:   "convert-units <meters>",
		Short: "Convert a length from meters to millimeters",
		Long: `convert-units multiplies a length given in meters by 1000 and writes the
result in millimeters to an output file (test.txt by default) and to stdout.

Examples:
  convert-units 1
  convert-units -2
  convert-units 3.14159 --output result.txt
  convert-units --json 0.5`,

		Args: exactlyOneLength,

		// SilenceUsage keeps cobra from dumping the full usage text on
		// every failed conversion; the error message already says what
		// went wrong.
		SilenceUsage: true,

		// SilenceErrors stops cobra from printing errors itself. Run
		// prints them in text or JSON form depending on --json.
		SilenceErrors: true,

		// Version is displayed when the --version flag is used.

		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, Date),

		// Point VerboseLog at the command's stderr, which tests replace
		// with a buffer via SetErr.
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logOutput = cmd.ErrOrStderr()
		},

		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(cmd, flags, args[0])
		},
	}

	// PersistentFlags would also reach subcommands; the convert flags
	// below are local because they only make sense for a conversion.
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")

	rootCmd.Flags().StringVarP(&flags.output, "output", "o", convert.DefaultOutputPath, "Path of the result file")
	rootCmd.Flags().BoolVar(&flags.lenient, "lenient", false,
		"Parse like atof: malformed input becomes 0 instead of an error")
	rootCmd.Flags().StringVar(&flags.configPath, "config", "",
		"Config file (.yaml, .yml, .json, .jsonc)")

	// Unknown or malformed flags are usage errors, not general failures.
	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return model.WrapCLIError(model.ExitUsage, "invalid flag", err)
	})

	return rootCmd
}

// exactlyOneLength is the positional argument validator of the root command.
func exactlyOneLength(cmd *cobra.Command, args []string) error {
	switch {
	case len(args) == 0:
		return model.NewCLIError(model.ExitUsage, "missing <meters> argument (usage: convert-units <meters>)")
	case len(args) > 1:
		return model.NewCLIError(model.ExitUsage,
			fmt.Sprintf("expected exactly one <meters> argument, got %d", len(args)))
	}
	return nil
}

// Execute runs the root command with the process arguments and exits with
// the resulting code when it is not zero.
// This is the main entry point called from main.go.
func Execute(rootCmd *cobra.Command) {
	if code := Run(rootCmd, os.Args[1:]); code != model.ExitSuccess {
		os.Exit(int(code))
	}
}

// Run executes rootCmd with args, prints any error to the command's stderr
// and returns the exit code for the outcome.
func Run(rootCmd *cobra.Command, args []string) model.ExitCode {
	// cobra falls back to os.Args when given a nil slice.
	normalized := normalizeArgs(args)
	if normalized == nil {
		normalized = []string{}
	}
	rootCmd.SetArgs(normalized)

	err := rootCmd.Execute()
	if err == nil {
		return model.ExitSuccess
	}

	// CLIError carries its own exit code. errors.As rather than a type
	// assertion, so a CLIError wrapped by cobra or a caller is still found.
	var cliErr *model.CLIError
	if errors.As(err, &cliErr) {
		printError(rootCmd.ErrOrStderr(), cliErr.Message, cliErr.Err)
		return cliErr.Code
	}

	// Anything else is unexpected and maps to the generic failure code.
	printError(rootCmd.ErrOrStderr(), err.Error(), nil)
	return model.ExitGeneralError
}

// valueFlags are the long flags that consume the following token as their
// value when written without "=".
var valueFlags = map[string]bool{
	"--output": true,
	"--config": true,
}

// shorthandValueRegex matches a shorthand cluster whose last flag is -o,
// such as "-o" or "-vo". pflag hands the next token to -o as its value.
var shorthandValueRegex = regexp.MustCompile(`^-[A-Za-z]*o$`)

// takesValue reports whether arg is a flag that consumes the next token.
func takesValue(arg string) bool {
	return valueFlags[arg] || shorthandValueRegex.MatchString(arg)
}

// isNegativeNumber reports whether arg is a negative decimal literal that
// pflag would otherwise parse as a cluster of shorthand flags.
func isNegativeNumber(arg string) bool {
	return strings.HasPrefix(arg, "-") && convert.IsDecimal(arg)
}

// normalizeArgs moves negative-number positionals behind a "--" terminator
// so that "convert-units -2" converts -2 meters. Tokens already after a
// "--", and values of flags such as "-o", are left in place.
func normalizeArgs(args []string) []string {
	var (
		rest      []string
		negatives []string
	)
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			rest = append(rest, args[i:]...)
			break
		}
		// Flag values are never moved, even when they look numeric:
		// in "-o -2 5" the file is named "-2".
		if takesValue(arg) && i+1 < len(args) {
			rest = append(rest, arg, args[i+1])
			i++
			continue
		}
		if isNegativeNumber(arg) {
			negatives = append(negatives, arg)
			continue
		}
		rest = append(rest, arg)
	}

	if len(negatives) == 0 {
		return rest
	}

	// Insert the negatives right after an existing terminator, or append
	// a new one.
	for i, arg := range rest {
		if arg == "--" {
			out := make([]string, 0, len(rest)+len(negatives))
			out = append(out, rest[:i+1]...)
			out = append(out, negatives...)
			return append(out, rest[i+1:]...)
		}
	}
	out := append(rest, "--")
	return append(out, negatives...)
}

// printError outputs an error message in the appropriate format
// (JSON or text) based on jsonOutput, which is set by --json or by the
// "json" key of the config file.
func printError(w io.Writer, message string, underlying error) {
	if jsonOutput {
		errObj := map[string]interface{}{
			"error": map[string]interface{}{
				"message": message,
			},
		}
		if underlying != nil {
			if errMap, ok := errObj["error"].(map[string]interface{}); ok {
				errMap["detail"] = underlying.Error()
			}
		}
		// Errors go to stderr even in JSON mode, because stdout is
		// reserved for the conversion result.
		data, _ := json.MarshalIndent(errObj, "", "  ")
		fmt.Fprintln(w, string(data))
	} else {
		if underlying != nil {
			fmt.Fprintf(w, "Error: %s: %v\n", message, underlying)
		} else {
			fmt.Fprintf(w, "Error: %s\n", message)
		}
	}
}

// VerboseLog prints a message to stderr only when verbose mode is enabled.
func VerboseLog(format string, args ...interface{}) {
	if verbose {
		fmt.Fprintf(logOutput, "[verbose] "+format+"\n", args...)
	}
}

// IsJSONOutput returns whether the --json flag is set.
func IsJSONOutput() bool {
	return jsonOutput
}
