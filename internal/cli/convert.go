// Package cli — convert.go implements the conversion performed by the
// root command.
//
// The flow is linear: resolve settings (defaults, then config file, then
// flags), parse the argument, multiply by 1000, write the result file and
// print the result. The argument is parsed before anything is written, so
// a bad argument never creates or truncates the output file.
package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shinji-kodama/convert-units/internal/config"
	"github.com/shinji-kodama/convert-units/internal/convert"
	"github.com/shinji-kodama/convert-units/internal/model"
)

// convertFlags holds the flag values for the root command.
// These are bound to cobra flags in NewRootCommand.
type convertFlags struct {
	// output is the path of the result file.
	output string

	// lenient selects atof-style parsing.
	lenient bool

	// configPath is an optional config file. Empty means defaults only.
	configPath string
}

// runConvert is the main logic function of the root command.
func runConvert(cmd *cobra.Command, flags *convertFlags, arg string) error {
	// Step 1: Resolve the effective settings.
	cfg, err := resolveConfig(cmd, flags)
	if err != nil {
		return err
	}
	VerboseLog("Output file: %s (lenient=%t, json=%t)", cfg.Output, cfg.Lenient, cfg.JSON)

	// Step 2: Parse and convert. Nothing has been written yet.
	conv, err := convert.Convert(arg, convert.Options{Lenient: cfg.Lenient})
	if err != nil {
		var perr *convert.ParseError
		if errors.As(err, &perr) {
			return model.WrapCLIError(model.ExitParseError,
				fmt.Sprintf("cannot convert %q", arg), perr.Err)
		}
		return model.WrapCLIError(model.ExitParseError, fmt.Sprintf("cannot convert %q", arg), err)
	}
	VerboseLog("Converted %s m to %s mm", convert.Format(float32(conv.Input)), convert.Format(float32(conv.Output)))

	// Step 3: Write the file, then stdout.
	if err := convert.WriteResult(cfg.Output, cmd.OutOrStdout(), conv, cfg.JSON); err != nil {
		return model.WrapCLIError(model.ExitIOError, "failed to write result", err)
	}
	VerboseLog("Wrote %s", cfg.Output)

	return nil
}

// resolveConfig merges defaults, the optional config file and explicitly
// set flags, in increasing order of precedence.
func resolveConfig(cmd *cobra.Command, flags *convertFlags) (*config.Config, error) {
	cfg := config.Default()
	if flags.configPath != "" {
		loaded, err := config.Load(flags.configPath)
		if err != nil {
			return nil, err // Load already returns CLIError with ExitConfigError
		}
		VerboseLog("Loaded config file %s", flags.configPath)
		cfg = loaded
	}

	if cmd.Flags().Changed("output") {
		cfg.Output = flags.output
	}
	if cmd.Flags().Changed("lenient") {
		cfg.Lenient = flags.lenient
	}
	if cmd.Flags().Changed("json") {
		cfg.JSON = IsJSONOutput()
	}
	// Errors from here on are rendered in the same format as the result,
	// so a config file with "json: true" also yields JSON errors.
	jsonOutput = cfg.JSON

	if err := cfg.Validate(); err != nil {
		return nil, model.WrapCLIError(model.ExitUsage, "invalid --output", err)
	}
	return cfg, nil
}
