package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/shinji-kodama/convert-units/internal/convert"
	"github.com/shinji-kodama/convert-units/internal/model"
)

// Config holds the settings that can be provided through a config file.
// Every field has a matching command-line flag, and flags win.
type Config struct {
	// Output is the path of the result file.
	Output string `json:"output" yaml:"output"`

	// Lenient enables atof-style parsing of the argument.
	Lenient bool `json:"lenient" yaml:"lenient"`

	// JSON prints the result to stdout as a JSON document.
	JSON bool `json:"json" yaml:"json"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{Output: convert.DefaultOutputPath}
}

// Load reads the config file at path. Fields absent from the file keep
// their Default values.
//
// Supported extensions:
//   - .yaml, .yml: YAML
//   - .json, .jsonc: JSON with optional comments and trailing commas
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, model.WrapCLIError(
				model.ExitConfigError,
				fmt.Sprintf("config file not found: %s", path),
				err,
			)
		}
		return nil, model.WrapCLIError(model.ExitConfigError, "failed to read config file", err)
	}

	cfg := Default()
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, model.WrapCLIError(model.ExitConfigError,
				fmt.Sprintf("failed to parse config file %s", path), err)
		}
	case ".json", ".jsonc":
		if err := json.Unmarshal(jsonc.ToJSON(data), cfg); err != nil {
			return nil, model.WrapCLIError(model.ExitConfigError,
				fmt.Sprintf("failed to parse config file %s", path), err)
		}
	default:
		return nil, model.NewCLIError(model.ExitConfigError,
			fmt.Sprintf("unsupported config file extension %q (valid: .yaml, .yml, .json, .jsonc)", ext))
	}

	if err := cfg.Validate(); err != nil {
		return nil, model.WrapCLIError(model.ExitConfigError,
			fmt.Sprintf("invalid config file %s", path), err)
	}
	return cfg, nil
}

// Validate checks that the output path names a file.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Output) == "" {
		return fmt.Errorf("output path must not be empty")
	}
	if strings.HasSuffix(c.Output, "/") || strings.HasSuffix(c.Output, string(filepath.Separator)) {
		return fmt.Errorf("output path %q names a directory", c.Output)
	}
	return nil
}
