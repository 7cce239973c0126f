// Package config loads the optional convert-units config file.
//
// Both YAML and JSON are accepted. JSON files may contain comments and
// trailing commas (JSONC), which are stripped with github.com/tidwall/jsonc
// before parsing with encoding/json. YAML files are parsed with
// gopkg.in/yaml.v3. The format is chosen by file extension.
package config
