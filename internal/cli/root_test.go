// Package cli — root_test.go drives the root command in-process and checks
// exit codes, stdout, stderr and the result file.
package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shinji-kodama/convert-units/internal/model"
)

// failingWriter always returns an error, simulating a closed stdout.
type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("broken pipe")
}

// runResult captures everything a single CLI invocation produced.
type runResult struct {
	code   model.ExitCode
	stdout string
	stderr string
}

// runCLI runs a fresh root command inside dir with the given arguments.
func runCLI(t *testing.T, dir string, args ...string) runResult {
	t.Helper()
	t.Chdir(dir)

	var stdout, stderr bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)

	code := Run(cmd, args)
	return runResult{code: code, stdout: stdout.String(), stderr: stderr.String()}
}

// readResult returns the content of the result file, failing if absent.
func readResult(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

// TestRun_Scenarios covers the documented input/output pairs with the
// default output file.
func TestRun_Scenarios(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"1", "1000\n"},
		{"0.5", "500\n"},
		{"-2", "-2000\n"},
		{"3.14159", "3141.59\n"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			dir := t.TempDir()
			res := runCLI(t, dir, tt.input)

			assert.Equal(t, model.ExitSuccess, res.code, "stderr: %s", res.stderr)
			assert.Equal(t, tt.want, res.stdout)
			assert.Empty(t, res.stderr)
			assert.Equal(t, tt.want, readResult(t, filepath.Join(dir, "test.txt")))
		})
	}
}

// TestRun_Idempotent verifies that two runs leave byte-identical files.
func TestRun_Idempotent(t *testing.T) {
	dir := t.TempDir()

	require.Equal(t, model.ExitSuccess, runCLI(t, dir, "3.14159").code)
	first := readResult(t, filepath.Join(dir, "test.txt"))

	require.Equal(t, model.ExitSuccess, runCLI(t, dir, "3.14159").code)
	second := readResult(t, filepath.Join(dir, "test.txt"))

	assert.Equal(t, first, second)
}

func TestRun_UsageErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"missing argument", nil},
		{"too many arguments", []string{"1", "2"}},
		{"unknown flag", []string{"--metres", "1"}},
		{"empty output path", []string{"--output", "", "1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			res := runCLI(t, dir, tt.args...)

			assert.Equal(t, model.ExitUsage, res.code)
			assert.Empty(t, res.stdout)
			assert.Contains(t, res.stderr, "Error: ")
			assert.NoFileExists(t, filepath.Join(dir, "test.txt"))
		})
	}
}

func TestRun_ParseErrors(t *testing.T) {
	for _, input := range []string{"abc", "1.5m", "NaN", "1e39", "1e36"} {
		t.Run(input, func(t *testing.T) {
			dir := t.TempDir()
			res := runCLI(t, dir, input)

			assert.Equal(t, model.ExitParseError, res.code)
			assert.Empty(t, res.stdout)
			assert.Contains(t, res.stderr, "cannot convert")
			assert.NoFileExists(t, filepath.Join(dir, "test.txt"))
		})
	}
}

// TestRun_ParseErrorKeepsExistingFile checks that a rejected argument does
// not truncate a previous result.
func TestRun_ParseErrorKeepsExistingFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.txt")
	require.NoError(t, os.WriteFile(path, []byte("1000\n"), 0o644))

	res := runCLI(t, dir, "abc")
	assert.Equal(t, model.ExitParseError, res.code)
	assert.Equal(t, "1000\n", readResult(t, path))
}

func TestRun_IOError(t *testing.T) {
	dir := t.TempDir()
	res := runCLI(t, dir, "--output", filepath.Join(dir, "missing", "out.txt"), "1")

	assert.Equal(t, model.ExitIOError, res.code)
	assert.Empty(t, res.stdout)
	assert.Contains(t, res.stderr, "failed to write result")
}

func TestRun_Lenient(t *testing.T) {
	dir := t.TempDir()
	res := runCLI(t, dir, "--lenient", "abc")

	assert.Equal(t, model.ExitSuccess, res.code)
	assert.Equal(t, "0\n", res.stdout)
	assert.Equal(t, "0\n", readResult(t, filepath.Join(dir, "test.txt")))
}

func TestRun_OutputFlag(t *testing.T) {
	dir := t.TempDir()
	res := runCLI(t, dir, "-o", "mm.txt", "2")

	assert.Equal(t, model.ExitSuccess, res.code)
	assert.Equal(t, "2000\n", readResult(t, filepath.Join(dir, "mm.txt")))
	assert.NoFileExists(t, filepath.Join(dir, "test.txt"))
}

// TestRun_JSON checks that --json changes stdout and errors but not the file.
func TestRun_JSON(t *testing.T) {
	t.Run("result", func(t *testing.T) {
		dir := t.TempDir()
		res := runCLI(t, dir, "--json", "0.5")

		require.Equal(t, model.ExitSuccess, res.code)
		assert.JSONEq(t, `{"meters": 0.5, "millimeters": 500}`, res.stdout)
		assert.Equal(t, "500\n", readResult(t, filepath.Join(dir, "test.txt")))
	})

	t.Run("error", func(t *testing.T) {
		dir := t.TempDir()
		res := runCLI(t, dir, "--json", "abc")

		require.Equal(t, model.ExitParseError, res.code)
		var payload struct {
			Error struct {
				Message string `json:"message"`
				Detail  string `json:"detail"`
			} `json:"error"`
		}
		require.NoError(t, json.Unmarshal([]byte(res.stderr), &payload))
		assert.Equal(t, `cannot convert "abc"`, payload.Error.Message)
		assert.Contains(t, payload.Error.Detail, "not a decimal number")
	})
}

// TestRun_ConfigFile checks config loading and flag precedence.
func TestRun_ConfigFile(t *testing.T) {
	t.Run("config output and lenient are applied", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "cfg.yaml"),
			[]byte("output: from-config.txt\nlenient: true\n"), 0o644))

		res := runCLI(t, dir, "--config", "cfg.yaml", "7x")
		require.Equal(t, model.ExitSuccess, res.code, "stderr: %s", res.stderr)
		assert.Equal(t, "7000\n", readResult(t, filepath.Join(dir, "from-config.txt")))
	})

	t.Run("flags win over config", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "cfg.jsonc"),
			[]byte(`{"output": "from-config.txt", /* comment */ "lenient": true}`), 0o644))

		res := runCLI(t, dir, "--config", "cfg.jsonc", "--output", "from-flag.txt", "--lenient=false", "7x")
		assert.Equal(t, model.ExitParseError, res.code)
		assert.NoFileExists(t, filepath.Join(dir, "from-flag.txt"))
		assert.NoFileExists(t, filepath.Join(dir, "from-config.txt"))
	})

	t.Run("json key also renders errors as JSON", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "c.yaml"), []byte("json: true\n"), 0o644))

		res := runCLI(t, dir, "--config", "c.yaml", "abc")
		require.Equal(t, model.ExitParseError, res.code)

		var payload map[string]map[string]string
		require.NoError(t, json.Unmarshal([]byte(res.stderr), &payload), "stderr: %s", res.stderr)
		assert.Equal(t, `cannot convert "abc"`, payload["error"]["message"])
	})

	t.Run("missing config file", func(t *testing.T) {
		dir := t.TempDir()
		res := runCLI(t, dir, "--config", "absent.yaml", "1")
		assert.Equal(t, model.ExitConfigError, res.code)
		assert.NoFileExists(t, filepath.Join(dir, "test.txt"))
	})
}

func TestRun_Verbose(t *testing.T) {
	dir := t.TempDir()
	res := runCLI(t, dir, "-v", "1")

	require.Equal(t, model.ExitSuccess, res.code)
	assert.Equal(t, "1000\n", res.stdout)
	assert.Contains(t, res.stderr, "[verbose] Converted 1 m to 1000 mm")
	assert.Contains(t, res.stderr, "[verbose] Wrote test.txt")
}

// TestRun_ShorthandClusterOutput checks that "-vo" hands the next token to
// --output even when that token starts with a dash and a digit.
func TestRun_ShorthandClusterOutput(t *testing.T) {
	t.Run("file name starting with a digit", func(t *testing.T) {
		dir := t.TempDir()
		res := runCLI(t, dir, "-vo", "-2.txt", "1")

		require.Equal(t, model.ExitSuccess, res.code, "stderr: %s", res.stderr)
		assert.Equal(t, "1000\n", res.stdout)
		assert.Equal(t, "1000\n", readResult(t, filepath.Join(dir, "-2.txt")))
	})

	t.Run("numeric file name", func(t *testing.T) {
		dir := t.TempDir()
		res := runCLI(t, dir, "-vo", "-2", "5")

		require.Equal(t, model.ExitSuccess, res.code, "stderr: %s", res.stderr)
		assert.Equal(t, "5000\n", readResult(t, filepath.Join(dir, "-2")))
		assert.NoFileExists(t, filepath.Join(dir, "5"))
	})
}

func TestRun_Version(t *testing.T) {
	dir := t.TempDir()
	res := runCLI(t, dir, "--version")

	assert.Equal(t, model.ExitSuccess, res.code)
	assert.Contains(t, res.stdout, "convert-units version dev (commit: none, built: unknown)")
	assert.NoFileExists(t, filepath.Join(dir, "test.txt"))
}

// TestRun_StdoutFailure checks that a console write error after the file
// has been written still fails the run with the I/O exit code.
func TestRun_StdoutFailure(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	var stderr bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetOut(failingWriter{})
	cmd.SetErr(&stderr)

	code := Run(cmd, []string{"1"})

	assert.Equal(t, model.ExitIOError, code)
	assert.Contains(t, stderr.String(), "failed to write result")
	assert.Contains(t, stderr.String(), "stdout")
	assert.Equal(t, "1000\n", readResult(t, filepath.Join(dir, "test.txt")))
}

func TestNormalizeArgs(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want []string
	}{
		{
			name: "positive number untouched",
			args: []string{"1"},
			want: []string{"1"},
		},
		{
			name: "negative number moved behind terminator",
			args: []string{"-2"},
			want: []string{"--", "-2"},
		},
		{
			name: "flags before negative number",
			args: []string{"--json", "-0.5"},
			want: []string{"--json", "--", "-0.5"},
		},
		{
			name: "negative bare fraction",
			args: []string{"-.5", "-v"},
			want: []string{"-v", "--", "-.5"},
		},
		{
			name: "value of a shorthand cluster ending in o stays put",
			args: []string{"-vo", "-2.txt", "1"},
			want: []string{"-vo", "-2.txt", "1"},
		},
		{
			name: "numeric value of a shorthand cluster stays put",
			args: []string{"-vo", "-2", "5"},
			want: []string{"-vo", "-2", "5"},
		},
		{
			name: "numeric value of --output stays put",
			args: []string{"--output", "-3", "4"},
			want: []string{"--output", "-3", "4"},
		},
		{
			name: "token that only starts like a number is not moved",
			args: []string{"-2.txt"},
			want: []string{"-2.txt"},
		},
		{
			name: "negative exponent form moved",
			args: []string{"-1e-3"},
			want: []string{"--", "-1e-3"},
		},
		{
			name: "value of -o is not treated as a number",
			args: []string{"-o", "-1.txt", "3"},
			want: []string{"-o", "-1.txt", "3"},
		},
		{
			name: "existing terminator is reused",
			args: []string{"-3", "--", "x"},
			want: []string{"--", "-3", "x"},
		},
		{
			name: "shorthand flags untouched",
			args: []string{"-v", "5"},
			want: []string{"-v", "5"},
		},
		{
			name: "empty",
			args: nil,
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, normalizeArgs(tt.args))
		})
	}
}
