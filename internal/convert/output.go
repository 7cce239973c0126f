package convert

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/shinji-kodama/convert-units/internal/model"
)

// DefaultOutputPath is the file written when no --output is given.
// It is relative to the current working directory.
const DefaultOutputPath = "test.txt"

// OutputError describes a failed write of the conversion result.
type OutputError struct {
	// Op is the step that failed, e.g. "open", "write" or "close".
	Op string

	// Path is the file path, or "stdout" for the console.
	Path string

	// Err is the underlying I/O error.
	Err error
}

func (e *OutputError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *OutputError) Unwrap() error {
	return e.Err
}

// Line returns the result line shared by the file and the console:
// the formatted millimeters value followed by a newline.
func Line(c model.Conversion) string {
	return Format(float32(c.Output)) + "\n"
}

// WriteFile creates or truncates path and writes the result line to it.
// The file is closed on every return path and a failing Close is reported.
func WriteFile(path string, c model.Conversion) (err error) {
	// O_TRUNC replaces any previous result, so repeated runs with the
	// same input leave byte-identical files.
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return &OutputError{Op: "open", Path: path, Err: err}
	}
	// The handle is released on every return path. Close can be the first
	// place a failed flush shows up, so its error is reported through the
	// named return, unless a write error is already being returned.
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = &OutputError{Op: "close", Path: path, Err: cerr}
		}
	}()

	if _, err := io.WriteString(f, Line(c)); err != nil {
		return &OutputError{Op: "write", Path: path, Err: err}
	}
	return nil
}

// WriteStdout prints the result to w, either as the plain result line or,
// when asJSON is set, as an indented JSON document.
func WriteStdout(w io.Writer, c model.Conversion, asJSON bool) error {
	var out string
	if asJSON {
		data, err := json.MarshalIndent(c, "", "  ")
		if err != nil {
			return &OutputError{Op: "encode", Path: "stdout", Err: err}
		}
		out = string(data) + "\n"
	} else {
		out = Line(c)
	}

	if _, err := io.WriteString(w, out); err != nil {
		return &OutputError{Op: "write", Path: "stdout", Err: err}
	}
	return nil
}

// WriteResult writes c to the file at path, then to w. The console is only
// written once the file has been written and closed successfully.
func WriteResult(path string, w io.Writer, c model.Conversion, asJSON bool) error {
	// A result is only printed once it is safely on disk, so a printed
	// value always means the file holds it too.
	if err := WriteFile(path, c); err != nil {
		return err
	}
	return WriteStdout(w, c, asJSON)
}
