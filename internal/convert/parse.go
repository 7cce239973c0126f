package convert

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/shinji-kodama/convert-units/internal/model"
)

var (
	// ErrInvalidNumber is returned when the argument is not a decimal number.
	ErrInvalidNumber = errors.New("not a decimal number")

	// ErrOutOfRange is returned when the argument or its conversion is not
	// a finite float32 (overflow, Inf or NaN).
	ErrOutOfRange = errors.New("out of single-precision range")
)

// decimalRegex matches a complete decimal literal: optional sign, digits
// with an optional fraction (or a bare fraction), optional exponent.
// Hex floats, digit separators, NaN and Inf do not match.
var decimalRegex = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// strtodPrefixRegex matches the longest leading literal that strtod (and
// so atof) consumes: infinity/inf and nan in any case, hexadecimal floats
// with an optional binary exponent, and plain decimals. The hex branch
// comes first so "0x1A" is not cut short at "0".
var strtodPrefixRegex = regexp.MustCompile(
	`^[+-]?(?:(?i:infinity|inf|nan)` +
		`|0[xX](?:[0-9a-fA-F]+(?:\.[0-9a-fA-F]*)?|\.[0-9a-fA-F]+)(?:[pP][+-]?\d+)?` +
		`|(?:\d+(?:\.\d*)?|\.\d+)(?:[eE][+-]?\d+)?)`)

// IsDecimal reports whether s is a complete plain decimal literal, the
// only form ParseMeters accepts (surrounding whitespace aside).
func IsDecimal(s string) bool {
	return decimalRegex.MatchString(s)
}

// ParseError describes an argument that could not be parsed as meters.
type ParseError struct {
	// Input is the raw argument as given on the command line.
	Input string

	// Err classifies the failure. It wraps ErrInvalidNumber or ErrOutOfRange.
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid length %q: %v", e.Input, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ParseMeters parses arg as a locale-independent decimal number of meters.
// Surrounding whitespace is ignored. Anything other than a plain decimal
// literal, or a value that overflows float32, is rejected.
func ParseMeters(arg string) (model.Meters, error) {
	// strconv is locale-independent but also accepts hex floats,
	// underscores after a base prefix, NaN and Inf. The regex narrows
	// it down to plain decimals before strconv ever sees the input.
	s := strings.TrimSpace(arg)
	if s == "" {
		return 0, &ParseError{Input: arg, Err: fmt.Errorf("%w: empty value", ErrInvalidNumber)}
	}
	if !IsDecimal(s) {
		return 0, &ParseError{Input: arg, Err: ErrInvalidNumber}
	}

	v, err := strconv.ParseFloat(s, 32)
	if err != nil {
		// The regex already guarantees valid syntax, so the only failure
		// strconv can report here is a range error.
		if errors.Is(err, strconv.ErrRange) {
			return 0, &ParseError{Input: arg, Err: fmt.Errorf("%w: %w", ErrOutOfRange, err)}
		}
		return 0, &ParseError{Input: arg, Err: fmt.Errorf("%w: %w", ErrInvalidNumber, err)}
	}
	return model.Meters(v), nil
}

// ParseMetersLenient parses arg the way atof does: leading whitespace is
// skipped, the longest numeric prefix is converted and the rest is ignored.
// Besides decimals that prefix may be a hex float ("0x1A"), "inf",
// "infinity" or "nan". Input without a numeric prefix yields 0.
// Overflow, Inf and NaN come back as non-finite values, which the caller
// is expected to reject.
func ParseMetersLenient(arg string) model.Meters {
	s := strings.TrimLeft(arg, " \t\n\v\f\r")
	prefix := strtodPrefixRegex.FindString(s)
	if prefix == "" {
		return 0
	}

	// Split off the sign so the special values can be matched on the
	// magnitude alone; strconv rejects a signed "nan".
	sign := float64(1)
	mag := prefix
	if mag[0] == '+' || mag[0] == '-' {
		if mag[0] == '-' {
			sign = -1
		}
		mag = mag[1:]
	}
	lower := strings.ToLower(mag)

	switch {
	case strings.HasPrefix(lower, "nan"):
		return model.Meters(math.NaN())
	case strings.HasPrefix(lower, "inf"):
		return model.Meters(math.Inf(int(sign)))
	case strings.HasPrefix(lower, "0x") && !strings.Contains(lower, "p"):
		// strconv requires a binary exponent on hex floats, strtod does not.
		mag += "p0"
	}

	// On ErrRange ParseFloat still returns the correctly signed infinity
	// (or zero on underflow), matching atof's HUGE_VAL behavior.
	v, _ := strconv.ParseFloat(mag, 32)
	return model.Meters(sign * v)
}
