package convert

import (
	"fmt"
	"strconv"

	"github.com/shinji-kodama/convert-units/internal/model"
)

// significantDigits is the default precision of printf's %g verb.
const significantDigits = 6

// Options controls how an argument is turned into a Conversion.
type Options struct {
	// Lenient selects atof-style parsing: malformed input becomes 0
	// instead of an error.
	Lenient bool
}

// ToMillimeters multiplies m by the conversion factor in single precision.
// No rounding, clamping or range checking is applied.
func ToMillimeters(m model.Meters) model.Millimeters {
	return model.Millimeters(float32(m) * model.MillimetersPerMeter)
}

// Format renders v in %g style with 6 significant digits and no trailing
// zeros, e.g. "1000", "3141.59", "1e+06".
func Format(v float32) string {
	return strconv.FormatFloat(float64(v), 'g', significantDigits, 32)
}

// Convert parses arg according to opts and converts it to millimeters.
// An input or result that is not a finite float32 (overflow, or a lenient
// "inf"/"nan") is reported as a ParseError
// wrapping ErrOutOfRange.
func Convert(arg string, opts Options) (model.Conversion, error) {
	var (
		m   model.Meters
		err error
	)
	if opts.Lenient {
		m = ParseMetersLenient(arg)
	} else {
		m, err = ParseMeters(arg)
		if err != nil {
			return model.Conversion{}, err
		}
	}

	c := model.Conversion{Input: m, Output: ToMillimeters(m)}
	if err := c.Validate(); err != nil {
		return model.Conversion{}, &ParseError{Input: arg, Err: fmt.Errorf("%w: %w", ErrOutOfRange, err)}
	}
	return c, nil
}
