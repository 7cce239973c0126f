// Package convert turns a meters argument into a millimeters result and
// writes that result out.
//
// Key responsibilities:
//   - Parse the command-line argument as a single-precision decimal number
//     (strictly, or leniently the way C's atof does)
//   - Multiply by the fixed conversion factor of 1000
//   - Format the result with 6 significant digits (%g style)
//   - Write the result line to the output file and to standard output
package convert
