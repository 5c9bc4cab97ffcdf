// Package records models workbook rows and pulls named values out of them.
//
// An Accessor maps each logical field (identifier, primary name, fallback
// name, incorporation date, headquarters, postcode) to an ordered list of
// header aliases. The first alias whose header is present and whose cleaned
// value is not a placeholder wins. Placeholders such as "n/a" or "sole trader"
// are treated as absence, never as errors.
package records
