// Package extract turns raw OCR text into structured bill line items.
//
// Bills arrive in several layouts (pharmacy, hospital, investigation)
// with differing column orders and separators. Each layout gets its own
// tolerant pattern; all patterns are applied independently over the full
// page text and their matches are concatenated. Over-extraction is
// preferred to missed items, so overlapping matches from different
// layouts are kept as-is.
package extract

import "regexp"

// LayoutPattern pairs a bill layout with the compiled expression that
// recognizes its line structure. Every pattern carries the named groups
// name, qty, rate and amount.
type LayoutPattern struct {
	Name    string
	Pattern *regexp.Regexp
}

// numericField matches one quantity/rate/amount column: base-10 digits
// with an optional fractional part, no separators, no sign.
const numericField = `(?:\d+(?:\.\d+)?)`

// The name group is non-greedy on purpose: it must stop at the shortest
// plausible description and leave the trailing numeric columns to the
// numeric groups. A greedy name would swallow them.
var layoutPatterns = []LayoutPattern{
	// Pharmacy style: optional serial number, description, then
	// qty/rate/amount separated by whitespace.
	{
		Name: "pharmacy",
		Pattern: regexp.MustCompile(
			`(?:\d+\s+)?(?P<name>[A-Za-z0-9\-\(\)\/\., ]+?)\s+` +
				`(?P<qty>` + numericField + `)\s+` +
				`(?P<rate>` + numericField + `)\s+` +
				`(?P<amount>` + numericField + `)`,
		),
	},

	// Hospital style: same trailing triple, but the description may
	// carry pipe characters left over from tabular OCR artifacts.
	// Applied independently of the pharmacy pattern even though the two
	// are structurally near-identical.
	{
		Name: "hospital",
		Pattern: regexp.MustCompile(
			`(?P<name>[A-Za-z0-9\-\|\.\(\)\/, ]+?)\s+` +
				`(?P<qty>` + numericField + `)\s+` +
				`(?P<rate>` + numericField + `)\s+` +
				`(?P<amount>` + numericField + `)`,
		),
	},

	// Investigation style: description, a D/M/Y date token, then the
	// triple. The date is consumed but not captured.
	{
		Name: "investigation",
		Pattern: regexp.MustCompile(
			`(?P<name>[A-Za-z0-9\-\(\)\/\., ]+?)\s+` +
				`\d{1,2}\/\d{1,2}\/\d{2,4}\s+` +
				`(?P<qty>` + numericField + `)\s+` +
				`(?P<rate>` + numericField + `)\s+` +
				`(?P<amount>` + numericField + `)`,
		),
	},
}
