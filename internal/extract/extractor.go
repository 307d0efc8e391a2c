package extract

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/claimsdesk/bill-ocr-service/internal/models"
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// NormalizeName collapses runs of whitespace to a single space and trims
// leading/trailing space. No other cleaning is applied; OCR noise
// characters and casing are kept. Idempotent.
func NormalizeName(s string) string {
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(s, " "))
}

// Extract scans the full page text with every layout pattern and returns
// the matched line items in pattern order, then left-to-right match
// order within each pattern. Matches are not deduplicated across
// patterns: a segment recognized by two layouts yields two items.
//
// Text with no recognizable tabular structure yields an empty slice, not
// an error. An error is only possible when a captured numeric group
// fails decimal parsing, which the pattern character classes rule out.
func Extract(text string) ([]models.LineItem, error) {
	items := []models.LineItem{}

	for _, layout := range layoutPatterns {
		nameIdx := layout.Pattern.SubexpIndex("name")
		qtyIdx := layout.Pattern.SubexpIndex("qty")
		rateIdx := layout.Pattern.SubexpIndex("rate")
		amountIdx := layout.Pattern.SubexpIndex("amount")

		for _, m := range layout.Pattern.FindAllStringSubmatch(text, -1) {
			name := NormalizeName(m[nameIdx])
			if name == "" {
				continue
			}

			qty, err := parseField(layout.Name, "quantity", m[qtyIdx])
			if err != nil {
				return nil, err
			}
			rate, err := parseField(layout.Name, "rate", m[rateIdx])
			if err != nil {
				return nil, err
			}
			amount, err := parseField(layout.Name, "amount", m[amountIdx])
			if err != nil {
				return nil, err
			}

			items = append(items, models.LineItem{
				Name:     name,
				Quantity: qty,
				Rate:     rate,
				Amount:   amount,
			})
		}
	}

	return items, nil
}

func parseField(layout, field, raw string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%s pattern captured invalid %s %q: %w", layout, field, raw, err)
	}
	return d, nil
}
