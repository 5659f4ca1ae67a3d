// Package output renders calculator results and comparisons for the CLI.
package output

import (
	"fmt"
	"strings"

	"github.com/rgehrsitz/fincalc/internal/calculator"
	"github.com/shopspring/decimal"
)

// ResultFormatter renders a single calculator result
type ResultFormatter interface {
	Name() string
	Format(result *calculator.Result) ([]byte, error)
}

// Formats lists the accepted format names
var Formats = []string{"table", "json", "csv", "yaml"}

// NormalizeFormatName maps aliases onto the canonical format names
func NormalizeFormatName(format string) string {
	switch f := strings.ToLower(strings.TrimSpace(format)); f {
	case "", "console", "text":
		return "table"
	case "yml":
		return "yaml"
	default:
		return f
	}
}

// NewResultFormatter creates a formatter based on the format name
func NewResultFormatter(format string) (ResultFormatter, error) {
	switch NormalizeFormatName(format) {
	case "table":
		return &TableFormatter{}, nil
	case "json":
		return &JSONFormatter{Pretty: true}, nil
	case "csv":
		return &CSVFormatter{}, nil
	case "yaml":
		return &YAMLFormatter{}, nil
	default:
		return nil, fmt.Errorf("unsupported format: %s (want one of %s)", format, strings.Join(Formats, ", "))
	}
}

// FormatAmount renders a value with two decimals and thousands separators
func FormatAmount(amount decimal.Decimal) string {
	s := amount.StringFixed(2)
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	whole, frac, _ := strings.Cut(s, ".")
	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return sign + b.String() + "." + frac
}

// FormatPercentage formats a percent figure
func FormatPercentage(amount decimal.Decimal) string {
	return amount.StringFixed(2) + "%"
}

// columnValues renders a table's header and rows as strings, putting the key
// column first when the table is keyed
func columnValues(t *calculator.Table) ([]string, [][]string) {
	header := make([]string, 0, len(t.Columns)+1)
	if t.KeyColumn != "" {
		header = append(header, t.KeyColumn)
	}
	header = append(header, t.Columns...)

	rows := make([][]string, 0, len(t.Rows))
	for _, r := range t.Rows {
		cells := make([]string, 0, len(header))
		if t.KeyColumn != "" {
			cells = append(cells, r.Label)
		}
		for _, v := range r.Values {
			cells = append(cells, v.String())
		}
		rows = append(rows, cells)
	}
	return header, rows
}
