package output

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/rgehrsitz/fincalc/internal/calculator"
	"github.com/rgehrsitz/fincalc/internal/compare"
)

var (
	colorPrimary = lipgloss.Color("#7D56F4")
	colorMuted   = lipgloss.Color("#626262")
	colorSuccess = lipgloss.Color("#04B575")

	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorPrimary)
	sectionStyle = lipgloss.NewStyle().Bold(true).Underline(true)
	labelStyle   = lipgloss.NewStyle().Foreground(colorMuted)
	headerStyle  = lipgloss.NewStyle().Bold(true)
	winnerStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorSuccess)
)

// TableFormatter renders a result as aligned console text
type TableFormatter struct {
	// MaxRows caps the rows printed per table; 0 prints every row
	MaxRows int
}

func (tf *TableFormatter) Name() string { return "table" }

func (tf *TableFormatter) Format(result *calculator.Result) ([]byte, error) {
	if result == nil {
		return nil, fmt.Errorf("result cannot be nil")
	}
	var sb strings.Builder
	sb.WriteString(titleStyle.Render(strings.ToUpper(result.Calculator)))
	sb.WriteString("\n\n")

	width := 0
	for _, m := range result.Summary {
		width = max(width, utf8.RuneCountInString(m.Name))
	}
	for _, m := range result.Summary {
		sb.WriteString(fmt.Sprintf("  %s  %s\n", labelStyle.Render(pad(m.Name, width)), m.Value.String()))
	}

	if len(result.RatesUsed) > 0 {
		sb.WriteString("\n" + sectionStyle.Render("Rates") + "\n")
		for _, param := range sortedKeys(result.RatesUsed) {
			r := result.RatesUsed[param]
			sb.WriteString(fmt.Sprintf("  %s  %s (%s, %s)\n", labelStyle.Render(param), FormatPercentage(r.Value), r.Source, r.Key))
		}
	}

	if keys := result.NoteKeys(); len(keys) > 0 {
		sb.WriteString("\n" + sectionStyle.Render("Notes") + "\n")
		for _, k := range keys {
			sb.WriteString(fmt.Sprintf("  %s: %s\n", labelStyle.Render(k), result.Notes[k]))
		}
	}

	if c := result.Comparison; c != nil {
		sb.WriteString("\n" + sectionStyle.Render("Comparison") + "\n")
		sb.WriteString(fmt.Sprintf("  %s vs %s on %s (%s)\n", c.Base, c.Alternative, c.Criterion.Metric, c.Criterion.Goal))
		sb.WriteString(fmt.Sprintf("  Winner: %s by %s\n", winnerStyle.Render(c.Winner), FormatAmount(c.Margin)))
	}

	for _, t := range result.Tables {
		sb.WriteString("\n" + sectionStyle.Render(t.Title) + "\n")
		sb.WriteString(tf.renderTable(t))
	}
	return []byte(sb.String()), nil
}

func (tf *TableFormatter) renderTable(t *calculator.Table) string {
	header, rows := columnValues(t)
	shown := rows
	if tf.MaxRows > 0 && len(rows) > tf.MaxRows {
		shown = rows[:tf.MaxRows]
	}

	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = utf8.RuneCountInString(h)
	}
	for _, r := range shown {
		for i, cell := range r {
			if i < len(widths) {
				widths[i] = max(widths[i], utf8.RuneCountInString(cell))
			}
		}
	}

	var sb strings.Builder
	cells := make([]string, len(header))
	for i, h := range header {
		cells[i] = headerStyle.Render(padLeft(h, widths[i]))
	}
	sb.WriteString("  " + strings.Join(cells, "  ") + "\n")
	for _, r := range shown {
		for i := range cells {
			cells[i] = ""
			if i < len(r) {
				cells[i] = padLeft(r[i], widths[i])
			}
		}
		sb.WriteString("  " + strings.Join(cells, "  ") + "\n")
	}
	if len(shown) < len(rows) {
		sb.WriteString(labelStyle.Render(fmt.Sprintf("  ... %d more rows", len(rows)-len(shown))) + "\n")
	}
	return sb.String()
}

// FormatComparison renders a comparison set in the named format
func FormatComparison(set *compare.ComparisonSet, format string) ([]byte, error) {
	if set == nil {
		return nil, fmt.Errorf("comparison cannot be nil")
	}
	switch NormalizeFormatName(format) {
	case "table":
		tf := &compare.TableFormatter{}
		return []byte(tf.Format(set)), nil
	case "csv":
		s, err := (&compare.CSVFormatter{}).Format(set)
		return []byte(s), err
	case "json":
		return marshalJSON(set, true)
	case "yaml":
		return marshalYAML(set)
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

func pad(s string, width int) string {
	if n := utf8.RuneCountInString(s); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}

func padLeft(s string, width int) string {
	if n := utf8.RuneCountInString(s); n < width {
		return strings.Repeat(" ", width-n) + s
	}
	return s
}
