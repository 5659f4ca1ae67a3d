package compare

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// TableFormatter formats comparison results as a console table
type TableFormatter struct{}

// Format generates a formatted table comparing outcomes
func (tf *TableFormatter) Format(set *ComparisonSet) string {
	var sb strings.Builder

	sb.WriteString("SCENARIO COMPARISON\n")
	sb.WriteString(strings.Repeat("=", 80) + "\n")
	sb.WriteString(fmt.Sprintf("Base: %s\n", set.Base.Name))
	sb.WriteString(fmt.Sprintf("Criterion: %s %s\n", set.Criterion.Goal, set.Criterion.Metric))
	if set.Source != "" {
		sb.WriteString(fmt.Sprintf("Source: %s\n", set.Source))
	}
	sb.WriteString("\n")

	nameWidth := 30
	numWidth := 15

	header := fmt.Sprintf("%-*s %*s", nameWidth, "Metric", numWidth, tf.truncate(set.Base.Name, numWidth))
	for _, c := range set.Comparisons {
		header += fmt.Sprintf(" %*s", numWidth, tf.truncate(c.Alternative, numWidth))
	}
	sb.WriteString(header + "\n")
	sb.WriteString(strings.Repeat("-", 80) + "\n")

	for _, metric := range tf.metricNames(set) {
		row := fmt.Sprintf("%-*s", nameWidth, tf.truncate(metric, nameWidth))
		if v, ok := set.Base.Metrics.Get(metric); ok {
			row += fmt.Sprintf(" %*s", numWidth, v.StringFixed(2))
		} else {
			row += fmt.Sprintf(" %*s", numWidth, "-")
		}
		for _, c := range set.Comparisons {
			d, ok := c.Diff(metric)
			if ok && d.HasAlternative {
				row += fmt.Sprintf(" %*s", numWidth, d.Alternative.StringFixed(2))
			} else {
				row += fmt.Sprintf(" %*s", numWidth, "-")
			}
		}
		sb.WriteString(row + "\n")
	}
	sb.WriteString(strings.Repeat("=", 80) + "\n")

	if len(set.Comparisons) > 0 {
		sb.WriteString("\nCOMPARISON TO BASE\n")
		sb.WriteString(strings.Repeat("-", 80) + "\n")
		for _, c := range set.Comparisons {
			sb.WriteString(fmt.Sprintf("\n%s:\n", c.Alternative))
			for _, d := range c.Diffs {
				if !d.HasBase || !d.HasAlternative || d.Diff.IsZero() {
					continue
				}
				sb.WriteString(fmt.Sprintf("  %-28s %s%s (%s%%)\n",
					d.Metric+":",
					tf.deltaSymbol(d.Diff),
					formatAmount(d.Diff),
					d.DiffPercent.StringFixed(1)))
			}
			sb.WriteString(fmt.Sprintf("  Winner: %s\n", c.Winner))
		}
		sb.WriteString("\n")
	}

	if len(set.Recommendations) > 0 {
		sb.WriteString("\nRECOMMENDATIONS\n")
		sb.WriteString(strings.Repeat("-", 80) + "\n")
		for _, rec := range set.Recommendations {
			sb.WriteString(fmt.Sprintf("• %s\n", rec))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

// metricNames returns base metrics followed by metrics only alternatives have
func (tf *TableFormatter) metricNames(set *ComparisonSet) []string {
	names := set.Base.Metrics.Names()
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		seen[n] = true
	}
	for _, c := range set.Comparisons {
		for _, d := range c.Diffs {
			if !seen[d.Metric] {
				seen[d.Metric] = true
				names = append(names, d.Metric)
			}
		}
	}
	return names
}

// deltaSymbol returns a + for positive deltas; negatives carry their own sign
func (tf *TableFormatter) deltaSymbol(delta decimal.Decimal) string {
	if delta.IsPositive() {
		return "+"
	}
	return ""
}

func (tf *TableFormatter) truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

// FormatCompact creates a single-line summary of the criterion diffs
func (tf *TableFormatter) FormatCompact(set *ComparisonSet) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Base: %s | ", set.Base.Name))
	for i, c := range set.Comparisons {
		if i > 0 {
			sb.WriteString(" | ")
		}
		change := "="
		if d, ok := c.Diff(set.Criterion.Metric); ok && !d.Diff.IsZero() {
			change = tf.deltaSymbol(d.Diff) + formatAmount(d.Diff)
		}
		sb.WriteString(fmt.Sprintf("%s: %s", c.Alternative, change))
	}
	return sb.String()
}
