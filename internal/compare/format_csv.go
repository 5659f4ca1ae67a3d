package compare

import (
	"encoding/csv"
	"strings"
)

// CSVFormatter formats comparison results as CSV, one row per alternative and metric
type CSVFormatter struct{}

// Format generates CSV output for comparison results
func (cf *CSVFormatter) Format(set *ComparisonSet) (string, error) {
	var sb strings.Builder
	writer := csv.NewWriter(&sb)

	header := []string{
		"Base",
		"Alternative",
		"Metric",
		"Base Value",
		"Alternative Value",
		"Diff",
		"Diff %",
		"Winner",
	}
	if err := writer.Write(header); err != nil {
		return "", err
	}

	for _, c := range set.Comparisons {
		for _, d := range c.Diffs {
			if err := writer.Write(cf.formatRow(&c, d)); err != nil {
				return "", err
			}
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", err
	}

	return sb.String(), nil
}

func (cf *CSVFormatter) formatRow(c *Comparison, d MetricDiff) []string {
	baseValue, altValue := "", ""
	if d.HasBase {
		baseValue = d.Base.StringFixed(2)
	}
	if d.HasAlternative {
		altValue = d.Alternative.StringFixed(2)
	}
	winner := ""
	if d.Metric == c.Criterion.Metric {
		winner = c.Winner
	}
	return []string{
		c.Base,
		c.Alternative,
		d.Metric,
		baseValue,
		altValue,
		d.Diff.StringFixed(2),
		d.DiffPercent.StringFixed(2),
		winner,
	}
}
