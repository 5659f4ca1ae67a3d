package compare

import (
	"fmt"
	"strings"

	"github.com/rgehrsitz/fincalc/internal/domain"
	"github.com/shopspring/decimal"
)

// Goal says whether a smaller or larger metric is better
type Goal string

const (
	Minimize Goal = "minimize"
	Maximize Goal = "maximize"
)

// ParseGoal accepts minimize/min/lower and maximize/max/higher
func ParseGoal(s string) (Goal, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "minimize", "min", "lower":
		return Minimize, nil
	case "maximize", "max", "higher":
		return Maximize, nil
	}
	return "", domain.InvalidParameter("parse_goal", "goal", "unsupported goal %q, want minimize or maximize", s)
}

// Criterion picks the winner of a comparison
type Criterion struct {
	Metric string `json:"metric" yaml:"metric"`
	Goal   Goal   `json:"goal" yaml:"goal"`
}

// better reports whether a beats b strictly
func (c Criterion) better(a, b decimal.Decimal) bool {
	if c.Goal == Maximize {
		return a.GreaterThan(b)
	}
	return a.LessThan(b)
}

// Outcome is one engine result reduced to named metrics
type Outcome struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Metrics     domain.Metrics `json:"metrics"`
}

// MetricDiff compares one metric across two outcomes. Missing sides are
// reported with the Has flags and contribute no diff.
type MetricDiff struct {
	Metric         string          `json:"metric"`
	Base           decimal.Decimal `json:"base"`
	Alternative    decimal.Decimal `json:"alternative"`
	Diff           decimal.Decimal `json:"diff"`
	DiffPercent    decimal.Decimal `json:"diffPercent"`
	HasBase        bool            `json:"hasBase"`
	HasAlternative bool            `json:"hasAlternative"`
}

// Comparison is the outcome of composing a base and an alternative
type Comparison struct {
	Base         string          `json:"base"`
	Alternative  string          `json:"alternative"`
	Description  string          `json:"description,omitempty"`
	Criterion    Criterion       `json:"criterion"`
	Diffs        []MetricDiff    `json:"diffs"`
	Winner       string          `json:"winner"`
	WinnerIsBase bool            `json:"winnerIsBase"`
	Margin       decimal.Decimal `json:"margin"` // absolute difference on the criterion metric
}

// Diff returns the diff for the named metric
func (c *Comparison) Diff(metric string) (MetricDiff, bool) {
	for _, d := range c.Diffs {
		if d.Metric == metric {
			return d, true
		}
	}
	return MetricDiff{}, false
}

// ComparisonSet is a base outcome compared against several alternatives
type ComparisonSet struct {
	Base            Outcome      `json:"base"`
	Criterion       Criterion    `json:"criterion"`
	Comparisons     []Comparison `json:"comparisons"`
	Best            string       `json:"best"`
	Recommendations []string     `json:"recommendations"`
	Source          string       `json:"source,omitempty"`
}

// GenerateRecommendations describes the best outcome on the criterion and
// every alternative that beats the base
func GenerateRecommendations(set *ComparisonSet) []string {
	recommendations := []string{}
	if len(set.Comparisons) == 0 {
		return recommendations
	}

	metric := set.Criterion.Metric
	direction := "lower"
	if set.Criterion.Goal == Maximize {
		direction = "higher"
	}

	if set.Best == set.Base.Name {
		recommendations = append(recommendations,
			fmt.Sprintf("Keep %s: no alternative improves %s", set.Base.Name, metric))
	} else {
		for _, c := range set.Comparisons {
			if c.Alternative == set.Best {
				recommendations = append(recommendations,
					fmt.Sprintf("Best %s: %s is %s %s than %s", metric, c.Alternative, formatAmount(c.Margin), direction, set.Base.Name))
			}
		}
	}

	for _, c := range set.Comparisons {
		if c.WinnerIsBase || c.Alternative == set.Best {
			continue
		}
		recommendations = append(recommendations,
			fmt.Sprintf("%s also beats %s on %s by %s", c.Alternative, set.Base.Name, metric, formatAmount(c.Margin)))
	}
	return recommendations
}

// formatAmount renders large values in thousands or millions
func formatAmount(d decimal.Decimal) string {
	abs := d.Abs()
	switch {
	case abs.GreaterThanOrEqual(decimal.NewFromInt(1000000)):
		return d.Div(decimal.NewFromInt(1000000)).StringFixed(2) + "M"
	case abs.GreaterThanOrEqual(decimal.NewFromInt(1000)):
		return d.Div(decimal.NewFromInt(1000)).StringFixed(1) + "K"
	}
	return d.StringFixed(2)
}
