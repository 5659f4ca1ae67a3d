// Package compare diffs calculator outcomes and recommends the better one
// on a chosen metric.
package compare

import (
	"sort"

	"github.com/rgehrsitz/fincalc/internal/domain"
	"github.com/shopspring/decimal"
)

// Composer builds comparisons between outcomes
type Composer struct {
	logger domain.Logger
}

// NewComposer creates a new composer
func NewComposer() *Composer {
	return &Composer{logger: domain.NopLogger{}}
}

// SetLogger sets the logger used for comparison diagnostics
func (c *Composer) SetLogger(logger domain.Logger) {
	c.logger = domain.OrNop(logger)
}

// Compose diffs every metric present in either outcome and picks the
// winner on the criterion metric. A tie goes to the base.
func (c *Composer) Compose(base, alternative Outcome, criterion Criterion) (*Comparison, error) {
	const op = "compose"
	if criterion.Goal != Minimize && criterion.Goal != Maximize {
		return nil, domain.InvalidParameter(op, "goal", "unsupported goal %q", criterion.Goal)
	}
	baseValue, ok := base.Metrics.Get(criterion.Metric)
	if !ok {
		return nil, domain.InvalidParameter(op, "metric", "metric %q missing from %s", criterion.Metric, base.Name)
	}
	altValue, ok := alternative.Metrics.Get(criterion.Metric)
	if !ok {
		return nil, domain.InvalidParameter(op, "metric", "metric %q missing from %s", criterion.Metric, alternative.Name)
	}

	comparison := &Comparison{
		Base:        base.Name,
		Alternative: alternative.Name,
		Description: alternative.Description,
		Criterion:   criterion,
		Diffs:       diffMetrics(base.Metrics, alternative.Metrics),
		Margin:      altValue.Sub(baseValue).Abs(),
	}
	if criterion.better(altValue, baseValue) {
		comparison.Winner = alternative.Name
	} else {
		comparison.Winner = base.Name
		comparison.WinnerIsBase = true
	}

	c.logger.Debugf("compared %s with %s on %s: winner %s by %s",
		base.Name, alternative.Name, criterion.Metric, comparison.Winner, comparison.Margin.StringFixed(2))
	return comparison, nil
}

// ComposeSet compares every alternative against base and picks the overall
// best outcome. Earlier outcomes win ties.
func (c *Composer) ComposeSet(base Outcome, alternatives []Outcome, criterion Criterion) (*ComparisonSet, error) {
	set := &ComparisonSet{
		Base:        base,
		Criterion:   criterion,
		Comparisons: make([]Comparison, 0, len(alternatives)),
		Best:        base.Name,
	}

	best, _ := base.Metrics.Get(criterion.Metric)
	for _, alt := range alternatives {
		comparison, err := c.Compose(base, alt, criterion)
		if err != nil {
			return nil, err
		}
		set.Comparisons = append(set.Comparisons, *comparison)

		v, _ := alt.Metrics.Get(criterion.Metric)
		if criterion.better(v, best) {
			best = v
			set.Best = alt.Name
		}
	}

	set.Recommendations = GenerateRecommendations(set)
	return set, nil
}

// diffMetrics walks base metrics in order, then metrics only the
// alternative has, sorted by name
func diffMetrics(base, alternative domain.Metrics) []MetricDiff {
	diffs := make([]MetricDiff, 0, len(base))
	seen := make(map[string]bool, len(base))

	for _, m := range base {
		seen[m.Name] = true
		d := MetricDiff{Metric: m.Name, Base: m.Value, HasBase: true}
		if v, ok := alternative.Get(m.Name); ok {
			d.Alternative = v
			d.HasAlternative = true
			d.Diff = v.Sub(m.Value)
			if !m.Value.IsZero() {
				d.DiffPercent = d.Diff.Div(m.Value.Abs()).Mul(domain.Hundred).Round(domain.PercentPlaces)
			}
		}
		diffs = append(diffs, d)
	}

	var extra []string
	for _, m := range alternative {
		if !seen[m.Name] {
			extra = append(extra, m.Name)
		}
	}
	sort.Strings(extra)
	for _, name := range extra {
		v, _ := alternative.Get(name)
		diffs = append(diffs, MetricDiff{Metric: name, Alternative: v, HasAlternative: true, Diff: decimal.Zero})
	}
	return diffs
}
