package domain

import "github.com/shopspring/decimal"

// Metric is a named figure produced by a calculation
type Metric struct {
	Name  string          `json:"name" yaml:"name"`
	Value decimal.Decimal `json:"value" yaml:"value"`
}

// Metrics is an ordered list of named figures
type Metrics []Metric

// Get returns the value of the named metric
func (m Metrics) Get(name string) (decimal.Decimal, bool) {
	for _, metric := range m {
		if metric.Name == name {
			return metric.Value, true
		}
	}
	return decimal.Zero, false
}

// Names returns metric names in order
func (m Metrics) Names() []string {
	names := make([]string, len(m))
	for i, metric := range m {
		names[i] = metric.Name
	}
	return names
}
