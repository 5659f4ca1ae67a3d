package domain

import (
	"sort"
	"strings"
)

// Frequency is a named number of periods per year
type Frequency string

const (
	Weekly     Frequency = "weekly"
	Monthly    Frequency = "monthly"
	Quarterly  Frequency = "quarterly"
	HalfYearly Frequency = "half-yearly"
	Yearly     Frequency = "yearly"
)

var periodsPerYear = map[Frequency]int{
	Weekly:     52,
	Monthly:    12,
	Quarterly:  4,
	HalfYearly: 2,
	Yearly:     1,
}

// PeriodsPerYear returns the number of periods for f
func (f Frequency) PeriodsPerYear() (int, bool) {
	n, ok := periodsPerYear[f]
	return n, ok
}

// FrequencyFromPeriods maps a periods-per-year count back to its name
func FrequencyFromPeriods(n int) (Frequency, bool) {
	for f, p := range periodsPerYear {
		if p == n {
			return f, true
		}
	}
	return "", false
}

// Longest term any schedule or simulation will walk
const (
	MaxTermYears  = 100
	MaxTermMonths = MaxTermYears * 12
)

// ParseFrequency accepts the canonical names plus a few aliases
// (annual, annually, semi-annual, half_yearly).
func ParseFrequency(s string) (Frequency, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	switch key {
	case "annual", "annually", "year":
		key = string(Yearly)
	case "half_yearly", "halfyearly", "semi-annual", "semiannual":
		key = string(HalfYearly)
	case "month":
		key = string(Monthly)
	case "quarter":
		key = string(Quarterly)
	case "week":
		key = string(Weekly)
	}
	f := Frequency(key)
	if _, ok := periodsPerYear[f]; !ok {
		return "", InvalidParameter("parse_frequency", "frequency",
			"unsupported frequency %q (expected one of %s)", s, strings.Join(FrequencyNames(), ", "))
	}
	return f, nil
}

// FrequencyNames lists the supported frequency names ordered by periods per year
func FrequencyNames() []string {
	names := make([]string, 0, len(periodsPerYear))
	for f := range periodsPerYear {
		names = append(names, string(f))
	}
	sort.Slice(names, func(i, j int) bool {
		return periodsPerYear[Frequency(names[i])] < periodsPerYear[Frequency(names[j])]
	})
	return names
}

// TermUnit tells whether a term length is expressed in years or months
type TermUnit string

const (
	TermYears  TermUnit = "years"
	TermMonths TermUnit = "months"
)

// ParseTermUnit parses "years" or "months" (singular forms accepted)
func ParseTermUnit(s string) (TermUnit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "years", "year", "y":
		return TermYears, nil
	case "months", "month", "m":
		return TermMonths, nil
	}
	return "", InvalidParameter("parse_term_unit", "term_unit", "unsupported term unit %q", s)
}
