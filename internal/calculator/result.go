package calculator

import (
	"sort"

	"github.com/rgehrsitz/fincalc/internal/compare"
	"github.com/rgehrsitz/fincalc/internal/domain"
	"github.com/rgehrsitz/fincalc/internal/rates"
	"github.com/shopspring/decimal"
)

// Row is one line of a Table; Label names the row when the table is keyed
type Row struct {
	Label  string            `json:"label,omitempty" yaml:"label,omitempty"`
	Values []decimal.Decimal `json:"values" yaml:"values"`
}

// Table is a breakdown attached to a result (schedules, year-wise projections)
type Table struct {
	Title     string   `json:"title" yaml:"title"`
	KeyColumn string   `json:"keyColumn,omitempty" yaml:"keyColumn,omitempty"`
	Columns   []string `json:"columns" yaml:"columns"`
	Rows      []Row    `json:"rows" yaml:"rows"`
}

// Append adds an unlabelled row
func (t *Table) Append(values ...decimal.Decimal) {
	t.Rows = append(t.Rows, Row{Values: values})
}

// AppendLabeled adds a row keyed by label
func (t *Table) AppendLabeled(label string, values ...decimal.Decimal) {
	t.Rows = append(t.Rows, Row{Label: label, Values: values})
}

// Result is the outcome of one calculation
type Result struct {
	Calculator string                    `json:"calculator" yaml:"calculator"`
	Summary    domain.Metrics            `json:"summary" yaml:"summary"`
	Notes      map[string]string         `json:"notes,omitempty" yaml:"notes,omitempty"`
	Tables     []*Table                  `json:"tables,omitempty" yaml:"tables,omitempty"`
	RatesUsed  map[string]rates.Resolved `json:"ratesUsed,omitempty" yaml:"ratesUsed,omitempty"`
	Comparison *compare.Comparison       `json:"comparison,omitempty" yaml:"comparison,omitempty"`
}

func newResult(name string) *Result {
	return &Result{Calculator: name}
}

// Add appends a summary metric
func (r *Result) Add(name string, value decimal.Decimal) *Result {
	r.Summary = append(r.Summary, domain.Metric{Name: name, Value: value})
	return r
}

// Metric returns the named summary value
func (r *Result) Metric(name string) (decimal.Decimal, bool) {
	return r.Summary.Get(name)
}

// Note records a textual remark
func (r *Result) Note(key, value string) {
	if r.Notes == nil {
		r.Notes = make(map[string]string)
	}
	r.Notes[key] = value
}

// NoteKeys returns the note keys in sorted order
func (r *Result) NoteKeys() []string {
	keys := make([]string, 0, len(r.Notes))
	for k := range r.Notes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// UseRate records a resolved rate under the parameter it fed and adds a
// "<param>_source" note
func (r *Result) UseRate(param string, resolved rates.Resolved) {
	if r.RatesUsed == nil {
		r.RatesUsed = make(map[string]rates.Resolved)
	}
	r.RatesUsed[param] = resolved
	r.Note(param+"_source", string(resolved.Source))
}

// AddTable attaches an empty table and returns it for filling
func (r *Result) AddTable(title string, columns ...string) *Table {
	t := &Table{Title: title, Columns: columns}
	r.Tables = append(r.Tables, t)
	return t
}

// Outcome turns the summary into a comparable outcome
func (r *Result) Outcome(name string) compare.Outcome {
	if name == "" {
		name = r.Calculator
	}
	metrics := make(domain.Metrics, len(r.Summary))
	copy(metrics, r.Summary)
	return compare.Outcome{Name: name, Description: r.Calculator, Metrics: metrics}
}

// metric builds a summary metric rounded to cents
func metric(name string, value decimal.Decimal) domain.Metric {
	return domain.Metric{Name: name, Value: domain.RoundCurrency(value)}
}

func outcome(name string, metrics ...domain.Metric) compare.Outcome {
	return compare.Outcome{Name: name, Metrics: metrics}
}

// compare attaches a base-versus-alternative comparison and notes the winner
func (s *session) compare(base, alternative compare.Outcome, criterion compare.Criterion) error {
	composer := compare.NewComposer()
	composer.SetLogger(s.logger())
	c, err := composer.Compose(base, alternative, criterion)
	if err != nil {
		return err
	}
	s.result.Comparison = c
	s.result.Note("recommendation", c.Winner)
	return nil
}
