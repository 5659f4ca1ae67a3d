package calculator

import (
	"math"
	"strconv"
	"strings"

	"github.com/rgehrsitz/fincalc/internal/domain"
	"github.com/shopspring/decimal"
)

// Params are the raw inputs of a calculation keyed by parameter name
type Params map[string]string

// Has reports whether name carries a non-empty value
func (p Params) Has(name string) bool {
	return strings.TrimSpace(p[name]) != ""
}

// String returns the trimmed value of name
func (p Params) String(name string) string {
	return strings.TrimSpace(p[name])
}

// Decimal parses name as a decimal; the parameter must be present
func (p Params) Decimal(name string) (decimal.Decimal, error) {
	raw := p.String(name)
	if raw == "" {
		return decimal.Zero, domain.InvalidParameter("params", name, "parameter is required")
	}
	v, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, domain.InvalidParameter("params", name, "invalid number %q", raw)
	}
	return v, nil
}

// OptionalDecimal parses name when present and returns nil otherwise
func (p Params) OptionalDecimal(name string) (*decimal.Decimal, error) {
	if !p.Has(name) {
		return nil, nil
	}
	v, err := p.Decimal(name)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// Int parses name as an integer. Whole-valued decimals such as "12.0" are accepted.
func (p Params) Int(name string) (int, error) {
	raw := p.String(name)
	if n, err := strconv.Atoi(raw); err == nil {
		if n > math.MaxInt32 || n < math.MinInt32 {
			return 0, domain.InvalidParameter("params", name, "%q is out of range", raw)
		}
		return n, nil
	}
	v, err := p.Decimal(name)
	if err != nil {
		return 0, err
	}
	if !v.Equal(v.Truncate(0)) {
		return 0, domain.InvalidParameter("params", name, "expected a whole number, got %q", raw)
	}
	if v.GreaterThan(decimal.NewFromInt(math.MaxInt32)) || v.LessThan(decimal.NewFromInt(math.MinInt32)) {
		return 0, domain.InvalidParameter("params", name, "%q is out of range", raw)
	}
	return int(v.IntPart()), nil
}

// Bool parses name as a boolean; yes/no and on/off are accepted
func (p Params) Bool(name string) (bool, error) {
	raw := strings.ToLower(p.String(name))
	switch raw {
	case "yes", "y", "on":
		return true, nil
	case "no", "n", "off", "":
		return false, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return false, domain.InvalidParameter("params", name, "invalid boolean %q", raw)
	}
	return b, nil
}

// reader reads params keeping the first error. Every accessor is a no-op
// once an error has been recorded, so a calculation can read all its
// inputs and check err once.
type reader struct {
	op     string
	params Params
	err    error
}

func (r *reader) fail(err error) {
	if r.err != nil || err == nil {
		return
	}
	if ce, ok := err.(*domain.CalcError); ok && ce.Operation == "params" {
		copied := *ce
		copied.Operation = r.op
		err = &copied
	}
	r.err = err
}

// Err returns the first recorded error
func (r *reader) Err() error {
	return r.err
}

func (r *reader) has(name string) bool {
	return r.params.Has(name)
}

func (r *reader) str(name string) string {
	return r.params.String(name)
}

func (r *reader) decimal(name string) decimal.Decimal {
	if r.err != nil {
		return decimal.Zero
	}
	v, err := r.params.Decimal(name)
	r.fail(err)
	return v
}

func (r *reader) optionalDecimal(name string) *decimal.Decimal {
	if r.err != nil {
		return nil
	}
	v, err := r.params.OptionalDecimal(name)
	r.fail(err)
	return v
}

func (r *reader) integer(name string) int {
	if r.err != nil {
		return 0
	}
	v, err := r.params.Int(name)
	r.fail(err)
	return v
}

func (r *reader) boolean(name string) bool {
	if r.err != nil {
		return false
	}
	v, err := r.params.Bool(name)
	r.fail(err)
	return v
}

// positive decodes name and requires it to be greater than zero
func (r *reader) positive(name string) decimal.Decimal {
	v := r.decimal(name)
	if r.err == nil && !v.IsPositive() {
		r.fail(domain.InvalidParameter(r.op, name, "must be positive, got %s", v))
	}
	return v
}

// nonNegative decodes name and rejects values below zero
func (r *reader) nonNegative(name string) decimal.Decimal {
	v := r.decimal(name)
	if r.err == nil && v.IsNegative() {
		r.fail(domain.InvalidParameter(r.op, name, "must not be negative, got %s", v))
	}
	return v
}

// positiveInt decodes name as a whole number of at least one
func (r *reader) positiveInt(name string) int {
	v := r.integer(name)
	if r.err == nil && v < 1 {
		r.fail(domain.InvalidParameter(r.op, name, "must be at least 1, got %d", v))
	}
	return v
}

// count decodes name as a whole number of zero or more
func (r *reader) count(name string) int {
	v := r.integer(name)
	if r.err == nil && v < 0 {
		r.fail(domain.InvalidParameter(r.op, name, "must not be negative, got %d", v))
	}
	return v
}

// share decodes name as a percentage between 0 and 100
func (r *reader) share(name string) decimal.Decimal {
	v := r.nonNegative(name)
	if r.err == nil && v.GreaterThan(domain.Hundred) {
		r.fail(domain.InvalidParameter(r.op, name, "must not exceed 100, got %s", v))
	}
	return v
}

// duration decodes name as a possibly fractional number of years between 0
// and domain.MaxTermYears
func (r *reader) duration(name string) decimal.Decimal {
	v := r.nonNegative(name)
	if r.err == nil && v.GreaterThan(decimal.NewFromInt(domain.MaxTermYears)) {
		r.fail(domain.InvalidParameter(r.op, name, "must be at most %d years, got %s", domain.MaxTermYears, v))
	}
	return v
}

// years decodes name as a whole number of years between 1 and domain.MaxTermYears
func (r *reader) years(name string) int {
	v := r.positiveInt(name)
	if r.err == nil && v > domain.MaxTermYears {
		r.fail(domain.InvalidParameter(r.op, name, "must be at most %d years, got %d", domain.MaxTermYears, v))
	}
	return v
}

// months decodes name as a whole number of months between 1 and domain.MaxTermMonths
func (r *reader) months(name string) int {
	v := r.positiveInt(name)
	if r.err == nil && v > domain.MaxTermMonths {
		r.fail(domain.InvalidParameter(r.op, name, "must be at most %d months, got %d", domain.MaxTermMonths, v))
	}
	return v
}

// oneOf returns the lower-cased value of name when it is among allowed
func (r *reader) oneOf(name string, allowed ...string) string {
	v := strings.ToLower(r.str(name))
	if r.err != nil {
		return v
	}
	for _, a := range allowed {
		if v == a {
			return v
		}
	}
	r.fail(domain.InvalidParameter(r.op, name, "unsupported value %q (expected one of %s)", v, strings.Join(allowed, ", ")))
	return v
}

// check records err when err is not nil and the reader has no error yet
func (r *reader) check(err error) {
	r.fail(err)
}

// termMonths reads a tenure and its unit param ("years" or "months") and
// returns the length in months
func (r *reader) termMonths(valueParam, unitParam string) int {
	value := r.positive(valueParam)
	if r.err != nil {
		return 0
	}
	unit, err := domain.ParseTermUnit(r.str(unitParam))
	if err != nil {
		r.fail(domain.InvalidParameter(r.op, unitParam, "unsupported term unit %q", r.str(unitParam)))
		return 0
	}
	months := value
	if unit == domain.TermYears {
		months = value.Mul(domain.Twelve)
	}
	if !months.Equal(months.Round(0)) {
		r.fail(domain.InvalidParameter(r.op, valueParam, "term must be a whole number of months, got %s %s", value, unit))
		return 0
	}
	if months.GreaterThan(decimal.NewFromInt(domain.MaxTermMonths)) {
		r.fail(domain.InvalidParameter(r.op, valueParam, "term must be at most %d years, got %s %s", domain.MaxTermYears, value, unit))
		return 0
	}
	return int(months.IntPart())
}
