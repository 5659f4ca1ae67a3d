package calculator

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/rgehrsitz/fincalc/internal/domain"
	"github.com/rgehrsitz/fincalc/internal/rates"
)

// ErrUnknownCalculator is returned for names that are not registered
var ErrUnknownCalculator = errors.New("unknown calculator")

// Registry provides a central registry for all available calculators.
// It enables creation of calculators from string parameters, useful for CLI commands.
type Registry struct {
	factories map[string]Factory
	deps      Deps
}

// builtins lists every calculator shipped with the engine
var builtins = []definition{
	// loans
	emiCalculator,
	loanScheduleCalculator,
	emiPrepayCalculator,
	debtPayoffCalculator,
	loanVsFDCalculator,
	loanVsSWPCalculator,
	equivalentRateCalculator,
	// time value
	emiInflationCalculator,
	emiVsRentCalculator,
	futureValueCalculator,
	realReturnCalculator,
	// investments
	sipCalculator,
	swpCalculator,
	compoundInterestCalculator,
	simpleInterestCalculator,
	costOfDelayCalculator,
	misCalculator,
	scssCalculator,
	// decisions
	chitVsMFCalculator,
	dividendVsGrowthCalculator,
	carLeaseVsBuyCalculator,
	jobSwitchCalculator,
	// insurance
	licPolicyCalculator,
	insurancePolicyCalculator,
	// retirement
	retirementCalculator,
	fireCalculator,
	gratuityCalculator,
	// goals
	futureCostCalculator,
	childEducationCalculator,
	marriageCalculator,
	higherEducationCalculator,
	// life choices
	careerBreakCalculator,
	dualIncomeCalculator,
	taxSavingsCalculator,
	twoCarTCOCalculator,
	currencyDepreciationCalculator,
	relocationCalculator,
	lifestyleHealthROICalculator,
	diyVsOutsourceCalculator,
	// household
	workFromHomeCalculator,
	fuelCostCalculator,
	budgetPlannerCalculator,
	pricePerUseCalculator,
	timeValueHourCalculator,
	socialMediaTimeCalculator,
}

// NewRegistry creates a new registry with all built-in calculators registered.
// A nil resolver acts as an empty rate store.
func NewRegistry(deps Deps) *Registry {
	if deps.Resolver == nil {
		deps.Resolver = rates.NewResolver(nil)
	}
	deps.Logger = domain.OrNop(deps.Logger)

	registry := &Registry{
		factories: make(map[string]Factory),
		deps:      deps,
	}
	for _, def := range builtins {
		registry.Register(def.name, def.factory())
	}
	return registry
}

// SetLogger replaces the logger; nil restores the no-op logger
func (r *Registry) SetLogger(logger Logger) {
	r.deps.Logger = domain.OrNop(logger)
}

// Register adds a calculator factory to the registry.
func (r *Registry) Register(name string, factory Factory) {
	r.factories[name] = factory
}

// Create creates a calculator by name.
func (r *Registry) Create(name string) (Calculator, error) {
	factory, exists := r.factories[name]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCalculator, name)
	}
	return factory(r.deps), nil
}

// List returns the names of all registered calculators in sorted order.
func (r *Registry) List() []string {
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Calculators returns one instance of every registered calculator, sorted by name.
func (r *Registry) Calculators() []Calculator {
	names := r.List()
	out := make([]Calculator, 0, len(names))
	for _, name := range names {
		out = append(out, r.factories[name](r.deps))
	}
	return out
}

// Run creates the named calculator and runs it
func (r *Registry) Run(ctx context.Context, name string, params Params) (*Result, error) {
	calc, err := r.Create(name)
	if err != nil {
		return nil, err
	}

	r.deps.Logger.Debugf("running calculator %s with %d parameters", name, len(params))
	result, err := calc.Calculate(ctx, params)
	if err != nil {
		if kind, ok := domain.KindOf(err); ok {
			r.deps.Logger.Debugf("calculator %s failed (%s): %v", name, kind, err)
		} else {
			r.deps.Logger.Warnf("calculator %s failed: %v", name, err)
		}
		return nil, err
	}
	return result, nil
}

// ParseParamSpec parses a calculator invocation string.
// Format: "calculator_name:param1=value1,param2=value2"
// Example: "emi:principal=500000,rate=9.5,tenure=15"
// The parameter list may be omitted: "sip".
func (r *Registry) ParseParamSpec(spec string) (string, Params, error) {
	parts := strings.SplitN(spec, ":", 2)
	name := strings.TrimSpace(parts[0])
	if name == "" {
		return "", nil, fmt.Errorf("invalid calculator spec format, expected 'name:params', got: %s", spec)
	}
	if _, exists := r.factories[name]; !exists {
		return "", nil, fmt.Errorf("%w: %s", ErrUnknownCalculator, name)
	}

	params := make(Params)
	if len(parts) == 2 {
		paramsStr := strings.TrimSpace(parts[1])
		if paramsStr != "" {
			for _, paramPair := range strings.Split(paramsStr, ",") {
				if err := params.Set(paramPair); err != nil {
					return "", nil, err
				}
			}
		}
	}
	return name, params, nil
}

// Set parses one "key=value" pair into p
func (p Params) Set(pair string) error {
	kv := strings.SplitN(pair, "=", 2)
	if len(kv) != 2 || strings.TrimSpace(kv[0]) == "" {
		return fmt.Errorf("invalid parameter format, expected 'key=value', got: %s", pair)
	}
	p[strings.TrimSpace(kv[0])] = strings.TrimSpace(kv[1])
	return nil
}
