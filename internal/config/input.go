package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/rgehrsitz/fincalc/internal/calculator"
	"github.com/rgehrsitz/fincalc/internal/compare"
	"gopkg.in/yaml.v3"
)

// BatchFile lists calculator runs executed in order
type BatchFile struct {
	Runs []calculator.Invocation `yaml:"runs"`
}

// ComparisonFile describes a base run compared against alternatives
type ComparisonFile struct {
	Metric       string                  `yaml:"metric"`
	Goal         string                  `yaml:"goal"`
	Base         calculator.Invocation   `yaml:"base"`
	Alternatives []calculator.Invocation `yaml:"alternatives"`
}

// Criterion returns the parsed metric and goal
func (f *ComparisonFile) Criterion() (compare.Criterion, error) {
	goal, err := compare.ParseGoal(f.Goal)
	if err != nil {
		return compare.Criterion{}, err
	}
	return compare.Criterion{Metric: f.Metric, Goal: goal}, nil
}

// InputParser handles parsing of batch and comparison input files
type InputParser struct {
	known map[string]bool
}

// NewInputParser creates a new input parser. When calculators is not empty,
// runs naming any other calculator are rejected.
func NewInputParser(calculators ...string) *InputParser {
	ip := &InputParser{}
	if len(calculators) > 0 {
		ip.known = make(map[string]bool, len(calculators))
		for _, name := range calculators {
			ip.known[name] = true
		}
	}
	return ip
}

// LoadBatch loads a batch file from disk
func (ip *InputParser) LoadBatch(filename string) (*BatchFile, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filename, err)
	}
	return ip.ParseBatch(data)
}

// ParseBatch parses and validates batch YAML
func (ip *InputParser) ParseBatch(data []byte) (*BatchFile, error) {
	var batch BatchFile
	if err := yaml.Unmarshal(data, &batch); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if err := ip.ValidateBatch(&batch); err != nil {
		return nil, fmt.Errorf("batch validation failed: %w", err)
	}
	return &batch, nil
}

// ValidateBatch checks that every run names a calculator
func (ip *InputParser) ValidateBatch(batch *BatchFile) error {
	if len(batch.Runs) == 0 {
		return fmt.Errorf("no runs provided")
	}
	for i := range batch.Runs {
		if err := ip.validateInvocation(&batch.Runs[i]); err != nil {
			return fmt.Errorf("run %d: %w", i+1, err)
		}
	}
	return nil
}

// LoadComparison loads a comparison file from disk
func (ip *InputParser) LoadComparison(filename string) (*ComparisonFile, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filename, err)
	}
	return ip.ParseComparison(data)
}

// ParseComparison parses and validates comparison YAML
func (ip *InputParser) ParseComparison(data []byte) (*ComparisonFile, error) {
	var file ComparisonFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if err := ip.ValidateComparison(&file); err != nil {
		return nil, fmt.Errorf("comparison validation failed: %w", err)
	}
	return &file, nil
}

// ValidateComparison checks the criterion and every invocation
func (ip *InputParser) ValidateComparison(file *ComparisonFile) error {
	if strings.TrimSpace(file.Metric) == "" {
		return fmt.Errorf("metric is required")
	}
	if _, err := compare.ParseGoal(file.Goal); err != nil {
		return err
	}
	if err := ip.validateInvocation(&file.Base); err != nil {
		return fmt.Errorf("base: %w", err)
	}
	if len(file.Alternatives) == 0 {
		return fmt.Errorf("at least one alternative is required")
	}
	names := map[string]bool{file.Base.Label(): true}
	for i := range file.Alternatives {
		alt := &file.Alternatives[i]
		if err := ip.validateInvocation(alt); err != nil {
			return fmt.Errorf("alternative %d: %w", i+1, err)
		}
		if names[alt.Label()] {
			return fmt.Errorf("alternative %d: duplicate name %q", i+1, alt.Label())
		}
		names[alt.Label()] = true
	}
	return nil
}

func (ip *InputParser) validateInvocation(inv *calculator.Invocation) error {
	inv.Calculator = strings.TrimSpace(inv.Calculator)
	if inv.Calculator == "" {
		return fmt.Errorf("calculator is required")
	}
	if ip.known != nil && !ip.known[inv.Calculator] {
		return fmt.Errorf("%w: %s", calculator.ErrUnknownCalculator, inv.Calculator)
	}
	if inv.Params == nil {
		inv.Params = calculator.Params{}
	}
	return nil
}
