package compare

import (
	"errors"
	"testing"

	"github.com/rgehrsitz/fincalc/internal/domain"
	"github.com/shopspring/decimal"
)

func outcome(name string, kv ...any) Outcome {
	o := Outcome{Name: name}
	for i := 0; i+1 < len(kv); i += 2 {
		o.Metrics = append(o.Metrics, domain.Metric{
			Name:  kv[i].(string),
			Value: decimal.NewFromInt(int64(kv[i+1].(int))),
		})
	}
	return o
}

func TestComposer_Compose_Minimize(t *testing.T) {
	composer := NewComposer()

	loan := outcome("Loan", "total_cost", 1200000, "interest", 200000)
	fd := outcome("Break FD", "total_cost", 1100000, "lost_interest", 90000)

	c, err := composer.Compose(loan, fd, Criterion{Metric: "total_cost", Goal: Minimize})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if c.Winner != "Break FD" {
		t.Errorf("Expected Break FD to win, got %s", c.Winner)
	}
	if c.WinnerIsBase {
		t.Error("Expected the alternative to win")
	}
	if !c.Margin.Equal(decimal.NewFromInt(100000)) {
		t.Errorf("Expected margin 100000, got %s", c.Margin)
	}

	d, ok := c.Diff("total_cost")
	if !ok {
		t.Fatal("Expected a diff for total_cost")
	}
	if !d.Diff.Equal(decimal.NewFromInt(-100000)) {
		t.Errorf("Expected diff -100000, got %s", d.Diff)
	}
	if d.DiffPercent.StringFixed(2) != "-8.33" {
		t.Errorf("Expected diff percent -8.33, got %s", d.DiffPercent.StringFixed(2))
	}

	// union of metric names: base order first, then alternative-only
	if len(c.Diffs) != 3 {
		t.Fatalf("Expected 3 diffs, got %d", len(c.Diffs))
	}
	if c.Diffs[1].Metric != "interest" || c.Diffs[1].HasAlternative {
		t.Errorf("Expected interest to be base-only, got %+v", c.Diffs[1])
	}
	if c.Diffs[2].Metric != "lost_interest" || c.Diffs[2].HasBase {
		t.Errorf("Expected lost_interest to be alternative-only, got %+v", c.Diffs[2])
	}
}

func TestComposer_Compose_TieGoesToBase(t *testing.T) {
	composer := NewComposer()

	c, err := composer.Compose(outcome("A", "value", 10), outcome("B", "value", 10), Criterion{Metric: "value", Goal: Maximize})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if c.Winner != "A" || !c.WinnerIsBase {
		t.Errorf("Expected the base to win a tie, got %s", c.Winner)
	}
	if !c.Margin.IsZero() {
		t.Errorf("Expected zero margin, got %s", c.Margin)
	}
}

func TestComposer_Compose_MissingMetric(t *testing.T) {
	composer := NewComposer()

	_, err := composer.Compose(outcome("A", "value", 10), outcome("B", "other", 10), Criterion{Metric: "value", Goal: Maximize})
	if !errors.Is(err, domain.ErrInvalidParameter) {
		t.Errorf("Expected InvalidParameter, got %v", err)
	}

	_, err = composer.Compose(outcome("A", "value", 10), outcome("B", "value", 10), Criterion{Metric: "value", Goal: "sideways"})
	if !errors.Is(err, domain.ErrInvalidParameter) {
		t.Errorf("Expected InvalidParameter for an unknown goal, got %v", err)
	}
}

func TestComposer_ComposeSet(t *testing.T) {
	composer := NewComposer()

	base := outcome("Stay", "income", 3000000)
	alts := []Outcome{
		outcome("Switch twice", "income", 3200000),
		outcome("Switch often", "income", 3500000),
		outcome("Sabbatical", "income", 2500000),
	}

	set, err := composer.ComposeSet(base, alts, Criterion{Metric: "income", Goal: Maximize})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if set.Best != "Switch often" {
		t.Errorf("Expected Switch often to be best, got %s", set.Best)
	}
	if len(set.Comparisons) != 3 {
		t.Fatalf("Expected 3 comparisons, got %d", len(set.Comparisons))
	}
	if len(set.Recommendations) != 2 {
		t.Fatalf("Expected 2 recommendations, got %d: %v", len(set.Recommendations), set.Recommendations)
	}
	expected := "Best income: Switch often is 500.0K higher than Stay"
	if set.Recommendations[0] != expected {
		t.Errorf("Expected %q, got %q", expected, set.Recommendations[0])
	}
}

func TestGenerateRecommendations_BaseBest(t *testing.T) {
	composer := NewComposer()

	set, err := composer.ComposeSet(outcome("Buy", "cost", 100), []Outcome{outcome("Lease", "cost", 150)}, Criterion{Metric: "cost", Goal: Minimize})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if len(set.Recommendations) != 1 || set.Recommendations[0] != "Keep Buy: no alternative improves cost" {
		t.Errorf("Unexpected recommendations: %v", set.Recommendations)
	}
}

func TestGenerateRecommendations_Empty(t *testing.T) {
	recs := GenerateRecommendations(&ComparisonSet{Base: outcome("Only")})
	if len(recs) != 0 {
		t.Errorf("Expected no recommendations, got %v", recs)
	}
}

func TestParseGoal(t *testing.T) {
	tests := map[string]Goal{"min": Minimize, "Maximize": Maximize, " lower ": Minimize, "higher": Maximize}
	for input, want := range tests {
		got, err := ParseGoal(input)
		if err != nil {
			t.Errorf("ParseGoal(%q) returned error: %v", input, err)
			continue
		}
		if got != want {
			t.Errorf("ParseGoal(%q) = %s, want %s", input, got, want)
		}
	}

	if _, err := ParseGoal("sideways"); err == nil {
		t.Error("Expected an error for an unknown goal")
	}
}
