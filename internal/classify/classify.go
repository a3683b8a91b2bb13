package classify

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
)

// Comparator is one of <, <=, >, >=, =.
type Comparator string

const (
	LessThan       Comparator = "<"
	LessOrEqual    Comparator = "<="
	GreaterThan    Comparator = ">"
	GreaterOrEqual Comparator = ">="
	Equal          Comparator = "="
)

const (
	// FallbackColor is used when no rule matches and for regions that have no data yet.
	FallbackColor = "#cccccc"
	FallbackLabel = "No data"

	// ErrorColor marks a region whose last fetch failed.
	ErrorColor = "#999999"
)

// Rule is a threshold entry. When SecondOp is set, both clauses must hold.
type Rule struct {
	Op          Comparator `json:"operator" validate:"required,oneof=< <= > >= ="`
	Value       float64    `json:"value"`
	SecondOp    Comparator `json:"operatorSecond,omitempty" validate:"omitempty,oneof=< <= > >= ="`
	SecondValue float64    `json:"valueSecond,omitempty"`
	Color       string     `json:"color" validate:"required,hexcolor"`
	Label       string     `json:"label" validate:"required"`
}

// DefaultRules is the Cold / Moderate / Warm banding used when no rules file is configured.
func DefaultRules() []Rule {
	return []Rule{
		{Op: LessThan, Value: 10, Color: "#ff4d4f", Label: "Cold"},
		{Op: GreaterOrEqual, Value: 10, SecondOp: LessThan, SecondValue: 25, Color: "#faad14", Label: "Moderate"},
		{Op: GreaterOrEqual, Value: 25, Color: "#52c41a", Label: "Warm"},
	}
}

// Matches reports whether t satisfies the rule.
func (r Rule) Matches(t float64) bool {
	if !compare(t, r.Op, r.Value) {
		return false
	}
	if r.SecondOp != "" {
		return compare(t, r.SecondOp, r.SecondValue)
	}
	return true
}

// ColorFor walks rules in declaration order and returns the first match.
func ColorFor(t float64, rules []Rule) (color, label string) {
	for _, r := range rules {
		if r.Matches(t) {
			return r.Color, r.Label
		}
	}
	return FallbackColor, FallbackLabel
}

func compare(v float64, op Comparator, threshold float64) bool {
	switch op {
	case LessThan:
		return v < threshold
	case LessOrEqual:
		return v <= threshold
	case GreaterThan:
		return v > threshold
	case GreaterOrEqual:
		return v >= threshold
	case Equal:
		return v == threshold
	default:
		return false
	}
}

var validate = validator.New()

// Validate checks every rule's comparators and colour.
func Validate(rules []Rule) error {
	if len(rules) == 0 {
		return fmt.Errorf("at least one color rule is required")
	}
	for i, r := range rules {
		if err := validate.Struct(r); err != nil {
			return fmt.Errorf("color rule %d: %w", i, err)
		}
	}
	return nil
}

// LoadRules reads a JSON array of rules from path and validates it.
func LoadRules(path string) ([]Rule, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read color rules: %w", err)
	}

	var rules []Rule
	if err := json.Unmarshal(raw, &rules); err != nil {
		return nil, fmt.Errorf("decode color rules: %w", err)
	}

	if err := Validate(rules); err != nil {
		return nil, err
	}
	return rules, nil
}
