package classify

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestColorFor_DefaultBands(t *testing.T) {
	rules := DefaultRules()

	cases := []struct {
		temp  float64
		label string
		color string
	}{
		{9.9, "Cold", "#ff4d4f"},
		{10.0, "Moderate", "#faad14"},
		{24.9, "Moderate", "#faad14"},
		{25.0, "Warm", "#52c41a"},
		{-5, "Cold", "#ff4d4f"},
	}

	for _, tc := range cases {
		color, label := ColorFor(tc.temp, rules)
		assert.Equal(t, tc.label, label, "temp %v", tc.temp)
		assert.Equal(t, tc.color, color, "temp %v", tc.temp)
	}
}

func TestColorFor_FirstMatchWins(t *testing.T) {
	rules := []Rule{
		{Op: GreaterThan, Value: 0, Color: "#000001", Label: "Above zero"},
		{Op: GreaterThan, Value: 20, Color: "#000002", Label: "Hot"},
	}

	_, label := ColorFor(30, rules)

	assert.Equal(t, "Above zero", label)
}

func TestColorFor_Fallback(t *testing.T) {
	rules := []Rule{{Op: Equal, Value: 1, Color: "#123456", Label: "One"}}

	color, label := ColorFor(2, rules)

	assert.Equal(t, FallbackColor, color)
	assert.Equal(t, FallbackLabel, label)
}

func TestRuleMatches_Comparators(t *testing.T) {
	assert.True(t, Rule{Op: LessOrEqual, Value: 5}.Matches(5))
	assert.False(t, Rule{Op: LessThan, Value: 5}.Matches(5))
	assert.True(t, Rule{Op: GreaterThan, Value: 5}.Matches(5.1))
	assert.True(t, Rule{Op: Equal, Value: 5}.Matches(5))
	assert.False(t, Rule{Op: "~", Value: 5}.Matches(5))
}

func TestValidate(t *testing.T) {
	require.NoError(t, Validate(DefaultRules()))

	assert.Error(t, Validate(nil))
	assert.Error(t, Validate([]Rule{{Op: "!=", Value: 1, Color: "#ffffff", Label: "x"}}))
	assert.Error(t, Validate([]Rule{{Op: LessThan, Value: 1, Color: "red", Label: "x"}}))
}

func TestLoadRules(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.json")
	body := `[
		{"operator": "<", "value": 0, "color": "#0000ff", "label": "Freezing"},
		{"operator": ">=", "value": 0, "operatorSecond": "<", "valueSecond": 30, "color": "#00ff00", "label": "Fine"}
	]`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	rules, err := LoadRules(path)
	require.NoError(t, err)
	require.Len(t, rules, 2)

	_, label := ColorFor(15, rules)
	assert.Equal(t, "Fine", label)
}
