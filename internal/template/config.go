// Package template holds the rule-based strategy template model.
// It only validates structural shape; rule evaluation is the engine's job.
package template

import "encoding/json"

// RuleOp is a comparison operator in an entry rule
type RuleOp string

const (
	OpGT  RuleOp = ">"
	OpGTE RuleOp = ">="
	OpLT  RuleOp = "<"
	OpLTE RuleOp = "<="
	OpEQ  RuleOp = "=="
	OpNEQ RuleOp = "!="
)

// EntryRule is one comparison condition: a price/indicator field against a
// numeric threshold
type EntryRule struct {
	Field string  `json:"field"`
	Op    RuleOp  `json:"op"`
	Value float64 `json:"value"`
}

// Config is a template's decoded rule configuration. EntryRules keeps
// declaration order; ScoreField is optional.
type Config struct {
	EntryRules []EntryRule `json:"entry_rules"`
	ScoreField *string     `json:"score_field,omitempty"`
}

// rawConfig defers entry_rules decoding so a missing key and a non-list
// value can both be told apart from an empty list
type rawConfig struct {
	EntryRules json.RawMessage `json:"entry_rules"`
	ScoreField *string         `json:"score_field"`
}

// Decode parses a template's raw config blob. It returns nil for anything
// malformed: invalid JSON, a missing entry_rules key, or a non-list
// entry_rules value. There is no partial config, and no semantic validation
// of field names, operators, or values.
func Decode(raw string) *Config {
	var parsed rawConfig
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil
	}

	if len(parsed.EntryRules) == 0 {
		// Key absent or explicit null
		return nil
	}

	var items []json.RawMessage
	if err := json.Unmarshal(parsed.EntryRules, &items); err != nil {
		// Not a list
		return nil
	}

	if items == nil {
		// entry_rules: null decodes without error but is not a list
		return nil
	}

	// Decode entries individually and leniently: a malformed entry is passed
	// through as its zero value instead of invalidating the whole config.
	// Cardinality and order always match the input list.
	rules := make([]EntryRule, len(items))
	for i, item := range items {
		_ = json.Unmarshal(item, &rules[i])
	}

	return &Config{
		EntryRules: rules,
		ScoreField: parsed.ScoreField,
	}
}
