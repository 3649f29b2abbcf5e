// Package harness runs conformance scenarios: YAML documents holding a
// world, a rule set, and expectations, all as ASCII art in the default
// palette. Scenarios keep end-to-end behavior reviewable in a diff, and the
// golden runner snapshots the world after every tick.
package harness

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scenario defines one conformance scenario.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// World is the initial world as ASCII art.
	World string `yaml:"world"`

	// Rules lists the rule images in declaration order, which is rule
	// priority.
	Rules []RuleArt `yaml:"rules"`

	// Ticks is how many ticks to run. Defaults to 1.
	Ticks int `yaml:"ticks,omitempty"`

	// Budget caps backtracking steps per rule search. Zero is unlimited.
	Budget int `yaml:"budget,omitempty"`

	// Expect validates the outcome. If nil, only the golden snapshot is
	// compared.
	Expect *ExpectClause `yaml:"expect,omitempty"`
}

// RuleArt is one rule's before/after pair as ASCII art.
type RuleArt struct {
	Name   string `yaml:"name"`
	Before string `yaml:"before"`
	After  string `yaml:"after"`
}

// ExpectClause specifies the expected outcome.
type ExpectClause struct {
	// Final is the expected world rendering after the last tick.
	Final string `yaml:"final,omitempty"`

	// Applications is the expected total number of applied rewrites
	// across all ticks.
	Applications *int `yaml:"applications,omitempty"`

	// Stable asserts whether the world reached a fixpoint no wake can
	// disturb.
	Stable *bool `yaml:"stable,omitempty"`
}

// LoadScenario reads one scenario document.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}
	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse scenario %s: %w", path, err)
	}
	if s.Name == "" {
		return nil, fmt.Errorf("scenario %s: name is required", path)
	}
	if s.World == "" {
		return nil, fmt.Errorf("scenario %q: world is required", s.Name)
	}
	if len(s.Rules) == 0 {
		return nil, fmt.Errorf("scenario %q: at least one rule is required", s.Name)
	}
	if s.Ticks <= 0 {
		s.Ticks = 1
	}
	return &s, nil
}
