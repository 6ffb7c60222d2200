package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Scenario describes the synthetic widget tree a run builds and churns.
type Scenario struct {
	Name     string        `yaml:"name"`
	Duration time.Duration `yaml:"duration"`
	// Depth and Fanout shape every mounted subtree below the root.
	Depth  int `yaml:"depth"`
	Fanout int `yaml:"fanout"`
	// Churn is the number of root subtrees torn down and remounted per frame.
	Churn int   `yaml:"churn"`
	Seed  int64 `yaml:"seed"`
}

func defaultScenario() Scenario {
	return Scenario{
		Name:     "default",
		Duration: 10 * time.Second,
		Depth:    4,
		Fanout:   6,
		Churn:    2,
		Seed:     1,
	}
}

// loadScenario reads a YAML scenario on top of the defaults. The result is
// not validated, since flags may still override it.
func loadScenario(path string) (Scenario, error) {
	s := defaultScenario()
	data, err := os.ReadFile(path)
	if err != nil {
		return s, fmt.Errorf("reading scenario: %w", err)
	}
	if err := yaml.Unmarshal(data, &s); err != nil {
		return s, fmt.Errorf("parsing scenario %s: %w", path, err)
	}
	return s, nil
}

func (s Scenario) validate() error {
	var errs []error
	if s.Duration <= 0 {
		errs = append(errs, errors.New("duration must be positive"))
	}
	if s.Depth < 1 {
		errs = append(errs, errors.New("depth must be at least 1"))
	}
	if s.Fanout < 1 {
		errs = append(errs, errors.New("fanout must be at least 1"))
	}
	if s.Churn < 0 || s.Churn > s.Fanout {
		errs = append(errs, fmt.Errorf("churn must be between 0 and fanout (%d)", s.Fanout))
	}
	return errors.Join(errs...)
}

// nodesPerSubtree is the number of entities one mounted subtree holds.
func (s Scenario) nodesPerSubtree() int {
	n, level := 0, 1
	for d := 0; d < s.Depth; d++ {
		n += level
		level *= s.Fanout
	}
	return n
}
