package script

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Script is a named list of steps.
type Script struct {
	Name  string `yaml:"name"`
	Steps []Step `yaml:"steps"`
}

// Step dispatches one action, Repeat times.
type Step struct {
	Action string         `yaml:"action"`
	Text   string         `yaml:"text,omitempty"`
	Args   map[string]any `yaml:"args,omitempty"`
	// Repeat defaults to 1.
	Repeat int `yaml:"repeat,omitempty"`
	// ContinueOnError keeps running when the step fails.
	ContinueOnError bool    `yaml:"continue_on_error,omitempty"`
	Expect          *Expect `yaml:"expect,omitempty"`
}

// Expect describes the result a step should produce. Unset fields are not
// checked. Index is 0-based, matching the result data.
type Expect struct {
	Status  string  `yaml:"status,omitempty"`
	Matches *int    `yaml:"matches,omitempty"`
	Index   *int    `yaml:"index,omitempty"`
	Query   *string `yaml:"query,omitempty"`
	Active  *bool   `yaml:"active,omitempty"`
}

// Parse decodes a script. Unknown fields are rejected.
func Parse(data []byte) (*Script, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var s Script
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("parse script: %w", err)
	}
	if len(s.Steps) == 0 {
		return nil, ErrNoSteps
	}
	for i, step := range s.Steps {
		if step.Action == "" {
			return nil, fmt.Errorf("parse script: step %d: missing action", i+1)
		}
		if step.Repeat < 0 {
			return nil, fmt.Errorf("parse script: step %d: negative repeat", i+1)
		}
	}
	return &s, nil
}

// ParseFile reads and decodes a script file.
func ParseFile(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if s.Name == "" {
		s.Name = path
	}
	return s, nil
}
