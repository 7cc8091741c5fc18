// Copyright 2026 © The Loom Authors
// SPDX-License-Identifier: Apache-2.0

package pipeline

import (
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/loomworks/loom/pkg/errors"
	"github.com/loomworks/loom/pkg/llm"
)

// Spec is a declarative pipeline definition, loadable from YAML or JSON:
//
//	name: fix-and-translate
//	steps:
//	  - kind: proofread
//	  - kind: translate
//	    language: ko
//	  - kind: summarize
//	    bullets: 2
type Spec struct {
	Name  string     `yaml:"name" json:"name"`
	Steps []StepSpec `yaml:"steps" json:"steps"`
}

// StepSpec describes one pipeline step.
type StepSpec struct {
	Kind       string   `yaml:"kind" json:"kind"`
	Bullets    int      `yaml:"bullets,omitempty" json:"bullets,omitempty"`
	Categories []string `yaml:"categories,omitempty" json:"categories,omitempty"`
	Fields     []string `yaml:"fields,omitempty" json:"fields,omitempty"`
	Language   string   `yaml:"language,omitempty" json:"language,omitempty"`
	Tone       string   `yaml:"tone,omitempty" json:"tone,omitempty"`
}

// ParseYAML parses a pipeline spec from YAML.
func ParseYAML(data []byte) (*Spec, error) {
	var spec Spec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, errors.New(errors.CodeConfiguration, "invalid pipeline YAML", err)
	}
	return validateSpec(&spec)
}

// ParseJSON parses a pipeline spec from JSON.
func ParseJSON(data []byte) (*Spec, error) {
	var spec Spec
	if err := json.Unmarshal(data, &spec); err != nil {
		return nil, errors.New(errors.CodeConfiguration, "invalid pipeline JSON", err)
	}
	return validateSpec(&spec)
}

func validateSpec(spec *Spec) (*Spec, error) {
	if strings.TrimSpace(spec.Name) == "" {
		return nil, errors.New(errors.CodeConfiguration, "pipeline spec requires a name", nil)
	}
	if len(spec.Steps) == 0 {
		return nil, errors.New(errors.CodeConfiguration, "pipeline spec requires steps", nil).
			WithContext("pipeline", spec.Name)
	}
	for i, step := range spec.Steps {
		if !knownStepKind(step.Kind) {
			return nil, errors.New(errors.CodeConfiguration,
				fmt.Sprintf("unknown pipeline step kind %q", step.Kind), nil).
				WithContext("pipeline", spec.Name).
				WithContext("step", i)
		}
	}
	return spec, nil
}

func knownStepKind(kind string) bool {
	switch strings.ToLower(kind) {
	case "summarize", "classify", "extract", "translate", "rewrite", "proofread":
		return true
	}
	return false
}

// Builder compiles the spec into a pipeline builder bound to provider.
func (s *Spec) Builder(provider llm.Provider) (*Builder, error) {
	b := New(s.Name, provider)
	for _, step := range s.Steps {
		switch strings.ToLower(step.Kind) {
		case "summarize":
			b.Summarize(step.Bullets)
		case "classify":
			b.Classify(step.Categories...)
		case "extract":
			b.Extract(step.Fields...)
		case "translate":
			if strings.TrimSpace(step.Language) == "" {
				return nil, errors.New(errors.CodeConfiguration, "translate step requires a language", nil).
					WithContext("pipeline", s.Name)
			}
			b.Translate(step.Language)
		case "rewrite":
			b.Rewrite(step.Tone)
		case "proofread":
			b.Proofread()
		}
	}
	return b, nil
}
