// Copyright 2026 © The Loom Authors
// SPDX-License-Identifier: Apache-2.0

// Package prompt renders named-placeholder templates into concrete prompts.
//
// A template uses {name} placeholders resolved against a string map:
//
//	tpl := prompt.MustNew("Translate the following text to {language}:\n{text}")
//	out, err := tpl.Render(map[string]string{"language": "ko", "text": "hello"})
//
// An unbound placeholder at render time is a configuration error, not a
// silent empty substitution.
package prompt

import (
	"regexp"
	"strings"

	"github.com/loomworks/loom/pkg/errors"
)

var placeholderRe = regexp.MustCompile(`\{([a-zA-Z_][a-zA-Z0-9_]*)\}`)

// Template is a prompt template with named placeholders.
type Template struct {
	raw          string
	placeholders []string
}

// New parses a template string. The raw text is kept verbatim; only
// placeholder names are extracted up front.
func New(raw string) (*Template, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, errors.New(errors.CodeConfiguration, "prompt template is empty", nil)
	}

	matches := placeholderRe.FindAllStringSubmatch(raw, -1)
	seen := make(map[string]bool)
	var names []string
	for _, m := range matches {
		if !seen[m[1]] {
			seen[m[1]] = true
			names = append(names, m[1])
		}
	}

	return &Template{raw: raw, placeholders: names}, nil
}

// MustNew parses a template string and panics on error.
// Intended for package-level template literals.
func MustNew(raw string) *Template {
	t, err := New(raw)
	if err != nil {
		panic(err)
	}
	return t
}

// Placeholders returns the distinct placeholder names in first-use order.
func (t *Template) Placeholders() []string {
	return append([]string(nil), t.placeholders...)
}

// Render substitutes every placeholder with its value from vars.
// A placeholder with no value fails with a configuration error.
func (t *Template) Render(vars map[string]string) (string, error) {
	for _, name := range t.placeholders {
		if _, ok := vars[name]; !ok {
			return "", errors.New(errors.CodeConfiguration, "unbound template placeholder", nil).
				WithContext("placeholder", name)
		}
	}

	return placeholderRe.ReplaceAllStringFunc(t.raw, func(match string) string {
		name := match[1 : len(match)-1]
		return vars[name]
	}), nil
}

// String returns the raw template text.
func (t *Template) String() string {
	return t.raw
}
