// Copyright 2026 © The Loom Authors
// SPDX-License-Identifier: Apache-2.0

package guardrails

import (
	"context"
	"strings"
)

// ContentFilter blocks text containing any of a configured list of
// substrings, matched case-insensitively. It is applied to chain input
// and output alike.
type ContentFilter struct {
	blocked []string
}

// NewContentFilter creates a content filter for the given blocked patterns.
// Empty patterns are ignored.
func NewContentFilter(blockedPatterns ...string) *ContentFilter {
	f := &ContentFilter{}
	for _, p := range blockedPatterns {
		p = strings.TrimSpace(p)
		if p != "" {
			f.blocked = append(f.blocked, strings.ToLower(p))
		}
	}
	return f
}

// ID returns the guardrail identifier.
func (f *ContentFilter) ID() string {
	return "content-filter"
}

// Check blocks text containing any blocked pattern.
func (f *ContentFilter) Check(_ context.Context, text string) Result {
	if text == "" || len(f.blocked) == 0 {
		return Pass(f.ID())
	}

	normalized := strings.ToLower(text)
	for _, pattern := range f.blocked {
		if strings.Contains(normalized, pattern) {
			return Block(f.ID(), "content policy violation: blocked pattern "+pattern)
		}
	}

	return Pass(f.ID())
}

var _ Guardrail = (*ContentFilter)(nil)
