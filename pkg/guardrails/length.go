// Copyright 2026 © The Loom Authors
// SPDX-License-Identifier: Apache-2.0

package guardrails

import (
	"context"
	"fmt"
)

// InputLength bounds the character length of chain input.
// With Truncate set it rewrites oversized input down to MaxCharacters
// instead of blocking it.
type InputLength struct {
	MaxCharacters int
	Truncate      bool
}

// NewInputLength creates a length guardrail that blocks oversized input.
func NewInputLength(maxCharacters int) *InputLength {
	return &InputLength{MaxCharacters: maxCharacters}
}

// NewTruncatingInputLength creates a length guardrail that truncates
// oversized input instead of blocking it.
func NewTruncatingInputLength(maxCharacters int) *InputLength {
	return &InputLength{MaxCharacters: maxCharacters, Truncate: true}
}

// ID returns the guardrail identifier.
func (g *InputLength) ID() string {
	return "input-length"
}

// Check blocks or truncates text longer than MaxCharacters.
// Length is counted in runes so multi-byte text is not cut mid-character.
func (g *InputLength) Check(_ context.Context, text string) Result {
	if g.MaxCharacters <= 0 {
		return Pass(g.ID())
	}

	runes := []rune(text)
	if len(runes) <= g.MaxCharacters {
		return Pass(g.ID())
	}

	if g.Truncate {
		return Rewrite(g.ID(), string(runes[:g.MaxCharacters]))
	}

	return Block(g.ID(), fmt.Sprintf("input length %d exceeds limit of %d characters",
		len(runes), g.MaxCharacters))
}

var _ Guardrail = (*InputLength)(nil)
