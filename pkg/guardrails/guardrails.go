// Copyright 2026 © The Loom Authors
// SPDX-License-Identifier: Apache-2.0

// Package guardrails provides pre/post validation hooks for chains.
//
// Guardrails run at two points around a wrapped chain:
//   - Input: before the chain sees the text (length limits, blocked content)
//   - Output: after the chain produced text, before it reaches the caller
//
// A guardrail either passes (possibly mutating the text, e.g. truncation),
// or blocks with a human-readable reason. Blocking is an expected, named
// outcome, not an incidental crash.
package guardrails

import "context"

// Result is the outcome of a guardrail check.
type Result struct {
	// Blocked indicates the content should not proceed.
	Blocked bool

	// Reason explains why content was blocked (empty if not blocked).
	Reason string

	// GuardrailID identifies which guardrail produced this result.
	GuardrailID string

	// Text is the (possibly rewritten) content when Mutated is set.
	Text string

	// Mutated indicates the guardrail rewrote the content instead of
	// blocking it.
	Mutated bool
}

// Pass returns a non-blocking result that leaves the text untouched.
func Pass(id string) Result {
	return Result{GuardrailID: id}
}

// Block returns a blocking result with the given reason.
func Block(id, reason string) Result {
	return Result{Blocked: true, Reason: reason, GuardrailID: id}
}

// Rewrite returns a passing result that replaces the text.
func Rewrite(id, text string) Result {
	return Result{GuardrailID: id, Text: text, Mutated: true}
}

// Guardrail validates or rewrites a piece of chain text.
type Guardrail interface {
	// ID returns a unique identifier for this guardrail, used in
	// failure reasons and telemetry.
	ID() string

	// Check examines the text and decides whether it may proceed.
	Check(ctx context.Context, text string) Result
}

// Run applies guardrails in order, threading mutations through.
// It returns the final text and the first blocking result, if any.
// The caller decides how to surface a block; Run itself never errors.
func Run(ctx context.Context, rails []Guardrail, text string) (string, *Result) {
	for _, rail := range rails {
		select {
		case <-ctx.Done():
			blocked := Block("system", "guardrail check cancelled")
			return text, &blocked
		default:
		}

		result := rail.Check(ctx, text)
		if result.GuardrailID == "" {
			result.GuardrailID = rail.ID()
		}
		if result.Blocked {
			return text, &result
		}
		if result.Mutated {
			text = result.Text
		}
	}
	return text, nil
}
