// Copyright 2026 © The Loom Authors
// SPDX-License-Identifier: Apache-2.0

package chain

import (
	"context"

	"github.com/loomworks/loom/pkg/errors"
	"github.com/loomworks/loom/pkg/guardrails"
)

// GuardedChain wraps a chain with ordered input and output guardrails.
// Input guardrails run before the wrapped chain; the first block
// short-circuits and the wrapped chain never executes. Output guardrails
// run against the wrapped chain's output text; a block there fails the
// invocation even though the wrapped chain already ran.
//
// Known limitation: side effects of the wrapped chain (memory writes,
// tool calls) are not rolled back when an output guardrail blocks.
type GuardedChain struct {
	name    string
	wrapped Chain
	input   []guardrails.Guardrail
	output  []guardrails.Guardrail
}

// GuardedOption configures a GuardedChain.
type GuardedOption func(*GuardedChain)

// WithInputGuardrails appends input guardrails, run in order.
func WithInputGuardrails(rails ...guardrails.Guardrail) GuardedOption {
	return func(c *GuardedChain) {
		c.input = append(c.input, rails...)
	}
}

// WithOutputGuardrails appends output guardrails, run in order.
func WithOutputGuardrails(rails ...guardrails.Guardrail) GuardedOption {
	return func(c *GuardedChain) {
		c.output = append(c.output, rails...)
	}
}

// NewGuarded creates a GuardedChain around wrapped.
func NewGuarded(name string, wrapped Chain, opts ...GuardedOption) (*GuardedChain, error) {
	if name == "" {
		return nil, errors.New(errors.CodeConfiguration, "chain name is required", nil)
	}
	if wrapped == nil {
		return nil, errors.New(errors.CodeConfiguration, "guarded chain requires a wrapped chain", nil)
	}
	c := &GuardedChain{name: name, wrapped: wrapped}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Name returns the chain name.
func (c *GuardedChain) Name() string { return c.name }

// Invoke runs input guardrails, the wrapped chain, then output guardrails.
func (c *GuardedChain) Invoke(ctx context.Context, in Input) (Output, error) {
	text, blocked := guardrails.Run(ctx, c.input, in.Text)
	if blocked != nil {
		return Output{}, guardrailError(c.name, "input", blocked)
	}

	out, err := c.wrapped.Invoke(ctx, Input{Text: text, Metadata: cloneMetadata(in.Metadata)})
	if err != nil {
		return Output{}, err
	}

	// Output guardrails validate but never mutate the result.
	if _, blocked := guardrails.Run(ctx, c.output, out.Text); blocked != nil {
		return Output{}, guardrailError(c.name, "output", blocked)
	}

	return out, nil
}

func guardrailError(chainName, stage string, result *guardrails.Result) error {
	return errors.New(errors.CodeGuardrailBlocked, result.Reason, nil).
		WithAttribute("chain", chainName).
		WithAttribute("guardrail", result.GuardrailID).
		WithAttribute("stage", stage)
}

var _ Chain = (*GuardedChain)(nil)
