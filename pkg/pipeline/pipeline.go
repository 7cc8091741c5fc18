// Copyright 2026 © The Loom Authors
// SPDX-License-Identifier: Apache-2.0

// Package pipeline provides a fluent builder over the built-in task
// chains. A builder accumulates step specifications; each Run
// constructs a fresh SequentialChain and invokes it once, so no
// invocation state survives between runs.
package pipeline

import (
	"context"

	"github.com/loomworks/loom/pkg/chain"
	"github.com/loomworks/loom/pkg/errors"
	"github.com/loomworks/loom/pkg/guardrails"
	"github.com/loomworks/loom/pkg/llm"
)

type stepBuilder func(provider llm.Provider) (chain.Chain, error)

// Builder composes task chains into a pipeline.
type Builder struct {
	name     string
	provider llm.Provider
	steps    []stepBuilder
}

// New creates a pipeline builder bound to the given provider.
func New(name string, provider llm.Provider) *Builder {
	return &Builder{name: name, provider: provider}
}

// Summarize appends a summarization step producing bulletCount bullets.
func (b *Builder) Summarize(bulletCount int) *Builder {
	return b.add(func(p llm.Provider) (chain.Chain, error) {
		return chain.NewSummarize(p, bulletCount)
	})
}

// Classify appends a classification step over the given categories.
func (b *Builder) Classify(categories ...string) *Builder {
	return b.add(func(p llm.Provider) (chain.Chain, error) {
		return chain.NewClassify(p, categories...)
	})
}

// Extract appends a field-extraction step.
func (b *Builder) Extract(fields ...string) *Builder {
	return b.add(func(p llm.Provider) (chain.Chain, error) {
		return chain.NewExtract(p, fields...)
	})
}

// Translate appends a translation step into the target language.
func (b *Builder) Translate(language string) *Builder {
	return b.add(func(p llm.Provider) (chain.Chain, error) {
		return chain.NewTranslate(p, language)
	})
}

// Rewrite appends a tone-rewriting step.
func (b *Builder) Rewrite(tone string) *Builder {
	return b.add(func(p llm.Provider) (chain.Chain, error) {
		return chain.NewRewrite(p, tone)
	})
}

// Proofread appends a grammar/spelling correction step.
func (b *Builder) Proofread() *Builder {
	return b.add(func(p llm.Provider) (chain.Chain, error) {
		return chain.NewProofread(p)
	})
}

// Then appends a user-defined chain as a step.
func (b *Builder) Then(c chain.Chain) *Builder {
	return b.add(func(llm.Provider) (chain.Chain, error) {
		if c == nil {
			return nil, errors.New(errors.CodeConfiguration, "pipeline step chain is nil", nil)
		}
		return c, nil
	})
}

// Guarded wraps the whole pipeline in the given input guardrails at
// Build time.
func (b *Builder) Guarded(rails ...guardrails.Guardrail) *GuardedBuilder {
	return &GuardedBuilder{builder: b, input: rails}
}

func (b *Builder) add(s stepBuilder) *Builder {
	b.steps = append(b.steps, s)
	return b
}

// Build constructs the SequentialChain for the accumulated steps.
func (b *Builder) Build() (chain.Chain, error) {
	if len(b.steps) == 0 {
		return nil, errors.New(errors.CodeConfiguration, "pipeline has no steps", nil).
			WithContext("pipeline", b.name)
	}
	if b.provider == nil {
		return nil, errors.New(errors.CodeConfiguration, "pipeline requires a provider", nil).
			WithContext("pipeline", b.name)
	}

	chains := make([]chain.Chain, 0, len(b.steps))
	for _, build := range b.steps {
		c, err := build(b.provider)
		if err != nil {
			return nil, err
		}
		chains = append(chains, c)
	}
	return chain.NewSequential(b.name, chains...)
}

// Run builds a fresh sequential chain and invokes it once with the text.
func (b *Builder) Run(ctx context.Context, text string) (chain.Output, error) {
	c, err := b.Build()
	if err != nil {
		return chain.Output{}, err
	}
	return c.Invoke(ctx, chain.NewInput(text))
}

// GuardedBuilder wraps a pipeline in guardrails.
type GuardedBuilder struct {
	builder *Builder
	input   []guardrails.Guardrail
}

// Build constructs the guarded pipeline chain.
func (g *GuardedBuilder) Build() (chain.Chain, error) {
	inner, err := g.builder.Build()
	if err != nil {
		return nil, err
	}
	return chain.NewGuarded(g.builder.name+"-guarded", inner,
		chain.WithInputGuardrails(g.input...))
}

// Run builds the guarded pipeline and invokes it once with the text.
func (g *GuardedBuilder) Run(ctx context.Context, text string) (chain.Output, error) {
	c, err := g.Build()
	if err != nil {
		return chain.Output{}, err
	}
	return c.Invoke(ctx, chain.NewInput(text))
}
