// Copyright 2026 © The Loom Authors
// SPDX-License-Identifier: Apache-2.0

package chain

import (
	"context"
	"time"

	"github.com/loomworks/loom/pkg/errors"
	"github.com/loomworks/loom/pkg/llm"
	"github.com/loomworks/loom/pkg/prompt"
)

// ModelChain invokes the model provider with an optionally templated
// prompt. Without a template the input text is sent verbatim.
type ModelChain struct {
	name     string
	provider llm.Provider
	template *prompt.Template
	config   llm.GenerationConfig
}

// ModelOption configures a ModelChain.
type ModelOption func(*ModelChain)

// WithTemplate sets the prompt template. The template is rendered
// against the input metadata plus a "text" variable holding the input
// text.
func WithTemplate(t *prompt.Template) ModelOption {
	return func(c *ModelChain) {
		c.template = t
	}
}

// WithConfig sets the generation configuration.
func WithConfig(cfg llm.GenerationConfig) ModelOption {
	return func(c *ModelChain) {
		c.config = cfg
	}
}

// WithPreset selects a named generation preset; unknown names fall back
// to the default configuration.
func WithPreset(name string) ModelOption {
	return func(c *ModelChain) {
		if cfg, ok := llm.Preset(name); ok {
			c.config = cfg
		}
	}
}

// NewModel creates a ModelChain bound to the given provider.
func NewModel(name string, provider llm.Provider, opts ...ModelOption) (*ModelChain, error) {
	if name == "" {
		return nil, errors.New(errors.CodeConfiguration, "chain name is required", nil)
	}
	if provider == nil {
		return nil, errors.New(errors.CodeConfiguration, "model provider is required", nil)
	}
	c := &ModelChain{
		name:     name,
		provider: provider,
		config:   llm.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Name returns the chain name.
func (c *ModelChain) Name() string { return c.name }

// Invoke renders the prompt and calls the provider. Backend failures
// propagate as transient chain failures; no retry happens at this layer.
func (c *ModelChain) Invoke(ctx context.Context, in Input) (Output, error) {
	promptText := in.Text
	if c.template != nil {
		vars := make(map[string]string, len(in.Metadata)+1)
		for k, v := range in.Metadata {
			vars[k] = v
		}
		vars["text"] = in.Text

		rendered, err := c.template.Render(vars)
		if err != nil {
			return Output{}, errors.AsLoomError(err).WithAttribute("chain", c.name)
		}
		promptText = rendered
	}

	start := time.Now()
	result, err := c.provider.Generate(ctx, promptText, c.config)
	if err != nil {
		le := errors.AsLoomError(err)
		if le.Code == errors.CodeInternal {
			le = errors.New(errors.CodeBackend, "model generation failed", err)
		}
		return Output{}, le.WithAttribute("chain", c.name)
	}

	elapsed := time.Since(start).Milliseconds()
	if result.ProcessingTimeMs > 0 {
		elapsed = result.ProcessingTimeMs
	}

	return Output{
		Value:            result.Text,
		Text:             result.Text,
		Metadata:         map[string]string{},
		ProcessingTimeMs: elapsed,
	}, nil
}

// Stream renders the prompt and streams the provider's response as a
// finite, non-restartable chunk sequence. Cancellation is honored at
// each chunk boundary by the provider.
func (c *ModelChain) Stream(ctx context.Context, in Input) (<-chan llm.StreamChunk, error) {
	promptText := in.Text
	if c.template != nil {
		vars := make(map[string]string, len(in.Metadata)+1)
		for k, v := range in.Metadata {
			vars[k] = v
		}
		vars["text"] = in.Text

		rendered, err := c.template.Render(vars)
		if err != nil {
			return nil, errors.AsLoomError(err).WithAttribute("chain", c.name)
		}
		promptText = rendered
	}

	ch, err := c.provider.Stream(ctx, promptText, c.config)
	if err != nil {
		le := errors.AsLoomError(err)
		if le.Code == errors.CodeInternal {
			le = errors.New(errors.CodeBackend, "model streaming failed", err)
		}
		return nil, le.WithAttribute("chain", c.name)
	}
	return ch, nil
}

var _ Chain = (*ModelChain)(nil)
