// Copyright 2026 © The Loom Authors
// SPDX-License-Identifier: Apache-2.0

// Package testing provides scripted providers and spy chains for testing
// chain compositions without a real model backend.
package testing

import (
	"context"
	"sync"

	"github.com/loomworks/loom/pkg/errors"
	"github.com/loomworks/loom/pkg/llm"
)

// ScriptedResponse defines a response for the scenario provider.
type ScriptedResponse struct {
	Content string
	Error   error
	// Condition allows conditional responses based on the prompt.
	// A response with a non-nil Condition is only consumed when it matches.
	Condition func(prompt string) bool
}

// ScenarioProvider is an enhanced mock provider for testing scenarios.
// It supports scripted responses, conditional matching, and prompt capture.
type ScenarioProvider struct {
	mu           sync.Mutex
	responses    []ScriptedResponse
	currentIndex int
	prompts      []string
	defaultError error
	onGenerate   func(prompt string, cfg llm.GenerationConfig) (*llm.GenerateResult, error)
}

// NewScenarioProvider creates a new scenario provider.
func NewScenarioProvider() *ScenarioProvider {
	return &ScenarioProvider{}
}

// AddResponse queues a response to be returned.
func (p *ScenarioProvider) AddResponse(content string) *ScenarioProvider {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.responses = append(p.responses, ScriptedResponse{Content: content})
	return p
}

// AddErrorResponse queues an error response.
func (p *ScenarioProvider) AddErrorResponse(err error) *ScenarioProvider {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.responses = append(p.responses, ScriptedResponse{Error: err})
	return p
}

// AddScriptedResponse adds a fully configured response.
func (p *ScenarioProvider) AddScriptedResponse(resp ScriptedResponse) *ScenarioProvider {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.responses = append(p.responses, resp)
	return p
}

// WithDefaultError sets the error to return when no responses are queued.
func (p *ScenarioProvider) WithDefaultError(err error) *ScenarioProvider {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.defaultError = err
	return p
}

// OnGenerate installs a hook that overrides scripted responses entirely.
func (p *ScenarioProvider) OnGenerate(fn func(prompt string, cfg llm.GenerationConfig) (*llm.GenerateResult, error)) *ScenarioProvider {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onGenerate = fn
	return p
}

// Generate implements llm.Provider.
func (p *ScenarioProvider) Generate(_ context.Context, prompt string, cfg llm.GenerationConfig) (*llm.GenerateResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.prompts = append(p.prompts, prompt)

	if p.onGenerate != nil {
		return p.onGenerate(prompt, cfg)
	}

	for i := p.currentIndex; i < len(p.responses); i++ {
		resp := p.responses[i]
		if resp.Condition != nil && !resp.Condition(prompt) {
			continue
		}
		if i == p.currentIndex {
			p.currentIndex++
		} else {
			p.responses = append(p.responses[:i], p.responses[i+1:]...)
		}
		if resp.Error != nil {
			return nil, resp.Error
		}
		return &llm.GenerateResult{Text: resp.Content, ProcessingTimeMs: 1}, nil
	}

	if p.defaultError != nil {
		return nil, p.defaultError
	}
	return nil, errors.New(errors.CodeBackend, "scenario provider: no responses queued", nil)
}

// Stream implements llm.Provider, yielding the next scripted response as
// a single chunk.
func (p *ScenarioProvider) Stream(ctx context.Context, prompt string, cfg llm.GenerationConfig) (<-chan llm.StreamChunk, error) {
	res, err := p.Generate(ctx, prompt, cfg)
	if err != nil {
		return nil, err
	}
	chunks := make(chan llm.StreamChunk, 2)
	chunks <- llm.StreamChunk{Content: res.Text}
	chunks <- llm.StreamChunk{Done: true}
	close(chunks)
	return chunks, nil
}

// Prompts returns all captured prompts in call order.
func (p *ScenarioProvider) Prompts() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.prompts...)
}

// CallCount returns the number of Generate calls observed.
func (p *ScenarioProvider) CallCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.prompts)
}

var _ llm.Provider = (*ScenarioProvider)(nil)
