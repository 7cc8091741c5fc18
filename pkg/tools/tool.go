// Copyright 2026 © The Loom Authors
// SPDX-License-Identifier: Apache-2.0

// Package tools provides the tool capability agents dispatch to by id.
package tools

import (
	"context"

	"github.com/loomworks/loom/pkg/errors"
)

// Tool is an external capability an Agent can invoke by name.
type Tool interface {
	// ID is the dispatch name the agent matches against.
	ID() string

	// Description tells the model what the tool does.
	Description() string

	// ParameterDescription tells the model what input the tool expects.
	ParameterDescription() string

	// Call executes the tool with a plain-text input.
	Call(ctx context.Context, input string) (string, error)
}

// FunctionTool wraps an arbitrary callback as a Tool.
type FunctionTool struct {
	id          string
	description string
	params      string
	fn          func(ctx context.Context, input string) (string, error)
}

// NewFunction creates a FunctionTool.
func NewFunction(id, description, params string, fn func(ctx context.Context, input string) (string, error)) (*FunctionTool, error) {
	if id == "" {
		return nil, errors.New(errors.CodeConfiguration, "tool id is required", nil)
	}
	if fn == nil {
		return nil, errors.New(errors.CodeConfiguration, "tool function is required", nil)
	}
	return &FunctionTool{id: id, description: description, params: params, fn: fn}, nil
}

func (t *FunctionTool) ID() string                   { return t.id }
func (t *FunctionTool) Description() string          { return t.description }
func (t *FunctionTool) ParameterDescription() string { return t.params }

// Call invokes the wrapped callback. Failures surface as tool failures.
func (t *FunctionTool) Call(ctx context.Context, input string) (string, error) {
	out, err := t.fn(ctx, input)
	if err != nil {
		return "", errors.New(errors.CodeToolFailure, "tool execution failed", err).
			WithAttribute("tool", t.id)
	}
	return out, nil
}

var _ Tool = (*FunctionTool)(nil)
