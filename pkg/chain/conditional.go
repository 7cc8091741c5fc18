// Copyright 2026 © The Loom Authors
// SPDX-License-Identifier: Apache-2.0

package chain

import (
	"context"

	"github.com/loomworks/loom/pkg/errors"
)

// Router maps an input to a branch key.
type Router func(in Input) string

// ConditionalChain routes each invocation to one of its branch chains
// based on the router's branch key. A key with no matching branch is a
// configuration error.
type ConditionalChain struct {
	name     string
	router   Router
	branches map[string]Chain
}

// NewConditional creates a ConditionalChain.
func NewConditional(name string, router Router, branches map[string]Chain) (*ConditionalChain, error) {
	if name == "" {
		return nil, errors.New(errors.CodeConfiguration, "chain name is required", nil)
	}
	if router == nil {
		return nil, errors.New(errors.CodeConfiguration, "conditional chain requires a router", nil)
	}
	if len(branches) == 0 {
		return nil, errors.New(errors.CodeConfiguration, "conditional chain requires at least one branch", nil)
	}
	copied := make(map[string]Chain, len(branches))
	for k, v := range branches {
		copied[k] = v
	}
	return &ConditionalChain{name: name, router: router, branches: copied}, nil
}

// Name returns the chain name.
func (c *ConditionalChain) Name() string { return c.name }

// Invoke delegates entirely to the selected branch and returns its
// output unmodified.
func (c *ConditionalChain) Invoke(ctx context.Context, in Input) (Output, error) {
	key := c.router(in)
	branch, ok := c.branches[key]
	if !ok {
		return Output{}, errors.New(errors.CodeConfiguration, "no branch for routing key", nil).
			WithAttribute("chain", c.name).
			WithContext("branch_key", key)
	}
	return branch.Invoke(ctx, in)
}

var _ Chain = (*ConditionalChain)(nil)
