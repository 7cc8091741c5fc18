// Copyright 2026 © The Loom Authors
// SPDX-License-Identifier: Apache-2.0

package testing

import (
	"context"
	"sync"

	"github.com/loomworks/loom/pkg/chain"
)

// SpyChain records every invocation and returns a fixed text, for
// verifying short-circuit behavior (e.g. that a guardrail prevented the
// wrapped chain from running).
type SpyChain struct {
	ChainName string
	Response  string
	Err       error

	mu     sync.Mutex
	inputs []chain.Input
}

// NewSpyChain creates a spy that answers with response.
func NewSpyChain(name, response string) *SpyChain {
	return &SpyChain{ChainName: name, Response: response}
}

// Name implements chain.Chain.
func (s *SpyChain) Name() string { return s.ChainName }

// Invoke records the input and returns the configured response or error.
func (s *SpyChain) Invoke(_ context.Context, in chain.Input) (chain.Output, error) {
	s.mu.Lock()
	s.inputs = append(s.inputs, in)
	s.mu.Unlock()

	if s.Err != nil {
		return chain.Output{}, s.Err
	}
	return chain.TextOutput(s.Response), nil
}

// Invocations returns how many times the chain ran.
func (s *SpyChain) Invocations() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.inputs)
}

// Inputs returns the recorded inputs in call order.
func (s *SpyChain) Inputs() []chain.Input {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]chain.Input(nil), s.inputs...)
}

// TransformChain is a deterministic chain for composition tests: it
// returns its input text with a marker suffix and records what it saw
// in the output metadata.
func TransformChain(name, suffix string) chain.Chain {
	return chain.Func{
		ChainName: name,
		Fn: func(_ context.Context, in chain.Input) (chain.Output, error) {
			out := chain.TextOutput(in.Text + suffix)
			out.Metadata = map[string]string{name + ".seen": in.Text}
			return out, nil
		},
	}
}

var _ chain.Chain = (*SpyChain)(nil)
