// Copyright 2026 © The Loom Authors
// SPDX-License-Identifier: Apache-2.0

// Package chain implements the composable chain abstraction at the heart
// of Loom: a unit of work exposing a single Invoke operation, composed
// into sequential, parallel, conditional, and guarded execution graphs
// over an injected model provider.
package chain

import "context"

// Input is the immutable input to a chain invocation. Construct a fresh
// Input per invocation; chains never mutate the one they receive.
type Input struct {
	Text     string
	Metadata map[string]string
}

// NewInput creates an Input with the given text and no metadata.
func NewInput(text string) Input {
	return Input{Text: text}
}

// WithMetadata returns a copy of the input with the key set.
func (in Input) WithMetadata(key, value string) Input {
	meta := cloneMetadata(in.Metadata)
	if meta == nil {
		meta = make(map[string]string, 1)
	}
	meta[key] = value
	return Input{Text: in.Text, Metadata: meta}
}

// Output is the result of a chain invocation. Text is the canonical
// textual form of Value and feeds the next chain in sequential
// composition.
type Output struct {
	Value            any
	Text             string
	Metadata         map[string]string
	ProcessingTimeMs int64
}

// TextOutput wraps plain text as an Output.
func TextOutput(text string) Output {
	return Output{Value: text, Text: text}
}

// Chain is the unit of composition: a named operation from Input to
// Output. Implementations must be safe for repeated invocation; chains
// are stateless except those holding a Memory reference.
type Chain interface {
	// Name identifies the chain in logs and in ParallelChain metadata keys.
	Name() string

	// Invoke executes the chain against the input.
	Invoke(ctx context.Context, in Input) (Output, error)
}

// Func adapts a plain function into a Chain for user-defined steps.
type Func struct {
	ChainName string
	Fn        func(ctx context.Context, in Input) (Output, error)
}

func (f Func) Name() string { return f.ChainName }

func (f Func) Invoke(ctx context.Context, in Input) (Output, error) {
	return f.Fn(ctx, in)
}

func cloneMetadata(meta map[string]string) map[string]string {
	if meta == nil {
		return nil
	}
	out := make(map[string]string, len(meta))
	for k, v := range meta {
		out[k] = v
	}
	return out
}

func mergeMetadata(dst, src map[string]string) map[string]string {
	if len(src) == 0 {
		return dst
	}
	if dst == nil {
		dst = make(map[string]string, len(src))
	}
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
