// Copyright 2026 © The Loom Authors
// SPDX-License-Identifier: Apache-2.0

package chain

import (
	"context"

	"github.com/loomworks/loom/pkg/errors"
)

// SequentialChain invokes child chains in order, feeding each child's
// output text into the next child's input text. Metadata flows forward
// and merges left to right. The first child failure aborts the sequence.
type SequentialChain struct {
	name   string
	chains []Chain
}

// NewSequential creates a SequentialChain over the given children.
func NewSequential(name string, chains ...Chain) (*SequentialChain, error) {
	if name == "" {
		return nil, errors.New(errors.CodeConfiguration, "chain name is required", nil)
	}
	if len(chains) == 0 {
		return nil, errors.New(errors.CodeConfiguration, "sequential chain requires at least one child", nil)
	}
	return &SequentialChain{name: name, chains: append([]Chain(nil), chains...)}, nil
}

// Name returns the chain name.
func (c *SequentialChain) Name() string { return c.name }

// Invoke runs children serially. At most one model call is in flight;
// cancellation is honored between steps.
func (c *SequentialChain) Invoke(ctx context.Context, in Input) (Output, error) {
	meta := cloneMetadata(in.Metadata)
	text := in.Text

	var out Output
	var totalMs int64
	for _, child := range c.chains {
		select {
		case <-ctx.Done():
			return Output{}, errors.New(errors.CodeContextLost, "sequential chain cancelled", ctx.Err()).
				WithAttribute("chain", c.name)
		default:
		}

		var err error
		out, err = child.Invoke(ctx, Input{Text: text, Metadata: cloneMetadata(meta)})
		if err != nil {
			return Output{}, errors.AsLoomError(err).
				WithAttribute("sequence", c.name).
				WithContext("failed_step", child.Name())
		}

		meta = mergeMetadata(meta, out.Metadata)
		text = out.Text
		totalMs += out.ProcessingTimeMs
	}

	out.Metadata = meta
	out.ProcessingTimeMs = totalMs
	return out, nil
}

var _ Chain = (*SequentialChain)(nil)
