// Copyright 2026 © The Loom Authors
// SPDX-License-Identifier: Apache-2.0

package chain

import (
	"context"
	"sync"

	"github.com/loomworks/loom/pkg/errors"
)

// ParallelChain invokes all child chains concurrently against the same
// input. The first child in the list is the primary: its text becomes
// the merged output text. Every other child's output text lands in the
// merged metadata under the child's name, aggregated by declared list
// position, never by completion order.
//
// If any child fails the whole invocation fails; partial aggregation is
// deliberately not offered.
type ParallelChain struct {
	name   string
	chains []Chain
}

// NewParallel creates a ParallelChain over the given children.
func NewParallel(name string, chains ...Chain) (*ParallelChain, error) {
	if name == "" {
		return nil, errors.New(errors.CodeConfiguration, "chain name is required", nil)
	}
	if len(chains) == 0 {
		return nil, errors.New(errors.CodeConfiguration, "parallel chain requires at least one child", nil)
	}
	return &ParallelChain{name: name, chains: append([]Chain(nil), chains...)}, nil
}

// Name returns the chain name.
func (c *ParallelChain) Name() string { return c.name }

// Invoke fans out to all children and waits for joint completion.
func (c *ParallelChain) Invoke(ctx context.Context, in Input) (Output, error) {
	outputs := make([]Output, len(c.chains))
	errs := make([]error, len(c.chains))

	var wg sync.WaitGroup
	for i, child := range c.chains {
		wg.Add(1)
		go func(i int, child Chain) {
			defer wg.Done()
			outputs[i], errs[i] = child.Invoke(ctx, Input{
				Text:     in.Text,
				Metadata: cloneMetadata(in.Metadata),
			})
		}(i, child)
	}
	wg.Wait()

	// Surface the first failure by list position, not completion order.
	for i, err := range errs {
		if err != nil {
			return Output{}, errors.AsLoomError(err).
				WithAttribute("parallel", c.name).
				WithContext("failed_child", c.chains[i].Name())
		}
	}

	merged := outputs[0]
	merged.Metadata = mergeMetadata(cloneMetadata(in.Metadata), outputs[0].Metadata)
	for i := 1; i < len(outputs); i++ {
		if merged.Metadata == nil {
			merged.Metadata = make(map[string]string, len(outputs)-1)
		}
		merged.Metadata[c.chains[i].Name()] = outputs[i].Text
	}

	return merged, nil
}

var _ Chain = (*ParallelChain)(nil)
