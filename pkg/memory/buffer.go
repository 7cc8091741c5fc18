// Copyright 2026 © The Loom Authors
// SPDX-License-Identifier: Apache-2.0

package memory

import (
	"context"
	"sync"

	"github.com/loomworks/loom/pkg/chain"
)

// BufferMemory keeps a fixed window of conversation entries, bounded by
// entry count and by estimated token count. When either bound is
// exceeded after a save, the oldest entries are evicted first until
// both bounds hold. Eviction operates per individual entry; user and
// assistant halves of a turn are not kept atomic.
type BufferMemory struct {
	mu         sync.Mutex
	entries    []Entry
	maxEntries int
	maxTokens  int
}

// NewBuffer creates a BufferMemory. A bound of zero or less disables
// that bound.
func NewBuffer(maxEntries, maxTokens int) *BufferMemory {
	return &BufferMemory{
		maxEntries: maxEntries,
		maxTokens:  maxTokens,
	}
}

// Save appends the turn as a user entry and an assistant entry, then
// evicts oldest-first until both bounds are satisfied.
func (m *BufferMemory) Save(_ context.Context, in chain.Input, out chain.Output) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries = append(m.entries,
		Entry{Role: RoleUser, Content: in.Text},
		Entry{Role: RoleAssistant, Content: out.Text},
	)
	m.evictLocked()
	return nil
}

func (m *BufferMemory) evictLocked() {
	for len(m.entries) > 0 {
		overEntries := m.maxEntries > 0 && len(m.entries) > m.maxEntries
		overTokens := m.maxTokens > 0 && m.tokensLocked() > m.maxTokens
		if !overEntries && !overTokens {
			return
		}
		m.entries = m.entries[1:]
	}
}

func (m *BufferMemory) tokensLocked() int {
	total := 0
	for _, e := range m.entries {
		total += estimateTokens(e.Content)
	}
	return total
}

// Load returns all retained entries in chronological order. The query
// text is ignored; repeated loads without a save return identical
// sequences.
func (m *BufferMemory) Load(_ context.Context, _ chain.Input) ([]Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Entry, len(m.entries))
	copy(out, m.entries)
	return out, nil
}

// Clear discards all entries.
func (m *BufferMemory) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = nil
	return nil
}

// EstimatedTokens reports the heuristic token count of retained entries.
func (m *BufferMemory) EstimatedTokens() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tokensLocked()
}

// Size returns the number of retained entries.
func (m *BufferMemory) Size() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

var _ Memory = (*BufferMemory)(nil)
