// Copyright 2026 © The Loom Authors
// SPDX-License-Identifier: Apache-2.0

package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/loomworks/loom/pkg/chain"
	"github.com/loomworks/loom/pkg/errors"
	"github.com/loomworks/loom/pkg/llm"
)

// SummaryMemory keeps the most recent turns verbatim and compresses
// older turns into a single running system-role summary entry through a
// summarization call to the model provider. Each compression replaces
// the prior summary rather than appending to it.
type SummaryMemory struct {
	mu           sync.Mutex
	provider     llm.Provider
	recentWindow int // turns, each turn = user entry + assistant entry
	recent       []Entry
	summary      *Entry
}

// NewSummary creates a SummaryMemory keeping recentWindow turns verbatim.
func NewSummary(provider llm.Provider, recentWindow int) (*SummaryMemory, error) {
	if provider == nil {
		return nil, errors.New(errors.CodeConfiguration, "summary memory requires a provider", nil)
	}
	if recentWindow <= 0 {
		recentWindow = 4
	}
	return &SummaryMemory{provider: provider, recentWindow: recentWindow}, nil
}

// Save appends the turn, then compresses any turns that fell out of the
// recent window into the running summary. On summarization failure the
// memory is left untouched and the error is returned.
func (m *SummaryMemory) Save(ctx context.Context, in chain.Input, out chain.Output) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	recent := append(append([]Entry(nil), m.recent...),
		Entry{Role: RoleUser, Content: in.Text},
		Entry{Role: RoleAssistant, Content: out.Text},
	)

	maxEntries := m.recentWindow * 2
	if len(recent) <= maxEntries {
		m.recent = recent
		return nil
	}

	evicted := recent[:len(recent)-maxEntries]
	kept := recent[len(recent)-maxEntries:]

	summaryText, err := m.summarize(ctx, evicted)
	if err != nil {
		return err
	}

	m.recent = kept
	m.summary = &Entry{Role: RoleSystem, Content: summaryText}
	return nil
}

func (m *SummaryMemory) summarize(ctx context.Context, evicted []Entry) (string, error) {
	var sb strings.Builder
	sb.WriteString("Summarize the following conversation so far, preserving key facts:\n")
	if m.summary != nil {
		sb.WriteString(m.summary.Content)
		sb.WriteString("\n")
	}
	for _, e := range evicted {
		sb.WriteString(string(e.Role))
		sb.WriteString(": ")
		sb.WriteString(e.Content)
		sb.WriteString("\n")
	}

	cfg, _ := llm.Preset(llm.PresetStructured)
	result, err := m.provider.Generate(ctx, sb.String(), cfg)
	if err != nil {
		le := errors.AsLoomError(err)
		if le.Code == errors.CodeInternal {
			le = errors.New(errors.CodeMemoryError, "conversation summarization failed", err)
		}
		return "", le
	}
	return result.Text, nil
}

// Load returns the summary entry (if present) followed by the recent
// turns, in that order.
func (m *SummaryMemory) Load(_ context.Context, _ chain.Input) ([]Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Entry, 0, len(m.recent)+1)
	if m.summary != nil {
		out = append(out, *m.summary)
	}
	out = append(out, m.recent...)
	return out, nil
}

// Clear discards the summary and all recent turns.
func (m *SummaryMemory) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recent = nil
	m.summary = nil
	return nil
}

// EstimatedTokens reports the heuristic token count across summary and
// recent entries.
func (m *SummaryMemory) EstimatedTokens() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	total := 0
	if m.summary != nil {
		total += estimateTokens(m.summary.Content)
	}
	for _, e := range m.recent {
		total += estimateTokens(e.Content)
	}
	return total
}

var _ Memory = (*SummaryMemory)(nil)
