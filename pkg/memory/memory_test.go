// Copyright 2026 © The Loom Authors
// SPDX-License-Identifier: Apache-2.0

package memory

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/loomworks/loom/pkg/chain"
	"github.com/loomworks/loom/pkg/llm"
)

func saveTurn(t *testing.T, m Memory, user, assistant string) {
	t.Helper()
	if err := m.Save(context.Background(), chain.NewInput(user), chain.TextOutput(assistant)); err != nil {
		t.Fatal(err)
	}
}

func TestBufferMemoryEntryBound(t *testing.T) {
	m := NewBuffer(4, 0)

	for i := 0; i < 5; i++ {
		saveTurn(t, m, fmt.Sprintf("q%d", i), fmt.Sprintf("a%d", i))
	}

	entries, err := m.Load(context.Background(), chain.NewInput(""))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 4 {
		t.Fatalf("retained %d entries, want 4", len(entries))
	}
	// Oldest evicted first: the last two turns survive.
	want := []Entry{
		{RoleUser, "q3"}, {RoleAssistant, "a3"},
		{RoleUser, "q4"}, {RoleAssistant, "a4"},
	}
	if !reflect.DeepEqual(entries, want) {
		t.Errorf("entries = %v, want %v", entries, want)
	}
}

func TestBufferMemoryTokenBound(t *testing.T) {
	// Each entry of 40 chars is ~10 tokens; a 25-token budget holds two
	// entries.
	m := NewBuffer(0, 25)
	long := strings.Repeat("x", 40)

	saveTurn(t, m, long, long)
	saveTurn(t, m, long, long)

	if m.Size() != 2 {
		t.Errorf("size = %d, want 2", m.Size())
	}
	if m.EstimatedTokens() > 25 {
		t.Errorf("tokens = %d, exceeds bound", m.EstimatedTokens())
	}
}

func TestBufferMemoryLoadIdempotent(t *testing.T) {
	m := NewBuffer(10, 0)
	saveTurn(t, m, "hello", "hi")

	first, _ := m.Load(context.Background(), chain.NewInput("ignored query"))
	second, _ := m.Load(context.Background(), chain.NewInput("different query"))
	if !reflect.DeepEqual(first, second) {
		t.Error("repeated loads must return identical sequences")
	}
}

func TestBufferMemoryClear(t *testing.T) {
	m := NewBuffer(10, 0)
	saveTurn(t, m, "hello", "hi")
	if err := m.Clear(context.Background()); err != nil {
		t.Fatal(err)
	}
	if m.Size() != 0 || m.EstimatedTokens() != 0 {
		t.Error("clear must discard everything")
	}
}

func TestTokenHeuristic(t *testing.T) {
	if got := estimateTokens("12345678"); got != 2 {
		t.Errorf("estimateTokens = %d, want 2 (len/4, integer division)", got)
	}
	if got := estimateTokens("123"); got != 0 {
		t.Errorf("estimateTokens = %d, want 0", got)
	}
}

func TestSummaryMemoryCompressesBeyondWindow(t *testing.T) {
	provider := llm.NewScriptedMockProvider("compressed summary")
	m, err := NewSummary(provider, 2)
	if err != nil {
		t.Fatal(err)
	}

	// recentWindow=2 turns; the third save pushes the first turn out.
	saveTurn(t, m, "q1", "a1")
	saveTurn(t, m, "q2", "a2")
	saveTurn(t, m, "q3", "a3")

	entries, err := m.Load(context.Background(), chain.NewInput(""))
	if err != nil {
		t.Fatal(err)
	}

	// One summary entry followed by the most recent 2 turns (4 entries).
	if len(entries) != 5 {
		t.Fatalf("got %d entries, want 5", len(entries))
	}
	if entries[0].Role != RoleSystem || entries[0].Content != "compressed summary" {
		t.Errorf("first entry = %+v, want system summary", entries[0])
	}
	if entries[1].Content != "q2" || entries[4].Content != "a3" {
		t.Errorf("recent window wrong: %v", entries)
	}

	// The summarization prompt carried the evicted turn.
	if len(provider.Prompts) != 1 || !strings.Contains(provider.Prompts[0], "q1") {
		t.Errorf("summarization prompt = %v", provider.Prompts)
	}
}

func TestSummaryMemoryReplacesSummary(t *testing.T) {
	provider := llm.NewScriptedMockProvider("summary one", "summary two")
	m, err := NewSummary(provider, 1)
	if err != nil {
		t.Fatal(err)
	}

	saveTurn(t, m, "q1", "a1")
	saveTurn(t, m, "q2", "a2") // evicts turn 1, summary one
	saveTurn(t, m, "q3", "a3") // evicts turn 2, summary two

	entries, _ := m.Load(context.Background(), chain.NewInput(""))
	summaries := 0
	for _, e := range entries {
		if e.Role == RoleSystem {
			summaries++
			if e.Content != "summary two" {
				t.Errorf("summary = %q, want the replacement", e.Content)
			}
		}
	}
	if summaries != 1 {
		t.Errorf("found %d summary entries, want exactly 1", summaries)
	}

	// The second compression prompt folds in the prior summary.
	if !strings.Contains(provider.Prompts[1], "summary one") {
		t.Errorf("second prompt should carry prior summary: %q", provider.Prompts[1])
	}
}

func TestSummaryMemorySaveFailureLeavesStateUntouched(t *testing.T) {
	provider := llm.NewScriptedMockProvider() // no responses: summarize fails
	m, err := NewSummary(provider, 1)
	if err != nil {
		t.Fatal(err)
	}

	saveTurn(t, m, "q1", "a1")
	err = m.Save(context.Background(), chain.NewInput("q2"), chain.TextOutput("a2"))
	if err == nil {
		t.Fatal("expected summarization failure to surface")
	}

	entries, _ := m.Load(context.Background(), chain.NewInput(""))
	want := []Entry{{RoleUser, "q1"}, {RoleAssistant, "a1"}}
	if !reflect.DeepEqual(entries, want) {
		t.Errorf("state changed on failed save: %v", entries)
	}
}

func TestSQLiteStoreRoundTrip(t *testing.T) {
	store, err := OpenSQLite(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.Append(ctx, "s1", Entry{RoleUser, "hello"}); err != nil {
		t.Fatal(err)
	}
	if err := store.Append(ctx, "s1", Entry{RoleAssistant, "hi"}); err != nil {
		t.Fatal(err)
	}
	if err := store.Append(ctx, "s2", Entry{RoleUser, "other session"}); err != nil {
		t.Fatal(err)
	}

	entries, err := store.Messages(ctx, "s1")
	if err != nil {
		t.Fatal(err)
	}
	want := []Entry{{RoleUser, "hello"}, {RoleAssistant, "hi"}}
	if !reflect.DeepEqual(entries, want) {
		t.Errorf("entries = %v, want %v", entries, want)
	}

	if err := store.Clear(ctx, "s1"); err != nil {
		t.Fatal(err)
	}
	entries, _ = store.Messages(ctx, "s1")
	if len(entries) != 0 {
		t.Error("clear should remove the session transcript")
	}
	other, _ := store.Messages(ctx, "s2")
	if len(other) != 1 {
		t.Error("clear must not touch other sessions")
	}
}
