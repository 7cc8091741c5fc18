// Copyright 2026 © The Loom Authors
// SPDX-License-Identifier: Apache-2.0

// Package memory provides conversation memory for chain sessions.
//
// A Memory instance is owned by exactly one Session (or one demo
// caller); concurrent save/load from multiple owners is not a supported
// configuration.
package memory

import (
	"context"

	"github.com/loomworks/loom/pkg/chain"
)

// Role identifies the author of a memory entry.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Entry is a single remembered conversation message.
type Entry struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Memory stores and retrieves prior conversation turns for context
// injection into chains.
type Memory interface {
	// Save records one completed turn: the user input and the
	// assistant output. Called only after a fully successful invoke.
	Save(ctx context.Context, in chain.Input, out chain.Output) error

	// Load returns the retained entries in chronological order. The
	// query is accepted for interface symmetry; windowed memories
	// ignore its text (no similarity search).
	Load(ctx context.Context, query chain.Input) ([]Entry, error)

	// Clear discards all retained entries.
	Clear(ctx context.Context) error

	// EstimatedTokens reports the approximate token footprint of the
	// retained entries.
	EstimatedTokens() int
}

// tokenCharRatio is the character-per-token heuristic. This is a
// deliberate approximation, not a tokenizer count.
const tokenCharRatio = 4

func estimateTokens(content string) int {
	return len(content) / tokenCharRatio
}
