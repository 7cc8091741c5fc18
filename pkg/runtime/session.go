// Copyright 2026 © The Loom Authors
// SPDX-License-Identifier: Apache-2.0

package runtime

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/loomworks/loom/pkg/chain"
	"github.com/loomworks/loom/pkg/errors"
	"github.com/loomworks/loom/pkg/llm"
	"github.com/loomworks/loom/pkg/memory"
)

// historyKey is the metadata key under which a Session exposes prior
// turns to its chain's prompt template.
const historyKey = "history"

// Streamer is implemented by chains that can stream their response,
// such as ModelChain.
type Streamer interface {
	chain.Chain
	Stream(ctx context.Context, in chain.Input) (<-chan llm.StreamChunk, error)
}

// Session pairs a chain with a memory instance and threads prior turns
// into each invocation. A Session owns its memory exclusively; it is
// not safe for concurrent Send calls.
type Session struct {
	id     string
	chain  chain.Chain
	memory memory.Memory
	store  *memory.SQLiteStore
	logger *slog.Logger
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithSessionID fixes the session ID, e.g. to resume a persisted
// transcript. Defaults to a fresh UUID.
func WithSessionID(id string) SessionOption {
	return func(s *Session) {
		if id != "" {
			s.id = id
		}
	}
}

// WithTranscriptStore persists each turn to the given store under the
// session ID.
func WithTranscriptStore(store *memory.SQLiteStore) SessionOption {
	return func(s *Session) {
		s.store = store
	}
}

// WithSessionLogger sets the session's logger.
func WithSessionLogger(logger *slog.Logger) SessionOption {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewSession creates a session over the given chain and memory.
func NewSession(c chain.Chain, mem memory.Memory, opts ...SessionOption) (*Session, error) {
	if c == nil {
		return nil, errors.New(errors.CodeConfiguration, "session requires a chain", nil)
	}
	if mem == nil {
		return nil, errors.New(errors.CodeConfiguration, "session requires a memory", nil)
	}
	s := &Session{
		id:     uuid.NewString(),
		chain:  c,
		memory: mem,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Send loads memory, invokes the chain with the formatted history in
// its input metadata, saves the completed turn and returns the reply
// text. Memory is only written after a fully successful invocation.
func (s *Session) Send(ctx context.Context, message string) (string, error) {
	in, err := s.prepareInput(ctx, message)
	if err != nil {
		return "", err
	}

	out, err := s.chain.Invoke(ctx, in)
	if err != nil {
		return "", err
	}

	if err := s.commitTurn(ctx, in, out); err != nil {
		return "", err
	}
	return out.Text, nil
}

// Stream is the streaming variant of Send. The returned channel yields
// response chunks; the completed turn is saved to memory only after the
// stream finishes without error. The session's chain must implement
// Streamer.
func (s *Session) Stream(ctx context.Context, message string) (<-chan llm.StreamChunk, error) {
	streamer, ok := s.chain.(Streamer)
	if !ok {
		return nil, errors.New(errors.CodeConfiguration, "session chain does not support streaming", nil).
			WithContext("chain", s.chain.Name())
	}

	in, err := s.prepareInput(ctx, message)
	if err != nil {
		return nil, err
	}

	src, err := streamer.Stream(ctx, in)
	if err != nil {
		return nil, err
	}

	out := make(chan llm.StreamChunk)
	go func() {
		defer close(out)
		var full strings.Builder
		failed := false
		for chunk := range src {
			if chunk.Err != nil {
				failed = true
			} else {
				full.WriteString(chunk.Content)
			}
			select {
			case out <- chunk:
			case <-ctx.Done():
				return
			}
		}
		if failed || ctx.Err() != nil {
			return
		}
		reply := chain.Output{Value: full.String(), Text: full.String(), Metadata: map[string]string{}}
		if err := s.commitTurn(ctx, in, reply); err != nil {
			s.logger.ErrorContext(ctx, "session.stream.save_failed",
				slog.String("session_id", s.id),
				slog.String("error", err.Error()),
			)
		}
	}()
	return out, nil
}

// Reset clears the session memory and any persisted transcript. The
// underlying chain is untouched.
func (s *Session) Reset(ctx context.Context) error {
	if err := s.memory.Clear(ctx); err != nil {
		return err
	}
	if s.store != nil {
		if err := s.store.Clear(ctx, s.id); err != nil {
			return err
		}
	}
	return nil
}

// Restore replaces the session memory contents with the persisted
// transcript, replaying each stored turn pair. Requires a transcript
// store.
func (s *Session) Restore(ctx context.Context) error {
	if s.store == nil {
		return errors.New(errors.CodeConfiguration, "session has no transcript store", nil)
	}
	entries, err := s.store.Messages(ctx, s.id)
	if err != nil {
		return err
	}
	if err := s.memory.Clear(ctx); err != nil {
		return err
	}
	for i := 0; i+1 < len(entries); i += 2 {
		if entries[i].Role != memory.RoleUser || entries[i+1].Role != memory.RoleAssistant {
			continue
		}
		in := chain.NewInput(entries[i].Content)
		out := chain.Output{Text: entries[i+1].Content, Metadata: map[string]string{}}
		if err := s.memory.Save(ctx, in, out); err != nil {
			return err
		}
	}
	return nil
}

func (s *Session) prepareInput(ctx context.Context, message string) (chain.Input, error) {
	entries, err := s.memory.Load(ctx, chain.NewInput(message))
	if err != nil {
		return chain.Input{}, err
	}
	return chain.NewInput(message).WithMetadata(historyKey, formatHistory(entries)), nil
}

func (s *Session) commitTurn(ctx context.Context, in chain.Input, out chain.Output) error {
	if err := s.memory.Save(ctx, in, out); err != nil {
		return err
	}
	if s.store != nil {
		if err := s.store.Append(ctx, s.id, memory.Entry{Role: memory.RoleUser, Content: in.Text}); err != nil {
			return err
		}
		if err := s.store.Append(ctx, s.id, memory.Entry{Role: memory.RoleAssistant, Content: out.Text}); err != nil {
			return err
		}
	}
	s.logger.DebugContext(ctx, "session.turn.saved",
		slog.String("session_id", s.id),
		slog.Int("estimated_tokens", s.memory.EstimatedTokens()),
	)
	return nil
}

func formatHistory(entries []memory.Entry) string {
	if len(entries) == 0 {
		return ""
	}
	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		lines = append(lines, string(e.Role)+": "+e.Content)
	}
	return strings.Join(lines, "\n")
}
