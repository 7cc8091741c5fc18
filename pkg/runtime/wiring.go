// Copyright 2026 © The Loom Authors
// SPDX-License-Identifier: Apache-2.0

package runtime

import (
	"fmt"
	"strings"

	"github.com/loomworks/loom/pkg/config"
	"github.com/loomworks/loom/pkg/errors"
	"github.com/loomworks/loom/pkg/llm"
	"github.com/loomworks/loom/pkg/memory"
)

// BuildProvider constructs the model provider named by cfg. This is
// the outermost composition point: there is no process-wide default
// model, callers inject the provider everywhere.
func BuildProvider(cfg config.ModelConfig) (llm.Provider, error) {
	switch strings.ToLower(cfg.Provider) {
	case "ollama":
		if cfg.BaseURL == "" || cfg.Model == "" {
			return nil, errors.New(errors.CodeConfiguration, "ollama provider requires base_url and model", nil)
		}
		return llm.NewOllama(cfg.BaseURL, cfg.Model), nil
	case "mock":
		return &llm.EchoProvider{}, nil
	default:
		return nil, errors.New(errors.CodeConfiguration,
			fmt.Sprintf("unknown model provider %q", cfg.Provider), nil)
	}
}

// BuildMemory constructs the memory named by cfg. SummaryMemory needs
// the provider for its compression calls.
func BuildMemory(cfg config.MemoryConfig, provider llm.Provider) (memory.Memory, error) {
	switch strings.ToLower(cfg.Type) {
	case "", "buffer":
		return memory.NewBuffer(cfg.MaxEntries, cfg.MaxTokens), nil
	case "summary":
		return memory.NewSummary(provider, cfg.RecentWindow)
	default:
		return nil, errors.New(errors.CodeConfiguration,
			fmt.Sprintf("unknown memory type %q", cfg.Type), nil)
	}
}

// BuildExecutor constructs an executor with the configured history and
// retry bounds.
func BuildExecutor(cfg config.ExecutorConfig, opts ...ExecutorOption) *Executor {
	base := []ExecutorOption{
		WithHistorySize(cfg.HistorySize),
		WithMaxRetries(cfg.MaxRetries),
	}
	return NewExecutor(append(base, opts...)...)
}

// BuildSession constructs a session over the given chain with memory
// and optional transcript persistence from cfg.
func BuildSession(cfg config.MemoryConfig, c Streamer, provider llm.Provider, opts ...SessionOption) (*Session, error) {
	mem, err := BuildMemory(cfg, provider)
	if err != nil {
		return nil, err
	}
	if cfg.StorePath != "" {
		store, err := memory.OpenSQLite(cfg.StorePath)
		if err != nil {
			return nil, err
		}
		opts = append(opts, WithTranscriptStore(store))
	}
	return NewSession(c, mem, opts...)
}
