// Copyright 2026 © The Loom Authors
// SPDX-License-Identifier: Apache-2.0

// Package config loads runtime configuration from YAML files and
// LOOM_-prefixed environment variables.
package config

import (
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	Log       LogConfig       `koanf:"log"`
	Model     ModelConfig     `koanf:"model"`
	Memory    MemoryConfig    `koanf:"memory"`
	Executor  ExecutorConfig  `koanf:"executor"`
	Agent     AgentConfig     `koanf:"agent"`
	Telemetry TelemetryConfig `koanf:"telemetry"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"` // json, text
}

type ModelConfig struct {
	Provider string `koanf:"provider"` // ollama, mock
	Model    string `koanf:"model"`
	BaseURL  string `koanf:"base_url"`
	Preset   string `koanf:"preset"` // STRUCTURED, CREATIVE, CONVERSATIONAL, DETERMINISTIC
}

type MemoryConfig struct {
	Type         string `koanf:"type"` // buffer, summary
	MaxEntries   int    `koanf:"max_entries"`
	MaxTokens    int    `koanf:"max_tokens"`
	RecentWindow int    `koanf:"recent_window"`
	StorePath    string `koanf:"store_path"` // sqlite transcript, empty disables
}

type ExecutorConfig struct {
	MaxRetries  int `koanf:"max_retries"`
	HistorySize int `koanf:"history_size"`
}

type AgentConfig struct {
	MaxSteps int `koanf:"max_steps"`
}

type TelemetryConfig struct {
	Enabled      bool   `koanf:"enabled"`
	Exporter     string `koanf:"exporter"` // stdout, otlp
	OTLPEndpoint string `koanf:"otlp_endpoint"`
	OTLPInsecure bool   `koanf:"otlp_insecure"`
}

func Load(path string) (*Config, error) {
	k := koanf.New(".")

	// Defaults
	k.Set("log.level", "info")
	k.Set("log.format", "text")
	k.Set("model.provider", "ollama")
	k.Set("model.model", "llama3.2:3b")
	k.Set("model.base_url", "http://localhost:11434")
	k.Set("model.preset", "CONVERSATIONAL")

	k.Set("memory.type", "buffer")
	k.Set("memory.max_entries", 20)
	k.Set("memory.max_tokens", 2048)
	k.Set("memory.recent_window", 4)

	k.Set("executor.max_retries", 1)
	k.Set("executor.history_size", 100)
	k.Set("agent.max_steps", 5)

	k.Set("telemetry.enabled", false)
	k.Set("telemetry.exporter", "stdout")

	// 1. Load from file
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, err
		}
	}

	// 2. Load from ENV (LOOM_MODEL_PROVIDER -> model.provider)
	if err := k.Load(env.Provider("LOOM_", ".", func(s string) string {
		return strings.Replace(strings.ToLower(
			strings.TrimPrefix(s, "LOOM_")), "_", ".", -1)
	}), nil); err != nil {
		return nil, err
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
