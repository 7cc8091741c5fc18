package llm

import "context"

// GenerationConfig bundles the sampling parameters passed to a backend.
// The chain engine selects presets by name and never interprets the
// numeric values itself.
type GenerationConfig struct {
	Preset      string  `json:"preset,omitempty"`
	Temperature float64 `json:"temperature,omitempty"`
	TopK        int     `json:"top_k,omitempty"`
	TopP        float64 `json:"top_p,omitempty"`
	MaxTokens   int     `json:"max_tokens,omitempty"`
}

// Named generation presets.
const (
	PresetStructured     = "STRUCTURED"
	PresetCreative       = "CREATIVE"
	PresetConversational = "CONVERSATIONAL"
	PresetDeterministic  = "DETERMINISTIC"
)

var presets = map[string]GenerationConfig{
	PresetStructured:     {Preset: PresetStructured, Temperature: 0.2, TopK: 10, TopP: 0.9},
	PresetCreative:       {Preset: PresetCreative, Temperature: 1.1, TopK: 50, TopP: 0.95},
	PresetConversational: {Preset: PresetConversational, Temperature: 0.7, TopK: 40, TopP: 0.9},
	PresetDeterministic:  {Preset: PresetDeterministic, Temperature: 0, TopK: 1, TopP: 1},
}

// Preset returns the named generation preset.
// The second return value reports whether the name is known.
func Preset(name string) (GenerationConfig, bool) {
	cfg, ok := presets[name]
	return cfg, ok
}

// DefaultConfig returns the preset used when a chain does not specify one.
func DefaultConfig() GenerationConfig {
	return presets[PresetConversational]
}

// GenerateResult is the output of a single non-streaming generation.
type GenerateResult struct {
	Text             string `json:"text"`
	ProcessingTimeMs int64  `json:"processing_time_ms"`
}

// StreamChunk is one element of a streaming generation.
// The channel is closed after the chunk with Done set (or after an
// error chunk); a stream is finite and not restartable.
type StreamChunk struct {
	Content string
	Done    bool
	Err     error
}

// Provider defines the interface for on-device model backends.
// Implementations are injected into chains explicitly; Loom holds no
// process-wide default provider.
type Provider interface {
	// Generate produces a completion for the prompt.
	Generate(ctx context.Context, prompt string, cfg GenerationConfig) (*GenerateResult, error)

	// Stream produces a lazy sequence of text chunks for the prompt.
	// Cancelling ctx terminates the stream at the next chunk boundary.
	Stream(ctx context.Context, prompt string, cfg GenerationConfig) (<-chan StreamChunk, error)
}
