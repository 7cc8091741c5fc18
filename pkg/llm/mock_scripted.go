package llm

import (
	"context"
	"errors"
	"sync"
)

// ScriptedMockProvider is a mock provider that returns a pre-defined
// sequence of responses. Useful for testing multi-turn interactions
// (e.g. the agent loop or summary memory compression).
type ScriptedMockProvider struct {
	mu        sync.Mutex
	Responses []string
	Err       error
	// CallCount tracks how many times Generate has been called.
	CallCount int
	// Prompts captures every prompt received, in order.
	Prompts []string
}

// NewScriptedMockProvider creates a new ScriptedMockProvider.
func NewScriptedMockProvider(responses ...string) *ScriptedMockProvider {
	return &ScriptedMockProvider{
		Responses: responses,
	}
}

// Generate pops the next scripted response or returns the configured error.
func (s *ScriptedMockProvider) Generate(ctx context.Context, prompt string, cfg GenerationConfig) (*GenerateResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.CallCount++
	s.Prompts = append(s.Prompts, prompt)

	if s.Err != nil {
		return nil, s.Err
	}

	if len(s.Responses) == 0 {
		return nil, errors.New("scripted mock: no more responses available")
	}

	content := s.Responses[0]
	s.Responses = s.Responses[1:]

	return &GenerateResult{Text: content, ProcessingTimeMs: 1}, nil
}

// Stream pops the next scripted response and yields it as one chunk.
func (s *ScriptedMockProvider) Stream(ctx context.Context, prompt string, cfg GenerationConfig) (<-chan StreamChunk, error) {
	res, err := s.Generate(ctx, prompt, cfg)
	if err != nil {
		return nil, err
	}
	chunks := make(chan StreamChunk, 2)
	chunks <- StreamChunk{Content: res.Text}
	chunks <- StreamChunk{Done: true}
	close(chunks)
	return chunks, nil
}

// AddResponse appends a response to the queue.
func (s *ScriptedMockProvider) AddResponse(response string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Responses = append(s.Responses, response)
}

// PeekNext returns the next response to be returned, or empty string.
func (s *ScriptedMockProvider) PeekNext() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.Responses) == 0 {
		return ""
	}
	return s.Responses[0]
}

var _ Provider = (*ScriptedMockProvider)(nil)
