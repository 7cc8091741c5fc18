package llm

import (
	"context"

	"github.com/loomworks/loom/pkg/errors"
)

// MockProvider is a testing implementation of Provider.
type MockProvider struct {
	Response     string
	Err          error
	GenerateFunc func(ctx context.Context, prompt string, cfg GenerationConfig) (*GenerateResult, error)
}

// Generate returns the configured response, error, or delegates to GenerateFunc.
func (m *MockProvider) Generate(ctx context.Context, prompt string, cfg GenerationConfig) (*GenerateResult, error) {
	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, prompt, cfg)
	}
	if m.Err != nil {
		return nil, m.Err
	}
	return &GenerateResult{Text: m.Response, ProcessingTimeMs: 1}, nil
}

// Stream yields the Generate result as a single chunk.
func (m *MockProvider) Stream(ctx context.Context, prompt string, cfg GenerationConfig) (<-chan StreamChunk, error) {
	res, err := m.Generate(ctx, prompt, cfg)
	if err != nil {
		return nil, err
	}
	chunks := make(chan StreamChunk, 2)
	chunks <- StreamChunk{Content: res.Text}
	chunks <- StreamChunk{Done: true}
	close(chunks)
	return chunks, nil
}

// EchoProvider returns every prompt verbatim, optionally with a prefix.
// Useful for asserting what a chain actually sent to the backend.
type EchoProvider struct {
	Prefix string
}

func (e *EchoProvider) Generate(_ context.Context, prompt string, _ GenerationConfig) (*GenerateResult, error) {
	return &GenerateResult{Text: e.Prefix + prompt, ProcessingTimeMs: 1}, nil
}

func (e *EchoProvider) Stream(ctx context.Context, prompt string, cfg GenerationConfig) (<-chan StreamChunk, error) {
	res, _ := e.Generate(ctx, prompt, cfg)
	chunks := make(chan StreamChunk, 2)
	chunks <- StreamChunk{Content: res.Text}
	chunks <- StreamChunk{Done: true}
	close(chunks)
	return chunks, nil
}

// FailingMockProvider always fails with a backend error.
type FailingMockProvider struct {
	Err error
}

func (f *FailingMockProvider) Generate(ctx context.Context, prompt string, cfg GenerationConfig) (*GenerateResult, error) {
	if f.Err == nil {
		return nil, errors.New(errors.CodeBackend, "mock backend unavailable", nil)
	}
	return nil, f.Err
}

func (f *FailingMockProvider) Stream(ctx context.Context, prompt string, cfg GenerationConfig) (<-chan StreamChunk, error) {
	_, err := f.Generate(ctx, prompt, cfg)
	return nil, err
}

var (
	_ Provider = (*MockProvider)(nil)
	_ Provider = (*EchoProvider)(nil)
	_ Provider = (*FailingMockProvider)(nil)
)
