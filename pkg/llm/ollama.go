package llm

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/loomworks/loom/pkg/errors"
)

// OllamaProvider implements the Provider interface against a local
// Ollama server, the on-device inference engine for Go hosts.
type OllamaProvider struct {
	baseURL string
	model   string
	client  *http.Client
}

// NewOllama creates a new OllamaProvider for the given model.
func NewOllama(baseURL, model string) *OllamaProvider {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	return &OllamaProvider{
		baseURL: baseURL,
		model:   model,
		client:  &http.Client{Timeout: 120 * time.Second},
	}
}

type ollamaRequest struct {
	Model   string                 `json:"model"`
	Prompt  string                 `json:"prompt"`
	Stream  bool                   `json:"stream"`
	Options map[string]interface{} `json:"options,omitempty"`
}

type ollamaResponse struct {
	Response      string `json:"response"`
	Done          bool   `json:"done"`
	TotalDuration int64  `json:"total_duration"` // nanos
}

func ollamaOptions(cfg GenerationConfig) map[string]interface{} {
	opts := map[string]interface{}{}
	if cfg.Temperature != 0 {
		opts["temperature"] = cfg.Temperature
	}
	if cfg.TopK != 0 {
		opts["top_k"] = cfg.TopK
	}
	if cfg.TopP != 0 {
		opts["top_p"] = cfg.TopP
	}
	if cfg.MaxTokens != 0 {
		opts["num_predict"] = cfg.MaxTokens
	}
	if len(opts) == 0 {
		return nil
	}
	return opts
}

// Generate sends a completion request to Ollama.
func (p *OllamaProvider) Generate(ctx context.Context, prompt string, cfg GenerationConfig) (*GenerateResult, error) {
	oReq := ollamaRequest{
		Model:   p.model,
		Prompt:  prompt,
		Stream:  false,
		Options: ollamaOptions(cfg),
	}

	body, err := json.Marshal(oReq)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal ollama request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", p.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create http request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, errors.New(errors.CodeBackend, "ollama api call failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.New(errors.CodeBackend,
			fmt.Sprintf("ollama api returned status %d", resp.StatusCode), nil)
	}

	var oResp ollamaResponse
	if err := json.NewDecoder(resp.Body).Decode(&oResp); err != nil {
		return nil, errors.New(errors.CodeBackend, "failed to decode ollama response", err)
	}

	return &GenerateResult{
		Text:             oResp.Response,
		ProcessingTimeMs: oResp.TotalDuration / int64(time.Millisecond),
	}, nil
}

// Stream sends a streaming completion request to Ollama and relays the
// NDJSON events as chunks.
func (p *OllamaProvider) Stream(ctx context.Context, prompt string, cfg GenerationConfig) (<-chan StreamChunk, error) {
	oReq := ollamaRequest{
		Model:   p.model,
		Prompt:  prompt,
		Stream:  true,
		Options: ollamaOptions(cfg),
	}

	body, err := json.Marshal(oReq)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal ollama request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", p.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create http request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, errors.New(errors.CodeBackend, "ollama api call failed", err)
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		respBody, _ := io.ReadAll(resp.Body)
		return nil, errors.New(errors.CodeBackend,
			fmt.Sprintf("ollama api returned status %d: %s", resp.StatusCode, string(respBody)), nil)
	}

	chunks := make(chan StreamChunk, 100)

	go func() {
		defer close(chunks)
		defer resp.Body.Close()

		reader := bufio.NewReader(resp.Body)
		for {
			select {
			case <-ctx.Done():
				chunks <- StreamChunk{Err: ctx.Err()}
				return
			default:
			}

			line, err := reader.ReadBytes('\n')
			if err != nil {
				if err != io.EOF {
					chunks <- StreamChunk{Err: err}
				}
				return
			}

			var event ollamaResponse
			if err := json.Unmarshal(line, &event); err != nil {
				continue // Skip malformed lines
			}

			if event.Done {
				chunks <- StreamChunk{Done: true}
				return
			}

			if event.Response != "" {
				chunks <- StreamChunk{Content: event.Response}
			}
		}
	}()

	return chunks, nil
}

// Ensure OllamaProvider implements Provider.
var _ Provider = (*OllamaProvider)(nil)
