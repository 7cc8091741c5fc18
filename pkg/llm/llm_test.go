package llm

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	loomerrors "github.com/loomworks/loom/pkg/errors"
)

func TestPresetLookup(t *testing.T) {
	for _, name := range []string{PresetStructured, PresetCreative, PresetConversational, PresetDeterministic} {
		cfg, ok := Preset(name)
		if !ok {
			t.Fatalf("preset %s missing", name)
		}
		if cfg.Preset != name {
			t.Errorf("preset %s reports name %s", name, cfg.Preset)
		}
	}

	if _, ok := Preset("NOPE"); ok {
		t.Error("unknown preset should not resolve")
	}
}

func TestScriptedMockOrder(t *testing.T) {
	p := NewScriptedMockProvider("one", "two")

	for i, want := range []string{"one", "two"} {
		res, err := p.Generate(context.Background(), "prompt", DefaultConfig())
		if err != nil {
			t.Fatalf("call %d: %v", i, err)
		}
		if res.Text != want {
			t.Errorf("call %d: got %q, want %q", i, res.Text, want)
		}
	}

	if _, err := p.Generate(context.Background(), "prompt", DefaultConfig()); err == nil {
		t.Error("exhausted script should error")
	}
	if p.CallCount != 3 {
		t.Errorf("call count = %d, want 3", p.CallCount)
	}
	if len(p.Prompts) != 3 {
		t.Errorf("captured %d prompts, want 3", len(p.Prompts))
	}
}

func TestEchoProviderStream(t *testing.T) {
	p := &EchoProvider{}
	chunks, err := p.Stream(context.Background(), "hello", DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}

	var sb strings.Builder
	for chunk := range chunks {
		if chunk.Err != nil {
			t.Fatal(chunk.Err)
		}
		sb.WriteString(chunk.Content)
	}
	if sb.String() != "hello" {
		t.Errorf("stream text = %q", sb.String())
	}
}

func TestOllamaGenerate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`{"response":"ok","done":true,"total_duration":2000000}`))
	}))
	defer srv.Close()

	p := NewOllama(srv.URL, "test-model")
	res, err := p.Generate(context.Background(), "hi", DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	if res.Text != "ok" {
		t.Errorf("text = %q", res.Text)
	}
	if res.ProcessingTimeMs != 2 {
		t.Errorf("processing time = %d, want 2", res.ProcessingTimeMs)
	}
}

func TestOllamaGenerateBackendError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	p := NewOllama(srv.URL, "test-model")
	_, err := p.Generate(context.Background(), "hi", DefaultConfig())
	if err == nil {
		t.Fatal("expected error")
	}
	if !loomerrors.IsCode(err, loomerrors.CodeBackend) {
		t.Errorf("expected backend error, got %v", err)
	}
	if !loomerrors.IsRecoverable(err) {
		t.Error("backend errors should be recoverable")
	}
}

func TestOllamaStream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("{\"response\":\"hel\",\"done\":false}\n{\"response\":\"lo\",\"done\":false}\n{\"response\":\"\",\"done\":true}\n"))
	}))
	defer srv.Close()

	p := NewOllama(srv.URL, "test-model")
	chunks, err := p.Stream(context.Background(), "hi", DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}

	var sb strings.Builder
	done := false
	for chunk := range chunks {
		if chunk.Err != nil {
			t.Fatal(chunk.Err)
		}
		if chunk.Done {
			done = true
			continue
		}
		sb.WriteString(chunk.Content)
	}
	if sb.String() != "hello" {
		t.Errorf("stream text = %q", sb.String())
	}
	if !done {
		t.Error("stream never reported done")
	}
}
