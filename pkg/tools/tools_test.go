// Copyright 2026 © The Loom Authors
// SPDX-License-Identifier: Apache-2.0

package tools

import (
	"context"
	stderrors "errors"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/loomworks/loom/pkg/errors"
)

func TestFunctionTool(t *testing.T) {
	tool, err := NewFunction("upper", "uppercases input", "any text",
		func(_ context.Context, input string) (string, error) {
			return strings.ToUpper(input), nil
		})
	if err != nil {
		t.Fatal(err)
	}

	out, err := tool.Call(context.Background(), "hi")
	if err != nil {
		t.Fatal(err)
	}
	if out != "HI" {
		t.Errorf("out = %q", out)
	}
}

func TestFunctionToolFailure(t *testing.T) {
	tool, _ := NewFunction("bad", "", "",
		func(_ context.Context, _ string) (string, error) {
			return "", stderrors.New("kaput")
		})

	_, err := tool.Call(context.Background(), "x")
	if !errors.IsCode(err, errors.CodeToolFailure) {
		t.Errorf("expected tool failure, got %v", err)
	}
}

func TestFunctionToolValidation(t *testing.T) {
	if _, err := NewFunction("", "d", "p", func(context.Context, string) (string, error) { return "", nil }); err == nil {
		t.Error("empty id should be rejected")
	}
	if _, err := NewFunction("id", "d", "p", nil); err == nil {
		t.Error("nil function should be rejected")
	}
}

func TestLocalSearchRanksByTermHits(t *testing.T) {
	search := NewLocalSearch([]Document{
		{Title: "go", Content: "a compiled language with goroutines"},
		{Title: "python", Content: "an interpreted language"},
		{Title: "rust", Content: "a compiled language with borrow checking"},
	}, 2)

	out, err := search.Call(context.Background(), "compiled goroutines")
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(out, "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d results, want 2", len(lines))
	}
	if !strings.HasPrefix(lines[0], "go:") {
		t.Errorf("best match = %q, want the go document first", lines[0])
	}
}

func TestLocalSearchNoResults(t *testing.T) {
	search := NewLocalSearch([]Document{{Title: "a", Content: "b"}}, 3)

	out, err := search.Call(context.Background(), "zzz")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "no results") {
		t.Errorf("out = %q", out)
	}

	out, _ = search.Call(context.Background(), "   ")
	if !strings.Contains(out, "no results") {
		t.Errorf("empty query out = %q", out)
	}
}

type fakeCaller struct {
	lastName string
	lastArgs map[string]interface{}
	result   *mcp.CallToolResult
	err      error
}

func (f *fakeCaller) CallTool(_ context.Context, name string, args map[string]interface{}) (*mcp.CallToolResult, error) {
	f.lastName = name
	f.lastArgs = args
	return f.result, f.err
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{Content: []mcp.Content{mcp.TextContent{Type: "text", Text: text}}}
}

func TestMCPToolBindsSingleRequiredField(t *testing.T) {
	caller := &fakeCaller{result: textResult("ok")}
	tool, err := NewMCPTool(mcp.Tool{
		Name:        "fetch",
		Description: "fetches a url",
		InputSchema: mcp.ToolInputSchema{Type: "object", Required: []string{"url"}},
	}, caller)
	if err != nil {
		t.Fatal(err)
	}

	out, err := tool.Call(context.Background(), "https://example.com")
	if err != nil {
		t.Fatal(err)
	}
	if out != "ok" {
		t.Errorf("out = %q", out)
	}
	if caller.lastArgs["url"] != "https://example.com" {
		t.Errorf("args = %v", caller.lastArgs)
	}
}

func TestMCPToolPassesJSONArgs(t *testing.T) {
	caller := &fakeCaller{result: textResult("done")}
	tool, _ := NewMCPTool(mcp.Tool{Name: "query"}, caller)

	if _, err := tool.Call(context.Background(), `{"q":"loom","limit":2}`); err != nil {
		t.Fatal(err)
	}
	if caller.lastArgs["q"] != "loom" {
		t.Errorf("args = %v", caller.lastArgs)
	}
}

func TestMCPToolErrorResult(t *testing.T) {
	caller := &fakeCaller{result: &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: "backend down"}},
	}}
	tool, _ := NewMCPTool(mcp.Tool{Name: "flaky"}, caller)

	_, err := tool.Call(context.Background(), "x")
	if !errors.IsCode(err, errors.CodeToolFailure) {
		t.Errorf("expected tool failure, got %v", err)
	}
	if !strings.Contains(err.Error(), "backend down") {
		t.Errorf("error should carry the tool's message: %v", err)
	}
}

func TestMCPToolMissingRequiredField(t *testing.T) {
	caller := &fakeCaller{result: textResult("ok")}
	tool, _ := NewMCPTool(mcp.Tool{
		Name:        "multi",
		InputSchema: mcp.ToolInputSchema{Type: "object", Required: []string{"a", "b"}},
	}, caller)

	_, err := tool.Call(context.Background(), `{"a":1}`)
	if !errors.IsCode(err, errors.CodeToolFailure) {
		t.Errorf("expected tool failure for missing field, got %v", err)
	}
}
