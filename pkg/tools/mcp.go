// Copyright 2026 © The Loom Authors
// SPDX-License-Identifier: Apache-2.0

package tools

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/loomworks/loom/pkg/errors"
)

// MCPCaller abstracts MCP tool execution so adapters can be tested
// without a live server connection.
type MCPCaller interface {
	CallTool(ctx context.Context, name string, args map[string]interface{}) (*mcp.CallToolResult, error)
}

// MCPTool wraps a tool served by a Model Context Protocol server so
// agents can dispatch to it like any local tool.
type MCPTool struct {
	tool   mcp.Tool
	caller MCPCaller
}

// NewMCPTool builds a Tool backed by an MCP tool definition and caller.
func NewMCPTool(tool mcp.Tool, caller MCPCaller) (*MCPTool, error) {
	if tool.Name == "" {
		return nil, errors.New(errors.CodeConfiguration, "mcp tool name is required", nil)
	}
	if caller == nil {
		return nil, errors.New(errors.CodeConfiguration, "mcp tool caller is required", nil)
	}
	return &MCPTool{tool: tool, caller: caller}, nil
}

// ID returns the MCP tool name.
func (t *MCPTool) ID() string { return t.tool.Name }

// Description returns the MCP tool description.
func (t *MCPTool) Description() string { return t.tool.Description }

// ParameterDescription renders the tool's input schema for the model.
func (t *MCPTool) ParameterDescription() string {
	if t.tool.RawInputSchema != nil {
		return string(t.tool.RawInputSchema)
	}
	encoded, err := json.Marshal(t.tool.InputSchema)
	if err != nil {
		return ""
	}
	return string(encoded)
}

// Call normalizes the agent's plain-text input into MCP arguments,
// invokes the tool, and flattens the result's text content.
func (t *MCPTool) Call(ctx context.Context, input string) (string, error) {
	args := normalizeArgs(t.tool, input)

	if err := validateRequiredArgs(t.tool, args); err != nil {
		return "", errors.New(errors.CodeToolFailure, "mcp tool arguments invalid", err).
			WithAttribute("tool", t.tool.Name)
	}

	result, err := t.caller.CallTool(ctx, t.tool.Name, args)
	if err != nil {
		return "", errors.New(errors.CodeToolFailure, "mcp tool call failed", err).
			WithAttribute("tool", t.tool.Name)
	}

	return resultText(t.tool.Name, result)
}

// normalizeArgs maps the agent's string input onto the tool schema:
// a JSON object passes through; otherwise the raw string binds to the
// single required field when there is exactly one, or to "input".
func normalizeArgs(tool mcp.Tool, input string) map[string]interface{} {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return map[string]interface{}{}
	}
	if strings.HasPrefix(trimmed, "{") {
		var decoded map[string]interface{}
		if err := json.Unmarshal([]byte(trimmed), &decoded); err == nil {
			return decoded
		}
	}
	if len(tool.InputSchema.Required) == 1 {
		return map[string]interface{}{tool.InputSchema.Required[0]: trimmed}
	}
	return map[string]interface{}{"input": trimmed}
}

func validateRequiredArgs(tool mcp.Tool, args map[string]interface{}) error {
	schema := tool.InputSchema
	if schema.Type != "" && schema.Type != "object" {
		return nil
	}
	for _, key := range schema.Required {
		if _, ok := args[key]; !ok {
			return errors.New(errors.CodeToolFailure, "missing required field "+key, nil)
		}
	}
	return nil
}

func resultText(toolName string, result *mcp.CallToolResult) (string, error) {
	if result == nil {
		return "", errors.New(errors.CodeToolFailure, "mcp tool result is nil", nil).
			WithAttribute("tool", toolName)
	}

	text := extractTextContent(result.Content)
	if result.IsError {
		return "", errors.New(errors.CodeToolFailure, "mcp tool returned error: "+text, nil).
			WithAttribute("tool", toolName)
	}
	return text, nil
}

func extractTextContent(items []mcp.Content) string {
	if len(items) == 0 {
		return ""
	}
	var parts []string
	for _, item := range items {
		switch content := item.(type) {
		case mcp.TextContent:
			parts = append(parts, content.Text)
		case *mcp.TextContent:
			parts = append(parts, content.Text)
		}
	}
	return strings.Join(parts, "\n")
}

var _ Tool = (*MCPTool)(nil)
