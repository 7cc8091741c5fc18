// Copyright 2026 © The Loom Authors
// SPDX-License-Identifier: Apache-2.0

package telemetry

import (
	"go.opentelemetry.io/otel/attribute"
)

// Semantic conventions for chain and session telemetry. These follow
// OpenTelemetry naming conventions where applicable.
const (
	// Chain attributes
	AttrChainName     = "loom.chain.name"
	AttrChainKind     = "loom.chain.kind"
	AttrChainStep     = "loom.chain.step"
	AttrChainStepName = "loom.chain.step_name"

	// Execution attributes
	AttrExecutionID      = "loom.execution.id"
	AttrExecutionAttempt = "loom.execution.attempt"
	AttrExecutionRetries = "loom.execution.max_retries"

	// Session attributes
	AttrSessionID       = "loom.session.id"
	AttrSessionTurns    = "loom.session.turn_count"
	AttrMemoryType      = "loom.memory.type"
	AttrMemoryEntries   = "loom.memory.entry_count"
	AttrMemoryTokensEst = "loom.memory.estimated_tokens"

	// Guardrail attributes
	AttrGuardrailID    = "loom.guardrail.id"
	AttrGuardrailStage = "loom.guardrail.stage"

	// Tool attributes
	AttrToolID         = "loom.tool.id"
	AttrToolDurationMs = "loom.tool.duration_ms"
	AttrToolSuccess    = "loom.tool.success"

	// Agent attributes
	AttrAgentID       = "loom.agent.id"
	AttrAgentStep     = "loom.agent.step"
	AttrAgentMaxSteps = "loom.agent.max_steps"
	AttrAgentAction   = "loom.agent.action"

	// Model attributes (standard gen_ai conventions)
	AttrModelPreset     = "gen_ai.request.preset"
	AttrModelProvider   = "gen_ai.system"
	AttrModelDurationMs = "gen_ai.duration_ms"
)

// ChainAttributes returns common attributes for chain invocation spans.
func ChainAttributes(name, kind string) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String(AttrChainName, name),
	}
	if kind != "" {
		attrs = append(attrs, attribute.String(AttrChainKind, kind))
	}
	return attrs
}

// ExecutionAttributes returns attributes for an executor run.
func ExecutionAttributes(executionID string, attempt, maxRetries int) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String(AttrExecutionID, executionID),
	}
	if attempt > 0 {
		attrs = append(attrs, attribute.Int(AttrExecutionAttempt, attempt))
	}
	if maxRetries > 0 {
		attrs = append(attrs, attribute.Int(AttrExecutionRetries, maxRetries))
	}
	return attrs
}

// SessionAttributes returns attributes for a session turn.
func SessionAttributes(sessionID, memoryType string, turns, estimatedTokens int) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String(AttrSessionID, sessionID),
	}
	if memoryType != "" {
		attrs = append(attrs, attribute.String(AttrMemoryType, memoryType))
	}
	if turns > 0 {
		attrs = append(attrs, attribute.Int(AttrSessionTurns, turns))
	}
	if estimatedTokens > 0 {
		attrs = append(attrs, attribute.Int(AttrMemoryTokensEst, estimatedTokens))
	}
	return attrs
}

// GuardrailAttributes returns attributes for a guardrail block event.
func GuardrailAttributes(guardrailID, stage string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(AttrGuardrailID, guardrailID),
		attribute.String(AttrGuardrailStage, stage),
	}
}

// ToolCallAttributes returns attributes for a tool call span.
func ToolCallAttributes(toolID string, durationMs float64, success bool) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(AttrToolID, toolID),
		attribute.Float64(AttrToolDurationMs, durationMs),
		attribute.Bool(AttrToolSuccess, success),
	}
}

// AgentAttributes returns attributes for agent run spans.
func AgentAttributes(agentID string, step, maxSteps int) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String(AttrAgentID, agentID),
	}
	if step > 0 {
		attrs = append(attrs, attribute.Int(AttrAgentStep, step))
	}
	if maxSteps > 0 {
		attrs = append(attrs, attribute.Int(AttrAgentMaxSteps, maxSteps))
	}
	return attrs
}
