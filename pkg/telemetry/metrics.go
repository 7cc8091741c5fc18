// Copyright 2026 © The Loom Authors
// SPDX-License-Identifier: Apache-2.0

package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/loomworks/loom/pkg/errors"
)

// ChainMetrics tracks chain invocations, failures and retries for
// production monitoring.
type ChainMetrics struct {
	invocationCounter metric.Int64Counter
	failureCounter    metric.Int64Counter
	durationHistogram metric.Float64Histogram
	retryCounter      metric.Int64Counter
	guardrailCounter  metric.Int64Counter
	agentStepCounter  metric.Int64Counter
}

// NewChainMetrics creates a chain metrics tracker on the global meter.
func NewChainMetrics() (*ChainMetrics, error) {
	meter := otel.Meter("loom/runtime")

	invocationCounter, err := meter.Int64Counter(
		"loom.chain.invocations",
		metric.WithDescription("Total chain invocations by chain name"),
	)
	if err != nil {
		return nil, err
	}

	failureCounter, err := meter.Int64Counter(
		"loom.chain.failures",
		metric.WithDescription("Failed chain invocations by chain name and error code"),
	)
	if err != nil {
		return nil, err
	}

	durationHistogram, err := meter.Float64Histogram(
		"loom.chain.duration_ms",
		metric.WithDescription("Chain invocation duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	retryCounter, err := meter.Int64Counter(
		"loom.chain.retries",
		metric.WithDescription("Retry attempts made by the executor"),
	)
	if err != nil {
		return nil, err
	}

	guardrailCounter, err := meter.Int64Counter(
		"loom.guardrail.blocks",
		metric.WithDescription("Inputs and outputs blocked by guardrails"),
	)
	if err != nil {
		return nil, err
	}

	agentStepCounter, err := meter.Int64Counter(
		"loom.agent.steps",
		metric.WithDescription("Reasoning steps taken by agents"),
	)
	if err != nil {
		return nil, err
	}

	return &ChainMetrics{
		invocationCounter: invocationCounter,
		failureCounter:    failureCounter,
		durationHistogram: durationHistogram,
		retryCounter:      retryCounter,
		guardrailCounter:  guardrailCounter,
		agentStepCounter:  agentStepCounter,
	}, nil
}

// RecordInvocation records one chain invocation and its duration.
func (cm *ChainMetrics) RecordInvocation(ctx context.Context, chainName string, durationMs float64) {
	if cm == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String(AttrChainName, chainName))
	cm.invocationCounter.Add(ctx, 1, attrs)
	cm.durationHistogram.Record(ctx, durationMs, attrs)
}

// RecordFailure records a failed invocation tagged with the error code.
func (cm *ChainMetrics) RecordFailure(ctx context.Context, chainName string, err error) {
	if cm == nil || err == nil {
		return
	}
	code := string(errors.AsLoomError(err).Code)
	cm.failureCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String(AttrChainName, chainName),
		attribute.String("error.code", code),
	))
}

// RecordRetry records one retry attempt for the given chain.
func (cm *ChainMetrics) RecordRetry(ctx context.Context, chainName string) {
	if cm == nil {
		return
	}
	cm.retryCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String(AttrChainName, chainName),
	))
}

// RecordGuardrailBlock records a guardrail rejection.
func (cm *ChainMetrics) RecordGuardrailBlock(ctx context.Context, guardrailID, stage string) {
	if cm == nil {
		return
	}
	cm.guardrailCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String(AttrGuardrailID, guardrailID),
		attribute.String(AttrGuardrailStage, stage),
	))
}

// RecordAgentStep records one reasoning step for the given agent.
func (cm *ChainMetrics) RecordAgentStep(ctx context.Context, agentID, action string) {
	if cm == nil {
		return
	}
	cm.agentStepCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String(AttrAgentID, agentID),
		attribute.String(AttrAgentAction, action),
	))
}
