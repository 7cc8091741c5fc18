// Copyright 2026 © The Loom Authors
// SPDX-License-Identifier: Apache-2.0

// Package agent implements a bounded ReAct-style reasoning loop that
// selects among tools and chains, one model call per step.
package agent

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/loomworks/loom/pkg/chain"
	"github.com/loomworks/loom/pkg/errors"
	"github.com/loomworks/loom/pkg/llm"
	"github.com/loomworks/loom/pkg/telemetry"
	"github.com/loomworks/loom/pkg/tools"
)

const defaultMaxSteps = 5

// Step is one iteration of the reasoning loop. Action is empty on the
// final-answer step.
type Step struct {
	Thought     string
	Action      string
	Input       string
	Observation string
}

// Result is the outcome of one Run call, including the full reasoning
// trace.
type Result struct {
	Answer     string
	Steps      []Step
	TotalSteps int
}

// Agent runs a bounded reasoning loop over a set of tools and chains.
type Agent struct {
	id       string
	provider llm.Provider
	tools    []tools.Tool
	chains   []chain.Chain
	maxSteps int
	config   llm.GenerationConfig
	logger   *slog.Logger
	metrics  *telemetry.ChainMetrics
	tracer   trace.Tracer
}

// Option configures an Agent.
type Option func(*Agent)

// WithTools makes the given tools dispatchable by id.
func WithTools(ts ...tools.Tool) Option {
	return func(a *Agent) {
		a.tools = append(a.tools, ts...)
	}
}

// WithChains makes the given chains dispatchable by name.
func WithChains(cs ...chain.Chain) Option {
	return func(a *Agent) {
		a.chains = append(a.chains, cs...)
	}
}

// WithMaxSteps bounds the loop. Values below 1 keep the default.
func WithMaxSteps(n int) Option {
	return func(a *Agent) {
		if n >= 1 {
			a.maxSteps = n
		}
	}
}

// WithPreset selects the generation preset for reasoning calls.
func WithPreset(name string) Option {
	return func(a *Agent) {
		if cfg, ok := llm.Preset(name); ok {
			a.config = cfg
		}
	}
}

// WithLogger sets the agent's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Agent) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithMetrics attaches a metrics recorder.
func WithMetrics(m *telemetry.ChainMetrics) Option {
	return func(a *Agent) {
		a.metrics = m
	}
}

// New creates an agent bound to the given provider.
func New(id string, provider llm.Provider, opts ...Option) (*Agent, error) {
	if id == "" {
		return nil, errors.New(errors.CodeConfiguration, "agent id is required", nil)
	}
	if provider == nil {
		return nil, errors.New(errors.CodeConfiguration, "agent provider is required", nil)
	}
	a := &Agent{
		id:       id,
		provider: provider,
		maxSteps: defaultMaxSteps,
		logger:   slog.Default(),
		tracer:   otel.Tracer("loom/agent"),
	}
	// Reasoning calls default to the structured preset; prose presets
	// make the Action grammar drift.
	a.config, _ = llm.Preset(llm.PresetStructured)
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// ID returns the agent identifier.
func (a *Agent) ID() string { return a.id }

// Run executes the reasoning loop for the given question. Each
// iteration makes exactly one model call and appends exactly one Step,
// including unknown-action and final-answer iterations. The loop ends
// on a final answer or after maxSteps, in which case the last
// observation (or a synthesized message) becomes the answer and the
// trace is preserved.
func (a *Agent) Run(ctx context.Context, question string) (*Result, error) {
	ctx, span := a.tracer.Start(ctx, "agent.run",
		trace.WithAttributes(telemetry.AgentAttributes(a.id, 0, a.maxSteps)...),
	)
	defer span.End()

	transcript := a.basePrompt(question)
	result := &Result{}

	for len(result.Steps) < a.maxSteps {
		if err := ctx.Err(); err != nil {
			return nil, errors.New(errors.CodeContextLost, "agent run canceled", err).
				WithContext("agent", a.id).
				WithContext("step", len(result.Steps))
		}

		reply, err := a.provider.Generate(ctx, transcript, a.config)
		if err != nil {
			span.RecordError(err)
			le := errors.AsLoomError(err)
			if le.Code == errors.CodeInternal {
				le = errors.New(errors.CodeBackend, "agent reasoning call failed", err)
			}
			return nil, le.WithAttribute("agent", a.id)
		}

		p := parseProposal(reply.Text)
		if p.IsFinal {
			result.Steps = append(result.Steps, Step{Thought: p.Thought})
			result.Answer = p.Answer
			result.TotalSteps = len(result.Steps)
			a.logger.InfoContext(ctx, "agent.run.done",
				slog.String("agent", a.id),
				slog.Int("steps", result.TotalSteps),
			)
			return result, nil
		}

		observation := a.dispatch(ctx, p.Action, p.Input)
		step := Step{Thought: p.Thought, Action: p.Action, Input: p.Input, Observation: observation}
		result.Steps = append(result.Steps, step)
		a.metrics.RecordAgentStep(ctx, a.id, p.Action)
		a.logger.DebugContext(ctx, "agent.step",
			slog.String("agent", a.id),
			slog.Int("step", len(result.Steps)),
			slog.String("action", p.Action),
		)

		transcript += fmt.Sprintf("\nThought: %s\nAction: %s\nAction Input: %s\nObservation: %s",
			p.Thought, p.Action, p.Input, observation)
	}

	// Step budget exhausted without a final answer.
	result.TotalSteps = len(result.Steps)
	if n := len(result.Steps); n > 0 && result.Steps[n-1].Observation != "" {
		result.Answer = result.Steps[n-1].Observation
	} else {
		result.Answer = "could not complete the task within the step budget"
	}
	a.logger.WarnContext(ctx, "agent.run.exhausted",
		slog.String("agent", a.id),
		slog.Int("max_steps", a.maxSteps),
	)
	return result, nil
}

// dispatch routes an action to a tool by id, then to a chain by name.
// Unknown actions and execution failures become observations, not
// errors; the loop continues.
func (a *Agent) dispatch(ctx context.Context, action, input string) string {
	for _, t := range a.tools {
		if t.ID() == action {
			out, err := t.Call(ctx, input)
			if err != nil {
				return fmt.Sprintf("tool %q failed: %v", action, err)
			}
			return out
		}
	}
	for _, c := range a.chains {
		if c.Name() == action {
			out, err := c.Invoke(ctx, chain.NewInput(input))
			if err != nil {
				return fmt.Sprintf("chain %q failed: %v", action, err)
			}
			return out.Text
		}
	}
	return fmt.Sprintf("unknown action %q: no tool or chain with that name", action)
}

func (a *Agent) basePrompt(question string) string {
	var b strings.Builder
	b.WriteString("Answer the question below. You may use the listed tools and chains.\n")
	if len(a.tools) > 0 {
		b.WriteString("Tools:\n")
		for _, t := range a.tools {
			fmt.Fprintf(&b, "- %s: %s (input: %s)\n", t.ID(), t.Description(), t.ParameterDescription())
		}
	}
	if len(a.chains) > 0 {
		b.WriteString("Chains:\n")
		for _, c := range a.chains {
			fmt.Fprintf(&b, "- %s\n", c.Name())
		}
	}
	b.WriteString("Respond with either:\n")
	b.WriteString("Thought: <reasoning>\nAction: <tool or chain name>\nAction Input: <input>\n")
	b.WriteString("or:\nThought: <reasoning>\nFinal Answer: <answer>\n\n")
	b.WriteString("Question: " + question)
	return b.String()
}
