// Copyright 2026 © The Loom Authors
// SPDX-License-Identifier: Apache-2.0

package chain_test

import (
	"context"
	"strings"
	"testing"

	"github.com/loomworks/loom/pkg/chain"
	"github.com/loomworks/loom/pkg/errors"
	"github.com/loomworks/loom/pkg/guardrails"
	"github.com/loomworks/loom/pkg/llm"
	"github.com/loomworks/loom/pkg/prompt"
	loomtest "github.com/loomworks/loom/pkg/testing"
)

func TestModelChainVerbatimPrompt(t *testing.T) {
	provider := &llm.EchoProvider{Prefix: "echo:"}
	c, err := chain.NewModel("plain", provider)
	if err != nil {
		t.Fatal(err)
	}

	out, err := c.Invoke(context.Background(), chain.NewInput("hello"))
	if err != nil {
		t.Fatal(err)
	}
	if out.Text != "echo:hello" {
		t.Errorf("text = %q", out.Text)
	}
	if out.ProcessingTimeMs <= 0 {
		t.Error("processing time not recorded")
	}
}

func TestModelChainTemplateRendersMetadata(t *testing.T) {
	provider := &llm.EchoProvider{}
	tpl := prompt.MustNew("Translate {text} to {language}")
	c, err := chain.NewModel("translate", provider, chain.WithTemplate(tpl))
	if err != nil {
		t.Fatal(err)
	}

	in := chain.NewInput("hi").WithMetadata("language", "ko")
	out, err := c.Invoke(context.Background(), in)
	if err != nil {
		t.Fatal(err)
	}
	if out.Text != "Translate hi to ko" {
		t.Errorf("rendered prompt = %q", out.Text)
	}
}

func TestModelChainUnboundPlaceholderIsConfigError(t *testing.T) {
	c, err := chain.NewModel("t", &llm.EchoProvider{},
		chain.WithTemplate(prompt.MustNew("{missing} {text}")))
	if err != nil {
		t.Fatal(err)
	}

	_, err = c.Invoke(context.Background(), chain.NewInput("x"))
	if !errors.IsCode(err, errors.CodeConfiguration) {
		t.Errorf("expected configuration error, got %v", err)
	}
}

func TestModelChainPropagatesBackendFailure(t *testing.T) {
	c, err := chain.NewModel("fail", &llm.FailingMockProvider{})
	if err != nil {
		t.Fatal(err)
	}

	_, err = c.Invoke(context.Background(), chain.NewInput("x"))
	if !errors.IsCode(err, errors.CodeBackend) {
		t.Errorf("expected backend error, got %v", err)
	}
	if !errors.IsRecoverable(err) {
		t.Error("backend errors must stay recoverable through the chain layer")
	}
}

func TestSequentialComposition(t *testing.T) {
	seq, err := chain.NewSequential("pipeline",
		loomtest.TransformChain("a", "-1"),
		loomtest.TransformChain("b", "-2"),
		loomtest.TransformChain("c", "-3"),
	)
	if err != nil {
		t.Fatal(err)
	}

	out, err := seq.Invoke(context.Background(), chain.NewInput("x"))
	if err != nil {
		t.Fatal(err)
	}
	if out.Text != "x-1-2-3" {
		t.Errorf("text = %q, want x-1-2-3", out.Text)
	}
	// Metadata merges left to right; each step saw the previous step's text.
	if out.Metadata["b.seen"] != "x-1" {
		t.Errorf("b saw %q, want x-1", out.Metadata["b.seen"])
	}
	if out.Metadata["c.seen"] != "x-1-2" {
		t.Errorf("c saw %q, want x-1-2", out.Metadata["c.seen"])
	}
}

func TestSequentialFailsFast(t *testing.T) {
	boom := errors.New(errors.CodeBackend, "boom", nil)
	failing := &loomtest.SpyChain{ChainName: "failing", Err: boom}
	after := loomtest.NewSpyChain("after", "never")

	seq, err := chain.NewSequential("seq", loomtest.TransformChain("ok", "!"), failing, after)
	if err != nil {
		t.Fatal(err)
	}

	_, err = seq.Invoke(context.Background(), chain.NewInput("x"))
	if err == nil {
		t.Fatal("expected failure")
	}
	if after.Invocations() != 0 {
		t.Error("children after the failure must not run")
	}
}

func TestSequentialHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	seq, _ := chain.NewSequential("seq", loomtest.TransformChain("a", "!"))
	_, err := seq.Invoke(ctx, chain.NewInput("x"))
	if !errors.IsCode(err, errors.CodeContextLost) {
		t.Errorf("expected context lost, got %v", err)
	}
}

func TestParallelAggregation(t *testing.T) {
	par, err := chain.NewParallel("fanout",
		loomtest.NewSpyChain("primary", "first"),
		loomtest.NewSpyChain("second", "two"),
		loomtest.NewSpyChain("third", "three"),
	)
	if err != nil {
		t.Fatal(err)
	}

	out, err := par.Invoke(context.Background(), chain.NewInput("q"))
	if err != nil {
		t.Fatal(err)
	}
	if out.Text != "first" {
		t.Errorf("primary text = %q", out.Text)
	}
	if out.Metadata["second"] != "two" || out.Metadata["third"] != "three" {
		t.Errorf("secondary outputs = %v", out.Metadata)
	}
	if _, ok := out.Metadata["primary"]; ok {
		t.Error("primary must not appear in metadata")
	}
}

func TestParallelFailsWhole(t *testing.T) {
	par, err := chain.NewParallel("fanout",
		loomtest.NewSpyChain("ok", "fine"),
		&loomtest.SpyChain{ChainName: "bad", Err: errors.New(errors.CodeBackend, "down", nil)},
	)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := par.Invoke(context.Background(), chain.NewInput("q")); err == nil {
		t.Fatal("any child failure must fail the whole invocation")
	}
}

func TestConditionalRouting(t *testing.T) {
	router := func(in chain.Input) string {
		if strings.Contains(in.Text, "?") {
			return "question"
		}
		return "statement"
	}
	cond, err := chain.NewConditional("router", router, map[string]chain.Chain{
		"question":  loomtest.NewSpyChain("q", "answer"),
		"statement": loomtest.NewSpyChain("s", "noted"),
	})
	if err != nil {
		t.Fatal(err)
	}

	out, err := cond.Invoke(context.Background(), chain.NewInput("how?"))
	if err != nil {
		t.Fatal(err)
	}
	if out.Text != "answer" {
		t.Errorf("text = %q", out.Text)
	}
}

func TestConditionalUnknownBranch(t *testing.T) {
	cond, err := chain.NewConditional("router",
		func(chain.Input) string { return "nope" },
		map[string]chain.Chain{"yes": loomtest.NewSpyChain("y", "ok")})
	if err != nil {
		t.Fatal(err)
	}

	_, err = cond.Invoke(context.Background(), chain.NewInput("x"))
	if !errors.IsCode(err, errors.CodeConfiguration) {
		t.Errorf("expected configuration error, got %v", err)
	}
}

func TestGuardedInputShortCircuit(t *testing.T) {
	spy := loomtest.NewSpyChain("inner", "ran")
	guarded, err := chain.NewGuarded("guarded", spy,
		chain.WithInputGuardrails(guardrails.NewInputLength(5)))
	if err != nil {
		t.Fatal(err)
	}

	_, err = guarded.Invoke(context.Background(), chain.NewInput("way too long input"))
	if !errors.IsCode(err, errors.CodeGuardrailBlocked) {
		t.Fatalf("expected guardrail block, got %v", err)
	}
	if spy.Invocations() != 0 {
		t.Error("wrapped chain must never run after an input block")
	}
}

func TestGuardedContentFilterCaseInsensitive(t *testing.T) {
	spy := loomtest.NewSpyChain("inner", "ran")
	guarded, err := chain.NewGuarded("guarded", spy,
		chain.WithInputGuardrails(guardrails.NewContentFilter("secret")))
	if err != nil {
		t.Fatal(err)
	}

	_, err = guarded.Invoke(context.Background(), chain.NewInput("the Secret plan"))
	if !errors.IsCode(err, errors.CodeGuardrailBlocked) {
		t.Fatalf("expected guardrail block, got %v", err)
	}
	if spy.Invocations() != 0 {
		t.Error("wrapped chain must never run")
	}
}

func TestGuardedTruncationMutatesInput(t *testing.T) {
	spy := loomtest.NewSpyChain("inner", "ran")
	guarded, err := chain.NewGuarded("guarded", spy,
		chain.WithInputGuardrails(guardrails.NewTruncatingInputLength(3)))
	if err != nil {
		t.Fatal(err)
	}

	if _, err := guarded.Invoke(context.Background(), chain.NewInput("abcdef")); err != nil {
		t.Fatal(err)
	}
	inputs := spy.Inputs()
	if len(inputs) != 1 || inputs[0].Text != "abc" {
		t.Errorf("wrapped chain saw %+v, want truncated text", inputs)
	}
}

func TestGuardedOutputFailureAfterExecution(t *testing.T) {
	spy := loomtest.NewSpyChain("inner", "contains forbidden word")
	guarded, err := chain.NewGuarded("guarded", spy,
		chain.WithOutputGuardrails(guardrails.NewContentFilter("forbidden")))
	if err != nil {
		t.Fatal(err)
	}

	_, err = guarded.Invoke(context.Background(), chain.NewInput("x"))
	if !errors.IsCode(err, errors.CodeGuardrailBlocked) {
		t.Fatalf("expected guardrail block, got %v", err)
	}
	// The wrapped chain already executed; its side effects stand.
	if spy.Invocations() != 1 {
		t.Error("wrapped chain should have run before the output block")
	}
}

func TestProofreadThenTranslateFeedsCorrectedText(t *testing.T) {
	// The echo backend returns its prompt, so the translate step's output
	// proves it received the proofread step's output.
	provider := &llm.EchoProvider{}
	proofread, err := chain.NewProofread(provider)
	if err != nil {
		t.Fatal(err)
	}
	translate, err := chain.NewTranslate(provider, "ko")
	if err != nil {
		t.Fatal(err)
	}

	seq, err := chain.NewSequential("fix-then-translate", proofread, translate)
	if err != nil {
		t.Fatal(err)
	}

	out, err := seq.Invoke(context.Background(), chain.NewInput("Ths is a tset"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.Text, "Translate the following text to ko") {
		t.Errorf("final prompt missing translate instruction: %q", out.Text)
	}
	if !strings.Contains(out.Text, "Ths is a tset") {
		t.Errorf("translate step did not receive the proofread output: %q", out.Text)
	}
}

func TestTaskChainNames(t *testing.T) {
	provider := &llm.MockProvider{Response: "ok"}
	summarize, _ := chain.NewSummarize(provider, 2)
	classify, _ := chain.NewClassify(provider, "spam", "ham")
	extract, _ := chain.NewExtract(provider, "name", "date")
	rewrite, _ := chain.NewRewrite(provider, "formal")
	chat, _ := chain.NewChat(provider)

	names := map[string]chain.Chain{
		"summarize": summarize,
		"classify":  classify,
		"extract":   extract,
		"rewrite":   rewrite,
		"chat":      chat,
	}
	for want, c := range names {
		if c.Name() != want {
			t.Errorf("chain name = %q, want %q", c.Name(), want)
		}
	}
}

func TestChatChainUsesHistory(t *testing.T) {
	provider := &llm.EchoProvider{}
	chat, err := chain.NewChat(provider)
	if err != nil {
		t.Fatal(err)
	}

	in := chain.NewInput("what next?").WithMetadata("history", "User: hi\nAssistant: hello")
	out, err := chat.Invoke(context.Background(), in)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.Text, "User: hi") {
		t.Errorf("history not rendered into prompt: %q", out.Text)
	}
}
