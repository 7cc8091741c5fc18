// Copyright 2026 © The Loom Authors
// SPDX-License-Identifier: Apache-2.0

package chain

import (
	"fmt"
	"strings"

	"github.com/loomworks/loom/pkg/llm"
	"github.com/loomworks/loom/pkg/prompt"
)

// Built-in task chains. Each is a ModelChain with a task-specific
// prompt template and generation preset. Prompts receive the input
// text through the "text" template variable.

var chatTemplate = prompt.MustNew(
	"You are a helpful on-device assistant. Continue the conversation.\n" +
		"{history}\n" +
		"User: {text}\n" +
		"Assistant:")

// NewSummarize creates a chain that condenses text into bulletCount
// bullet points.
func NewSummarize(provider llm.Provider, bulletCount int) (*ModelChain, error) {
	if bulletCount <= 0 {
		bulletCount = 3
	}
	tpl := prompt.MustNew(fmt.Sprintf(
		"Summarize the following text in exactly %d concise bullet points:\n{text}", bulletCount))
	return NewModel("summarize", provider,
		WithTemplate(tpl),
		WithPreset(llm.PresetStructured),
	)
}

// NewClassify creates a chain that assigns text to exactly one of the
// given categories.
func NewClassify(provider llm.Provider, categories ...string) (*ModelChain, error) {
	tpl := prompt.MustNew(fmt.Sprintf(
		"Classify the following text into exactly one of these categories: %s.\n"+
			"Respond with only the category name.\n{text}", strings.Join(categories, ", ")))
	return NewModel("classify", provider,
		WithTemplate(tpl),
		WithPreset(llm.PresetStructured),
	)
}

// NewExtract creates a chain that pulls the named fields out of text as
// a JSON object.
func NewExtract(provider llm.Provider, fields ...string) (*ModelChain, error) {
	tpl := prompt.MustNew(fmt.Sprintf(
		"Extract the following fields from the text below and respond with a single JSON object "+
			"containing exactly these keys: %s.\n{text}", strings.Join(fields, ", ")))
	return NewModel("extract", provider,
		WithTemplate(tpl),
		WithPreset(llm.PresetStructured),
	)
}

// NewTranslate creates a chain that translates text into the target
// language.
func NewTranslate(provider llm.Provider, language string) (*ModelChain, error) {
	tpl := prompt.MustNew(fmt.Sprintf(
		"Translate the following text to %s. Respond with only the translation.\n{text}", language))
	return NewModel("translate", provider,
		WithTemplate(tpl),
		WithPreset(llm.PresetStructured),
	)
}

// NewRewrite creates a chain that rewrites text in the given tone.
func NewRewrite(provider llm.Provider, tone string) (*ModelChain, error) {
	tpl := prompt.MustNew(fmt.Sprintf(
		"Rewrite the following text in a %s tone, preserving its meaning:\n{text}", tone))
	return NewModel("rewrite", provider,
		WithTemplate(tpl),
		WithPreset(llm.PresetCreative),
	)
}

// NewProofread creates a chain that corrects grammar and spelling.
func NewProofread(provider llm.Provider) (*ModelChain, error) {
	tpl := prompt.MustNew(
		"Proofread the following text. Fix spelling and grammar mistakes and respond " +
			"with only the corrected text:\n{text}")
	return NewModel("proofread", provider,
		WithTemplate(tpl),
		WithPreset(llm.PresetStructured),
	)
}

// NewChat creates a conversational chain. The "history" template
// variable carries prior turns; a Session fills it from its Memory, and
// direct callers must supply it (possibly empty) via input metadata.
func NewChat(provider llm.Provider) (*ModelChain, error) {
	return NewModel("chat", provider,
		WithTemplate(chatTemplate),
		WithPreset(llm.PresetConversational),
	)
}
