// Copyright 2026 © The Loom Authors
// SPDX-License-Identifier: Apache-2.0

package agent

import "strings"

// proposal is one parsed model turn: either an action to dispatch or a
// final answer.
type proposal struct {
	Thought string
	Action  string
	Input   string
	Answer  string
	IsFinal bool
}

// parseProposal reads the model's reply line by line, matching the
// Thought / Action / Action Input / Final Answer labels
// case-insensitively. A reply with neither an action nor an explicit
// final answer is treated as a final answer in full.
func parseProposal(text string) proposal {
	var p proposal
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case hasLabel(line, "Thought:"):
			p.Thought = matchLabel(line, "Thought:")
		case hasLabel(line, "Final Answer:"):
			p.Answer = matchLabel(line, "Final Answer:")
			p.IsFinal = true
		case hasLabel(line, "Action Input:"):
			p.Input = matchLabel(line, "Action Input:")
		case hasLabel(line, "Action:"):
			p.Action = matchLabel(line, "Action:")
		}
	}
	if p.Action == "" && !p.IsFinal {
		p.Answer = strings.TrimSpace(text)
		p.IsFinal = true
	}
	return p
}

func hasLabel(line, label string) bool {
	return len(line) >= len(label) && strings.EqualFold(line[:len(label)], label)
}

func matchLabel(line, label string) string {
	if !hasLabel(line, label) {
		return ""
	}
	return strings.TrimSpace(line[len(label):])
}
