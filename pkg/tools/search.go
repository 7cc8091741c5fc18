// Copyright 2026 © The Loom Authors
// SPDX-License-Identifier: Apache-2.0

package tools

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// Document is one searchable item for LocalSearchTool.
type Document struct {
	Title   string
	Content string
}

// LocalSearchTool performs naive keyword search over an in-memory
// document list supplied at construction. No index, no embeddings:
// a document scores one point per distinct query term it contains.
type LocalSearchTool struct {
	docs       []Document
	maxResults int
}

// NewLocalSearch creates a LocalSearchTool over the given documents.
func NewLocalSearch(docs []Document, maxResults int) *LocalSearchTool {
	if maxResults <= 0 {
		maxResults = 3
	}
	return &LocalSearchTool{
		docs:       append([]Document(nil), docs...),
		maxResults: maxResults,
	}
}

func (t *LocalSearchTool) ID() string { return "local-search" }

func (t *LocalSearchTool) Description() string {
	return "Searches a local document collection by keyword and returns the best matches."
}

func (t *LocalSearchTool) ParameterDescription() string {
	return "space-separated search keywords"
}

// Call scores every document against the query terms and returns the
// top matches, best first.
func (t *LocalSearchTool) Call(_ context.Context, input string) (string, error) {
	terms := strings.Fields(strings.ToLower(input))
	if len(terms) == 0 {
		return "no results: empty query", nil
	}

	type scored struct {
		doc   Document
		score int
		pos   int
	}
	var hits []scored
	for i, doc := range t.docs {
		haystack := strings.ToLower(doc.Title + " " + doc.Content)
		score := 0
		for _, term := range terms {
			if strings.Contains(haystack, term) {
				score++
			}
		}
		if score > 0 {
			hits = append(hits, scored{doc: doc, score: score, pos: i})
		}
	}

	if len(hits) == 0 {
		return "no results for: " + input, nil
	}

	// Stable order: score descending, then document position.
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].score != hits[j].score {
			return hits[i].score > hits[j].score
		}
		return hits[i].pos < hits[j].pos
	})

	if len(hits) > t.maxResults {
		hits = hits[:t.maxResults]
	}

	var sb strings.Builder
	for i, hit := range hits {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(fmt.Sprintf("%s: %s", hit.doc.Title, hit.doc.Content))
	}
	return sb.String(), nil
}

var _ Tool = (*LocalSearchTool)(nil)
