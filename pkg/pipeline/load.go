// Copyright 2026 © The Loom Authors
// SPDX-License-Identifier: Apache-2.0

package pipeline

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/loomworks/loom/pkg/errors"
)

// LoadSpec loads a pipeline spec from a YAML or JSON file.
func LoadSpec(path string) (*Spec, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New(errors.CodeConfiguration, "pipeline spec path is required", nil)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New(errors.CodeConfiguration, "failed to read pipeline spec", err)
	}
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".json":
		return ParseJSON(data)
	case ".yaml", ".yml":
		return ParseYAML(data)
	default:
		return parseSpecAuto(data)
	}
}

func parseSpecAuto(data []byte) (*Spec, error) {
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "{") {
		if spec, err := ParseJSON(data); err == nil {
			return spec, nil
		}
	}
	if spec, err := ParseYAML(data); err == nil {
		return spec, nil
	}
	if spec, err := ParseJSON(data); err == nil {
		return spec, nil
	}
	return nil, errors.New(errors.CodeConfiguration, "unsupported pipeline spec format", nil)
}
