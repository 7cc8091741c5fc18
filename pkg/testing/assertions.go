// Copyright 2026 © The Loom Authors
// SPDX-License-Identifier: Apache-2.0

package testing

import (
	"reflect"
	"strings"
	"testing"
)

// Assertions bundles common test checks with consistent failure messages.
type Assertions struct {
	t *testing.T
}

// NewAssertions creates an Assertions helper bound to t.
func NewAssertions(t *testing.T) *Assertions {
	t.Helper()
	return &Assertions{t: t}
}

// AssertEqual fails the test when expected and actual differ.
func (a *Assertions) AssertEqual(expected, actual any, msg string) {
	a.t.Helper()
	if !reflect.DeepEqual(expected, actual) {
		a.t.Errorf("%s: expected %v, got %v", msg, expected, actual)
	}
}

// AssertNoError fails the test when err is non-nil.
func (a *Assertions) AssertNoError(err error, msg string) {
	a.t.Helper()
	if err != nil {
		a.t.Errorf("%s: unexpected error: %v", msg, err)
	}
}

// AssertError fails the test when err is nil.
func (a *Assertions) AssertError(err error, msg string) {
	a.t.Helper()
	if err == nil {
		a.t.Errorf("%s: expected an error", msg)
	}
}

// AssertTrue fails the test when value is false.
func (a *Assertions) AssertTrue(value bool, msg string) {
	a.t.Helper()
	if !value {
		a.t.Errorf("%s: expected true", msg)
	}
}

// AssertContains fails the test when s does not contain substr.
func (a *Assertions) AssertContains(s, substr, msg string) {
	a.t.Helper()
	if !strings.Contains(s, substr) {
		a.t.Errorf("%s: %q does not contain %q", msg, s, substr)
	}
}
