// Copyright (c) 2026 Visibles. All rights reserved.
// Author: dev@visibles.org

package slug_test

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/visibles-org/visibles/pkg/slug"
)

/*
TestFrom verifies the slug transformation pipeline on representative inputs.
*/
func TestFrom(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"simple_name", "Jean", "jean"},
		{"accents_folded", "Héloïse Durand", "heloise-durand"},
		{"special_chars", "Marie & Pierre!", "marie-pierre"},
		{"multi_space", "Jean   Paul", "jean-paul"},
		{"leading_trailing", "  --Jean--  ", "jean"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, slug.From(tt.input))
		})
	}
}

/*
TestWithSuffix verifies the public identifier format and collision behavior.
*/
func TestWithSuffix(t *testing.T) {
	pattern := regexp.MustCompile(`^jean-[a-z0-9]{6}$`)

	first := slug.WithSuffix("Jean", 6)
	assert.Regexp(t, pattern, first)

	// Identical names must produce distinct identifiers.
	second := slug.WithSuffix("Jean", 6)
	assert.NotEqual(t, first, second)
}

/*
TestWithSuffix_EmptyName verifies unsluggable names still yield a usable identifier.
*/
func TestWithSuffix_EmptyName(t *testing.T) {
	id := slug.WithSuffix("!!!", 6)
	assert.Regexp(t, `^profil-[a-z0-9]{6}$`, id)
}
