// Copyright (c) 2026 Visibles. All rights reserved.
// Author: dev@visibles.org

package ai

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubGenerator returns a canned response or error.
type stubGenerator struct {
	response string
	err      error
	calls    int
}

func (s *stubGenerator) Generate(_ context.Context, _ string, _ *ImagePayload, _ float32) (string, error) {
	s.calls++
	return s.response, s.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestReformulate(t *testing.T) {
	testCases := []struct {
		name      string
		generator Generator
		rawText   string
		expected  string
	}{
		{
			name:      "success returns reformulated text",
			generator: &stubGenerator{response: "Je m'appelle Jean et je cherche un logement."},
			rawText:   "jean, rue, cherche logement",
			expected:  "Je m'appelle Jean et je cherche un logement.",
		},
		{
			name:      "provider error falls back to original text",
			generator: &stubGenerator{err: errors.New("upstream timeout")},
			rawText:   "jean, rue, cherche logement",
			expected:  "jean, rue, cherche logement",
		},
		{
			name:      "blank response falls back to original text",
			generator: &stubGenerator{response: "   "},
			rawText:   "notes brutes",
			expected:  "notes brutes",
		},
		{
			name:      "nil generator passes input through",
			generator: nil,
			rawText:   "notes brutes",
			expected:  "notes brutes",
		},
		{
			name:      "empty input short-circuits",
			generator: &stubGenerator{response: "should not be used"},
			rawText:   "",
			expected:  "",
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			gateway := NewGateway(testCase.generator, discardLogger())
			assert.Equal(t, testCase.expected, gateway.Reformulate(context.Background(), testCase.rawText))
		})
	}
}

func TestReformulate_EmptyInputSkipsProvider(t *testing.T) {
	stub := &stubGenerator{response: "unused"}
	gateway := NewGateway(stub, discardLogger())

	gateway.Reformulate(context.Background(), "")

	assert.Zero(t, stub.calls)
}

func TestAnalyzeFull_Success(t *testing.T) {
	stub := &stubGenerator{response: "BIO: Je m'appelle Jean.\n" +
		"Je vis dans la rue depuis deux ans.\n" +
		"MENTAL_HEALTH: Moral fragile mais combatif.\n" +
		"FAMILY_CIRCLE:\n" +
		"NEEDS: Un logement stable\nDes vêtements chauds\n" +
		"PASSIONS: La lecture\n" +
		"PROJECTS: Retrouver un emploi"}
	gateway := NewGateway(stub, discardLogger())

	analysis := gateway.AnalyzeFull(context.Background(), "notes", nil)

	require.False(t, analysis.FromFallback)
	assert.Equal(t, "Je m'appelle Jean.\nJe vis dans la rue depuis deux ans.", analysis.Bio)
	assert.Equal(t, "Moral fragile mais combatif.", analysis.MentalHealth)
	assert.Empty(t, analysis.FamilyCircle)
	assert.Equal(t, "Un logement stable\nDes vêtements chauds", analysis.Needs)
	assert.Equal(t, "La lecture", analysis.Passions)
	assert.Equal(t, "Retrouver un emploi", analysis.Projects)
}

func TestAnalyzeFull_ProviderFailure(t *testing.T) {
	gateway := NewGateway(&stubGenerator{err: errors.New("boom")}, discardLogger())

	analysis := gateway.AnalyzeFull(context.Background(), "notes", nil)

	assert.True(t, analysis.FromFallback)
	assert.Equal(t, AnalysisUnavailable, analysis.Bio)
	assert.Empty(t, analysis.Needs)
}

func TestAnalyzeFull_DisabledGateway(t *testing.T) {
	gateway := NewGateway(nil, discardLogger())

	analysis := gateway.AnalyzeFull(context.Background(), "notes", nil)

	assert.True(t, analysis.FromFallback)
	assert.Equal(t, AnalysisUnavailable, analysis.Bio)
}

func TestExtractFields(t *testing.T) {
	testCases := []struct {
		name      string
		generated string
		rawText   string
		expected  Analysis
	}{
		{
			name:      "missing bio falls back to raw text",
			generated: "NEEDS: Un duvet",
			rawText:   "  notes brutes  ",
			expected:  Analysis{Bio: "notes brutes", Needs: "Un duvet"},
		},
		{
			name:      "markdown decorated labels are recognized",
			generated: "**BIO**: Mon histoire.\n## NEEDS: Un repas chaud",
			rawText:   "x",
			expected:  Analysis{Bio: "Mon histoire.", Needs: "Un repas chaud"},
		},
		{
			name:      "preamble before first label is dropped",
			generated: "Voici mon analyse:\n\nBIO: Mon histoire.",
			rawText:   "x",
			expected:  Analysis{Bio: "Mon histoire."},
		},
		{
			name:      "lowercase labels are recognized",
			generated: "bio: Mon histoire.\nmental_health: Stable.",
			rawText:   "x",
			expected:  Analysis{Bio: "Mon histoire.", MentalHealth: "Stable."},
		},
		{
			name:      "unparseable response keeps raw text as bio",
			generated: "le modèle a répondu n'importe quoi",
			rawText:   "notes brutes",
			expected:  Analysis{Bio: "notes brutes"},
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			assert.Equal(t, testCase.expected, extractFields(testCase.generated, testCase.rawText))
		})
	}
}

func TestSanitizeField_TruncatesLongValues(t *testing.T) {
	long := make([]rune, maxFieldLength+50)
	for i := range long {
		long[i] = 'a'
	}

	sanitized := sanitizeField(string(long))

	assert.Len(t, []rune(sanitized), maxFieldLength)
}
