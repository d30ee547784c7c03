// Copyright (c) 2026 Visibles. All rights reserved.
// Author: dev@visibles.org

/*
Package ai wraps the external generative-AI endpoint used to reformulate raw
field notes into dignified public narratives.

# Reliability Contract

The remote model is treated as an unreliable remote function: single-shot
requests, no retry, no backoff. A failure never propagates to a crash;
every operation degrades to a usable fallback value:

  - Reformulate returns the original text unmodified.
  - AnalyzeFull returns a fixed unavailability notice as the biography.

The two fallbacks are intentionally different: a single-field reformulation
can silently pass the input through, but a full analysis producing nothing
must be visible to the field worker reviewing the draft.
*/
package ai

import (
	"context"
	"fmt"
	"log/slog"

	"google.golang.org/genai"
)

// Generation temperatures. Reformulation stays close to the source facts;
// the full analysis is allowed slightly more latitude to structure prose.
const (
	reformulateTemperature float32 = 0.4
	analyzeTemperature     float32 = 0.7
)

// AnalysisUnavailable is the fixed fallback biography when the full analysis
// cannot be produced.
const AnalysisUnavailable = "L'analyse automatique est indisponible pour le moment. Le récit brut a été conservé."

// # Contracts & Types

// ImagePayload is an optional inline image attached to an analysis request.
type ImagePayload struct {
	MIMEType string
	Data     []byte
}

// Generator abstracts the single-shot remote model call.
//
// # Why an interface?
//
// The provider response shape is duck-typed and the endpoint is flaky;
// isolating it behind one method keeps every fallback decision in this
// package and makes the gateway trivially testable.
type Generator interface {
	Generate(ctx context.Context, prompt string, image *ImagePayload, temperature float32) (string, error)
}

// Analysis is the validated, typed result of a full-profile analysis.
//
// Every field has been presence-checked and sanitized; absent provider
// fields hold their documented defaults.
type Analysis struct {
	Bio          string `json:"bio"`
	MentalHealth string `json:"mental_health"`
	FamilyCircle string `json:"family_circle"`
	Needs        string `json:"needs"`
	Passions     string `json:"passions"`
	Projects     string `json:"projects"`

	// FromFallback marks a degraded result produced without the provider.
	FromFallback bool `json:"from_fallback"`
}

// # Gateway

// Gateway is the application-facing facade over the generative endpoint.
//
// A Gateway with a nil generator is valid and permanently degraded: every
// call returns its fallback. This is the development-mode behavior when no
// API key is configured.
type Gateway struct {
	generator Generator
	logger    *slog.Logger
}

// NewGateway constructs a gateway over the given generator. generator may be
// nil to run in permanently-degraded mode.
func NewGateway(generator Generator, logger *slog.Logger) *Gateway {
	return &Gateway{generator: generator, logger: logger}
}

/*
Reformulate rewrites raw field notes into a dignified, factual narrative.

Description: On any failure (gateway disabled, network fault, empty model
response) the original text is returned unmodified. Callers cannot
distinguish a degraded result here; that is deliberate for this call site.

Parameters:
  - ctx: context.Context
  - rawText: string (Unedited field-worker notes)

Returns:
  - string: The reformulated narrative, or rawText on degradation
*/
func (gateway *Gateway) Reformulate(ctx context.Context, rawText string) string {
	if gateway.generator == nil || rawText == "" {
		return rawText
	}

	prompt := reformulatePrompt(rawText)
	generated, err := gateway.generator.Generate(ctx, prompt, nil, reformulateTemperature)
	if err != nil {
		gateway.logger.Warn("ai_reformulate_degraded", slog.Any("error", err))
		return rawText
	}

	cleaned := sanitizeField(generated)
	if cleaned == "" {
		return rawText
	}

	return cleaned
}

/*
AnalyzeFull produces the structured analysis used to build a profile draft.

Description: The provider returns untyped prose; extractFields parses the
labelled sections and validates each one before anything reaches persistence.
On failure the result carries the fixed [AnalysisUnavailable] notice as the
biography and FromFallback = true.

Parameters:
  - ctx: context.Context
  - rawText: string
  - image: *ImagePayload (optional photo captured during intake)

Returns:
  - Analysis: Typed fields with per-field defaults applied
*/
func (gateway *Gateway) AnalyzeFull(ctx context.Context, rawText string, image *ImagePayload) Analysis {
	if gateway.generator == nil {
		return fallbackAnalysis()
	}

	prompt := analyzePrompt(rawText)
	generated, err := gateway.generator.Generate(ctx, prompt, image, analyzeTemperature)
	if err != nil {
		gateway.logger.Warn("ai_analyze_degraded", slog.Any("error", err))
		return fallbackAnalysis()
	}

	analysis := extractFields(generated, rawText)
	return analysis
}

// fallbackAnalysis is the degraded full-analysis result.
func fallbackAnalysis() Analysis {
	return Analysis{
		Bio:          AnalysisUnavailable,
		FromFallback: true,
	}
}

// # Gemini Implementation

// GeminiGenerator implements [Generator] against Google's Gemini API.
type GeminiGenerator struct {
	client *genai.Client
	model  string
}

// NewGeminiGenerator creates a Gemini-backed generator.
func NewGeminiGenerator(ctx context.Context, apiKey, model string) (*GeminiGenerator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("ai: Gemini API key is required")
	}
	if model == "" {
		model = "gemini-2.0-flash"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("ai: failed to create Gemini client: %w", err)
	}

	return &GeminiGenerator{client: client, model: model}, nil
}

// Generate performs one blocking content-generation request.
func (generator *GeminiGenerator) Generate(ctx context.Context, prompt string, image *ImagePayload, temperature float32) (string, error) {
	parts := []*genai.Part{genai.NewPartFromText(prompt)}
	if image != nil && len(image.Data) > 0 {
		parts = append(parts, genai.NewPartFromBytes(image.Data, image.MIMEType))
	}

	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}
	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(temperature),
	}

	result, err := generator.client.Models.GenerateContent(ctx, generator.model, contents, config)
	if err != nil {
		return "", fmt.Errorf("ai: generation failed: %w", err)
	}

	text := result.Text()
	if text == "" {
		return "", fmt.Errorf("ai: empty model response")
	}

	return text, nil
}

// # Prompts

func reformulatePrompt(rawText string) string {
	return "Tu aides une association qui redonne une visibilité aux personnes sans-abri.\n" +
		"Reformule les notes de terrain suivantes en un récit digne, factuel et à la première personne.\n" +
		"N'invente aucun fait. Réponds uniquement avec le récit reformulé, sans préambule.\n\n" +
		"Notes:\n" + rawText
}

func analyzePrompt(rawText string) string {
	return "Tu aides une association qui redonne une visibilité aux personnes sans-abri.\n" +
		"Analyse les notes de terrain suivantes et réponds EXACTEMENT dans ce format, une section par ligne étiquetée:\n\n" +
		"BIO: récit digne et factuel à la première personne\n" +
		"MENTAL_HEALTH: état psychologique si mentionné, sinon laisser vide\n" +
		"FAMILY_CIRCLE: entourage familial si mentionné, sinon laisser vide\n" +
		"NEEDS: besoins concrets, un par ligne\n" +
		"PASSIONS: centres d'intérêt si mentionnés\n" +
		"PROJECTS: projets ou espoirs si mentionnés\n\n" +
		"Notes:\n" + rawText
}
