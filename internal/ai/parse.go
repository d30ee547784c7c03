// Copyright (c) 2026 Visibles. All rights reserved.
// Author: dev@visibles.org

package ai

import (
	"strings"
)

// Maximum accepted length for a single extracted field. Anything longer is
// truncated at a rune boundary.
const maxFieldLength = 4000

// Section labels the analysis prompt instructs the model to emit. Matching
// is case-insensitive and tolerates markdown decoration around the label.
var sectionLabels = []string{
	"BIO",
	"MENTAL_HEALTH",
	"FAMILY_CIRCLE",
	"NEEDS",
	"PASSIONS",
	"PROJECTS",
}

/*
extractFields parses the labelled prose returned by the provider into a
typed [Analysis].

Description: The response is scanned line by line. A line starting with a
known label opens that section; subsequent unlabelled lines accumulate into
it, so multi-line sections survive. Missing sections fall back to their
defaults: the biography falls back to the raw input text, every other field
to empty.

Parameters:
  - generated: string (Raw model output)
  - rawText: string (Original notes, used as the biography default)

Returns:
  - Analysis: Parsed result with FromFallback = false
*/
func extractFields(generated, rawText string) Analysis {
	sections := make(map[string][]string, len(sectionLabels))
	current := ""

	for _, line := range strings.Split(generated, "\n") {
		label, remainder, found := matchLabel(line)
		if found {
			current = label
			if remainder != "" {
				sections[current] = append(sections[current], remainder)
			}
			continue
		}

		if current == "" {
			// Preamble before the first label belongs to no section.
			continue
		}
		sections[current] = append(sections[current], line)
	}

	analysis := Analysis{
		Bio:          joinSection(sections["BIO"]),
		MentalHealth: joinSection(sections["MENTAL_HEALTH"]),
		FamilyCircle: joinSection(sections["FAMILY_CIRCLE"]),
		Needs:        joinSection(sections["NEEDS"]),
		Passions:     joinSection(sections["PASSIONS"]),
		Projects:     joinSection(sections["PROJECTS"]),
	}

	if analysis.Bio == "" {
		analysis.Bio = strings.TrimSpace(rawText)
	}

	return analysis
}

// matchLabel reports whether the line opens a known section, returning the
// label and any text following the colon on the same line.
func matchLabel(line string) (label, remainder string, found bool) {
	trimmed := strings.TrimSpace(line)
	trimmed = strings.Trim(trimmed, "*#` ")

	colon := strings.Index(trimmed, ":")
	if colon < 0 {
		return "", "", false
	}

	candidate := strings.Trim(trimmed[:colon], "*#` ")
	candidate = strings.ToUpper(candidate)
	candidate = strings.ReplaceAll(candidate, " ", "_")

	for _, known := range sectionLabels {
		if candidate == known {
			return known, strings.TrimSpace(trimmed[colon+1:]), true
		}
	}

	return "", "", false
}

// joinSection assembles accumulated lines into one sanitized field value.
func joinSection(lines []string) string {
	if len(lines) == 0 {
		return ""
	}
	return sanitizeField(strings.Join(lines, "\n"))
}

// sanitizeField strips markdown decoration and enforces the length cap.
func sanitizeField(value string) string {
	value = strings.TrimSpace(value)
	value = strings.Trim(value, "`")
	value = strings.ReplaceAll(value, "**", "")
	value = strings.TrimSpace(value)

	runes := []rune(value)
	if len(runes) > maxFieldLength {
		value = string(runes[:maxFieldLength])
	}

	return value
}
