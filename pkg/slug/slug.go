// Copyright (c) 2026 Visibles. All rights reserved.
// Author: dev@visibles.org

// Package slug generates ASCII URL slugs from arbitrary Unicode strings.
//
// # Usage
//
// Slugs are used as human-shareable public identifiers for profiles
// (e.g., "jean-k3x9b2"). This package handles normalization, accent removal,
// character sanitization, and random suffixing for collision avoidance.
package slug

import (
	"crypto/rand"
	"math/big"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	// nonAlphanumeric matches any sequence of non-alphanumeric, non-hyphen characters.
	nonAlphanumeric = regexp.MustCompile(`[^a-z0-9-]+`)
	// multiHyphen collapses multiple consecutive hyphens into one.
	multiHyphen = regexp.MustCompile(`-{2,}`)
)

// From converts an arbitrary Unicode string into a URL-safe ASCII slug.
//
// # Transformation Pipeline
//
// 1. Normalizes to NFD (decomposes accented chars: é → e + combining acute).
// 2. Removes combining marks (accents).
// 3. Converts to lowercase.
// 4. Replaces non-alphanumeric characters with hyphens.
// 5. Collapses multiple hyphens and trims leading/trailing hyphens.
func From(s string) string {
	// 1. Normalize and remove accents
	t := transform.Chain(norm.NFD, transform.RemoveFunc(isMn))
	result, _, _ := transform.String(t, s)

	// 2. Lowercase
	result = strings.ToLower(result)

	// 3. Replace whitespace and special chars with hyphens
	result = strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return '-'
	}, result)

	// 4. Clean up hyphenation
	result = nonAlphanumeric.ReplaceAllString(result, "-")
	result = multiHyphen.ReplaceAllString(result, "-")
	result = strings.Trim(result, "-")

	return result
}

// isMn reports whether r is a Unicode non-spacing mark (e.g., accents).
func isMn(r rune) bool {
	return unicode.Is(unicode.Mn, r)
}

// suffixAlphabet excludes nothing: public identifiers accept any [a-z0-9].
const suffixAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// WithSuffix builds a public identifier by appending a random suffix to the
// slugged input, e.g. "Jean" → "jean-k3x9b2".
//
// Two people with the same name must never collide on the same identifier,
// so the suffix draws from crypto/rand rather than a seeded PRNG.
func WithSuffix(s string, suffixLength int) string {
	base := From(s)
	if base == "" {
		base = "profil"
	}

	suffix := make([]byte, suffixLength)
	for i := range suffix {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(suffixAlphabet))))
		if err != nil {
			// crypto/rand failure is unrecoverable entropy starvation
			panic("slug: failed to generate suffix: " + err.Error())
		}
		suffix[i] = suffixAlphabet[n.Int64()]
	}

	return base + "-" + string(suffix)
}
