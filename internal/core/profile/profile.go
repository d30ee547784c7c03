// Copyright (c) 2026 Visibles. All rights reserved.
// Author: dev@visibles.org

/*
Package profile defines the central domain entity of the Visibles platform:
one person's public-facing case file.

It manages the full lifecycle of a profile, from the guided intake draft to
publication in the public directory, archival, and irreversible deletion.

Core Responsibility:

  - Identity: A store-assigned internal ID plus a stable, shareable public
    identifier (slug) used in URLs and QR codes.
  - Narrative: The raw field-worker notes are the source of truth; the
    reformulated story is what the public directory displays.
  - Visibility: is_public controls listing inclusion; is_archived is a
    soft-delete that overrides is_public everywhere.

This package acts as the source of truth for all profile-related data models.
*/
package profile

import (
	"strings"
	"time"
)

// # Listing Filters

// ListFilter selects which slice of the collection a List call returns.
type ListFilter string

const (
	// ListAll returns every profile, including archived and unpublished ones.
	// Reserved for the admin management surface; never served from cache.
	ListAll ListFilter = "all"

	// ListPublic returns only profiles with is_public = true AND
	// is_archived = false, ordered by creation time descending.
	ListPublic ListFilter = "public"
)

// # Core Entities

// Profile is the central aggregate of the Visibles domain.
//
// # Invariants
//
//   - PublicID is unique across all profiles and never changes once assigned.
//   - An archived profile never appears in any public listing, regardless
//     of IsPublic.
//   - UrgentNeeds is always a subset (by exact string match) of the parsed
//     needs list.
//   - CreatedAt is assigned exactly once, at first persistence.
type Profile struct {
	ID       string `json:"id"`
	PublicID string `json:"public_id"`

	Name string `json:"name"`

	// RawStory holds the unedited field-worker notes. Never shown publicly.
	RawStory string `json:"raw_story"`

	// Story is the reformulated narrative intended for public display.
	Story string `json:"story"`

	// Needs is a newline-delimited list of concrete needs.
	Needs string `json:"needs"`

	// UrgentNeeds flags a subset of the needs list as urgent.
	UrgentNeeds []string `json:"urgent_needs,omitempty"`

	Location string `json:"location"`

	// ImageURL is either a remote URL or a data URI captured during intake.
	ImageURL string `json:"image_url,omitempty"`

	IsPublic   bool `json:"is_public"`
	IsArchived bool `json:"is_archived"`
	IsVerified bool `json:"is_verified"`

	Meta Metadata `json:"meta"`

	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// Metadata is the additive, always-optional block attached to a profile.
// A profile is valid with every field here at its zero value.
type Metadata struct {
	// UrgencyScore is an ordinal editorial signal (1-10). nil = unscored.
	UrgencyScore *int16 `json:"urgency_score,omitempty"`

	Tags []string `json:"tags,omitempty"`

	VerificationStatus string `json:"verification_status,omitempty"`

	ContactPhone string `json:"contact_phone,omitempty"`
	ContactEmail string `json:"contact_email,omitempty"`

	// Engagement counters, bumped by the public surface.
	Views       int64 `json:"views"`
	QRDownloads int64 `json:"qr_downloads"`
	LinkShares  int64 `json:"link_shares"`
}

// # Derived Accessors

// NeedsList parses the newline-delimited needs string into trimmed entries.
// Blank lines are dropped.
func (p *Profile) NeedsList() []string {
	if p.Needs == "" {
		return nil
	}
	var needs []string
	for _, line := range strings.Split(p.Needs, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			needs = append(needs, trimmed)
		}
	}
	return needs
}

// NormalizeUrgentNeeds drops any urgent entry that is not present in the
// parsed needs list, restoring the subset invariant after an edit.
func (p *Profile) NormalizeUrgentNeeds() {
	if len(p.UrgentNeeds) == 0 {
		return
	}

	known := make(map[string]struct{})
	for _, need := range p.NeedsList() {
		known[need] = struct{}{}
	}

	kept := p.UrgentNeeds[:0]
	for _, urgent := range p.UrgentNeeds {
		if _, ok := known[urgent]; ok {
			kept = append(kept, urgent)
		}
	}
	p.UrgentNeeds = kept
}

// IsListedPublicly reports whether the profile belongs in the public directory.
// Archival always wins over the publication flag.
func (p *Profile) IsListedPublicly() bool {
	return p.IsPublic && !p.IsArchived
}
