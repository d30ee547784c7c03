// Copyright (c) 2026 Visibles. All rights reserved.
// Author: dev@visibles.org

package profile

import (
	"net/url"
	"sort"
	"strings"

	"github.com/visibles-org/visibles/internal/platform/constants"
	"github.com/visibles-org/visibles/pkg/convert"
	"github.com/visibles-org/visibles/pkg/query"
	"github.com/visibles-org/visibles/pkg/slice"
)

// # Listing Filters & Grouping

// SortOrder names one of the supported listing sort orders.
type SortOrder string

const (
	// SortRecent orders by creation time, newest first. Default.
	SortRecent SortOrder = "recent"

	// SortName orders alphabetically by name, case-insensitive.
	SortName SortOrder = "name"

	// SortUrgency orders by urgency score, highest first. Unscored profiles sink.
	SortUrgency SortOrder = "urgency"
)

// IsValid reports whether s is a recognised [SortOrder] value.
func (s SortOrder) IsValid() bool {
	switch s {
	case SortRecent, SortName, SortUrgency:
		return true
	}
	return false
}

// UnspecifiedLocation is the group label for profiles without a location.
const UnspecifiedLocation = "Unspecified"

// FilterState is the full, URL-serializable state of the public listing.
//
// # Determinism
//
// For a fixed profile set, FromValues(state.Values()) must reproduce the
// exact same grouped output as the original state. All predicates and sorts
// below are pure and use stable orderings with total tie-breaks.
type FilterState struct {
	// Query is a case-insensitive substring matched against name, story,
	// and location.
	Query string

	// UrgentOnly keeps only profiles whose urgency score meets the
	// platform threshold.
	UrgentOnly bool

	// NeedTags keeps profiles whose needs text contains at least one of
	// the selected tags (case-insensitive substring).
	NeedTags []string

	// Sort selects the in-group ordering.
	Sort SortOrder
}

// Values serializes the filter state to URL query parameters.
func (state FilterState) Values() url.Values {
	values := url.Values{}
	if state.Query != "" {
		values.Set("q", state.Query)
	}
	if state.UrgentOnly {
		values.Set("urgent", "true")
	}
	// One "needs" parameter per tag. A joined encoding would corrupt tags
	// that themselves contain the separator.
	for _, tag := range state.NeedTags {
		values.Add("needs", tag)
	}
	if state.Sort != "" && state.Sort != SortRecent {
		values.Set("sort", string(state.Sort))
	}
	return values
}

// FromValues restores a filter state from URL query parameters.
// Unknown sort values fall back to [SortRecent].
func FromValues(values url.Values) FilterState {
	state := FilterState{
		Query:      strings.TrimSpace(values.Get("q")),
		UrgentOnly: convert.ToBool(values.Get("urgent")),
		NeedTags:   query.Strings(values["needs"]),
		Sort:       SortOrder(values.Get("sort")),
	}
	if !state.Sort.IsValid() {
		state.Sort = SortRecent
	}
	return state
}

// Group is one named location group in the public directory.
type Group struct {
	Location string     `json:"location"`
	Profiles []*Profile `json:"profiles"`
}

/*
ApplyFilters groups the public profile set by location and applies the active
filter state.

Description: Within each group the predicates run in a fixed order (text
search, urgency, need tags) followed by the sort. Groups left empty by the
predicates are dropped entirely. Group order is alphabetical by location
label so identical inputs always render identically.

Parameters:
  - profiles: []*Profile (The public, non-archived set)
  - state: FilterState

Returns:
  - []Group: Filtered, sorted location groups
*/
func ApplyFilters(profiles []*Profile, state FilterState) []Group {

	// ── 1. Group by location label ────────────────────────────────────────
	grouped := make(map[string][]*Profile)
	for _, p := range profiles {
		label := strings.TrimSpace(p.Location)
		if label == "" {
			label = UnspecifiedLocation
		}
		grouped[label] = append(grouped[label], p)
	}

	// ── 2. Apply predicates and sort per group ────────────────────────────
	var groups []Group
	for label, members := range grouped {
		members = slice.Filter(members, func(p *Profile) bool {
			return matchesQuery(p, state.Query) &&
				matchesUrgency(p, state.UrgentOnly) &&
				matchesNeedTags(p, state.NeedTags)
		})

		// Empty groups disappear rather than rendering a bare heading.
		if len(members) == 0 {
			continue
		}

		sortProfiles(members, state.Sort)
		groups = append(groups, Group{Location: label, Profiles: members})
	}

	// ── 3. Deterministic group order ──────────────────────────────────────
	sort.Slice(groups, func(i, j int) bool {
		return groups[i].Location < groups[j].Location
	})

	return groups
}

// # Predicates

// matchesQuery reports whether the profile matches the free-text search.
func matchesQuery(p *Profile, text string) bool {
	if text == "" {
		return true
	}
	needle := strings.ToLower(text)
	return strings.Contains(strings.ToLower(p.Name), needle) ||
		strings.Contains(strings.ToLower(p.Story), needle) ||
		strings.Contains(strings.ToLower(p.Location), needle)
}

// matchesUrgency reports whether the profile clears the urgency threshold.
func matchesUrgency(p *Profile, urgentOnly bool) bool {
	if !urgentOnly {
		return true
	}
	return p.Meta.UrgencyScore != nil && int(*p.Meta.UrgencyScore) >= constants.UrgencyThreshold
}

// matchesNeedTags reports whether any selected tag appears in the needs text.
func matchesNeedTags(p *Profile, tags []string) bool {
	if len(tags) == 0 {
		return true
	}
	needs := strings.ToLower(p.Needs)
	for _, tag := range tags {
		if strings.Contains(needs, strings.ToLower(tag)) {
			return true
		}
	}
	return false
}

// # Sorting

// sortProfiles applies the requested order with a total tie-break on public
// identifier, so equal keys can never produce run-to-run reorderings.
func sortProfiles(profiles []*Profile, order SortOrder) {
	sort.SliceStable(profiles, func(i, j int) bool {
		a, b := profiles[i], profiles[j]

		switch order {
		case SortName:
			nameA, nameB := strings.ToLower(a.Name), strings.ToLower(b.Name)
			if nameA != nameB {
				return nameA < nameB
			}
		case SortUrgency:
			scoreA, scoreB := urgencyOf(a), urgencyOf(b)
			if scoreA != scoreB {
				return scoreA > scoreB
			}
		default: // SortRecent
			if !a.CreatedAt.Equal(b.CreatedAt) {
				return a.CreatedAt.After(b.CreatedAt)
			}
		}

		return a.PublicID < b.PublicID
	})
}

// urgencyOf treats an unscored profile as zero urgency.
func urgencyOf(p *Profile) int {
	if p.Meta.UrgencyScore == nil {
		return 0
	}
	return int(*p.Meta.UrgencyScore)
}
