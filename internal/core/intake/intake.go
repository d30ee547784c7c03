// Copyright (c) 2026 Visibles. All rights reserved.
// Author: dev@visibles.org

/*
Package intake implements the guided flow a field worker follows to create a
profile with the person, on the street, in one sitting.

# Flow Shape

The flow is a fixed sequence of steps (identity, location, photo, story,
submit). Navigation is deliberately unconstrained: moving backward or forward
never validates anything, because interviews on the street get interrupted
and revisited out of order. Validation happens exactly once, at submission.

Drafts live in Redis with a generous TTL; an abandoned intake evaporates on
its own without a cleanup job.
*/
package intake

import (
	"time"
)

// # Steps

// Step is one screen of the guided intake flow.
type Step string

const (
	StepIdentity Step = "identity"
	StepLocation Step = "location"
	StepPhoto    Step = "photo"
	StepStory    Step = "story"
	StepSubmit   Step = "submit"
)

// stepOrder fixes the forward sequence of the flow.
var stepOrder = []Step{StepIdentity, StepLocation, StepPhoto, StepStory, StepSubmit}

// IsValid reports whether s is a recognised [Step] value.
func (s Step) IsValid() bool {
	for _, known := range stepOrder {
		if s == known {
			return true
		}
	}
	return false
}

// Next returns the following step, clamped at the final one.
func (s Step) Next() Step {
	for i, known := range stepOrder {
		if s == known && i < len(stepOrder)-1 {
			return stepOrder[i+1]
		}
	}
	return stepOrder[len(stepOrder)-1]
}

// Prev returns the preceding step, clamped at the first one.
func (s Step) Prev() Step {
	for i, known := range stepOrder {
		if s == known && i > 0 {
			return stepOrder[i-1]
		}
	}
	return stepOrder[0]
}

// # Draft Entity

// Draft is one in-progress intake, stored in Redis until submitted or
// abandoned.
//
// Every field except the identifier is freely editable at any step; nothing
// is validated until submission.
type Draft struct {
	ID   string `json:"id"`
	Step Step   `json:"step"`

	Name     string `json:"name"`
	Location string `json:"location"`

	// Photo is a data URI captured from the device camera, optional.
	Photo string `json:"photo,omitempty"`

	// RawStory holds the field worker's unedited notes.
	RawStory string `json:"raw_story"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
