// Copyright (c) 2026 Visibles. All rights reserved.
// Author: dev@visibles.org

/*
Package comment implements the public support messages attached to a profile.

Comments are append-only encouragements left by visitors of a public profile
page. There is no threading, no editing, and no reactions; moderation happens
through profile archival, which hides the whole page including its comments.
*/
package comment

import (
	"time"
)

// Input length caps enforced at the service layer.
const (
	maxAuthorNameLength = 80
	maxBodyLength       = 2000
)

// Comment is one visitor message attached to a profile page.
type Comment struct {
	ID string `json:"id"`

	// ProfilePublicID links the comment to its profile's shareable identifier.
	ProfilePublicID string `json:"profile_public_id"`

	AuthorName string `json:"author_name"`
	Body       string `json:"body"`

	CreatedAt time.Time `json:"created_at"`
}
