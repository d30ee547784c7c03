// Copyright (c) 2026 Visibles. All rights reserved.
// Author: dev@visibles.org

package profile

import (
	"sync/atomic"
	"time"
)

// # Public Listing Cache

// listingCache holds the result of the most recent successful public listing
// query. It exists so the high-traffic public directory does not hit the
// database on every render.
//
// # Semantics
//
//   - Only the ListPublic result is ever cached. Admin ListAll queries always
//     go to the store.
//   - Any successful write (save, delete, visibility or archive toggle)
//     invalidates the whole snapshot unconditionally. There is no partial or
//     optimistic patching.
//   - The snapshot is replaced with an atomic pointer swap, so concurrent
//     readers either see the full old listing or the full new one, never a
//     torn state.
type listingCache struct {
	snapshot atomic.Pointer[listingSnapshot]
}

// listingSnapshot is one immutable cached listing result.
type listingSnapshot struct {
	profiles []*Profile
	cachedAt time.Time
}

// get returns the cached listing, or nil if the cache is cold or invalidated.
func (cache *listingCache) get() []*Profile {
	snap := cache.snapshot.Load()
	if snap == nil {
		return nil
	}
	return snap.profiles
}

// put replaces the cached listing with a fresh snapshot.
func (cache *listingCache) put(profiles []*Profile) {
	cache.snapshot.Store(&listingSnapshot{
		profiles: profiles,
		cachedAt: time.Now(),
	})
}

// invalidate drops the snapshot. Safe to call concurrently and repeatedly.
func (cache *listingCache) invalidate() {
	cache.snapshot.Store(nil)
}
