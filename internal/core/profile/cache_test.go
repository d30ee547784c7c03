// Copyright (c) 2026 Visibles. All rights reserved.
// Author: dev@visibles.org

package profile

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestListingCache_ColdStart(t *testing.T) {
	var cache listingCache

	assert.Nil(t, cache.get())
}

func TestListingCache_PutThenGet(t *testing.T) {
	var cache listingCache
	listing := []*Profile{{PublicID: "jean-a1b2c3"}}

	cache.put(listing)

	assert.Equal(t, listing, cache.get())
}

func TestListingCache_EmptySnapshotIsWarm(t *testing.T) {
	var cache listingCache

	cache.put([]*Profile{})

	// An empty listing is a valid cached state, distinct from a cold cache.
	assert.NotNil(t, cache.get())
	assert.Empty(t, cache.get())
}

func TestListingCache_Invalidate(t *testing.T) {
	var cache listingCache
	cache.put([]*Profile{{PublicID: "jean-a1b2c3"}})

	cache.invalidate()

	assert.Nil(t, cache.get())
	// Repeat invalidation is harmless.
	cache.invalidate()
	assert.Nil(t, cache.get())
}

func TestListingCache_ConcurrentAccess(t *testing.T) {
	var cache listingCache
	listing := []*Profile{{PublicID: "jean-a1b2c3"}}

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(3)
		go func() {
			defer wg.Done()
			cache.put(listing)
		}()
		go func() {
			defer wg.Done()
			cache.invalidate()
		}()
		go func() {
			defer wg.Done()
			// Readers see either nil or the full snapshot, never a torn state.
			if snapshot := cache.get(); snapshot != nil {
				assert.Len(t, snapshot, 1)
			}
		}()
	}
	wg.Wait()
}
