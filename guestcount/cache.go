/*
cache.go - Local cache layer for guest-count state

PURPOSE:
  GetState reads the cache first for responsiveness before reconciling
  against the remote record. The interface is small so deployments can
  swap the in-process map for a shared Redis cache (store/redis) without
  touching the store logic.

CONTRACT:
  Get returns (state, found). Cache errors are treated by the store as a
  miss; a degraded cache never fails a read path.
*/
package guestcount

import (
	"context"
	"sync"
)

// Cache is the local layer the store consults before the remote record.
type Cache interface {
	Get(ctx context.Context, userID string) (State, bool, error)
	Put(ctx context.Context, userID string, state State) error
	Drop(ctx context.Context, userID string) error
}

// =============================================================================
// MEMORY CACHE - Default in-process implementation
// =============================================================================

// MemoryCache is a process-local Cache backed by a map.
type MemoryCache struct {
	mu     sync.RWMutex
	states map[string]State
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{states: make(map[string]State)}
}

func (c *MemoryCache) Get(_ context.Context, userID string) (State, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	st, ok := c.states[userID]
	if !ok {
		return State{}, false, nil
	}
	return st.clone(), true, nil
}

func (c *MemoryCache) Put(_ context.Context, userID string, state State) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.states[userID] = state.clone()
	return nil
}

func (c *MemoryCache) Drop(_ context.Context, userID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.states, userID)
	return nil
}
