// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package cache provides the read cache placed in front of the kv store.
package cache

import (
	lru "github.com/hashicorp/golang-lru"
)

// LRU a LRU cache extends golang-lru with hit/miss stats.
type LRU struct {
	cache *lru.Cache
	stats Stats
}

// NewLRU create a LRU cache instance.
// maxSize should be > 0, or an error returned.
func NewLRU(maxSize int) (*LRU, error) {
	cache, err := lru.New(maxSize)
	if err != nil {
		return nil, err
	}
	return &LRU{cache: cache}, nil
}

// Get looks up a key's value from the cache.
func (l *LRU) Get(key any) (any, bool) {
	v, ok := l.cache.Get(key)
	l.stats.record(ok)
	return v, ok
}

// Add adds a value to the cache.
func (l *LRU) Add(key, value any) {
	l.cache.Add(key, value)
}

// Remove removes the key from the cache.
func (l *LRU) Remove(key any) {
	l.cache.Remove(key)
}

// Purge clears the cache.
func (l *LRU) Purge() {
	l.cache.Purge()
}

// Len returns the number of cached entries.
func (l *LRU) Len() int {
	return l.cache.Len()
}

// Stats returns the hit/miss collector.
func (l *LRU) Stats() *Stats {
	return &l.stats
}

// Loader defines loader to load value.
type Loader func(key any) (any, error)

// GetOrLoad first try to get from cache, do load if missed.
func (l *LRU) GetOrLoad(key any, loader Loader) (any, error) {
	if v, ok := l.Get(key); ok {
		return v, nil
	}
	v, err := loader(key)
	if err != nil {
		return nil, err
	}

	l.Add(key, v)
	return v, nil
}
