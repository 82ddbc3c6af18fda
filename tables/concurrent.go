/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package tables

import (
	"hash/maphash"
	"sync"
)

const shardCount = 32

type shard[K comparable, V any] struct {
	mu    sync.RWMutex
	items map[K]V
}

// Map is a concurrent map split into independently locked shards, so
// operations on unrelated keys rarely contend.
type Map[K comparable, V any] struct {
	seed   maphash.Seed
	shards [shardCount]shard[K, V]
}

func NewMap[K comparable, V any]() *Map[K, V] {
	m := &Map[K, V]{seed: maphash.MakeSeed()}
	for i := range m.shards {
		m.shards[i].items = make(map[K]V)
	}
	return m
}

func (m *Map[K, V]) shardFor(key K) *shard[K, V] {
	return &m.shards[maphash.Comparable(m.seed, key)%shardCount]
}

// Get returns the value stored for key.
func (m *Map[K, V]) Get(key K) (V, bool) {
	s := m.shardFor(key)
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.items[key]
	return v, ok
}

// Has reports whether key is present.
func (m *Map[K, V]) Has(key K) bool {
	_, ok := m.Get(key)
	return ok
}

// Insert stores value under key only if key is absent, and reports
// whether the value was added.
func (m *Map[K, V]) Insert(key K, value V) bool {
	s := m.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.items[key]; exists {
		return false
	}
	s.items[key] = value
	return true
}

// Remove deletes key and returns the value it held, if any.
func (m *Map[K, V]) Remove(key K) (V, bool) {
	s := m.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.items[key]
	if ok {
		delete(s.items, key)
	}
	return v, ok
}

// Len returns the number of entries. The count is exact only when no
// writers are active.
func (m *Map[K, V]) Len() int {
	n := 0
	for i := range m.shards {
		s := &m.shards[i]
		s.mu.RLock()
		n += len(s.items)
		s.mu.RUnlock()
	}
	return n
}

// Snapshot copies every entry while holding all shard read locks, so the
// result reflects a single point in time. Writers wait until the copy is
// done; readers are not blocked.
func (m *Map[K, V]) Snapshot() map[K]V {
	for i := range m.shards {
		m.shards[i].mu.RLock()
	}
	defer func() {
		for i := range m.shards {
			m.shards[i].mu.RUnlock()
		}
	}()

	n := 0
	for i := range m.shards {
		n += len(m.shards[i].items)
	}

	out := make(map[K]V, n)
	for i := range m.shards {
		for k, v := range m.shards[i].items {
			out[k] = v
		}
	}
	return out
}

// Retain calls keep for each entry and removes those for which it returns
// false. Shards are visited one at a time; keep must not call back into m.
func (m *Map[K, V]) Retain(keep func(K, V) bool) []V {
	var removed []V
	for i := range m.shards {
		s := &m.shards[i]
		s.mu.Lock()
		for k, v := range s.items {
			if !keep(k, v) {
				delete(s.items, k)
				removed = append(removed, v)
			}
		}
		s.mu.Unlock()
	}
	return removed
}
