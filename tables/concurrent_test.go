/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package tables

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMap_InsertIfAbsent(t *testing.T) {
	m := NewMap[string, int]()

	assert.True(t, m.Insert("a", 1))
	assert.False(t, m.Insert("a", 2), "second insert must not replace")

	v, ok := m.Get("a")
	require.True(t, ok)
	assert.Equal(t, 1, v)
	assert.True(t, m.Has("a"))
	assert.False(t, m.Has("b"))
}

func TestMap_Remove(t *testing.T) {
	m := NewMap[uint32, string]()
	m.Insert(7, "seven")

	v, ok := m.Remove(7)
	assert.True(t, ok)
	assert.Equal(t, "seven", v)

	_, ok = m.Remove(7)
	assert.False(t, ok, "removing twice reports absence")
	assert.Equal(t, 0, m.Len())
}

func TestMap_SnapshotIsDetached(t *testing.T) {
	m := NewMap[int, int]()
	for i := range 100 {
		m.Insert(i, i*i)
	}

	snap := m.Snapshot()
	m.Remove(3)
	m.Insert(1000, 1)

	assert.Len(t, snap, 100)
	assert.Equal(t, 9, snap[3])
	assert.NotContains(t, snap, 1000)
}

func TestMap_Retain(t *testing.T) {
	m := NewMap[int, int]()
	for i := range 10 {
		m.Insert(i, i)
	}

	removed := m.Retain(func(k, _ int) bool { return k%2 == 0 })

	assert.Len(t, removed, 5)
	assert.Equal(t, 5, m.Len())
	for i := range 10 {
		assert.Equal(t, i%2 == 0, m.Has(i), "key %d", i)
	}
}

func TestMap_ConcurrentInsertOnce(t *testing.T) {
	m := NewMap[string, int]()

	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		won int
	)
	for i := range 64 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if m.Insert("shared", i) {
				mu.Lock()
				won++
				mu.Unlock()
			}
			m.Insert(string(rune('A'+i%26))+"-"+string(rune('a'+i/26)), i)
			_ = m.Snapshot()
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, won, "exactly one writer may claim a key")
	assert.Equal(t, 65, m.Len())
}
