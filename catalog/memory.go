/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package catalog

import (
	"context"
	"fmt"
	"slices"
	"sync"
)

// Memory is a catalog held entirely in process.
type Memory struct {
	mu     sync.RWMutex
	byID   map[uint32]Pack
	byName map[string]uint32
}

func NewMemory(packs ...Pack) *Memory {
	m := &Memory{
		byID:   make(map[uint32]Pack),
		byName: make(map[string]uint32),
	}
	for _, p := range packs {
		m.Add(p)
	}
	return m
}

// Add stores p, replacing any pack with the same id.
func (m *Memory) Add(p Pack) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if old, ok := m.byID[p.Info.ID]; ok {
		delete(m.byName, old.Info.Name)
	}
	m.byID[p.Info.ID] = p
	m.byName[p.Info.Name] = p.Info.ID
}

func (m *Memory) ResolveIconPackIDs(_ context.Context, names []string) ([]uint32, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]uint32, 0, len(names))
	for _, name := range names {
		id, ok := m.byName[name]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (m *Memory) FetchIconPack(_ context.Context, id uint32) (IconPack, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.byID[id]
	if !ok {
		return IconPack{}, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	return IconPack{
		Name:  p.Info.Name,
		Icons: slices.Clone(p.Icons),
	}, nil
}

func (m *Memory) ListIconPacks(_ context.Context) ([]PackInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	infos := make([]PackInfo, 0, len(m.byID))
	for _, p := range m.byID {
		infos = append(infos, p.Info)
	}
	slices.SortFunc(infos, func(a, b PackInfo) int {
		return int(a.ID) - int(b.ID)
	})
	return infos, nil
}

func (m *Memory) Close() error {
	return nil
}
