/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package tables

import (
	"slices"
	"sync"
	"sync/atomic"
	"time"
)

// Session is one live table: its metadata, its elements and the icon packs
// loaded into it. Element ids come from a counter that starts at 1 and only
// ever grows, so an id is never handed out twice.
type Session struct {
	code    string
	created time.Time
	name    string
	sharing Sharing
	host    *string

	nextID     atomic.Uint32
	lastActive atomic.Int64

	elements  *Map[uint32, *Element]
	iconPacks *Map[uint32, struct{}]

	// seq orders accepted updates with their broadcast.
	seq sync.Mutex
}

func newSession(code, name string, sharing Sharing, host *string, packs []uint32, now time.Time) *Session {
	s := &Session{
		code:      code,
		created:   now,
		name:      name,
		sharing:   sharing,
		elements:  NewMap[uint32, *Element](),
		iconPacks: NewMap[uint32, struct{}](),
	}
	if host != nil {
		h := *host
		s.host = &h
	}
	s.nextID.Store(1)
	s.lastActive.Store(now.UnixNano())
	for _, p := range packs {
		s.iconPacks.Insert(p, struct{}{})
	}
	return s
}

func (s *Session) Code() string       { return s.code }
func (s *Session) Name() string       { return s.name }
func (s *Session) Created() time.Time { return s.created }
func (s *Session) Sharing() Sharing   { return s.sharing }

// Host returns the identity of the viewer who created the table, if known.
func (s *Session) Host() (string, bool) {
	if s.host == nil {
		return "", false
	}
	return *s.host, true
}

// LastActive is the time of creation or of the most recent accepted update.
func (s *Session) LastActive() time.Time {
	return time.Unix(0, s.lastActive.Load())
}

func (s *Session) touch(now time.Time) {
	s.lastActive.Store(now.UnixNano())
}

// LoadIconPack registers pack and reports whether it was newly added.
func (s *Session) LoadIconPack(pack uint32) bool {
	return s.iconPacks.Insert(pack, struct{}{})
}

func (s *Session) HasIconPack(pack uint32) bool {
	return s.iconPacks.Has(pack)
}

// CreateElement places a new element backed by an icon from a loaded pack
// and returns its id.
func (s *Session) CreateElement(pack, icon uint32, top, left float64) (uint32, error) {
	if !s.HasIconPack(pack) {
		return 0, ErrIconPackNotLoaded
	}

	id := s.nextID.Add(1) - 1
	s.elements.Insert(id, newElement(id, pack, icon, top, left))
	return id, nil
}

// Element returns the live element with the given id.
func (s *Session) Element(id uint32) (*Element, bool) {
	return s.elements.Get(id)
}

func (s *Session) MoveElement(id uint32, top, left float64) error {
	e, ok := s.elements.Get(id)
	if !ok {
		return ErrElementNotFound
	}
	e.Move(top, left)
	return nil
}

func (s *Session) DeleteElement(id uint32) error {
	if _, ok := s.elements.Remove(id); !ok {
		return ErrElementNotFound
	}
	return nil
}

// Snapshot is an immutable copy of a session taken for one read.
type Snapshot struct {
	Code      string                  `json:"-"`
	Created   time.Time               `json:"created"`
	Name      string                  `json:"name"`
	Elements  map[uint32]ElementState `json:"elements"`
	IconPacks []uint32                `json:"icon_packs"`
	NextID    uint32                  `json:"-"`
}

func (s *Session) Snapshot() Snapshot {
	live := s.elements.Snapshot()
	elements := make(map[uint32]ElementState, len(live))
	for id, e := range live {
		elements[id] = e.State()
	}

	packs := make([]uint32, 0)
	for p := range s.iconPacks.Snapshot() {
		packs = append(packs, p)
	}
	slices.Sort(packs)

	return Snapshot{
		Code:      s.code,
		Created:   s.created,
		Name:      s.name,
		Elements:  elements,
		IconPacks: packs,
		NextID:    s.nextID.Load(),
	}
}
