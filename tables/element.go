/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package tables

import (
	"math"
	"sync"
	"sync/atomic"
)

// Element is one placed icon on a table. Its identity and icon are fixed at
// creation; top and left are stored independently, so concurrent moves may
// leave one coordinate from each writer.
type Element struct {
	id   uint32
	pack uint32
	icon uint32

	top  atomic.Uint64
	left atomic.Uint64

	mu      sync.RWMutex
	public  map[string]Property
	private map[string]Property
	actions map[string]Action
}

func newElement(id, pack, icon uint32, top, left float64) *Element {
	e := &Element{
		id:      id,
		pack:    pack,
		icon:    icon,
		public:  make(map[string]Property),
		private: make(map[string]Property),
		actions: make(map[string]Action),
	}
	e.top.Store(math.Float64bits(top))
	e.left.Store(math.Float64bits(left))
	return e
}

func (e *Element) ID() uint32       { return e.id }
func (e *Element) IconPack() uint32 { return e.pack }
func (e *Element) IconID() uint32   { return e.icon }

func (e *Element) Top() float64  { return math.Float64frombits(e.top.Load()) }
func (e *Element) Left() float64 { return math.Float64frombits(e.left.Load()) }

// Move stores each coordinate on its own.
func (e *Element) Move(top, left float64) {
	e.top.Store(math.Float64bits(top))
	e.left.Store(math.Float64bits(left))
}

// SetPublic sets a property visible to every viewer.
func (e *Element) SetPublic(name string, p Property) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.public[name] = p.Clone()
}

// SetPrivate sets a property that is kept off the wire.
func (e *Element) SetPrivate(name string, p Property) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.private[name] = p.Clone()
}

// SetAction registers an action descriptor under name.
func (e *Element) SetAction(name string, a Action) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.actions[name] = a
}

// ElementState is the serialized view of an element. Private state and
// actions are left out.
type ElementState struct {
	IconPack    uint32              `json:"icon_pack"`
	IconID      uint32              `json:"icon_id"`
	Top         float64             `json:"top"`
	Left        float64             `json:"left"`
	PublicState map[string]Property `json:"public_state"`
}

func (e *Element) State() ElementState {
	e.mu.RLock()
	public := make(map[string]Property, len(e.public))
	for name, p := range e.public {
		public[name] = p.Clone()
	}
	e.mu.RUnlock()

	return ElementState{
		IconPack:    e.pack,
		IconID:      e.icon,
		Top:         e.Top(),
		Left:        e.Left(),
		PublicState: public,
	}
}
