/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

// Package broadcast fans table messages out to every connected viewer.
package broadcast

import (
	"errors"
	"sync"

	"github.com/Seednode/tabletop/tables"
	"github.com/google/uuid"
)

var ErrClosed = errors.New("hub closed")

// DefaultBuffer is the number of messages a subscriber may fall behind
// before it is dropped.
const DefaultBuffer = 64

// Subscriber receives every message published to its hub, in publish order.
// The channel is closed when the subscriber is dropped or the hub closes.
type Subscriber struct {
	ID   string
	send chan []byte
	hub  *Hub
}

func (s *Subscriber) Messages() <-chan []byte {
	return s.send
}

// Close detaches the subscriber from its hub.
func (s *Subscriber) Close() {
	s.hub.unsubscribe(s)
}

// Hub is the broadcast channel of one table.
type Hub struct {
	code   string
	buffer int

	mu     sync.Mutex
	subs   map[*Subscriber]struct{}
	closed bool
}

func newHub(code string, buffer int) *Hub {
	return &Hub{
		code:   code,
		buffer: buffer,
		subs:   make(map[*Subscriber]struct{}),
	}
}

func (h *Hub) Code() string {
	return h.code
}

func (h *Hub) Subscribe() (*Subscriber, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil, ErrClosed
	}

	s := &Subscriber{
		ID:   uuid.NewString(),
		send: make(chan []byte, h.buffer),
		hub:  h,
	}
	h.subs[s] = struct{}{}
	return s, nil
}

func (h *Hub) unsubscribe(s *Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.subs[s]; ok {
		delete(h.subs, s)
		close(s.send)
	}
}

// Publish queues msg for every subscriber. A subscriber whose buffer is full
// is dropped instead of stalling the others.
func (h *Hub) Publish(msg []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for s := range h.subs {
		select {
		case s.send <- msg:
		default:
			delete(h.subs, s)
			close(s.send)
		}
	}
}

func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// close drops every subscriber and refuses new ones.
func (h *Hub) close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.closed = true
	for s := range h.subs {
		delete(h.subs, s)
		close(s.send)
	}
}

// Hubs holds one hub per table code. Hubs are created on first subscribe
// and live until Close is called for their code.
type Hubs struct {
	hubs   *tables.Map[string, *Hub]
	buffer int
}

func NewHubs(buffer int) *Hubs {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	return &Hubs{
		hubs:   tables.NewMap[string, *Hub](),
		buffer: buffer,
	}
}

// Subscribe joins the hub for code, creating it if needed.
func (hs *Hubs) Subscribe(code string) (*Subscriber, error) {
	h, ok := hs.hubs.Get(code)
	if !ok {
		fresh := newHub(code, hs.buffer)
		if hs.hubs.Insert(code, fresh) {
			h = fresh
		} else if h, ok = hs.hubs.Get(code); !ok {
			return nil, ErrClosed
		}
	}
	return h.Subscribe()
}

// Publish implements tables.Publisher. Messages for a code nobody has
// subscribed to are discarded.
func (hs *Hubs) Publish(code string, msg []byte) {
	if h, ok := hs.hubs.Get(code); ok {
		h.Publish(msg)
	}
}

// Subscribers returns the number of viewers connected to code.
func (hs *Hubs) Subscribers(code string) int {
	if h, ok := hs.hubs.Get(code); ok {
		return h.Len()
	}
	return 0
}

// Close disconnects every subscriber of code and forgets its hub.
func (hs *Hubs) Close(code string) {
	if h, ok := hs.hubs.Remove(code); ok {
		h.close()
	}
}
