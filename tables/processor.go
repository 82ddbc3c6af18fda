/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package tables

import (
	"encoding/json"
	"fmt"
	"time"
)

// Publisher fans an accepted message out to every subscriber of a table.
// Publish must not block on slow subscribers.
type Publisher interface {
	Publish(code string, msg []byte)
}

// Processor validates live updates, applies them to their table and
// publishes the accepted ones. Rejected updates are reported to the caller
// but never broadcast.
type Processor struct {
	registry  *Registry
	publisher Publisher
	now       func() time.Time
}

func NewProcessor(registry *Registry, publisher Publisher) *Processor {
	return &Processor{
		registry:  registry,
		publisher: publisher,
		now:       registry.now,
	}
}

// Handle decodes and applies one raw live message.
func (p *Processor) Handle(code string, raw []byte) (Update, error) {
	u, err := DecodeUpdate(raw)
	if err != nil {
		return Update{}, err
	}
	return p.Apply(code, u)
}

// Apply runs u against the table with the given code. On success the
// returned update is the one that was broadcast, carrying any server
// assigned fields.
func (p *Processor) Apply(code string, u Update) (Update, error) {
	s, ok := p.registry.Get(code)
	if !ok {
		return Update{}, ErrTableNotFound
	}

	// Accepting and publishing under one lock keeps broadcast order equal
	// to acceptance order for this table.
	s.seq.Lock()
	defer s.seq.Unlock()

	switch u.Type {
	case UpdatePosition:
		if err := s.MoveElement(u.ID, u.Top, u.Left); err != nil {
			return Update{}, err
		}
	case UpdateIconpackLoad:
		if !s.LoadIconPack(u.Pack) {
			return Update{}, ErrIconPackLoaded
		}
	case UpdateElementCreate:
		id, err := s.CreateElement(u.IconPack, u.IconID, u.Top, u.Left)
		if err != nil {
			return Update{}, err
		}
		u.ID = id
	case UpdateElementDelete:
		if err := s.DeleteElement(u.ID); err != nil {
			return Update{}, err
		}
	case UpdateAction:
		return Update{}, ErrInertAction
	default:
		return Update{}, fmt.Errorf("%w %q", ErrUnknownUpdate, u.Type)
	}

	s.touch(p.now())

	msg, err := json.Marshal(u)
	if err != nil {
		return Update{}, fmt.Errorf("%w: encode update: %v", ErrInternal, err)
	}
	if p.publisher != nil {
		p.publisher.Publish(code, msg)
	}

	return u, nil
}
