/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package tables

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"time"
)

// IconPackResolver maps icon pack names to catalog ids. Unknown names are
// reported with an error wrapping ErrNotFound; any other error is treated
// as a catalog failure.
type IconPackResolver interface {
	ResolveIconPackIDs(ctx context.Context, names []string) ([]uint32, error)
}

// RetainFunc decides during a sweep whether a session is kept.
type RetainFunc func(s *Session, now time.Time) bool

// RetainAll keeps every session.
func RetainAll(*Session, time.Time) bool { return true }

// IdleFor keeps sessions that saw activity within d.
func IdleFor(d time.Duration) RetainFunc {
	return func(s *Session, now time.Time) bool {
		return now.Sub(s.LastActive()) < d
	}
}

// CodeFunc produces a candidate table code.
type CodeFunc func() (string, error)

// RandomCode returns a random 16-bit code as four hex digits.
func RandomCode() (string, error) {
	var b [2]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", err
	}
	return fmt.Sprintf("%04X", binary.BigEndian.Uint16(b[:])), nil
}

type Options struct {
	Resolver IconPackResolver
	Codes    CodeFunc
	Retain   RetainFunc
	// OnRemove is called for every session dropped by a sweep.
	OnRemove func(*Session)
	Now      func() time.Time
}

// Registry holds every live table keyed by code.
type Registry struct {
	tables   *Map[string, *Session]
	resolver IconPackResolver
	codes    CodeFunc
	retain   RetainFunc
	onRemove func(*Session)
	now      func() time.Time
}

func NewRegistry(opts Options) *Registry {
	r := &Registry{
		tables:   NewMap[string, *Session](),
		resolver: opts.Resolver,
		codes:    opts.Codes,
		retain:   opts.Retain,
		onRemove: opts.OnRemove,
		now:      opts.Now,
	}
	if r.codes == nil {
		r.codes = RandomCode
	}
	if r.retain == nil {
		r.retain = RetainAll
	}
	if r.now == nil {
		r.now = time.Now
	}
	return r
}

type CreateOptions struct {
	Name      string
	Sharing   Sharing
	Host      *string
	IconPacks []string
}

// Create resolves the requested icon packs, then registers a new session
// under a fresh random code. A code that is already taken fails the call
// with ErrCodeCollision; it is not retried.
func (r *Registry) Create(ctx context.Context, opts CreateOptions) (string, error) {
	var packs []uint32
	if len(opts.IconPacks) > 0 {
		if r.resolver == nil {
			return "", fmt.Errorf("%w: no icon pack catalog", ErrInternal)
		}

		ids, err := r.resolver.ResolveIconPackIDs(ctx, opts.IconPacks)
		switch {
		case errors.Is(err, ErrNotFound):
			return "", err
		case err != nil:
			return "", fmt.Errorf("%w: resolve icon packs: %v", ErrInternal, err)
		}
		packs = ids
	}

	code, err := r.codes()
	if err != nil {
		return "", fmt.Errorf("%w: generate code: %v", ErrInternal, err)
	}

	s := newSession(code, opts.Name, opts.Sharing, opts.Host, packs, r.now())
	if !r.tables.Insert(code, s) {
		return "", ErrCodeCollision
	}

	return code, nil
}

// Get returns the live session for code. Callers should hold it only for the
// duration of one operation.
func (r *Registry) Get(code string) (*Session, bool) {
	return r.tables.Get(code)
}

// Lookup returns a snapshot of the table, safe to use while it keeps changing.
func (r *Registry) Lookup(code string) (Snapshot, error) {
	s, ok := r.tables.Get(code)
	if !ok {
		return Snapshot{}, ErrTableNotFound
	}
	return s.Snapshot(), nil
}

func (r *Registry) Len() int {
	return r.tables.Len()
}

// Sweep evaluates the retention predicate for every session and removes the
// ones it rejects. It returns the number removed.
func (r *Registry) Sweep() int {
	now := r.now()
	removed := r.tables.Retain(func(_ string, s *Session) bool {
		return r.retain(s, now)
	})

	if r.onRemove != nil {
		for _, s := range removed {
			r.onRemove(s)
		}
	}

	return len(removed)
}

// Run sweeps every interval until ctx is cancelled.
func (r *Registry) Run(ctx context.Context, interval time.Duration, swept func(removed, remaining int)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n := r.Sweep()
			if swept != nil {
				swept(n, r.Len())
			}
		}
	}
}
