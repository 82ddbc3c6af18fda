/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package tables

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeResolver struct {
	ids map[string]uint32
	err error
}

func (f fakeResolver) ResolveIconPackIDs(_ context.Context, names []string) ([]uint32, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]uint32, 0, len(names))
	for _, name := range names {
		id, ok := f.ids[name]
		if !ok {
			return nil, fmt.Errorf("icon pack %w: %q", ErrNotFound, name)
		}
		out = append(out, id)
	}
	return out, nil
}

var defaultResolver = fakeResolver{ids: map[string]uint32{"cards": 1, "icons": 2}}

func fixedCodes(codes ...string) CodeFunc {
	var mu sync.Mutex
	return func() (string, error) {
		mu.Lock()
		defer mu.Unlock()
		code := codes[0]
		if len(codes) > 1 {
			codes = codes[1:]
		}
		return code, nil
	}
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestRandomCode(t *testing.T) {
	pattern := regexp.MustCompile(`^[0-9A-F]{4}$`)
	for range 100 {
		code, err := RandomCode()
		require.NoError(t, err)
		assert.Regexp(t, pattern, code)
	}
}

func TestRegistry_CreateAndLookup(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)}
	r := NewRegistry(Options{
		Resolver: defaultResolver,
		Codes:    fixedCodes("A1F3"),
		Now:      clock.Now,
	})

	host := "viewer-1"
	code, err := r.Create(context.Background(), CreateOptions{
		Name:      "Game Night",
		Sharing:   PublicSharing(),
		Host:      &host,
		IconPacks: []string{"cards", "icons", "cards"},
	})
	require.NoError(t, err)
	assert.Equal(t, "A1F3", code)

	snap, err := r.Lookup(code)
	require.NoError(t, err)
	assert.Equal(t, "Game Night", snap.Name)
	assert.Empty(t, snap.Elements)
	assert.Equal(t, []uint32{1, 2}, snap.IconPacks)
	assert.Equal(t, clock.Now(), snap.Created)

	s, ok := r.Get(code)
	require.True(t, ok)
	got, ok := s.Host()
	assert.True(t, ok)
	assert.Equal(t, "viewer-1", got)
	assert.Equal(t, SharingPublic, s.Sharing().Kind)
}

func TestRegistry_CreateWithoutPacksSkipsResolver(t *testing.T) {
	r := NewRegistry(Options{
		Resolver: fakeResolver{err: errors.New("catalog down")},
		Codes:    fixedCodes("0001"),
	})

	code, err := r.Create(context.Background(), CreateOptions{Name: "empty"})
	require.NoError(t, err)

	snap, err := r.Lookup(code)
	require.NoError(t, err)
	assert.NotNil(t, snap.IconPacks)
	assert.Empty(t, snap.IconPacks)
}

func TestRegistry_CreateErrors(t *testing.T) {
	tests := []struct {
		name     string
		resolver IconPackResolver
		packs    []string
		wantIs   error
		wantNot  error
	}{
		{
			name:     "unknown pack",
			resolver: defaultResolver,
			packs:    []string{"cards", "dominoes"},
			wantIs:   ErrNotFound,
			wantNot:  ErrInternal,
		},
		{
			name:     "catalog failure",
			resolver: fakeResolver{err: errors.New("connection refused")},
			packs:    []string{"cards"},
			wantIs:   ErrInternal,
			wantNot:  ErrNotFound,
		},
		{
			name:     "no catalog",
			resolver: nil,
			packs:    []string{"cards"},
			wantIs:   ErrInternal,
			wantNot:  ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRegistry(Options{Resolver: tt.resolver, Codes: fixedCodes("BEEF")})

			_, err := r.Create(context.Background(), CreateOptions{Name: "x", IconPacks: tt.packs})
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantIs)
			assert.NotErrorIs(t, err, tt.wantNot)
			assert.Equal(t, 0, r.Len(), "failed creates register nothing")
		})
	}
}

func TestRegistry_CodeCollisionFailsWithoutRetry(t *testing.T) {
	calls := 0
	r := NewRegistry(Options{
		Codes: func() (string, error) {
			calls++
			return "AAAA", nil
		},
	})

	_, err := r.Create(context.Background(), CreateOptions{Name: "first"})
	require.NoError(t, err)

	_, err = r.Create(context.Background(), CreateOptions{Name: "second"})
	assert.ErrorIs(t, err, ErrCodeCollision)
	assert.ErrorIs(t, err, ErrInternal)
	assert.Equal(t, 2, calls, "a collision must not draw another code")

	snap, err := r.Lookup("AAAA")
	require.NoError(t, err)
	assert.Equal(t, "first", snap.Name, "the existing table is untouched")
}

func TestRegistry_CodeGenerationFailure(t *testing.T) {
	r := NewRegistry(Options{
		Codes: func() (string, error) { return "", errors.New("entropy exhausted") },
	})

	_, err := r.Create(context.Background(), CreateOptions{Name: "x"})
	assert.ErrorIs(t, err, ErrInternal)
}

func TestRegistry_LookupUnknown(t *testing.T) {
	r := NewRegistry(Options{})

	_, err := r.Lookup("ZZZZ")
	assert.ErrorIs(t, err, ErrTableNotFound)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRegistry_SweepRetainsByDefault(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	r := NewRegistry(Options{Codes: fixedCodes("0001", "0002"), Now: clock.Now})

	_, err := r.Create(context.Background(), CreateOptions{Name: "a"})
	require.NoError(t, err)
	_, err = r.Create(context.Background(), CreateOptions{Name: "b"})
	require.NoError(t, err)

	clock.Advance(365 * 24 * time.Hour)

	assert.Equal(t, 0, r.Sweep())
	assert.Equal(t, 2, r.Len())
}

func TestRegistry_SweepIdle(t *testing.T) {
	clock := &fakeClock{now: time.Now()}

	var removed []string
	r := NewRegistry(Options{
		Codes:    fixedCodes("0001", "0002"),
		Retain:   IdleFor(time.Hour),
		OnRemove: func(s *Session) { removed = append(removed, s.Code()) },
		Now:      clock.Now,
	})

	_, err := r.Create(context.Background(), CreateOptions{Name: "stale"})
	require.NoError(t, err)

	clock.Advance(50 * time.Minute)
	_, err = r.Create(context.Background(), CreateOptions{Name: "fresh"})
	require.NoError(t, err)

	clock.Advance(20 * time.Minute)

	assert.Equal(t, 1, r.Sweep())
	assert.Equal(t, []string{"0001"}, removed)

	_, err = r.Lookup("0001")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = r.Lookup("0002")
	assert.NoError(t, err)
}

func TestRegistry_RunStopsOnCancel(t *testing.T) {
	r := NewRegistry(Options{})
	ctx, cancel := context.WithCancel(context.Background())

	swept := make(chan int, 16)
	done := make(chan struct{})
	go func() {
		r.Run(ctx, time.Millisecond, func(removed, _ int) {
			select {
			case swept <- removed:
			default:
			}
		})
		close(done)
	}()

	select {
	case n := <-swept:
		assert.Equal(t, 0, n)
	case <-time.After(time.Second):
		t.Fatal("sweep never ran")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
