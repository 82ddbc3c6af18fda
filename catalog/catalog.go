/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

// Package catalog serves icon packs from a relational store. Tables refer to
// packs and icons by id; the catalog turns pack names into ids at table
// creation and hands icon descriptors to clients.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/Seednode/tabletop/tables"
)

// ErrNotFound wraps tables.ErrNotFound so the registry can tell an unknown
// name from a failing store.
var ErrNotFound = fmt.Errorf("icon pack %w", tables.ErrNotFound)

type IconType int

const (
	IconImage IconType = 1
	IconFont  IconType = 2
	IconSvg   IconType = 3
)

func (t IconType) String() string {
	switch t {
	case IconImage:
		return "image"
	case IconFont:
		return "icon"
	case IconSvg:
		return "svg"
	default:
		return "unknown"
	}
}

// Icon is one selectable icon. Src holds an image URL for image and svg
// icons and a CSS class list for font icons.
type Icon struct {
	Type IconType
	ID   uint32
	Name string
	Src  string
}

func (i Icon) MarshalJSON() ([]byte, error) {
	out := struct {
		T     string `json:"t"`
		ID    uint32 `json:"id"`
		Name  string `json:"name"`
		Src   string `json:"src,omitempty"`
		Class string `json:"class,omitempty"`
	}{T: i.Type.String(), ID: i.ID, Name: i.Name}

	switch i.Type {
	case IconImage, IconSvg:
		out.Src = i.Src
	case IconFont:
		out.Class = i.Src
	default:
		return nil, fmt.Errorf("unknown icon type %d", i.Type)
	}
	return json.Marshal(out)
}

type IconPack struct {
	Name  string `json:"name"`
	Icons []Icon `json:"icons"`
}

// PackInfo describes a pack for listings.
type PackInfo struct {
	ID      uint32 `json:"id"`
	Name    string `json:"name"`
	Desc    string `json:"desc"`
	Author  string `json:"author"`
	Default bool   `json:"default"`
}

// Catalog is the read-only icon pack store.
type Catalog interface {
	tables.IconPackResolver
	FetchIconPack(ctx context.Context, id uint32) (IconPack, error)
	ListIconPacks(ctx context.Context) ([]PackInfo, error)
	Close() error
}

// Open picks an implementation from the DSN scheme: memory://,
// sqlite://<path> or postgres://….
func Open(ctx context.Context, dsn string) (Catalog, error) {
	u, err := url.Parse(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse catalog dsn: %w", err)
	}

	switch u.Scheme {
	case "memory":
		return NewMemory(DefaultPacks()...), nil
	case "sqlite", "sqlite3":
		s, err := OpenSQLite(ctx, u.Host+u.Path)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "postgres", "postgresql":
		p, err := OpenPostgres(ctx, dsn)
		if err != nil {
			return nil, err
		}
		return p, nil
	default:
		return nil, fmt.Errorf("unknown catalog type %q", u.Scheme)
	}
}

// ValidScheme reports whether Open understands the scheme of dsn.
func ValidScheme(dsn string) bool {
	u, err := url.Parse(dsn)
	if err != nil {
		return false
	}
	switch u.Scheme {
	case "memory", "sqlite", "sqlite3", "postgres", "postgresql":
		return true
	default:
		return false
	}
}
