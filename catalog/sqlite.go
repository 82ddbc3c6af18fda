/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens or creates the database file at path, brings its schema
// up to date and seeds the default packs into an empty catalog.
func OpenSQLite(ctx context.Context, path string) (*SQLite, error) {
	if path == "" {
		return nil, errors.New("sqlite catalog requires a path")
	}

	// The migrate driver closes its connection when done, so it gets its own.
	if err := migrateUp("sqlite", "sqlite3://"+path+"?_foreign_keys=on"); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite3", "file:"+path+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to reach database: %w", err)
	}

	s := &SQLite{db: db}
	if err := s.seed(ctx, DefaultPacks()); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

func (s *SQLite) seed(ctx context.Context, packs []Pack) error {
	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM icon_packs").Scan(&count); err != nil {
		return fmt.Errorf("failed to count icon packs: %w", err)
	}
	if count > 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, p := range packs {
		if err := insertPackSQLite(ctx, tx, p); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// Insert adds a pack and its icons.
func (s *SQLite) Insert(ctx context.Context, p Pack) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := insertPackSQLite(ctx, tx, p); err != nil {
		return err
	}

	return tx.Commit()
}

func insertPackSQLite(ctx context.Context, tx *sql.Tx, p Pack) error {
	q := `
	INSERT INTO icon_packs (id, name, description, author, is_default)
	VALUES (?, ?, ?, ?, ?);
	`
	if _, err := tx.ExecContext(ctx, q, p.Info.ID, p.Info.Name, p.Info.Desc, p.Info.Author, p.Info.Default); err != nil {
		return fmt.Errorf("failed to insert icon pack %q: %w", p.Info.Name, err)
	}

	q = `
	INSERT INTO icons (pack_id, icon_id, ty, name, img)
	VALUES (?, ?, ?, ?, ?);
	`
	for _, icon := range p.Icons {
		if _, err := tx.ExecContext(ctx, q, p.Info.ID, icon.ID, int(icon.Type), icon.Name, icon.Src); err != nil {
			return fmt.Errorf("failed to insert icon %d of %q: %w", icon.ID, p.Info.Name, err)
		}
	}

	return nil
}

func (s *SQLite) ResolveIconPackIDs(ctx context.Context, names []string) ([]uint32, error) {
	ids := make([]uint32, 0, len(names))
	for _, name := range names {
		var id int64
		err := s.db.QueryRowContext(ctx, "SELECT id FROM icon_packs WHERE name = ?", name).Scan(&id)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to resolve icon pack %q: %w", name, err)
		}
		ids = append(ids, uint32(id))
	}
	return ids, nil
}

func (s *SQLite) FetchIconPack(ctx context.Context, id uint32) (IconPack, error) {
	var pack IconPack
	err := s.db.QueryRowContext(ctx, "SELECT name FROM icon_packs WHERE id = ?", id).Scan(&pack.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return IconPack{}, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	if err != nil {
		return IconPack{}, fmt.Errorf("failed to query icon pack %d: %w", id, err)
	}

	rows, err := s.db.QueryContext(ctx, "SELECT icon_id, ty, name, img FROM icons WHERE pack_id = ? ORDER BY icon_id", id)
	if err != nil {
		return IconPack{}, fmt.Errorf("failed to query icons of pack %d: %w", id, err)
	}
	defer rows.Close()

	pack.Icons = []Icon{}
	for rows.Next() {
		var (
			iconID int64
			ty     int
			icon   Icon
		)
		if err := rows.Scan(&iconID, &ty, &icon.Name, &icon.Src); err != nil {
			return IconPack{}, fmt.Errorf("failed to scan icon: %w", err)
		}
		icon.ID = uint32(iconID)
		icon.Type = IconType(ty)
		pack.Icons = append(pack.Icons, icon)
	}

	if err := rows.Err(); err != nil {
		return IconPack{}, fmt.Errorf("failed to read icons of pack %d: %w", id, err)
	}

	return pack, nil
}

func (s *SQLite) ListIconPacks(ctx context.Context) ([]PackInfo, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, name, description, author, is_default FROM icon_packs ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to query icon packs: %w", err)
	}
	defer rows.Close()

	infos := []PackInfo{}
	for rows.Next() {
		var (
			id   int64
			info PackInfo
		)
		if err := rows.Scan(&id, &info.Name, &info.Desc, &info.Author, &info.Default); err != nil {
			return nil, fmt.Errorf("failed to scan icon pack: %w", err)
		}
		info.ID = uint32(id)
		infos = append(infos, info)
	}

	return infos, rows.Err()
}

func (s *SQLite) Close() error {
	return s.db.Close()
}
