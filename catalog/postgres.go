/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Postgres struct {
	pool *pgxpool.Pool
}

// OpenPostgres migrates the database behind connStr and connects a pool
// to it. The caller is responsible for calling Close.
func OpenPostgres(ctx context.Context, connStr string) (*Postgres, error) {
	if err := migrateUp("postgres", migrateURL(connStr)); err != nil {
		return nil, err
	}

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("unable to reach database: %w", err)
	}

	p := &Postgres{pool: pool}
	if err := p.seed(ctx, DefaultPacks()); err != nil {
		pool.Close()
		return nil, err
	}

	return p, nil
}

// migrateURL rewrites a postgres:// connection string for the pgx/v5
// migrate driver.
func migrateURL(connStr string) string {
	for _, scheme := range []string{"postgresql://", "postgres://"} {
		if rest, ok := strings.CutPrefix(connStr, scheme); ok {
			return "pgx5://" + rest
		}
	}
	return connStr
}

func (p *Postgres) seed(ctx context.Context, packs []Pack) error {
	var count int
	if err := p.pool.QueryRow(ctx, "SELECT COUNT(*) FROM icon_packs").Scan(&count); err != nil {
		return fmt.Errorf("failed to count icon packs: %w", err)
	}
	if count > 0 {
		return nil
	}

	for _, pack := range packs {
		if err := p.Insert(ctx, pack); err != nil {
			return err
		}
	}
	return nil
}

// Insert adds a pack and its icons in one transaction.
func (p *Postgres) Insert(ctx context.Context, pack Pack) error {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	q := `
	INSERT INTO icon_packs (id, name, description, author, is_default)
	VALUES ($1, $2, $3, $4, $5);
	`
	if _, err := tx.Exec(ctx, q, int32(pack.Info.ID), pack.Info.Name, pack.Info.Desc, pack.Info.Author, pack.Info.Default); err != nil {
		return fmt.Errorf("failed to insert icon pack %q: %w", pack.Info.Name, err)
	}

	batch := &pgx.Batch{}
	for _, icon := range pack.Icons {
		batch.Queue(
			"INSERT INTO icons (pack_id, icon_id, ty, name, img) VALUES ($1, $2, $3, $4, $5)",
			int32(pack.Info.ID), int32(icon.ID), int16(icon.Type), icon.Name, icon.Src,
		)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to insert icons of %q: %w", pack.Info.Name, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func (p *Postgres) ResolveIconPackIDs(ctx context.Context, names []string) ([]uint32, error) {
	ids := make([]uint32, 0, len(names))
	for _, name := range names {
		var id int32
		err := p.pool.QueryRow(ctx, "SELECT id FROM icon_packs WHERE name = $1", name).Scan(&id)
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to resolve icon pack %q: %w", name, err)
		}
		ids = append(ids, uint32(id))
	}
	return ids, nil
}

func (p *Postgres) FetchIconPack(ctx context.Context, id uint32) (IconPack, error) {
	var pack IconPack
	err := p.pool.QueryRow(ctx, "SELECT name FROM icon_packs WHERE id = $1", int32(id)).Scan(&pack.Name)
	if errors.Is(err, pgx.ErrNoRows) {
		return IconPack{}, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	if err != nil {
		return IconPack{}, fmt.Errorf("failed to query icon pack %d: %w", id, err)
	}

	rows, err := p.pool.Query(ctx, "SELECT icon_id, ty, name, img FROM icons WHERE pack_id = $1 ORDER BY icon_id", int32(id))
	if err != nil {
		return IconPack{}, fmt.Errorf("failed to query icons of pack %d: %w", id, err)
	}

	pack.Icons, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (Icon, error) {
		var (
			iconID int32
			ty     int16
			icon   Icon
		)
		err := row.Scan(&iconID, &ty, &icon.Name, &icon.Src)
		icon.ID = uint32(iconID)
		icon.Type = IconType(ty)
		return icon, err
	})
	if err != nil {
		return IconPack{}, fmt.Errorf("failed to read icons of pack %d: %w", id, err)
	}
	if pack.Icons == nil {
		pack.Icons = []Icon{}
	}

	return pack, nil
}

func (p *Postgres) ListIconPacks(ctx context.Context) ([]PackInfo, error) {
	rows, err := p.pool.Query(ctx, "SELECT id, name, description, author, is_default FROM icon_packs ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to query icon packs: %w", err)
	}

	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (PackInfo, error) {
		var (
			id   int32
			info PackInfo
		)
		err := row.Scan(&id, &info.Name, &info.Desc, &info.Author, &info.Default)
		info.ID = uint32(id)
		return info, err
	})
}

func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}
