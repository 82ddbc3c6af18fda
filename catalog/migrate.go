/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package catalog

import (
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/sqlite/*.sql migrations/postgres/*.sql
var migrations embed.FS

// migrateUp applies every pending migration under migrations/<dir> to the
// database at databaseURL. The migrator opens its own connection.
func migrateUp(dir, databaseURL string) error {
	src, err := iofs.New(migrations, "migrations/"+dir)
	if err != nil {
		return fmt.Errorf("load %s migrations: %w", dir, err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", src, databaseURL)
	if err != nil {
		return fmt.Errorf("prepare %s migrations: %w", dir, err)
	}
	defer m.Close()

	err = m.Up()
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply %s migrations: %w", dir, err)
	}

	return nil
}
