package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/moviweb/internal/shared"
	"github.com/urfave/cli/v3"
)

// SetupConfig writes the embedded config template to the --config path.
func (r *Runner) SetupConfig(ctx context.Context, cmd *cli.Command) error {
	if err := shared.CreateConfigFile(r.configPath); err != nil {
		return err
	}

	r.logger.Info("config file created", "path", r.configPath)
	r.writePlainln(r.palette.OK("Config written to " + r.configPath))
	r.writePlainln(r.palette.Muted("Set omdb.api_key (or MOVIWEB_OMDB_API_KEY) before adding movies."))
	return nil
}

// SetupDatabase initializes the configured backend. For sqlite this runs pending migrations,
// or rolls back the latest one with --rollback.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	if cmd.Bool("rollback") {
		return r.rollback(ctx)
	}

	r.logger.Info("initializing storage", "backend", r.config.Storage.Backend)

	store, err := r.openStore(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}

	location := r.config.Database.Path
	if store.Name() == shared.BackendJSON {
		location = r.config.Storage.JSONPath
	}
	r.writePlainln(r.palette.OK(fmt.Sprintf("Storage ready (%s): %s", store.Name(), location)))
	return nil
}

func (r *Runner) rollback(ctx context.Context) error {
	if r.config.Storage.Backend != shared.BackendSQLite {
		return fmt.Errorf("%w: --rollback requires the sqlite backend", shared.ErrInvalidArgument)
	}

	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := shared.RollbackMigration(ctx, db); err != nil {
		return fmt.Errorf("failed to roll back migration: %w", err)
	}

	r.logger.Info("rolled back latest migration", "path", r.config.Database.Path)
	r.writePlainln(r.palette.OK("Rolled back latest migration"))
	return nil
}
