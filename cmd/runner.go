package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/moviweb/internal/models"
	"github.com/desertthunder/moviweb/internal/repositories"
	"github.com/desertthunder/moviweb/internal/services"
	"github.com/desertthunder/moviweb/internal/shared"
	"github.com/desertthunder/moviweb/internal/tasks"
	"github.com/desertthunder/moviweb/internal/ui"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
//
// The store and lookup are opened on first use so that setup commands work without either.
type Runner struct {
	config     *shared.Config
	configPath string
	store      models.DataManager
	lookup     services.MetadataLookup
	logger     *log.Logger
	output     io.Writer
	palette    *ui.Palette
	closers    []io.Closer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Store      models.DataManager
	Lookup     services.MetadataLookup
	Logger     *log.Logger
	Output     io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		store:      opts.Store,
		lookup:     opts.Lookup,
		logger:     opts.Logger,
		output:     opts.Output,
		palette:    ui.Styles(),
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, usersCommand, moviesCommand, reviewsCommand, lookupCommand, serveCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// configure loads the config file when it exists, applies MOVIWEB_* overrides and sets the log level.
func (r *Runner) configure(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	path := cmd.String("config")
	if path != "" {
		r.configPath = path
	}

	if _, err := os.Stat(r.configPath); err == nil {
		config, err := shared.LoadConfig(r.configPath)
		if err != nil {
			return ctx, err
		}
		r.config = config
	} else if cmd.IsSet("config") {
		r.logger.Warn("config file not found, using defaults", "path", r.configPath)
	} else {
		r.logger.Debug("config file not found, using defaults", "path", r.configPath)
	}

	r.config.ApplyEnv()
	if err := r.config.Validate(); err != nil {
		return ctx, err
	}

	shared.SetLogLevel(r.logger, shared.ParseLogLevel(r.config.Log.Level))
	if cmd.Bool("verbose") {
		shared.SetLogLevel(r.logger, log.DebugLevel)
	}
	return ctx, nil
}

// openStore returns the configured backend, opening it on first use.
func (r *Runner) openStore(ctx context.Context) (models.DataManager, error) {
	if r.store != nil {
		return r.store, nil
	}

	switch r.config.Storage.Backend {
	case shared.BackendJSON:
		dm := repositories.NewJSONDataManager(r.config.Storage.JSONPath, r.logger)
		if err := dm.Init(ctx); err != nil {
			return nil, err
		}
		r.store = dm
	case shared.BackendSQLite:
		dm, err := repositories.OpenSQLiteDataManager(ctx, r.config.Database.Path, r.logger)
		if err != nil {
			return nil, err
		}
		shared.ConfigureDatabase(dm.DB(), r.config.Database.Path, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)
		r.store = dm
	default:
		return nil, fmt.Errorf("%w: unknown storage backend %q", shared.ErrInvalidConfig, r.config.Storage.Backend)
	}

	r.closers = append(r.closers, r.store)
	r.logger.Debug("opened store", "backend", r.store.Name())
	return r.store, nil
}

// openLookup returns the OMDb client, wiring the Redis cache when one is configured.
//
// An unreachable cache is logged and skipped; lookups still work without it.
func (r *Runner) openLookup(ctx context.Context) (services.MetadataLookup, error) {
	if r.lookup != nil {
		return r.lookup, nil
	}

	opts := services.OMDbOptionsFromConfig(r.config)
	opts.Logger = r.logger

	if r.config.Cache.RedisAddr != "" {
		cache, err := services.OpenRedisCache(ctx, r.config.Cache)
		if err != nil {
			r.logger.Warn("lookup cache unavailable, continuing without it", "addr", r.config.Cache.RedisAddr, "error", err)
		} else {
			opts.Cache = cache
			r.closers = append(r.closers, cache)
		}
	}

	svc, err := services.NewOMDbService(opts)
	if err != nil {
		return nil, fmt.Errorf("%w: set omdb.api_key or MOVIWEB_OMDB_API_KEY", err)
	}
	r.lookup = svc
	return r.lookup, nil
}

func (r *Runner) engine(ctx context.Context) (*tasks.Engine, error) {
	store, err := r.openStore(ctx)
	if err != nil {
		return nil, err
	}
	lookup, err := r.openLookup(ctx)
	if err != nil {
		return nil, err
	}
	return tasks.NewEngine(store, lookup, r.logger), nil
}

// Close releases the store and cache connections opened by the runner.
func (r *Runner) Close() error {
	var errs []error
	for i := len(r.closers) - 1; i >= 0; i-- {
		if err := r.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	r.closers = nil
	return errors.Join(errs...)
}

// emit writes v as JSON when --json is set, otherwise calls plain.
func (r *Runner) emit(cmd *cli.Command, v any, plain func() error) error {
	if cmd.Bool("json") {
		return r.writeJSON(v, true)
	}
	return plain()
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	output, err := shared.MarshalJSON(data, pretty)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(s string) error {
	return r.writePlain("%s\n", s)
}
