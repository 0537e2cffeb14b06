package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/desertthunder/moviweb/internal/formatter"
	"github.com/desertthunder/moviweb/internal/server"
	"github.com/desertthunder/moviweb/internal/services"
	"github.com/desertthunder/moviweb/internal/shared"
	"github.com/urfave/cli/v3"
)

// Lookup resolves a title and prints the metadata without storing it.
func (r *Runner) Lookup(ctx context.Context, cmd *cli.Command) error {
	title, err := joinArgs(cmd, "title")
	if err != nil {
		return err
	}

	lookup, err := r.openLookup(ctx)
	if err != nil {
		return err
	}

	meta, err := lookup.Lookup(ctx, title)
	if err != nil {
		if errors.Is(err, shared.ErrLookupMiss) {
			r.writePlainln(r.palette.Warn(fmt.Sprintf("No match for %q", title)))
		}
		return err
	}

	return r.emit(cmd, meta, func() error {
		r.writePlainln(r.palette.Title(meta.Title))
		r.writePlain("Director: %s\n", meta.Director)
		r.writePlain("Year:     %s\n", meta.Year)
		r.writePlain("Rating:   %s\n", formatter.FormatRating(meta.Rating))
		if meta.Poster != "" {
			r.writePlain("Poster:   %s\n", meta.Poster)
		}
		return nil
	})
}

// Serve runs the JSON API until SIGINT or SIGTERM.
//
// A missing OMDb key is not fatal here: the API still serves reads, and adding by title answers 502.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := r.openStore(ctx)
	if err != nil {
		return err
	}

	var lookup services.MetadataLookup
	if l, err := r.openLookup(ctx); err != nil {
		r.logger.Warn("metadata lookup disabled", "error", err)
	} else {
		lookup = l
	}

	addr := cmd.String("addr")
	if addr == "" {
		addr = r.config.Server.Addr()
	}

	api := server.NewAPI(store, lookup, r.logger)
	srv := server.NewServer(addr, server.NewRouter(api, r.logger), r.logger)

	r.logger.Info("starting API", "addr", addr, "backend", store.Name(), "lookup", lookup != nil)
	return srv.Run(ctx)
}
