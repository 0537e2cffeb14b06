package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/desertthunder/moviweb/internal/formatter"
	"github.com/desertthunder/moviweb/internal/models"
	"github.com/desertthunder/moviweb/internal/shared"
	"github.com/desertthunder/moviweb/internal/tasks"
	"github.com/urfave/cli/v3"
)

// MoviesList prints a user's movies.
func (r *Runner) MoviesList(ctx context.Context, cmd *cli.Command) error {
	store, err := r.openStore(ctx)
	if err != nil {
		return err
	}

	movies, err := store.GetUserMovies(ctx, cmd.Int("user"))
	if err != nil {
		return err
	}

	return r.emit(cmd, movies, func() error {
		return r.writePlainln(r.palette.MoviesTable(movies))
	})
}

// MoviesShow prints one movie.
func (r *Runner) MoviesShow(ctx context.Context, cmd *cli.Command) error {
	store, err := r.openStore(ctx)
	if err != nil {
		return err
	}

	movie, err := store.GetMovie(ctx, cmd.Int("user"), cmd.Int("movie"))
	if err != nil {
		return err
	}

	return r.emit(cmd, movie, func() error {
		return r.writePlain("%s", r.palette.MovieDetail(movie))
	})
}

// MoviesAdd looks up the positional title and adds the match. Nothing is stored on a miss.
func (r *Runner) MoviesAdd(ctx context.Context, cmd *cli.Command) error {
	title, err := joinArgs(cmd, "title")
	if err != nil {
		return err
	}

	store, err := r.openStore(ctx)
	if err != nil {
		return err
	}

	userID := cmd.Int("user")
	if _, err := store.GetUser(ctx, userID); err != nil {
		return err
	}

	lookup, err := r.openLookup(ctx)
	if err != nil {
		return err
	}

	meta, err := lookup.Lookup(ctx, title)
	if err != nil {
		return fmt.Errorf("failed to look up %q: %w", title, err)
	}

	movie, err := store.AddMovie(ctx, userID, *meta)
	if err != nil {
		return fmt.Errorf("failed to add movie: %w", err)
	}

	return r.emit(cmd, movie, func() error {
		return r.writePlainln(r.palette.OK(fmt.Sprintf("Added %s (%s) as #%d", movie.Title, movie.Year, movie.ID)))
	})
}

// MoviesUpdate edits a movie. Flags that are not set keep the current values.
func (r *Runner) MoviesUpdate(ctx context.Context, cmd *cli.Command) error {
	store, err := r.openStore(ctx)
	if err != nil {
		return err
	}

	userID, movieID := cmd.Int("user"), cmd.Int("movie")
	current, err := store.GetMovie(ctx, userID, movieID)
	if err != nil {
		return err
	}

	update := models.MovieUpdate{
		Title:    current.Title,
		Director: current.Director,
		Year:     current.Year,
		Rating:   current.Rating,
	}
	if cmd.IsSet("title") {
		update.Title = cmd.String("title")
	}
	if cmd.IsSet("director") {
		update.Director = cmd.String("director")
	}
	if cmd.IsSet("year") {
		update.Year = cmd.String("year")
	}
	if cmd.IsSet("rating") {
		update.Rating = cmd.Float("rating")
	}

	movie, err := store.UpdateMovie(ctx, userID, movieID, update)
	if err != nil {
		return fmt.Errorf("failed to update movie: %w", err)
	}

	return r.emit(cmd, movie, func() error {
		return r.writePlainln(r.palette.OK(fmt.Sprintf("Updated #%d %s", movie.ID, movie.Title)))
	})
}

// MoviesDelete removes a movie.
func (r *Runner) MoviesDelete(ctx context.Context, cmd *cli.Command) error {
	store, err := r.openStore(ctx)
	if err != nil {
		return err
	}

	movie, err := store.DeleteMovie(ctx, cmd.Int("user"), cmd.Int("movie"))
	if err != nil {
		return fmt.Errorf("failed to delete movie: %w", err)
	}

	return r.emit(cmd, movie, func() error {
		return r.writePlainln(r.palette.OK(fmt.Sprintf("Deleted #%d %s", movie.ID, movie.Title)))
	})
}

// MoviesImport looks up many titles and adds the matches in order.
func (r *Runner) MoviesImport(ctx context.Context, cmd *cli.Command) error {
	titles := cmd.Args().Slice()
	if path := cmd.String("file"); path != "" {
		fromFile, err := readTitles(path)
		if err != nil {
			return err
		}
		titles = append(titles, fromFile...)
	}
	if len(titles) == 0 {
		return fmt.Errorf("%w: provide titles as arguments or with --file", shared.ErrMissingArgument)
	}

	engine, err := r.engine(ctx)
	if err != nil {
		return err
	}

	progress, wait := r.follow(cmd)
	result, err := engine.Import(ctx, progress, cmd.Int("user"), titles, tasks.ImportOpts{NumWorkers: cmd.Int("workers")})
	wait()
	if err != nil && result == nil {
		return err
	}

	if jsonErr := r.emit(cmd, result, func() error {
		r.writePlain("\n")
		r.writePlainln(r.palette.Title("Import Complete"))
		r.writePlain("Added: %d  Missed: %d  Failed: %d  (of %d)\n", result.Added, result.Missed, result.Failed, result.Total)
		for _, res := range result.Results {
			switch res.Status {
			case tasks.StatusMissed:
				r.writePlainln(r.palette.Warn("Not found: " + res.Title))
			case tasks.StatusFailed:
				r.writePlainln(r.palette.Err(fmt.Sprintf("%s: %v", res.Title, res.Err)))
			}
		}
		return nil
	}); jsonErr != nil {
		return jsonErr
	}
	return err
}

// MoviesExport writes one user's movies to a file, or every user's movies to a directory with a manifest.
func (r *Runner) MoviesExport(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	store, err := r.openStore(ctx)
	if err != nil {
		return err
	}

	if cmd.IsSet("user") {
		user, err := store.GetUser(ctx, cmd.Int("user"))
		if err != nil {
			return err
		}

		path, err := formatter.WriteExport(user, format, cmd.String("output"))
		if err != nil {
			return err
		}

		r.logger.Info("exported movies", "user", user.ID, "path", path)
		return r.emit(cmd, map[string]any{"user_id": user.ID, "movies": len(user.Movies), "file": path}, func() error {
			return r.writePlainln(r.palette.OK(fmt.Sprintf("Exported %d movies to %s", len(user.Movies), path)))
		})
	}

	engine := tasks.NewEngine(store, nil, r.logger)
	progress, wait := r.follow(cmd)
	result, err := engine.BulkExport(ctx, progress, nil, tasks.BulkExportOpts{
		Format:     format,
		OutputDir:  cmd.String("output"),
		NumWorkers: cmd.Int("workers"),
	})
	wait()
	if err != nil && result == nil {
		return err
	}

	if jsonErr := r.emit(cmd, result.Manifest, func() error {
		r.writePlain("\n")
		r.writePlainln(r.palette.Title("Export Complete"))
		r.writePlain("Exported: %d/%d users\n", result.Successful, result.Total)
		r.writePlain("Directory: %s\n", result.OutputDirectory)
		if result.ManifestPath != "" {
			r.writePlain("Manifest: %s\n", result.ManifestPath)
		}
		for _, entry := range result.Entries {
			if entry.Error != "" {
				r.writePlainln(r.palette.Err(fmt.Sprintf("user %d: %s", entry.UserID, entry.Error)))
			}
		}
		return nil
	}); jsonErr != nil {
		return jsonErr
	}
	return err
}

// follow prints progress updates until the returned wait func is called. JSON output gets no progress lines.
func (r *Runner) follow(cmd *cli.Command) (chan<- tasks.ProgressUpdate, func()) {
	progress := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})
	quiet := cmd.Bool("json")

	go func() {
		defer close(done)
		for update := range progress {
			if quiet {
				r.logger.Debug(update.Message, "phase", update.Phase.String())
				continue
			}
			r.writePlain("%s\n", update.Message)
		}
	}()

	return progress, func() {
		close(progress)
		<-done
	}
}

// readTitles reads one title per line, skipping blank lines and lines starting with #.
func readTitles(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open titles file: %w", err)
	}
	defer f.Close()

	var titles []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		titles = append(titles, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read titles file: %w", err)
	}
	return titles, nil
}
