package tasks

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/moviweb/internal/models"
	"github.com/desertthunder/moviweb/internal/services"
	"github.com/desertthunder/moviweb/internal/shared"
	"golang.org/x/time/rate"
)

const (
	defaultImportWorkers = 3
	maxImportWorkers     = 8
	defaultRateLimit     = 5.0
)

// ImportStatus is the outcome for one title in a bulk import.
type ImportStatus int

const (
	StatusAdded ImportStatus = iota
	StatusMissed
	StatusFailed
)

func (s ImportStatus) String() string {
	switch s {
	case StatusAdded:
		return "added"
	case StatusMissed:
		return "missed"
	case StatusFailed:
		return "failed"
	default:
		return ""
	}
}

// TitleResult records what happened to one input title.
type TitleResult struct {
	Index    int
	Title    string
	Status   ImportStatus
	Metadata *models.MovieMetadata
	Movie    *models.Movie
	Err      error
}

// ImportResult contains the outcome of [Engine.Import].
type ImportResult struct {
	UserID  int
	Total   int
	Added   int
	Missed  int
	Failed  int
	Results []TitleResult // Same order as the input titles
}

// ImportOpts contains configuration for bulk imports.
type ImportOpts struct {
	NumWorkers int     // Concurrent lookups (default: 3, max: 8)
	RateLimit  float64 // Lookups per second shared by all workers (default: 5)
}

// Engine runs bulk operations over a [models.DataManager].
// Contains dependencies on the store and the metadata lookup.
type Engine struct {
	store  models.DataManager
	lookup services.MetadataLookup
	logger *log.Logger
}

// NewEngine creates a new Engine. lookup may be nil when only exports are needed.
func NewEngine(store models.DataManager, lookup services.MetadataLookup, logger *log.Logger) *Engine {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Engine{store: store, lookup: lookup, logger: shared.WithLogger(logger, "task", "engine")}
}

// sendProgress sends a progress update through the channel without blocking.
func (e *Engine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// Import looks up each title and adds the matches to userID's list.
//
// Lookups run on a bounded worker pool sharing one rate limiter. Adds happen afterwards on the
// calling goroutine in input order, so movie IDs follow the order of titles. Misses and failures
// are recorded per title and never abort the import. An unknown user fails before any lookup.
func (e *Engine) Import(
	ctx context.Context,
	progress chan<- ProgressUpdate,
	userID int,
	titles []string,
	opts ImportOpts,
) (*ImportResult, error) {
	if e.lookup == nil {
		return nil, fmt.Errorf("%w: metadata lookup not configured", shared.ErrServiceUnavailable)
	}
	if _, err := e.store.GetUser(ctx, userID); err != nil {
		return nil, err
	}

	if opts.NumWorkers <= 0 {
		opts.NumWorkers = defaultImportWorkers
	}
	if opts.NumWorkers > maxImportWorkers {
		opts.NumWorkers = maxImportWorkers
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = defaultRateLimit
	}

	result := &ImportResult{
		UserID:  userID,
		Total:   len(titles),
		Results: make([]TitleResult, len(titles)),
	}
	for i, title := range titles {
		result.Results[i] = TitleResult{Index: i, Title: title}
	}

	e.lookupAll(ctx, progress, result.Results, opts)

	for i := range result.Results {
		res := &result.Results[i]

		if res.Err == nil {
			if err := ctx.Err(); err != nil {
				res.Err = err
			} else {
				res.Movie, res.Err = e.store.AddMovie(ctx, userID, *res.Metadata)
			}
		}

		switch {
		case res.Err == nil:
			res.Status = StatusAdded
			result.Added++
			e.sendProgress(progress, addedMovieUpdate(i+1, result.Total, res.Movie))
		case errors.Is(res.Err, shared.ErrLookupMiss):
			res.Status = StatusMissed
			result.Missed++
			e.sendProgress(progress, addFailedUpdate(i+1, result.Total, res.Title, res.Err))
		default:
			res.Status = StatusFailed
			result.Failed++
			e.sendProgress(progress, addFailedUpdate(i+1, result.Total, res.Title, res.Err))
		}
	}

	e.logger.Info("import finished", "user_id", userID, "total", result.Total,
		"added", result.Added, "missed", result.Missed, "failed", result.Failed)

	if err := ctx.Err(); err != nil {
		return result, err
	}
	return result, nil
}

// lookupAll resolves every title into results[i].Metadata or results[i].Err.
func (e *Engine) lookupAll(ctx context.Context, progress chan<- ProgressUpdate, results []TitleResult, opts ImportOpts) {
	total := len(results)
	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)
	jobs := make(chan int, total)

	for i := range results {
		jobs <- i
	}
	close(jobs)

	e.sendProgress(progress, lookupStartedUpdate(total))

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		completed int
	)
	for range min(opts.NumWorkers, max(total, 1)) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				res := &results[i]
				if err := limiter.Wait(ctx); err != nil {
					res.Err = err
				} else {
					res.Metadata, res.Err = e.lookup.Lookup(ctx, res.Title)
				}

				mu.Lock()
				completed++
				step := completed
				mu.Unlock()

				e.sendProgress(progress, lookupResultUpdate(step, total, *res))
			}
		}()
	}
	wg.Wait()
}
