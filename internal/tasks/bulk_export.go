package tasks

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/desertthunder/moviweb/internal/formatter"
	"github.com/desertthunder/moviweb/internal/models"
)

const (
	defaultExportWorkers = 4
	maxExportWorkers     = 10
	manifestFilename     = "export_manifest.json"
)

// BulkExportOpts contains configuration for bulk movie list exports.
type BulkExportOpts struct {
	Format     formatter.Format // Export format: json, csv, markdown, txt
	OutputDir  string           // Base output directory (default: moviweb_export_{epoch})
	NumWorkers int              // Concurrent writers (default: 4)
}

// BulkExportResult contains the manifest of a bulk export and where it was written.
type BulkExportResult struct {
	formatter.Manifest
	OutputDirectory string
	ManifestPath    string
}

type exportJob struct {
	step int
	user models.User
}

// BulkExport writes one file per user into opts.OutputDir and a manifest summarizing the run.
//
// userIDs selects the users to export; an empty list exports everyone. Unknown IDs are recorded as
// failed entries. The store is read once up front, so workers only render and write files.
func (e *Engine) BulkExport(
	ctx context.Context,
	prog chan<- ProgressUpdate,
	userIDs []int,
	opts BulkExportOpts,
) (*BulkExportResult, error) {
	if opts.Format == "" {
		opts.Format = formatter.JSON
	}
	if opts.OutputDir == "" {
		opts.OutputDir = fmt.Sprintf("moviweb_export_%d", time.Now().Unix())
	}
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = defaultExportWorkers
	}
	if opts.NumWorkers > maxExportWorkers {
		opts.NumWorkers = maxExportWorkers
	}

	users, err := e.store.GetAllUsers(ctx)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	selected, missing := selectUsers(users, userIDs)
	total := len(selected) + len(missing)

	result := &BulkExportResult{
		Manifest: formatter.Manifest{
			Format:     opts.Format,
			ExportedAt: time.Now().UTC(),
			Total:      total,
			Entries:    make([]formatter.ManifestEntry, 0, total),
		},
		OutputDirectory: opts.OutputDir,
	}

	for _, id := range missing {
		result.Failed++
		result.Entries = append(result.Entries, formatter.ManifestEntry{
			UserID: id,
			Error:  userNotFoundMessage(id),
		})
	}

	jobs := make(chan exportJob, len(selected))
	entries := make(chan formatter.ManifestEntry, len(selected))

	var wg sync.WaitGroup
	for range opts.NumWorkers {
		wg.Add(1)
		go e.exportWorker(ctx, &wg, jobs, entries, opts)
	}

	for i, user := range selected {
		e.sendProgress(prog, exportingUserUpdate(i+1, len(selected), &user))
		jobs <- exportJob{step: i + 1, user: user}
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(entries)
	}()

	completed := 0
	for entry := range entries {
		completed++
		result.Entries = append(result.Entries, entry)

		if entry.Error == "" {
			result.Successful++
			e.sendProgress(prog, exportCompletedUpdate(completed, len(selected), entry.UserName, entry.Movies))
		} else {
			result.Failed++
			e.sendProgress(prog, exportFailedUpdate(completed, len(selected), entry.UserName, fmt.Errorf("%s", entry.Error)))
		}
	}

	slices.SortFunc(result.Entries, func(a, b formatter.ManifestEntry) int { return a.UserID - b.UserID })

	manifestPath := filepath.Join(opts.OutputDir, manifestFilename)
	if err := formatter.WriteManifest(&result.Manifest, manifestPath); err != nil {
		return result, fmt.Errorf("export completed but failed to write manifest: %w", err)
	}
	result.ManifestPath = manifestPath

	if err := ctx.Err(); err != nil {
		return result, err
	}
	return result, nil
}

// exportWorker is a worker goroutine that writes user exports from the jobs channel.
func (e *Engine) exportWorker(
	ctx context.Context,
	wg *sync.WaitGroup,
	jobs <-chan exportJob,
	entries chan<- formatter.ManifestEntry,
	opts BulkExportOpts,
) {
	defer wg.Done()

	for job := range jobs {
		entry := formatter.ManifestEntry{
			UserID:   job.user.ID,
			UserName: job.user.Name,
			Movies:   len(job.user.Movies),
		}

		if err := ctx.Err(); err != nil {
			entry.Error = err.Error()
			entries <- entry
			continue
		}

		path := filepath.Join(opts.OutputDir, formatter.DefaultFilename(&job.user, opts.Format))
		written, err := formatter.WriteExport(&job.user, opts.Format, path)
		if err != nil {
			e.logger.Error("export failed", "user_id", job.user.ID, "error", err)
			entry.Error = err.Error()
		} else {
			entry.File = filepath.Base(written)
		}
		entries <- entry
	}
}

func selectUsers(users []models.User, ids []int) (selected []models.User, missing []int) {
	if len(ids) == 0 {
		return users, nil
	}

	byID := make(map[int]models.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}

	seen := map[int]bool{}
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true

		if u, ok := byID[id]; ok {
			selected = append(selected, u)
		} else {
			missing = append(missing, id)
		}
	}
	return selected, missing
}

func userNotFoundMessage(id int) string {
	return fmt.Sprintf("user %d not found", id)
}
