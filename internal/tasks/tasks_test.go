package tasks

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/moviweb/internal/formatter"
	"github.com/desertthunder/moviweb/internal/models"
	"github.com/desertthunder/moviweb/internal/repositories"
	"github.com/desertthunder/moviweb/internal/shared"
	tu "github.com/desertthunder/moviweb/internal/testing"
)

var catalog = []models.MovieMetadata{
	{Title: "Inception", Year: "2010", Director: "Christopher Nolan", Rating: 8.8},
	{Title: "Alien", Year: "1979", Director: "Ridley Scott", Rating: 8.5},
	{Title: "Heat", Year: "1995", Director: "Michael Mann", Rating: 8.3},
	{Title: "Arrival", Year: "2016", Director: "Denis Villeneuve", Rating: 7.9},
}

func setupStore(t *testing.T) *repositories.JSONDataManager {
	t.Helper()
	return repositories.NewJSONDataManager(filepath.Join(t.TempDir(), "moviweb.json"), shared.NewLogger(io.Discard))
}

func drain(ch chan ProgressUpdate) {
	go func() {
		for range ch {
		}
	}()
}

func TestEngine_Import(t *testing.T) {
	ctx := context.Background()

	t.Run("adds found titles in input order", func(t *testing.T) {
		store := setupStore(t)
		user, _ := store.AddUser(ctx, "Ada")
		engine := NewEngine(store, tu.NewMockLookup(catalog...), shared.NewLogger(io.Discard))

		titles := []string{"Heat", "zzzznotamovie", "Inception", "Alien", "Arrival"}
		result, err := engine.Import(ctx, nil, user.ID, titles, ImportOpts{NumWorkers: 4, RateLimit: 1000})
		if err != nil {
			t.Fatalf("Import() error = %v", err)
		}

		if result.Total != 5 || result.Added != 4 || result.Missed != 1 || result.Failed != 0 {
			t.Errorf("unexpected counts: %+v", result)
		}

		movies, _ := store.GetUserMovies(ctx, user.ID)
		got := make([]string, len(movies))
		for i, m := range movies {
			got[i] = m.Title
		}
		want := "Heat,Inception,Alien,Arrival"
		if strings.Join(got, ",") != want {
			t.Errorf("expected order %s, got %s", want, strings.Join(got, ","))
		}
		for i, m := range movies {
			if m.ID != i+1 {
				t.Errorf("expected movie %d to have ID %d, got %d", i, i+1, m.ID)
			}
		}

		if result.Results[1].Status != StatusMissed || !errors.Is(result.Results[1].Err, shared.ErrLookupMiss) {
			t.Errorf("expected second title to be missed, got %+v", result.Results[1])
		}
		if result.Results[0].Movie == nil || result.Results[0].Movie.Title != "Heat" {
			t.Errorf("expected first result to carry the added movie, got %+v", result.Results[0])
		}
	})

	t.Run("lookup failures are recorded", func(t *testing.T) {
		store := setupStore(t)
		user, _ := store.AddUser(ctx, "Ada")
		lookup := tu.NewMockLookup(catalog...).FailWith("Alien", shared.ErrAPIRequest)
		engine := NewEngine(store, lookup, shared.NewLogger(io.Discard))

		result, err := engine.Import(ctx, nil, user.ID, []string{"Alien", "Heat", "  "}, ImportOpts{RateLimit: 1000})
		if err != nil {
			t.Fatalf("Import() error = %v", err)
		}

		if result.Added != 1 || result.Failed != 2 {
			t.Errorf("expected 1 added and 2 failed, got %+v", result)
		}
		if result.Results[0].Status != StatusFailed || !errors.Is(result.Results[0].Err, shared.ErrAPIRequest) {
			t.Errorf("unexpected first result: %+v", result.Results[0])
		}
		if result.Results[2].Status != StatusFailed || !errors.Is(result.Results[2].Err, shared.ErrInvalidInput) {
			t.Errorf("expected blank title to fail as invalid, got %+v", result.Results[2])
		}
	})

	t.Run("unknown user fails before lookups", func(t *testing.T) {
		store := setupStore(t)
		lookup := tu.NewMockLookup(catalog...)
		engine := NewEngine(store, lookup, shared.NewLogger(io.Discard))

		_, err := engine.Import(ctx, nil, 42, []string{"Heat"}, ImportOpts{})
		if !errors.Is(err, shared.ErrUserNotFound) {
			t.Errorf("expected ErrUserNotFound, got %v", err)
		}
		if len(lookup.Calls()) != 0 {
			t.Errorf("expected no lookups, got %v", lookup.Calls())
		}
	})

	t.Run("no lookup configured", func(t *testing.T) {
		engine := NewEngine(setupStore(t), nil, shared.NewLogger(io.Discard))
		if _, err := engine.Import(ctx, nil, 1, []string{"Heat"}, ImportOpts{}); !errors.Is(err, shared.ErrServiceUnavailable) {
			t.Errorf("expected ErrServiceUnavailable, got %v", err)
		}
	})

	t.Run("empty title list", func(t *testing.T) {
		store := setupStore(t)
		user, _ := store.AddUser(ctx, "Ada")
		engine := NewEngine(store, tu.NewMockLookup(), shared.NewLogger(io.Discard))

		result, err := engine.Import(ctx, nil, user.ID, nil, ImportOpts{})
		if err != nil {
			t.Fatalf("Import() error = %v", err)
		}
		if result.Total != 0 || len(result.Results) != 0 {
			t.Errorf("expected empty result, got %+v", result)
		}
	})

	t.Run("cancelled context adds nothing", func(t *testing.T) {
		store := setupStore(t)
		user, _ := store.AddUser(ctx, "Ada")
		lookup := tu.NewMockLookup(catalog...)
		lookup.Blocked = make(chan struct{})
		engine := NewEngine(store, lookup, shared.NewLogger(io.Discard))

		cctx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
		defer cancel()

		result, err := engine.Import(cctx, nil, user.ID, []string{"Heat", "Alien"}, ImportOpts{RateLimit: 1000})
		if !errors.Is(err, context.DeadlineExceeded) {
			t.Fatalf("expected context.DeadlineExceeded, got %v", err)
		}
		if result.Added != 0 || result.Failed != 2 {
			t.Errorf("expected all titles to fail, got %+v", result)
		}

		movies, _ := store.GetUserMovies(ctx, user.ID)
		if len(movies) != 0 {
			t.Errorf("expected no movies, got %d", len(movies))
		}
	})

	t.Run("worker count is clamped", func(t *testing.T) {
		store := setupStore(t)
		user, _ := store.AddUser(ctx, "Ada")
		engine := NewEngine(store, tu.NewMockLookup(catalog...), shared.NewLogger(io.Discard))

		result, err := engine.Import(ctx, nil, user.ID, []string{"Heat"}, ImportOpts{NumWorkers: 100, RateLimit: 1000})
		if err != nil {
			t.Fatalf("Import() error = %v", err)
		}
		if result.Added != 1 {
			t.Errorf("expected 1 added, got %d", result.Added)
		}
	})
}

func TestProgressUpdate_NonBlocking(t *testing.T) {
	store := setupStore(t)
	user, _ := store.AddUser(context.Background(), "Ada")
	engine := NewEngine(store, tu.NewMockLookup(catalog...), shared.NewLogger(io.Discard))

	// unbuffered and never read
	progressCh := make(chan ProgressUpdate)

	done := make(chan error, 1)
	go func() {
		_, err := engine.Import(context.Background(), progressCh, user.ID, []string{"Heat", "Alien"}, ImportOpts{RateLimit: 1000})
		done <- err
	}()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Import() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Import() should not block on progress sends")
	}
}

func TestProgressUpdates(t *testing.T) {
	store := setupStore(t)
	user, _ := store.AddUser(context.Background(), "Ada")
	engine := NewEngine(store, tu.NewMockLookup(catalog...), shared.NewLogger(io.Discard))

	progressCh := make(chan ProgressUpdate, 100)
	if _, err := engine.Import(context.Background(), progressCh, user.ID, []string{"Heat", "nope"}, ImportOpts{RateLimit: 1000}); err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	close(progressCh)

	phases := map[Phase]int{}
	var messages []string
	for update := range progressCh {
		phases[update.Phase]++
		messages = append(messages, update.Message)
	}

	if phases[LookupTitles] != 3 {
		t.Errorf("expected 3 lookup updates (start + 2), got %d", phases[LookupTitles])
	}
	if phases[AddMovies] != 2 {
		t.Errorf("expected 2 add updates, got %d", phases[AddMovies])
	}
	if !strings.Contains(strings.Join(messages, "\n"), "✓ Added Heat (ID: 1)") {
		t.Errorf("expected an add message for Heat, got %v", messages)
	}
}

func TestEngine_BulkExport(t *testing.T) {
	ctx := context.Background()

	seed := func(t *testing.T) *repositories.JSONDataManager {
		store := setupStore(t)
		for i, name := range []string{"Ada", "Grace", "Edsger"} {
			user, _ := store.AddUser(ctx, name)
			for _, meta := range catalog[:i+1] {
				store.AddMovie(ctx, user.ID, meta)
			}
		}
		return store
	}

	tests := []struct {
		name        string
		format      formatter.Format
		ids         []int
		wantSuccess int
		wantFailed  int
		wantFiles   []string
	}{
		{"all users json", formatter.JSON, nil, 3, 0, []string{"user_1_movies.json", "user_2_movies.json", "user_3_movies.json"}},
		{"selected users csv", formatter.CSV, []int{3, 1}, 2, 0, []string{"user_1_movies.csv", "user_3_movies.csv"}},
		{"unknown user markdown", formatter.Markdown, []int{2, 99}, 1, 1, []string{"user_2_movies.md"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := seed(t)
			engine := NewEngine(store, nil, shared.NewLogger(io.Discard))
			outDir := filepath.Join(t.TempDir(), "out")

			progressCh := make(chan ProgressUpdate, 100)
			drain(progressCh)
			defer close(progressCh)

			result, err := engine.BulkExport(ctx, progressCh, tt.ids, BulkExportOpts{Format: tt.format, OutputDir: outDir, NumWorkers: 2})
			if err != nil {
				t.Fatalf("BulkExport() error = %v", err)
			}

			if result.Successful != tt.wantSuccess || result.Failed != tt.wantFailed {
				t.Errorf("expected %d/%d, got %d/%d", tt.wantSuccess, tt.wantFailed, result.Successful, result.Failed)
			}
			for _, f := range tt.wantFiles {
				tu.AssertFileExists(t, filepath.Join(outDir, f))
			}

			tu.AssertFileExists(t, result.ManifestPath)
			var manifest formatter.Manifest
			if err := shared.UnmarshalJSON([]byte(tu.MustReadFile(t, result.ManifestPath)), &manifest); err != nil {
				t.Fatalf("invalid manifest: %v", err)
			}
			if len(manifest.Entries) != result.Total {
				t.Errorf("expected %d manifest entries, got %d", result.Total, len(manifest.Entries))
			}
			for i := 1; i < len(manifest.Entries); i++ {
				if manifest.Entries[i-1].UserID > manifest.Entries[i].UserID {
					t.Errorf("expected entries sorted by user ID, got %+v", manifest.Entries)
				}
			}
		})
	}

	t.Run("default output directory", func(t *testing.T) {
		store := seed(t)
		engine := NewEngine(store, nil, shared.NewLogger(io.Discard))

		wd, _ := os.Getwd()
		dir := t.TempDir()
		if err := os.Chdir(dir); err != nil {
			t.Fatalf("chdir failed: %v", err)
		}
		defer os.Chdir(wd)

		result, err := engine.BulkExport(ctx, nil, nil, BulkExportOpts{})
		if err != nil {
			t.Fatalf("BulkExport() error = %v", err)
		}
		if !strings.HasPrefix(result.OutputDirectory, "moviweb_export_") {
			t.Errorf("unexpected output directory %s", result.OutputDirectory)
		}
		if result.Format != formatter.JSON {
			t.Errorf("expected JSON default, got %s", result.Format)
		}
	})

	t.Run("invalid output directory", func(t *testing.T) {
		store := seed(t)
		engine := NewEngine(store, nil, shared.NewLogger(io.Discard))

		blocker := filepath.Join(t.TempDir(), "file")
		os.WriteFile(blocker, []byte("x"), 0644)

		_, err := engine.BulkExport(ctx, nil, nil, BulkExportOpts{OutputDir: filepath.Join(blocker, "out")})
		if err == nil {
			t.Error("expected error for output directory beneath a file")
		}
	})
}

func TestPhase_String(t *testing.T) {
	for phase, want := range map[Phase]string{
		LookupTitles: "lookup_titles",
		AddMovies:    "add_movies",
		ExportUsers:  "export_users",
		Phase(99):    "",
	} {
		if got := phase.String(); got != want {
			t.Errorf("%d: expected %q, got %q", phase, want, got)
		}
	}
	if fmt.Sprint(StatusMissed) != "missed" {
		t.Errorf("unexpected status string %s", StatusMissed)
	}
}
