package repositories

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"testing"

	"github.com/desertthunder/moviweb/internal/models"
	"github.com/desertthunder/moviweb/internal/shared"
)

func TestGenerateIDs(t *testing.T) {
	userTests := []struct {
		name  string
		users []models.User
		want  int
	}{
		{"empty", nil, 1},
		{"single", []models.User{{ID: 1}}, 2},
		{"gap", []models.User{{ID: 1}, {ID: 5}, {ID: 3}}, 6},
	}

	for _, tt := range userTests {
		t.Run("user "+tt.name, func(t *testing.T) {
			if got := GenerateUserID(tt.users); got != tt.want {
				t.Errorf("expected %d, got %d", tt.want, got)
			}
		})
	}

	movieTests := []struct {
		name   string
		movies []models.Movie
		want   int
	}{
		{"empty", []models.Movie{}, 1},
		{"gap", []models.Movie{{ID: 2}, {ID: 7}}, 8},
	}

	for _, tt := range movieTests {
		t.Run("movie "+tt.name, func(t *testing.T) {
			if got := GenerateMovieID(tt.movies); got != tt.want {
				t.Errorf("expected %d, got %d", tt.want, got)
			}
		})
	}
}

func TestJSONDataManager(t *testing.T) {
	ctx := context.Background()

	t.Run("missing file reads as empty", func(t *testing.T) {
		dm := setupJSONStore(t)

		users, err := dm.GetAllUsers(ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if users == nil || len(users) != 0 {
			t.Errorf("expected empty non-nil slice, got %#v", users)
		}
	})

	t.Run("Init creates an empty document", func(t *testing.T) {
		dm := setupJSONStore(t)
		if err := dm.Init(ctx); err != nil {
			t.Fatalf("failed to init: %v", err)
		}

		data, err := os.ReadFile(dm.Filename())
		if err != nil {
			t.Fatalf("failed to read store: %v", err)
		}
		if strings.TrimSpace(string(data)) != "[]" {
			t.Errorf("expected empty array, got %q", data)
		}
	})

	t.Run("reads documents written by hand", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "movies.json")
		doc := `[{"id": 3, "name": "Ada", "movies": [
			{"movie_id": 4, "title": "Alien", "director": "Ridley Scott", "year": "1979", "rating": 8.5, "poster": ""}
		]}, {"id": 4, "name": "Grace"}]`
		if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
			t.Fatalf("failed to write fixture: %v", err)
		}

		dm := NewJSONDataManager(path, shared.NewLogger(io.Discard))
		movie, err := dm.GetMovie(ctx, 3, 4)
		if err != nil {
			t.Fatalf("failed to get movie: %v", err)
		}
		if movie.UserID != 3 || movie.Title != "Alien" {
			t.Errorf("unexpected movie: %+v", movie)
		}

		movies, err := dm.GetUserMovies(ctx, 4)
		if err != nil {
			t.Fatalf("failed to get movies: %v", err)
		}
		if movies == nil {
			t.Error("expected missing movies key to read as empty list")
		}

		next, _ := dm.NextMovieID(ctx, 3)
		if next != 5 {
			t.Errorf("expected next movie ID 5, got %d", next)
		}
	})

	t.Run("hand-edited documents list users in ID order", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "movies.json")
		doc := `[{"id": 7, "name": "Grace"}, {"id": 2, "name": "Ada"}, {"id": 5, "name": "Linus"}]`
		if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
			t.Fatalf("failed to write fixture: %v", err)
		}

		dm := NewJSONDataManager(path, shared.NewLogger(io.Discard))
		users, err := dm.GetAllUsers(ctx)
		if err != nil {
			t.Fatalf("failed to list users: %v", err)
		}

		var ids []int
		for _, u := range users {
			ids = append(ids, u.ID)
		}
		if !slices.Equal(ids, []int{2, 5, 7}) {
			t.Errorf("expected IDs [2 5 7], got %v", ids)
		}
	})

	t.Run("malformed document is a storage failure", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "broken.json")
		if err := os.WriteFile(path, []byte(`{"id":`), 0644); err != nil {
			t.Fatalf("failed to write fixture: %v", err)
		}

		dm := NewJSONDataManager(path, shared.NewLogger(io.Discard))
		_, err := dm.GetAllUsers(ctx)
		if !errors.Is(err, shared.ErrStorage) {
			t.Errorf("expected ErrStorage, got %v", err)
		}
		if errors.Is(err, shared.ErrNotFound) {
			t.Errorf("storage failure must not match ErrNotFound: %v", err)
		}
	})

	t.Run("writes use the documented keys", func(t *testing.T) {
		dm := setupJSONStore(t)
		user, _ := dm.AddUser(ctx, "Ada")
		if _, err := dm.AddMovie(ctx, user.ID, inception); err != nil {
			t.Fatalf("failed to add movie: %v", err)
		}

		data, err := os.ReadFile(dm.Filename())
		if err != nil {
			t.Fatalf("failed to read store: %v", err)
		}
		for _, key := range []string{`"id"`, `"name"`, `"movies"`, `"movie_id"`, `"title"`, `"director"`, `"year"`, `"rating"`, `"poster"`} {
			if !strings.Contains(string(data), key) {
				t.Errorf("expected document to contain %s", key)
			}
		}
		if strings.Contains(string(data), "UserID") || strings.Contains(string(data), "user_id") {
			t.Error("movie owner should be implied by nesting, not serialized")
		}
	})

	t.Run("failed mutation leaves the file untouched", func(t *testing.T) {
		dm := setupJSONStore(t)
		if _, err := dm.AddUser(ctx, "Ada"); err != nil {
			t.Fatalf("failed to add user: %v", err)
		}
		before, _ := os.ReadFile(dm.Filename())

		if _, err := dm.DeleteUser(ctx, 42); !errors.Is(err, shared.ErrUserNotFound) {
			t.Fatalf("expected ErrUserNotFound, got %v", err)
		}

		after, _ := os.ReadFile(dm.Filename())
		if string(before) != string(after) {
			t.Error("expected file to be unchanged")
		}
	})

	t.Run("no temp files are left behind", func(t *testing.T) {
		dm := setupJSONStore(t)
		for _, name := range []string{"a", "b"} {
			if _, err := dm.AddUser(ctx, name); err != nil {
				t.Fatalf("failed to add user: %v", err)
			}
		}

		entries, err := os.ReadDir(filepath.Dir(dm.Filename()))
		if err != nil {
			t.Fatalf("failed to read dir: %v", err)
		}
		if len(entries) != 1 {
			t.Errorf("expected only the store file, got %d entries", len(entries))
		}
	})

	t.Run("concurrent adds are serialized", func(t *testing.T) {
		dm := setupJSONStore(t)

		var wg sync.WaitGroup
		for range 10 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if _, err := dm.AddUser(ctx, "user"); err != nil {
					t.Errorf("failed to add user: %v", err)
				}
			}()
		}
		wg.Wait()

		users, _ := dm.GetAllUsers(ctx)
		if len(users) != 10 {
			t.Fatalf("expected 10 users, got %d", len(users))
		}
		seen := map[int]bool{}
		for _, u := range users {
			if seen[u.ID] {
				t.Errorf("duplicate user ID %d", u.ID)
			}
			seen[u.ID] = true
		}
	})

	t.Run("deleting the highest ID frees it", func(t *testing.T) {
		dm := setupJSONStore(t)
		dm.AddUser(ctx, "Ada")
		top, _ := dm.AddUser(ctx, "Grace")

		if _, err := dm.DeleteUser(ctx, top.ID); err != nil {
			t.Fatalf("failed to delete user: %v", err)
		}
		next, err := dm.AddUser(ctx, "Linus")
		if err != nil {
			t.Fatalf("failed to add user: %v", err)
		}
		if next.ID != top.ID {
			t.Errorf("expected max+1 to give %d again, got %d", top.ID, next.ID)
		}

		movie, _ := dm.AddMovie(ctx, next.ID, inception)
		if _, err := dm.DeleteMovie(ctx, next.ID, movie.ID); err != nil {
			t.Fatalf("failed to delete movie: %v", err)
		}
		again, _ := dm.AddMovie(ctx, next.ID, inception)
		if again.ID != movie.ID {
			t.Errorf("expected movie ID %d again, got %d", movie.ID, again.ID)
		}
	})

	t.Run("UpdateMoviesData replaces the list", func(t *testing.T) {
		dm := setupJSONStore(t)
		user, _ := dm.AddUser(ctx, "Ada")
		dm.AddMovie(ctx, user.ID, inception)

		replacement := []models.Movie{{ID: 10, Title: "Heat", Year: "1995"}}
		if _, err := dm.UpdateMoviesData(ctx, user.ID, replacement); err != nil {
			t.Fatalf("failed to replace movies: %v", err)
		}

		movies, _ := dm.GetUserMovies(ctx, user.ID)
		if len(movies) != 1 || movies[0].ID != 10 || movies[0].UserID != user.ID {
			t.Errorf("unexpected movies: %+v", movies)
		}

		if _, err := dm.UpdateMoviesData(ctx, 42, nil); !errors.Is(err, shared.ErrUserNotFound) {
			t.Errorf("expected ErrUserNotFound, got %v", err)
		}
	})

	t.Run("UpdateMoviesData rejects invalid lists", func(t *testing.T) {
		dm := setupJSONStore(t)
		user, _ := dm.AddUser(ctx, "Ada")
		dm.AddMovie(ctx, user.ID, inception)

		tests := []struct {
			name   string
			movies []models.Movie
		}{
			{"duplicate ids", []models.Movie{{ID: 1, Title: "A"}, {ID: 1, Title: "B"}}},
			{"zero id", []models.Movie{{ID: 0, Title: "A"}}},
			{"negative id", []models.Movie{{ID: -3, Title: "A"}}},
			{"blank title", []models.Movie{{ID: 2, Title: "  "}}},
			{"rating out of range", []models.Movie{{ID: 2, Title: "A", Rating: 12}}},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				if _, err := dm.UpdateMoviesData(ctx, user.ID, tt.movies); !errors.Is(err, shared.ErrInvalidInput) {
					t.Errorf("expected ErrInvalidInput, got %v", err)
				}
			})
		}

		movies, _ := dm.GetUserMovies(ctx, user.ID)
		if len(movies) != 1 || movies[0].Title != inception.Title {
			t.Errorf("expected the original list to survive, got %+v", movies)
		}
	})

	t.Run("UpdateMoviesData leaves the input untouched", func(t *testing.T) {
		dm := setupJSONStore(t)
		user, _ := dm.AddUser(ctx, "Ada")

		input := []models.Movie{{ID: 3, UserID: 77, Title: "Heat"}}
		stored, err := dm.UpdateMoviesData(ctx, user.ID, input)
		if err != nil {
			t.Fatalf("failed to replace movies: %v", err)
		}
		if input[0].UserID != 77 {
			t.Errorf("expected caller slice unchanged, got UserID %d", input[0].UserID)
		}
		if stored[0].UserID != user.ID {
			t.Errorf("expected stored UserID %d, got %d", user.ID, stored[0].UserID)
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		dm := setupJSONStore(t)
		cctx, cancel := context.WithCancel(ctx)
		cancel()

		if _, err := dm.AddUser(cctx, "Ada"); !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})
}
