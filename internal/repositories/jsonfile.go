package repositories

import (
	"bytes"
	"cmp"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/moviweb/internal/models"
	"github.com/desertthunder/moviweb/internal/shared"
)

// JSONDataManager implements [models.DataManager] over a single JSON document.
//
// The document is an array of users, each carrying its nested movie list. Every mutation
// reads the whole document, changes it in memory and writes the whole document back via a
// temporary file renamed over the original. A mutex serializes read-modify-write cycles within
// the process; separate processes sharing the file can still overwrite each other.
//
// Reviews are not supported.
type JSONDataManager struct {
	filename string
	logger   *log.Logger
	mu       sync.Mutex
}

// NewJSONDataManager creates a [JSONDataManager] backed by filename.
// The file does not need to exist yet; a missing file reads as an empty store.
func NewJSONDataManager(filename string, logger *log.Logger) *JSONDataManager {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &JSONDataManager{
		filename: filename,
		logger:   shared.WithLogger(logger, "backend", shared.BackendJSON),
	}
}

// Name returns the backend name.
func (m *JSONDataManager) Name() string { return shared.BackendJSON }

// Close is a no-op; the file is only open during individual operations.
func (m *JSONDataManager) Close() error { return nil }

// Filename returns the path of the backing document.
func (m *JSONDataManager) Filename() string { return m.filename }

// Init writes an empty document if the file does not exist yet.
func (m *JSONDataManager) Init(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, err := os.Stat(m.filename); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return m.fail("stat store", err)
	}
	return m.save(ctx, []models.User{})
}

// GetAllUsers returns every user in ID order.
func (m *JSONDataManager) GetAllUsers(ctx context.Context) ([]models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.load(ctx)
}

// GetUser returns the user with userID.
func (m *JSONDataManager) GetUser(ctx context.Context, userID int) (*models.User, error) {
	users, err := m.GetAllUsers(ctx)
	if err != nil {
		return nil, err
	}

	idx := findUser(users, userID)
	if idx < 0 {
		return nil, userNotFound(userID)
	}
	return &users[idx], nil
}

// GetUserMovies returns the movie list of userID.
func (m *JSONDataManager) GetUserMovies(ctx context.Context, userID int) ([]models.Movie, error) {
	user, err := m.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return user.Movies, nil
}

// NextUserID returns the ID [JSONDataManager.AddUser] would assign right now.
func (m *JSONDataManager) NextUserID(ctx context.Context) (int, error) {
	users, err := m.GetAllUsers(ctx)
	if err != nil {
		return 0, err
	}
	return GenerateUserID(users), nil
}

// NextMovieID returns the ID [JSONDataManager.AddMovie] would assign for userID right now.
func (m *JSONDataManager) NextMovieID(ctx context.Context, userID int) (int, error) {
	movies, err := m.GetUserMovies(ctx, userID)
	if err != nil {
		return 0, err
	}
	return GenerateMovieID(movies), nil
}

// AddUser appends a new user with the next free ID.
func (m *JSONDataManager) AddUser(ctx context.Context, name string) (*models.User, error) {
	user := models.NewUser(0, name)
	if err := user.Validate(); err != nil {
		return nil, err
	}

	err := m.mutate(ctx, func(users []models.User) ([]models.User, error) {
		user.ID = GenerateUserID(users)
		return append(users, *user), nil
	})
	if err != nil {
		return nil, err
	}

	m.logger.Debug("added user", "user_id", user.ID)
	return user, nil
}

// UpdateUser renames userID.
func (m *JSONDataManager) UpdateUser(ctx context.Context, userID int, name string) (*models.User, error) {
	renamed := models.NewUser(userID, name)
	if err := renamed.Validate(); err != nil {
		return nil, err
	}

	var updated models.User
	err := m.mutate(ctx, func(users []models.User) ([]models.User, error) {
		idx := findUser(users, userID)
		if idx < 0 {
			return nil, userNotFound(userID)
		}
		users[idx].Name = renamed.Name
		updated = users[idx]
		return users, nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteUser removes userID and their movies.
func (m *JSONDataManager) DeleteUser(ctx context.Context, userID int) (*models.User, error) {
	var removed models.User
	err := m.mutate(ctx, func(users []models.User) ([]models.User, error) {
		idx := findUser(users, userID)
		if idx < 0 {
			return nil, userNotFound(userID)
		}
		removed = users[idx]
		return slices.Delete(users, idx, idx+1), nil
	})
	if err != nil {
		return nil, err
	}

	m.logger.Debug("deleted user", "user_id", userID, "movies", len(removed.Movies))
	return &removed, nil
}

// AddMovie appends a movie built from meta to the list of userID.
func (m *JSONDataManager) AddMovie(ctx context.Context, userID int, meta models.MovieMetadata) (*models.Movie, error) {
	if err := meta.Validate(); err != nil {
		return nil, err
	}

	var added models.Movie
	err := m.mutate(ctx, func(users []models.User) ([]models.User, error) {
		idx := findUser(users, userID)
		if idx < 0 {
			return nil, userNotFound(userID)
		}
		added = models.NewMovie(GenerateMovieID(users[idx].Movies), userID, meta)
		users[idx].Movies = append(users[idx].Movies, added)
		return users, nil
	})
	if err != nil {
		return nil, err
	}

	m.logger.Debug("added movie", "user_id", userID, "movie_id", added.ID, "title", added.Title)
	return &added, nil
}

// GetMovie returns one movie of userID.
func (m *JSONDataManager) GetMovie(ctx context.Context, userID, movieID int) (*models.Movie, error) {
	movies, err := m.GetUserMovies(ctx, userID)
	if err != nil {
		return nil, err
	}

	idx := findMovie(movies, movieID)
	if idx < 0 {
		return nil, movieNotFound(userID, movieID)
	}
	return &movies[idx], nil
}

// UpdateMovie overwrites the editable fields of a movie.
func (m *JSONDataManager) UpdateMovie(ctx context.Context, userID, movieID int, update models.MovieUpdate) (*models.Movie, error) {
	if err := update.Validate(); err != nil {
		return nil, err
	}

	var updated models.Movie
	err := m.mutate(ctx, func(users []models.User) ([]models.User, error) {
		u := findUser(users, userID)
		if u < 0 {
			return nil, userNotFound(userID)
		}
		idx := findMovie(users[u].Movies, movieID)
		if idx < 0 {
			return nil, movieNotFound(userID, movieID)
		}
		users[u].Movies[idx].Apply(update)
		updated = users[u].Movies[idx]
		return users, nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteMovie removes a movie from the list of userID.
func (m *JSONDataManager) DeleteMovie(ctx context.Context, userID, movieID int) (*models.Movie, error) {
	var removed models.Movie
	err := m.mutate(ctx, func(users []models.User) ([]models.User, error) {
		u := findUser(users, userID)
		if u < 0 {
			return nil, userNotFound(userID)
		}
		idx := findMovie(users[u].Movies, movieID)
		if idx < 0 {
			return nil, movieNotFound(userID, movieID)
		}
		removed = users[u].Movies[idx]
		users[u].Movies = slices.Delete(users[u].Movies, idx, idx+1)
		return users, nil
	})
	if err != nil {
		return nil, err
	}
	return &removed, nil
}

// UpdateMoviesData replaces the whole movie list of userID.
//
// Every movie needs a positive ID that is unique within the list and a valid title and rating.
// The caller's slice is not modified.
func (m *JSONDataManager) UpdateMoviesData(ctx context.Context, userID int, movies []models.Movie) ([]models.Movie, error) {
	movies = slices.Clone(movies)
	if movies == nil {
		movies = []models.Movie{}
	}

	seen := make(map[int]bool, len(movies))
	for _, movie := range movies {
		if movie.ID < 1 {
			return nil, fmt.Errorf("%w: movie_id must be positive, got %d", shared.ErrInvalidInput, movie.ID)
		}
		if seen[movie.ID] {
			return nil, fmt.Errorf("%w: duplicate movie_id %d", shared.ErrInvalidInput, movie.ID)
		}
		seen[movie.ID] = true
		if err := movie.Validate(); err != nil {
			return nil, err
		}
	}

	err := m.mutate(ctx, func(users []models.User) ([]models.User, error) {
		idx := findUser(users, userID)
		if idx < 0 {
			return nil, userNotFound(userID)
		}
		for i := range movies {
			movies[i].UserID = userID
		}
		users[idx].Movies = movies
		return users, nil
	})
	if err != nil {
		return nil, err
	}
	return movies, nil
}

// mutate runs one locked read-modify-write cycle. Nothing is written when fn fails.
func (m *JSONDataManager) mutate(ctx context.Context, fn func([]models.User) ([]models.User, error)) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	users, err := m.load(ctx)
	if err != nil {
		return err
	}

	users, err = fn(users)
	if err != nil {
		return err
	}

	return m.save(ctx, users)
}

func (m *JSONDataManager) load(ctx context.Context) ([]models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(m.filename)
	if errors.Is(err, fs.ErrNotExist) {
		return []models.User{}, nil
	}
	if err != nil {
		return nil, m.fail("read store", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return []models.User{}, nil
	}

	var users []models.User
	if err := shared.UnmarshalJSON(data, &users); err != nil {
		return nil, m.fail("parse store", err)
	}

	if users == nil {
		users = []models.User{}
	}
	slices.SortStableFunc(users, func(a, b models.User) int { return cmp.Compare(a.ID, b.ID) })
	for i := range users {
		if users[i].Movies == nil {
			users[i].Movies = []models.Movie{}
		}
		for j := range users[i].Movies {
			users[i].Movies[j].UserID = users[i].ID
		}
	}
	return users, nil
}

func (m *JSONDataManager) save(ctx context.Context, users []models.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := shared.MarshalJSON(users, true)
	if err != nil {
		return m.fail("encode store", err)
	}

	if err := writeFileAtomic(m.filename, data); err != nil {
		return m.fail("write store", err)
	}
	return nil
}

func (m *JSONDataManager) fail(op string, err error) error {
	m.logger.Error("storage operation failed", "op", op, "file", m.filename, "error", err)
	return fmt.Errorf("%w: failed to %s: %w", shared.ErrStorage, op, err)
}

// writeFileAtomic writes data to a temporary file next to path and renames it into place,
// so readers see either the old or the new document, never a partial one.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}

	return os.Rename(tmpName, path)
}

func findUser(users []models.User, userID int) int {
	return slices.IndexFunc(users, func(u models.User) bool { return u.ID == userID })
}

func findMovie(movies []models.Movie, movieID int) int {
	return slices.IndexFunc(movies, func(m models.Movie) bool { return m.ID == movieID })
}
