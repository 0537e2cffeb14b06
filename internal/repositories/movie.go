package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/desertthunder/moviweb/internal/models"
)

const movieColumns = `movie_id, user_id, title, director, year, rating, poster`

// GetUserMovies returns the movies of userID in insertion order.
func (m *SQLiteDataManager) GetUserMovies(ctx context.Context, userID int) ([]models.Movie, error) {
	if _, err := m.getUserRow(ctx, userID); err != nil {
		return nil, err
	}
	return m.queryMovies(ctx, `SELECT `+movieColumns+` FROM Movie WHERE user_id = ? ORDER BY movie_id`, userID)
}

// NextMovieID reports [models.AutoID] once the user is known to exist.
func (m *SQLiteDataManager) NextMovieID(ctx context.Context, userID int) (int, error) {
	if _, err := m.getUserRow(ctx, userID); err != nil {
		return 0, err
	}
	return models.AutoID, nil
}

// AddMovie inserts a movie for userID. A missing user surfaces as a foreign key
// violation and is reported as not found.
func (m *SQLiteDataManager) AddMovie(ctx context.Context, userID int, meta models.MovieMetadata) (*models.Movie, error) {
	if err := meta.Validate(); err != nil {
		return nil, err
	}

	movie := models.NewMovie(models.AutoID, userID, meta)
	result, err := m.db.ExecContext(ctx,
		`INSERT INTO Movie (title, director, year, rating, poster, user_id) VALUES (?, ?, ?, ?, ?, ?)`,
		movie.Title, movie.Director, movie.Year, movie.Rating, movie.Poster, userID,
	)
	if isForeignKeyViolation(err) {
		return nil, userNotFound(userID)
	}
	if err != nil {
		return nil, m.fail("insert movie", err, "user_id", userID)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, m.fail("read movie id", err)
	}
	movie.ID = int(id)

	m.logger.Debug("added movie", "user_id", userID, "movie_id", movie.ID, "title", movie.Title)
	return &movie, nil
}

// GetMovie returns one movie of userID. A movie that exists under a different user is not found.
func (m *SQLiteDataManager) GetMovie(ctx context.Context, userID, movieID int) (*models.Movie, error) {
	row := m.db.QueryRowContext(ctx,
		`SELECT `+movieColumns+` FROM Movie WHERE movie_id = ? AND user_id = ?`, movieID, userID)

	movie, err := scanMovie(row)
	if errors.Is(err, sql.ErrNoRows) {
		if _, uerr := m.getUserRow(ctx, userID); uerr != nil {
			return nil, uerr
		}
		return nil, movieNotFound(userID, movieID)
	}
	if err != nil {
		return nil, m.fail("get movie", err, "user_id", userID, "movie_id", movieID)
	}
	return movie, nil
}

// UpdateMovie overwrites the editable fields of a movie.
func (m *SQLiteDataManager) UpdateMovie(ctx context.Context, userID, movieID int, update models.MovieUpdate) (*models.Movie, error) {
	if err := update.Validate(); err != nil {
		return nil, err
	}

	result, err := m.db.ExecContext(ctx,
		`UPDATE Movie SET title = ?, director = ?, year = ?, rating = ? WHERE movie_id = ? AND user_id = ?`,
		update.Title, update.Director, update.Year, update.Rating, movieID, userID,
	)
	if err != nil {
		return nil, m.fail("update movie", err, "user_id", userID, "movie_id", movieID)
	}

	n, err := rowsAffected(result)
	if err != nil {
		return nil, m.fail("update movie", err, "user_id", userID, "movie_id", movieID)
	}
	if n == 0 {
		if _, uerr := m.getUserRow(ctx, userID); uerr != nil {
			return nil, uerr
		}
		return nil, movieNotFound(userID, movieID)
	}

	return m.GetMovie(ctx, userID, movieID)
}

// DeleteMovie removes a movie and, via ON DELETE CASCADE, its reviews.
func (m *SQLiteDataManager) DeleteMovie(ctx context.Context, userID, movieID int) (*models.Movie, error) {
	movie, err := m.GetMovie(ctx, userID, movieID)
	if err != nil {
		return nil, err
	}

	result, err := m.db.ExecContext(ctx, `DELETE FROM Movie WHERE movie_id = ? AND user_id = ?`, movieID, userID)
	if err != nil {
		return nil, m.fail("delete movie", err, "user_id", userID, "movie_id", movieID)
	}

	n, err := rowsAffected(result)
	if err != nil {
		return nil, m.fail("delete movie", err, "user_id", userID, "movie_id", movieID)
	}
	if n == 0 {
		return nil, movieNotFound(userID, movieID)
	}
	return movie, nil
}

func (m *SQLiteDataManager) queryMovies(ctx context.Context, query string, args ...any) ([]models.Movie, error) {
	rows, err := m.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, m.fail("list movies", err)
	}
	defer rows.Close()

	movies := []models.Movie{}
	for rows.Next() {
		movie, err := scanMovie(rows)
		if err != nil {
			return nil, m.fail("scan movie", err)
		}
		movies = append(movies, *movie)
	}
	if err := rows.Err(); err != nil {
		return nil, m.fail("iterate movies", err)
	}
	return movies, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanMovie(s scanner) (*models.Movie, error) {
	var mv models.Movie
	if err := s.Scan(&mv.ID, &mv.UserID, &mv.Title, &mv.Director, &mv.Year, &mv.Rating, &mv.Poster); err != nil {
		return nil, err
	}
	return &mv, nil
}
