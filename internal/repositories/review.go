package repositories

import (
	"context"

	"github.com/desertthunder/moviweb/internal/models"
	"github.com/desertthunder/moviweb/internal/shared"
)

// AddReview attaches review text to one of a user's movies.
func (m *SQLiteDataManager) AddReview(ctx context.Context, userID, movieID int, text string) (*models.Review, error) {
	review := models.Review{UserID: userID, MovieID: movieID, Text: text}
	if err := shared.ValidateStruct(review); err != nil {
		return nil, err
	}

	if _, err := m.GetMovie(ctx, userID, movieID); err != nil {
		return nil, err
	}

	result, err := m.db.ExecContext(ctx,
		`INSERT INTO Review (movie_id, user_id, review) VALUES (?, ?, ?)`, movieID, userID, review.Text)
	if isForeignKeyViolation(err) {
		return nil, movieNotFound(userID, movieID)
	}
	if err != nil {
		return nil, m.fail("insert review", err, "user_id", userID, "movie_id", movieID)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, m.fail("read review id", err)
	}
	review.ID = int(id)
	return &review, nil
}

// GetReviews lists the reviews of one movie, oldest first. The result is empty, not nil,
// when the movie has none.
func (m *SQLiteDataManager) GetReviews(ctx context.Context, userID, movieID int) ([]models.Review, error) {
	if _, err := m.GetMovie(ctx, userID, movieID); err != nil {
		return nil, err
	}

	rows, err := m.db.QueryContext(ctx,
		`SELECT review_id, user_id, movie_id, review FROM Review WHERE movie_id = ? AND user_id = ? ORDER BY review_id`,
		movieID, userID,
	)
	if err != nil {
		return nil, m.fail("list reviews", err, "user_id", userID, "movie_id", movieID)
	}
	defer rows.Close()

	reviews := []models.Review{}
	for rows.Next() {
		var r models.Review
		if err := rows.Scan(&r.ID, &r.UserID, &r.MovieID, &r.Text); err != nil {
			return nil, m.fail("scan review", err)
		}
		reviews = append(reviews, r)
	}
	if err := rows.Err(); err != nil {
		return nil, m.fail("iterate reviews", err)
	}
	return reviews, nil
}

// DeleteReview removes one review.
func (m *SQLiteDataManager) DeleteReview(ctx context.Context, userID, movieID, reviewID int) error {
	result, err := m.db.ExecContext(ctx,
		`DELETE FROM Review WHERE review_id = ? AND movie_id = ? AND user_id = ?`, reviewID, movieID, userID)
	if err != nil {
		return m.fail("delete review", err, "review_id", reviewID)
	}

	n, err := rowsAffected(result)
	if err != nil {
		return m.fail("delete review", err, "review_id", reviewID)
	}
	if n == 0 {
		if _, err := m.GetMovie(ctx, userID, movieID); err != nil {
			return err
		}
		return reviewNotFound(userID, movieID, reviewID)
	}
	return nil
}
