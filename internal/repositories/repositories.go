// package repositories provides the storage backends for users, movies and reviews.
package repositories

import (
	"fmt"

	"github.com/desertthunder/moviweb/internal/models"
	"github.com/desertthunder/moviweb/internal/shared"
)

// GenerateUserID returns 1 for an empty user list, otherwise the highest existing ID + 1.
func GenerateUserID(users []models.User) int {
	next := 1
	for _, u := range users {
		if u.ID >= next {
			next = u.ID + 1
		}
	}
	return next
}

// GenerateMovieID returns 1 for an empty movie list, otherwise the highest existing ID + 1.
func GenerateMovieID(movies []models.Movie) int {
	next := 1
	for _, m := range movies {
		if m.ID >= next {
			next = m.ID + 1
		}
	}
	return next
}

func userNotFound(userID int) error {
	return fmt.Errorf("%w: %d", shared.ErrUserNotFound, userID)
}

func movieNotFound(userID, movieID int) error {
	return fmt.Errorf("%w: movie %d for user %d", shared.ErrMovieNotFound, movieID, userID)
}

func reviewNotFound(userID, movieID, reviewID int) error {
	return fmt.Errorf("%w: review %d on movie %d for user %d", shared.ErrReviewNotFound, reviewID, movieID, userID)
}

var (
	_ models.DataManager = (*JSONDataManager)(nil)
	_ models.DataManager = (*SQLiteDataManager)(nil)
	_ models.ReviewStore = (*SQLiteDataManager)(nil)
)
