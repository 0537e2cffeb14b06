package models

import "context"

// DataManager defines the operations every storage backend provides over users and their movies.
//
// Implementations include the flat-file JSON store and the relational SQLite store.
type DataManager interface {
	// GetAllUsers returns every user in ID order, each with their movies.
	GetAllUsers(ctx context.Context) ([]User, error)

	// GetUserMovies returns the movies of one user, empty when the user has none.
	GetUserMovies(ctx context.Context, userID int) ([]Movie, error)

	// GetUser returns one user with their movies.
	GetUser(ctx context.Context, userID int) (*User, error)

	// NextUserID returns the ID the next added user will receive, or [AutoID] when storage assigns it.
	NextUserID(ctx context.Context) (int, error)

	// NextMovieID returns the ID the next movie added for userID will receive, or [AutoID] when storage assigns it.
	NextMovieID(ctx context.Context, userID int) (int, error)

	AddUser(ctx context.Context, name string) (*User, error)
	UpdateUser(ctx context.Context, userID int, name string) (*User, error)

	// DeleteUser removes a user along with their movies and reviews and returns the removed user.
	DeleteUser(ctx context.Context, userID int) (*User, error)

	// AddMovie stores meta as a new movie for userID and returns it with its assigned ID.
	AddMovie(ctx context.Context, userID int, meta MovieMetadata) (*Movie, error)
	GetMovie(ctx context.Context, userID, movieID int) (*Movie, error)

	// UpdateMovie overwrites the editable fields of a movie. Applying the same update twice is a no-op.
	UpdateMovie(ctx context.Context, userID, movieID int, update MovieUpdate) (*Movie, error)

	// DeleteMovie removes a movie and returns it.
	DeleteMovie(ctx context.Context, userID, movieID int) (*Movie, error)

	// Name identifies the backend ("json", "sqlite").
	Name() string

	Close() error
}

// ReviewStore is implemented by backends that support reviews.
//
// Callers discover support with a type assertion on a [DataManager].
type ReviewStore interface {
	AddReview(ctx context.Context, userID, movieID int, text string) (*Review, error)

	// GetReviews returns the reviews of a movie; the slice is empty, never nil, when there are none.
	GetReviews(ctx context.Context, userID, movieID int) ([]Review, error)

	// DeleteReview removes the review matching the full (user, movie, review) triple.
	DeleteReview(ctx context.Context, userID, movieID, reviewID int) error
}

// Reviews returns dm as a [ReviewStore] when the backend supports reviews.
func Reviews(dm DataManager) (ReviewStore, bool) {
	rs, ok := dm.(ReviewStore)
	return rs, ok
}
