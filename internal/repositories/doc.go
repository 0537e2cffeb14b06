// Package repositories implements the two storage backends behind [models.DataManager].
//
// Key Implementations:
//   - [JSONDataManager] : flat-file backend keeping every user and their nested movies in one JSON document
//   - [SQLiteDataManager] : relational backend over the User, Movie and Review tables, also implementing [models.ReviewStore]
//
// # ID Assignment
//
// The flat-file backend computes IDs itself with [GenerateUserID] and [GenerateMovieID] (max existing + 1, gaps never reused,
// movie IDs scoped per user). The relational backend lets SQLite AUTOINCREMENT assign them, so its NextUserID and NextMovieID
// return [models.AutoID].
//
// # Errors
//
// Both backends return errors wrapping shared.ErrUserNotFound, shared.ErrMovieNotFound or shared.ErrReviewNotFound when a record
// is absent, and shared.ErrStorage when the store fails. Storage failures are logged before they are returned.
//
// # Deletes
//
// Deleting a user removes their movies and reviews; deleting a movie removes its reviews.
// The flat-file backend gets this from nesting, the relational backend from ON DELETE CASCADE.
package repositories
