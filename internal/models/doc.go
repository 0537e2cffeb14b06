// Package models defines the domain entities and data-access contract for the moviweb movie tracker.
//
// The package contains two categories of types:
//
// 1. Domain records
//   - [User] : a person with an ordered list of movies
//   - [Movie] : a movie owned by exactly one user
//   - [Review] : free text attached to a (user, movie) pair
//   - [MovieMetadata] : normalized record returned by the metadata lookup
//   - [MovieUpdate] : editable movie fields
//
// 2. Contracts
//   - [DataManager] : operations every storage backend provides over users and movies
//   - [ReviewStore] : review operations, only offered by relational backends
//
// Backends signal outcomes with errors from the shared package: a nil error is success,
// errors matching shared.ErrNotFound mean the record does not exist, and errors matching
// shared.ErrStorage mean the store itself failed.
package models
