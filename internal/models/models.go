// package models defines the data model for the movie tracker
package models

import (
	"strings"

	"github.com/desertthunder/moviweb/internal/shared"
)

// AutoID is the ID value meaning "assigned by storage".
const AutoID = 0

// User is a person and the movies they track.
type User struct {
	ID     int     `json:"id"`
	Name   string  `json:"name" validate:"notblank,max=120"`
	Movies []Movie `json:"movies"`
}

// NewUser creates a [User] with an empty movie list.
func NewUser(id int, name string) *User {
	return &User{ID: id, Name: strings.TrimSpace(name), Movies: []Movie{}}
}

// Validate checks that the user has a usable name.
func (u *User) Validate() error {
	return shared.ValidateStruct(u)
}

// Movie is a movie on a user's list.
//
// UserID is implied by nesting in the flat-file store and is not serialized there.
type Movie struct {
	ID       int     `json:"movie_id"`
	UserID   int     `json:"-"`
	Title    string  `json:"title" validate:"notblank"`
	Director string  `json:"director"`
	Year     string  `json:"year"`
	Rating   float64 `json:"rating" validate:"gte=0,lte=10"`
	Poster   string  `json:"poster"`
}

// NewMovie builds a [Movie] for userID from lookup metadata.
func NewMovie(id, userID int, meta MovieMetadata) Movie {
	return Movie{
		ID:       id,
		UserID:   userID,
		Title:    meta.Title,
		Director: meta.Director,
		Year:     meta.Year,
		Rating:   meta.Rating,
		Poster:   meta.Poster,
	}
}

// Validate checks the stored fields of the movie.
func (m Movie) Validate() error {
	return shared.ValidateStruct(m)
}

// Apply copies the editable fields of u onto the movie.
func (m *Movie) Apply(u MovieUpdate) {
	m.Title = u.Title
	m.Director = u.Director
	m.Year = u.Year
	m.Rating = u.Rating
}

// Review is free-text commentary on one of a user's movies.
type Review struct {
	ID      int    `json:"review_id"`
	UserID  int    `json:"user_id"`
	MovieID int    `json:"movie_id"`
	Text    string `json:"review" validate:"notblank"`
}

// MovieMetadata is the normalized record produced by a metadata lookup.
type MovieMetadata struct {
	Title    string  `json:"title" validate:"notblank"`
	Year     string  `json:"year"`
	Director string  `json:"director"`
	Rating   float64 `json:"rating" validate:"gte=0,lte=10"`
	Poster   string  `json:"poster"`
}

// Validate checks that the metadata can be stored as a movie.
func (m MovieMetadata) Validate() error {
	return shared.ValidateStruct(m)
}

// MovieUpdate holds the user-editable fields of a movie.
type MovieUpdate struct {
	Title    string  `json:"title" validate:"notblank"`
	Director string  `json:"director"`
	Year     string  `json:"year"`
	Rating   float64 `json:"rating" validate:"gte=0,lte=10"`
}

// Validate checks the update before it reaches a backend.
func (u MovieUpdate) Validate() error {
	return shared.ValidateStruct(u)
}
