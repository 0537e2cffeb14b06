// Package ui renders CLI output with lipgloss.
//
// A [Palette] holds the named styles (title, ok, error, warning, muted) used by the CLI's status lines.
// [UsersTable] and [MoviesTable] render lists as bordered tables; [ReviewsList] renders a movie's reviews.
//
// Styles degrade to plain text when the output is not a terminal, so rendered strings are safe to compare in tests.
package ui
