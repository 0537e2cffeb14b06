package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/desertthunder/moviweb/internal/formatter"
	"github.com/desertthunder/moviweb/internal/models"
)

func (p *Palette) table(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(p.border).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return p.header
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})
}

// UsersTable renders users with their movie counts.
func (p *Palette) UsersTable(users []models.User) string {
	if len(users) == 0 {
		return p.Muted("No users yet.")
	}

	t := p.table("ID", "Name", "Movies")
	for _, u := range users {
		t.Row(strconv.Itoa(u.ID), u.Name, strconv.Itoa(len(u.Movies)))
	}
	return t.String()
}

// MoviesTable renders a movie list.
func (p *Palette) MoviesTable(movies []models.Movie) string {
	if len(movies) == 0 {
		return p.Muted("No movies yet.")
	}

	t := p.table("ID", "Title", "Director", "Year", "Rating")
	for _, m := range movies {
		t.Row(strconv.Itoa(m.ID), m.Title, m.Director, m.Year, formatter.FormatRating(m.Rating))
	}
	return t.String()
}

// MovieDetail renders one movie as labelled lines.
func (p *Palette) MovieDetail(m *models.Movie) string {
	var b strings.Builder
	b.WriteString(p.Title(m.Title))
	b.WriteString("\n")
	fmt.Fprintf(&b, "ID:       %d\n", m.ID)
	fmt.Fprintf(&b, "Director: %s\n", m.Director)
	fmt.Fprintf(&b, "Year:     %s\n", m.Year)
	fmt.Fprintf(&b, "Rating:   %s\n", formatter.FormatRating(m.Rating))
	if m.Poster != "" {
		fmt.Fprintf(&b, "Poster:   %s\n", m.Poster)
	}
	return b.String()
}

// ReviewsList renders reviews as a numbered list.
func (p *Palette) ReviewsList(reviews []models.Review) string {
	if len(reviews) == 0 {
		return p.Muted("No reviews yet.")
	}

	var b strings.Builder
	for _, r := range reviews {
		fmt.Fprintf(&b, "%s %s\n", p.Muted(fmt.Sprintf("#%d", r.ID)), r.Text)
	}
	return strings.TrimRight(b.String(), "\n")
}
