package ui

import (
	"strings"
	"testing"

	"github.com/desertthunder/moviweb/internal/models"
)

func TestPalette(t *testing.T) {
	p := Styles()

	t.Run("status lines", func(t *testing.T) {
		tests := []struct {
			name string
			got  string
			want string
		}{
			{"ok", p.OK("saved"), "✓ saved"},
			{"err", p.Err("failed"), "✗ failed"},
			{"warn", p.Warn("careful"), "! careful"},
			{"muted", p.Muted("hint"), "hint"},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				if !strings.Contains(tt.got, tt.want) {
					t.Errorf("expected %q in %q", tt.want, tt.got)
				}
			})
		}
	})

	t.Run("UsersTable", func(t *testing.T) {
		out := p.UsersTable([]models.User{
			{ID: 1, Name: "Ada", Movies: []models.Movie{{ID: 1, Title: "Inception"}}},
			{ID: 2, Name: "Grace"},
		})

		for _, want := range []string{"ID", "Name", "Movies", "Ada", "Grace"} {
			if !strings.Contains(out, want) {
				t.Errorf("expected %q in table:\n%s", want, out)
			}
		}
	})

	t.Run("UsersTable empty", func(t *testing.T) {
		if out := p.UsersTable(nil); !strings.Contains(out, "No users yet.") {
			t.Errorf("unexpected empty output %q", out)
		}
	})

	t.Run("MoviesTable", func(t *testing.T) {
		out := p.MoviesTable([]models.Movie{
			{ID: 3, Title: "Inception", Director: "Christopher Nolan", Year: "2010", Rating: 8.8},
			{ID: 4, Title: "Unrated"},
		})

		for _, want := range []string{"Inception", "Christopher Nolan", "2010", "8.8", "N/A"} {
			if !strings.Contains(out, want) {
				t.Errorf("expected %q in table:\n%s", want, out)
			}
		}
	})

	t.Run("MovieDetail omits empty poster", func(t *testing.T) {
		out := p.MovieDetail(&models.Movie{ID: 1, Title: "Inception", Rating: 8.8})
		if strings.Contains(out, "Poster") {
			t.Errorf("expected no poster line, got:\n%s", out)
		}
		if !strings.Contains(out, "8.8") {
			t.Errorf("expected rating, got:\n%s", out)
		}
	})

	t.Run("ReviewsList", func(t *testing.T) {
		out := p.ReviewsList([]models.Review{{ID: 7, Text: "great"}})
		if !strings.Contains(out, "#7") || !strings.Contains(out, "great") {
			t.Errorf("unexpected reviews output %q", out)
		}
		if out := p.ReviewsList(nil); !strings.Contains(out, "No reviews yet.") {
			t.Errorf("unexpected empty output %q", out)
		}
	})
}
