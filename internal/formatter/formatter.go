// package formatter provides functions to export a user's movie list to various formats (CSV, Markdown, plain text, JSON)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/moviweb/internal/models"
	"github.com/desertthunder/moviweb/internal/shared"
)

// Format is an export file format.
type Format string

const (
	CSV      Format = "csv"
	Markdown Format = "markdown"
	Text     Format = "txt"
	JSON     Format = "json"
)

// ParseFormat accepts a format name or a common alias ("md", "text").
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "csv":
		return CSV, nil
	case "markdown", "md":
		return Markdown, nil
	case "txt", "text":
		return Text, nil
	case "json", "":
		return JSON, nil
	default:
		return "", fmt.Errorf("%w: unknown export format %q", shared.ErrInvalidArgument, name)
	}
}

// Extension returns the file extension used for f, without the dot.
func (f Format) Extension() string {
	if f == Markdown {
		return "md"
	}
	return string(f)
}

// FormatRating renders a rating with one decimal, or "N/A" when unrated.
func FormatRating(r float64) string {
	if r <= 0 {
		return "N/A"
	}
	return strconv.FormatFloat(r, 'f', 1, 64)
}

// ExportToCSV converts a user's movies to CSV format with columns: movie_id, title, director, year, rating, poster
func ExportToCSV(user *models.User) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"movie_id", "title", "director", "year", "rating", "poster"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, movie := range user.Movies {
		record := []string{
			strconv.Itoa(movie.ID),
			movie.Title,
			movie.Director,
			movie.Year,
			strconv.FormatFloat(movie.Rating, 'f', -1, 64),
			movie.Poster,
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts a user's movies to a Markdown table with poster links
func ExportToMarkdown(user *models.User) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# %s's Movies\n\n", user.Name))
	buf.WriteString(fmt.Sprintf("**Movies**: %d\n\n", len(user.Movies)))

	if len(user.Movies) == 0 {
		buf.WriteString("_No movies yet._\n")
		return buf.Bytes(), nil
	}

	buf.WriteString("| # | Title | Year | Director | Rating | Poster |\n")
	buf.WriteString("|---|-------|------|----------|--------|--------|\n")
	for _, movie := range user.Movies {
		poster := ""
		if movie.Poster != "" {
			poster = fmt.Sprintf("[poster](%s)", movie.Poster)
		}
		buf.WriteString(fmt.Sprintf("| %d | %s | %s | %s | %s | %s |\n",
			movie.ID,
			escapeCell(movie.Title),
			escapeCell(movie.Year),
			escapeCell(movie.Director),
			FormatRating(movie.Rating),
			poster,
		))
	}

	return buf.Bytes(), nil
}

// ExportToText converts a user's movies to plain text format
func ExportToText(user *models.User) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("User: %s (ID: %d)\n", user.Name, user.ID))
	buf.WriteString(fmt.Sprintf("Movies: %d\n\n", len(user.Movies)))

	for i, movie := range user.Movies {
		line := fmt.Sprintf("%d. %s", i+1, movie.Title)
		if movie.Year != "" {
			line += fmt.Sprintf(" (%s)", movie.Year)
		}
		if movie.Director != "" {
			line += " - " + movie.Director
		}
		buf.WriteString(fmt.Sprintf("%s [%s]\n", line, FormatRating(movie.Rating)))
	}

	return buf.Bytes(), nil
}

// ExportToJSON renders the user in the same shape the flat-file store uses.
func ExportToJSON(user *models.User) ([]byte, error) {
	return shared.MarshalJSON(user, true)
}

// Export renders user in format f.
func Export(user *models.User, f Format) ([]byte, error) {
	switch f {
	case CSV:
		return ExportToCSV(user)
	case Markdown:
		return ExportToMarkdown(user)
	case Text:
		return ExportToText(user)
	case JSON:
		return ExportToJSON(user)
	default:
		return nil, fmt.Errorf("%w: unknown export format %q", shared.ErrInvalidArgument, f)
	}
}

// DefaultFilename returns user_{id}_movies.{ext}.
func DefaultFilename(user *models.User, f Format) string {
	return fmt.Sprintf("user_%d_movies.%s", user.ID, f.Extension())
}

// WriteExport exports a user's movies to path, creating parent directories as needed.
//
// Defaults to [DefaultFilename] in the working directory.
func WriteExport(user *models.User, f Format, path string) (string, error) {
	if path == "" {
		path = DefaultFilename(user, f)
	}

	data, err := Export(user, f)
	if err != nil {
		return "", fmt.Errorf("failed to generate %s: %w", f, err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("failed to create directory: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s file: %w", f, err)
	}

	return path, nil
}

// ManifestEntry describes one exported user.
type ManifestEntry struct {
	UserID   int    `json:"user_id"`
	UserName string `json:"user_name"`
	Movies   int    `json:"movies"`
	File     string `json:"file,omitempty"`
	Error    string `json:"error,omitempty"`
}

// Manifest summarizes a bulk export.
type Manifest struct {
	Format     Format          `json:"format"`
	ExportedAt time.Time       `json:"exported_at"`
	Total      int             `json:"total"`
	Successful int             `json:"successful"`
	Failed     int             `json:"failed"`
	Entries    []ManifestEntry `json:"entries"`
}

// WriteManifest writes m as indented JSON to path.
func WriteManifest(m *Manifest, path string) error {
	data, err := shared.MarshalJSON(m, true)
	if err != nil {
		return fmt.Errorf("failed to generate manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
