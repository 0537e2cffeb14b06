package tasks

import (
	"fmt"

	"github.com/desertthunder/moviweb/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or HTTP layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data
}

// Operation phase enumeration
type Phase int

const (
	LookupTitles Phase = iota
	AddMovies
	ExportUsers
)

func (p Phase) String() string {
	switch p {
	case LookupTitles:
		return "lookup_titles"
	case AddMovies:
		return "add_movies"
	case ExportUsers:
		return "export_users"
	default:
		return ""
	}
}

func lookupStartedUpdate(total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   LookupTitles,
		Step:    0,
		Total:   total,
		Message: fmt.Sprintf("Looking up %d titles...", total),
	}
}

func lookupResultUpdate(step, total int, res TitleResult) ProgressUpdate {
	if res.Err != nil {
		return ProgressUpdate{
			Phase:   LookupTitles,
			Step:    step,
			Total:   total,
			Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, res.Title, res.Err),
		}
	}
	return ProgressUpdate{
		Phase:   LookupTitles,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Found: %s (%s)", step, total, res.Metadata.Title, res.Metadata.Year),
		Data:    res.Metadata,
	}
}

func addedMovieUpdate(step, total int, movie *models.Movie) ProgressUpdate {
	return ProgressUpdate{
		Phase:   AddMovies,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ Added %s (ID: %d)", step, total, movie.Title, movie.ID),
		Data:    movie,
	}
}

func addFailedUpdate(step, total int, title string, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   AddMovies,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, title, err),
	}
}

func exportingUserUpdate(step, total int, user *models.User) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportUsers,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Exporting: %s...", step, total, user.Name),
	}
}

func exportCompletedUpdate(step, total int, name string, movies int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportUsers,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s (%d movies)", step, total, name, movies),
	}
}

func exportFailedUpdate(step, total int, name string, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportUsers,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, name, err),
	}
}
