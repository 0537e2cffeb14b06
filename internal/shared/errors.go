package shared

import "fmt"

var (
	// Configuration errors
	ErrInvalidConfig = fmt.Errorf("invalid configuration")
	ErrMissingAPIKey = fmt.Errorf("missing OMDb API key")

	// Data access errors
	ErrNotFound       = fmt.Errorf("not found")
	ErrUserNotFound   = fmt.Errorf("user %w", ErrNotFound)
	ErrMovieNotFound  = fmt.Errorf("movie %w", ErrNotFound)
	ErrReviewNotFound = fmt.Errorf("review %w", ErrNotFound)
	ErrStorage        = fmt.Errorf("storage failure")
	ErrNotSupported   = fmt.Errorf("operation not supported by backend")

	// Metadata lookup errors
	ErrLookupMiss         = fmt.Errorf("no matching movie in metadata service")
	ErrAPIRequest         = fmt.Errorf("API request failed")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)
