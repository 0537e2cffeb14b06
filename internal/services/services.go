// package services defines the [MetadataLookup] interface for movie metadata providers
//
// OMDb
package services

import (
	"context"
	"time"

	"github.com/desertthunder/moviweb/internal/models"
)

// MetadataLookup resolves a free-text title into normalized movie metadata.
type MetadataLookup interface {
	// Lookup returns the best match for title.
	//
	// A title the provider does not know yields [shared.ErrLookupMiss]; a transport or decode
	// problem yields [shared.ErrAPIRequest]. Neither returns a partial record.
	Lookup(ctx context.Context, title string) (*models.MovieMetadata, error)
}

// MetadataCache stores successful lookups keyed by title.
type MetadataCache interface {
	// Get returns the cached record and whether it was present.
	Get(ctx context.Context, title string) (*models.MovieMetadata, bool, error)
	Set(ctx context.Context, title string, meta *models.MovieMetadata, ttl time.Duration) error
}
