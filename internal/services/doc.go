// Package services resolves movie titles into [models.MovieMetadata] through the [MetadataLookup] interface.
//
// # OMDb Implementation
//
// [OMDbService] issues GET {base_url}?apikey={key}&t={title} and maps the response:
//   - Response "True": Title, Year, Director, imdbRating and Poster become a [models.MovieMetadata]
//   - Response "False": [shared.ErrLookupMiss]
//   - transport errors, non-2xx status or undecodable body: [shared.ErrAPIRequest]
//
// Placeholder "N/A" values are stored as empty strings, and an "N/A" rating as 0.
//
// # Rate Limiting & Circuit Breaking
//
// Requests pass through a token bucket ([rate.Limiter]) and a [gobreaker.CircuitBreaker].
// Misses count as successful calls, so only transport failures trip the breaker.
// While open, lookups fail fast with [shared.ErrServiceUnavailable].
//
// # Caching
//
// An optional [MetadataCache] sits in front of the provider. [RedisCache] keys entries by
// normalized title. Cache failures are logged and never fail a lookup.
package services
