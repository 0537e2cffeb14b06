package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/moviweb/internal/models"
	"github.com/desertthunder/moviweb/internal/shared"
	"github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"
)

const (
	defaultOMDbBaseURL     = "http://www.omdbapi.com/"
	defaultOMDbTimeout     = 10 * time.Second
	defaultBreakerFailures = 5
	defaultBreakerTimeout  = 30 * time.Second
	notAvailable           = "N/A"
	maxResponseBytes       = 1 << 20
)

// OMDbResponse is the subset of the OMDb title response we read.
type OMDbResponse struct {
	Title      string `json:"Title"`
	Year       string `json:"Year"`
	Director   string `json:"Director"`
	Poster     string `json:"Poster"`
	IMDbRating string `json:"imdbRating"`
	Response   string `json:"Response"`
	Error      string `json:"Error"`
}

// Metadata converts a successful response into a [models.MovieMetadata].
func (r OMDbResponse) Metadata() *models.MovieMetadata {
	return &models.MovieMetadata{
		Title:    strings.TrimSpace(r.Title),
		Year:     available(r.Year),
		Director: available(r.Director),
		Rating:   ParseRating(r.IMDbRating),
		Poster:   available(r.Poster),
	}
}

// ParseRating converts an OMDb rating string such as "8.8" to a number. "N/A" and unparseable values become 0.
func ParseRating(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || v < 0 || v > 10 {
		return 0
	}
	return v
}

func available(s string) string {
	s = strings.TrimSpace(s)
	if s == notAvailable {
		return ""
	}
	return s
}

// OMDbOptions configures an [OMDbService].
type OMDbOptions struct {
	BaseURL         string
	APIKey          string
	Timeout         time.Duration
	RateLimit       float64
	BreakerFailures uint32
	BreakerTimeout  time.Duration
	Cache           MetadataCache
	CacheTTL        time.Duration
	HTTPClient      *http.Client
	Logger          *log.Logger
}

// OMDbOptionsFromConfig maps the [omdb] and [cache] config sections to options. The cache itself is
// supplied by the caller since it owns the Redis connection.
func OMDbOptionsFromConfig(cfg *shared.Config) OMDbOptions {
	return OMDbOptions{
		BaseURL:         cfg.OMDb.BaseURL,
		APIKey:          cfg.OMDb.APIKey,
		Timeout:         cfg.OMDb.Timeout(),
		RateLimit:       cfg.OMDb.RateLimit,
		BreakerFailures: cfg.OMDb.BreakerFailures,
		BreakerTimeout:  time.Duration(cfg.OMDb.BreakerTimeoutSeconds) * time.Second,
		CacheTTL:        cfg.Cache.TTL(),
	}
}

// OMDbService implements [MetadataLookup] against the OMDb API.
type OMDbService struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
	breaker    *gobreaker.CircuitBreaker[*models.MovieMetadata]
	cache      MetadataCache
	cacheTTL   time.Duration
	logger     *log.Logger
}

// NewOMDbService creates an OMDb client. The API key is required.
func NewOMDbService(opts OMDbOptions) (*OMDbService, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, shared.ErrMissingAPIKey
	}
	if opts.BaseURL == "" {
		opts.BaseURL = defaultOMDbBaseURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultOMDbTimeout
	}
	if opts.BreakerFailures == 0 {
		opts.BreakerFailures = defaultBreakerFailures
	}
	if opts.BreakerTimeout <= 0 {
		opts.BreakerTimeout = defaultBreakerTimeout
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}

	client := &http.Client{}
	if opts.HTTPClient != nil {
		c := *opts.HTTPClient
		client = &c
	}
	client.Timeout = opts.Timeout

	limit := rate.Inf
	if opts.RateLimit > 0 {
		limit = rate.Limit(opts.RateLimit)
	}

	logger := shared.WithLogger(opts.Logger, "service", "omdb")
	s := &OMDbService{
		baseURL:    opts.BaseURL,
		apiKey:     opts.APIKey,
		httpClient: client,
		limiter:    rate.NewLimiter(limit, 1),
		cache:      opts.Cache,
		cacheTTL:   opts.CacheTTL,
		logger:     logger,
	}

	failures := opts.BreakerFailures
	s.breaker = gobreaker.NewCircuitBreaker[*models.MovieMetadata](gobreaker.Settings{
		Name:        "omdb",
		MaxRequests: 1,
		Timeout:     opts.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, shared.ErrLookupMiss) || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
		},
	})

	return s, nil
}

// Name returns the service name.
func (s *OMDbService) Name() string {
	return "OMDb"
}

// BreakerState reports the circuit breaker state ("closed", "half-open", "open").
func (s *OMDbService) BreakerState() string {
	return s.breaker.State().String()
}

// Lookup resolves title via the cache, then OMDb.
func (s *OMDbService) Lookup(ctx context.Context, title string) (*models.MovieMetadata, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", shared.ErrInvalidInput)
	}

	if meta := s.cached(ctx, title); meta != nil {
		return meta, nil
	}

	meta, err := s.breaker.Execute(func() (*models.MovieMetadata, error) {
		return s.fetch(ctx, title)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%w: omdb circuit breaker is %s", shared.ErrServiceUnavailable, s.BreakerState())
	}
	if err != nil {
		return nil, err
	}

	s.store(ctx, title, meta)
	return meta, nil
}

func (s *OMDbService) fetch(ctx context.Context, title string) (*models.MovieMetadata, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: rate limiter: %w", shared.ErrAPIRequest, err)
	}

	params := url.Values{}
	params.Set("apikey", s.apiKey)
	params.Set("t", title)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %w", shared.ErrAPIRequest, err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := s.httpClient.Do(req)
	if err != nil {
		s.logger.Error("lookup request failed", "title", title, "error", err)
		return nil, fmt.Errorf("%w: request failed: %w", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		s.logger.Error("lookup returned error status", "title", title, "status", resp.StatusCode)
		return nil, fmt.Errorf("%w: omdb API error: status %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %w", shared.ErrAPIRequest, err)
	}

	var result OMDbResponse
	if err := shared.UnmarshalJSON(body, &result); err != nil {
		return nil, fmt.Errorf("%w: failed to decode response: %w", shared.ErrAPIRequest, err)
	}

	switch result.Response {
	case "True":
		meta := result.Metadata()
		s.logger.Debug("lookup resolved", "title", title, "match", meta.Title, "elapsed", time.Since(start))
		return meta, nil
	case "False":
		s.logger.Debug("lookup missed", "title", title, "reason", result.Error)
		return nil, fmt.Errorf("%w: %q", shared.ErrLookupMiss, title)
	default:
		return nil, fmt.Errorf("%w: unexpected Response value %q", shared.ErrAPIRequest, result.Response)
	}
}

func (s *OMDbService) cached(ctx context.Context, title string) *models.MovieMetadata {
	if s.cache == nil {
		return nil
	}

	meta, ok, err := s.cache.Get(ctx, title)
	if err != nil {
		s.logger.Warn("failed to read lookup cache", "title", title, "error", err)
		return nil
	}
	if !ok {
		return nil
	}

	s.logger.Debug("lookup served from cache", "title", title)
	return meta
}

func (s *OMDbService) store(ctx context.Context, title string, meta *models.MovieMetadata) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, title, meta, s.cacheTTL); err != nil {
		s.logger.Warn("failed to write lookup cache", "title", title, "error", err)
	}
}
