// Package tmdb is the HTTP client for The Movie Database, with optional
// OMDB enrichment of movie details.
package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Githaiga22/movie-hub/internal/domain"
)

const (
	DefaultBaseURL      = "https://api.themoviedb.org/3"
	DefaultImageBaseURL = "https://image.tmdb.org/t/p"
	DefaultOMDBBaseURL  = "https://www.omdbapi.com"
	DefaultLanguage     = "en-US"

	defaultTimeout = 15 * time.Second
	maxRetries     = 3
	baseRetryDelay = 500 * time.Millisecond
)

// Options configures a Client. Either APIKey or AccessToken must be set.
type Options struct {
	BaseURL     string
	APIKey      string // v3 key, sent as api_key
	AccessToken string // v4 read token, sent as a bearer token
	Language    string
	Timeout     time.Duration

	OMDBBaseURL string
	OMDBAPIKey  string // empty disables OMDB enrichment
}

// Client implements domain.MetadataClient against the TMDB v3 API
type Client struct {
	baseURL     string
	apiKey      string
	accessToken string
	language    string
	omdbBaseURL string
	omdbAPIKey  string
	httpClient  *http.Client
	logger      *slog.Logger

	// retryDelay is the first backoff step; tests shorten it
	retryDelay time.Duration
}

// NewClient creates a new TMDB API client
func NewClient(opts Options, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.OMDBBaseURL == "" {
		opts.OMDBBaseURL = DefaultOMDBBaseURL
	}
	if opts.Language == "" {
		opts.Language = DefaultLanguage
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	return &Client{
		baseURL:     strings.TrimRight(opts.BaseURL, "/"),
		apiKey:      opts.APIKey,
		accessToken: opts.AccessToken,
		language:    opts.Language,
		omdbBaseURL: strings.TrimRight(opts.OMDBBaseURL, "/"),
		omdbAPIKey:  opts.OMDBAPIKey,
		httpClient: &http.Client{
			Timeout: opts.Timeout,
		},
		logger:     logger,
		retryDelay: baseRetryDelay,
	}
}

var _ domain.MetadataClient = (*Client)(nil)

// doRequest performs a GET against the TMDB API and returns the body.
// 5xx and 429 responses are retried with exponential backoff.
func (c *Client) doRequest(ctx context.Context, path string, query url.Values) ([]byte, error) {
	if query == nil {
		query = url.Values{}
	}
	if c.accessToken == "" && c.apiKey != "" {
		query.Set("api_key", c.apiKey)
	}
	if query.Get("language") == "" && c.language != "" {
		query.Set("language", c.language)
	}
	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, path, query.Encode())

	header := http.Header{}
	header.Set("Accept", "application/json")
	if c.accessToken != "" {
		header.Set("Authorization", "Bearer "+c.accessToken)
	}

	return c.get(ctx, reqURL, path, header)
}

func (c *Client) get(ctx context.Context, reqURL, logPath string, header http.Header) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		if attempt > 0 {
			delay := c.retryDelay * time.Duration(1<<(attempt-1)) // 500ms, 1s, 2s
			c.logger.Debug("retrying request", "attempt", attempt, "delay", delay, "path", logPath)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return nil, fmt.Errorf("creating request: %w", err)
		}
		req.Header = header.Clone()

		c.logger.Debug("metadata request", "path", logPath, "attempt", attempt)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			c.logger.Error("metadata request failed", "path", logPath, "error", err)
			return nil, fmt.Errorf("%w: %v", domain.ErrServerOffline, err)
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("reading response: %w", err)
		}

		switch {
		case resp.StatusCode == http.StatusOK:
			return body, nil
		case resp.StatusCode == http.StatusUnauthorized:
			return nil, domain.ErrAuthFailed
		case resp.StatusCode == http.StatusNotFound:
			return nil, fmt.Errorf("%w: %s", domain.ErrMovieNotFound, statusMessage(body))
		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
			lastErr = fmt.Errorf("%w: status %d: %s", domain.ErrServerOffline, resp.StatusCode, statusMessage(body))
			c.logger.Warn("metadata server error, will retry",
				"status", resp.StatusCode,
				"attempt", attempt,
				"maxRetries", maxRetries,
				"path", logPath,
			)
			continue
		default:
			c.logger.Error("metadata request error", "status", resp.StatusCode, "path", logPath, "body", string(body))
			return nil, fmt.Errorf("unexpected status code %d: %s", resp.StatusCode, statusMessage(body))
		}
	}

	c.logger.Error("metadata request failed after retries", "error", lastErr, "path", logPath)
	return nil, lastErr
}

// statusMessage extracts the TMDB status_message from an error body
func statusMessage(body []byte) string {
	var e ErrorResponse
	if json.Unmarshal(body, &e) == nil && e.StatusMessage != "" {
		return e.StatusMessage
	}
	s := strings.TrimSpace(string(body))
	if len(s) > 200 {
		s = s[:200]
	}
	return s
}

func (c *Client) getPage(ctx context.Context, path string, query url.Values, page int) (*domain.Page, error) {
	if page < 1 {
		page = 1
	}
	query.Set("page", strconv.Itoa(page))

	body, err := c.doRequest(ctx, path, query)
	if err != nil {
		return nil, err
	}

	var resp PageResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	return MapPage(resp), nil
}

func discoverQuery() url.Values {
	q := url.Values{}
	q.Set("include_adult", "false")
	q.Set("include_video", "false")
	q.Set("sort_by", "popularity.desc")
	return q
}

// Trending returns the most popular movies right now
func (c *Client) Trending(ctx context.Context, page int) (*domain.Page, error) {
	return c.getPage(ctx, "/discover/movie", discoverQuery(), page)
}

// Category returns one page of a curated list (now_playing, popular, ...).
// The category is not validated here.
func (c *Client) Category(ctx context.Context, category string, page int) (*domain.Page, error) {
	return c.getPage(ctx, "/movie/"+url.PathEscape(category), url.Values{}, page)
}

// DiscoverGenre returns movies in a genre, most popular first
func (c *Client) DiscoverGenre(ctx context.Context, genreID, page int) (*domain.Page, error) {
	q := discoverQuery()
	q.Set("with_genres", strconv.Itoa(genreID))
	return c.getPage(ctx, "/discover/movie", q, page)
}

// Search returns movies whose title matches query
func (c *Client) Search(ctx context.Context, query string, page int) (*domain.Page, error) {
	q := url.Values{}
	q.Set("query", query)
	q.Set("include_adult", "false")
	return c.getPage(ctx, "/search/movie", q, page)
}

// Genres returns the movie genre list
func (c *Client) Genres(ctx context.Context) ([]domain.Genre, error) {
	body, err := c.doRequest(ctx, "/genre/movie/list", nil)
	if err != nil {
		return nil, err
	}
	var resp GenreListResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	return MapGenres(resp.Genres), nil
}

// Details returns full details for a movie, with cast and, when an OMDB key
// is configured, ratings and awards. OMDB failures are logged and ignored.
func (c *Client) Details(ctx context.Context, movieID int) (*domain.MovieDetails, error) {
	q := url.Values{}
	q.Set("append_to_response", "credits")
	body, err := c.doRequest(ctx, "/movie/"+strconv.Itoa(movieID), q)
	if err != nil {
		return nil, err
	}

	var dto DetailsDTO
	if err := json.Unmarshal(body, &dto); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	details := MapDetails(dto)

	if c.omdbAPIKey != "" && details.IMDbID != "" {
		omdb, err := c.omdb(ctx, details.IMDbID)
		if err != nil {
			c.logger.Warn("omdb lookup failed", "imdbID", details.IMDbID, "error", err)
		} else {
			ApplyOMDB(details, *omdb)
		}
	}
	return details, nil
}

func (c *Client) omdb(ctx context.Context, imdbID string) (*OMDBResponse, error) {
	q := url.Values{}
	q.Set("apikey", c.omdbAPIKey)
	q.Set("i", imdbID)
	q.Set("plot", "short")
	reqURL := fmt.Sprintf("%s/?%s", c.omdbBaseURL, q.Encode())

	header := http.Header{}
	header.Set("Accept", "application/json")
	body, err := c.get(ctx, reqURL, "omdb", header)
	if err != nil {
		return nil, err
	}

	var resp OMDBResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decoding omdb response: %w", err)
	}
	if resp.Response == "False" {
		return nil, errors.New("omdb: " + resp.Error)
	}
	return &resp, nil
}

// Ping checks that the service is reachable and the credentials are accepted
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.doRequest(ctx, "/configuration", nil)
	return err
}

// PosterURL joins an image base URL, size (w92, w185, w500, original) and
// poster path. An empty path yields "".
func PosterURL(base, path, size string) string {
	if path == "" {
		return ""
	}
	if size == "" {
		size = "w500"
	}
	if base == "" {
		base = DefaultImageBaseURL
	}
	return fmt.Sprintf("%s/%s%s", strings.TrimRight(base, "/"), size, path)
}
