package tmdb

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Githaiga22/movie-hub/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc, opts Options) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	opts.BaseURL = srv.URL
	if opts.OMDBBaseURL == "" {
		opts.OMDBBaseURL = srv.URL + "/omdb"
	}
	c := NewClient(opts, slog.New(slog.NewTextHandler(io.Discard, nil)))
	c.retryDelay = time.Millisecond
	return c
}

func TestClient_TrendingUsesDiscoverByPopularity(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/discover/movie", r.URL.Path)
		assert.Equal(t, "popularity.desc", r.URL.Query().Get("sort_by"))
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		assert.Equal(t, "k3y", r.URL.Query().Get("api_key"))
		assert.Equal(t, "en-US", r.URL.Query().Get("language"))
		w.Write([]byte(`{"page":2,"total_pages":7,"total_results":140,"results":[
			{"id":550,"title":"Fight Club","poster_path":"/p.jpg","release_date":"1999-10-15","vote_average":8.4},
			{"id":551,"title":"No Poster","poster_path":null,"release_date":null,"vote_average":0}]}`))
	}, Options{APIKey: "k3y"})

	page, err := c.Trending(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, 2, page.Number)
	assert.Equal(t, 7, page.TotalPages)
	assert.True(t, page.HasMore())
	require.Len(t, page.Results, 2)
	assert.Equal(t, domain.Movie{ID: 550, Title: "Fight Club", PosterPath: "/p.jpg", ReleaseDate: "1999-10-15", VoteAverage: 8.4}, page.Results[0])
	assert.Empty(t, page.Results[1].PosterPath)
}

func TestClient_BearerTokenReplacesAPIKey(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.Empty(t, r.URL.Query().Get("api_key"))
		assert.Equal(t, "/movie/top_rated", r.URL.Path)
		w.Write([]byte(`{"page":1,"total_pages":1,"results":[]}`))
	}, Options{APIKey: "k3y", AccessToken: "tok"})

	page, err := c.Category(context.Background(), "top_rated", 1)
	require.NoError(t, err)
	assert.False(t, page.HasMore())
}

func TestClient_SearchAndGenreQueries(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/search/movie":
			assert.Equal(t, "the matrix", r.URL.Query().Get("query"))
		case "/discover/movie":
			assert.Equal(t, "28", r.URL.Query().Get("with_genres"))
		case "/genre/movie/list":
			w.Write([]byte(`{"genres":[{"id":28,"name":"Action"},{"id":35,"name":"Comedy"}]}`))
			return
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`{"page":1,"total_pages":1,"results":[{"id":603,"title":"The Matrix"}]}`))
	}, Options{APIKey: "k"})
	ctx := context.Background()

	page, err := c.Search(ctx, "the matrix", 1)
	require.NoError(t, err)
	assert.Equal(t, 603, page.Results[0].ID)

	_, err = c.DiscoverGenre(ctx, 28, 1)
	require.NoError(t, err)

	genres, err := c.Genres(ctx)
	require.NoError(t, err)
	assert.Equal(t, []domain.Genre{{ID: 28, Name: "Action"}, {ID: 35, Name: "Comedy"}}, genres)
}

func TestClient_StatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   error
	}{
		{"unauthorized", http.StatusUnauthorized, domain.ErrAuthFailed},
		{"not found", http.StatusNotFound, domain.ErrMovieNotFound},
		{"server error", http.StatusBadGateway, domain.ErrServerOffline},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(`{"status_code":7,"status_message":"nope","success":false}`))
			}, Options{APIKey: "k"})

			_, err := c.Details(context.Background(), 1)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestClient_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"page":1,"total_pages":1,"results":[]}`))
	}, Options{APIKey: "k"})

	_, err := c.Trending(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load())
}

func TestClient_GivesUpAfterMaxRetries(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}, Options{APIKey: "k"})

	_, err := c.Trending(context.Background(), 1)
	assert.ErrorIs(t, err, domain.ErrServerOffline)
	assert.Equal(t, int32(maxRetries+1), calls.Load())
}

func TestClient_UnreachableServer(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	c := NewClient(Options{BaseURL: srv.URL, APIKey: "k"}, nil)

	_, err := c.Genres(context.Background())
	assert.ErrorIs(t, err, domain.ErrServerOffline)
}

const detailsBody = `{"id":603,"title":"The Matrix","imdb_id":"tt0133093","overview":"Neo.","runtime":136,
	"genres":[{"id":28,"name":"Action"}],
	"credits":{"cast":[{"id":6384,"name":"Keanu Reeves","character":"Neo","profile_path":null}]}}`

func TestClient_DetailsMergesOMDB(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/movie/603":
			assert.Equal(t, "credits", r.URL.Query().Get("append_to_response"))
			w.Write([]byte(detailsBody))
		case "/omdb/":
			assert.Equal(t, "tt0133093", r.URL.Query().Get("i"))
			assert.Equal(t, "om", r.URL.Query().Get("apikey"))
			w.Write([]byte(`{"Rated":"R","Awards":"Won 4 Oscars.","Plot":"N/A","Response":"True",
				"Ratings":[{"Source":"Internet Movie Database","Value":"8.7/10"},{"Source":"Metacritic","Value":"N/A"}]}`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}, Options{APIKey: "k", OMDBAPIKey: "om"})

	d, err := c.Details(context.Background(), 603)
	require.NoError(t, err)
	assert.Equal(t, "The Matrix", d.Title)
	assert.Equal(t, "2h 16m", d.FormattedRuntime())
	require.Len(t, d.Cast, 1)
	assert.Equal(t, "Neo", d.Cast[0].Character)
	assert.Equal(t, "R", d.Rated)
	assert.Empty(t, d.Plot, "N/A is dropped")
	assert.Equal(t, []domain.Rating{{Source: "Internet Movie Database", Value: "8.7/10"}}, d.Ratings)
}

func TestClient_DetailsSurvivesOMDBFailure(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/movie/603" {
			w.Write([]byte(detailsBody))
			return
		}
		w.Write([]byte(`{"Response":"False","Error":"Invalid API key!"}`))
	}, Options{APIKey: "k", OMDBAPIKey: "bad"})

	d, err := c.Details(context.Background(), 603)
	require.NoError(t, err)
	assert.Equal(t, "tt0133093", d.IMDbID)
	assert.False(t, d.HasRatings())
}

func TestClient_ContextCancelled(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("request should not be sent")
	}, Options{APIKey: "k"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.Search(ctx, "x", 1)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPosterURL(t *testing.T) {
	assert.Equal(t, "https://image.tmdb.org/t/p/w185/abc.jpg", PosterURL("", "/abc.jpg", "w185"))
	assert.Equal(t, "https://img.example/w500/abc.jpg", PosterURL("https://img.example/", "/abc.jpg", ""))
	assert.Empty(t, PosterURL(DefaultImageBaseURL, "", "w185"))
}
