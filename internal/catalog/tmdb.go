// Package catalog fetches movie metadata from the TMDB API.  The backend
// caches each movie in MySQL the first time an admin schedules a show for
// it; this client is only hit on that first reference and for the admin
// now-playing browser.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/quickshow/movie-ticket-booking/internal/model"
)

const baseURL = "https://api.themoviedb.org/3"

// ErrNotConfigured is returned when no TMDB access token was supplied at
// startup.  Handlers translate it into a 503 with a generic message.
var ErrNotConfigured = errors.New("tmdb: access token not configured")

// Client calls TMDB with a v4 read access token.  A zero-value Client (no
// token) returns ErrNotConfigured from every call so environments without
// catalog access fail loudly instead of caching empty records.
type Client struct {
	token string
	http  *http.Client
}

// New returns a Client using the given v4 access token.  The token may be
// empty; the client then rejects every call with ErrNotConfigured.
func New(token string) *Client {
	return &Client{
		token: token,
		http:  &http.Client{Timeout: 30 * time.Second},
	}
}

// Configured reports whether a token was supplied.
func (c *Client) Configured() bool { return c.token != "" }

// NowPlaying returns the raw now-playing list from TMDB for the admin
// show-scheduling page.  The entries are passed through to the client
// unmodified, so they are decoded as generic JSON.
func (c *Client) NowPlaying(ctx context.Context) ([]json.RawMessage, error) {
	var payload struct {
		Results []json.RawMessage `json:"results"`
	}
	if err := c.get(ctx, "/movie/now_playing?language=en-US&page=1", &payload); err != nil {
		return nil, err
	}
	return payload.Results, nil
}

// Movie fetches details and credits for one movie and assembles the cached
// record shape.  movieID is TMDB's numeric identifier as a string.
func (c *Client) Movie(ctx context.Context, movieID string) (*model.Movie, error) {
	if _, err := strconv.ParseUint(movieID, 10, 64); err != nil {
		return nil, fmt.Errorf("tmdb: invalid movie id %q", movieID)
	}
	var details struct {
		Title            string        `json:"title"`
		Overview         string        `json:"overview"`
		PosterPath       string        `json:"poster_path"`
		BackdropPath     string        `json:"backdrop_path"`
		Genres           []model.Genre `json:"genres"`
		ReleaseDate      string        `json:"release_date"`
		OriginalLanguage string        `json:"original_language"`
		Tagline          string        `json:"tagline"`
		VoteAverage      float64       `json:"vote_average"`
		Runtime          uint32        `json:"runtime"`
	}
	if err := c.get(ctx, "/movie/"+movieID+"?language=en-US", &details); err != nil {
		return nil, err
	}
	var credits struct {
		Cast []model.CastMember `json:"cast"`
	}
	if err := c.get(ctx, "/movie/"+movieID+"/credits?language=en-US", &credits); err != nil {
		return nil, err
	}
	return &model.Movie{
		ID:               movieID,
		Title:            details.Title,
		Overview:         details.Overview,
		PosterPath:       details.PosterPath,
		BackdropPath:     details.BackdropPath,
		Genres:           details.Genres,
		Casts:            credits.Cast,
		ReleaseDate:      details.ReleaseDate,
		OriginalLanguage: details.OriginalLanguage,
		Tagline:          details.Tagline,
		VoteAverage:      details.VoteAverage,
		Runtime:          details.Runtime,
	}, nil
}

func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	if c.token == "" {
		return ErrNotConfigured
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("tmdb: request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("tmdb: unexpected status %d for %s", resp.StatusCode, path)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
