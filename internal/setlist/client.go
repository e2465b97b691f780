// Package setlist talks to the external setlist catalog and turns its
// nested set structures into flat, labeled song sequences.
package setlist

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/concertlog/concertlog/internal/retry"
)

// DefaultPageSize is the catalog's fixed page size. A page with fewer
// entries signals the last page.
const DefaultPageSize = 20

// Client queries the setlist catalog HTTP API. Requests are paced
// through a rate limiter; the 300ms interval is a contract with the
// catalog's rate limits, not a tunable.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	limiter    *rate.Limiter
	retry      retry.Policy
}

// NewClient creates a catalog client. interval is the minimum spacing
// between consecutive requests; timeout bounds each request.
func NewClient(baseURL, apiKey string, interval, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if interval <= 0 {
		interval = 300 * time.Millisecond
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		apiKey:     apiKey,
		limiter:    rate.NewLimiter(rate.Every(interval), 1),
		retry: retry.Policy{
			Attempts: 2,
			Delay:    500 * time.Millisecond,
		},
	}
}

// SetlistPage is one page of catalog search results.
type SetlistPage struct {
	Type         string    `json:"type"`
	ItemsPerPage int       `json:"itemsPerPage"`
	Page         int       `json:"page"`
	Total        int       `json:"total"`
	Setlists     []Setlist `json:"setlist"`
}

// Setlist is a single catalogued performance.
type Setlist struct {
	ID        string    `json:"id"`
	EventDate string    `json:"eventDate"` // DD-MM-YYYY
	Artist    ArtistRef `json:"artist"`
	Venue     VenueRef  `json:"venue"`
	Tour      *TourRef  `json:"tour,omitempty"`
	Sets      SetBlock  `json:"sets"`
}

type ArtistRef struct {
	MBID string `json:"mbid,omitempty"`
	Name string `json:"name"`
}

type VenueRef struct {
	Name string `json:"name"`
	City struct {
		Name    string `json:"name"`
		Country struct {
			Name string `json:"name"`
		} `json:"country"`
	} `json:"city"`
}

type TourRef struct {
	Name string `json:"name"`
}

type SetBlock struct {
	Set []Set `json:"set"`
}

type Set struct {
	Name   string    `json:"name,omitempty"`
	Encore int       `json:"encore,omitempty"`
	Songs  []SetSong `json:"song"`
}

type SetSong struct {
	Name  string     `json:"name"`
	Cover *ArtistRef `json:"cover,omitempty"`
}

// SearchSetlists fetches one page of setlists for an artist and year.
// page is 1-based. Non-200 responses and empty pages come back as an
// empty page with a nil error: no data is not a failure.
func (c *Client) SearchSetlists(ctx context.Context, artist string, year, page int) (*SetlistPage, error) {
	params := url.Values{}
	params.Set("artistName", artist)
	params.Set("year", strconv.Itoa(year))
	params.Set("p", strconv.Itoa(page))

	var result SetlistPage
	status, err := c.getJSON(ctx, "/search/setlists", params, &result)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return &SetlistPage{Page: page}, nil
	}
	return &result, nil
}

// Artist is one entry in an artist name search.
type Artist struct {
	MBID           string `json:"mbid"`
	Name           string `json:"name"`
	SortName       string `json:"sortName,omitempty"`
	Disambiguation string `json:"disambiguation,omitempty"`
}

type artistPage struct {
	Artists []Artist `json:"artist"`
}

// SearchArtists fetches the first page of artist name matches.
func (c *Client) SearchArtists(ctx context.Context, name string) ([]Artist, error) {
	params := url.Values{}
	params.Set("artistName", name)
	params.Set("p", "1")
	params.Set("sort", "relevance")

	var result artistPage
	status, err := c.getJSON(ctx, "/search/artists", params, &result)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, nil
	}
	return result.Artists, nil
}

// getJSON performs a paced GET and decodes the body on 200. Transport
// errors are retried once; HTTP status handling is left to the caller.
func (c *Client) getJSON(ctx context.Context, path string, params url.Values, out any) (int, error) {
	var status int

	err := c.retry.Do(ctx, func() error {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Accept", "application/json")
		if c.apiKey != "" {
			req.Header.Set("x-api-key", c.apiKey)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("catalog request: %w", err)
		}
		defer resp.Body.Close()

		status = resp.StatusCode
		if status != http.StatusOK {
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode catalog response: %w", err)
		}
		return nil
	})

	return status, err
}
