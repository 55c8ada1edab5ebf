// Package artwork looks up song artwork through the iTunes Search API so the
// presentation layer can show thumbnails without talking to Apple directly.
// Results are cached in memory per artist/title pair; lookups that fail for
// any reason return an empty URL rather than an error since artwork is purely
// decorative.
package artwork

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"sync"
)

// DefaultBaseURL is the iTunes Search API endpoint.
const DefaultBaseURL = "https://itunes.apple.com/search"

// Client performs artwork lookups. The zero value is not usable; construct
// with New.
type Client struct {
	BaseURL string
	HTTP    *http.Client

	mu    sync.Mutex
	cache map[string]string
}

// New returns a Client with an empty cache using the public iTunes API.
func New() *Client {
	return &Client{cache: make(map[string]string)}
}

func (c *Client) base() string {
	if c.BaseURL != "" {
		return c.BaseURL
	}
	return DefaultBaseURL
}

func (c *Client) httpClient() *http.Client {
	if c.HTTP != nil {
		return c.HTTP
	}
	return http.DefaultClient
}

// Lookup returns a 100x100 artwork URL for the song, or an empty string when
// nothing was found or the lookup failed. Successful results are cached so
// repeated requests for the same song skip the network.
func (c *Client) Lookup(ctx context.Context, artist, title string) string {
	if artist == "" || title == "" {
		return ""
	}
	key := strings.ToLower(artist) + "-" + strings.ToLower(title)

	c.mu.Lock()
	cached, ok := c.cache[key]
	c.mu.Unlock()
	if ok {
		return cached
	}

	params := url.Values{
		"term":   {artist + " " + title},
		"entity": {"song"},
		"limit":  {"1"},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base()+"?"+params.Encode(), nil)
	if err != nil {
		return ""
	}
	resp, err := c.httpClient().Do(req)
	if err != nil {
		return ""
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return ""
	}
	var body struct {
		Results []struct {
			ArtworkURL100 string `json:"artworkUrl100"`
		} `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return ""
	}
	if len(body.Results) == 0 || body.Results[0].ArtworkURL100 == "" {
		return ""
	}
	u := body.Results[0].ArtworkURL100

	c.mu.Lock()
	c.cache[key] = u
	c.mu.Unlock()
	return u
}
