// Package youtube implements the provider adapter for the YouTube Data API,
// presented to users as YouTube Music. Playlist items can only be inserted one
// at a time, so the registry entry advertises a batch limit of one; cover
// upload is not part of the API and is reported as unsupported.
//
// Network calls go through an injectable http.Client and base URLs so tests
// can substitute a local server.
package youtube

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"golang.org/x/oauth2"

	"Feel-The-Beats-Go/pkg/provider"
)

// ID is the registry identifier for YouTube Music.
const ID = "youtube"

const (
	// DefaultBaseURL is the YouTube Data API root.
	DefaultBaseURL = "https://www.googleapis.com/youtube/v3"
	// DefaultProfileURL returns the Google account profile for the token.
	DefaultProfileURL = "https://www.googleapis.com/oauth2/v1/userinfo"

	authURL  = "https://accounts.google.com/o/oauth2/v2/auth"
	tokenURL = "https://oauth2.googleapis.com/token"
)

// Client calls the YouTube Data API. The zero value uses the production API
// and http.DefaultClient.
type Client struct {
	BaseURL    string
	ProfileURL string
	HTTP       *http.Client
}

var _ provider.Adapter = (*Client)(nil)

// NewProvider returns the registry entry for YouTube Music. Offline access and
// a forced consent prompt are requested so a refresh token is issued.
func NewProvider(clientID, clientSecret string) *provider.Provider {
	return &provider.Provider{
		Config: provider.Config{
			ID:           ID,
			Name:         "YouTube Music",
			ClientID:     clientID,
			ClientSecret: clientSecret,
			Scopes: []string{
				"https://www.googleapis.com/auth/youtube.force-ssl",
				"https://www.googleapis.com/auth/userinfo.profile",
			},
			Endpoint: oauth2.Endpoint{AuthURL: authURL, TokenURL: tokenURL},
			AuthParams: []oauth2.AuthCodeOption{
				oauth2.AccessTypeOffline,
				oauth2.SetAuthURLParam("prompt", "consent"),
			},
			BatchLimit:    1,
			SupportsCover: false,
		},
		Adapter: &Client{},
	}
}

func (c *Client) base() string {
	if c.BaseURL != "" {
		return c.BaseURL
	}
	return DefaultBaseURL
}

func (c *Client) profileURL() string {
	if c.ProfileURL != "" {
		return c.ProfileURL
	}
	return DefaultProfileURL
}

func (c *Client) httpClient() *http.Client {
	if c.HTTP != nil {
		return c.HTTP
	}
	return http.DefaultClient
}

func (c *Client) do(ctx context.Context, token, method, u string, body, result any) error {
	var rd *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(b)
	} else {
		rd = bytes.NewReader(nil)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, rd)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.httpClient().Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("youtube: %s %s: %s", method, req.URL.Path, resp.Status)
	}
	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("youtube: decode response: %w", err)
		}
	}
	return nil
}

// FetchProfile returns the Google account name behind the token.
func (c *Client) FetchProfile(ctx context.Context, token string) (provider.Profile, error) {
	var info struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	if err := c.do(ctx, token, http.MethodGet, c.profileURL(), nil, &info); err != nil {
		return provider.Profile{}, err
	}
	return provider.Profile{ID: info.ID, DisplayName: info.Name}, nil
}

// CreatePlaylist creates a private playlist. The returned URL points at the
// YouTube Music surface rather than plain YouTube.
func (c *Client) CreatePlaylist(ctx context.Context, token, name, description string) (provider.Playlist, error) {
	body := map[string]any{
		"snippet": map[string]string{"title": name, "description": description},
		"status":  map[string]string{"privacyStatus": "private"},
	}
	var created struct {
		ID string `json:"id"`
	}
	u := c.base() + "/playlists?part=snippet,status"
	if err := c.do(ctx, token, http.MethodPost, u, body, &created); err != nil {
		return provider.Playlist{}, err
	}
	return provider.Playlist{
		ID:  created.ID,
		URL: "https://music.youtube.com/playlist?list=" + created.ID,
	}, nil
}

// SearchTrack resolves a title/artist pair to a video ID using a plain-text
// search with a single-result limit.
func (c *Client) SearchTrack(ctx context.Context, token, title, artist string) (string, error) {
	u := c.base() + "/search?part=id&type=video&maxResults=1&q=" + url.QueryEscape(title+" "+artist)
	var res struct {
		Items []struct {
			ID struct {
				VideoID string `json:"videoId"`
			} `json:"id"`
		} `json:"items"`
	}
	if err := c.do(ctx, token, http.MethodGet, u, nil, &res); err != nil {
		return "", err
	}
	if len(res.Items) == 0 {
		return "", provider.ErrNoMatch
	}
	return res.Items[0].ID.VideoID, nil
}

// AddTracks inserts the video IDs into the playlist one item per call, in
// order. The API has no bulk insert; a failure aborts the remaining inserts so
// relative order is never broken.
func (c *Client) AddTracks(ctx context.Context, token, playlistID string, trackIDs []string) error {
	u := c.base() + "/playlistItems?part=snippet"
	for _, id := range trackIDs {
		body := map[string]any{
			"snippet": map[string]any{
				"playlistId": playlistID,
				"resourceId": map[string]string{"kind": "youtube#video", "videoId": id},
			},
		}
		if err := c.do(ctx, token, http.MethodPost, u, body, nil); err != nil {
			return fmt.Errorf("insert video %s: %w", id, err)
		}
	}
	return nil
}

// UploadCover is not supported by the YouTube Data API for playlists.
func (c *Client) UploadCover(ctx context.Context, token, playlistID string, img provider.CoverImage) error {
	return errors.New("youtube: playlist cover upload not supported")
}
