// Package spotify implements the provider adapter for the Spotify Web API.
// Only the endpoints required for playlist provisioning are supported: profile
// lookup, playlist creation, track search, batched track insertion and JPEG
// cover upload.
//
// Network calls go through an injectable http.Client and base URL so tests can
// substitute a local server.
package spotify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	libspotify "github.com/zmb3/spotify"
	"golang.org/x/oauth2"

	"Feel-The-Beats-Go/pkg/provider"
)

// ID is the registry identifier for Spotify.
const ID = "spotify"

// DefaultBaseURL is the Spotify Web API root.
const DefaultBaseURL = "https://api.spotify.com/v1"

// maxBatch is the Spotify limit on track URIs per add-tracks call.
const maxBatch = 100

// Client calls the Spotify Web API. The zero value uses the production API and
// http.DefaultClient.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

var _ provider.Adapter = (*Client)(nil)

// NewProvider returns the registry entry for Spotify. Endpoint and scope
// values come from the official client library.
func NewProvider(clientID, clientSecret string) *provider.Provider {
	return &provider.Provider{
		Config: provider.Config{
			ID:           ID,
			Name:         "Spotify",
			ClientID:     clientID,
			ClientSecret: clientSecret,
			Scopes: []string{
				libspotify.ScopePlaylistModifyPublic,
				libspotify.ScopePlaylistModifyPrivate,
				libspotify.ScopeUserReadPrivate,
				libspotify.ScopeImageUpload,
			},
			Endpoint:      oauth2.Endpoint{AuthURL: libspotify.AuthURL, TokenURL: libspotify.TokenURL},
			BatchLimit:    maxBatch,
			SupportsCover: true,
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

func (c *Client) httpClient() *http.Client {
	if c.HTTP != nil {
		return c.HTTP
	}
	return http.DefaultClient
}

// do performs an authenticated JSON request against the API and decodes the
// response into result when non-nil.
func (c *Client) do(ctx context.Context, token, method, path string, body, result any) error {
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
	req, err := http.NewRequestWithContext(ctx, method, c.base()+path, rd)
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
		return fmt.Errorf("spotify: %s %s: %s", method, path, resp.Status)
	}
	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("spotify: decode %s response: %w", path, err)
		}
	}
	return nil
}

// FetchProfile returns the account behind the token using the /me endpoint.
func (c *Client) FetchProfile(ctx context.Context, token string) (provider.Profile, error) {
	var me struct {
		ID          string `json:"id"`
		DisplayName string `json:"display_name"`
	}
	if err := c.do(ctx, token, http.MethodGet, "/me", nil, &me); err != nil {
		return provider.Profile{}, err
	}
	return provider.Profile{ID: me.ID, DisplayName: me.DisplayName}, nil
}

// CreatePlaylist creates a private playlist owned by the token's user. The
// owning user ID is looked up first because the create endpoint is scoped to
// a user path.
func (c *Client) CreatePlaylist(ctx context.Context, token, name, description string) (provider.Playlist, error) {
	me, err := c.FetchProfile(ctx, token)
	if err != nil {
		return provider.Playlist{}, err
	}
	body := map[string]any{
		"name":        name,
		"description": description,
		"public":      false,
	}
	var created struct {
		ID           string `json:"id"`
		ExternalURLs struct {
			Spotify string `json:"spotify"`
		} `json:"external_urls"`
	}
	path := "/users/" + url.PathEscape(me.ID) + "/playlists"
	if err := c.do(ctx, token, http.MethodPost, path, body, &created); err != nil {
		return provider.Playlist{}, err
	}
	return provider.Playlist{ID: created.ID, URL: created.ExternalURLs.Spotify}, nil
}

// SearchTrack resolves a title/artist pair to a track URI using a fielded
// search query with a single-result limit.
func (c *Client) SearchTrack(ctx context.Context, token, title, artist string) (string, error) {
	q := fmt.Sprintf("track:%s artist:%s", title, artist)
	path := "/search?q=" + url.QueryEscape(q) + "&type=track&limit=1"
	var res struct {
		Tracks struct {
			Items []struct {
				URI string `json:"uri"`
			} `json:"items"`
		} `json:"tracks"`
	}
	if err := c.do(ctx, token, http.MethodGet, path, nil, &res); err != nil {
		return "", err
	}
	if len(res.Tracks.Items) == 0 {
		return "", provider.ErrNoMatch
	}
	return res.Tracks.Items[0].URI, nil
}

// AddTracks appends up to maxBatch track URIs to the playlist.
func (c *Client) AddTracks(ctx context.Context, token, playlistID string, trackIDs []string) error {
	if len(trackIDs) == 0 {
		return nil
	}
	if len(trackIDs) > maxBatch {
		return fmt.Errorf("spotify: at most %d tracks per call, got %d", maxBatch, len(trackIDs))
	}
	path := "/playlists/" + url.PathEscape(playlistID) + "/tracks"
	return c.do(ctx, token, http.MethodPost, path, map[string]any{"uris": trackIDs}, nil)
}

// UploadCover replaces the playlist cover. The endpoint accepts only base64
// encoded JPEG data as the raw request body.
func (c *Client) UploadCover(ctx context.Context, token, playlistID string, img provider.CoverImage) error {
	if img.MIMEType != "image/jpeg" {
		return fmt.Errorf("spotify: unsupported cover type %q", img.MIMEType)
	}
	path := "/playlists/" + url.PathEscape(playlistID) + "/images"
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.base()+path, strings.NewReader(img.Base64))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "image/jpeg")
	resp, err := c.httpClient().Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("spotify: upload cover: %s", resp.Status)
	}
	return nil
}
