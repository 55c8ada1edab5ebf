// Package provider describes the streaming providers the application can talk
// to. Each provider contributes a static Config (OAuth endpoints, scopes,
// operational limits) and an Adapter implementing the capability set needed to
// provision playlists. All provider-specific behaviour lives behind the
// Adapter interface; no other package branches on provider identity.
package provider

import (
	"context"
	"errors"

	"golang.org/x/oauth2"
)

var (
	// ErrNotSupported is returned when a provider ID has no registry entry.
	ErrNotSupported = errors.New("provider: not supported")
	// ErrNotConfigured is returned when a registered provider is missing its
	// OAuth client credentials.
	ErrNotConfigured = errors.New("provider: credentials not configured")
	// ErrNoMatch is returned by SearchTrack when the provider's catalog has no
	// result for a song. Callers treat it as a miss, not a failure.
	ErrNoMatch = errors.New("provider: no matching track")
)

// Profile is the subset of a provider account the application uses.
type Profile struct {
	ID          string
	DisplayName string
}

// Playlist identifies a newly created provider playlist together with the
// user-facing URL reported back to the caller.
type Playlist struct {
	ID  string
	URL string
}

// CoverImage is a decoded cover art payload. Base64 carries the image bytes in
// the encoding provider upload endpoints expect.
type CoverImage struct {
	MIMEType string
	Base64   string
}

// Adapter is the per-provider capability set used during login and
// provisioning. Implementations receive the bearer token on every call and
// hold no session state of their own.
type Adapter interface {
	// FetchProfile returns the account behind the token.
	FetchProfile(ctx context.Context, token string) (Profile, error)
	// CreatePlaylist creates an empty private playlist.
	CreatePlaylist(ctx context.Context, token, name, description string) (Playlist, error)
	// SearchTrack resolves a title/artist pair to a provider track ID. It
	// returns ErrNoMatch when the catalog has no result.
	SearchTrack(ctx context.Context, token, title, artist string) (string, error)
	// AddTracks appends track IDs to a playlist in order. Callers must respect
	// the provider's BatchLimit per call.
	AddTracks(ctx context.Context, token, playlistID string, trackIDs []string) error
	// UploadCover replaces the playlist cover image.
	UploadCover(ctx context.Context, token, playlistID string, img CoverImage) error
}

// Config is the immutable description of a provider's OAuth surface and
// operational limits, loaded once at process start.
type Config struct {
	ID           string
	Name         string
	ClientID     string
	ClientSecret string
	Scopes       []string
	Endpoint     oauth2.Endpoint
	// AuthParams are extra authorize-URL parameters some providers require,
	// such as offline access grants.
	AuthParams []oauth2.AuthCodeOption
	// BatchLimit is the maximum number of track IDs accepted by a single
	// AddTracks call. Zero means unlimited.
	BatchLimit int
	// SupportsCover reports whether UploadCover is implemented.
	SupportsCover bool
}

// Provider pairs a Config with its Adapter.
type Provider struct {
	Config
	Adapter Adapter
}

// OAuth builds the oauth2 configuration used for the authorization-code
// exchange. The redirect URL must be identical on the start and callback legs.
func (p *Provider) OAuth(redirectURL string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     p.ClientID,
		ClientSecret: p.ClientSecret,
		RedirectURL:  redirectURL,
		Scopes:       p.Scopes,
		Endpoint:     p.Endpoint,
	}
}

// Registry is a static lookup of supported providers.
type Registry struct {
	providers map[string]*Provider
}

// NewRegistry builds a registry from the given providers. Later entries with a
// duplicate ID replace earlier ones.
func NewRegistry(ps ...*Provider) *Registry {
	r := &Registry{providers: make(map[string]*Provider, len(ps))}
	for _, p := range ps {
		r.providers[p.ID] = p
	}
	return r
}

// Get returns the provider registered under id. ErrNotSupported is returned
// for unknown IDs and ErrNotConfigured when the entry exists but its client
// credentials were absent at startup.
func (r *Registry) Get(id string) (*Provider, error) {
	p, ok := r.providers[id]
	if !ok {
		return nil, ErrNotSupported
	}
	if p.ClientID == "" || p.ClientSecret == "" {
		return nil, ErrNotConfigured
	}
	return p, nil
}
