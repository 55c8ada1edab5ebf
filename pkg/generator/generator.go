// Package generator defines the boundary to the external mood-to-tracklist
// service. Given a free-text mood it produces a playlist name, description and
// an ordered list of songs, optionally with generated cover art. The service
// itself runs elsewhere; this package only declares the types and interface the
// rest of the application depends on.
package generator

import "context"

// Song is a single generated track reference. Title and artist are free text
// and are resolved to provider-native identifiers during provisioning.
type Song struct {
	Title      string `json:"title"`
	Artist     string `json:"artist"`
	MoodReason string `json:"moodReason,omitempty"`
	Duration   string `json:"duration,omitempty"`
}

// Playlist is the full output of a generation run. CoverArt, when present, is
// a base64 data URL (the generator emits JPEG).
type Playlist struct {
	PlaylistName string `json:"playlistName"`
	Description  string `json:"description"`
	Songs        []Song `json:"songs"`
	CoverArt     string `json:"coverArt,omitempty"`
}

// Generator produces a playlist for a mood description.
type Generator interface {
	Generate(ctx context.Context, mood string) (*Playlist, error)
}
