// Package playlist turns a generated track list into a real playlist on a
// streaming provider. Provisioning is a fixed sequence: create the playlist,
// resolve every song to a provider track ID, attach the resolved tracks in
// order, then optionally upload cover art. Only the create step is fatal;
// track misses, attach failures and cover failures are absorbed into the
// result as warnings and counts so callers can see how complete the playlist
// is without the call failing.
package playlist

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"Feel-The-Beats-Go/pkg/generator"
	"Feel-The-Beats-Go/pkg/provider"
	"Feel-The-Beats-Go/pkg/session"
)

var log = logrus.StandardLogger()

// ErrCreateFailed indicates the provider rejected the create-playlist call.
// Nothing was provisioned; the likely cause is an expired or revoked token.
var ErrCreateFailed = errors.New("playlist: create failed")

// attributionSuffix is appended to every playlist description so provisioned
// playlists identify their origin.
const attributionSuffix = " | Created by Feel The Beats AI"

// jpegDataURLPrefix is the only cover art encoding providers accept here.
const jpegDataURLPrefix = "data:image/jpeg;base64,"

const (
	defaultWorkers = 4
	// defaultSearchRate bounds search calls per second across the worker pool.
	defaultSearchRate = rate.Limit(10)
)

// Request describes one playlist to provision. It is supplied per call and
// never persisted.
type Request struct {
	PlaylistName string           `json:"playlistName"`
	Description  string           `json:"description"`
	Songs        []generator.Song `json:"songs"`
	// CoverArt is an optional base64 data URL; only JPEG payloads are
	// eligible for upload.
	CoverArt string `json:"coverArt,omitempty"`
}

// Result reports the outcome of a provisioning call. The counts and warnings
// expose partial success: a playlist may exist with fewer tracks than
// requested or without its cover.
type Result struct {
	URL            string   `json:"url"`
	TracksTotal    int      `json:"tracksTotal"`
	TracksResolved int      `json:"tracksResolved"`
	TracksAttached int      `json:"tracksAttached"`
	CoverUploaded  bool     `json:"coverUploaded"`
	Warnings       []string `json:"warnings,omitempty"`
}

// TrackMatch pairs an input song with the provider track ID it resolved to.
// Unresolved matches are dropped before the attach step.
type TrackMatch struct {
	Song     generator.Song
	ID       string
	Resolved bool
}

// Provisioner drives the provisioning sequence against whichever provider the
// session was issued for.
type Provisioner struct {
	Registry *provider.Registry
	// Workers bounds the concurrent track searches per call.
	Workers int
	// Limiter paces search calls across workers.
	Limiter *rate.Limiter
}

// NewProvisioner returns a Provisioner with the default fan-out and search
// rate limit.
func NewProvisioner(reg *provider.Registry) *Provisioner {
	return &Provisioner{
		Registry: reg,
		Workers:  defaultWorkers,
		Limiter:  rate.NewLimiter(defaultSearchRate, 1),
	}
}

// Provision creates the playlist described by req on the session's provider.
// It returns ErrCreateFailed (wrapped) when the playlist itself could not be
// created; every later failure is absorbed into the Result. Retrying a failed
// call provisions a brand new playlist.
func (p *Provisioner) Provision(ctx context.Context, sess session.Session, req Request) (*Result, error) {
	prov, err := p.Registry.Get(sess.Provider)
	if err != nil {
		return nil, err
	}
	token := sess.AccessToken

	created, err := prov.Adapter.CreatePlaylist(ctx, token, req.PlaylistName, req.Description+attributionSuffix)
	if err != nil {
		log.WithError(err).WithField("provider", prov.ID).Error("create playlist failed")
		return nil, fmt.Errorf("%w: %v", ErrCreateFailed, err)
	}

	matches := p.resolveTracks(ctx, prov, token, req.Songs)
	ids := make([]string, 0, len(matches))
	for _, m := range matches {
		if m.Resolved {
			ids = append(ids, m.ID)
		}
	}

	result := &Result{
		URL:            created.URL,
		TracksTotal:    len(req.Songs),
		TracksResolved: len(ids),
	}
	if missed := result.TracksTotal - result.TracksResolved; missed > 0 {
		result.Warnings = append(result.Warnings, fmt.Sprintf("%d of %d tracks could not be found", missed, result.TracksTotal))
	}

	p.attachTracks(ctx, prov, token, created.ID, ids, result)
	p.uploadCover(ctx, prov, token, created.ID, req.CoverArt, result)

	log.WithFields(logrus.Fields{
		"provider": prov.ID,
		"resolved": result.TracksResolved,
		"total":    result.TracksTotal,
		"attached": result.TracksAttached,
	}).Info("playlist provisioned")
	return result, nil
}

// resolveTracks searches for every song with a bounded worker pool and
// reassembles the matches in input order. A miss or search error marks the
// slot unresolved; it never aborts the call.
func (p *Provisioner) resolveTracks(ctx context.Context, prov *provider.Provider, token string, songs []generator.Song) []TrackMatch {
	matches := make([]TrackMatch, len(songs))
	if len(songs) == 0 {
		return matches
	}

	workers := p.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}
	if workers > len(songs) {
		workers = len(songs)
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				matches[i] = p.resolveOne(ctx, prov, token, songs[i])
			}
		}()
	}
	for i := range songs {
		jobs <- i
	}
	close(jobs)
	wg.Wait()
	return matches
}

func (p *Provisioner) resolveOne(ctx context.Context, prov *provider.Provider, token string, song generator.Song) TrackMatch {
	m := TrackMatch{Song: song}
	if p.Limiter != nil {
		if err := p.Limiter.Wait(ctx); err != nil {
			return m
		}
	}
	id, err := prov.Adapter.SearchTrack(ctx, token, song.Title, song.Artist)
	if err != nil {
		if !errors.Is(err, provider.ErrNoMatch) {
			log.WithError(err).WithField("title", song.Title).Warn("track search failed")
		}
		return m
	}
	m.ID = id
	m.Resolved = true
	return m
}

// attachTracks appends the resolved IDs in chunks sized to the provider's
// batch limit. A chunk failure stops further chunks so the playlist never
// contains tracks out of their original relative order; tracks attached by
// earlier chunks stay in place.
func (p *Provisioner) attachTracks(ctx context.Context, prov *provider.Provider, token, playlistID string, ids []string, result *Result) {
	if len(ids) == 0 {
		return
	}
	limit := prov.BatchLimit
	if limit <= 0 {
		limit = len(ids)
	}
	for start := 0; start < len(ids); start += limit {
		end := start + limit
		if end > len(ids) {
			end = len(ids)
		}
		if err := prov.Adapter.AddTracks(ctx, token, playlistID, ids[start:end]); err != nil {
			log.WithError(err).WithField("provider", prov.ID).Warn("add tracks failed")
			result.Warnings = append(result.Warnings, fmt.Sprintf("only %d of %d found tracks could be added", result.TracksAttached, len(ids)))
			return
		}
		result.TracksAttached = end
	}
}

// uploadCover attaches the cover image when one was supplied in a supported
// encoding. Failure is a warning only; the playlist and tracks already exist.
func (p *Provisioner) uploadCover(ctx context.Context, prov *provider.Provider, token, playlistID, coverArt string, result *Result) {
	if coverArt == "" {
		return
	}
	if !strings.HasPrefix(coverArt, jpegDataURLPrefix) {
		result.Warnings = append(result.Warnings, "cover art skipped: unsupported image encoding")
		return
	}
	if !prov.SupportsCover {
		result.Warnings = append(result.Warnings, "cover art skipped: not supported by "+prov.Name)
		return
	}
	img := provider.CoverImage{
		MIMEType: "image/jpeg",
		Base64:   strings.TrimPrefix(coverArt, jpegDataURLPrefix),
	}
	if err := prov.Adapter.UploadCover(ctx, token, playlistID, img); err != nil {
		log.WithError(err).WithField("provider", prov.ID).Warn("cover upload failed")
		result.Warnings = append(result.Warnings, "cover upload failed")
		return
	}
	result.CoverUploaded = true
}
