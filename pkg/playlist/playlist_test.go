package playlist_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"Feel-The-Beats-Go/pkg/generator"
	"Feel-The-Beats-Go/pkg/playlist"
	"Feel-The-Beats-Go/pkg/provider"
	"Feel-The-Beats-Go/pkg/session"
)

// fakeAdapter implements provider.Adapter with scriptable behaviour and call
// recording. SearchTrack may run concurrently so recording is locked.
type fakeAdapter struct {
	mu          sync.Mutex
	createErr   error
	searchFn    func(title, artist string) (string, error)
	addErr      func(call int) error
	coverErr    error
	searchCalls int
	addCalls    [][]string
	coverCalls  int
	createdName string
	createdDesc string
}

func (f *fakeAdapter) FetchProfile(ctx context.Context, token string) (provider.Profile, error) {
	return provider.Profile{ID: "u1", DisplayName: "Alex"}, nil
}

func (f *fakeAdapter) CreatePlaylist(ctx context.Context, token, name, description string) (provider.Playlist, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return provider.Playlist{}, f.createErr
	}
	f.createdName = name
	f.createdDesc = description
	return provider.Playlist{ID: "pl1", URL: "https://provider.example/pl1"}, nil
}

func (f *fakeAdapter) SearchTrack(ctx context.Context, token, title, artist string) (string, error) {
	f.mu.Lock()
	f.searchCalls++
	f.mu.Unlock()
	if f.searchFn == nil {
		return "id:" + title, nil
	}
	return f.searchFn(title, artist)
}

func (f *fakeAdapter) AddTracks(ctx context.Context, token, playlistID string, trackIDs []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	call := len(f.addCalls)
	f.addCalls = append(f.addCalls, append([]string(nil), trackIDs...))
	if f.addErr != nil {
		return f.addErr(call)
	}
	return nil
}

func (f *fakeAdapter) UploadCover(ctx context.Context, token, playlistID string, img provider.CoverImage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.coverCalls++
	return f.coverErr
}

func newProvisioner(fake *fakeAdapter, batchLimit int, supportsCover bool) (*playlist.Provisioner, session.Session) {
	prov := &provider.Provider{
		Config: provider.Config{
			ID:            "fake",
			Name:          "Fake",
			ClientID:      "id",
			ClientSecret:  "secret",
			BatchLimit:    batchLimit,
			SupportsCover: supportsCover,
		},
		Adapter: fake,
	}
	p := playlist.NewProvisioner(provider.NewRegistry(prov))
	p.Limiter = nil // no pacing in tests
	return p, session.Session{Provider: "fake", AccessToken: "tok"}
}

func songs(n int) []generator.Song {
	out := make([]generator.Song, n)
	for i := range out {
		out[i] = generator.Song{Title: fmt.Sprintf("Song %d", i), Artist: fmt.Sprintf("Artist %d", i)}
	}
	return out
}

func TestProvisionResolvesEvenIndexedSongsInOrder(t *testing.T) {
	fake := &fakeAdapter{
		searchFn: func(title, artist string) (string, error) {
			var i int
			fmt.Sscanf(title, "Song %d", &i)
			if i%2 != 0 {
				return "", provider.ErrNoMatch
			}
			return fmt.Sprintf("id-%d", i), nil
		},
	}
	p, sess := newProvisioner(fake, 0, false)
	res, err := p.Provision(context.Background(), sess, playlist.Request{PlaylistName: "Mix", Songs: songs(10)})
	if err != nil {
		t.Fatal(err)
	}
	if res.TracksTotal != 10 || res.TracksResolved != 5 || res.TracksAttached != 5 {
		t.Errorf("counts = %+v", res)
	}
	if len(fake.addCalls) != 1 {
		t.Fatalf("add calls = %d", len(fake.addCalls))
	}
	want := []string{"id-0", "id-2", "id-4", "id-6", "id-8"}
	got := fake.addCalls[0]
	if len(got) != len(want) {
		t.Fatalf("attached = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("attached[%d] = %q, want %q", i, got[i], want[i])
		}
	}
	if len(res.Warnings) == 0 || !strings.Contains(res.Warnings[0], "5 of 10") {
		t.Errorf("warnings = %v", res.Warnings)
	}
}

func TestProvisionCreateFailureIsFatalAndFirst(t *testing.T) {
	fake := &fakeAdapter{createErr: errors.New("401 unauthorized")}
	p, sess := newProvisioner(fake, 0, true)
	_, err := p.Provision(context.Background(), sess, playlist.Request{PlaylistName: "Mix", Songs: songs(3)})
	if !errors.Is(err, playlist.ErrCreateFailed) {
		t.Fatalf("err = %v, want ErrCreateFailed", err)
	}
	if fake.searchCalls != 0 || len(fake.addCalls) != 0 || fake.coverCalls != 0 {
		t.Errorf("expected no calls after create failure: search=%d add=%d cover=%d", fake.searchCalls, len(fake.addCalls), fake.coverCalls)
	}
}

func TestProvisionAppendsAttribution(t *testing.T) {
	fake := &fakeAdapter{}
	p, sess := newProvisioner(fake, 0, false)
	if _, err := p.Provision(context.Background(), sess, playlist.Request{PlaylistName: "Mix", Description: "chill"}); err != nil {
		t.Fatal(err)
	}
	if fake.createdDesc != "chill | Created by Feel The Beats AI" {
		t.Errorf("description = %q", fake.createdDesc)
	}
}

func TestProvisionEmptyResolvedSetStillSucceeds(t *testing.T) {
	fake := &fakeAdapter{
		searchFn: func(title, artist string) (string, error) { return "", provider.ErrNoMatch },
	}
	p, sess := newProvisioner(fake, 0, false)
	res, err := p.Provision(context.Background(), sess, playlist.Request{PlaylistName: "Mix", Songs: songs(4)})
	if err != nil {
		t.Fatal(err)
	}
	if res.URL == "" || res.TracksResolved != 0 {
		t.Errorf("result = %+v", res)
	}
	if len(fake.addCalls) != 0 {
		t.Errorf("attach called for empty resolved set")
	}
}

func TestProvisionChunksPreserveOrder(t *testing.T) {
	fake := &fakeAdapter{}
	p, sess := newProvisioner(fake, 2, false)
	res, err := p.Provision(context.Background(), sess, playlist.Request{PlaylistName: "Mix", Songs: songs(5)})
	if err != nil {
		t.Fatal(err)
	}
	if res.TracksAttached != 5 {
		t.Errorf("attached = %d", res.TracksAttached)
	}
	if len(fake.addCalls) != 3 {
		t.Fatalf("chunk count = %d, want 3", len(fake.addCalls))
	}
	var flat []string
	for _, c := range fake.addCalls {
		if len(c) > 2 {
			t.Errorf("chunk larger than batch limit: %v", c)
		}
		flat = append(flat, c...)
	}
	for i, id := range flat {
		if id != fmt.Sprintf("id:Song %d", i) {
			t.Errorf("flat[%d] = %q", i, id)
		}
	}
}

func TestProvisionChunkFailureKeepsPriorChunks(t *testing.T) {
	fake := &fakeAdapter{
		addErr: func(call int) error {
			if call == 1 {
				return errors.New("rate limited")
			}
			return nil
		},
	}
	p, sess := newProvisioner(fake, 2, false)
	res, err := p.Provision(context.Background(), sess, playlist.Request{PlaylistName: "Mix", Songs: songs(6)})
	if err != nil {
		t.Fatal(err)
	}
	if res.TracksAttached != 2 {
		t.Errorf("attached = %d, want 2 (first chunk only)", res.TracksAttached)
	}
	if len(res.Warnings) == 0 {
		t.Error("expected a warning for the failed chunk")
	}
	// No chunk after the failed one, so relative order can never break.
	if len(fake.addCalls) != 2 {
		t.Errorf("add calls = %d, want 2", len(fake.addCalls))
	}
}

func TestProvisionCoverFailureIsNonFatal(t *testing.T) {
	fake := &fakeAdapter{coverErr: errors.New("image too large")}
	p, sess := newProvisioner(fake, 0, true)
	req := playlist.Request{
		PlaylistName: "Mix",
		Songs:        songs(2),
		CoverArt:     "data:image/jpeg;base64,aGVsbG8=",
	}
	res, err := p.Provision(context.Background(), sess, req)
	if err != nil {
		t.Fatal(err)
	}
	if res.CoverUploaded {
		t.Error("cover reported uploaded despite failure")
	}
	found := false
	for _, w := range res.Warnings {
		if strings.Contains(w, "cover") {
			found = true
		}
	}
	if !found {
		t.Errorf("warnings = %v, want cover warning", res.Warnings)
	}
}

func TestProvisionCoverUploaded(t *testing.T) {
	fake := &fakeAdapter{}
	p, sess := newProvisioner(fake, 0, true)
	req := playlist.Request{PlaylistName: "Mix", CoverArt: "data:image/jpeg;base64,aGVsbG8="}
	res, err := p.Provision(context.Background(), sess, req)
	if err != nil {
		t.Fatal(err)
	}
	if !res.CoverUploaded || fake.coverCalls != 1 {
		t.Errorf("cover not uploaded: %+v calls=%d", res, fake.coverCalls)
	}
}

func TestProvisionCoverSkippedForUnsupportedEncoding(t *testing.T) {
	fake := &fakeAdapter{}
	p, sess := newProvisioner(fake, 0, true)
	req := playlist.Request{PlaylistName: "Mix", CoverArt: "data:image/png;base64,aGVsbG8="}
	res, err := p.Provision(context.Background(), sess, req)
	if err != nil {
		t.Fatal(err)
	}
	if fake.coverCalls != 0 {
		t.Error("upload attempted for unsupported encoding")
	}
	if len(res.Warnings) == 0 {
		t.Error("expected a skip warning")
	}
}

func TestProvisionCoverSkippedWhenProviderLacksSupport(t *testing.T) {
	fake := &fakeAdapter{}
	p, sess := newProvisioner(fake, 1, false)
	req := playlist.Request{PlaylistName: "Mix", CoverArt: "data:image/jpeg;base64,aGVsbG8="}
	res, err := p.Provision(context.Background(), sess, req)
	if err != nil {
		t.Fatal(err)
	}
	if fake.coverCalls != 0 {
		t.Error("upload attempted against provider without cover support")
	}
	if len(res.Warnings) == 0 {
		t.Error("expected a skip warning")
	}
}

func TestProvisionUnknownProvider(t *testing.T) {
	p := playlist.NewProvisioner(provider.NewRegistry())
	_, err := p.Provision(context.Background(), session.Session{Provider: "tidal"}, playlist.Request{PlaylistName: "Mix"})
	if !errors.Is(err, provider.ErrNotSupported) {
		t.Errorf("err = %v, want ErrNotSupported", err)
	}
}

func TestProvisionRainyFocusScenario(t *testing.T) {
	fake := &fakeAdapter{
		searchFn: func(title, artist string) (string, error) {
			if title == "Weightless" && artist == "Marconi Union" {
				return "id-weightless", nil
			}
			return "", provider.ErrNoMatch
		},
	}
	p, sess := newProvisioner(fake, 100, false)
	req := playlist.Request{
		PlaylistName: "Rainy Focus",
		Songs: []generator.Song{
			{Title: "Weightless", Artist: "Marconi Union"},
			{Title: "Nonexistent Song X", Artist: "Nobody"},
		},
	}
	res, err := p.Provision(context.Background(), sess, req)
	if err != nil {
		t.Fatal(err)
	}
	if res.TracksTotal != 2 || res.TracksResolved != 1 || res.TracksAttached != 1 {
		t.Errorf("counts = %+v", res)
	}
	if len(fake.addCalls) != 1 || len(fake.addCalls[0]) != 1 || fake.addCalls[0][0] != "id-weightless" {
		t.Errorf("attached = %v", fake.addCalls)
	}
	if res.URL != "https://provider.example/pl1" {
		t.Errorf("url = %q", res.URL)
	}
}
