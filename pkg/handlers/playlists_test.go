package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"Feel-The-Beats-Go/pkg/handlers"
	"Feel-The-Beats-Go/pkg/playlist"
	"Feel-The-Beats-Go/pkg/session"
)

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body %q: %v", rr.Body.String(), err)
	}
	return body
}

type fakeProvisioner struct {
	result *playlist.Result
	err    error

	gotSession session.Session
	gotRequest playlist.Request
	calls      int
}

func (f *fakeProvisioner) Provision(ctx context.Context, sess session.Session, req playlist.Request) (*playlist.Result, error) {
	f.calls++
	f.gotSession = sess
	f.gotRequest = req
	return f.result, f.err
}

func sessionCookie(t *testing.T, app *handlers.Application, sess session.Session) *http.Cookie {
	t.Helper()
	blob, err := app.Sessions.Encode(sess)
	if err != nil {
		t.Fatal(err)
	}
	return &http.Cookie{Name: "ftb_session", Value: blob}
}

func TestCreatePlaylistRequiresSession(t *testing.T) {
	app := newTestApp(t, "https://accounts.example/token", &fakeAdapter{})
	prov := &fakeProvisioner{}
	app.Provisioner = prov

	body := strings.NewReader(`{"playlistName":"Rainy Focus","songs":[]}`)
	rr := httptest.NewRecorder()
	app.CreatePlaylist(rr, httptest.NewRequest(http.MethodPost, "/api/playlists", body))

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rr.Code)
	}
	if prov.calls != 0 {
		t.Errorf("provisioner called %d times without a session", prov.calls)
	}
}

func TestCreatePlaylistSuccess(t *testing.T) {
	app := newTestApp(t, "https://accounts.example/token", &fakeAdapter{})
	prov := &fakeProvisioner{result: &playlist.Result{
		URL:            "https://open.spotify.com/playlist/p1",
		TracksTotal:    2,
		TracksResolved: 2,
		TracksAttached: 2,
	}}
	app.Provisioner = prov

	req := httptest.NewRequest(http.MethodPost, "/api/playlists", strings.NewReader(
		`{"playlistName":"Rainy Focus","description":"calm","songs":[{"title":"Weightless","artist":"Marconi Union"},{"title":"Outro","artist":"M83"}]}`))
	req.AddCookie(sessionCookie(t, app, session.Session{Provider: "spotify", AccessToken: "tok"}))
	rr := httptest.NewRecorder()
	app.CreatePlaylist(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body)
	}
	body := decodeBody(t, rr)
	if body["url"] != "https://open.spotify.com/playlist/p1" || body["tracksAttached"] != float64(2) {
		t.Errorf("body = %v", body)
	}
	if prov.gotSession.AccessToken != "tok" || prov.gotRequest.PlaylistName != "Rainy Focus" {
		t.Errorf("provisioner got session %+v request %+v", prov.gotSession, prov.gotRequest)
	}
	if len(prov.gotRequest.Songs) != 2 || prov.gotRequest.Songs[1].Artist != "M83" {
		t.Errorf("songs = %+v", prov.gotRequest.Songs)
	}
}

func TestCreatePlaylistCreateFailed(t *testing.T) {
	app := newTestApp(t, "https://accounts.example/token", &fakeAdapter{})
	app.Provisioner = &fakeProvisioner{err: playlist.ErrCreateFailed}

	req := httptest.NewRequest(http.MethodPost, "/api/playlists", strings.NewReader(`{"playlistName":"Mix"}`))
	req.AddCookie(sessionCookie(t, app, session.Session{Provider: "spotify", AccessToken: "tok"}))
	rr := httptest.NewRecorder()
	app.CreatePlaylist(rr, req)

	if rr.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", rr.Code)
	}
	if msg := decodeBody(t, rr)["error"]; !strings.Contains(msg.(string), "logging in again") {
		t.Errorf("error message = %v", msg)
	}
}

func TestCreatePlaylistUnexpectedError(t *testing.T) {
	app := newTestApp(t, "https://accounts.example/token", &fakeAdapter{})
	app.Provisioner = &fakeProvisioner{err: errors.New("boom")}

	req := httptest.NewRequest(http.MethodPost, "/api/playlists", strings.NewReader(`{"playlistName":"Mix"}`))
	req.AddCookie(sessionCookie(t, app, session.Session{Provider: "spotify", AccessToken: "tok"}))
	rr := httptest.NewRecorder()
	app.CreatePlaylist(rr, req)

	if rr.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rr.Code)
	}
}

func TestCreatePlaylistValidation(t *testing.T) {
	app := newTestApp(t, "https://accounts.example/token", &fakeAdapter{})
	prov := &fakeProvisioner{}
	app.Provisioner = prov
	cookie := sessionCookie(t, app, session.Session{Provider: "spotify", AccessToken: "tok"})

	for name, body := range map[string]string{
		"missing name":   `{"description":"calm"}`,
		"unknown field":  `{"playlistName":"Mix","mood":"rainy"}`,
		"malformed json": `{"playlistName":`,
	} {
		req := httptest.NewRequest(http.MethodPost, "/api/playlists", strings.NewReader(body))
		req.AddCookie(cookie)
		rr := httptest.NewRecorder()
		app.CreatePlaylist(rr, req)
		if rr.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", name, rr.Code)
		}
	}
	if prov.calls != 0 {
		t.Errorf("provisioner called %d times for invalid input", prov.calls)
	}
}

func TestCreatePlaylistMethodNotAllowed(t *testing.T) {
	app := newTestApp(t, "https://accounts.example/token", &fakeAdapter{})
	rr := httptest.NewRecorder()
	app.CreatePlaylist(rr, httptest.NewRequest(http.MethodGet, "/api/playlists", nil))
	if rr.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rr.Code)
	}
}
