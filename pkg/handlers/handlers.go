// Package handlers contains the HTTP handlers for Feel-The-Beats-Go. The
// server is stateless: every authenticated request carries an encrypted
// session cookie produced by the OAuth callback, and no per-user state
// survives between requests. Handlers receive their dependencies through the
// Application struct so tests can substitute fakes.
package handlers

import (
	"context"
	"net/http"

	"github.com/sirupsen/logrus"

	"Feel-The-Beats-Go/pkg/artwork"
	"Feel-The-Beats-Go/pkg/db"
	"Feel-The-Beats-Go/pkg/playlist"
	"Feel-The-Beats-Go/pkg/provider"
	"Feel-The-Beats-Go/pkg/session"
)

var log = logrus.StandardLogger()

// Provisioner is the subset of the playlist provisioner used by handlers,
// declared here so tests can replace it.
type Provisioner interface {
	Provision(ctx context.Context, sess session.Session, req playlist.Request) (*playlist.Result, error)
}

// Application bundles the dependencies shared by all handlers.
type Application struct {
	Registry    *provider.Registry
	Sessions    *session.Codec
	Provisioner Provisioner
	DB          *db.DB
	Artwork     *artwork.Client

	// SignKey signs the short-lived OAuth state cookie.
	SignKey []byte
	// AppURL, when non-empty, is the canonical external base address for
	// callback URLs.
	AppURL string
	// Production forces secure cookies and HTTPS callback URLs.
	Production bool
}

// Health reports liveness for load balancers.
func (app *Application) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
