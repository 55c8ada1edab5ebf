package handlers

import (
	"errors"
	"net/http"

	"Feel-The-Beats-Go/pkg/playlist"
	"Feel-The-Beats-Go/pkg/provider"
)

// CreatePlaylist provisions a generated playlist on the caller's streaming
// account. POST /api/playlists.
func (app *Application) CreatePlaylist(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	sess, ok := app.sessionFromRequest(r)
	if !ok {
		respondJSONError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req playlist.Request
	if err := decodeJSON(w, r, &req); err != nil {
		respondJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.PlaylistName == "" {
		respondJSONError(w, http.StatusBadRequest, "playlistName is required")
		return
	}

	res, err := app.Provisioner.Provision(r.Context(), sess, req)
	if err != nil {
		metricProvisions.WithLabelValues(sess.Provider, "failure").Inc()
		switch {
		case errors.Is(err, playlist.ErrCreateFailed):
			respondJSONError(w, http.StatusBadGateway, "failed to create playlist, please try logging in again")
		case errors.Is(err, provider.ErrNotSupported), errors.Is(err, provider.ErrNotConfigured):
			respondJSONError(w, http.StatusBadRequest, "provider not available")
		default:
			log.WithError(err).WithField("provider", sess.Provider).Error("provision playlist")
			respondJSONError(w, http.StatusInternalServerError, "failed to create playlist")
		}
		return
	}

	metricProvisions.WithLabelValues(sess.Provider, "success").Inc()
	metricTracksResolved.WithLabelValues(sess.Provider).Add(float64(res.TracksResolved))
	metricTracksUnresolved.WithLabelValues(sess.Provider).Add(float64(res.TracksTotal - res.TracksResolved))
	respondJSON(w, http.StatusOK, res)
}
