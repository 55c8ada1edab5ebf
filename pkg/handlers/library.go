package handlers

import (
	"database/sql"
	"errors"
	"net/http"
	"strings"

	"Feel-The-Beats-Go/pkg/db"
	"Feel-The-Beats-Go/pkg/generator"
)

// Library handles POST (save) and GET (list) on /api/library.
func (app *Application) Library(w http.ResponseWriter, r *http.Request) {
	if app.DB == nil {
		respondJSONError(w, http.StatusServiceUnavailable, "library not configured")
		return
	}
	switch r.Method {
	case http.MethodPost:
		app.saveLibraryPlaylist(w, r)
	case http.MethodGet:
		app.listLibraryPlaylists(w, r)
	default:
		respondJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (app *Application) saveLibraryPlaylist(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID   string             `json:"userId"`
		Mood     string             `json:"mood"`
		Platform string             `json:"platform"`
		Playlist generator.Playlist `json:"playlist"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		respondJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.UserID == "" || req.Playlist.PlaylistName == "" {
		respondJSONError(w, http.StatusBadRequest, "userId and playlist name are required")
		return
	}
	rec, err := app.DB.SavePlaylist(r.Context(), req.UserID, req.Mood, req.Platform, req.Playlist)
	if err != nil {
		log.WithError(err).Error("save library playlist")
		respondJSONError(w, http.StatusInternalServerError, "failed to save playlist")
		return
	}
	respondJSON(w, http.StatusCreated, rec)
}

func (app *Application) listLibraryPlaylists(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user")
	if userID == "" {
		respondJSONError(w, http.StatusBadRequest, "user query parameter is required")
		return
	}
	list, err := app.DB.ListPlaylists(r.Context(), userID)
	if err != nil {
		log.WithError(err).Error("list library playlists")
		respondJSONError(w, http.StatusInternalServerError, "failed to list playlists")
		return
	}
	if list == nil {
		list = []db.SavedPlaylist{}
	}
	respondJSON(w, http.StatusOK, list)
}

// DeleteLibraryPlaylist handles DELETE /api/library/{id}?user={userID}.
func (app *Application) DeleteLibraryPlaylist(w http.ResponseWriter, r *http.Request) {
	if app.DB == nil {
		respondJSONError(w, http.StatusServiceUnavailable, "library not configured")
		return
	}
	if r.Method != http.MethodDelete {
		respondJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	id := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/library/"), "/")
	userID := r.URL.Query().Get("user")
	if id == "" || userID == "" {
		respondJSONError(w, http.StatusBadRequest, "playlist id and user are required")
		return
	}
	switch err := app.DB.DeletePlaylist(r.Context(), id, userID); {
	case errors.Is(err, sql.ErrNoRows):
		respondJSONError(w, http.StatusNotFound, "playlist not found")
	case err != nil:
		log.WithError(err).Error("delete library playlist")
		respondJSONError(w, http.StatusInternalServerError, "failed to delete playlist")
	default:
		w.WriteHeader(http.StatusNoContent)
	}
}
