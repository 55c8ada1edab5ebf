package handlers

import "net/http"

// ArtworkLookup proxies song artwork searches for the frontend.
// GET /api/artwork?artist={artist}&title={title}.
func (app *Application) ArtworkLookup(w http.ResponseWriter, r *http.Request) {
	artist := r.URL.Query().Get("artist")
	title := r.URL.Query().Get("title")
	if artist == "" || title == "" {
		respondJSONError(w, http.StatusBadRequest, "artist and title query parameters are required")
		return
	}
	var u string
	if app.Artwork != nil {
		u = app.Artwork.Lookup(r.Context(), artist, title)
	}
	respondJSON(w, http.StatusOK, map[string]string{"artworkUrl": u})
}
