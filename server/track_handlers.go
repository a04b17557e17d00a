package server

import (
	"errors"
	"net/http"

	"wavecrate/core/media"

	"github.com/gorilla/mux"
)

// GetSongsHandler lists the catalog, optionally filtered by category.
// Listing triggers the lazy signed-URL refresh for records nearing the
// 7-day URL expiry.
func (h *APIHandler) GetSongsHandler(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")
	tracks := h.media.List(r.Context(), category)
	writeJSON(w, http.StatusOK, tracks)
}

// PlayHandler counts a play. The id is deliberately not validated; the
// counter is global.
func (h *APIHandler) PlayHandler(w http.ResponseWriter, r *http.Request) {
	h.media.RecordPlay()
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

// DownloadHandler counts a download and resolves the primary audio URL.
func (h *APIHandler) DownloadHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	downloadURL, err := h.media.Download(id)
	if err != nil {
		if errors.Is(err, media.ErrTrackNotFound) {
			writeError(w, http.StatusNotFound, "Song not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":     true,
		"downloadUrl": downloadURL,
	})
}
