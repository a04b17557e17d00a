package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"wavecrate/core/media"
	"wavecrate/logger"

	"github.com/gorilla/mux"
)

// LoginRequest represents the admin login request body.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginHandler checks admin credentials and issues a session token.
func (h *APIHandler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Username == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Username and password are required")
		return
	}

	if !h.verifier.Verify(req.Username, req.Password) {
		logger.Warn("admin login rejected", logger.String("username", req.Username))
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	token, err := h.tokens.Generate(req.Username)
	if err != nil {
		logger.Error("failed to issue session token", logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	logger.Info("admin logged in", logger.String("username", req.Username))
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Login successful",
		"token":   token,
	})
}

// UploadSongHandler accepts a multipart upload with songName, artistName,
// category, songFile and songImage, and runs it through the upload
// pipeline.
func (h *APIHandler) UploadSongHandler(w http.ResponseWriter, r *http.Request) {
	// Both files are held fully in memory; cap the request at two files
	// plus form overhead before parsing.
	r.Body = http.MaxBytesReader(w, r.Body, 2*h.cfg.MaxUploadBytes+1<<20)

	if err := r.ParseMultipartForm(h.cfg.MaxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "Failed to parse upload form: "+err.Error())
		return
	}

	audio, err := h.readFormFile(r, "songFile")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	image, err := h.readFormFile(r, "songImage")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	track, backupStatus, err := h.media.Upload(r.Context(), media.UploadRequest{
		Name:     r.FormValue("songName"),
		Artist:   r.FormValue("artistName"),
		Category: r.FormValue("category"),
		Audio:    audio,
		Image:    image,
	})
	if err != nil {
		status := http.StatusBadRequest
		if !isValidationError(err) {
			status = http.StatusInternalServerError
		}
		writeError(w, status, err.Error())
		return
	}

	logger.Info("upload handled",
		logger.String("trackId", track.ID),
		logger.String("backup", backupStatus.String()))
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"song":    track,
	})
}

// readFormFile reads one uploaded file fully into memory, enforcing the
// per-file size cap.
func (h *APIHandler) readFormFile(r *http.Request, field string) ([]byte, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		return nil, errors.New(field + " is required")
	}
	defer file.Close()

	if header.Size > h.cfg.MaxUploadBytes {
		return nil, errors.New(field + " exceeds the maximum upload size")
	}
	data, err := io.ReadAll(io.LimitReader(file, h.cfg.MaxUploadBytes+1))
	if err != nil {
		return nil, errors.New("failed to read " + field)
	}
	if int64(len(data)) > h.cfg.MaxUploadBytes {
		return nil, errors.New(field + " exceeds the maximum upload size")
	}
	return data, nil
}

// isValidationError separates missing-field errors (4xx) from storage
// failures (5xx).
func isValidationError(err error) bool {
	var vErr *media.ValidationError
	return errors.As(err, &vErr)
}

// DeleteSongHandler removes a track, its local files, and its backup
// objects.
func (h *APIHandler) DeleteSongHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := h.media.Delete(r.Context(), id); err != nil {
		if errors.Is(err, media.ErrTrackNotFound) {
			writeError(w, http.StatusNotFound, "Song not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

// StatsHandler reports aggregate catalog and counter totals.
// todayUploads is not tracked and is always zero.
func (h *APIHandler) StatsHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.statsPayload())
}

func (h *APIHandler) statsPayload() map[string]interface{} {
	return map[string]interface{}{
		"totalSongs":     h.media.TotalTracks(),
		"totalPlays":     h.counters.Plays(),
		"totalDownloads": h.counters.Downloads(),
		"todayUploads":   0,
	}
}

// RefreshURLsHandler re-issues the signed backup URLs for one track.
func (h *APIHandler) RefreshURLsHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	track, err := h.media.RefreshURLs(r.Context(), id)
	if err != nil {
		if errors.Is(err, media.ErrTrackNotFound) {
			writeError(w, http.StatusNotFound, "Song not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"song":    track,
	})
}
