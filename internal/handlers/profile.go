package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/lukinoo0/Blazefield/internal/profile"
)

// Queue accepts profile jobs for the single profile worker
type Queue interface {
	Submit(job profile.Job) bool
}

// ProfileHandler serves profile lookups and resets over HTTP
type ProfileHandler struct {
	service *profile.Service
	queue   Queue
	timeout time.Duration
	logger  zerolog.Logger
}

// NewProfileHandler creates a new profile handler. Resets go through queue so
// they are ordered with in-game profile updates.
func NewProfileHandler(service *profile.Service, queue Queue, timeout time.Duration, logger zerolog.Logger) *ProfileHandler {
	return &ProfileHandler{
		service: service,
		queue:   queue,
		timeout: timeout,
		logger:  logger,
	}
}

type profileResponse struct {
	Profile *profile.Profile `json:"profile"`
}

type resetRequest struct {
	ID string `json:"id"`
}

type resetResponse struct {
	OK      bool             `json:"ok"`
	Profile *profile.Profile `json:"profile,omitempty"`
}

// HandleHealth reports liveness
func HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// HandleGetProfile returns the profile for ?id=, or null when unknown
func (h *ProfileHandler) HandleGetProfile(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id := strings.TrimSpace(r.URL.Query().Get("id"))
	if id == "" {
		writeJSON(w, http.StatusOK, profileResponse{})
		return
	}

	p, err := h.service.Get(r.Context(), id)
	if err != nil && !errors.Is(err, profile.ErrNotFound) {
		h.logger.Error().Err(err).Str("profile", id).Msg("Failed to fetch profile")
		http.Error(w, "Failed to fetch profile", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, profileResponse{Profile: p})
}

// HandleResetProfile zeroes the totals of the profile named in the body
func (h *ProfileHandler) HandleResetProfile(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req resetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.ID) == "" {
		writeJSON(w, http.StatusBadRequest, resetResponse{})
		return
	}

	result := make(chan *profile.Profile, 1)
	accepted := h.queue.Submit(profile.Job{
		Op:        profile.OpReset,
		ProfileID: req.ID,
		Done:      func(p *profile.Profile) { result <- p },
	})
	if !accepted {
		http.Error(w, "Profile service busy", http.StatusServiceUnavailable)
		return
	}

	select {
	case p := <-result:
		if p == nil {
			writeJSON(w, http.StatusNotFound, resetResponse{})
			return
		}
		h.logger.Info().Str("profile", p.ID).Msg("Profile reset over HTTP")
		writeJSON(w, http.StatusOK, resetResponse{OK: true, Profile: p})
	case <-time.After(h.timeout):
		http.Error(w, "Profile service timeout", http.StatusGatewayTimeout)
	case <-r.Context().Done():
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
