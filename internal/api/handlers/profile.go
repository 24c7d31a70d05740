package handlers

import (
	"errors"
	"net/http"

	"github.com/dvloznov/moneyflow/internal/api/middleware"
	"github.com/dvloznov/moneyflow/internal/domain"
	"github.com/dvloznov/moneyflow/internal/store"
	"github.com/dvloznov/moneyflow/internal/validate"
	"github.com/rs/zerolog"
)

type profileResponse struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
}

// ProfileHandler manages the caller's profile, which supplies the name and
// address used in notification emails.
type ProfileHandler struct {
	users store.Users
	log   zerolog.Logger
}

// NewProfileHandler creates a new profile handler.
func NewProfileHandler(users store.Users, log zerolog.Logger) *ProfileHandler {
	return &ProfileHandler{users: users, log: log}
}

// GetProfile handles GET /api/profile
func (h *ProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	owner, err := h.users.GetUser(r.Context(), middleware.UserID(r.Context()))
	if errors.Is(err, store.ErrNotFound) {
		middleware.WriteError(w, http.StatusNotFound, "Profile not found")
		return
	}
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to load profile")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to load profile")
		return
	}
	middleware.WriteJSON(w, http.StatusOK, profileResponse(owner))
}

// PutProfile handles PUT /api/profile
func (h *ProfileHandler) PutProfile(w http.ResponseWriter, r *http.Request) {
	var in validate.ProfileInput
	if !decodeJSON(w, r, &in) {
		return
	}

	owner, err := h.users.UpsertUser(r.Context(), domain.Owner{
		UserID:   middleware.UserID(r.Context()),
		Username: in.Username,
		Email:    in.Email,
	})
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to save profile")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to save profile")
		return
	}
	middleware.WriteJSON(w, http.StatusOK, profileResponse(owner))
}
