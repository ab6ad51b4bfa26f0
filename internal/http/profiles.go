package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"

	"github.com/gleber2006-sketch/machlog/internal/crypto"
	"github.com/gleber2006-sketch/machlog/internal/model"
	"github.com/gleber2006-sketch/machlog/internal/repository"
)

func (s *Server) handleListProfiles(w http.ResponseWriter, r *http.Request) {
	filter := strings.TrimSpace(r.URL.Query().Get("q"))
	limit := parseLimit(r, 100)

	profiles, err := s.store.ListProfiles(r.Context(), filter, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}

	summaries := make([]profileSummary, 0, len(profiles))
	for _, profile := range profiles {
		summaries = append(summaries, mapProfileSummary(profile))
	}
	writeJSON(w, http.StatusOK, summaries)
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	profileID := chi.URLParam(r, "profileID")
	if profileID == "" {
		writeError(w, http.StatusBadRequest, "missing_profile_id")
		return
	}

	profile, err := s.store.GetProfileByID(r.Context(), profileID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "profile_not_found")
			return
		}
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}

	writeJSON(w, http.StatusOK, mapProfileSummary(profile))
}

type updateProfileRequest struct {
	Email    *string `json:"email,omitempty"`
	Password *string `json:"password,omitempty"`
	FullName *string `json:"full_name,omitempty"`
	Role     *string `json:"role,omitempty"`
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	profileID := chi.URLParam(r, "profileID")
	if profileID == "" {
		writeError(w, http.StatusBadRequest, "missing_profile_id")
		return
	}

	var req updateProfileRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}

	update := repository.ProfileUpdate{}
	if req.Email != nil {
		email := strings.TrimSpace(strings.ToLower(*req.Email))
		if email != "" {
			update.Email = &email
		}
	}
	if req.FullName != nil {
		name := strings.TrimSpace(*req.FullName)
		if name != "" {
			update.FullName = &name
		}
	}
	if req.Role != nil {
		role := model.Role(strings.TrimSpace(strings.ToLower(*req.Role)))
		if !role.Valid() {
			writeError(w, http.StatusBadRequest, "invalid_role")
			return
		}
		update.Role = &role
	}
	if req.Password != nil && strings.TrimSpace(*req.Password) != "" {
		hash, err := crypto.HashPassword(*req.Password)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "password_hash_failed")
			return
		}
		update.PasswordHash = &hash
	}

	profile, err := s.store.UpdateProfile(r.Context(), profileID, update)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "profile_not_found")
			return
		}
		if isUniqueViolation(err) {
			writeError(w, http.StatusConflict, "email_exists")
			return
		}
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}

	writeJSON(w, http.StatusOK, mapProfileSummary(profile))
}

func (s *Server) handleDeleteProfile(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	profileID := chi.URLParam(r, "profileID")
	if profileID == "" {
		writeError(w, http.StatusBadRequest, "missing_profile_id")
		return
	}
	if claims != nil && claims.UserID == profileID {
		writeError(w, http.StatusConflict, "cannot_delete_self")
		return
	}

	hasHistory, err := s.store.ProfileHasHistory(r.Context(), profileID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	if hasHistory {
		writeError(w, http.StatusConflict, "profile_has_history")
		return
	}

	deleted, err := s.store.DeleteProfile(r.Context(), profileID)
	if err != nil {
		if isForeignKeyViolation(err) {
			writeError(w, http.StatusConflict, "profile_has_history")
			return
		}
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "profile_not_found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
