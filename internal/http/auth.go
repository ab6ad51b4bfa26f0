package http

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/gleber2006-sketch/machlog/internal/auth"
	"github.com/gleber2006-sketch/machlog/internal/crypto"
	"github.com/gleber2006-sketch/machlog/internal/model"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	AccessToken  string         `json:"access_token"`
	RefreshToken string         `json:"refresh_token"`
	Profile      profileSummary `json:"profile"`
}

type profileSummary struct {
	ID        string  `json:"id"`
	Role      string  `json:"role"`
	FullName  *string `json:"full_name"`
	Email     string  `json:"email"`
	CreatedAt string  `json:"created_at"`
}

func mapProfileSummary(profile model.Profile) profileSummary {
	return profileSummary{
		ID:        profile.ID,
		Role:      string(profile.Role),
		FullName:  profile.FullName,
		Email:     profile.Email,
		CreatedAt: profile.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "missing_credentials")
		return
	}

	profile, err := s.store.GetProfileByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusUnauthorized, "invalid_credentials")
			return
		}
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}

	if err := crypto.CheckPassword(profile.PasswordHash, req.Password); err != nil {
		writeError(w, http.StatusUnauthorized, "invalid_credentials")
		return
	}

	accessToken, refreshToken, err := s.issueTokens(r.Context(), profile)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "token_error")
		return
	}

	writeJSON(w, http.StatusOK, authResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		Profile:      mapProfileSummary(profile),
	})
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}
	if req.RefreshToken == "" {
		writeError(w, http.StatusBadRequest, "missing_refresh_token")
		return
	}

	tokenHash := crypto.HashToken(req.RefreshToken)
	session, err := s.store.GetRefreshSession(r.Context(), tokenHash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusUnauthorized, "invalid_refresh_token")
			return
		}
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}

	if session.RevokedAt != nil || session.ExpiresAt.Before(time.Now().UTC()) {
		writeError(w, http.StatusUnauthorized, "refresh_token_expired")
		return
	}

	profile, err := s.store.GetProfileByID(r.Context(), session.UserID)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "profile_not_found")
		return
	}

	accessToken, refreshToken, newSession, err := s.mintTokens(profile)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "token_error")
		return
	}

	// Rotation: the presented token is single use, but it must not be
	// consumed unless its replacement is stored.
	if err := s.store.RotateRefreshSession(r.Context(), session.ID, newSession); err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}

	writeJSON(w, http.StatusOK, authResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		Profile:      mapProfileSummary(profile),
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "missing_token")
		return
	}

	_ = s.store.RevokeRefreshSessionsByUser(r.Context(), claims.UserID, time.Now().UTC())
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "missing_token")
		return
	}

	profile, err := s.store.GetProfileByID(r.Context(), claims.UserID)
	if err != nil {
		writeError(w, http.StatusNotFound, "profile_not_found")
		return
	}

	writeJSON(w, http.StatusOK, mapProfileSummary(profile))
}

type registerRequest struct {
	Email    string  `json:"email"`
	Password string  `json:"password"`
	FullName *string `json:"full_name"`
	Role     string  `json:"role"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	req.Role = strings.TrimSpace(strings.ToLower(req.Role))
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "missing_fields")
		return
	}
	role := model.Role(req.Role)
	if role == "" {
		role = model.RoleOperator
	}
	if !role.Valid() {
		writeError(w, http.StatusBadRequest, "invalid_role")
		return
	}

	hash, err := crypto.HashPassword(req.Password)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "password_hash_failed")
		return
	}

	profile := model.Profile{
		ID:           uuid.NewString(),
		Role:         role,
		FullName:     req.FullName,
		Email:        req.Email,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.store.CreateProfile(r.Context(), profile); err != nil {
		if isUniqueViolation(err) {
			writeError(w, http.StatusConflict, "email_exists")
			return
		}
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}

	writeJSON(w, http.StatusCreated, mapProfileSummary(profile))
}

func (s *Server) mintTokens(profile model.Profile) (string, string, model.RefreshSession, error) {
	accessToken, err := auth.NewAccessToken(s.cfg.JWTSecret, s.cfg.JWTIssuer, s.cfg.AccessTokenTTL, auth.Claims{
		UserID: profile.ID,
		Role:   profile.Role,
	})
	if err != nil {
		return "", "", model.RefreshSession{}, err
	}

	refreshToken, err := crypto.NewRefreshToken()
	if err != nil {
		return "", "", model.RefreshSession{}, err
	}

	now := time.Now().UTC()
	session := model.RefreshSession{
		ID:        uuid.NewString(),
		UserID:    profile.ID,
		TokenHash: crypto.HashToken(refreshToken),
		CreatedAt: now,
		ExpiresAt: now.Add(s.cfg.RefreshTokenTTL),
	}
	return accessToken, refreshToken, session, nil
}

func (s *Server) issueTokens(ctx context.Context, profile model.Profile) (string, string, error) {
	accessToken, refreshToken, session, err := s.mintTokens(profile)
	if err != nil {
		return "", "", err
	}
	if err := s.store.CreateRefreshSession(ctx, session); err != nil {
		return "", "", err
	}
	return accessToken, refreshToken, nil
}
