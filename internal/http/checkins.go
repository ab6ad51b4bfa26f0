package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/gleber2006-sketch/machlog/internal/model"
	"github.com/gleber2006-sketch/machlog/internal/qr"
)

type createCheckInRequest struct {
	ScanToken string `json:"scan_token"`
}

type checkInResponse struct {
	ID         string `json:"id"`
	UserID     string `json:"user_id"`
	MachineID  string `json:"machine_id"`
	ShiftStart string `json:"shift_start"`
	CreatedAt  string `json:"created_at"`
}

func mapCheckInResponse(checkin model.CheckIn) checkInResponse {
	return checkInResponse{
		ID:         checkin.ID,
		UserID:     checkin.UserID,
		MachineID:  checkin.MachineID,
		ShiftStart: checkin.ShiftStart.UTC().Format(time.RFC3339),
		CreatedAt:  checkin.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// handleCreateCheckIn records the start of a shift on the scanned
// machine. The shift start is server-assigned.
func (s *Server) handleCreateCheckIn(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "missing_token")
		return
	}

	var req createCheckInRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}
	if !qr.ValidToken(req.ScanToken) {
		writeError(w, http.StatusBadRequest, "invalid_scan_token")
		return
	}

	machine, err := s.store.GetMachineByScanToken(r.Context(), req.ScanToken)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "machine_not_found")
			return
		}
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}

	now := time.Now().UTC()
	checkin := model.CheckIn{
		ID:         uuid.NewString(),
		UserID:     claims.UserID,
		MachineID:  machine.ID,
		ShiftStart: now,
		CreatedAt:  now,
	}

	if err := s.store.CreateCheckIn(r.Context(), checkin); err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}

	writeJSON(w, http.StatusCreated, mapCheckInResponse(checkin))
}

func (s *Server) handleGetCheckIn(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "missing_token")
		return
	}

	checkinID := chi.URLParam(r, "checkinID")
	if checkinID == "" {
		writeError(w, http.StatusBadRequest, "missing_checkin_id")
		return
	}

	checkin, err := s.store.GetCheckIn(r.Context(), checkinID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "checkin_not_found")
			return
		}
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}

	if claims.Role == model.RoleOperator && checkin.UserID != claims.UserID {
		writeError(w, http.StatusForbidden, "forbidden")
		return
	}

	writeJSON(w, http.StatusOK, mapCheckInResponse(checkin))
}
