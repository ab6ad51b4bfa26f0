package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/gleber2006-sketch/machlog/internal/model"
	"github.com/gleber2006-sketch/machlog/internal/qr"
)

type machineRequest struct {
	Code              string  `json:"code"`
	Name              string  `json:"name"`
	Brand             *string `json:"brand"`
	Model             *string `json:"model"`
	SerialNumber      *string `json:"serial_number"`
	YearOfManufacture *int    `json:"year_of_manufacture"`
	Location          string  `json:"location"`
	Description       *string `json:"description"`
	MainImageURL      *string `json:"main_image_url"`
}

type machineResponse struct {
	ID                string  `json:"id"`
	Code              string  `json:"code"`
	Name              string  `json:"name"`
	Brand             *string `json:"brand"`
	Model             *string `json:"model"`
	SerialNumber      *string `json:"serial_number"`
	YearOfManufacture *int    `json:"year_of_manufacture"`
	Location          string  `json:"location"`
	Description       *string `json:"description"`
	MainImageURL      *string `json:"main_image_url"`
	ScanToken         string  `json:"qr_code_uuid"`
	CreatedAt         string  `json:"created_at"`
}

func mapMachineResponse(machine model.Machine) machineResponse {
	return machineResponse{
		ID:                machine.ID,
		Code:              machine.Code,
		Name:              machine.Name,
		Brand:             machine.Brand,
		Model:             machine.Model,
		SerialNumber:      machine.SerialNumber,
		YearOfManufacture: machine.YearOfManufacture,
		Location:          machine.Location,
		Description:       machine.Description,
		MainImageURL:      machine.MainImageURL,
		ScanToken:         machine.ScanToken,
		CreatedAt:         machine.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func (req *machineRequest) normalize() {
	req.Code = strings.TrimSpace(req.Code)
	req.Name = strings.TrimSpace(req.Name)
	req.Location = strings.TrimSpace(req.Location)
}

func (req *machineRequest) validate() string {
	if req.Code == "" {
		return "missing_code"
	}
	if req.Name == "" {
		return "missing_name"
	}
	if req.Location == "" {
		return "missing_location"
	}
	return ""
}

func (s *Server) handleListMachines(w http.ResponseWriter, r *http.Request) {
	filter := strings.TrimSpace(r.URL.Query().Get("q"))
	limit := parseLimit(r, 200)

	machines, err := s.store.ListMachines(r.Context(), filter, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}

	resp := make([]machineResponse, 0, len(machines))
	for _, machine := range machines {
		resp = append(resp, mapMachineResponse(machine))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCreateMachine(w http.ResponseWriter, r *http.Request) {
	var req machineRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}
	req.normalize()
	if code := req.validate(); code != "" {
		writeError(w, http.StatusBadRequest, code)
		return
	}

	machine := model.Machine{
		ID:                uuid.NewString(),
		Code:              req.Code,
		Name:              req.Name,
		Brand:             req.Brand,
		Model:             req.Model,
		SerialNumber:      req.SerialNumber,
		YearOfManufacture: req.YearOfManufacture,
		Location:          req.Location,
		Description:       req.Description,
		MainImageURL:      req.MainImageURL,
		ScanToken:         qr.NewToken(),
		CreatedAt:         time.Now().UTC(),
	}

	if err := s.store.CreateMachine(r.Context(), machine); err != nil {
		if isUniqueViolation(err) {
			writeError(w, http.StatusConflict, "code_exists")
			return
		}
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}

	writeJSON(w, http.StatusCreated, mapMachineResponse(machine))
}

func (s *Server) handleGetMachine(w http.ResponseWriter, r *http.Request) {
	machineID := chi.URLParam(r, "machineID")
	if machineID == "" {
		writeError(w, http.StatusBadRequest, "missing_machine_id")
		return
	}

	machine, err := s.store.GetMachine(r.Context(), machineID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "machine_not_found")
			return
		}
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}

	writeJSON(w, http.StatusOK, mapMachineResponse(machine))
}

// handleUpdateMachine replaces the editable fields wholesale. Optional
// fields absent from the payload are cleared, which is how the edit
// form round-trips a machine record. Scan token and creation time are
// immutable.
func (s *Server) handleUpdateMachine(w http.ResponseWriter, r *http.Request) {
	machineID := chi.URLParam(r, "machineID")
	if machineID == "" {
		writeError(w, http.StatusBadRequest, "missing_machine_id")
		return
	}

	var req machineRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}
	req.normalize()
	if code := req.validate(); code != "" {
		writeError(w, http.StatusBadRequest, code)
		return
	}

	machine, err := s.store.UpdateMachine(r.Context(), machineID, model.Machine{
		Code:              req.Code,
		Name:              req.Name,
		Brand:             req.Brand,
		Model:             req.Model,
		SerialNumber:      req.SerialNumber,
		YearOfManufacture: req.YearOfManufacture,
		Location:          req.Location,
		Description:       req.Description,
		MainImageURL:      req.MainImageURL,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "machine_not_found")
			return
		}
		if isUniqueViolation(err) {
			writeError(w, http.StatusConflict, "code_exists")
			return
		}
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}

	writeJSON(w, http.StatusOK, mapMachineResponse(machine))
}

func (s *Server) handleDeleteMachine(w http.ResponseWriter, r *http.Request) {
	machineID := chi.URLParam(r, "machineID")
	if machineID == "" {
		writeError(w, http.StatusBadRequest, "missing_machine_id")
		return
	}

	hasHistory, err := s.store.MachineHasHistory(r.Context(), machineID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	if hasHistory {
		writeError(w, http.StatusConflict, "machine_has_history")
		return
	}

	deleted, err := s.store.DeleteMachine(r.Context(), machineID)
	if err != nil {
		// A check-in created between the history check and the delete
		// trips the RESTRICT foreign key; same conflict, same answer.
		if isForeignKeyViolation(err) {
			writeError(w, http.StatusConflict, "machine_has_history")
			return
		}
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "machine_not_found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// handleMachineQR renders the machine's scan token as a printable PNG
// label. The encoded payload is the bare token, which is what the
// scanner flow resolves.
func (s *Server) handleMachineQR(w http.ResponseWriter, r *http.Request) {
	machineID := chi.URLParam(r, "machineID")
	if machineID == "" {
		writeError(w, http.StatusBadRequest, "missing_machine_id")
		return
	}

	machine, err := s.store.GetMachine(r.Context(), machineID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "machine_not_found")
			return
		}
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}

	size := qr.LabelSize
	if raw := r.URL.Query().Get("size"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 64 || parsed > 1024 {
			writeError(w, http.StatusBadRequest, "invalid_size")
			return
		}
		size = parsed
	}

	png, err := qr.Label(machine.ScanToken, size)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "qr_encode_failed")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}

// handleScan resolves a scanned token to its machine. Malformed tokens
// are rejected before touching the database so a garbage scan cannot
// probe machine IDs.
func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	if !qr.ValidToken(token) {
		writeError(w, http.StatusBadRequest, "invalid_scan_token")
		return
	}

	machine, err := s.store.GetMachineByScanToken(r.Context(), token)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "machine_not_found")
			return
		}
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}

	writeJSON(w, http.StatusOK, mapMachineResponse(machine))
}
