package http

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/gleber2006-sketch/machlog/internal/model"
)

type questionResponse struct {
	ID       string `json:"id"`
	Category string `json:"category"`
	Question string `json:"question"`
}

func (s *Server) handleListQuestions(w http.ResponseWriter, r *http.Request) {
	questions, err := s.store.ListQuestions(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}

	resp := make([]questionResponse, 0, len(questions))
	for _, question := range questions {
		resp = append(resp, questionResponse{
			ID:       question.ID,
			Category: question.Category,
			Question: question.Question,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

type checklistItemRequest struct {
	QuestionID string `json:"question_id"`
	Status     string `json:"status"`
	Notes      string `json:"notes"`
}

type submitChecklistRequest struct {
	Observations string                 `json:"observations"`
	Items        []checklistItemRequest `json:"items"`
}

type checklistItemResponse struct {
	ID         string `json:"id"`
	QuestionID string `json:"question_id"`
	Status     string `json:"status"`
	Notes      string `json:"notes"`
}

type checklistResponse struct {
	ID           string                  `json:"id"`
	CheckInID    string                  `json:"checkin_id"`
	MachineID    string                  `json:"machine_id"`
	UserID       string                  `json:"user_id"`
	Observations string                  `json:"observations"`
	Status       string                  `json:"status"`
	CreatedAt    string                  `json:"created_at"`
	Items        []checklistItemResponse `json:"items"`
}

func mapChecklistResponse(checklist model.Checklist, items []model.ChecklistItem) checklistResponse {
	resp := checklistResponse{
		ID:           checklist.ID,
		CheckInID:    checklist.CheckInID,
		MachineID:    checklist.MachineID,
		UserID:       checklist.UserID,
		Observations: checklist.Observations,
		Status:       string(checklist.Status),
		CreatedAt:    checklist.CreatedAt.UTC().Format(time.RFC3339),
		Items:        make([]checklistItemResponse, 0, len(items)),
	}
	for _, item := range items {
		resp.Items = append(resp.Items, checklistItemResponse{
			ID:         item.ID,
			QuestionID: item.QuestionID,
			Status:     string(item.Status),
			Notes:      item.Notes,
		})
	}
	return resp
}

// deriveChecklistStatus aggregates item statuses: a checklist is ok
// only when every single item is ok. Warnings count as issues.
func deriveChecklistStatus(items []model.ChecklistItem) model.ChecklistStatus {
	for _, item := range items {
		if item.Status != model.ItemStatusOK {
			return model.ChecklistStatusIssueReported
		}
	}
	return model.ChecklistStatusOK
}

// validateItemSet checks that the submitted items answer exactly the
// active question set, each question once.
func validateItemSet(items []checklistItemRequest, questions []model.ChecklistQuestion) string {
	if len(items) != len(questions) {
		return "incomplete_items"
	}
	known := make(map[string]bool, len(questions))
	for _, question := range questions {
		known[question.ID] = true
	}
	seen := make(map[string]bool, len(items))
	for _, item := range items {
		if !known[item.QuestionID] {
			return "unknown_question"
		}
		if seen[item.QuestionID] {
			return "duplicate_question"
		}
		seen[item.QuestionID] = true
		if !model.ItemStatus(item.Status).Valid() {
			return "invalid_item_status"
		}
	}
	return ""
}

func (s *Server) handleSubmitChecklist(w http.ResponseWriter, r *http.Request) {
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

	var req submitChecklistRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
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
	if checkin.UserID != claims.UserID {
		writeError(w, http.StatusForbidden, "forbidden")
		return
	}

	questions, err := s.store.ListQuestions(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	if code := validateItemSet(req.Items, questions); code != "" {
		writeError(w, http.StatusBadRequest, code)
		return
	}

	locked, release, err := s.acquireSubmitLock(r.Context(), checkin.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	if !locked {
		writeError(w, http.StatusConflict, "submission_in_progress")
		return
	}
	defer release()

	checklist := model.Checklist{
		ID:           uuid.NewString(),
		CheckInID:    checkin.ID,
		MachineID:    checkin.MachineID,
		UserID:       checkin.UserID,
		Observations: strings.TrimSpace(req.Observations),
		CreatedAt:    time.Now().UTC(),
	}
	items := make([]model.ChecklistItem, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, model.ChecklistItem{
			ID:          uuid.NewString(),
			ChecklistID: checklist.ID,
			QuestionID:  item.QuestionID,
			Status:      model.ItemStatus(item.Status),
			Notes:       strings.TrimSpace(item.Notes),
		})
	}
	checklist.Status = deriveChecklistStatus(items)

	if err := s.store.CreateChecklistWithItems(r.Context(), checklist, items); err != nil {
		if isUniqueViolation(err) {
			writeError(w, http.StatusConflict, "checklist_exists")
			return
		}
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}

	writeJSON(w, http.StatusCreated, mapChecklistResponse(checklist, items))
}

// acquireSubmitLock takes a short Redis lock keyed by check-in so a
// double-tapped submit button cannot race two inserts. Without Redis
// the unique constraint on checkin_id is the only guard, which is
// still correct, just noisier.
func (s *Server) acquireSubmitLock(ctx context.Context, checkinID string) (bool, func(), error) {
	if s.locks == nil {
		return true, func() {}, nil
	}
	key := "checklist:submit:" + checkinID
	ok, err := s.locks.SetNX(ctx, key, "1", s.cfg.SubmitLockTTL).Result()
	if err != nil {
		return false, nil, err
	}
	if !ok {
		return false, nil, nil
	}
	return true, func() {
		_ = s.locks.Del(context.WithoutCancel(ctx), key).Err()
	}, nil
}

func (s *Server) handleGetChecklist(w http.ResponseWriter, r *http.Request) {
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

	checklist, err := s.store.GetChecklistByCheckIn(r.Context(), checkinID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "checklist_not_found")
			return
		}
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}

	if claims.Role == model.RoleOperator && checklist.UserID != claims.UserID {
		writeError(w, http.StatusForbidden, "forbidden")
		return
	}

	items, err := s.store.ListChecklistItems(r.Context(), checklist.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}

	writeJSON(w, http.StatusOK, mapChecklistResponse(checklist, items))
}
