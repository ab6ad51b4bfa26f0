package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/gleber2006-sketch/machlog/internal/model"
)

// CreateChecklistWithItems inserts the checklist row and its full item
// batch in one transaction. Items are never written without their parent
// and never as a partial set.
func (s *Store) CreateChecklistWithItems(ctx context.Context, checklist model.Checklist, items []model.ChecklistItem) error {
	return s.WithTx(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO checklists (id, checkin_id, machine_id, user_id, observations, status, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, checklist.ID, checklist.CheckInID, checklist.MachineID, checklist.UserID,
			checklist.Observations, checklist.Status, checklist.CreatedAt)
		if err != nil {
			return err
		}
		for _, item := range items {
			_, err := tx.Exec(ctx, `
				INSERT INTO checklist_items (id, checklist_id, question_id, status, notes)
				VALUES ($1, $2, $3, $4, $5)
			`, item.ID, item.ChecklistID, item.QuestionID, item.Status, item.Notes)
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Store) GetChecklistByCheckIn(ctx context.Context, checkinID string) (model.Checklist, error) {
	var checklist model.Checklist
	row := s.pool.QueryRow(ctx, `
		SELECT id, checkin_id, machine_id, user_id, observations, status, created_at
		FROM checklists
		WHERE checkin_id = $1
	`, checkinID)
	err := row.Scan(
		&checklist.ID,
		&checklist.CheckInID,
		&checklist.MachineID,
		&checklist.UserID,
		&checklist.Observations,
		&checklist.Status,
		&checklist.CreatedAt,
	)
	return checklist, err
}

func (s *Store) ListChecklistItems(ctx context.Context, checklistID string) ([]model.ChecklistItem, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT i.id, i.checklist_id, i.question_id, i.status, i.notes
		FROM checklist_items i
		JOIN checklist_questions q ON q.id = i.question_id
		WHERE i.checklist_id = $1
		ORDER BY q.category, q.question
	`, checklistID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []model.ChecklistItem
	for rows.Next() {
		var item model.ChecklistItem
		if err := rows.Scan(&item.ID, &item.ChecklistID, &item.QuestionID, &item.Status, &item.Notes); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
