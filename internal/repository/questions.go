package repository

import (
	"context"

	"github.com/gleber2006-sketch/machlog/internal/model"
)

// ListQuestions returns the active question set in wizard order.
func (s *Store) ListQuestions(ctx context.Context) ([]model.ChecklistQuestion, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, question, category
		FROM checklist_questions
		ORDER BY category, question
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var questions []model.ChecklistQuestion
	for rows.Next() {
		var question model.ChecklistQuestion
		if err := rows.Scan(&question.ID, &question.Question, &question.Category); err != nil {
			return nil, err
		}
		questions = append(questions, question)
	}
	return questions, rows.Err()
}

// UpsertQuestion inserts a seed question; an already-seeded
// (category, question) pair is left untouched.
func (s *Store) UpsertQuestion(ctx context.Context, question model.ChecklistQuestion) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO checklist_questions (id, question, category)
		VALUES ($1, $2, $3)
		ON CONFLICT (category, question) DO NOTHING
	`, question.ID, question.Question, question.Category)
	return err
}
