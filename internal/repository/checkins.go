package repository

import (
	"context"

	"github.com/gleber2006-sketch/machlog/internal/model"
)

func (s *Store) CreateCheckIn(ctx context.Context, checkin model.CheckIn) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO checkins (id, user_id, machine_id, shift_start, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, checkin.ID, checkin.UserID, checkin.MachineID, checkin.ShiftStart, checkin.CreatedAt)
	return err
}

func (s *Store) GetCheckIn(ctx context.Context, checkinID string) (model.CheckIn, error) {
	var checkin model.CheckIn
	row := s.pool.QueryRow(ctx, `
		SELECT id, user_id, machine_id, shift_start, created_at
		FROM checkins
		WHERE id = $1
	`, checkinID)
	err := row.Scan(&checkin.ID, &checkin.UserID, &checkin.MachineID, &checkin.ShiftStart, &checkin.CreatedAt)
	return checkin, err
}
