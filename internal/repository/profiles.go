package repository

import (
	"context"

	"github.com/gleber2006-sketch/machlog/internal/model"
)

func (s *Store) CreateProfile(ctx context.Context, profile model.Profile) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO profiles (id, role, full_name, email, password_hash, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, profile.ID, profile.Role, profile.FullName, profile.Email, profile.PasswordHash, profile.CreatedAt)
	return err
}

func (s *Store) GetProfileByEmail(ctx context.Context, email string) (model.Profile, error) {
	var profile model.Profile
	row := s.pool.QueryRow(ctx, `
		SELECT id, role, full_name, email, password_hash, created_at
		FROM profiles
		WHERE email = $1
	`, email)
	err := row.Scan(
		&profile.ID,
		&profile.Role,
		&profile.FullName,
		&profile.Email,
		&profile.PasswordHash,
		&profile.CreatedAt,
	)
	return profile, err
}

func (s *Store) GetProfileByID(ctx context.Context, profileID string) (model.Profile, error) {
	var profile model.Profile
	row := s.pool.QueryRow(ctx, `
		SELECT id, role, full_name, email, password_hash, created_at
		FROM profiles
		WHERE id = $1
	`, profileID)
	err := row.Scan(
		&profile.ID,
		&profile.Role,
		&profile.FullName,
		&profile.Email,
		&profile.PasswordHash,
		&profile.CreatedAt,
	)
	return profile, err
}

// ListProfiles returns profiles ordered by creation time. A non-empty
// filter narrows by case-insensitive substring match on name or email.
func (s *Store) ListProfiles(ctx context.Context, filter string, limit int) ([]model.Profile, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, role, full_name, email, password_hash, created_at
		FROM profiles
		WHERE $1 = ''
			OR full_name ILIKE '%' || $1 || '%'
			OR email ILIKE '%' || $1 || '%'
		ORDER BY created_at
		LIMIT $2
	`, filter, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var profiles []model.Profile
	for rows.Next() {
		var profile model.Profile
		if err := rows.Scan(
			&profile.ID,
			&profile.Role,
			&profile.FullName,
			&profile.Email,
			&profile.PasswordHash,
			&profile.CreatedAt,
		); err != nil {
			return nil, err
		}
		profiles = append(profiles, profile)
	}
	return profiles, rows.Err()
}

type ProfileUpdate struct {
	FullName     *string
	Role         *model.Role
	Email        *string
	PasswordHash *string
}

func (s *Store) UpdateProfile(ctx context.Context, profileID string, update ProfileUpdate) (model.Profile, error) {
	var profile model.Profile
	row := s.pool.QueryRow(ctx, `
		UPDATE profiles
		SET full_name = COALESCE($2, full_name),
			role = COALESCE($3, role),
			email = COALESCE($4, email),
			password_hash = COALESCE($5, password_hash)
		WHERE id = $1
		RETURNING id, role, full_name, email, password_hash, created_at
	`, profileID, update.FullName, update.Role, update.Email, update.PasswordHash)
	err := row.Scan(
		&profile.ID,
		&profile.Role,
		&profile.FullName,
		&profile.Email,
		&profile.PasswordHash,
		&profile.CreatedAt,
	)
	return profile, err
}

// ProfileHasHistory reports whether any check-in or checklist references
// the profile. Such profiles must not be deleted.
func (s *Store) ProfileHasHistory(ctx context.Context, profileID string) (bool, error) {
	var has bool
	err := s.pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM checkins WHERE user_id = $1)
			OR EXISTS (SELECT 1 FROM checklists WHERE user_id = $1)
	`, profileID).Scan(&has)
	return has, err
}

func (s *Store) DeleteProfile(ctx context.Context, profileID string) (bool, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM profiles WHERE id = $1`, profileID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
