package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/gleber2006-sketch/machlog/internal/model"
)

func (s *Store) CreateRefreshSession(ctx context.Context, session model.RefreshSession) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO refresh_sessions (id, user_id, token_hash, created_at, expires_at, revoked_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, session.ID, session.UserID, session.TokenHash, session.CreatedAt, session.ExpiresAt, session.RevokedAt)
	return err
}

func (s *Store) GetRefreshSession(ctx context.Context, tokenHash string) (model.RefreshSession, error) {
	var session model.RefreshSession
	row := s.pool.QueryRow(ctx, `
		SELECT id, user_id, token_hash, created_at, expires_at, revoked_at
		FROM refresh_sessions
		WHERE token_hash = $1
	`, tokenHash)
	err := row.Scan(&session.ID, &session.UserID, &session.TokenHash, &session.CreatedAt, &session.ExpiresAt, &session.RevokedAt)
	return session, err
}

// RotateRefreshSession revokes the presented session and stores its
// replacement in one transaction. A failure rolls both back, so the
// presented token stays usable instead of being consumed for nothing.
func (s *Store) RotateRefreshSession(ctx context.Context, oldSessionID string, session model.RefreshSession) error {
	return s.WithTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `
			UPDATE refresh_sessions SET revoked_at = $1 WHERE id = $2
		`, time.Now().UTC(), oldSessionID); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, `
			INSERT INTO refresh_sessions (id, user_id, token_hash, created_at, expires_at, revoked_at)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, session.ID, session.UserID, session.TokenHash, session.CreatedAt, session.ExpiresAt, session.RevokedAt)
		return err
	})
}

func (s *Store) RevokeRefreshSession(ctx context.Context, sessionID string, revokedAt time.Time) error {
	_, err := s.pool.Exec(ctx, `UPDATE refresh_sessions SET revoked_at = $1 WHERE id = $2`, revokedAt, sessionID)
	return err
}

func (s *Store) RevokeRefreshSessionsByUser(ctx context.Context, userID string, revokedAt time.Time) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE refresh_sessions
		SET revoked_at = $1
		WHERE user_id = $2 AND revoked_at IS NULL
	`, revokedAt, userID)
	return err
}

// PurgeRefreshSessions removes sessions that expired or were revoked
// before the cutoff and returns the number removed.
func (s *Store) PurgeRefreshSessions(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx, `
		DELETE FROM refresh_sessions
		WHERE expires_at < $1 OR (revoked_at IS NOT NULL AND revoked_at < $1)
	`, cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
