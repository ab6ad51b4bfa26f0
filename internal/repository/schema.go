package repository

import "context"

// Applied at startup; every statement is idempotent. Deleting a profile
// with check-in or checklist history is blocked by the foreign keys, per
// the retention policy (restrict, never cascade).
const schema = `
CREATE TABLE IF NOT EXISTS profiles (
	id UUID PRIMARY KEY,
	role TEXT NOT NULL CHECK (role IN ('operator', 'technician', 'admin')),
	full_name TEXT,
	email TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS machines (
	id UUID PRIMARY KEY,
	code TEXT NOT NULL UNIQUE,
	name TEXT NOT NULL,
	brand TEXT,
	model TEXT,
	serial_number TEXT,
	year_of_manufacture INT,
	location TEXT NOT NULL,
	description TEXT,
	main_image_url TEXT,
	qr_code_uuid UUID NOT NULL UNIQUE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS checkins (
	id UUID PRIMARY KEY,
	user_id UUID NOT NULL REFERENCES profiles (id),
	machine_id UUID NOT NULL REFERENCES machines (id),
	shift_start TIMESTAMPTZ NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS checklist_questions (
	id UUID PRIMARY KEY,
	question TEXT NOT NULL,
	category TEXT NOT NULL,
	UNIQUE (category, question)
);

CREATE TABLE IF NOT EXISTS checklists (
	id UUID PRIMARY KEY,
	checkin_id UUID NOT NULL UNIQUE REFERENCES checkins (id),
	machine_id UUID NOT NULL REFERENCES machines (id),
	user_id UUID NOT NULL REFERENCES profiles (id),
	observations TEXT NOT NULL DEFAULT '',
	status TEXT NOT NULL CHECK (status IN ('ok', 'issue_reported')),
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS checklist_items (
	id UUID PRIMARY KEY,
	checklist_id UUID NOT NULL REFERENCES checklists (id),
	question_id UUID NOT NULL REFERENCES checklist_questions (id),
	status TEXT NOT NULL CHECK (status IN ('ok', 'warning', 'fail')),
	notes TEXT NOT NULL DEFAULT '',
	UNIQUE (checklist_id, question_id)
);

CREATE TABLE IF NOT EXISTS refresh_sessions (
	id UUID PRIMARY KEY,
	user_id UUID NOT NULL REFERENCES profiles (id) ON DELETE CASCADE,
	token_hash TEXT NOT NULL UNIQUE,
	created_at TIMESTAMPTZ NOT NULL,
	expires_at TIMESTAMPTZ NOT NULL,
	revoked_at TIMESTAMPTZ
);

CREATE INDEX IF NOT EXISTS idx_checkins_machine ON checkins (machine_id);
CREATE INDEX IF NOT EXISTS idx_checkins_user ON checkins (user_id);
CREATE INDEX IF NOT EXISTS idx_checklist_items_checklist ON checklist_items (checklist_id);
CREATE INDEX IF NOT EXISTS idx_refresh_sessions_user ON refresh_sessions (user_id);
`

func (s *Store) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, schema)
	return err
}
