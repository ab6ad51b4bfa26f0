package repository

import (
	"context"

	"github.com/gleber2006-sketch/machlog/internal/model"
)

const machineColumns = `id, code, name, brand, model, serial_number, year_of_manufacture,
	location, description, main_image_url, qr_code_uuid, created_at`

func scanMachine(row interface{ Scan(dest ...any) error }) (model.Machine, error) {
	var machine model.Machine
	err := row.Scan(
		&machine.ID,
		&machine.Code,
		&machine.Name,
		&machine.Brand,
		&machine.Model,
		&machine.SerialNumber,
		&machine.YearOfManufacture,
		&machine.Location,
		&machine.Description,
		&machine.MainImageURL,
		&machine.ScanToken,
		&machine.CreatedAt,
	)
	return machine, err
}

func (s *Store) CreateMachine(ctx context.Context, machine model.Machine) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO machines (id, code, name, brand, model, serial_number, year_of_manufacture,
			location, description, main_image_url, qr_code_uuid, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`, machine.ID, machine.Code, machine.Name, machine.Brand, machine.Model, machine.SerialNumber,
		machine.YearOfManufacture, machine.Location, machine.Description, machine.MainImageURL,
		machine.ScanToken, machine.CreatedAt)
	return err
}

func (s *Store) GetMachine(ctx context.Context, machineID string) (model.Machine, error) {
	return scanMachine(s.pool.QueryRow(ctx, `
		SELECT `+machineColumns+`
		FROM machines
		WHERE id = $1
	`, machineID))
}

func (s *Store) GetMachineByScanToken(ctx context.Context, token string) (model.Machine, error) {
	return scanMachine(s.pool.QueryRow(ctx, `
		SELECT `+machineColumns+`
		FROM machines
		WHERE qr_code_uuid = $1
	`, token))
}

// ListMachines returns machines ordered by name. A non-empty filter
// narrows by case-insensitive substring match on name, code or location.
func (s *Store) ListMachines(ctx context.Context, filter string, limit int) ([]model.Machine, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+machineColumns+`
		FROM machines
		WHERE $1 = ''
			OR name ILIKE '%' || $1 || '%'
			OR code ILIKE '%' || $1 || '%'
			OR location ILIKE '%' || $1 || '%'
		ORDER BY name
		LIMIT $2
	`, filter, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var machines []model.Machine
	for rows.Next() {
		machine, err := scanMachine(rows)
		if err != nil {
			return nil, err
		}
		machines = append(machines, machine)
	}
	return machines, rows.Err()
}

// UpdateMachine replaces every editable column; cleared optional fields
// arrive as nil and are stored as NULL. The scan token and creation time
// are deliberately not updatable; printed labels must stay valid for the
// life of the machine.
func (s *Store) UpdateMachine(ctx context.Context, machineID string, machine model.Machine) (model.Machine, error) {
	return scanMachine(s.pool.QueryRow(ctx, `
		UPDATE machines
		SET code = $2,
			name = $3,
			brand = $4,
			model = $5,
			serial_number = $6,
			year_of_manufacture = $7,
			location = $8,
			description = $9,
			main_image_url = $10
		WHERE id = $1
		RETURNING `+machineColumns+`
	`, machineID, machine.Code, machine.Name, machine.Brand, machine.Model, machine.SerialNumber,
		machine.YearOfManufacture, machine.Location, machine.Description, machine.MainImageURL))
}

func (s *Store) DeleteMachine(ctx context.Context, machineID string) (bool, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM machines WHERE id = $1`, machineID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// MachineHasHistory reports whether any check-in references the machine.
func (s *Store) MachineHasHistory(ctx context.Context, machineID string) (bool, error) {
	var has bool
	err := s.pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM checkins WHERE machine_id = $1)
	`, machineID).Scan(&has)
	return has, err
}
