package postgresql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/fieldforce-backend-go/internal/domain/office"
	"github.com/cmlabs-hris/fieldforce-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type officeRepository struct {
	db *database.DB
}

func NewOfficeRepository(db *database.DB) office.OfficeRepository {
	return &officeRepository{db: db}
}

const officeColumns = `id, name, first_day_of_monthly_cycle, timezone, employees, branches, created_at, updated_at`

func scanOffice(row pgx.Row) (office.Office, error) {
	var (
		o         office.Office
		employees []byte
		branches  []byte
	)
	if err := row.Scan(&o.ID, &o.Name, &o.FirstDayOfMonthlyCycle, &o.Timezone, &employees, &branches, &o.CreatedAt, &o.UpdatedAt); err != nil {
		return office.Office{}, err
	}
	if err := json.Unmarshal(employees, &o.Employees); err != nil {
		return office.Office{}, fmt.Errorf("decode employees of office %s: %w", o.ID, err)
	}
	if err := json.Unmarshal(branches, &o.Branches); err != nil {
		return office.Office{}, fmt.Errorf("decode branches of office %s: %w", o.ID, err)
	}
	return o, nil
}

// FindOne implements office.OfficeRepository.
func (r *officeRepository) FindOne(ctx context.Context, officeID string) (*office.Office, error) {
	q := GetQuerier(ctx, r.db)

	o, err := scanOffice(q.QueryRow(ctx, `SELECT `+officeColumns+` FROM offices WHERE id = $1`, officeID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get office: %w", err)
	}
	return &o, nil
}

// List implements office.OfficeRepository.
func (r *officeRepository) List(ctx context.Context) ([]office.Office, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `SELECT `+officeColumns+` FROM offices ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list offices: %w", err)
	}
	defer rows.Close()

	var offices []office.Office
	for rows.Next() {
		o, err := scanOffice(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan office: %w", err)
		}
		offices = append(offices, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate offices: %w", err)
	}
	return offices, nil
}

// Upsert implements office.OfficeRepository.
func (r *officeRepository) Upsert(ctx context.Context, o office.Office) error {
	q := GetQuerier(ctx, r.db)

	if o.Employees == nil {
		o.Employees = map[string]office.EmployeePolicy{}
	}
	if o.Branches == nil {
		o.Branches = map[string]office.Branch{}
	}
	employees, err := json.Marshal(o.Employees)
	if err != nil {
		return fmt.Errorf("encode employees: %w", err)
	}
	branches, err := json.Marshal(o.Branches)
	if err != nil {
		return fmt.Errorf("encode branches: %w", err)
	}

	query := `
		INSERT INTO offices (id, name, first_day_of_monthly_cycle, timezone, employees, branches)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			first_day_of_monthly_cycle = EXCLUDED.first_day_of_monthly_cycle,
			timezone = EXCLUDED.timezone,
			employees = EXCLUDED.employees,
			branches = EXCLUDED.branches,
			updated_at = NOW()
	`
	if _, err := q.Exec(ctx, query, o.ID, o.Name, o.FirstDay(), o.Timezone, employees, branches); err != nil {
		return fmt.Errorf("failed to upsert office: %w", err)
	}
	return nil
}
