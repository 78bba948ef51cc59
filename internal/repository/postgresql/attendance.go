package postgresql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/fieldforce-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/fieldforce-backend-go/internal/pkg/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type attendanceMapRepository struct {
	db *database.DB
}

func NewAttendanceMapRepository(db *database.DB) attendance.MapRepository {
	return &attendanceMapRepository{db: db}
}

const attendanceMapColumns = `id, office_id, phone_number, month, year, attendance, version, created_at, updated_at`

func scanAttendanceMap(row pgx.Row) (attendance.AttendanceMap, error) {
	var (
		m     attendance.AttendanceMap
		month int
		days  []byte
	)
	if err := row.Scan(&m.ID, &m.OfficeID, &m.PhoneNumber, &month, &m.Year, &days, &m.Version, &m.CreatedAt, &m.UpdatedAt); err != nil {
		return attendance.AttendanceMap{}, err
	}
	m.Month = time.Month(month)
	m.Attendance = make(map[int]attendance.DayRecord)
	if err := json.Unmarshal(days, &m.Attendance); err != nil {
		return attendance.AttendanceMap{}, fmt.Errorf("decode attendance of map %s: %w", m.ID, err)
	}
	return m, nil
}

// FindOne implements attendance.MapRepository.
func (r *attendanceMapRepository) FindOne(ctx context.Context, key attendance.Key) (*attendance.AttendanceMap, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + attendanceMapColumns + `
		FROM attendance_maps
		WHERE office_id = $1 AND phone_number = $2 AND month = $3 AND year = $4`

	m, err := scanAttendanceMap(q.QueryRow(ctx, query, key.OfficeID, key.PhoneNumber, int(key.Month), key.Year))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get attendance map: %w", err)
	}
	return &m, nil
}

// FetchOrDefault implements attendance.MapRepository.
func (r *attendanceMapRepository) FetchOrDefault(ctx context.Context, key attendance.Key) (attendance.AttendanceMap, error) {
	m, err := r.FindOne(ctx, key)
	if err != nil {
		return attendance.AttendanceMap{}, err
	}
	if m == nil {
		return attendance.NewAttendanceMap(key), nil
	}
	return *m, nil
}

// MergeWrite implements attendance.MapRepository.
func (r *attendanceMapRepository) MergeWrite(ctx context.Context, m *attendance.AttendanceMap) error {
	q := GetQuerier(ctx, r.db)

	days, err := json.Marshal(m.Attendance)
	if err != nil {
		return fmt.Errorf("encode attendance: %w", err)
	}

	if m.IsNew() {
		if m.ID == "" {
			id, err := uuid.NewV7()
			if err != nil {
				return fmt.Errorf("generate attendance map id: %w", err)
			}
			m.ID = id.String()
		}
		query := `
			INSERT INTO attendance_maps (id, office_id, phone_number, month, year, attendance, version)
			VALUES ($1, $2, $3, $4, $5, $6, 1)
			RETURNING version, created_at, updated_at
		`
		err := q.QueryRow(ctx, query, m.ID, m.OfficeID, m.PhoneNumber, int(m.Month), m.Year, days).
			Scan(&m.Version, &m.CreatedAt, &m.UpdatedAt)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == "23505" {
				// another writer created the month first
				m.ID = ""
				return attendance.ErrVersionConflict
			}
			return fmt.Errorf("failed to create attendance map: %w", err)
		}
		return nil
	}

	query := `
		UPDATE attendance_maps
		SET attendance = $1, version = version + 1, updated_at = NOW()
		WHERE id = $2 AND version = $3
		RETURNING version, updated_at
	`
	err = q.QueryRow(ctx, query, days, m.ID, m.Version).Scan(&m.Version, &m.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.ErrVersionConflict
		}
		return fmt.Errorf("failed to update attendance map: %w", err)
	}
	return nil
}

// ListByMonth implements attendance.MapRepository.
func (r *attendanceMapRepository) ListByMonth(ctx context.Context, officeID string, month time.Month, year int) ([]attendance.AttendanceMap, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + attendanceMapColumns + `
		FROM attendance_maps
		WHERE office_id = $1 AND month = $2 AND year = $3
		ORDER BY phone_number`

	rows, err := q.Query(ctx, query, officeID, int(month), year)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance maps: %w", err)
	}
	defer rows.Close()

	var maps []attendance.AttendanceMap
	for rows.Next() {
		m, err := scanAttendanceMap(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attendance map: %w", err)
		}
		maps = append(maps, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate attendance maps: %w", err)
	}
	return maps, nil
}
