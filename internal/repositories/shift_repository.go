// repositories/shift_repository.go

package repositories

import (
	"context"
	"database/sql"
	"time"

	"github.com/evn/siteops_backend/internal/models"
)

const shiftColumns = `id, worker_id, site_id, schedule_id, status, start_time, end_time,
	start_coords, end_coords, hourly_rate, total_hours, total_payment, is_planned, start_label`

type ShiftRepository struct {
	db *sql.DB
}

func NewShiftRepository(db *sql.DB) *ShiftRepository {
	return &ShiftRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanShift(row rowScanner) (*models.Shift, error) {
	var s models.Shift
	var scheduleID sql.NullInt64
	var endTime sql.NullTime
	err := row.Scan(
		&s.ID, &s.WorkerID, &s.SiteID, &scheduleID, &s.Status, &s.StartTime, &endTime,
		&s.StartCoords, &s.EndCoords, &s.HourlyRate, &s.TotalHours, &s.TotalPayment,
		&s.IsPlanned, &s.StartLabel,
	)
	if err != nil {
		return nil, err
	}
	if scheduleID.Valid {
		id := int(scheduleID.Int64)
		s.ScheduleID = &id
	}
	if endTime.Valid {
		t := endTime.Time.UTC()
		s.EndTime = &t
	}
	s.StartTime = s.StartTime.UTC()
	return &s, nil
}

func (r *ShiftRepository) ByID(ctx context.Context, id int) (*models.Shift, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+shiftColumns+` FROM shifts WHERE id = $1`, id)
	shift, err := scanShift(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return shift, err
}

func (r *ShiftRepository) ActiveByWorker(ctx context.Context, workerID int) (*models.Shift, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+shiftColumns+` FROM shifts
		WHERE worker_id = $1 AND status = 'active'
		LIMIT 1
	`, workerID)
	shift, err := scanShift(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return shift, err
}

func (r *ShiftRepository) ActiveStartedBefore(ctx context.Context, cutoff time.Time) ([]models.Shift, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+shiftColumns+` FROM shifts
		WHERE status = 'active' AND start_time < $1
		ORDER BY start_time
	`, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectShifts(rows)
}

func (r *ShiftRepository) CountActiveBySite(ctx context.Context, siteID int) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM shifts WHERE site_id = $1 AND status = 'active'`, siteID,
	).Scan(&count)
	return count, err
}

func (r *ShiftRepository) Create(ctx context.Context, shift *models.Shift) error {
	var scheduleID sql.NullInt64
	if shift.ScheduleID != nil {
		scheduleID = sql.NullInt64{Int64: int64(*shift.ScheduleID), Valid: true}
	}
	return r.db.QueryRowContext(ctx, `
		INSERT INTO shifts (worker_id, site_id, schedule_id, status, start_time,
			start_coords, hourly_rate, is_planned, start_label)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`, shift.WorkerID, shift.SiteID, scheduleID, shift.Status, shift.StartTime,
		shift.StartCoords, shift.HourlyRate, shift.IsPlanned, shift.StartLabel,
	).Scan(&shift.ID)
}

// CloseActive — переход в терминальный статус со status-guard: проигравший
// гонку получает false, запись не трогается.
func (r *ShiftRepository) CloseActive(ctx context.Context, id int, end time.Time, endCoords string,
	hours, payment float64, status models.ShiftStatus) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE shifts
		SET status = $2, end_time = $3, end_coords = $4, total_hours = $5, total_payment = $6
		WHERE id = $1 AND status = 'active'
	`, id, status, end, endCoords, hours, payment)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (r *ShiftRepository) ListActive(ctx context.Context) ([]models.Shift, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+shiftColumns+` FROM shifts
		WHERE status = 'active'
		ORDER BY start_time
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectShifts(rows)
}

func (r *ShiftRepository) ListEnded(ctx context.Context, from, to time.Time) ([]models.Shift, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+shiftColumns+` FROM shifts
		WHERE status IN ('completed', 'auto_closed') AND end_time >= $1 AND end_time < $2
		ORDER BY end_time DESC
	`, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectShifts(rows)
}

func (r *ShiftRepository) ListByWorker(ctx context.Context, workerID int) ([]models.Shift, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+shiftColumns+` FROM shifts
		WHERE worker_id = $1 AND status <> 'active'
		ORDER BY start_time DESC
	`, workerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectShifts(rows)
}

func collectShifts(rows *sql.Rows) ([]models.Shift, error) {
	var out []models.Shift
	for rows.Next() {
		shift, err := scanShift(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *shift)
	}
	return out, rows.Err()
}
