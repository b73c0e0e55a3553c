// repositories/schedule_repository.go

package repositories

import (
	"context"
	"database/sql"
	"time"

	"github.com/evn/siteops_backend/internal/models"
)

const scheduleColumns = `id, worker_id, site_id, slot_id, planned_start, planned_end,
	status, auto_closed, hourly_rate`

type ScheduleRepository struct {
	db *sql.DB
}

func NewScheduleRepository(db *sql.DB) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

func scanSchedule(row rowScanner) (*models.ShiftSchedule, error) {
	var s models.ShiftSchedule
	var slotID sql.NullInt64
	err := row.Scan(
		&s.ID, &s.WorkerID, &s.SiteID, &slotID, &s.PlannedStart, &s.PlannedEnd,
		&s.Status, &s.AutoClosed, &s.HourlyRate,
	)
	if err != nil {
		return nil, err
	}
	if slotID.Valid {
		id := int(slotID.Int64)
		s.SlotID = &id
	}
	s.PlannedStart = s.PlannedStart.UTC()
	s.PlannedEnd = s.PlannedEnd.UTC()
	return &s, nil
}

func (r *ScheduleRepository) ByID(ctx context.Context, id int) (*models.ShiftSchedule, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+scheduleColumns+` FROM shift_schedules WHERE id = $1`, id)
	sched, err := scanSchedule(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return sched, err
}

// PlannedAt — точное совпадение planned_start, не "примерно".
func (r *ScheduleRepository) PlannedAt(ctx context.Context, workerID, siteID int, start time.Time) (*models.ShiftSchedule, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+scheduleColumns+` FROM shift_schedules
		WHERE worker_id = $1 AND site_id = $2 AND status = 'planned' AND planned_start = $3
		LIMIT 1
	`, workerID, siteID, start)
	sched, err := scanSchedule(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return sched, err
}

func (r *ScheduleRepository) PlannedCovering(ctx context.Context, workerID, siteID int, at time.Time, lead time.Duration) (*models.ShiftSchedule, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+scheduleColumns+` FROM shift_schedules
		WHERE worker_id = $1 AND site_id = $2 AND status = 'planned'
			AND planned_start <= $3 AND planned_end > $4
		ORDER BY planned_start
		LIMIT 1
	`, workerID, siteID, at.Add(lead), at)
	sched, err := scanSchedule(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return sched, err
}

func (r *ScheduleRepository) OverduePlanned(ctx context.Context, cutoff time.Time) ([]models.ShiftSchedule, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+scheduleColumns+` FROM shift_schedules
		WHERE status = 'planned' AND auto_closed = FALSE AND planned_start < $1
		ORDER BY planned_start
	`, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.ShiftSchedule
	for rows.Next() {
		sched, err := scanSchedule(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *sched)
	}
	return out, rows.Err()
}

func (r *ScheduleRepository) Transition(ctx context.Context, id int, from, to models.ScheduleStatus, autoClosed bool) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE shift_schedules
		SET status = $3, auto_closed = $4
		WHERE id = $1 AND status = $2
	`, id, from, to, autoClosed)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}
