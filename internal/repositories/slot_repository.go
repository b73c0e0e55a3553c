// repositories/slot_repository.go

package repositories

import (
	"context"
	"database/sql"
	"time"

	"github.com/evn/siteops_backend/internal/models"
)

const slotColumns = `id, site_id, slot_date, start_time, end_time, hourly_rate, active`

type SlotRepository struct {
	db *sql.DB
}

func NewSlotRepository(db *sql.DB) *SlotRepository {
	return &SlotRepository{db: db}
}

func scanSlot(row rowScanner) (*models.TimeSlot, error) {
	var s models.TimeSlot
	err := row.Scan(&s.ID, &s.SiteID, &s.Date, &s.StartTime, &s.EndTime, &s.HourlyRate, &s.Active)
	if err != nil {
		return nil, err
	}
	s.Date = s.Date.UTC()
	return &s, nil
}

func (r *SlotRepository) ByID(ctx context.Context, id int) (*models.TimeSlot, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+slotColumns+` FROM time_slots WHERE id = $1`, id)
	slot, err := scanSlot(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return slot, err
}

func (r *SlotRepository) ForSiteDate(ctx context.Context, siteID int, date time.Time) ([]models.TimeSlot, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+slotColumns+` FROM time_slots
		WHERE site_id = $1 AND slot_date = $2
		ORDER BY start_time
	`, siteID, date.Format("2006-01-02"))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.TimeSlot
	for rows.Next() {
		slot, err := scanSlot(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *slot)
	}
	return out, rows.Err()
}
