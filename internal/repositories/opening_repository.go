// repositories/opening_repository.go

package repositories

import (
	"context"
	"database/sql"
	"time"

	"github.com/evn/siteops_backend/internal/models"
)

const openingColumns = `id, site_id, opened_at, closed_at, opened_by, closed_by`

type OpeningRepository struct {
	db *sql.DB
}

func NewOpeningRepository(db *sql.DB) *OpeningRepository {
	return &OpeningRepository{db: db}
}

func scanOpening(row rowScanner) (*models.SiteOpening, error) {
	var o models.SiteOpening
	var closedAt sql.NullTime
	var closedBy sql.NullInt64
	err := row.Scan(&o.ID, &o.SiteID, &o.OpenedAt, &closedAt, &o.OpenedBy, &closedBy)
	if err != nil {
		return nil, err
	}
	o.OpenedAt = o.OpenedAt.UTC()
	if closedAt.Valid {
		t := closedAt.Time.UTC()
		o.ClosedAt = &t
	}
	if closedBy.Valid {
		id := int(closedBy.Int64)
		o.ClosedBy = &id
	}
	return &o, nil
}

func (r *OpeningRepository) OpenBySite(ctx context.Context, siteID int) (*models.SiteOpening, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+openingColumns+` FROM site_openings
		WHERE site_id = $1 AND closed_at IS NULL
		LIMIT 1
	`, siteID)
	opening, err := scanOpening(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return opening, err
}

func (r *OpeningRepository) Create(ctx context.Context, opening *models.SiteOpening) error {
	return r.db.QueryRowContext(ctx, `
		INSERT INTO site_openings (site_id, opened_at, opened_by)
		VALUES ($1, $2, $3)
		RETURNING id
	`, opening.SiteID, opening.OpenedAt, opening.OpenedBy).Scan(&opening.ID)
}

// CloseOpen закрывает запись только пока closed_at ещё NULL.
func (r *OpeningRepository) CloseOpen(ctx context.Context, id int, closedAt time.Time, closedBy *int) (bool, error) {
	var by sql.NullInt64
	if closedBy != nil {
		by = sql.NullInt64{Int64: int64(*closedBy), Valid: true}
	}
	res, err := r.db.ExecContext(ctx, `
		UPDATE site_openings
		SET closed_at = $2, closed_by = $3
		WHERE id = $1 AND closed_at IS NULL
	`, id, closedAt, by)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}
