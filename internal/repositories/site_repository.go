// repositories/site_repository.go

package repositories

import (
	"context"
	"database/sql"

	"github.com/evn/siteops_backend/internal/models"
)

const siteColumns = `id, name, coords, radius_meters, opening_time, closing_time, timezone, auto_close_minutes`

type SiteRepository struct {
	db *sql.DB
}

func NewSiteRepository(db *sql.DB) *SiteRepository {
	return &SiteRepository{db: db}
}

func scanSite(row rowScanner) (*models.Site, error) {
	var s models.Site
	var autoClose sql.NullInt64
	err := row.Scan(&s.ID, &s.Name, &s.Coords, &s.RadiusMeters,
		&s.OpeningTime, &s.ClosingTime, &s.Timezone, &autoClose)
	if err != nil {
		return nil, err
	}
	if autoClose.Valid {
		m := int(autoClose.Int64)
		s.AutoCloseMinutes = &m
	}
	return &s, nil
}

func (r *SiteRepository) ByID(ctx context.Context, id int) (*models.Site, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+siteColumns+` FROM sites WHERE id = $1`, id)
	site, err := scanSite(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return site, err
}

func (r *SiteRepository) List(ctx context.Context) ([]models.Site, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+siteColumns+` FROM sites ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Site
	for rows.Next() {
		site, err := scanSite(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *site)
	}
	return out, rows.Err()
}
