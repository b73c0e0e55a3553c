// repositories/position_repository.go

package repositories

import (
	"context"
	"database/sql"
	"time"

	"github.com/evn/siteops_backend/internal/models"
)

type PositionRepository struct {
	db *sql.DB
}

func NewPositionRepository(db *sql.DB) *PositionRepository {
	return &PositionRepository{db: db}
}

func (r *PositionRepository) Save(ctx context.Context, pos *models.PositionUpdate) error {
	query := `
		INSERT INTO positions (worker_id, lat, lon, speed, accuracy, battery, event, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at
	`
	return r.db.QueryRowContext(ctx, query,
		pos.WorkerID,
		pos.Lat,
		pos.Lon,
		pos.Speed,
		pos.Accuracy,
		pos.Battery,
		pos.Event,
		time.Now().UTC(),
	).Scan(&pos.ID, &pos.CreatedAt)
}

func (r *PositionRepository) LastPositions(ctx context.Context) ([]models.LastLocation, error) {
	query := `
		SELECT DISTINCT ON (worker_id) worker_id, lat, lon, battery, created_at AS ts
		FROM positions
		WHERE created_at > NOW() - INTERVAL '5 minutes'
		ORDER BY worker_id, created_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []models.LastLocation
	for rows.Next() {
		var loc models.LastLocation
		if err := rows.Scan(&loc.WorkerID, &loc.Lat, &loc.Lon, &loc.Battery, &loc.Ts); err != nil {
			return nil, err
		}
		result = append(result, loc)
	}
	return result, rows.Err()
}

func (r *PositionRepository) HistoryByWorker(ctx context.Context, workerID int, from, to time.Time) ([]models.PositionUpdate, error) {
	query := `
		SELECT id, worker_id, lat, lon, speed, accuracy, battery, event, created_at
		FROM positions
		WHERE worker_id = $1 AND created_at BETWEEN $2 AND $3
		ORDER BY created_at ASC`

	rows, err := r.db.QueryContext(ctx, query, workerID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var updates []models.PositionUpdate
	for rows.Next() {
		var u models.PositionUpdate
		var event sql.NullString
		err := rows.Scan(&u.ID, &u.WorkerID, &u.Lat, &u.Lon, &u.Speed, &u.Accuracy, &u.Battery, &event, &u.CreatedAt)
		if err != nil {
			return nil, err
		}
		u.Event = event.String
		updates = append(updates, u)
	}
	return updates, rows.Err()
}
