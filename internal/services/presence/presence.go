// services/presence/presence.go

package presence

import (
	"context"
	"encoding/json"
	"log"
	"strconv"
	"time"

	"github.com/evn/siteops_backend/internal/models"
	"github.com/evn/siteops_backend/internal/repositories"
	"github.com/redis/go-redis/v9"
)

const presenceTTL = 5 * time.Minute

type Service struct {
	posRepo *repositories.PositionRepository
	redis   *redis.Client
}

func NewService(posRepo *repositories.PositionRepository, redis *redis.Client) *Service {
	return &Service{
		posRepo: posRepo,
		redis:   redis,
	}
}

func (s *Service) HandleUpdate(ctx context.Context, update *models.PositionUpdate) error {
	// 1. Сохранить в PostgreSQL
	if err := s.posRepo.Save(ctx, update); err != nil {
		log.Printf("❌ FAILED TO SAVE TO POSTGRESQL: %v", err)
		return err
	}

	// 2. Обновить Redis
	key := "last:" + strconv.Itoa(update.WorkerID)
	data, _ := json.Marshal(map[string]interface{}{
		"lat":     update.Lat,
		"lon":     update.Lon,
		"battery": update.Battery,
		"ts":      update.CreatedAt.Format(time.RFC3339),
	})
	if err := s.redis.Set(ctx, key, data, presenceTTL).Err(); err != nil {
		log.Printf("❌ FAILED TO UPDATE REDIS: %v", err)
		return err
	}

	// 3. Обновить список активных работников
	if err := s.redis.SAdd(ctx, "active_workers", update.WorkerID).Err(); err != nil {
		log.Printf("⚠️ Redis SAdd warning: %v", err)
	}
	if err := s.redis.Expire(ctx, "active_workers", presenceTTL).Err(); err != nil {
		log.Printf("⚠️ Redis Expire warning: %v", err)
	}

	return nil
}

func (s *Service) LastLocations(ctx context.Context) ([]models.LastLocation, error) {
	locations, err := s.posRepo.LastPositions(ctx)
	if err != nil {
		log.Printf("❌ FAILED TO FETCH LAST POSITIONS: %v", err)
		return nil, err
	}
	return locations, nil
}
