package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/nadil1995/notehive2/internal/models"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type Service struct {
	client *redis.Client
}

// NewService creates a new Redis service. Returns nil when the connection
// cannot be established; callers nil-guard every use.
func NewService(addr, password string, db int) *Service {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := client.Ping(ctx).Result(); err != nil {
		log.Printf("Failed to connect to Redis: %v", err)
		return nil
	}

	log.Println("Successfully connected to Redis")
	return &Service{client: client}
}

// Repository Metadata Cache Methods

// SetRepositoryMetadata caches repository metadata
func (s *Service) SetRepositoryMetadata(ctx context.Context, repo *models.Repository) error {
	key := fmt.Sprintf("repository:%s", repo.ID.String())

	data, err := json.Marshal(repo)
	if err != nil {
		log.Printf("Failed to marshal repository metadata: %v", err)
		return err
	}

	if err := s.client.Set(ctx, key, data, 24*time.Hour).Err(); err != nil {
		log.Printf("Failed to cache repository metadata for %s: %v", repo.ID, err)
		return err
	}
	return nil
}

// GetRepositoryMetadata retrieves repository metadata from cache
func (s *Service) GetRepositoryMetadata(ctx context.Context, repoID uuid.UUID) (*models.Repository, error) {
	key := fmt.Sprintf("repository:%s", repoID.String())

	data, err := s.client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // Cache miss
		}
		log.Printf("Failed to get repository metadata for %s: %v", repoID, err)
		return nil, err
	}

	var repo models.Repository
	if err := json.Unmarshal([]byte(data), &repo); err != nil {
		log.Printf("Failed to unmarshal repository metadata: %v", err)
		return nil, err
	}
	return &repo, nil
}

// InvalidateRepositoryMetadata removes repository metadata from cache
func (s *Service) InvalidateRepositoryMetadata(ctx context.Context, repoID uuid.UUID) error {
	key := fmt.Sprintf("repository:%s", repoID.String())
	return s.client.Del(ctx, key).Err()
}

// Rate Limiting Methods

// IncrementWindow bumps a fixed-window counter and returns the new count.
// The expiry is set when the window opens.
func (s *Service) IncrementWindow(ctx context.Context, key string, window time.Duration) (int64, error) {
	pipe := s.client.Pipeline()
	incr := pipe.Incr(ctx, key)
	pipe.ExpireNX(ctx, key, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return incr.Val(), nil
}

// Close closes the Redis connection
func (s *Service) Close() error {
	return s.client.Close()
}
