package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/redis/go-redis/v9"

	"gymplan/internal/models"
)

// ScheduleCache keeps the rendered schedule view in Redis so repeated
// reads skip the database. The schedule store invalidates the entry on
// every publish, so a hit is always the current view.
type ScheduleCache struct {
	client *redis.Client
	ctx    context.Context
	ttl    time.Duration
}

func NewScheduleCache() (*ScheduleCache, error) {
	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		redisURL = "redis://localhost:6379/0"
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opt)
	ctx := context.Background()

	if _, err := client.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &ScheduleCache{
		client: client,
		ctx:    ctx,
		ttl:    10 * time.Minute,
	}, nil
}

func (c *ScheduleCache) Close() error {
	return c.client.Close()
}

func viewKey(userID string) string {
	return fmt.Sprintf("schedule:view:%s", userID)
}

// StoreView caches the ordered schedule for a user.
func (c *ScheduleCache) StoreView(userID string, workouts []models.Workout) error {
	data, err := json.Marshal(workouts)
	if err != nil {
		return fmt.Errorf("failed to marshal schedule view: %w", err)
	}
	if err := c.client.Set(c.ctx, viewKey(userID), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store schedule view: %w", err)
	}
	return nil
}

// GetView returns the cached schedule and whether it was present.
func (c *ScheduleCache) GetView(userID string) ([]models.Workout, bool, error) {
	data, err := c.client.Get(c.ctx, viewKey(userID)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to read schedule view: %w", err)
	}

	var workouts []models.Workout
	if err := json.Unmarshal([]byte(data), &workouts); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal schedule view: %w", err)
	}
	return workouts, true, nil
}

// Invalidate drops the cached view for a user.
func (c *ScheduleCache) Invalidate(userID string) error {
	return c.client.Del(c.ctx, viewKey(userID)).Err()
}
