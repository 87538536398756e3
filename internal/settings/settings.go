package settings

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"

	"github.com/seatwise/reserver/internal/logging"
	"github.com/seatwise/reserver/internal/models"
)

const cachePrefix = "setting:"

// Service reads and writes the key/value settings table with a
// cache-aside layer on Redis. The cache client may be nil, in which
// case every read goes to the database.
type Service struct {
	db    *gorm.DB
	cache *redis.Client
	ttl   time.Duration
}

func New(db *gorm.DB, cache *redis.Client) *Service {
	return &Service{
		db:    db,
		cache: cache,
		ttl:   5 * time.Minute,
	}
}

// Get returns the stored value for key, or fallback when the key is
// absent. Cache failures degrade to a database read.
func (s *Service) Get(ctx context.Context, key, fallback string) string {
	if s.cache != nil {
		val, err := s.cache.Get(ctx, cachePrefix+key).Result()
		if err == nil {
			return val
		}
		if err != redis.Nil {
			logging.Error.Printf("settings cache read %s: %v", key, err)
		}
	}

	var setting models.Setting
	err := s.db.WithContext(ctx).Where("key = ?", key).First(&setting).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			logging.Error.Printf("settings read %s: %v", key, err)
		}
		return fallback
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cachePrefix+key, setting.Value, s.ttl).Err(); err != nil {
			logging.Error.Printf("settings cache write %s: %v", key, err)
		}
	}

	return setting.Value
}

// GetBool treats "true"/"1"/"yes" (any case) as true.
func (s *Service) GetBool(ctx context.Context, key string, fallback bool) bool {
	def := "false"
	if fallback {
		def = "true"
	}
	switch strings.ToLower(s.Get(ctx, key, def)) {
	case "true", "1", "yes":
		return true
	default:
		return false
	}
}

// Recipients splits a comma-separated address list, trimming blanks.
func (s *Service) Recipients(ctx context.Context, key string) []string {
	raw := s.Get(ctx, key, "")
	if raw == "" {
		return nil
	}

	var out []string
	for _, part := range strings.Split(raw, ",") {
		if addr := strings.TrimSpace(part); addr != "" {
			out = append(out, addr)
		}
	}
	return out
}

// Set upserts a key and invalidates its cache entry.
func (s *Service) Set(ctx context.Context, key, value string) error {
	res := s.db.WithContext(ctx).
		Model(&models.Setting{}).
		Where("key = ?", key).
		Update("value", value)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		if err := s.db.WithContext(ctx).Create(&models.Setting{Key: key, Value: value}).Error; err != nil {
			return err
		}
	}

	if s.cache != nil {
		if err := s.cache.Del(ctx, cachePrefix+key).Err(); err != nil {
			logging.Error.Printf("settings cache invalidate %s: %v", key, err)
		}
	}

	return nil
}

// List returns every stored setting, keyed for admin display.
func (s *Service) List(ctx context.Context) ([]models.Setting, error) {
	var out []models.Setting
	if err := s.db.WithContext(ctx).Order("key ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
