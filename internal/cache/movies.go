package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Clark-Hu/imdb-titles-api/internal/domain"
	"github.com/Clark-Hu/imdb-titles-api/internal/listing"
	"github.com/Clark-Hu/imdb-titles-api/internal/repository"
)

const keyPrefix = "imdb:movie:"

// Backend is the store the cache reads through to.
type Backend interface {
	List(ctx context.Context, req listing.Request) (repository.MoviePage, error)
	GetByID(ctx context.Context, id string) (domain.Movie, error)
	Create(ctx context.Context, movie domain.Movie) (domain.Movie, error)
}

// MovieCache caches single-movie lookups in Redis. Listings always hit the backend.
// Redis failures are logged and the backend answers instead.
type MovieCache struct {
	backend Backend
	client  redis.Cmdable
	ttl     time.Duration
	logger  *zap.Logger
}

// New wraps backend with a Redis read-through cache. ttl <= 0 keeps entries until evicted.
func New(backend Backend, client redis.Cmdable, ttl time.Duration, logger *zap.Logger) *MovieCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MovieCache{backend: backend, client: client, ttl: ttl, logger: logger}
}

type cachedMovie struct {
	ID      string   `json:"id"`
	Title   string   `json:"title"`
	Genres  string   `json:"genres"`
	Year    int      `json:"year"`
	Runtime int      `json:"runtime"`
	Rating  *float64 `json:"rating"`
}

func key(id string) string { return keyPrefix + id }

func (c *MovieCache) List(ctx context.Context, req listing.Request) (repository.MoviePage, error) {
	return c.backend.List(ctx, req)
}

// GetByID serves from Redis when possible. Misses are not cached.
func (c *MovieCache) GetByID(ctx context.Context, id string) (domain.Movie, error) {
	raw, err := c.client.Get(ctx, key(id)).Bytes()
	switch {
	case err == nil:
		var entry cachedMovie
		if jsonErr := json.Unmarshal(raw, &entry); jsonErr == nil {
			return domain.Movie(entry), nil
		}
		c.logger.Warn("cache: dropping corrupt entry", zap.String("id", id))
		c.client.Del(ctx, key(id))
	case !errors.Is(err, redis.Nil):
		c.logger.Warn("cache: get failed", zap.String("id", id), zap.Error(err))
	}

	movie, err := c.backend.GetByID(ctx, id)
	if err != nil {
		return domain.Movie{}, err
	}
	c.put(ctx, movie)
	return movie, nil
}

// Create writes through to the backend and primes the cache on success.
func (c *MovieCache) Create(ctx context.Context, movie domain.Movie) (domain.Movie, error) {
	created, err := c.backend.Create(ctx, movie)
	if err != nil {
		return domain.Movie{}, err
	}
	c.put(ctx, created)
	return created, nil
}

func (c *MovieCache) put(ctx context.Context, movie domain.Movie) {
	payload, err := json.Marshal(cachedMovie(movie))
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, key(movie.ID), payload, c.ttl).Err(); err != nil {
		c.logger.Warn("cache: set failed", zap.String("id", movie.ID), zap.Error(err))
	}
}

// Connect parses a redis:// URL and verifies the server answers PING.
func Connect(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}
