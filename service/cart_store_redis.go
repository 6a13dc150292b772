package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/go-redis/redis/v8"

	"jascshop/models"
)

// cartTTL bounds how long an abandoned session cart survives. Sessions that
// come back within the window keep their selection.
const cartTTL = 7 * 24 * time.Hour

// RedisCartStore persists session carts as JSON documents in Redis, one key
// per session.
type RedisCartStore struct {
	client *redis.Client
}

// NewRedisCartStore initializes a Redis-backed cart store from REDIS_ADDR
func NewRedisCartStore() (*RedisCartStore, error) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		return nil, fmt.Errorf("REDIS_ADDR environment variable not set")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pong, err := client.Ping(ctx).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	log.Printf("✓ Cart store connected to Redis (ping: %s)", pong)

	return &RedisCartStore{client: client}, nil
}

// Ensure RedisCartStore implements CartStore
var _ CartStore = (*RedisCartStore)(nil)

// Close closes the Redis connection
func (s *RedisCartStore) Close() error {
	return s.client.Close()
}

func cartKey(sessionID string) string {
	return "cart:" + sessionID
}

// Get returns the session's cart, or an empty cart when none is stored
func (s *RedisCartStore) Get(ctx context.Context, sessionID string) (*models.Cart, error) {
	data, err := s.client.Get(ctx, cartKey(sessionID)).Bytes()
	if err == redis.Nil {
		return models.NewCart(sessionID), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cart from redis: %w", err)
	}

	var cart models.Cart
	if err := json.Unmarshal(data, &cart); err != nil {
		// A corrupt document should not lock the visitor out of shopping;
		// drop it and start over.
		log.Printf("⚠️ RedisCartStore: corrupt cart for session %s, resetting: %v", sessionID, err)
		return models.NewCart(sessionID), nil
	}
	if cart.Lines == nil {
		cart.Lines = make(map[string]models.CartLine)
	}
	cart.SessionID = sessionID
	return &cart, nil
}

// Put stores the session's cart with a sliding TTL
func (s *RedisCartStore) Put(ctx context.Context, cart *models.Cart) error {
	data, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("failed to marshal cart: %w", err)
	}

	if err := s.client.Set(ctx, cartKey(cart.SessionID), data, cartTTL).Err(); err != nil {
		return fmt.Errorf("failed to write cart to redis: %w", err)
	}
	return nil
}

// Delete removes the session's cart
func (s *RedisCartStore) Delete(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, cartKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("failed to delete cart from redis: %w", err)
	}
	return nil
}
