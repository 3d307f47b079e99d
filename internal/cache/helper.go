package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	postPagesPrefix  = "post:pages:%s"
	categoriesKey    = "post:categories"
	authorKeyPrefix  = "user:%s:author"
	postPagesPattern = "post:pages:*"
)

const (
	PostPagesTTL  = 2 * time.Minute
	CategoriesTTL = 5 * time.Minute
	AuthorTTL     = 5 * time.Minute
)

// PostPagesKey returns the cache key for one page of the post listing.
// variant is the page number or "all" for the dashboard view.
func PostPagesKey(variant string) string {
	return fmt.Sprintf(postPagesPrefix, variant)
}

// CategoriesKey returns the cache key for the distinct-category list.
func CategoriesKey() string {
	return categoriesKey
}

// AuthorKey returns the cache key for a user's comment-author projection.
func AuthorKey(userID string) string {
	return fmt.Sprintf(authorKeyPrefix, userID)
}

// GetJSON attempts to get the key from Redis and unmarshal into dest.
// Returns (true, nil) if found and unmarshaled, (false, nil) if not found.
func GetJSON(ctx context.Context, key string, dest any) (bool, error) {
	if client == nil {
		return false, nil
	}
	s, err := client.Get(ctx, key).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal([]byte(s), dest); err != nil {
		return false, err
	}
	return true, nil
}

// SetJSON marshals v and sets the key with TTL.
func SetJSON(ctx context.Context, key string, v any, ttl time.Duration) error {
	if client == nil {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return client.Set(ctx, key, b, ttl).Err()
}

// Aside tries Redis first, on miss it calls fetch (which must populate
// dest), then stores the result with ttl. Cache errors fall through to
// the fetch so a broken cache never fails a read.
func Aside(ctx context.Context, key string, dest any, ttl time.Duration, fetch func() error) error {
	found, err := GetJSON(ctx, key, dest)
	if err == nil && found {
		return nil
	}

	if err := fetch(); err != nil {
		return err
	}

	// Store into cache (best-effort)
	_ = SetJSON(ctx, key, dest, ttl)
	return nil
}

// Invalidate removes a single key.
func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

// InvalidateUser drops a user's cached author projection.
func InvalidateUser(ctx context.Context, userID string) {
	Invalidate(ctx, AuthorKey(userID))
}

// InvalidatePostPages drops every cached listing page plus the category
// list. Called on any post mutation.
func InvalidatePostPages(ctx context.Context) {
	if client == nil {
		return
	}
	Invalidate(ctx, categoriesKey)
	iter := client.Scan(ctx, 0, postPagesPattern, 0).Iterator()
	for iter.Next(ctx) {
		client.Del(ctx, iter.Val())
	}
}
