package remote

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/botirk38/ranksim/types"
	"github.com/redis/go-redis/v9"
)

// RedisStore implements NormStore using one Redis hash per field. Each hash
// maps document ids to the norm byte written as a decimal string.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// parseRedisURL parses a Redis URL and returns redis.Options
func parseRedisURL(connectionString string) (*redis.Options, error) {
	// Handle redis:// or rediss:// URLs
	if strings.HasPrefix(connectionString, "redis://") || strings.HasPrefix(connectionString, "rediss://") {
		parsedURL, err := url.Parse(connectionString)
		if err != nil {
			return nil, fmt.Errorf("invalid Redis URL: %w", err)
		}

		opts := &redis.Options{
			Addr: parsedURL.Host,
		}

		if parsedURL.Scheme == "rediss" {
			opts.TLSConfig = &tls.Config{
				MinVersion: tls.VersionTLS12,
			}
		}

		if parsedURL.User != nil {
			opts.Username = parsedURL.User.Username()
			if password, ok := parsedURL.User.Password(); ok {
				opts.Password = password
			}
		}

		// Extract database number from path
		if parsedURL.Path != "" && parsedURL.Path != "/" {
			dbStr := strings.TrimPrefix(parsedURL.Path, "/")
			if db, err := strconv.Atoi(dbStr); err == nil {
				opts.DB = db
			}
		}

		return opts, nil
	}

	// For simple address format (host:port), return minimal options
	return &redis.Options{
		Addr: connectionString,
	}, nil
}

// NewRedisStore creates a new Redis store
func NewRedisStore(config types.StoreConfig) (*RedisStore, error) {
	opts, err := parseRedisURL(config.ConnectionString)
	if err != nil {
		return nil, err
	}

	// Override with explicit config values if provided
	if config.Username != "" {
		opts.Username = config.Username
	}
	if config.Password != "" {
		opts.Password = config.Password
	}
	if config.Database != 0 {
		opts.DB = config.Database
	}

	client := redis.NewClient(opts)

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	prefix := "ranksim:"
	if prefixOpt, ok := config.Options["prefix"]; ok {
		if p, ok := prefixOpt.(string); ok {
			prefix = p
		}
	}

	return &RedisStore{
		client: client,
		prefix: prefix,
	}, nil
}

// fieldKey returns the hash key holding the norms of field
func (s *RedisStore) fieldKey(field string) string {
	return s.prefix + "norms:" + field
}

func parseNorm(value string) (byte, error) {
	n, err := strconv.ParseUint(value, 10, 8)
	if err != nil {
		return 0, fmt.Errorf("invalid norm %q: %w", value, err)
	}
	return byte(n), nil
}

// SetNorm stores a norm using HSET
func (s *RedisStore) SetNorm(ctx context.Context, field, docID string, norm byte) error {
	if err := s.client.HSet(ctx, s.fieldKey(field), docID, int(norm)).Err(); err != nil {
		return fmt.Errorf("failed to set norm in Redis: %w", err)
	}
	return nil
}

// GetNorm retrieves a norm using HGET
func (s *RedisStore) GetNorm(ctx context.Context, field, docID string) (byte, bool, error) {
	value, err := s.client.HGet(ctx, s.fieldKey(field), docID).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to get norm from Redis: %w", err)
	}

	norm, err := parseNorm(value)
	if err != nil {
		return 0, false, err
	}
	return norm, true, nil
}

// GetNorms retrieves the norms of several documents using HMGET
func (s *RedisStore) GetNorms(ctx context.Context, field string, docIDs []string) (map[string]byte, error) {
	result := make(map[string]byte, len(docIDs))
	if len(docIDs) == 0 {
		return result, nil
	}

	values, err := s.client.HMGet(ctx, s.fieldKey(field), docIDs...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get norms from Redis: %w", err)
	}

	for i, v := range values {
		str, ok := v.(string)
		if !ok {
			continue
		}
		norm, err := parseNorm(str)
		if err != nil {
			return nil, err
		}
		result[docIDs[i]] = norm
	}
	return result, nil
}

// DeleteNorm removes a norm using HDEL
func (s *RedisStore) DeleteNorm(ctx context.Context, field, docID string) error {
	if err := s.client.HDel(ctx, s.fieldKey(field), docID).Err(); err != nil {
		return fmt.Errorf("failed to delete norm from Redis: %w", err)
	}
	return nil
}

// Docs returns the documents holding a norm for field using HKEYS
func (s *RedisStore) Docs(ctx context.Context, field string) ([]string, error) {
	docs, err := s.client.HKeys(ctx, s.fieldKey(field)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list documents in Redis: %w", err)
	}
	return docs, nil
}

// scanFieldKeys returns every field hash key under our prefix
func (s *RedisStore) scanFieldKeys(ctx context.Context) ([]string, error) {
	pattern := s.prefix + "norms:*"
	var keys []string
	var cursor uint64

	for {
		result, nextCursor, err := s.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to scan keys from Redis: %w", err)
		}

		keys = append(keys, result...)
		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}

	return keys, nil
}

// Fields returns the fields holding norms
func (s *RedisStore) Fields(ctx context.Context) ([]string, error) {
	keys, err := s.scanFieldKeys(ctx)
	if err != nil {
		return nil, err
	}

	prefix := s.prefix + "norms:"
	fields := make([]string, 0, len(keys))
	for _, key := range keys {
		fields = append(fields, strings.TrimPrefix(key, prefix))
	}
	return fields, nil
}

// Flush removes every field hash under our prefix
func (s *RedisStore) Flush(ctx context.Context) error {
	keys, err := s.scanFieldKeys(ctx)
	if err != nil {
		return err
	}

	if len(keys) > 0 {
		if err := s.client.Del(ctx, keys...).Err(); err != nil {
			return fmt.Errorf("failed to flush Redis: %w", err)
		}
	}
	return nil
}

// Len returns the number of norms under our prefix
func (s *RedisStore) Len(ctx context.Context) (int, error) {
	keys, err := s.scanFieldKeys(ctx)
	if err != nil {
		return 0, err
	}
	if len(keys) == 0 {
		return 0, nil
	}

	pipe := s.client.Pipeline()
	counts := make([]*redis.IntCmd, len(keys))
	for i, key := range keys {
		counts[i] = pipe.HLen(ctx, key)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("failed to count norms in Redis: %w", err)
	}

	total := 0
	for _, c := range counts {
		total += int(c.Val())
	}
	return total, nil
}

// Close closes the Redis connection
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// SetNormAsync stores a norm asynchronously
func (s *RedisStore) SetNormAsync(ctx context.Context, field, docID string, norm byte) <-chan error {
	errCh := make(chan error, 1)
	go func() {
		defer close(errCh)
		errCh <- s.SetNorm(ctx, field, docID, norm)
	}()
	return errCh
}
