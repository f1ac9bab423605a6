package repo

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/Skotchmaster/shopsplit/services/auth/internal/models"
	"github.com/redis/go-redis/v9"
)

// staleGrace keeps an expired row around long enough for a refresh attempt to
// observe it as expired and delete it, instead of finding nothing.
const staleGrace = 24 * time.Hour

// RedisRefreshStore keeps refresh rows as hashes under refresh:<sha256>.
// Every operation is one Redis command or one MULTI block.
type RedisRefreshStore struct {
	Client *redis.Client
	Prefix string
}

func NewRedisRefreshStore(ctx context.Context, url string) (*RedisRefreshStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &RedisRefreshStore{Client: client, Prefix: "refresh:"}, nil
}

func (s *RedisRefreshStore) key(token string) string {
	return s.Prefix + Sha256Hex(token)
}

func (s *RedisRefreshStore) StoreRefresh(ctx context.Context, username, token string, expiresAt time.Time) error {
	key := s.key(token)
	_, err := s.Client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, "username", username, "expires_at", expiresAt.Unix())
		pipe.ExpireAt(ctx, key, expiresAt.Add(staleGrace))
		return nil
	})
	return err
}

func (s *RedisRefreshStore) FindRefresh(ctx context.Context, username, token string) (*models.RefreshToken, error) {
	fields, err := s.Client.HGetAll(ctx, s.key(token)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if len(fields) == 0 || fields["username"] != username {
		return nil, ErrNotFound
	}
	exp, err := strconv.ParseInt(fields["expires_at"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("corrupt refresh row: %w", err)
	}
	return &models.RefreshToken{
		Username:  username,
		TokenHash: Sha256Hex(token),
		ExpiresAt: exp,
	}, nil
}

func (s *RedisRefreshStore) DeleteRefresh(ctx context.Context, token string) error {
	return s.Client.Del(ctx, s.key(token)).Err()
}

func (s *RedisRefreshStore) Close() error {
	return s.Client.Close()
}
