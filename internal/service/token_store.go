package service

import (
	"context"
	"fmt"
	"time"

	"okapi-care-network/pkg/jwt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const (
	// Redis key prefixes for issued tokens; the value is irrelevant, presence means valid.
	accessTokenKeyPrefix  = "access_token"
	refreshTokenKeyPrefix = "refresh_token"

	revokeScanCount = 100
)

// TokenStore tracks issued tokens in Redis so they can be revoked before expiry.
type TokenStore struct {
	redisClient *redis.Client
	log         *logrus.Logger
}

func NewTokenStore(redisClient *redis.Client, log *logrus.Logger) *TokenStore {
	return &TokenStore{
		redisClient: redisClient,
		log:         log,
	}
}

func tokenKey(tokenType jwt.TokenType, userID uuid.UUID, tokenID string) string {
	prefix := accessTokenKeyPrefix
	if tokenType == jwt.RefreshToken {
		prefix = refreshTokenKeyPrefix
	}
	return fmt.Sprintf("%s:%s:%s", prefix, userID.String(), tokenID)
}

// StorePair records an access/refresh pair atomically.
func (s *TokenStore) StorePair(ctx context.Context, userID uuid.UUID, accessID, refreshID string, accessTTL, refreshTTL time.Duration) error {
	pipe := s.redisClient.TxPipeline()
	pipe.Set(ctx, tokenKey(jwt.AccessToken, userID, accessID), "valid", accessTTL)
	pipe.Set(ctx, tokenKey(jwt.RefreshToken, userID, refreshID), "valid", refreshTTL)

	if _, err := pipe.Exec(ctx); err != nil {
		s.log.Warnf("Failed to store tokens for user %s: %+v", userID, err)
		return fmt.Errorf("store tokens for user %s: %w", userID, err)
	}
	return nil
}

// IsValid reports whether the token is still registered.
func (s *TokenStore) IsValid(ctx context.Context, tokenType jwt.TokenType, userID uuid.UUID, tokenID string) (bool, error) {
	exists, err := s.redisClient.Exists(ctx, tokenKey(tokenType, userID, tokenID)).Result()
	if err != nil {
		s.log.Warnf("Failed to check token validity: %+v", err)
		return false, fmt.Errorf("check token: %w", err)
	}
	return exists > 0, nil
}

// Consume deletes the token and reports whether it was present. Concurrent
// callers cannot both consume the same token.
func (s *TokenStore) Consume(ctx context.Context, tokenType jwt.TokenType, userID uuid.UUID, tokenID string) (bool, error) {
	deleted, err := s.redisClient.Del(ctx, tokenKey(tokenType, userID, tokenID)).Result()
	if err != nil {
		s.log.Warnf("Failed to consume token: %+v", err)
		return false, fmt.Errorf("consume token: %w", err)
	}
	return deleted == 1, nil
}

// Revoke removes the given tokens; empty IDs are skipped.
func (s *TokenStore) Revoke(ctx context.Context, userID uuid.UUID, accessID, refreshID string) error {
	var keys []string
	if accessID != "" {
		keys = append(keys, tokenKey(jwt.AccessToken, userID, accessID))
	}
	if refreshID != "" {
		keys = append(keys, tokenKey(jwt.RefreshToken, userID, refreshID))
	}
	if len(keys) == 0 {
		return nil
	}

	if err := s.redisClient.Del(ctx, keys...).Err(); err != nil {
		s.log.Warnf("Failed to revoke tokens for user %s: %+v", userID, err)
		return fmt.Errorf("revoke tokens for user %s: %w", userID, err)
	}
	return nil
}

// RevokeAll removes every token issued to the user.
func (s *TokenStore) RevokeAll(ctx context.Context, userID uuid.UUID) error {
	for _, prefix := range []string{accessTokenKeyPrefix, refreshTokenKeyPrefix} {
		pattern := fmt.Sprintf("%s:%s:*", prefix, userID.String())
		iter := s.redisClient.Scan(ctx, 0, pattern, revokeScanCount).Iterator()

		var keys []string
		for iter.Next(ctx) {
			keys = append(keys, iter.Val())
		}
		if err := iter.Err(); err != nil {
			s.log.Warnf("Failed to scan %s keys: %+v", prefix, err)
			return fmt.Errorf("scan %s keys: %w", prefix, err)
		}
		if len(keys) == 0 {
			continue
		}
		if err := s.redisClient.Del(ctx, keys...).Err(); err != nil {
			s.log.Warnf("Failed to delete %s keys: %+v", prefix, err)
			return fmt.Errorf("delete %s keys: %w", prefix, err)
		}
	}
	return nil
}
