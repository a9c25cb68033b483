package usecase

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"okapi-care-network/config"
	"okapi-care-network/internal/domain/entity"
	"okapi-care-network/internal/service"
	"okapi-care-network/pkg/jwt"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&entity.User{}, &entity.AuditLog{}))
	return db
}

func setupTokenStore(t *testing.T) (*service.TokenStore, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return service.NewTokenStore(client, newTestLogger()), mr
}

func newTestJWTService() *jwt.JWTService {
	return jwt.NewJWTService(config.JWTConfig{
		Secret:        "test-secret",
		AccessExpiry:  15 * time.Minute,
		RefreshExpiry: time.Hour,
	})
}

func seedUser(t *testing.T, db *gorm.DB, email, password, role string, facilityID *uuid.UUID, active bool) *entity.User {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)

	user := &entity.User{
		Email:      email,
		Password:   string(hash),
		FullName:   "Test " + role,
		Role:       role,
		FacilityID: facilityID,
		IsActive:   active,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// recordingAudit keeps everything written to the audit trail in memory.
type recordingAudit struct {
	mu      sync.Mutex
	events  []service.SecurityEvent
	entries []service.AccessEntry
}

func (r *recordingAudit) LogSecurityEvent(ctx context.Context, event service.SecurityEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *recordingAudit) LogAccess(ctx context.Context, entry service.AccessEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entry)
}
