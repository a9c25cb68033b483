package service

import (
	"context"
	"errors"
	"testing"

	"okapi-care-network/internal/domain/entity"
	"okapi-care-network/internal/domain/rbac"
	"okapi-care-network/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type MockAuditLogRepository struct {
	mock.Mock
}

func (m *MockAuditLogRepository) Create(ctx context.Context, db *gorm.DB, log *entity.AuditLog) error {
	args := m.Called(ctx, db, log)
	return args.Error(0)
}

func (m *MockAuditLogRepository) FindAll(ctx context.Context, db *gorm.DB, filter entity.AuditLogFilter) ([]entity.AuditLog, error) {
	args := m.Called(ctx, db, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.AuditLog), args.Error(1)
}

func (m *MockAuditLogRepository) FindByID(ctx context.Context, db *gorm.DB, id int64) (*entity.AuditLog, error) {
	args := m.Called(ctx, db, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.AuditLog), args.Error(1)
}

type countingMetrics struct {
	events []string
}

func (c *countingMetrics) ObserveSecurityEvent(eventType string) {
	c.events = append(c.events, eventType)
}

func TestAuditService_LogSecurityEvent(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	// every pooled connection would otherwise get its own empty database
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&entity.AuditLog{}))

	metrics := &countingMetrics{}
	svc := NewAuditService(db, newTestLogger(), repository.NewAuditLogRepository(), metrics)

	userID := uuid.New()
	svc.LogSecurityEvent(context.Background(), SecurityEvent{
		Actor:   Actor{UserID: &userID, Role: rbac.RoleCaregiver, IPAddress: "10.0.0.1"},
		Type:    entity.SecurityEventPermissionDenied,
		Details: entity.JSON{"required": string(rbac.StaffManage)},
	})

	var logs []entity.AuditLog
	require.NoError(t, db.Find(&logs).Error)
	require.Len(t, logs, 1)
	assert.True(t, logs[0].IsSecurityEvent)
	assert.Equal(t, entity.AuditActionSecurityEvent, logs[0].Action)
	assert.Equal(t, entity.SecurityEventPermissionDenied, logs[0].SecurityEventType)
	assert.Equal(t, rbac.RoleCaregiver, logs[0].UserRole)
	assert.Equal(t, "staff:manage", logs[0].Metadata["required"])
	assert.Equal(t, []string{entity.SecurityEventPermissionDenied}, metrics.events)
}

func TestAuditService_LogAccess(t *testing.T) {
	repo := new(MockAuditLogRepository)
	svc := NewAuditService(nil, newTestLogger(), repo, nil)

	repo.On("Create", mock.Anything, mock.Anything, mock.MatchedBy(func(log *entity.AuditLog) bool {
		return log.UserRole == "anonymous" && log.Action == entity.AuditActionView && !log.IsSecurityEvent
	})).Return(nil).Once()

	svc.LogAccess(context.Background(), AccessEntry{Action: entity.AuditActionView, ResourceType: "staff"})
	repo.AssertExpectations(t)
}

func TestAuditService_WriteFailureIsSwallowed(t *testing.T) {
	repo := new(MockAuditLogRepository)
	svc := NewAuditService(nil, newTestLogger(), repo, nil)

	repo.On("Create", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("db down"))

	assert.NotPanics(t, func() {
		svc.LogSecurityEvent(context.Background(), SecurityEvent{Type: entity.SecurityEventCrossFacilityAttempt})
		svc.LogAccess(context.Background(), AccessEntry{Action: entity.AuditActionCreate})
	})
	repo.AssertNumberOfCalls(t, "Create", 2)
}
