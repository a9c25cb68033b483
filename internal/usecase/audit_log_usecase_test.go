package usecase

import (
	"context"
	"errors"
	"testing"

	"okapi-care-network/internal/domain/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
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

func TestAuditLogUsecase_GetAllAuditLogs(t *testing.T) {
	ctx := context.Background()
	repo := new(MockAuditLogRepository)
	uc := NewAuditLogUsecase(nil, newTestLogger(), repo)

	filter := entity.AuditLogFilter{SecurityOnly: true}
	repo.On("FindAll", ctx, mock.Anything, filter).Return([]entity.AuditLog{
		{ID: 2, Action: entity.AuditActionSecurityEvent, IsSecurityEvent: true, SecurityEventType: entity.SecurityEventPermissionDenied},
		{ID: 1, Action: entity.AuditActionSecurityEvent, IsSecurityEvent: true, SecurityEventType: entity.SecurityEventLoginFailed},
	}, nil)

	res, err := uc.GetAllAuditLogs(ctx, filter)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Total)
	assert.Equal(t, entity.SecurityEventPermissionDenied, res.Logs[0].SecurityEventType)
	repo.AssertExpectations(t)
}

func TestAuditLogUsecase_GetAuditLog(t *testing.T) {
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		repo := new(MockAuditLogRepository)
		uc := NewAuditLogUsecase(nil, newTestLogger(), repo)
		repo.On("FindByID", ctx, mock.Anything, int64(7)).Return(&entity.AuditLog{ID: 7, Action: entity.AuditActionCreate}, nil)

		res, err := uc.GetAuditLog(ctx, 7)
		require.NoError(t, err)
		assert.Equal(t, int64(7), res.ID)
	})

	t.Run("not found", func(t *testing.T) {
		repo := new(MockAuditLogRepository)
		uc := NewAuditLogUsecase(nil, newTestLogger(), repo)
		repo.On("FindByID", ctx, mock.Anything, int64(8)).Return(nil, nil)

		_, err := uc.GetAuditLog(ctx, 8)
		assert.ErrorIs(t, err, ErrAuditLogNotFound)
	})

	t.Run("repository failure", func(t *testing.T) {
		repo := new(MockAuditLogRepository)
		uc := NewAuditLogUsecase(nil, newTestLogger(), repo)
		repo.On("FindByID", ctx, mock.Anything, int64(9)).Return(nil, errors.New("boom"))

		_, err := uc.GetAuditLog(ctx, 9)
		assert.EqualError(t, err, "boom")
	})
}
