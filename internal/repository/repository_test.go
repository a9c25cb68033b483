package repository

import (
	"context"
	"testing"

	"okapi-care-network/internal/domain/entity"
	"okapi-care-network/internal/domain/rbac"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	// Use in-memory SQLite for testing
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	// every pooled connection would otherwise get its own empty database
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(&entity.User{}, &entity.AuditLog{})
	require.NoError(t, err)

	return db
}

func TestUserRepository(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	repo := NewUserRepository()

	facilityID := uuid.New()
	otherFacility := uuid.New()

	users := []*entity.User{
		{Email: "owner@okapi.care", Password: "x", FullName: "Olive Owner", Role: rbac.RoleOwner, FacilityID: &facilityID, IsActive: true},
		{Email: "nurse@okapi.care", Password: "x", FullName: "Nina Nurse", Role: rbac.RoleNurse, FacilityID: &facilityID, IsActive: true},
		{Email: "care@okapi.care", Password: "x", FullName: "Cal Caregiver", Role: rbac.RoleCaregiver, FacilityID: &otherFacility, IsActive: true},
	}
	for _, u := range users {
		require.NoError(t, repo.Create(ctx, db, u))
		assert.NotEqual(t, uuid.Nil, u.ID)
	}

	t.Run("FindByEmail", func(t *testing.T) {
		found, err := repo.FindByEmail(ctx, db, "nurse@okapi.care")
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, users[1].ID, found.ID)
		assert.Equal(t, rbac.RoleNurse, found.Role)
		require.NotNil(t, found.FacilityID)
		assert.Equal(t, facilityID, *found.FacilityID)

		missing, err := repo.FindByEmail(ctx, db, "nobody@okapi.care")
		require.NoError(t, err)
		assert.Nil(t, missing)
	})

	t.Run("FindByID", func(t *testing.T) {
		found, err := repo.FindByID(ctx, db, users[0].ID)
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, "Olive Owner", found.FullName)

		missing, err := repo.FindByID(ctx, db, uuid.New())
		require.NoError(t, err)
		assert.Nil(t, missing)
	})

	t.Run("FindByFacility", func(t *testing.T) {
		staff, err := repo.FindByFacility(ctx, db, facilityID)
		require.NoError(t, err)
		require.Len(t, staff, 2)
		assert.Equal(t, "Nina Nurse", staff[0].FullName)
		assert.Equal(t, "Olive Owner", staff[1].FullName)

		none, err := repo.FindByFacility(ctx, db, uuid.New())
		require.NoError(t, err)
		assert.Empty(t, none)
	})

	t.Run("duplicate email", func(t *testing.T) {
		err := repo.Create(ctx, db, &entity.User{Email: "owner@okapi.care", Password: "x", FullName: "Dup", Role: rbac.RoleOwner})
		assert.Error(t, err)
	})
}

func TestAuditLogRepository(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	repo := NewAuditLogRepository()

	userID := uuid.New()
	facilityID := uuid.New()

	entries := []*entity.AuditLog{
		{UserID: &userID, UserRole: rbac.RoleOwner, FacilityID: &facilityID, Action: entity.AuditActionCreate, ResourceType: "staff"},
		{
			UserID:            &userID,
			UserRole:          rbac.RoleCaregiver,
			Action:            entity.AuditActionSecurityEvent,
			ResourceType:      "security",
			Description:       entity.SecurityEventPermissionDenied,
			Metadata:          entity.JSON{"required": "staff:manage"},
			IsSecurityEvent:   true,
			SecurityEventType: entity.SecurityEventPermissionDenied,
		},
	}
	for _, e := range entries {
		require.NoError(t, repo.Create(ctx, db, e))
		assert.NotZero(t, e.ID)
	}

	t.Run("FindAll", func(t *testing.T) {
		logs, err := repo.FindAll(ctx, db, entity.AuditLogFilter{})
		require.NoError(t, err)
		require.Len(t, logs, 2)
		assert.Equal(t, entries[1].ID, logs[0].ID)
	})

	t.Run("FindAll security only", func(t *testing.T) {
		logs, err := repo.FindAll(ctx, db, entity.AuditLogFilter{SecurityOnly: true})
		require.NoError(t, err)
		require.Len(t, logs, 1)
		assert.Equal(t, entity.SecurityEventPermissionDenied, logs[0].SecurityEventType)
		assert.Equal(t, "staff:manage", logs[0].Metadata["required"])
	})

	t.Run("FindAll by facility with limit", func(t *testing.T) {
		logs, err := repo.FindAll(ctx, db, entity.AuditLogFilter{FacilityID: &facilityID, Limit: 1})
		require.NoError(t, err)
		require.Len(t, logs, 1)
		assert.Equal(t, entries[0].ID, logs[0].ID)
	})

	t.Run("FindByID", func(t *testing.T) {
		log, err := repo.FindByID(ctx, db, entries[0].ID)
		require.NoError(t, err)
		require.NotNil(t, log)
		assert.Equal(t, "staff", log.ResourceType)

		missing, err := repo.FindByID(ctx, db, 9999)
		require.NoError(t, err)
		assert.Nil(t, missing)
	})
}
