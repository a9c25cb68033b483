package usecase

import (
	"context"
	"testing"

	"okapi-care-network/internal/delivery/dto"
	"okapi-care-network/internal/domain/feature"
	"okapi-care-network/internal/domain/rbac"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessUsecase(t *testing.T) {
	ctx := context.Background()
	uc := NewAccessUsecase(newTestLogger(), rbac.StaticChecker{}, feature.Defaults())

	t.Run("list permissions", func(t *testing.T) {
		perms := uc.ListPermissions(ctx)
		require.Len(t, perms, len(rbac.Catalog()))
		assert.Equal(t, "facility:read", perms[0].Permission)
		assert.NotEmpty(t, perms[0].Label)
	})

	t.Run("list roles", func(t *testing.T) {
		roles := uc.ListRoles(ctx)
		require.Len(t, roles, 4)
		assert.Equal(t, rbac.RoleAdmin, roles[0].Role)
		assert.Len(t, roles[0].Permissions, len(rbac.Catalog()))
	})

	t.Run("unknown role has no permissions", func(t *testing.T) {
		role := uc.GetRolePermissions(ctx, "janitor")
		assert.False(t, role.Known)
		assert.NotNil(t, role.Permissions)
		assert.Empty(t, role.Permissions)
	})

	t.Run("check", func(t *testing.T) {
		res, err := uc.Check(ctx, &dto.CheckPermissionRequest{Role: rbac.RoleNurse, Permission: "ehr:notes:write"})
		require.NoError(t, err)
		assert.True(t, res.Allowed)

		res, err = uc.Check(ctx, &dto.CheckPermissionRequest{Role: rbac.RoleCaregiver, Permission: "staff:manage"})
		require.NoError(t, err)
		assert.False(t, res.Allowed)

		_, err = uc.Check(ctx, &dto.CheckPermissionRequest{Role: rbac.RoleAdmin, Permission: "staff:fire"})
		assert.ErrorIs(t, err, rbac.ErrUnknownPermission)
	})

	t.Run("features", func(t *testing.T) {
		res := uc.ListFeatures(ctx)
		assert.Len(t, res.Flags, 17)
		assert.Contains(t, res.ComingSoon, "RESIDENTS")
		assert.Equal(t, feature.Phase2Target, res.Phase2Target)
	})
}
