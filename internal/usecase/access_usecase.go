package usecase

import (
	"context"

	"okapi-care-network/internal/converter"
	"okapi-care-network/internal/delivery/dto"
	"okapi-care-network/internal/domain/feature"
	"okapi-care-network/internal/domain/rbac"

	"github.com/sirupsen/logrus"
)

// AccessUsecase answers read-only questions about the permission model and
// the feature flags. Everything it serves is compiled in or fixed at start-up.
type AccessUsecase interface {
	ListPermissions(ctx context.Context) []dto.PermissionResponse
	ListRoles(ctx context.Context) []dto.RolePermissionsResponse
	GetRolePermissions(ctx context.Context, role string) dto.RolePermissionsResponse
	Check(ctx context.Context, req *dto.CheckPermissionRequest) (*dto.CheckPermissionResponse, error)
	ListFeatures(ctx context.Context) *dto.FeatureListResponse
}

type accessUsecase struct {
	log      *logrus.Logger
	checker  rbac.Checker
	features *feature.Set
}

func NewAccessUsecase(log *logrus.Logger, checker rbac.Checker, features *feature.Set) AccessUsecase {
	return &accessUsecase{
		log:      log,
		checker:  checker,
		features: features,
	}
}

func (u *accessUsecase) ListPermissions(ctx context.Context) []dto.PermissionResponse {
	return converter.PermissionsToResponses(rbac.Catalog())
}

func (u *accessUsecase) ListRoles(ctx context.Context) []dto.RolePermissionsResponse {
	roles := rbac.Roles()
	out := make([]dto.RolePermissionsResponse, len(roles))
	for i, role := range roles {
		out[i] = converter.RoleToResponse(role)
	}
	return out
}

func (u *accessUsecase) GetRolePermissions(ctx context.Context, role string) dto.RolePermissionsResponse {
	return converter.RoleToResponse(role)
}

// Check returns rbac.ErrUnknownPermission for a permission outside the catalog.
func (u *accessUsecase) Check(ctx context.Context, req *dto.CheckPermissionRequest) (*dto.CheckPermissionResponse, error) {
	permission, err := rbac.ParsePermission(req.Permission)
	if err != nil {
		u.log.Debugf("Rejected permission check: %v", err)
		return nil, err
	}

	return &dto.CheckPermissionResponse{
		Role:       req.Role,
		Permission: permission.String(),
		Allowed:    u.checker.HasPermission(req.Role, permission),
	}, nil
}

func (u *accessUsecase) ListFeatures(ctx context.Context) *dto.FeatureListResponse {
	return converter.FeatureSetToResponse(u.features)
}
