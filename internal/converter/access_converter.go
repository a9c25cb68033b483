package converter

import (
	"okapi-care-network/internal/delivery/dto"
	"okapi-care-network/internal/domain/feature"
	"okapi-care-network/internal/domain/rbac"
)

// PermissionsToResponses attaches display labels to permissions, keeping order.
func PermissionsToResponses(perms []rbac.Permission) []dto.PermissionResponse {
	responses := make([]dto.PermissionResponse, len(perms))
	for i, p := range perms {
		responses[i] = dto.PermissionResponse{
			Permission: p.String(),
			Label:      p.Label(),
		}
	}
	return responses
}

// RoleToResponse describes the grants of role. Unknown roles get an empty list.
func RoleToResponse(role string) dto.RolePermissionsResponse {
	return dto.RolePermissionsResponse{
		Role:        role,
		Known:       rbac.IsKnownRole(role),
		Permissions: PermissionsToResponses(rbac.PermissionsFor(role)),
	}
}

// FeatureSetToResponse lists every flag with its state plus the coming-soon subset.
func FeatureSetToResponse(set *feature.Set) *dto.FeatureListResponse {
	all := set.All()
	flags := make([]dto.FeatureFlagResponse, len(all))
	for i, f := range all {
		flags[i] = dto.FeatureFlagResponse{Flag: string(f), Enabled: set.IsEnabled(f)}
	}

	comingSoon := set.ComingSoon()
	names := make([]string, len(comingSoon))
	for i, f := range comingSoon {
		names[i] = string(f)
	}

	return &dto.FeatureListResponse{
		Flags:        flags,
		ComingSoon:   names,
		Phase2Target: feature.Phase2Target,
	}
}
