package dto

// Request DTOs

type CheckPermissionRequest struct {
	Role       string `json:"role" validate:"required"`
	Permission string `json:"permission" validate:"required"`
}

// Response DTOs

type PermissionResponse struct {
	Permission string `json:"permission"`
	Label      string `json:"label"`
}

type RolePermissionsResponse struct {
	Role        string               `json:"role"`
	Known       bool                 `json:"known"`
	Permissions []PermissionResponse `json:"permissions"`
}

type CheckPermissionResponse struct {
	Role       string `json:"role"`
	Permission string `json:"permission"`
	Allowed    bool   `json:"allowed"`
}

type FeatureFlagResponse struct {
	Flag    string `json:"flag"`
	Enabled bool   `json:"enabled"`
}

type FeatureListResponse struct {
	Flags        []FeatureFlagResponse `json:"flags"`
	ComingSoon   []string              `json:"coming_soon"`
	Phase2Target string                `json:"phase2_target"`
}
