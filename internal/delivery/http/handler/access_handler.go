package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"okapi-care-network/internal/delivery/dto"
	"okapi-care-network/internal/delivery/http/middleware"
	"okapi-care-network/internal/domain/rbac"
	"okapi-care-network/internal/usecase"
	"okapi-care-network/pkg/response"
	"okapi-care-network/pkg/validator"

	"github.com/gorilla/mux"
)

type AccessHandler struct {
	accessUsecase usecase.AccessUsecase
	validator     *validator.CustomValidator
}

func NewAccessHandler(accessUsecase usecase.AccessUsecase, validator *validator.CustomValidator) *AccessHandler {
	return &AccessHandler{
		accessUsecase: accessUsecase,
		validator:     validator,
	}
}

// ListPermissions returns the permission catalog
// @Summary List permissions
// @Tags Access
// @Produce json
// @Success 200 {object} response.Response
// @Router /access/permissions [get]
func (h *AccessHandler) ListPermissions(w http.ResponseWriter, r *http.Request) {
	response.Success(w, http.StatusOK, "Permissions retrieved successfully", h.accessUsecase.ListPermissions(r.Context()))
}

// ListRoles returns every role with its grants
// @Summary List roles
// @Tags Access
// @Produce json
// @Success 200 {object} response.Response
// @Router /access/roles [get]
func (h *AccessHandler) ListRoles(w http.ResponseWriter, r *http.Request) {
	response.Success(w, http.StatusOK, "Roles retrieved successfully", h.accessUsecase.ListRoles(r.Context()))
}

// GetRolePermissions returns one role's grants. Unknown roles yield an empty list.
// @Summary Get role permissions
// @Tags Access
// @Produce json
// @Param role path string true "Role name"
// @Success 200 {object} response.Response
// @Router /access/roles/{role}/permissions [get]
func (h *AccessHandler) GetRolePermissions(w http.ResponseWriter, r *http.Request) {
	role := mux.Vars(r)["role"]
	response.Success(w, http.StatusOK, "Role permissions retrieved successfully", h.accessUsecase.GetRolePermissions(r.Context(), role))
}

// CheckPermission answers whether a role holds a permission
// @Summary Check permission
// @Tags Access
// @Accept json
// @Produce json
// @Param request body dto.CheckPermissionRequest true "Check Request"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /access/check [post]
func (h *AccessHandler) CheckPermission(w http.ResponseWriter, r *http.Request) {
	var req dto.CheckPermissionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	result, err := h.accessUsecase.Check(r.Context(), &req)
	if err != nil {
		if errors.Is(err, rbac.ErrUnknownPermission) {
			response.ValidationError(w, map[string]string{"permission": "unknown permission"})
			return
		}
		response.InternalServerError(w, "Failed to check permission")
		return
	}

	response.Success(w, http.StatusOK, "Permission checked successfully", result)
}

// GetMyPermissions lists the permissions carried by the caller's role
// @Summary Get current user's permissions
// @Tags Auth
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /auth/me/permissions [get]
func (h *AccessHandler) GetMyPermissions(w http.ResponseWriter, r *http.Request) {
	role, ok := middleware.GetRoleFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Invalid token")
		return
	}

	response.Success(w, http.StatusOK, "Permissions retrieved successfully", h.accessUsecase.GetRolePermissions(r.Context(), role))
}

// ListFeatures returns the feature flags and what is coming soon
// @Summary List feature flags
// @Tags Features
// @Produce json
// @Success 200 {object} response.Response
// @Router /features [get]
func (h *AccessHandler) ListFeatures(w http.ResponseWriter, r *http.Request) {
	response.Success(w, http.StatusOK, "Features retrieved successfully", h.accessUsecase.ListFeatures(r.Context()))
}
