package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"okapi-care-network/internal/delivery/dto"
	"okapi-care-network/internal/delivery/http/middleware"
	"okapi-care-network/internal/usecase"
	"okapi-care-network/pkg/response"
	"okapi-care-network/pkg/validator"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

type StaffHandler struct {
	staffUsecase usecase.StaffUsecase
	validator    *validator.CustomValidator
}

func NewStaffHandler(staffUsecase usecase.StaffUsecase, validator *validator.CustomValidator) *StaffHandler {
	return &StaffHandler{
		staffUsecase: staffUsecase,
		validator:    validator,
	}
}

// facilityFromRequest parses the facilityId route variable and checks it
// against the scope resolved by the facility middleware.
func facilityFromRequest(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	facilityID, err := uuid.Parse(mux.Vars(r)["facilityId"])
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid facility ID", nil)
		return uuid.Nil, false
	}

	scope, ok := middleware.GetFacilityScopeFromContext(r.Context())
	if !ok || !scope.Allows(facilityID) {
		response.ErrorWithCode(w, http.StatusForbidden, response.CodeFacilityDenied, "Access denied")
		return uuid.Nil, false
	}
	return facilityID, true
}

// ListStaff lists the accounts attached to a facility
// @Summary List facility staff
// @Tags Staff
// @Security BearerAuth
// @Produce json
// @Param facilityId path string true "Facility ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /facilities/{facilityId}/staff [get]
func (h *StaffHandler) ListStaff(w http.ResponseWriter, r *http.Request) {
	facilityID, ok := facilityFromRequest(w, r)
	if !ok {
		return
	}

	staff, err := h.staffUsecase.ListStaff(r.Context(), middleware.ActorFromRequest(r), facilityID)
	if err != nil {
		response.InternalServerError(w, "Failed to get staff")
		return
	}

	response.Success(w, http.StatusOK, "Staff retrieved successfully", staff)
}

// CreateStaff creates a nurse or caregiver account in a facility
// @Summary Create staff account
// @Tags Staff
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param facilityId path string true "Facility ID"
// @Param request body dto.CreateStaffRequest true "Create Staff Request"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /facilities/{facilityId}/staff [post]
func (h *StaffHandler) CreateStaff(w http.ResponseWriter, r *http.Request) {
	facilityID, ok := facilityFromRequest(w, r)
	if !ok {
		return
	}

	var req dto.CreateStaffRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	user, err := h.staffUsecase.CreateStaff(r.Context(), middleware.ActorFromRequest(r), facilityID, &req)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrEmailAlreadyExists):
			response.Error(w, http.StatusConflict, "Email already exists", nil)
		case errors.Is(err, usecase.ErrStaffRoleNotAllowed):
			response.ValidationError(w, map[string]string{"role": err.Error()})
		default:
			response.InternalServerError(w, "Failed to create staff")
		}
		return
	}

	response.Success(w, http.StatusCreated, "Staff created successfully", user)
}
