package dto

// CreateStaffRequest invites a nurse or caregiver into a facility.
type CreateStaffRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	FullName string `json:"full_name" validate:"required,min=2"`
	Role     string `json:"role" validate:"required,oneof=nurse caregiver"`
}

type StaffListResponse struct {
	Staff []UserResponse `json:"staff"`
	Total int            `json:"total"`
}
