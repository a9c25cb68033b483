package dto

import (
	"time"

	"okapi-care-network/internal/domain/entity"

	"github.com/google/uuid"
)

// Response DTOs

type AuditLogResponse struct {
	ID                int64       `json:"id"`
	UserID            *uuid.UUID  `json:"user_id,omitempty"`
	UserRole          string      `json:"user_role"`
	FacilityID        *uuid.UUID  `json:"facility_id,omitempty"`
	Action            string      `json:"action"`
	ResourceType      string      `json:"resource_type"`
	ResourceID        string      `json:"resource_id,omitempty"`
	Description       string      `json:"description,omitempty"`
	Metadata          entity.JSON `json:"metadata,omitempty"`
	IPAddress         string      `json:"ip_address,omitempty"`
	IsSecurityEvent   bool        `json:"is_security_event"`
	SecurityEventType string      `json:"security_event_type,omitempty"`
	CreatedAt         time.Time   `json:"created_at"`
}

type AuditLogListResponse struct {
	Logs  []AuditLogResponse `json:"logs"`
	Total int                `json:"total"`
}
