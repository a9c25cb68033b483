package converter

import (
	"okapi-care-network/internal/delivery/dto"
	"okapi-care-network/internal/domain/entity"
)

// AuditLogToResponse converts a AuditLog entity to AuditLogResponse DTO
func AuditLogToResponse(log *entity.AuditLog) *dto.AuditLogResponse {
	if log == nil {
		return nil
	}

	return &dto.AuditLogResponse{
		ID:                log.ID,
		UserID:            log.UserID,
		UserRole:          log.UserRole,
		FacilityID:        log.FacilityID,
		Action:            log.Action,
		ResourceType:      log.ResourceType,
		ResourceID:        log.ResourceID,
		Description:       log.Description,
		Metadata:          log.Metadata,
		IPAddress:         log.IPAddress,
		IsSecurityEvent:   log.IsSecurityEvent,
		SecurityEventType: log.SecurityEventType,
		CreatedAt:         log.CreatedAt,
	}
}

// AuditLogsToResponses converts a slice of AuditLog entities to slice of AuditLogResponse DTOs
func AuditLogsToResponses(logs []entity.AuditLog) []dto.AuditLogResponse {
	responses := make([]dto.AuditLogResponse, len(logs))
	for i := range logs {
		responses[i] = *AuditLogToResponse(&logs[i])
	}
	return responses
}
