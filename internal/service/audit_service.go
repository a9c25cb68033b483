package service

import (
	"context"

	"okapi-care-network/internal/domain/entity"
	"okapi-care-network/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Actor identifies who performed an audited request and from where.
type Actor struct {
	UserID     *uuid.UUID
	Role       string
	FacilityID *uuid.UUID
	IPAddress  string
	UserAgent  string
}

// SecurityEvent describes a denied or suspicious request.
type SecurityEvent struct {
	Actor
	Type    string
	Details entity.JSON
}

// AccessEntry describes a successful action on a resource.
type AccessEntry struct {
	Actor
	Action       string
	ResourceType string
	ResourceID   string
	Description  string
	Metadata     entity.JSON
}

// SecurityEventRecorder is implemented by anything that can persist a security event.
type SecurityEventRecorder interface {
	LogSecurityEvent(ctx context.Context, event SecurityEvent)
}

// AuditService writes the audit trail. Write failures are logged and never
// propagated: an audit outage must not change the outcome of a request.
type AuditService interface {
	SecurityEventRecorder
	LogAccess(ctx context.Context, entry AccessEntry)
}

type auditService struct {
	db        *gorm.DB
	log       *logrus.Logger
	auditRepo repository.AuditLogRepository
	metrics   SecurityEventCounter
}

// SecurityEventCounter is the metrics hook for security events.
type SecurityEventCounter interface {
	ObserveSecurityEvent(eventType string)
}

func NewAuditService(db *gorm.DB, log *logrus.Logger, auditRepo repository.AuditLogRepository, metrics SecurityEventCounter) AuditService {
	return &auditService{
		db:        db,
		log:       log,
		auditRepo: auditRepo,
		metrics:   metrics,
	}
}

func (s *auditService) LogSecurityEvent(ctx context.Context, event SecurityEvent) {
	fields := logrus.Fields{
		"event": event.Type,
		"role":  event.Role,
		"ip":    event.IPAddress,
	}
	if event.UserID != nil {
		fields["user_id"] = event.UserID.String()
	}
	for k, v := range event.Details {
		fields[k] = v
	}
	s.log.WithFields(fields).Warn("Security event")

	if s.metrics != nil {
		s.metrics.ObserveSecurityEvent(event.Type)
	}

	auditLog := &entity.AuditLog{
		UserID:            event.UserID,
		UserRole:          event.Role,
		FacilityID:        event.FacilityID,
		Action:            entity.AuditActionSecurityEvent,
		ResourceType:      "security",
		Description:       event.Type,
		Metadata:          event.Details,
		IPAddress:         event.IPAddress,
		UserAgent:         event.UserAgent,
		IsSecurityEvent:   true,
		SecurityEventType: event.Type,
	}

	if err := s.auditRepo.Create(ctx, s.db, auditLog); err != nil {
		s.log.Warnf("Failed to write security event: %+v", err)
	}
}

func (s *auditService) LogAccess(ctx context.Context, entry AccessEntry) {
	role := entry.Role
	if role == "" {
		role = "anonymous"
	}

	auditLog := &entity.AuditLog{
		UserID:       entry.UserID,
		UserRole:     role,
		FacilityID:   entry.FacilityID,
		Action:       entry.Action,
		ResourceType: entry.ResourceType,
		ResourceID:   entry.ResourceID,
		Description:  entry.Description,
		Metadata:     entry.Metadata,
		IPAddress:    entry.IPAddress,
		UserAgent:    entry.UserAgent,
	}

	if err := s.auditRepo.Create(ctx, s.db, auditLog); err != nil {
		s.log.Warnf("Failed to write audit log: %+v", err)
	}
}
