package repository

import (
	"context"
	"errors"

	"okapi-care-network/internal/domain/entity"
	domainRepo "okapi-care-network/internal/domain/repository"

	"gorm.io/gorm"
)

const defaultAuditLogLimit = 100

type auditLogRepository struct{}

func NewAuditLogRepository() domainRepo.AuditLogRepository {
	return &auditLogRepository{}
}

func (r *auditLogRepository) Create(ctx context.Context, db *gorm.DB, log *entity.AuditLog) error {
	return db.WithContext(ctx).Create(log).Error
}

// FindAll returns the newest entries first.
func (r *auditLogRepository) FindAll(ctx context.Context, db *gorm.DB, filter entity.AuditLogFilter) ([]entity.AuditLog, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = defaultAuditLogLimit
	}

	query := db.WithContext(ctx).Model(&entity.AuditLog{})
	if filter.SecurityOnly {
		query = query.Where("is_security_event = ?", true)
	}
	if filter.FacilityID != nil {
		query = query.Where("facility_id = ?", *filter.FacilityID)
	}

	var logs []entity.AuditLog
	err := query.Order("created_at DESC, id DESC").Limit(limit).Find(&logs).Error
	if err != nil {
		return nil, err
	}
	return logs, nil
}

// FindByID returns nil, nil when the entry does not exist.
func (r *auditLogRepository) FindByID(ctx context.Context, db *gorm.DB, id int64) (*entity.AuditLog, error) {
	var log entity.AuditLog
	err := db.WithContext(ctx).First(&log, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &log, nil
}
