package entity

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// AuditLog is one entry of the access trail. Security events (denied
// permissions, cross-facility attempts) share the table with regular activity.
type AuditLog struct {
	ID                int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID            *uuid.UUID `gorm:"type:uuid;index" json:"user_id,omitempty"`
	UserRole          string     `gorm:"type:varchar(50)" json:"user_role"`
	FacilityID        *uuid.UUID `gorm:"type:uuid;index" json:"facility_id,omitempty"`
	Action            string     `gorm:"type:varchar(100);not null;index" json:"action"`
	ResourceType      string     `gorm:"type:varchar(100)" json:"resource_type"`
	ResourceID        string     `gorm:"type:varchar(100)" json:"resource_id,omitempty"`
	Description       string     `gorm:"type:text" json:"description,omitempty"`
	Metadata          JSON       `gorm:"type:jsonb" json:"metadata,omitempty"`
	IPAddress         string     `gorm:"type:varchar(64)" json:"ip_address,omitempty"`
	UserAgent         string     `gorm:"type:text" json:"user_agent,omitempty"`
	IsSecurityEvent   bool       `gorm:"not null;default:false;index" json:"is_security_event"`
	SecurityEventType string     `gorm:"type:varchar(100)" json:"security_event_type,omitempty"`
	CreatedAt         time.Time  `gorm:"autoCreateTime;index" json:"created_at"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}

// AuditLogFilter narrows FindAll.
type AuditLogFilter struct {
	SecurityOnly bool
	FacilityID   *uuid.UUID
	Limit        int
}

// JSON type for GORM JSONB support
type JSON map[string]interface{}

// Value returns json value, implement driver.Valuer interface
func (j JSON) Value() (driver.Value, error) {
	if len(j) == 0 {
		return nil, nil
	}
	return json.Marshal(j)
}

// Scan scan value into Jsonb, implements sql.Scanner interface
func (j *JSON) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New(fmt.Sprint("Failed to unmarshal JSONB value:", value))
	}

	result := map[string]interface{}{}
	err := json.Unmarshal(bytes, &result)
	*j = JSON(result)
	return err
}

// Audit actions
const (
	AuditActionView          = "view"
	AuditActionCreate        = "create"
	AuditActionUpdate        = "update"
	AuditActionDelete        = "delete"
	AuditActionLogin         = "login"
	AuditActionLogout        = "logout"
	AuditActionSecurityEvent = "security_event"
)

// Security event types
const (
	SecurityEventPermissionDenied     = "permission_denied"
	SecurityEventCrossFacilityAttempt = "cross_facility_access_attempt"
	SecurityEventLoginFailed          = "login_failed"
	SecurityEventRefreshTokenReuse    = "refresh_token_reuse"
)
