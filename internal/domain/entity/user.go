package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is a portal account: an admin, a facility owner or facility staff.
type User struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Email      string     `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Password   string     `gorm:"type:text;not null" json:"-"`
	FullName   string     `gorm:"type:varchar(255);not null" json:"full_name"`
	Role       string     `gorm:"type:varchar(50);not null;index" json:"role"`
	FacilityID *uuid.UUID `gorm:"type:uuid;index" json:"facility_id,omitempty"`
	IsActive   bool       `gorm:"not null;index" json:"is_active"`
	CreatedAt  time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

// BeforeCreate assigns an ID when the caller did not.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
