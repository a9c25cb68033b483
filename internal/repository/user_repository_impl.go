package repository

import (
	"context"
	"errors"

	"okapi-care-network/internal/domain/entity"
	domainRepo "okapi-care-network/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type userRepository struct{}

func NewUserRepository() domainRepo.UserRepository {
	return &userRepository{}
}

func (r *userRepository) Create(ctx context.Context, db *gorm.DB, user *entity.User) error {
	return db.WithContext(ctx).Create(user).Error
}

// FindByEmail returns nil, nil when no user matches.
func (r *userRepository) FindByEmail(ctx context.Context, db *gorm.DB, email string) (*entity.User, error) {
	var user entity.User
	err := db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// FindByID returns nil, nil when no user matches.
func (r *userRepository) FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*entity.User, error) {
	var user entity.User
	err := db.WithContext(ctx).Where("id = ?", id).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByFacility(ctx context.Context, db *gorm.DB, facilityID uuid.UUID) ([]entity.User, error) {
	var users []entity.User
	err := db.WithContext(ctx).
		Where("facility_id = ?", facilityID).
		Order("full_name").
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}
