package usecase

import (
	"context"
	"errors"
	"strings"

	"okapi-care-network/internal/converter"
	"okapi-care-network/internal/delivery/dto"
	"okapi-care-network/internal/domain/entity"
	"okapi-care-network/internal/domain/rbac"
	"okapi-care-network/internal/domain/repository"
	"okapi-care-network/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrStaffRoleNotAllowed = errors.New("staff role must be nurse or caregiver")
)

type StaffUsecase interface {
	ListStaff(ctx context.Context, actor service.Actor, facilityID uuid.UUID) (*dto.StaffListResponse, error)
	CreateStaff(ctx context.Context, actor service.Actor, facilityID uuid.UUID, req *dto.CreateStaffRequest) (*dto.UserResponse, error)
}

type staffUsecase struct {
	db           *gorm.DB
	log          *logrus.Logger
	userRepo     repository.UserRepository
	auditService service.AuditService
}

func NewStaffUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	userRepo repository.UserRepository,
	auditService service.AuditService,
) StaffUsecase {
	return &staffUsecase{
		db:           db,
		log:          log,
		userRepo:     userRepo,
		auditService: auditService,
	}
}

func (u *staffUsecase) ListStaff(ctx context.Context, actor service.Actor, facilityID uuid.UUID) (*dto.StaffListResponse, error) {
	users, err := u.userRepo.FindByFacility(ctx, u.db, facilityID)
	if err != nil {
		u.log.Warnf("Failed to find staff by facility: %+v", err)
		return nil, err
	}

	actor.FacilityID = &facilityID
	u.auditService.LogAccess(ctx, service.AccessEntry{
		Actor:        actor,
		Action:       entity.AuditActionView,
		ResourceType: "staff",
		Description:  "Listed facility staff",
		Metadata:     entity.JSON{"count": len(users)},
	})

	return &dto.StaffListResponse{
		Staff: converter.UsersToResponses(users),
		Total: len(users),
	}, nil
}

func (u *staffUsecase) CreateStaff(ctx context.Context, actor service.Actor, facilityID uuid.UUID, req *dto.CreateStaffRequest) (*dto.UserResponse, error) {
	if req.Role != rbac.RoleNurse && req.Role != rbac.RoleCaregiver {
		return nil, ErrStaffRoleNotAllowed
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	existing, err := u.userRepo.FindByEmail(ctx, tx, email)
	if err != nil {
		u.log.Warnf("Failed to find user by email: %+v", err)
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailAlreadyExists
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		u.log.Warnf("Failed to hash password: %+v", err)
		return nil, err
	}

	user := &entity.User{
		Email:      email,
		Password:   string(hashedPassword),
		FullName:   req.FullName,
		Role:       req.Role,
		FacilityID: &facilityID,
		IsActive:   true,
	}

	if err := u.userRepo.Create(ctx, tx, user); err != nil {
		if isDuplicateKeyError(err, "email") {
			return nil, ErrEmailAlreadyExists
		}
		u.log.Warnf("Failed to create staff user: %+v", err)
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	actor.FacilityID = &facilityID
	u.auditService.LogAccess(ctx, service.AccessEntry{
		Actor:        actor,
		Action:       entity.AuditActionCreate,
		ResourceType: "staff",
		ResourceID:   user.ID.String(),
		Description:  "Created staff account",
		Metadata:     entity.JSON{"role": user.Role},
	})

	return converter.UserToResponse(user), nil
}
