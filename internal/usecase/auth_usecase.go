package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"

	"okapi-care-network/internal/converter"
	"okapi-care-network/internal/delivery/dto"
	"okapi-care-network/internal/domain/entity"
	"okapi-care-network/internal/domain/repository"
	"okapi-care-network/internal/service"
	"okapi-care-network/pkg/jwt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrEmailAlreadyExists = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserInactive       = errors.New("account is disabled")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrTokenRevoked       = errors.New("token has been revoked")
	ErrUserNotFound       = errors.New("user not found")
)

type AuthUsecase interface {
	Login(ctx context.Context, req *dto.LoginRequest, client service.Actor) (*dto.TokenResponse, error)
	Logout(ctx context.Context, actor service.Actor, accessTokenID, refreshToken string) error
	RefreshToken(ctx context.Context, req *dto.RefreshTokenRequest, client service.Actor) (*dto.TokenResponse, error)
	GetCurrentUser(ctx context.Context, userID uuid.UUID) (*dto.UserResponse, error)
}

// dummyPasswordHash is compared against on unknown emails so that both login
// failure paths spend the same bcrypt work.
var dummyPasswordHash = sync.OnceValue(func() []byte {
	hash, err := bcrypt.GenerateFromPassword([]byte("okapi-dummy-password"), bcrypt.DefaultCost)
	if err != nil {
		panic(err)
	}
	return hash
})

type authUsecase struct {
	db           *gorm.DB
	log          *logrus.Logger
	userRepo     repository.UserRepository
	jwtService   *jwt.JWTService
	tokenStore   *service.TokenStore
	auditService service.AuditService
}

func NewAuthUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	userRepo repository.UserRepository,
	jwtService *jwt.JWTService,
	tokenStore *service.TokenStore,
	auditService service.AuditService,
) AuthUsecase {
	return &authUsecase{
		db:           db,
		log:          log,
		userRepo:     userRepo,
		jwtService:   jwtService,
		tokenStore:   tokenStore,
		auditService: auditService,
	}
}

func (u *authUsecase) Login(ctx context.Context, req *dto.LoginRequest, client service.Actor) (*dto.TokenResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	user, err := u.userRepo.FindByEmail(ctx, u.db, email)
	if err != nil {
		u.log.Warnf("Failed to find user by email: %+v", err)
		return nil, err
	}
	if user == nil {
		_ = bcrypt.CompareHashAndPassword(dummyPasswordHash(), []byte(req.Password))
		u.loginFailed(ctx, client, email, "unknown_email")
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		client.UserID = &user.ID
		client.Role = user.Role
		u.loginFailed(ctx, client, email, "bad_password")
		return nil, ErrInvalidCredentials
	}

	if !user.IsActive {
		client.UserID = &user.ID
		client.Role = user.Role
		u.loginFailed(ctx, client, email, "inactive")
		return nil, ErrUserInactive
	}

	tokens, err := u.issueTokens(ctx, user)
	if err != nil {
		return nil, err
	}

	client.UserID = &user.ID
	client.Role = user.Role
	client.FacilityID = user.FacilityID
	u.auditService.LogAccess(ctx, service.AccessEntry{
		Actor:        client,
		Action:       entity.AuditActionLogin,
		ResourceType: "session",
		ResourceID:   user.ID.String(),
	})

	return tokens, nil
}

func (u *authUsecase) loginFailed(ctx context.Context, client service.Actor, email, reason string) {
	u.auditService.LogSecurityEvent(ctx, service.SecurityEvent{
		Actor: client,
		Type:  entity.SecurityEventLoginFailed,
		Details: entity.JSON{
			"email":  email,
			"reason": reason,
		},
	})
}

func (u *authUsecase) issueTokens(ctx context.Context, user *entity.User) (*dto.TokenResponse, error) {
	sub := jwt.Subject{
		UserID:     user.ID,
		Email:      user.Email,
		Role:       user.Role,
		FacilityID: user.FacilityID,
	}

	accessToken, accessTokenID, err := u.jwtService.GenerateAccessToken(sub)
	if err != nil {
		u.log.Warnf("Failed to generate access token: %+v", err)
		return nil, err
	}

	refreshToken, refreshTokenID, err := u.jwtService.GenerateRefreshToken(sub)
	if err != nil {
		u.log.Warnf("Failed to generate refresh token: %+v", err)
		return nil, err
	}

	if err := u.tokenStore.StorePair(ctx, user.ID, accessTokenID, refreshTokenID,
		u.jwtService.GetAccessExpiry(), u.jwtService.GetRefreshExpiry()); err != nil {
		return nil, err
	}

	return &dto.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(u.jwtService.GetAccessExpiry().Seconds()),
	}, nil
}

// Logout revokes the access token and, when it belongs to the same user, the
// refresh token supplied by the client.
func (u *authUsecase) Logout(ctx context.Context, actor service.Actor, accessTokenID, refreshToken string) error {
	if actor.UserID == nil {
		return ErrInvalidToken
	}
	userID := *actor.UserID

	refreshTokenID := ""
	if refreshToken != "" {
		claims, err := u.jwtService.ValidateToken(refreshToken)
		if err == nil && claims.TokenType == jwt.RefreshToken && claims.UserID == userID {
			refreshTokenID = claims.TokenID
		}
	}

	if err := u.tokenStore.Revoke(ctx, userID, accessTokenID, refreshTokenID); err != nil {
		return err
	}

	u.auditService.LogAccess(ctx, service.AccessEntry{
		Actor:        actor,
		Action:       entity.AuditActionLogout,
		ResourceType: "session",
		ResourceID:   userID.String(),
	})
	return nil
}

// RefreshToken rotates the pair. The user is reloaded so that role or facility
// changes apply to the new tokens. A signed refresh token that is no longer
// registered has already been used or revoked, so every session of its user
// is ended.
func (u *authUsecase) RefreshToken(ctx context.Context, req *dto.RefreshTokenRequest, client service.Actor) (*dto.TokenResponse, error) {
	claims, err := u.jwtService.ValidateToken(req.RefreshToken)
	if err != nil {
		return nil, ErrInvalidToken
	}

	if claims.TokenType != jwt.RefreshToken {
		return nil, ErrInvalidToken
	}

	consumed, err := u.tokenStore.Consume(ctx, jwt.RefreshToken, claims.UserID, claims.TokenID)
	if err != nil {
		return nil, err
	}
	if !consumed {
		u.refreshTokenReused(ctx, client, claims)
		return nil, ErrTokenRevoked
	}

	user, err := u.userRepo.FindByID(ctx, u.db, claims.UserID)
	if err != nil {
		u.log.Warnf("Failed to find user by ID: %+v", err)
		return nil, err
	}
	if user == nil || !user.IsActive {
		return nil, ErrInvalidToken
	}

	return u.issueTokens(ctx, user)
}

func (u *authUsecase) refreshTokenReused(ctx context.Context, client service.Actor, claims *jwt.Claims) {
	if err := u.tokenStore.RevokeAll(ctx, claims.UserID); err != nil {
		u.log.Warnf("Failed to revoke sessions after refresh token reuse: %+v", err)
	}

	userID := claims.UserID
	client.UserID = &userID
	client.Role = claims.Role
	client.FacilityID = claims.FacilityID
	u.auditService.LogSecurityEvent(ctx, service.SecurityEvent{
		Actor: client,
		Type:  entity.SecurityEventRefreshTokenReuse,
		Details: entity.JSON{
			"token_id": claims.TokenID,
		},
	})
}

func (u *authUsecase) GetCurrentUser(ctx context.Context, userID uuid.UUID) (*dto.UserResponse, error) {
	user, err := u.userRepo.FindByID(ctx, u.db, userID)
	if err != nil {
		u.log.Warnf("Failed to find user by ID: %+v", err)
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	return converter.UserToResponse(user), nil
}

// isDuplicateKeyError checks if the error is a PostgreSQL unique constraint violation
// containing the specified constraint name
func isDuplicateKeyError(err error, constraintName string) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// PostgreSQL error code 23505 = unique_violation
		if pgErr.Code == "23505" && strings.Contains(strings.ToLower(pgErr.ConstraintName), strings.ToLower(constraintName)) {
			return true
		}
	}
	return false
}
