package jwt

import (
	"errors"
	"time"

	"okapi-care-network/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type TokenType string

const (
	AccessToken  TokenType = "access"
	RefreshToken TokenType = "refresh"
)

// Subject is the identity carried in a token.
type Subject struct {
	UserID     uuid.UUID
	Email      string
	Role       string
	FacilityID *uuid.UUID
}

type Claims struct {
	UserID     uuid.UUID  `json:"user_id"`
	Email      string     `json:"email"`
	Role       string     `json:"role"`
	FacilityID *uuid.UUID `json:"facility_id,omitempty"`
	TokenType  TokenType  `json:"token_type"`
	TokenID    string     `json:"token_id"`
	jwt.RegisteredClaims
}

// Identity returns the subject described by the claims.
func (c *Claims) Identity() Subject {
	return Subject{
		UserID:     c.UserID,
		Email:      c.Email,
		Role:       c.Role,
		FacilityID: c.FacilityID,
	}
}

type JWTService struct {
	config config.JWTConfig
}

func NewJWTService(cfg config.JWTConfig) *JWTService {
	return &JWTService{config: cfg}
}

// GenerateAccessToken returns the signed token and its ID.
func (s *JWTService) GenerateAccessToken(sub Subject) (string, string, error) {
	return s.generate(sub, AccessToken, s.config.AccessExpiry)
}

// GenerateRefreshToken returns the signed token and its ID.
func (s *JWTService) GenerateRefreshToken(sub Subject) (string, string, error) {
	return s.generate(sub, RefreshToken, s.config.RefreshExpiry)
}

func (s *JWTService) generate(sub Subject, tokenType TokenType, expiry time.Duration) (string, string, error) {
	tokenID := uuid.New().String()
	now := time.Now()
	claims := Claims{
		UserID:     sub.UserID,
		Email:      sub.Email,
		Role:       sub.Role,
		FacilityID: sub.FacilityID,
		TokenType:  tokenType,
		TokenID:    tokenID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString([]byte(s.config.Secret))
	if err != nil {
		return "", "", err
	}

	return signedToken, tokenID, nil
}

func (s *JWTService) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return []byte(s.config.Secret), nil
	})

	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}

	return claims, nil
}

func (s *JWTService) GetAccessExpiry() time.Duration {
	return s.config.AccessExpiry
}

func (s *JWTService) GetRefreshExpiry() time.Duration {
	return s.config.RefreshExpiry
}
