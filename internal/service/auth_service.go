package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"medvault/internal/config"
	"medvault/internal/domain"
	"medvault/internal/logging"
	"medvault/internal/port"
)

// Token audiences. A token is only accepted where its audience is expected.
const (
	AudienceAccess  = "access"
	AudienceRefresh = "refresh"
	AudienceShare   = "share"
)

// Claims represents the JWT claims of an account holder.
type Claims struct {
	jwt.RegisteredClaims
	UserID uuid.UUID `json:"user_id"`
	Email  string    `json:"email"`
}

// ShareClaims identifies a recipient who verified a share access code.
type ShareClaims struct {
	jwt.RegisteredClaims
	ShareID uuid.UUID `json:"share_id"`
}

// TokenPair holds access and refresh tokens.
type TokenPair struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// RegisterInput is the DTO for account registration.
type RegisterInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	FullName string `json:"full_name" binding:"required"`
}

// RegisterOutput is the created user with its first token pair.
type RegisterOutput struct {
	User   *domain.User `json:"user"`
	Tokens *TokenPair   `json:"tokens"`
}

// LoginInput is the DTO for login requests.
type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

// RefreshInput is the DTO for token refresh requests.
type RefreshInput struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// AuthService defines the authentication contract.
type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*RegisterOutput, error)
	Login(ctx context.Context, input LoginInput) (*TokenPair, error)
	RefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error)
	Me(ctx context.Context, userID uuid.UUID) (*domain.User, error)
	ValidateToken(tokenString string) (*Claims, error)
	// IssueShareToken signs a share-audience token that expires at expiresAt.
	IssueShareToken(shareID uuid.UUID, expiresAt time.Time) (string, error)
	ValidateShareToken(tokenString string) (*ShareClaims, error)
}

type authService struct {
	userRepo port.UserRepository
	cfg      config.JWTConfig
}

// NewAuthService creates a new AuthService implementation.
func NewAuthService(userRepo port.UserRepository, cfg config.JWTConfig) AuthService {
	return &authService{
		userRepo: userRepo,
		cfg:      cfg,
	}
}

func (s *authService) Register(ctx context.Context, input RegisterInput) (*RegisterOutput, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("auth.Register: hashing password: %w", err)
	}

	user := &domain.User{
		Email:        strings.ToLower(strings.TrimSpace(input.Email)),
		PasswordHash: string(hash),
		FullName:     strings.TrimSpace(input.FullName),
		IsActive:     true,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			return nil, err
		}
		return nil, fmt.Errorf("auth.Register: %w", err)
	}
	logging.API.WithField("user_id", user.ID).Info("auth.Register: account created")

	tokens, err := s.generateTokenPair(user)
	if err != nil {
		return nil, err
	}
	return &RegisterOutput{User: user, Tokens: tokens}, nil
}

func (s *authService) Login(ctx context.Context, input LoginInput) (*TokenPair, error) {
	user, err := s.userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(input.Email)))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("auth.Login: %w", err)
	}
	if !user.IsActive {
		return nil, domain.ErrUserInactive
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}

	return s.generateTokenPair(user)
}

func (s *authService) RefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.validateTokenString(refreshToken, AudienceRefresh)
	if err != nil {
		return nil, domain.ErrUnauthorized
	}

	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, domain.ErrUnauthorized
	}
	if !user.IsActive {
		return nil, domain.ErrUserInactive
	}

	return s.generateTokenPair(user)
}

func (s *authService) Me(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	return s.userRepo.GetByID(ctx, userID)
}

func (s *authService) ValidateToken(tokenString string) (*Claims, error) {
	return s.validateTokenString(tokenString, AudienceAccess)
}

func (s *authService) generateTokenPair(user *domain.User) (*TokenPair, error) {
	now := time.Now()
	accessExpiry := now.Add(s.cfg.AccessTokenExpiry)

	accessToken, err := s.sign(s.userClaims(user, AudienceAccess, now, accessExpiry))
	if err != nil {
		return nil, fmt.Errorf("signing access token: %w", err)
	}
	refreshToken, err := s.sign(s.userClaims(user, AudienceRefresh, now, now.Add(s.cfg.RefreshTokenExpiry)))
	if err != nil {
		return nil, fmt.Errorf("signing refresh token: %w", err)
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    accessExpiry,
	}, nil
}

func (s *authService) userClaims(user *domain.User, audience string, now, expiresAt time.Time) *Claims {
	return &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			Issuer:    s.cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        uuid.New().String(),
			Audience:  jwt.ClaimStrings{audience},
		},
		UserID: user.ID,
		Email:  user.Email,
	}
}

func (s *authService) IssueShareToken(shareID uuid.UUID, expiresAt time.Time) (string, error) {
	now := time.Now()
	claims := &ShareClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   shareID.String(),
			Issuer:    s.cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        uuid.New().String(),
			Audience:  jwt.ClaimStrings{AudienceShare},
		},
		ShareID: shareID,
	}
	token, err := s.sign(claims)
	if err != nil {
		return "", fmt.Errorf("signing share token: %w", err)
	}
	return token, nil
}

func (s *authService) ValidateShareToken(tokenString string) (*ShareClaims, error) {
	claims := &ShareClaims{}
	if err := s.parse(tokenString, claims, AudienceShare); err != nil {
		return nil, err
	}
	return claims, nil
}

func (s *authService) sign(claims jwt.Claims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.Secret))
}

func (s *authService) validateTokenString(tokenString, audience string) (*Claims, error) {
	claims := &Claims{}
	if err := s.parse(tokenString, claims, audience); err != nil {
		return nil, err
	}
	return claims, nil
}

func (s *authService) parse(tokenString string, claims jwt.Claims, audience string) error {
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.cfg.Secret), nil
	}, jwt.WithAudience(audience))
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrUnauthorized, err)
	}
	if !token.Valid {
		return domain.ErrUnauthorized
	}
	return nil
}
