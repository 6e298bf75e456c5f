package service

import (
	"context"
	"crypto/rsa"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/xela07ax/transit-assistant/internal/domain"
	"github.com/xela07ax/transit-assistant/internal/infra/auth"
)

type AuthProvider interface {
	GetUserByUsername(ctx context.Context, username string) (*domain.User, error)
}

// AuthService выдает токены и сам же их проверяет (BaseValidator)
type AuthService struct {
	*auth.BaseValidator
	repo       AuthProvider
	privateKey *rsa.PrivateKey
	ttl        time.Duration
	issuer     string
	logger     *zap.Logger
}

func NewAuthService(repo AuthProvider, privateKey *rsa.PrivateKey, ttl time.Duration, issuer string, logger *zap.Logger) *AuthService {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &AuthService{
		BaseValidator: auth.NewBaseValidator(&privateKey.PublicKey, issuer),
		repo:          repo,
		privateKey:    privateKey,
		ttl:           ttl,
		issuer:        issuer,
		logger:        logger.Named("auth-service"),
	}
}

// GenerateToken: неизвестный логин и неверный пароль неразличимы снаружи (ErrInvalidCredentials)
func (s *AuthService) GenerateToken(ctx context.Context, username, password string) (*domain.TokenResponse, error) {
	user, err := s.repo.GetUserByUsername(ctx, username)
	if err != nil || user == nil {
		return nil, domain.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.logger.Info("login rejected", zap.String("username", username))
		return nil, domain.ErrInvalidCredentials
	}

	now := time.Now()
	expiresAt := now.Add(s.ttl)
	claims := &domain.CustomClaims{
		UserID: user.ID,
		Scopes: user.Scopes,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   user.ID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	signedToken, err := token.SignedString(s.privateKey)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	return &domain.TokenResponse{
		AccessToken: signedToken,
		TokenType:   "Bearer",
		ExpiresIn:   int64(s.ttl.Seconds()),
	}, nil
}
