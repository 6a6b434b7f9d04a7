package user

import (
	"context"
	"errors"
	"time"

	"snacket-be/internal/auth"
	"snacket-be/internal/logger"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidCredentials = errors.New("invalid phone or password")

const tokenTTL = 7 * 24 * time.Hour

type Service interface {
	Login(ctx context.Context, phone, password string) (string, error)
	Profile(ctx context.Context, userID string) (*User, error)
}

type service struct {
	repo      Repository
	jwtSecret []byte
}

func NewService(repo Repository, jwtSecret []byte) Service {
	return &service{repo: repo, jwtSecret: jwtSecret}
}

func (s *service) Login(ctx context.Context, phone, password string) (string, error) {
	u, err := s.repo.GetByPhone(ctx, phone)
	if errors.Is(err, ErrNotFound) {
		return "", ErrInvalidCredentials
	}
	if err != nil {
		return "", err
	}

	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		logger.FromCtx(ctx).Warn("failed login attempt", zap.String("phone", phone))
		return "", ErrInvalidCredentials
	}

	return auth.GenerateToken(s.jwtSecret, u.ID, u.Phone, tokenTTL)
}

func (s *service) Profile(ctx context.Context, userID string) (*User, error) {
	return s.repo.GetByID(ctx, userID)
}
