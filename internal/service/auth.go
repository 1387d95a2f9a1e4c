package service

import (
	"context"
	"strings"
	"time"

	"rental-booking-backend/internal/domain"
	"rental-booking-backend/internal/logger"
	"rental-booking-backend/internal/security"

	"golang.org/x/crypto/bcrypt"
)

// Operator is a back-office account allowed to manage bookings.
type Operator struct {
	Email        string
	Name         string
	PasswordHash string
}

var errInvalidCredentials = domain.NewError(domain.KindUnauthorized, "invalid email or password")

type authService struct {
	operators map[string]Operator
	tokens    security.TokenManager
}

func NewAuthService(operators []Operator, tokens security.TokenManager) AuthService {
	byEmail := make(map[string]Operator, len(operators))
	for _, op := range operators {
		byEmail[strings.ToLower(strings.TrimSpace(op.Email))] = op
	}
	return &authService{operators: byEmail, tokens: tokens}
}

func (s *authService) Login(ctx context.Context, email, password string) (string, time.Time, error) {
	logger.EnterMethod("authService.Login", "email", email)

	op, ok := s.operators[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		logger.ExitMethodWithError("authService.Login", errInvalidCredentials, "email", email)
		return "", time.Time{}, errInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(op.PasswordHash), []byte(password)); err != nil {
		logger.ExitMethodWithError("authService.Login", errInvalidCredentials, "email", email)
		return "", time.Time{}, errInvalidCredentials
	}

	token, expiresAt, err := s.tokens.GenerateAccessToken(op.Email, op.Name)
	if err != nil {
		logger.ExitMethodWithError("authService.Login", err, "email", email)
		return "", time.Time{}, err
	}

	logger.ExitMethod("authService.Login", "email", op.Email, "expiresAt", expiresAt)
	return token, expiresAt, nil
}
