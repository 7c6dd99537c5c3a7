package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"rentacar-backend/internal/domain"
	"rentacar-backend/internal/logger"
	"rentacar-backend/internal/repository"
	"rentacar-backend/internal/security"
)

type authService struct {
	userSvc   UserService
	userRepo  repository.UserRepository
	codeStore repository.VerificationCodeStore
	tokens    security.TokenManager
	emailSvc  EmailService
}

func NewAuthService(
	userSvc UserService,
	userRepo repository.UserRepository,
	codeStore repository.VerificationCodeStore,
	tokens security.TokenManager,
	emailSvc EmailService,
) AuthService {
	return &authService{
		userSvc:   userSvc,
		userRepo:  userRepo,
		codeStore: codeStore,
		tokens:    tokens,
		emailSvc:  emailSvc,
	}
}

func (s *authService) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	user := &domain.User{
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Dob:       in.Dob,
		Email:     strings.ToLower(strings.TrimSpace(in.Email)),
		Address:   in.Address,
		Country:   in.Country,
	}
	if err := s.userSvc.CreateUser(ctx, user, in.Role, in.Password); err != nil {
		return nil, err
	}
	if err := s.emailSvc.SendWelcome(ctx, user); err != nil {
		logger.Warn("Failed to queue welcome email", "userID", user.ID, "error", err)
	}
	return user, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (*domain.User, string, string, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, "", "", ErrInvalidCredentials
		}
		return nil, "", "", err
	}
	if !security.CheckPassword(user.PasswordHash, password) {
		return nil, "", "", ErrInvalidCredentials
	}

	access, refresh, err := s.generateTokens(user)
	if err != nil {
		return nil, "", "", err
	}
	logger.Info("User logged in", "userID", user.ID)
	return user, access, refresh, nil
}

func (s *authService) RefreshToken(ctx context.Context, refresh string) (string, string, error) {
	claims, err := s.tokens.ValidateTokenType(refresh, security.TokenTypeRefresh)
	if err != nil {
		return "", "", ErrInvalidToken
	}
	// Reload so role changes and deletions take effect on refresh.
	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		return "", "", ErrInvalidToken
	}
	return s.generateTokens(user)
}

func (s *authService) ChangePassword(ctx context.Context, email, currentPassword, newPassword string) error {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrInvalidCredentials
		}
		return err
	}
	if !security.CheckPassword(user.PasswordHash, currentPassword) {
		return ErrInvalidCredentials
	}
	return s.setPassword(ctx, user.ID, newPassword)
}

// ForgotPassword stores a reset code and emails it. Unknown addresses
// succeed without sending anything.
func (s *authService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		logger.Debug("Password reset requested for unknown email")
		return nil
	}
	if err != nil {
		return err
	}

	code, err := generateCode()
	if err != nil {
		return err
	}
	if err := s.codeStore.Save(ctx, user.Email, code); err != nil {
		return fmt.Errorf("failed to store verification code: %w", err)
	}
	if err := s.emailSvc.SendPasswordResetCode(ctx, user.Email, user.FirstName, code); err != nil {
		return fmt.Errorf("failed to queue verification email: %w", err)
	}
	logger.Info("Password reset code issued", "userID", user.ID)
	return nil
}

func (s *authService) ConfirmPassword(ctx context.Context, email, code, newPassword string) error {
	if err := security.ValidatePassword(newPassword); err != nil {
		return err
	}
	ok, err := s.codeStore.Consume(ctx, email, code)
	if err != nil {
		return err
	}
	if !ok {
		return ErrInvalidResetCode
	}
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrInvalidResetCode
		}
		return err
	}
	return s.setPassword(ctx, user.ID, newPassword)
}

func (s *authService) setPassword(ctx context.Context, userID int32, password string) error {
	if err := security.ValidatePassword(password); err != nil {
		return err
	}
	hash, err := security.HashPassword(password)
	if err != nil {
		return err
	}
	if err := s.userRepo.UpdatePassword(ctx, userID, hash); err != nil {
		return err
	}
	logger.Info("Password updated", "userID", userID)
	return nil
}

func (s *authService) generateTokens(user *domain.User) (string, string, error) {
	role := ""
	if user.Role != nil {
		role = string(user.Role.Name)
	}
	access, err := s.tokens.GenerateAccessToken(user.ID, user.Email, role)
	if err != nil {
		return "", "", err
	}
	refresh, err := s.tokens.GenerateRefreshToken(user.ID, user.Email, role)
	if err != nil {
		return "", "", err
	}
	return access, refresh, nil
}

// generateCode returns a random 6-digit numeric code.
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
