package service

import (
	"context"
	"errors"
	"strings"

	"rentacar-backend/internal/domain"
	"rentacar-backend/internal/logger"
	"rentacar-backend/internal/repository"
	"rentacar-backend/internal/security"
)

type userService struct {
	userRepo repository.UserRepository
	roleRepo repository.RoleRepository
}

func NewUserService(userRepo repository.UserRepository, roleRepo repository.RoleRepository) UserService {
	return &userService{userRepo: userRepo, roleRepo: roleRepo}
}

func (s *userService) resolveRole(ctx context.Context, name domain.RoleName) (*domain.Role, error) {
	if name == "" {
		name = domain.RoleRenter
	}
	role, err := s.roleRepo.GetByName(ctx, name)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrRoleNotFound
	}
	return role, err
}

// CreateUser stores user with a hashed password and the named role.
func (s *userService) CreateUser(ctx context.Context, user *domain.User, roleName domain.RoleName, password string) error {
	user.Email = strings.TrimSpace(user.Email)
	if user.Email == "" || user.FirstName == "" {
		return ErrMissingRequiredData
	}
	if err := security.ValidatePassword(password); err != nil {
		return err
	}

	if _, err := s.userRepo.GetByEmail(ctx, user.Email); err == nil {
		return ErrEmailTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return err
	}

	role, err := s.resolveRole(ctx, roleName)
	if err != nil {
		return err
	}
	hash, err := security.HashPassword(password)
	if err != nil {
		return err
	}
	user.RoleID = role.ID
	user.Role = role
	user.PasswordHash = hash

	if err := s.userRepo.Create(ctx, user); err != nil {
		return err
	}
	logger.Info("User created", "userID", user.ID, "role", role.Name)
	return nil
}

func (s *userService) ListUsers(ctx context.Context) ([]domain.User, error) {
	return s.userRepo.List(ctx)
}

func (s *userService) GetUser(ctx context.Context, id int32) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	return user, err
}

func (s *userService) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	return user, err
}

// UpdateUser merges the non-empty profile fields of user into the stored record.
func (s *userService) UpdateUser(ctx context.Context, user *domain.User) (*domain.User, error) {
	existing, err := s.GetUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if user.FirstName != "" {
		existing.FirstName = user.FirstName
	}
	if user.LastName != "" {
		existing.LastName = user.LastName
	}
	if !user.Dob.IsZero() {
		existing.Dob = user.Dob
	}
	if user.Email != "" && !strings.EqualFold(user.Email, existing.Email) {
		if _, err := s.userRepo.GetByEmail(ctx, user.Email); err == nil {
			return nil, ErrEmailTaken
		}
		existing.Email = user.Email
	}
	if user.Address != "" {
		existing.Address = user.Address
	}
	if user.Country != "" {
		existing.Country = user.Country
	}
	if user.RoleID != 0 {
		existing.RoleID = user.RoleID
	}

	if err := s.userRepo.Update(ctx, existing); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return existing, nil
}

func (s *userService) DeleteUser(ctx context.Context, id int32) error {
	err := s.userRepo.Delete(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrUserNotFound
	}
	return err
}
