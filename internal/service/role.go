package service

import (
	"context"
	"errors"

	"rentacar-backend/internal/domain"
	"rentacar-backend/internal/logger"
	"rentacar-backend/internal/repository"
)

type roleService struct {
	roleRepo repository.RoleRepository
}

func NewRoleService(roleRepo repository.RoleRepository) RoleService {
	return &roleService{roleRepo: roleRepo}
}

// InitializeRoles seeds the default roles when the table is empty.
func (s *roleService) InitializeRoles(ctx context.Context) error {
	count, err := s.roleRepo.Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	for _, name := range domain.DefaultRoles {
		if err := s.roleRepo.Create(ctx, &domain.Role{Name: name}); err != nil {
			return err
		}
	}
	logger.Info("Seeded default roles", "count", len(domain.DefaultRoles))
	return nil
}

func (s *roleService) ListRoles(ctx context.Context) ([]domain.Role, error) {
	return s.roleRepo.List(ctx)
}

func (s *roleService) GetRoleByName(ctx context.Context, name domain.RoleName) (*domain.Role, error) {
	role, err := s.roleRepo.GetByName(ctx, name)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrRoleNotFound
	}
	return role, err
}
