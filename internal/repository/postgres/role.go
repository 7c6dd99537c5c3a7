package postgres

import (
	"context"
	"database/sql"

	"rentacar-backend/internal/domain"
	"rentacar-backend/internal/repository"
)

type roleRepository struct {
	db *sql.DB
}

func NewRoleRepository(db *sql.DB) repository.RoleRepository {
	return &roleRepository{db: db}
}

func (r *roleRepository) Create(ctx context.Context, role *domain.Role) error {
	return r.db.QueryRowContext(ctx, `INSERT INTO roles (name) VALUES ($1) RETURNING id`, role.Name).Scan(&role.ID)
}

func (r *roleRepository) GetByID(ctx context.Context, id int32) (*domain.Role, error) {
	role := &domain.Role{}
	err := r.db.QueryRowContext(ctx, `SELECT id, name FROM roles WHERE id = $1`, id).Scan(&role.ID, &role.Name)
	if err != nil {
		return nil, translateError(err)
	}
	return role, nil
}

func (r *roleRepository) GetByName(ctx context.Context, name domain.RoleName) (*domain.Role, error) {
	role := &domain.Role{}
	err := r.db.QueryRowContext(ctx, `SELECT id, name FROM roles WHERE name = $1`, name).Scan(&role.ID, &role.Name)
	if err != nil {
		return nil, translateError(err)
	}
	return role, nil
}

func (r *roleRepository) List(ctx context.Context) ([]domain.Role, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name FROM roles ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	roles := []domain.Role{}
	for rows.Next() {
		var role domain.Role
		if err := rows.Scan(&role.ID, &role.Name); err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	return roles, rows.Err()
}

func (r *roleRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM roles`).Scan(&n)
	return n, err
}
