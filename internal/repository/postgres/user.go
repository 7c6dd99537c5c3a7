package postgres

import (
	"context"
	"database/sql"
	"time"

	"rentacar-backend/internal/domain"
	"rentacar-backend/internal/logger"
	"rentacar-backend/internal/repository"
)

const userSelect = `SELECT u.id, u.first_name, u.last_name, u.dob, u.email, u.address, u.country, u.role_id, r.name,
	       u.password_hash, u.created_on, u.updated_on
	FROM users u
	JOIN roles r ON r.id = u.role_id`

type userRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) repository.UserRepository {
	return &userRepository{db: db}
}

func scanUser(s rowScanner) (*domain.User, error) {
	u := &domain.User{Role: &domain.Role{}}
	var dob sql.NullTime
	err := s.Scan(&u.ID, &u.FirstName, &u.LastName, &dob, &u.Email, &u.Address, &u.Country, &u.RoleID, &u.Role.Name,
		&u.PasswordHash, &u.CreatedOn, &u.UpdatedOn)
	if err != nil {
		return nil, err
	}
	if dob.Valid {
		u.Dob = dob.Time
	}
	u.Role.ID = u.RoleID
	return u, nil
}

func nullDate(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}

func (r *userRepository) Create(ctx context.Context, u *domain.User) error {
	query := `INSERT INTO users (first_name, last_name, dob, email, address, country, role_id, password_hash, created_on, updated_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10) RETURNING id`
	now := time.Now()
	u.CreatedOn = now
	u.UpdatedOn = now
	logger.DatabaseCall("INSERT", "users", "email", u.Email)
	err := r.db.QueryRowContext(ctx, query, u.FirstName, u.LastName, nullDate(u.Dob), u.Email, u.Address, u.Country, u.RoleID,
		u.PasswordHash, u.CreatedOn, u.UpdatedOn).Scan(&u.ID)
	logger.DatabaseResult("INSERT", 1, err, "user_id", u.ID)
	return err
}

func (r *userRepository) GetByID(ctx context.Context, id int32) (*domain.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx, userSelect+` WHERE u.id = $1`, id))
	if err != nil {
		return nil, translateError(err)
	}
	return u, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx, userSelect+` WHERE LOWER(u.email) = LOWER($1)`, email))
	if err != nil {
		return nil, translateError(err)
	}
	return u, nil
}

func (r *userRepository) List(ctx context.Context) ([]domain.User, error) {
	rows, err := r.db.QueryContext(ctx, userSelect+` ORDER BY u.id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []domain.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

func (r *userRepository) Update(ctx context.Context, u *domain.User) error {
	query := `UPDATE users SET first_name=$1, last_name=$2, dob=$3, email=$4, address=$5, country=$6, role_id=$7, updated_on=$8 WHERE id=$9`
	u.UpdatedOn = time.Now()
	res, err := r.db.ExecContext(ctx, query, u.FirstName, u.LastName, nullDate(u.Dob), u.Email, u.Address, u.Country, u.RoleID, u.UpdatedOn, u.ID)
	return expectAffected(res, err)
}

func (r *userRepository) UpdatePassword(ctx context.Context, id int32, passwordHash string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE users SET password_hash=$1, updated_on=$2 WHERE id=$3`, passwordHash, time.Now(), id)
	return expectAffected(res, err)
}

func (r *userRepository) Delete(ctx context.Context, id int32) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	return expectAffected(res, err)
}
