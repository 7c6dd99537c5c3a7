package postgres

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"rentacar-backend/internal/logger"
	"rentacar-backend/internal/repository"

	"github.com/lib/pq"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// exclusion_violation, raised by the rentals_no_overlap constraint
const pqExclusionViolation = "23P01"

type Store struct {
	repository.UserRepository
	repository.RoleRepository
	repository.CarRepository
	repository.CarPictureTypeRepository
	repository.PictureRepository
	repository.DocumentRepository
	repository.RentalRepository
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		UserRepository:           NewUserRepository(db),
		RoleRepository:           NewRoleRepository(db),
		CarRepository:            NewCarRepository(db),
		CarPictureTypeRepository: NewCarPictureTypeRepository(db),
		PictureRepository:        NewPictureRepository(db),
		DocumentRepository:       NewDocumentRepository(db),
		RentalRepository:         NewRentalRepository(db),
	}
}

// Migrate applies the embedded goose migrations.
func Migrate(db *sql.DB) error {
	goose.SetBaseFS(migrationsFS)
	defer goose.SetBaseFS(nil)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	logger.Info("Running database migrations")
	if err := goose.Up(db, "migrations"); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// translateError maps driver errors onto repository sentinels.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return repository.ErrNotFound
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && string(pqErr.Code) == pqExclusionViolation {
		return repository.ErrRentalOverlap
	}
	return err
}

// expectAffected turns a zero-row write into ErrNotFound.
func expectAffected(res sql.Result, err error) error {
	if err != nil {
		return translateError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}
