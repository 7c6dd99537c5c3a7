package repository

import (
	"context"
	"errors"
	"time"

	"rentacar-backend/internal/domain"
)

var (
	ErrNotFound = errors.New("record not found")
	// ErrRentalOverlap is returned when a write would make two non-rejected
	// rentals of the same car share a day.
	ErrRentalOverlap = errors.New("rental overlaps an existing rental")
)

type RoleRepository interface {
	Create(ctx context.Context, role *domain.Role) error
	GetByID(ctx context.Context, id int32) (*domain.Role, error)
	GetByName(ctx context.Context, name domain.RoleName) (*domain.Role, error)
	List(ctx context.Context) ([]domain.Role, error)
	Count(ctx context.Context) (int64, error)
}

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id int32) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	UpdatePassword(ctx context.Context, id int32, passwordHash string) error
	Delete(ctx context.Context, id int32) error
}

type CarRepository interface {
	Create(ctx context.Context, car *domain.Car) error
	GetByID(ctx context.Context, id int32) (*domain.Car, error)
	List(ctx context.Context) ([]domain.Car, error)
	Update(ctx context.Context, car *domain.Car) error
	Delete(ctx context.Context, id int32) error
}

type CarPictureTypeRepository interface {
	Create(ctx context.Context, t domain.CarPictureType) error
	List(ctx context.Context) ([]domain.CarPictureType, error)
}

type PictureRepository interface {
	Create(ctx context.Context, p *domain.Picture) error
	GetByID(ctx context.Context, id int32) (*domain.Picture, error)
	List(ctx context.Context) ([]domain.Picture, error)
	// ListByCar filters by type when pictureType is non-empty.
	ListByCar(ctx context.Context, carID int32, pictureType domain.CarPictureType) ([]domain.Picture, error)
	Update(ctx context.Context, p *domain.Picture) error
	Delete(ctx context.Context, id int32) error
}

type DocumentRepository interface {
	Create(ctx context.Context, d *domain.Document) error
	GetByID(ctx context.Context, id int32) (*domain.Document, error)
	List(ctx context.Context) ([]domain.Document, error)
	ListByUser(ctx context.Context, userID int32) ([]domain.Document, error)
	Update(ctx context.Context, d *domain.Document) error
	Delete(ctx context.Context, id int32) error
}

// RentalFilter narrows RentalRepository.List. Zero values are ignored.
type RentalFilter struct {
	UserID      *int32
	CarID       *int32
	Status      domain.RentalStatus
	ActiveOn    *time.Time // starting_date <= day <= due_date
	DueBefore   *time.Time // due_date < day
	StartsAfter *time.Time // starting_date > day
	DueOn       *time.Time
	StartsOn    *time.Time
	NotReturned bool // end_date IS NULL
}

type RentalRepository interface {
	// Create and Update lock the car row and re-check overlap inside one
	// transaction; both return ErrRentalOverlap on collision.
	Create(ctx context.Context, rental *domain.Rental) error
	Update(ctx context.Context, rental *domain.Rental) error
	// UpdateStatus writes the approval fields of a rental that is not
	// rejected yet; otherwise it returns ErrNotFound.
	UpdateStatus(ctx context.Context, rental *domain.Rental) error
	GetByID(ctx context.Context, id int32) (*domain.Rental, error)
	GetNonRejected(ctx context.Context, id int32) (*domain.Rental, error)
	// FindOverlapping returns non-rejected rentals of carID intersecting
	// [start, end]; excludeID of 0 excludes nothing.
	FindOverlapping(ctx context.Context, carID int32, start, end time.Time, excludeID int32) ([]domain.Rental, error)
	List(ctx context.Context, filter RentalFilter) ([]domain.Rental, error)
	ListUnavailableDates(ctx context.Context, carID int32) ([]domain.DateRange, error)
	Delete(ctx context.Context, id int32) (int64, error)
}

// VerificationCodeStore keeps short-lived password reset codes.
type VerificationCodeStore interface {
	Save(ctx context.Context, email, code string) error
	// Consume reports whether code matches and deletes it on success.
	Consume(ctx context.Context, email, code string) (bool, error)
}
