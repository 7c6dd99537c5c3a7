package service

import (
	"context"
	"io"
	"time"

	"rentacar-backend/internal/domain"
)

// Mailer queues an email for background delivery.
type Mailer interface {
	Enqueue(ctx context.Context, to, subject, body string) error
}

// RentalInput carries the fields of a new rental request.
type RentalInput struct {
	CarID            int32
	UserID           int32
	AdminID          *int32
	PricePerDayCents int64
	StartingDate     time.Time
	DueDate          time.Time
}

// RentalUpdate carries the fields to merge into an existing rental. Nil
// fields keep their stored value.
type RentalUpdate struct {
	CarID            *int32
	UserID           *int32
	AdminID          *int32
	PricePerDayCents *int64
	StartingDate     *time.Time
	DueDate          *time.Time
	EndDate          *time.Time
}

type RentalService interface {
	CreateRental(ctx context.Context, in RentalInput) (*domain.Rental, error)
	UpdateRental(ctx context.Context, id int32, upd RentalUpdate) (*domain.Rental, error)
	CancelRental(ctx context.Context, id int32) (*domain.Rental, error)
	AdmitRentRequest(ctx context.Context, id, adminID int32) (*domain.Rental, error)
	RejectRentRequest(ctx context.Context, id, adminID int32) (*domain.Rental, error)
	ExtendRental(ctx context.Context, id int32, newDueDate time.Time) (*domain.Rental, error)
	RemoveRental(ctx context.Context, id int32) error

	FindAll(ctx context.Context) ([]domain.Rental, error)
	FindOne(ctx context.Context, id int32) (*domain.Rental, error)
	FindByUser(ctx context.Context, userID int32) ([]domain.Rental, error)
	FindByCar(ctx context.Context, carID int32) ([]domain.Rental, error)
	FindRentsByStatus(ctx context.Context, status string) ([]domain.Rental, error)
	ListRentRequests(ctx context.Context) ([]domain.Rental, error)
	GetAllRentHistory(ctx context.Context) ([]domain.Rental, error)
	GetUserRentHistory(ctx context.Context, userID int32) ([]domain.Rental, error)
	GetUnavailableDates(ctx context.Context, carID int32) ([]domain.DateRange, error)
	FindActiveRents(ctx context.Context) ([]domain.Rental, error)
	FindPastRents(ctx context.Context) ([]domain.Rental, error)
	FindFutureRents(ctx context.Context) ([]domain.Rental, error)
	// FindDueOn and FindStartingOn return accepted rentals, used by reminder jobs.
	FindDueOn(ctx context.Context, day time.Time) ([]domain.Rental, error)
	FindStartingOn(ctx context.Context, day time.Time) ([]domain.Rental, error)
	ExportRentHistory(ctx context.Context, w io.Writer) error
}

type UserService interface {
	CreateUser(ctx context.Context, user *domain.User, roleName domain.RoleName, password string) error
	ListUsers(ctx context.Context) ([]domain.User, error)
	GetUser(ctx context.Context, id int32) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	UpdateUser(ctx context.Context, user *domain.User) (*domain.User, error)
	DeleteUser(ctx context.Context, id int32) error
}

type RoleService interface {
	InitializeRoles(ctx context.Context) error
	ListRoles(ctx context.Context) ([]domain.Role, error)
	GetRoleByName(ctx context.Context, name domain.RoleName) (*domain.Role, error)
}

type CarService interface {
	CreateCar(ctx context.Context, car *domain.Car) error
	ListCars(ctx context.Context) ([]domain.Car, error)
	GetCar(ctx context.Context, id int32) (*domain.Car, error)
	UpdateCar(ctx context.Context, car *domain.Car) (*domain.Car, error)
	DeleteCar(ctx context.Context, id int32) error
}

type CarPictureTypeService interface {
	InitializeTypes(ctx context.Context) error
	ListTypes(ctx context.Context) ([]domain.CarPictureType, error)
}

type PictureService interface {
	CreatePicture(ctx context.Context, p *domain.Picture) error
	ListPictures(ctx context.Context) ([]domain.Picture, error)
	GetPicture(ctx context.Context, id int32) (*domain.Picture, error)
	FindByCar(ctx context.Context, carID int32, pictureType string) ([]domain.Picture, error)
	UpdatePicture(ctx context.Context, p *domain.Picture) (*domain.Picture, error)
	DeletePicture(ctx context.Context, id int32) error
}

type DocumentService interface {
	CreateDocument(ctx context.Context, d *domain.Document) error
	ListDocuments(ctx context.Context) ([]domain.Document, error)
	ListUserDocuments(ctx context.Context, userID int32) ([]domain.Document, error)
	GetDocument(ctx context.Context, id int32) (*domain.Document, error)
	UpdateDocument(ctx context.Context, d *domain.Document) (*domain.Document, error)
	DeleteDocument(ctx context.Context, id int32) error
}

// RegisterInput is the self-service sign-up payload.
type RegisterInput struct {
	FirstName string
	LastName  string
	Dob       time.Time
	Email     string
	Address   string
	Country   string
	Role      domain.RoleName
	Password  string
}

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*domain.User, error)
	Login(ctx context.Context, email, password string) (*domain.User, string, string, error) // user, access, refresh
	RefreshToken(ctx context.Context, refresh string) (string, string, error)
	ChangePassword(ctx context.Context, email, currentPassword, newPassword string) error
	ForgotPassword(ctx context.Context, email string) error
	ConfirmPassword(ctx context.Context, email, code, newPassword string) error
}

// UploadedObject describes a file written to the object store.
type UploadedObject struct {
	Key       string `json:"key"`
	URL       string `json:"url"`
	ExpiresAt int64  `json:"expires_at"`
}

type ObjectStorageService interface {
	UploadDocument(ctx context.Context, userID int32, filename, contentType string, body io.Reader, size int64, title, description string) (*domain.Document, error)
	UploadCarImage(ctx context.Context, filename, contentType string, body io.Reader, size int64) (*UploadedObject, error)
	GetUploadURL(ctx context.Context, prefix, filename, contentType string) (*UploadedObject, error)
	PresignedURL(ctx context.Context, key string) (*UploadedObject, error)
	DeleteFile(ctx context.Context, key string) error
	ListFiles(ctx context.Context, prefix string) ([]string, error)
}

type EmailService interface {
	SendRentalRequested(ctx context.Context, rental *domain.Rental, renter *domain.User, car *domain.Car) error
	SendRentalAdmitted(ctx context.Context, rental *domain.Rental) error
	SendRentalRejected(ctx context.Context, rental *domain.Rental) error
	SendDueReminder(ctx context.Context, rental *domain.Rental) error
	SendStartReminder(ctx context.Context, rental *domain.Rental) error
	SendPasswordResetCode(ctx context.Context, email, name, code string) error
	SendWelcome(ctx context.Context, user *domain.User) error
}
