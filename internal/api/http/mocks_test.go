package http

import (
	"context"
	"io"
	"time"

	"rentacar-backend/internal/domain"
	"rentacar-backend/internal/service"

	"github.com/stretchr/testify/mock"
)

// Only the methods exercised by the tests are overridden; the embedded
// interfaces panic if anything else is called.

type MockRentalService struct {
	service.RentalService
	mock.Mock
}

func (m *MockRentalService) rental(args mock.Arguments) (*domain.Rental, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Rental), args.Error(1)
}

func (m *MockRentalService) rentals(args mock.Arguments) ([]domain.Rental, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Rental), args.Error(1)
}

func (m *MockRentalService) CreateRental(ctx context.Context, in service.RentalInput) (*domain.Rental, error) {
	return m.rental(m.Called(ctx, in))
}

func (m *MockRentalService) UpdateRental(ctx context.Context, id int32, upd service.RentalUpdate) (*domain.Rental, error) {
	return m.rental(m.Called(ctx, id, upd))
}

func (m *MockRentalService) AdmitRentRequest(ctx context.Context, id, adminID int32) (*domain.Rental, error) {
	return m.rental(m.Called(ctx, id, adminID))
}

func (m *MockRentalService) ExtendRental(ctx context.Context, id int32, due time.Time) (*domain.Rental, error) {
	return m.rental(m.Called(ctx, id, due))
}

func (m *MockRentalService) CancelRental(ctx context.Context, id int32) (*domain.Rental, error) {
	return m.rental(m.Called(ctx, id))
}

func (m *MockRentalService) FindByUser(ctx context.Context, userID int32) ([]domain.Rental, error) {
	return m.rentals(m.Called(ctx, userID))
}

func (m *MockRentalService) GetUserRentHistory(ctx context.Context, userID int32) ([]domain.Rental, error) {
	return m.rentals(m.Called(ctx, userID))
}

func (m *MockRentalService) FindOne(ctx context.Context, id int32) (*domain.Rental, error) {
	return m.rental(m.Called(ctx, id))
}

func (m *MockRentalService) FindRentsByStatus(ctx context.Context, status string) ([]domain.Rental, error) {
	return m.rentals(m.Called(ctx, status))
}

func (m *MockRentalService) ListRentRequests(ctx context.Context) ([]domain.Rental, error) {
	return m.rentals(m.Called(ctx))
}

func (m *MockRentalService) GetUnavailableDates(ctx context.Context, carID int32) ([]domain.DateRange, error) {
	args := m.Called(ctx, carID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.DateRange), args.Error(1)
}

func (m *MockRentalService) RemoveRental(ctx context.Context, id int32) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockRentalService) ExportRentHistory(ctx context.Context, w io.Writer) error {
	args := m.Called(ctx, w)
	_, _ = w.Write([]byte("xlsx"))
	return args.Error(0)
}

type MockAuthService struct {
	service.AuthService
	mock.Mock
}

func (m *MockAuthService) Login(ctx context.Context, email, password string) (*domain.User, string, string, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, "", "", args.Error(3)
	}
	return args.Get(0).(*domain.User), args.String(1), args.String(2), args.Error(3)
}

func (m *MockAuthService) ChangePassword(ctx context.Context, email, current, next string) error {
	return m.Called(ctx, email, current, next).Error(0)
}

type MockUserService struct {
	service.UserService
	mock.Mock
}

func (m *MockUserService) GetUser(ctx context.Context, id int32) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

type MockDocumentService struct {
	service.DocumentService
	mock.Mock
}

func (m *MockDocumentService) ListUserDocuments(ctx context.Context, userID int32) ([]domain.Document, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Document), args.Error(1)
}

type MockObjectStorageService struct {
	service.ObjectStorageService
	mock.Mock
}

func (m *MockObjectStorageService) PresignedURL(ctx context.Context, key string) (*service.UploadedObject, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.UploadedObject), args.Error(1)
}
