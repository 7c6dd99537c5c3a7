package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"rentacar-backend/internal/domain"
	"rentacar-backend/internal/logger"
	"rentacar-backend/internal/metrics"
	"rentacar-backend/internal/repository"
)

type rentalService struct {
	rentalRepo repository.RentalRepository
	userRepo   repository.UserRepository
	carRepo    repository.CarRepository
	emailSvc   EmailService
	now        func() time.Time
}

func NewRentalService(
	rentalRepo repository.RentalRepository,
	userRepo repository.UserRepository,
	carRepo repository.CarRepository,
	emailSvc EmailService,
) RentalService {
	return &rentalService{
		rentalRepo: rentalRepo,
		userRepo:   userRepo,
		carRepo:    carRepo,
		emailSvc:   emailSvc,
		now:        time.Now,
	}
}

func (s *rentalService) today() time.Time {
	return domain.Truncate(s.now())
}

func (s *rentalService) resolveRenter(ctx context.Context, id int32) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrRenterNotFound
	}
	if err != nil {
		return nil, err
	}
	if !user.HasRole(domain.RoleRenter) {
		return nil, ErrRenterWrongRole
	}
	return user, nil
}

func (s *rentalService) resolveAdmin(ctx context.Context, id int32) (*domain.User, error) {
	admin, err := s.userRepo.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrAdminNotFound
	}
	if err != nil {
		return nil, err
	}
	if !admin.HasRole(domain.RoleAdmin) {
		return nil, ErrAdminWrongRole
	}
	return admin, nil
}

func (s *rentalService) resolveCar(ctx context.Context, id int32) (*domain.Car, error) {
	car, err := s.carRepo.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrCarNotFound
	}
	return car, err
}

// ensureAvailable fails with ErrDateRangeConflict when a non-rejected rental
// of carID other than excludeID shares a day with [start, due].
func (s *rentalService) ensureAvailable(ctx context.Context, carID int32, start, due time.Time, excludeID int32) error {
	existing, err := s.rentalRepo.FindOverlapping(ctx, carID, start, due, excludeID)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		logger.Debug("Rental overlaps existing booking", "carID", carID, "conflictID", existing[0].ID)
		return ErrDateRangeConflict
	}
	return nil
}

// validateParties runs the checks shared by create and update.
func (s *rentalService) validateParties(ctx context.Context, userID int32, adminID *int32, carID int32) (*domain.User, *domain.Car, error) {
	renter, err := s.resolveRenter(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	if adminID != nil {
		if _, err := s.resolveAdmin(ctx, *adminID); err != nil {
			return nil, nil, err
		}
	}
	car, err := s.resolveCar(ctx, carID)
	if err != nil {
		return nil, nil, err
	}
	return renter, car, nil
}

// rentalWriteError maps repository write failures onto rental errors.
func rentalWriteError(err error) error {
	switch {
	case errors.Is(err, repository.ErrRentalOverlap):
		return ErrDateRangeConflict
	case errors.Is(err, repository.ErrNotFound):
		return ErrRentalNotFound
	}
	return err
}

func (s *rentalService) loadRental(ctx context.Context, id int32) (*domain.Rental, error) {
	rt, err := s.rentalRepo.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrRentalNotFound
	}
	return rt, err
}

func (s *rentalService) CreateRental(ctx context.Context, in RentalInput) (*domain.Rental, error) {
	logger.EnterMethod("rentalService.CreateRental", "carID", in.CarID, "userID", in.UserID)

	start, due := domain.Truncate(in.StartingDate), domain.Truncate(in.DueDate)
	if start.After(due) {
		logger.ExitMethodWithError("rentalService.CreateRental", ErrInvalidDateRange)
		return nil, ErrInvalidDateRange
	}
	if in.PricePerDayCents < 0 {
		return nil, ErrInvalidPrice
	}

	renter, car, err := s.validateParties(ctx, in.UserID, in.AdminID, in.CarID)
	if err != nil {
		logger.ExitMethodWithError("rentalService.CreateRental", err, "carID", in.CarID, "userID", in.UserID)
		return nil, err
	}
	if err := s.ensureAvailable(ctx, car.ID, start, due, 0); err != nil {
		logger.ExitMethodWithError("rentalService.CreateRental", err, "carID", in.CarID)
		return nil, err
	}

	price := in.PricePerDayCents
	if price == 0 {
		price = car.PricePerDayCents
	}

	// The admin stays unset until the request is admitted or rejected.
	rental := &domain.Rental{
		CarID:            car.ID,
		UserID:           renter.ID,
		PricePerDayCents: price,
		StartingDate:     start,
		DueDate:          due,
		Car:              car.Summary(),
		User:             renter.Summary(),
	}
	if err := s.rentalRepo.Create(ctx, rental); err != nil {
		if errors.Is(err, repository.ErrRentalOverlap) {
			return nil, ErrDateRangeConflict
		}
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCarNotFound
		}
		logger.ExitMethodWithError("rentalService.CreateRental", err)
		return nil, err
	}

	metrics.IncRentalTransition("create")
	if err := s.emailSvc.SendRentalRequested(ctx, rental, renter, car); err != nil {
		logger.Warn("Failed to queue rental request email", "rentalID", rental.ID, "error", err)
	}

	logger.ExitMethod("rentalService.CreateRental", "rentalID", rental.ID)
	return rental, nil
}

func (s *rentalService) UpdateRental(ctx context.Context, id int32, upd RentalUpdate) (*domain.Rental, error) {
	logger.EnterMethod("rentalService.UpdateRental", "rentalID", id)

	rt, err := s.loadRental(ctx, id)
	if err != nil {
		return nil, err
	}

	if upd.CarID != nil {
		rt.CarID = *upd.CarID
	}
	if upd.UserID != nil {
		rt.UserID = *upd.UserID
	}
	if upd.PricePerDayCents != nil {
		if *upd.PricePerDayCents < 0 {
			return nil, fmt.Errorf("%w: %w", ErrRentalNotApplicable, ErrInvalidPrice)
		}
		rt.PricePerDayCents = *upd.PricePerDayCents
	}
	if upd.StartingDate != nil {
		rt.StartingDate = domain.Truncate(*upd.StartingDate)
	}
	if upd.DueDate != nil {
		rt.DueDate = domain.Truncate(*upd.DueDate)
	}
	if upd.EndDate != nil {
		end := domain.Truncate(*upd.EndDate)
		rt.EndDate = &end
	}
	if !rt.Period().Valid() {
		return nil, fmt.Errorf("%w: %w", ErrRentalNotApplicable, ErrInvalidDateRange)
	}

	renter, car, err := s.validateParties(ctx, rt.UserID, upd.AdminID, rt.CarID)
	if err != nil {
		logger.ExitMethodWithError("rentalService.UpdateRental", err, "rentalID", id)
		return nil, fmt.Errorf("%w: %w", ErrRentalNotApplicable, err)
	}
	if !rt.Rejected {
		if err := s.ensureAvailable(ctx, rt.CarID, rt.StartingDate, rt.DueDate, rt.ID); err != nil {
			return nil, err
		}
	}

	if err := s.rentalRepo.Update(ctx, rt); err != nil {
		return nil, rentalWriteError(err)
	}
	rt.Car = car.Summary()
	rt.User = renter.Summary()

	metrics.IncRentalTransition("update")
	logger.ExitMethod("rentalService.UpdateRental", "rentalID", id)
	return rt, nil
}

func (s *rentalService) ExtendRental(ctx context.Context, id int32, newDueDate time.Time) (*domain.Rental, error) {
	rt, err := s.loadRental(ctx, id)
	if err != nil {
		return nil, err
	}
	due := domain.Truncate(newDueDate)
	if due.Before(domain.Truncate(rt.StartingDate)) {
		return nil, ErrInvalidDateRange
	}
	rt.DueDate = due

	if !rt.Rejected {
		if err := s.ensureAvailable(ctx, rt.CarID, rt.StartingDate, due, rt.ID); err != nil {
			return nil, err
		}
	}
	if err := s.rentalRepo.Update(ctx, rt); err != nil {
		return nil, rentalWriteError(err)
	}

	metrics.IncRentalTransition("extend")
	logger.Info("Rental extended", "rentalID", id, "dueDate", due.Format(domain.DateLayout))
	return rt, nil
}

func (s *rentalService) CancelRental(ctx context.Context, id int32) (*domain.Rental, error) {
	rt, err := s.loadRental(ctx, id)
	if err != nil {
		return nil, err
	}
	if rt.Rejected {
		return rt, nil
	}

	rt.Rejected = true
	if err := s.rentalRepo.UpdateStatus(ctx, rt); err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, rentalWriteError(err)
		}
		// Rejected or deleted since it was loaded.
		current, err := s.loadRental(ctx, id)
		if err != nil {
			return nil, err
		}
		if !current.Rejected {
			return nil, ErrRentalNotFound
		}
		return current, nil
	}
	metrics.IncRentalTransition("cancel")
	logger.Info("Rental cancelled", "rentalID", id)
	return rt, nil
}

// loadForDecision returns the rental and canonical admin for admit/reject.
func (s *rentalService) loadForDecision(ctx context.Context, id, adminID int32) (*domain.Rental, *domain.User, error) {
	rt, err := s.rentalRepo.GetNonRejected(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil, ErrRentalNotFound
	}
	if err != nil {
		return nil, nil, err
	}
	admin, err := s.resolveAdmin(ctx, adminID)
	if err != nil {
		return nil, nil, err
	}
	return rt, admin, nil
}

func (s *rentalService) AdmitRentRequest(ctx context.Context, id, adminID int32) (*domain.Rental, error) {
	logger.EnterMethod("rentalService.AdmitRentRequest", "rentalID", id, "adminID", adminID)

	rt, admin, err := s.loadForDecision(ctx, id, adminID)
	if err != nil {
		logger.ExitMethodWithError("rentalService.AdmitRentRequest", err, "rentalID", id)
		return nil, err
	}

	now := s.now()
	rt.AcceptedDate = &now
	rt.Rejected = false
	rt.AdminID = &admin.ID
	rt.Admin = admin.Summary()
	if err := s.rentalRepo.UpdateStatus(ctx, rt); err != nil {
		return nil, rentalWriteError(err)
	}

	metrics.IncRentalTransition("admit")
	if err := s.emailSvc.SendRentalAdmitted(ctx, rt); err != nil {
		logger.Warn("Failed to queue rental admitted email", "rentalID", id, "error", err)
	}
	logger.ExitMethod("rentalService.AdmitRentRequest", "rentalID", id)
	return rt, nil
}

func (s *rentalService) RejectRentRequest(ctx context.Context, id, adminID int32) (*domain.Rental, error) {
	logger.EnterMethod("rentalService.RejectRentRequest", "rentalID", id, "adminID", adminID)

	rt, admin, err := s.loadForDecision(ctx, id, adminID)
	if err != nil {
		logger.ExitMethodWithError("rentalService.RejectRentRequest", err, "rentalID", id)
		return nil, err
	}

	rt.Rejected = true
	rt.AdminID = &admin.ID
	rt.Admin = admin.Summary()
	if err := s.rentalRepo.UpdateStatus(ctx, rt); err != nil {
		return nil, rentalWriteError(err)
	}

	metrics.IncRentalTransition("reject")
	if err := s.emailSvc.SendRentalRejected(ctx, rt); err != nil {
		logger.Warn("Failed to queue rental rejected email", "rentalID", id, "error", err)
	}
	logger.ExitMethod("rentalService.RejectRentRequest", "rentalID", id)
	return rt, nil
}

func (s *rentalService) RemoveRental(ctx context.Context, id int32) error {
	n, err := s.rentalRepo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrRentalNotFound
	}
	metrics.IncRentalTransition("delete")
	logger.Info("Rental removed", "rentalID", id)
	return nil
}

func (s *rentalService) FindAll(ctx context.Context) ([]domain.Rental, error) {
	return s.rentalRepo.List(ctx, repository.RentalFilter{})
}

func (s *rentalService) FindOne(ctx context.Context, id int32) (*domain.Rental, error) {
	return s.loadRental(ctx, id)
}

func (s *rentalService) FindByUser(ctx context.Context, userID int32) ([]domain.Rental, error) {
	return s.rentalRepo.List(ctx, repository.RentalFilter{UserID: &userID})
}

func (s *rentalService) FindByCar(ctx context.Context, carID int32) ([]domain.Rental, error) {
	return s.rentalRepo.List(ctx, repository.RentalFilter{CarID: &carID})
}

func (s *rentalService) FindRentsByStatus(ctx context.Context, status string) ([]domain.Rental, error) {
	st, ok := domain.ParseRentalStatus(status)
	if !ok {
		return nil, ErrInvalidStatus
	}
	return s.rentalRepo.List(ctx, repository.RentalFilter{Status: st})
}

func (s *rentalService) ListRentRequests(ctx context.Context) ([]domain.Rental, error) {
	return s.rentalRepo.List(ctx, repository.RentalFilter{})
}

func (s *rentalService) GetAllRentHistory(ctx context.Context) ([]domain.Rental, error) {
	return s.rentalRepo.List(ctx, repository.RentalFilter{})
}

func (s *rentalService) GetUserRentHistory(ctx context.Context, userID int32) ([]domain.Rental, error) {
	return s.rentalRepo.List(ctx, repository.RentalFilter{UserID: &userID})
}

func (s *rentalService) GetUnavailableDates(ctx context.Context, carID int32) ([]domain.DateRange, error) {
	return s.rentalRepo.ListUnavailableDates(ctx, carID)
}

func (s *rentalService) FindActiveRents(ctx context.Context) ([]domain.Rental, error) {
	today := s.today()
	return s.rentalRepo.List(ctx, repository.RentalFilter{ActiveOn: &today})
}

func (s *rentalService) FindPastRents(ctx context.Context) ([]domain.Rental, error) {
	today := s.today()
	return s.rentalRepo.List(ctx, repository.RentalFilter{DueBefore: &today})
}

func (s *rentalService) FindFutureRents(ctx context.Context) ([]domain.Rental, error) {
	today := s.today()
	return s.rentalRepo.List(ctx, repository.RentalFilter{StartsAfter: &today})
}

func (s *rentalService) FindDueOn(ctx context.Context, day time.Time) ([]domain.Rental, error) {
	d := domain.Truncate(day)
	return s.rentalRepo.List(ctx, repository.RentalFilter{Status: domain.RentalStatusAccepted, DueOn: &d, NotReturned: true})
}

func (s *rentalService) FindStartingOn(ctx context.Context, day time.Time) ([]domain.Rental, error) {
	d := domain.Truncate(day)
	return s.rentalRepo.List(ctx, repository.RentalFilter{Status: domain.RentalStatusAccepted, StartsOn: &d})
}
