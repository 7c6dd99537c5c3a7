package service

import (
	"context"
	"errors"
	"strings"

	"rentacar-backend/internal/domain"
	"rentacar-backend/internal/logger"
	"rentacar-backend/internal/repository"
)

type carService struct {
	carRepo repository.CarRepository
}

func NewCarService(carRepo repository.CarRepository) CarService {
	return &carService{carRepo: carRepo}
}

func (s *carService) CreateCar(ctx context.Context, car *domain.Car) error {
	if strings.TrimSpace(car.Brand) == "" || strings.TrimSpace(car.Model) == "" {
		return ErrMissingRequiredData
	}
	if car.PricePerDayCents < 0 {
		return ErrInvalidPrice
	}
	if err := s.carRepo.Create(ctx, car); err != nil {
		return err
	}
	logger.Info("Car created", "carID", car.ID, "car", car.DisplayName())
	return nil
}

func (s *carService) ListCars(ctx context.Context) ([]domain.Car, error) {
	return s.carRepo.List(ctx)
}

func (s *carService) GetCar(ctx context.Context, id int32) (*domain.Car, error) {
	car, err := s.carRepo.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrCarNotFound
	}
	return car, err
}

// UpdateCar replaces the mutable fields of the stored car. Price changes do
// not affect existing rentals, which keep their booking-time snapshot.
func (s *carService) UpdateCar(ctx context.Context, car *domain.Car) (*domain.Car, error) {
	existing, err := s.GetCar(ctx, car.ID)
	if err != nil {
		return nil, err
	}
	if car.Brand != "" {
		existing.Brand = car.Brand
	}
	if car.Model != "" {
		existing.Model = car.Model
	}
	if car.Color != "" {
		existing.Color = car.Color
	}
	if car.Passengers != 0 {
		existing.Passengers = car.Passengers
	}
	if car.PricePerDayCents != 0 {
		if car.PricePerDayCents < 0 {
			return nil, ErrInvalidPrice
		}
		existing.PricePerDayCents = car.PricePerDayCents
	}
	existing.AC = car.AC

	if err := s.carRepo.Update(ctx, existing); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCarNotFound
		}
		return nil, err
	}
	return existing, nil
}

func (s *carService) DeleteCar(ctx context.Context, id int32) error {
	err := s.carRepo.Delete(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrCarNotFound
	}
	return err
}
