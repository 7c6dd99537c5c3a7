package service

import (
	"context"
	"errors"

	"rentacar-backend/internal/domain"
	"rentacar-backend/internal/logger"
	"rentacar-backend/internal/repository"
)

type carPictureTypeService struct {
	typeRepo repository.CarPictureTypeRepository
}

func NewCarPictureTypeService(typeRepo repository.CarPictureTypeRepository) CarPictureTypeService {
	return &carPictureTypeService{typeRepo: typeRepo}
}

// InitializeTypes inserts any of the known picture types that are missing.
func (s *carPictureTypeService) InitializeTypes(ctx context.Context) error {
	existing, err := s.typeRepo.List(ctx)
	if err != nil {
		return err
	}
	have := make(map[domain.CarPictureType]bool, len(existing))
	for _, t := range existing {
		have[t] = true
	}
	for _, t := range domain.AllCarPictureTypes {
		if have[t] {
			continue
		}
		if err := s.typeRepo.Create(ctx, t); err != nil {
			return err
		}
		logger.Info("Seeded car picture type", "type", t)
	}
	return nil
}

func (s *carPictureTypeService) ListTypes(ctx context.Context) ([]domain.CarPictureType, error) {
	return s.typeRepo.List(ctx)
}

type pictureService struct {
	pictureRepo repository.PictureRepository
	carRepo     repository.CarRepository
}

func NewPictureService(pictureRepo repository.PictureRepository, carRepo repository.CarRepository) PictureService {
	return &pictureService{pictureRepo: pictureRepo, carRepo: carRepo}
}

func (s *pictureService) CreatePicture(ctx context.Context, p *domain.Picture) error {
	if p.Src == "" {
		return ErrMissingRequiredData
	}
	if p.Type == "" {
		p.Type = domain.CarPictureTypeOther
	}
	if !p.Type.IsValid() {
		return ErrInvalidPictureType
	}
	if _, err := s.carRepo.GetByID(ctx, p.CarID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrCarNotFound
		}
		return err
	}
	return s.pictureRepo.Create(ctx, p)
}

func (s *pictureService) ListPictures(ctx context.Context) ([]domain.Picture, error) {
	return s.pictureRepo.List(ctx)
}

func (s *pictureService) GetPicture(ctx context.Context, id int32) (*domain.Picture, error) {
	p, err := s.pictureRepo.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrPictureNotFound
	}
	return p, err
}

// FindByCar lists a car's pictures, optionally restricted to one type.
func (s *pictureService) FindByCar(ctx context.Context, carID int32, pictureType string) ([]domain.Picture, error) {
	t := domain.CarPictureType(pictureType)
	if t != "" && !t.IsValid() {
		return nil, ErrInvalidPictureType
	}
	return s.pictureRepo.ListByCar(ctx, carID, t)
}

func (s *pictureService) UpdatePicture(ctx context.Context, p *domain.Picture) (*domain.Picture, error) {
	existing, err := s.GetPicture(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	if p.Src != "" {
		existing.Src = p.Src
	}
	if p.Description != "" {
		existing.Description = p.Description
	}
	if p.Title != "" {
		existing.Title = p.Title
	}
	if p.Type != "" {
		if !p.Type.IsValid() {
			return nil, ErrInvalidPictureType
		}
		existing.Type = p.Type
	}
	if !p.Date.IsZero() {
		existing.Date = p.Date
	}

	if err := s.pictureRepo.Update(ctx, existing); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPictureNotFound
		}
		return nil, err
	}
	return s.GetPicture(ctx, existing.ID)
}

func (s *pictureService) DeletePicture(ctx context.Context, id int32) error {
	err := s.pictureRepo.Delete(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrPictureNotFound
	}
	return err
}
