package service

import (
	"context"
	"errors"

	"rentacar-backend/internal/domain"
	"rentacar-backend/internal/repository"
)

type documentService struct {
	docRepo  repository.DocumentRepository
	userRepo repository.UserRepository
}

func NewDocumentService(docRepo repository.DocumentRepository, userRepo repository.UserRepository) DocumentService {
	return &documentService{docRepo: docRepo, userRepo: userRepo}
}

func (s *documentService) CreateDocument(ctx context.Context, d *domain.Document) error {
	if d.Src == "" && d.URL == "" {
		return ErrMissingRequiredData
	}
	if _, err := s.userRepo.GetByID(ctx, d.UserID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	return s.docRepo.Create(ctx, d)
}

func (s *documentService) ListDocuments(ctx context.Context) ([]domain.Document, error) {
	return s.docRepo.List(ctx)
}

func (s *documentService) ListUserDocuments(ctx context.Context, userID int32) ([]domain.Document, error) {
	return s.docRepo.ListByUser(ctx, userID)
}

func (s *documentService) GetDocument(ctx context.Context, id int32) (*domain.Document, error) {
	d, err := s.docRepo.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrDocumentNotFound
	}
	return d, err
}

func (s *documentService) UpdateDocument(ctx context.Context, d *domain.Document) (*domain.Document, error) {
	existing, err := s.GetDocument(ctx, d.ID)
	if err != nil {
		return nil, err
	}
	if d.URL != "" {
		existing.URL = d.URL
	}
	if d.Src != "" {
		existing.Src = d.Src
	}
	if d.Title != "" {
		existing.Title = d.Title
	}
	if d.Description != "" {
		existing.Description = d.Description
	}
	if err := s.docRepo.Update(ctx, existing); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrDocumentNotFound
		}
		return nil, err
	}
	return existing, nil
}

func (s *documentService) DeleteDocument(ctx context.Context, id int32) error {
	err := s.docRepo.Delete(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrDocumentNotFound
	}
	return err
}
