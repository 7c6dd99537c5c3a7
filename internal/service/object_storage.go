package service

import (
	"context"
	"fmt"
	"io"
	"path"
	"regexp"
	"strings"
	"time"

	"rentacar-backend/internal/domain"
	"rentacar-backend/internal/logger"
	"rentacar-backend/internal/storage"
)

const (
	documentsPrefix = "documents/"
	carsPrefix      = "cars/"
)

var unsafeNameChars = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

type objectStorageService struct {
	store     storage.StorageInterface
	docSvc    DocumentService
	urlExpiry time.Duration
	now       func() time.Time
}

func NewObjectStorageService(store storage.StorageInterface, docSvc DocumentService, urlExpiry time.Duration) ObjectStorageService {
	if urlExpiry <= 0 {
		urlExpiry = 15 * time.Minute
	}
	return &objectStorageService{
		store:     store,
		docSvc:    docSvc,
		urlExpiry: urlExpiry,
		now:       time.Now,
	}
}

// objectKey builds "<prefix><name>-<unix>.<ext>" from an uploaded filename.
func (s *objectStorageService) objectKey(prefix, filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	base := strings.TrimSuffix(path.Base(filename), path.Ext(filename))
	base = strings.Trim(unsafeNameChars.ReplaceAllString(base, "-"), "-")
	if base == "" {
		base = "file"
	}
	return fmt.Sprintf("%s%s-%d%s", prefix, base, s.now().Unix(), ext)
}

func (s *objectStorageService) presign(ctx context.Context, key string) (*UploadedObject, error) {
	url, err := s.store.GeneratePresignedDownloadURL(ctx, key, s.urlExpiry)
	if err != nil {
		return nil, fmt.Errorf("failed to generate download url: %w", err)
	}
	return &UploadedObject{Key: key, URL: url, ExpiresAt: s.now().Add(s.urlExpiry).Unix()}, nil
}

func (s *objectStorageService) UploadDocument(ctx context.Context, userID int32, filename, contentType string, body io.Reader, size int64, title, description string) (*domain.Document, error) {
	if filename == "" {
		return nil, ErrMissingRequiredData
	}
	key := s.objectKey(documentsPrefix, filename)
	if err := s.store.PutObject(ctx, key, contentType, body, size); err != nil {
		return nil, err
	}
	obj, err := s.presign(ctx, key)
	if err != nil {
		return nil, err
	}

	if title == "" {
		title = filename
	}
	doc := &domain.Document{
		URL:         obj.URL,
		Src:         key,
		Title:       title,
		Description: description,
		UserID:      userID,
	}
	if err := s.docSvc.CreateDocument(ctx, doc); err != nil {
		// Keep the bucket free of objects no document points at.
		if delErr := s.store.DeleteFile(ctx, key); delErr != nil {
			logger.Warn("Failed to remove orphaned upload", "key", key, "error", delErr)
		}
		return nil, err
	}
	logger.Info("Document uploaded", "userID", userID, "key", key)
	return doc, nil
}

func (s *objectStorageService) UploadCarImage(ctx context.Context, filename, contentType string, body io.Reader, size int64) (*UploadedObject, error) {
	if filename == "" {
		return nil, ErrMissingRequiredData
	}
	if contentType != "" && !strings.HasPrefix(contentType, "image/") {
		return nil, fmt.Errorf("%w: content type %q is not an image", ErrMissingRequiredData, contentType)
	}
	key := s.objectKey(carsPrefix, filename)
	if err := s.store.PutObject(ctx, key, contentType, body, size); err != nil {
		return nil, err
	}
	logger.Info("Car image uploaded", "key", key)
	return s.presign(ctx, key)
}

// GetUploadURL returns a presigned URL the client can PUT the file to directly.
func (s *objectStorageService) GetUploadURL(ctx context.Context, prefix, filename, contentType string) (*UploadedObject, error) {
	switch prefix {
	case "documents":
		prefix = documentsPrefix
	case "cars":
		prefix = carsPrefix
	default:
		return nil, fmt.Errorf("%w: unknown upload prefix %q", ErrMissingRequiredData, prefix)
	}
	key := s.objectKey(prefix, filename)
	url, err := s.store.GeneratePresignedUploadURL(ctx, key, contentType, s.urlExpiry)
	if err != nil {
		return nil, fmt.Errorf("failed to generate upload url: %w", err)
	}
	return &UploadedObject{Key: key, URL: url, ExpiresAt: s.now().Add(s.urlExpiry).Unix()}, nil
}

func (s *objectStorageService) PresignedURL(ctx context.Context, key string) (*UploadedObject, error) {
	exists, _, err := s.store.FileExists(ctx, key)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrDocumentNotFound
	}
	return s.presign(ctx, key)
}

func (s *objectStorageService) DeleteFile(ctx context.Context, key string) error {
	if key == "" {
		return ErrMissingRequiredData
	}
	return s.store.DeleteFile(ctx, key)
}

func (s *objectStorageService) ListFiles(ctx context.Context, prefix string) ([]string, error) {
	return s.store.ListFiles(ctx, prefix)
}
