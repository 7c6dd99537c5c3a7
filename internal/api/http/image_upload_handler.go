package http

import (
	"io"
	"mime"
	"net/http"
	"path/filepath"

	"rentacar-backend/internal/logger"
	"rentacar-backend/internal/storage"

	"github.com/gorilla/mux"
)

// MockStorageHandler serves the presigned URLs handed out by the local
// filesystem storage.
type MockStorageHandler struct {
	mockStorage    *storage.MockStorageService
	maxUploadBytes int64
}

func NewMockStorageHandler(mockStorage *storage.MockStorageService, maxUploadBytes int64) *MockStorageHandler {
	return &MockStorageHandler{
		mockStorage:    mockStorage,
		maxUploadBytes: maxUploadBytes,
	}
}

// HandleMockUpload handles PUT requests to mock presigned upload URLs
func (h *MockStorageHandler) HandleMockUpload(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("key")
	if key == "" {
		writeError(w, http.StatusBadRequest, "missing key parameter")
		return
	}

	body := http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := h.mockStorage.SaveFile(key, body); err != nil {
		logger.Warn("Mock upload failed", "key", key, "error", err)
		writeServiceError(w, r, badRequest("failed to save file: %v", err))
		return
	}

	// Mimic the S3 response
	w.Header().Set("ETag", `"mock-etag-success"`)
	w.WriteHeader(http.StatusOK)
}

// HandleMockDownload streams a stored object
func (h *MockStorageHandler) HandleMockDownload(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("key")
	if key == "" {
		writeError(w, http.StatusBadRequest, "missing key parameter")
		return
	}

	file, err := h.mockStorage.ReadFile(key)
	if err != nil {
		writeError(w, http.StatusNotFound, "file not found")
		return
	}
	defer file.Close()

	contentType := mime.TypeByExtension(filepath.Ext(key))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "private, max-age=3600")

	if _, err := io.Copy(w, file); err != nil {
		logger.Warn("Mock download interrupted", "key", key, "error", err)
	}
}

// Register mounts the mock storage endpoints
func (h *MockStorageHandler) Register(router *mux.Router) {
	router.HandleFunc("/api/v1/upload/{token}", h.HandleMockUpload).Methods(http.MethodPut).Name("mock.upload")
	router.HandleFunc("/api/v1/download/{token}", h.HandleMockDownload).Methods(http.MethodGet).Name("mock.download")
}
