package http

import (
	"context"
	"errors"
	"mime"
	"mime/multipart"
	"net/http"
	"path"
	"slices"
	"strings"

	"rentacar-backend/internal/service"

	"github.com/gorilla/mux"
)

// StorageHandler exposes the object store over multipart uploads and
// presigned URLs.
type StorageHandler struct {
	objectSvc      service.ObjectStorageService
	docSvc         service.DocumentService
	maxUploadBytes int64
	allowedTypes   []string // empty allows any content type
}

func NewStorageHandler(objectSvc service.ObjectStorageService, docSvc service.DocumentService, maxUploadBytes int64, allowedTypes []string) *StorageHandler {
	return &StorageHandler{objectSvc: objectSvc, docSvc: docSvc, maxUploadBytes: maxUploadBytes, allowedTypes: allowedTypes}
}

// canRead reports whether a non-admin caller may presign key: car images
// are shared, documents only for their owner.
func (h *StorageHandler) canRead(ctx context.Context, key string) (bool, error) {
	if isAdmin(ctx) {
		return true, nil
	}
	if path.Clean(key) != key {
		return false, nil
	}
	if strings.HasPrefix(key, "cars/") {
		return true, nil
	}
	docs, err := h.docSvc.ListUserDocuments(ctx, GetUserIDFromContext(ctx))
	if err != nil {
		return false, err
	}
	for _, d := range docs {
		if d.Src == key {
			return true, nil
		}
	}
	return false, nil
}

func (h *StorageHandler) typeAllowed(contentType string) bool {
	if len(h.allowedTypes) == 0 {
		return true
	}
	if mediaType, _, err := mime.ParseMediaType(contentType); err == nil {
		contentType = mediaType
	}
	return slices.Contains(h.allowedTypes, strings.ToLower(contentType))
}

type uploadURLRequest struct {
	Prefix      string `json:"prefix"`
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
}

func (h *StorageHandler) Register(r *mux.Router) {
	r.HandleFunc("/api/v1/s3/upload/document", h.UploadDocument).Methods(http.MethodPost).Name("s3.upload.document")
	r.HandleFunc("/api/v1/s3/upload/car", h.UploadCarImage).Methods(http.MethodPost).Name("s3.upload.car")
	r.HandleFunc("/api/v1/s3/upload-url", h.UploadURL).Methods(http.MethodPost).Name("s3.upload-url")
	r.HandleFunc("/api/v1/s3/url", h.PresignedURL).Methods(http.MethodGet).Name("s3.url")
	r.HandleFunc("/api/v1/s3/delete", h.Delete).Methods(http.MethodDelete).Name("s3.delete")
	r.HandleFunc("/api/v1/s3/files", h.ListFiles).Methods(http.MethodGet).Name("s3.files")
}

type uploadedFile struct {
	multipart.File
	name        string
	contentType string
	size        int64
}

// readFile parses the "file" part of a multipart upload. The caller closes it.
func (h *StorageHandler) readFile(w http.ResponseWriter, r *http.Request) (*uploadedFile, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, badRequest("file exceeds %d bytes", h.maxUploadBytes)
		}
		return nil, badRequest("invalid multipart form: %v", err)
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, badRequest("missing file part")
	}
	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	if !h.typeAllowed(contentType) {
		file.Close()
		return nil, badRequest("content type %s is not allowed", contentType)
	}
	return &uploadedFile{File: file, name: header.Filename, contentType: contentType, size: header.Size}, nil
}

func (h *StorageHandler) UploadDocument(w http.ResponseWriter, r *http.Request) {
	f, err := h.readFile(w, r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	defer f.Close()

	doc, err := h.objectSvc.UploadDocument(r.Context(), GetUserIDFromContext(r.Context()),
		f.name, f.contentType, f, f.size, r.FormValue("title"), r.FormValue("description"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, doc)
}

func (h *StorageHandler) UploadCarImage(w http.ResponseWriter, r *http.Request) {
	f, err := h.readFile(w, r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	defer f.Close()

	obj, err := h.objectSvc.UploadCarImage(r.Context(), f.name, f.contentType, f, f.size)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, obj)
}

func (h *StorageHandler) UploadURL(w http.ResponseWriter, r *http.Request) {
	var req uploadURLRequest
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}
	if !h.typeAllowed(req.ContentType) {
		writeError(w, http.StatusBadRequest, "content type "+req.ContentType+" is not allowed")
		return
	}
	if req.Prefix == "cars" && !isAdmin(r.Context()) {
		writeError(w, http.StatusForbidden, "admin role required")
		return
	}
	obj, err := h.objectSvc.GetUploadURL(r.Context(), req.Prefix, req.Filename, req.ContentType)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, obj)
}

func (h *StorageHandler) PresignedURL(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("key")
	allowed, err := h.canRead(r.Context(), key)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if !allowed {
		writeServiceError(w, r, service.ErrDocumentNotFound)
		return
	}
	obj, err := h.objectSvc.PresignedURL(r.Context(), key)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, obj)
}

func (h *StorageHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.objectSvc.DeleteFile(r.Context(), r.URL.Query().Get("key")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *StorageHandler) ListFiles(w http.ResponseWriter, r *http.Request) {
	files, err := h.objectSvc.ListFiles(r.Context(), r.URL.Query().Get("prefix"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"files": files})
}
