package http

import (
	"net/http"

	"rentacar-backend/internal/domain"
	"rentacar-backend/internal/service"

	"github.com/gorilla/mux"
)

type DocumentHandler struct {
	docSvc service.DocumentService
}

func NewDocumentHandler(docSvc service.DocumentService) *DocumentHandler {
	return &DocumentHandler{docSvc: docSvc}
}

type documentRequest struct {
	URL         string `json:"url"`
	Src         string `json:"src"`
	Description string `json:"description"`
	Title       string `json:"title"`
	UserID      int32  `json:"user_id"`
}

func (h *DocumentHandler) Register(r *mux.Router) {
	r.HandleFunc("/api/v1/documents", h.Create).Methods(http.MethodPost).Name("documents.create")
	r.HandleFunc("/api/v1/documents", h.List).Methods(http.MethodGet).Name("documents.list")
	r.HandleFunc("/api/v1/documents/{id:[0-9]+}", h.Get).Methods(http.MethodGet).Name("documents.get")
	r.HandleFunc("/api/v1/documents/{id:[0-9]+}", h.Update).Methods(http.MethodPatch).Name("documents.update")
	r.HandleFunc("/api/v1/documents/{id:[0-9]+}", h.Delete).Methods(http.MethodDelete).Name("documents.delete")
}

func (h *DocumentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req documentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}
	callerID := GetUserIDFromContext(r.Context())
	if req.UserID == 0 {
		req.UserID = callerID
	}
	if req.UserID != callerID && !isAdmin(r.Context()) {
		writeError(w, http.StatusForbidden, "cannot create a document for another user")
		return
	}

	doc := &domain.Document{
		URL:         req.URL,
		Src:         req.Src,
		Description: req.Description,
		Title:       req.Title,
		UserID:      req.UserID,
	}
	if err := h.docSvc.CreateDocument(r.Context(), doc); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, doc)
}

// List returns every document for admins and the caller's own otherwise.
func (h *DocumentHandler) List(w http.ResponseWriter, r *http.Request) {
	var (
		docs []domain.Document
		err  error
	)
	if isAdmin(r.Context()) {
		docs, err = h.docSvc.ListDocuments(r.Context())
	} else {
		docs, err = h.docSvc.ListUserDocuments(r.Context(), GetUserIDFromContext(r.Context()))
	}
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, docs)
}

// load fetches the document in the path and hides it from other non-admin users.
func (h *DocumentHandler) load(w http.ResponseWriter, r *http.Request) (*domain.Document, bool) {
	id, err := pathID(r, "id")
	if err != nil {
		writeServiceError(w, r, err)
		return nil, false
	}
	doc, err := h.docSvc.GetDocument(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return nil, false
	}
	if doc.UserID != GetUserIDFromContext(r.Context()) && !isAdmin(r.Context()) {
		writeServiceError(w, r, service.ErrDocumentNotFound)
		return nil, false
	}
	return doc, true
}

func (h *DocumentHandler) Get(w http.ResponseWriter, r *http.Request) {
	doc, ok := h.load(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (h *DocumentHandler) Update(w http.ResponseWriter, r *http.Request) {
	doc, ok := h.load(w, r)
	if !ok {
		return
	}
	var req documentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}
	updated, err := h.docSvc.UpdateDocument(r.Context(), &domain.Document{
		ID:          doc.ID,
		URL:         req.URL,
		Src:         req.Src,
		Description: req.Description,
		Title:       req.Title,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *DocumentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	doc, ok := h.load(w, r)
	if !ok {
		return
	}
	if err := h.docSvc.DeleteDocument(r.Context(), doc.ID); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
