package http

import (
	"context"
	"net/http"
	"time"

	"rentacar-backend/internal/domain"
	"rentacar-backend/internal/service"

	"github.com/gorilla/mux"
)

type RentHandler struct {
	rentalSvc service.RentalService
}

func NewRentHandler(rentalSvc service.RentalService) *RentHandler {
	return &RentHandler{rentalSvc: rentalSvc}
}

type createRentRequest struct {
	CarID            int32  `json:"car_id"`
	UserID           int32  `json:"user_id"`
	AdminID          *int32 `json:"admin_id"`
	PricePerDayCents int64  `json:"price_per_day_cents"`
	StartingDate     string `json:"starting_date"`
	DueDate          string `json:"due_date"`
}

type updateRentRequest struct {
	CarID            *int32  `json:"car_id"`
	UserID           *int32  `json:"user_id"`
	AdminID          *int32  `json:"admin_id"`
	PricePerDayCents *int64  `json:"price_per_day_cents"`
	StartingDate     *string `json:"starting_date"`
	DueDate          *string `json:"due_date"`
	EndDate          *string `json:"end_date"`
}

type extendRentRequest struct {
	DueDate string `json:"due_date"`
}

func (h *RentHandler) Register(r *mux.Router) {
	r.HandleFunc("/api/v1/rent/requests", h.ListRequests).Methods(http.MethodGet).Name("rent.requests")
	r.HandleFunc("/api/v1/rent/requests/{id:[0-9]+}/admit", h.Admit).Methods(http.MethodPatch).Name("rent.requests.admit")
	r.HandleFunc("/api/v1/rent/requests/{id:[0-9]+}/reject", h.Reject).Methods(http.MethodPatch).Name("rent.requests.reject")
	r.HandleFunc("/api/v1/rent/history", h.History).Methods(http.MethodGet).Name("rent.history")
	r.HandleFunc("/api/v1/rent/history/export", h.ExportHistory).Methods(http.MethodGet).Name("rent.history.export")
	r.HandleFunc("/api/v1/rent/active", h.listWith(h.rentalSvc.FindActiveRents)).Methods(http.MethodGet).Name("rent.active")
	r.HandleFunc("/api/v1/rent/past", h.listWith(h.rentalSvc.FindPastRents)).Methods(http.MethodGet).Name("rent.past")
	r.HandleFunc("/api/v1/rent/future", h.listWith(h.rentalSvc.FindFutureRents)).Methods(http.MethodGet).Name("rent.future")
	r.HandleFunc("/api/v1/rent/status/{status}", h.ByStatus).Methods(http.MethodGet).Name("rent.status")
	r.HandleFunc("/api/v1/rent/user/{id:[0-9]+}/history", h.UserHistory).Methods(http.MethodGet).Name("rent.user.history")
	r.HandleFunc("/api/v1/rent/user/{id:[0-9]+}", h.ByUser).Methods(http.MethodGet).Name("rent.user")
	r.HandleFunc("/api/v1/rent/car/{id:[0-9]+}", h.ByCar).Methods(http.MethodGet).Name("rent.car")

	r.HandleFunc("/api/v1/rent", h.Create).Methods(http.MethodPost).Name("rent.create")
	r.HandleFunc("/api/v1/rent", h.listWith(h.rentalSvc.FindAll)).Methods(http.MethodGet).Name("rent.list")
	r.HandleFunc("/api/v1/rent/{id:[0-9]+}", h.Get).Methods(http.MethodGet).Name("rent.get")
	r.HandleFunc("/api/v1/rent/{id:[0-9]+}", h.Update).Methods(http.MethodPatch).Name("rent.update")
	r.HandleFunc("/api/v1/rent/{id:[0-9]+}", h.Delete).Methods(http.MethodDelete).Name("rent.delete")
	r.HandleFunc("/api/v1/rent/{id:[0-9]+}/extend", h.Extend).Methods(http.MethodPatch).Name("rent.extend")
	r.HandleFunc("/api/v1/rent/{id:[0-9]+}/cancel", h.Cancel).Methods(http.MethodPatch).Name("rent.cancel")

	r.HandleFunc("/api/v1/cars/{id:[0-9]+}/unavailable-dates", h.UnavailableDates).Methods(http.MethodGet).Name("cars.unavailable-dates")
}

func (h *RentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createRentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}

	callerID := GetUserIDFromContext(r.Context())
	if req.UserID == 0 {
		req.UserID = callerID
	}
	if req.UserID != callerID && !isAdmin(r.Context()) {
		writeError(w, http.StatusForbidden, "cannot request a rental for another user")
		return
	}

	start, err := parseOptionalDate(req.StartingDate)
	if err != nil || start == nil {
		writeServiceError(w, r, badRequest("starting_date must be yyyy-mm-dd"))
		return
	}
	due, err := parseOptionalDate(req.DueDate)
	if err != nil || due == nil {
		writeServiceError(w, r, badRequest("due_date must be yyyy-mm-dd"))
		return
	}

	rt, err := h.rentalSvc.CreateRental(r.Context(), service.RentalInput{
		CarID:            req.CarID,
		UserID:           req.UserID,
		AdminID:          req.AdminID,
		PricePerDayCents: req.PricePerDayCents,
		StartingDate:     *start,
		DueDate:          *due,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, mapRental(rt))
}

// load fetches the rental named by the path. Rentals of other users look
// missing to non-admin callers.
func (h *RentHandler) load(w http.ResponseWriter, r *http.Request) (*domain.Rental, bool) {
	id, err := pathID(r, "id")
	if err != nil {
		writeServiceError(w, r, err)
		return nil, false
	}
	rt, err := h.rentalSvc.FindOne(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return nil, false
	}
	if rt.UserID != GetUserIDFromContext(r.Context()) && !isAdmin(r.Context()) {
		writeServiceError(w, r, service.ErrRentalNotFound)
		return nil, false
	}
	return rt, true
}

func (h *RentHandler) Get(w http.ResponseWriter, r *http.Request) {
	rt, ok := h.load(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, mapRental(rt))
}

func (h *RentHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req updateRentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}
	if (req.UserID != nil || req.AdminID != nil || req.PricePerDayCents != nil) && !isAdmin(r.Context()) {
		writeError(w, http.StatusForbidden, "only an admin may change the renter, admin or price")
		return
	}
	current, ok := h.load(w, r)
	if !ok {
		return
	}

	upd := service.RentalUpdate{
		CarID:            req.CarID,
		UserID:           req.UserID,
		AdminID:          req.AdminID,
		PricePerDayCents: req.PricePerDayCents,
	}
	for _, f := range []struct {
		name string
		raw  *string
		dst  **time.Time
	}{
		{"starting_date", req.StartingDate, &upd.StartingDate},
		{"due_date", req.DueDate, &upd.DueDate},
		{"end_date", req.EndDate, &upd.EndDate},
	} {
		if f.raw == nil {
			continue
		}
		t, err := parseOptionalDate(*f.raw)
		if err != nil || t == nil {
			writeServiceError(w, r, badRequest("%s must be yyyy-mm-dd", f.name))
			return
		}
		*f.dst = t
	}

	rt, err := h.rentalSvc.UpdateRental(r.Context(), current.ID, upd)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapRental(rt))
}

func (h *RentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if err := h.rentalSvc.RemoveRental(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *RentHandler) Extend(w http.ResponseWriter, r *http.Request) {
	var req extendRentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}
	due, err := parseOptionalDate(req.DueDate)
	if err != nil || due == nil {
		writeServiceError(w, r, badRequest("due_date must be yyyy-mm-dd"))
		return
	}
	current, ok := h.load(w, r)
	if !ok {
		return
	}
	rt, err := h.rentalSvc.ExtendRental(r.Context(), current.ID, *due)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapRental(rt))
}

func (h *RentHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	current, ok := h.load(w, r)
	if !ok {
		return
	}
	rt, err := h.rentalSvc.CancelRental(r.Context(), current.ID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapRental(rt))
}

func (h *RentHandler) Admit(w http.ResponseWriter, r *http.Request) {
	adminID := GetUserIDFromContext(r.Context())
	h.transition(w, r, func(id int32) (*domain.Rental, error) {
		return h.rentalSvc.AdmitRentRequest(r.Context(), id, adminID)
	})
}

func (h *RentHandler) Reject(w http.ResponseWriter, r *http.Request) {
	adminID := GetUserIDFromContext(r.Context())
	h.transition(w, r, func(id int32) (*domain.Rental, error) {
		return h.rentalSvc.RejectRentRequest(r.Context(), id, adminID)
	})
}

func (h *RentHandler) transition(w http.ResponseWriter, r *http.Request, apply func(id int32) (*domain.Rental, error)) {
	id, err := pathID(r, "id")
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	rt, err := apply(id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapRental(rt))
}

func (h *RentHandler) listWith(find func(ctx context.Context) ([]domain.Rental, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rentals, err := find(r.Context())
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, mapRentals(rentals))
	}
}

func (h *RentHandler) ListRequests(w http.ResponseWriter, r *http.Request) {
	h.listWith(h.rentalSvc.ListRentRequests)(w, r)
}

func (h *RentHandler) History(w http.ResponseWriter, r *http.Request) {
	h.listWith(h.rentalSvc.GetAllRentHistory)(w, r)
}

func (h *RentHandler) ByStatus(w http.ResponseWriter, r *http.Request) {
	rentals, err := h.rentalSvc.FindRentsByStatus(r.Context(), mux.Vars(r)["status"])
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapRentals(rentals))
}

// byUser serves per-user lists to that user or an admin.
func (h *RentHandler) byUser(find func(ctx context.Context, id int32) ([]domain.Rental, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := selfOrAdmin(w, r)
		if !ok {
			return
		}
		rentals, err := find(r.Context(), id)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, mapRentals(rentals))
	}
}

func (h *RentHandler) byID(find func(ctx context.Context, id int32) ([]domain.Rental, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "id")
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		rentals, err := find(r.Context(), id)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, mapRentals(rentals))
	}
}

func (h *RentHandler) ByUser(w http.ResponseWriter, r *http.Request) {
	h.byUser(h.rentalSvc.FindByUser)(w, r)
}

func (h *RentHandler) ByCar(w http.ResponseWriter, r *http.Request) {
	h.byID(h.rentalSvc.FindByCar)(w, r)
}

func (h *RentHandler) UserHistory(w http.ResponseWriter, r *http.Request) {
	h.byUser(h.rentalSvc.GetUserRentHistory)(w, r)
}

func (h *RentHandler) UnavailableDates(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	ranges, err := h.rentalSvc.GetUnavailableDates(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapDateRanges(ranges))
}

func (h *RentHandler) ExportHistory(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="rent-history.xlsx"`)
	if err := h.rentalSvc.ExportRentHistory(r.Context(), w); err != nil {
		w.Header().Del("Content-Disposition")
		writeServiceError(w, r, err)
	}
}
