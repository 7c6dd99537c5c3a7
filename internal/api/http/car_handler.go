package http

import (
	"net/http"

	"rentacar-backend/internal/domain"
	"rentacar-backend/internal/service"

	"github.com/gorilla/mux"
)

type CarHandler struct {
	carSvc     service.CarService
	pictureSvc service.PictureService
	typeSvc    service.CarPictureTypeService
}

func NewCarHandler(carSvc service.CarService, pictureSvc service.PictureService, typeSvc service.CarPictureTypeService) *CarHandler {
	return &CarHandler{carSvc: carSvc, pictureSvc: pictureSvc, typeSvc: typeSvc}
}

type carRequest struct {
	Brand            string `json:"brand"`
	Model            string `json:"model"`
	Color            string `json:"color"`
	Passengers       int32  `json:"passengers"`
	AC               *bool  `json:"ac"`
	PricePerDayCents int64  `json:"price_per_day_cents"`
}

func (req carRequest) toDomain() *domain.Car {
	car := &domain.Car{
		Brand:            req.Brand,
		Model:            req.Model,
		Color:            req.Color,
		Passengers:       req.Passengers,
		PricePerDayCents: req.PricePerDayCents,
	}
	if req.AC != nil {
		car.AC = *req.AC
	}
	return car
}

type pictureRequest struct {
	Src         string                `json:"src"`
	Description string                `json:"description"`
	Title       string                `json:"title"`
	Type        domain.CarPictureType `json:"type"`
	Date        string                `json:"date"`
	CarID       int32                 `json:"car_id"`
}

func (req pictureRequest) toDomain() (*domain.Picture, error) {
	date, err := parseOptionalDate(req.Date)
	if err != nil {
		return nil, badRequest("date must be yyyy-mm-dd")
	}
	p := &domain.Picture{
		Src:         req.Src,
		Description: req.Description,
		Title:       req.Title,
		Type:        req.Type,
		CarID:       req.CarID,
	}
	if date != nil {
		p.Date = *date
	}
	return p, nil
}

func (h *CarHandler) Register(r *mux.Router) {
	r.HandleFunc("/api/v1/cars", h.Create).Methods(http.MethodPost).Name("cars.create")
	r.HandleFunc("/api/v1/cars", h.List).Methods(http.MethodGet).Name("cars.list")
	r.HandleFunc("/api/v1/cars/{id:[0-9]+}", h.Get).Methods(http.MethodGet).Name("cars.get")
	r.HandleFunc("/api/v1/cars/{id:[0-9]+}", h.Update).Methods(http.MethodPatch).Name("cars.update")
	r.HandleFunc("/api/v1/cars/{id:[0-9]+}", h.Delete).Methods(http.MethodDelete).Name("cars.delete")
	r.HandleFunc("/api/v1/cars/{id:[0-9]+}/pictures", h.CarPictures).Methods(http.MethodGet).Name("cars.pictures")

	r.HandleFunc("/api/v1/pictures", h.CreatePicture).Methods(http.MethodPost).Name("pictures.create")
	r.HandleFunc("/api/v1/pictures", h.ListPictures).Methods(http.MethodGet).Name("pictures.list")
	r.HandleFunc("/api/v1/pictures/{id:[0-9]+}", h.GetPicture).Methods(http.MethodGet).Name("pictures.get")
	r.HandleFunc("/api/v1/pictures/{id:[0-9]+}", h.UpdatePicture).Methods(http.MethodPatch).Name("pictures.update")
	r.HandleFunc("/api/v1/pictures/{id:[0-9]+}", h.DeletePicture).Methods(http.MethodDelete).Name("pictures.delete")
	r.HandleFunc("/api/v1/car-picture-types", h.ListPictureTypes).Methods(http.MethodGet).Name("car-picture-types.list")
}

func (h *CarHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req carRequest
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}
	car := req.toDomain()
	if err := h.carSvc.CreateCar(r.Context(), car); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, car)
}

func (h *CarHandler) List(w http.ResponseWriter, r *http.Request) {
	cars, err := h.carSvc.ListCars(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cars)
}

func (h *CarHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	car, err := h.carSvc.GetCar(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, car)
}

func (h *CarHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	var req carRequest
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}
	car := req.toDomain()
	car.ID = id
	// The service always writes AC, so an omitted flag keeps the stored one.
	if req.AC == nil {
		current, err := h.carSvc.GetCar(r.Context(), id)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		car.AC = current.AC
	}
	updated, err := h.carSvc.UpdateCar(r.Context(), car)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *CarHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if err := h.carSvc.DeleteCar(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *CarHandler) CarPictures(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	pictures, err := h.pictureSvc.FindByCar(r.Context(), id, r.URL.Query().Get("type"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, pictures)
}

func (h *CarHandler) CreatePicture(w http.ResponseWriter, r *http.Request) {
	var req pictureRequest
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}
	p, err := req.toDomain()
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if err := h.pictureSvc.CreatePicture(r.Context(), p); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (h *CarHandler) ListPictures(w http.ResponseWriter, r *http.Request) {
	pictures, err := h.pictureSvc.ListPictures(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, pictures)
}

func (h *CarHandler) GetPicture(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	p, err := h.pictureSvc.GetPicture(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *CarHandler) UpdatePicture(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	var req pictureRequest
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}
	p, err := req.toDomain()
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	p.ID = id
	updated, err := h.pictureSvc.UpdatePicture(r.Context(), p)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *CarHandler) DeletePicture(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if err := h.pictureSvc.DeletePicture(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *CarHandler) ListPictureTypes(w http.ResponseWriter, r *http.Request) {
	types, err := h.typeSvc.ListTypes(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, types)
}
