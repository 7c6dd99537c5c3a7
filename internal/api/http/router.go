package http

import (
	"net/http"

	"rentacar-backend/internal/config"
	"rentacar-backend/internal/security"
	"rentacar-backend/internal/service"
	"rentacar-backend/internal/storage"

	"github.com/gorilla/mux"
	"github.com/justinas/alice"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
)

// Services groups everything the HTTP layer calls into.
type Services struct {
	Rental         service.RentalService
	User           service.UserService
	Role           service.RoleService
	Car            service.CarService
	Picture        service.PictureService
	CarPictureType service.CarPictureTypeService
	Document       service.DocumentService
	Auth           service.AuthService
	ObjectStorage  service.ObjectStorageService
}

// RouterOptions carries the non-service dependencies of the router.
type RouterOptions struct {
	Tokens         security.TokenManager
	RateLimit      config.RateLimitConfig
	AllowedOrigins []string
	MaxUploadBytes int64
	AllowedTypes   []string
	// MockStorage is set when files live on the local filesystem.
	MockStorage *storage.MockStorageService
	// Health reports readiness of backing stores; nil means always healthy.
	Health func(r *http.Request) error
}

// NewRouter builds the API handler with its middleware chain.
func NewRouter(svcs *Services, opts RouterOptions) http.Handler {
	router := mux.NewRouter()
	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "route not found")
	})
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	router.HandleFunc("/healthz", healthHandler(opts.Health)).Methods(http.MethodGet).Name("health")
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet).Name("metrics")

	limiter := NewRateLimiter(opts.RateLimit)
	NewAuthHandler(svcs.Auth).Register(router, alice.New(limiter.Limit))
	NewUserHandler(svcs.User, svcs.Role).Register(router)
	NewCarHandler(svcs.Car, svcs.Picture, svcs.CarPictureType).Register(router)
	NewDocumentHandler(svcs.Document).Register(router)
	NewRentHandler(svcs.Rental).Register(router)
	NewStorageHandler(svcs.ObjectStorage, svcs.Document, opts.MaxUploadBytes, opts.AllowedTypes).Register(router)
	if opts.MockStorage != nil {
		NewMockStorageHandler(opts.MockStorage, opts.MaxUploadBytes).Register(router)
	}

	router.Use(observeRoute, NewAuthMiddleware(opts.Tokens).Wrap)

	c := cors.New(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	})

	return alice.New(recoverPanic, logRequest, c.Handler).Then(router)
}

func healthHandler(check func(r *http.Request) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if check != nil {
			if err := check(r); err != nil {
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "error": err.Error()})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
