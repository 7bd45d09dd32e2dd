// Package service exposes the HTTP API: the stateless split engine,
// PromptPay encoding, account auth, bill history, payment rooms and draft
// sync.
package service

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/fairsplit/fairsplit/internal/auth"
	"github.com/fairsplit/fairsplit/internal/common"
	"github.com/fairsplit/fairsplit/internal/middleware"
	"github.com/fairsplit/fairsplit/internal/storage"
)

// Service wires the HTTP handlers to storage and auth.
type Service struct {
	store         storage.Store
	authenticator auth.Authenticator
	jwtManager    *auth.JWTManager
	validate      *validator.Validate
	logger        *slog.Logger
}

// New creates the service.
func New(store storage.Store, authenticator auth.Authenticator, jwtManager *auth.JWTManager, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:         store,
		authenticator: authenticator,
		jwtManager:    jwtManager,
		validate:      validator.New(validator.WithRequiredStructEnabled()),
		logger:        logger,
	}
}

// Routes returns the API router, mounted by the caller under /api/v1.
func (s *Service) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/compute", s.handleCompute)
	r.Post("/promptpay", s.handlePromptPay)

	r.Post("/auth/register", s.handleRegister)
	r.Post("/auth/login", s.handleLogin)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(s.jwtManager))

		r.Post("/bills", s.handleCreateBill)
		r.Get("/bills", s.handleListBills)
		r.Post("/bills:batchDelete", s.handleBatchDeleteBills)
		r.Get("/bills/{id}", s.handleGetBill)
		r.Delete("/bills/{id}", s.handleDeleteBill)
		r.Get("/bills/{id}/breakdown", s.handleBillBreakdown)

		r.Get("/draft", s.handleGetDraft)
		r.Put("/draft", s.handlePutDraft)
		r.Delete("/draft", s.handleDeleteDraft)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.OptionalAuth(s.jwtManager))
		r.Post("/rooms", s.handleCreateRoom)
	})
	r.Get("/rooms/{id}", s.handleGetRoom)
	r.Get("/rooms/{id}/breakdown", s.handleRoomBreakdown)
	r.Get("/rooms/{id}/qr", s.handleRoomQR)

	return r
}

// decode unmarshals and validates the request body. On failure it writes
// the error response and returns false.
func (s *Service) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		common.JSONError(w, http.StatusBadRequest, "INVALID_JSON", "request body is not valid JSON", nil)
		return false
	}
	if err := s.validate.Struct(v); err != nil {
		var details []string
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				details = append(details, fe.Namespace()+": failed "+fe.Tag())
			}
		}
		common.JSONError(w, http.StatusBadRequest, "VALIDATION", "request validation failed", details)
		return false
	}
	return true
}
