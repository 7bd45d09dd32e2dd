package service

import (
	"errors"
	"net/http"

	"github.com/fairsplit/fairsplit/internal/auth"
	"github.com/fairsplit/fairsplit/internal/common"
)

// handleRegister creates a new account and returns a session token.
func (s *Service) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !s.decode(w, r, &req) {
		return
	}
	s.logger.Info("Register request", "email", req.Email)

	user, err := s.authenticator.Register(r.Context(), req.Email, req.Name, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrEmailExists):
			common.JSONError(w, http.StatusConflict, "EMAIL_EXISTS", err.Error(), nil)
		case errors.Is(err, auth.ErrWeakPassword):
			common.JSONError(w, http.StatusBadRequest, "WEAK_PASSWORD", err.Error(), nil)
		default:
			s.logger.Error("Registration failed", "email", req.Email, "error", err)
			common.WriteError(w, err)
		}
		return
	}

	token, err := s.jwtManager.Generate(user)
	if err != nil {
		s.logger.Error("Failed to generate token", "user_id", user.ID, "error", err)
		common.WriteError(w, err)
		return
	}

	s.logger.Info("User registered", "user_id", user.ID, "email", user.Email)
	common.JSON(w, http.StatusCreated, authResponse{User: toUserResponse(user), Token: token})
}

// handleLogin authenticates an account and returns a session token.
func (s *Service) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !s.decode(w, r, &req) {
		return
	}

	user, err := s.authenticator.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		s.logger.Warn("Login failed", "email", req.Email)
		common.JSONError(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", auth.ErrInvalidCredentials.Error(), nil)
		return
	}

	token, err := s.jwtManager.Generate(user)
	if err != nil {
		s.logger.Error("Failed to generate token", "user_id", user.ID, "error", err)
		common.WriteError(w, err)
		return
	}

	s.logger.Info("User logged in", "user_id", user.ID)
	common.JSON(w, http.StatusOK, authResponse{User: toUserResponse(user), Token: token})
}
