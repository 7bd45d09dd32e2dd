package service

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/fairsplit/fairsplit/internal/common"
	"github.com/fairsplit/fairsplit/internal/middleware"
	"github.com/fairsplit/fairsplit/internal/storage"
)

// maxDraftBytes caps the stored draft blob.
const maxDraftBytes = 1 << 20

// handleGetDraft returns the user's stored draft verbatim.
func (s *Service) handleGetDraft(w http.ResponseWriter, r *http.Request) {
	data, err := s.store.LoadDraft(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			common.JSONError(w, http.StatusNotFound, "DRAFT_NOT_FOUND", "no draft stored", nil)
		} else {
			s.logger.Error("Failed to load draft", "error", err)
			common.WriteError(w, err)
		}
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// handlePutDraft stores the body as the user's draft. The blob is opaque
// to the server beyond being valid JSON.
func (s *Service) handlePutDraft(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxDraftBytes+1))
	if err != nil {
		common.WriteError(w, err)
		return
	}
	if len(data) > maxDraftBytes {
		common.JSONError(w, http.StatusRequestEntityTooLarge, "DRAFT_TOO_LARGE", "draft exceeds size limit", nil)
		return
	}
	if !json.Valid(data) {
		common.JSONError(w, http.StatusBadRequest, "INVALID_JSON", "draft body is not valid JSON", nil)
		return
	}
	if err := s.store.SaveDraft(r.Context(), middleware.GetUserID(r.Context()), data); err != nil {
		s.logger.Error("Failed to save draft", "error", err)
		common.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleDeleteDraft clears the user's draft. Clearing an absent draft
// succeeds.
func (s *Service) handleDeleteDraft(w http.ResponseWriter, r *http.Request) {
	if err := s.store.ClearDraft(r.Context(), middleware.GetUserID(r.Context())); err != nil {
		s.logger.Error("Failed to clear draft", "error", err)
		common.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
