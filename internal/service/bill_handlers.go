package service

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fairsplit/fairsplit/internal/calculator"
	"github.com/fairsplit/fairsplit/internal/common"
	"github.com/fairsplit/fairsplit/internal/middleware"
	"github.com/fairsplit/fairsplit/internal/models"
	"github.com/fairsplit/fairsplit/internal/storage"
)

func billNotFound(w http.ResponseWriter) {
	common.JSONError(w, http.StatusNotFound, "BILL_NOT_FOUND", "bill not found", nil)
}

// ownedBill loads a bill and checks it belongs to the requesting user.
// Bills owned by someone else read as not found.
func (s *Service) ownedBill(w http.ResponseWriter, r *http.Request) *models.BillSnapshot {
	snap, err := s.store.GetBill(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			billNotFound(w)
		} else {
			s.logger.Error("Failed to get bill", "error", err)
			common.WriteError(w, err)
		}
		return nil
	}
	if snap.OwnerID != middleware.GetUserID(r.Context()) {
		billNotFound(w)
		return nil
	}
	return snap
}

// handleCreateBill freezes the submitted bill into a snapshot and stores it
// under the authenticated user.
func (s *Service) handleCreateBill(w http.ResponseWriter, r *http.Request) {
	var req createBillRequest
	if !s.decode(w, r, &req) {
		return
	}

	items := toModelItems(req.Items)
	totals := calculator.ComputeTotals(req.Members, items, req.Config)

	snap := &models.BillSnapshot{
		OwnerID:             middleware.GetUserID(r.Context()),
		Title:               req.Title,
		Members:             req.Members,
		Items:               items,
		Subtotal:            totals.Subtotal,
		ServiceChargeAmount: totals.ServiceChargeAmount,
		VATAmount:           totals.VATAmount,
		GrandTotal:          totals.GrandTotal,
	}
	if err := s.store.CreateBill(r.Context(), snap); err != nil {
		s.logger.Error("Failed to create bill", "owner_id", snap.OwnerID, "error", err)
		common.WriteError(w, err)
		return
	}

	s.logger.Info("Bill created", "bill_id", snap.ID, "owner_id", snap.OwnerID, "grand_total", snap.GrandTotal)
	common.JSON(w, http.StatusCreated, snap)
}

// handleListBills returns the user's saved bills, newest first.
func (s *Service) handleListBills(w http.ResponseWriter, r *http.Request) {
	bills, err := s.store.ListBills(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		s.logger.Error("Failed to list bills", "error", err)
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"bills": bills})
}

func (s *Service) handleGetBill(w http.ResponseWriter, r *http.Request) {
	snap := s.ownedBill(w, r)
	if snap == nil {
		return
	}
	common.JSON(w, http.StatusOK, snap)
}

func (s *Service) handleDeleteBill(w http.ResponseWriter, r *http.Request) {
	err := s.store.DeleteBill(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			billNotFound(w)
		} else {
			s.logger.Error("Failed to delete bill", "error", err)
			common.WriteError(w, err)
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleBatchDeleteBills removes several bills at once. Ids that do not
// exist or belong to someone else are skipped.
func (s *Service) handleBatchDeleteBills(w http.ResponseWriter, r *http.Request) {
	var req batchDeleteRequest
	if !s.decode(w, r, &req) {
		return
	}
	if err := s.store.DeleteBills(r.Context(), middleware.GetUserID(r.Context()), req.IDs); err != nil {
		s.logger.Error("Failed to batch delete bills", "error", err)
		common.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleBillBreakdown projects per-member item lines for a saved bill.
// With ?member= it returns one member's breakdown, otherwise all of them.
func (s *Service) handleBillBreakdown(w http.ResponseWriter, r *http.Request) {
	snap := s.ownedBill(w, r)
	if snap == nil {
		return
	}
	writeBreakdown(w, snap, r.URL.Query().Get("member"))
}

func writeBreakdown(w http.ResponseWriter, snap *models.BillSnapshot, member string) {
	if member == "" {
		common.JSON(w, http.StatusOK, map[string]any{"breakdowns": calculator.BreakdownAll(snap)})
		return
	}
	if !hasMember(snap.Members, member) {
		common.JSONError(w, http.StatusNotFound, "MEMBER_NOT_FOUND", "member not on this bill", nil)
		return
	}
	common.JSON(w, http.StatusOK, calculator.BreakdownFor(snap, member))
}

func hasMember(members []models.Member, name string) bool {
	for _, m := range members {
		if m.Name == name {
			return true
		}
	}
	return false
}
