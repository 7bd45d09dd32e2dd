package service

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fairsplit/fairsplit/internal/calculator"
	"github.com/fairsplit/fairsplit/internal/common"
	"github.com/fairsplit/fairsplit/internal/middleware"
	"github.com/fairsplit/fairsplit/internal/models"
	"github.com/fairsplit/fairsplit/internal/money"
	"github.com/fairsplit/fairsplit/internal/promptpay"
	"github.com/fairsplit/fairsplit/internal/storage"
)

// handleCreateRoom freezes the bill, computes every member's share and
// publishes the result under a shareable id. Anonymous hosts are allowed;
// authenticated hosts get the room tied to their account.
func (s *Service) handleCreateRoom(w http.ResponseWriter, r *http.Request) {
	var req createRoomRequest
	if !s.decode(w, r, &req) {
		return
	}

	// Reject unusable payee ids up front so guests never see a dead QR.
	if _, err := promptpay.Encode(req.PromptPayID, nil); err != nil {
		if errors.Is(err, promptpay.ErrUnsupportedID) {
			common.JSONError(w, http.StatusUnprocessableEntity, "unsupported_payee_id", err.Error(), nil)
			return
		}
		common.WriteError(w, err)
		return
	}

	hostUID := middleware.GetUserID(r.Context())
	if hostUID == "" {
		hostUID = "anon"
	}

	items := toModelItems(req.Items)
	totals := calculator.ComputeTotals(req.Members, items, req.Config)

	room := &models.PaymentRoom{
		HostUID:             hostUID,
		HostName:            req.HostName,
		PromptPayID:         req.PromptPayID,
		Members:             req.Members,
		Items:               items,
		Shares:              totals.MemberShares,
		Config:              req.Config,
		Subtotal:            totals.Subtotal,
		ServiceChargeAmount: totals.ServiceChargeAmount,
		VATAmount:           totals.VATAmount,
		GrandTotal:          totals.GrandTotal,
	}
	if err := s.store.CreateRoom(r.Context(), room); err != nil {
		s.logger.Error("Failed to create room", "host_uid", hostUID, "error", err)
		common.WriteError(w, err)
		return
	}

	s.logger.Info("Room created", "room_id", room.ID, "host_uid", hostUID, "members", len(room.Members))
	common.JSON(w, http.StatusCreated, room)
}

func (s *Service) loadRoom(w http.ResponseWriter, r *http.Request) *models.PaymentRoom {
	room, err := s.store.GetRoom(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			common.JSONError(w, http.StatusNotFound, "room_not_found", "room not found", nil)
		} else {
			s.logger.Error("Failed to get room", "error", err)
			common.WriteError(w, err)
		}
		return nil
	}
	return room
}

// handleGetRoom serves the guest link. No auth: anyone with the id sees
// the frozen bill and shares.
func (s *Service) handleGetRoom(w http.ResponseWriter, r *http.Request) {
	room := s.loadRoom(w, r)
	if room == nil {
		return
	}
	common.JSON(w, http.StatusOK, room)
}

// handleRoomBreakdown projects the frozen room bill for a member, or for
// everyone when no member is given.
func (s *Service) handleRoomBreakdown(w http.ResponseWriter, r *http.Request) {
	room := s.loadRoom(w, r)
	if room == nil {
		return
	}
	writeBreakdown(w, room.Snapshot(), r.URL.Query().Get("member"))
}

// handleRoomQR returns the payment payload for a member's frozen share,
// rounded to THB satang. Without ?member= it returns the host's static
// payload with no amount.
func (s *Service) handleRoomQR(w http.ResponseWriter, r *http.Request) {
	room := s.loadRoom(w, r)
	if room == nil {
		return
	}

	member := r.URL.Query().Get("member")
	if member == "" {
		payload, err := promptpay.Encode(room.PromptPayID, nil)
		if err != nil {
			common.WriteError(w, err)
			return
		}
		common.JSON(w, http.StatusOK, qrResponse{Payload: payload})
		return
	}

	share, ok := room.Shares[member]
	if !ok {
		common.JSONError(w, http.StatusNotFound, "MEMBER_NOT_FOUND", "member not in this room", nil)
		return
	}
	amount := money.RoundTHB(share)
	payload, err := promptpay.Encode(room.PromptPayID, &amount)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, qrResponse{Payload: payload, Member: member, Amount: &amount})
}
