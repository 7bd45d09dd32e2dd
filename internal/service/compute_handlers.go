package service

import (
	"errors"
	"net/http"

	"github.com/fairsplit/fairsplit/internal/calculator"
	"github.com/fairsplit/fairsplit/internal/common"
	"github.com/fairsplit/fairsplit/internal/promptpay"
)

// handleCompute runs the split engine without persisting anything.
func (s *Service) handleCompute(w http.ResponseWriter, r *http.Request) {
	var req computeRequest
	if !s.decode(w, r, &req) {
		return
	}
	totals := calculator.ComputeTotals(req.Members, toModelItems(req.Items), req.Config)
	common.JSON(w, http.StatusOK, totals)
}

// handlePromptPay encodes a payment payload for the given target. An
// unrecognized target shape is a recoverable 422 so the caller can render
// the room without a QR.
func (s *Service) handlePromptPay(w http.ResponseWriter, r *http.Request) {
	var req promptPayRequest
	if !s.decode(w, r, &req) {
		return
	}
	payload, err := promptpay.Encode(req.Target, req.Amount)
	if err != nil {
		if errors.Is(err, promptpay.ErrUnsupportedID) {
			common.JSONError(w, http.StatusUnprocessableEntity, "unsupported_payee_id", err.Error(), nil)
			return
		}
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, qrResponse{Payload: payload, Amount: req.Amount})
}
