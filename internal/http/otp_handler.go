package http

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/vardhacyc/srinidhi-feast-builder-sub000/internal/abandoned"
	"github.com/vardhacyc/srinidhi-feast-builder-sub000/internal/cache"
	"github.com/vardhacyc/srinidhi-feast-builder-sub000/internal/cart"
	"github.com/vardhacyc/srinidhi-feast-builder-sub000/internal/domain"
	"github.com/vardhacyc/srinidhi-feast-builder-sub000/internal/otp"
)

// OTPHandler covers the verification step of checkout. Both endpoints
// answer 200 with {"success": ...} even on failure; the storefront renders
// the message inline and a non-2xx would make it treat a wrong code as an
// outage.
type OTPHandler struct {
	otps                  *otp.Service
	recorder              *abandoned.Recorder
	carts                 cache.CartStore
	rates                 cart.TaxRates
	freeDeliveryThreshold float64
}

func NewOTPHandler(otps *otp.Service, recorder *abandoned.Recorder, carts cache.CartStore, rates cart.TaxRates, freeDeliveryThreshold float64) *OTPHandler {
	return &OTPHandler{
		otps:                  otps,
		recorder:              recorder,
		carts:                 carts,
		rates:                 rates,
		freeDeliveryThreshold: freeDeliveryThreshold,
	}
}

type SendOTPRequestDTO struct {
	Email        string `json:"email"`
	CustomerName string `json:"customer_name"`
	Phone        string `json:"phone"`
}

type VerifyOTPRequestDTO struct {
	Email string `json:"email"`
	Code  string `json:"otp"`
}

type OTPResponseDTO struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// POST /api/v1/otp/send
func (h *OTPHandler) SendOTP(w http.ResponseWriter, r *http.Request) {
	var req SendOTPRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusOK, OTPResponseDTO{Error: "invalid request body"})
		return
	}
	if !validEmail(req.Email) {
		respondJSON(w, http.StatusOK, OTPResponseDTO{Error: "please enter a valid email address"})
		return
	}

	// Snapshot the cart before the customer can drop off at the code
	// prompt. Best-effort and off the request path.
	h.snapshotCart(r, req.CustomerName, req.Email, req.Phone, domain.SnapshotSourceCheckout)

	if err := h.otps.Issue(r.Context(), req.Email, req.CustomerName); err != nil {
		log.Printf("otp issue failed for %s: %v", otp.NormalizeEmail(req.Email), err)
		respondJSON(w, http.StatusOK, OTPResponseDTO{Error: "could not send the code, please try again"})
		return
	}

	respondJSON(w, http.StatusOK, OTPResponseDTO{Success: true})
}

// POST /api/v1/otp/verify
func (h *OTPHandler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req VerifyOTPRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusOK, OTPResponseDTO{Error: "invalid request body"})
		return
	}
	if !validEmail(req.Email) {
		respondJSON(w, http.StatusOK, OTPResponseDTO{Error: "please enter a valid email address"})
		return
	}
	if !validOTP(req.Code) {
		respondJSON(w, http.StatusOK, OTPResponseDTO{Error: "code must be 6 digits"})
		return
	}

	err := h.otps.Verify(r.Context(), req.Email, req.Code)
	switch {
	case err == nil:
		respondJSON(w, http.StatusOK, OTPResponseDTO{Success: true})
	case errors.Is(err, otp.ErrRateLimited), errors.Is(err, otp.ErrInvalidOrExpired):
		respondJSON(w, http.StatusOK, OTPResponseDTO{Error: err.Error()})
	default:
		log.Printf("otp verify failed for %s: %v", otp.NormalizeEmail(req.Email), err)
		respondJSON(w, http.StatusOK, OTPResponseDTO{Error: "could not verify the code, please try again"})
	}
}

func (h *OTPHandler) snapshotCart(r *http.Request, name, email, phone, source string) {
	stored, err := h.carts.Get(r.Context(), getSessionID(r.Context()))
	if err != nil {
		if !errors.Is(err, cache.ErrCartNotFound) {
			log.Printf("cart snapshot load failed: %v", err)
		}
		return
	}
	if len(stored.Items) == 0 {
		return
	}

	totals := cart.FromItems(stored.Items).ComputeTotals(h.rates, h.freeDeliveryThreshold)
	snap := domain.AbandonedCartSnapshot{
		CustomerName: name,
		Email:        otp.NormalizeEmail(email),
		Phone:        phone,
		Items:        stored.Items,
		Subtotal:     totals.Subtotal,
		TaxAmount:    totals.TaxAmount,
		Total:        totals.Total,
		Source:       source,
	}

	// Detached from the request context so a fast client disconnect does
	// not cancel the write.
	go h.recorder.Record(context.Background(), snap)
}
