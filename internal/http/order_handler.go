package http

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/vardhacyc/srinidhi-feast-builder-sub000/internal/abandoned"
	"github.com/vardhacyc/srinidhi-feast-builder-sub000/internal/cache"
	"github.com/vardhacyc/srinidhi-feast-builder-sub000/internal/cart"
	"github.com/vardhacyc/srinidhi-feast-builder-sub000/internal/domain"
	"github.com/vardhacyc/srinidhi-feast-builder-sub000/internal/messaging"
	"github.com/vardhacyc/srinidhi-feast-builder-sub000/internal/order"
	"github.com/vardhacyc/srinidhi-feast-builder-sub000/internal/otp"
	"github.com/vardhacyc/srinidhi-feast-builder-sub000/internal/repository"
)

type OrderHandler struct {
	orders                *order.Service
	carts                 cache.CartStore
	recorder              *abandoned.Recorder
	rates                 cart.TaxRates
	freeDeliveryThreshold float64
}

func NewOrderHandler(orders *order.Service, carts cache.CartStore, recorder *abandoned.Recorder, rates cart.TaxRates, freeDeliveryThreshold float64) *OrderHandler {
	return &OrderHandler{
		orders:                orders,
		carts:                 carts,
		recorder:              recorder,
		rates:                 rates,
		freeDeliveryThreshold: freeDeliveryThreshold,
	}
}

type CreateOrderRequestDTO struct {
	CustomerName        string `json:"customer_name"`
	Email               string `json:"email"`
	Phone               string `json:"phone"`
	Address             string `json:"address"`
	SpecialInstructions string `json:"special_instructions"`
}

type UpdateStatusRequestDTO struct {
	Status string `json:"status"`
	Force  bool   `json:"force"`
}

type UpdatePaymentStatusRequestDTO struct {
	PaymentStatus string `json:"payment_status"`
}

type WhatsAppCheckoutResponseDTO struct {
	DeepLink string `json:"deep_link"`
}

// POST /api/v1/orders
//
// Builds the order from the server-side session cart, never from
// client-submitted prices. The cart is cleared only after the order is
// durably stored; on a storage failure the customer keeps their cart and
// can retry.
func (h *OrderHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req CreateOrderRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.CustomerName == "" || !validEmail(req.Email) || !validPhone(req.Phone) || req.Address == "" {
		respondError(w, http.StatusBadRequest, "invalid_contact", "name, a valid email, a valid phone number and a delivery address are required")
		return
	}

	sessionID := getSessionID(r.Context())
	stored, err := h.carts.Get(r.Context(), sessionID)
	if errors.Is(err, cache.ErrCartNotFound) {
		respondError(w, http.StatusBadRequest, "empty_cart", order.ErrEmptyCart.Error())
		return
	}
	if err != nil {
		log.Printf("load cart failed for session %s: %v", sessionID, err)
		respondError(w, http.StatusBadGateway, "storage_error", "could not load the cart, please try again")
		return
	}

	engine := cart.FromItems(stored.Items)
	created, err := h.orders.Create(r.Context(), order.CreateRequest{
		Contact: domain.CustomerContact{
			Name:  req.CustomerName,
			Email: otp.NormalizeEmail(req.Email),
			Phone: req.Phone,
		},
		Address:             req.Address,
		SpecialInstructions: req.SpecialInstructions,
		Items:               engine.Items(),
		Totals:              engine.ComputeTotals(h.rates, h.freeDeliveryThreshold),
	})
	switch {
	case errors.Is(err, order.ErrEmptyCart):
		respondError(w, http.StatusBadRequest, "empty_cart", err.Error())
		return
	case errors.Is(err, order.ErrVerificationRequired):
		respondError(w, http.StatusConflict, "verification_required", err.Error())
		return
	case err != nil:
		log.Printf("create order failed for session %s: %v", sessionID, err)
		respondError(w, http.StatusBadGateway, "storage_error", "could not place the order, please try again")
		return
	}

	if err := h.carts.Delete(r.Context(), sessionID); err != nil {
		// The order exists; a stale cart is a nuisance, not a failure.
		log.Printf("clear cart after order %s failed: %v", created.ShortID(), err)
	}

	respondJSON(w, http.StatusCreated, created)
}

// POST /api/v1/checkout/whatsapp
//
// The direct handoff path: no OTP, no stored order. The customer gets a
// wa.me link with their cart summary pre-filled and finishes the
// conversation in WhatsApp. The snapshot recorder still fires so the cart
// is not lost to follow-up.
func (h *OrderHandler) WhatsAppCheckout(w http.ResponseWriter, r *http.Request) {
	var req CreateOrderRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.CustomerName == "" || !validPhone(req.Phone) || req.Address == "" {
		respondError(w, http.StatusBadRequest, "invalid_contact", "name, a valid phone number and a delivery address are required")
		return
	}

	sessionID := getSessionID(r.Context())
	stored, err := h.carts.Get(r.Context(), sessionID)
	if errors.Is(err, cache.ErrCartNotFound) || (err == nil && len(stored.Items) == 0) {
		respondError(w, http.StatusBadRequest, "empty_cart", order.ErrEmptyCart.Error())
		return
	}
	if err != nil {
		log.Printf("load cart failed for session %s: %v", sessionID, err)
		respondError(w, http.StatusBadGateway, "storage_error", "could not load the cart, please try again")
		return
	}

	engine := cart.FromItems(stored.Items)
	totals := engine.ComputeTotals(h.rates, h.freeDeliveryThreshold)

	go h.recorder.Record(context.Background(), domain.AbandonedCartSnapshot{
		CustomerName: req.CustomerName,
		Email:        otp.NormalizeEmail(req.Email),
		Phone:        req.Phone,
		Items:        engine.Items(),
		Subtotal:     totals.Subtotal,
		TaxAmount:    totals.TaxAmount,
		Total:        totals.Total,
		Source:       domain.SnapshotSourceWhatsApp,
	})

	msg := messaging.OrderSummaryMessage(req.CustomerName, req.Address, engine.Items(), totals)
	respondJSON(w, http.StatusOK, WhatsAppCheckoutResponseDTO{
		DeepLink: messaging.DeepLink(req.Phone, msg),
	})
}

// GET /api/v1/orders
func (h *OrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	f, err := filterFromQuery(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_filter", err.Error())
		return
	}

	orders, err := h.orders.List(r.Context(), f)
	if err != nil {
		log.Printf("list orders failed: %v", err)
		respondError(w, http.StatusBadGateway, "storage_error", "could not load orders")
		return
	}
	respondJSON(w, http.StatusOK, orders)
}

// GET /api/v1/orders/{order_id}
func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := parseOrderID(w, r)
	if !ok {
		return
	}

	o, err := h.orders.Get(r.Context(), id)
	if errors.Is(err, repository.ErrOrderNotFound) {
		respondError(w, http.StatusNotFound, "not_found", "order not found")
		return
	}
	if err != nil {
		log.Printf("get order %s failed: %v", id, err)
		respondError(w, http.StatusBadGateway, "storage_error", "could not load the order")
		return
	}
	respondJSON(w, http.StatusOK, o)
}

// PATCH /api/v1/orders/{order_id}/status
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := parseOrderID(w, r)
	if !ok {
		return
	}

	var req UpdateStatusRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	err := h.orders.SetStatus(r.Context(), id, domain.OrderStatus(req.Status), req.Force)
	switch {
	case errors.Is(err, order.ErrInvalidTransition):
		respondError(w, http.StatusUnprocessableEntity, "invalid_transition", err.Error())
	case errors.Is(err, repository.ErrOrderNotFound):
		respondError(w, http.StatusNotFound, "not_found", "order not found")
	case err != nil:
		log.Printf("update status on order %s failed: %v", id, err)
		respondError(w, http.StatusBadGateway, "storage_error", "could not update the order")
	default:
		w.WriteHeader(http.StatusNoContent)
	}
}

// PATCH /api/v1/orders/{order_id}/payment-status
func (h *OrderHandler) UpdatePaymentStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := parseOrderID(w, r)
	if !ok {
		return
	}

	var req UpdatePaymentStatusRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	err := h.orders.SetPaymentStatus(r.Context(), id, domain.PaymentStatus(req.PaymentStatus))
	switch {
	case errors.Is(err, order.ErrInvalidTransition):
		respondError(w, http.StatusUnprocessableEntity, "invalid_transition", err.Error())
	case errors.Is(err, repository.ErrOrderNotFound):
		respondError(w, http.StatusNotFound, "not_found", "order not found")
	case err != nil:
		log.Printf("update payment status on order %s failed: %v", id, err)
		respondError(w, http.StatusBadGateway, "storage_error", "could not update the order")
	default:
		w.WriteHeader(http.StatusNoContent)
	}
}

// DELETE /api/v1/orders/{order_id}
func (h *OrderHandler) DeleteOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := parseOrderID(w, r)
	if !ok {
		return
	}

	err := h.orders.Delete(r.Context(), id)
	if errors.Is(err, repository.ErrOrderNotFound) {
		respondError(w, http.StatusNotFound, "not_found", "order not found")
		return
	}
	if err != nil {
		log.Printf("delete order %s failed: %v", id, err)
		respondError(w, http.StatusBadGateway, "storage_error", "could not delete the order")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func parseOrderID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "order_id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_id", "order id must be a UUID")
		return uuid.Nil, false
	}
	return id, true
}

func filterFromQuery(r *http.Request) (order.Filter, error) {
	q := r.URL.Query()
	f := order.Filter{
		Query:         q.Get("q"),
		Status:        domain.OrderStatus(q.Get("status")),
		PaymentStatus: domain.PaymentStatus(q.Get("payment_status")),
		OverdueOnly:   q.Get("overdue") == "true",
	}

	if w := q.Get("window"); w != "" {
		f.Window = order.Window(w)
	}
	if f.Status != "" && !f.Status.Valid() {
		return order.Filter{}, errors.New("unknown status value")
	}
	if f.PaymentStatus != "" && !f.PaymentStatus.Valid() {
		return order.Filter{}, errors.New("unknown payment status value")
	}

	if from := q.Get("from"); from != "" {
		t, err := time.Parse(time.RFC3339, from)
		if err != nil {
			return order.Filter{}, errors.New("from must be RFC 3339")
		}
		f.From = t
	}
	if to := q.Get("to"); to != "" {
		t, err := time.Parse(time.RFC3339, to)
		if err != nil {
			return order.Filter{}, errors.New("to must be RFC 3339")
		}
		f.To = t
	}
	return f, nil
}
