package http

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"strconv"

	"github.com/vardhacyc/srinidhi-feast-builder-sub000/internal/cache"
	"github.com/vardhacyc/srinidhi-feast-builder-sub000/internal/cart"
	"github.com/vardhacyc/srinidhi-feast-builder-sub000/internal/domain"
)

type CartHandler struct {
	carts                 cache.CartStore
	rates                 cart.TaxRates
	freeDeliveryThreshold float64
}

func NewCartHandler(carts cache.CartStore, rates cart.TaxRates, freeDeliveryThreshold float64) *CartHandler {
	return &CartHandler{
		carts:                 carts,
		rates:                 rates,
		freeDeliveryThreshold: freeDeliveryThreshold,
	}
}

type AddItemRequestDTO struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	UnitPrice float64 `json:"unit_price"`
	Unit      string  `json:"unit"`
	Category  string  `json:"category"`
}

type UpdateQuantityRequestDTO struct {
	Quantity int `json:"quantity"`
}

type CartResponseDTO struct {
	Items  []domain.CartItem `json:"items"`
	Totals domain.CartTotals `json:"totals"`
}

// GET /api/v1/cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	engine, _, ok := h.loadCart(w, r)
	if !ok {
		return
	}
	h.respondCart(w, engine)
}

// POST /api/v1/cart/items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.ID == "" || req.Name == "" || req.UnitPrice < 0 {
		respondError(w, http.StatusBadRequest, "invalid_item", "item id, name and a non-negative price are required")
		return
	}
	category := domain.Category(req.Category)
	if category != domain.CategorySweet && category != domain.CategorySavoury {
		respondError(w, http.StatusBadRequest, "invalid_category", "category must be sweet or savoury")
		return
	}

	engine, sessionID, ok := h.loadCart(w, r)
	if !ok {
		return
	}

	engine.AddItem(domain.CartItem{
		ID:        req.ID,
		Name:      req.Name,
		UnitPrice: req.UnitPrice,
		Unit:      req.Unit,
		Category:  category,
	})

	if !h.saveCart(w, r.Context(), sessionID, engine) {
		return
	}
	h.respondCart(w, engine)
}

// PUT /api/v1/cart/items/{item_id}
func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	itemID := chi.URLParam(r, "item_id")

	var req UpdateQuantityRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		// Allow ?quantity= for storefront convenience.
		q, convErr := strconv.Atoi(r.URL.Query().Get("quantity"))
		if convErr != nil {
			respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
			return
		}
		req.Quantity = q
	}

	engine, sessionID, ok := h.loadCart(w, r)
	if !ok {
		return
	}

	engine.UpdateQuantity(itemID, req.Quantity)

	if !h.saveCart(w, r.Context(), sessionID, engine) {
		return
	}
	h.respondCart(w, engine)
}

// DELETE /api/v1/cart/items/{item_id}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	engine, sessionID, ok := h.loadCart(w, r)
	if !ok {
		return
	}

	engine.RemoveItem(chi.URLParam(r, "item_id"))

	if !h.saveCart(w, r.Context(), sessionID, engine) {
		return
	}
	h.respondCart(w, engine)
}

// DELETE /api/v1/cart
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	sessionID := getSessionID(r.Context())
	if err := h.carts.Delete(r.Context(), sessionID); err != nil {
		log.Printf("clear cart failed for session %s: %v", sessionID, err)
		respondError(w, http.StatusBadGateway, "storage_error", "could not clear the cart, please try again")
		return
	}
	h.respondCart(w, cart.NewEngine())
}

func (h *CartHandler) loadCart(w http.ResponseWriter, r *http.Request) (*cart.Engine, string, bool) {
	sessionID := getSessionID(r.Context())

	stored, err := h.carts.Get(r.Context(), sessionID)
	if errors.Is(err, cache.ErrCartNotFound) {
		return cart.NewEngine(), sessionID, true
	}
	if err != nil {
		log.Printf("load cart failed for session %s: %v", sessionID, err)
		respondError(w, http.StatusBadGateway, "storage_error", "could not load the cart, please try again")
		return nil, "", false
	}
	return cart.FromItems(stored.Items), sessionID, true
}

func (h *CartHandler) saveCart(w http.ResponseWriter, ctx context.Context, sessionID string, engine *cart.Engine) bool {
	err := h.carts.Set(ctx, sessionID, &domain.Cart{
		SessionID: sessionID,
		Items:     engine.Items(),
		UpdatedAt: time.Now(),
	})
	if err != nil {
		log.Printf("save cart failed for session %s: %v", sessionID, err)
		respondError(w, http.StatusBadGateway, "storage_error", "could not save the cart, please try again")
		return false
	}
	return true
}

func (h *CartHandler) respondCart(w http.ResponseWriter, engine *cart.Engine) {
	respondJSON(w, http.StatusOK, CartResponseDTO{
		Items:  engine.Items(),
		Totals: engine.ComputeTotals(h.rates, h.freeDeliveryThreshold),
	})
}
