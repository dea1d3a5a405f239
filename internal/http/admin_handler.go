package http

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/vardhacyc/srinidhi-feast-builder-sub000/internal/abandoned"
	"github.com/vardhacyc/srinidhi-feast-builder-sub000/internal/admin"
	"github.com/vardhacyc/srinidhi-feast-builder-sub000/internal/domain"
)

const defaultAbandonedLimit = 50

type AdminHandler struct {
	console  *admin.Console
	recorder *abandoned.Recorder
}

func NewAdminHandler(console *admin.Console, recorder *abandoned.Recorder) *AdminHandler {
	return &AdminHandler{console: console, recorder: recorder}
}

type BulkStatusRequestDTO struct {
	OrderIDs []string `json:"order_ids"`
	Status   string   `json:"status"`
	Force    bool     `json:"force"`
}

type RemindersRequestDTO struct {
	OrderIDs []string `json:"order_ids"`
	Payment  bool     `json:"payment"`
}

type RemindersResponseDTO struct {
	Reminders []admin.Reminder    `json:"reminders"`
	Failed    []admin.BulkFailure `json:"failed,omitempty"`
}

// POST /api/v1/admin/orders/bulk-status
func (h *AdminHandler) BulkStatus(w http.ResponseWriter, r *http.Request) {
	var req BulkStatusRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if len(req.OrderIDs) == 0 {
		respondError(w, http.StatusBadRequest, "invalid_request", "order_ids is required")
		return
	}
	target := domain.OrderStatus(req.Status)
	if !target.Valid() {
		respondError(w, http.StatusBadRequest, "invalid_status", "unknown status value")
		return
	}

	result := h.console.BulkSetStatus(r.Context(), req.OrderIDs, target, req.Force)
	respondJSON(w, http.StatusOK, result)
}

// POST /api/v1/admin/orders/reminders
func (h *AdminHandler) Reminders(w http.ResponseWriter, r *http.Request) {
	var req RemindersRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if len(req.OrderIDs) == 0 {
		respondError(w, http.StatusBadRequest, "invalid_request", "order_ids is required")
		return
	}

	reminders, failed := h.console.Reminders(r.Context(), req.OrderIDs, req.Payment)
	respondJSON(w, http.StatusOK, RemindersResponseDTO{Reminders: reminders, Failed: failed})
}

// GET /api/v1/admin/orders/export
func (h *AdminHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	f, err := filterFromQuery(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_filter", err.Error())
		return
	}

	orders, err := h.console.Orders(r.Context(), f)
	if err != nil {
		log.Printf("export orders failed: %v", err)
		respondError(w, http.StatusBadGateway, "storage_error", "could not load orders")
		return
	}

	now := time.Now()
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="orders-`+now.Format("2006-01-02")+`.csv"`)
	if err := admin.WriteCSV(w, orders, now); err != nil {
		// Headers are gone; all we can do is log.
		log.Printf("write csv export failed: %v", err)
	}
}

// GET /api/v1/admin/stats
func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	f, err := filterFromQuery(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_filter", err.Error())
		return
	}

	stats, err := h.console.Stats(r.Context(), f)
	if err != nil {
		log.Printf("compute stats failed: %v", err)
		respondError(w, http.StatusBadGateway, "storage_error", "could not compute statistics")
		return
	}
	respondJSON(w, http.StatusOK, stats)
}

// GET /api/v1/admin/abandoned-carts
func (h *AdminHandler) AbandonedCarts(w http.ResponseWriter, r *http.Request) {
	limit := defaultAbandonedLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			respondError(w, http.StatusBadRequest, "invalid_limit", "limit must be a positive integer")
			return
		}
		limit = n
	}

	snaps, err := h.recorder.ListRecent(r.Context(), limit)
	if err != nil {
		log.Printf("list abandoned carts failed: %v", err)
		respondError(w, http.StatusBadGateway, "storage_error", "could not load abandoned carts")
		return
	}
	respondJSON(w, http.StatusOK, snaps)
}
