package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/dropwatch/dropwatch/internal/database"
)

// Handlers serves read-only views over tracked items, their price
// history and the scrape audit trail.
type Handlers struct {
	store  *database.Store
	logger *slog.Logger
}

func NewHandlers(store *database.Store, logger *slog.Logger) *Handlers {
	return &Handlers{
		store:  store,
		logger: logger.With("component", "api"),
	}
}

func (h *Handlers) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/health", h.Health)
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/items", h.ListItems)
		r.Get("/items/{id}", h.GetItem)
		r.Get("/items/{id}/history", h.GetHistory)
		r.Get("/items/{id}/latest", h.GetLatest)
		r.Get("/logs", h.GetLogs)
		r.Get("/stats", h.GetStats)
	})

	return r
}

func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handlers) ListItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.store.ListItems(r.Context())
	if err != nil {
		h.logger.Error("failed to list items", "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to list items")
		return
	}
	h.respondJSON(w, http.StatusOK, items)
}

func (h *Handlers) GetItem(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	item, err := h.store.GetItemByID(r.Context(), id)
	if err != nil {
		h.respondError(w, http.StatusNotFound, "item not found")
		return
	}
	h.respondJSON(w, http.StatusOK, item)
}

func (h *Handlers) GetHistory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	limit := queryInt(r, "limit", 100)

	records, err := h.store.GetItemHistory(r.Context(), id, limit)
	if err != nil {
		h.logger.Error("failed to get history", "item_id", id, "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to get history")
		return
	}
	h.respondJSON(w, http.StatusOK, records)
}

func (h *Handlers) GetLatest(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	record, err := h.store.GetLatestPrice(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to get latest price", "item_id", id, "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to get latest price")
		return
	}
	if record == nil {
		h.respondError(w, http.StatusNotFound, "no price records for item")
		return
	}
	h.respondJSON(w, http.StatusOK, record)
}

func (h *Handlers) GetLogs(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 50)

	var itemID *string
	if v := r.URL.Query().Get("item_id"); v != "" {
		itemID = &v
	}

	logs, err := h.store.GetScrapeLogs(r.Context(), itemID, limit)
	if err != nil {
		h.logger.Error("failed to get scrape logs", "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to get scrape logs")
		return
	}
	h.respondJSON(w, http.StatusOK, logs)
}

func (h *Handlers) GetStats(w http.ResponseWriter, r *http.Request) {
	days := queryInt(r, "days", 7)

	var itemID *string
	if v := r.URL.Query().Get("item_id"); v != "" {
		itemID = &v
	}

	rate, err := h.store.SuccessRate(r.Context(), itemID, days)
	if err != nil {
		h.logger.Error("failed to compute stats", "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to compute stats")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"days":         days,
		"success_rate": rate,
	})
}

func (h *Handlers) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *Handlers) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}

func queryInt(r *http.Request, key string, defaultValue int) int {
	if v := r.URL.Query().Get(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil && i > 0 {
			return i
		}
	}
	return defaultValue
}
