package web

import (
	"net/http"
	"strconv"

	"stockroom/internal/app"
)

// queryInt parses an optional integer query parameter, returning 0 when absent.
func queryInt(r *http.Request, key string) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return n
}

// apiStockLevels handles GET /api/inventory?product_id=&location_id=.
func (h *Handler) apiStockLevels(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.GetStockLevels(r.Context(), queryInt(r, "product_id"), queryInt(r, "location_id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// apiAdjustStock handles POST /api/inventory/adjust.
func (h *Handler) apiAdjustStock(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProductID  int   `json:"product_id"`
		LocationID int   `json:"location_id"`
		Delta      int64 `json:"delta"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	item, err := h.svc.AdjustStock(r.Context(), app.AdjustStockRequest{
		ProductID:  req.ProductID,
		LocationID: req.LocationID,
		Delta:      req.Delta,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, item)
}

// apiLowStock handles GET /api/inventory/low-stock.
func (h *Handler) apiLowStock(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.GetLowStock(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// apiGetInventoryItem handles GET /api/inventory/{id}.
func (h *Handler) apiGetInventoryItem(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	item, err := h.svc.GetInventoryItem(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, item)
}

// apiDeleteInventoryItem handles DELETE /api/inventory/{id}.
func (h *Handler) apiDeleteInventoryItem(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	if err := h.svc.DeleteInventoryItem(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// apiSetThreshold handles PUT /api/inventory/{id}/threshold.
func (h *Handler) apiSetThreshold(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var req struct {
		ReorderThreshold int64 `json:"reorder_threshold"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	item, err := h.svc.SetReorderThreshold(r.Context(), id, req.ReorderThreshold)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, item)
}
