package web

import (
	"context"
	"net/http"

	"stockroom/internal/core"

	"github.com/shopspring/decimal"
)

// purchaseOrderRequest is the JSON body for creating or updating a purchase order.
type purchaseOrderRequest struct {
	SupplierID        int                 `json:"supplier_id"`
	ExpectedDate      *string             `json:"expected_date"`
	ReceiveLocationID *int                `json:"receive_location_id"`
	Notes             string              `json:"notes"`
	Lines             []purchaseLineInput `json:"lines"`
}

type purchaseLineInput struct {
	ProductID int              `json:"product_id"`
	Quantity  int64            `json:"quantity"`
	UnitCost  *decimal.Decimal `json:"unit_cost"` // nil means "use product default"
}

func (req purchaseOrderRequest) toInput() core.PurchaseOrderInput {
	lines := make([]core.PurchaseLineInput, len(req.Lines))
	for i, l := range req.Lines {
		lines[i] = core.PurchaseLineInput{
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			UnitCost:  l.UnitCost,
		}
	}
	return core.PurchaseOrderInput{
		SupplierID:        req.SupplierID,
		ExpectedDate:      req.ExpectedDate,
		ReceiveLocationID: req.ReceiveLocationID,
		Notes:             req.Notes,
		Lines:             lines,
	}
}

// salesOrderRequest is the JSON body for creating or updating a sales order.
type salesOrderRequest struct {
	CustomerName string           `json:"customer_name"`
	ShipFromID   *int             `json:"ship_from_id"`
	Notes        string           `json:"notes"`
	Lines        []salesLineInput `json:"lines"`
}

type salesLineInput struct {
	ProductID int              `json:"product_id"`
	Quantity  int64            `json:"quantity"`
	UnitPrice *decimal.Decimal `json:"unit_price"` // nil means "use product default"
}

func (req salesOrderRequest) toInput() core.SalesOrderInput {
	lines := make([]core.SalesLineInput, len(req.Lines))
	for i, l := range req.Lines {
		lines[i] = core.SalesLineInput{
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
		}
	}
	return core.SalesOrderInput{
		CustomerName: req.CustomerName,
		ShipFromID:   req.ShipFromID,
		Notes:        req.Notes,
		Lines:        lines,
	}
}

// ── Purchase order API ────────────────────────────────────────────────────────

// apiListPurchaseOrders handles GET /api/purchase-orders?status=.
func (h *Handler) apiListPurchaseOrders(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.ListPurchaseOrders(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

func (h *Handler) apiGetPurchaseOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	order, err := h.svc.GetPurchaseOrder(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, order)
}

func (h *Handler) apiCreatePurchaseOrder(w http.ResponseWriter, r *http.Request) {
	var req purchaseOrderRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	order, err := h.svc.CreatePurchaseOrder(r.Context(), req.toInput())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, order)
}

func (h *Handler) apiUpdatePurchaseOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var req purchaseOrderRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	order, err := h.svc.UpdatePurchaseOrder(r.Context(), id, req.toInput())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, order)
}

func (h *Handler) apiSubmitPurchaseOrder(w http.ResponseWriter, r *http.Request) {
	h.purchaseOrderAction(w, r, h.svc.SubmitPurchaseOrder)
}

func (h *Handler) apiReceivePurchaseOrder(w http.ResponseWriter, r *http.Request) {
	h.purchaseOrderAction(w, r, h.svc.ReceivePurchaseOrder)
}

func (h *Handler) apiCancelPurchaseOrder(w http.ResponseWriter, r *http.Request) {
	h.purchaseOrderAction(w, r, h.svc.CancelPurchaseOrder)
}

// purchaseOrderAction runs a status-transition operation identified by {id}.
func (h *Handler) purchaseOrderAction(w http.ResponseWriter, r *http.Request, action func(ctx context.Context, id int) (*core.PurchaseOrder, error)) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	order, err := action(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, order)
}

// ── Sales order API ───────────────────────────────────────────────────────────

// apiListSalesOrders handles GET /api/sales-orders?status=.
func (h *Handler) apiListSalesOrders(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.ListSalesOrders(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

func (h *Handler) apiGetSalesOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	order, err := h.svc.GetSalesOrder(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, order)
}

func (h *Handler) apiCreateSalesOrder(w http.ResponseWriter, r *http.Request) {
	var req salesOrderRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	order, err := h.svc.CreateSalesOrder(r.Context(), req.toInput())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, order)
}

func (h *Handler) apiUpdateSalesOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var req salesOrderRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	order, err := h.svc.UpdateSalesOrder(r.Context(), id, req.toInput())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, order)
}

func (h *Handler) apiSubmitSalesOrder(w http.ResponseWriter, r *http.Request) {
	h.salesOrderAction(w, r, h.svc.SubmitSalesOrder)
}

func (h *Handler) apiCompleteSalesOrder(w http.ResponseWriter, r *http.Request) {
	h.salesOrderAction(w, r, h.svc.CompleteSalesOrder)
}

func (h *Handler) apiCancelSalesOrder(w http.ResponseWriter, r *http.Request) {
	h.salesOrderAction(w, r, h.svc.CancelSalesOrder)
}

// salesOrderAction runs a status-transition operation identified by {id}.
func (h *Handler) salesOrderAction(w http.ResponseWriter, r *http.Request, action func(ctx context.Context, id int) (*core.SalesOrder, error)) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	order, err := action(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, order)
}
