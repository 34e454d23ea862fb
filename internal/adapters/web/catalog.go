package web

import (
	"net/http"

	"stockroom/internal/core"

	"github.com/shopspring/decimal"
)

// supplierRequest is the JSON body for creating or updating a supplier.
type supplierRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	Website string `json:"website"`
}

func (req supplierRequest) toInput() core.SupplierInput {
	return core.SupplierInput{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Address: req.Address,
		Website: req.Website,
	}
}

func (h *Handler) apiListSuppliers(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.ListSuppliers(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

func (h *Handler) apiGetSupplier(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	supplier, err := h.svc.GetSupplier(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, supplier)
}

func (h *Handler) apiCreateSupplier(w http.ResponseWriter, r *http.Request) {
	var req supplierRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	supplier, err := h.svc.CreateSupplier(r.Context(), req.toInput())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, supplier)
}

func (h *Handler) apiUpdateSupplier(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var req supplierRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	supplier, err := h.svc.UpdateSupplier(r.Context(), id, req.toInput())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, supplier)
}

func (h *Handler) apiDeleteSupplier(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	if err := h.svc.DeleteSupplier(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// productRequest is the JSON body for creating or updating a product.
// Money fields accept JSON numbers or numeric strings.
type productRequest struct {
	SKU            string          `json:"sku"`
	Name           string          `json:"name"`
	Description    string          `json:"description"`
	UnitCost       decimal.Decimal `json:"unit_cost"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	SupplierID     *int            `json:"supplier_id"`
	IsActive       *bool           `json:"is_active"`
	TrackInventory *bool           `json:"track_inventory"`
}

func (req productRequest) toInput() core.ProductInput {
	in := core.ProductInput{
		SKU:            req.SKU,
		Name:           req.Name,
		Description:    req.Description,
		UnitCost:       req.UnitCost,
		UnitPrice:      req.UnitPrice,
		SupplierID:     req.SupplierID,
		IsActive:       true,
		TrackInventory: true,
	}
	if req.IsActive != nil {
		in.IsActive = *req.IsActive
	}
	if req.TrackInventory != nil {
		in.TrackInventory = *req.TrackInventory
	}
	return in
}

func (h *Handler) apiListProducts(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.ListProducts(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

func (h *Handler) apiGetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	product, err := h.svc.GetProduct(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, product)
}

func (h *Handler) apiCreateProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	product, err := h.svc.CreateProduct(r.Context(), req.toInput())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, product)
}

func (h *Handler) apiUpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var req productRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	product, err := h.svc.UpdateProduct(r.Context(), id, req.toInput())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, product)
}

func (h *Handler) apiDeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	if err := h.svc.DeleteProduct(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// locationRequest is the JSON body for creating or updating a location.
type locationRequest struct {
	Code    string `json:"code"`
	Name    string `json:"name"`
	Address string `json:"address"`
}

func (req locationRequest) toInput() core.LocationInput {
	return core.LocationInput{Code: req.Code, Name: req.Name, Address: req.Address}
}

func (h *Handler) apiListLocations(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.ListLocations(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

func (h *Handler) apiGetLocation(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	location, err := h.svc.GetLocation(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, location)
}

func (h *Handler) apiCreateLocation(w http.ResponseWriter, r *http.Request) {
	var req locationRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	location, err := h.svc.CreateLocation(r.Context(), req.toInput())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, location)
}

func (h *Handler) apiUpdateLocation(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var req locationRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	location, err := h.svc.UpdateLocation(r.Context(), id, req.toInput())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, location)
}

func (h *Handler) apiDeleteLocation(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	if err := h.svc.DeleteLocation(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
