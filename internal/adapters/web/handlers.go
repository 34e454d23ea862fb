package web

import (
	"encoding/json"
	"errors"
	"html/template"
	"net/http"
	"strconv"

	"stockroom/internal/app"
	webui "stockroom/web"

	"github.com/go-chi/chi/v5"
)

// Handler holds the ApplicationService, the chi router, and the parsed page templates.
type Handler struct {
	svc       app.ApplicationService
	router    chi.Router
	jwtSecret string
	pages     *template.Template
}

// NewHandler creates and wires the chi router with all routes.
func NewHandler(svc app.ApplicationService, allowedOrigins, jwtSecret string) http.Handler {
	pages, err := template.ParseFS(webui.Templates, "templates/*.html")
	if err != nil {
		panic("web templates parse failed: " + err.Error())
	}

	h := &Handler{
		svc:       svc,
		jwtSecret: jwtSecret,
		pages:     pages,
	}

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Logger)
	r.Use(Recoverer)
	r.Use(CORS(allowedOrigins))

	// ── Health (public) ───────────────────────────────────────────────────────
	r.Get("/api/health", h.health)

	// ── Auth (public API) ─────────────────────────────────────────────────────
	r.Post("/api/auth/login", h.login)
	r.Post("/api/auth/logout", h.logout)

	// ── Browser login/logout (public HTML) ───────────────────────────────────
	r.Get("/login", h.loginPage)
	r.Post("/login", h.loginFormSubmit)
	r.Post("/logout", h.logoutPage)

	// ── Protected browser routes (redirect to /login if unauthenticated) ─────
	r.Group(func(r chi.Router) {
		r.Use(h.RequireAuthBrowser)
		r.Get("/", h.dashboardPage)
		r.Get("/products", h.productsPage)
		r.Get("/stock", h.stockPage)
		r.Post("/stock/adjust", h.stockAdjustForm)
		r.Get("/purchase-orders", h.purchaseOrdersPage)
		r.Get("/purchase-orders/{id}", h.purchaseOrderDetailPage)
		r.Post("/purchase-orders/{id}/submit", h.purchaseOrderActionForm(h.svc.SubmitPurchaseOrder))
		r.Post("/purchase-orders/{id}/receive", h.purchaseOrderActionForm(h.svc.ReceivePurchaseOrder))
		r.Post("/purchase-orders/{id}/cancel", h.purchaseOrderActionForm(h.svc.CancelPurchaseOrder))
		r.Get("/sales-orders", h.salesOrdersPage)
		r.Get("/sales-orders/{id}", h.salesOrderDetailPage)
		r.Post("/sales-orders/{id}/submit", h.salesOrderActionForm(h.svc.SubmitSalesOrder))
		r.Post("/sales-orders/{id}/complete", h.salesOrderActionForm(h.svc.CompleteSalesOrder))
		r.Post("/sales-orders/{id}/cancel", h.salesOrderActionForm(h.svc.CancelSalesOrder))
		r.Get("/reports/sales", h.salesReportPage)
	})

	// ── Protected API routes (return 401 JSON if unauthenticated) ────────────
	r.Group(func(r chi.Router) {
		r.Use(h.RequireAuth)
		r.Use(RequestBodyLimit(1 << 20)) // 1 MB

		r.Get("/api/auth/me", h.me)

		// Suppliers
		r.Get("/api/suppliers", h.apiListSuppliers)
		r.Post("/api/suppliers", h.apiCreateSupplier)
		r.Get("/api/suppliers/{id}", h.apiGetSupplier)
		r.Put("/api/suppliers/{id}", h.apiUpdateSupplier)
		r.Delete("/api/suppliers/{id}", h.apiDeleteSupplier)

		// Products
		r.Get("/api/products", h.apiListProducts)
		r.Post("/api/products", h.apiCreateProduct)
		r.Get("/api/products/{id}", h.apiGetProduct)
		r.Put("/api/products/{id}", h.apiUpdateProduct)
		r.Delete("/api/products/{id}", h.apiDeleteProduct)

		// Locations
		r.Get("/api/locations", h.apiListLocations)
		r.Post("/api/locations", h.apiCreateLocation)
		r.Get("/api/locations/{id}", h.apiGetLocation)
		r.Put("/api/locations/{id}", h.apiUpdateLocation)
		r.Delete("/api/locations/{id}", h.apiDeleteLocation)

		// Inventory
		r.Get("/api/inventory", h.apiStockLevels)
		r.Post("/api/inventory/adjust", h.apiAdjustStock)
		r.Get("/api/inventory/low-stock", h.apiLowStock)
		r.Get("/api/inventory/{id}", h.apiGetInventoryItem)
		r.Delete("/api/inventory/{id}", h.apiDeleteInventoryItem)
		r.Put("/api/inventory/{id}/threshold", h.apiSetThreshold)

		// Purchase orders
		r.Get("/api/purchase-orders", h.apiListPurchaseOrders)
		r.Post("/api/purchase-orders", h.apiCreatePurchaseOrder)
		r.Get("/api/purchase-orders/{id}", h.apiGetPurchaseOrder)
		r.Put("/api/purchase-orders/{id}", h.apiUpdatePurchaseOrder)
		r.Post("/api/purchase-orders/{id}/submit", h.apiSubmitPurchaseOrder)
		r.Post("/api/purchase-orders/{id}/receive", h.apiReceivePurchaseOrder)
		r.Post("/api/purchase-orders/{id}/cancel", h.apiCancelPurchaseOrder)

		// Sales orders
		r.Get("/api/sales-orders", h.apiListSalesOrders)
		r.Post("/api/sales-orders", h.apiCreateSalesOrder)
		r.Get("/api/sales-orders/{id}", h.apiGetSalesOrder)
		r.Put("/api/sales-orders/{id}", h.apiUpdateSalesOrder)
		r.Post("/api/sales-orders/{id}/submit", h.apiSubmitSalesOrder)
		r.Post("/api/sales-orders/{id}/complete", h.apiCompleteSalesOrder)
		r.Post("/api/sales-orders/{id}/cancel", h.apiCancelSalesOrder)

		// Reporting
		r.Get("/api/reports/sales", h.apiSalesReport)

		// Assistant
		r.Post("/api/assistant", h.apiAskAssistant)
	})

	h.router = r
	return r
}

// health returns service status.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	type response struct {
		Status string `json:"status"`
	}
	writeJSON(w, response{Status: "ok"})
}

// idParam extracts the {id} URL parameter as an int. Writes a 400 and
// returns false when it is not a valid positive integer.
func idParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		writeError(w, r, "invalid id", "BAD_REQUEST", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

// decodeJSON decodes the request body into v and returns false + writes an appropriate
// error response on failure. Returns HTTP 413 when the body exceeds the size limit set
// by RequestBodyLimit middleware; HTTP 400 for all other decode errors.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			writeError(w, r, "request body too large", "REQUEST_TOO_LARGE", http.StatusRequestEntityTooLarge)
			return false
		}
		writeError(w, r, "invalid JSON body: "+err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return false
	}
	return true
}
