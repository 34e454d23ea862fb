package web

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"

	"stockroom/internal/app"
	"stockroom/internal/core"
)

// pageData is the payload every page template receives.
type pageData struct {
	Title     string
	ActiveNav string
	Username  string
	FlashMsg  string
	Data      any
}

// renderPage executes a named page template. Render failures after headers
// are written can only be logged.
func (h *Handler) renderPage(w http.ResponseWriter, r *http.Request, name string, d pageData) {
	if claims := authFromContext(r.Context()); claims != nil {
		d.Username = claims.Username
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.pages.ExecuteTemplate(w, name, d); err != nil {
		log.Printf("render %s: %v", name, err)
	}
}

// ── Login page ────────────────────────────────────────────────────────────────

// loginPage handles GET /login — renders the sign-in page.
// Redirects to the dashboard if already authenticated.
func (h *Handler) loginPage(w http.ResponseWriter, r *http.Request) {
	if h.parseAuthCookie(r) != nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	h.renderPage(w, r, "login.html", pageData{Title: "Sign in"})
}

// loginFormSubmit handles POST /login — form-based login.
func (h *Handler) loginFormSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderPage(w, r, "login.html", pageData{Title: "Sign in", FlashMsg: "Invalid form submission."})
		return
	}

	user, err := h.svc.AuthenticateUser(r.Context(), r.FormValue("username"), r.FormValue("password"))
	if err != nil {
		h.renderPage(w, r, "login.html", pageData{Title: "Sign in", FlashMsg: "Invalid username or password."})
		return
	}

	signed, err := h.signToken(user.ID, user.Username)
	if err != nil {
		h.renderPage(w, r, "login.html", pageData{Title: "Sign in", FlashMsg: "Server error. Please try again."})
		return
	}

	setAuthCookie(w, signed, 3600)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// logoutPage handles POST /logout — clears cookie and redirects to login.
func (h *Handler) logoutPage(w http.ResponseWriter, r *http.Request) {
	setAuthCookie(w, "", -1)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// ── Dashboard ─────────────────────────────────────────────────────────────────

type dashboardData struct {
	LowStock      []core.StockLevel
	PendingPOs    []core.PurchaseOrder
	PendingSOs    []core.SalesOrder
	ProductCount  int
	LocationCount int
}

// dashboardPage handles GET /.
func (h *Handler) dashboardPage(w http.ResponseWriter, r *http.Request) {
	d := dashboardData{}

	if low, err := h.svc.GetLowStock(r.Context()); err == nil {
		d.LowStock = low.Levels
	}
	if pos, err := h.svc.ListPurchaseOrders(r.Context(), core.StatusPending); err == nil {
		d.PendingPOs = pos.Orders
	}
	if sos, err := h.svc.ListSalesOrders(r.Context(), core.StatusPending); err == nil {
		d.PendingSOs = sos.Orders
	}
	if products, err := h.svc.ListProducts(r.Context()); err == nil {
		d.ProductCount = len(products.Products)
	}
	if locations, err := h.svc.ListLocations(r.Context()); err == nil {
		d.LocationCount = len(locations.Locations)
	}

	h.renderPage(w, r, "dashboard.html", pageData{Title: "Dashboard", ActiveNav: "dashboard", Data: d})
}

// ── Catalog and stock pages ───────────────────────────────────────────────────

// productsPage handles GET /products.
func (h *Handler) productsPage(w http.ResponseWriter, r *http.Request) {
	d := pageData{Title: "Products", ActiveNav: "products"}

	result, err := h.svc.ListProducts(r.Context())
	if err != nil {
		d.FlashMsg = "Failed to load products: " + err.Error()
		result = &app.ProductListResult{}
	}
	d.Data = result

	h.renderPage(w, r, "products.html", d)
}

type stockPageData struct {
	Levels    []core.StockLevel
	Products  []core.Product
	Locations []core.Location
}

// stockPage handles GET /stock.
func (h *Handler) stockPage(w http.ResponseWriter, r *http.Request) {
	d := pageData{Title: "Stock", ActiveNav: "stock", FlashMsg: r.URL.Query().Get("flash")}
	data := stockPageData{}

	result, err := h.svc.GetStockLevels(r.Context(), queryInt(r, "product_id"), queryInt(r, "location_id"))
	if err != nil {
		d.FlashMsg = "Failed to load stock levels: " + err.Error()
	} else {
		data.Levels = result.Levels
	}

	// Selects for the manual adjustment form. Best effort; the form is
	// simply empty if these fail.
	if products, err := h.svc.ListProducts(r.Context()); err == nil {
		data.Products = products.Products
	}
	if locations, err := h.svc.ListLocations(r.Context()); err == nil {
		data.Locations = locations.Locations
	}
	d.Data = data

	h.renderPage(w, r, "stock.html", d)
}

// stockAdjustForm handles POST /stock/adjust, the manual correction form.
func (h *Handler) stockAdjustForm(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Redirect(w, r, "/stock?flash="+url.QueryEscape("Invalid form submission."), http.StatusSeeOther)
		return
	}

	productID, _ := strconv.Atoi(r.FormValue("product_id"))
	locationID, _ := strconv.Atoi(r.FormValue("location_id"))
	delta, err := strconv.ParseInt(r.FormValue("delta"), 10, 64)
	if err != nil {
		http.Redirect(w, r, "/stock?flash="+url.QueryEscape("Delta must be a whole number."), http.StatusSeeOther)
		return
	}

	_, err = h.svc.AdjustStock(r.Context(), app.AdjustStockRequest{
		ProductID:  productID,
		LocationID: locationID,
		Delta:      delta,
	})
	if err != nil {
		http.Redirect(w, r, "/stock?flash="+url.QueryEscape(err.Error()), http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/stock", http.StatusSeeOther)
}

// ── Order pages ───────────────────────────────────────────────────────────────

// purchaseOrdersPage handles GET /purchase-orders.
func (h *Handler) purchaseOrdersPage(w http.ResponseWriter, r *http.Request) {
	d := pageData{Title: "Purchase Orders", ActiveNav: "purchase-orders"}

	result, err := h.svc.ListPurchaseOrders(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		d.FlashMsg = "Failed to load purchase orders: " + err.Error()
		result = &app.PurchaseOrderListResult{}
	}
	d.Data = result

	h.renderPage(w, r, "purchase_orders.html", d)
}

// purchaseOrderDetailPage handles GET /purchase-orders/{id}.
func (h *Handler) purchaseOrderDetailPage(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	order, err := h.svc.GetPurchaseOrder(r.Context(), id)
	if err != nil {
		http.Redirect(w, r, "/purchase-orders", http.StatusSeeOther)
		return
	}
	h.renderPage(w, r, "purchase_order_detail.html", pageData{
		Title:     order.Reference,
		ActiveNav: "purchase-orders",
		FlashMsg:  r.URL.Query().Get("flash"),
		Data:      order,
	})
}

// purchaseOrderActionForm handles POST /purchase-orders/{id}/{submit,receive,cancel}.
func (h *Handler) purchaseOrderActionForm(action func(context.Context, int) (*core.PurchaseOrder, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := idParam(w, r)
		if !ok {
			return
		}
		back := fmt.Sprintf("/purchase-orders/%d", id)
		if _, err := action(r.Context(), id); err != nil {
			http.Redirect(w, r, back+"?flash="+url.QueryEscape(err.Error()), http.StatusSeeOther)
			return
		}
		http.Redirect(w, r, back, http.StatusSeeOther)
	}
}

// salesOrdersPage handles GET /sales-orders.
func (h *Handler) salesOrdersPage(w http.ResponseWriter, r *http.Request) {
	d := pageData{Title: "Sales Orders", ActiveNav: "sales-orders"}

	result, err := h.svc.ListSalesOrders(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		d.FlashMsg = "Failed to load sales orders: " + err.Error()
		result = &app.SalesOrderListResult{}
	}
	d.Data = result

	h.renderPage(w, r, "sales_orders.html", d)
}

// salesOrderDetailPage handles GET /sales-orders/{id}.
func (h *Handler) salesOrderDetailPage(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	order, err := h.svc.GetSalesOrder(r.Context(), id)
	if err != nil {
		http.Redirect(w, r, "/sales-orders", http.StatusSeeOther)
		return
	}
	h.renderPage(w, r, "sales_order_detail.html", pageData{
		Title:     order.Reference,
		ActiveNav: "sales-orders",
		FlashMsg:  r.URL.Query().Get("flash"),
		Data:      order,
	})
}

// salesOrderActionForm handles POST /sales-orders/{id}/{submit,complete,cancel}.
func (h *Handler) salesOrderActionForm(action func(context.Context, int) (*core.SalesOrder, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := idParam(w, r)
		if !ok {
			return
		}
		back := fmt.Sprintf("/sales-orders/%d", id)
		if _, err := action(r.Context(), id); err != nil {
			http.Redirect(w, r, back+"?flash="+url.QueryEscape(err.Error()), http.StatusSeeOther)
			return
		}
		http.Redirect(w, r, back, http.StatusSeeOther)
	}
}

// ── Report page ───────────────────────────────────────────────────────────────

type salesReportPageData struct {
	Report *core.SalesReport
	From   string
	To     string
}

// salesReportPage handles GET /reports/sales.
func (h *Handler) salesReportPage(w http.ResponseWriter, r *http.Request) {
	d := pageData{Title: "Sales Report", ActiveNav: "reports"}

	params, err := reportParamsFromQuery(r)
	if err != nil {
		d.FlashMsg = err.Error()
		h.renderPage(w, r, "sales_report.html", d)
		return
	}

	report, err := h.svc.GetSalesReport(r.Context(), params)
	if err != nil {
		d.FlashMsg = "Failed to build report: " + err.Error()
		h.renderPage(w, r, "sales_report.html", d)
		return
	}

	d.Data = salesReportPageData{Report: report, From: params.FromDate, To: params.ToDate}
	h.renderPage(w, r, "sales_report.html", d)
}
