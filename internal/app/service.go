package app

import (
	"context"

	"stockroom/internal/core"
)

// ApplicationService is the single interface all UI adapters (Web, CLI) call.
// It decouples presentation from business logic. Implementations must contain
// no fmt.Println, no ANSI codes, and no display logic of any kind.
type ApplicationService interface {
	// ── Suppliers ──

	ListSuppliers(ctx context.Context) (*SupplierListResult, error)
	GetSupplier(ctx context.Context, id int) (*core.Supplier, error)
	CreateSupplier(ctx context.Context, in core.SupplierInput) (*core.Supplier, error)
	UpdateSupplier(ctx context.Context, id int, in core.SupplierInput) (*core.Supplier, error)
	DeleteSupplier(ctx context.Context, id int) error

	// ── Products ──

	ListProducts(ctx context.Context) (*ProductListResult, error)
	GetProduct(ctx context.Context, id int) (*core.Product, error)
	CreateProduct(ctx context.Context, in core.ProductInput) (*core.Product, error)
	UpdateProduct(ctx context.Context, id int, in core.ProductInput) (*core.Product, error)
	DeleteProduct(ctx context.Context, id int) error

	// ── Locations ──

	ListLocations(ctx context.Context) (*LocationListResult, error)
	GetLocation(ctx context.Context, id int) (*core.Location, error)
	CreateLocation(ctx context.Context, in core.LocationInput) (*core.Location, error)
	UpdateLocation(ctx context.Context, id int, in core.LocationInput) (*core.Location, error)
	DeleteLocation(ctx context.Context, id int) error

	// ── Inventory ──

	// AdjustStock applies a signed quantity delta to a product at a location,
	// creating the inventory row on first touch.
	AdjustStock(ctx context.Context, req AdjustStockRequest) (*core.InventoryItem, error)

	// GetStockLevels returns current stock, optionally filtered by product
	// and/or location (zero means no filter).
	GetStockLevels(ctx context.Context, productID, locationID int) (*StockResult, error)

	// GetLowStock returns tracked items at or below their reorder threshold.
	GetLowStock(ctx context.Context) (*StockResult, error)

	// SetReorderThreshold updates the low-stock threshold on an inventory item.
	SetReorderThreshold(ctx context.Context, itemID int, threshold int64) (*core.InventoryItem, error)

	GetInventoryItem(ctx context.Context, itemID int) (*core.InventoryItem, error)

	// DeleteInventoryItem removes a stock row entirely. Stock movements never
	// delete rows; this is an explicit operator action.
	DeleteInventoryItem(ctx context.Context, itemID int) error

	// ── Purchase orders ──

	ListPurchaseOrders(ctx context.Context, status string) (*PurchaseOrderListResult, error)
	GetPurchaseOrder(ctx context.Context, id int) (*core.PurchaseOrder, error)
	CreatePurchaseOrder(ctx context.Context, in core.PurchaseOrderInput) (*core.PurchaseOrder, error)
	UpdatePurchaseOrder(ctx context.Context, id int, in core.PurchaseOrderInput) (*core.PurchaseOrder, error)
	SubmitPurchaseOrder(ctx context.Context, id int) (*core.PurchaseOrder, error)

	// ReceivePurchaseOrder credits every line's quantity into the order's
	// receive location and marks the order received, atomically.
	ReceivePurchaseOrder(ctx context.Context, id int) (*core.PurchaseOrder, error)

	CancelPurchaseOrder(ctx context.Context, id int) (*core.PurchaseOrder, error)

	// ── Sales orders ──

	ListSalesOrders(ctx context.Context, status string) (*SalesOrderListResult, error)
	GetSalesOrder(ctx context.Context, id int) (*core.SalesOrder, error)
	CreateSalesOrder(ctx context.Context, in core.SalesOrderInput) (*core.SalesOrder, error)
	UpdateSalesOrder(ctx context.Context, id int, in core.SalesOrderInput) (*core.SalesOrder, error)
	SubmitSalesOrder(ctx context.Context, id int) (*core.SalesOrder, error)

	// CompleteSalesOrder deducts every line's quantity from the ship-from
	// location and marks the order completed. If any line lacks stock the
	// whole operation fails and no quantities change.
	CompleteSalesOrder(ctx context.Context, id int) (*core.SalesOrder, error)

	CancelSalesOrder(ctx context.Context, id int) (*core.SalesOrder, error)

	// ── Reporting ──

	// GetSalesReport aggregates revenue, cost, and profit over completed
	// sales orders with optional filters and grouping.
	GetSalesReport(ctx context.Context, params core.SalesReportParams) (*core.SalesReport, error)

	// ── Assistant ──

	// AskAssistant routes a natural language question through the read-only
	// AI tool loop and returns its answer.
	AskAssistant(ctx context.Context, question string) (*AssistantResult, error)

	// ── Auth ──

	// AuthenticateUser verifies credentials and returns the user on success.
	AuthenticateUser(ctx context.Context, username, password string) (*core.User, error)

	// GetUser returns the user profile by ID.
	GetUser(ctx context.Context, userID int) (*core.User, error)
}
