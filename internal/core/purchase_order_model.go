package core

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// PurchaseOrder represents a purchase order header.
type PurchaseOrder struct {
	ID                 int                 `json:"id"`
	Reference          string              `json:"reference"`
	SupplierID         int                 `json:"supplier_id"`
	SupplierName       string              `json:"supplier_name"` // joined from suppliers
	Status             string              `json:"status"`
	ExpectedDate       *string             `json:"expected_date,omitempty"` // YYYY-MM-DD
	ReceiveLocationID  *int                `json:"receive_location_id,omitempty"`
	ReceiveLocation    *string             `json:"receive_location,omitempty"` // joined location code
	Notes              string              `json:"notes"`
	Total              decimal.Decimal     `json:"total"` // sum of line quantity × unit_cost
	Lines              []PurchaseOrderLine `json:"lines"`
	CreatedAt          time.Time           `json:"created_at"`
	UpdatedAt          time.Time           `json:"updated_at"`
}

// PurchaseOrderLine represents a single line on a purchase order.
type PurchaseOrderLine struct {
	ID          int             `json:"id"`
	OrderID     int             `json:"order_id"`
	ProductID   int             `json:"product_id"`
	SKU         string          `json:"sku"`          // joined from products
	ProductName string          `json:"product_name"` // joined from products
	Quantity    int64           `json:"quantity"`
	UnitCost    decimal.Decimal `json:"unit_cost"`
}

// PurchaseLineInput is used when creating or updating a purchase order.
// If UnitCost is nil, the product's current unit_cost is used.
type PurchaseLineInput struct {
	ProductID int
	Quantity  int64
	UnitCost  *decimal.Decimal
}

// PurchaseOrderInput holds the header fields for creating or updating a purchase order.
type PurchaseOrderInput struct {
	SupplierID        int
	ExpectedDate      *string // YYYY-MM-DD
	ReceiveLocationID *int
	Notes             string
	Lines             []PurchaseLineInput
}

// PurchaseOrderService provides the purchase order lifecycle.
type PurchaseOrderService interface {
	// Create creates a new draft purchase order and assigns its reference number.
	Create(ctx context.Context, in PurchaseOrderInput) (*PurchaseOrder, error)

	// Get returns a purchase order by ID including all lines.
	Get(ctx context.Context, id int) (*PurchaseOrder, error)

	// List returns purchase orders, optionally filtered by status, newest first.
	List(ctx context.Context, status string) ([]PurchaseOrder, error)

	// Update replaces header fields and lines. Only draft and pending orders
	// may be edited; the status itself is never changed here.
	Update(ctx context.Context, id int, in PurchaseOrderInput) (*PurchaseOrder, error)

	// Submit transitions a draft order to pending.
	Submit(ctx context.Context, id int) (*PurchaseOrder, error)

	// Receive books the order into stock: credits every line quantity at the
	// receive location and sets status to received, all in one transaction.
	// Fails if the order is already received or cancelled, or if no receive
	// location is set.
	Receive(ctx context.Context, id int) (*PurchaseOrder, error)

	// Cancel transitions a draft or pending order to cancelled.
	Cancel(ctx context.Context, id int) (*PurchaseOrder, error)
}
