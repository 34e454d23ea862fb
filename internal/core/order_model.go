package core

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Order statuses. Transitions are forward-only:
//
//	draft → pending → received (PO) / completed (SO)
//	draft, pending → cancelled
//
// received, completed, and cancelled are terminal.
const (
	StatusDraft     = "draft"
	StatusPending   = "pending"
	StatusReceived  = "received"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

// editableStatus reports whether an order in the given status accepts
// field and line edits.
func editableStatus(status string) bool {
	return status == StatusDraft || status == StatusPending
}

// SalesOrder represents a customer sales order header.
type SalesOrder struct {
	ID           int              `json:"id"`
	Reference    string           `json:"reference"`
	CustomerName string           `json:"customer_name"`
	Status       string           `json:"status"`
	ShipFromID   *int             `json:"ship_from_id,omitempty"`
	ShipFromCode *string          `json:"ship_from_code,omitempty"` // joined from locations
	Notes        string           `json:"notes"`
	Total        decimal.Decimal  `json:"total"` // sum of line quantity × unit_price
	Lines        []SalesOrderLine `json:"lines"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

// SalesOrderLine represents one line item on a sales order.
// UnitCost is the product cost snapshot captured when the line was written.
type SalesOrderLine struct {
	ID          int             `json:"id"`
	OrderID     int             `json:"order_id"`
	ProductID   int             `json:"product_id"`
	SKU         string          `json:"sku"`          // joined from products
	ProductName string          `json:"product_name"` // joined from products
	Quantity    int64           `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	UnitCost    decimal.Decimal `json:"unit_cost"`
}

// SalesLineInput is used when creating or updating a sales order.
// If UnitPrice is nil, the product's current unit_price is used.
type SalesLineInput struct {
	ProductID int
	Quantity  int64
	UnitPrice *decimal.Decimal
}

// SalesOrderInput holds the header fields for creating or updating a sales order.
type SalesOrderInput struct {
	CustomerName string
	ShipFromID   *int
	Notes        string
	Lines        []SalesLineInput
}

// SalesOrderService provides the sales order lifecycle.
type SalesOrderService interface {
	// Create creates a new draft sales order and assigns its reference number.
	Create(ctx context.Context, in SalesOrderInput) (*SalesOrder, error)

	// Get returns a sales order by ID including all lines.
	Get(ctx context.Context, id int) (*SalesOrder, error)

	// List returns sales orders, optionally filtered by status, newest first.
	List(ctx context.Context, status string) ([]SalesOrder, error)

	// Update replaces header fields and lines. Only draft and pending orders
	// may be edited; the status itself is never changed here.
	Update(ctx context.Context, id int, in SalesOrderInput) (*SalesOrder, error)

	// Submit transitions a draft order to pending.
	Submit(ctx context.Context, id int) (*SalesOrder, error)

	// Complete fulfills the order: deducts every line quantity from stock at
	// the ship-from location and sets status to completed, all in one
	// transaction. If any line lacks sufficient stock the whole operation
	// fails and no inventory changes.
	Complete(ctx context.Context, id int) (*SalesOrder, error)

	// Cancel transitions a draft or pending order to cancelled.
	// No inventory is touched.
	Cancel(ctx context.Context, id int) (*SalesOrder, error)
}
