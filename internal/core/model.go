package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// Supplier represents a vendor master record.
type Supplier struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Address   string    `json:"address"`
	Website   string    `json:"website"`
	CreatedAt time.Time `json:"created_at"`
}

// Product represents a sellable item in the catalog.
// UnitCost is the current replacement cost; UnitPrice is the selling price.
// TrackInventory=false marks service items excluded from low-stock alerts.
type Product struct {
	ID             int             `json:"id"`
	SKU            string          `json:"sku"`
	Name           string          `json:"name"`
	Description    string          `json:"description"`
	UnitCost       decimal.Decimal `json:"unit_cost"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	SupplierID     *int            `json:"supplier_id,omitempty"`
	SupplierName   *string         `json:"supplier_name,omitempty"` // joined from suppliers
	IsActive       bool            `json:"is_active"`
	TrackInventory bool            `json:"track_inventory"`
	CreatedAt      time.Time       `json:"created_at"`
}

// Location represents a physical stock location (warehouse, shop floor, van).
type Location struct {
	ID        int       `json:"id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	CreatedAt time.Time `json:"created_at"`
}

// InventoryItem is the on-hand quantity of one product at one location.
// Rows are created lazily by the first stock movement that touches the pair.
// Quantity may go negative through manual corrections.
type InventoryItem struct {
	ID               int       `json:"id"`
	ProductID        int       `json:"product_id"`
	LocationID       int       `json:"location_id"`
	Quantity         int64     `json:"quantity"`
	ReorderThreshold int64     `json:"reorder_threshold"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// StockLevel is an InventoryItem joined with product and location for display.
type StockLevel struct {
	ItemID           int    `json:"item_id"`
	ProductID        int    `json:"product_id"`
	SKU              string `json:"sku"`
	ProductName      string `json:"product_name"`
	LocationID       int    `json:"location_id"`
	LocationCode     string `json:"location_code"`
	LocationName     string `json:"location_name"`
	Quantity         int64  `json:"quantity"`
	ReorderThreshold int64  `json:"reorder_threshold"`
	LowStock         bool   `json:"low_stock"`
}

// User is an operator account for the web UI and API.
type User struct {
	ID           int       `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
}
