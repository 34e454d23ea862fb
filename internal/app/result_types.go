package app

import "stockroom/internal/core"

// SupplierListResult is returned by ListSuppliers.
type SupplierListResult struct {
	Suppliers []core.Supplier `json:"suppliers"`
}

// ProductListResult is returned by ListProducts.
type ProductListResult struct {
	Products []core.Product `json:"products"`
}

// LocationListResult is returned by ListLocations.
type LocationListResult struct {
	Locations []core.Location `json:"locations"`
}

// StockResult is returned by GetStockLevels and GetLowStock.
type StockResult struct {
	Levels []core.StockLevel `json:"levels"`
}

// PurchaseOrderListResult is returned by ListPurchaseOrders.
type PurchaseOrderListResult struct {
	Orders []core.PurchaseOrder `json:"orders"`
}

// SalesOrderListResult is returned by ListSalesOrders.
type SalesOrderListResult struct {
	Orders []core.SalesOrder `json:"orders"`
}

// AssistantResult is returned by AskAssistant.
type AssistantResult struct {
	Answer string `json:"answer"`
}
