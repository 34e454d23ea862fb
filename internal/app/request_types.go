package app

// AdjustStockRequest is the input for applying a stock adjustment.
type AdjustStockRequest struct {
	ProductID  int
	LocationID int
	Delta      int64
}
