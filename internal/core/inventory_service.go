package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// InventoryService manages per-location stock quantities.
type InventoryService interface {
	// Standalone operations (manage their own transactions).

	// AdjustStock applies a signed delta to the stock of a product at a
	// location. The row is created at the delta if the pair has never been
	// stocked before. Negative results are allowed; the returned quantity is
	// informational and may be stale by the time the caller reads it.
	AdjustStock(ctx context.Context, productID, locationID int, delta int64) (*InventoryItem, error)

	// GetStockLevels returns stock rows joined with product and location.
	// productID and locationID are optional filters (0 means all).
	GetStockLevels(ctx context.Context, productID, locationID int) ([]StockLevel, error)

	// GetLowStock returns rows at or below their reorder threshold for
	// inventory-tracked products.
	GetLowStock(ctx context.Context) ([]StockLevel, error)

	GetItem(ctx context.Context, itemID int) (*InventoryItem, error)
	SetReorderThreshold(ctx context.Context, itemID int, threshold int64) (*InventoryItem, error)
	DeleteItem(ctx context.Context, itemID int) error

	// TX-scoped operations: work within a caller-provided transaction.
	// Used by the order services to keep stock changes atomic with order
	// state transitions.

	// AdjustStockTx is AdjustStock inside the caller's TX.
	AdjustStockTx(ctx context.Context, tx pgx.Tx, productID, locationID int, delta int64) (*InventoryItem, error)

	// DeductStockTx removes qty from stock only if enough is available,
	// in a single conditional UPDATE. Returns a DomainError with code
	// insufficient_stock when the row is missing or holds less than qty.
	DeductStockTx(ctx context.Context, tx pgx.Tx, productID, locationID int, qty int64) error
}

type inventoryService struct {
	pool *pgxpool.Pool
}

// NewInventoryService constructs an InventoryService backed by PostgreSQL.
func NewInventoryService(pool *pgxpool.Pool) InventoryService {
	return &inventoryService{pool: pool}
}

// pgxRowQuerier and pgxQuerier are satisfied by both *pgxpool.Pool and
// pgx.Tx, letting the same query helpers serve standalone and TX-scoped
// operations.
type pgxRowQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type pgxQuerier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// ── Standalone operations ─────────────────────────────────────────────────────

func (s *inventoryService) AdjustStock(ctx context.Context, productID, locationID int, delta int64) (*InventoryItem, error) {
	var exists bool
	if err := s.pool.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM products WHERE id = $1)", productID,
	).Scan(&exists); err != nil {
		return nil, fmt.Errorf("validate product: %w", err)
	}
	if !exists {
		return nil, NewDomainError(ErrCodeNotFound, "product %d not found", productID)
	}

	if err := s.pool.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM locations WHERE id = $1)", locationID,
	).Scan(&exists); err != nil {
		return nil, fmt.Errorf("validate location: %w", err)
	}
	if !exists {
		return nil, NewDomainError(ErrCodeNotFound, "location %d not found", locationID)
	}

	return adjustStockQ(ctx, s.pool, productID, locationID, delta)
}

// adjustStockQ performs the adjustment as a single atomic upsert: the
// increment happens inside the database, so concurrent adjustments to the
// same row serialize on the row lock and none are lost.
func adjustStockQ(ctx context.Context, q pgxRowQuerier, productID, locationID int, delta int64) (*InventoryItem, error) {
	item := &InventoryItem{}
	err := q.QueryRow(ctx, `
		INSERT INTO inventory_items (product_id, location_id, quantity, reorder_threshold)
		VALUES ($1, $2, $3, 0)
		ON CONFLICT (product_id, location_id)
		DO UPDATE SET quantity   = inventory_items.quantity + EXCLUDED.quantity,
		              updated_at = NOW()
		RETURNING id, product_id, location_id, quantity, reorder_threshold, updated_at
	`, productID, locationID, delta).Scan(
		&item.ID, &item.ProductID, &item.LocationID,
		&item.Quantity, &item.ReorderThreshold, &item.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("adjust stock for product %d at location %d: %w", productID, locationID, err)
	}
	return item, nil
}

func (s *inventoryService) GetStockLevels(ctx context.Context, productID, locationID int) ([]StockLevel, error) {
	q := `
		SELECT ii.id, p.id, p.sku, p.name,
		       l.id, l.code, l.name,
		       ii.quantity, ii.reorder_threshold,
		       ii.quantity <= ii.reorder_threshold AS low_stock
		FROM inventory_items ii
		JOIN products p  ON p.id = ii.product_id
		JOIN locations l ON l.id = ii.location_id
		WHERE true`

	var args []any
	if productID != 0 {
		args = append(args, productID)
		q += fmt.Sprintf(" AND ii.product_id = $%d", len(args))
	}
	if locationID != 0 {
		args = append(args, locationID)
		q += fmt.Sprintf(" AND ii.location_id = $%d", len(args))
	}
	q += " ORDER BY p.sku, l.code"

	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query stock levels: %w", err)
	}
	defer rows.Close()

	return scanStockLevels(rows)
}

func (s *inventoryService) GetLowStock(ctx context.Context) ([]StockLevel, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT ii.id, p.id, p.sku, p.name,
		       l.id, l.code, l.name,
		       ii.quantity, ii.reorder_threshold,
		       true AS low_stock
		FROM inventory_items ii
		JOIN products p  ON p.id = ii.product_id
		JOIN locations l ON l.id = ii.location_id
		WHERE ii.quantity <= ii.reorder_threshold
		  AND p.track_inventory = true
		ORDER BY p.sku, l.code`)
	if err != nil {
		return nil, fmt.Errorf("query low stock: %w", err)
	}
	defer rows.Close()

	return scanStockLevels(rows)
}

func scanStockLevels(rows pgx.Rows) ([]StockLevel, error) {
	var levels []StockLevel
	for rows.Next() {
		var sl StockLevel
		if err := rows.Scan(
			&sl.ItemID, &sl.ProductID, &sl.SKU, &sl.ProductName,
			&sl.LocationID, &sl.LocationCode, &sl.LocationName,
			&sl.Quantity, &sl.ReorderThreshold, &sl.LowStock,
		); err != nil {
			return nil, fmt.Errorf("scan stock level: %w", err)
		}
		levels = append(levels, sl)
	}
	return levels, rows.Err()
}

func (s *inventoryService) GetItem(ctx context.Context, itemID int) (*InventoryItem, error) {
	item := &InventoryItem{}
	err := s.pool.QueryRow(ctx, `
		SELECT id, product_id, location_id, quantity, reorder_threshold, updated_at
		FROM inventory_items
		WHERE id = $1`,
		itemID,
	).Scan(&item.ID, &item.ProductID, &item.LocationID, &item.Quantity, &item.ReorderThreshold, &item.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, NewDomainError(ErrCodeNotFound, "inventory item %d not found", itemID)
		}
		return nil, fmt.Errorf("get inventory item %d: %w", itemID, err)
	}
	return item, nil
}

func (s *inventoryService) SetReorderThreshold(ctx context.Context, itemID int, threshold int64) (*InventoryItem, error) {
	if threshold < 0 {
		return nil, NewDomainError(ErrCodeValidation, "reorder threshold cannot be negative, got %d", threshold)
	}
	item := &InventoryItem{}
	err := s.pool.QueryRow(ctx, `
		UPDATE inventory_items
		SET reorder_threshold = $1, updated_at = NOW()
		WHERE id = $2
		RETURNING id, product_id, location_id, quantity, reorder_threshold, updated_at`,
		threshold, itemID,
	).Scan(&item.ID, &item.ProductID, &item.LocationID, &item.Quantity, &item.ReorderThreshold, &item.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, NewDomainError(ErrCodeNotFound, "inventory item %d not found", itemID)
		}
		return nil, fmt.Errorf("set reorder threshold for item %d: %w", itemID, err)
	}
	return item, nil
}

func (s *inventoryService) DeleteItem(ctx context.Context, itemID int) error {
	tag, err := s.pool.Exec(ctx, "DELETE FROM inventory_items WHERE id = $1", itemID)
	if err != nil {
		return fmt.Errorf("delete inventory item %d: %w", itemID, err)
	}
	if tag.RowsAffected() == 0 {
		return NewDomainError(ErrCodeNotFound, "inventory item %d not found", itemID)
	}
	return nil
}

// ── TX-scoped operations ──────────────────────────────────────────────────────

func (s *inventoryService) AdjustStockTx(ctx context.Context, tx pgx.Tx, productID, locationID int, delta int64) (*InventoryItem, error) {
	return adjustStockQ(ctx, tx, productID, locationID, delta)
}

func (s *inventoryService) DeductStockTx(ctx context.Context, tx pgx.Tx, productID, locationID int, qty int64) error {
	// Conditional decrement: the quantity check and the deduction are one
	// statement, so two concurrent deductions cannot both pass the check
	// against the same units.
	tag, err := tx.Exec(ctx, `
		UPDATE inventory_items
		SET quantity = quantity - $1, updated_at = NOW()
		WHERE product_id = $2 AND location_id = $3 AND quantity >= $1`,
		qty, productID, locationID,
	)
	if err != nil {
		return fmt.Errorf("deduct stock for product %d at location %d: %w", productID, locationID, err)
	}
	if tag.RowsAffected() == 0 {
		// Missing row counts as zero available.
		var sku, locationCode string
		var available int64
		err := tx.QueryRow(ctx, `
			SELECT p.sku, l.code, COALESCE(ii.quantity, 0)
			FROM products p
			JOIN locations l ON l.id = $2
			LEFT JOIN inventory_items ii ON ii.product_id = p.id AND ii.location_id = l.id
			WHERE p.id = $1`,
			productID, locationID,
		).Scan(&sku, &locationCode, &available)
		if err != nil {
			return fmt.Errorf("resolve availability for product %d at location %d: %w", productID, locationID, err)
		}
		return NewDomainError(ErrCodeInsufficientStock,
			"insufficient stock for product %s at %s: available %d, required %d",
			sku, locationCode, available, qty)
	}
	return nil
}
