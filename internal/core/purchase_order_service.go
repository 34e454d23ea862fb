package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type purchaseOrderService struct {
	pool *pgxpool.Pool
	inv  InventoryService
}

// NewPurchaseOrderService constructs a PurchaseOrderService backed by PostgreSQL.
func NewPurchaseOrderService(pool *pgxpool.Pool, inv InventoryService) PurchaseOrderService {
	return &purchaseOrderService{pool: pool, inv: inv}
}

// Create creates a new draft purchase order and assigns its reference number.
func (s *purchaseOrderService) Create(ctx context.Context, in PurchaseOrderInput) (*PurchaseOrder, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var supplierExists bool
	if err := tx.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM suppliers WHERE id = $1)", in.SupplierID,
	).Scan(&supplierExists); err != nil {
		return nil, fmt.Errorf("validate supplier: %w", err)
	}
	if !supplierExists {
		return nil, NewDomainError(ErrCodeNotFound, "supplier %d not found", in.SupplierID)
	}

	resolved, err := resolvePurchaseLines(ctx, tx, in.Lines)
	if err != nil {
		return nil, err
	}

	reference, err := nextReference(ctx, tx, "PO")
	if err != nil {
		return nil, err
	}

	var poID int
	if err := tx.QueryRow(ctx, `
		INSERT INTO purchase_orders (reference, supplier_id, status, expected_date, receive_location_id, notes)
		VALUES ($1, $2, 'draft', $3, $4, $5)
		RETURNING id`,
		reference, in.SupplierID, in.ExpectedDate, in.ReceiveLocationID, in.Notes,
	).Scan(&poID); err != nil {
		return nil, fmt.Errorf("insert purchase order: %w", err)
	}

	if err := insertPurchaseLines(ctx, tx, poID, resolved); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit purchase order: %w", err)
	}

	return s.Get(ctx, poID)
}

// Update replaces header fields and lines of a draft or pending order.
// Lines are replaced wholesale; the order status is never touched here.
func (s *purchaseOrderService) Update(ctx context.Context, id int, in PurchaseOrderInput) (*PurchaseOrder, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var status string
	if err := tx.QueryRow(ctx,
		"SELECT status FROM purchase_orders WHERE id = $1 FOR UPDATE", id,
	).Scan(&status); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, NewDomainError(ErrCodeNotFound, "purchase order %d not found", id)
		}
		return nil, fmt.Errorf("fetch purchase order %d: %w", id, err)
	}
	if !editableStatus(status) {
		return nil, NewDomainError(ErrCodeInvalidTransition,
			"purchase order %d cannot be edited: status is %s", id, status)
	}

	resolved, err := resolvePurchaseLines(ctx, tx, in.Lines)
	if err != nil {
		return nil, err
	}

	if _, err := tx.Exec(ctx, `
		UPDATE purchase_orders
		SET supplier_id = $1, expected_date = $2, receive_location_id = $3, notes = $4, updated_at = NOW()
		WHERE id = $5`,
		in.SupplierID, in.ExpectedDate, in.ReceiveLocationID, in.Notes, id,
	); err != nil {
		return nil, fmt.Errorf("update purchase order %d: %w", id, err)
	}

	if _, err := tx.Exec(ctx, "DELETE FROM purchase_order_items WHERE purchase_order_id = $1", id); err != nil {
		return nil, fmt.Errorf("clear purchase order %d lines: %w", id, err)
	}
	if err := insertPurchaseLines(ctx, tx, id, resolved); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit purchase order update: %w", err)
	}

	return s.Get(ctx, id)
}

// Submit transitions a draft order to pending. Submitting an already-pending
// order is a no-op.
func (s *purchaseOrderService) Submit(ctx context.Context, id int) (*PurchaseOrder, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var status string
	if err := tx.QueryRow(ctx,
		"SELECT status FROM purchase_orders WHERE id = $1 FOR UPDATE", id,
	).Scan(&status); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, NewDomainError(ErrCodeNotFound, "purchase order %d not found", id)
		}
		return nil, fmt.Errorf("fetch purchase order %d: %w", id, err)
	}

	switch status {
	case StatusPending:
		return s.Get(ctx, id)
	case StatusDraft:
	default:
		return nil, NewDomainError(ErrCodeInvalidTransition,
			"purchase order %d cannot be submitted: status is %s (must be draft)", id, status)
	}

	if _, err := tx.Exec(ctx,
		"UPDATE purchase_orders SET status = 'pending', updated_at = NOW() WHERE id = $1", id,
	); err != nil {
		return nil, fmt.Errorf("submit purchase order %d: %w", id, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit purchase order submit: %w", err)
	}

	return s.Get(ctx, id)
}

// Receive books the order into stock. Every line quantity is credited at the
// receive location and the status flips to received, all in one transaction:
// a failure on any line leaves both the order and the stock untouched.
func (s *purchaseOrderService) Receive(ctx context.Context, id int) (*PurchaseOrder, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var status string
	var receiveLocationID *int
	if err := tx.QueryRow(ctx,
		"SELECT status, receive_location_id FROM purchase_orders WHERE id = $1 FOR UPDATE", id,
	).Scan(&status, &receiveLocationID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, NewDomainError(ErrCodeNotFound, "purchase order %d not found", id)
		}
		return nil, fmt.Errorf("fetch purchase order %d: %w", id, err)
	}

	if status == StatusReceived || status == StatusCancelled {
		return nil, NewDomainError(ErrCodeInvalidTransition,
			"purchase order %d cannot be received: status is %s", id, status)
	}
	if receiveLocationID == nil {
		return nil, NewDomainError(ErrCodeMissingLocation,
			"purchase order %d has no receive location set", id)
	}

	lines, err := fetchPurchaseLinesQ(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	for _, l := range lines {
		if _, err := s.inv.AdjustStockTx(ctx, tx, l.ProductID, *receiveLocationID, l.Quantity); err != nil {
			return nil, fmt.Errorf("receive line for product %s: %w", l.SKU, err)
		}
	}

	// Only the status and timestamp persist on the order itself.
	if _, err := tx.Exec(ctx,
		"UPDATE purchase_orders SET status = 'received', updated_at = NOW() WHERE id = $1", id,
	); err != nil {
		return nil, fmt.Errorf("update purchase order %d to received: %w", id, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit purchase order receipt: %w", err)
	}

	return s.Get(ctx, id)
}

// Cancel transitions a draft or pending order to cancelled.
func (s *purchaseOrderService) Cancel(ctx context.Context, id int) (*PurchaseOrder, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var status string
	if err := tx.QueryRow(ctx,
		"SELECT status FROM purchase_orders WHERE id = $1 FOR UPDATE", id,
	).Scan(&status); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, NewDomainError(ErrCodeNotFound, "purchase order %d not found", id)
		}
		return nil, fmt.Errorf("fetch purchase order %d: %w", id, err)
	}
	if !editableStatus(status) {
		return nil, NewDomainError(ErrCodeInvalidTransition,
			"purchase order %d cannot be cancelled: status is %s", id, status)
	}

	if _, err := tx.Exec(ctx,
		"UPDATE purchase_orders SET status = 'cancelled', updated_at = NOW() WHERE id = $1", id,
	); err != nil {
		return nil, fmt.Errorf("cancel purchase order %d: %w", id, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit purchase order cancel: %w", err)
	}

	return s.Get(ctx, id)
}

// Get returns a purchase order by its ID, including all lines.
func (s *purchaseOrderService) Get(ctx context.Context, id int) (*PurchaseOrder, error) {
	po := &PurchaseOrder{}
	if err := s.pool.QueryRow(ctx, `
		SELECT po.id, po.reference, po.supplier_id, sup.name,
		       po.status, po.expected_date::text, po.receive_location_id, l.code,
		       po.notes, po.created_at, po.updated_at,
		       COALESCE((SELECT SUM(poi.quantity * poi.unit_cost)
		                 FROM purchase_order_items poi
		                 WHERE poi.purchase_order_id = po.id), 0)
		FROM purchase_orders po
		JOIN suppliers sup ON sup.id = po.supplier_id
		LEFT JOIN locations l ON l.id = po.receive_location_id
		WHERE po.id = $1`,
		id,
	).Scan(
		&po.ID, &po.Reference, &po.SupplierID, &po.SupplierName,
		&po.Status, &po.ExpectedDate, &po.ReceiveLocationID, &po.ReceiveLocation,
		&po.Notes, &po.CreatedAt, &po.UpdatedAt, &po.Total,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, NewDomainError(ErrCodeNotFound, "purchase order %d not found", id)
		}
		return nil, fmt.Errorf("get purchase order %d: %w", id, err)
	}

	lines, err := fetchPurchaseLinesQ(ctx, s.pool, id)
	if err != nil {
		return nil, err
	}
	po.Lines = lines
	return po, nil
}

// List returns purchase order headers, optionally filtered by status.
func (s *purchaseOrderService) List(ctx context.Context, status string) ([]PurchaseOrder, error) {
	query := `
		SELECT po.id, po.reference, po.supplier_id, sup.name,
		       po.status, po.expected_date::text, po.receive_location_id, l.code,
		       po.notes, po.created_at, po.updated_at,
		       COALESCE((SELECT SUM(poi.quantity * poi.unit_cost)
		                 FROM purchase_order_items poi
		                 WHERE poi.purchase_order_id = po.id), 0)
		FROM purchase_orders po
		JOIN suppliers sup ON sup.id = po.supplier_id
		LEFT JOIN locations l ON l.id = po.receive_location_id`
	var args []any
	if status != "" {
		args = append(args, status)
		query += " WHERE po.status = $1"
	}
	query += " ORDER BY po.created_at DESC"

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list purchase orders: %w", err)
	}
	defer rows.Close()

	var orders []PurchaseOrder
	for rows.Next() {
		var po PurchaseOrder
		if err := rows.Scan(
			&po.ID, &po.Reference, &po.SupplierID, &po.SupplierName,
			&po.Status, &po.ExpectedDate, &po.ReceiveLocationID, &po.ReceiveLocation,
			&po.Notes, &po.CreatedAt, &po.UpdatedAt, &po.Total,
		); err != nil {
			return nil, fmt.Errorf("scan purchase order: %w", err)
		}
		orders = append(orders, po)
	}
	return orders, rows.Err()
}

// ── line helpers ──────────────────────────────────────────────────────────────

type resolvedPurchaseLine struct {
	productID int
	quantity  int64
	unitCost  decimal.Decimal
}

// resolvePurchaseLines validates line inputs and fills unit costs from the
// product catalog where the caller left them nil.
func resolvePurchaseLines(ctx context.Context, tx pgx.Tx, lines []PurchaseLineInput) ([]resolvedPurchaseLine, error) {
	resolved := make([]resolvedPurchaseLine, 0, len(lines))
	for i, in := range lines {
		if in.Quantity <= 0 {
			return nil, NewDomainError(ErrCodeValidation,
				"line %d: quantity must be positive, got %d", i+1, in.Quantity)
		}

		var productCost decimal.Decimal
		if err := tx.QueryRow(ctx,
			"SELECT unit_cost FROM products WHERE id = $1", in.ProductID,
		).Scan(&productCost); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, NewDomainError(ErrCodeNotFound, "line %d: product %d not found", i+1, in.ProductID)
			}
			return nil, fmt.Errorf("line %d: resolve product: %w", i+1, err)
		}

		unitCost := productCost
		if in.UnitCost != nil {
			unitCost = *in.UnitCost
		}
		if unitCost.IsNegative() {
			return nil, NewDomainError(ErrCodeValidation,
				"line %d: unit cost cannot be negative, got %s", i+1, unitCost)
		}

		resolved = append(resolved, resolvedPurchaseLine{
			productID: in.ProductID,
			quantity:  in.Quantity,
			unitCost:  unitCost,
		})
	}
	return resolved, nil
}

func insertPurchaseLines(ctx context.Context, tx pgx.Tx, poID int, lines []resolvedPurchaseLine) error {
	for i, l := range lines {
		if _, err := tx.Exec(ctx, `
			INSERT INTO purchase_order_items (purchase_order_id, product_id, quantity, unit_cost)
			VALUES ($1, $2, $3, $4)`,
			poID, l.productID, l.quantity, l.unitCost,
		); err != nil {
			return fmt.Errorf("insert PO line %d: %w", i+1, err)
		}
	}
	return nil
}

// fetchPurchaseLinesQ works against both the pool and a transaction so
// Receive can read lines under its own row locks.
func fetchPurchaseLinesQ(ctx context.Context, q pgxQuerier, poID int) ([]PurchaseOrderLine, error) {
	rows, err := q.Query(ctx, `
		SELECT poi.id, poi.purchase_order_id, poi.product_id, p.sku, p.name,
		       poi.quantity, poi.unit_cost
		FROM purchase_order_items poi
		JOIN products p ON p.id = poi.product_id
		WHERE poi.purchase_order_id = $1
		ORDER BY poi.id`,
		poID,
	)
	if err != nil {
		return nil, fmt.Errorf("fetch PO lines for order %d: %w", poID, err)
	}
	defer rows.Close()

	var lines []PurchaseOrderLine
	for rows.Next() {
		var l PurchaseOrderLine
		if err := rows.Scan(
			&l.ID, &l.OrderID, &l.ProductID, &l.SKU, &l.ProductName,
			&l.Quantity, &l.UnitCost,
		); err != nil {
			return nil, fmt.Errorf("scan PO line: %w", err)
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}
