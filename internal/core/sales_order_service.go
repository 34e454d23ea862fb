package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type salesOrderService struct {
	pool *pgxpool.Pool
	inv  InventoryService
}

// NewSalesOrderService constructs a SalesOrderService backed by PostgreSQL.
func NewSalesOrderService(pool *pgxpool.Pool, inv InventoryService) SalesOrderService {
	return &salesOrderService{pool: pool, inv: inv}
}

// Create creates a new draft sales order and assigns its reference number.
func (s *salesOrderService) Create(ctx context.Context, in SalesOrderInput) (*SalesOrder, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	resolved, err := resolveSalesLines(ctx, tx, in.Lines)
	if err != nil {
		return nil, err
	}

	reference, err := nextReference(ctx, tx, "SO")
	if err != nil {
		return nil, err
	}

	var soID int
	if err := tx.QueryRow(ctx, `
		INSERT INTO sales_orders (reference, customer_name, status, ship_from_id, notes)
		VALUES ($1, $2, 'draft', $3, $4)
		RETURNING id`,
		reference, in.CustomerName, in.ShipFromID, in.Notes,
	).Scan(&soID); err != nil {
		return nil, fmt.Errorf("insert sales order: %w", err)
	}

	if err := insertSalesLines(ctx, tx, soID, resolved); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit sales order: %w", err)
	}

	return s.Get(ctx, soID)
}

// Update replaces header fields and lines of a draft or pending order.
func (s *salesOrderService) Update(ctx context.Context, id int, in SalesOrderInput) (*SalesOrder, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var status string
	if err := tx.QueryRow(ctx,
		"SELECT status FROM sales_orders WHERE id = $1 FOR UPDATE", id,
	).Scan(&status); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, NewDomainError(ErrCodeNotFound, "sales order %d not found", id)
		}
		return nil, fmt.Errorf("fetch sales order %d: %w", id, err)
	}
	if !editableStatus(status) {
		return nil, NewDomainError(ErrCodeInvalidTransition,
			"sales order %d cannot be edited: status is %s", id, status)
	}

	resolved, err := resolveSalesLines(ctx, tx, in.Lines)
	if err != nil {
		return nil, err
	}

	if _, err := tx.Exec(ctx, `
		UPDATE sales_orders
		SET customer_name = $1, ship_from_id = $2, notes = $3, updated_at = NOW()
		WHERE id = $4`,
		in.CustomerName, in.ShipFromID, in.Notes, id,
	); err != nil {
		return nil, fmt.Errorf("update sales order %d: %w", id, err)
	}

	if _, err := tx.Exec(ctx, "DELETE FROM sales_order_items WHERE sales_order_id = $1", id); err != nil {
		return nil, fmt.Errorf("clear sales order %d lines: %w", id, err)
	}
	if err := insertSalesLines(ctx, tx, id, resolved); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit sales order update: %w", err)
	}

	return s.Get(ctx, id)
}

// Submit transitions a draft order to pending. Submitting an already-pending
// order is a no-op.
func (s *salesOrderService) Submit(ctx context.Context, id int) (*SalesOrder, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var status string
	if err := tx.QueryRow(ctx,
		"SELECT status FROM sales_orders WHERE id = $1 FOR UPDATE", id,
	).Scan(&status); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, NewDomainError(ErrCodeNotFound, "sales order %d not found", id)
		}
		return nil, fmt.Errorf("fetch sales order %d: %w", id, err)
	}

	switch status {
	case StatusPending:
		return s.Get(ctx, id)
	case StatusDraft:
	default:
		return nil, NewDomainError(ErrCodeInvalidTransition,
			"sales order %d cannot be submitted: status is %s (must be draft)", id, status)
	}

	if _, err := tx.Exec(ctx,
		"UPDATE sales_orders SET status = 'pending', updated_at = NOW() WHERE id = $1", id,
	); err != nil {
		return nil, fmt.Errorf("submit sales order %d: %w", id, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit sales order submit: %w", err)
	}

	return s.Get(ctx, id)
}

// Complete fulfills the order: every line quantity is deducted from stock at
// the ship-from location via a conditional decrement, then the status flips
// to completed. Everything runs in one transaction, so an insufficient line
// rolls back all earlier deductions and the order stays untouched.
func (s *salesOrderService) Complete(ctx context.Context, id int) (*SalesOrder, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var status string
	var shipFromID *int
	if err := tx.QueryRow(ctx,
		"SELECT status, ship_from_id FROM sales_orders WHERE id = $1 FOR UPDATE", id,
	).Scan(&status, &shipFromID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, NewDomainError(ErrCodeNotFound, "sales order %d not found", id)
		}
		return nil, fmt.Errorf("fetch sales order %d: %w", id, err)
	}

	if status == StatusCompleted || status == StatusCancelled {
		return nil, NewDomainError(ErrCodeInvalidTransition,
			"sales order %d cannot be completed: status is %s", id, status)
	}
	if shipFromID == nil {
		return nil, NewDomainError(ErrCodeMissingLocation,
			"sales order %d has no ship-from location set", id)
	}

	lines, err := fetchSalesLinesQ(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	for _, l := range lines {
		if err := s.inv.DeductStockTx(ctx, tx, l.ProductID, *shipFromID, l.Quantity); err != nil {
			return nil, err
		}
	}

	// Only the status and timestamp persist on the order itself.
	if _, err := tx.Exec(ctx,
		"UPDATE sales_orders SET status = 'completed', updated_at = NOW() WHERE id = $1", id,
	); err != nil {
		return nil, fmt.Errorf("update sales order %d to completed: %w", id, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit sales order completion: %w", err)
	}

	return s.Get(ctx, id)
}

// Cancel transitions a draft or pending order to cancelled.
func (s *salesOrderService) Cancel(ctx context.Context, id int) (*SalesOrder, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var status string
	if err := tx.QueryRow(ctx,
		"SELECT status FROM sales_orders WHERE id = $1 FOR UPDATE", id,
	).Scan(&status); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, NewDomainError(ErrCodeNotFound, "sales order %d not found", id)
		}
		return nil, fmt.Errorf("fetch sales order %d: %w", id, err)
	}
	if !editableStatus(status) {
		return nil, NewDomainError(ErrCodeInvalidTransition,
			"sales order %d cannot be cancelled: status is %s", id, status)
	}

	if _, err := tx.Exec(ctx,
		"UPDATE sales_orders SET status = 'cancelled', updated_at = NOW() WHERE id = $1", id,
	); err != nil {
		return nil, fmt.Errorf("cancel sales order %d: %w", id, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit sales order cancel: %w", err)
	}

	return s.Get(ctx, id)
}

// Get returns a sales order by its ID, including all lines.
func (s *salesOrderService) Get(ctx context.Context, id int) (*SalesOrder, error) {
	so := &SalesOrder{}
	if err := s.pool.QueryRow(ctx, `
		SELECT so.id, so.reference, so.customer_name, so.status,
		       so.ship_from_id, l.code, so.notes, so.created_at, so.updated_at,
		       COALESCE((SELECT SUM(soi.quantity * soi.unit_price)
		                 FROM sales_order_items soi
		                 WHERE soi.sales_order_id = so.id), 0)
		FROM sales_orders so
		LEFT JOIN locations l ON l.id = so.ship_from_id
		WHERE so.id = $1`,
		id,
	).Scan(
		&so.ID, &so.Reference, &so.CustomerName, &so.Status,
		&so.ShipFromID, &so.ShipFromCode, &so.Notes, &so.CreatedAt, &so.UpdatedAt, &so.Total,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, NewDomainError(ErrCodeNotFound, "sales order %d not found", id)
		}
		return nil, fmt.Errorf("get sales order %d: %w", id, err)
	}

	lines, err := fetchSalesLinesQ(ctx, s.pool, id)
	if err != nil {
		return nil, err
	}
	so.Lines = lines
	return so, nil
}

// List returns sales order headers, optionally filtered by status.
func (s *salesOrderService) List(ctx context.Context, status string) ([]SalesOrder, error) {
	query := `
		SELECT so.id, so.reference, so.customer_name, so.status,
		       so.ship_from_id, l.code, so.notes, so.created_at, so.updated_at,
		       COALESCE((SELECT SUM(soi.quantity * soi.unit_price)
		                 FROM sales_order_items soi
		                 WHERE soi.sales_order_id = so.id), 0)
		FROM sales_orders so
		LEFT JOIN locations l ON l.id = so.ship_from_id`
	var args []any
	if status != "" {
		args = append(args, status)
		query += " WHERE so.status = $1"
	}
	query += " ORDER BY so.created_at DESC"

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list sales orders: %w", err)
	}
	defer rows.Close()

	var orders []SalesOrder
	for rows.Next() {
		var so SalesOrder
		if err := rows.Scan(
			&so.ID, &so.Reference, &so.CustomerName, &so.Status,
			&so.ShipFromID, &so.ShipFromCode, &so.Notes, &so.CreatedAt, &so.UpdatedAt, &so.Total,
		); err != nil {
			return nil, fmt.Errorf("scan sales order: %w", err)
		}
		orders = append(orders, so)
	}
	return orders, rows.Err()
}

// ── line helpers ──────────────────────────────────────────────────────────────

type resolvedSalesLine struct {
	productID int
	quantity  int64
	unitPrice decimal.Decimal
	unitCost  decimal.Decimal
}

// resolveSalesLines validates line inputs, fills unit prices from the catalog
// where the caller left them nil, and snapshots the product's current unit
// cost onto the line for order-time cost reporting.
func resolveSalesLines(ctx context.Context, tx pgx.Tx, lines []SalesLineInput) ([]resolvedSalesLine, error) {
	resolved := make([]resolvedSalesLine, 0, len(lines))
	for i, in := range lines {
		if in.Quantity <= 0 {
			return nil, NewDomainError(ErrCodeValidation,
				"line %d: quantity must be positive, got %d", i+1, in.Quantity)
		}

		var productPrice, productCost decimal.Decimal
		if err := tx.QueryRow(ctx,
			"SELECT unit_price, unit_cost FROM products WHERE id = $1", in.ProductID,
		).Scan(&productPrice, &productCost); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, NewDomainError(ErrCodeNotFound, "line %d: product %d not found", i+1, in.ProductID)
			}
			return nil, fmt.Errorf("line %d: resolve product: %w", i+1, err)
		}

		unitPrice := productPrice
		if in.UnitPrice != nil {
			unitPrice = *in.UnitPrice
		}
		if unitPrice.IsNegative() {
			return nil, NewDomainError(ErrCodeValidation,
				"line %d: unit price cannot be negative, got %s", i+1, unitPrice)
		}

		resolved = append(resolved, resolvedSalesLine{
			productID: in.ProductID,
			quantity:  in.Quantity,
			unitPrice: unitPrice,
			unitCost:  productCost,
		})
	}
	return resolved, nil
}

func insertSalesLines(ctx context.Context, tx pgx.Tx, soID int, lines []resolvedSalesLine) error {
	for i, l := range lines {
		if _, err := tx.Exec(ctx, `
			INSERT INTO sales_order_items (sales_order_id, product_id, quantity, unit_price, unit_cost)
			VALUES ($1, $2, $3, $4, $5)`,
			soID, l.productID, l.quantity, l.unitPrice, l.unitCost,
		); err != nil {
			return fmt.Errorf("insert SO line %d: %w", i+1, err)
		}
	}
	return nil
}

// fetchSalesLinesQ works against both the pool and a transaction so Complete
// can read lines under its own row locks.
func fetchSalesLinesQ(ctx context.Context, q pgxQuerier, soID int) ([]SalesOrderLine, error) {
	rows, err := q.Query(ctx, `
		SELECT soi.id, soi.sales_order_id, soi.product_id, p.sku, p.name,
		       soi.quantity, soi.unit_price, soi.unit_cost
		FROM sales_order_items soi
		JOIN products p ON p.id = soi.product_id
		WHERE soi.sales_order_id = $1
		ORDER BY soi.id`,
		soID,
	)
	if err != nil {
		return nil, fmt.Errorf("fetch SO lines for order %d: %w", soID, err)
	}
	defer rows.Close()

	var lines []SalesOrderLine
	for rows.Next() {
		var l SalesOrderLine
		if err := rows.Scan(
			&l.ID, &l.OrderID, &l.ProductID, &l.SKU, &l.ProductName,
			&l.Quantity, &l.UnitPrice, &l.UnitCost,
		); err != nil {
			return nil, fmt.Errorf("scan SO line: %w", err)
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}
