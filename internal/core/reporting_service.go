package core

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// ── Report types ──────────────────────────────────────────────────────────────

// ReportGroupBy selects the grouping dimension for the sales report.
// It is a closed set: adding a dimension means adding a constant here and a
// case in each switch, which the compiler then checks.
type ReportGroupBy int

const (
	GroupNone ReportGroupBy = iota
	GroupByProduct
	GroupBySupplier
	GroupByDay
	GroupByMonth
)

func (g ReportGroupBy) String() string {
	switch g {
	case GroupByProduct:
		return "product"
	case GroupBySupplier:
		return "supplier"
	case GroupByDay:
		return "day"
	case GroupByMonth:
		return "month"
	default:
		return "none"
	}
}

// ParseGroupBy maps an API-level group_by string onto the closed set.
// Empty string means no grouping; anything unknown is a validation error.
func ParseGroupBy(s string) (ReportGroupBy, error) {
	switch s {
	case "", "none":
		return GroupNone, nil
	case "product":
		return GroupByProduct, nil
	case "supplier":
		return GroupBySupplier, nil
	case "day":
		return GroupByDay, nil
	case "month":
		return GroupByMonth, nil
	default:
		return GroupNone, NewDomainError(ErrCodeValidation, "unknown group_by value %q", s)
	}
}

// CostBasis selects which unit cost the report's cost and profit are built on.
type CostBasis int

const (
	// CostBasisCurrent values cost at the product's present unit_cost, so
	// past orders are re-valued whenever the catalog cost changes.
	CostBasisCurrent CostBasis = iota
	// CostBasisOrderTime values cost at the snapshot captured on the order
	// line when it was written.
	CostBasisOrderTime
)

func (c CostBasis) String() string {
	if c == CostBasisOrderTime {
		return "order_time"
	}
	return "current"
}

// ParseCostBasis maps an API-level cost_basis string onto the enum.
// Empty string means the default, current cost.
func ParseCostBasis(s string) (CostBasis, error) {
	switch s {
	case "", "current":
		return CostBasisCurrent, nil
	case "order_time":
		return CostBasisOrderTime, nil
	default:
		return CostBasisCurrent, NewDomainError(ErrCodeValidation, "unknown cost_basis value %q", s)
	}
}

// SalesReportParams are the filters and options for one report run.
// Dates bound the order creation date and are inclusive; zero IDs mean no
// filter on that dimension.
type SalesReportParams struct {
	FromDate   string // YYYY-MM-DD, empty = unbounded
	ToDate     string // YYYY-MM-DD, empty = unbounded
	ProductID  int
	SupplierID int
	GroupBy    ReportGroupBy
	CostBasis  CostBasis
}

// SalesTotals are the three report measures. Profit is always
// Revenue − Cost, never aggregated independently.
type SalesTotals struct {
	Revenue decimal.Decimal `json:"revenue"`
	Cost    decimal.Decimal `json:"cost"`
	Profit  decimal.Decimal `json:"profit"`
}

// SalesReportRow is one group's totals. Only the key fields for the active
// grouping are set; the rest stay nil. A supplier grouping emits one row
// with a nil SupplierID for products that have no supplier.
type SalesReportRow struct {
	ProductID    *int    `json:"product_id,omitempty"`
	SKU          *string `json:"sku,omitempty"`
	ProductName  *string `json:"product_name,omitempty"`
	SupplierID   *int    `json:"supplier_id,omitempty"`
	SupplierName *string `json:"supplier_name,omitempty"`
	Day          *string `json:"day,omitempty"` // YYYY-MM-DD
	Year         *int    `json:"year,omitempty"`
	Month        *int    `json:"month,omitempty"`
	SalesTotals
}

// Label renders the row's group key for display.
func (r SalesReportRow) Label() string {
	switch {
	case r.SKU != nil:
		return fmt.Sprintf("%s · %s", *r.SKU, deref(r.ProductName))
	case r.Day != nil:
		return *r.Day
	case r.Year != nil && r.Month != nil:
		return fmt.Sprintf("%d-%02d", *r.Year, *r.Month)
	case r.SupplierName != nil:
		return *r.SupplierName
	}
	return "(no supplier)"
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// SalesReport is the report result. Totals always covers the whole filtered
// universe; Rows is nil when GroupBy is none.
type SalesReport struct {
	GroupBy   string           `json:"group_by"`
	CostBasis string           `json:"cost_basis"`
	Totals    SalesTotals      `json:"totals"`
	Rows      []SalesReportRow `json:"rows,omitempty"`
}

// ── Interface ─────────────────────────────────────────────────────────────────

// ReportingService provides read-only sales aggregation queries.
type ReportingService interface {
	// SalesReport aggregates revenue, cost, and profit over the line items of
	// completed sales orders. An empty universe yields zero totals, not an
	// error.
	SalesReport(ctx context.Context, params SalesReportParams) (*SalesReport, error)
}

// ── Implementation ────────────────────────────────────────────────────────────

type reportingService struct {
	pool *pgxpool.Pool
}

// NewReportingService constructs a ReportingService backed by the given pool.
func NewReportingService(pool *pgxpool.Pool) ReportingService {
	return &reportingService{pool: pool}
}

func (s *reportingService) SalesReport(ctx context.Context, params SalesReportParams) (*SalesReport, error) {
	if err := validateReportDate(params.FromDate); err != nil {
		return nil, err
	}
	if err := validateReportDate(params.ToDate); err != nil {
		return nil, err
	}

	// Revenue is always the price written on the line. Cost depends on the
	// chosen basis: the product's live cost or the line's snapshot.
	revenueExpr := "soi.quantity * soi.unit_price"
	costExpr := "soi.quantity * p.unit_cost"
	if params.CostBasis == CostBasisOrderTime {
		costExpr = "soi.quantity * soi.unit_cost"
	}

	from := `
		FROM sales_order_items soi
		JOIN sales_orders so  ON so.id = soi.sales_order_id
		JOIN products p       ON p.id = soi.product_id
		LEFT JOIN suppliers sup ON sup.id = p.supplier_id
		WHERE so.status = 'completed'`

	var args []any
	if params.FromDate != "" {
		args = append(args, params.FromDate)
		from += fmt.Sprintf(" AND so.created_at::date >= $%d::date", len(args))
	}
	if params.ToDate != "" {
		args = append(args, params.ToDate)
		from += fmt.Sprintf(" AND so.created_at::date <= $%d::date", len(args))
	}
	if params.ProductID != 0 {
		args = append(args, params.ProductID)
		from += fmt.Sprintf(" AND soi.product_id = $%d", len(args))
	}
	if params.SupplierID != 0 {
		args = append(args, params.SupplierID)
		from += fmt.Sprintf(" AND p.supplier_id = $%d", len(args))
	}

	report := &SalesReport{
		GroupBy:   params.GroupBy.String(),
		CostBasis: params.CostBasis.String(),
	}

	if params.GroupBy == GroupNone {
		q := fmt.Sprintf("SELECT COALESCE(SUM(%s), 0), COALESCE(SUM(%s), 0) %s", revenueExpr, costExpr, from)
		var revenue, cost decimal.Decimal
		if err := s.pool.QueryRow(ctx, q, args...).Scan(&revenue, &cost); err != nil {
			return nil, fmt.Errorf("query sales totals: %w", err)
		}
		report.Totals = SalesTotals{Revenue: revenue, Cost: cost, Profit: revenue.Sub(cost)}
		return report, nil
	}

	var q string
	switch params.GroupBy {
	case GroupByProduct:
		q = fmt.Sprintf(`SELECT p.id, p.sku, p.name, SUM(%s), SUM(%s) %s
			GROUP BY p.id, p.sku, p.name
			ORDER BY p.sku`, revenueExpr, costExpr, from)
	case GroupBySupplier:
		q = fmt.Sprintf(`SELECT sup.id, sup.name, SUM(%s), SUM(%s) %s
			GROUP BY sup.id, sup.name
			ORDER BY sup.name NULLS FIRST`, revenueExpr, costExpr, from)
	case GroupByDay:
		q = fmt.Sprintf(`SELECT so.created_at::date::text, SUM(%s), SUM(%s) %s
			GROUP BY so.created_at::date
			ORDER BY so.created_at::date`, revenueExpr, costExpr, from)
	case GroupByMonth:
		q = fmt.Sprintf(`SELECT EXTRACT(YEAR FROM so.created_at)::int, EXTRACT(MONTH FROM so.created_at)::int,
			SUM(%s), SUM(%s) %s
			GROUP BY 1, 2
			ORDER BY 1, 2`, revenueExpr, costExpr, from)
	}

	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query sales report: %w", err)
	}
	defer rows.Close()

	var totalRevenue, totalCost decimal.Decimal
	for rows.Next() {
		var row SalesReportRow
		var revenue, cost decimal.Decimal

		switch params.GroupBy {
		case GroupByProduct:
			err = rows.Scan(&row.ProductID, &row.SKU, &row.ProductName, &revenue, &cost)
		case GroupBySupplier:
			err = rows.Scan(&row.SupplierID, &row.SupplierName, &revenue, &cost)
		case GroupByDay:
			err = rows.Scan(&row.Day, &revenue, &cost)
		case GroupByMonth:
			err = rows.Scan(&row.Year, &row.Month, &revenue, &cost)
		}
		if err != nil {
			return nil, fmt.Errorf("scan sales report row: %w", err)
		}

		row.SalesTotals = SalesTotals{Revenue: revenue, Cost: cost, Profit: revenue.Sub(cost)}
		totalRevenue = totalRevenue.Add(revenue)
		totalCost = totalCost.Add(cost)
		report.Rows = append(report.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sales report rows: %w", err)
	}

	report.Totals = SalesTotals{
		Revenue: totalRevenue,
		Cost:    totalCost,
		Profit:  totalRevenue.Sub(totalCost),
	}
	return report, nil
}

func validateReportDate(s string) error {
	if s == "" {
		return nil
	}
	if _, err := time.Parse("2006-01-02", s); err != nil {
		return NewDomainError(ErrCodeValidation, "invalid date %q: expected YYYY-MM-DD", s)
	}
	return nil
}
