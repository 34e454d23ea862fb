package core_test

import (
	"context"
	"testing"

	"stockroom/internal/core"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

func setupReportingTest(t *testing.T) (*pgxpool.Pool, core.ReportingService, core.SalesOrderService, core.InventoryService, context.Context) {
	t.Helper()
	pool := setupTestDB(t)
	inv := core.NewInventoryService(pool)
	sales := core.NewSalesOrderService(pool, inv)
	reporting := core.NewReportingService(pool)
	return pool, reporting, sales, inv, context.Background()
}

// completeOrder creates and immediately completes a sales order from MAIN.
func completeOrder(t *testing.T, ctx context.Context, sales core.SalesOrderService, lines []core.SalesLineInput) *core.SalesOrder {
	t.Helper()
	so, err := sales.Create(ctx, core.SalesOrderInput{
		CustomerName: "Report Customer",
		ShipFromID:   intPtr(locationMain),
		Lines:        lines,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	so, err = sales.Complete(ctx, so.ID)
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	return so
}

// backdate rewrites an order's creation timestamp for date-window tests.
func backdate(t *testing.T, ctx context.Context, pool *pgxpool.Pool, orderID int, day string) {
	t.Helper()
	_, err := pool.Exec(ctx,
		"UPDATE sales_orders SET created_at = $1::date + interval '12 hours' WHERE id = $2", day, orderID)
	if err != nil {
		t.Fatalf("Failed to backdate order %d: %v", orderID, err)
	}
}

func mustEqual(t *testing.T, name string, got decimal.Decimal, want string) {
	t.Helper()
	if !got.Equal(decimal.RequireFromString(want)) {
		t.Errorf("Expected %s=%s, got %s", name, want, got)
	}
}

// ── Tests ─────────────────────────────────────────────────────────────────────

func TestReport_EmptyUniverseYieldsZeroTotals(t *testing.T) {
	pool, reporting, _, _, ctx := setupReportingTest(t)
	defer pool.Close()

	report, err := reporting.SalesReport(ctx, core.SalesReportParams{})
	if err != nil {
		t.Fatalf("SalesReport failed: %v", err)
	}
	if !report.Totals.Revenue.IsZero() || !report.Totals.Cost.IsZero() || !report.Totals.Profit.IsZero() {
		t.Errorf("Expected zero totals, got %+v", report.Totals)
	}
	if report.Rows != nil {
		t.Errorf("Expected no rows for ungrouped report, got %d", len(report.Rows))
	}
}

func TestReport_OnlyCompletedOrdersCount(t *testing.T) {
	pool, reporting, sales, inv, ctx := setupReportingTest(t)
	defer pool.Close()

	mustAdjust(t, ctx, inv, productWidgetSmall, locationMain, 100)

	// Completed: 10 * 5.99 revenue, 10 * 2.50 cost.
	completeOrder(t, ctx, sales, []core.SalesLineInput{{ProductID: productWidgetSmall, Quantity: 10}})

	// Draft and cancelled orders must not contribute.
	if _, err := sales.Create(ctx, core.SalesOrderInput{
		CustomerName: "Draft Customer",
		ShipFromID:   intPtr(locationMain),
		Lines:        []core.SalesLineInput{{ProductID: productWidgetSmall, Quantity: 99}},
	}); err != nil {
		t.Fatalf("Create draft failed: %v", err)
	}
	cancelled, err := sales.Create(ctx, core.SalesOrderInput{
		CustomerName: "Cancelled Customer",
		ShipFromID:   intPtr(locationMain),
		Lines:        []core.SalesLineInput{{ProductID: productWidgetSmall, Quantity: 50}},
	})
	if err != nil {
		t.Fatalf("Create cancelled failed: %v", err)
	}
	if _, err := sales.Cancel(ctx, cancelled.ID); err != nil {
		t.Fatalf("Cancel failed: %v", err)
	}

	report, err := reporting.SalesReport(ctx, core.SalesReportParams{})
	if err != nil {
		t.Fatalf("SalesReport failed: %v", err)
	}
	mustEqual(t, "revenue", report.Totals.Revenue, "59.90")
	mustEqual(t, "cost", report.Totals.Cost, "25.00")
	mustEqual(t, "profit", report.Totals.Profit, "34.90")
}

func TestReport_GroupByProduct(t *testing.T) {
	pool, reporting, sales, inv, ctx := setupReportingTest(t)
	defer pool.Close()

	mustAdjust(t, ctx, inv, productWidgetSmall, locationMain, 100)
	mustAdjust(t, ctx, inv, productGadget, locationMain, 10)

	completeOrder(t, ctx, sales, []core.SalesLineInput{
		{ProductID: productWidgetSmall, Quantity: 4},
		{ProductID: productGadget, Quantity: 2},
	})
	completeOrder(t, ctx, sales, []core.SalesLineInput{
		{ProductID: productWidgetSmall, Quantity: 6},
	})

	report, err := reporting.SalesReport(ctx, core.SalesReportParams{GroupBy: core.GroupByProduct})
	if err != nil {
		t.Fatalf("SalesReport failed: %v", err)
	}
	if len(report.Rows) != 2 {
		t.Fatalf("Expected 2 product rows, got %d", len(report.Rows))
	}

	// Rows are ordered by SKU: GAD-010 before WID-001.
	gadget, widget := report.Rows[0], report.Rows[1]
	if gadget.SKU == nil || *gadget.SKU != "GAD-010" {
		t.Fatalf("Expected first row GAD-010, got %v", gadget.SKU)
	}
	mustEqual(t, "gadget revenue", gadget.Revenue, "49.98") // 2 * 24.99
	if widget.SKU == nil || *widget.SKU != "WID-001" {
		t.Fatalf("Expected second row WID-001, got %v", widget.SKU)
	}
	mustEqual(t, "widget revenue", widget.Revenue, "59.90") // 10 * 5.99 across both orders
	mustEqual(t, "widget cost", widget.Cost, "25.00")

	// Grand totals equal the sum of the rows.
	mustEqual(t, "total revenue", report.Totals.Revenue, "109.88")
}

func TestReport_GroupBySupplier(t *testing.T) {
	pool, reporting, sales, inv, ctx := setupReportingTest(t)
	defer pool.Close()

	mustAdjust(t, ctx, inv, productWidgetSmall, locationMain, 100)
	mustAdjust(t, ctx, inv, productService, locationMain, 10)
	completeOrder(t, ctx, sales, []core.SalesLineInput{
		{ProductID: productWidgetSmall, Quantity: 5},
		{ProductID: productService, Quantity: 2}, // no supplier
	})

	report, err := reporting.SalesReport(ctx, core.SalesReportParams{GroupBy: core.GroupBySupplier})
	if err != nil {
		t.Fatalf("SalesReport failed: %v", err)
	}
	if len(report.Rows) != 2 {
		t.Fatalf("Expected 2 supplier rows, got %d", len(report.Rows))
	}

	// NULL supplier sorts first.
	noSupplier := report.Rows[0]
	if noSupplier.SupplierID != nil {
		t.Errorf("Expected nil supplier on first row, got %v", *noSupplier.SupplierID)
	}
	mustEqual(t, "no-supplier revenue", noSupplier.Revenue, "30.00") // 2 * 15.00

	acme := report.Rows[1]
	if acme.SupplierName == nil || *acme.SupplierName != "Acme Wholesale" {
		t.Errorf("Expected Acme row, got %v", acme.SupplierName)
	}
	mustEqual(t, "acme revenue", acme.Revenue, "29.95") // 5 * 5.99
}

func TestReport_DateWindowAndDayGrouping(t *testing.T) {
	pool, reporting, sales, inv, ctx := setupReportingTest(t)
	defer pool.Close()

	mustAdjust(t, ctx, inv, productWidgetSmall, locationMain, 100)

	early := completeOrder(t, ctx, sales, []core.SalesLineInput{{ProductID: productWidgetSmall, Quantity: 1}})
	mid := completeOrder(t, ctx, sales, []core.SalesLineInput{{ProductID: productWidgetSmall, Quantity: 2}})
	late := completeOrder(t, ctx, sales, []core.SalesLineInput{{ProductID: productWidgetSmall, Quantity: 4}})

	backdate(t, ctx, pool, early.ID, "2026-03-01")
	backdate(t, ctx, pool, mid.ID, "2026-03-15")
	backdate(t, ctx, pool, late.ID, "2026-04-02")

	// Inclusive window covering only the two March orders.
	report, err := reporting.SalesReport(ctx, core.SalesReportParams{
		FromDate: "2026-03-01",
		ToDate:   "2026-03-31",
		GroupBy:  core.GroupByDay,
	})
	if err != nil {
		t.Fatalf("SalesReport failed: %v", err)
	}
	if len(report.Rows) != 2 {
		t.Fatalf("Expected 2 day rows, got %d", len(report.Rows))
	}
	if *report.Rows[0].Day != "2026-03-01" || *report.Rows[1].Day != "2026-03-15" {
		t.Errorf("Expected chronological day rows, got %v and %v", *report.Rows[0].Day, *report.Rows[1].Day)
	}
	mustEqual(t, "march revenue", report.Totals.Revenue, "17.97") // (1+2) * 5.99
}

func TestReport_GroupByMonth(t *testing.T) {
	pool, reporting, sales, inv, ctx := setupReportingTest(t)
	defer pool.Close()

	mustAdjust(t, ctx, inv, productWidgetSmall, locationMain, 100)

	march := completeOrder(t, ctx, sales, []core.SalesLineInput{{ProductID: productWidgetSmall, Quantity: 3}})
	april := completeOrder(t, ctx, sales, []core.SalesLineInput{{ProductID: productWidgetSmall, Quantity: 5}})
	backdate(t, ctx, pool, march.ID, "2026-03-10")
	backdate(t, ctx, pool, april.ID, "2026-04-20")

	report, err := reporting.SalesReport(ctx, core.SalesReportParams{GroupBy: core.GroupByMonth})
	if err != nil {
		t.Fatalf("SalesReport failed: %v", err)
	}
	if len(report.Rows) != 2 {
		t.Fatalf("Expected 2 month rows, got %d", len(report.Rows))
	}
	if *report.Rows[0].Year != 2026 || *report.Rows[0].Month != 3 {
		t.Errorf("Expected 2026-03 first, got %d-%d", *report.Rows[0].Year, *report.Rows[0].Month)
	}
	mustEqual(t, "march revenue", report.Rows[0].Revenue, "17.97")
	mustEqual(t, "april revenue", report.Rows[1].Revenue, "29.95")
}

func TestReport_SupplierAndProductFilters(t *testing.T) {
	pool, reporting, sales, inv, ctx := setupReportingTest(t)
	defer pool.Close()

	mustAdjust(t, ctx, inv, productWidgetSmall, locationMain, 100)
	mustAdjust(t, ctx, inv, productGadget, locationMain, 10)

	completeOrder(t, ctx, sales, []core.SalesLineInput{
		{ProductID: productWidgetSmall, Quantity: 2},
		{ProductID: productGadget, Quantity: 1},
	})

	bySupplier, err := reporting.SalesReport(ctx, core.SalesReportParams{SupplierID: supplierBrightline})
	if err != nil {
		t.Fatalf("SalesReport failed: %v", err)
	}
	mustEqual(t, "brightline revenue", bySupplier.Totals.Revenue, "24.99")

	byProduct, err := reporting.SalesReport(ctx, core.SalesReportParams{ProductID: productWidgetSmall})
	if err != nil {
		t.Fatalf("SalesReport failed: %v", err)
	}
	mustEqual(t, "widget revenue", byProduct.Totals.Revenue, "11.98")
}

func TestReport_CostBasisDistinguishesSnapshot(t *testing.T) {
	pool, reporting, sales, inv, ctx := setupReportingTest(t)
	defer pool.Close()

	mustAdjust(t, ctx, inv, productWidgetSmall, locationMain, 100)
	completeOrder(t, ctx, sales, []core.SalesLineInput{{ProductID: productWidgetSmall, Quantity: 10}})

	// Raise the catalog cost after the sale. Current-basis cost follows the
	// new value; order-time basis keeps the snapshot taken at creation.
	if _, err := pool.Exec(ctx, "UPDATE products SET unit_cost = 4.00 WHERE id = $1", productWidgetSmall); err != nil {
		t.Fatalf("Failed to update product cost: %v", err)
	}

	current, err := reporting.SalesReport(ctx, core.SalesReportParams{CostBasis: core.CostBasisCurrent})
	if err != nil {
		t.Fatalf("SalesReport (current) failed: %v", err)
	}
	mustEqual(t, "current cost", current.Totals.Cost, "40.00")

	snapshot, err := reporting.SalesReport(ctx, core.SalesReportParams{CostBasis: core.CostBasisOrderTime})
	if err != nil {
		t.Fatalf("SalesReport (order_time) failed: %v", err)
	}
	mustEqual(t, "snapshot cost", snapshot.Totals.Cost, "25.00")
	mustEqual(t, "snapshot profit", snapshot.Totals.Profit, "34.90")
}

func TestReport_InvalidDateRejected(t *testing.T) {
	pool, reporting, _, _, ctx := setupReportingTest(t)
	defer pool.Close()

	_, err := reporting.SalesReport(ctx, core.SalesReportParams{FromDate: "03/01/2026"})
	if err == nil {
		t.Fatal("Expected invalid date to be rejected")
	}
	derr, ok := core.AsDomainError(err)
	if !ok || derr.Code != core.ErrCodeValidation {
		t.Errorf("Expected validation error, got %v", err)
	}
}
