package core_test

import (
	"context"
	"strings"
	"sync"
	"testing"

	"stockroom/internal/core"

	"github.com/shopspring/decimal"
)

func setupSalesTest(t *testing.T) (core.SalesOrderService, core.InventoryService, context.Context, func()) {
	t.Helper()
	pool := setupTestDB(t)
	inv := core.NewInventoryService(pool)
	svc := core.NewSalesOrderService(pool, inv)
	return svc, inv, context.Background(), pool.Close
}

func draftSO(t *testing.T, ctx context.Context, svc core.SalesOrderService, lines []core.SalesLineInput) *core.SalesOrder {
	t.Helper()
	so, err := svc.Create(ctx, core.SalesOrderInput{
		CustomerName: "Jordan Lee",
		ShipFromID:   intPtr(locationMain),
		Lines:        lines,
	})
	if err != nil {
		t.Fatalf("Create sales order failed: %v", err)
	}
	return so
}

// ── Tests ─────────────────────────────────────────────────────────────────────

func TestSalesOrder_CreateDefaultsPriceAndSnapshotsCost(t *testing.T) {
	svc, _, ctx, closePool := setupSalesTest(t)
	defer closePool()

	so := draftSO(t, ctx, svc, []core.SalesLineInput{
		{ProductID: productWidgetSmall, Quantity: 3},
		{ProductID: productGadget, Quantity: 1, UnitPrice: decPtr("19.99")},
	})

	if so.Status != core.StatusDraft {
		t.Errorf("Expected draft, got %s", so.Status)
	}
	if !strings.HasPrefix(so.Reference, "SO-") {
		t.Errorf("Expected SO- reference, got %s", so.Reference)
	}
	if !so.Lines[0].UnitPrice.Equal(decimal.RequireFromString("5.99")) {
		t.Errorf("Expected defaulted price 5.99, got %s", so.Lines[0].UnitPrice)
	}
	if !so.Lines[1].UnitPrice.Equal(decimal.RequireFromString("19.99")) {
		t.Errorf("Expected explicit price 19.99, got %s", so.Lines[1].UnitPrice)
	}
	// The line always snapshots the product's cost at creation time.
	if !so.Lines[0].UnitCost.Equal(decimal.RequireFromString("2.50")) {
		t.Errorf("Expected snapshot cost 2.50, got %s", so.Lines[0].UnitCost)
	}
	// Total = 3*5.99 + 1*19.99 = 37.96
	if !so.Total.Equal(decimal.RequireFromString("37.96")) {
		t.Errorf("Expected total 37.96, got %s", so.Total)
	}
}

func TestSalesOrder_CompleteDeductsStock(t *testing.T) {
	svc, inv, ctx, closePool := setupSalesTest(t)
	defer closePool()

	mustAdjust(t, ctx, inv, productWidgetSmall, locationMain, 50)

	so := draftSO(t, ctx, svc, []core.SalesLineInput{{ProductID: productWidgetSmall, Quantity: 20}})
	if _, err := svc.Submit(ctx, so.ID); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	completed, err := svc.Complete(ctx, so.ID)
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if completed.Status != core.StatusCompleted {
		t.Errorf("Expected completed, got %s", completed.Status)
	}
	if qty := stockAt(t, ctx, inv, productWidgetSmall, locationMain); qty != 30 {
		t.Errorf("Expected 30 units left, got %d", qty)
	}
}

func TestSalesOrder_CompleteExactStockReachesZero(t *testing.T) {
	svc, inv, ctx, closePool := setupSalesTest(t)
	defer closePool()

	mustAdjust(t, ctx, inv, productWidgetSmall, locationMain, 20)

	so := draftSO(t, ctx, svc, []core.SalesLineInput{{ProductID: productWidgetSmall, Quantity: 20}})
	if _, err := svc.Complete(ctx, so.ID); err != nil {
		t.Fatalf("Complete at exact stock failed: %v", err)
	}
	if qty := stockAt(t, ctx, inv, productWidgetSmall, locationMain); qty != 0 {
		t.Errorf("Expected 0 units left, got %d", qty)
	}
}

func TestSalesOrder_OversellRejectedAllOrNothing(t *testing.T) {
	svc, inv, ctx, closePool := setupSalesTest(t)
	defer closePool()

	mustAdjust(t, ctx, inv, productWidgetSmall, locationMain, 100)
	mustAdjust(t, ctx, inv, productWidgetLarge, locationMain, 5)

	// First line is satisfiable, second is not. Nothing may change.
	so := draftSO(t, ctx, svc, []core.SalesLineInput{
		{ProductID: productWidgetSmall, Quantity: 10},
		{ProductID: productWidgetLarge, Quantity: 8},
	})

	_, err := svc.Complete(ctx, so.ID)
	if err == nil {
		t.Fatal("Expected oversell to fail")
	}
	derr, ok := core.AsDomainError(err)
	if !ok || derr.Code != core.ErrCodeInsufficientStock {
		t.Fatalf("Expected insufficient_stock, got %v", err)
	}
	if !strings.Contains(derr.Message, "WID-002") {
		t.Errorf("Expected offending SKU in message, got %q", derr.Message)
	}
	if !strings.Contains(derr.Message, "available 5") || !strings.Contains(derr.Message, "required 8") {
		t.Errorf("Expected available/required quantities in message, got %q", derr.Message)
	}

	// All-or-nothing: the satisfiable line must not have been deducted.
	if qty := stockAt(t, ctx, inv, productWidgetSmall, locationMain); qty != 100 {
		t.Errorf("Expected WID-001 stock untouched at 100, got %d", qty)
	}
	if qty := stockAt(t, ctx, inv, productWidgetLarge, locationMain); qty != 5 {
		t.Errorf("Expected WID-002 stock untouched at 5, got %d", qty)
	}

	// The order stays open for editing and retry.
	got, err := svc.Get(ctx, so.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Status != core.StatusDraft {
		t.Errorf("Expected order still draft, got %s", got.Status)
	}
}

func TestSalesOrder_CompleteWithNoStockRowRejected(t *testing.T) {
	svc, _, ctx, closePool := setupSalesTest(t)
	defer closePool()

	// No inventory row exists for the product: available counts as 0.
	so := draftSO(t, ctx, svc, []core.SalesLineInput{{ProductID: productGadget, Quantity: 1}})

	_, err := svc.Complete(ctx, so.ID)
	if err == nil {
		t.Fatal("Expected completion with no stock row to fail")
	}
	derr, ok := core.AsDomainError(err)
	if !ok || derr.Code != core.ErrCodeInsufficientStock {
		t.Errorf("Expected insufficient_stock, got %v", err)
	}
	if !strings.Contains(derr.Message, "available 0") {
		t.Errorf("Expected available 0 in message, got %q", derr.Message)
	}
}

func TestSalesOrder_CompleteWithoutShipFromRejected(t *testing.T) {
	svc, _, ctx, closePool := setupSalesTest(t)
	defer closePool()

	so, err := svc.Create(ctx, core.SalesOrderInput{
		CustomerName: "Jordan Lee",
		Lines:        []core.SalesLineInput{{ProductID: productWidgetSmall, Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	_, err = svc.Complete(ctx, so.ID)
	if err == nil {
		t.Fatal("Expected completion without ship-from location to fail")
	}
	derr, ok := core.AsDomainError(err)
	if !ok || derr.Code != core.ErrCodeMissingLocation {
		t.Errorf("Expected missing_location, got %v", err)
	}
}

func TestSalesOrder_CompletedIsImmutable(t *testing.T) {
	svc, inv, ctx, closePool := setupSalesTest(t)
	defer closePool()

	mustAdjust(t, ctx, inv, productWidgetSmall, locationMain, 10)
	so := draftSO(t, ctx, svc, []core.SalesLineInput{{ProductID: productWidgetSmall, Quantity: 5}})
	if _, err := svc.Complete(ctx, so.ID); err != nil {
		t.Fatalf("Complete failed: %v", err)
	}

	if _, err := svc.Complete(ctx, so.ID); err == nil {
		t.Error("Expected second complete to fail")
	}
	if _, err := svc.Cancel(ctx, so.ID); err == nil {
		t.Error("Expected cancel of completed order to fail")
	}
	_, err := svc.Update(ctx, so.ID, core.SalesOrderInput{
		CustomerName: "Changed",
		ShipFromID:   intPtr(locationMain),
		Lines:        []core.SalesLineInput{{ProductID: productWidgetSmall, Quantity: 1}},
	})
	if err == nil {
		t.Error("Expected update of completed order to fail")
	}

	// Double completion must not deduct twice.
	if qty := stockAt(t, ctx, inv, productWidgetSmall, locationMain); qty != 5 {
		t.Errorf("Expected 5 units left, got %d", qty)
	}
}

func TestSalesOrder_ConcurrentCompletesNeverOversell(t *testing.T) {
	svc, inv, ctx, closePool := setupSalesTest(t)
	defer closePool()

	// Two orders of 8 race for 10 units. Only one can fit; the other must
	// fail with insufficient_stock, and stock must never go negative.
	mustAdjust(t, ctx, inv, productWidgetSmall, locationMain, 10)

	first := draftSO(t, ctx, svc, []core.SalesLineInput{{ProductID: productWidgetSmall, Quantity: 8}})
	second := draftSO(t, ctx, svc, []core.SalesLineInput{{ProductID: productWidgetSmall, Quantity: 8}})

	var wg sync.WaitGroup
	errCh := make(chan error, 2)
	for _, id := range []int{first.ID, second.ID} {
		wg.Add(1)
		go func(orderID int) {
			defer wg.Done()
			if _, err := svc.Complete(ctx, orderID); err != nil {
				errCh <- err
			}
		}(id)
	}
	wg.Wait()
	close(errCh)

	var failures []error
	for err := range errCh {
		failures = append(failures, err)
	}
	if len(failures) != 1 {
		t.Fatalf("Expected exactly one of the two completions to fail, got %d failures: %v", len(failures), failures)
	}
	derr, ok := core.AsDomainError(failures[0])
	if !ok || derr.Code != core.ErrCodeInsufficientStock {
		t.Errorf("Expected insufficient_stock for the loser, got %v", failures[0])
	}

	if qty := stockAt(t, ctx, inv, productWidgetSmall, locationMain); qty != 2 {
		t.Errorf("Expected 2 units left after one completion of 8, got %d", qty)
	}

	// Exactly one order ended up completed.
	var completed int
	for _, id := range []int{first.ID, second.ID} {
		got, err := svc.Get(ctx, id)
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if got.Status == core.StatusCompleted {
			completed++
		}
	}
	if completed != 1 {
		t.Errorf("Expected exactly one completed order, got %d", completed)
	}
}

func TestSalesOrder_EmptyOrderCompletes(t *testing.T) {
	svc, _, ctx, closePool := setupSalesTest(t)
	defer closePool()

	// An order with no lines is legal and completes as a no-op on stock.
	so := draftSO(t, ctx, svc, nil)
	completed, err := svc.Complete(ctx, so.ID)
	if err != nil {
		t.Fatalf("Complete of empty order failed: %v", err)
	}
	if completed.Status != core.StatusCompleted {
		t.Errorf("Expected completed, got %s", completed.Status)
	}
	if !completed.Total.IsZero() {
		t.Errorf("Expected zero total, got %s", completed.Total)
	}
}

func TestSalesOrder_UpdateReplacesLines(t *testing.T) {
	svc, _, ctx, closePool := setupSalesTest(t)
	defer closePool()

	so := draftSO(t, ctx, svc, []core.SalesLineInput{{ProductID: productWidgetSmall, Quantity: 2}})

	updated, err := svc.Update(ctx, so.ID, core.SalesOrderInput{
		CustomerName: "Jordan Lee",
		ShipFromID:   intPtr(locationShop),
		Lines: []core.SalesLineInput{
			{ProductID: productWidgetLarge, Quantity: 4},
		},
	})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if len(updated.Lines) != 1 || updated.Lines[0].ProductID != productWidgetLarge {
		t.Fatalf("Expected lines replaced with WID-002, got %+v", updated.Lines)
	}
	if updated.ShipFromCode == nil || *updated.ShipFromCode != "SHOP" {
		t.Errorf("Expected ship-from SHOP, got %v", updated.ShipFromCode)
	}
	if updated.Status != core.StatusDraft {
		t.Errorf("Expected update to leave status draft, got %s", updated.Status)
	}
}
