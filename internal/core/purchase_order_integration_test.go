package core_test

import (
	"context"
	"strings"
	"testing"

	"stockroom/internal/core"

	"github.com/shopspring/decimal"
)

func setupPurchaseTest(t *testing.T) (core.PurchaseOrderService, core.InventoryService, context.Context, func()) {
	t.Helper()
	pool := setupTestDB(t)
	inv := core.NewInventoryService(pool)
	svc := core.NewPurchaseOrderService(pool, inv)
	return svc, inv, context.Background(), pool.Close
}

func intPtr(v int) *int { return &v }

func decPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func draftPO(t *testing.T, ctx context.Context, svc core.PurchaseOrderService, locationID int) *core.PurchaseOrder {
	t.Helper()
	po, err := svc.Create(ctx, core.PurchaseOrderInput{
		SupplierID:        supplierAcme,
		ReceiveLocationID: intPtr(locationID),
		Lines: []core.PurchaseLineInput{
			{ProductID: productWidgetSmall, Quantity: 100},
			{ProductID: productWidgetLarge, Quantity: 40, UnitCost: decPtr("3.80")},
		},
	})
	if err != nil {
		t.Fatalf("Create purchase order failed: %v", err)
	}
	return po
}

// ── Tests ─────────────────────────────────────────────────────────────────────

func TestPurchaseOrder_CreateAssignsReferenceAndDefaults(t *testing.T) {
	svc, _, ctx, closePool := setupPurchaseTest(t)
	defer closePool()

	po := draftPO(t, ctx, svc, locationMain)

	if po.Status != core.StatusDraft {
		t.Errorf("Expected status draft, got %s", po.Status)
	}
	if !strings.HasPrefix(po.Reference, "PO-") {
		t.Errorf("Expected PO- reference, got %s", po.Reference)
	}
	if len(po.Lines) != 2 {
		t.Fatalf("Expected 2 lines, got %d", len(po.Lines))
	}
	// First line had no explicit cost, so the product's unit_cost applies.
	if !po.Lines[0].UnitCost.Equal(decimal.RequireFromString("2.50")) {
		t.Errorf("Expected defaulted unit cost 2.50, got %s", po.Lines[0].UnitCost)
	}
	if !po.Lines[1].UnitCost.Equal(decimal.RequireFromString("3.80")) {
		t.Errorf("Expected explicit unit cost 3.80, got %s", po.Lines[1].UnitCost)
	}
	// Total = 100*2.50 + 40*3.80 = 402.00
	if !po.Total.Equal(decimal.RequireFromString("402.00")) {
		t.Errorf("Expected total 402.00, got %s", po.Total)
	}
}

func TestPurchaseOrder_ReferencesAreSequential(t *testing.T) {
	svc, _, ctx, closePool := setupPurchaseTest(t)
	defer closePool()

	first := draftPO(t, ctx, svc, locationMain)
	second := draftPO(t, ctx, svc, locationMain)

	if first.Reference == second.Reference {
		t.Errorf("Expected distinct references, both were %s", first.Reference)
	}
	if !strings.HasSuffix(first.Reference, "00001") || !strings.HasSuffix(second.Reference, "00002") {
		t.Errorf("Expected sequential references, got %s then %s", first.Reference, second.Reference)
	}
}

func TestPurchaseOrder_ReceiveCreditsStock(t *testing.T) {
	svc, inv, ctx, closePool := setupPurchaseTest(t)
	defer closePool()

	po := draftPO(t, ctx, svc, locationMain)
	if _, err := svc.Submit(ctx, po.ID); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	received, err := svc.Receive(ctx, po.ID)
	if err != nil {
		t.Fatalf("Receive failed: %v", err)
	}
	if received.Status != core.StatusReceived {
		t.Errorf("Expected status received, got %s", received.Status)
	}

	if qty := stockAt(t, ctx, inv, productWidgetSmall, locationMain); qty != 100 {
		t.Errorf("Expected 100 units of WID-001 at MAIN, got %d", qty)
	}
	if qty := stockAt(t, ctx, inv, productWidgetLarge, locationMain); qty != 40 {
		t.Errorf("Expected 40 units of WID-002 at MAIN, got %d", qty)
	}
}

func TestPurchaseOrder_ReceiveFromDraft(t *testing.T) {
	svc, inv, ctx, closePool := setupPurchaseTest(t)
	defer closePool()

	// Receiving directly from draft is allowed; submit is optional.
	po := draftPO(t, ctx, svc, locationMain)
	if _, err := svc.Receive(ctx, po.ID); err != nil {
		t.Fatalf("Receive from draft failed: %v", err)
	}
	if qty := stockAt(t, ctx, inv, productWidgetSmall, locationMain); qty != 100 {
		t.Errorf("Expected 100 units after receive, got %d", qty)
	}
}

func TestPurchaseOrder_ReceiveTwiceRejected(t *testing.T) {
	svc, inv, ctx, closePool := setupPurchaseTest(t)
	defer closePool()

	po := draftPO(t, ctx, svc, locationMain)
	if _, err := svc.Receive(ctx, po.ID); err != nil {
		t.Fatalf("First receive failed: %v", err)
	}

	_, err := svc.Receive(ctx, po.ID)
	if err == nil {
		t.Fatal("Expected second receive to fail")
	}
	derr, ok := core.AsDomainError(err)
	if !ok || derr.Code != core.ErrCodeInvalidTransition {
		t.Errorf("Expected invalid_transition, got %v", err)
	}

	// Stock must not have been credited twice.
	if qty := stockAt(t, ctx, inv, productWidgetSmall, locationMain); qty != 100 {
		t.Errorf("Expected stock unchanged at 100, got %d", qty)
	}
}

func TestPurchaseOrder_ReceiveWithoutLocationRejected(t *testing.T) {
	svc, _, ctx, closePool := setupPurchaseTest(t)
	defer closePool()

	po, err := svc.Create(ctx, core.PurchaseOrderInput{
		SupplierID: supplierAcme,
		Lines:      []core.PurchaseLineInput{{ProductID: productWidgetSmall, Quantity: 10}},
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	_, err = svc.Receive(ctx, po.ID)
	if err == nil {
		t.Fatal("Expected receive without location to fail")
	}
	derr, ok := core.AsDomainError(err)
	if !ok || derr.Code != core.ErrCodeMissingLocation {
		t.Errorf("Expected missing_location, got %v", err)
	}

	// The order must stay editable so the location can be set.
	got, err := svc.Get(ctx, po.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Status != core.StatusDraft {
		t.Errorf("Expected order still draft, got %s", got.Status)
	}
}

func TestPurchaseOrder_CancelBlocksReceive(t *testing.T) {
	svc, _, ctx, closePool := setupPurchaseTest(t)
	defer closePool()

	po := draftPO(t, ctx, svc, locationMain)
	if _, err := svc.Cancel(ctx, po.ID); err != nil {
		t.Fatalf("Cancel failed: %v", err)
	}

	_, err := svc.Receive(ctx, po.ID)
	if err == nil {
		t.Fatal("Expected receive of cancelled order to fail")
	}
	derr, ok := core.AsDomainError(err)
	if !ok || derr.Code != core.ErrCodeInvalidTransition {
		t.Errorf("Expected invalid_transition, got %v", err)
	}
}

func TestPurchaseOrder_EditAfterReceiveRejected(t *testing.T) {
	svc, _, ctx, closePool := setupPurchaseTest(t)
	defer closePool()

	po := draftPO(t, ctx, svc, locationMain)
	if _, err := svc.Receive(ctx, po.ID); err != nil {
		t.Fatalf("Receive failed: %v", err)
	}

	_, err := svc.Update(ctx, po.ID, core.PurchaseOrderInput{
		SupplierID:        supplierBrightline,
		ReceiveLocationID: intPtr(locationMain),
		Lines:             []core.PurchaseLineInput{{ProductID: productGadget, Quantity: 1}},
	})
	if err == nil {
		t.Fatal("Expected update of received order to fail")
	}
	derr, ok := core.AsDomainError(err)
	if !ok || derr.Code != core.ErrCodeInvalidTransition {
		t.Errorf("Expected invalid_transition, got %v", err)
	}
}

func TestPurchaseOrder_SubmitIsIdempotentOnPending(t *testing.T) {
	svc, _, ctx, closePool := setupPurchaseTest(t)
	defer closePool()

	po := draftPO(t, ctx, svc, locationMain)
	if _, err := svc.Submit(ctx, po.ID); err != nil {
		t.Fatalf("First submit failed: %v", err)
	}
	again, err := svc.Submit(ctx, po.ID)
	if err != nil {
		t.Fatalf("Second submit failed: %v", err)
	}
	if again.Status != core.StatusPending {
		t.Errorf("Expected pending, got %s", again.Status)
	}
}

func TestPurchaseOrder_ZeroQuantityLineRejected(t *testing.T) {
	svc, _, ctx, closePool := setupPurchaseTest(t)
	defer closePool()

	_, err := svc.Create(ctx, core.PurchaseOrderInput{
		SupplierID:        supplierAcme,
		ReceiveLocationID: intPtr(locationMain),
		Lines:             []core.PurchaseLineInput{{ProductID: productWidgetSmall, Quantity: 0}},
	})
	if err == nil {
		t.Fatal("Expected zero-quantity line to be rejected")
	}
	derr, ok := core.AsDomainError(err)
	if !ok || derr.Code != core.ErrCodeValidation {
		t.Errorf("Expected validation error, got %v", err)
	}
}

func TestPurchaseOrder_ListFiltersByStatus(t *testing.T) {
	svc, _, ctx, closePool := setupPurchaseTest(t)
	defer closePool()

	draftPO(t, ctx, svc, locationMain)
	second := draftPO(t, ctx, svc, locationMain)
	if _, err := svc.Submit(ctx, second.ID); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	pending, err := svc.List(ctx, core.StatusPending)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(pending) != 1 || pending[0].ID != second.ID {
		t.Errorf("Expected only the submitted order in pending list, got %d rows", len(pending))
	}

	all, err := svc.List(ctx, "")
	if err != nil {
		t.Fatalf("List all failed: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("Expected 2 orders total, got %d", len(all))
	}
}
