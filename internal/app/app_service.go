package app

import (
	"context"

	"stockroom/internal/ai"
	"stockroom/internal/core"
)

type appService struct {
	catalog   core.CatalogService
	inventory core.InventoryService
	purchase  core.PurchaseOrderService
	sales     core.SalesOrderService
	reporting core.ReportingService
	users     core.UserService
	agent     *ai.Agent
}

// NewAppService constructs an appService that satisfies ApplicationService.
// agent may be nil, in which case AskAssistant reports the assistant as
// unavailable.
func NewAppService(
	catalog core.CatalogService,
	inventory core.InventoryService,
	purchase core.PurchaseOrderService,
	sales core.SalesOrderService,
	reporting core.ReportingService,
	users core.UserService,
	agent *ai.Agent,
) ApplicationService {
	return &appService{
		catalog:   catalog,
		inventory: inventory,
		purchase:  purchase,
		sales:     sales,
		reporting: reporting,
		users:     users,
		agent:     agent,
	}
}

// ── Suppliers ─────────────────────────────────────────────────────────────────

func (s *appService) ListSuppliers(ctx context.Context) (*SupplierListResult, error) {
	suppliers, err := s.catalog.ListSuppliers(ctx)
	if err != nil {
		return nil, err
	}
	return &SupplierListResult{Suppliers: suppliers}, nil
}

func (s *appService) GetSupplier(ctx context.Context, id int) (*core.Supplier, error) {
	return s.catalog.GetSupplier(ctx, id)
}

func (s *appService) CreateSupplier(ctx context.Context, in core.SupplierInput) (*core.Supplier, error) {
	return s.catalog.CreateSupplier(ctx, in)
}

func (s *appService) UpdateSupplier(ctx context.Context, id int, in core.SupplierInput) (*core.Supplier, error) {
	return s.catalog.UpdateSupplier(ctx, id, in)
}

func (s *appService) DeleteSupplier(ctx context.Context, id int) error {
	return s.catalog.DeleteSupplier(ctx, id)
}

// ── Products ──────────────────────────────────────────────────────────────────

func (s *appService) ListProducts(ctx context.Context) (*ProductListResult, error) {
	products, err := s.catalog.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	return &ProductListResult{Products: products}, nil
}

func (s *appService) GetProduct(ctx context.Context, id int) (*core.Product, error) {
	return s.catalog.GetProduct(ctx, id)
}

func (s *appService) CreateProduct(ctx context.Context, in core.ProductInput) (*core.Product, error) {
	return s.catalog.CreateProduct(ctx, in)
}

func (s *appService) UpdateProduct(ctx context.Context, id int, in core.ProductInput) (*core.Product, error) {
	return s.catalog.UpdateProduct(ctx, id, in)
}

func (s *appService) DeleteProduct(ctx context.Context, id int) error {
	return s.catalog.DeleteProduct(ctx, id)
}

// ── Locations ─────────────────────────────────────────────────────────────────

func (s *appService) ListLocations(ctx context.Context) (*LocationListResult, error) {
	locations, err := s.catalog.ListLocations(ctx)
	if err != nil {
		return nil, err
	}
	return &LocationListResult{Locations: locations}, nil
}

func (s *appService) GetLocation(ctx context.Context, id int) (*core.Location, error) {
	return s.catalog.GetLocation(ctx, id)
}

func (s *appService) CreateLocation(ctx context.Context, in core.LocationInput) (*core.Location, error) {
	return s.catalog.CreateLocation(ctx, in)
}

func (s *appService) UpdateLocation(ctx context.Context, id int, in core.LocationInput) (*core.Location, error) {
	return s.catalog.UpdateLocation(ctx, id, in)
}

func (s *appService) DeleteLocation(ctx context.Context, id int) error {
	return s.catalog.DeleteLocation(ctx, id)
}

// ── Inventory ─────────────────────────────────────────────────────────────────

func (s *appService) AdjustStock(ctx context.Context, req AdjustStockRequest) (*core.InventoryItem, error) {
	if req.Delta == 0 {
		return nil, core.NewDomainError(core.ErrCodeValidation, "adjustment delta cannot be zero")
	}
	return s.inventory.AdjustStock(ctx, req.ProductID, req.LocationID, req.Delta)
}

func (s *appService) GetStockLevels(ctx context.Context, productID, locationID int) (*StockResult, error) {
	levels, err := s.inventory.GetStockLevels(ctx, productID, locationID)
	if err != nil {
		return nil, err
	}
	return &StockResult{Levels: levels}, nil
}

func (s *appService) GetLowStock(ctx context.Context) (*StockResult, error) {
	levels, err := s.inventory.GetLowStock(ctx)
	if err != nil {
		return nil, err
	}
	return &StockResult{Levels: levels}, nil
}

func (s *appService) SetReorderThreshold(ctx context.Context, itemID int, threshold int64) (*core.InventoryItem, error) {
	if threshold < 0 {
		return nil, core.NewDomainError(core.ErrCodeValidation, "reorder threshold cannot be negative, got %d", threshold)
	}
	return s.inventory.SetReorderThreshold(ctx, itemID, threshold)
}

func (s *appService) GetInventoryItem(ctx context.Context, itemID int) (*core.InventoryItem, error) {
	return s.inventory.GetItem(ctx, itemID)
}

func (s *appService) DeleteInventoryItem(ctx context.Context, itemID int) error {
	return s.inventory.DeleteItem(ctx, itemID)
}

// ── Purchase orders ───────────────────────────────────────────────────────────

func (s *appService) ListPurchaseOrders(ctx context.Context, status string) (*PurchaseOrderListResult, error) {
	orders, err := s.purchase.List(ctx, status)
	if err != nil {
		return nil, err
	}
	return &PurchaseOrderListResult{Orders: orders}, nil
}

func (s *appService) GetPurchaseOrder(ctx context.Context, id int) (*core.PurchaseOrder, error) {
	return s.purchase.Get(ctx, id)
}

func (s *appService) CreatePurchaseOrder(ctx context.Context, in core.PurchaseOrderInput) (*core.PurchaseOrder, error) {
	return s.purchase.Create(ctx, in)
}

func (s *appService) UpdatePurchaseOrder(ctx context.Context, id int, in core.PurchaseOrderInput) (*core.PurchaseOrder, error) {
	return s.purchase.Update(ctx, id, in)
}

func (s *appService) SubmitPurchaseOrder(ctx context.Context, id int) (*core.PurchaseOrder, error) {
	return s.purchase.Submit(ctx, id)
}

func (s *appService) ReceivePurchaseOrder(ctx context.Context, id int) (*core.PurchaseOrder, error) {
	return s.purchase.Receive(ctx, id)
}

func (s *appService) CancelPurchaseOrder(ctx context.Context, id int) (*core.PurchaseOrder, error) {
	return s.purchase.Cancel(ctx, id)
}

// ── Sales orders ──────────────────────────────────────────────────────────────

func (s *appService) ListSalesOrders(ctx context.Context, status string) (*SalesOrderListResult, error) {
	orders, err := s.sales.List(ctx, status)
	if err != nil {
		return nil, err
	}
	return &SalesOrderListResult{Orders: orders}, nil
}

func (s *appService) GetSalesOrder(ctx context.Context, id int) (*core.SalesOrder, error) {
	return s.sales.Get(ctx, id)
}

func (s *appService) CreateSalesOrder(ctx context.Context, in core.SalesOrderInput) (*core.SalesOrder, error) {
	return s.sales.Create(ctx, in)
}

func (s *appService) UpdateSalesOrder(ctx context.Context, id int, in core.SalesOrderInput) (*core.SalesOrder, error) {
	return s.sales.Update(ctx, id, in)
}

func (s *appService) SubmitSalesOrder(ctx context.Context, id int) (*core.SalesOrder, error) {
	return s.sales.Submit(ctx, id)
}

func (s *appService) CompleteSalesOrder(ctx context.Context, id int) (*core.SalesOrder, error) {
	return s.sales.Complete(ctx, id)
}

func (s *appService) CancelSalesOrder(ctx context.Context, id int) (*core.SalesOrder, error) {
	return s.sales.Cancel(ctx, id)
}

// ── Reporting ─────────────────────────────────────────────────────────────────

func (s *appService) GetSalesReport(ctx context.Context, params core.SalesReportParams) (*core.SalesReport, error) {
	return s.reporting.SalesReport(ctx, params)
}

// ── Assistant ─────────────────────────────────────────────────────────────────

func (s *appService) AskAssistant(ctx context.Context, question string) (*AssistantResult, error) {
	if s.agent == nil {
		return nil, core.NewDomainError(core.ErrCodeValidation, "assistant is not configured: set OPENAI_API_KEY")
	}
	if question == "" {
		return nil, core.NewDomainError(core.ErrCodeValidation, "question cannot be empty")
	}
	answer, err := s.agent.Ask(ctx, question)
	if err != nil {
		return nil, err
	}
	return &AssistantResult{Answer: answer}, nil
}

// ── Auth ──────────────────────────────────────────────────────────────────────

func (s *appService) AuthenticateUser(ctx context.Context, username, password string) (*core.User, error) {
	return s.users.Authenticate(ctx, username, password)
}

func (s *appService) GetUser(ctx context.Context, userID int) (*core.User, error) {
	return s.users.GetByID(ctx, userID)
}
