package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// isUniqueViolation reports whether err is a Postgres unique-constraint
// violation (SQLSTATE 23505). The SKU and location-code checks race with
// concurrent writers, so the constraint is the authority.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

// SupplierInput holds the writable fields of a supplier.
type SupplierInput struct {
	Name    string
	Email   string
	Phone   string
	Address string
	Website string
}

// ProductInput holds the writable fields of a product.
type ProductInput struct {
	SKU            string
	Name           string
	Description    string
	UnitCost       decimal.Decimal
	UnitPrice      decimal.Decimal
	SupplierID     *int
	IsActive       bool
	TrackInventory bool
}

// LocationInput holds the writable fields of a location.
type LocationInput struct {
	Code    string
	Name    string
	Address string
}

// CatalogService manages the supplier, product, and location master data.
type CatalogService interface {
	CreateSupplier(ctx context.Context, in SupplierInput) (*Supplier, error)
	GetSupplier(ctx context.Context, id int) (*Supplier, error)
	ListSuppliers(ctx context.Context) ([]Supplier, error)
	UpdateSupplier(ctx context.Context, id int, in SupplierInput) (*Supplier, error)
	DeleteSupplier(ctx context.Context, id int) error

	CreateProduct(ctx context.Context, in ProductInput) (*Product, error)
	GetProduct(ctx context.Context, id int) (*Product, error)
	ListProducts(ctx context.Context) ([]Product, error)
	UpdateProduct(ctx context.Context, id int, in ProductInput) (*Product, error)
	DeleteProduct(ctx context.Context, id int) error

	CreateLocation(ctx context.Context, in LocationInput) (*Location, error)
	GetLocation(ctx context.Context, id int) (*Location, error)
	ListLocations(ctx context.Context) ([]Location, error)
	UpdateLocation(ctx context.Context, id int, in LocationInput) (*Location, error)
	DeleteLocation(ctx context.Context, id int) error
}

type catalogService struct {
	pool *pgxpool.Pool
}

// NewCatalogService constructs a CatalogService backed by PostgreSQL.
func NewCatalogService(pool *pgxpool.Pool) CatalogService {
	return &catalogService{pool: pool}
}

// ── Suppliers ─────────────────────────────────────────────────────────────────

func (s *catalogService) CreateSupplier(ctx context.Context, in SupplierInput) (*Supplier, error) {
	if in.Name == "" {
		return nil, NewDomainError(ErrCodeValidation, "supplier name is required")
	}
	sup := &Supplier{}
	err := s.pool.QueryRow(ctx, `
		INSERT INTO suppliers (name, email, phone, address, website)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, name, email, phone, address, website, created_at`,
		in.Name, in.Email, in.Phone, in.Address, in.Website,
	).Scan(&sup.ID, &sup.Name, &sup.Email, &sup.Phone, &sup.Address, &sup.Website, &sup.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert supplier: %w", err)
	}
	return sup, nil
}

func (s *catalogService) GetSupplier(ctx context.Context, id int) (*Supplier, error) {
	sup := &Supplier{}
	err := s.pool.QueryRow(ctx, `
		SELECT id, name, email, phone, address, website, created_at
		FROM suppliers WHERE id = $1`,
		id,
	).Scan(&sup.ID, &sup.Name, &sup.Email, &sup.Phone, &sup.Address, &sup.Website, &sup.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, NewDomainError(ErrCodeNotFound, "supplier %d not found", id)
		}
		return nil, fmt.Errorf("get supplier %d: %w", id, err)
	}
	return sup, nil
}

func (s *catalogService) ListSuppliers(ctx context.Context) ([]Supplier, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, name, email, phone, address, website, created_at
		FROM suppliers ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list suppliers: %w", err)
	}
	defer rows.Close()

	var suppliers []Supplier
	for rows.Next() {
		var sup Supplier
		if err := rows.Scan(&sup.ID, &sup.Name, &sup.Email, &sup.Phone, &sup.Address, &sup.Website, &sup.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan supplier: %w", err)
		}
		suppliers = append(suppliers, sup)
	}
	return suppliers, rows.Err()
}

func (s *catalogService) UpdateSupplier(ctx context.Context, id int, in SupplierInput) (*Supplier, error) {
	if in.Name == "" {
		return nil, NewDomainError(ErrCodeValidation, "supplier name is required")
	}
	sup := &Supplier{}
	err := s.pool.QueryRow(ctx, `
		UPDATE suppliers
		SET name = $1, email = $2, phone = $3, address = $4, website = $5
		WHERE id = $6
		RETURNING id, name, email, phone, address, website, created_at`,
		in.Name, in.Email, in.Phone, in.Address, in.Website, id,
	).Scan(&sup.ID, &sup.Name, &sup.Email, &sup.Phone, &sup.Address, &sup.Website, &sup.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, NewDomainError(ErrCodeNotFound, "supplier %d not found", id)
		}
		return nil, fmt.Errorf("update supplier %d: %w", id, err)
	}
	return sup, nil
}

func (s *catalogService) DeleteSupplier(ctx context.Context, id int) error {
	var referenced bool
	if err := s.pool.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM purchase_orders WHERE supplier_id = $1)", id,
	).Scan(&referenced); err != nil {
		return fmt.Errorf("check supplier references: %w", err)
	}
	if referenced {
		return NewDomainError(ErrCodeValidation, "supplier %d has purchase orders and cannot be deleted", id)
	}

	tag, err := s.pool.Exec(ctx, "DELETE FROM suppliers WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete supplier %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return NewDomainError(ErrCodeNotFound, "supplier %d not found", id)
	}
	return nil
}

// ── Products ──────────────────────────────────────────────────────────────────

func (s *catalogService) CreateProduct(ctx context.Context, in ProductInput) (*Product, error) {
	if err := validateProductInput(in); err != nil {
		return nil, err
	}

	var skuTaken bool
	if err := s.pool.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM products WHERE sku = $1)", in.SKU,
	).Scan(&skuTaken); err != nil {
		return nil, fmt.Errorf("check SKU: %w", err)
	}
	if skuTaken {
		return nil, NewDomainError(ErrCodeValidation, "SKU %q is already in use", in.SKU)
	}

	var id int
	err := s.pool.QueryRow(ctx, `
		INSERT INTO products (sku, name, description, unit_cost, unit_price, supplier_id, is_active, track_inventory)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`,
		in.SKU, in.Name, in.Description, in.UnitCost, in.UnitPrice, in.SupplierID, in.IsActive, in.TrackInventory,
	).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, NewDomainError(ErrCodeValidation, "SKU %q is already in use", in.SKU)
		}
		return nil, fmt.Errorf("insert product: %w", err)
	}
	return s.GetProduct(ctx, id)
}

func (s *catalogService) GetProduct(ctx context.Context, id int) (*Product, error) {
	p := &Product{}
	err := s.pool.QueryRow(ctx, `
		SELECT p.id, p.sku, p.name, p.description, p.unit_cost, p.unit_price,
		       p.supplier_id, sup.name, p.is_active, p.track_inventory, p.created_at
		FROM products p
		LEFT JOIN suppliers sup ON sup.id = p.supplier_id
		WHERE p.id = $1`,
		id,
	).Scan(&p.ID, &p.SKU, &p.Name, &p.Description, &p.UnitCost, &p.UnitPrice,
		&p.SupplierID, &p.SupplierName, &p.IsActive, &p.TrackInventory, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, NewDomainError(ErrCodeNotFound, "product %d not found", id)
		}
		return nil, fmt.Errorf("get product %d: %w", id, err)
	}
	return p, nil
}

func (s *catalogService) ListProducts(ctx context.Context) ([]Product, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT p.id, p.sku, p.name, p.description, p.unit_cost, p.unit_price,
		       p.supplier_id, sup.name, p.is_active, p.track_inventory, p.created_at
		FROM products p
		LEFT JOIN suppliers sup ON sup.id = p.supplier_id
		ORDER BY p.sku`)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.SKU, &p.Name, &p.Description, &p.UnitCost, &p.UnitPrice,
			&p.SupplierID, &p.SupplierName, &p.IsActive, &p.TrackInventory, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (s *catalogService) UpdateProduct(ctx context.Context, id int, in ProductInput) (*Product, error) {
	if err := validateProductInput(in); err != nil {
		return nil, err
	}

	var skuTaken bool
	if err := s.pool.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM products WHERE sku = $1 AND id <> $2)", in.SKU, id,
	).Scan(&skuTaken); err != nil {
		return nil, fmt.Errorf("check SKU: %w", err)
	}
	if skuTaken {
		return nil, NewDomainError(ErrCodeValidation, "SKU %q is already in use", in.SKU)
	}

	tag, err := s.pool.Exec(ctx, `
		UPDATE products
		SET sku = $1, name = $2, description = $3, unit_cost = $4, unit_price = $5,
		    supplier_id = $6, is_active = $7, track_inventory = $8
		WHERE id = $9`,
		in.SKU, in.Name, in.Description, in.UnitCost, in.UnitPrice, in.SupplierID, in.IsActive, in.TrackInventory, id,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, NewDomainError(ErrCodeValidation, "SKU %q is already in use", in.SKU)
		}
		return nil, fmt.Errorf("update product %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return nil, NewDomainError(ErrCodeNotFound, "product %d not found", id)
	}
	return s.GetProduct(ctx, id)
}

func (s *catalogService) DeleteProduct(ctx context.Context, id int) error {
	var referenced bool
	if err := s.pool.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM purchase_order_items WHERE product_id = $1)
		    OR EXISTS(SELECT 1 FROM sales_order_items WHERE product_id = $1)`, id,
	).Scan(&referenced); err != nil {
		return fmt.Errorf("check product references: %w", err)
	}
	if referenced {
		return NewDomainError(ErrCodeValidation, "product %d appears on orders and cannot be deleted", id)
	}

	tag, err := s.pool.Exec(ctx, "DELETE FROM products WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete product %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return NewDomainError(ErrCodeNotFound, "product %d not found", id)
	}
	return nil
}

func validateProductInput(in ProductInput) error {
	if in.SKU == "" {
		return NewDomainError(ErrCodeValidation, "product SKU is required")
	}
	if in.Name == "" {
		return NewDomainError(ErrCodeValidation, "product name is required")
	}
	if in.UnitCost.IsNegative() {
		return NewDomainError(ErrCodeValidation, "unit cost cannot be negative, got %s", in.UnitCost)
	}
	if in.UnitPrice.IsNegative() {
		return NewDomainError(ErrCodeValidation, "unit price cannot be negative, got %s", in.UnitPrice)
	}
	return nil
}

// ── Locations ─────────────────────────────────────────────────────────────────

func (s *catalogService) CreateLocation(ctx context.Context, in LocationInput) (*Location, error) {
	if in.Code == "" || in.Name == "" {
		return nil, NewDomainError(ErrCodeValidation, "location code and name are required")
	}

	var codeTaken bool
	if err := s.pool.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM locations WHERE code = $1)", in.Code,
	).Scan(&codeTaken); err != nil {
		return nil, fmt.Errorf("check location code: %w", err)
	}
	if codeTaken {
		return nil, NewDomainError(ErrCodeValidation, "location code %q is already in use", in.Code)
	}

	l := &Location{}
	err := s.pool.QueryRow(ctx, `
		INSERT INTO locations (code, name, address)
		VALUES ($1, $2, $3)
		RETURNING id, code, name, address, created_at`,
		in.Code, in.Name, in.Address,
	).Scan(&l.ID, &l.Code, &l.Name, &l.Address, &l.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, NewDomainError(ErrCodeValidation, "location code %q is already in use", in.Code)
		}
		return nil, fmt.Errorf("insert location: %w", err)
	}
	return l, nil
}

func (s *catalogService) GetLocation(ctx context.Context, id int) (*Location, error) {
	l := &Location{}
	err := s.pool.QueryRow(ctx, `
		SELECT id, code, name, address, created_at
		FROM locations WHERE id = $1`,
		id,
	).Scan(&l.ID, &l.Code, &l.Name, &l.Address, &l.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, NewDomainError(ErrCodeNotFound, "location %d not found", id)
		}
		return nil, fmt.Errorf("get location %d: %w", id, err)
	}
	return l, nil
}

func (s *catalogService) ListLocations(ctx context.Context) ([]Location, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, code, name, address, created_at
		FROM locations ORDER BY code`)
	if err != nil {
		return nil, fmt.Errorf("list locations: %w", err)
	}
	defer rows.Close()

	var locations []Location
	for rows.Next() {
		var l Location
		if err := rows.Scan(&l.ID, &l.Code, &l.Name, &l.Address, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan location: %w", err)
		}
		locations = append(locations, l)
	}
	return locations, rows.Err()
}

func (s *catalogService) UpdateLocation(ctx context.Context, id int, in LocationInput) (*Location, error) {
	if in.Code == "" || in.Name == "" {
		return nil, NewDomainError(ErrCodeValidation, "location code and name are required")
	}

	var codeTaken bool
	if err := s.pool.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM locations WHERE code = $1 AND id <> $2)", in.Code, id,
	).Scan(&codeTaken); err != nil {
		return nil, fmt.Errorf("check location code: %w", err)
	}
	if codeTaken {
		return nil, NewDomainError(ErrCodeValidation, "location code %q is already in use", in.Code)
	}

	l := &Location{}
	err := s.pool.QueryRow(ctx, `
		UPDATE locations
		SET code = $1, name = $2, address = $3
		WHERE id = $4
		RETURNING id, code, name, address, created_at`,
		in.Code, in.Name, in.Address, id,
	).Scan(&l.ID, &l.Code, &l.Name, &l.Address, &l.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, NewDomainError(ErrCodeNotFound, "location %d not found", id)
		}
		if isUniqueViolation(err) {
			return nil, NewDomainError(ErrCodeValidation, "location code %q is already in use", in.Code)
		}
		return nil, fmt.Errorf("update location %d: %w", id, err)
	}
	return l, nil
}

func (s *catalogService) DeleteLocation(ctx context.Context, id int) error {
	var referenced bool
	if err := s.pool.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM purchase_orders WHERE receive_location_id = $1)
		    OR EXISTS(SELECT 1 FROM sales_orders WHERE ship_from_id = $1)`, id,
	).Scan(&referenced); err != nil {
		return fmt.Errorf("check location references: %w", err)
	}
	if referenced {
		return NewDomainError(ErrCodeValidation, "location %d is referenced by orders and cannot be deleted", id)
	}

	tag, err := s.pool.Exec(ctx, "DELETE FROM locations WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete location %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return NewDomainError(ErrCodeNotFound, "location %d not found", id)
	}
	return nil
}
