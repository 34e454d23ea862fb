// seed loads a small demo data set: an admin user, two locations, three
// suppliers, and a handful of products with opening stock.
//
// Usage: go run ./cmd/seed [admin-password]
package main

import (
	"context"
	"log"
	"os"

	"stockroom/internal/db"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	_ = godotenv.Load()

	password := "admin"
	if len(os.Args) > 1 {
		password = os.Args[1]
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx)
	if err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer pool.Close()

	tx, err := pool.Begin(ctx)
	if err != nil {
		log.Fatalf("Failed to begin transaction: %v", err)
	}
	defer tx.Rollback(ctx)

	log.Println("Creating admin user...")
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}
	_, err = tx.Exec(ctx, `
		INSERT INTO users (username, email, password_hash, is_active)
		VALUES ('admin', 'admin@example.com', $1, true)
		ON CONFLICT (username) DO UPDATE SET password_hash = EXCLUDED.password_hash
	`, string(hash))
	if err != nil {
		log.Fatalf("Failed to create admin user: %v", err)
	}

	log.Println("Creating locations...")
	_, err = tx.Exec(ctx, `
		INSERT INTO locations (code, name, address) VALUES
			('MAIN', 'Main Warehouse', '1 Depot Road'),
			('SHOP', 'Front Shop', '12 High Street')
		ON CONFLICT (code) DO NOTHING;
	`)
	if err != nil {
		log.Fatalf("Failed to create locations: %v", err)
	}

	log.Println("Creating suppliers...")
	_, err = tx.Exec(ctx, `
		INSERT INTO suppliers (name, email, phone) VALUES
			('Acme Wholesale', 'orders@acme.example', '555-0101'),
			('Brightline Goods', 'sales@brightline.example', '555-0102'),
			('Cascade Imports', 'hello@cascade.example', '555-0103');
	`)
	if err != nil {
		log.Fatalf("Failed to create suppliers: %v", err)
	}

	log.Println("Creating products...")
	_, err = tx.Exec(ctx, `
		INSERT INTO products (sku, name, description, unit_cost, unit_price, supplier_id, is_active, track_inventory) VALUES
			('WID-001', 'Widget, small',  'Standard small widget',     2.50, 5.99,  (SELECT id FROM suppliers WHERE name = 'Acme Wholesale'),   true, true),
			('WID-002', 'Widget, large',  'Standard large widget',     4.10, 9.49,  (SELECT id FROM suppliers WHERE name = 'Acme Wholesale'),   true, true),
			('GAD-010', 'Gadget, deluxe', 'Deluxe gadget with case',  11.00, 24.99, (SELECT id FROM suppliers WHERE name = 'Brightline Goods'), true, true),
			('SVC-100', 'Assembly service', 'Per-unit assembly fee',   0.00, 15.00, NULL,                                                       true, false)
		ON CONFLICT (sku) DO NOTHING;
	`)
	if err != nil {
		log.Fatalf("Failed to create products: %v", err)
	}

	log.Println("Setting opening stock...")
	_, err = tx.Exec(ctx, `
		INSERT INTO inventory_items (product_id, location_id, quantity, reorder_threshold)
		SELECT p.id, l.id, v.qty, v.threshold
		FROM (VALUES
			('WID-001', 'MAIN', 120::bigint, 25::bigint),
			('WID-001', 'SHOP',  18::bigint, 10::bigint),
			('WID-002', 'MAIN',  60::bigint, 20::bigint),
			('GAD-010', 'MAIN',   8::bigint, 12::bigint)
		) AS v(sku, loc, qty, threshold)
		JOIN products p ON p.sku = v.sku
		JOIN locations l ON l.code = v.loc
		ON CONFLICT (product_id, location_id) DO NOTHING;
	`)
	if err != nil {
		log.Fatalf("Failed to set opening stock: %v", err)
	}

	if err := tx.Commit(ctx); err != nil {
		log.Fatalf("Failed to commit: %v", err)
	}

	log.Println("Seed complete. Sign in as admin.")
}
