package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"stockroom/internal/core"
	"stockroom/internal/db"

	"github.com/joho/godotenv"
)

// lowstock prints every tracked inventory item at or below its reorder
// threshold and exits 1 when any exist, so it can gate cron alerts.
func main() {
	_ = godotenv.Load()

	ctx := context.Background()
	pool, err := db.NewPool(ctx)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer pool.Close()

	inventory := core.NewInventoryService(pool)
	levels, err := inventory.GetLowStock(ctx)
	if err != nil {
		log.Fatalf("low stock query: %v", err)
	}

	if len(levels) == 0 {
		fmt.Println("All tracked items are above their reorder thresholds.")
		return
	}

	fmt.Printf("%-16s %-32s %-12s %10s %10s\n", "SKU", "PRODUCT", "LOCATION", "ON HAND", "THRESHOLD")
	for _, l := range levels {
		fmt.Printf("%-16s %-32s %-12s %10d %10d\n", l.SKU, l.ProductName, l.LocationCode, l.Quantity, l.ReorderThreshold)
	}
	os.Exit(1)
}
