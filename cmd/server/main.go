package main

import (
	"context"
	"log"
	"net/http"
	"os"

	webAdapter "stockroom/internal/adapters/web"
	"stockroom/internal/ai"
	"stockroom/internal/app"
	"stockroom/internal/core"
	"stockroom/internal/db"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	ctx := context.Background()
	pool, err := db.NewPool(ctx)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer pool.Close()

	catalog := core.NewCatalogService(pool)
	inventory := core.NewInventoryService(pool)
	purchase := core.NewPurchaseOrderService(pool, inventory)
	sales := core.NewSalesOrderService(pool, inventory)
	reporting := core.NewReportingService(pool)
	users := core.NewUserService(pool)

	var agent *ai.Agent
	if apiKey := os.Getenv("OPENAI_API_KEY"); apiKey != "" {
		agent = ai.NewAgent(apiKey, catalog, inventory, reporting, purchase, sales)
	} else {
		log.Println("Warning: OPENAI_API_KEY is not set; assistant disabled")
	}

	svc := app.NewAppService(catalog, inventory, purchase, sales, reporting, users, agent)

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("JWT_SECRET environment variable not set")
	}

	port := os.Getenv("SERVER_PORT")
	if port == "" {
		port = "8080"
	}

	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	handler := webAdapter.NewHandler(svc, allowedOrigins, jwtSecret)

	log.Printf("server starting on :%s", port)
	if err := http.ListenAndServe(":"+port, handler); err != nil {
		log.Fatalf("server: %v", err)
	}
}
