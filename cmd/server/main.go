package main

import (
	"log"
	"net/http"

	"landscape_dispatch/internal/config"
	"landscape_dispatch/internal/controllers"
	"landscape_dispatch/internal/gateway"
	"landscape_dispatch/internal/logger"
	"landscape_dispatch/internal/middleware"
	"landscape_dispatch/internal/routes"
	"landscape_dispatch/internal/services"
)

func main() {
	// Initialize structured logging to file
	logger.Setup()

	cfg := config.Load()

	// Connect to the database
	db, err := config.ConnectDB(cfg)
	if err != nil {
		log.Fatalf("database init: %v", err)
	}

	orders := gateway.NewOrdersClient(cfg.OrdersBaseURL, cfg.OrdersMaxRetries, cfg.OrdersRetryDelay)
	engine := services.NewAssignmentEngine(db, orders)

	// Setup Gin router with injected handlers
	r := routes.SetupRouter(routes.Controllers{
		Auth:       controllers.NewAuthController(db),
		Driver:     controllers.NewDriverController(db),
		Vehicle:    controllers.NewVehicleController(db),
		Order:      controllers.NewOrderController(engine),
		Assignment: controllers.NewAssignmentController(engine),
		Report:     controllers.NewReportController(engine),
	})

	// Wrap with CORS
	handler := middleware.EnableCORS(r)

	log.Printf("🚀 Server running at %s", cfg.Addr)
	log.Fatal(http.ListenAndServe(cfg.Addr, handler))
}
