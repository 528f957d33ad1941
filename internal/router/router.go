package router

import (
	"database/sql"

	"foodtrack_backend/internal/handlers"
	"foodtrack_backend/internal/repositories"
	"foodtrack_backend/internal/services"

	"github.com/gin-gonic/gin"
)

// Setup initializes the routing for the application.
func Setup(engine *gin.Engine, db *sql.DB) {
	// Initialize Repositories
	foodRepo := repositories.NewFoodItemRepository(db)

	// Initialize Services
	foodService := services.NewFoodItemService(foodRepo, db)

	// Initialize Handlers
	foodHandler := handlers.NewFoodItemHandler(foodService)

	// Route strings follow the original frontend contract (/api/food_items),
	// not a versioned prefix.
	api := engine.Group("/api")
	{
		SetupFoodItemRoutes(api, foodHandler)
		SetupSessionRoutes(api, foodHandler)
		SetupReportRoutes(api, foodHandler)
	}
}
