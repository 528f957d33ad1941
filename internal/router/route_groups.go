package router

import (
	"foodtrack_backend/internal/handlers"

	"github.com/gin-gonic/gin"
)

// SetupFoodItemRoutes sets up the food item CRUD routes.
func SetupFoodItemRoutes(apiGroup *gin.RouterGroup, foodHandler *handlers.FoodItemHandler) {
	foodItemRoutes := apiGroup.Group("/food_items")
	{
		foodItemRoutes.GET("", foodHandler.GetFoodItems)
		foodItemRoutes.POST("", foodHandler.CreateFoodItem)
		foodItemRoutes.GET("/:id", foodHandler.GetFoodItemByID)
		foodItemRoutes.PUT("/:id", foodHandler.UpdateSoldQuantity)
		foodItemRoutes.DELETE("/:id", foodHandler.DeleteFoodItem)
	}
}

// SetupSessionRoutes sets up the sales-session lifecycle routes.
// POST /start_new_sales is destructive: it clears every item without archiving.
func SetupSessionRoutes(apiGroup *gin.RouterGroup, foodHandler *handlers.FoodItemHandler) {
	apiGroup.POST("/close_sales", foodHandler.CloseSales)
	apiGroup.POST("/start_new_sales", foodHandler.StartNewSales)
	apiGroup.GET("/session", foodHandler.GetSessionState)
}

// SetupReportRoutes sets up the reporting routes.
func SetupReportRoutes(apiGroup *gin.RouterGroup, foodHandler *handlers.FoodItemHandler) {
	reportRoutes := apiGroup.Group("/reports")
	{
		reportRoutes.GET("/waste", foodHandler.GetWasteSummary)
	}
}
