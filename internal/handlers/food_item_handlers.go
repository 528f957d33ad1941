package handlers

import (
	"errors"
	"net/http"

	"foodtrack_backend/internal/models"
	"foodtrack_backend/internal/services"
	"foodtrack_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// FoodItemHandler holds the food item service.
type FoodItemHandler struct {
	foodService services.FoodItemService
}

// NewFoodItemHandler creates a new FoodItemHandler.
func NewFoodItemHandler(fs services.FoodItemService) *FoodItemHandler {
	return &FoodItemHandler{foodService: fs}
}

// respondServiceError maps ledger errors onto the standardized API error
// envelope. Unknown errors become opaque 500s.
func respondServiceError(c *gin.Context, err error, fallbackMsg string) {
	switch {
	case errors.Is(err, services.ErrValidation):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Validation failed.", err.Error()))
	case errors.Is(err, services.ErrFoodItemNotFound):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Food item not found.", err.Error()))
	case errors.Is(err, services.ErrSalesClosed):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "Sales are closed for the current session.", err.Error()))
	default:
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, fallbackMsg, "Internal error"))
	}
}

// GetFoodItems handles fetching all food items.
func (h *FoodItemHandler) GetFoodItems(c *gin.Context) {
	items, err := h.foodService.GetFoodItems()
	if err != nil {
		utils.LogError(err, "GetFoodItems: Error from foodService.GetFoodItems")
		respondServiceError(c, err, "Failed to fetch food items.")
		return
	}
	if items == nil {
		items = []models.FoodItem{}
	}
	c.JSON(http.StatusOK, items)
}

// CreateFoodItem handles the creation of a new food item.
func (h *FoodItemHandler) CreateFoodItem(c *gin.Context) {
	var req services.CreateFoodItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "CreateFoodItem: Failed to bind JSON")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload.", err.Error()))
		return
	}

	item, err := h.foodService.CreateFoodItem(req)
	if err != nil {
		utils.LogError(err, "CreateFoodItem: Error from foodService.CreateFoodItem")
		respondServiceError(c, err, "Failed to create food item.")
		return
	}
	c.JSON(http.StatusCreated, item)
}

// GetFoodItemByID handles fetching a single food item by ID.
func (h *FoodItemHandler) GetFoodItemByID(c *gin.Context) {
	id, err := utils.ParseID(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid food item ID format.", err.Error()))
		return
	}

	item, err := h.foodService.GetFoodItemByID(id)
	if err != nil {
		utils.LogError(err, "GetFoodItemByID: Error from foodService.GetFoodItemByID")
		respondServiceError(c, err, "Failed to fetch food item.")
		return
	}
	c.JSON(http.StatusOK, item)
}

// UpdateSoldQuantity handles updating the sold quantity of a food item.
func (h *FoodItemHandler) UpdateSoldQuantity(c *gin.Context) {
	id, err := utils.ParseID(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid food item ID format.", err.Error()))
		return
	}

	var req services.UpdateSoldQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "UpdateSoldQuantity: Failed to bind JSON")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload.", err.Error()))
		return
	}

	item, err := h.foodService.UpdateSoldQuantity(id, req)
	if err != nil {
		utils.LogError(err, "UpdateSoldQuantity: Error from foodService.UpdateSoldQuantity")
		respondServiceError(c, err, "Failed to update sold quantity.")
		return
	}
	c.JSON(http.StatusOK, item)
}

// DeleteFoodItem handles deleting a food item.
func (h *FoodItemHandler) DeleteFoodItem(c *gin.Context) {
	id, err := utils.ParseID(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid food item ID format.", err.Error()))
		return
	}

	if err := h.foodService.DeleteFoodItem(id); err != nil {
		utils.LogError(err, "DeleteFoodItem: Error from foodService.DeleteFoodItem")
		respondServiceError(c, err, "Failed to delete food item.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Item deleted successfully"})
}

// CloseSales handles closing the current sales session across all items.
func (h *FoodItemHandler) CloseSales(c *gin.Context) {
	result, err := h.foodService.CloseSales()
	if err != nil {
		utils.LogError(err, "CloseSales: Error from foodService.CloseSales")
		respondServiceError(c, err, "Failed to close sales.")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":      "Sales closed. All unsold marked as wasted.",
		"items_closed": result.ItemsClosed,
	})
}

// StartNewSales handles clearing all items to begin a new session. This is a
// destructive, irreversible operation: closed items are not archived.
func (h *FoodItemHandler) StartNewSales(c *gin.Context) {
	result, err := h.foodService.StartNewSales()
	if err != nil {
		utils.LogError(err, "StartNewSales: Error from foodService.StartNewSales")
		respondServiceError(c, err, "Failed to start new sales session.")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":       "New sales session started. All items cleared.",
		"items_removed": result.ItemsRemoved,
	})
}

// GetSessionState handles reporting the derived session status.
func (h *FoodItemHandler) GetSessionState(c *gin.Context) {
	state, err := h.foodService.GetSessionState()
	if err != nil {
		utils.LogError(err, "GetSessionState: Error from foodService.GetSessionState")
		respondServiceError(c, err, "Failed to fetch session state.")
		return
	}
	c.JSON(http.StatusOK, state)
}

// GetWasteSummary handles the waste report, optionally filtered by date.
func (h *FoodItemHandler) GetWasteSummary(c *gin.Context) {
	var date *string
	if dateStr := c.Query("date"); dateStr != "" {
		date = &dateStr
	}

	summary, err := h.foodService.GetWasteSummary(date)
	if err != nil {
		utils.LogError(err, "GetWasteSummary: Error from foodService.GetWasteSummary")
		respondServiceError(c, err, "Failed to fetch waste summary.")
		return
	}
	c.JSON(http.StatusOK, summary)
}
