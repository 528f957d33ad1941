package services

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"foodtrack_backend/internal/models"
	"foodtrack_backend/internal/repositories"
)

// --- Custom Service Errors for Food Items ---
var (
	ErrFoodItemNotFound = errors.New("food item not found")
	ErrValidation       = errors.New("validation error")
	// ErrSalesClosed is returned for any mutation the closed session forbids:
	// editing a closed item's sold quantity, or adding a new item before the
	// next session has been started.
	ErrSalesClosed = errors.New("sales are closed for the current session")
)

// --- DTOs ---

type CreateFoodItemRequest struct {
	Name             string   `json:"name" binding:"required"`
	Date             string   `json:"date" binding:"required"`
	TimeSlot         string   `json:"time_slot" binding:"required"`
	QuantityPrepared *int     `json:"quantity_prepared" binding:"required"`
	Price            *float64 `json:"price" binding:"required"`
	QuantitySold     *int     `json:"quantity_sold"` // optional, defaults to 0
}

type UpdateSoldQuantityRequest struct {
	QuantitySold *int `json:"quantity_sold" binding:"required"`
}

// CloseSalesResult reports how many items a close-sales call transitioned.
type CloseSalesResult struct {
	ItemsClosed int64 `json:"items_closed"`
}

// StartNewSalesResult reports how many items a reset removed.
type StartNewSalesResult struct {
	ItemsRemoved int64 `json:"items_removed"`
}

// --- FoodItemService Interface ---

// FoodItemService is the inventory ledger: it owns the food-item collection,
// the 0 <= quantity_sold <= quantity_prepared invariant, and the sales-session
// state machine (open -> closed via CloseSales, cleared via StartNewSales).
type FoodItemService interface {
	GetFoodItems() ([]models.FoodItem, error)
	CreateFoodItem(req CreateFoodItemRequest) (*models.FoodItem, error)
	GetFoodItemByID(id int64) (*models.FoodItem, error)
	UpdateSoldQuantity(id int64, req UpdateSoldQuantityRequest) (*models.FoodItem, error)
	DeleteFoodItem(id int64) error

	// CloseSales clamps every item's sold quantity to its prepared quantity and
	// flags the whole collection closed, atomically. Idempotent.
	CloseSales() (*CloseSalesResult, error)
	// StartNewSales unconditionally deletes every item, open or closed. The
	// previous session is not archived. Idempotent on an empty collection.
	StartNewSales() (*StartNewSalesResult, error)

	GetSessionState() (*models.SessionState, error)
	GetWasteSummary(date *string) (*models.WasteSummary, error)
}

// --- foodItemService Implementation ---

type foodItemService struct {
	foodRepo repositories.FoodItemRepository
	db       *sql.DB
}

func NewFoodItemService(repo repositories.FoodItemRepository, db *sql.DB) FoodItemService {
	return &foodItemService{
		foodRepo: repo,
		db:       db,
	}
}

func (s *foodItemService) GetFoodItems() ([]models.FoodItem, error) {
	items, err := s.foodRepo.GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to list food items: %w", err)
	}
	return items, nil
}

func (s *foodItemService) CreateFoodItem(req CreateFoodItemRequest) (*models.FoodItem, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, fmt.Errorf("%w: name cannot be empty", ErrValidation)
	}
	if _, err := time.Parse(models.DateLayout, req.Date); err != nil {
		return nil, fmt.Errorf("%w: date must be in YYYY-MM-DD format", ErrValidation)
	}
	if strings.TrimSpace(req.TimeSlot) == "" {
		return nil, fmt.Errorf("%w: time_slot cannot be empty", ErrValidation)
	}
	if req.QuantityPrepared == nil {
		return nil, fmt.Errorf("%w: quantity_prepared is required", ErrValidation)
	}
	if *req.QuantityPrepared < 0 {
		return nil, fmt.Errorf("%w: quantity_prepared cannot be negative", ErrValidation)
	}
	if req.Price == nil {
		return nil, fmt.Errorf("%w: price is required", ErrValidation)
	}
	if *req.Price < 0 {
		return nil, fmt.Errorf("%w: price cannot be negative", ErrValidation)
	}
	quantitySold := 0
	if req.QuantitySold != nil {
		quantitySold = *req.QuantitySold
	}
	if quantitySold < 0 {
		return nil, fmt.Errorf("%w: quantity_sold cannot be negative", ErrValidation)
	}
	if quantitySold > *req.QuantityPrepared {
		return nil, fmt.Errorf("%w: quantity_sold (%d) cannot exceed quantity_prepared (%d)",
			ErrValidation, quantitySold, *req.QuantityPrepared)
	}

	// A closed session accepts no new batches until the next one is started.
	state, err := s.GetSessionState()
	if err != nil {
		return nil, err
	}
	if state.Status == models.SessionClosed {
		return nil, fmt.Errorf("%w: start a new sales session before adding items", ErrSalesClosed)
	}

	item := &models.FoodItem{
		Name:             strings.TrimSpace(req.Name),
		Date:             req.Date,
		TimeSlot:         strings.TrimSpace(req.TimeSlot),
		QuantityPrepared: *req.QuantityPrepared,
		QuantitySold:     quantitySold,
		Price:            *req.Price,
		SalesClosed:      false,
	}
	if _, err := s.foodRepo.Create(s.db, item); err != nil {
		return nil, fmt.Errorf("failed to create food item: %w", err)
	}
	return item, nil
}

func (s *foodItemService) GetFoodItemByID(id int64) (*models.FoodItem, error) {
	item, err := s.foodRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrFoodItemNotFound
		}
		return nil, fmt.Errorf("failed to get food item by ID: %w", err)
	}
	return item, nil
}

func (s *foodItemService) UpdateSoldQuantity(id int64, req UpdateSoldQuantityRequest) (*models.FoodItem, error) {
	if req.QuantitySold == nil {
		return nil, fmt.Errorf("%w: quantity_sold is required", ErrValidation)
	}
	quantitySold := *req.QuantitySold

	item, err := s.GetFoodItemByID(id)
	if err != nil {
		return nil, err
	}
	if item.SalesClosed {
		return nil, fmt.Errorf("%w: sold quantity for item %d is locked", ErrSalesClosed, id)
	}
	if quantitySold < 0 {
		return nil, fmt.Errorf("%w: quantity_sold cannot be negative", ErrValidation)
	}
	if quantitySold > item.QuantityPrepared {
		return nil, fmt.Errorf("%w: quantity_sold (%d) cannot exceed quantity_prepared (%d)",
			ErrValidation, quantitySold, item.QuantityPrepared)
	}

	if err := s.foodRepo.UpdateSoldQuantity(s.db, id, quantitySold); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			// The row existed a moment ago: a concurrent close locked it.
			return nil, fmt.Errorf("%w: sold quantity for item %d is locked", ErrSalesClosed, id)
		}
		return nil, fmt.Errorf("failed to update sold quantity: %w", err)
	}

	// Refetch for fresh timestamps.
	return s.GetFoodItemByID(id)
}

func (s *foodItemService) DeleteFoodItem(id int64) error {
	if err := s.foodRepo.Delete(s.db, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrFoodItemNotFound
		}
		return fmt.Errorf("failed to delete food item: %w", err)
	}
	return nil
}

func (s *foodItemService) CloseSales() (*CloseSalesResult, error) {
	// The repository runs the bulk transition in a single transaction; a
	// concurrent reader never observes a partially closed collection.
	closed, err := s.foodRepo.CloseAll()
	if err != nil {
		return nil, fmt.Errorf("failed to close sales: %w", err)
	}
	return &CloseSalesResult{ItemsClosed: closed}, nil
}

func (s *foodItemService) StartNewSales() (*StartNewSalesResult, error) {
	removed, err := s.foodRepo.DeleteAll()
	if err != nil {
		return nil, fmt.Errorf("failed to start new sales session: %w", err)
	}
	return &StartNewSalesResult{ItemsRemoved: removed}, nil
}

func (s *foodItemService) GetSessionState() (*models.SessionState, error) {
	total, closed, err := s.foodRepo.CountByStatus()
	if err != nil {
		return nil, fmt.Errorf("failed to get session state: %w", err)
	}
	state := &models.SessionState{
		Status:      models.SessionOpen,
		TotalItems:  total,
		OpenItems:   total - closed,
		ClosedItems: closed,
	}
	// An empty collection counts as an open session: there is nothing to lock,
	// and the next add starts recording the new day.
	if total > 0 && closed == total {
		state.Status = models.SessionClosed
	}
	return state, nil
}

func (s *foodItemService) GetWasteSummary(date *string) (*models.WasteSummary, error) {
	if date != nil {
		if _, err := time.Parse(models.DateLayout, *date); err != nil {
			return nil, fmt.Errorf("%w: date must be in YYYY-MM-DD format", ErrValidation)
		}
	}
	bySlot, err := s.foodRepo.GetWasteBySlot(date)
	if err != nil {
		return nil, fmt.Errorf("failed to get waste summary: %w", err)
	}
	summary := &models.WasteSummary{
		Date:   date,
		BySlot: bySlot,
	}
	for _, slot := range bySlot {
		summary.QuantityPrepared += slot.QuantityPrepared
		summary.QuantitySold += slot.QuantitySold
		summary.QuantityWasted += slot.QuantityWasted
		summary.WasteValue += slot.WasteValue
	}
	return summary, nil
}
