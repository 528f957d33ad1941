package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"foodtrack_backend/internal/models"
)

// FoodItemRepository defines the interface for food-item database operations.
// Bulk methods take an SQLExecutor so the service layer can run them inside a
// transaction.
type FoodItemRepository interface {
	Create(executor SQLExecutor, item *models.FoodItem) (int64, error)
	GetByID(id int64) (*models.FoodItem, error)
	GetAll() ([]models.FoodItem, error)
	// UpdateSoldQuantity persists a new quantity_sold for an open item. The
	// UPDATE itself refuses closed rows; ErrNotFound is returned when no open
	// row with the given id exists.
	UpdateSoldQuantity(executor SQLExecutor, id int64, quantitySold int) error
	Delete(executor SQLExecutor, id int64) error

	// CloseAll clamps quantity_sold to quantity_prepared and flags every row as
	// closed, in one transaction. Returns the number of rows touched.
	CloseAll() (int64, error)
	// DeleteAll removes every row in one transaction. Returns the number of
	// rows removed.
	DeleteAll() (int64, error)

	CountByStatus() (total int, closed int, err error)
	GetWasteBySlot(date *string) ([]models.WasteSlotSummary, error)
}

type foodItemRepository struct {
	db *sql.DB
}

// NewFoodItemRepository creates a new instance of FoodItemRepository.
func NewFoodItemRepository(db *sql.DB) FoodItemRepository {
	return &foodItemRepository{db: db}
}

const foodItemColumns = `id, name, date, time_slot, quantity_prepared, quantity_sold, price, sales_closed, created_at, updated_at`

func scanFoodItem(s scanner) (*models.FoodItem, error) {
	item := &models.FoodItem{}
	err := s.Scan(
		&item.ID, &item.Name, &item.Date, &item.TimeSlot,
		&item.QuantityPrepared, &item.QuantitySold, &item.Price,
		&item.SalesClosed, &item.CreatedAt, &item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	item.ComputeWasted()
	return item, nil
}

func (r *foodItemRepository) Create(executor SQLExecutor, item *models.FoodItem) (int64, error) {
	query := `INSERT INTO food_items (name, date, time_slot, quantity_prepared, quantity_sold, price, sales_closed, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	          RETURNING id, created_at, updated_at`
	currentTime := time.Now()
	err := executor.QueryRow(query,
		item.Name, item.Date, item.TimeSlot,
		item.QuantityPrepared, item.QuantitySold, item.Price,
		item.SalesClosed, currentTime, currentTime,
	).Scan(&item.ID, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return 0, fmt.Errorf("%w: creating food item: %v", ErrDatabaseError, err)
	}
	item.ComputeWasted()
	return item.ID, nil
}

func (r *foodItemRepository) GetByID(id int64) (*models.FoodItem, error) {
	query := `SELECT ` + foodItemColumns + ` FROM food_items WHERE id = $1`
	item, err := scanFoodItem(r.db.QueryRow(query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting food item by ID %d: %v", ErrDatabaseError, id, err)
	}
	return item, nil
}

func (r *foodItemRepository) GetAll() ([]models.FoodItem, error) {
	items := []models.FoodItem{}
	query := `SELECT ` + foodItemColumns + ` FROM food_items ORDER BY date DESC, time_slot ASC`
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("%w: getting food items: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		item, err := scanFoodItem(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanning food item: %v", ErrDatabaseError, err)
		}
		items = append(items, *item)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating food items: %v", ErrDatabaseError, err)
	}
	return items, nil
}

func (r *foodItemRepository) UpdateSoldQuantity(executor SQLExecutor, id int64, quantitySold int) error {
	// The sales_closed guard makes the check-then-update race-free: a close
	// that lands between the service's read and this write leaves zero rows
	// affected instead of mutating a closed item.
	query := `UPDATE food_items SET quantity_sold = $1, updated_at = $2
	          WHERE id = $3 AND sales_closed = FALSE`
	result, err := executor.Exec(query, quantitySold, time.Now(), id)
	if err != nil {
		return fmt.Errorf("%w: updating sold quantity for food item ID %d: %v", ErrDatabaseError, id, err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *foodItemRepository) Delete(executor SQLExecutor, id int64) error {
	query := `DELETE FROM food_items WHERE id = $1`
	result, err := executor.Exec(query, id)
	if err != nil {
		return fmt.Errorf("%w: deleting food item ID %d: %v", ErrDatabaseError, id, err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *foodItemRepository) CloseAll() (int64, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("%w: beginning close-sales transaction: %v", ErrDatabaseError, err)
	}
	defer tx.Rollback()

	// The clamp should be a no-op under the sold <= prepared invariant; it
	// closes any pre-existing drift before the flag locks the row.
	query := `UPDATE food_items
	          SET quantity_sold = LEAST(quantity_sold, quantity_prepared),
	              sales_closed = TRUE,
	              updated_at = $1`
	result, err := tx.Exec(query, time.Now())
	if err != nil {
		return 0, fmt.Errorf("%w: closing sales: %v", ErrDatabaseError, err)
	}
	rowsAffected, _ := result.RowsAffected()
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("%w: committing close-sales transaction: %v", ErrDatabaseError, err)
	}
	return rowsAffected, nil
}

func (r *foodItemRepository) DeleteAll() (int64, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("%w: beginning clear transaction: %v", ErrDatabaseError, err)
	}
	defer tx.Rollback()

	result, err := tx.Exec(`DELETE FROM food_items`)
	if err != nil {
		return 0, fmt.Errorf("%w: clearing food items: %v", ErrDatabaseError, err)
	}
	rowsAffected, _ := result.RowsAffected()
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("%w: committing clear transaction: %v", ErrDatabaseError, err)
	}
	return rowsAffected, nil
}

func (r *foodItemRepository) CountByStatus() (int, int, error) {
	var total, closed int
	query := `SELECT COUNT(*), COUNT(*) FILTER (WHERE sales_closed) FROM food_items`
	if err := r.db.QueryRow(query).Scan(&total, &closed); err != nil {
		return 0, 0, fmt.Errorf("%w: counting food items by status: %v", ErrDatabaseError, err)
	}
	return total, closed, nil
}

func (r *foodItemRepository) GetWasteBySlot(date *string) ([]models.WasteSlotSummary, error) {
	query := `SELECT time_slot,
	                 COALESCE(SUM(quantity_prepared), 0),
	                 COALESCE(SUM(quantity_sold), 0),
	                 COALESCE(SUM(quantity_prepared - quantity_sold), 0),
	                 COALESCE(SUM((quantity_prepared - quantity_sold) * price), 0)
	          FROM food_items`
	args := []interface{}{}
	if date != nil {
		query += ` WHERE date = $1`
		args = append(args, *date)
	}
	query += ` GROUP BY time_slot ORDER BY time_slot ASC`

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: aggregating waste by slot: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	summaries := []models.WasteSlotSummary{}
	for rows.Next() {
		var s models.WasteSlotSummary
		if err := rows.Scan(&s.TimeSlot, &s.QuantityPrepared, &s.QuantitySold, &s.QuantityWasted, &s.WasteValue); err != nil {
			return nil, fmt.Errorf("%w: scanning waste summary row: %v", ErrDatabaseError, err)
		}
		summaries = append(summaries, s)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating waste summary rows: %v", ErrDatabaseError, err)
	}
	return summaries, nil
}
