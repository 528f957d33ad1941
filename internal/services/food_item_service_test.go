package services

import (
	"sort"
	"testing"
	"time"

	"foodtrack_backend/internal/models"
	"foodtrack_backend/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeFoodItemRepository is an in-memory stand-in for the Postgres repository.
// It mirrors the SQL semantics the real one relies on: UpdateSoldQuantity
// refuses closed rows, CloseAll clamps and flags in one shot, DeleteAll clears
// everything.
type fakeFoodItemRepository struct {
	items  map[int64]models.FoodItem
	nextID int64
}

func newFakeFoodItemRepository() *fakeFoodItemRepository {
	return &fakeFoodItemRepository{items: map[int64]models.FoodItem{}, nextID: 1}
}

func (f *fakeFoodItemRepository) Create(_ repositories.SQLExecutor, item *models.FoodItem) (int64, error) {
	item.ID = f.nextID
	f.nextID++
	item.CreatedAt = time.Now()
	item.UpdatedAt = item.CreatedAt
	item.ComputeWasted()
	f.items[item.ID] = *item
	return item.ID, nil
}

func (f *fakeFoodItemRepository) GetByID(id int64) (*models.FoodItem, error) {
	item, ok := f.items[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	item.ComputeWasted()
	return &item, nil
}

func (f *fakeFoodItemRepository) GetAll() ([]models.FoodItem, error) {
	items := make([]models.FoodItem, 0, len(f.items))
	for _, item := range f.items {
		item.ComputeWasted()
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].Date != items[j].Date {
			return items[i].Date > items[j].Date
		}
		return items[i].TimeSlot < items[j].TimeSlot
	})
	return items, nil
}

func (f *fakeFoodItemRepository) UpdateSoldQuantity(_ repositories.SQLExecutor, id int64, quantitySold int) error {
	item, ok := f.items[id]
	if !ok || item.SalesClosed {
		return repositories.ErrNotFound
	}
	item.QuantitySold = quantitySold
	item.UpdatedAt = time.Now()
	f.items[id] = item
	return nil
}

func (f *fakeFoodItemRepository) Delete(_ repositories.SQLExecutor, id int64) error {
	if _, ok := f.items[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(f.items, id)
	return nil
}

func (f *fakeFoodItemRepository) CloseAll() (int64, error) {
	for id, item := range f.items {
		if item.QuantitySold > item.QuantityPrepared {
			item.QuantitySold = item.QuantityPrepared
		}
		item.SalesClosed = true
		f.items[id] = item
	}
	return int64(len(f.items)), nil
}

func (f *fakeFoodItemRepository) DeleteAll() (int64, error) {
	removed := int64(len(f.items))
	f.items = map[int64]models.FoodItem{}
	return removed, nil
}

func (f *fakeFoodItemRepository) CountByStatus() (int, int, error) {
	total, closed := 0, 0
	for _, item := range f.items {
		total++
		if item.SalesClosed {
			closed++
		}
	}
	return total, closed, nil
}

func (f *fakeFoodItemRepository) GetWasteBySlot(date *string) ([]models.WasteSlotSummary, error) {
	bySlot := map[string]*models.WasteSlotSummary{}
	for _, item := range f.items {
		if date != nil && item.Date != *date {
			continue
		}
		s, ok := bySlot[item.TimeSlot]
		if !ok {
			s = &models.WasteSlotSummary{TimeSlot: item.TimeSlot}
			bySlot[item.TimeSlot] = s
		}
		wasted := item.QuantityPrepared - item.QuantitySold
		s.QuantityPrepared += item.QuantityPrepared
		s.QuantitySold += item.QuantitySold
		s.QuantityWasted += wasted
		s.WasteValue += float64(wasted) * item.Price
	}
	summaries := []models.WasteSlotSummary{}
	for _, s := range bySlot {
		summaries = append(summaries, *s)
	}
	sort.Slice(summaries, func(i, j int) bool { return summaries[i].TimeSlot < summaries[j].TimeSlot })
	return summaries, nil
}

func newTestService() (FoodItemService, *fakeFoodItemRepository) {
	repo := newFakeFoodItemRepository()
	return NewFoodItemService(repo, nil), repo
}

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }
func strPtr(s string) *string     { return &s }

func samosaRequest() CreateFoodItemRequest {
	return CreateFoodItemRequest{
		Name:             "Samosa",
		Date:             "2024-05-01",
		TimeSlot:         models.TimeSlotLunch,
		QuantityPrepared: intPtr(100),
		Price:            floatPtr(10.0),
	}
}

func TestCreateFoodItemDefaults(t *testing.T) {
	svc, _ := newTestService()

	item, err := svc.CreateFoodItem(samosaRequest())
	require.NoError(t, err)

	assert.Equal(t, int64(1), item.ID)
	assert.Equal(t, 0, item.QuantitySold)
	assert.Equal(t, 100, item.QuantityWasted)
	assert.False(t, item.SalesClosed)
}

func TestCreateFoodItemValidation(t *testing.T) {
	svc, _ := newTestService()

	cases := []struct {
		name   string
		mutate func(*CreateFoodItemRequest)
	}{
		{"empty name", func(r *CreateFoodItemRequest) { r.Name = "   " }},
		{"bad date", func(r *CreateFoodItemRequest) { r.Date = "01-05-2024" }},
		{"empty time slot", func(r *CreateFoodItemRequest) { r.TimeSlot = "" }},
		{"missing prepared", func(r *CreateFoodItemRequest) { r.QuantityPrepared = nil }},
		{"negative prepared", func(r *CreateFoodItemRequest) { r.QuantityPrepared = intPtr(-1) }},
		{"missing price", func(r *CreateFoodItemRequest) { r.Price = nil }},
		{"negative price", func(r *CreateFoodItemRequest) { r.Price = floatPtr(-0.5) }},
		{"negative sold", func(r *CreateFoodItemRequest) { r.QuantitySold = intPtr(-1) }},
		{"sold above prepared", func(r *CreateFoodItemRequest) { r.QuantitySold = intPtr(101) }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := samosaRequest()
			tc.mutate(&req)
			_, err := svc.CreateFoodItem(req)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}

	items, err := svc.GetFoodItems()
	require.NoError(t, err)
	assert.Empty(t, items, "failed creations must have no side effect")
}

func TestUpdateSoldQuantity(t *testing.T) {
	svc, _ := newTestService()
	item, err := svc.CreateFoodItem(samosaRequest())
	require.NoError(t, err)

	updated, err := svc.UpdateSoldQuantity(item.ID, UpdateSoldQuantityRequest{QuantitySold: intPtr(80)})
	require.NoError(t, err)
	assert.Equal(t, 80, updated.QuantitySold)
	assert.Equal(t, 20, updated.QuantityWasted)
}

func TestUpdateSoldQuantityRejectsOversell(t *testing.T) {
	svc, _ := newTestService()
	req := samosaRequest()
	req.QuantityPrepared = intPtr(50)
	item, err := svc.CreateFoodItem(req)
	require.NoError(t, err)

	_, err = svc.UpdateSoldQuantity(item.ID, UpdateSoldQuantityRequest{QuantitySold: intPtr(60)})
	assert.ErrorIs(t, err, ErrValidation)

	stored, err := svc.GetFoodItemByID(item.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, stored.QuantitySold, "state must be unchanged after a rejected update")
}

func TestUpdateSoldQuantityRejectsNegative(t *testing.T) {
	svc, _ := newTestService()
	item, err := svc.CreateFoodItem(samosaRequest())
	require.NoError(t, err)

	_, err = svc.UpdateSoldQuantity(item.ID, UpdateSoldQuantityRequest{QuantitySold: intPtr(-5)})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestUpdateSoldQuantityUnknownID(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.UpdateSoldQuantity(42, UpdateSoldQuantityRequest{QuantitySold: intPtr(1)})
	assert.ErrorIs(t, err, ErrFoodItemNotFound)
}

func TestDeleteFoodItem(t *testing.T) {
	svc, _ := newTestService()
	item, err := svc.CreateFoodItem(samosaRequest())
	require.NoError(t, err)

	require.NoError(t, svc.DeleteFoodItem(item.ID))
	assert.ErrorIs(t, svc.DeleteFoodItem(item.ID), ErrFoodItemNotFound)
}

func TestSalesLifecycle(t *testing.T) {
	svc, _ := newTestService()

	// The full scenario: add, sell, close, then verify the session is locked.
	item, err := svc.CreateFoodItem(samosaRequest())
	require.NoError(t, err)

	_, err = svc.UpdateSoldQuantity(item.ID, UpdateSoldQuantityRequest{QuantitySold: intPtr(80)})
	require.NoError(t, err)

	result, err := svc.CloseSales()
	require.NoError(t, err)
	assert.Equal(t, int64(1), result.ItemsClosed)

	closedItem, err := svc.GetFoodItemByID(item.ID)
	require.NoError(t, err)
	assert.True(t, closedItem.SalesClosed)
	assert.Equal(t, 80, closedItem.QuantitySold, "already-valid quantities are untouched by close")

	_, err = svc.UpdateSoldQuantity(item.ID, UpdateSoldQuantityRequest{QuantitySold: intPtr(90)})
	assert.ErrorIs(t, err, ErrSalesClosed)

	unchanged, err := svc.GetFoodItemByID(item.ID)
	require.NoError(t, err)
	assert.Equal(t, 80, unchanged.QuantitySold)
}

func TestCloseSalesClampsDrift(t *testing.T) {
	svc, repo := newTestService()
	item, err := svc.CreateFoodItem(samosaRequest())
	require.NoError(t, err)

	// Inject drift below the service, as a misbehaving front-end once could.
	drifted := repo.items[item.ID]
	drifted.QuantitySold = 120
	repo.items[item.ID] = drifted

	_, err = svc.CloseSales()
	require.NoError(t, err)

	closedItem, err := svc.GetFoodItemByID(item.ID)
	require.NoError(t, err)
	assert.Equal(t, 100, closedItem.QuantitySold)
	assert.Equal(t, 0, closedItem.QuantityWasted)
}

func TestCloseSalesIdempotent(t *testing.T) {
	svc, _ := newTestService()
	_, err := svc.CreateFoodItem(samosaRequest())
	require.NoError(t, err)

	_, err = svc.CloseSales()
	require.NoError(t, err)
	first, err := svc.GetFoodItems()
	require.NoError(t, err)

	_, err = svc.CloseSales()
	require.NoError(t, err)
	second, err := svc.GetFoodItems()
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestCloseSalesEmptyCollection(t *testing.T) {
	svc, _ := newTestService()

	result, err := svc.CloseSales()
	require.NoError(t, err)
	assert.Equal(t, int64(0), result.ItemsClosed)
}

func TestStartNewSalesClearsAll(t *testing.T) {
	svc, _ := newTestService()
	_, err := svc.CreateFoodItem(samosaRequest())
	require.NoError(t, err)
	req := samosaRequest()
	req.Name = "Idli"
	req.TimeSlot = models.TimeSlotBreakfast
	_, err = svc.CreateFoodItem(req)
	require.NoError(t, err)

	_, err = svc.CloseSales()
	require.NoError(t, err)

	result, err := svc.StartNewSales()
	require.NoError(t, err)
	assert.Equal(t, int64(2), result.ItemsRemoved)

	items, err := svc.GetFoodItems()
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestStartNewSalesEmptyCollection(t *testing.T) {
	svc, _ := newTestService()

	result, err := svc.StartNewSales()
	require.NoError(t, err)
	assert.Equal(t, int64(0), result.ItemsRemoved)
}

func TestCreateRejectedWhileSessionClosed(t *testing.T) {
	svc, _ := newTestService()
	_, err := svc.CreateFoodItem(samosaRequest())
	require.NoError(t, err)
	_, err = svc.CloseSales()
	require.NoError(t, err)

	_, err = svc.CreateFoodItem(samosaRequest())
	assert.ErrorIs(t, err, ErrSalesClosed)

	// Clearing the ledger reopens the session.
	_, err = svc.StartNewSales()
	require.NoError(t, err)
	_, err = svc.CreateFoodItem(samosaRequest())
	assert.NoError(t, err)
}

func TestGetSessionState(t *testing.T) {
	svc, _ := newTestService()

	state, err := svc.GetSessionState()
	require.NoError(t, err)
	assert.Equal(t, models.SessionOpen, state.Status, "empty collection counts as open")

	_, err = svc.CreateFoodItem(samosaRequest())
	require.NoError(t, err)

	state, err = svc.GetSessionState()
	require.NoError(t, err)
	assert.Equal(t, models.SessionOpen, state.Status)
	assert.Equal(t, 1, state.OpenItems)

	_, err = svc.CloseSales()
	require.NoError(t, err)

	state, err = svc.GetSessionState()
	require.NoError(t, err)
	assert.Equal(t, models.SessionClosed, state.Status)
	assert.Equal(t, 0, state.OpenItems)
	assert.Equal(t, 1, state.ClosedItems)
}

func TestListOrdering(t *testing.T) {
	svc, _ := newTestService()

	add := func(name, date, slot string) {
		req := samosaRequest()
		req.Name = name
		req.Date = date
		req.TimeSlot = slot
		_, err := svc.CreateFoodItem(req)
		require.NoError(t, err)
	}
	add("Poha", "2024-05-01", models.TimeSlotBreakfast)
	add("Samosa", "2024-05-02", models.TimeSlotLunch)
	add("Idli", "2024-05-02", models.TimeSlotBreakfast)

	items, err := svc.GetFoodItems()
	require.NoError(t, err)
	require.Len(t, items, 3)

	// Newest date first, then lexical slot order within a date.
	assert.Equal(t, "Idli", items[0].Name)
	assert.Equal(t, "Samosa", items[1].Name)
	assert.Equal(t, "Poha", items[2].Name)
}

func TestDerivedWasteNeverNegative(t *testing.T) {
	svc, _ := newTestService()
	item, err := svc.CreateFoodItem(samosaRequest())
	require.NoError(t, err)

	for _, sold := range []int{0, 50, 100} {
		updated, err := svc.UpdateSoldQuantity(item.ID, UpdateSoldQuantityRequest{QuantitySold: intPtr(sold)})
		require.NoError(t, err)
		assert.Equal(t, updated.QuantityPrepared-updated.QuantitySold, updated.QuantityWasted)
		assert.GreaterOrEqual(t, updated.QuantityWasted, 0)
	}
}

func TestGetWasteSummary(t *testing.T) {
	svc, _ := newTestService()

	req := samosaRequest()
	req.QuantitySold = intPtr(80)
	_, err := svc.CreateFoodItem(req)
	require.NoError(t, err)

	breakfast := samosaRequest()
	breakfast.Name = "Poha"
	breakfast.TimeSlot = models.TimeSlotBreakfast
	breakfast.QuantityPrepared = intPtr(40)
	breakfast.QuantitySold = intPtr(40)
	breakfast.Price = floatPtr(5.0)
	_, err = svc.CreateFoodItem(breakfast)
	require.NoError(t, err)

	summary, err := svc.GetWasteSummary(nil)
	require.NoError(t, err)
	assert.Equal(t, 140, summary.QuantityPrepared)
	assert.Equal(t, 120, summary.QuantitySold)
	assert.Equal(t, 20, summary.QuantityWasted)
	assert.InDelta(t, 200.0, summary.WasteValue, 1e-9)
	require.Len(t, summary.BySlot, 2)
	assert.Equal(t, models.TimeSlotBreakfast, summary.BySlot[0].TimeSlot)
	assert.Equal(t, models.TimeSlotLunch, summary.BySlot[1].TimeSlot)
}

func TestGetWasteSummaryDateFilter(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.CreateFoodItem(samosaRequest())
	require.NoError(t, err)
	other := samosaRequest()
	other.Date = "2024-05-02"
	_, err = svc.CreateFoodItem(other)
	require.NoError(t, err)

	summary, err := svc.GetWasteSummary(strPtr("2024-05-01"))
	require.NoError(t, err)
	assert.Equal(t, 100, summary.QuantityPrepared)

	_, err = svc.GetWasteSummary(strPtr("yesterday"))
	assert.ErrorIs(t, err, ErrValidation)
}
