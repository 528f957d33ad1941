package models

import "time"

// Canonical serving periods. The storage layer keeps time_slot as free text;
// these are the values the entry front-ends offer.
const (
	TimeSlotBreakfast = "Breakfast"
	TimeSlotLunch     = "Lunch"
	TimeSlotSnacks    = "Snacks"
	TimeSlotDinner    = "Dinner"
)

// TimeSlots lists the canonical serving periods in serving order.
var TimeSlots = []string{TimeSlotBreakfast, TimeSlotLunch, TimeSlotSnacks, TimeSlotDinner}

// DateLayout is the storage format for FoodItem.Date.
const DateLayout = "2006-01-02"

// FoodItem represents one batch of food prepared for sale in a specific time slot.
// QuantitySold may only change while SalesClosed is false, and must never exceed
// QuantityPrepared.
type FoodItem struct {
	ID               int64     `json:"id" db:"id"`
	Name             string    `json:"name" db:"name" binding:"required"`
	Date             string    `json:"date" db:"date" binding:"required"` // YYYY-MM-DD
	TimeSlot         string    `json:"time_slot" db:"time_slot" binding:"required"`
	QuantityPrepared int       `json:"quantity_prepared" db:"quantity_prepared"`
	QuantitySold     int       `json:"quantity_sold" db:"quantity_sold"`
	QuantityWasted   int       `json:"quantity_wasted" db:"-"` // derived, never stored
	Price            float64   `json:"price" db:"price"`
	SalesClosed      bool      `json:"sales_closed" db:"sales_closed"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time `json:"updated_at" db:"updated_at"`
}

// ComputeWasted refreshes the derived QuantityWasted field.
func (f *FoodItem) ComputeWasted() {
	f.QuantityWasted = f.QuantityPrepared - f.QuantitySold
}

// Session status values. There is no session table; the status is derived from
// the sales_closed flags of the current collection.
const (
	SessionOpen   = "open"
	SessionClosed = "closed"
)

// SessionState summarizes the current sales session.
type SessionState struct {
	Status      string `json:"status"` // SessionOpen or SessionClosed
	TotalItems  int    `json:"total_items"`
	OpenItems   int    `json:"open_items"`
	ClosedItems int    `json:"closed_items"`
}

// WasteSlotSummary aggregates waste figures for one time slot.
type WasteSlotSummary struct {
	TimeSlot         string  `json:"time_slot"`
	QuantityPrepared int     `json:"quantity_prepared"`
	QuantitySold     int     `json:"quantity_sold"`
	QuantityWasted   int     `json:"quantity_wasted"`
	WasteValue       float64 `json:"waste_value"`
}

// WasteSummary is the report returned by the waste endpoint. Date is nil when
// the report covers all dates.
type WasteSummary struct {
	Date             *string            `json:"date,omitempty"`
	QuantityPrepared int                `json:"quantity_prepared"`
	QuantitySold     int                `json:"quantity_sold"`
	QuantityWasted   int                `json:"quantity_wasted"`
	WasteValue       float64            `json:"waste_value"`
	BySlot           []WasteSlotSummary `json:"by_slot"`
}
