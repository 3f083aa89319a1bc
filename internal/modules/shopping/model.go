package shopping

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status is the lifecycle state of a shopping list.
type Status string

const (
	StatusActive    Status = "ACTIVE"
	StatusCompleted Status = "COMPLETED"
)

func (s Status) valid() bool { return s == StatusActive || s == StatusCompleted }

// DefaultCurrency applies to lists created without one.
const DefaultCurrency = "USD"

// ShoppingList is loaded and returned together with all of its items.
type ShoppingList struct {
	ID          uuid.UUID        `json:"list_id"`
	UserID      uuid.UUID        `json:"user_id"`
	Name        string           `json:"name"`
	BudgetLimit *decimal.Decimal `json:"budget_limit"`
	Currency    string           `json:"currency"`
	Status      Status           `json:"status"`
	CreatedAt   time.Time        `json:"created_at"`
	Items       []*ListItem      `json:"items"`
}

func (l *ShoppingList) item(id uuid.UUID) *ListItem {
	for _, it := range l.Items {
		if it.ID == id {
			return it
		}
	}
	return nil
}

func (l *ShoppingList) itemFor(barcode string) *ListItem {
	for _, it := range l.Items {
		if it.Barcode == barcode {
			return it
		}
	}
	return nil
}

// ListItem is one product on a list. A list holds at most one item per
// product.
type ListItem struct {
	ID           uuid.UUID        `json:"item_id"`
	ListID       uuid.UUID        `json:"list_id"`
	Barcode      string           `json:"product_barcode"`
	Quantity     int              `json:"quantity"`
	PlannedPrice *decimal.Decimal `json:"planned_price"`
	Purchased    bool             `json:"is_purchased"`
	StoreID      *uuid.UUID       `json:"store_id"`
	AddedAt      time.Time        `json:"added_at"`
}

// CreateListRequest holds the data for creating a list.
type CreateListRequest struct {
	Name        string           `json:"name"`
	BudgetLimit *decimal.Decimal `json:"budget_limit"`
	Currency    string           `json:"currency"`
}

// AddItemRequest adds a product to a list. Quantity defaults to 1.
type AddItemRequest struct {
	Barcode  string     `json:"product_barcode"`
	Quantity int        `json:"quantity"`
	StoreID  *uuid.UUID `json:"store_id"`
}

// UpdateItemRequest is a partial update; fields absent from the JSON body
// are left untouched and an explicit null clears an optional field.
type UpdateItemRequest struct {
	Quantity     Field[int]             `json:"quantity"`
	PlannedPrice Field[decimal.Decimal] `json:"planned_price"`
	Purchased    Field[bool]            `json:"is_purchased"`
	StoreID      Field[uuid.UUID]       `json:"store_id"`
}

// UpdateListRequest is a partial update of the list header.
type UpdateListRequest struct {
	Name        Field[string]          `json:"name"`
	BudgetLimit Field[decimal.Decimal] `json:"budget_limit"`
	Currency    Field[string]          `json:"currency"`
	Status      Field[Status]          `json:"status"`
}

// CompleteListRequest names the fallback store for items without one.
type CompleteListRequest struct {
	StoreID uuid.UUID `json:"store_id"`
}
