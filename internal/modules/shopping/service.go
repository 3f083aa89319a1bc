package shopping

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/georgemunganga/centimos-backend/internal/apperr"
	"github.com/georgemunganga/centimos-backend/internal/metrics"
	"github.com/georgemunganga/centimos-backend/internal/modules/catalog"
	"github.com/georgemunganga/centimos-backend/internal/modules/pricing"
	"github.com/google/uuid"
)

// Service defines shopping list business logic. Every operation takes the
// caller's user id and fails with ErrNotFound for a missing list and
// ErrForbidden for somebody else's.
type Service interface {
	CreateList(ctx context.Context, userID uuid.UUID, req CreateListRequest) (*ShoppingList, error)
	ListLists(ctx context.Context, userID uuid.UUID) ([]*ShoppingList, error)
	GetList(ctx context.Context, userID, listID uuid.UUID) (*ShoppingList, error)
	DeleteList(ctx context.Context, userID, listID uuid.UUID) error

	// AddItem adds a catalog product to an ACTIVE list. Adding a product
	// already on the list only increases its quantity.
	AddItem(ctx context.Context, userID, listID uuid.UUID, req AddItemRequest) (*ShoppingList, error)

	// UpdateItem patches an item of an ACTIVE list. Marking an item
	// purchased with a planned price and a store logs that price.
	UpdateItem(ctx context.Context, userID, listID, itemID uuid.UUID, req UpdateItemRequest) (*ListItem, error)

	RemoveItem(ctx context.Context, userID, listID, itemID uuid.UUID) error

	// UpdateList patches the list header. A COMPLETED list accepts only a
	// patch that reopens it, which also clears every planned price.
	UpdateList(ctx context.Context, userID, listID uuid.UUID, req UpdateListRequest) (*ShoppingList, error)

	// CompleteList marks every item purchased, assigns storeID to items
	// without a store, logs planned prices and moves the list to COMPLETED,
	// all in one transaction.
	CompleteList(ctx context.Context, userID, listID, storeID uuid.UUID) (*ShoppingList, error)
}

type service struct {
	repo    Repository
	metrics *metrics.Registry
	log     *slog.Logger
}

// NewService creates a new shopping list service.
func NewService(repo Repository, m *metrics.Registry, log *slog.Logger) Service {
	return &service{repo: repo, metrics: m, log: log}
}

// MaxQuantity is the largest item quantity the INTEGER column holds.
const MaxQuantity = math.MaxInt32

// validTransitions lists the status changes UpdateList may apply.
// ACTIVE to COMPLETED is reachable only through CompleteList.
var validTransitions = map[Status][]Status{
	StatusActive:    {StatusActive},
	StatusCompleted: {StatusActive},
}

func canTransition(from, to Status) bool {
	for _, s := range validTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

func (s *service) CreateList(ctx context.Context, userID uuid.UUID, req CreateListRequest) (*ShoppingList, error) {
	name, err := checkName(req.Name)
	if err != nil {
		return nil, err
	}
	currency, err := checkCurrency(req.Currency)
	if err != nil {
		return nil, err
	}
	if req.BudgetLimit != nil && req.BudgetLimit.IsNegative() {
		return nil, apperr.Invalid("budget_limit must not be negative")
	}

	l := &ShoppingList{
		ID:          uuid.New(),
		UserID:      userID,
		Name:        name,
		BudgetLimit: req.BudgetLimit,
		Currency:    currency,
		Status:      StatusActive,
		Items:       []*ListItem{},
	}
	if err := s.repo.CreateList(ctx, l); err != nil {
		return nil, err
	}
	return l, nil
}

func (s *service) ListLists(ctx context.Context, userID uuid.UUID) ([]*ShoppingList, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *service) GetList(ctx context.Context, userID, listID uuid.UUID) (*ShoppingList, error) {
	l, err := s.repo.GetList(ctx, listID)
	if err != nil {
		return nil, err
	}
	if err := checkOwner(l, userID); err != nil {
		return nil, err
	}
	return l, nil
}

func (s *service) DeleteList(ctx context.Context, userID, listID uuid.UUID) error {
	return s.repo.WithinTx(ctx, func(tx Tx) error {
		if _, err := lockOwned(ctx, tx, userID, listID); err != nil {
			return err
		}
		return tx.DeleteList(ctx, listID)
	})
}

func (s *service) AddItem(ctx context.Context, userID, listID uuid.UUID, req AddItemRequest) (*ShoppingList, error) {
	if strings.TrimSpace(req.Barcode) == "" {
		return nil, apperr.Invalid("product_barcode is required")
	}
	barcode := catalog.Normalize(req.Barcode)
	qty := req.Quantity
	if qty == 0 {
		qty = 1
	}
	if qty < 1 || qty > MaxQuantity {
		return nil, apperr.Invalid("quantity must be between 1 and %d", MaxQuantity)
	}

	var out *ShoppingList
	err := s.repo.WithinTx(ctx, func(tx Tx) error {
		l, err := lockOwned(ctx, tx, userID, listID)
		if err != nil {
			return err
		}
		if l.Status != StatusActive {
			return fmt.Errorf("%w: items can only be added to an ACTIVE list", apperr.ErrInvalidTransition)
		}
		if ok, err := tx.ProductExists(ctx, barcode); err != nil {
			return err
		} else if !ok {
			return apperr.NotFound("product")
		}
		if req.StoreID != nil {
			if err := storeExists(ctx, tx, *req.StoreID); err != nil {
				return err
			}
		}

		if it := l.itemFor(barcode); it != nil {
			if it.Quantity > MaxQuantity-qty {
				return apperr.Invalid("quantity would exceed %d", MaxQuantity)
			}
			it.Quantity += qty
			if err := tx.UpdateItem(ctx, it); err != nil {
				return err
			}
		} else {
			it := &ListItem{
				ID:       uuid.New(),
				ListID:   l.ID,
				Barcode:  barcode,
				Quantity: qty,
				StoreID:  req.StoreID,
			}
			if err := tx.InsertItem(ctx, it); err != nil {
				return err
			}
			l.Items = append(l.Items, it)
		}
		out = l
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *service) UpdateItem(ctx context.Context, userID, listID, itemID uuid.UUID, req UpdateItemRequest) (*ListItem, error) {
	if err := checkItemPatch(req); err != nil {
		return nil, err
	}

	var (
		out               *ListItem
		logged, duplicate bool
	)
	err := s.repo.WithinTx(ctx, func(tx Tx) error {
		l, err := lockOwned(ctx, tx, userID, listID)
		if err != nil {
			return err
		}
		if l.Status != StatusActive {
			return fmt.Errorf("%w: list is COMPLETED, reopen it before editing items", apperr.ErrInvalidTransition)
		}
		it := l.item(itemID)
		if it == nil {
			return apperr.NotFound("list item")
		}

		if req.StoreID.Set && req.StoreID.Value != nil {
			if err := storeExists(ctx, tx, *req.StoreID.Value); err != nil {
				return err
			}
		}
		if req.Quantity.Set {
			it.Quantity = *req.Quantity.Value
		}
		if req.Purchased.Set {
			it.Purchased = *req.Purchased.Value
		}
		req.PlannedPrice.apply(&it.PlannedPrice)
		req.StoreID.apply(&it.StoreID)

		if err := tx.UpdateItem(ctx, it); err != nil {
			return err
		}
		if req.Purchased.Set && it.Purchased && it.PlannedPrice != nil && it.StoreID != nil {
			written, err := recordPurchase(ctx, tx, l, it)
			if err != nil {
				return err
			}
			logged, duplicate = written, !written
		}
		out = it
		return nil
	})
	if err != nil {
		return nil, err
	}
	if s.metrics != nil {
		if logged {
			s.metrics.ObservationsRecorded.Inc()
		}
		if duplicate {
			s.metrics.ObservationsDeduplicated.Inc()
		}
	}
	return out, nil
}

func (s *service) RemoveItem(ctx context.Context, userID, listID, itemID uuid.UUID) error {
	return s.repo.WithinTx(ctx, func(tx Tx) error {
		l, err := lockOwned(ctx, tx, userID, listID)
		if err != nil {
			return err
		}
		if l.Status != StatusActive {
			return fmt.Errorf("%w: items can only be removed from an ACTIVE list", apperr.ErrInvalidTransition)
		}
		if l.item(itemID) == nil {
			return apperr.NotFound("list item")
		}
		return tx.DeleteItem(ctx, itemID)
	})
}

func (s *service) UpdateList(ctx context.Context, userID, listID uuid.UUID, req UpdateListRequest) (*ShoppingList, error) {
	if err := checkListPatch(req); err != nil {
		return nil, err
	}

	var (
		out      *ShoppingList
		reopened bool
	)
	err := s.repo.WithinTx(ctx, func(tx Tx) error {
		l, err := lockOwned(ctx, tx, userID, listID)
		if err != nil {
			return err
		}

		target := l.Status
		if req.Status.Set {
			target = *req.Status.Value
			if !canTransition(l.Status, target) {
				return fmt.Errorf("%w: cannot move list from %s to %s", apperr.ErrInvalidTransition, l.Status, target)
			}
		}
		if l.Status == StatusCompleted && target != StatusActive {
			return fmt.Errorf("%w: list is COMPLETED, set status to ACTIVE to reopen it", apperr.ErrInvalidTransition)
		}

		if l.Status == StatusCompleted {
			if err := tx.ClearPlannedPrices(ctx, l.ID); err != nil {
				return err
			}
			for _, it := range l.Items {
				it.PlannedPrice = nil
			}
			reopened = true
		}

		if req.Name.Set {
			l.Name = strings.TrimSpace(*req.Name.Value)
		}
		if req.Currency.Set {
			l.Currency = strings.ToUpper(strings.TrimSpace(*req.Currency.Value))
		}
		req.BudgetLimit.apply(&l.BudgetLimit)
		l.Status = target

		if err := tx.UpdateList(ctx, l); err != nil {
			return err
		}
		out = l
		return nil
	})
	if err != nil {
		return nil, err
	}
	if reopened {
		s.log.InfoContext(ctx, "list reopened", "list_id", listID, "user_id", userID)
	}
	return out, nil
}

func (s *service) CompleteList(ctx context.Context, userID, listID, storeID uuid.UUID) (*ShoppingList, error) {
	var (
		out     *ShoppingList
		written int
		skipped int
	)
	err := s.repo.WithinTx(ctx, func(tx Tx) error {
		l, err := lockOwned(ctx, tx, userID, listID)
		if err != nil {
			return err
		}
		if l.Status != StatusActive {
			return fmt.Errorf("%w: list is already COMPLETED", apperr.ErrInvalidTransition)
		}
		if err := storeExists(ctx, tx, storeID); err != nil {
			return err
		}

		for _, it := range l.Items {
			if it.PlannedPrice == nil && it.Purchased {
				continue
			}
			changed := !it.Purchased || it.StoreID == nil
			it.Purchased = true
			if it.StoreID == nil {
				fallback := storeID
				it.StoreID = &fallback
			}
			if changed {
				if err := tx.UpdateItem(ctx, it); err != nil {
					return err
				}
			}
			if it.PlannedPrice == nil {
				continue
			}
			ok, err := recordPurchase(ctx, tx, l, it)
			if err != nil {
				return err
			}
			if ok {
				written++
			} else {
				skipped++
			}
		}

		l.Status = StatusCompleted
		if err := tx.UpdateList(ctx, l); err != nil {
			return err
		}
		out = l
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.ListsCompleted.Inc()
		s.metrics.ObservationsRecorded.Add(float64(written))
		s.metrics.ObservationsDeduplicated.Add(float64(skipped))
	}
	s.log.InfoContext(ctx, "list completed",
		"list_id", listID, "user_id", userID, "store_id", storeID,
		"items", len(out.Items), "prices_logged", written, "prices_deduplicated", skipped)
	return out, nil
}

// recordPurchase logs the planned price of a purchased item at its store
// unless the same user already logged that price for that product there.
// Items without a planned price or a store are skipped.
func recordPurchase(ctx context.Context, tx Tx, l *ShoppingList, it *ListItem) (bool, error) {
	if it.PlannedPrice == nil || it.StoreID == nil {
		return false, nil
	}
	return tx.RecordPriceIfAbsent(ctx, &pricing.Observation{
		Barcode:  it.Barcode,
		StoreID:  *it.StoreID,
		UserID:   l.UserID,
		Price:    *it.PlannedPrice,
		Currency: l.Currency,
	})
}

// ── helpers ──────────────────────────────────────────────────────────────────

func lockOwned(ctx context.Context, tx Tx, userID, listID uuid.UUID) (*ShoppingList, error) {
	l, err := tx.LockList(ctx, listID)
	if err != nil {
		return nil, err
	}
	if err := checkOwner(l, userID); err != nil {
		return nil, err
	}
	return l, nil
}

func checkOwner(l *ShoppingList, userID uuid.UUID) error {
	if l.UserID != userID {
		return fmt.Errorf("%w: shopping list belongs to another user", apperr.ErrForbidden)
	}
	return nil
}

func storeExists(ctx context.Context, tx Tx, id uuid.UUID) error {
	ok, err := tx.StoreExists(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.NotFound("store")
	}
	return nil
}

func checkName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || len(name) > 100 {
		return "", apperr.Invalid("name is required and must be at most 100 characters")
	}
	return name, nil
}

func checkCurrency(currency string) (string, error) {
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if currency == "" {
		return DefaultCurrency, nil
	}
	if len(currency) > 5 {
		return "", apperr.Invalid("currency must be at most 5 characters")
	}
	return currency, nil
}

func checkItemPatch(req UpdateItemRequest) error {
	if req.Quantity.Set && (req.Quantity.Value == nil || *req.Quantity.Value < 1 || *req.Quantity.Value > MaxQuantity) {
		return apperr.Invalid("quantity must be between 1 and %d", MaxQuantity)
	}
	if req.Purchased.Set && req.Purchased.Value == nil {
		return apperr.Invalid("is_purchased cannot be null")
	}
	if req.PlannedPrice.Set && req.PlannedPrice.Value != nil {
		if err := pricing.CheckPrice("planned_price", *req.PlannedPrice.Value); err != nil {
			return err
		}
	}
	return nil
}

func checkListPatch(req UpdateListRequest) error {
	if req.Name.Set {
		if req.Name.Value == nil {
			return apperr.Invalid("name cannot be null")
		}
		if _, err := checkName(*req.Name.Value); err != nil {
			return err
		}
	}
	if req.Currency.Set {
		if req.Currency.Value == nil || strings.TrimSpace(*req.Currency.Value) == "" {
			return apperr.Invalid("currency cannot be empty")
		}
		if _, err := checkCurrency(*req.Currency.Value); err != nil {
			return err
		}
	}
	if req.BudgetLimit.Set && req.BudgetLimit.Value != nil && req.BudgetLimit.Value.IsNegative() {
		return apperr.Invalid("budget_limit must not be negative")
	}
	if req.Status.Set && (req.Status.Value == nil || !req.Status.Value.valid()) {
		return apperr.Invalid("status must be ACTIVE or COMPLETED")
	}
	return nil
}
