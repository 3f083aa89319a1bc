package shopping

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/georgemunganga/centimos-backend/internal/apperr"
	"github.com/georgemunganga/centimos-backend/internal/modules/pricing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var errInjected = errors.New("injected failure")

// memRepo is an in-memory Repository. WithinTx snapshots the whole state and
// restores it when fn fails, so tests observe real all-or-nothing behavior.
type memRepo struct {
	mu       sync.Mutex
	lists    map[uuid.UUID]*ShoppingList
	products map[string]bool
	stores   map[uuid.UUID]bool
	ledger   []pricing.Observation
	clock    time.Time

	// failOn names a Tx method that starts failing after failAfter calls.
	failOn    string
	failAfter int
	calls     map[string]int
}

func newMemRepo() *memRepo {
	return &memRepo{
		lists:    map[uuid.UUID]*ShoppingList{},
		products: map[string]bool{},
		stores:   map[uuid.UUID]bool{},
		clock:    time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC),
		calls:    map[string]int{},
	}
}

func (m *memRepo) tick() time.Time {
	m.clock = m.clock.Add(time.Millisecond)
	return m.clock
}

func (m *memRepo) CreateList(_ context.Context, l *ShoppingList) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	l.CreatedAt = m.tick()
	m.lists[l.ID] = copyList(l)
	return nil
}

func (m *memRepo) GetList(_ context.Context, id uuid.UUID) (*ShoppingList, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.lists[id]
	if !ok {
		return nil, apperr.NotFound("shopping list")
	}
	return copyList(l), nil
}

func (m *memRepo) ListByUser(_ context.Context, userID uuid.UUID) ([]*ShoppingList, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*ShoppingList{}
	for _, l := range m.lists {
		if l.UserID == userID {
			out = append(out, copyList(l))
		}
	}
	return out, nil
}

func (m *memRepo) WithinTx(_ context.Context, fn func(Tx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	lists := map[uuid.UUID]*ShoppingList{}
	for id, l := range m.lists {
		lists[id] = copyList(l)
	}
	ledger := append([]pricing.Observation(nil), m.ledger...)

	if err := fn(&memTx{m: m}); err != nil {
		m.lists, m.ledger = lists, ledger
		return err
	}
	return nil
}

// observations returns the ledger entries for barcode.
func (m *memRepo) observations(barcode string) []pricing.Observation {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []pricing.Observation
	for _, o := range m.ledger {
		if o.Barcode == barcode {
			out = append(out, o)
		}
	}
	return out
}

type memTx struct{ m *memRepo }

func (t *memTx) hit(op string) error {
	t.m.calls[op]++
	if t.m.failOn == op && t.m.calls[op] > t.m.failAfter {
		return errInjected
	}
	return nil
}

func (t *memTx) LockList(_ context.Context, id uuid.UUID) (*ShoppingList, error) {
	l, ok := t.m.lists[id]
	if !ok {
		return nil, apperr.NotFound("shopping list")
	}
	return copyList(l), nil
}

func (t *memTx) UpdateList(_ context.Context, l *ShoppingList) error {
	if err := t.hit("UpdateList"); err != nil {
		return err
	}
	stored := t.m.lists[l.ID]
	stored.Name, stored.Currency, stored.Status = l.Name, l.Currency, l.Status
	stored.BudgetLimit = copyDecimal(l.BudgetLimit)
	return nil
}

func (t *memTx) DeleteList(_ context.Context, id uuid.UUID) error {
	delete(t.m.lists, id)
	return nil
}

func (t *memTx) ClearPlannedPrices(_ context.Context, listID uuid.UUID) error {
	for _, it := range t.m.lists[listID].Items {
		it.PlannedPrice = nil
	}
	return nil
}

func (t *memTx) InsertItem(_ context.Context, it *ListItem) error {
	if err := t.hit("InsertItem"); err != nil {
		return err
	}
	l := t.m.lists[it.ListID]
	for _, existing := range l.Items {
		if existing.Barcode == it.Barcode {
			return fmt.Errorf("list item already exists: %w", apperr.ErrConflict)
		}
	}
	it.AddedAt = t.m.tick()
	l.Items = append(l.Items, copyItem(it))
	return nil
}

func (t *memTx) UpdateItem(_ context.Context, it *ListItem) error {
	if err := t.hit("UpdateItem"); err != nil {
		return err
	}
	for _, stored := range t.m.lists[it.ListID].Items {
		if stored.ID == it.ID {
			*stored = *copyItem(it)
			return nil
		}
	}
	return apperr.NotFound("list item")
}

func (t *memTx) DeleteItem(_ context.Context, id uuid.UUID) error {
	for _, l := range t.m.lists {
		for i, it := range l.Items {
			if it.ID == id {
				l.Items = append(l.Items[:i], l.Items[i+1:]...)
				return nil
			}
		}
	}
	return nil
}

func (t *memTx) ProductExists(_ context.Context, barcode string) (bool, error) {
	return t.m.products[barcode], nil
}

func (t *memTx) StoreExists(_ context.Context, id uuid.UUID) (bool, error) {
	return t.m.stores[id], nil
}

func (t *memTx) RecordPriceIfAbsent(_ context.Context, o *pricing.Observation) (bool, error) {
	if err := t.hit("RecordPriceIfAbsent"); err != nil {
		return false, err
	}
	for _, e := range t.m.ledger {
		if e.Barcode == o.Barcode && e.UserID == o.UserID && e.StoreID == o.StoreID && e.Price.Equal(o.Price) {
			return false, nil
		}
	}
	o.ID, o.RecordedAt = uuid.New(), t.m.tick()
	t.m.ledger = append(t.m.ledger, *o)
	return true, nil
}

func copyList(l *ShoppingList) *ShoppingList {
	cp := *l
	cp.BudgetLimit = copyDecimal(l.BudgetLimit)
	cp.Items = make([]*ListItem, 0, len(l.Items))
	for _, it := range l.Items {
		cp.Items = append(cp.Items, copyItem(it))
	}
	return &cp
}

func copyItem(it *ListItem) *ListItem {
	cp := *it
	cp.PlannedPrice = copyDecimal(it.PlannedPrice)
	if it.StoreID != nil {
		id := *it.StoreID
		cp.StoreID = &id
	}
	return &cp
}

func copyDecimal(d *decimal.Decimal) *decimal.Decimal {
	if d == nil {
		return nil
	}
	cp := *d
	return &cp
}
