package shopping

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/georgemunganga/centimos-backend/internal/apperr"
	"github.com/georgemunganga/centimos-backend/internal/modules/pricing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type postgresRepo struct{ db *sql.DB }

func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepo{db: db} }

const selectList = `SELECT list_id, user_id, name, budget_limit, currency, status, created_at FROM shopping_lists`

func (r *postgresRepo) CreateList(ctx context.Context, l *ShoppingList) error {
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO shopping_lists (list_id, user_id, name, budget_limit, currency, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at`,
		l.ID, l.UserID, l.Name, nullDecimal(l.BudgetLimit), l.Currency, l.Status,
	).Scan(&l.CreatedAt)
	return apperr.FromDB(err, "shopping list")
}

func (r *postgresRepo) GetList(ctx context.Context, id uuid.UUID) (*ShoppingList, error) {
	return loadList(ctx, r.db, selectList+` WHERE list_id = $1`, id)
}

func (r *postgresRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]*ShoppingList, error) {
	rows, err := r.db.QueryContext(ctx, selectList+` WHERE user_id = $1 ORDER BY created_at DESC, list_id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	lists := []*ShoppingList{}
	for rows.Next() {
		l, err := scanList(rows)
		if err != nil {
			return nil, err
		}
		lists = append(lists, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, l := range lists {
		if l.Items, err = listItems(ctx, r.db, l.ID); err != nil {
			return nil, err
		}
	}
	return lists, nil
}

func (r *postgresRepo) WithinTx(ctx context.Context, fn func(Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := fn(&postgresTx{tx: tx}); err != nil {
		return err
	}
	return tx.Commit()
}

type postgresTx struct{ tx *sql.Tx }

func (t *postgresTx) LockList(ctx context.Context, id uuid.UUID) (*ShoppingList, error) {
	return loadList(ctx, t.tx, selectList+` WHERE list_id = $1 FOR UPDATE`, id)
}

func (t *postgresTx) UpdateList(ctx context.Context, l *ShoppingList) error {
	_, err := t.tx.ExecContext(ctx, `
		UPDATE shopping_lists SET name = $2, budget_limit = $3, currency = $4, status = $5
		WHERE list_id = $1`,
		l.ID, l.Name, nullDecimal(l.BudgetLimit), l.Currency, l.Status)
	if err != nil {
		return fmt.Errorf("update shopping list: %w", err)
	}
	return nil
}

func (t *postgresTx) DeleteList(ctx context.Context, id uuid.UUID) error {
	_, err := t.tx.ExecContext(ctx, `DELETE FROM shopping_lists WHERE list_id = $1`, id)
	return err
}

func (t *postgresTx) ClearPlannedPrices(ctx context.Context, listID uuid.UUID) error {
	_, err := t.tx.ExecContext(ctx, `UPDATE list_items SET planned_price = NULL WHERE list_id = $1`, listID)
	return err
}

func (t *postgresTx) InsertItem(ctx context.Context, it *ListItem) error {
	err := t.tx.QueryRowContext(ctx, `
		INSERT INTO list_items (item_id, list_id, product_barcode, quantity, planned_price, is_purchased, store_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING added_at`,
		it.ID, it.ListID, it.Barcode, it.Quantity, nullDecimal(it.PlannedPrice), it.Purchased, nullUUID(it.StoreID),
	).Scan(&it.AddedAt)
	return apperr.FromDB(err, "list item")
}

func (t *postgresTx) UpdateItem(ctx context.Context, it *ListItem) error {
	_, err := t.tx.ExecContext(ctx, `
		UPDATE list_items SET quantity = $2, planned_price = $3, is_purchased = $4, store_id = $5
		WHERE item_id = $1`,
		it.ID, it.Quantity, nullDecimal(it.PlannedPrice), it.Purchased, nullUUID(it.StoreID))
	if err != nil {
		return fmt.Errorf("update list item: %w", err)
	}
	return nil
}

func (t *postgresTx) DeleteItem(ctx context.Context, id uuid.UUID) error {
	_, err := t.tx.ExecContext(ctx, `DELETE FROM list_items WHERE item_id = $1`, id)
	return err
}

func (t *postgresTx) ProductExists(ctx context.Context, barcode string) (bool, error) {
	var ok bool
	err := t.tx.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM products WHERE barcode = $1)`, barcode).Scan(&ok)
	return ok, err
}

func (t *postgresTx) StoreExists(ctx context.Context, id uuid.UUID) (bool, error) {
	var ok bool
	err := t.tx.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM stores WHERE store_id = $1)`, id).Scan(&ok)
	return ok, err
}

func (t *postgresTx) RecordPriceIfAbsent(ctx context.Context, o *pricing.Observation) (bool, error) {
	return pricing.RecordIfAbsent(ctx, t.tx, o)
}

// ── helpers ──────────────────────────────────────────────────────────────────

func loadList(ctx context.Context, q pricing.DBTX, query string, id uuid.UUID) (*ShoppingList, error) {
	l, err := scanList(q.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, apperr.FromDB(err, "shopping list")
	}
	if l.Items, err = listItems(ctx, q, l.ID); err != nil {
		return nil, err
	}
	return l, nil
}

func listItems(ctx context.Context, q pricing.DBTX, listID uuid.UUID) ([]*ListItem, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT item_id, list_id, product_barcode, quantity, planned_price, is_purchased, store_id, added_at
		FROM list_items WHERE list_id = $1
		ORDER BY added_at, item_id`, listID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []*ListItem{}
	for rows.Next() {
		it := &ListItem{}
		var planned decimal.NullDecimal
		var store uuid.NullUUID
		if err := rows.Scan(&it.ID, &it.ListID, &it.Barcode, &it.Quantity, &planned,
			&it.Purchased, &store, &it.AddedAt); err != nil {
			return nil, err
		}
		if planned.Valid {
			it.PlannedPrice = &planned.Decimal
		}
		if store.Valid {
			it.StoreID = &store.UUID
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanList(row rowScanner) (*ShoppingList, error) {
	l := &ShoppingList{}
	var budget decimal.NullDecimal
	if err := row.Scan(&l.ID, &l.UserID, &l.Name, &budget, &l.Currency, &l.Status, &l.CreatedAt); err != nil {
		return nil, err
	}
	if budget.Valid {
		l.BudgetLimit = &budget.Decimal
	}
	return l, nil
}

func nullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *d, Valid: true}
}

func nullUUID(id *uuid.UUID) uuid.NullUUID {
	if id == nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: *id, Valid: true}
}
