package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"stockroom/internal/shared"
)

// SQLiteStore keeps items in SQLite. AUTOINCREMENT guarantees ids are never
// reused after a delete; the pool must hold a single connection so that
// statements are serialized.
type SQLiteStore struct {
	DB *sql.DB
}

func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{DB: db}
}

func (s *SQLiteStore) CreateItem(ctx context.Context, c shared.ItemCreate) (shared.Item, error) {
	item := shared.Item{Name: c.Name, Price: c.Price, InStock: c.Stock()}

	res, err := s.DB.ExecContext(ctx,
		`INSERT INTO items (name, price, in_stock) VALUES (?, ?, ?)`,
		item.Name, item.Price, item.InStock,
	)
	if err != nil {
		return shared.Item{}, fmt.Errorf("insert item: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return shared.Item{}, fmt.Errorf("insert item: %w", err)
	}
	item.ID = id
	return item, nil
}

func (s *SQLiteStore) ListItems(ctx context.Context) ([]shared.Item, error) {
	rows, err := s.DB.QueryContext(ctx,
		`SELECT id, name, price, in_stock FROM items ORDER BY id`,
	)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	items := []shared.Item{}
	for rows.Next() {
		var it shared.Item
		if err := rows.Scan(&it.ID, &it.Name, &it.Price, &it.InStock); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	return items, nil
}

func (s *SQLiteStore) GetItem(ctx context.Context, id int64) (shared.Item, error) {
	row := s.DB.QueryRowContext(ctx,
		`SELECT id, name, price, in_stock FROM items WHERE id = ?`, id,
	)

	var it shared.Item
	if err := row.Scan(&it.ID, &it.Name, &it.Price, &it.InStock); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return shared.Item{}, notFound(id)
		}
		return shared.Item{}, fmt.Errorf("get item %d: %w", id, err)
	}
	return it, nil
}

func (s *SQLiteStore) DeleteItem(ctx context.Context, id int64) error {
	res, err := s.DB.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete item %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete item %d: %w", id, err)
	}
	if n == 0 {
		return notFound(id)
	}
	return nil
}

func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM items`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count items: %w", err)
	}
	return n, nil
}

var _ Store = (*SQLiteStore)(nil)
