package backend

import (
	"context"
	"database/sql"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	ierrors "github.com/turtacn/inventa/pkg/errors"
)

// Item is one inventory record.
type Item struct {
	ID        int64     `json:"id"`
	SKU       string    `json:"sku"`
	Name      string    `json:"name"`
	Quantity  int64     `json:"quantity"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Store persists inventory state in SQLite inside the data directory.
type Store struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS items (
    id         INTEGER PRIMARY KEY AUTOINCREMENT,
    sku        TEXT NOT NULL UNIQUE,
    name       TEXT NOT NULL,
    quantity   INTEGER NOT NULL DEFAULT 0,
    updated_at INTEGER NOT NULL
);
`

// OpenStore opens (creating on first run) the inventory database. First-run
// schema setup is the slow part of a packaged cold start, which is why the
// supervisor's packaged readiness deadline is generous.
func OpenStore(dataDir string) (*Store, error) {
	path := filepath.Join(dataDir, "inventory.db")
	dsn := path + "?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, ierrors.New(ierrors.ErrCodeStoreOpenFail, "OpenStore", "cannot open database", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, ierrors.New(ierrors.ErrCodeStoreOpenFail, "OpenStore", "cannot ping database", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, ierrors.New(ierrors.ErrCodeStoreOpenFail, "OpenStore", "cannot apply schema", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database.
func (s *Store) Close() error { return s.db.Close() }

// ListItems returns all items ordered by SKU.
func (s *Store) ListItems(ctx context.Context) ([]Item, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, sku, name, quantity, updated_at FROM items ORDER BY sku`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var it Item
		var updated int64
		if err := rows.Scan(&it.ID, &it.SKU, &it.Name, &it.Quantity, &updated); err != nil {
			return nil, err
		}
		it.UpdatedAt = time.UnixMilli(updated).UTC()
		items = append(items, it)
	}
	return items, rows.Err()
}

// CreateItem inserts a new item and returns it with its assigned id.
func (s *Store) CreateItem(ctx context.Context, sku, name string, quantity int64) (*Item, error) {
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO items (sku, name, quantity, updated_at) VALUES (?, ?, ?, ?)`,
		sku, name, quantity, now.UnixMilli())
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &Item{ID: id, SKU: sku, Name: name, Quantity: quantity, UpdatedAt: now}, nil
}

// AdjustQuantity adds delta to an item's quantity and returns the new value.
func (s *Store) AdjustQuantity(ctx context.Context, id int64, delta int64) (int64, error) {
	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx,
		`UPDATE items SET quantity = quantity + ?, updated_at = ? WHERE id = ?`,
		delta, now.UnixMilli(), id)
	if err != nil {
		return 0, err
	}
	var q int64
	err = s.db.QueryRowContext(ctx, `SELECT quantity FROM items WHERE id = ?`, id).Scan(&q)
	return q, err
}

// Personal.AI order the ending
