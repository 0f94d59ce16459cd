package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	_ "modernc.org/sqlite"

	"securevision/internal/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS accounts (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	external_id INTEGER NOT NULL UNIQUE,
	name        TEXT NOT NULL DEFAULT '',
	phone       TEXT NOT NULL DEFAULT '',
	balance     REAL NOT NULL DEFAULT 0 CHECK (balance >= 0)
);
CREATE TABLE IF NOT EXISTS catalog_items (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	name          TEXT NOT NULL,
	description   TEXT NOT NULL DEFAULT '',
	camera_count  INTEGER NOT NULL,
	coverage_area INTEGER NOT NULL,
	price         REAL NOT NULL,
	features      TEXT NOT NULL DEFAULT '[]'
);
CREATE TABLE IF NOT EXISTS orders (
	id              TEXT PRIMARY KEY,
	account_id      INTEGER NOT NULL REFERENCES accounts(id),
	catalog_item_id INTEGER NOT NULL REFERENCES catalog_items(id),
	phone           TEXT NOT NULL DEFAULT '',
	total_price     REAL NOT NULL,
	status          TEXT NOT NULL,
	created_at      TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS tasks (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	title       TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	owner_id    INTEGER NOT NULL DEFAULT 0
);
`

// SQLiteStore хранилище на modernc.org/sqlite поверх database/sql
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite открывает (или создаёт) файл базы и накатывает схему.
// Один writer-коннект — sqlite сериализует запись сам.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error { return s.db.Close() }

// executor — *sql.DB вне транзакции, *sql.Tx внутри
type executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type sqlTxKey struct{}

func (s *SQLiteStore) q(ctx context.Context) executor {
	if tx, ok := ctx.Value(sqlTxKey{}).(*sql.Tx); ok {
		return tx
	}
	return s.db
}

// Ensure interfaces
var _ AccountRepository = (*SQLiteStore)(nil)

// AccountRepository implementation
func (s *SQLiteStore) GetOrCreate(ctx context.Context, externalID int64, name string) (*domain.Account, error) {
	a, err := s.GetByExternalID(ctx, externalID)
	if err == nil {
		return a, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	res, err := s.q(ctx).ExecContext(ctx,
		`INSERT INTO accounts (external_id, name) VALUES (?, ?)`, externalID, name)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &domain.Account{ID: id, ExternalID: externalID, Name: name}, nil
}

func (s *SQLiteStore) GetByExternalID(ctx context.Context, externalID int64) (*domain.Account, error) {
	row := s.q(ctx).QueryRowContext(ctx,
		`SELECT id, external_id, name, phone, balance FROM accounts WHERE external_id = ?`, externalID)
	return scanAccount(row)
}

func (s *SQLiteStore) GetByID(ctx context.Context, id int64) (*domain.Account, error) {
	row := s.q(ctx).QueryRowContext(ctx,
		`SELECT id, external_id, name, phone, balance FROM accounts WHERE id = ?`, id)
	return scanAccount(row)
}

func scanAccount(row *sql.Row) (*domain.Account, error) {
	var a domain.Account
	err := row.Scan(&a.ID, &a.ExternalID, &a.Name, &a.Phone, &a.Balance)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *SQLiteStore) UpdateBalance(ctx context.Context, id int64, balance float64) error {
	res, err := s.q(ctx).ExecContext(ctx,
		`UPDATE accounts SET balance = ? WHERE id = ?`, balance, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (s *SQLiteStore) UpdatePhone(ctx context.Context, id int64, phone string) error {
	res, err := s.q(ctx).ExecContext(ctx,
		`UPDATE accounts SET phone = ? WHERE id = ?`, phone, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// CatalogRepository implementation on wrapper type
type SQLiteCatalog struct{ store *SQLiteStore }

func NewSQLiteCatalog(store *SQLiteStore) *SQLiteCatalog { return &SQLiteCatalog{store: store} }

var _ CatalogRepository = (*SQLiteCatalog)(nil)

func (sc *SQLiteCatalog) Create(ctx context.Context, item *domain.CatalogItem) error {
	features, err := json.Marshal(item.Features)
	if err != nil {
		return err
	}
	res, err := sc.store.q(ctx).ExecContext(ctx,
		`INSERT INTO catalog_items (name, description, camera_count, coverage_area, price, features)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		item.Name, item.Description, item.CameraCount, item.CoverageArea, item.Price, string(features))
	if err != nil {
		return err
	}
	item.ID, err = res.LastInsertId()
	return err
}

func (sc *SQLiteCatalog) GetByID(ctx context.Context, id int64) (*domain.CatalogItem, error) {
	row := sc.store.q(ctx).QueryRowContext(ctx,
		`SELECT id, name, description, camera_count, coverage_area, price, features
		 FROM catalog_items WHERE id = ?`, id)
	var it domain.CatalogItem
	var features string
	err := row.Scan(&it.ID, &it.Name, &it.Description, &it.CameraCount, &it.CoverageArea, &it.Price, &features)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(features), &it.Features); err != nil {
		return nil, err
	}
	return &it, nil
}

func (sc *SQLiteCatalog) List(ctx context.Context, f CatalogFilter) ([]domain.CatalogItem, error) {
	maxPrice := float64(0)
	withMax := 0
	if f.MaxPrice != nil {
		maxPrice = *f.MaxPrice
		withMax = 1
	}
	rows, err := sc.store.q(ctx).QueryContext(ctx,
		`SELECT id, name, description, camera_count, coverage_area, price, features
		 FROM catalog_items
		 WHERE camera_count >= ? AND coverage_area >= ? AND (? = 0 OR price <= ?)
		 ORDER BY id`,
		f.MinCameras, f.MinArea, withMax, maxPrice)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.CatalogItem, 0)
	for rows.Next() {
		var it domain.CatalogItem
		var features string
		if err := rows.Scan(&it.ID, &it.Name, &it.Description, &it.CameraCount, &it.CoverageArea, &it.Price, &features); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(features), &it.Features); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

func (sc *SQLiteCatalog) Count(ctx context.Context) (int64, error) {
	var n int64
	err := sc.store.q(ctx).QueryRowContext(ctx, `SELECT COUNT(*) FROM catalog_items`).Scan(&n)
	return n, err
}

// OrderRepository implementation on wrapper type
type SQLiteOrders struct{ store *SQLiteStore }

func NewSQLiteOrders(store *SQLiteStore) *SQLiteOrders { return &SQLiteOrders{store: store} }

var _ OrderRepository = (*SQLiteOrders)(nil)

func (so *SQLiteOrders) Create(ctx context.Context, o *domain.Order) error {
	o.CreatedAt = time.Now().UTC()
	_, err := so.store.q(ctx).ExecContext(ctx,
		`INSERT INTO orders (id, account_id, catalog_item_id, phone, total_price, status, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		o.ID, o.AccountID, o.CatalogItemID, o.Phone, o.TotalPrice, string(o.Status),
		o.CreatedAt.Format(time.RFC3339Nano))
	return err
}

func (so *SQLiteOrders) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	row := so.store.q(ctx).QueryRowContext(ctx,
		`SELECT id, account_id, catalog_item_id, phone, total_price, status, created_at
		 FROM orders WHERE id = ?`, id)
	return scanOrder(row.Scan)
}

func (so *SQLiteOrders) ListByAccount(ctx context.Context, accountID int64) ([]domain.Order, error) {
	rows, err := so.store.q(ctx).QueryContext(ctx,
		`SELECT id, account_id, catalog_item_id, phone, total_price, status, created_at
		 FROM orders WHERE account_id = ? ORDER BY rowid DESC`, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Order, 0)
	for rows.Next() {
		o, err := scanOrder(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, *o)
	}
	return out, rows.Err()
}

func scanOrder(scan func(dest ...any) error) (*domain.Order, error) {
	var o domain.Order
	var status, createdAt string
	err := scan(&o.ID, &o.AccountID, &o.CatalogItemID, &o.Phone, &o.TotalPrice, &status, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	o.Status = domain.OrderStatus(status)
	o.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// TaskRepository implementation on wrapper type
type SQLiteTasks struct{ store *SQLiteStore }

func NewSQLiteTasks(store *SQLiteStore) *SQLiteTasks { return &SQLiteTasks{store: store} }

var _ TaskRepository = (*SQLiteTasks)(nil)

func (st *SQLiteTasks) Create(ctx context.Context, t *domain.Task) error {
	res, err := st.store.q(ctx).ExecContext(ctx,
		`INSERT INTO tasks (title, description, owner_id) VALUES (?, ?, ?)`,
		t.Title, t.Description, t.OwnerID)
	if err != nil {
		return err
	}
	t.ID, err = res.LastInsertId()
	return err
}

func (st *SQLiteTasks) GetByID(ctx context.Context, id int64) (*domain.Task, error) {
	row := st.store.q(ctx).QueryRowContext(ctx,
		`SELECT id, title, description, owner_id FROM tasks WHERE id = ?`, id)
	var t domain.Task
	err := row.Scan(&t.ID, &t.Title, &t.Description, &t.OwnerID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (st *SQLiteTasks) Update(ctx context.Context, t *domain.Task) error {
	res, err := st.store.q(ctx).ExecContext(ctx,
		`UPDATE tasks SET title = ?, description = ?, owner_id = ? WHERE id = ?`,
		t.Title, t.Description, t.OwnerID, t.ID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (st *SQLiteTasks) Delete(ctx context.Context, id int64) error {
	res, err := st.store.q(ctx).ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (st *SQLiteTasks) List(ctx context.Context) ([]domain.Task, error) {
	rows, err := st.store.q(ctx).QueryContext(ctx,
		`SELECT id, title, description, owner_id FROM tasks ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Task, 0)
	for rows.Next() {
		var t domain.Task
		if err := rows.Scan(&t.ID, &t.Title, &t.Description, &t.OwnerID); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// Tx manager over database/sql transactions
type SQLiteTx struct{ store *SQLiteStore }

func NewSQLiteTx(store *SQLiteStore) *SQLiteTx { return &SQLiteTx{store: store} }

var _ TxManager = (*SQLiteTx)(nil)

func (tm *SQLiteTx) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(sqlTxKey{}).(*sql.Tx); ok {
		// уже внутри транзакции — не открываем вложенную
		return fn(ctx)
	}
	tx, err := tm.store.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(context.WithValue(ctx, sqlTxKey{}, tx)); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}
