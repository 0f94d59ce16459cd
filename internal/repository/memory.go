package repository

import (
	"context"
	"sync"
	"time"

	"securevision/internal/domain"
)

// MemoryStore объединённое in-memory хранилище и простой генератор ID
type MemoryStore struct {
	mu            sync.RWMutex
	nextAccountID int64
	nextItemID    int64
	nextTaskID    int64
	accountsByID  map[int64]domain.Account
	accountsByExt map[int64]int64
	itemsByID     map[int64]domain.CatalogItem
	ordersByID    map[string]domain.Order
	orderSeq      []string
	tasksByID     map[int64]domain.Task
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		nextAccountID: 1,
		nextItemID:    1,
		nextTaskID:    1,
		accountsByID:  make(map[int64]domain.Account),
		accountsByExt: make(map[int64]int64),
		itemsByID:     make(map[int64]domain.CatalogItem),
		ordersByID:    make(map[string]domain.Order),
		tasksByID:     make(map[int64]domain.Task),
	}
}

// transaction-aware locking helpers
type txKey struct{}

func isTx(ctx context.Context) bool {
	v := ctx.Value(txKey{})
	if v == nil {
		return false
	}
	b, ok := v.(bool)
	return ok && b
}

func (m *MemoryStore) rlock(ctx context.Context) {
	if !isTx(ctx) {
		m.mu.RLock()
	}
}
func (m *MemoryStore) runlock(ctx context.Context) {
	if !isTx(ctx) {
		m.mu.RUnlock()
	}
}
func (m *MemoryStore) wlock(ctx context.Context) {
	if !isTx(ctx) {
		m.mu.Lock()
	}
}
func (m *MemoryStore) wunlock(ctx context.Context) {
	if !isTx(ctx) {
		m.mu.Unlock()
	}
}

// Ensure interfaces
var _ AccountRepository = (*MemoryStore)(nil)

// CatalogRepository, OrderRepository и TaskRepository реализованы отдельными типами-обёртками

// AccountRepository implementation
func (m *MemoryStore) GetOrCreate(ctx context.Context, externalID int64, name string) (*domain.Account, error) {
	m.wlock(ctx)
	defer m.wunlock(ctx)
	if id, ok := m.accountsByExt[externalID]; ok {
		a := m.accountsByID[id]
		return &a, nil
	}
	a := domain.Account{ID: m.nextAccountID, ExternalID: externalID, Name: name}
	m.nextAccountID++
	m.accountsByID[a.ID] = a
	m.accountsByExt[externalID] = a.ID
	cp := a
	return &cp, nil
}

func (m *MemoryStore) GetByExternalID(ctx context.Context, externalID int64) (*domain.Account, error) {
	m.rlock(ctx)
	defer m.runlock(ctx)
	id, ok := m.accountsByExt[externalID]
	if !ok {
		return nil, ErrNotFound
	}
	a := m.accountsByID[id]
	return &a, nil
}

func (m *MemoryStore) GetByID(ctx context.Context, id int64) (*domain.Account, error) {
	m.rlock(ctx)
	defer m.runlock(ctx)
	a, ok := m.accountsByID[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := a
	return &cp, nil
}

func (m *MemoryStore) UpdateBalance(ctx context.Context, id int64, balance float64) error {
	m.wlock(ctx)
	defer m.wunlock(ctx)
	a, ok := m.accountsByID[id]
	if !ok {
		return ErrNotFound
	}
	a.Balance = balance
	m.accountsByID[id] = a
	return nil
}

func (m *MemoryStore) UpdatePhone(ctx context.Context, id int64, phone string) error {
	m.wlock(ctx)
	defer m.wunlock(ctx)
	a, ok := m.accountsByID[id]
	if !ok {
		return ErrNotFound
	}
	a.Phone = phone
	m.accountsByID[id] = a
	return nil
}

// CatalogRepository implementation on wrapper type
type MemoryCatalog struct{ store *MemoryStore }

func NewMemoryCatalog(store *MemoryStore) *MemoryCatalog { return &MemoryCatalog{store: store} }

var _ CatalogRepository = (*MemoryCatalog)(nil)

func (mc *MemoryCatalog) Create(ctx context.Context, item *domain.CatalogItem) error {
	mc.store.wlock(ctx)
	defer mc.store.wunlock(ctx)
	item.ID = mc.store.nextItemID
	mc.store.nextItemID++
	mc.store.itemsByID[item.ID] = *item
	return nil
}

func (mc *MemoryCatalog) GetByID(ctx context.Context, id int64) (*domain.CatalogItem, error) {
	mc.store.rlock(ctx)
	defer mc.store.runlock(ctx)
	it, ok := mc.store.itemsByID[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := it
	return &cp, nil
}

func (mc *MemoryCatalog) List(ctx context.Context, f CatalogFilter) ([]domain.CatalogItem, error) {
	mc.store.rlock(ctx)
	defer mc.store.runlock(ctx)
	out := make([]domain.CatalogItem, 0)
	// стабильный порядок — по id
	for id := int64(1); id < mc.store.nextItemID; id++ {
		it, ok := mc.store.itemsByID[id]
		if !ok {
			continue
		}
		if it.CameraCount < f.MinCameras {
			continue
		}
		if it.CoverageArea < f.MinArea {
			continue
		}
		if f.MaxPrice != nil && it.Price > *f.MaxPrice {
			continue
		}
		out = append(out, it)
	}
	return out, nil
}

func (mc *MemoryCatalog) Count(ctx context.Context) (int64, error) {
	mc.store.rlock(ctx)
	defer mc.store.runlock(ctx)
	return int64(len(mc.store.itemsByID)), nil
}

// OrderRepository implementation on wrapper type
type MemoryOrders struct{ store *MemoryStore }

func NewMemoryOrders(store *MemoryStore) *MemoryOrders { return &MemoryOrders{store: store} }

var _ OrderRepository = (*MemoryOrders)(nil)

func (mo *MemoryOrders) Create(ctx context.Context, o *domain.Order) error {
	mo.store.wlock(ctx)
	defer mo.store.wunlock(ctx)
	o.CreatedAt = time.Now().UTC()
	mo.store.ordersByID[o.ID] = *o
	mo.store.orderSeq = append(mo.store.orderSeq, o.ID)
	return nil
}

func (mo *MemoryOrders) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	mo.store.rlock(ctx)
	defer mo.store.runlock(ctx)
	o, ok := mo.store.ordersByID[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := o
	return &cp, nil
}

func (mo *MemoryOrders) ListByAccount(ctx context.Context, accountID int64) ([]domain.Order, error) {
	mo.store.rlock(ctx)
	defer mo.store.runlock(ctx)
	out := make([]domain.Order, 0)
	// новые первыми
	for i := len(mo.store.orderSeq) - 1; i >= 0; i-- {
		o := mo.store.ordersByID[mo.store.orderSeq[i]]
		if o.AccountID == accountID {
			out = append(out, o)
		}
	}
	return out, nil
}

// TaskRepository implementation on wrapper type
type MemoryTasks struct{ store *MemoryStore }

func NewMemoryTasks(store *MemoryStore) *MemoryTasks { return &MemoryTasks{store: store} }

var _ TaskRepository = (*MemoryTasks)(nil)

func (mt *MemoryTasks) Create(ctx context.Context, t *domain.Task) error {
	mt.store.wlock(ctx)
	defer mt.store.wunlock(ctx)
	t.ID = mt.store.nextTaskID
	mt.store.nextTaskID++
	mt.store.tasksByID[t.ID] = *t
	return nil
}

func (mt *MemoryTasks) GetByID(ctx context.Context, id int64) (*domain.Task, error) {
	mt.store.rlock(ctx)
	defer mt.store.runlock(ctx)
	t, ok := mt.store.tasksByID[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := t
	return &cp, nil
}

func (mt *MemoryTasks) Update(ctx context.Context, t *domain.Task) error {
	mt.store.wlock(ctx)
	defer mt.store.wunlock(ctx)
	if _, ok := mt.store.tasksByID[t.ID]; !ok {
		return ErrNotFound
	}
	mt.store.tasksByID[t.ID] = *t
	return nil
}

func (mt *MemoryTasks) Delete(ctx context.Context, id int64) error {
	mt.store.wlock(ctx)
	defer mt.store.wunlock(ctx)
	if _, ok := mt.store.tasksByID[id]; !ok {
		return ErrNotFound
	}
	delete(mt.store.tasksByID, id)
	return nil
}

func (mt *MemoryTasks) List(ctx context.Context) ([]domain.Task, error) {
	mt.store.rlock(ctx)
	defer mt.store.runlock(ctx)
	out := make([]domain.Task, 0)
	for id := int64(1); id < mt.store.nextTaskID; id++ {
		if t, ok := mt.store.tasksByID[id]; ok {
			out = append(out, t)
		}
	}
	return out, nil
}

// Tx manager using write lock to emulate transaction boundary
type MemoryTx struct{ store *MemoryStore }

func NewMemoryTx(store *MemoryStore) *MemoryTx { return &MemoryTx{store: store} }

var _ TxManager = (*MemoryTx)(nil)

func (tx *MemoryTx) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if isTx(ctx) {
		// уже внутри транзакции — не открываем вложенную
		return fn(ctx)
	}
	// Для in-memory используем блокировку записи и помечаем контекст, чтобы репозитории пропускали внутренние локи
	tx.store.mu.Lock()
	defer tx.store.mu.Unlock()
	ctx = context.WithValue(ctx, txKey{}, true)
	return fn(ctx)
}
