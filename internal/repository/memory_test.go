package repository

import (
	"context"
	"testing"

	"securevision/internal/domain"
)

func TestMemoryStore_AccountLifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	a, err := store.GetOrCreate(ctx, 1001, "Oksana")
	if err != nil {
		t.Fatalf("get or create: %v", err)
	}
	if a.ID == 0 || a.Balance != 0 {
		t.Fatalf("unexpected account: %+v", a)
	}

	// повторный вызов возвращает тот же аккаунт
	again, err := store.GetOrCreate(ctx, 1001, "Oksana")
	if err != nil || again.ID != a.ID {
		t.Fatalf("get or create again: %v %+v", err, again)
	}

	if err := store.UpdateBalance(ctx, a.ID, 42.5); err != nil {
		t.Fatalf("update balance: %v", err)
	}
	if err := store.UpdatePhone(ctx, a.ID, "+380501234567"); err != nil {
		t.Fatalf("update phone: %v", err)
	}

	got, err := store.GetByExternalID(ctx, 1001)
	if err != nil {
		t.Fatalf("get by external: %v", err)
	}
	if got.Balance != 42.5 || got.Phone != "+380501234567" {
		t.Fatalf("not persisted: %+v", got)
	}

	if _, err := store.GetByExternalID(ctx, 9999); err != ErrNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestMemoryCatalog_Filtering(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	catalog := NewMemoryCatalog(store)

	add := func(cameras, area int64, price float64) {
		it := domain.CatalogItem{Name: "x", CameraCount: cameras, CoverageArea: area, Price: price}
		if err := catalog.Create(ctx, &it); err != nil {
			t.Fatal(err)
		}
	}
	add(2, 50, 150)
	add(4, 150, 350)
	add(8, 300, 700)
	add(16, 600, 1500)
	add(1, 20, 80)

	max := 400.0
	list, err := catalog.List(ctx, CatalogFilter{MinCameras: 4, MinArea: 150, MaxPrice: &max})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || list[0].Price != 350 {
		t.Fatalf("expected exactly the 350 item, got %+v", list)
	}

	// без ограничений — весь каталог в порядке id
	all, err := catalog.List(ctx, CatalogFilter{})
	if err != nil || len(all) != 5 {
		t.Fatalf("list all: %v %d", err, len(all))
	}
	for i := 1; i < len(all); i++ {
		if all[i].ID < all[i-1].ID {
			t.Fatalf("order not stable: %+v", all)
		}
	}
}

func TestMemoryOrders_NewestFirst(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	orders := NewMemoryOrders(store)

	for _, id := range []string{"a", "b", "c"} {
		o := domain.Order{ID: id, AccountID: 7, TotalPrice: 10, Status: domain.OrderStatusPaid}
		if err := orders.Create(ctx, &o); err != nil {
			t.Fatal(err)
		}
	}
	o := domain.Order{ID: "other", AccountID: 8, TotalPrice: 10, Status: domain.OrderStatusPaid}
	if err := orders.Create(ctx, &o); err != nil {
		t.Fatal(err)
	}

	list, err := orders.ListByAccount(ctx, 7)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 3 || list[0].ID != "c" || list[2].ID != "a" {
		t.Fatalf("wrong order: %+v", list)
	}
}

func TestMemoryTx_DebitWithOrder(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	orders := NewMemoryOrders(store)
	tx := NewMemoryTx(store)

	a, err := store.GetOrCreate(ctx, 1, "A")
	if err != nil {
		t.Fatal(err)
	}
	if err := store.UpdateBalance(ctx, a.ID, 100); err != nil {
		t.Fatal(err)
	}

	// эмуляция атомарного списания с созданием заказа
	err = tx.WithTransaction(ctx, func(ctx context.Context) error {
		acc, err := store.GetByID(ctx, a.ID)
		if err != nil {
			return err
		}
		if acc.Balance < 80 {
			t.Fatalf("balance precondition")
		}
		if err := store.UpdateBalance(ctx, acc.ID, acc.Balance-80); err != nil {
			return err
		}
		o := domain.Order{ID: "o1", AccountID: acc.ID, TotalPrice: 80, Status: domain.OrderStatusPaid}
		return orders.Create(ctx, &o)
	})
	if err != nil {
		t.Fatalf("tx: %v", err)
	}

	got, _ := store.GetByID(context.Background(), a.ID)
	if got.Balance != 20 {
		t.Fatalf("balance expected 20, got %v", got.Balance)
	}
}

func TestMemoryTasks_CRUD(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	tasks := NewMemoryTasks(store)

	task := domain.Task{Title: "T", Description: "D"}
	if err := tasks.Create(ctx, &task); err != nil {
		t.Fatalf("create: %v", err)
	}
	if task.ID == 0 {
		t.Fatalf("no id")
	}

	task.Title = "T2"
	if err := tasks.Update(ctx, &task); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, err := tasks.GetByID(ctx, task.ID)
	if err != nil || got.Title != "T2" {
		t.Fatalf("get: %v %+v", err, got)
	}

	if err := tasks.Delete(ctx, task.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := tasks.GetByID(ctx, task.ID); err == nil {
		t.Fatalf("expected not found")
	}
}
