package repository

import (
	"context"
	"testing"
)

func TestSeedCatalog_OnceAndIdempotent(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	catalog := NewMemoryCatalog(store)

	if err := SeedCatalog(ctx, catalog); err != nil {
		t.Fatalf("seed: %v", err)
	}
	n, err := catalog.Count(ctx)
	if err != nil || n == 0 {
		t.Fatalf("count after seed: %v %d", err, n)
	}

	// повторный посев ничего не добавляет
	if err := SeedCatalog(ctx, catalog); err != nil {
		t.Fatalf("reseed: %v", err)
	}
	n2, err := catalog.Count(ctx)
	if err != nil || n2 != n {
		t.Fatalf("reseed changed catalog: %d -> %d", n, n2)
	}
}
