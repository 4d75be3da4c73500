package inventory_test

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"GameStock/internal/inventory"
)

func TestInstrumentStore_CountsOperations(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := inventory.NewStoreMetrics(reg)
	svc := inventory.NewService(inventory.InstrumentStore(inventory.NewMemStore(), m), nil)
	ctx := context.Background()

	if _, err := svc.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}
	for _, title := range []string{"Halo", "Zelda"} {
		if _, err := svc.Create(ctx, inventory.NewGame{Title: title}); err != nil {
			t.Fatalf("create: %v", err)
		}
	}
	if _, err := svc.List(ctx); err != nil {
		t.Fatalf("list: %v", err)
	}

	// init: 1 load + 1 save; each create: 1 load + 1 save; list: 1 load.
	if got := testutil.ToFloat64(m.Operations.WithLabelValues("load", "ok")); got != 4 {
		t.Fatalf("loads=%v", got)
	}
	if got := testutil.ToFloat64(m.Operations.WithLabelValues("save", "ok")); got != 3 {
		t.Fatalf("saves=%v", got)
	}
	if got := testutil.ToFloat64(m.Games); got != 2 {
		t.Fatalf("games gauge=%v", got)
	}
}
