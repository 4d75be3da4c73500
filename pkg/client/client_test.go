package client_test

import (
	"errors"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"GameStock/internal/inventory"
	"GameStock/pkg/client"
)

func newClient(t *testing.T) *client.Client {
	t.Helper()

	svc := inventory.NewService(inventory.NewMemStore(), nil)
	h := inventory.NewHandler(&inventory.Server{Service: svc, Log: zap.NewNop()}, inventory.HTTPDeps{Log: zap.NewNop()})

	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)
	return client.New(ts.URL + "/")
}

func TestClient_Lifecycle(t *testing.T) {
	c := newClient(t)
	ctx := t.Context()

	g, err := c.Create(ctx, client.CreateRequest{Title: "Halo", Stock: "3", Platforms: "Xbox, PC"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if g.ID == 0 || g.Stock != 3 || len(g.Platforms) != 2 {
		t.Fatalf("created=%+v", g)
	}

	pc, err := c.ByPlatform(ctx, "pc")
	if err != nil || len(pc) != 1 || pc[0].ID != g.ID {
		t.Fatalf("by platform=%+v err=%v", pc, err)
	}

	up, err := c.Update(ctx, g.ID, client.UpdateRequest{Stock: "0"})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if up.Stock != 0 || up.Title != "Halo" {
		t.Fatalf("updated=%+v", up)
	}

	got, err := c.Get(ctx, g.ID)
	if err != nil || got.Stock != 0 {
		t.Fatalf("get=%+v err=%v", got, err)
	}

	if err := c.Delete(ctx, g.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	all, err := c.List(ctx)
	if err != nil || len(all) != 0 {
		t.Fatalf("list=%+v err=%v", all, err)
	}
}

func TestClient_UpdateClearsPlatforms(t *testing.T) {
	c := newClient(t)
	ctx := t.Context()

	g, err := c.Create(ctx, client.CreateRequest{Title: "Halo", Stock: 4, Platforms: []string{"Xbox", "PC"}})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	up, err := c.Update(ctx, g.ID, client.UpdateRequest{ClearPlatforms: true})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if len(up.Platforms) != 0 || up.Stock != 4 {
		t.Fatalf("updated=%+v", up)
	}

	up, err = c.Update(ctx, g.ID, client.UpdateRequest{Platforms: "Switch"})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if len(up.Platforms) != 1 || up.Platforms[0] != "Switch" || up.Stock != 4 {
		t.Fatalf("updated=%+v", up)
	}
}

func TestUpdateRequest_MarshalJSON(t *testing.T) {
	tests := []struct {
		name string
		in   client.UpdateRequest
		want string
	}{
		{"empty", client.UpdateRequest{}, `{}`},
		{"stock zero kept", client.UpdateRequest{Stock: 0}, `{"stock":0}`},
		{"clear platforms", client.UpdateRequest{ClearPlatforms: true, Platforms: "PC"}, `{"platforms":null}`},
		{"platforms", client.UpdateRequest{Platforms: "PC"}, `{"platforms":"PC"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := tt.in.MarshalJSON()
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}
			if string(b) != tt.want {
				t.Fatalf("got=%s want=%s", b, tt.want)
			}
		})
	}
}

func TestClient_Errors(t *testing.T) {
	c := newClient(t)
	ctx := t.Context()

	if _, err := c.Create(ctx, client.CreateRequest{Title: "  "}); !errors.Is(err, client.ErrBadRequest) {
		t.Fatalf("create blank title err=%v", err)
	}
	if _, err := c.Get(ctx, 42); !errors.Is(err, client.ErrNotFound) {
		t.Fatalf("get unknown err=%v", err)
	}
	if err := c.Delete(ctx, 42); !errors.Is(err, client.ErrNotFound) {
		t.Fatalf("delete unknown err=%v", err)
	}

	down := client.New("http://127.0.0.1:1")
	if _, err := down.List(ctx); !errors.Is(err, client.ErrUnavailable) {
		t.Fatalf("unreachable err=%v", err)
	}
}
