package inventory_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"GameStock/internal/inventory"
)

type storeFactory func(t *testing.T, dir string) inventory.Store

func fileStore(t *testing.T, dir string) inventory.Store {
	t.Helper()
	return inventory.NewFileStore(filepath.Join(dir, "db.json"))
}

func boltStore(t *testing.T, dir string) inventory.Store {
	t.Helper()
	s, err := inventory.OpenBoltStore(filepath.Join(dir, "db.bolt"), "games")
	if err != nil {
		t.Fatalf("open bolt: %v", err)
	}
	return s
}

func persistentStores() map[string]storeFactory {
	return map[string]storeFactory{
		"file": fileStore,
		"bolt": boltStore,
	}
}

func TestStore_MissingDocumentLoadsEmpty(t *testing.T) {
	for name, open := range persistentStores() {
		t.Run(name, func(t *testing.T) {
			s := open(t, t.TempDir())
			t.Cleanup(func() { _ = s.Close() })

			doc, err := s.Load(context.Background())
			if err != nil {
				t.Fatalf("load: %v", err)
			}
			if doc.Games == nil || len(doc.Games) != 0 {
				t.Fatalf("want empty non-nil games, got %#v", doc.Games)
			}
		})
	}
}

func TestStore_RoundTripAcrossReopen(t *testing.T) {
	for name, open := range persistentStores() {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			ctx := context.Background()

			s := open(t, dir)
			want := sampleDocument()
			if err := s.Save(ctx, want); err != nil {
				t.Fatalf("save: %v", err)
			}
			if err := s.Close(); err != nil {
				t.Fatalf("close: %v", err)
			}

			reopened := open(t, dir)
			t.Cleanup(func() { _ = reopened.Close() })

			got, err := reopened.Load(ctx)
			if err != nil {
				t.Fatalf("load: %v", err)
			}
			if !reflect.DeepEqual(got, want) {
				t.Fatalf("got %+v\nwant %+v", got, want)
			}
		})
	}
}

func TestStore_SaveReplacesPriorContent(t *testing.T) {
	for name, open := range persistentStores() {
		t.Run(name, func(t *testing.T) {
			s := open(t, t.TempDir())
			t.Cleanup(func() { _ = s.Close() })
			ctx := context.Background()

			if err := s.Save(ctx, sampleDocument()); err != nil {
				t.Fatalf("save: %v", err)
			}
			small := inventory.Document{Games: []inventory.Game{{ID: 7, Title: "Tetris", Platforms: []string{}}}}
			if err := s.Save(ctx, small); err != nil {
				t.Fatalf("save: %v", err)
			}

			got, err := s.Load(ctx)
			if err != nil {
				t.Fatalf("load: %v", err)
			}
			if !reflect.DeepEqual(got, small) {
				t.Fatalf("got %+v", got)
			}
		})
	}
}

func TestFileStore_WritesGamesDocumentShape(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.json")
	s := inventory.NewFileStore(path)

	if err := s.Save(context.Background(), inventory.Document{Games: []inventory.Game{{ID: 1, Title: "Halo"}}}); err != nil {
		t.Fatalf("save: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	for _, want := range []string{`"games"`, `"id": 1`, `"title": "Halo"`, `"platforms": []`, `"stock": 0`} {
		if !strings.Contains(string(raw), want) {
			t.Fatalf("document missing %s:\n%s", want, raw)
		}
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("readdir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("temp files left behind: %v", entries)
	}
}

func TestFileStore_CorruptDocumentFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.json")
	if err := os.WriteFile(path, []byte(`{"games": [`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	_, err := inventory.NewFileStore(path).Load(context.Background())
	if !errors.Is(err, inventory.ErrCorruptDocument) {
		t.Fatalf("err=%v want ErrCorruptDocument", err)
	}
}

func TestFileStore_EmptyFileIsFreshCatalogue(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.json")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	doc, err := inventory.NewFileStore(path).Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(doc.Games) != 0 {
		t.Fatalf("games=%v", doc.Games)
	}
}

func TestEnsureInitialized_RepairsMissingGames(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.json")
	if err := os.WriteFile(path, []byte(`{"other": true}`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	s := inventory.NewFileStore(path)

	doc, err := inventory.EnsureInitialized(context.Background(), s)
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	if doc.Games == nil {
		t.Fatalf("games not repaired")
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.Contains(string(raw), `"games": []`) {
		t.Fatalf("repaired document not persisted:\n%s", raw)
	}
}

func TestEnsureInitialized_SeedsMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "db.json")

	if _, err := inventory.EnsureInitialized(context.Background(), inventory.NewFileStore(path)); err != nil {
		t.Fatalf("init: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("document not created: %v", err)
	}
}

func TestEnsureInitialized_CorruptDocumentIsNotOverwritten(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.json")
	corrupt := []byte(`not json`)
	if err := os.WriteFile(path, corrupt, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	if _, err := inventory.EnsureInitialized(context.Background(), inventory.NewFileStore(path)); err == nil {
		t.Fatalf("want error for corrupt document")
	}

	raw, _ := os.ReadFile(path)
	if string(raw) != string(corrupt) {
		t.Fatalf("corrupt document was overwritten: %q", raw)
	}
}

func TestMemStore_IsolatesCallers(t *testing.T) {
	s := inventory.NewMemStore()
	ctx := context.Background()

	doc := sampleDocument()
	if err := s.Save(ctx, doc); err != nil {
		t.Fatalf("save: %v", err)
	}
	doc.Games[0].Title = "mutated"

	got, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Games[0].Title != "Halo" {
		t.Fatalf("store shares memory with caller: %q", got.Games[0].Title)
	}
}

func TestOpenStore_UnknownDriver(t *testing.T) {
	if _, err := inventory.OpenStore(context.Background(), inventory.StoreOptions{Driver: "redis"}); err == nil {
		t.Fatalf("want error for unknown driver")
	}
}

func TestOpenBoltStore_LockedFileTimesOut(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.bolt")
	held, err := inventory.OpenBoltStore(path, "games")
	if err != nil {
		t.Fatalf("open bolt: %v", err)
	}
	defer held.Close()

	start := time.Now()
	if s, err := inventory.OpenBoltStore(path, "games"); err == nil {
		_ = s.Close()
		t.Fatalf("second open of a locked file should fail")
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Fatalf("lock wait took %v", elapsed)
	}
}
