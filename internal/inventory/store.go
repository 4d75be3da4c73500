package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"
)

const (
	pingTimeout  = 1 * time.Second
	queryTimeout = 3 * time.Second
)

// ErrCorruptDocument reports a persisted document that cannot be decoded.
var ErrCorruptDocument = errors.New("corrupt catalogue document")

// Store is the load/save boundary for the catalogue document. Load never
// caches: every call observes the latest persisted state.
type Store interface {
	Load(ctx context.Context) (Document, error)
	Save(ctx context.Context, doc Document) error
	Ping(ctx context.Context) error
	Close() error
}

// EnsureInitialized loads the document, repairs a missing games list and
// writes it back, so later loads always see a well-formed document.
func EnsureInitialized(ctx context.Context, s Store) (Document, error) {
	doc, err := s.Load(ctx)
	if err != nil {
		return Document{}, fmt.Errorf("load catalogue: %w", err)
	}
	if doc.Games == nil {
		doc.Games = []Game{}
	}
	if err := s.Save(ctx, doc); err != nil {
		return Document{}, fmt.Errorf("save catalogue: %w", err)
	}
	return doc, nil
}

type StoreOptions struct {
	Driver string
	// Path is the JSON file (file driver) or database file (bolt driver).
	Path string
	DSN  string
	// Document names the catalogue inside shared backends (bolt key, postgres row).
	Document string
}

func OpenStore(ctx context.Context, opts StoreOptions) (Store, error) {
	switch opts.Driver {
	case "", "file":
		return NewFileStore(opts.Path), nil
	case "bolt":
		return OpenBoltStore(opts.Path, opts.Document)
	case "postgres":
		return OpenPostgresStore(ctx, opts.DSN, opts.Document)
	case "memory":
		return NewMemStore(), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", opts.Driver)
	}
}

func withTimeout(parent context.Context, d time.Duration, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(parent, d)
	defer cancel()
	return fn(ctx)
}
