package inventory

import (
	"context"
	"strings"
	"sync"
)

// Service runs catalogue operations against a Store: reload, operate, and for
// mutations persist. Mutations are serialized by writeMu for the whole
// reload-modify-save cycle, so concurrent writers in this process cannot lose
// each other's updates. Reads take no lock.
type Service struct {
	store   Store
	ids     IDGenerator
	writeMu sync.Mutex
}

func NewService(store Store, ids IDGenerator) *Service {
	if ids == nil {
		ids = NewMillisIDs()
	}
	return &Service{store: store, ids: ids}
}

// Init seeds or repairs the persisted document. Call once at start-up.
func (s *Service) Init(ctx context.Context) (int, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	doc, err := EnsureInitialized(ctx, s.store)
	if err != nil {
		return 0, err
	}
	return len(doc.Games), nil
}

func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

func (s *Service) List(ctx context.Context) ([]Game, error) {
	doc, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	return doc.List(), nil
}

func (s *Service) Get(ctx context.Context, id int64) (Game, error) {
	doc, err := s.store.Load(ctx)
	if err != nil {
		return Game{}, err
	}
	g, ok := doc.Find(id)
	if !ok {
		return Game{}, ErrNotFound
	}
	return g, nil
}

func (s *Service) ByPlatform(ctx context.Context, platform string) ([]Game, error) {
	doc, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	return doc.ByPlatform(platform), nil
}

func (s *Service) Create(ctx context.Context, in NewGame) (Game, error) {
	if strings.TrimSpace(in.Title) == "" {
		return Game{}, ErrTitleRequired
	}

	var created Game
	err := s.mutate(ctx, func(doc *Document) error {
		created = doc.Insert(Game{
			ID:        s.ids.Next(doc.maxID()),
			Title:     in.Title,
			Platforms: in.Platforms,
			Stock:     in.Stock,
		})
		return nil
	})
	if err != nil {
		return Game{}, err
	}
	return created, nil
}

func (s *Service) Update(ctx context.Context, id int64, p Patch) (Game, error) {
	var updated Game
	err := s.mutate(ctx, func(doc *Document) error {
		g, ok := doc.Update(id, p)
		if !ok {
			return ErrNotFound
		}
		updated = g
		return nil
	})
	if err != nil {
		return Game{}, err
	}
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.mutate(ctx, func(doc *Document) error {
		if !doc.Delete(id) {
			return ErrNotFound
		}
		return nil
	})
}

// mutate skips the save when fn fails, leaving the stored document untouched.
func (s *Service) mutate(ctx context.Context, fn func(doc *Document) error) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	doc, err := s.store.Load(ctx)
	if err != nil {
		return err
	}
	if doc.Games == nil {
		doc.Games = []Game{}
	}
	if err := fn(&doc); err != nil {
		return err
	}
	return s.store.Save(ctx, doc)
}
