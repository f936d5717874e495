package schema

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Provider resolves an entity name to its column map.
type Provider interface {
	Resolve(ctx context.Context, entity string) (*EntityColumnMap, error)
}

// Static serves column maps registered up front.
type Static struct {
	maps map[string]*EntityColumnMap
}

// NewStatic builds a Static provider. Every map is validated.
func NewStatic(maps ...*EntityColumnMap) (*Static, error) {
	s := &Static{maps: make(map[string]*EntityColumnMap, len(maps))}
	for _, m := range maps {
		if err := s.Register(m); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Register adds a copy of m. Registering the same entity twice is an error.
func (s *Static) Register(m *EntityColumnMap) error {
	if m.Entity == "" {
		return &ResolveError{Code: ErrCodeInvalidMap, Message: "entity name is required"}
	}
	if err := m.Validate(); err != nil {
		return err
	}
	key := Fold(m.Entity)
	if _, ok := s.maps[key]; ok {
		return &ResolveError{Entity: m.Entity, Code: ErrCodeInvalidMap, Message: "entity registered twice"}
	}
	s.maps[key] = m.Clone()
	return nil
}

// Resolve implements Provider.
func (s *Static) Resolve(_ context.Context, entity string) (*EntityColumnMap, error) {
	m, ok := s.maps[Fold(entity)]
	if !ok {
		return nil, &ResolveError{Entity: entity, Code: ErrCodeUnknownEntity, Message: "no column map registered"}
	}
	return m, nil
}

// Entities lists registered entity names, sorted.
func (s *Static) Entities() []string {
	names := make([]string, 0, len(s.maps))
	for _, m := range s.maps {
		names = append(names, m.Entity)
	}
	sort.Strings(names)
	return names
}

// Cache memoizes successful resolutions of an underlying Provider.
// Failures are not cached.
type Cache struct {
	next Provider

	mu   sync.Mutex
	maps map[string]*EntityColumnMap
}

// NewCache wraps next.
func NewCache(next Provider) *Cache {
	return &Cache{next: next, maps: make(map[string]*EntityColumnMap)}
}

// Resolve implements Provider.
func (c *Cache) Resolve(ctx context.Context, entity string) (*EntityColumnMap, error) {
	key := Fold(entity)

	c.mu.Lock()
	defer c.mu.Unlock()

	if m, ok := c.maps[key]; ok {
		return m, nil
	}
	m, err := c.next.Resolve(ctx, entity)
	if err != nil {
		return nil, err
	}
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("resolve %q: %w", entity, err)
	}
	c.maps[key] = m
	return m, nil
}

// Invalidate drops the cached map for entity.
func (c *Cache) Invalidate(entity string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.maps, Fold(entity))
}
