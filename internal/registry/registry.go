// Package registry holds the campaign: the ordered set of level
// definitions the platform can start, looked up by ID.
package registry

import (
	"errors"
	"fmt"
	"sync"

	"github.com/vovakirdan/tui-skybattle/internal/level"
)

// ErrUnknownLevel is returned when a level ID is not registered.
var ErrUnknownLevel = errors.New("registry: unknown level")

// LevelInfo contains metadata about a registered level.
type LevelInfo struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Goal  string `json:"goal"`
	Next  string `json:"next,omitempty"`
}

// Catalog is a concurrency-safe set of levels in campaign order.
type Catalog struct {
	mu    sync.RWMutex
	order []string
	defs  map[string]level.Definition
}

// New creates a catalog from defs, keeping their order.
func New(defs ...level.Definition) (*Catalog, error) {
	c := &Catalog{defs: make(map[string]level.Definition, len(defs))}
	for _, d := range defs {
		if err := c.Register(d); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Register appends a level to the campaign.
// Returns an error if a level with the same ID is already registered.
func (c *Catalog) Register(def level.Definition) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if def.ID == "" {
		return errors.New("registry: level without id")
	}
	if _, exists := c.defs[def.ID]; exists {
		return fmt.Errorf("registry: level %q already registered", def.ID)
	}
	c.defs[def.ID] = def
	c.order = append(c.order, def.ID)
	return nil
}

// List returns information about all registered levels in campaign order.
func (c *Catalog) List() []LevelInfo {
	c.mu.RLock()
	defer c.mu.RUnlock()

	result := make([]LevelInfo, 0, len(c.order))
	for _, id := range c.order {
		d := c.defs[id]
		result = append(result, LevelInfo{
			ID:    d.ID,
			Title: d.Title(),
			Goal:  string(d.Goal),
			Next:  d.Next,
		})
	}
	return result
}

// Lookup returns the definition of a level by its ID.
func (c *Catalog) Lookup(id string) (level.Definition, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	d, ok := c.defs[id]
	if !ok {
		return level.Definition{}, fmt.Errorf("%w %q", ErrUnknownLevel, id)
	}
	return d, nil
}

// Exists checks if a level with the given ID is registered.
func (c *Catalog) Exists(id string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	_, ok := c.defs[id]
	return ok
}

// First returns the level the campaign starts with.
func (c *Catalog) First() (level.Definition, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if len(c.order) == 0 {
		return level.Definition{}, false
	}
	return c.defs[c.order[0]], true
}

// Next returns the level that follows id. The second result is false when
// id is the final level.
func (c *Catalog) Next(id string) (level.Definition, bool, error) {
	cur, err := c.Lookup(id)
	if err != nil {
		return level.Definition{}, false, err
	}
	if cur.Final() {
		return level.Definition{}, false, nil
	}
	next, err := c.Lookup(cur.Next)
	if err != nil {
		return level.Definition{}, false, err
	}
	return next, true, nil
}

// Len returns the number of registered levels.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.order)
}
