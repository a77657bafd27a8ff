package core

import (
	"fmt"
	"maps"
	"strconv"

	"penumbra/internal/domain"
)

// Item is one in-game item a path contributes to
type Item struct {
	Name string
	Ref  any
}

// Identifier maps a game path onto the items it changes. An error for one
// path does not stop classification of the others.
type Identifier interface {
	Identify(path domain.GamePath) ([]Item, error)
}

// IdentifierFunc adapts a function to Identifier
type IdentifierFunc func(path domain.GamePath) ([]Item, error)

// Identify implements Identifier
func (f IdentifierFunc) Identify(path domain.GamePath) ([]Item, error) {
	return f(path)
}

// ChangedItems returns item name to item reference for every path Lookup
// would serve. The index is built on first read after a pass and cached
// until the next one; callers get their own copy. Variant table files are
// skipped since they belong to a whole set.
func (c *CollectionCache) ChangedItems() map[string]any {
	res := c.current.Load()
	if m := res.changed.Load(); m != nil {
		return maps.Clone(*m)
	}
	if c.identifier == nil {
		return map[string]any{}
	}

	v, _, _ := c.classify.Do(strconv.FormatUint(res.generation, 10), func() (any, error) {
		if m := res.changed.Load(); m != nil {
			return *m, nil
		}
		items := c.classifyPaths(res)
		res.changed.Store(&items)
		return items, nil
	})
	return maps.Clone(v.(map[string]any))
}

func (c *CollectionCache) classifyPaths(res *resolution) map[string]any {
	items := make(map[string]any)
	failed := 0
	for path, file := range res.files {
		if path.Extension() == ".imc" || !c.servable(file) {
			continue
		}
		found, err := c.identify(path)
		if err != nil {
			failed++
			c.log.Warn().Err(err).Str("path", path.String()).Msg("Could not identify changed item")
			continue
		}
		for _, item := range found {
			if _, ok := items[item.Name]; !ok {
				items[item.Name] = item.Ref
			}
		}
	}

	c.log.Debug().
		Uint64("generation", res.generation).
		Int("items", len(items)).
		Int("failed", failed).
		Msg("Classified changed items")
	return items
}

// identify calls the identifier, turning a panic into an error
func (c *CollectionCache) identify(path domain.GamePath) (items []Item, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("identifier panicked: %v", r)
		}
	}()
	return c.identifier.Identify(path)
}
