package content

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// Collection is an immutable, indexed set of entities of one kind.
// It is safe for concurrent use; nothing is written after NewCollection returns.
// Values handed out share slice backing arrays with the collection, so callers
// must treat them as read-only.
type Collection[T Entity] struct {
	kind  Kind
	items []T
	index map[Key]int
}

// NewCollection validates items and indexes them by key. Duplicate keys, empty
// slugs, empty names and empty descriptions are reported together.
func NewCollection[T Entity](kind Kind, items []T) (*Collection[T], error) {
	c := &Collection[T]{
		kind:  kind,
		items: slices.Clone(items),
		index: make(map[Key]int, len(items)),
	}
	var errs []error
	for i, it := range c.items {
		key := it.EntityKey()
		if err := checkEntity(kind, i, it); err != nil {
			errs = append(errs, err)
			continue
		}
		if j, dup := c.index[key]; dup {
			errs = append(errs, fmt.Errorf("%s %q: duplicate key (entries %d and %d)", kind, key, j+1, i+1))
			continue
		}
		c.index[key] = i
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return c, nil
}

func checkEntity(kind Kind, i int, e Entity) error {
	key := e.EntityKey()
	var problems []string
	if key.Slug == "" {
		problems = append(problems, "empty slug")
	}
	switch {
	case kind == KindPlace && key.Category == "":
		problems = append(problems, "empty category")
	case kind != KindPlace && key.Category != "":
		problems = append(problems, "category set on non-place entity")
	}
	if strings.TrimSpace(e.DisplayName()) == "" {
		problems = append(problems, "empty name")
	}
	if strings.TrimSpace(e.Summary()) == "" {
		problems = append(problems, "empty description")
	}
	if len(problems) == 0 {
		return nil
	}
	return fmt.Errorf("%s entry %d (%q): %s", kind, i+1, key, strings.Join(problems, ", "))
}

// Kind reports which partition this collection holds.
func (c *Collection[T]) Kind() Kind {
	return c.kind
}

// Lookup returns the entity whose key equals key exactly.
func (c *Collection[T]) Lookup(key Key) (T, bool) {
	var zero T
	if c == nil {
		return zero, false
	}
	i, ok := c.index[key]
	if !ok {
		return zero, false
	}
	return c.items[i], true
}

// BySlug looks up an entity of a slug-keyed kind. It never matches places.
func (c *Collection[T]) BySlug(slug string) (T, bool) {
	return c.Lookup(Key{Slug: slug})
}

// ByCategoryAndSlug looks up a place. A slug under the wrong category misses.
func (c *Collection[T]) ByCategoryAndSlug(category, slug string) (T, bool) {
	return c.Lookup(Key{Category: category, Slug: slug})
}

// Keys lists every key in content order. The list is rebuilt on each call.
func (c *Collection[T]) Keys() []Key {
	if c == nil {
		return nil
	}
	keys := make([]Key, 0, len(c.items))
	for _, it := range c.items {
		keys = append(keys, it.EntityKey())
	}
	return keys
}

// All returns the entities in content order.
func (c *Collection[T]) All() []T {
	if c == nil {
		return nil
	}
	return slices.Clone(c.items)
}

// Len returns the number of entities.
func (c *Collection[T]) Len() int {
	if c == nil {
		return 0
	}
	return len(c.items)
}
