package typeoracle

import (
	"reflect"
	"sync"
)

// schemaCache memoizes canonical names and in-progress markers per
// reflect.Type so ReflectOracle.Describe need not walk a type's full
// struct graph more than once, and so a circular reference (A has a
// field of type *A, or A -> B -> A) resolves to a $ref instead of
// recursing forever.
type schemaCache struct {
	mu         sync.Mutex
	names      map[reflect.Type]string
	byName     map[string]reflect.Type
	inProgress map[reflect.Type]bool
}

func newSchemaCache() *schemaCache {
	return &schemaCache{
		names:      make(map[reflect.Type]string),
		byName:     make(map[string]reflect.Type),
		inProgress: make(map[reflect.Type]bool),
	}
}

func (c *schemaCache) nameFor(t reflect.Type) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	name, ok := c.names[t]
	return name, ok
}

func (c *schemaCache) typeForName(name string) (reflect.Type, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	t, ok := c.byName[name]
	return t, ok
}

func (c *schemaCache) set(t reflect.Type, name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.names[t] = name
	c.byName[name] = t
}

func (c *schemaCache) markInProgress(t reflect.Type) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.inProgress[t] = true
}

func (c *schemaCache) clearInProgress(t reflect.Type) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.inProgress, t)
}

func (c *schemaCache) isInProgress(t reflect.Type) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inProgress[t]
}
