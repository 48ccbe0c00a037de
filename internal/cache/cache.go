// Package cache holds the session-scoped mapping from canonical requests
// to their raw oracle tables.
package cache

import (
	"fmt"
	"sync"

	"epqref/internal/request"
	"epqref/internal/wire"
)

// ErrAlreadyPopulated guards against a second oracle invocation in one
// session.
var ErrAlreadyPopulated = fmt.Errorf("result cache already populated")

// MissError reports a lookup for a request that was never batched. It
// indicates an orchestrator bug (lookup-time reconstruction diverged from
// scan-time construction), not a data problem, and must never be
// swallowed.
type MissError struct {
	WireLine string
}

func (e *MissError) Error() string {
	return fmt.Sprintf("no reference data cached for request %q", e.WireLine)
}

// Cache is populated exactly once, before any dependent test runs, and is
// read-only afterwards. The mutex only guards the populate/read ordering;
// there is no writer contention after the bulk load.
type Cache struct {
	mu        sync.RWMutex
	populated bool
	tables    map[string]wire.Table
}

// New returns an empty session cache.
func New() *Cache {
	return &Cache{}
}

// Populate performs the one-time bulk load, keyed by canonical wire line.
func (c *Cache) Populate(tables map[string]wire.Table) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.populated {
		return ErrAlreadyPopulated
	}
	c.tables = make(map[string]wire.Table, len(tables))
	for key, table := range tables {
		c.tables[key] = table
	}
	c.populated = true
	return nil
}

// Populated reports whether the bulk load has happened.
func (c *Cache) Populated() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.populated
}

// Len returns the number of cached tables.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.tables)
}

// Lookup returns the table for a request. An empty table (header, zero
// rows) is a valid hit; only an absent key is a miss.
func (c *Cache) Lookup(req request.Request) (wire.Table, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	table, ok := c.tables[req.Key()]
	if !ok {
		return wire.Table{}, &MissError{WireLine: req.WireLine()}
	}
	return table, nil
}
