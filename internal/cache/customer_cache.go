package cache

import (
	"strings"

	"go.uber.org/fx"
)

// Module provides the run-scoped customer cache.
var Module = fx.Provide(NewCustomerCache)

// CustomerCache maps account ids to platform-assigned customer ids for
// the lifetime of one run. Entries are insert-only.
type CustomerCache interface {
	Get(accountID string) (string, bool)
	Set(accountID, customerID string)
	Len() int
}

type customerCache struct {
	entries map[string]string
}

// NewCustomerCache returns an empty in-memory customer cache.
func NewCustomerCache() CustomerCache {
	return &customerCache{entries: make(map[string]string)}
}

func (c *customerCache) Get(accountID string) (string, bool) {
	id, ok := c.entries[cacheKey(accountID)]
	return id, ok
}

func (c *customerCache) Set(accountID, customerID string) {
	key := cacheKey(accountID)
	if key == "" || customerID == "" {
		return
	}
	if _, exists := c.entries[key]; exists {
		return
	}
	c.entries[key] = customerID
}

func (c *customerCache) Len() int {
	return len(c.entries)
}

func cacheKey(accountID string) string {
	return strings.TrimSpace(accountID)
}
