package cache

import (
	"strings"
	"sync"

	"adminconsole/models"
)

// OperatorCache caches operators by case-folded username.
type OperatorCache struct {
	mu        sync.RWMutex
	operators map[string]models.Operator
}

func NewOperatorCache() *OperatorCache {
	return &OperatorCache{operators: make(map[string]models.Operator)}
}

func (c *OperatorCache) Add(op models.Operator) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.operators[strings.ToLower(op.Username)] = op
}

func (c *OperatorCache) Get(username string) (models.Operator, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	op, ok := c.operators[strings.ToLower(username)]
	return op, ok
}
