package cache

import (
	"sort"
	"sync"
)

// Resource is one screen permission: a route pattern and method granted to
// a role under a screen code.
type Resource struct {
	Code   string
	Path   string
	Method string
	Role   string
}

// RbacRolesCache maps roles to the resources they may reach.
type RbacRolesCache struct {
	mu        sync.RWMutex
	resources map[string][]Resource
	codes     map[string]struct{}
}

func NewRbacRolesCache() *RbacRolesCache {
	return &RbacRolesCache{
		resources: make(map[string][]Resource),
		codes:     make(map[string]struct{}),
	}
}

func (c *RbacRolesCache) Add(role string, r Resource) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resources[role] = append(c.resources[role], r)
	c.codes[r.Code] = struct{}{}
}

// Resources returns every resource granted to any of roles.
func (c *RbacRolesCache) Resources(roles []string) []Resource {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var out []Resource
	for _, role := range roles {
		out = append(out, c.resources[role]...)
	}
	return out
}

// Permissions returns the screen codes granted to roles as a code→1 map.
func (c *RbacRolesCache) Permissions(roles []string) map[string]int {
	out := make(map[string]int)
	for _, r := range c.Resources(roles) {
		out[r.Code] = 1
	}
	return out
}

func (c *RbacRolesCache) Codes() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, 0, len(c.codes))
	for name := range c.codes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
