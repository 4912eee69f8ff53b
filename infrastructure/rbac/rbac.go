package rbac

import (
	"strings"

	"adminconsole/infrastructure/cache"
)

const (
	RoleAdmin  = "admin"
	RoleViewer = "viewer"
)

// Roles lists every operator role in privilege order.
var Roles = []string{RoleAdmin, RoleViewer}

func ValidRole(role string) bool {
	for _, r := range Roles {
		if r == role {
			return true
		}
	}
	return false
}

// Rbac registers route permissions into the roles cache.
type Rbac struct {
	cache *cache.RbacRolesCache
}

func New(c *cache.RbacRolesCache) *Rbac {
	return &Rbac{cache: c}
}

// Grant gives each role access to method+path under the screen code.
// Path may use chi placeholders ({id}) or * for a segment.
func (r *Rbac) Grant(code, method, path string, roles ...string) {
	if r == nil || r.cache == nil {
		return
	}
	for _, role := range roles {
		r.cache.Add(role, cache.Resource{
			Role:   role,
			Code:   code,
			Method: strings.ToUpper(method),
			Path:   path,
		})
	}
}

// Allowed reports whether any resource admits method on urlPath.
func Allowed(resources []cache.Resource, urlPath, method string) bool {
	method = strings.ToUpper(method)
	for _, res := range resources {
		if res.Method == method && matchPath(res.Path, urlPath) {
			return true
		}
	}
	return false
}

func isWildcard(seg string) bool {
	return seg == "*" || (strings.HasPrefix(seg, "{") && strings.HasSuffix(seg, "}"))
}

func matchPath(pattern, path string) bool {
	if pattern == path {
		return true
	}
	patternSeg := strings.Split(strings.Trim(pattern, "/"), "/")
	pathSeg := strings.Split(strings.Trim(path, "/"), "/")

	if len(patternSeg) == len(pathSeg) {
		for i := range patternSeg {
			if isWildcard(patternSeg[i]) {
				if pathSeg[i] == "" {
					return false
				}
				continue
			}
			if patternSeg[i] != pathSeg[i] {
				return false
			}
		}
		return true
	}

	// Trailing * matches any deeper suffix.
	if last := len(patternSeg) - 1; patternSeg[last] == "*" && len(pathSeg) > last {
		for i := 0; i < last; i++ {
			if !isWildcard(patternSeg[i]) && patternSeg[i] != pathSeg[i] {
				return false
			}
		}
		return true
	}
	return false
}
