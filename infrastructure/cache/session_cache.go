package cache

import (
	"sync"
	"time"

	"adminconsole/models"
)

// SessionCache holds live operator sessions by token.
type SessionCache struct {
	mu       sync.RWMutex
	sessions map[string]models.Session
}

func NewSessionCache() *SessionCache {
	return &SessionCache{sessions: make(map[string]models.Session)}
}

func (c *SessionCache) Add(s models.Session) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sessions[s.ID] = s
}

func (c *SessionCache) Get(token string) (models.Session, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s, ok := c.sessions[token]
	return s, ok
}

func (c *SessionCache) Delete(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.sessions, token)
}

// Sweep removes sessions expired at now and returns their tokens.
func (c *SessionCache) Sweep(now time.Time) []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	var expired []string
	for token, s := range c.sessions {
		if now.After(s.ExpiresAt) {
			expired = append(expired, token)
			delete(c.sessions, token)
		}
	}
	return expired
}
