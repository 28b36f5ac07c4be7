// BotServer - General Bots Conversational Platform
// Copyright 2026 General Bots
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/GeneralBots/botserver-sub005

package rbac

import (
	"strings"
	"sync"
	"time"
)

// decisionCache holds allow decisions keyed by
// "route:{path}:{method}:{userID}" or
// "resource:{type}:{id}:{permission}:{userID}". The key shapes matter:
// prefix invalidation targets the "resource:" namespace and suffix
// invalidation targets the trailing ":{userID}".
//
// Expiry is lazy on read; a background sweep reclaims memory but never
// changes what get returns.
type decisionCache struct {
	ttl      time.Duration
	mu       sync.RWMutex
	items    map[string]cacheEntry
	stopChan chan struct{}
	stopOnce sync.Once
}

type cacheEntry struct {
	result    AccessDecisionResult
	expiresAt time.Time
}

func newDecisionCache(ttl time.Duration) *decisionCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	c := &decisionCache{
		ttl:      ttl,
		items:    make(map[string]cacheEntry),
		stopChan: make(chan struct{}),
	}
	go c.sweep()
	return c
}

// get returns the cached result and whether it was present and fresh.
func (c *decisionCache) get(key string) (AccessDecisionResult, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.items[key]
	if !ok || time.Now().After(entry.expiresAt) {
		return AccessDecisionResult{}, false
	}
	return entry.result, true
}

// put stores a result unconditionally, resetting its TTL.
func (c *decisionCache) put(key string, result AccessDecisionResult) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items[key] = cacheEntry{
		result:    result,
		expiresAt: time.Now().Add(c.ttl),
	}
}

// invalidatePrefix removes every entry whose key starts with prefix.
func (c *decisionCache) invalidatePrefix(prefix string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for key := range c.items {
		if strings.HasPrefix(key, prefix) {
			delete(c.items, key)
			removed++
		}
	}
	return removed
}

// invalidateSuffix removes every entry whose key ends with suffix.
func (c *decisionCache) invalidateSuffix(suffix string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for key := range c.items {
		if strings.HasSuffix(key, suffix) {
			delete(c.items, key)
			removed++
		}
	}
	return removed
}

// clear removes all entries.
func (c *decisionCache) clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[string]cacheEntry)
}

// len returns the entry count, expired entries included.
func (c *decisionCache) len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// sweep periodically removes expired entries.
func (c *decisionCache) sweep() {
	ticker := time.NewTicker(c.ttl)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopChan:
			return
		case <-ticker.C:
			c.mu.Lock()
			now := time.Now()
			for key, entry := range c.items {
				if now.After(entry.expiresAt) {
					delete(c.items, key)
				}
			}
			c.mu.Unlock()
		}
	}
}

// stop halts the sweep goroutine. Safe to call more than once.
func (c *decisionCache) stop() {
	c.stopOnce.Do(func() {
		close(c.stopChan)
	})
}
