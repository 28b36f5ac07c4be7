// BotServer - General Bots Conversational Platform
// Copyright 2026 General Bots
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/GeneralBots/botserver-sub005

package rbac

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/GeneralBots/botserver-sub005/internal/auth"
	"github.com/GeneralBots/botserver-sub005/internal/logging"
)

// Config controls manager behavior.
type Config struct {
	// CacheTTL bounds how long an allow decision stays cached.
	CacheTTL time.Duration

	// EnableCache turns the decision cache on.
	EnableCache bool

	// EnableGroupInheritance includes the user's groups in ACL checks.
	EnableGroupInheritance bool

	// DefaultDeny controls the outcome when no rule or ACL matches.
	// Production deployments leave this true.
	DefaultDeny bool

	// AuditAllDecisions sends every decision to the audit logger, not
	// just denials.
	AuditAllDecisions bool
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		CacheTTL:               5 * time.Minute,
		EnableCache:            true,
		EnableGroupInheritance: true,
		DefaultDeny:            true,
		AuditAllDecisions:      false,
	}
}

// Manager is the authorization decision engine. Routes, resource ACLs,
// group memberships and the decision cache are guarded independently, so
// a route check never contends with an ACL mutation.
//
// Deny decisions are never cached: a denied user whose access is granted
// moments later must not keep hitting a stale deny.
type Manager struct {
	config Config

	routesMu sync.RWMutex
	routes   []RoutePermission

	aclsMu sync.RWMutex
	acls   map[string]*ResourceAcl

	groupsMu sync.RWMutex
	groups   map[uuid.UUID][]string

	cache *decisionCache
	audit *AuditLogger
}

// NewManager creates a manager with the given config and audit logger.
// A nil audit logger disables auditing.
func NewManager(config Config, audit *AuditLogger) *Manager {
	if config.CacheTTL <= 0 {
		config.CacheTTL = 5 * time.Minute
	}
	return &Manager{
		config: config,
		acls:   make(map[string]*ResourceAcl),
		groups: make(map[uuid.UUID][]string),
		cache:  newDecisionCache(config.CacheTTL),
		audit:  audit,
	}
}

// NewManagerWithDefaults creates a manager with DefaultConfig and no
// audit logger.
func NewManagerWithDefaults() *Manager {
	return NewManager(DefaultConfig(), nil)
}

// Config returns the manager's configuration.
func (m *Manager) Config() Config {
	return m.config
}

// RegisterRoute appends one rule to the registry. Registration order is
// evaluation order.
func (m *Manager) RegisterRoute(route RoutePermission) {
	m.routesMu.Lock()
	defer m.routesMu.Unlock()
	m.routes = append(m.routes, route)
}

// RegisterRoutes appends rules preserving their order.
func (m *Manager) RegisterRoutes(routes []RoutePermission) {
	m.routesMu.Lock()
	defer m.routesMu.Unlock()
	m.routes = append(m.routes, routes...)
}

// RouteCount returns the number of registered rules.
func (m *Manager) RouteCount() int {
	m.routesMu.RLock()
	defer m.routesMu.RUnlock()
	return len(m.routes)
}

// CheckRouteAccess evaluates a request path and method for the user.
// Rules are scanned in registration order; the first rule whose method
// and pattern match decides, and no later rule is consulted. With no
// match the configured default applies.
func (m *Manager) CheckRouteAccess(ctx context.Context, path, method string, user *auth.AuthenticatedUser) AccessDecisionResult {
	start := time.Now()
	result := m.checkRouteAccess(path, method, user)
	elapsed := time.Since(start)

	recordDecision("route", result, elapsed)
	if m.config.AuditAllDecisions || !result.Allowed() {
		m.audit.RecordDecision(ctx, user.UserID.String(), user.Username,
			roleNamesOf(user), "route", path, method, result, elapsed)
	}
	return result
}

func (m *Manager) checkRouteAccess(path, method string, user *auth.AuthenticatedUser) AccessDecisionResult {
	cacheKey := fmt.Sprintf("route:%s:%s:%s", path, method, user.UserID)

	if m.config.EnableCache {
		if cached, ok := m.cache.get(cacheKey); ok {
			return cached.withCacheHit()
		}
	}

	m.routesMu.RLock()
	defer m.routesMu.RUnlock()

	for _, route := range m.routes {
		if !route.matchesMethod(method) {
			continue
		}
		if !route.MatchesPath(path) {
			continue
		}

		if route.AllowAnonymous {
			result := allow("Anonymous access allowed").withRule(route.PathPattern)
			m.cacheResult(cacheKey, result)
			return result
		}

		if !user.IsAuthenticated() {
			return deny("Authentication required")
		}

		if len(route.RequiredRoles) > 0 {
			hasRole := false
			for _, name := range route.RequiredRoles {
				if user.HasRole(auth.ParseRole(name)) {
					hasRole = true
					break
				}
			}
			if !hasRole {
				return deny("Insufficient role").withRule(route.PathPattern)
			}
		}

		if route.RequiredPermission != "" {
			if !CheckPermissionString(user, route.RequiredPermission) {
				return deny("Missing required permission").withRule(route.PathPattern)
			}
		}

		result := allow("Access granted").withRule(route.PathPattern)
		m.cacheResult(cacheKey, result)
		return result
	}

	if m.config.DefaultDeny {
		return deny("No matching route permission found")
	}
	return allow("Default allow - no matching rule")
}

// CheckResourceAccess evaluates a resource ACL check for the user.
// Admins bypass ACLs entirely. Without an ACL the configured default
// applies.
func (m *Manager) CheckResourceAccess(ctx context.Context, user *auth.AuthenticatedUser, resourceType, resourceID, permission string) AccessDecisionResult {
	start := time.Now()
	result := m.checkResourceAccess(user, resourceType, resourceID, permission)
	elapsed := time.Since(start)

	recordDecision("resource", result, elapsed)
	if m.config.AuditAllDecisions || !result.Allowed() {
		m.audit.RecordDecision(ctx, user.UserID.String(), user.Username,
			roleNamesOf(user), "resource", resourceType+":"+resourceID, permission,
			result, elapsed)
	}
	return result
}

func (m *Manager) checkResourceAccess(user *auth.AuthenticatedUser, resourceType, resourceID, permission string) AccessDecisionResult {
	cacheKey := fmt.Sprintf("resource:%s:%s:%s:%s", resourceType, resourceID, permission, user.UserID)

	if m.config.EnableCache {
		if cached, ok := m.cache.get(cacheKey); ok {
			return cached.withCacheHit()
		}
	}

	if user.IsAdmin() {
		result := allow("Admin access")
		m.cacheResult(cacheKey, result)
		return result
	}

	// The ACL is evaluated under the read lock so a concurrent
	// UpdateResourceACL cannot mutate its maps mid-check.
	m.aclsMu.RLock()
	acl, ok := m.acls[aclKey(resourceType, resourceID)]
	if ok {
		var groups []string
		if m.config.EnableGroupInheritance {
			groups = m.GetUserGroups(user.UserID)
		}
		var userID *uuid.UUID
		if user.IsAuthenticated() {
			id := user.UserID
			userID = &id
		}

		granted := acl.CheckAccess(userID, groups, permission)
		m.aclsMu.RUnlock()

		if granted {
			result := allow("ACL permission granted")
			m.cacheResult(cacheKey, result)
			return result
		}
		return deny("ACL permission denied")
	}
	m.aclsMu.RUnlock()

	if m.config.DefaultDeny {
		return deny("No ACL found for resource")
	}
	return allow("Default allow - no ACL defined")
}

// SetResourceACL installs or replaces an ACL. Every cached resource
// decision is invalidated; the coarse sweep trades precision for a
// simple correctness argument.
func (m *Manager) SetResourceACL(acl *ResourceAcl) {
	m.aclsMu.Lock()
	m.acls[aclKey(acl.ResourceType, acl.ResourceID)] = acl.Clone()
	m.aclsMu.Unlock()

	m.invalidateResourceCache("acl_set")
}

// GetResourceACL returns a copy of the ACL, or nil if none exists.
func (m *Manager) GetResourceACL(resourceType, resourceID string) *ResourceAcl {
	m.aclsMu.RLock()
	defer m.aclsMu.RUnlock()

	if acl, ok := m.acls[aclKey(resourceType, resourceID)]; ok {
		return acl.Clone()
	}
	return nil
}

// DeleteResourceACL removes an ACL and invalidates resource decisions.
func (m *Manager) DeleteResourceACL(resourceType, resourceID string) {
	m.aclsMu.Lock()
	delete(m.acls, aclKey(resourceType, resourceID))
	m.aclsMu.Unlock()

	m.invalidateResourceCache("acl_delete")
}

// UpdateResourceACL applies fn to the ACL under the write lock, creating
// an empty ACL first if none exists. Grant/revoke handlers use this to
// avoid a read-modify-write race.
func (m *Manager) UpdateResourceACL(resourceType, resourceID string, fn func(*ResourceAcl)) {
	m.aclsMu.Lock()
	key := aclKey(resourceType, resourceID)
	acl, ok := m.acls[key]
	if !ok {
		acl = NewResourceAcl(resourceType, resourceID)
		m.acls[key] = acl
	}
	fn(acl)
	m.aclsMu.Unlock()

	m.invalidateResourceCache("acl_update")
}

// SetUserGroups replaces the user's group memberships.
func (m *Manager) SetUserGroups(userID uuid.UUID, groups []string) {
	m.groupsMu.Lock()
	m.groups[userID] = groups
	m.groupsMu.Unlock()

	m.invalidateResourceCache("groups_set")
}

// AddUserToGroup appends a group membership.
func (m *Manager) AddUserToGroup(userID uuid.UUID, group string) {
	m.groupsMu.Lock()
	m.groups[userID] = append(m.groups[userID], group)
	m.groupsMu.Unlock()

	m.invalidateResourceCache("group_add")
}

// RemoveUserFromGroup removes a group membership.
func (m *Manager) RemoveUserFromGroup(userID uuid.UUID, group string) {
	m.groupsMu.Lock()
	groups := m.groups[userID]
	filtered := groups[:0]
	for _, g := range groups {
		if g != group {
			filtered = append(filtered, g)
		}
	}
	m.groups[userID] = filtered
	m.groupsMu.Unlock()

	m.invalidateResourceCache("group_remove")
}

// GetUserGroups returns the user's groups, empty when none are set.
func (m *Manager) GetUserGroups(userID uuid.UUID) []string {
	m.groupsMu.RLock()
	defer m.groupsMu.RUnlock()

	groups := m.groups[userID]
	out := make([]string, len(groups))
	copy(out, groups)
	return out
}

// InvalidateResource drops cached decisions for a single resource. The
// mutators deliberately use the coarser namespace-wide flush; this is for
// callers that know only one resource changed.
func (m *Manager) InvalidateResource(resourceType, resourceID string) {
	removed := m.cache.invalidatePrefix(fmt.Sprintf("resource:%s:%s:", resourceType, resourceID))
	recordInvalidation("resource_scoped", removed)
	rbacCacheEntries.Set(float64(m.cache.len()))
}

// InvalidateUserCache drops every cached decision for one user, route and
// resource alike. Called when a user's roles change.
func (m *Manager) InvalidateUserCache(userID uuid.UUID) {
	removed := m.cache.invalidateSuffix(":" + userID.String())
	recordInvalidation("user", removed)
	rbacCacheEntries.Set(float64(m.cache.len()))
}

// ClearCache drops every cached decision.
func (m *Manager) ClearCache() {
	m.cache.clear()
	rbacCacheEntries.Set(0)
}

// CacheLen returns the current cache entry count.
func (m *Manager) CacheLen() int {
	return m.cache.len()
}

// Close stops the cache sweeper and the audit logger. Idempotent.
func (m *Manager) Close() {
	m.cache.stop()
	m.audit.Close()
}

// cacheResult stores an allow decision. Callers never pass denies.
func (m *Manager) cacheResult(key string, result AccessDecisionResult) {
	if !m.config.EnableCache {
		return
	}
	m.cache.put(key, result)
	rbacCacheEntries.Set(float64(m.cache.len()))
}

// invalidateResourceCache drops all cached resource decisions. Any ACL or
// group mutation may change any resource decision involving groups or
// fresh grants, so the whole namespace goes.
func (m *Manager) invalidateResourceCache(reason string) {
	removed := m.cache.invalidatePrefix("resource:")
	recordInvalidation(reason, removed)
	rbacCacheEntries.Set(float64(m.cache.len()))

	if removed > 0 {
		logging.Debug().
			Str("reason", reason).
			Int("removed", removed).
			Msg("resource decision cache invalidated")
	}
}

func aclKey(resourceType, resourceID string) string {
	return resourceType + ":" + resourceID
}

func roleNamesOf(user *auth.AuthenticatedUser) []string {
	names := make([]string, len(user.Roles))
	for i, r := range user.Roles {
		names[i] = r.String()
	}
	return names
}
