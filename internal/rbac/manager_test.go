// BotServer - General Bots Conversational Platform
// Copyright 2026 General Bots
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/GeneralBots/botserver-sub005

package rbac

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/GeneralBots/botserver-sub005/internal/auth"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	m := NewManagerWithDefaults()
	t.Cleanup(m.Close)
	return m
}

func TestCheckRouteAccess_AnonymousHealth(t *testing.T) {
	m := newTestManager(t)
	m.RegisterRoutes(DefaultRoutePermissions())

	decision := m.CheckRouteAccess(context.Background(), "/api/health", "GET", auth.Anonymous())

	if !decision.Allowed() {
		t.Fatalf("decision = %+v, want allow", decision)
	}
	if decision.Reason != "Anonymous access allowed" {
		t.Errorf("Reason = %q", decision.Reason)
	}
}

func TestCheckRouteAccess_ModeratorCannotDeleteUsers(t *testing.T) {
	m := newTestManager(t)
	m.RegisterRoutes(DefaultRoutePermissions())

	mod := auth.NewUser(uuid.New(), "mod").WithRoles(auth.RoleModerator)
	decision := m.CheckRouteAccess(context.Background(), "/api/users/42", "DELETE", mod)

	if decision.Allowed() {
		t.Fatal("moderator should not delete users")
	}
	if decision.Reason != "Insufficient role" {
		t.Errorf("Reason = %q, want Insufficient role", decision.Reason)
	}
}

func TestCheckRouteAccess_AuthenticationRequired(t *testing.T) {
	m := newTestManager(t)
	m.RegisterRoute(NewRoutePermission("/api/mail/**", "GET", ""))

	decision := m.CheckRouteAccess(context.Background(), "/api/mail/inbox", "GET", auth.Anonymous())

	if decision.Allowed() {
		t.Fatal("anonymous should be denied on authenticated route")
	}
	if decision.Reason != "Authentication required" {
		t.Errorf("Reason = %q", decision.Reason)
	}
}

func TestCheckRouteAccess_FirstMatchWins(t *testing.T) {
	m := newTestManager(t)
	// Specific anonymous rule registered before a broad admin-only rule.
	m.RegisterRoute(NewRoutePermission("/api/docs/public", "GET", "").WithAnonymous(true))
	m.RegisterRoute(NewRoutePermission("/api/docs/**", "GET", "").WithRoles("Admin"))

	if d := m.CheckRouteAccess(context.Background(), "/api/docs/public", "GET", auth.Anonymous()); !d.Allowed() {
		t.Errorf("specific rule should win: %+v", d)
	}

	user := auth.NewUser(uuid.New(), "bob")
	if d := m.CheckRouteAccess(context.Background(), "/api/docs/internal", "GET", user); d.Allowed() {
		t.Error("broad rule should gate other paths")
	}
}

func TestCheckRouteAccess_RequiredPermission(t *testing.T) {
	m := newTestManager(t)
	m.RegisterRoute(NewRoutePermission("/api/reports", "GET", "view_analytics"))

	user := auth.NewUser(uuid.New(), "bob")
	decision := m.CheckRouteAccess(context.Background(), "/api/reports", "GET", user)
	if decision.Allowed() {
		t.Fatal("plain user lacks view_analytics")
	}
	if decision.Reason != "Missing required permission" {
		t.Errorf("Reason = %q", decision.Reason)
	}

	mod := auth.NewUser(uuid.New(), "mod").WithRoles(auth.RoleModerator)
	if d := m.CheckRouteAccess(context.Background(), "/api/reports", "GET", mod); !d.Allowed() {
		t.Errorf("moderator holds view_analytics: %+v", d)
	}
}

func TestCheckRouteAccess_UnknownPermissionFailsClosed(t *testing.T) {
	m := newTestManager(t)
	m.RegisterRoute(NewRoutePermission("/api/x", "GET", "no_such_permission"))

	super := auth.NewUser(uuid.New(), "root").WithRoles(auth.RoleSuperAdmin)
	if d := m.CheckRouteAccess(context.Background(), "/api/x", "GET", super); d.Allowed() {
		t.Error("unresolvable permission must deny even a super admin")
	}
}

func TestCheckRouteAccess_DefaultDeny(t *testing.T) {
	m := newTestManager(t)

	decision := m.CheckRouteAccess(context.Background(), "/api/unknown", "GET", auth.NewUser(uuid.New(), "bob"))
	if decision.Allowed() {
		t.Fatal("unmatched route should deny by default")
	}
	if decision.Reason != "No matching route permission found" {
		t.Errorf("Reason = %q", decision.Reason)
	}
}

func TestCheckRouteAccess_DefaultAllow(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DefaultDeny = false
	m := NewManager(cfg, nil)
	defer m.Close()

	decision := m.CheckRouteAccess(context.Background(), "/api/unknown", "GET", auth.Anonymous())
	if !decision.Allowed() {
		t.Fatal("default_deny=false should allow unmatched routes")
	}
	if decision.Reason != "Default allow - no matching rule" {
		t.Errorf("Reason = %q", decision.Reason)
	}
}

func TestCheckRouteAccess_MethodMatching(t *testing.T) {
	m := newTestManager(t)
	m.RegisterRoute(NewRoutePermission("/api/hooks", "*", "").WithAnonymous(true))

	for _, method := range []string{"GET", "POST", "delete"} {
		if d := m.CheckRouteAccess(context.Background(), "/api/hooks", method, auth.Anonymous()); !d.Allowed() {
			t.Errorf("wildcard method should allow %s", method)
		}
	}
}

func TestCheckRouteAccess_AllowCached(t *testing.T) {
	m := newTestManager(t)
	m.RegisterRoute(NewRoutePermission("/api/open", "GET", "").WithAnonymous(true))
	user := auth.Anonymous()

	first := m.CheckRouteAccess(context.Background(), "/api/open", "GET", user)
	if first.CacheHit {
		t.Error("first check should not be a cache hit")
	}

	second := m.CheckRouteAccess(context.Background(), "/api/open", "GET", user)
	if !second.CacheHit {
		t.Error("second check should hit the cache")
	}
	if second.Reason != first.Reason {
		t.Errorf("cached reason %q != %q", second.Reason, first.Reason)
	}
}

func TestCheckRouteAccess_DenyNotCached(t *testing.T) {
	m := newTestManager(t)
	m.RegisterRoute(NewRoutePermission("/api/mail", "GET", ""))

	anon := auth.Anonymous()
	m.CheckRouteAccess(context.Background(), "/api/mail", "GET", anon)

	if m.CacheLen() != 0 {
		t.Errorf("deny should not be cached, cache has %d entries", m.CacheLen())
	}

	second := m.CheckRouteAccess(context.Background(), "/api/mail", "GET", anon)
	if second.CacheHit {
		t.Error("repeated deny must be recomputed")
	}
}

func TestCheckResourceAccess_AdminBypass(t *testing.T) {
	m := newTestManager(t)
	admin := auth.NewUser(uuid.New(), "admin").WithRoles(auth.RoleAdmin)

	decision := m.CheckResourceAccess(context.Background(), admin, "file", "123", "delete")
	if !decision.Allowed() {
		t.Fatalf("admin should bypass ACLs: %+v", decision)
	}
	if decision.Reason != "Admin access" {
		t.Errorf("Reason = %q", decision.Reason)
	}
}

func TestCheckResourceAccess_OwnerAndGrants(t *testing.T) {
	m := newTestManager(t)
	ownerID := uuid.New()
	granteeID := uuid.New()
	strangerID := uuid.New()

	acl := NewResourceAcl("file", "123").WithOwner(ownerID)
	acl.GrantUser(granteeID, "read")
	m.SetResourceACL(acl)

	owner := auth.NewUser(ownerID, "owner")
	if d := m.CheckResourceAccess(context.Background(), owner, "file", "123", "delete"); !d.Allowed() {
		t.Errorf("owner should have full access: %+v", d)
	}

	grantee := auth.NewUser(granteeID, "grantee")
	if d := m.CheckResourceAccess(context.Background(), grantee, "file", "123", "read"); !d.Allowed() {
		t.Errorf("grantee should read: %+v", d)
	}
	if d := m.CheckResourceAccess(context.Background(), grantee, "file", "123", "write"); d.Allowed() {
		t.Error("grantee should not write")
	}

	stranger := auth.NewUser(strangerID, "stranger")
	d := m.CheckResourceAccess(context.Background(), stranger, "file", "123", "read")
	if d.Allowed() {
		t.Error("stranger should be denied")
	}
	if d.Reason != "ACL permission denied" {
		t.Errorf("Reason = %q", d.Reason)
	}
}

func TestCheckResourceAccess_GroupGrant(t *testing.T) {
	m := newTestManager(t)
	userID := uuid.New()

	acl := NewResourceAcl("doc", "d1")
	acl.GrantGroup("editors", "write")
	m.SetResourceACL(acl)
	m.SetUserGroups(userID, []string{"editors"})

	user := auth.NewUser(userID, "bob")
	if d := m.CheckResourceAccess(context.Background(), user, "doc", "d1", "write"); !d.Allowed() {
		t.Errorf("group member should write: %+v", d)
	}

	m.RemoveUserFromGroup(userID, "editors")
	if d := m.CheckResourceAccess(context.Background(), user, "doc", "d1", "write"); d.Allowed() {
		t.Error("removed member should be denied")
	}
}

func TestCheckResourceAccess_GroupInheritanceDisabled(t *testing.T) {
	cfg := DefaultConfig()
	cfg.EnableGroupInheritance = false
	m := NewManager(cfg, nil)
	defer m.Close()

	userID := uuid.New()
	acl := NewResourceAcl("doc", "d1")
	acl.GrantGroup("editors", "write")
	m.SetResourceACL(acl)
	m.SetUserGroups(userID, []string{"editors"})

	user := auth.NewUser(userID, "bob")
	if d := m.CheckResourceAccess(context.Background(), user, "doc", "d1", "write"); d.Allowed() {
		t.Error("group grants should be ignored when inheritance is off")
	}
}

func TestCheckResourceAccess_NoACL(t *testing.T) {
	m := newTestManager(t)
	user := auth.NewUser(uuid.New(), "bob")

	decision := m.CheckResourceAccess(context.Background(), user, "file", "none", "read")
	if decision.Allowed() {
		t.Fatal("missing ACL should deny by default")
	}
	if decision.Reason != "No ACL found for resource" {
		t.Errorf("Reason = %q", decision.Reason)
	}
}

func TestCheckResourceAccess_PublicForAnonymous(t *testing.T) {
	m := newTestManager(t)

	acl := NewResourceAcl("page", "home")
	acl.SetPublic("read")
	m.SetResourceACL(acl)

	if d := m.CheckResourceAccess(context.Background(), auth.Anonymous(), "page", "home", "read"); !d.Allowed() {
		t.Errorf("public grant should allow anonymous: %+v", d)
	}
}

func TestMutationInvalidatesResourceCache(t *testing.T) {
	m := newTestManager(t)
	userID := uuid.New()
	user := auth.NewUser(userID, "bob")

	acl := NewResourceAcl("file", "1")
	acl.GrantUser(userID, "read")
	m.SetResourceACL(acl)

	// Warm route and resource entries.
	m.RegisterRoute(NewRoutePermission("/api/open", "GET", "").WithAnonymous(true))
	m.CheckRouteAccess(context.Background(), "/api/open", "GET", user)
	if d := m.CheckResourceAccess(context.Background(), user, "file", "1", "read"); !d.Allowed() {
		t.Fatalf("setup: %+v", d)
	}
	if d := m.CheckResourceAccess(context.Background(), user, "file", "1", "read"); !d.CacheHit {
		t.Fatal("setup: expected warm cache")
	}

	// Any ACL mutation flushes every resource decision.
	m.UpdateResourceACL("other", "2", func(a *ResourceAcl) {
		a.SetPublic("read")
	})

	d := m.CheckResourceAccess(context.Background(), user, "file", "1", "read")
	if d.CacheHit {
		t.Error("resource decisions should be recomputed after any ACL mutation")
	}

	// Route decisions survive.
	if d := m.CheckRouteAccess(context.Background(), "/api/open", "GET", user); !d.CacheHit {
		t.Error("route cache should be untouched by ACL mutations")
	}
}

func TestRevokeVisibleAfterInvalidation(t *testing.T) {
	m := newTestManager(t)
	userID := uuid.New()
	user := auth.NewUser(userID, "bob")

	acl := NewResourceAcl("file", "1")
	acl.GrantUser(userID, "read")
	m.SetResourceACL(acl)

	if d := m.CheckResourceAccess(context.Background(), user, "file", "1", "read"); !d.Allowed() {
		t.Fatalf("setup: %+v", d)
	}

	m.UpdateResourceACL("file", "1", func(a *ResourceAcl) {
		a.RevokeUser(userID, "read")
	})

	if d := m.CheckResourceAccess(context.Background(), user, "file", "1", "read"); d.Allowed() {
		t.Error("revoked grant must not be served from cache")
	}
}

func TestInvalidateUserCache_Isolation(t *testing.T) {
	m := newTestManager(t)
	m.RegisterRoute(NewRoutePermission("/api/open", "GET", "").WithAnonymous(true))

	alice := auth.NewUser(uuid.New(), "alice")
	bob := auth.NewUser(uuid.New(), "bob")

	m.CheckRouteAccess(context.Background(), "/api/open", "GET", alice)
	m.CheckRouteAccess(context.Background(), "/api/open", "GET", bob)

	m.InvalidateUserCache(alice.UserID)

	if d := m.CheckRouteAccess(context.Background(), "/api/open", "GET", alice); d.CacheHit {
		t.Error("alice's entries should be flushed")
	}
	if d := m.CheckRouteAccess(context.Background(), "/api/open", "GET", bob); !d.CacheHit {
		t.Error("bob's entries should survive")
	}
}

func TestCacheDisabled(t *testing.T) {
	cfg := DefaultConfig()
	cfg.EnableCache = false
	m := NewManager(cfg, nil)
	defer m.Close()

	m.RegisterRoute(NewRoutePermission("/api/open", "GET", "").WithAnonymous(true))
	user := auth.Anonymous()

	m.CheckRouteAccess(context.Background(), "/api/open", "GET", user)
	if d := m.CheckRouteAccess(context.Background(), "/api/open", "GET", user); d.CacheHit {
		t.Error("disabled cache should never report hits")
	}
	if m.CacheLen() != 0 {
		t.Errorf("disabled cache should stay empty, has %d", m.CacheLen())
	}
}

func TestCacheTTLExpiry(t *testing.T) {
	cfg := DefaultConfig()
	cfg.CacheTTL = 20 * time.Millisecond
	m := NewManager(cfg, nil)
	defer m.Close()

	m.RegisterRoute(NewRoutePermission("/api/open", "GET", "").WithAnonymous(true))
	user := auth.Anonymous()

	m.CheckRouteAccess(context.Background(), "/api/open", "GET", user)
	time.Sleep(50 * time.Millisecond)

	if d := m.CheckRouteAccess(context.Background(), "/api/open", "GET", user); d.CacheHit {
		t.Error("expired entry should not hit")
	}
}

func TestUserGroups_CRUD(t *testing.T) {
	m := newTestManager(t)
	userID := uuid.New()

	m.SetUserGroups(userID, []string{"editors", "viewers"})
	groups := m.GetUserGroups(userID)
	if len(groups) != 2 {
		t.Fatalf("groups = %v", groups)
	}

	m.AddUserToGroup(userID, "admins")
	if groups = m.GetUserGroups(userID); len(groups) != 3 {
		t.Errorf("groups = %v, want 3 entries", groups)
	}

	m.RemoveUserFromGroup(userID, "editors")
	groups = m.GetUserGroups(userID)
	for _, g := range groups {
		if g == "editors" {
			t.Error("editors should be removed")
		}
	}

	if got := m.GetUserGroups(uuid.New()); len(got) != 0 {
		t.Errorf("unknown user groups = %v, want empty", got)
	}
}

func TestACL_CRUD(t *testing.T) {
	m := newTestManager(t)
	ownerID := uuid.New()

	acl := NewResourceAcl("document", "doc-123").WithOwner(ownerID)
	m.SetResourceACL(acl)

	got := m.GetResourceACL("document", "doc-123")
	if got == nil {
		t.Fatal("ACL should be retrievable")
	}
	if got.OwnerID == nil || *got.OwnerID != ownerID {
		t.Errorf("OwnerID = %v, want %v", got.OwnerID, ownerID)
	}

	// Returned copy is detached from the stored ACL.
	got.GrantUser(uuid.New(), "write")
	if stored := m.GetResourceACL("document", "doc-123"); len(stored.Permissions) != 0 {
		t.Error("mutating a returned ACL must not affect the stored one")
	}

	m.DeleteResourceACL("document", "doc-123")
	if m.GetResourceACL("document", "doc-123") != nil {
		t.Error("deleted ACL should be gone")
	}
}

func TestClose_Idempotent(t *testing.T) {
	m := NewManagerWithDefaults()
	m.Close()
	m.Close()
}

func TestManager_ConcurrentChecksAndMutations(t *testing.T) {
	m := newTestManager(t)
	m.RegisterRoutes(DefaultRoutePermissions())

	userID := uuid.New()
	user := auth.NewUser(userID, "bob")
	acl := NewResourceAcl("file", "1")
	acl.GrantUser(userID, "read")
	m.SetResourceACL(acl)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				m.CheckRouteAccess(context.Background(), "/api/health", "GET", auth.Anonymous())
				m.CheckResourceAccess(context.Background(), user, "file", "1", "read")
			}
		}()
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		for j := 0; j < 50; j++ {
			m.UpdateResourceACL("file", "1", func(a *ResourceAcl) {
				a.GrantUser(uuid.New(), "read")
			})
			m.SetUserGroups(uuid.New(), []string{"g"})
		}
	}()
	wg.Wait()
}

func BenchmarkCheckRouteAccess_Cached(b *testing.B) {
	m := NewManagerWithDefaults()
	defer m.Close()
	m.RegisterRoutes(DefaultRoutePermissions())
	user := auth.Anonymous()
	ctx := context.Background()

	m.CheckRouteAccess(ctx, "/api/health", "GET", user)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		m.CheckRouteAccess(ctx, "/api/health", "GET", user)
	}
}
