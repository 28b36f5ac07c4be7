// BotServer - General Bots Conversational Platform
// Copyright 2026 General Bots
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/GeneralBots/botserver-sub005

package rbac

// Role name constants used in route rules. These are parsed with
// auth.ParseRole at check time, so any alias that resolves to the same
// role would also work.
const (
	roleAdmin      = "Admin"
	roleSuperAdmin = "SuperAdmin"
	roleModerator  = "Moderator"
)

func anon(pattern, method string) RoutePermission {
	return NewRoutePermission(pattern, method, "").WithAnonymous(true)
}

func authed(pattern, method string) RoutePermission {
	return NewRoutePermission(pattern, method, "")
}

func adminOnly(pattern, method string) RoutePermission {
	return NewRoutePermission(pattern, method, "").WithRoles(roleAdmin, roleSuperAdmin)
}

// DefaultRoutePermissions returns the stock route table. Ordering matters:
// rules are evaluated first-match, so specific rows precede their broader
// wildcard siblings (e.g. "/api/bots/:id" GET before the admin-gated
// mutation rows, "/api/sessions" POST anonymous before the authenticated
// GET rows).
func DefaultRoutePermissions() []RoutePermission {
	routes := []RoutePermission{
		// Public, no auth required.
		anon("/health", "GET"),
		anon("/healthz", "GET"),
		anon("/api/health", "GET"),
		anon("/api/version", "GET"),
		anon("/api/product", "GET"),
		anon("/api/i18n/**", "GET"),

		// Auth endpoints. Login and token refresh must be reachable
		// before a session exists.
		anon("/api/auth", "GET"),
		anon("/api/auth/login", "POST"),
		anon("/api/auth/bootstrap", "POST"),
		anon("/api/auth/refresh", "POST"),
		authed("/api/auth/logout", "POST"),
		authed("/api/auth/me", "GET"),
		authed("/api/auth/**", "GET"),
		authed("/api/auth/**", "POST"),

		// WebSocket and chat stay anonymous for customer support flows.
		anon("/ws", "GET"),
		anon("/ws/**", "GET"),
		anon("/api/chat/**", "GET"),
		anon("/api/chat/**", "POST"),

		// Anonymous visitors may open a session; listing requires auth.
		anon("/api/sessions", "POST"),
		authed("/api/sessions", "GET"),
		authed("/api/sessions/**", "GET"),
	}

	// Authenticated suite surfaces: full CRUD per prefix.
	for _, prefix := range []string{
		"drive", "files", "mail", "calendar", "docs", "paper", "sheet",
		"slides", "meet", "research", "sources", "canvas", "workspaces",
		"projects", "goals", "autotask", "designer", "dashboards", "db",
		"crm", "contacts", "products", "tickets", "email", "pages",
	} {
		for _, method := range []string{"GET", "POST", "PUT", "DELETE"} {
			routes = append(routes, authed("/api/"+prefix+"/**", method))
		}
	}

	routes = append(routes,
		authed("/api/tasks/**", "GET"),
		authed("/api/tasks/**", "POST"),
		authed("/api/tasks/**", "PUT"),
		authed("/api/tasks/**", "PATCH"),
		authed("/api/tasks/**", "DELETE"),

		authed("/api/settings/**", "GET"),
		authed("/api/settings/**", "POST"),
		authed("/api/settings/**", "PUT"),

		// Bots are readable by any authenticated user; mutation rows are
		// admin-gated further down.
		authed("/api/bots", "GET"),
		authed("/api/bots/:id", "GET"),
		authed("/api/bots/:id/**", "GET"),

		authed("/api/video/**", "GET"),
		authed("/api/video/**", "POST"),
		authed("/api/player/**", "GET"),
		authed("/api/player/**", "POST"),

		authed("/api/billing/**", "GET"),
		authed("/api/billing/**", "POST"),
		authed("/api/learn/**", "GET"),
		authed("/api/learn/**", "POST"),
		authed("/api/social/**", "GET"),
		authed("/api/social/**", "POST"),
		authed("/api/llm/**", "GET"),
		authed("/api/llm/**", "POST"),
		authed("/api/insights/**", "GET"),
		authed("/api/insights/**", "POST"),
		authed("/api/app-logs/**", "GET"),
		authed("/api/app-logs/**", "POST"),

		authed("/api/user/**", "GET"),
		authed("/api/user/**", "PUT"),
	)

	// Messaging channel webhooks.
	for _, channel := range []string{"telegram", "whatsapp", "msteams", "instagram"} {
		routes = append(routes,
			authed("/api/"+channel+"/**", "GET"),
			authed("/api/"+channel+"/**", "POST"),
		)
	}

	// HTMX UI endpoints, read-mostly.
	for _, prefix := range []string{
		"tasks", "calendar", "drive", "mail", "docs", "paper", "sheet",
		"slides", "meet", "research", "sources",
	} {
		routes = append(routes,
			authed("/api/ui/"+prefix+"/**", "GET"),
			authed("/api/ui/"+prefix+"/**", "POST"),
		)
	}
	routes = append(routes,
		authed("/api/ui/tasks/**", "PUT"),
		authed("/api/ui/tasks/**", "PATCH"),
		authed("/api/ui/tasks/**", "DELETE"),
	)
	for _, prefix := range []string{
		"canvas", "video", "player", "workspaces", "projects", "goals",
		"designer", "dashboards", "crm", "billing", "products", "tickets",
		"learn", "social", "settings", "autotask",
	} {
		routes = append(routes, authed("/api/ui/"+prefix+"/**", "GET"))
	}
	routes = append(routes,
		authed("/api/ui/email/**", "GET"),
		authed("/api/ui/email/**", "POST"),
	)

	// Admin surfaces.
	routes = append(routes,
		adminOnly("/api/users", "GET"),
		adminOnly("/api/users", "POST"),
		adminOnly("/api/users/:id", "GET"),
		adminOnly("/api/users/:id", "PUT"),
		adminOnly("/api/users/:id", "DELETE"),
		adminOnly("/api/users/**", "GET"),
		adminOnly("/api/users/**", "POST"),
		adminOnly("/api/users/**", "PUT"),
		adminOnly("/api/users/**", "DELETE"),

		adminOnly("/api/groups/**", "GET"),
		adminOnly("/api/groups/**", "POST"),
		adminOnly("/api/groups/**", "PUT"),
		adminOnly("/api/groups/**", "DELETE"),

		adminOnly("/api/bots", "POST"),
		adminOnly("/api/bots/:id", "PUT"),
		adminOnly("/api/bots/:id", "DELETE"),
		adminOnly("/api/bots/:id/**", "PUT"),
		adminOnly("/api/bots/:id/**", "DELETE"),

		NewRoutePermission("/api/analytics/**", "GET", "").
			WithRoles(roleAdmin, roleSuperAdmin, roleModerator),
		NewRoutePermission("/api/ui/analytics/**", "GET", "").
			WithRoles(roleAdmin, roleSuperAdmin, roleModerator),

		adminOnly("/api/monitoring/**", "GET"),
		adminOnly("/api/ui/monitoring/**", "GET"),
		adminOnly("/api/audit/**", "GET"),
		adminOnly("/api/ui/audit/**", "GET"),

		adminOnly("/api/security/**", "GET"),
		adminOnly("/api/security/**", "POST"),
		adminOnly("/api/security/**", "PUT"),
		adminOnly("/api/ui/security/**", "GET"),

		adminOnly("/api/admin/**", "GET"),
		adminOnly("/api/admin/**", "POST"),
		adminOnly("/api/admin/**", "PUT"),
		adminOnly("/api/admin/**", "DELETE"),
		adminOnly("/api/ui/admin/**", "GET"),

		// Attendant (customer service) surfaces include moderators.
		NewRoutePermission("/api/attendant/**", "GET", "").
			WithRoles(roleAdmin, roleSuperAdmin, roleModerator),
		NewRoutePermission("/api/attendant/**", "POST", "").
			WithRoles(roleAdmin, roleSuperAdmin, roleModerator),
		NewRoutePermission("/api/ui/attendant/**", "GET", "").
			WithRoles(roleAdmin, roleSuperAdmin, roleModerator),

		// ACL administration is SuperAdmin only.
		NewRoutePermission("/api/rbac/**", "GET", "").WithRoles(roleSuperAdmin),
		NewRoutePermission("/api/rbac/**", "POST", "").WithRoles(roleSuperAdmin),
		NewRoutePermission("/api/rbac/**", "PUT", "").WithRoles(roleSuperAdmin),
		NewRoutePermission("/api/rbac/**", "DELETE", "").WithRoles(roleSuperAdmin),
	)

	return routes
}
