// BotServer - General Bots Conversational Platform
// Copyright 2026 General Bots
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/GeneralBots/botserver-sub005

package rbac

import "strings"

// RoutePermission is one rule in the ordered route registry. Rules are
// evaluated in registration order and the first pattern+method match wins,
// so more specific patterns must be registered before broader ones.
type RoutePermission struct {
	PathPattern        string   `json:"path_pattern"`
	Method             string   `json:"method"`
	RequiredPermission string   `json:"required_permission"`
	RequiredRoles      []string `json:"required_roles"`
	AllowAnonymous     bool     `json:"allow_anonymous"`
	Description        string   `json:"description,omitempty"`
}

// NewRoutePermission creates a rule requiring authentication and, when
// permission is non-empty, the named permission. Method "*" matches any
// HTTP method.
func NewRoutePermission(pathPattern, method, permission string) RoutePermission {
	return RoutePermission{
		PathPattern:        pathPattern,
		Method:             method,
		RequiredPermission: permission,
	}
}

// WithRoles restricts the rule to users carrying at least one of the roles.
func (rp RoutePermission) WithRoles(roles ...string) RoutePermission {
	rp.RequiredRoles = roles
	return rp
}

// WithAnonymous marks the rule as accessible without authentication.
func (rp RoutePermission) WithAnonymous(anon bool) RoutePermission {
	rp.AllowAnonymous = anon
	return rp
}

// WithDescription attaches a human-readable description.
func (rp RoutePermission) WithDescription(desc string) RoutePermission {
	rp.Description = desc
	return rp
}

// MatchesPath reports whether the rule's pattern matches a concrete
// request path.
//
// Pattern grammar, segment by segment:
//   - "**" matches the rest of the path, including nothing
//   - "*" matches exactly one segment; the pattern is open-ended, so a
//     longer path still matches
//   - ":name" matches exactly one segment
//   - anything else must match literally
//
// Patterns with only ":name" parameters (no wildcard) require the same
// number of segments as the path. Patterns with neither match only the
// exact path string.
func (rp RoutePermission) MatchesPath(path string) bool {
	switch {
	case strings.Contains(rp.PathPattern, "*"):
		patternParts := strings.Split(rp.PathPattern, "/")
		pathParts := strings.Split(path, "/")

		if len(patternParts) > len(pathParts) && !strings.HasSuffix(rp.PathPattern, "*") {
			return false
		}

		for i, part := range patternParts {
			if part == "**" {
				return true
			}
			if part == "*" {
				continue
			}
			if strings.HasPrefix(part, ":") {
				continue
			}
			if i >= len(pathParts) || part != pathParts[i] {
				return false
			}
		}

		return len(patternParts) <= len(pathParts) || strings.Contains(rp.PathPattern, "**")

	case strings.Contains(rp.PathPattern, ":"):
		patternParts := strings.Split(rp.PathPattern, "/")
		pathParts := strings.Split(path, "/")

		if len(patternParts) != len(pathParts) {
			return false
		}

		for i, part := range patternParts {
			if strings.HasPrefix(part, ":") {
				continue
			}
			if part != pathParts[i] {
				return false
			}
		}

		return true

	default:
		return rp.PathPattern == path
	}
}

// matchesMethod reports whether the rule applies to the HTTP method.
func (rp RoutePermission) matchesMethod(method string) bool {
	return rp.Method == "*" || strings.EqualFold(rp.Method, method)
}
