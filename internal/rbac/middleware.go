// BotServer - General Bots Conversational Platform
// Copyright 2026 General Bots
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/GeneralBots/botserver-sub005

package rbac

import (
	"net/http"

	json "github.com/goccy/go-json"

	"github.com/GeneralBots/botserver-sub005/internal/auth"
	"github.com/GeneralBots/botserver-sub005/internal/logging"
)

// Middleware returns the route-level authorization middleware. The
// identity is taken from the request context, falling back to anonymous.
// An unauthenticated deny maps to 401, any other deny to 403; both bodies
// are JSON.
func Middleware(manager *Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := auth.UserFromContext(r.Context())
			if user == nil {
				user = auth.Anonymous()
			}

			decision := manager.CheckRouteAccess(r.Context(), r.URL.Path, r.Method, user)

			if !decision.Allowed() {
				if !user.IsAuthenticated() {
					logging.Warn().
						Str("method", r.Method).
						Str("path", r.URL.Path).
						Msg("unauthorized access attempt")
					writeJSON(w, http.StatusUnauthorized, errorBody{
						Error:   "unauthorized",
						Message: "Authentication required",
					})
					return
				}

				logging.Warn().
					Str("method", r.Method).
					Str("path", r.URL.Path).
					Str("user_id", user.UserID.String()).
					Str("reason", decision.Reason).
					Msg("forbidden access")
				writeJSON(w, http.StatusForbidden, errorBody{
					Error:   "forbidden",
					Message: decision.Reason,
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequirePermission gates a handler on one named permission, resolved
// against the closed vocabulary.
func RequirePermission(permission string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := auth.UserFromContext(r.Context())
			if user == nil {
				user = auth.Anonymous()
			}

			if !CheckPermissionString(user, permission) {
				writeAccessDenied(w, &PermissionDeniedError{Permission: permission})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireRoles gates a handler on holding at least one of the named roles.
func RequireRoles(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := auth.UserFromContext(r.Context())
			if user == nil {
				user = auth.Anonymous()
			}

			for _, name := range roles {
				if user.HasRole(auth.ParseRole(name)) {
					next.ServeHTTP(w, r)
					return
				}
			}
			writeAccessDenied(w, &InsufficientRoleError{Roles: roles})
		})
	}
}

// RequireAdmin gates a handler on the Admin or SuperAdmin role.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := auth.UserFromContext(r.Context())
		if user == nil || !user.IsAdmin() {
			writeAccessDenied(w, ErrAdminRequired)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireSuperAdmin gates a handler on the SuperAdmin role.
func RequireSuperAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := auth.UserFromContext(r.Context())
		if user == nil || !user.IsSuperAdmin() {
			writeAccessDenied(w, ErrSuperAdminRequired)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireResourceAccess gates a handler on an ACL check. The resource ID
// is extracted from the request by idFn, typically a chi URL parameter
// lookup.
func RequireResourceAccess(manager *Manager, resourceType, permission string, idFn func(*http.Request) string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := auth.UserFromContext(r.Context())
			if user == nil {
				user = auth.Anonymous()
			}

			resourceID := idFn(r)
			decision := manager.CheckResourceAccess(r.Context(), user, resourceType, resourceID, permission)
			if !decision.Allowed() {
				writeAccessDenied(w, &ResourceAccessDeniedError{
					ResourceType: resourceType,
					ResourceID:   resourceID,
					Permission:   permission,
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
