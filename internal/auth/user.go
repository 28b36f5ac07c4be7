// BotServer - General Bots Conversational Platform
// Copyright 2026 General Bots
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/GeneralBots/botserver-sub005

// Package auth defines the identity consumed by the authorization engine:
// the authenticated user with its roles and derived permissions, plus the
// request-context plumbing that carries it from the authentication layer
// to the RBAC middleware.
//
// This package does not validate credentials; it only models the identity
// an upstream authenticator has already established.
package auth

import (
	"github.com/google/uuid"
)

// AuthenticatedUser is the identity attached to a request. The anonymous
// user has the nil UUID and the Anonymous role; everything else is
// considered authenticated.
type AuthenticatedUser struct {
	UserID   uuid.UUID `json:"user_id"`
	Username string    `json:"username"`
	Email    string    `json:"email,omitempty"`
	Roles    []Role    `json:"roles"`
}

// NewUser creates an authenticated user with the default User role.
func NewUser(userID uuid.UUID, username string) *AuthenticatedUser {
	return &AuthenticatedUser{
		UserID:   userID,
		Username: username,
		Roles:    []Role{RoleUser},
	}
}

// Anonymous returns the canonical unauthenticated identity.
func Anonymous() *AuthenticatedUser {
	return &AuthenticatedUser{
		UserID:   uuid.Nil,
		Username: "anonymous",
		Roles:    []Role{RoleAnonymous},
	}
}

// Service returns an identity for internal service-to-service calls.
func Service(name string) *AuthenticatedUser {
	return &AuthenticatedUser{
		UserID:   uuid.Nil,
		Username: "service:" + name,
		Roles:    []Role{RoleService},
	}
}

// WithEmail sets the email and returns the user for chaining.
func (u *AuthenticatedUser) WithEmail(email string) *AuthenticatedUser {
	u.Email = email
	return u
}

// WithRole appends a role if not already present.
func (u *AuthenticatedUser) WithRole(role Role) *AuthenticatedUser {
	if !u.HasRole(role) {
		u.Roles = append(u.Roles, role)
	}
	return u
}

// WithRoles replaces the role set.
func (u *AuthenticatedUser) WithRoles(roles ...Role) *AuthenticatedUser {
	u.Roles = roles
	return u
}

// HasRole reports whether the user carries the exact role.
func (u *AuthenticatedUser) HasRole(role Role) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// HasAnyRole reports whether the user carries at least one of the roles.
func (u *AuthenticatedUser) HasAnyRole(roles ...Role) bool {
	for _, role := range roles {
		if u.HasRole(role) {
			return true
		}
	}
	return false
}

// HasPermission reports whether any of the user's roles carries p.
func (u *AuthenticatedUser) HasPermission(p Permission) bool {
	for _, r := range u.Roles {
		if r.HasPermission(p) {
			return true
		}
	}
	return false
}

// HasAnyPermission reports whether the user holds at least one of perms.
func (u *AuthenticatedUser) HasAnyPermission(perms ...Permission) bool {
	for _, p := range perms {
		if u.HasPermission(p) {
			return true
		}
	}
	return false
}

// HasAllPermissions reports whether the user holds every one of perms.
func (u *AuthenticatedUser) HasAllPermissions(perms ...Permission) bool {
	for _, p := range perms {
		if !u.HasPermission(p) {
			return false
		}
	}
	return true
}

// HighestRole returns the most privileged role the user carries.
func (u *AuthenticatedUser) HighestRole() Role {
	highest := RoleAnonymous
	for _, r := range u.Roles {
		if r.HierarchyLevel() > highest.HierarchyLevel() {
			highest = r
		}
	}
	return highest
}

// IsAdmin reports whether the user is an Admin or SuperAdmin.
func (u *AuthenticatedUser) IsAdmin() bool {
	return u.HasRole(RoleAdmin) || u.HasRole(RoleSuperAdmin)
}

// IsSuperAdmin reports whether the user is a SuperAdmin.
func (u *AuthenticatedUser) IsSuperAdmin() bool {
	return u.HasRole(RoleSuperAdmin)
}

// IsAuthenticated reports whether the identity represents a real login.
// The anonymous user fails both conditions.
func (u *AuthenticatedUser) IsAuthenticated() bool {
	return !u.HasRole(RoleAnonymous) && u.UserID != uuid.Nil
}
