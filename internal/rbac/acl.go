// BotServer - General Bots Conversational Platform
// Copyright 2026 General Bots
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/GeneralBots/botserver-sub005

package rbac

import (
	"time"

	"github.com/google/uuid"
)

// AdminPermission is the resource-scoped wildcard: a user or group granted
// "admin" on a resource passes any permission check against it.
const AdminPermission = "admin"

// ResourceAcl is the per-resource access control list. Permission names are
// free-form strings here; the closed vocabulary only applies to route-level
// permission requirements.
type ResourceAcl struct {
	ResourceType      string                            `json:"resource_type"`
	ResourceID        string                            `json:"resource_id"`
	OwnerID           *uuid.UUID                        `json:"owner_id,omitempty"`
	Permissions       map[uuid.UUID]map[string]struct{} `json:"permissions"`
	GroupPermissions  map[string]map[string]struct{}    `json:"group_permissions"`
	PublicPermissions map[string]struct{}               `json:"public_permissions"`
	CreatedAt         time.Time                         `json:"created_at"`
	UpdatedAt         time.Time                         `json:"updated_at"`
}

// NewResourceAcl creates an empty ACL for the resource.
func NewResourceAcl(resourceType, resourceID string) *ResourceAcl {
	now := time.Now().UTC()
	return &ResourceAcl{
		ResourceType:      resourceType,
		ResourceID:        resourceID,
		Permissions:       make(map[uuid.UUID]map[string]struct{}),
		GroupPermissions:  make(map[string]map[string]struct{}),
		PublicPermissions: make(map[string]struct{}),
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

// WithOwner sets the owning user and returns the ACL for chaining.
func (a *ResourceAcl) WithOwner(ownerID uuid.UUID) *ResourceAcl {
	a.OwnerID = &ownerID
	return a
}

// GrantUser adds a permission to the user's grant set.
func (a *ResourceAcl) GrantUser(userID uuid.UUID, permission string) {
	perms, ok := a.Permissions[userID]
	if !ok {
		perms = make(map[string]struct{})
		a.Permissions[userID] = perms
	}
	perms[permission] = struct{}{}
	a.UpdatedAt = time.Now().UTC()
}

// RevokeUser removes a permission from the user's grant set, pruning the
// set when it becomes empty.
func (a *ResourceAcl) RevokeUser(userID uuid.UUID, permission string) {
	if perms, ok := a.Permissions[userID]; ok {
		delete(perms, permission)
		if len(perms) == 0 {
			delete(a.Permissions, userID)
		}
	}
	a.UpdatedAt = time.Now().UTC()
}

// GrantGroup adds a permission to the group's grant set.
func (a *ResourceAcl) GrantGroup(group, permission string) {
	perms, ok := a.GroupPermissions[group]
	if !ok {
		perms = make(map[string]struct{})
		a.GroupPermissions[group] = perms
	}
	perms[permission] = struct{}{}
	a.UpdatedAt = time.Now().UTC()
}

// RevokeGroup removes a permission from the group's grant set, pruning the
// set when it becomes empty.
func (a *ResourceAcl) RevokeGroup(group, permission string) {
	if perms, ok := a.GroupPermissions[group]; ok {
		delete(perms, permission)
		if len(perms) == 0 {
			delete(a.GroupPermissions, group)
		}
	}
	a.UpdatedAt = time.Now().UTC()
}

// SetPublic makes a permission available to everyone, including anonymous.
func (a *ResourceAcl) SetPublic(permission string) {
	a.PublicPermissions[permission] = struct{}{}
	a.UpdatedAt = time.Now().UTC()
}

// RemovePublic withdraws a public permission.
func (a *ResourceAcl) RemovePublic(permission string) {
	delete(a.PublicPermissions, permission)
	a.UpdatedAt = time.Now().UTC()
}

// CheckAccess evaluates the ACL for a permission. userID is nil for
// anonymous callers. Precedence:
//
//  1. public grant — anyone passes
//  2. owner — full access
//  3. user grant, including the "admin" wildcard
//  4. group grant, including the "admin" wildcard
//
// Anything else is denied.
func (a *ResourceAcl) CheckAccess(userID *uuid.UUID, groups []string, permission string) bool {
	if _, ok := a.PublicPermissions[permission]; ok {
		return true
	}

	if userID != nil {
		if a.OwnerID != nil && *a.OwnerID == *userID {
			return true
		}

		if perms, ok := a.Permissions[*userID]; ok {
			if _, ok := perms[permission]; ok {
				return true
			}
			if _, ok := perms[AdminPermission]; ok {
				return true
			}
		}
	}

	for _, group := range groups {
		if perms, ok := a.GroupPermissions[group]; ok {
			if _, ok := perms[permission]; ok {
				return true
			}
			if _, ok := perms[AdminPermission]; ok {
				return true
			}
		}
	}

	return false
}

// Clone returns a deep copy so callers cannot mutate the manager's copy
// without going through SetResourceACL.
func (a *ResourceAcl) Clone() *ResourceAcl {
	clone := &ResourceAcl{
		ResourceType:      a.ResourceType,
		ResourceID:        a.ResourceID,
		Permissions:       make(map[uuid.UUID]map[string]struct{}, len(a.Permissions)),
		GroupPermissions:  make(map[string]map[string]struct{}, len(a.GroupPermissions)),
		PublicPermissions: make(map[string]struct{}, len(a.PublicPermissions)),
		CreatedAt:         a.CreatedAt,
		UpdatedAt:         a.UpdatedAt,
	}
	if a.OwnerID != nil {
		owner := *a.OwnerID
		clone.OwnerID = &owner
	}
	for userID, perms := range a.Permissions {
		set := make(map[string]struct{}, len(perms))
		for p := range perms {
			set[p] = struct{}{}
		}
		clone.Permissions[userID] = set
	}
	for group, perms := range a.GroupPermissions {
		set := make(map[string]struct{}, len(perms))
		for p := range perms {
			set[p] = struct{}{}
		}
		clone.GroupPermissions[group] = set
	}
	for p := range a.PublicPermissions {
		clone.PublicPermissions[p] = struct{}{}
	}
	return clone
}
