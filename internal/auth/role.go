// BotServer - General Bots Conversational Platform
// Copyright 2026 General Bots
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/GeneralBots/botserver-sub005

package auth

import "strings"

// Role is a coarse-grained identity classification. Roles carry fixed
// permission sets; resource-level grants are handled separately by the
// RBAC engine's ACLs.
type Role int

const (
	RoleAnonymous Role = iota
	RoleUser
	RoleModerator
	RoleAdmin
	RoleSuperAdmin
	RoleService
	RoleBot
	RoleBotOwner
	RoleBotOperator
	RoleBotViewer
)

var roleNames = map[Role]string{
	RoleAnonymous:   "Anonymous",
	RoleUser:        "User",
	RoleModerator:   "Moderator",
	RoleAdmin:       "Admin",
	RoleSuperAdmin:  "SuperAdmin",
	RoleService:     "Service",
	RoleBot:         "Bot",
	RoleBotOwner:    "BotOwner",
	RoleBotOperator: "BotOperator",
	RoleBotViewer:   "BotViewer",
}

// String returns the canonical role name.
func (r Role) String() string {
	if name, ok := roleNames[r]; ok {
		return name
	}
	return "Anonymous"
}

// ParseRole resolves a role name to a Role. Matching is case-insensitive
// and accepts common aliases. Unknown names resolve to RoleAnonymous, the
// least-privileged role.
func ParseRole(s string) Role {
	switch strings.ToLower(s) {
	case "anonymous":
		return RoleAnonymous
	case "user":
		return RoleUser
	case "moderator", "mod":
		return RoleModerator
	case "admin":
		return RoleAdmin
	case "superadmin", "super_admin", "super":
		return RoleSuperAdmin
	case "service", "svc":
		return RoleService
	case "bot":
		return RoleBot
	case "bot_owner", "botowner", "owner":
		return RoleBotOwner
	case "bot_operator", "botoperator", "operator":
		return RoleBotOperator
	case "bot_viewer", "botviewer", "viewer":
		return RoleBotViewer
	default:
		return RoleAnonymous
	}
}

// Permissions returns the permission set the role carries. The moderator,
// admin and super-admin sets build on each other; service and bot roles
// have flat sets of their own.
func (r Role) Permissions() map[Permission]struct{} {
	perms := make(map[Permission]struct{})
	add := func(ps ...Permission) {
		for _, p := range ps {
			perms[p] = struct{}{}
		}
	}

	switch r {
	case RoleAnonymous:
	case RoleUser:
		add(PermissionRead, PermissionAccessAPI)
	case RoleModerator:
		for p := range RoleUser.Permissions() {
			perms[p] = struct{}{}
		}
		add(PermissionWrite, PermissionViewLogs, PermissionViewAnalytics, PermissionViewConversations)
	case RoleAdmin:
		for p := range RoleModerator.Permissions() {
			perms[p] = struct{}{}
		}
		add(PermissionDelete, PermissionManageUsers, PermissionManageBots,
			PermissionManageSettings, PermissionExecuteTasks, PermissionManageFiles,
			PermissionManageWebhooks)
	case RoleSuperAdmin:
		for p := range RoleAdmin.Permissions() {
			perms[p] = struct{}{}
		}
		add(PermissionAdmin, PermissionManageSecrets, PermissionManageIntegrations)
	case RoleService:
		add(PermissionRead, PermissionWrite, PermissionAccessAPI,
			PermissionExecuteTasks, PermissionSendMessages)
	case RoleBot:
		add(PermissionRead, PermissionWrite, PermissionAccessAPI, PermissionSendMessages)
	case RoleBotOwner:
		add(PermissionRead, PermissionWrite, PermissionDelete, PermissionAccessAPI,
			PermissionManageBots, PermissionManageSettings, PermissionViewAnalytics,
			PermissionViewLogs, PermissionManageFiles, PermissionSendMessages,
			PermissionViewConversations, PermissionManageWebhooks)
	case RoleBotOperator:
		add(PermissionRead, PermissionWrite, PermissionAccessAPI,
			PermissionViewAnalytics, PermissionViewLogs, PermissionSendMessages,
			PermissionViewConversations)
	case RoleBotViewer:
		add(PermissionRead, PermissionAccessAPI, PermissionViewAnalytics,
			PermissionViewConversations)
	}

	return perms
}

// HasPermission reports whether the role's permission set contains p.
func (r Role) HasPermission(p Permission) bool {
	_, ok := r.Permissions()[p]
	return ok
}

// HierarchyLevel orders roles by privilege. Higher is more privileged.
func (r Role) HierarchyLevel() int {
	switch r {
	case RoleAnonymous:
		return 0
	case RoleUser:
		return 1
	case RoleBotViewer:
		return 2
	case RoleBotOperator:
		return 3
	case RoleBotOwner, RoleBot:
		return 4
	case RoleModerator:
		return 5
	case RoleService:
		return 6
	case RoleAdmin:
		return 7
	case RoleSuperAdmin:
		return 8
	default:
		return 0
	}
}

// IsAtLeast reports whether r sits at or above other in the hierarchy.
func (r Role) IsAtLeast(other Role) bool {
	return r.HierarchyLevel() >= other.HierarchyLevel()
}
