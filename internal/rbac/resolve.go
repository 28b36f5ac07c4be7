// BotServer - General Bots Conversational Platform
// Copyright 2026 General Bots
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/GeneralBots/botserver-sub005

package rbac

import (
	"strings"

	"github.com/GeneralBots/botserver-sub005/internal/auth"
)

// permissionAliases maps lowercase permission strings, canonical snake_case
// names and their dotted aliases, onto the closed permission vocabulary.
var permissionAliases = map[string]auth.Permission{
	"read":                auth.PermissionRead,
	"write":               auth.PermissionWrite,
	"delete":              auth.PermissionDelete,
	"admin":               auth.PermissionAdmin,
	"manage_users":        auth.PermissionManageUsers,
	"users.manage":        auth.PermissionManageUsers,
	"manage_bots":         auth.PermissionManageBots,
	"bots.manage":         auth.PermissionManageBots,
	"view_analytics":      auth.PermissionViewAnalytics,
	"analytics.view":      auth.PermissionViewAnalytics,
	"manage_settings":     auth.PermissionManageSettings,
	"settings.manage":     auth.PermissionManageSettings,
	"execute_tasks":       auth.PermissionExecuteTasks,
	"tasks.execute":       auth.PermissionExecuteTasks,
	"view_logs":           auth.PermissionViewLogs,
	"logs.view":           auth.PermissionViewLogs,
	"manage_secrets":      auth.PermissionManageSecrets,
	"secrets.manage":      auth.PermissionManageSecrets,
	"access_api":          auth.PermissionAccessAPI,
	"api.access":          auth.PermissionAccessAPI,
	"manage_files":        auth.PermissionManageFiles,
	"files.manage":        auth.PermissionManageFiles,
	"send_messages":       auth.PermissionSendMessages,
	"messages.send":       auth.PermissionSendMessages,
	"view_conversations":  auth.PermissionViewConversations,
	"conversations.view":  auth.PermissionViewConversations,
	"manage_webhooks":     auth.PermissionManageWebhooks,
	"webhooks.manage":     auth.PermissionManageWebhooks,
	"manage_integrations": auth.PermissionManageIntegrations,
	"integrations.manage": auth.PermissionManageIntegrations,
}

// ResolvePermission maps a permission string onto the closed vocabulary.
// Matching is case-insensitive. Unknown strings resolve to false so that a
// typo in a route rule denies rather than grants.
func ResolvePermission(s string) (auth.Permission, bool) {
	p, ok := permissionAliases[strings.ToLower(s)]
	return p, ok
}

// CheckPermissionString reports whether the user holds the permission named
// by s. Unresolvable names fail closed.
func CheckPermissionString(user *auth.AuthenticatedUser, s string) bool {
	p, ok := ResolvePermission(s)
	if !ok {
		return false
	}
	return user.HasPermission(p)
}
