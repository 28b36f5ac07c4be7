// BotServer - General Bots Conversational Platform
// Copyright 2026 General Bots
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/GeneralBots/botserver-sub005

package auth

// Permission is a named capability in the closed permission vocabulary.
// The set is fixed; free-form permission strings are resolved against it
// (see rbac.ResolvePermission) and unknown strings fail closed.
type Permission int

const (
	PermissionRead Permission = iota
	PermissionWrite
	PermissionDelete
	PermissionAdmin
	PermissionManageUsers
	PermissionManageBots
	PermissionViewAnalytics
	PermissionManageSettings
	PermissionExecuteTasks
	PermissionViewLogs
	PermissionManageSecrets
	PermissionAccessAPI
	PermissionManageFiles
	PermissionSendMessages
	PermissionViewConversations
	PermissionManageWebhooks
	PermissionManageIntegrations
)

var permissionNames = map[Permission]string{
	PermissionRead:               "read",
	PermissionWrite:              "write",
	PermissionDelete:             "delete",
	PermissionAdmin:              "admin",
	PermissionManageUsers:        "manage_users",
	PermissionManageBots:         "manage_bots",
	PermissionViewAnalytics:      "view_analytics",
	PermissionManageSettings:     "manage_settings",
	PermissionExecuteTasks:       "execute_tasks",
	PermissionViewLogs:           "view_logs",
	PermissionManageSecrets:      "manage_secrets",
	PermissionAccessAPI:          "access_api",
	PermissionManageFiles:        "manage_files",
	PermissionSendMessages:       "send_messages",
	PermissionViewConversations:  "view_conversations",
	PermissionManageWebhooks:     "manage_webhooks",
	PermissionManageIntegrations: "manage_integrations",
}

// String returns the canonical snake_case name of the permission.
func (p Permission) String() string {
	if name, ok := permissionNames[p]; ok {
		return name
	}
	return "unknown"
}
