// BotServer - General Bots Conversational Platform
// Copyright 2026 General Bots
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/GeneralBots/botserver-sub005

// Package rbac is the in-process authorization decision engine.
//
// Two kinds of checks are supported: route checks against an ordered,
// first-match registry of path patterns, and resource checks against
// per-resource ACLs with a fixed precedence (public grant, owner, user
// grant, group grant, deny). Allow decisions are cached with a TTL;
// denies never are. ACL and group mutations invalidate the whole
// resource-decision namespace rather than tracking fine-grained
// dependencies.
//
// Typical wiring:
//
//	manager := rbac.NewManager(cfg, rbac.NewAuditLogger(auditCfg))
//	manager.RegisterRoutes(rbac.DefaultRoutePermissions())
//	defer manager.Close()
//
//	router.Use(rbac.Middleware(manager))
//	router.Mount("/api/rbac", rbac.NewHandlers(manager).Routes())
package rbac
