// BotServer - General Bots Conversational Platform
// Copyright 2026 General Bots
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/GeneralBots/botserver-sub005

package rbac

import (
	"errors"
	"fmt"
	"net/http"

	json "github.com/goccy/go-json"
)

// Sentinel errors for role-gated surfaces.
var (
	ErrAdminRequired      = errors.New("Administrator access required")
	ErrSuperAdminRequired = errors.New("Super administrator access required")
)

// PermissionDeniedError reports a missing named permission.
type PermissionDeniedError struct {
	Permission string
}

func (e *PermissionDeniedError) Error() string {
	return fmt.Sprintf("Missing required permission: %s", e.Permission)
}

// InsufficientRoleError reports that none of the required roles were held.
type InsufficientRoleError struct {
	Roles []string
}

func (e *InsufficientRoleError) Error() string {
	return fmt.Sprintf("Required role: %v", e.Roles)
}

// ResourceAccessDeniedError reports a failed resource ACL check.
type ResourceAccessDeniedError struct {
	ResourceType string
	ResourceID   string
	Permission   string
}

func (e *ResourceAccessDeniedError) Error() string {
	return fmt.Sprintf("Access denied to %s %s: missing %s",
		e.ResourceType, e.ResourceID, e.Permission)
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// writeAccessDenied renders an authorization error as the 403 JSON body
// the middleware layer contracts on.
func writeAccessDenied(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusForbidden)
	_ = json.NewEncoder(w).Encode(errorBody{
		Error:   "access_denied",
		Message: err.Error(),
		Code:    "RBAC_DENIED",
	})
}
