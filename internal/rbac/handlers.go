// BotServer - General Bots Conversational Platform
// Copyright 2026 General Bots
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/GeneralBots/botserver-sub005

package rbac

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	json "github.com/goccy/go-json"
	"github.com/google/uuid"
)

// Handlers is the ACL administration surface. It is mounted under
// /api/rbac, which the default route table restricts to SuperAdmin; the
// handlers themselves do not re-check roles.
type Handlers struct {
	manager *Manager
}

// NewHandlers creates the handler set.
func NewHandlers(manager *Manager) *Handlers {
	return &Handlers{manager: manager}
}

// Routes returns the chi router for the administration surface.
func (h *Handlers) Routes() chi.Router {
	r := chi.NewRouter()

	r.Route("/acls/{type}/{id}", func(r chi.Router) {
		r.Get("/", h.getACL)
		r.Put("/", h.setACL)
		r.Delete("/", h.deleteACL)
		r.Post("/grants/user", h.grantUser)
		r.Delete("/grants/user", h.revokeUser)
		r.Post("/grants/group", h.grantGroup)
		r.Delete("/grants/group", h.revokeGroup)
		r.Post("/public", h.setPublic)
		r.Delete("/public", h.removePublic)
	})

	r.Route("/users/{userID}", func(r chi.Router) {
		r.Get("/groups", h.getUserGroups)
		r.Put("/groups", h.setUserGroups)
		r.Post("/cache/invalidate", h.invalidateUserCache)
	})

	r.Get("/cache/stats", h.cacheStats)
	r.Post("/cache/clear", h.clearCache)

	return r
}

func (h *Handlers) getACL(w http.ResponseWriter, r *http.Request) {
	acl := h.manager.GetResourceACL(chi.URLParam(r, "type"), chi.URLParam(r, "id"))
	if acl == nil {
		writeJSON(w, http.StatusNotFound, errorBody{
			Error:   "not_found",
			Message: "No ACL found for resource",
		})
		return
	}
	writeJSON(w, http.StatusOK, acl)
}

type setACLRequest struct {
	OwnerID *uuid.UUID          `json:"owner_id,omitempty"`
	Users   map[string][]string `json:"users,omitempty"`
	Groups  map[string][]string `json:"groups,omitempty"`
	Public  []string            `json:"public,omitempty"`
}

func (h *Handlers) setACL(w http.ResponseWriter, r *http.Request) {
	var req setACLRequest
	if !decodeBody(w, r, &req) {
		return
	}

	acl := NewResourceAcl(chi.URLParam(r, "type"), chi.URLParam(r, "id"))
	if req.OwnerID != nil {
		acl.WithOwner(*req.OwnerID)
	}
	for userStr, perms := range req.Users {
		userID, err := uuid.Parse(userStr)
		if err != nil {
			writeBadRequest(w, "invalid user id: "+userStr)
			return
		}
		for _, p := range perms {
			acl.GrantUser(userID, p)
		}
	}
	for group, perms := range req.Groups {
		for _, p := range perms {
			acl.GrantGroup(group, p)
		}
	}
	for _, p := range req.Public {
		acl.SetPublic(p)
	}

	h.manager.SetResourceACL(acl)
	writeJSON(w, http.StatusOK, acl)
}

func (h *Handlers) deleteACL(w http.ResponseWriter, r *http.Request) {
	h.manager.DeleteResourceACL(chi.URLParam(r, "type"), chi.URLParam(r, "id"))
	w.WriteHeader(http.StatusNoContent)
}

type userGrantRequest struct {
	UserID     uuid.UUID `json:"user_id"`
	Permission string    `json:"permission"`
}

func (h *Handlers) grantUser(w http.ResponseWriter, r *http.Request) {
	var req userGrantRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Permission == "" {
		writeBadRequest(w, "permission is required")
		return
	}

	h.manager.UpdateResourceACL(chi.URLParam(r, "type"), chi.URLParam(r, "id"),
		func(acl *ResourceAcl) {
			acl.GrantUser(req.UserID, req.Permission)
		})
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) revokeUser(w http.ResponseWriter, r *http.Request) {
	var req userGrantRequest
	if !decodeBody(w, r, &req) {
		return
	}

	h.manager.UpdateResourceACL(chi.URLParam(r, "type"), chi.URLParam(r, "id"),
		func(acl *ResourceAcl) {
			acl.RevokeUser(req.UserID, req.Permission)
		})
	w.WriteHeader(http.StatusNoContent)
}

type groupGrantRequest struct {
	Group      string `json:"group"`
	Permission string `json:"permission"`
}

func (h *Handlers) grantGroup(w http.ResponseWriter, r *http.Request) {
	var req groupGrantRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Group == "" || req.Permission == "" {
		writeBadRequest(w, "group and permission are required")
		return
	}

	h.manager.UpdateResourceACL(chi.URLParam(r, "type"), chi.URLParam(r, "id"),
		func(acl *ResourceAcl) {
			acl.GrantGroup(req.Group, req.Permission)
		})
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) revokeGroup(w http.ResponseWriter, r *http.Request) {
	var req groupGrantRequest
	if !decodeBody(w, r, &req) {
		return
	}

	h.manager.UpdateResourceACL(chi.URLParam(r, "type"), chi.URLParam(r, "id"),
		func(acl *ResourceAcl) {
			acl.RevokeGroup(req.Group, req.Permission)
		})
	w.WriteHeader(http.StatusNoContent)
}

type publicGrantRequest struct {
	Permission string `json:"permission"`
}

func (h *Handlers) setPublic(w http.ResponseWriter, r *http.Request) {
	var req publicGrantRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Permission == "" {
		writeBadRequest(w, "permission is required")
		return
	}

	h.manager.UpdateResourceACL(chi.URLParam(r, "type"), chi.URLParam(r, "id"),
		func(acl *ResourceAcl) {
			acl.SetPublic(req.Permission)
		})
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) removePublic(w http.ResponseWriter, r *http.Request) {
	var req publicGrantRequest
	if !decodeBody(w, r, &req) {
		return
	}

	h.manager.UpdateResourceACL(chi.URLParam(r, "type"), chi.URLParam(r, "id"),
		func(acl *ResourceAcl) {
			acl.RemovePublic(req.Permission)
		})
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) getUserGroups(w http.ResponseWriter, r *http.Request) {
	userID, ok := parseUserID(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{
		"groups": h.manager.GetUserGroups(userID),
	})
}

type setGroupsRequest struct {
	Groups []string `json:"groups"`
}

func (h *Handlers) setUserGroups(w http.ResponseWriter, r *http.Request) {
	userID, ok := parseUserID(w, r)
	if !ok {
		return
	}
	var req setGroupsRequest
	if !decodeBody(w, r, &req) {
		return
	}

	h.manager.SetUserGroups(userID, req.Groups)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) invalidateUserCache(w http.ResponseWriter, r *http.Request) {
	userID, ok := parseUserID(w, r)
	if !ok {
		return
	}
	h.manager.InvalidateUserCache(userID)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) cacheStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"entries": h.manager.CacheLen(),
		"enabled": h.manager.Config().EnableCache,
		"ttl":     h.manager.Config().CacheTTL.String(),
	})
}

func (h *Handlers) clearCache(w http.ResponseWriter, r *http.Request) {
	h.manager.ClearCache()
	w.WriteHeader(http.StatusNoContent)
}

func parseUserID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	userID, err := uuid.Parse(chi.URLParam(r, "userID"))
	if err != nil {
		writeBadRequest(w, "invalid user id")
		return uuid.Nil, false
	}
	return userID, true
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeBadRequest(w, "invalid request body")
		return false
	}
	return true
}

func writeBadRequest(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusBadRequest, errorBody{
		Error:   "bad_request",
		Message: message,
	})
}
