// BotServer - General Bots Conversational Platform
// Copyright 2026 General Bots
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/GeneralBots/botserver-sub005

package auth

import "context"

type contextKey string

const userContextKey contextKey = "authenticated_user"

// WithUser returns a context carrying the authenticated user. The
// authentication middleware calls this after decoding credentials.
func WithUser(ctx context.Context, user *AuthenticatedUser) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// UserFromContext returns the authenticated user stored in the context,
// or nil if none is present. Callers that need an identity for every
// request should fall back to Anonymous().
func UserFromContext(ctx context.Context) *AuthenticatedUser {
	if user, ok := ctx.Value(userContextKey).(*AuthenticatedUser); ok {
		return user
	}
	return nil
}
