// BotServer - General Bots Conversational Platform
// Copyright 2026 General Bots
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/GeneralBots/botserver-sub005

package rbac

import "time"

// Decision is the outcome of an access check.
type Decision string

const (
	DecisionAllow         Decision = "allow"
	DecisionDeny          Decision = "deny"
	DecisionNotApplicable Decision = "not_applicable"
)

// AccessDecisionResult carries a decision together with the reason it was
// reached. Reason strings are stable: callers surface them in 403 bodies
// and audit records, so changing one is a behavior change.
type AccessDecisionResult struct {
	Decision    Decision  `json:"decision"`
	Reason      string    `json:"reason"`
	EvaluatedAt time.Time `json:"evaluated_at"`
	CacheHit    bool      `json:"cache_hit"`
	MatchedRule string    `json:"matched_rule,omitempty"`
}

func allow(reason string) AccessDecisionResult {
	return AccessDecisionResult{
		Decision:    DecisionAllow,
		Reason:      reason,
		EvaluatedAt: time.Now().UTC(),
	}
}

func deny(reason string) AccessDecisionResult {
	return AccessDecisionResult{
		Decision:    DecisionDeny,
		Reason:      reason,
		EvaluatedAt: time.Now().UTC(),
	}
}

func (r AccessDecisionResult) withRule(rule string) AccessDecisionResult {
	r.MatchedRule = rule
	return r
}

func (r AccessDecisionResult) withCacheHit() AccessDecisionResult {
	r.CacheHit = true
	return r
}

// Allowed reports whether the decision permits the request.
func (r AccessDecisionResult) Allowed() bool {
	return r.Decision == DecisionAllow
}
