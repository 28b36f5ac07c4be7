// BotServer - General Bots Conversational Platform
// Copyright 2026 General Bots
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/GeneralBots/botserver-sub005

package rbac

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/GeneralBots/botserver-sub005/internal/logging"
	"github.com/GeneralBots/botserver-sub005/internal/middleware"
)

// AuditEvent captures the full context of one authorization decision.
type AuditEvent struct {
	ID         string        `json:"id"`
	Timestamp  time.Time     `json:"timestamp"`
	RequestID  string        `json:"request_id,omitempty"`
	ActorID    string        `json:"actor_id"`
	ActorName  string        `json:"actor_name,omitempty"`
	ActorRoles []string      `json:"actor_roles,omitempty"`
	Kind       string        `json:"kind"`
	Resource   string        `json:"resource"`
	Action     string        `json:"action,omitempty"`
	Decision   Decision      `json:"decision"`
	Reason     string        `json:"reason,omitempty"`
	Duration   time.Duration `json:"duration_ns"`
	CacheHit   bool          `json:"cache_hit"`
}

// AuditConfig controls the async audit logger.
type AuditConfig struct {
	Enabled    bool
	LogAllowed bool
	LogDenied  bool

	// SampleRate is the fraction of allowed decisions to log, 0.0 to 1.0.
	// Denials are never sampled.
	SampleRate float64

	// BufferSize is the async buffer capacity. Events are dropped when
	// the buffer is full rather than blocking the request path.
	BufferSize int
}

// DefaultAuditConfig returns production defaults.
func DefaultAuditConfig() AuditConfig {
	return AuditConfig{
		Enabled:    true,
		LogAllowed: true,
		LogDenied:  true,
		SampleRate: 1.0,
		BufferSize: 1000,
	}
}

// AuditLogger writes authorization decisions to the structured log
// asynchronously. Record never blocks; a full buffer drops the event and
// counts the drop.
type AuditLogger struct {
	config   AuditConfig
	events   chan *AuditEvent
	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewAuditLogger creates the logger and starts its worker when enabled.
func NewAuditLogger(config AuditConfig) *AuditLogger {
	if config.BufferSize <= 0 {
		config.BufferSize = 1000
	}
	if config.SampleRate <= 0 || config.SampleRate > 1.0 {
		config.SampleRate = 1.0
	}

	al := &AuditLogger{
		config:   config,
		events:   make(chan *AuditEvent, config.BufferSize),
		stopChan: make(chan struct{}),
	}

	if config.Enabled {
		al.wg.Add(1)
		go al.processEvents()
	}

	return al
}

// Record queues an event without blocking.
func (al *AuditLogger) Record(event *AuditEvent) {
	if al == nil || !al.config.Enabled {
		return
	}

	if event.Decision == DecisionAllow {
		if !al.config.LogAllowed {
			return
		}
		if al.config.SampleRate < 1.0 {
			// Deterministic sampling keyed on the event ID.
			if len(event.ID) > 0 && (int(event.ID[0])%100) >= int(al.config.SampleRate*100) {
				return
			}
		}
	} else if !al.config.LogDenied {
		return
	}

	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	select {
	case al.events <- event:
		rbacAuditEventsTotal.Inc()
	default:
		rbacAuditDroppedTotal.Inc()
		logging.Warn().
			Str("actor_id", event.ActorID).
			Str("resource", event.Resource).
			Msg("Audit buffer full, event dropped")
	}
}

// RecordDecision builds an event from a decision result and queues it.
// The request ID is taken from the context when present.
func (al *AuditLogger) RecordDecision(
	ctx context.Context,
	actorID, actorName string,
	actorRoles []string,
	kind, resource, action string,
	result AccessDecisionResult,
	elapsed time.Duration,
) {
	if al == nil || !al.config.Enabled {
		return
	}

	al.Record(&AuditEvent{
		ID:         uuid.New().String(),
		Timestamp:  time.Now().UTC(),
		RequestID:  middleware.RequestIDFromContext(ctx),
		ActorID:    actorID,
		ActorName:  actorName,
		ActorRoles: actorRoles,
		Kind:       kind,
		Resource:   resource,
		Action:     action,
		Decision:   result.Decision,
		Reason:     result.Reason,
		Duration:   elapsed,
		CacheHit:   result.CacheHit,
	})
}

func (al *AuditLogger) processEvents() {
	defer al.wg.Done()

	for {
		select {
		case <-al.stopChan:
			al.drain()
			return
		case event := <-al.events:
			al.write(event)
		}
	}
}

func (al *AuditLogger) drain() {
	for {
		select {
		case event := <-al.events:
			al.write(event)
		default:
			return
		}
	}
}

func (al *AuditLogger) write(event *AuditEvent) {
	logEvent := logging.Info()
	if event.Decision == DecisionDeny {
		logEvent = logging.Warn()
	}

	logEvent = logEvent.
		Str("event_type", "rbac_decision").
		Str("audit_id", event.ID).
		Time("audit_timestamp", event.Timestamp).
		Str("actor_id", event.ActorID).
		Str("kind", event.Kind).
		Str("resource", event.Resource).
		Str("decision", string(event.Decision)).
		Dur("duration", event.Duration).
		Bool("cache_hit", event.CacheHit)

	if event.ActorName != "" {
		logEvent = logEvent.Str("actor_name", event.ActorName)
	}
	if len(event.ActorRoles) > 0 {
		logEvent = logEvent.Strs("actor_roles", event.ActorRoles)
	}
	if event.RequestID != "" {
		logEvent = logEvent.Str("request_id", event.RequestID)
	}
	if event.Action != "" {
		logEvent = logEvent.Str("action", event.Action)
	}
	if event.Reason != "" {
		logEvent = logEvent.Str("reason", event.Reason)
	}

	logEvent.Msg("authorization decision")
}

// Close stops the worker after draining buffered events. Idempotent.
func (al *AuditLogger) Close() {
	if al == nil {
		return
	}
	al.stopOnce.Do(func() {
		close(al.stopChan)
	})
	if al.config.Enabled {
		al.wg.Wait()
	}
}
