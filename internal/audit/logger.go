package audit

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/google/uuid"

	"voteauth/internal/audit/domain"
	auditrepo "voteauth/internal/audit/repository"
	"voteauth/internal/telemetry"
	telemetrydomain "voteauth/internal/telemetry/domain"
)

// mirrorSource is the telemetry source of audit events mirrored to the event stream.
const mirrorSource = "audit"

// IPExtractor returns the client IP from the request context (e.g. gRPC metadata or peer).
type IPExtractor func(context.Context) string

// Event is one audit record before persistence. ActorType defaults to system.
type Event struct {
	ActorType string
	Action    string
	Entity    string
	EntityID  string
	Payload   map[string]any
}

// AuditLogger writes a single audit event. Used by the verification and ballot services after commit.
// LogEvent is best-effort: failures are logged and do not affect the caller.
type AuditLogger interface {
	LogEvent(ctx context.Context, ev Event)
}

// Logger implements AuditLogger using the audit repository, an optional IP extractor, and an
// optional mirror emitter (Kafka, OTel logs).
type Logger struct {
	repo        auditrepo.Repository
	ipExtractor IPExtractor
	mirror      telemetry.EventEmitter
	now         func() time.Time
}

// NewLogger returns an AuditLogger that persists to repo and uses ipExtractor for client IP.
// ipExtractor may be nil; then IP is recorded as "unknown". mirror may be nil.
func NewLogger(repo auditrepo.Repository, ipExtractor IPExtractor, mirror telemetry.EventEmitter) *Logger {
	return &Logger{repo: repo, ipExtractor: ipExtractor, mirror: mirror, now: func() time.Time { return time.Now().UTC() }}
}

// mirrorRecord is the metadata of a mirrored audit event.
type mirrorRecord struct {
	ID        string          `json:"id"`
	ActorType string          `json:"actorType"`
	Action    string          `json:"action"`
	Entity    string          `json:"entity"`
	EntityID  string          `json:"entityId"`
	Payload   json.RawMessage `json:"payload"`
	IP        string          `json:"ip"`
	Timestamp time.Time       `json:"timestamp"`
}

// LogEvent writes one audit log entry and mirrors it. Best-effort: errors are logged and not returned.
func (l *Logger) LogEvent(ctx context.Context, ev Event) {
	if l == nil || l.repo == nil {
		return
	}
	ip := "unknown"
	if l.ipExtractor != nil {
		ip = l.ipExtractor(ctx)
	}
	actor := ev.ActorType
	if actor == "" {
		actor = domain.ActorSystem
	}
	payload, err := json.Marshal(Sanitize(ev.Payload))
	if err != nil {
		log.Printf("audit: encode payload for %s: %v", ev.Action, err)
		payload = []byte("{}")
	}
	entry := &domain.AuditLog{
		ID:        uuid.New().String(),
		ActorType: actor,
		Action:    ev.Action,
		Entity:    ev.Entity,
		EntityID:  ev.EntityID,
		Payload:   payload,
		IP:        ip,
		CreatedAt: l.now(),
	}
	if err := l.repo.Create(ctx, entry); err != nil {
		log.Printf("audit: failed to log event %s/%s: %v", ev.Action, ev.Entity, err)
	}
	if l.mirror == nil {
		return
	}
	record := mirrorRecord{
		ID: entry.ID, ActorType: entry.ActorType, Action: entry.Action, Entity: entry.Entity,
		EntityID: entry.EntityID, Payload: entry.Payload, IP: entry.IP, Timestamp: entry.CreatedAt,
	}
	event := telemetrydomain.NewEvent(entry.Action, mirrorSource, record)
	event.CreatedAt = entry.CreatedAt
	telemetry.EmitAsync(l.mirror, event)
}
