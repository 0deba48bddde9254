package domain

import "time"

// Actor types recorded on audit events.
const (
	ActorSystem = "system"
)

// AuditLog represents an append-only audit event: {actorType, action, entity, entityId, payload, timestamp}.
// Payload is a JSON object and never contains a plaintext code or a full ballot token.
type AuditLog struct {
	ID        string
	ActorType string
	Action    string
	Entity    string
	EntityID  string
	Payload   []byte
	IP        string
	CreatedAt time.Time
}
