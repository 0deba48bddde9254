package repository

import (
	"context"

	"voteauth/internal/audit/domain"
	"voteauth/internal/db"
)

type PostgresRepository struct {
	db db.DBTX
}

// NewPostgresRepository returns an audit log repository that uses the given db for persistence.
func NewPostgresRepository(conn db.DBTX) *PostgresRepository {
	return &PostgresRepository{db: conn}
}

// Create persists the audit log. The audit log must have ID set.
func (r *PostgresRepository) Create(ctx context.Context, a *domain.AuditLog) error {
	payload := a.Payload
	if len(payload) == 0 {
		payload = []byte("{}")
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO audit_logs (id, actor_type, action, entity, entity_id, payload, ip, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		a.ID, a.ActorType, a.Action, a.Entity, a.EntityID, string(payload), a.IP, a.CreatedAt)
	return err
}

// ListByEntity returns up to limit audit logs for entity/entityID, newest first.
func (r *PostgresRepository) ListByEntity(ctx context.Context, entity, entityID string, limit int) ([]*domain.AuditLog, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, actor_type, action, entity, entity_id, payload, ip, created_at
		FROM audit_logs
		WHERE entity = $1 AND entity_id = $2
		ORDER BY created_at DESC
		LIMIT $3`, entity, entityID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*domain.AuditLog
	for rows.Next() {
		var a domain.AuditLog
		var payload string
		if err := rows.Scan(&a.ID, &a.ActorType, &a.Action, &a.Entity, &a.EntityID, &payload, &a.IP, &a.CreatedAt); err != nil {
			return nil, err
		}
		a.Payload = []byte(payload)
		out = append(out, &a)
	}
	return out, rows.Err()
}
