package repository

import (
	"context"

	"voteauth/internal/audit/domain"
)

// Repository defines persistence for audit logs. Rows are never updated or deleted.
type Repository interface {
	Create(ctx context.Context, a *domain.AuditLog) error
	// ListByEntity returns the newest events for one entity first, at most limit rows.
	ListByEntity(ctx context.Context, entity, entityID string, limit int) ([]*domain.AuditLog, error)
}
