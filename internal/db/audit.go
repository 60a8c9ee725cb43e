package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jonathan/chaos-engine/internal/types"
)

func insertAudit(ctx context.Context, q querier, actorID *uuid.UUID, action, entity string, entityID uuid.UUID, detail string) error {
	_, err := q.Exec(ctx,
		`INSERT INTO audit_logs (actor_id, action, entity, entity_id, detail) VALUES ($1, $2, $3, $4, $5)`,
		actorID, action, entity, entityID, nullIfEmpty(detail),
	)
	if err != nil {
		return fmt.Errorf("failed to write audit log: %w", err)
	}
	return nil
}

// ListAuditLogs returns the audit trail for an entity, oldest first
func (db *DB) ListAuditLogs(ctx context.Context, entity string, entityID uuid.UUID) ([]types.AuditLog, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, actor_id, action, entity, entity_id, detail, created_at
		 FROM audit_logs WHERE entity = $1 AND entity_id = $2 ORDER BY created_at, id`,
		entity, entityID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit logs: %w", err)
	}
	defer rows.Close()

	logs := []types.AuditLog{}
	for rows.Next() {
		var l types.AuditLog
		var detail *string
		if err := rows.Scan(&l.ID, &l.ActorID, &l.Action, &l.Entity, &l.EntityID, &detail, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan audit log: %w", err)
		}
		l.Detail = derefString(detail)
		logs = append(logs, l)
	}
	return logs, rows.Err()
}
