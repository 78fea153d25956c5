package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"restobill/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Database is the subset of pgxpool.Pool the SQL repositories use
type Database interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const auditLogsSchema = `
	CREATE TABLE IF NOT EXISTS audit_logs (
		id UUID PRIMARY KEY,
		organization_id TEXT NOT NULL,
		actor_id TEXT NOT NULL,
		actor_role TEXT NOT NULL,
		action TEXT NOT NULL,
		resource TEXT NOT NULL,
		resource_id TEXT NOT NULL DEFAULT '',
		status_code INTEGER NOT NULL,
		metadata JSONB,
		created_at TIMESTAMPTZ NOT NULL
	)
`

type AuditLogsRepository interface {
	// EnsureSchema creates the audit_logs table when missing
	EnsureSchema(ctx context.Context) error

	// Create a new audit log entry
	Create(ctx context.Context, auditLog *models.AuditLog) error

	// List audit logs with filtering options, newest first
	List(ctx context.Context, filters *models.AuditLogFilters) ([]*models.AuditLog, error)

	// DeleteByOrganization drops the trail of a removed organization
	DeleteByOrganization(ctx context.Context, orgID string) (int64, error)
}

type auditLogsRepo struct {
	db Database
}

func NewAuditLogsRepo(db Database) AuditLogsRepository {
	return &auditLogsRepo{db: db}
}

func (r *auditLogsRepo) EnsureSchema(ctx context.Context) error {
	_, err := r.db.Exec(ctx, auditLogsSchema)
	return err
}

func (r *auditLogsRepo) Create(ctx context.Context, auditLog *models.AuditLog) error {
	if auditLog.CreatedAt.IsZero() {
		auditLog.CreatedAt = time.Now().UTC()
	}
	if auditLog.ID == uuid.Nil {
		auditLog.ID = uuid.New()
	}

	var metadata []byte
	if auditLog.Metadata != nil {
		var err error
		metadata, err = json.Marshal(auditLog.Metadata)
		if err != nil {
			return fmt.Errorf("failed to marshal metadata: %w", err)
		}
	}

	query := `
		INSERT INTO audit_logs (id, organization_id, actor_id, actor_role, action, resource, resource_id, status_code, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.db.Exec(ctx, query,
		auditLog.ID,
		auditLog.OrganizationID,
		auditLog.ActorID,
		auditLog.ActorRole,
		auditLog.Action,
		auditLog.Resource,
		auditLog.ResourceID,
		auditLog.StatusCode,
		metadata,
		auditLog.CreatedAt,
	)
	return err
}

func (r *auditLogsRepo) List(ctx context.Context, filters *models.AuditLogFilters) ([]*models.AuditLog, error) {
	if filters == nil {
		filters = &models.AuditLogFilters{}
	}

	query := `
		SELECT id, organization_id, actor_id, actor_role, action, resource, resource_id, status_code, metadata, created_at
		FROM audit_logs
		WHERE 1=1
	`
	args := []interface{}{}
	argIdx := 0

	if filters.OrganizationID != nil {
		argIdx++
		query += fmt.Sprintf(" AND organization_id = $%d", argIdx)
		args = append(args, *filters.OrganizationID)
	}

	if filters.ActorID != nil {
		argIdx++
		query += fmt.Sprintf(" AND actor_id = $%d", argIdx)
		args = append(args, *filters.ActorID)
	}

	if filters.Resource != nil {
		argIdx++
		query += fmt.Sprintf(" AND resource = $%d", argIdx)
		args = append(args, *filters.Resource)
	}

	if filters.StartDate != nil {
		argIdx++
		query += fmt.Sprintf(" AND created_at >= $%d", argIdx)
		args = append(args, *filters.StartDate)
	}

	if filters.EndDate != nil {
		argIdx++
		query += fmt.Sprintf(" AND created_at <= $%d", argIdx)
		args = append(args, *filters.EndDate)
	}

	query += " ORDER BY created_at DESC"

	if filters.Limit > 0 {
		argIdx++
		query += fmt.Sprintf(" LIMIT $%d", argIdx)
		args = append(args, filters.Limit)
		if filters.Offset > 0 {
			argIdx++
			query += fmt.Sprintf(" OFFSET $%d", argIdx)
			args = append(args, filters.Offset)
		}
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	auditLogs := make([]*models.AuditLog, 0)
	for rows.Next() {
		auditLog := &models.AuditLog{}
		var metadata []byte

		err := rows.Scan(
			&auditLog.ID,
			&auditLog.OrganizationID,
			&auditLog.ActorID,
			&auditLog.ActorRole,
			&auditLog.Action,
			&auditLog.Resource,
			&auditLog.ResourceID,
			&auditLog.StatusCode,
			&metadata,
			&auditLog.CreatedAt,
		)
		if err != nil {
			return nil, err
		}

		if len(metadata) > 0 {
			if err := json.Unmarshal(metadata, &auditLog.Metadata); err != nil {
				return nil, fmt.Errorf("failed to unmarshal metadata: %w", err)
			}
		}

		auditLogs = append(auditLogs, auditLog)
	}

	return auditLogs, rows.Err()
}

func (r *auditLogsRepo) DeleteByOrganization(ctx context.Context, orgID string) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM audit_logs WHERE organization_id = $1`, orgID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
