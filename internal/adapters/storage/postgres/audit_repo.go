package postgres

import (
	"context"
	"database/sql"
	"strings"

	"biovault/internal/domain/audit"
)

// AuditRepo solo inserta y lee. La tabla no tiene UPDATE ni DELETE en
// ninguna query: el log es append-only también a nivel de adapter.
type AuditRepo struct {
	db *sql.DB
}

func NewAuditRepo(db *sql.DB) *AuditRepo {
	return &AuditRepo{db: db}
}

func (r *AuditRepo) Append(ctx context.Context, e audit.Entry) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO audit_entries (
			id, event_type, actor, resource, ts, location
		) VALUES ($1,$2,$3,$4,$5,$6)
	`,
		e.ID,
		string(e.EventType),
		e.Actor,
		e.Resource,
		e.Timestamp,
		e.Location,
	)
	return err
}

func (r *AuditRepo) List(ctx context.Context) ([]audit.Entry, error) {
	return r.list(ctx, `
		SELECT id, event_type, actor, resource, ts, location
		FROM audit_entries
		ORDER BY ts DESC, id DESC
	`)
}

func (r *AuditRepo) ListByActor(ctx context.Context, actor string) ([]audit.Entry, error) {
	if strings.TrimSpace(actor) == "" {
		return []audit.Entry{}, nil
	}
	return r.list(ctx, `
		SELECT id, event_type, actor, resource, ts, location
		FROM audit_entries
		WHERE actor = $1
		ORDER BY ts DESC, id DESC
	`, actor)
}

func (r *AuditRepo) list(ctx context.Context, query string, args ...any) ([]audit.Entry, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]audit.Entry, 0)
	for rows.Next() {
		var e audit.Entry
		var typ string
		if err := rows.Scan(
			&e.ID,
			&typ,
			&e.Actor,
			&e.Resource,
			&e.Timestamp,
			&e.Location,
		); err != nil {
			return nil, err
		}
		e.EventType = audit.EventType(typ)
		out = append(out, e)
	}

	return out, rows.Err()
}
