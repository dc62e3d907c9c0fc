package postgres

import (
	"context"
	"database/sql"
	"strings"

	"biovault/internal/domain/records"
)

type RecordsRepo struct {
	db *sql.DB
}

func NewRecordsRepo(db *sql.DB) *RecordsRepo {
	return &RecordsRepo{db: db}
}

func (r *RecordsRepo) Create(ctx context.Context, rec records.HealthRecord) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO health_records (
			id, name, type, category,
			uploaded_at, size, ipfs_hash, encrypted,
			uploaded_by
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`,
		rec.ID,
		rec.Name,
		rec.Type,
		rec.Category,
		rec.UploadedAt,
		rec.Size,
		rec.IPFSHash,
		rec.Encrypted,
		rec.UploadedBy,
	)
	return err
}

func (r *RecordsRepo) GetByID(ctx context.Context, id string) (records.HealthRecord, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return records.HealthRecord{}, ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT
			id, name, type, category,
			uploaded_at, size, ipfs_hash, encrypted,
			uploaded_by
		FROM health_records
		WHERE id = $1
	`, id)

	var rec records.HealthRecord
	if err := row.Scan(
		&rec.ID,
		&rec.Name,
		&rec.Type,
		&rec.Category,
		&rec.UploadedAt,
		&rec.Size,
		&rec.IPFSHash,
		&rec.Encrypted,
		&rec.UploadedBy,
	); err != nil {
		if err == sql.ErrNoRows {
			return records.HealthRecord{}, ErrNotFound
		}
		return records.HealthRecord{}, err
	}

	return rec, nil
}

func (r *RecordsRepo) List(ctx context.Context) ([]records.HealthRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT
			id, name, type, category,
			uploaded_at, size, ipfs_hash, encrypted,
			uploaded_by
		FROM health_records
		ORDER BY uploaded_at DESC, id DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]records.HealthRecord, 0)
	for rows.Next() {
		var rec records.HealthRecord
		if err := rows.Scan(
			&rec.ID,
			&rec.Name,
			&rec.Type,
			&rec.Category,
			&rec.UploadedAt,
			&rec.Size,
			&rec.IPFSHash,
			&rec.Encrypted,
			&rec.UploadedBy,
		); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}

	return out, rows.Err()
}
