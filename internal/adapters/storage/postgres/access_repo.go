package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"

	"biovault/internal/domain/access"
)

// Las categorías de datos van como JSONB: database/sql no escanea text[]
// directo y una columna json evita el helper de arrays.
func categoriesToJSON(cats []string) ([]byte, error) {
	if cats == nil {
		cats = []string{}
	}
	return json.Marshal(cats)
}

func categoriesFromJSON(raw []byte) ([]string, error) {
	if len(raw) == 0 {
		return []string{}, nil
	}
	var cats []string
	if err := json.Unmarshal(raw, &cats); err != nil {
		return nil, err
	}
	return cats, nil
}

type AccessRequestsRepo struct {
	db *sql.DB
}

func NewAccessRequestsRepo(db *sql.DB) *AccessRequestsRepo {
	return &AccessRequestsRepo{db: db}
}

func (r *AccessRequestsRepo) Create(ctx context.Context, req access.Request) error {
	cats, err := categoriesToJSON(req.DataCategories)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO access_requests (
			id, provider, institution, reason,
			requested_duration, data_categories,
			ts, status
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`,
		req.ID,
		req.Provider,
		req.Institution,
		req.Reason,
		req.RequestedDuration,
		cats,
		req.Timestamp,
		string(req.Status),
	)
	return err
}

func (r *AccessRequestsRepo) GetByID(ctx context.Context, id string) (access.Request, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return access.Request{}, ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT
			id, provider, institution, reason,
			requested_duration, data_categories,
			ts, status
		FROM access_requests
		WHERE id = $1
	`, id)

	return scanRequest(row.Scan)
}

func (r *AccessRequestsRepo) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return ErrNotFound
	}

	res, err := r.db.ExecContext(ctx, `
		DELETE FROM access_requests WHERE id = $1
	`, id)
	if err != nil {
		return err
	}

	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *AccessRequestsRepo) List(ctx context.Context) ([]access.Request, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT
			id, provider, institution, reason,
			requested_duration, data_categories,
			ts, status
		FROM access_requests
		ORDER BY ts ASC, id ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]access.Request, 0)
	for rows.Next() {
		req, err := scanRequest(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, req)
	}

	return out, rows.Err()
}

func scanRequest(scan func(...any) error) (access.Request, error) {
	var req access.Request
	var cats []byte
	var status string

	if err := scan(
		&req.ID,
		&req.Provider,
		&req.Institution,
		&req.Reason,
		&req.RequestedDuration,
		&cats,
		&req.Timestamp,
		&status,
	); err != nil {
		if err == sql.ErrNoRows {
			return access.Request{}, ErrNotFound
		}
		return access.Request{}, err
	}

	dc, err := categoriesFromJSON(cats)
	if err != nil {
		return access.Request{}, err
	}
	req.DataCategories = dc
	req.Status = access.RequestStatus(status)

	return req, nil
}

type AccessGrantsRepo struct {
	db *sql.DB
}

func NewAccessGrantsRepo(db *sql.DB) *AccessGrantsRepo {
	return &AccessGrantsRepo{db: db}
}

func (r *AccessGrantsRepo) Create(ctx context.Context, g access.Grant) error {
	cats, err := categoriesToJSON(g.DataCategories)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO access_grants (
			id, provider, institution,
			granted_at, expires_at,
			data_categories, access_count
		) VALUES ($1,$2,$3,$4,$5,$6,$7)
	`,
		g.ID,
		g.Provider,
		g.Institution,
		g.GrantedAt,
		g.ExpiresAt,
		cats,
		g.AccessCount,
	)
	return err
}

func (r *AccessGrantsRepo) Update(ctx context.Context, g access.Grant) error {
	cats, err := categoriesToJSON(g.DataCategories)
	if err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE access_grants
		SET
			provider = $2,
			institution = $3,
			granted_at = $4,
			expires_at = $5,
			data_categories = $6,
			access_count = $7
		WHERE id = $1
	`,
		g.ID,
		g.Provider,
		g.Institution,
		g.GrantedAt,
		g.ExpiresAt,
		cats,
		g.AccessCount,
	)
	if err != nil {
		return err
	}

	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *AccessGrantsRepo) GetByID(ctx context.Context, id string) (access.Grant, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return access.Grant{}, ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT
			id, provider, institution,
			granted_at, expires_at,
			data_categories, access_count
		FROM access_grants
		WHERE id = $1
	`, id)

	return scanGrant(row.Scan)
}

func (r *AccessGrantsRepo) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return ErrNotFound
	}

	res, err := r.db.ExecContext(ctx, `
		DELETE FROM access_grants WHERE id = $1
	`, id)
	if err != nil {
		return err
	}

	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *AccessGrantsRepo) List(ctx context.Context) ([]access.Grant, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT
			id, provider, institution,
			granted_at, expires_at,
			data_categories, access_count
		FROM access_grants
		ORDER BY granted_at DESC, id ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]access.Grant, 0)
	for rows.Next() {
		g, err := scanGrant(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}

	return out, rows.Err()
}

func scanGrant(scan func(...any) error) (access.Grant, error) {
	var g access.Grant
	var cats []byte

	if err := scan(
		&g.ID,
		&g.Provider,
		&g.Institution,
		&g.GrantedAt,
		&g.ExpiresAt,
		&cats,
		&g.AccessCount,
	); err != nil {
		if err == sql.ErrNoRows {
			return access.Grant{}, ErrNotFound
		}
		return access.Grant{}, err
	}

	dc, err := categoriesFromJSON(cats)
	if err != nil {
		return access.Grant{}, err
	}
	g.DataCategories = dc

	return g, nil
}
