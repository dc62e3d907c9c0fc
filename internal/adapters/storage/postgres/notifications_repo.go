package postgres

import (
	"context"
	"database/sql"
	"strings"

	"biovault/internal/domain/notifications"
)

type NotificationsRepo struct {
	db *sql.DB
}

func NewNotificationsRepo(db *sql.DB) *NotificationsRepo {
	return &NotificationsRepo{db: db}
}

func (r *NotificationsRepo) Create(ctx context.Context, n notifications.Notification) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO notifications (
			id, type, message, ts, is_read, link_to
		) VALUES ($1,$2,$3,$4,$5,$6)
	`,
		n.ID,
		string(n.Type),
		n.Message,
		n.Timestamp,
		n.IsRead,
		n.LinkTo,
	)
	return err
}

func (r *NotificationsRepo) List(ctx context.Context) ([]notifications.Notification, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, type, message, ts, is_read, link_to
		FROM notifications
		ORDER BY ts DESC, id DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]notifications.Notification, 0)
	for rows.Next() {
		var n notifications.Notification
		var typ string
		if err := rows.Scan(
			&n.ID,
			&typ,
			&n.Message,
			&n.Timestamp,
			&n.IsRead,
			&n.LinkTo,
		); err != nil {
			return nil, err
		}
		n.Type = notifications.Type(typ)
		out = append(out, n)
	}

	return out, rows.Err()
}

// MarkRead devuelve el sentinel del dominio: el service decide si un id
// ausente es error o no.
func (r *NotificationsRepo) MarkRead(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return notifications.ErrNotFound
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE notifications
		SET is_read = TRUE
		WHERE id = $1
	`, id)
	if err != nil {
		return err
	}

	n, _ := res.RowsAffected()
	if n == 0 {
		return notifications.ErrNotFound
	}
	return nil
}

func (r *NotificationsRepo) MarkAllRead(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE notifications
		SET is_read = TRUE
		WHERE is_read = FALSE
	`)
	return err
}

func (r *NotificationsRepo) UnreadCount(ctx context.Context) (int, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM notifications WHERE is_read = FALSE
	`)

	var n int
	if err := row.Scan(&n); err != nil {
		if err == sql.ErrNoRows {
			return 0, nil
		}
		return 0, err
	}
	return n, nil
}
