package notifications

import "context"

type Repository interface {
	Create(ctx context.Context, n Notification) error

	// List devuelve las notificaciones más recientes primero.
	List(ctx context.Context) ([]Notification, error)

	// MarkRead marca una notificación como leída. Id ausente => ErrNotFound
	// del adapter; el service lo tolera (marcar algo inexistente no es error).
	MarkRead(ctx context.Context, id string) error
	MarkAllRead(ctx context.Context) error
	UnreadCount(ctx context.Context) (int, error)
}
