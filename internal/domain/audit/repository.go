package audit

import "context"

type Repository interface {
	Append(ctx context.Context, e Entry) error

	// List devuelve las entradas más recientes primero.
	List(ctx context.Context) ([]Entry, error)
	ListByActor(ctx context.Context, actor string) ([]Entry, error)
}
