package access

import "context"

type RequestRepository interface {
	Create(ctx context.Context, req Request) error
	GetByID(ctx context.Context, id string) (Request, error)
	Delete(ctx context.Context, id string) error

	// List devuelve los pedidos pendientes, más antiguos primero.
	List(ctx context.Context) ([]Request, error)
}

type GrantRepository interface {
	Create(ctx context.Context, g Grant) error
	Update(ctx context.Context, g Grant) error
	GetByID(ctx context.Context, id string) (Grant, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]Grant, error)
}
