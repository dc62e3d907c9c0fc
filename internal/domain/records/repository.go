package records

import "context"

type Repository interface {
	Create(ctx context.Context, rec HealthRecord) error
	GetByID(ctx context.Context, id string) (HealthRecord, error)

	// List devuelve los registros más recientes primero.
	List(ctx context.Context) ([]HealthRecord, error)
}
