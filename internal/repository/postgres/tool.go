package postgres

import (
	"context"
	"database/sql"

	"ubertool-booking/internal/domain"
	"ubertool-booking/internal/repository"

	"github.com/lib/pq"
)

type toolRepository struct {
	db *sql.DB
}

func NewToolRepository(db *sql.DB) repository.ToolRepository {
	return &toolRepository{db: db}
}

func (r *toolRepository) GetByID(ctx context.Context, id int32) (*domain.Tool, error) {
	t := &domain.Tool{}
	query := `SELECT id, owner_id, name, COALESCE(description, ''), categories, price_per_day_cents, COALESCE(deposit_cents, 0), condition, metro, status, created_on, deleted_on FROM tools WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, id).Scan(&t.ID, &t.OwnerID, &t.Name, &t.Description, pq.Array(&t.Categories), &t.PricePerDayCents, &t.DepositCents, &t.Condition, &t.Metro, &t.Status, &t.CreatedOn, &t.DeletedOn)
	if err != nil {
		return nil, mapError(err)
	}
	return t, nil
}
