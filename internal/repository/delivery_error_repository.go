package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/onurcolak/whatsapp-relay/internal/domain"
)

type DeliveryErrorRepository struct {
	db *sqlx.DB
}

func NewDeliveryErrorRepository(db *sqlx.DB) *DeliveryErrorRepository {
	return &DeliveryErrorRepository{db: db}
}

func (r *DeliveryErrorRepository) Save(ctx context.Context, record *domain.DeliveryError) error {
	query := `
		INSERT INTO delivery_errors
			(report_id, recipient_id, status, error_code, error_title, error_details, conversation_origin, occurred_at)
		VALUES
			(:report_id, :recipient_id, :status, :error_code, :error_title, :error_details, :conversation_origin, :occurred_at)
	`

	result, err := r.db.NamedExecContext(ctx, query, record)
	if err != nil {
		return fmt.Errorf("failed to save delivery error: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	record.ID = id

	return nil
}
