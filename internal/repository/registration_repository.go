package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/onurcolak/whatsapp-relay/internal/domain"
)

type RegistrationRepository struct {
	db *sqlx.DB
}

func NewRegistrationRepository(db *sqlx.DB) *RegistrationRepository {
	return &RegistrationRepository{db: db}
}

func (r *RegistrationRepository) FindByPhone(ctx context.Context, phoneNumber string) ([]domain.Registration, error) {
	query := `
		SELECT id, name, phone_number, COALESCE(image_urls, JSON_ARRAY()) AS image_urls,
			verification_status, created_at, updated_at
		FROM registrations
		WHERE phone_number = ?
		ORDER BY id ASC
	`

	var registrations []domain.Registration
	if err := r.db.SelectContext(ctx, &registrations, query, phoneNumber); err != nil {
		return nil, fmt.Errorf("failed to find registrations: %w", err)
	}

	return registrations, nil
}

// AddImage adds imageURL to the registration's image set and marks it as
// having an uploaded image. Adding a URL that is already present is a no-op
// for the set.
func (r *RegistrationRepository) AddImage(ctx context.Context, id int64, imageURL string) error {
	query := `
		UPDATE registrations
		SET image_urls = IF(
				JSON_CONTAINS(COALESCE(image_urls, JSON_ARRAY()), JSON_QUOTE(?)),
				COALESCE(image_urls, JSON_ARRAY()),
				JSON_ARRAY_APPEND(COALESCE(image_urls, JSON_ARRAY()), '$', ?)
			),
			verification_status = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`

	result, err := r.db.ExecContext(ctx, query, imageURL, imageURL, domain.VerificationImageUploaded, id)
	if err != nil {
		return fmt.Errorf("failed to add registration image: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("no registration found with id %d", id)
	}

	return nil
}
