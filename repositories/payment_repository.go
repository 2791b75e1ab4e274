package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/medcamp/camp-system/models"
)

var (
	ErrPaymentNotFound            = errors.New("payment not found")
	ErrPaymentTransactionConflict = errors.New("payment transaction already recorded")
)

type PaymentRepository interface {
	Create(ctx context.Context, exec SQLExecutor, p *models.Payment) error
	ListByParticipant(ctx context.Context, email string) ([]*models.Payment, error)
	SumByOrganizer(ctx context.Context, organizerEmail string) (float64, error)
	SumByParticipant(ctx context.Context, email string) (float64, error)
}

type postgresPaymentRepository struct {
	db *sql.DB
}

func NewPostgresPaymentRepository(db *sql.DB) PaymentRepository {
	return &postgresPaymentRepository{db: db}
}

func (r *postgresPaymentRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresPaymentRepository) Create(ctx context.Context, exec SQLExecutor, p *models.Payment) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO payments (registration_id, camp_id, camp_name, participant_email, amount, transaction_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, paid_at`

	err := executor.QueryRowContext(ctx, query,
		p.RegistrationID,
		p.CampID,
		p.CampName,
		p.ParticipantEmail,
		p.Amount,
		p.TransactionID,
	).Scan(&p.ID, &p.PaidAt)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Code == "23505" && pqErr.Constraint == "payments_transaction_id_key" {
				return ErrPaymentTransactionConflict
			}
		}
		return fmt.Errorf("failed to create payment: %w", err)
	}
	return nil
}

func (r *postgresPaymentRepository) ListByParticipant(ctx context.Context, email string) ([]*models.Payment, error) {
	query := `
		SELECT id, registration_id, camp_id, camp_name, participant_email, amount, transaction_id, paid_at
		FROM payments
		WHERE participant_email = $1
		ORDER BY paid_at DESC`

	rows, err := r.db.QueryContext(ctx, query, email)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	defer rows.Close()

	payments := make([]*models.Payment, 0)
	for rows.Next() {
		var p models.Payment
		err := rows.Scan(&p.ID, &p.RegistrationID, &p.CampID, &p.CampName, &p.ParticipantEmail, &p.Amount, &p.TransactionID, &p.PaidAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payment row: %w", err)
		}
		payments = append(payments, &p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating payment rows: %w", err)
	}
	return payments, nil
}

func (r *postgresPaymentRepository) SumByOrganizer(ctx context.Context, organizerEmail string) (float64, error) {
	query := `
		SELECT COALESCE(SUM(p.amount), 0)
		FROM payments p
		JOIN camps c ON p.camp_id = c.id
		WHERE c.organizer_email = $1`

	var total float64
	if err := r.db.QueryRowContext(ctx, query, organizerEmail).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to sum payments by organizer: %w", err)
	}
	return total, nil
}

func (r *postgresPaymentRepository) SumByParticipant(ctx context.Context, email string) (float64, error) {
	query := `SELECT COALESCE(SUM(amount), 0) FROM payments WHERE participant_email = $1`
	var total float64
	if err := r.db.QueryRowContext(ctx, query, email).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to sum payments by participant: %w", err)
	}
	return total, nil
}
