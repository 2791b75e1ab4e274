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
	ErrRegistrationNotFound    = errors.New("registration not found")
	ErrRegistrationConflict    = errors.New("registration conflict: participant already registered for this camp")
	ErrRegistrationCampInvalid = errors.New("registration camp conflict or invalid")
)

type RegistrationRepository interface {
	Create(ctx context.Context, exec SQLExecutor, reg *models.Registration) error
	FindByID(ctx context.Context, id int) (*models.Registration, error)
	FindByEmailAndCamp(ctx context.Context, email string, campID int) (*models.Registration, error)
	ListByParticipant(ctx context.Context, email string) ([]*models.Registration, error)
	ListByOrganizer(ctx context.Context, organizerEmail string) ([]*models.Registration, error)
	MarkPaid(ctx context.Context, exec SQLExecutor, id int, transactionID string) error
	UpdateConfirmation(ctx context.Context, id int, status models.ConfirmationStatus) error
	Delete(ctx context.Context, exec SQLExecutor, id int) error
	CountByParticipant(ctx context.Context, email string, paidOnly bool) (int, error)
	CountByOrganizer(ctx context.Context, organizerEmail string, paidOnly bool) (int, error)
}

type postgresRegistrationRepository struct {
	db *sql.DB
}

func NewPostgresRegistrationRepository(db *sql.DB) RegistrationRepository {
	return &postgresRegistrationRepository{db: db}
}

func (r *postgresRegistrationRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const registrationColumns = `id, camp_id, participant_email, participant_name, age, phone, gender, emergency_contact, payment_status, confirmation_status, transaction_id, created_at`

func (r *postgresRegistrationRepository) scanRegistration(rowScanner interface {
	Scan(dest ...interface{}) error
}, reg *models.Registration) error {
	return rowScanner.Scan(
		&reg.ID,
		&reg.CampID,
		&reg.ParticipantEmail,
		&reg.ParticipantName,
		&reg.Age,
		&reg.Phone,
		&reg.Gender,
		&reg.EmergencyContact,
		&reg.PaymentStatus,
		&reg.ConfirmationStatus,
		&reg.TransactionID,
		&reg.CreatedAt,
	)
}

func (r *postgresRegistrationRepository) Create(ctx context.Context, exec SQLExecutor, reg *models.Registration) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO registrations (camp_id, participant_email, participant_name, age, phone, gender, emergency_contact, payment_status, confirmation_status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at`

	err := executor.QueryRowContext(ctx, query,
		reg.CampID,
		reg.ParticipantEmail,
		reg.ParticipantName,
		reg.Age,
		reg.Phone,
		reg.Gender,
		reg.EmergencyContact,
		reg.PaymentStatus,
		reg.ConfirmationStatus,
	).Scan(&reg.ID, &reg.CreatedAt)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			switch pqErr.Code {
			case "23505": // unique_violation
				if pqErr.Constraint == "registrations_camp_id_participant_email_key" {
					return ErrRegistrationConflict
				}
			case "23503": // foreign_key_violation
				if pqErr.Constraint == "registrations_camp_id_fkey" {
					return ErrRegistrationCampInvalid
				}
			}
		}
		return fmt.Errorf("failed to create registration: %w", err)
	}
	return nil
}

func (r *postgresRegistrationRepository) findOne(ctx context.Context, query string, args ...interface{}) (*models.Registration, error) {
	reg := &models.Registration{}
	row := r.db.QueryRowContext(ctx, query, args...)
	err := r.scanRegistration(row, reg)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRegistrationNotFound
		}
		return nil, fmt.Errorf("failed to find registration: %w", err)
	}
	return reg, nil
}

func (r *postgresRegistrationRepository) FindByID(ctx context.Context, id int) (*models.Registration, error) {
	query := fmt.Sprintf(`SELECT %s FROM registrations WHERE id = $1`, registrationColumns)
	return r.findOne(ctx, query, id)
}

func (r *postgresRegistrationRepository) FindByEmailAndCamp(ctx context.Context, email string, campID int) (*models.Registration, error) {
	query := fmt.Sprintf(`SELECT %s FROM registrations WHERE participant_email = $1 AND camp_id = $2`, registrationColumns)
	return r.findOne(ctx, query, email, campID)
}

// listWithCamp выбирает заявки вместе с именем и стоимостью лагеря,
// которые нужны всем списковым экранам.
func (r *postgresRegistrationRepository) listWithCamp(ctx context.Context, condition string, args ...interface{}) ([]*models.Registration, error) {
	query := fmt.Sprintf(`
		SELECT
			reg.id, reg.camp_id, reg.participant_email, reg.participant_name, reg.age, reg.phone,
			reg.gender, reg.emergency_contact, reg.payment_status, reg.confirmation_status,
			reg.transaction_id, reg.created_at,
			c.name AS camp_name, c.fees AS camp_fees
		FROM registrations reg
		JOIN camps c ON reg.camp_id = c.id
		WHERE %s
		ORDER BY reg.created_at ASC`, condition)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list registrations: %w", err)
	}
	defer rows.Close()

	registrations := make([]*models.Registration, 0)
	for rows.Next() {
		var reg models.Registration
		err := rows.Scan(
			&reg.ID, &reg.CampID, &reg.ParticipantEmail, &reg.ParticipantName, &reg.Age, &reg.Phone,
			&reg.Gender, &reg.EmergencyContact, &reg.PaymentStatus, &reg.ConfirmationStatus,
			&reg.TransactionID, &reg.CreatedAt,
			&reg.CampName, &reg.CampFees,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan registration row: %w", err)
		}
		registrations = append(registrations, &reg)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating registration rows: %w", err)
	}
	return registrations, nil
}

func (r *postgresRegistrationRepository) ListByParticipant(ctx context.Context, email string) ([]*models.Registration, error) {
	return r.listWithCamp(ctx, "reg.participant_email = $1", email)
}

func (r *postgresRegistrationRepository) ListByOrganizer(ctx context.Context, organizerEmail string) ([]*models.Registration, error) {
	return r.listWithCamp(ctx, "c.organizer_email = $1", organizerEmail)
}

// MarkPaid переводит заявку в paid/Confirmed только из состояния unpaid.
// Ноль затронутых строк означает, что заявки нет либо она уже оплачена,
// различать эти случаи должен сервисный слой по свежему чтению.
func (r *postgresRegistrationRepository) MarkPaid(ctx context.Context, exec SQLExecutor, id int, transactionID string) error {
	executor := r.getExecutor(exec)
	query := `
		UPDATE registrations
		SET payment_status = $1, confirmation_status = $2, transaction_id = $3
		WHERE id = $4 AND payment_status = $5`

	result, err := executor.ExecContext(ctx, query,
		models.PaymentStatusPaid,
		models.ConfirmationConfirmed,
		transactionID,
		id,
		models.PaymentStatusUnpaid,
	)
	if err != nil {
		return fmt.Errorf("failed to mark registration paid: %w", err)
	}
	return checkAffectedRows(result, ErrRegistrationNotFound)
}

func (r *postgresRegistrationRepository) UpdateConfirmation(ctx context.Context, id int, status models.ConfirmationStatus) error {
	query := `UPDATE registrations SET confirmation_status = $1 WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("failed to update registration confirmation: %w", err)
	}
	return checkAffectedRows(result, ErrRegistrationNotFound)
}

func (r *postgresRegistrationRepository) Delete(ctx context.Context, exec SQLExecutor, id int) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx, `DELETE FROM registrations WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete registration: %w", err)
	}
	return checkAffectedRows(result, ErrRegistrationNotFound)
}

func (r *postgresRegistrationRepository) CountByParticipant(ctx context.Context, email string, paidOnly bool) (int, error) {
	query := `SELECT COUNT(*) FROM registrations WHERE participant_email = $1`
	args := []interface{}{email}
	if paidOnly {
		query += ` AND payment_status = $2`
		args = append(args, models.PaymentStatusPaid)
	}
	var count int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count registrations by participant: %w", err)
	}
	return count, nil
}

func (r *postgresRegistrationRepository) CountByOrganizer(ctx context.Context, organizerEmail string, paidOnly bool) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM registrations reg
		JOIN camps c ON reg.camp_id = c.id
		WHERE c.organizer_email = $1`
	args := []interface{}{organizerEmail}
	if paidOnly {
		query += ` AND reg.payment_status = $2`
		args = append(args, models.PaymentStatusPaid)
	}
	var count int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count registrations by organizer: %w", err)
	}
	return count, nil
}
