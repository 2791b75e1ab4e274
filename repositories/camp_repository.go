package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/medcamp/camp-system/models"
)

var (
	ErrCampNotFound          = errors.New("camp not found")
	ErrCampInvalidOrganizer  = errors.New("invalid camp organizer reference")
	ErrCampCountCheckFailed  = errors.New("camp participant count cannot go below zero")
	ErrCampNegativeFeesCheck = errors.New("camp fees cannot be negative")
)

type ListCampsFilter struct {
	OrganizerEmail *string
	Statuses       []models.CampStatus
	Limit          int
	Offset         int
}

type CampRepository interface {
	Create(ctx context.Context, camp *models.Camp) error
	GetByID(ctx context.Context, id int) (*models.Camp, error)
	List(ctx context.Context, filter ListCampsFilter) ([]models.Camp, error)
	Update(ctx context.Context, camp *models.Camp) error
	Delete(ctx context.Context, id int) error
	AdjustParticipantCount(ctx context.Context, exec SQLExecutor, id int, delta int) (int, error)
	UpdateStatuses(ctx context.Context, now time.Time) (int64, error)
	CountByOrganizer(ctx context.Context, organizerEmail string) (int, error)
}

type postgresCampRepository struct {
	db *sql.DB
}

func NewPostgresCampRepository(db *sql.DB) CampRepository {
	return &postgresCampRepository{db: db}
}

func (r *postgresCampRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const campColumns = `id, name, image_url, location, date_time, fees, doctor_name, description, organizer_email, participant_count, status, created_at`

func (r *postgresCampRepository) scanCamp(rowScanner interface {
	Scan(dest ...interface{}) error
}, c *models.Camp) error {
	return rowScanner.Scan(
		&c.ID,
		&c.Name,
		&c.ImageURL,
		&c.Location,
		&c.DateTime,
		&c.Fees,
		&c.DoctorName,
		&c.Description,
		&c.OrganizerEmail,
		&c.ParticipantCount,
		&c.Status,
		&c.CreatedAt,
	)
}

func (r *postgresCampRepository) Create(ctx context.Context, camp *models.Camp) error {
	query := `
		INSERT INTO camps (name, image_url, location, date_time, fees, doctor_name, description, organizer_email, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, participant_count, created_at`

	err := r.db.QueryRowContext(ctx, query,
		camp.Name,
		camp.ImageURL,
		camp.Location,
		camp.DateTime,
		camp.Fees,
		camp.DoctorName,
		camp.Description,
		camp.OrganizerEmail,
		camp.Status,
	).Scan(&camp.ID, &camp.ParticipantCount, &camp.CreatedAt)

	if err != nil {
		return r.handleCampError(err)
	}
	return nil
}

func (r *postgresCampRepository) GetByID(ctx context.Context, id int) (*models.Camp, error) {
	query := fmt.Sprintf(`SELECT %s FROM camps WHERE id = $1`, campColumns)
	c := &models.Camp{}
	err := r.scanCamp(r.db.QueryRowContext(ctx, query, id), c)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCampNotFound
		}
		return nil, fmt.Errorf("failed to get camp by id: %w", err)
	}
	return c, nil
}

func (r *postgresCampRepository) List(ctx context.Context, filter ListCampsFilter) ([]models.Camp, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(fmt.Sprintf(`SELECT %s FROM camps`, campColumns))

	args := []interface{}{}
	conditions := []string{}

	if filter.OrganizerEmail != nil {
		args = append(args, *filter.OrganizerEmail)
		conditions = append(conditions, fmt.Sprintf("organizer_email = $%d", len(args)))
	}
	if len(filter.Statuses) > 0 {
		statuses := make([]string, 0, len(filter.Statuses))
		for _, s := range filter.Statuses {
			statuses = append(statuses, string(s))
		}
		args = append(args, pq.Array(statuses))
		conditions = append(conditions, fmt.Sprintf("status = ANY($%d)", len(args)))
	}
	if len(conditions) > 0 {
		queryBuilder.WriteString(" WHERE " + strings.Join(conditions, " AND "))
	}

	// Порядок по количеству участников нужен домашней странице ("популярные
	// лагеря"); вторичный ключ фиксирует общий порядок.
	queryBuilder.WriteString(" ORDER BY participant_count DESC, id ASC")

	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		queryBuilder.WriteString(fmt.Sprintf(" LIMIT $%d", len(args)))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		queryBuilder.WriteString(fmt.Sprintf(" OFFSET $%d", len(args)))
	}

	rows, err := r.db.QueryContext(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list camps: %w", err)
	}
	defer rows.Close()

	camps := make([]models.Camp, 0)
	for rows.Next() {
		var c models.Camp
		if err := r.scanCamp(rows, &c); err != nil {
			return nil, fmt.Errorf("failed to scan camp row: %w", err)
		}
		camps = append(camps, c)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating camp rows: %w", err)
	}
	return camps, nil
}

func (r *postgresCampRepository) Update(ctx context.Context, camp *models.Camp) error {
	query := `
		UPDATE camps
		SET name = $1, image_url = $2, location = $3, date_time = $4, fees = $5,
		    doctor_name = $6, description = $7, status = $8
		WHERE id = $9`

	result, err := r.db.ExecContext(ctx, query,
		camp.Name,
		camp.ImageURL,
		camp.Location,
		camp.DateTime,
		camp.Fees,
		camp.DoctorName,
		camp.Description,
		camp.Status,
		camp.ID,
	)
	if err != nil {
		return r.handleCampError(err)
	}
	return checkAffectedRows(result, ErrCampNotFound)
}

func (r *postgresCampRepository) Delete(ctx context.Context, id int) error {
	// Заявки на удалённый лагерь намеренно не трогаем: осиротевшие записи
	// остаются в БД, их чистка выполняется отдельной административной задачей.
	query := `DELETE FROM camps WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete camp: %w", err)
	}
	return checkAffectedRows(result, ErrCampNotFound)
}

// AdjustParticipantCount атомарно изменяет счётчик участников и возвращает
// новое значение. Вызывается внутри той же транзакции, что и запись заявки.
func (r *postgresCampRepository) AdjustParticipantCount(ctx context.Context, exec SQLExecutor, id int, delta int) (int, error) {
	executor := r.getExecutor(exec)
	query := `
		UPDATE camps
		SET participant_count = participant_count + $1
		WHERE id = $2
		RETURNING participant_count`

	var count int
	err := executor.QueryRowContext(ctx, query, delta, id).Scan(&count)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrCampNotFound
		}
		return 0, r.handleCampError(err)
	}
	return count, nil
}

// UpdateStatuses переводит лагеря по датам: upcoming -> ongoing в день
// проведения, ongoing -> completed после его окончания.
func (r *postgresCampRepository) UpdateStatuses(ctx context.Context, now time.Time) (int64, error) {
	query := `
		UPDATE camps
		SET status = CASE
			WHEN date_time < $1::timestamptz - interval '1 day' THEN 'completed'
			ELSE 'ongoing'
		END
		WHERE date_time <= $1
		  AND status <> CASE
			WHEN date_time < $1::timestamptz - interval '1 day' THEN 'completed'
			ELSE 'ongoing'
		END`

	result, err := r.db.ExecContext(ctx, query, now)
	if err != nil {
		return 0, fmt.Errorf("failed to update camp statuses: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to check affected rows for camp status update: %w", err)
	}
	return affected, nil
}

func (r *postgresCampRepository) CountByOrganizer(ctx context.Context, organizerEmail string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM camps WHERE organizer_email = $1`, organizerEmail).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count camps by organizer: %w", err)
	}
	return count, nil
}

func (r *postgresCampRepository) handleCampError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		switch pqErr.Code {
		case "23503": // foreign_key_violation
			if pqErr.Constraint == "camps_organizer_email_fkey" {
				return ErrCampInvalidOrganizer
			}
		case "23514": // check_violation
			switch pqErr.Constraint {
			case "chk_camps_participant_count":
				return ErrCampCountCheckFailed
			case "chk_camps_fees":
				return ErrCampNegativeFeesCheck
			}
		}
	}
	return fmt.Errorf("camp repository error: %w", err)
}
