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
	ErrFeedbackCampInvalid   = errors.New("feedback camp conflict or invalid")
	ErrFeedbackRatingInvalid = errors.New("feedback rating out of range")
)

type FeedbackRepository interface {
	Create(ctx context.Context, fb *models.Feedback) error
	ListByParticipant(ctx context.Context, email string) ([]*models.Feedback, error)
	ListRecent(ctx context.Context, limit int) ([]*models.Feedback, error)
	CountByParticipant(ctx context.Context, email string) (int, error)
}

type postgresFeedbackRepository struct {
	db *sql.DB
}

func NewPostgresFeedbackRepository(db *sql.DB) FeedbackRepository {
	return &postgresFeedbackRepository{db: db}
}

func (r *postgresFeedbackRepository) Create(ctx context.Context, fb *models.Feedback) error {
	query := `
		INSERT INTO feedbacks (camp_id, participant_email, participant_name, rating, comment)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, submitted_at`

	err := r.db.QueryRowContext(ctx, query,
		fb.CampID,
		fb.ParticipantEmail,
		fb.ParticipantName,
		fb.Rating,
		fb.Comment,
	).Scan(&fb.ID, &fb.SubmittedAt)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			switch pqErr.Code {
			case "23503": // foreign_key_violation
				if pqErr.Constraint == "feedbacks_camp_id_fkey" {
					return ErrFeedbackCampInvalid
				}
			case "23514": // check_violation
				if pqErr.Constraint == "chk_feedbacks_rating" {
					return ErrFeedbackRatingInvalid
				}
			}
		}
		return fmt.Errorf("failed to create feedback: %w", err)
	}
	return nil
}

func (r *postgresFeedbackRepository) list(ctx context.Context, condition string, order string, args ...interface{}) ([]*models.Feedback, error) {
	query := fmt.Sprintf(`
		SELECT f.id, f.camp_id, f.participant_email, f.participant_name, f.rating, f.comment, f.submitted_at,
		       c.name AS camp_name
		FROM feedbacks f
		LEFT JOIN camps c ON f.camp_id = c.id
		WHERE %s
		ORDER BY %s`, condition, order)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list feedbacks: %w", err)
	}
	defer rows.Close()

	feedbacks := make([]*models.Feedback, 0)
	for rows.Next() {
		var fb models.Feedback
		err := rows.Scan(&fb.ID, &fb.CampID, &fb.ParticipantEmail, &fb.ParticipantName, &fb.Rating, &fb.Comment, &fb.SubmittedAt, &fb.CampName)
		if err != nil {
			return nil, fmt.Errorf("failed to scan feedback row: %w", err)
		}
		feedbacks = append(feedbacks, &fb)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating feedback rows: %w", err)
	}
	return feedbacks, nil
}

func (r *postgresFeedbackRepository) ListByParticipant(ctx context.Context, email string) ([]*models.Feedback, error) {
	return r.list(ctx, "f.participant_email = $1", "f.submitted_at DESC", email)
}

func (r *postgresFeedbackRepository) ListRecent(ctx context.Context, limit int) ([]*models.Feedback, error) {
	return r.list(ctx, "TRUE", fmt.Sprintf("f.submitted_at DESC LIMIT %d", limit))
}

func (r *postgresFeedbackRepository) CountByParticipant(ctx context.Context, email string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM feedbacks WHERE participant_email = $1`, email).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count feedbacks by participant: %w", err)
	}
	return count, nil
}
