package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/medcamp/camp-system/models"
	"github.com/medcamp/camp-system/repositories"
)

type FeedbackInput struct {
	CampID  int    `json:"campId"`
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

type FeedbackService interface {
	Submit(ctx context.Context, input FeedbackInput, participantEmail, participantName string) (*models.Feedback, error)
	ListByParticipant(ctx context.Context, email string) ([]*models.Feedback, error)
	ListRecent(ctx context.Context, limit int) ([]*models.Feedback, error)
}

type feedbackService struct {
	feedbackRepo     repositories.FeedbackRepository
	registrationRepo repositories.RegistrationRepository
}

func NewFeedbackService(feedbackRepo repositories.FeedbackRepository, registrationRepo repositories.RegistrationRepository) FeedbackService {
	return &feedbackService{
		feedbackRepo:     feedbackRepo,
		registrationRepo: registrationRepo,
	}
}

// Submit принимает отзыв только от участника с оплаченной заявкой на этот
// лагерь. Ручное подтверждение организатором (Confirmed без оплаты) отзыв
// не открывает: критерий строго payment_status = paid.
func (s *feedbackService) Submit(ctx context.Context, input FeedbackInput, participantEmail, participantName string) (*models.Feedback, error) {
	if input.Rating < 1 || input.Rating > 5 {
		return nil, ErrInvalidRating
	}

	email := normalizeEmail(participantEmail)
	reg, err := s.registrationRepo.FindByEmailAndCamp(ctx, email, input.CampID)
	if err != nil {
		if errors.Is(err, repositories.ErrRegistrationNotFound) {
			return nil, ErrRegistrationNotFound
		}
		return nil, fmt.Errorf("failed to load registration: %w", err)
	}
	if reg.PaymentStatus != models.PaymentStatusPaid {
		return nil, ErrPaymentRequired
	}

	fb := &models.Feedback{
		CampID:           input.CampID,
		ParticipantEmail: email,
		ParticipantName:  strings.TrimSpace(participantName),
		Rating:           input.Rating,
		Comment:          strings.TrimSpace(input.Comment),
	}
	if err := s.feedbackRepo.Create(ctx, fb); err != nil {
		if errors.Is(err, repositories.ErrFeedbackRatingInvalid) {
			return nil, ErrInvalidRating
		}
		return nil, fmt.Errorf("failed to create feedback: %w", err)
	}
	return fb, nil
}

func (s *feedbackService) ListByParticipant(ctx context.Context, email string) ([]*models.Feedback, error) {
	return s.feedbackRepo.ListByParticipant(ctx, normalizeEmail(email))
}

func (s *feedbackService) ListRecent(ctx context.Context, limit int) ([]*models.Feedback, error) {
	if limit <= 0 || limit > 50 {
		limit = 10
	}
	return s.feedbackRepo.ListRecent(ctx, limit)
}
