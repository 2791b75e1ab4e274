package services

import (
	"context"
	"errors"
	"testing"

	"github.com/medcamp/camp-system/models"
	"github.com/medcamp/camp-system/repositories"
)

type fakeFeedbackRepo struct {
	nextID    int
	feedbacks []*models.Feedback
}

func (f *fakeFeedbackRepo) Create(ctx context.Context, fb *models.Feedback) error {
	f.nextID++
	fb.ID = f.nextID
	f.feedbacks = append(f.feedbacks, fb)
	return nil
}

func (f *fakeFeedbackRepo) ListByParticipant(ctx context.Context, email string) ([]*models.Feedback, error) {
	var out []*models.Feedback
	for _, fb := range f.feedbacks {
		if fb.ParticipantEmail == email {
			out = append(out, fb)
		}
	}
	return out, nil
}

func (f *fakeFeedbackRepo) ListRecent(ctx context.Context, limit int) ([]*models.Feedback, error) {
	if limit > len(f.feedbacks) {
		limit = len(f.feedbacks)
	}
	return f.feedbacks[:limit], nil
}

func (f *fakeFeedbackRepo) CountByParticipant(ctx context.Context, email string) (int, error) {
	out, _ := f.ListByParticipant(ctx, email)
	return len(out), nil
}

func newTestFeedbackService(regStatus models.PaymentStatus) (FeedbackService, *fakeFeedbackRepo) {
	regRepo := newFakeRegistrationRepo()
	regRepo.regs[1] = &models.Registration{
		ID:               1,
		CampID:           7,
		ParticipantEmail: "alice@x.com",
		PaymentStatus:    regStatus,
	}
	fbRepo := &fakeFeedbackRepo{}
	return NewFeedbackService(fbRepo, regRepo), fbRepo
}

func TestSubmitFeedbackRequiresPaidRegistration(t *testing.T) {
	svc, fbRepo := newTestFeedbackService(models.PaymentStatusUnpaid)

	_, err := svc.Submit(context.Background(), FeedbackInput{CampID: 7, Rating: 5, Comment: "great"}, "alice@x.com", "Alice")
	if !errors.Is(err, ErrPaymentRequired) {
		t.Fatalf("expected ErrPaymentRequired, got %v", err)
	}
	if len(fbRepo.feedbacks) != 0 {
		t.Errorf("feedback must not be stored, got %d", len(fbRepo.feedbacks))
	}
}

func TestSubmitFeedbackRequiresRegistration(t *testing.T) {
	svc, _ := newTestFeedbackService(models.PaymentStatusPaid)

	_, err := svc.Submit(context.Background(), FeedbackInput{CampID: 99, Rating: 5}, "alice@x.com", "Alice")
	if !errors.Is(err, ErrRegistrationNotFound) {
		t.Fatalf("expected ErrRegistrationNotFound, got %v", err)
	}
}

func TestSubmitFeedbackPaidRegistration(t *testing.T) {
	svc, fbRepo := newTestFeedbackService(models.PaymentStatusPaid)

	fb, err := svc.Submit(context.Background(), FeedbackInput{CampID: 7, Rating: 4, Comment: "  well organized  "}, "Alice@X.com", "Alice")
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if fb.Rating != 4 || fb.Comment != "well organized" {
		t.Errorf("feedback fields wrong: %+v", fb)
	}
	if fb.ParticipantEmail != "alice@x.com" {
		t.Errorf("email not normalized: %s", fb.ParticipantEmail)
	}
	if len(fbRepo.feedbacks) != 1 {
		t.Errorf("expected 1 stored feedback, got %d", len(fbRepo.feedbacks))
	}
}

func TestSubmitFeedbackRatingBounds(t *testing.T) {
	svc, _ := newTestFeedbackService(models.PaymentStatusPaid)

	for _, rating := range []int{0, 6, -1} {
		_, err := svc.Submit(context.Background(), FeedbackInput{CampID: 7, Rating: rating}, "alice@x.com", "Alice")
		if !errors.Is(err, ErrInvalidRating) {
			t.Errorf("rating %d: expected ErrInvalidRating, got %v", rating, err)
		}
	}
}

var _ repositories.FeedbackRepository = (*fakeFeedbackRepo)(nil)
