package services

import (
	"context"

	"github.com/medcamp/camp-system/models"
	"github.com/medcamp/camp-system/repositories"
	"golang.org/x/sync/errgroup"
)

type DashboardService interface {
	OrganizerStats(ctx context.Context, organizerEmail string) (models.OrganizerStats, error)
	ParticipantAnalytics(ctx context.Context, email string) (models.ParticipantAnalytics, error)
}

type dashboardService struct {
	campRepo         repositories.CampRepository
	registrationRepo repositories.RegistrationRepository
	paymentRepo      repositories.PaymentRepository
	feedbackRepo     repositories.FeedbackRepository
}

func NewDashboardService(
	campRepo repositories.CampRepository,
	registrationRepo repositories.RegistrationRepository,
	paymentRepo repositories.PaymentRepository,
	feedbackRepo repositories.FeedbackRepository,
) DashboardService {
	return &dashboardService{
		campRepo:         campRepo,
		registrationRepo: registrationRepo,
		paymentRepo:      paymentRepo,
		feedbackRepo:     feedbackRepo,
	}
}

func (s *dashboardService) OrganizerStats(ctx context.Context, organizerEmail string) (models.OrganizerStats, error) {
	email := normalizeEmail(organizerEmail)
	var stats models.OrganizerStats

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		count, err := s.campRepo.CountByOrganizer(gCtx, email)
		stats.CampsTotal = count
		return err
	})
	g.Go(func() error {
		count, err := s.registrationRepo.CountByOrganizer(gCtx, email, false)
		stats.RegistrationsTotal = count
		return err
	})
	g.Go(func() error {
		count, err := s.registrationRepo.CountByOrganizer(gCtx, email, true)
		stats.PaidRegistrations = count
		return err
	})
	g.Go(func() error {
		total, err := s.paymentRepo.SumByOrganizer(gCtx, email)
		stats.FeesCollected = total
		return err
	})

	if err := g.Wait(); err != nil {
		return models.OrganizerStats{}, err
	}
	return stats, nil
}

func (s *dashboardService) ParticipantAnalytics(ctx context.Context, email string) (models.ParticipantAnalytics, error) {
	normalized := normalizeEmail(email)
	var analytics models.ParticipantAnalytics

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		count, err := s.registrationRepo.CountByParticipant(gCtx, normalized, false)
		analytics.RegisteredCamps = count
		return err
	})
	g.Go(func() error {
		count, err := s.registrationRepo.CountByParticipant(gCtx, normalized, true)
		analytics.PaidCamps = count
		return err
	})
	g.Go(func() error {
		total, err := s.paymentRepo.SumByParticipant(gCtx, normalized)
		analytics.TotalSpent = total
		return err
	})
	g.Go(func() error {
		count, err := s.feedbackRepo.CountByParticipant(gCtx, normalized)
		analytics.FeedbackCount = count
		return err
	})

	if err := g.Wait(); err != nil {
		return models.ParticipantAnalytics{}, err
	}
	return analytics, nil
}
