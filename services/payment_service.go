package services

import (
	"context"
	"fmt"

	"github.com/medcamp/camp-system/models"
	"github.com/medcamp/camp-system/payment"
	"github.com/medcamp/camp-system/repositories"
)

// PaymentService оборачивает платёжный шлюз. Никаких автоматических
// повторов: неудачный запрос возвращается вызывающему как ошибка, состояние
// заявки не меняется.
type PaymentService interface {
	CreateIntent(ctx context.Context, amountSubunits int64) (*payment.Intent, error)
	History(ctx context.Context, email string) ([]*models.Payment, error)
}

type paymentService struct {
	gateway     payment.Gateway
	paymentRepo repositories.PaymentRepository
	currency    string
}

func NewPaymentService(gateway payment.Gateway, paymentRepo repositories.PaymentRepository, currency string) PaymentService {
	if currency == "" {
		currency = "usd"
	}
	return &paymentService{
		gateway:     gateway,
		paymentRepo: paymentRepo,
		currency:    currency,
	}
}

func (s *paymentService) CreateIntent(ctx context.Context, amountSubunits int64) (*payment.Intent, error) {
	if amountSubunits < 1 {
		return nil, ErrInvalidAmount
	}
	intent, err := s.gateway.CreateIntent(ctx, amountSubunits, s.currency)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPaymentGateway, err)
	}
	return intent, nil
}

func (s *paymentService) History(ctx context.Context, email string) ([]*models.Payment, error) {
	return s.paymentRepo.ListByParticipant(ctx, normalizeEmail(email))
}
