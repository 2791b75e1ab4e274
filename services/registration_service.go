package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/medcamp/camp-system/models"
	"github.com/medcamp/camp-system/repositories"
)

// LiveBroadcaster доставляет события по заявкам подписчикам дашборда.
// Реализуется WebSocket-хабом; nil-реализация допустима в тестах.
type LiveBroadcaster interface {
	BroadcastCampEvent(campID int, event string, payload interface{})
}

// ReceiptSender отправляет участнику квитанцию об оплате.
type ReceiptSender interface {
	SendPaymentReceipt(to string, campName string, amount float64, transactionID string) error
}

const (
	EventRegistrationJoined    = "registration_joined"
	EventRegistrationCancelled = "registration_cancelled"
	EventRegistrationPaid      = "registration_paid"
)

type JoinInput struct {
	Email            string `json:"email"`
	CampID           int    `json:"campId"`
	ParticipantName  string `json:"participantName"`
	Age              int    `json:"age"`
	Phone            string `json:"phone"`
	Gender           string `json:"gender"`
	EmergencyContact string `json:"emergencyContact"`
}

type RegistrationService interface {
	Join(ctx context.Context, input JoinInput) (*models.Registration, error)
	CheckJoinStatus(ctx context.Context, email string, campID int) (bool, error)
	CompletePayment(ctx context.Context, registrationID int, transactionID, callerEmail string, callerRole models.UserRole) (*models.Registration, error)
	ConfirmManually(ctx context.Context, registrationID int, organizerEmail string) (*models.Registration, error)
	Cancel(ctx context.Context, registrationID int, callerEmail string, callerRole models.UserRole) error
	ListByParticipant(ctx context.Context, email string) ([]*models.Registration, error)
	ListByOrganizer(ctx context.Context, organizerEmail string) ([]*models.Registration, error)
	AdjustCampCount(ctx context.Context, campID int, delta int) (int, error)
}

type registrationService struct {
	db               *sql.DB
	registrationRepo repositories.RegistrationRepository
	campRepo         repositories.CampRepository
	paymentRepo      repositories.PaymentRepository
	receipts         ReceiptSender
	live             LiveBroadcaster
	logger           *slog.Logger
}

func NewRegistrationService(
	db *sql.DB,
	registrationRepo repositories.RegistrationRepository,
	campRepo repositories.CampRepository,
	paymentRepo repositories.PaymentRepository,
	receipts ReceiptSender,
	live LiveBroadcaster,
	logger *slog.Logger,
) RegistrationService {
	return &registrationService{
		db:               db,
		registrationRepo: registrationRepo,
		campRepo:         campRepo,
		paymentRepo:      paymentRepo,
		receipts:         receipts,
		live:             live,
		logger:           logger,
	}
}

func validateJoinInput(input JoinInput) error {
	if normalizeEmail(input.Email) == "" || input.CampID <= 0 {
		return ErrValidationFailed
	}
	if strings.TrimSpace(input.ParticipantName) == "" {
		return ErrParticipantNameRequired
	}
	if input.Age < 1 || input.Age > 120 {
		return ErrInvalidAge
	}
	if strings.TrimSpace(input.Phone) == "" {
		return ErrPhoneRequired
	}
	switch input.Gender {
	case "Male", "Female", "Other":
	default:
		return ErrInvalidGender
	}
	if strings.TrimSpace(input.EmergencyContact) == "" {
		return ErrEmergencyRequired
	}
	return nil
}

// Join создаёт заявку в состоянии unpaid/Pending и инкрементирует счётчик
// участников лагеря в одной транзакции. Повторная попытка для той же пары
// (email, camp) возвращает ErrAlreadyRegistered и ничего не меняет.
func (s *registrationService) Join(ctx context.Context, input JoinInput) (*models.Registration, error) {
	if err := validateJoinInput(input); err != nil {
		return nil, err
	}

	camp, err := s.campRepo.GetByID(ctx, input.CampID)
	if err != nil {
		if errors.Is(err, repositories.ErrCampNotFound) {
			return nil, ErrCampNotFound
		}
		return nil, fmt.Errorf("failed to load camp: %w", err)
	}

	email := normalizeEmail(input.Email)

	// Быстрая проверка до транзакции; гонку всё равно ловит уникальный
	// индекс на (camp_id, participant_email).
	_, err = s.registrationRepo.FindByEmailAndCamp(ctx, email, camp.ID)
	if err == nil {
		return nil, ErrAlreadyRegistered
	}
	if !errors.Is(err, repositories.ErrRegistrationNotFound) {
		return nil, fmt.Errorf("failed to check existing registration: %w", err)
	}

	reg := &models.Registration{
		CampID:             camp.ID,
		ParticipantEmail:   email,
		ParticipantName:    strings.TrimSpace(input.ParticipantName),
		Age:                input.Age,
		Phone:              strings.TrimSpace(input.Phone),
		Gender:             input.Gender,
		EmergencyContact:   strings.TrimSpace(input.EmergencyContact),
		PaymentStatus:      models.PaymentStatusUnpaid,
		ConfirmationStatus: models.ConfirmationPending,
	}

	var newCount int
	err = withTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := s.registrationRepo.Create(ctx, tx, reg); err != nil {
			return err
		}
		count, err := s.campRepo.AdjustParticipantCount(ctx, tx, camp.ID, +1)
		if err != nil {
			return err
		}
		newCount = count
		return nil
	})
	if err != nil {
		if errors.Is(err, repositories.ErrRegistrationConflict) {
			return nil, ErrAlreadyRegistered
		}
		return nil, fmt.Errorf("failed to join camp: %w", err)
	}

	s.broadcast(camp.ID, EventRegistrationJoined, map[string]interface{}{
		"registration": reg,
		"participants": newCount,
	})

	return reg, nil
}

func (s *registrationService) CheckJoinStatus(ctx context.Context, email string, campID int) (bool, error) {
	_, err := s.registrationRepo.FindByEmailAndCamp(ctx, normalizeEmail(email), campID)
	if err != nil {
		if errors.Is(err, repositories.ErrRegistrationNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check join status: %w", err)
	}
	return true, nil
}

// CompletePayment фиксирует успешную оплату: переход unpaid -> paid с
// одновременным Confirmed, записью transaction id и строкой истории
// платежей. Оплату закрывает сам участник либо организатор лагеря,
// чужая заявка недоступна. Повторная оплата отклоняется как
// недопустимый переход.
func (s *registrationService) CompletePayment(ctx context.Context, registrationID int, transactionID, callerEmail string, callerRole models.UserRole) (*models.Registration, error) {
	if strings.TrimSpace(transactionID) == "" {
		return nil, ErrValidationFailed
	}

	reg, err := s.registrationRepo.FindByID(ctx, registrationID)
	if err != nil {
		if errors.Is(err, repositories.ErrRegistrationNotFound) {
			return nil, ErrRegistrationNotFound
		}
		return nil, fmt.Errorf("failed to load registration: %w", err)
	}
	if reg.PaymentStatus == models.PaymentStatusPaid {
		return nil, ErrAlreadyPaid
	}

	camp, err := s.campRepo.GetByID(ctx, reg.CampID)
	if err != nil && !errors.Is(err, repositories.ErrCampNotFound) {
		return nil, fmt.Errorf("failed to load camp: %w", err)
	}

	caller := normalizeEmail(callerEmail)
	if reg.ParticipantEmail != caller {
		// Организатор закрывает оплату только по своим лагерям.
		if callerRole != models.RoleOrganizer {
			return nil, ErrForbiddenOperation
		}
		if camp == nil {
			return nil, ErrCampNotFound
		}
		if camp.OrganizerEmail != caller {
			return nil, ErrNotCampOwner
		}
	}

	// Лагерь мог быть удалён после подачи заявки, строка истории в этом
	// случае пишется без названия и суммы.
	campName := ""
	amount := 0.0
	if camp != nil {
		campName = camp.Name
		amount = camp.Fees
	}

	err = withTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := s.registrationRepo.MarkPaid(ctx, tx, registrationID, transactionID); err != nil {
			return err
		}
		payment := &models.Payment{
			RegistrationID:   registrationID,
			CampID:           reg.CampID,
			CampName:         campName,
			ParticipantEmail: reg.ParticipantEmail,
			Amount:           amount,
			TransactionID:    transactionID,
		}
		return s.paymentRepo.Create(ctx, tx, payment)
	})
	if err != nil {
		// Ноль затронутых строк при guarded UPDATE означает гонку:
		// кто-то успел оплатить между чтением и записью.
		if errors.Is(err, repositories.ErrRegistrationNotFound) {
			return nil, ErrAlreadyPaid
		}
		if errors.Is(err, repositories.ErrPaymentTransactionConflict) {
			return nil, ErrDuplicateTransaction
		}
		return nil, fmt.Errorf("failed to complete payment: %w", err)
	}

	reg.PaymentStatus = models.PaymentStatusPaid
	reg.ConfirmationStatus = models.ConfirmationConfirmed
	reg.TransactionID = &transactionID

	if s.receipts != nil {
		if err := s.receipts.SendPaymentReceipt(reg.ParticipantEmail, campName, amount, transactionID); err != nil {
			s.log().Warn("failed to send payment receipt",
				slog.String("email", reg.ParticipantEmail),
				slog.Any("error", err))
		}
	}

	s.broadcast(reg.CampID, EventRegistrationPaid, map[string]interface{}{
		"registration": reg,
	})

	return reg, nil
}

// ConfirmManually: административный override организатора, заявка
// помечается Confirmed независимо от состояния оплаты.
func (s *registrationService) ConfirmManually(ctx context.Context, registrationID int, organizerEmail string) (*models.Registration, error) {
	reg, err := s.registrationRepo.FindByID(ctx, registrationID)
	if err != nil {
		if errors.Is(err, repositories.ErrRegistrationNotFound) {
			return nil, ErrRegistrationNotFound
		}
		return nil, fmt.Errorf("failed to load registration: %w", err)
	}

	camp, err := s.campRepo.GetByID(ctx, reg.CampID)
	if err != nil {
		if errors.Is(err, repositories.ErrCampNotFound) {
			return nil, ErrCampNotFound
		}
		return nil, fmt.Errorf("failed to load camp: %w", err)
	}
	if camp.OrganizerEmail != normalizeEmail(organizerEmail) {
		return nil, ErrNotCampOwner
	}

	if err := s.registrationRepo.UpdateConfirmation(ctx, registrationID, models.ConfirmationConfirmed); err != nil {
		return nil, fmt.Errorf("failed to confirm registration: %w", err)
	}

	reg.ConfirmationStatus = models.ConfirmationConfirmed
	return reg, nil
}

// Cancel удаляет неоплаченную заявку и декрементирует счётчик участников в
// одной транзакции. Оплаченную заявку отменить нельзя.
func (s *registrationService) Cancel(ctx context.Context, registrationID int, callerEmail string, callerRole models.UserRole) error {
	reg, err := s.registrationRepo.FindByID(ctx, registrationID)
	if err != nil {
		if errors.Is(err, repositories.ErrRegistrationNotFound) {
			return ErrRegistrationNotFound
		}
		return fmt.Errorf("failed to load registration: %w", err)
	}

	if reg.PaymentStatus == models.PaymentStatusPaid {
		return ErrCancelPaidRegistration
	}

	caller := normalizeEmail(callerEmail)
	if reg.ParticipantEmail != caller {
		// Организатор может снимать заявки только со своих лагерей.
		if callerRole != models.RoleOrganizer {
			return ErrForbiddenOperation
		}
		camp, err := s.campRepo.GetByID(ctx, reg.CampID)
		if err != nil {
			if errors.Is(err, repositories.ErrCampNotFound) {
				return ErrCampNotFound
			}
			return fmt.Errorf("failed to load camp: %w", err)
		}
		if camp.OrganizerEmail != caller {
			return ErrNotCampOwner
		}
	}

	var newCount int
	err = withTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := s.registrationRepo.Delete(ctx, tx, registrationID); err != nil {
			return err
		}
		count, err := s.campRepo.AdjustParticipantCount(ctx, tx, reg.CampID, -1)
		if err != nil {
			// Лагерь мог быть удалён после подачи заявки; сама заявка
			// при этом всё равно снимается.
			if errors.Is(err, repositories.ErrCampNotFound) {
				return nil
			}
			return err
		}
		newCount = count
		return nil
	})
	if err != nil {
		if errors.Is(err, repositories.ErrRegistrationNotFound) {
			return ErrRegistrationNotFound
		}
		return fmt.Errorf("failed to cancel registration: %w", err)
	}

	s.broadcast(reg.CampID, EventRegistrationCancelled, map[string]interface{}{
		"registrationId": registrationID,
		"participants":   newCount,
	})

	return nil
}

func (s *registrationService) ListByParticipant(ctx context.Context, email string) ([]*models.Registration, error) {
	return s.registrationRepo.ListByParticipant(ctx, normalizeEmail(email))
}

func (s *registrationService) ListByOrganizer(ctx context.Context, organizerEmail string) ([]*models.Registration, error) {
	return s.registrationRepo.ListByOrganizer(ctx, normalizeEmail(organizerEmail))
}

// AdjustCampCount обслуживает легаси-эндпоинт PATCH /camps-update-count/:id. Счётчик
// и так поддерживается транзакционно вместе с заявками, поэтому здесь только
// валидация дельты и прямое обновление для обратной совместимости.
func (s *registrationService) AdjustCampCount(ctx context.Context, campID int, delta int) (int, error) {
	if delta != 1 && delta != -1 {
		return 0, ErrValidationFailed
	}
	count, err := s.campRepo.AdjustParticipantCount(ctx, nil, campID, delta)
	if err != nil {
		if errors.Is(err, repositories.ErrCampNotFound) {
			return 0, ErrCampNotFound
		}
		if errors.Is(err, repositories.ErrCampCountCheckFailed) {
			return 0, ErrValidationFailed
		}
		return 0, fmt.Errorf("failed to adjust camp count: %w", err)
	}
	return count, nil
}

func (s *registrationService) broadcast(campID int, event string, payload interface{}) {
	if s.live == nil {
		return
	}
	s.live.BroadcastCampEvent(campID, event, payload)
}

func (s *registrationService) log() *slog.Logger {
	if s.logger != nil {
		return s.logger
	}
	return slog.Default()
}
