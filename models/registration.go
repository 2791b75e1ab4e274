package models

import "time"

// PaymentStatus и ConfirmationStatus соответствуют ENUM в БД. Строковые
// значения совпадают с тем, что исторически отдаёт API ("unpaid"/"paid",
// "Pending"/"Confirmed"), менять их нельзя без миграции фронтенда.
type PaymentStatus string

const (
	PaymentStatusUnpaid PaymentStatus = "unpaid"
	PaymentStatusPaid   PaymentStatus = "paid"
)

type ConfirmationStatus string

const (
	ConfirmationPending   ConfirmationStatus = "Pending"
	ConfirmationConfirmed ConfirmationStatus = "Confirmed"
)

// Registration представляет заявку участника на лагерь.
// Уникальность пары (camp_id, participant_email) обеспечивается БД.
type Registration struct {
	ID                 int                `json:"id" db:"id"`
	CampID             int                `json:"campId" db:"camp_id"`
	ParticipantEmail   string             `json:"email" db:"participant_email"`
	ParticipantName    string             `json:"participantName" db:"participant_name"`
	Age                int                `json:"age" db:"age"`
	Phone              string             `json:"phone" db:"phone"`
	Gender             string             `json:"gender" db:"gender"`
	EmergencyContact   string             `json:"emergencyContact" db:"emergency_contact"`
	PaymentStatus      PaymentStatus      `json:"status" db:"payment_status"`
	ConfirmationStatus ConfirmationStatus `json:"confirmationStatus" db:"confirmation_status"`
	TransactionID      *string            `json:"transactionId,omitempty" db:"transaction_id"`
	CreatedAt          time.Time          `json:"created_at" db:"created_at"`

	// Поля лагеря, подтягиваемые JOIN-ом для списковых выборок.
	CampName *string  `json:"campName,omitempty" db:"-"`
	CampFees *float64 `json:"fees,omitempty" db:"-"`
}
