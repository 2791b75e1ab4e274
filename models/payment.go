package models

import "time"

// Payment представляет запись истории платежей. Создаётся один раз при
// успешной оплате заявки и далее только читается.
type Payment struct {
	ID               int       `json:"id"`
	RegistrationID   int       `json:"registrationId"`
	CampID           int       `json:"campId"`
	CampName         string    `json:"campName"`
	ParticipantEmail string    `json:"participantEmail"`
	Amount           float64   `json:"amount"`
	TransactionID    string    `json:"transactionId"`
	PaidAt           time.Time `json:"paidAt"`
}
