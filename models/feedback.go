package models

import "time"

// Feedback представляет отзыв участника об оплаченном лагере.
// Записи неизменяемы после создания.
type Feedback struct {
	ID               int       `json:"id"`
	CampID           int       `json:"campId"`
	ParticipantEmail string    `json:"participantEmail"`
	ParticipantName  string    `json:"participantName"`
	Rating           int       `json:"rating"`
	Comment          string    `json:"comment"`
	SubmittedAt      time.Time `json:"submittedAt"`

	CampName *string `json:"campName,omitempty"`
}
