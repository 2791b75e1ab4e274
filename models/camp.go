package models

import "time"

// CampStatus представляет статусы лагеря, соответствующие ENUM в БД.
// Статус выводится из даты проведения и обновляется планировщиком.
type CampStatus string

const (
	CampStatusUpcoming  CampStatus = "upcoming"
	CampStatusOngoing   CampStatus = "ongoing"
	CampStatusCompleted CampStatus = "completed"
)

// Camp представляет медицинский лагерь.
type Camp struct {
	ID               int        `json:"id" db:"id"`
	Name             string     `json:"campName" db:"name"`
	ImageURL         *string    `json:"image,omitempty" db:"image_url"`
	Location         string     `json:"location" db:"location"`
	DateTime         time.Time  `json:"dateTime" db:"date_time"`
	Fees             float64    `json:"fees" db:"fees"`
	DoctorName       string     `json:"doctorName" db:"doctor_name"`
	Description      string     `json:"description" db:"description"`
	OrganizerEmail   string     `json:"organizerEmail" db:"organizer_email"`
	ParticipantCount int        `json:"participants" db:"participant_count"`
	Status           CampStatus `json:"status" db:"status"`
	CreatedAt        time.Time  `json:"created_at" db:"created_at"`
}
