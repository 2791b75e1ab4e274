package models

// OrganizerStats агрегаты для дашборда организатора.
type OrganizerStats struct {
	CampsTotal         int     `json:"campsTotal"`
	RegistrationsTotal int     `json:"registrationsTotal"`
	PaidRegistrations  int     `json:"paidRegistrations"`
	FeesCollected      float64 `json:"feesCollected"`
}

// ParticipantAnalytics агрегаты для дашборда участника.
type ParticipantAnalytics struct {
	RegisteredCamps int     `json:"registeredCamps"`
	PaidCamps       int     `json:"paidCamps"`
	TotalSpent      float64 `json:"totalSpent"`
	FeedbackCount   int     `json:"feedbackCount"`
}
