package models

import "time"

// UserRole представляет роли пользователей, соответствующие ENUM в БД.
type UserRole string

const (
	RoleParticipant UserRole = "participant"
	RoleOrganizer   UserRole = "organizer"
)

// ParseUserRole нормализует строковое значение роли. Старый фронтенд
// использует "user" как синоним участника, поэтому принимаем оба варианта.
func ParseUserRole(raw string) (UserRole, bool) {
	switch raw {
	case "participant", "user":
		return RoleParticipant, true
	case "organizer":
		return RoleOrganizer, true
	default:
		return "", false
	}
}

type User struct {
	ID           int       `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PhotoURL     *string   `json:"photoURL,omitempty"`
	Role         UserRole  `json:"role"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
