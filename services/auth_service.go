package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/medcamp/camp-system/models"
	"github.com/medcamp/camp-system/repositories"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 6

type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*models.User, error)
	Login(ctx context.Context, input LoginInput) (*models.User, error)
	// EnsureUser регистрирует пользователя, пришедшего из внешнего
	// провайдера (Google): создаёт запись, если её ещё нет, иначе
	// возвращает существующую. Пароля у таких учёток нет.
	EnsureUser(ctx context.Context, input EnsureUserInput) (*models.User, bool, error)
	ResolveRole(ctx context.Context, email string) (models.UserRole, error)
}

type RegisterInput struct {
	Name     string  `json:"name"`
	Email    string  `json:"email"`
	PhotoURL *string `json:"photoURL"`
	Password string  `json:"password"`
}

type LoginInput struct {
	Email    string
	Password string
}

type EnsureUserInput struct {
	Name     string  `json:"name"`
	Email    string  `json:"email"`
	PhotoURL *string `json:"photoURL"`
	Role     string  `json:"role"`

	// Временные метки присылает старый клиент; сервер ведёт их сам.
	CreatedAt string `json:"created_at,omitempty"`
	LastLogIn string `json:"last_log_in,omitempty"`
}

type authService struct {
	userRepo repositories.UserRepository
}

func NewAuthService(userRepo repositories.UserRepository) AuthService {
	return &authService{
		userRepo: userRepo,
	}
}

func (s *authService) Register(ctx context.Context, input RegisterInput) (*models.User, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, ErrParticipantNameRequired
	}
	if len(input.Password) < minPasswordLength {
		return nil, ErrPasswordTooShort
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Name:         strings.TrimSpace(input.Name),
		Email:        normalizeEmail(input.Email),
		PhotoURL:     input.PhotoURL,
		Role:         models.RoleParticipant, // роль назначается при создании, клиент её не выбирает
		PasswordHash: string(hashedPassword),
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrUserEmailConflict) {
			return nil, ErrAuthEmailTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

func (s *authService) Login(ctx context.Context, input LoginInput) (*models.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, normalizeEmail(input.Email))
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrAuthInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}

	err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, ErrAuthInvalidCredentials
		}
		return nil, fmt.Errorf("failed to compare password hash: %w", err)
	}

	user.PasswordHash = ""

	return user, nil
}

func (s *authService) EnsureUser(ctx context.Context, input EnsureUserInput) (*models.User, bool, error) {
	email := normalizeEmail(input.Email)
	if email == "" {
		return nil, false, ErrValidationFailed
	}

	existing, err := s.userRepo.GetByEmail(ctx, email)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, repositories.ErrUserNotFound) {
		return nil, false, fmt.Errorf("failed to look up user: %w", err)
	}

	// Старый фронтенд присылает role: "user"; нормализуем на границе и
	// дальше работаем только с enum.
	role := models.RoleParticipant
	if input.Role != "" {
		parsed, ok := models.ParseUserRole(input.Role)
		if !ok {
			return nil, false, ErrInvalidRole
		}
		// Самоназначение роли организатора через этот маршрут запрещено.
		if parsed == models.RoleOrganizer {
			return nil, false, ErrForbiddenOperation
		}
		role = parsed
	}

	user := &models.User{
		Name:     strings.TrimSpace(input.Name),
		Email:    email,
		PhotoURL: input.PhotoURL,
		Role:     role,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		// Гонка между проверкой и вставкой: кто-то создал запись раньше.
		if errors.Is(err, repositories.ErrUserEmailConflict) {
			existing, lookupErr := s.userRepo.GetByEmail(ctx, email)
			if lookupErr != nil {
				return nil, false, fmt.Errorf("failed to reload user after conflict: %w", lookupErr)
			}
			return existing, false, nil
		}
		return nil, false, fmt.Errorf("failed to create user: %w", err)
	}
	return user, true, nil
}

func (s *authService) ResolveRole(ctx context.Context, email string) (models.UserRole, error) {
	user, err := s.userRepo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return "", ErrUserNotFound
		}
		return "", fmt.Errorf("failed to resolve role: %w", err)
	}
	return user.Role, nil
}
