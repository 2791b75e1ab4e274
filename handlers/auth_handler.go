package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v4"
	"github.com/medcamp/camp-system/models"
	"github.com/medcamp/camp-system/services"
)

const tokenTTL = 24 * time.Hour

type AuthHandler struct {
	authService  services.AuthService
	emailService *services.EmailService
	jwtSecret    string
	logger       *slog.Logger
}

func NewAuthHandler(authService services.AuthService, emailService *services.EmailService, jwtSecret string, logger *slog.Logger) *AuthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthHandler{
		authService:  authService,
		emailService: emailService,
		jwtSecret:    jwtSecret,
		logger:       logger,
	}
}

func (h *AuthHandler) issueToken(user *models.User) (string, error) {
	claims := jwt.MapClaims{
		"user_id": user.ID,
		"email":   user.Email,
		"role":    string(user.Role),
		"exp":     time.Now().Add(tokenTTL).Unix(),
		"iat":     time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(h.jwtSecret))
}

// Register обрабатывает POST /register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var input services.RegisterInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	user, err := h.authService.Register(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	// Письмо-приветствие не должно блокировать регистрацию.
	if h.emailService != nil && h.emailService.Enabled() {
		go func(name, email string) {
			if err := h.emailService.SendWelcomeEmail(email, name); err != nil {
				h.logger.Warn("failed to send welcome email", slog.String("email", email), slog.Any("error", err))
			}
		}(user.Name, user.Email)
	}

	tokenString, err := h.issueToken(user)
	if err != nil {
		serverErrorResponse(w, r, err)
		return
	}

	err = writeJSON(w, http.StatusCreated, jsonResponse{"token": tokenString, "user": user}, nil)
	if err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Login обрабатывает POST /login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	user, err := h.authService.Login(r.Context(), services.LoginInput{
		Email:    input.Email,
		Password: input.Password,
	})
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	tokenString, err := h.issueToken(user)
	if err != nil {
		serverErrorResponse(w, r, err)
		return
	}

	err = writeJSON(w, http.StatusOK, jsonResponse{"token": tokenString, "user": user}, nil)
	if err != nil {
		serverErrorResponse(w, r, err)
	}
}

// EnsureUser обрабатывает POST /users: апсерт пользователя, пришедшего
// через внешнего провайдера. Существующая учётка не перезаписывается.
// Токен выдаётся только на свежесозданную учётку: эндпоинт открытый, и
// email в теле ничем не подтверждён, поэтому вход в существующую учётку
// возможен только через /auth/login.
func (h *AuthHandler) EnsureUser(w http.ResponseWriter, r *http.Request) {
	var input services.EnsureUserInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	user, created, err := h.authService.EnsureUser(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	payload := jsonResponse{"user": user, "inserted": created}
	status := http.StatusOK
	if created {
		status = http.StatusCreated

		tokenString, err := h.issueToken(user)
		if err != nil {
			serverErrorResponse(w, r, err)
			return
		}
		payload["token"] = tokenString

		if h.emailService != nil && h.emailService.Enabled() {
			go func(name, email string) {
				if err := h.emailService.SendWelcomeEmail(email, name); err != nil {
					h.logger.Warn("failed to send welcome email", slog.String("email", email), slog.Any("error", err))
				}
			}(user.Name, user.Email)
		}
	}

	err = writeJSON(w, status, payload, nil)
	if err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetRole обрабатывает GET /users/role/{email}
func (h *AuthHandler) GetRole(w http.ResponseWriter, r *http.Request) {
	email := chi.URLParam(r, "email")
	if email == "" {
		badRequestResponse(w, r, errMissingEmailParam)
		return
	}

	role, err := h.authService.ResolveRole(r.Context(), email)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	err = writeJSON(w, http.StatusOK, jsonResponse{"role": string(role)}, nil)
	if err != nil {
		serverErrorResponse(w, r, err)
	}
}
