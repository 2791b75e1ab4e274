package services

import "errors"

// Общие ошибки, используемые в разных сервисах и маппинге HTTP.
var (
	// Ресурс не найден (универсальная)
	ErrNotFound = errors.New("requested resource not found")

	// Ошибки валидации и бизнес-правил
	ErrValidationFailed        = errors.New("validation failed")
	ErrPasswordTooShort        = errors.New("password is too short")
	ErrCampFieldsRequired      = errors.New("all camp fields are required")
	ErrCampNegativeFees        = errors.New("camp fees must be zero or positive")
	ErrCampInvalidDate         = errors.New("camp date is missing or invalid")
	ErrParticipantNameRequired = errors.New("participant name is required")
	ErrInvalidAge              = errors.New("participant age must be between 1 and 120")
	ErrPhoneRequired           = errors.New("phone number is required")
	ErrInvalidGender           = errors.New("gender must be Male, Female or Other")
	ErrEmergencyRequired       = errors.New("emergency contact is required")
	ErrInvalidRating           = errors.New("rating must be between 1 and 5")
	ErrInvalidRole             = errors.New("invalid role value")
	ErrInvalidAmount           = errors.New("payment amount must be at least one currency subunit")

	// Ошибки конфликтов и переходов состояний.
	// Текст ErrAlreadyRegistered входит в контракт со старым фронтендом,
	// который сравнивает сообщение дословно; менять нельзя.
	ErrAlreadyRegistered      = errors.New("You have already registered for this camp")
	ErrUserEmailConflict      = errors.New("email address is already in use")
	ErrAlreadyPaid            = errors.New("registration is already paid")
	ErrCancelPaidRegistration = errors.New("cannot cancel a paid registration")
	ErrPaymentRequired        = errors.New("payment required to submit feedback")
	ErrDuplicateTransaction   = errors.New("transaction id already recorded")

	// Ошибки аутентификации и авторизации
	ErrAuthInvalidCredentials = errors.New("invalid email or password")
	ErrAuthEmailTaken         = errors.New("email is already taken")
	ErrForbiddenOperation     = errors.New("operation not allowed for the current user")
	ErrNotCampOwner           = errors.New("only the organizer who owns the camp can perform this action")

	// Ошибки, специфичные для сущностей
	ErrUserNotFound         = errors.New("user not found")
	ErrCampNotFound         = errors.New("camp not found")
	ErrRegistrationNotFound = errors.New("registration not found")

	// Ошибки внешних коллабораторов
	ErrPaymentGateway = errors.New("payment gateway request failed")
	ErrImageUpload    = errors.New("image upload failed")
)
