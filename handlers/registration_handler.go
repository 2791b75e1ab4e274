package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/medcamp/camp-system/middleware"
	"github.com/medcamp/camp-system/services"
)

type RegistrationHandler struct {
	registrationService services.RegistrationService
	logger              *slog.Logger
}

func NewRegistrationHandler(registrationService services.RegistrationService, logger *slog.Logger) *RegistrationHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &RegistrationHandler{
		registrationService: registrationService,
		logger:              logger,
	}
}

// joinRequest повторяет легаси-формат тела /camps-join. Старый клиент
// присылает status, organizerEmail и confirmationStatus (сервер их
// игнорирует и выставляет сам), а числа из HTML-форм приходят строками,
// поэтому campId и age принимаются как json.Number.
type joinRequest struct {
	Email              string      `json:"email"`
	CampID             json.Number `json:"campId"`
	Status             string      `json:"status"`
	OrganizerEmail     string      `json:"organizerEmail"`
	ConfirmationStatus string      `json:"confirmationStatus"`
	ParticipantName    string      `json:"participantName"`
	Age                json.Number `json:"age"`
	Phone              string      `json:"phone"`
	Gender             string      `json:"gender"`
	EmergencyContact   string      `json:"emergencyContact"`
}

func numberToInt(n json.Number) (int, error) {
	if n.String() == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(n.String())
	if err != nil {
		return 0, err
	}
	return v, nil
}

// Join обрабатывает POST /camps-join
func (h *RegistrationHandler) Join(w http.ResponseWriter, r *http.Request) {
	email, err := middleware.GetUserEmailFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}

	var req joinRequest
	if err := readJSON(w, r, &req); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	campID, err := numberToInt(req.CampID)
	if err != nil {
		badRequestResponse(w, r, errInvalidCampID)
		return
	}
	age, err := numberToInt(req.Age)
	if err != nil {
		mapServiceErrorToHTTP(w, r, services.ErrInvalidAge)
		return
	}

	registration, err := h.registrationService.Join(r.Context(), services.JoinInput{
		Email:            email,
		CampID:           campID,
		ParticipantName:  req.ParticipantName,
		Age:              age,
		Phone:            req.Phone,
		Gender:           req.Gender,
		EmergencyContact: req.EmergencyContact,
	})
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	h.logger.Info("participant joined camp",
		slog.Int("camp_id", campID),
		slog.String("email", email),
	)

	err = writeJSON(w, http.StatusCreated, jsonResponse{"success": true, "registration": registration}, nil)
	if err != nil {
		serverErrorResponse(w, r, err)
	}
}

// CheckJoinStatus обрабатывает GET /check-join-status?email=&campId=
func (h *RegistrationHandler) CheckJoinStatus(w http.ResponseWriter, r *http.Request) {
	email, err := middleware.GetUserEmailFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}

	campID, err := strconv.Atoi(r.URL.Query().Get("campId"))
	if err != nil || campID <= 0 {
		badRequestResponse(w, r, errInvalidCampID)
		return
	}

	joined, err := h.registrationService.CheckJoinStatus(r.Context(), email, campID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	err = writeJSON(w, http.StatusOK, jsonResponse{"joined": joined}, nil)
	if err != nil {
		serverErrorResponse(w, r, err)
	}
}

// CompletePayment обрабатывает PATCH /update-payment-status/{registrationID}.
// Тело повторяет легаси-формат: status и confirmationStatus сервер
// игнорирует, состояние выставляется одним переходом unpaid -> paid.
func (h *RegistrationHandler) CompletePayment(w http.ResponseWriter, r *http.Request) {
	email, err := middleware.GetUserEmailFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}
	role, err := middleware.GetUserRoleFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}

	registrationID, err := getIDFromURL(r, "registrationID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var req struct {
		Status             string `json:"status"`
		TransactionID      string `json:"transactionId"`
		ConfirmationStatus string `json:"confirmationStatus"`
	}
	if err := readJSON(w, r, &req); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	registration, err := h.registrationService.CompletePayment(r.Context(), registrationID, req.TransactionID, email, role)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	h.logger.Info("registration paid",
		slog.Int("registration_id", registrationID),
		slog.String("transaction_id", req.TransactionID),
	)

	err = writeJSON(w, http.StatusOK, jsonResponse{"success": true, "registration": registration}, nil)
	if err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ConfirmManually обрабатывает PATCH /update-confirmation/{registrationID}
func (h *RegistrationHandler) ConfirmManually(w http.ResponseWriter, r *http.Request) {
	organizerEmail, err := middleware.GetUserEmailFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}

	registrationID, err := getIDFromURL(r, "registrationID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	registration, err := h.registrationService.ConfirmManually(r.Context(), registrationID, organizerEmail)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	err = writeJSON(w, http.StatusOK, jsonResponse{"success": true, "registration": registration}, nil)
	if err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Cancel обрабатывает DELETE /cancel-registration/{registrationID}
func (h *RegistrationHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	email, err := middleware.GetUserEmailFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}
	role, err := middleware.GetUserRoleFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}

	registrationID, err := getIDFromURL(r, "registrationID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.registrationService.Cancel(r.Context(), registrationID, email, role); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	h.logger.Info("registration cancelled",
		slog.Int("registration_id", registrationID),
		slog.String("caller", email),
	)

	err = writeJSON(w, http.StatusOK, jsonResponse{"success": true, "message": "registration cancelled"}, nil)
	if err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListByOrganizer обрабатывает GET /registered-camps
func (h *RegistrationHandler) ListByOrganizer(w http.ResponseWriter, r *http.Request) {
	email, err := middleware.GetUserEmailFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}

	registrations, err := h.registrationService.ListByOrganizer(r.Context(), email)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	err = writeJSON(w, http.StatusOK, jsonResponse{"registrations": registrations}, nil)
	if err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListByParticipant обрабатывает GET /user-registered-camps
func (h *RegistrationHandler) ListByParticipant(w http.ResponseWriter, r *http.Request) {
	email, err := middleware.GetUserEmailFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}

	registrations, err := h.registrationService.ListByParticipant(r.Context(), email)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	err = writeJSON(w, http.StatusOK, jsonResponse{"registrations": registrations}, nil)
	if err != nil {
		serverErrorResponse(w, r, err)
	}
}

// AdjustCount обрабатывает PATCH /camps-update-count/{campID}.
// Легаси-эндпоинт: старый клиент дёргал его после /camps-join, хотя
// счётчик уже обновлён транзакционно. Оставлен для совместимости,
// тело {"delta": 1|-1}; пустое тело трактуется как +1.
func (h *RegistrationHandler) AdjustCount(w http.ResponseWriter, r *http.Request) {
	campID, err := getIDFromURL(r, "campID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	delta := 1
	if r.ContentLength > 0 {
		var req struct {
			Delta int `json:"delta"`
		}
		if err := readJSON(w, r, &req); err != nil {
			badRequestResponse(w, r, err)
			return
		}
		if req.Delta != 0 {
			delta = req.Delta
		}
	}

	count, err := h.registrationService.AdjustCampCount(r.Context(), campID, delta)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	err = writeJSON(w, http.StatusOK, jsonResponse{"participants": count}, nil)
	if err != nil {
		serverErrorResponse(w, r, err)
	}
}
