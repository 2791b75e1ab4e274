package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/medcamp/camp-system/middleware"
	"github.com/medcamp/camp-system/services"
)

const defaultRecentFeedbackLimit = 6

type FeedbackHandler struct {
	feedbackService services.FeedbackService
	logger          *slog.Logger
}

func NewFeedbackHandler(feedbackService services.FeedbackService, logger *slog.Logger) *FeedbackHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &FeedbackHandler{
		feedbackService: feedbackService,
		logger:          logger,
	}
}

// Submit обрабатывает POST /submit-feedback
func (h *FeedbackHandler) Submit(w http.ResponseWriter, r *http.Request) {
	email, err := middleware.GetUserEmailFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}

	// Числа из форм старого клиента приходят строками, а в поле
	// participantEmail он кладёт отображаемое имя пользователя.
	var input struct {
		CampID           json.Number `json:"campId"`
		Rating           json.Number `json:"rating"`
		Comment          string      `json:"comment"`
		ParticipantEmail string      `json:"participantEmail"`
		ParticipantName  string      `json:"participantName"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	campID, err := strconv.Atoi(input.CampID.String())
	if err != nil {
		badRequestResponse(w, r, errInvalidCampID)
		return
	}
	rating, err := strconv.Atoi(input.Rating.String())
	if err != nil {
		mapServiceErrorToHTTP(w, r, services.ErrInvalidRating)
		return
	}

	name := input.ParticipantName
	if name == "" {
		name = input.ParticipantEmail
	}

	feedback, err := h.feedbackService.Submit(r.Context(), services.FeedbackInput{
		CampID:  campID,
		Rating:  rating,
		Comment: input.Comment,
	}, email, name)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	h.logger.Info("feedback submitted",
		slog.Int("camp_id", campID),
		slog.Int("rating", rating),
		slog.String("email", email),
	)

	err = writeJSON(w, http.StatusCreated, jsonResponse{"success": true, "feedback": feedback}, nil)
	if err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListByParticipant обрабатывает GET /participant-feedbacks
func (h *FeedbackHandler) ListByParticipant(w http.ResponseWriter, r *http.Request) {
	email, err := middleware.GetUserEmailFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}

	feedbacks, err := h.feedbackService.ListByParticipant(r.Context(), email)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	err = writeJSON(w, http.StatusOK, jsonResponse{"feedbacks": feedbacks}, nil)
	if err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListRecent обрабатывает GET /feedbacks?limit= (публичная лента отзывов)
func (h *FeedbackHandler) ListRecent(w http.ResponseWriter, r *http.Request) {
	limit := defaultRecentFeedbackLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			badRequestResponse(w, r, errInvalidLimit)
			return
		}
		limit = parsed
	}

	feedbacks, err := h.feedbackService.ListRecent(r.Context(), limit)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	err = writeJSON(w, http.StatusOK, jsonResponse{"feedbacks": feedbacks}, nil)
	if err != nil {
		serverErrorResponse(w, r, err)
	}
}
