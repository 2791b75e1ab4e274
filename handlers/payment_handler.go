package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/medcamp/camp-system/middleware"
	"github.com/medcamp/camp-system/services"
)

type PaymentHandler struct {
	paymentService services.PaymentService
	logger         *slog.Logger
}

func NewPaymentHandler(paymentService services.PaymentService, logger *slog.Logger) *PaymentHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &PaymentHandler{
		paymentService: paymentService,
		logger:         logger,
	}
}

// CreateIntent обрабатывает POST /create-payment-intent.
// amount уже в минимальных единицах валюты (fees * 100 считает клиент).
func (h *PaymentHandler) CreateIntent(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Amount json.Number `json:"amount"`
	}
	if err := readJSON(w, r, &req); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	amount, err := req.Amount.Int64()
	if err != nil {
		mapServiceErrorToHTTP(w, r, services.ErrInvalidAmount)
		return
	}

	intent, err := h.paymentService.CreateIntent(r.Context(), amount)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	h.logger.Info("payment intent created", slog.String("intent_id", intent.ID), slog.Int64("amount", amount))

	err = writeJSON(w, http.StatusOK, jsonResponse{"clientSecret": intent.ClientSecret}, nil)
	if err != nil {
		serverErrorResponse(w, r, err)
	}
}

// History обрабатывает GET /payment-history
func (h *PaymentHandler) History(w http.ResponseWriter, r *http.Request) {
	email, err := middleware.GetUserEmailFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}

	payments, err := h.paymentService.History(r.Context(), email)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	err = writeJSON(w, http.StatusOK, jsonResponse{"payments": payments}, nil)
	if err != nil {
		serverErrorResponse(w, r, err)
	}
}
