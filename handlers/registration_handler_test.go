package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v4"
	"github.com/medcamp/camp-system/middleware"
	"github.com/medcamp/camp-system/models"
	"github.com/medcamp/camp-system/services"
)

// fakeRegistrationService записывает входы и возвращает подготовленные ответы.
type fakeRegistrationService struct {
	joinInput    services.JoinInput
	joinResult   *models.Registration
	joinErr      error
	payTxID      string
	payCaller    string
	payRole      models.UserRole
	payResult    *models.Registration
	payErr       error
	cancelCalled bool
	cancelErr    error
}

func (f *fakeRegistrationService) Join(ctx context.Context, input services.JoinInput) (*models.Registration, error) {
	f.joinInput = input
	return f.joinResult, f.joinErr
}

func (f *fakeRegistrationService) CheckJoinStatus(ctx context.Context, email string, campID int) (bool, error) {
	return false, nil
}

func (f *fakeRegistrationService) CompletePayment(ctx context.Context, registrationID int, transactionID, callerEmail string, callerRole models.UserRole) (*models.Registration, error) {
	f.payTxID = transactionID
	f.payCaller = callerEmail
	f.payRole = callerRole
	return f.payResult, f.payErr
}

func (f *fakeRegistrationService) ConfirmManually(ctx context.Context, registrationID int, organizerEmail string) (*models.Registration, error) {
	return nil, nil
}

func (f *fakeRegistrationService) Cancel(ctx context.Context, registrationID int, callerEmail string, callerRole models.UserRole) error {
	f.cancelCalled = true
	return f.cancelErr
}

func (f *fakeRegistrationService) ListByParticipant(ctx context.Context, email string) ([]*models.Registration, error) {
	return nil, nil
}

func (f *fakeRegistrationService) ListByOrganizer(ctx context.Context, organizerEmail string) ([]*models.Registration, error) {
	return nil, nil
}

func (f *fakeRegistrationService) AdjustCampCount(ctx context.Context, campID int, delta int) (int, error) {
	return 0, nil
}

func requestWithClaims(req *http.Request, email, role string) *http.Request {
	ctx := middleware.ContextWithClaims(req.Context(), jwt.MapClaims{
		"user_id": float64(1),
		"email":   email,
		"role":    role,
	})
	return req.WithContext(ctx)
}

func withURLParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestJoinAcceptsLegacyPayload(t *testing.T) {
	svc := &fakeRegistrationService{joinResult: &models.Registration{ID: 1, CampID: 12}}
	h := NewRegistrationHandler(svc, nil)

	// Старый клиент шлёт status/organizerEmail/confirmationStatus и числа
	// строками; сервер всё это обязан принять.
	body := `{
		"email": "alice@x.com",
		"campId": "12",
		"status": "unpaid",
		"organizerEmail": "org@x.com",
		"confirmationStatus": "Pending",
		"participantName": "Alice",
		"age": "30",
		"phone": "01700000000",
		"gender": "Female",
		"emergencyContact": "01800000000"
	}`
	req := requestWithClaims(httptest.NewRequest(http.MethodPost, "/camps-join", strings.NewReader(body)), "alice@x.com", "participant")
	rec := httptest.NewRecorder()
	h.Join(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.joinInput.CampID != 12 || svc.joinInput.Age != 30 {
		t.Errorf("legacy string numbers not decoded: %+v", svc.joinInput)
	}
	// Почта берётся из токена, а не из тела
	if svc.joinInput.Email != "alice@x.com" {
		t.Errorf("email: got %q", svc.joinInput.Email)
	}

	var resp struct {
		Success bool `json:"success"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil || !resp.Success {
		t.Errorf("expected success envelope, got %s", rec.Body.String())
	}
}

func TestJoinNumericPayload(t *testing.T) {
	svc := &fakeRegistrationService{joinResult: &models.Registration{ID: 1}}
	h := NewRegistrationHandler(svc, nil)

	body := `{"campId": 12, "age": 30, "participantName": "Alice", "phone": "017", "gender": "Female", "emergencyContact": "018"}`
	req := requestWithClaims(httptest.NewRequest(http.MethodPost, "/camps-join", strings.NewReader(body)), "alice@x.com", "participant")
	rec := httptest.NewRecorder()
	h.Join(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.joinInput.CampID != 12 || svc.joinInput.Age != 30 {
		t.Errorf("numeric payload not decoded: %+v", svc.joinInput)
	}
}

func TestJoinDuplicateKeepsLegacyMessage(t *testing.T) {
	svc := &fakeRegistrationService{joinErr: services.ErrAlreadyRegistered}
	h := NewRegistrationHandler(svc, nil)

	body := `{"campId": 12, "age": 30, "participantName": "Alice", "phone": "017", "gender": "Female", "emergencyContact": "018"}`
	req := requestWithClaims(httptest.NewRequest(http.MethodPost, "/camps-join", strings.NewReader(body)), "alice@x.com", "participant")
	rec := httptest.NewRecorder()
	h.Join(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
	// Старый клиент сравнивает message дословно
	var resp struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if resp.Message != "You have already registered for this camp" {
		t.Errorf("legacy duplicate message broken: %q", resp.Message)
	}
}

func TestJoinWithoutClaims(t *testing.T) {
	h := NewRegistrationHandler(&fakeRegistrationService{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/camps-join", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	h.Join(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestCompletePaymentReadsLegacyBody(t *testing.T) {
	svc := &fakeRegistrationService{payResult: &models.Registration{ID: 5, PaymentStatus: models.PaymentStatusPaid}}
	h := NewRegistrationHandler(svc, nil)

	body := `{"status": "paid", "transactionId": "tx_1", "confirmationStatus": "Confirmed"}`
	req := httptest.NewRequest(http.MethodPatch, "/update-payment-status/5", strings.NewReader(body))
	req = withURLParam(requestWithClaims(req, "alice@x.com", "participant"), "registrationID", "5")
	rec := httptest.NewRecorder()
	h.CompletePayment(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.payTxID != "tx_1" {
		t.Errorf("transaction id not passed: %q", svc.payTxID)
	}
	if svc.payCaller != "alice@x.com" || svc.payRole != models.RoleParticipant {
		t.Errorf("caller identity not taken from token: %q %q", svc.payCaller, svc.payRole)
	}
}

func TestCompletePaymentWithoutClaims(t *testing.T) {
	h := NewRegistrationHandler(&fakeRegistrationService{}, nil)

	req := httptest.NewRequest(http.MethodPatch, "/update-payment-status/5", strings.NewReader(`{"transactionId": "tx_1"}`))
	req = withURLParam(req, "registrationID", "5")
	rec := httptest.NewRecorder()
	h.CompletePayment(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestCompletePaymentAlreadyPaid(t *testing.T) {
	svc := &fakeRegistrationService{payErr: services.ErrAlreadyPaid}
	h := NewRegistrationHandler(svc, nil)

	req := httptest.NewRequest(http.MethodPatch, "/update-payment-status/5", strings.NewReader(`{"transactionId": "tx_2"}`))
	req = withURLParam(requestWithClaims(req, "alice@x.com", "participant"), "registrationID", "5")
	rec := httptest.NewRecorder()
	h.CompletePayment(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
}

func TestCancelPaidRegistrationReturnsConflict(t *testing.T) {
	svc := &fakeRegistrationService{cancelErr: services.ErrCancelPaidRegistration}
	h := NewRegistrationHandler(svc, nil)

	req := httptest.NewRequest(http.MethodDelete, "/cancel-registration/5", nil)
	req = withURLParam(requestWithClaims(req, "alice@x.com", "participant"), "registrationID", "5")
	rec := httptest.NewRecorder()
	h.Cancel(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
	if !svc.cancelCalled {
		t.Error("service Cancel was not called")
	}
}

func TestCancelInvalidID(t *testing.T) {
	h := NewRegistrationHandler(&fakeRegistrationService{}, nil)

	req := httptest.NewRequest(http.MethodDelete, "/cancel-registration/abc", nil)
	req = withURLParam(requestWithClaims(req, "alice@x.com", "participant"), "registrationID", "abc")
	rec := httptest.NewRecorder()
	h.Cancel(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
