package routes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v4"
	"github.com/medcamp/camp-system/handlers"
	"github.com/medcamp/camp-system/live"
	"github.com/medcamp/camp-system/middleware"
	"github.com/medcamp/camp-system/models"
	"github.com/medcamp/camp-system/services"
)

const testSecret = "routes-test-secret"

type stubAuthService struct{}

func (stubAuthService) Register(ctx context.Context, input services.RegisterInput) (*models.User, error) {
	return nil, nil
}

func (stubAuthService) Login(ctx context.Context, input services.LoginInput) (*models.User, error) {
	return nil, nil
}

func (stubAuthService) EnsureUser(ctx context.Context, input services.EnsureUserInput) (*models.User, bool, error) {
	return nil, false, nil
}

func (stubAuthService) ResolveRole(ctx context.Context, email string) (models.UserRole, error) {
	return models.RoleParticipant, nil
}

type stubRegistrationService struct {
	adjustCalled bool
}

func (s *stubRegistrationService) Join(ctx context.Context, input services.JoinInput) (*models.Registration, error) {
	return nil, nil
}

func (s *stubRegistrationService) CheckJoinStatus(ctx context.Context, email string, campID int) (bool, error) {
	return false, nil
}

func (s *stubRegistrationService) CompletePayment(ctx context.Context, registrationID int, transactionID, callerEmail string, callerRole models.UserRole) (*models.Registration, error) {
	return nil, nil
}

func (s *stubRegistrationService) ConfirmManually(ctx context.Context, registrationID int, organizerEmail string) (*models.Registration, error) {
	return nil, nil
}

func (s *stubRegistrationService) Cancel(ctx context.Context, registrationID int, callerEmail string, callerRole models.UserRole) error {
	return nil
}

func (s *stubRegistrationService) ListByParticipant(ctx context.Context, email string) ([]*models.Registration, error) {
	return nil, nil
}

func (s *stubRegistrationService) ListByOrganizer(ctx context.Context, organizerEmail string) ([]*models.Registration, error) {
	return nil, nil
}

func (s *stubRegistrationService) AdjustCampCount(ctx context.Context, campID int, delta int) (int, error) {
	s.adjustCalled = true
	return 10, nil
}

func newTestRouter(t *testing.T, regService services.RegistrationService) *chi.Mux {
	t.Helper()
	router := chi.NewRouter()
	SetupRoutes(
		router,
		[]string{"*"},
		middleware.NewAuthenticator(testSecret),
		handlers.NewAuthHandler(stubAuthService{}, nil, testSecret, nil),
		handlers.NewUserHandler(nil, nil),
		handlers.NewCampHandler(nil, nil),
		handlers.NewRegistrationHandler(regService, nil),
		handlers.NewPaymentHandler(nil, nil),
		handlers.NewFeedbackHandler(nil, nil),
		handlers.NewDashboardHandler(nil, nil),
		handlers.NewWebSocketHandler(live.NewHub(nil), nil),
	)
	return router
}

func bearerToken(t *testing.T, role models.UserRole) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": 1,
		"email":   "caller@x.com",
		"role":    string(role),
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return "Bearer " + signed
}

func TestRoleLookupRequiresAuth(t *testing.T) {
	router := newTestRouter(t, &stubRegistrationService{})

	req := httptest.NewRequest(http.MethodGet, "/users/role/boss@camp.org", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous role lookup must be rejected, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/users/role/boss@camp.org", nil)
	req.Header.Set("Authorization", bearerToken(t, models.RoleParticipant))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("authenticated role lookup failed: %d %s", rec.Code, rec.Body.String())
	}
}

func TestAdjustCountOrganizerOnly(t *testing.T) {
	svc := &stubRegistrationService{}
	router := newTestRouter(t, svc)

	req := httptest.NewRequest(http.MethodPatch, "/camps-update-count/5", nil)
	req.Header.Set("Authorization", bearerToken(t, models.RoleParticipant))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("participant must not adjust the counter, got %d", rec.Code)
	}
	if svc.adjustCalled {
		t.Fatal("service must not be reached on forbidden request")
	}

	req = httptest.NewRequest(http.MethodPatch, "/camps-update-count/5", nil)
	req.Header.Set("Authorization", bearerToken(t, models.RoleOrganizer))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("organizer adjust failed: %d %s", rec.Code, rec.Body.String())
	}
	if !svc.adjustCalled {
		t.Fatal("organizer request must reach the service")
	}
}
