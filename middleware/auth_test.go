package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/medcamp/camp-system/models"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return signed
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthenticateValidToken(t *testing.T) {
	auth := NewAuthenticator(testSecret)
	tokenString := signToken(t, testSecret, jwt.MapClaims{
		"user_id": 1,
		"email":   "alice@x.com",
		"role":    "participant",
		"exp":     time.Now().Add(time.Hour).Unix(),
	})

	var gotEmail string
	handler := auth.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		email, err := GetUserEmailFromContext(r.Context())
		if err != nil {
			t.Errorf("email not in context: %v", err)
		}
		gotEmail = email
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/profile", nil)
	req.Header.Set("Authorization", "Bearer "+tokenString)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if gotEmail != "alice@x.com" {
		t.Errorf("expected email from claims, got %q", gotEmail)
	}
}

func TestAuthenticateRejectsMissingAndMalformedHeaders(t *testing.T) {
	auth := NewAuthenticator(testSecret)
	handler := auth.Authenticate(okHandler())

	cases := []struct {
		name   string
		header string
	}{
		{"no header", ""},
		{"not bearer", "Basic abc"},
		{"garbage token", "Bearer not-a-jwt"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/profile", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			if rec.Code != http.StatusUnauthorized {
				t.Errorf("expected 401, got %d", rec.Code)
			}
		})
	}
}

func TestAuthenticateRejectsWrongSecret(t *testing.T) {
	auth := NewAuthenticator(testSecret)
	tokenString := signToken(t, "other-secret", jwt.MapClaims{
		"user_id": 1,
		"exp":     time.Now().Add(time.Hour).Unix(),
	})

	req := httptest.NewRequest(http.MethodGet, "/profile", nil)
	req.Header.Set("Authorization", "Bearer "+tokenString)
	rec := httptest.NewRecorder()
	auth.Authenticate(okHandler()).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for forged token, got %d", rec.Code)
	}
}

func TestAuthenticateRejectsExpiredToken(t *testing.T) {
	auth := NewAuthenticator(testSecret)
	tokenString := signToken(t, testSecret, jwt.MapClaims{
		"user_id": 1,
		"exp":     time.Now().Add(-time.Hour).Unix(),
	})

	req := httptest.NewRequest(http.MethodGet, "/profile", nil)
	req.Header.Set("Authorization", "Bearer "+tokenString)
	rec := httptest.NewRecorder()
	auth.Authenticate(okHandler()).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for expired token, got %d", rec.Code)
	}
}

func TestRequireRole(t *testing.T) {
	handler := RequireRole(models.RoleOrganizer)(okHandler())

	cases := []struct {
		name string
		role string
		want int
	}{
		{"organizer allowed", "organizer", http.StatusOK},
		{"participant forbidden", "participant", http.StatusForbidden},
		{"legacy user alias forbidden", "user", http.StatusForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/camps", nil)
			ctx := ContextWithClaims(req.Context(), jwt.MapClaims{"role": tc.role})
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req.WithContext(ctx))
			if rec.Code != tc.want {
				t.Errorf("role %q: expected %d, got %d", tc.role, tc.want, rec.Code)
			}
		})
	}
}

func TestRequireRoleWithoutClaims(t *testing.T) {
	handler := RequireRole(models.RoleOrganizer)(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/camps", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without claims, got %d", rec.Code)
	}
}
