package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/golang-jwt/jwt/v4"
	"github.com/medcamp/camp-system/models"
	"github.com/medcamp/camp-system/services"
)

// fakeAuthService возвращает подготовленные ответы EnsureUser.
type fakeAuthService struct {
	ensureUser    *models.User
	ensureCreated bool
	ensureErr     error
}

func (f *fakeAuthService) Register(ctx context.Context, input services.RegisterInput) (*models.User, error) {
	return nil, nil
}

func (f *fakeAuthService) Login(ctx context.Context, input services.LoginInput) (*models.User, error) {
	return nil, nil
}

func (f *fakeAuthService) EnsureUser(ctx context.Context, input services.EnsureUserInput) (*models.User, bool, error) {
	return f.ensureUser, f.ensureCreated, f.ensureErr
}

func (f *fakeAuthService) ResolveRole(ctx context.Context, email string) (models.UserRole, error) {
	return models.RoleParticipant, nil
}

func TestEnsureUserExistingAccountGetsNoToken(t *testing.T) {
	// Открытый апсерт не должен выдавать токен на чужой email: иначе
	// один POST /users с email организатора равен входу в его учётку.
	svc := &fakeAuthService{
		ensureUser:    &models.User{ID: 1, Email: "boss@camp.org", Role: models.RoleOrganizer},
		ensureCreated: false,
	}
	h := NewAuthHandler(svc, nil, "secret", nil)

	req := httptest.NewRequest(http.MethodPost, "/users", strings.NewReader(`{"email": "boss@camp.org", "name": "Boss"}`))
	rec := httptest.NewRecorder()
	h.EnsureUser(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp map[string]json.RawMessage
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if _, ok := resp["token"]; ok {
		t.Fatal("existing account must not receive a token")
	}
	if _, ok := resp["user"]; !ok {
		t.Error("response must still carry the user")
	}
}

func TestEnsureUserCreatedAccountGetsToken(t *testing.T) {
	svc := &fakeAuthService{
		ensureUser:    &models.User{ID: 2, Email: "new@x.com", Role: models.RoleParticipant},
		ensureCreated: true,
	}
	h := NewAuthHandler(svc, nil, "secret", nil)

	req := httptest.NewRequest(http.MethodPost, "/users", strings.NewReader(`{"email": "new@x.com", "name": "New"}`))
	rec := httptest.NewRecorder()
	h.EnsureUser(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Token    string `json:"token"`
		Inserted bool   `json:"inserted"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if !resp.Inserted {
		t.Error("inserted flag must be true")
	}
	if resp.Token == "" {
		t.Fatal("created account must receive a token")
	}

	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(resp.Token, claims, func(*jwt.Token) (interface{}, error) {
		return []byte("secret"), nil
	})
	if err != nil {
		t.Fatalf("token does not verify: %v", err)
	}
	if claims["email"] != "new@x.com" || claims["role"] != "participant" {
		t.Errorf("unexpected claims: %+v", claims)
	}
}
