package payment

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newTestGateway(t *testing.T, handler http.HandlerFunc) Gateway {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	gateway, err := NewStripeGateway(StripeGatewayConfig{
		SecretKey:  "sk_test_123",
		BaseURL:    server.URL,
		HTTPClient: server.Client(),
	})
	if err != nil {
		t.Fatalf("failed to build gateway: %v", err)
	}
	return gateway
}

func TestCreateIntentSendsFormEncodedRequest(t *testing.T) {
	gateway := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/payment_intents" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer sk_test_123" {
			t.Errorf("unexpected auth header: %q", got)
		}
		if got := r.Header.Get("Content-Type"); got != "application/x-www-form-urlencoded" {
			t.Errorf("unexpected content type: %q", got)
		}
		if err := r.ParseForm(); err != nil {
			t.Fatalf("failed to parse form: %v", err)
		}
		if r.PostForm.Get("amount") != "50000" {
			t.Errorf("amount: got %q", r.PostForm.Get("amount"))
		}
		if r.PostForm.Get("currency") != "usd" {
			t.Errorf("currency: got %q", r.PostForm.Get("currency"))
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"pi_123","client_secret":"pi_123_secret_abc"}`))
	})

	intent, err := gateway.CreateIntent(context.Background(), 50000, "usd")
	if err != nil {
		t.Fatalf("CreateIntent failed: %v", err)
	}
	if intent.ID != "pi_123" {
		t.Errorf("intent id: got %q", intent.ID)
	}
	if intent.ClientSecret != "pi_123_secret_abc" {
		t.Errorf("client secret: got %q", intent.ClientSecret)
	}
}

func TestCreateIntentSurfacesStripeError(t *testing.T) {
	gateway := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
		_, _ = w.Write([]byte(`{"error":{"message":"Your card was declined.","type":"card_error"}}`))
	})

	_, err := gateway.CreateIntent(context.Background(), 50000, "usd")
	if err == nil {
		t.Fatal("expected error for declined card")
	}
	if !strings.Contains(err.Error(), "Your card was declined.") {
		t.Errorf("stripe message not surfaced: %v", err)
	}
}

func TestCreateIntentRejectsNonPositiveAmount(t *testing.T) {
	gateway := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no HTTP request expected for invalid amount")
	})

	if _, err := gateway.CreateIntent(context.Background(), 0, "usd"); err == nil {
		t.Fatal("expected error for zero amount")
	}
}

func TestCreateIntentEmptyClientSecret(t *testing.T) {
	gateway := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":"pi_123"}`))
	})

	if _, err := gateway.CreateIntent(context.Background(), 100, "usd"); err == nil {
		t.Fatal("expected error for missing client secret")
	}
}

func TestNewStripeGatewayRequiresSecretKey(t *testing.T) {
	if _, err := NewStripeGateway(StripeGatewayConfig{}); err == nil {
		t.Fatal("expected error for empty secret key")
	}
}
