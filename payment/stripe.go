package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const stripeAPIBase = "https://api.stripe.com/v1"

type StripeGatewayConfig struct {
	SecretKey string
	// BaseURL переопределяется в тестах; пустое значение означает боевой API.
	BaseURL string
	// HTTPClient переопределяется в тестах; при nil берётся клиент с таймаутом 15s.
	HTTPClient *http.Client
}

type stripeGateway struct {
	secretKey  string
	baseURL    string
	httpClient *http.Client
}

func NewStripeGateway(cfg StripeGatewayConfig) (Gateway, error) {
	if cfg.SecretKey == "" {
		return nil, errors.New("invalid Stripe configuration: secret key is required")
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = stripeAPIBase
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &stripeGateway{
		secretKey:  cfg.SecretKey,
		baseURL:    baseURL,
		httpClient: httpClient,
	}, nil
}

type stripeErrorBody struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

func (g *stripeGateway) CreateIntent(ctx context.Context, amountSubunits int64, currency string) (*Intent, error) {
	if amountSubunits < 1 {
		return nil, errors.New("amount must be at least one currency subunit")
	}
	if currency == "" {
		currency = "usd"
	}

	form := url.Values{}
	form.Set("amount", strconv.FormatInt(amountSubunits, 10))
	form.Set("currency", currency)
	form.Set("payment_method_types[]", "card")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/payment_intents", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to build payment intent request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+g.secretKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("payment intent request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read payment intent response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var stripeErr stripeErrorBody
		if json.Unmarshal(body, &stripeErr) == nil && stripeErr.Error.Message != "" {
			return nil, fmt.Errorf("payment gateway rejected intent (%d): %s", resp.StatusCode, stripeErr.Error.Message)
		}
		return nil, fmt.Errorf("payment gateway rejected intent: status %d", resp.StatusCode)
	}

	var intentBody struct {
		ID           string `json:"id"`
		ClientSecret string `json:"client_secret"`
	}
	if err := json.Unmarshal(body, &intentBody); err != nil {
		return nil, fmt.Errorf("failed to decode payment intent response: %w", err)
	}
	if intentBody.ClientSecret == "" {
		return nil, errors.New("payment gateway returned empty client secret")
	}

	return &Intent{
		ID:           intentBody.ID,
		ClientSecret: intentBody.ClientSecret,
	}, nil
}
