package momo

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
)

// TokenStore caches the gateway bearer token between requests so each
// request-to-pay does not re-authenticate.
type TokenStore interface {
	SetGatewayToken(token string, ttl time.Duration) error
	GetGatewayToken() (string, error)
}

type Client struct {
	BaseURL    string
	APIKey     string
	TargetEnv  string
	Tokens     TokenStore
	HTTPClient *http.Client
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

type requestToPayRequest struct {
	Amount       string `json:"amount"`
	Currency     string `json:"currency"`
	ExternalID   string `json:"externalId"`
	Payer        payer  `json:"payer"`
	PayerMessage string `json:"payerMessage"`
	PayeeNote    string `json:"payeeNote"`
}

type payer struct {
	PartyIDType string `json:"partyIdType"`
	PartyID     string `json:"partyId"`
}

func NewClient(baseURL, apiKey, targetEnv string, tokens TokenStore) *Client {
	return &Client{
		BaseURL:   baseURL,
		APIKey:    apiKey,
		TargetEnv: targetEnv,
		Tokens:    tokens,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Get a bearer token, from the cache when possible
func (c *Client) accessToken() (string, error) {
	if cached, err := c.Tokens.GetGatewayToken(); err == nil && cached != "" {
		return cached, nil
	}

	url := fmt.Sprintf("%s/collection/token/", c.BaseURL)
	req, err := http.NewRequest("POST", url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create token request: %w", err)
	}
	req.Header.Set("Ocp-Apim-Subscription-Key", c.APIKey)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to request token: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("token request returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read token response: %w", err)
	}

	var token tokenResponse
	if err := json.Unmarshal(body, &token); err != nil {
		return "", fmt.Errorf("failed to parse token response: %w", err)
	}

	// Cache for slightly less than the advertised lifetime
	ttl := time.Duration(token.ExpiresIn) * time.Second
	if ttl > time.Minute {
		ttl -= time.Minute
	}
	// Caching is best effort; the token still works for this request
	_ = c.Tokens.SetGatewayToken(token.AccessToken, ttl)
	return token.AccessToken, nil
}

// RequestToPay asks the gateway to charge the subscriber's wallet. The
// externalRef doubles as the gateway-side reference; the settlement
// webhook echoes it back.
func (c *Client) RequestToPay(amount decimal.Decimal, phoneNumber, externalRef, message string) (string, error) {
	token, err := c.accessToken()
	if err != nil {
		return "", err
	}

	requestData := requestToPayRequest{
		Amount:     amount.StringFixed(2),
		Currency:   "XAF",
		ExternalID: externalRef,
		Payer: payer{
			PartyIDType: "MSISDN",
			PartyID:     phoneNumber,
		},
		PayerMessage: message,
		PayeeNote:    message,
	}

	jsonData, err := json.Marshal(requestData)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request data: %w", err)
	}

	url := fmt.Sprintf("%s/collection/v1_0/requesttopay", c.BaseURL)
	req, err := http.NewRequest("POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("X-Reference-Id", externalRef)
	req.Header.Set("X-Target-Environment", c.TargetEnv)
	req.Header.Set("Ocp-Apim-Subscription-Key", c.APIKey)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("request to pay returned status %d: %s", resp.StatusCode, string(body))
	}

	return externalRef, nil
}
