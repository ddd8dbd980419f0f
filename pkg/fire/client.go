package fire

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"
)

const (
	sandboxAPIBase = "https://api-preprod.fire.com"
	liveAPIBase    = "https://api.fire.com"
	sandboxPayBase = "https://payments-preprod.fire.com"
	livePayBase    = "https://payments.fire.com"
)

// Config carries the Fire Business API credentials. Sandbox selects the
// preprod endpoints. BaseURL overrides the API endpoint when set, which is
// how tests point the client at a local server.
type Config struct {
	ClientID     string
	ClientKey    string
	RefreshToken string
	Sandbox      bool
	BaseURL      string
}

// Client talks to the Fire Business API. Tokens are short-lived and fetched
// fresh per operation chain rather than cached.
type Client struct {
	apiBase      string
	payBase      string
	clientID     string
	clientKey    string
	refreshToken string
	client       *http.Client
}

func NewClient(cfg Config) *Client {
	apiBase, payBase := liveAPIBase, livePayBase
	if cfg.Sandbox {
		apiBase, payBase = sandboxAPIBase, sandboxPayBase
	}
	if cfg.BaseURL != "" {
		apiBase = cfg.BaseURL
	}
	return &Client{
		apiBase:      apiBase,
		payBase:      payBase,
		clientID:     cfg.ClientID,
		clientKey:    cfg.ClientKey,
		refreshToken: cfg.RefreshToken,
		client:       &http.Client{Timeout: 30 * time.Second},
	}
}

type tokenReq struct {
	ClientID     string `json:"clientId"`
	RefreshToken string `json:"refreshToken"`
	Nonce        int64  `json:"nonce"`
	GrantType    string `json:"grantType"`
	ClientSecret string `json:"clientSecret"`
}

type tokenResp struct {
	AccessToken string `json:"accessToken"`
}

// GetAccessToken requests a fresh access token. The client secret is the
// sha256 hex of the millisecond nonce concatenated with the client key;
// millisecond accuracy keeps the nonce strictly increasing across calls.
func (c *Client) GetAccessToken(ctx context.Context) (string, error) {
	nonce := time.Now().UnixMilli()
	sum := sha256.Sum256([]byte(strconv.FormatInt(nonce, 10) + c.clientKey))
	body, _ := json.Marshal(tokenReq{
		ClientID:     c.clientID,
		RefreshToken: c.refreshToken,
		Nonce:        nonce,
		GrantType:    "AccessToken",
		ClientSecret: hex.EncodeToString(sum[:]),
	})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiBase+"/business/v1/apps/accesstokens", bytes.NewReader(body))
	if err != nil {
		return "", &AuthError{Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.client.Do(req)
	if err != nil {
		return "", &AuthError{Err: err}
	}
	defer resp.Body.Close()
	respBody, _ := io.ReadAll(resp.Body)
	var out tokenResp
	if err := json.Unmarshal(respBody, &out); err != nil {
		return "", &AuthError{Err: err}
	}
	if out.AccessToken == "" {
		return "", &AuthError{Err: fmt.Errorf("no accessToken in response (status %d)", resp.StatusCode)}
	}
	return out.AccessToken, nil
}

// PaymentRequest is the outbound payment-request body. Amount is in integer
// minor currency units.
type PaymentRequest struct {
	IcanTo               string
	Currency             string
	Amount               int64
	MyRef                string
	Description          string
	ReturnURL            string
	OrderID              string
	CustomerNumber       string
	DeliveryAddressLine1 string
	DeliveryCity         string
	DeliveryCountry      string
}

type paymentRequestBody struct {
	Type              string       `json:"type"`
	IcanTo            string       `json:"icanTo"`
	Currency          string       `json:"currency"`
	Amount            int64        `json:"amount"`
	MyRef             string       `json:"myRef"`
	Description       string       `json:"description"`
	MaxNumberPayments int          `json:"maxNumberPayments"`
	ReturnURL         string       `json:"returnUrl"`
	OrderDetails      orderDetails `json:"orderDetails"`
}

type orderDetails struct {
	OrderID              string `json:"orderId"`
	CustomerNumber       string `json:"customerNumber"`
	VariableReference    string `json:"variableReference"`
	DeliveryAddressLine1 string `json:"deliveryAddressLine1"`
	DeliveryCity         string `json:"deliveryCity"`
	DeliveryCountry      string `json:"deliveryCountry"`
}

type paymentRequestResp struct {
	Code string `json:"code"`
}

// CreatePaymentRequest creates a single-payment request and returns the
// provider-assigned request code.
func (c *Client) CreatePaymentRequest(ctx context.Context, pr PaymentRequest, token string) (string, error) {
	body, _ := json.Marshal(paymentRequestBody{
		Type:              "OTHER",
		IcanTo:            pr.IcanTo,
		Currency:          pr.Currency,
		Amount:            pr.Amount,
		MyRef:             pr.MyRef,
		Description:       pr.Description,
		MaxNumberPayments: 1,
		ReturnURL:         pr.ReturnURL,
		OrderDetails: orderDetails{
			OrderID:              pr.OrderID,
			CustomerNumber:       pr.CustomerNumber,
			VariableReference:    "WooCommerce",
			DeliveryAddressLine1: pr.DeliveryAddressLine1,
			DeliveryCity:         pr.DeliveryCity,
			DeliveryCountry:      pr.DeliveryCountry,
		},
	})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiBase+"/business/v1/paymentrequests", bytes.NewReader(body))
	if err != nil {
		return "", &RequestError{Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := c.client.Do(req)
	if err != nil {
		return "", &RequestError{Err: err}
	}
	defer resp.Body.Close()
	respBody, _ := io.ReadAll(resp.Body)
	var out paymentRequestResp
	if err := json.Unmarshal(respBody, &out); err != nil {
		return "", &RequestError{Err: err}
	}
	if out.Code == "" {
		return "", &RequestError{Err: fmt.Errorf("no code in response (status %d)", resp.StatusCode)}
	}
	return out.Code, nil
}

type statusResp struct {
	Status string `json:"status"`
}

// GetPaymentStatus returns the payment-level status for one payment attempt
// (AUTHORISED, PAID, NOT_AUTHORISED, or other).
func (c *Client) GetPaymentStatus(ctx context.Context, paymentUUID, token string) (string, error) {
	return c.getStatus(ctx, c.apiBase+"/business/v1/payments/"+paymentUUID, token)
}

// GetRequestStatus returns the request-level status for a payment request
// (ACTIVE, EXPIRED, CLOSED, or other).
func (c *Client) GetRequestStatus(ctx context.Context, code, token string) (string, error) {
	return c.getStatus(ctx, c.apiBase+"/business/v1/paymentrequests/"+code, token)
}

func (c *Client) getStatus(ctx context.Context, url, token string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", &LookupError{Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := c.client.Do(req)
	if err != nil {
		return "", &LookupError{Err: err}
	}
	defer resp.Body.Close()
	respBody, _ := io.ReadAll(resp.Body)
	var out statusResp
	if err := json.Unmarshal(respBody, &out); err != nil {
		return "", &LookupError{Err: err}
	}
	if out.Status == "" {
		return "", &LookupError{Err: fmt.Errorf("no status in response (status %d)", resp.StatusCode)}
	}
	return out.Status, nil
}

type paymentListResp struct {
	PisPaymentRequestPayments []struct {
		PaymentUUID string `json:"paymentUuid"`
	} `json:"pisPaymentRequestPayments"`
}

// FirstPaymentUUID returns the first payment UUID associated with a request.
// The single-payment-per-request design means the list holds at most one
// relevant entry.
func (c *Client) FirstPaymentUUID(ctx context.Context, code, token string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiBase+"/business/v1/paymentrequests/"+code+"/payments", nil)
	if err != nil {
		return "", &LookupError{Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := c.client.Do(req)
	if err != nil {
		return "", &LookupError{Err: err}
	}
	defer resp.Body.Close()
	respBody, _ := io.ReadAll(resp.Body)
	var out paymentListResp
	if err := json.Unmarshal(respBody, &out); err != nil {
		return "", &LookupError{Err: err}
	}
	if len(out.PisPaymentRequestPayments) == 0 || out.PisPaymentRequestPayments[0].PaymentUUID == "" {
		return "", &LookupError{Err: fmt.Errorf("no payments for request %s (status %d)", code, resp.StatusCode)}
	}
	return out.PisPaymentRequestPayments[0].PaymentUUID, nil
}

// PaymentURL is the hosted payment page for a request code.
func (c *Client) PaymentURL(code string) string {
	return c.payBase + "/" + code
}
