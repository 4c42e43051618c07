package plaid

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
)

const (
	sandboxURL     = "https://sandbox.plaid.com"
	productionURL  = "https://production.plaid.com"
	defaultTimeout = 180 * time.Second // transaction pages can be large

	linkTokenPath        = "/link/token/create"
	exchangeTokenPath    = "/item/public_token/exchange"
	syncTransactionsPath = "/transactions/sync"
	getTransactionsPath  = "/transactions/get"
	removeItemPath       = "/item/remove"
)

// APIError is a non-success response from Plaid. The message comes
// straight from the error_message field and is surfaced as-is.
type APIError struct {
	StatusCode int
	ErrorType  string `json:"error_type"`
	ErrorCode  string `json:"error_code"`
	Message    string `json:"error_message"`
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("plaid: %s", e.Message)
	}
	return fmt.Sprintf("plaid: request failed with status %d", e.StatusCode)
}

// Client handles communication with the Plaid API
type Client struct {
	httpClient *http.Client
	baseURL    string
	clientID   string
	secret     string
	appName    string
}

// Ensure Client implements ClientInterface
var _ ClientInterface = (*Client)(nil)

// NewClient creates a new Plaid API client. environment is "sandbox" or
// "production"; anything else falls back to sandbox.
func NewClient(clientID, secret, environment, appName string) *Client {
	baseURL := sandboxURL
	if environment == "production" {
		baseURL = productionURL
	}
	return &Client{
		httpClient: &http.Client{Timeout: defaultTimeout},
		baseURL:    baseURL,
		clientID:   clientID,
		secret:     secret,
		appName:    appName,
	}
}

// PersonalFinanceCategory is Plaid's enriched category for a transaction
type PersonalFinanceCategory struct {
	Primary         string `json:"primary"`
	Detailed        string `json:"detailed"`
	ConfidenceLevel string `json:"confidence_level"`
}

// Transaction represents a transaction as delivered by the Plaid feed
type Transaction struct {
	TransactionID  string          `json:"transaction_id"`
	AccountID      string          `json:"account_id"`
	Amount         decimal.Decimal `json:"amount"` // signed, merchant-currency convention
	DateString     string          `json:"date"`   // YYYY-MM-DD
	Name           string          `json:"name"`
	MerchantName   string          `json:"merchant_name"`
	Category       []string        `json:"category"`
	Pending        bool            `json:"pending"`
	PaymentChannel string          `json:"payment_channel"`
	LogoURL        string          `json:"logo_url"`

	PersonalFinanceCategory        *PersonalFinanceCategory `json:"personal_finance_category,omitempty"`
	PersonalFinanceCategoryIconURL string                   `json:"personal_finance_category_icon_url"`
}

// GetDate parses and returns the transaction date
func (t *Transaction) GetDate() (time.Time, error) {
	parsed, err := time.Parse("2006-01-02", t.DateString)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse date '%s': %w", t.DateString, err)
	}
	return parsed, nil
}

// RemovedTransaction identifies a transaction Plaid reports as deleted
type RemovedTransaction struct {
	TransactionID string `json:"transaction_id"`
}

// SyncPage is one page of the /transactions/sync feed
type SyncPage struct {
	Added      []Transaction        `json:"added"`
	Modified   []Transaction        `json:"modified"`
	Removed    []RemovedTransaction `json:"removed"`
	NextCursor string               `json:"next_cursor"`
	HasMore    bool                 `json:"has_more"`
}

// ExchangeResult is the outcome of a public token exchange
type ExchangeResult struct {
	ItemID      string `json:"item_id"`
	AccessToken string `json:"access_token"`
}

type syncOptions struct {
	IncludePersonalFinanceCategory bool `json:"include_personal_finance_category"`
}

// CreateLinkToken starts a Plaid Link session for the given user.
func (c *Client) CreateLinkToken(ctx context.Context, clientUserID string) (string, error) {
	req := map[string]any{
		"client_id":     c.clientID,
		"secret":        c.secret,
		"user":          map[string]string{"client_user_id": clientUserID},
		"client_name":   c.appName,
		"products":      []string{"transactions"},
		"country_codes": []string{"US"},
		"language":      "en",
	}

	var resp struct {
		LinkToken string `json:"link_token"`
	}
	if err := c.post(ctx, linkTokenPath, req, &resp); err != nil {
		return "", err
	}
	return resp.LinkToken, nil
}

// ExchangePublicToken trades a Link public token for an access token.
func (c *Client) ExchangePublicToken(ctx context.Context, publicToken string) (*ExchangeResult, error) {
	req := map[string]any{
		"client_id":    c.clientID,
		"secret":       c.secret,
		"public_token": publicToken,
	}

	var resp ExchangeResult
	if err := c.post(ctx, exchangeTokenPath, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SyncTransactions fetches one page of the incremental transaction feed.
func (c *Client) SyncTransactions(ctx context.Context, accessToken, cursor string) (*SyncPage, error) {
	req := map[string]any{
		"client_id":    c.clientID,
		"secret":       c.secret,
		"access_token": accessToken,
		"options":      syncOptions{IncludePersonalFinanceCategory: true},
	}
	// First sync has no cursor; Plaid rejects an empty string
	if cursor != "" {
		req["cursor"] = cursor
	}

	var resp SyncPage
	if err := c.post(ctx, syncTransactionsPath, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetTransactions fetches the full history between startDate and endDate.
func (c *Client) GetTransactions(ctx context.Context, accessToken, startDate, endDate string) ([]Transaction, error) {
	req := map[string]any{
		"client_id":    c.clientID,
		"secret":       c.secret,
		"access_token": accessToken,
		"start_date":   startDate,
		"end_date":     endDate,
		"options":      syncOptions{IncludePersonalFinanceCategory: true},
	}

	var resp struct {
		Transactions []Transaction `json:"transactions"`
	}
	if err := c.post(ctx, getTransactionsPath, req, &resp); err != nil {
		return nil, err
	}
	return resp.Transactions, nil
}

// RemoveItem invalidates the access token at Plaid.
func (c *Client) RemoveItem(ctx context.Context, accessToken string) error {
	req := map[string]any{
		"client_id":    c.clientID,
		"secret":       c.secret,
		"access_token": accessToken,
	}
	return c.post(ctx, removeItemPath, req, &struct{}{})
}

func (c *Client) post(ctx context.Context, path string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request to %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		// Decode failure leaves just the status code in the error
		_ = json.NewDecoder(resp.Body).Decode(apiErr)
		return apiErr
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", path, err)
	}
	return nil
}
