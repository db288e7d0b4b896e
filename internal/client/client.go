package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/simonvc/minibooks/internal/ledger"
)

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (c *Client) CreateAccount(ctx context.Context, acct ledger.Account) (*ledger.Account, error) {
	body := map[string]any{
		"code":        acct.Code,
		"name":        acct.Name,
		"type":        acct.Type,
		"category":    acct.Category,
		"description": acct.Description,
	}
	var result ledger.Account
	if err := c.post(ctx, "/api/v1/accounts", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) ListAccounts(ctx context.Context, accountType string) ([]ledger.Account, error) {
	params := url.Values{}
	if accountType != "" {
		params.Set("type", accountType)
	}
	var result []ledger.Account
	if err := c.get(ctx, "/api/v1/accounts?"+params.Encode(), &result); err != nil {
		return nil, err
	}
	return result, nil
}

type AccountDetail struct {
	ledger.Account
	InUse bool `json:"in_use"`
}

func (c *Client) GetAccount(ctx context.Context, code string) (*AccountDetail, error) {
	var result AccountDetail
	if err := c.get(ctx, "/api/v1/accounts/"+url.PathEscape(code), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

type BalanceResponse struct {
	AccountCode string `json:"account_code"`
	Balance     int64  `json:"balance"`
	Natural     int64  `json:"natural"`
	Formatted   string `json:"formatted"`
}

// GetAccountBalance returns the balance as of a date; an empty asOf means
// all posted entries.
func (c *Client) GetAccountBalance(ctx context.Context, code, asOf string) (*BalanceResponse, error) {
	params := url.Values{}
	if asOf != "" {
		params.Set("as_of", asOf)
	}
	var result BalanceResponse
	if err := c.get(ctx, "/api/v1/accounts/"+url.PathEscape(code)+"/balance?"+params.Encode(), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) ListAccountEntries(ctx context.Context, code string) ([]ledger.JournalEntry, error) {
	var result []ledger.JournalEntry
	if err := c.get(ctx, "/api/v1/accounts/"+url.PathEscape(code)+"/entries", &result); err != nil {
		return nil, err
	}
	return result, nil
}

// AccountUpdate changes only the fields that are set.
type AccountUpdate struct {
	Name     *string          `json:"name,omitempty"`
	Type     *string          `json:"type,omitempty"`
	Category *ledger.Category `json:"category,omitempty"`
}

func (c *Client) UpdateAccount(ctx context.Context, code string, upd AccountUpdate) (*ledger.Account, error) {
	var result ledger.Account
	if err := c.patch(ctx, "/api/v1/accounts/"+url.PathEscape(code), upd, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) RenameAccount(ctx context.Context, code, newName string) (*ledger.Account, error) {
	return c.UpdateAccount(ctx, code, AccountUpdate{Name: &newName})
}

func (c *Client) DeleteAccount(ctx context.Context, code string) error {
	return c.del(ctx, "/api/v1/accounts/"+url.PathEscape(code))
}

// Line is one side of a new entry, amounts as pound strings ("10.50").
type Line struct {
	AccountCode string `json:"account_code"`
	Debit       string `json:"debit,omitempty"`
	Credit      string `json:"credit,omitempty"`
}

type NewEntry struct {
	Date        string `json:"date,omitempty"`
	Description string `json:"description"`
	VATRate     string `json:"vat_rate,omitempty"`
	Lines       []Line `json:"lines"`
}

func (c *Client) PostEntry(ctx context.Context, entry NewEntry) (*ledger.JournalEntry, error) {
	var result ledger.JournalEntry
	if err := c.post(ctx, "/api/v1/entries", entry, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) ReverseEntry(ctx context.Context, id int64, date, description string) (*ledger.JournalEntry, error) {
	body := map[string]any{"date": date, "description": description}
	var result ledger.JournalEntry
	if err := c.post(ctx, fmt.Sprintf("/api/v1/entries/%d/reverse", id), body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

type EntryQuery struct {
	Account string
	From    string
	To      string
	Newest  bool
	Limit   int
}

func (c *Client) ListEntries(ctx context.Context, q EntryQuery) ([]ledger.JournalEntry, error) {
	params := url.Values{}
	if q.Account != "" {
		params.Set("account", q.Account)
	}
	if q.From != "" {
		params.Set("from", q.From)
	}
	if q.To != "" {
		params.Set("to", q.To)
	}
	if q.Newest {
		params.Set("order", "desc")
	}
	if q.Limit > 0 {
		params.Set("limit", strconv.Itoa(q.Limit))
	}
	var result []ledger.JournalEntry
	if err := c.get(ctx, "/api/v1/entries?"+params.Encode(), &result); err != nil {
		return nil, err
	}
	return result, nil
}

func (c *Client) GetEntry(ctx context.Context, id int64) (*ledger.JournalEntry, error) {
	var result ledger.JournalEntry
	if err := c.get(ctx, fmt.Sprintf("/api/v1/entries/%d", id), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Period selects a report range: a preset name, or explicit from/to dates.
// The zero Period means the current month.
type Period struct {
	Preset string
	From   string
	To     string
}

func (p Period) query() string {
	params := url.Values{}
	if p.Preset != "" {
		params.Set("preset", p.Preset)
	}
	if p.From != "" {
		params.Set("from", p.From)
	}
	if p.To != "" {
		params.Set("to", p.To)
	}
	return params.Encode()
}

func (c *Client) TrialBalance(ctx context.Context, asOf string) (*ledger.TrialBalance, error) {
	var result ledger.TrialBalance
	if err := c.get(ctx, "/api/v1/reports/trial-balance?"+asOfQuery(asOf), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) ProfitAndLoss(ctx context.Context, p Period) (*ledger.ProfitAndLoss, error) {
	var result ledger.ProfitAndLoss
	if err := c.get(ctx, "/api/v1/reports/profit-and-loss?"+p.query(), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) VATSummary(ctx context.Context, p Period) (*ledger.VATSummary, error) {
	var result ledger.VATSummary
	if err := c.get(ctx, "/api/v1/reports/vat?"+p.query(), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) BalanceSheet(ctx context.Context, asOf string) (*ledger.BalanceSheet, error) {
	var result ledger.BalanceSheet
	if err := c.get(ctx, "/api/v1/reports/balance-sheet?"+asOfQuery(asOf), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) Summary(ctx context.Context, p Period) (*ledger.Summary, error) {
	var result ledger.Summary
	if err := c.get(ctx, "/api/v1/reports/summary?"+p.query(), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func asOfQuery(asOf string) string {
	if asOf == "" {
		return ""
	}
	return url.Values{"as_of": {asOf}}.Encode()
}

func (c *Client) GetChart(ctx context.Context) ([]ledger.ChartReference, error) {
	var result []ledger.ChartReference
	if err := c.get(ctx, "/api/v1/chart", &result); err != nil {
		return nil, err
	}
	return result, nil
}

type Health struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Entries int    `json:"entries"`
	Halted  string `json:"halted,omitempty"`
}

func (c *Client) Health(ctx context.Context) (*Health, error) {
	var result Health
	if err := c.get(ctx, "/api/v1/health", &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Resume re-enables posting after a report halted the ledger.
func (c *Client) Resume(ctx context.Context) error {
	return c.post(ctx, "/api/v1/resume", struct{}{}, nil)
}

// Ping checks if the server is reachable. Any HTTP response counts.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/v1/health", nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	return resp.Body.Close()
}

// APIError is a non-2xx response from the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server error (%d): %s", e.StatusCode, e.Message)
}

// StatusCode extracts the HTTP status from an error returned by the
// client, or 0 if the request never got a response.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

func (c *Client) get(ctx context.Context, path string, result any) error {
	return c.do(ctx, http.MethodGet, path, nil, result)
}

func (c *Client) post(ctx context.Context, path string, body, result any) error {
	return c.do(ctx, http.MethodPost, path, body, result)
}

func (c *Client) patch(ctx context.Context, path string, body, result any) error {
	return c.do(ctx, http.MethodPatch, path, body, result)
}

func (c *Client) del(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

// do sends a JSON request and decodes a JSON response into result, if
// result is non-nil.
func (c *Client) do(ctx context.Context, method, path string, body, result any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var apiErr struct {
			Error string `json:"error"`
		}
		msg := string(bytes.TrimSpace(data))
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error != "" {
			msg = apiErr.Error
		}
		return &APIError{StatusCode: resp.StatusCode, Message: msg}
	}

	if result == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, result); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
