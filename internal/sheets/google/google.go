package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2"
	goauth "golang.org/x/oauth2/google"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"hamanets/internal/config"
	ports "hamanets/internal/sheets"
)

// Options selects the spreadsheet and the credentials used to reach it.
// A service account wins over an OAuth token when both are set.
type Options struct {
	SpreadsheetID     string
	TransactionsSheet string
	SummarySheet      string

	ServiceAccountJSON string
	ServiceAccountFile string
	OAuthClientFile    string
	OAuthTokenFile     string
}

type Client struct {
	svc               *gsheet.Service
	spreadsheetID     string
	transactionsSheet string
	summarySheet      string
}

var _ ports.Mirror = (*Client)(nil)

// OptionsFromConfig maps application settings to client options. Sheet
// names get the current year as a prefix unless they already carry one.
func OptionsFromConfig(cfg *config.Config) Options {
	year := time.Now().Year()
	return Options{
		SpreadsheetID:      cfg.GoogleSpreadsheetID,
		TransactionsSheet:  yearPrefixedName(cfg.GoogleTransactionsSheet, year),
		SummarySheet:       yearPrefixedName(cfg.GoogleSummarySheet, year),
		ServiceAccountJSON: cfg.GoogleServiceAccountJSON,
		ServiceAccountFile: cfg.GoogleServiceAccountFile,
		OAuthClientFile:    cfg.GoogleOAuthClientFile,
		OAuthTokenFile:     cfg.GoogleOAuthTokenFile,
	}
}

// New creates a Sheets client.
func New(ctx context.Context, o Options) (*Client, error) {
	if strings.TrimSpace(o.SpreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	if o.TransactionsSheet == "" {
		return nil, errors.New("missing transactions sheet name")
	}

	opts, err := clientOptions(ctx, o)
	if err != nil {
		return nil, fmt.Errorf("sheets credentials: %w", err)
	}
	svc, err := gsheet.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	slog.InfoContext(ctx, "Google Sheets service created",
		"spreadsheet_id", o.SpreadsheetID,
		"transactions_sheet", o.TransactionsSheet,
		"summary_sheet", o.SummarySheet)

	return &Client{
		svc:               svc,
		spreadsheetID:     o.SpreadsheetID,
		transactionsSheet: o.TransactionsSheet,
		summarySheet:      o.SummarySheet,
	}, nil
}

func clientOptions(ctx context.Context, o Options) ([]goption.ClientOption, error) {
	saJSON := strings.TrimSpace(o.ServiceAccountJSON)
	saFile := strings.TrimSpace(o.ServiceAccountFile)

	switch {
	case saJSON != "":
		slog.DebugContext(ctx, "Using inline service account credentials")
		return serviceAccount([]byte(saJSON)), nil
	case saFile != "":
		b, err := os.ReadFile(saFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		slog.DebugContext(ctx, "Using service account file", "path", saFile, "size", len(b))
		return serviceAccount(b), nil
	case o.OAuthTokenFile != "":
		return oauthClient(ctx, o.OAuthClientFile, o.OAuthTokenFile)
	default:
		return nil, errors.New("missing credentials (set a service account or an OAuth token file)")
	}
}

func serviceAccount(credentialsJSON []byte) []goption.ClientOption {
	return []goption.ClientOption{
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope),
	}
}

func oauthClient(ctx context.Context, clientFile, tokenFile string) ([]goption.ClientOption, error) {
	if clientFile == "" {
		return nil, errors.New("missing oauth client file")
	}
	b, err := os.ReadFile(clientFile)
	if err != nil {
		return nil, fmt.Errorf("read oauth client file: %w", err)
	}
	cfg, err := goauth.ConfigFromJSON(b, gsheet.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("oauth config: %w", err)
	}
	tok, err := ReadToken(tokenFile)
	if err != nil {
		return nil, err
	}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, newHTTPClientWithPooling())
	return []goption.ClientOption{goption.WithHTTPClient(cfg.Client(ctx, tok))}, nil
}

// ReadToken loads an OAuth token saved by WriteToken.
func ReadToken(path string) (*oauth2.Token, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read oauth token file: %w", err)
	}
	var tok oauth2.Token
	if err := json.Unmarshal(b, &tok); err != nil {
		return nil, fmt.Errorf("decode oauth token: %w", err)
	}
	if tok.AccessToken == "" && tok.RefreshToken == "" {
		return nil, errors.New("oauth token file holds no token")
	}
	return &tok, nil
}

// WriteToken stores tok at path readable by the owner only.
func WriteToken(path string, tok *oauth2.Token) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("open token file: %w", err)
	}
	defer f.Close()
	if err := json.NewEncoder(f).Encode(tok); err != nil {
		return fmt.Errorf("write token: %w", err)
	}
	return nil
}

// newHTTPClientWithPooling creates an HTTP client for the Sheets API with
// connection pooling and bounded timeouts.
func newHTTPClientWithPooling() *http.Client {
	dialer := &net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}

	transport := &http.Transport{
		DialContext:           dialer.DialContext,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		MaxConnsPerHost:       50,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 30 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		ForceAttemptHTTP2:     true,
	}

	return &http.Client{
		Transport: transport,
		Timeout:   60 * time.Second,
	}
}

// WriteTransactions implements ports.TransactionWriter
func (c *Client) WriteTransactions(ctx context.Context, rows [][]string) error {
	return c.replace(ctx, c.transactionsSheet, rows)
}

// WriteSummary implements ports.SummaryWriter. It is a no-op without a
// summary sheet.
func (c *Client) WriteSummary(ctx context.Context, rows [][]string) error {
	if c.summarySheet == "" {
		return nil
	}
	return c.replace(ctx, c.summarySheet, rows)
}

// replace clears the sheet and writes rows from A1.
func (c *Client) replace(ctx context.Context, sheet string, rows [][]string) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}

	_, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, clearRange(sheet), &gsheet.ClearValuesRequest{}).
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("clear sheet %s: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil
	}

	vr := &gsheet.ValueRange{Values: toValues(rows)}
	_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, sheet+"!A1", vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("update sheet %s: %w", sheet, err)
	}

	slog.DebugContext(ctx, "Replaced sheet contents", "sheet", sheet, "rows", len(rows))
	return nil
}

func clearRange(sheet string) string {
	return sheet + "!A:Z"
}

func toValues(rows [][]string) [][]any {
	out := make([][]any, len(rows))
	for i, row := range rows {
		cells := make([]any, len(row))
		for j, v := range row {
			cells[j] = v
		}
		out[i] = cells
	}
	return out
}

// yearPrefixedName returns "<year> <base>" unless base already starts with a 4-digit year.
func yearPrefixedName(base string, year int) string {
	base = strings.TrimSpace(base)
	if base == "" {
		return base
	}
	if len(base) >= 5 {
		if y, err := strconv.Atoi(base[0:4]); err == nil && base[4] == ' ' && y > 1900 && y < 3000 {
			return base
		}
	}
	return fmt.Sprintf("%d %s", year, base)
}
