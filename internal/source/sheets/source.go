package sheets

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"regexp"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"billfeed/internal"
	"billfeed/internal/config"
)

var spreadsheetURLPattern = regexp.MustCompile(`/spreadsheets/d/([a-zA-Z0-9-_]+)`)

// Source reads a shared Google spreadsheet opened by URL.
type Source struct {
	cfg           config.Config
	service       *sheets.Service
	spreadsheetID string
}

func New(ctx context.Context, cfg config.Config) (*Source, error) {
	if err := cfg.Require("SPREADSHEET_URL", cfg.SpreadsheetURL); err != nil {
		return nil, err
	}
	spreadsheetID, err := SpreadsheetIDFromURL(cfg.SpreadsheetURL)
	if err != nil {
		return nil, err
	}

	var opts []option.ClientOption
	if strings.TrimSpace(cfg.GoogleAPIKey) != "" {
		opts = append(opts, option.WithAPIKey(cfg.GoogleAPIKey))
	} else {
		if err := cfg.Require("GOOGLE_CLIENT_ID", cfg.GoogleClientID); err != nil {
			return nil, err
		}
		if err := cfg.Require("GOOGLE_CLIENT_SECRET", cfg.GoogleClientSecret); err != nil {
			return nil, err
		}
		if err := cfg.Require("GOOGLE_REFRESH_TOKEN", cfg.GoogleRefreshToken); err != nil {
			return nil, err
		}
		oauthCfg := &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			Endpoint:     google.Endpoint,
			Scopes:       []string{sheets.SpreadsheetsReadonlyScope},
		}
		tokenSource := oauthCfg.TokenSource(ctx, &oauth2.Token{RefreshToken: cfg.GoogleRefreshToken})
		opts = append(opts, option.WithTokenSource(tokenSource))
	}

	service, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, err
	}

	return &Source{cfg: cfg, service: service, spreadsheetID: spreadsheetID}, nil
}

// SpreadsheetIDFromURL extracts the document ID from a sharing URL. A value
// without the /spreadsheets/d/ path is taken to be a bare ID.
func SpreadsheetIDFromURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if m := spreadsheetURLPattern.FindStringSubmatch(raw); len(m) == 2 {
		return m[1], nil
	}
	if strings.Contains(raw, "/") {
		return "", fmt.Errorf("cannot extract spreadsheet id from %q", raw)
	}
	if raw == "" {
		return "", errors.New("empty spreadsheet url")
	}
	return raw, nil
}

// Fetch returns all rows of the worksheet as formatted text, exactly as the
// sheet displays them (comma decimals stay comma decimals).
func (s *Source) Fetch(ctx context.Context, worksheet string) (internal.Grid, error) {
	meta, err := s.withRetry(ctx, "sheets.get", func(callCtx context.Context) (any, error) {
		return s.service.Spreadsheets.Get(s.spreadsheetID).
			Fields("sheets.properties.title").Context(callCtx).Do()
	})
	if err != nil {
		return nil, err
	}

	found := false
	for _, sh := range meta.(*sheets.Spreadsheet).Sheets {
		if sh.Properties != nil && sh.Properties.Title == worksheet {
			found = true
			break
		}
	}
	if !found {
		return nil, &internal.NotFoundError{Resource: fmt.Sprintf("worksheet %q", worksheet)}
	}

	values, err := s.withRetry(ctx, "sheets.values.get", func(callCtx context.Context) (any, error) {
		return s.service.Spreadsheets.Values.Get(s.spreadsheetID, quoteRange(worksheet)).
			ValueRenderOption("FORMATTED_VALUE").Context(callCtx).Do()
	})
	if err != nil {
		return nil, err
	}

	resp := values.(*sheets.ValueRange)
	grid := make(internal.Grid, 0, len(resp.Values))
	for _, row := range resp.Values {
		cells := make([]string, 0, len(row))
		for _, v := range row {
			cells = append(cells, fmt.Sprint(v))
		}
		grid = append(grid, cells)
	}
	return grid, nil
}

func (s *Source) withRetry(ctx context.Context, op string, call func(context.Context) (any, error)) (any, error) {
	attempts := s.cfg.RetryAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		callCtx, cancel := context.WithTimeout(ctx, time.Duration(s.cfg.SheetsTimeoutMs)*time.Millisecond)
		result, err := call(callCtx)
		cancel()
		if err == nil {
			return result, nil
		}

		var gerr *googleapi.Error
		if errors.As(err, &gerr) {
			if gerr.Code == 404 {
				return nil, &internal.NotFoundError{Resource: fmt.Sprintf("spreadsheet %s", s.spreadsheetID)}
			}
			if !isRetryableStatus(gerr.Code) {
				return nil, &internal.TransientAPIError{Op: op, Err: err}
			}
		}

		lastErr = err
		if attempt < attempts {
			backoff := time.Duration(250*(1<<(attempt-1))+rand.Intn(100)) * time.Millisecond
			time.Sleep(backoff)
		}
	}
	return nil, &internal.TransientAPIError{Op: op, Err: lastErr}
}

func isRetryableStatus(status int) bool {
	switch status {
	case 429, 500, 502, 503, 504:
		return true
	default:
		return false
	}
}

func quoteRange(worksheet string) string {
	return "'" + strings.ReplaceAll(worksheet, "'", "''") + "'"
}
