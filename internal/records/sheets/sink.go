// Package sheets appends records to a Google spreadsheet.
package sheets

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"unicode/utf8"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"resume-critic/internal/records"
)

// CellLimit is the maximum number of characters Google Sheets stores in one cell.
const CellLimit = 50000

// ErrSpreadsheetNotFound is returned when no spreadsheet has the configured title.
var ErrSpreadsheetNotFound = errors.New("spreadsheet not found")

// Config selects the target spreadsheet. SpreadsheetID wins over Title.
type Config struct {
	CredentialsJSON []byte
	Title           string
	SpreadsheetID   string
}

// Sink appends one row per record to the first sheet of a spreadsheet.
// The spreadsheet ID and sheet title are resolved on first use and cached.
type Sink struct {
	sheets *sheets.Service
	drive  *drive.Service
	title  string

	mu            sync.Mutex
	spreadsheetID string
	sheetTitle    string
}

// New builds a sink authenticated with a service-account key. Extra client
// options are appended after the credentials; when any are given the
// credentials are skipped.
func New(ctx context.Context, cfg Config, extra ...option.ClientOption) (*Sink, error) {
	if strings.TrimSpace(cfg.Title) == "" && strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, errors.New("sheets: title or spreadsheet id is required")
	}
	opts := extra
	if len(opts) == 0 {
		if len(cfg.CredentialsJSON) == 0 {
			return nil, errors.New("sheets: service account credentials are required")
		}
		creds, err := google.CredentialsFromJSON(ctx, cfg.CredentialsJSON,
			sheets.SpreadsheetsScope,
			drive.DriveMetadataReadonlyScope,
		)
		if err != nil {
			return nil, fmt.Errorf("sheets: parse credentials: %w", err)
		}
		opts = []option.ClientOption{option.WithCredentials(creds)}
	}

	sheetsSvc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("sheets: new sheets service: %w", err)
	}
	driveSvc, err := drive.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("sheets: new drive service: %w", err)
	}
	return &Sink{
		sheets:        sheetsSvc,
		drive:         driveSvc,
		title:         strings.TrimSpace(cfg.Title),
		spreadsheetID: strings.TrimSpace(cfg.SpreadsheetID),
	}, nil
}

// Append writes rec as a new row below the existing data.
func (s *Sink) Append(ctx context.Context, rec records.Record) error {
	id, sheetTitle, err := s.target(ctx)
	if err != nil {
		return err
	}

	cells := rec.Row()
	row := make([]interface{}, len(cells))
	for i, c := range cells {
		row[i] = truncate(c, CellLimit)
	}
	if rec.Score.Found {
		row[2] = rec.Score.Value
	}

	_, err = s.sheets.Spreadsheets.Values.
		Append(id, quoteSheet(sheetTitle)+"!A1", &sheets.ValueRange{Values: [][]interface{}{row}}).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("sheets: append row: %w", err)
	}
	return nil
}

func (s *Sink) target(ctx context.Context) (string, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.spreadsheetID != "" && s.sheetTitle != "" {
		return s.spreadsheetID, s.sheetTitle, nil
	}

	if s.spreadsheetID == "" {
		id, err := s.findByTitle(ctx)
		if err != nil {
			return "", "", err
		}
		s.spreadsheetID = id
	}

	ss, err := s.sheets.Spreadsheets.Get(s.spreadsheetID).
		Fields("sheets.properties.title").
		Context(ctx).
		Do()
	if err != nil {
		return "", "", fmt.Errorf("sheets: get spreadsheet %s: %w", s.spreadsheetID, err)
	}
	if len(ss.Sheets) == 0 || ss.Sheets[0].Properties == nil {
		return "", "", fmt.Errorf("sheets: spreadsheet %s has no sheets", s.spreadsheetID)
	}
	s.sheetTitle = ss.Sheets[0].Properties.Title
	return s.spreadsheetID, s.sheetTitle, nil
}

// escapeQueryValue escapes a Drive query string literal. Backslashes go
// first so the quote escapes are not doubled.
func escapeQueryValue(v string) string {
	v = strings.ReplaceAll(v, `\`, `\\`)
	return strings.ReplaceAll(v, "'", `\'`)
}

func (s *Sink) findByTitle(ctx context.Context) (string, error) {
	q := fmt.Sprintf("name = '%s' and mimeType = 'application/vnd.google-apps.spreadsheet' and trashed = false",
		escapeQueryValue(s.title))
	list, err := s.drive.Files.List().
		Q(q).
		Fields("files(id, name)").
		PageSize(1).
		SupportsAllDrives(true).
		IncludeItemsFromAllDrives(true).
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("sheets: find spreadsheet %q: %w", s.title, err)
	}
	if len(list.Files) == 0 {
		return "", fmt.Errorf("%w: %q", ErrSpreadsheetNotFound, s.title)
	}
	return list.Files[0].Id, nil
}

func quoteSheet(title string) string {
	return "'" + strings.ReplaceAll(title, "'", "''") + "'"
}

func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit])
}

var _ records.Sink = (*Sink)(nil)
