package store

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// SheetsStore reads and appends through the Google Sheets API with a service account.
type SheetsStore struct {
	svc           *sheets.Service
	spreadsheetID string
	logger        *zap.Logger
}

// ServiceAccount returns the client options for a service-account key file.
func ServiceAccount(credentialsFile string) []option.ClientOption {
	return []option.ClientOption{
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(sheets.SpreadsheetsScope),
	}
}

// NewSheetsStore connects to the spreadsheet with the given client options,
// usually ServiceAccount(path).
func NewSheetsStore(ctx context.Context, spreadsheetID string, logger *zap.Logger, opts ...option.ClientOption) (*SheetsStore, error) {
	svc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets client: %w", err)
	}
	return &SheetsStore{svc: svc, spreadsheetID: spreadsheetID, logger: logger}, nil
}

// ReadTable fetches every row of the worksheet named after table.
func (s *SheetsStore) ReadTable(ctx context.Context, table Table) (Sheet, error) {
	if _, err := Columns(table); err != nil {
		return Sheet{}, err
	}
	resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, string(table)).Context(ctx).Do()
	if err != nil {
		return Sheet{}, fmt.Errorf("failed to read worksheet %s: %w", table, err)
	}
	raw := make([][]string, len(resp.Values))
	for i, row := range resp.Values {
		cells := make([]string, len(row))
		for j, v := range row {
			cells[j] = fmt.Sprint(v)
		}
		raw[i] = cells
	}
	s.logger.Debug("Read worksheet",
		zap.String("table", string(table)),
		zap.Int("rows", len(raw)),
	)
	return padRows(splitRows(raw)), nil
}

// AppendRow appends row below the last row of the worksheet. Values are
// written RAW so zero-padded HNs stay text.
func (s *SheetsStore) AppendRow(ctx context.Context, table Table, row []string) error {
	if _, err := Columns(table); err != nil {
		return err
	}
	cells := make([]interface{}, len(row))
	for i, v := range row {
		cells[i] = v
	}
	vr := &sheets.ValueRange{Values: [][]interface{}{cells}}
	_, err := s.svc.Spreadsheets.Values.Append(s.spreadsheetID, string(table), vr).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("failed to append to worksheet %s: %w", table, err)
	}
	return nil
}
