package sheets

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/mamadbah2/agribalance/internal/config"
)

// Publisher replaces the content of a spreadsheet range with a table.
type Publisher interface {
	ReplaceRange(ctx context.Context, sheetRange string, rows [][]string) error
}

// GoogleSheetPublisher implements Publisher using the official Google Sheets API.
type GoogleSheetPublisher struct {
	service       *sheetsapi.Service
	spreadsheetID string
	logger        *zap.Logger
}

// NewGoogleSheetPublisher builds a Google Sheets backed publisher.
func NewGoogleSheetPublisher(ctx context.Context, cfg config.SheetsConfig, logger *zap.Logger, opts ...option.ClientOption) (*GoogleSheetPublisher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	if len(opts) == 0 {
		opts = []option.ClientOption{
			option.WithCredentialsFile(cfg.CredentialsPath),
			option.WithScopes(sheetsapi.SpreadsheetsScope),
		}
	}

	service, err := sheetsapi.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize sheets client: %w", err)
	}

	return &GoogleSheetPublisher{
		service:       service,
		spreadsheetID: cfg.SpreadsheetID,
		logger:        logger,
	}, nil
}

// ReplaceRange clears sheetRange and writes rows starting at its top-left cell.
func (p *GoogleSheetPublisher) ReplaceRange(ctx context.Context, sheetRange string, rows [][]string) error {
	if sheetRange == "" {
		return fmt.Errorf("sheetRange must not be empty")
	}

	clearCall := p.service.Spreadsheets.Values.Clear(p.spreadsheetID, sheetRange, &sheetsapi.ClearValuesRequest{}).
		Context(ctx)
	if _, err := clearCall.Do(); err != nil {
		return fmt.Errorf("clear range %s: %w", sheetRange, err)
	}

	if len(rows) == 0 {
		p.logger.Debug("sheet range cleared", zap.String("range", sheetRange))
		return nil
	}

	payload := &sheetsapi.ValueRange{Values: toValues(rows)}
	call := p.service.Spreadsheets.Values.Update(p.spreadsheetID, sheetRange, payload).
		ValueInputOption("RAW").
		Context(ctx)

	if _, err := call.Do(); err != nil {
		return fmt.Errorf("write range %s: %w", sheetRange, err)
	}

	p.logger.Debug("sheet range replaced", zap.String("range", sheetRange), zap.Int("rows", len(rows)))
	return nil
}

func toValues(rows [][]string) [][]interface{} {
	values := make([][]interface{}, len(rows))
	for i, row := range rows {
		values[i] = make([]interface{}, len(row))
		for j, cell := range row {
			values[i][j] = cell
		}
	}
	return values
}
