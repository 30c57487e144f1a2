package publishing

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/mamadbah2/agribalance/internal/notify"
	"github.com/mamadbah2/agribalance/internal/repository/sheets"
)

// ErrNotConfigured is returned when no spreadsheet is configured.
var ErrNotConfigured = errors.New("google sheets publishing is not configured")

// RowSource provides the table to publish.
type RowSource interface {
	ExportRows(ctx context.Context) ([][]string, error)
}

// Service publishes the formulation library to a spreadsheet range.
type Service struct {
	source     RowSource
	publisher  sheets.Publisher
	sheetRange string
	notifier   notify.Publisher
	logger     *zap.Logger
}

// NewService creates a publishing service. publisher may be nil, in which
// case Publish reports ErrNotConfigured.
func NewService(source RowSource, publisher sheets.Publisher, sheetRange string, notifier notify.Publisher, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		source:     source,
		publisher:  publisher,
		sheetRange: sheetRange,
		notifier:   notifier,
		logger:     logger,
	}
}

// Enabled reports whether a spreadsheet is configured.
func (s *Service) Enabled() bool {
	return s.publisher != nil
}

// Publish replaces the configured range with the current library table and
// returns the number of formulations written.
func (s *Service) Publish(ctx context.Context) (int, error) {
	if s.publisher == nil {
		return 0, ErrNotConfigured
	}

	rows, err := s.source.ExportRows(ctx)
	if err != nil {
		s.fail(err)
		return 0, fmt.Errorf("export formulations: %w", err)
	}

	if err := s.publisher.ReplaceRange(ctx, s.sheetRange, rows); err != nil {
		s.fail(err)
		return 0, fmt.Errorf("publish formulations: %w", err)
	}

	count := 0
	if len(rows) > 0 {
		count = len(rows) - 1
	}
	s.logger.Info("formulations published", zap.String("range", s.sheetRange), zap.Int("formulations", count))
	if s.notifier != nil {
		s.notifier.Push(notify.LevelSuccess, "Formulations published", fmt.Sprintf("%d formulations written to %s.", count, s.sheetRange))
	}
	return count, nil
}

func (s *Service) fail(err error) {
	s.logger.Error("failed to publish formulations", zap.Error(err))
	if s.notifier != nil {
		s.notifier.Push(notify.LevelError, "Publishing failed", err.Error())
	}
}
