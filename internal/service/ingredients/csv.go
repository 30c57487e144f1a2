package ingredients

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/mamadbah2/agribalance/internal/domain/models"
)

var (
	// ErrEmptyFile is returned when the import file has no content.
	ErrEmptyFile = errors.New("the CSV file is empty or could not be read")
	// ErrNoDataRows is returned when the import file only has a header.
	ErrNoDataRows = errors.New("the CSV file has no data rows")
	// ErrHeaderMismatch is returned when the header row differs from the export format.
	ErrHeaderMismatch = errors.New("the CSV headers do not match the expected format")
	// ErrInvalidRow is returned when a data row cannot be converted into an ingredient.
	ErrInvalidRow = errors.New("invalid CSV row")
)

const (
	idHeader    = "ID"
	nameHeader  = "Nombre"
	priceHeader = "Precio"
	otherHeader = "Otros Nutrientes"
)

// Header returns the fixed column order of the tabular ingredient format.
func Header() []string {
	header := make([]string, 0, len(models.NutrientCatalog)+4)
	header = append(header, idHeader, nameHeader, priceHeader)
	for _, n := range models.NutrientCatalog {
		header = append(header, n.Header)
	}
	return append(header, otherHeader)
}

// WriteCSV serializes items in the tabular ingredient format. The id, name
// and notes columns are always quoted; numbers are plain decimals or empty.
func WriteCSV(w io.Writer, items []models.FeedIngredient) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header()); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	var line strings.Builder
	for _, ing := range items {
		line.Reset()
		line.WriteString(quoteField(ing.ID))
		line.WriteByte(',')
		line.WriteString(quoteField(ing.Name))
		line.WriteByte(',')
		line.WriteString(strconv.FormatFloat(ing.Price, 'f', -1, 64))
		for _, n := range models.NutrientCatalog {
			line.WriteByte(',')
			if v, ok := ing.Nutrient(n.Key); ok {
				line.WriteString(strconv.FormatFloat(v, 'f', -1, 64))
			}
		}
		line.WriteByte(',')
		line.WriteString(quoteField(ing.OtherNutrients))
		line.WriteByte('\n')

		if _, err := io.WriteString(w, line.String()); err != nil {
			return fmt.Errorf("write csv row %s: %w", ing.ID, err)
		}
	}
	return nil
}

func quoteField(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// ParseCSV reads a file in the tabular ingredient format. The header must
// match Header exactly. Rows with an empty id get one from newID. Any invalid
// row fails the whole parse.
func ParseCSV(r io.Reader, newID func() string) ([]models.FeedIngredient, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmptyFile, err)
	}
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, ErrEmptyFile
	}

	cr := csv.NewReader(bytes.NewReader(data))
	cr.FieldsPerRecord = -1
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRow, err)
	}

	records = dropBlankRecords(records)
	if len(records) < 2 {
		return nil, ErrNoDataRows
	}

	expected := Header()
	got := records[0]
	if len(got) != len(expected) {
		return nil, ErrHeaderMismatch
	}
	for i := range expected {
		if strings.TrimSpace(got[i]) != expected[i] {
			return nil, ErrHeaderMismatch
		}
	}

	items := make([]models.FeedIngredient, 0, len(records)-1)
	for i, record := range records[1:] {
		ing, err := models.ValidateIngredientForm(formFromRecord(record))
		if err != nil {
			return nil, fmt.Errorf("%w %d: %v", ErrInvalidRow, i+2, err)
		}
		if ing.ID == "" {
			ing.ID = newID()
		}
		items = append(items, ing)
	}
	return items, nil
}

func formFromRecord(record []string) models.IngredientForm {
	cell := func(i int) string {
		if i < len(record) {
			return strings.TrimSpace(record[i])
		}
		return ""
	}

	form := models.IngredientForm{
		ID:             cell(0),
		Name:           cell(1),
		Price:          models.NumberInput(cell(2)),
		Nutrients:      make(map[string]models.NumberInput, len(models.NutrientCatalog)),
		OtherNutrients: cell(len(models.NutrientCatalog) + 3),
	}
	for i, n := range models.NutrientCatalog {
		if v := cell(i + 3); v != "" {
			form.Nutrients[n.Key] = models.NumberInput(v)
		}
	}
	return form
}

func dropBlankRecords(records [][]string) [][]string {
	out := records[:0]
	for _, rec := range records {
		blank := true
		for _, f := range rec {
			if strings.TrimSpace(f) != "" {
				blank = false
				break
			}
		}
		if !blank {
			out = append(out, rec)
		}
	}
	return out
}

// ExportCSV serializes the whole library.
func (s *Service) ExportCSV(ctx context.Context) (string, error) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, s.Load(ctx)); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// ImportResult summarizes a CSV import.
type ImportResult struct {
	Imported int                     `json:"imported"`
	Library  []models.FeedIngredient `json:"library"`
}

// ImportCSV parses r and merges its rows into the library. Format errors
// abort the import before anything is written.
func (s *Service) ImportCSV(ctx context.Context, r io.Reader) (ImportResult, error) {
	rows, err := ParseCSV(r, s.newID)
	if err != nil {
		s.logger.Warn("ingredient csv import rejected", zap.Error(err))
		return ImportResult{}, err
	}

	library, err := s.ImportBatch(ctx, rows)
	if err != nil {
		return ImportResult{}, err
	}
	return ImportResult{Imported: len(rows), Library: library}, nil
}
