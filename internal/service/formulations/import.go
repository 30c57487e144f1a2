package formulations

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/mamadbah2/agribalance/internal/domain/models"
)

// ImportResult reports the outcome of a JSON import. Library is the
// collection after the import, or the previous one when it failed.
type ImportResult struct {
	Success bool                      `json:"success"`
	Message string                    `json:"message"`
	Added   int                       `json:"added"`
	Updated int                       `json:"updated"`
	Skipped int                       `json:"skipped"`
	Library []models.SavedFormulation `json:"library"`
}

// ImportJSON merges a JSON array of saved formulations into the library by
// id. Elements that are not objects, have no string id or no string name are
// skipped. Missing sub-fields get empty defaults.
func (s *Service) ImportJSON(ctx context.Context, text string) ImportResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, stored := s.loadLocked(ctx)
	if !stored {
		return ImportResult{
			Message: "the stored library could not be read, nothing was imported",
			Library: current,
		}
	}

	var elements []json.RawMessage
	if err := json.Unmarshal([]byte(text), &elements); err != nil {
		s.logger.Warn("formulation import rejected", zap.Error(err))
		return ImportResult{
			Message: "the JSON file does not contain an array of formulations",
			Library: current,
		}
	}

	library := make([]models.SavedFormulation, len(current))
	copy(library, current)
	index := make(map[string]int, len(library))
	for i, f := range library {
		index[f.ID] = i
	}

	var added, updated, skipped int
	for i, raw := range elements {
		f, ok := s.decodeImported(raw)
		if !ok {
			skipped++
			s.logger.Warn("skipping imported formulation without id, name or object shape", zap.Int("index", i))
			continue
		}
		if pos, exists := index[f.ID]; exists {
			library[pos] = f
			updated++
			continue
		}
		index[f.ID] = len(library)
		library = append(library, f)
		added++
	}

	sortNewestFirst(library)

	if err := s.persistLocked(ctx, library); err != nil {
		s.logger.Error("failed to persist imported formulation library", zap.Error(err))
		return ImportResult{
			Message: "failed to save the imported library",
			Library: current,
		}
	}

	s.logger.Info("formulations imported",
		zap.Int("added", added), zap.Int("updated", updated), zap.Int("skipped", skipped))

	return ImportResult{
		Success: true,
		Message: fmt.Sprintf("Import complete: %d added, %d updated, %d skipped.", added, updated, skipped),
		Added:   added,
		Updated: updated,
		Skipped: skipped,
		Library: library,
	}
}

func (s *Service) decodeImported(raw json.RawMessage) (models.SavedFormulation, bool) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		return models.SavedFormulation{}, false
	}

	var id, name string
	if err := json.Unmarshal(fields["id"], &id); err != nil || id == "" {
		return models.SavedFormulation{}, false
	}
	if err := json.Unmarshal(fields["name"], &name); err != nil || isNull(fields["name"]) {
		return models.SavedFormulation{}, false
	}

	f := models.SavedFormulation{
		ID:                  id,
		Name:                name,
		FeedIngredientsUsed: []models.FeedIngredient{},
		FormulationResult:   models.EmptyResult(),
	}
	dropped := func(field string, err error) {
		if err != nil {
			s.logger.Warn("dropping malformed field of imported formulation",
				zap.String("id", id), zap.String("field", field), zap.Error(err))
		}
	}
	dropped("dateSaved", decodeOptional(fields["dateSaved"], &f.DateSaved))
	if f.DateSaved == "" {
		f.DateSaved = s.timestamp()
	}
	dropped("animalProfile", decodeOptional(fields["animalProfile"], &f.AnimalProfile))
	dropped("feedIngredientsUsed", decodeOptional(fields["feedIngredientsUsed"], &f.FeedIngredientsUsed))
	dropped("constraintsUsed", decodeOptional(fields["constraintsUsed"], &f.ConstraintsUsed))
	dropped("formulationResult", decodeOptional(fields["formulationResult"], &f.FormulationResult))
	if f.FeedIngredientsUsed == nil {
		f.FeedIngredientsUsed = []models.FeedIngredient{}
	}
	if f.FormulationResult.DietComposition == nil {
		f.FormulationResult.DietComposition = []models.DietComponent{}
	}
	if f.FormulationResult.ChemicalComposition == nil {
		f.FormulationResult.ChemicalComposition = models.ChemicalComposition{}
	}
	return f, true
}

// decodeOptional leaves dst untouched when raw is missing, null or malformed.
// Only a malformed value is reported.
func decodeOptional[T any](raw json.RawMessage, dst *T) error {
	if len(raw) == 0 || isNull(raw) {
		return nil
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return err
	}
	*dst = v
	return nil
}

func isNull(raw json.RawMessage) bool {
	return len(raw) == 0 || string(raw) == "null"
}
