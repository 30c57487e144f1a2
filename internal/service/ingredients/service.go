package ingredients

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mamadbah2/agribalance/internal/domain/models"
	"github.com/mamadbah2/agribalance/internal/repository/store"
)

// LibraryKey is the store key holding the ingredient library.
const LibraryKey = "agriBalanceIngredientLibrary"

// Service manages the ingredient library.
type Service struct {
	store  store.Store
	logger *zap.Logger
	newID  func() string

	// serializes load-modify-store sequences
	mu sync.Mutex
}

// NewService wires an ingredient library on top of s.
func NewService(s store.Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:  s,
		logger: logger,
		newID:  uuid.NewString,
	}
}

// Load returns the library, seeding it with Defaults on first use. It never
// fails: storage problems are logged and the defaults are returned.
func (s *Service) Load(ctx context.Context) []models.FeedIngredient {
	s.mu.Lock()
	defer s.mu.Unlock()
	library, _ := s.loadLocked(ctx)
	return library
}

// Get looks one ingredient up by id.
func (s *Service) Get(ctx context.Context, id string) (models.FeedIngredient, bool) {
	for _, ing := range s.Load(ctx) {
		if ing.ID == id {
			return ing, true
		}
	}
	return models.FeedIngredient{}, false
}

// Save validates form, assigns an id when missing and upserts by id.
func (s *Service) Save(ctx context.Context, form models.IngredientForm) ([]models.FeedIngredient, error) {
	ing, err := models.ValidateIngredientForm(form)
	if err != nil {
		return nil, err
	}
	if ing.ID == "" {
		ing.ID = s.newID()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, stored := s.loadLocked(ctx)
	library := upsert(current, ing)
	s.persistIfStored(ctx, library, stored)

	s.logger.Info("ingredient saved", zap.String("id", ing.ID), zap.String("name", ing.Name))
	return library, nil
}

// Remove deletes the ingredient with id. Unknown ids are a no-op.
func (s *Service) Remove(ctx context.Context, id string) []models.FeedIngredient {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, stored := s.loadLocked(ctx)
	library := make([]models.FeedIngredient, 0, len(current))
	for _, ing := range current {
		if ing.ID != id {
			library = append(library, ing)
		}
	}
	s.persistIfStored(ctx, library, stored)
	return library
}

// ImportBatch upserts rows by id: later rows win over earlier ones and over
// existing entries. Rows are not deduplicated by name. A row without an id
// gets a fresh one. Nothing is written when any row is invalid.
func (s *Service) ImportBatch(ctx context.Context, rows []models.FeedIngredient) ([]models.FeedIngredient, error) {
	prepared := make([]models.FeedIngredient, 0, len(rows))
	for i, row := range rows {
		if err := models.ValidateIngredient(row); err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		row = row.Clone()
		if row.ID == "" {
			row.ID = s.newID()
		}
		prepared = append(prepared, row)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	library, stored := s.loadLocked(ctx)
	for _, row := range prepared {
		library = upsert(library, row)
	}
	s.persistIfStored(ctx, library, stored)

	s.logger.Info("ingredients imported", zap.Int("rows", len(prepared)), zap.Int("library_size", len(library)))
	return library, nil
}

// loadLocked returns the library and whether it reflects the store. When the
// read fails the defaults are returned with stored false, and callers must not
// write them back over the real library.
func (s *Service) loadLocked(ctx context.Context) ([]models.FeedIngredient, bool) {
	items, found, err := store.LoadList[models.FeedIngredient](ctx, s.store, LibraryKey)
	if err != nil {
		s.logger.Error("failed to load ingredient library, using defaults", zap.Error(err))
		return Defaults(), false
	}
	if !found {
		defaults := Defaults()
		s.persistLocked(ctx, defaults)
		return defaults, true
	}
	return items, true
}

func (s *Service) persistIfStored(ctx context.Context, library []models.FeedIngredient, stored bool) {
	if !stored {
		s.logger.Warn("ingredient library not persisted, stored copy could not be read")
		return
	}
	s.persistLocked(ctx, library)
}

// persistLocked writes the whole library. Failures are logged only: callers
// still get the in-memory result.
func (s *Service) persistLocked(ctx context.Context, library []models.FeedIngredient) {
	if err := store.SaveList(ctx, s.store, LibraryKey, library); err != nil {
		s.logger.Error("failed to persist ingredient library", zap.Error(err))
	}
}

func upsert(library []models.FeedIngredient, ing models.FeedIngredient) []models.FeedIngredient {
	for i := range library {
		if library[i].ID == ing.ID {
			library[i] = ing
			return library
		}
	}
	return append(library, ing)
}
