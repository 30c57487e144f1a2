package formulations

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mamadbah2/agribalance/internal/domain/models"
	"github.com/mamadbah2/agribalance/internal/repository/store"
)

// LibraryKey is the store key holding saved formulations.
const LibraryKey = "agriBalanceFormulationLibrary"

// ErrNameRequired is returned when a formulation is saved without a name.
var ErrNameRequired = errors.New("formulation name is required")

// Service manages the saved formulation library.
type Service struct {
	store  store.Store
	logger *zap.Logger
	newID  func() string
	now    func() time.Time
	mu     sync.Mutex
}

// NewService wires a formulation library on top of s.
func NewService(s store.Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:  s,
		logger: logger,
		newID:  uuid.NewString,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Load returns the saved formulations, or an empty library when nothing is
// stored. Entries missing an id or a save date are back-filled in memory only.
func (s *Service) Load(ctx context.Context) []models.SavedFormulation {
	s.mu.Lock()
	defer s.mu.Unlock()
	library, _ := s.loadLocked(ctx)
	return library
}

// Save validates the draft name, stamps it with a fresh id and the current
// time, and stores it at the front of the library.
func (s *Service) Save(ctx context.Context, draft models.FormulationDraft) ([]models.SavedFormulation, error) {
	name := strings.TrimSpace(draft.Name)
	if name == "" {
		return nil, models.FieldErrors{"name": ErrNameRequired.Error()}
	}

	saved := models.SavedFormulation{
		ID:                  s.newID(),
		Name:                name,
		DateSaved:           s.timestamp(),
		AnimalProfile:       draft.AnimalProfile,
		FeedIngredientsUsed: cloneIngredients(draft.FeedIngredientsUsed),
		ConstraintsUsed:     draft.ConstraintsUsed,
		FormulationResult:   draft.FormulationResult,
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, stored := s.loadLocked(ctx)
	library := append([]models.SavedFormulation{saved}, current...)
	s.persistIfStored(ctx, library, stored)

	s.logger.Info("formulation saved", zap.String("id", saved.ID), zap.String("name", saved.Name))
	return library, nil
}

// Remove deletes the formulation with id. Unknown ids are a no-op.
func (s *Service) Remove(ctx context.Context, id string) []models.SavedFormulation {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, stored := s.loadLocked(ctx)
	library := make([]models.SavedFormulation, 0, len(current))
	for _, f := range current {
		if f.ID != id {
			library = append(library, f)
		}
	}
	s.persistIfStored(ctx, library, stored)
	return library
}

// loadLocked reports false when the stored library could not be read; the
// empty fallback must then never be written back.
func (s *Service) loadLocked(ctx context.Context) ([]models.SavedFormulation, bool) {
	items, found, err := store.LoadList[models.SavedFormulation](ctx, s.store, LibraryKey)
	if err != nil {
		s.logger.Error("failed to load formulation library", zap.Error(err))
		return []models.SavedFormulation{}, false
	}
	if !found {
		return []models.SavedFormulation{}, true
	}
	for i := range items {
		if items[i].ID == "" {
			items[i].ID = s.newID()
		}
		if items[i].DateSaved == "" {
			items[i].DateSaved = s.timestamp()
		}
	}
	return items, true
}

func (s *Service) persistLocked(ctx context.Context, library []models.SavedFormulation) error {
	return store.SaveList(ctx, s.store, LibraryKey, library)
}

func (s *Service) persistIfStored(ctx context.Context, library []models.SavedFormulation, stored bool) {
	if !stored {
		s.logger.Warn("formulation library not persisted, stored copy could not be read")
		return
	}
	if err := s.persistLocked(ctx, library); err != nil {
		s.logger.Error("failed to persist formulation library", zap.Error(err))
	}
}

func (s *Service) timestamp() string {
	return s.now().UTC().Format(time.RFC3339Nano)
}

// sortNewestFirst orders by save date; unparsable dates sort last.
func sortNewestFirst(library []models.SavedFormulation) {
	sort.SliceStable(library, func(i, j int) bool {
		return library[i].SavedAt().After(library[j].SavedAt())
	})
}

func cloneIngredients(in []models.FeedIngredient) []models.FeedIngredient {
	out := make([]models.FeedIngredient, 0, len(in))
	for _, ing := range in {
		out = append(out, ing.Clone())
	}
	return out
}
