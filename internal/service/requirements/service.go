package requirements

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mamadbah2/agribalance/internal/domain/models"
	"github.com/mamadbah2/agribalance/internal/repository/store"
)

// LibraryKey is the store key holding the requirement profiles.
const LibraryKey = "agriBalanceNutritionalRequirementsLibrary"

// Service manages the nutritional requirement library.
type Service struct {
	store  store.Store
	logger *zap.Logger
	newID  func() string
	mu     sync.Mutex
}

// NewService wires a requirement library on top of s.
func NewService(s store.Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: s, logger: logger, newID: uuid.NewString}
}

// Load returns the library, seeding the built-in profiles on first use.
func (s *Service) Load(ctx context.Context) []models.NutritionalRequirementProfile {
	s.mu.Lock()
	defer s.mu.Unlock()
	library, _ := s.loadLocked(ctx)
	return library
}

// Get looks one profile up by id.
func (s *Service) Get(ctx context.Context, id string) (models.NutritionalRequirementProfile, bool) {
	for _, p := range s.Load(ctx) {
		if p.ID == id {
			return p, true
		}
	}
	return models.NutritionalRequirementProfile{}, false
}

// SaveProfile validates the form and stores it. A known id is replaced in
// place; an unknown id or no id creates a new profile with a fresh id.
func (s *Service) SaveProfile(ctx context.Context, form models.RequirementProfileForm) ([]models.NutritionalRequirementProfile, error) {
	if err := models.ValidateRequirementForm(form); err != nil {
		return nil, err
	}

	profile := models.NutritionalRequirementProfile{
		ProfileDisplayName:     strings.TrimSpace(form.ProfileDisplayName),
		AnimalType:             form.AnimalType,
		GrowthStageDescription: strings.TrimSpace(form.GrowthStageDescription),
		Notes:                  form.Notes,
		Nutrients:              nutrientsFromEntries(form.NutrientEntries),
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	library, stored := s.loadLocked(ctx)
	replaced := false
	if form.ID != "" {
		for i := range library {
			if library[i].ID == form.ID {
				profile.ID = form.ID
				library[i] = profile
				replaced = true
				break
			}
		}
	}
	if !replaced {
		profile.ID = s.newID()
		library = append(library, profile)
	}

	s.persistIfStored(ctx, library, stored)
	s.logger.Info("requirement profile saved", zap.String("id", profile.ID), zap.Bool("replaced", replaced))
	return library, nil
}

// RemoveProfile deletes the profile with id. Unknown ids are a no-op.
func (s *Service) RemoveProfile(ctx context.Context, id string) []models.NutritionalRequirementProfile {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, stored := s.loadLocked(ctx)
	library := make([]models.NutritionalRequirementProfile, 0, len(current))
	for _, p := range current {
		if p.ID != id {
			library = append(library, p)
		}
	}
	s.persistIfStored(ctx, library, stored)
	return library
}

// ConvertToFormValues turns a stored profile into its editable form. Entries
// are sorted by nutrient name and each gets a fresh field id.
func ConvertToFormValues(profile models.NutritionalRequirementProfile) models.RequirementProfileForm {
	names := sortedNutrientNames(profile)

	entries := make([]models.NutrientEntryForm, 0, len(names))
	for _, name := range names {
		req := profile.Nutrients[name]
		entries = append(entries, models.NutrientEntryForm{
			FieldID:      uuid.NewString(),
			NutrientName: name,
			Target:       models.NumberInput(models.FormatNumber(req.Target)),
			Min:          models.NumberInput(models.FormatNumber(req.Min)),
			Max:          models.NumberInput(models.FormatNumber(req.Max)),
			Unit:         req.Unit,
		})
	}

	return models.RequirementProfileForm{
		ID:                     profile.ID,
		ProfileDisplayName:     profile.ProfileDisplayName,
		AnimalType:             profile.AnimalType,
		GrowthStageDescription: profile.GrowthStageDescription,
		Notes:                  profile.Notes,
		NutrientEntries:        entries,
	}
}

// ConstraintsText renders a profile as formulation constraints text.
func ConstraintsText(profile models.NutritionalRequirementProfile) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Requerimientos del perfil \"%s\":\n", profile.ProfileDisplayName)
	for _, name := range sortedNutrientNames(profile) {
		req := profile.Nutrients[name]
		fmt.Fprintf(&b, "- %s: ", name)
		if req.Target != nil {
			fmt.Fprintf(&b, "objetivo %s%s ", models.FormatNumber(req.Target), req.Unit)
		}
		if req.Min != nil {
			fmt.Fprintf(&b, "mín %s%s ", models.FormatNumber(req.Min), req.Unit)
		}
		if req.Max != nil {
			fmt.Fprintf(&b, "máx %s%s ", models.FormatNumber(req.Max), req.Unit)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func nutrientsFromEntries(entries []models.NutrientEntryForm) map[string]models.NutrientRequirement {
	out := make(map[string]models.NutrientRequirement, len(entries))
	for _, e := range entries {
		out[strings.TrimSpace(e.NutrientName)] = models.NutrientRequirement{
			Target: parseOrAbsent(e.Target),
			Min:    parseOrAbsent(e.Min),
			Max:    parseOrAbsent(e.Max),
			Unit:   strings.TrimSpace(e.Unit),
		}
	}
	return out
}

// parseOrAbsent stores malformed numbers as absent rather than zero.
func parseOrAbsent(in models.NumberInput) *float64 {
	v, err := in.Parse()
	if err != nil {
		return nil
	}
	return v
}

func sortedNutrientNames(profile models.NutritionalRequirementProfile) []string {
	names := make([]string, 0, len(profile.Nutrients))
	for name := range profile.Nutrients {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// loadLocked reports false when the stored library could not be read.
func (s *Service) loadLocked(ctx context.Context) ([]models.NutritionalRequirementProfile, bool) {
	items, found, err := store.LoadList[models.NutritionalRequirementProfile](ctx, s.store, LibraryKey)
	if err != nil {
		s.logger.Error("failed to load requirement library, using defaults", zap.Error(err))
		return Defaults(), false
	}
	if !found {
		defaults := Defaults()
		s.persistLocked(ctx, defaults)
		return defaults, true
	}
	return items, true
}

func (s *Service) persistIfStored(ctx context.Context, library []models.NutritionalRequirementProfile, stored bool) {
	if !stored {
		s.logger.Warn("requirement library not persisted, stored copy could not be read")
		return
	}
	s.persistLocked(ctx, library)
}

func (s *Service) persistLocked(ctx context.Context, library []models.NutritionalRequirementProfile) {
	if err := store.SaveList(ctx, s.store, LibraryKey, library); err != nil {
		s.logger.Error("failed to persist requirement library", zap.Error(err))
	}
}
