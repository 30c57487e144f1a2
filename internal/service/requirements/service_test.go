package requirements

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/agribalance/internal/domain/models"
	"github.com/mamadbah2/agribalance/internal/repository/store"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	svc := NewService(store.NewMemoryStore(), nil)
	n := 0
	svc.newID = func() string {
		n++
		return fmt.Sprintf("profile-%d", n)
	}
	return svc
}

func validForm() models.RequirementProfileForm {
	return models.RequirementProfileForm{
		ProfileDisplayName:     "Cerdo Crecimiento",
		AnimalType:             string(models.AnimalPigs),
		GrowthStageDescription: "25-50 kg",
		NutrientEntries: []models.NutrientEntryForm{
			{NutrientName: "Proteína Cruda (%)", Min: "16", Max: "18", Unit: "%"},
			{NutrientName: "Lisina Digestible SID (%)", Target: "1.0", Unit: "%"},
		},
	}
}

func TestLoadSeedsProfiles(t *testing.T) {
	svc := newTestService(t)
	library := svc.Load(context.Background())
	require.Len(t, library, 3)
	assert.Equal(t, "broiler_starter_0_2w", library[0].ID)
	assert.Equal(t, "laying_hens_peak", library[1].ID)
	assert.Equal(t, "pig_starter_5_10kg", library[2].ID)
}

func TestSaveProfile(t *testing.T) {
	ctx := context.Background()

	t.Run("new profile gets an id", func(t *testing.T) {
		svc := newTestService(t)
		library, err := svc.SaveProfile(ctx, validForm())
		require.NoError(t, err)
		require.Len(t, library, 4)

		saved := library[3]
		assert.Equal(t, "profile-1", saved.ID)
		protein := saved.Nutrients["Proteína Cruda (%)"]
		assert.Nil(t, protein.Target)
		assert.Equal(t, 16.0, *protein.Min)
		assert.Equal(t, 18.0, *protein.Max)
	})

	t.Run("unknown id appends with fresh id", func(t *testing.T) {
		svc := newTestService(t)
		form := validForm()
		form.ID = "ghost"
		library, err := svc.SaveProfile(ctx, form)
		require.NoError(t, err)
		require.Len(t, library, 4)
		assert.Equal(t, "profile-1", library[3].ID)
	})

	t.Run("known id replaces in place", func(t *testing.T) {
		svc := newTestService(t)
		form := validForm()
		form.ID = "laying_hens_peak"
		library, err := svc.SaveProfile(ctx, form)
		require.NoError(t, err)
		require.Len(t, library, 3)
		assert.Equal(t, "laying_hens_peak", library[1].ID)
		assert.Equal(t, "Cerdo Crecimiento", library[1].ProfileDisplayName)
	})

	t.Run("unparsable numbers are stored as absent", func(t *testing.T) {
		svc := newTestService(t)
		form := validForm()
		form.NutrientEntries[1].Target = "mucho"
		library, err := svc.SaveProfile(ctx, form)
		require.NoError(t, err)
		assert.Nil(t, library[3].Nutrients["Lisina Digestible SID (%)"].Target)
	})

	t.Run("duplicate nutrient names are rejected", func(t *testing.T) {
		svc := newTestService(t)
		form := validForm()
		form.NutrientEntries[1].NutrientName = " Proteína Cruda (%) "

		_, err := svc.SaveProfile(ctx, form)
		var fieldErrs models.FieldErrors
		require.True(t, errors.As(err, &fieldErrs))
		assert.Contains(t, fieldErrs, "nutrientEntries")
		assert.Len(t, svc.Load(ctx), 3)
	})

	t.Run("missing required fields", func(t *testing.T) {
		svc := newTestService(t)
		_, err := svc.SaveProfile(ctx, models.RequirementProfileForm{AnimalType: "cows"})
		var fieldErrs models.FieldErrors
		require.True(t, errors.As(err, &fieldErrs))
		for _, field := range []string{"profileDisplayName", "animalType", "growthStageDescription", "nutrientEntries"} {
			assert.Contains(t, fieldErrs, field)
		}
	})
}

func TestRemoveProfile(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	assert.Len(t, svc.RemoveProfile(ctx, "nope"), 3)
	library := svc.RemoveProfile(ctx, "pig_starter_5_10kg")
	assert.Len(t, library, 2)

	_, ok := svc.Get(ctx, "pig_starter_5_10kg")
	assert.False(t, ok)
}

func TestConvertToFormValues(t *testing.T) {
	profile := Defaults()[0]
	form := ConvertToFormValues(profile)

	assert.Equal(t, profile.ID, form.ID)
	require.Len(t, form.NutrientEntries, len(profile.Nutrients))

	names := make([]string, 0, len(form.NutrientEntries))
	fieldIDs := make(map[string]bool)
	for _, e := range form.NutrientEntries {
		names = append(names, e.NutrientName)
		assert.NotEmpty(t, e.FieldID)
		fieldIDs[e.FieldID] = true
	}
	assert.IsIncreasing(t, names)
	assert.Len(t, fieldIDs, len(names), "field ids are unique")

	var calcium models.NutrientEntryForm
	for _, e := range form.NutrientEntries {
		if e.NutrientName == "Calcio (%)" {
			calcium = e
		}
	}
	assert.Equal(t, models.NumberInput(""), calcium.Target)
	assert.Equal(t, models.NumberInput("0.9"), calcium.Min)
	assert.Equal(t, models.NumberInput("1"), calcium.Max)

	t.Run("round trips through save", func(t *testing.T) {
		ctx := context.Background()
		svc := newTestService(t)
		library, err := svc.SaveProfile(ctx, form)
		require.NoError(t, err)
		assert.Equal(t, profile, library[0])
	})
}

func TestConstraintsText(t *testing.T) {
	text := ConstraintsText(Defaults()[2])
	lines := strings.Split(strings.TrimSuffix(text, "\n"), "\n")

	assert.Equal(t, `Requerimientos del perfil "Cerdo Iniciador (5-10 kg)":`, lines[0])
	assert.Contains(t, lines, "- Calcio (%): objetivo 0.8% ")
	assert.Contains(t, lines, "- Proteína Cruda (%): mín 20% máx 22% ")
	assert.Contains(t, lines, "- Energía Digestible Cerdos (kcal/kg): objetivo 3450kcal/kg ")
}

type unreadableOnceStore struct {
	*store.MemoryStore
	failNextGet bool
}

func (s *unreadableOnceStore) Get(ctx context.Context, key string) (string, bool, error) {
	if s.failNextGet {
		s.failNextGet = false
		return "", false, errors.New("connection reset")
	}
	return s.MemoryStore.Get(ctx, key)
}

func TestMutationsAfterFailedReadKeepStoredLibrary(t *testing.T) {
	ctx := context.Background()

	st := &unreadableOnceStore{MemoryStore: store.NewMemoryStore()}
	svc := NewService(st, nil)
	library, err := svc.SaveProfile(ctx, validForm())
	require.NoError(t, err)
	require.Len(t, library, 4)

	st.failNextGet = true
	_, err = svc.SaveProfile(ctx, validForm())
	require.NoError(t, err)
	assert.Equal(t, library, svc.Load(ctx), "save after a failed read must not overwrite the store")

	st.failNextGet = true
	svc.RemoveProfile(ctx, library[3].ID)
	assert.Equal(t, library, svc.Load(ctx), "remove after a failed read must not overwrite the store")
}
