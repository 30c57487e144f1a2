package formulations

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/mamadbah2/agribalance/internal/domain/models"
	"github.com/mamadbah2/agribalance/internal/repository/store"
)

type flakyStore struct {
	*store.MemoryStore
	failWrites  bool
	failNextGet bool
}

func (f *flakyStore) Get(ctx context.Context, key string) (string, bool, error) {
	if f.failNextGet {
		f.failNextGet = false
		return "", false, errors.New("connection reset")
	}
	return f.MemoryStore.Get(ctx, key)
}

func (f *flakyStore) Set(ctx context.Context, key, value string) error {
	if f.failWrites {
		return errors.New("quota exceeded")
	}
	return f.MemoryStore.Set(ctx, key, value)
}

func newTestService(t *testing.T, s store.Store) *Service {
	t.Helper()
	svc := NewService(s, nil)
	n := 0
	svc.newID = func() string {
		n++
		return fmt.Sprintf("f-%d", n)
	}
	clock := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}
	return svc
}

func broilerDraft(name string) models.FormulationDraft {
	return models.FormulationDraft{
		Name: name,
		AnimalProfile: models.AnimalProfile{
			AnimalType:            models.AnimalBroilers,
			GrowthStage:           "starter",
			TargetProductionLevel: "high",
		},
		FeedIngredientsUsed: []models.FeedIngredient{
			{ID: "corn", Name: "Corn", Price: 0.28, Nutrients: map[string]float64{"protein": 8}},
		},
		FormulationResult: models.FormulateDietOutput{
			DietComposition:     []models.DietComponent{{Ingredient: "Corn", Percentage: 100}},
			ChemicalComposition: models.ChemicalComposition{"protein": 8},
			NutritionalAnalysis: "Low protein.",
		},
	}
}

func TestSaveAndRemove(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, store.NewMemoryStore())
	assert.Empty(t, svc.Load(ctx))

	library, err := svc.Save(ctx, broilerDraft("  Broilers Test "))
	require.NoError(t, err)
	require.Len(t, library, 1)
	assert.Equal(t, "Broilers Test", library[0].Name)
	assert.Equal(t, "f-1", library[0].ID)
	assert.Equal(t, "2026-03-01T12:01:00Z", library[0].DateSaved)

	library, err = svc.Save(ctx, broilerDraft("Second"))
	require.NoError(t, err)
	require.Len(t, library, 2)
	assert.Equal(t, "Second", library[0].Name, "new formulations go first")

	assert.Equal(t, library, svc.Load(ctx))

	library = svc.Remove(ctx, "f-1")
	require.Len(t, library, 1)
	assert.Equal(t, "Second", library[0].Name)
}

func TestSaveRequiresName(t *testing.T) {
	svc := newTestService(t, store.NewMemoryStore())
	_, err := svc.Save(context.Background(), broilerDraft("   "))

	var fieldErrs models.FieldErrors
	require.True(t, errors.As(err, &fieldErrs))
	assert.Contains(t, fieldErrs, "name")
}

func TestLoadBackfillsMissingFields(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemoryStore()
	require.NoError(t, mem.Set(ctx, LibraryKey, `[{"name":"legacy"}]`))

	svc := newTestService(t, mem)
	library := svc.Load(ctx)
	require.Len(t, library, 1)
	assert.Equal(t, "f-1", library[0].ID)
	assert.NotEmpty(t, library[0].DateSaved)

	raw, _, err := mem.Get(ctx, LibraryKey)
	require.NoError(t, err)
	assert.Equal(t, `[{"name":"legacy"}]`, raw, "back-fill is not persisted")
}

func TestImportJSON(t *testing.T) {
	ctx := context.Background()

	t.Run("counts added and skipped", func(t *testing.T) {
		svc := newTestService(t, store.NewMemoryStore())
		result := svc.ImportJSON(ctx, `[
			{"id":"a","name":"A","dateSaved":"2025-01-01T00:00:00Z"},
			{"name":"no id"},
			{"id":"b","name":"B","dateSaved":"2025-06-01T00:00:00Z"},
			42
		]`)

		require.True(t, result.Success, result.Message)
		assert.Equal(t, 2, result.Added)
		assert.Equal(t, 0, result.Updated)
		assert.Equal(t, 2, result.Skipped)
		assert.Contains(t, result.Message, "2 added")
		require.Len(t, result.Library, 2)
		assert.Equal(t, "b", result.Library[0].ID, "newest first")

		a := result.Library[1]
		assert.Equal(t, []models.FeedIngredient{}, a.FeedIngredientsUsed)
		assert.Equal(t, models.EmptyResult(), a.FormulationResult)
		assert.Equal(t, models.AnimalProfile{}, a.AnimalProfile)
	})

	t.Run("overwrites by id", func(t *testing.T) {
		svc := newTestService(t, store.NewMemoryStore())
		first := svc.ImportJSON(ctx, `[{"id":"a","name":"X"}]`)
		require.True(t, first.Success)

		result := svc.ImportJSON(ctx, `[{"id":"a","name":"Y"}]`)
		require.True(t, result.Success)
		assert.Equal(t, 0, result.Added)
		assert.Equal(t, 1, result.Updated)
		require.Len(t, result.Library, 1)
		assert.Equal(t, "Y", result.Library[0].Name)
		assert.Equal(t, result.Library, svc.Load(ctx))
	})

	t.Run("rejects non array", func(t *testing.T) {
		svc := newTestService(t, store.NewMemoryStore())
		_, err := svc.Save(ctx, broilerDraft("keep"))
		require.NoError(t, err)

		result := svc.ImportJSON(ctx, `{"id":"a","name":"X"}`)
		assert.False(t, result.Success)
		require.Len(t, result.Library, 1)
		assert.Equal(t, "keep", result.Library[0].Name)
	})

	t.Run("persistence failure keeps previous library", func(t *testing.T) {
		fs := &flakyStore{MemoryStore: store.NewMemoryStore()}
		svc := newTestService(t, fs)
		_, err := svc.Save(ctx, broilerDraft("keep"))
		require.NoError(t, err)

		fs.failWrites = true
		result := svc.ImportJSON(ctx, `[{"id":"new","name":"New"}]`)
		assert.False(t, result.Success)
		require.Len(t, result.Library, 1)
		assert.Equal(t, "keep", result.Library[0].Name)
	})

	t.Run("date only values sort by day", func(t *testing.T) {
		svc := newTestService(t, store.NewMemoryStore())
		result := svc.ImportJSON(ctx, `[
			{"id":"old","name":"Old","dateSaved":"2024-05-01"},
			{"id":"new","name":"New","dateSaved":"2025-02-10T08:00:00Z"},
			{"id":"mid","name":"Mid","dateSaved":"2024-11-20"}
		]`)
		require.True(t, result.Success, result.Message)
		ids := make([]string, 0, len(result.Library))
		for _, f := range result.Library {
			ids = append(ids, f.ID)
		}
		assert.Equal(t, []string{"new", "mid", "old"}, ids)
	})

	t.Run("malformed nested field is dropped and logged", func(t *testing.T) {
		svc := newTestService(t, store.NewMemoryStore())
		core, logs := observer.New(zap.WarnLevel)
		svc.logger = zap.New(core)

		result := svc.ImportJSON(ctx, `[{
			"id":"a","name":"A",
			"animalProfile":{"animalType":"pigs","growthStage":"Inicio"},
			"formulationResult":{"dietComposition":[],"chemicalComposition":{"protein":"alto"}}
		}]`)
		require.True(t, result.Success, result.Message)
		require.Len(t, result.Library, 1)
		assert.Equal(t, models.EmptyResult(), result.Library[0].FormulationResult)
		assert.Equal(t, models.AnimalPigs, result.Library[0].AnimalProfile.AnimalType)

		dropped := logs.FilterMessage("dropping malformed field of imported formulation").All()
		require.Len(t, dropped, 1)
		assert.Equal(t, "formulationResult", dropped[0].ContextMap()["field"])
		assert.Equal(t, "a", dropped[0].ContextMap()["id"])
	})

	t.Run("failed read imports nothing", func(t *testing.T) {
		fs := &flakyStore{MemoryStore: store.NewMemoryStore()}
		svc := newTestService(t, fs)
		_, err := svc.Save(ctx, broilerDraft("keep"))
		require.NoError(t, err)

		fs.failNextGet = true
		result := svc.ImportJSON(ctx, `[{"id":"new","name":"New"}]`)
		assert.False(t, result.Success)

		library := svc.Load(ctx)
		require.Len(t, library, 1)
		assert.Equal(t, "keep", library[0].Name)
	})

	t.Run("round trips export", func(t *testing.T) {
		src := newTestService(t, store.NewMemoryStore())
		_, err := src.Save(ctx, broilerDraft("one"))
		require.NoError(t, err)
		_, err = src.Save(ctx, broilerDraft("two"))
		require.NoError(t, err)

		exported, err := src.ExportJSON(ctx)
		require.NoError(t, err)

		dst := newTestService(t, store.NewMemoryStore())
		result := dst.ImportJSON(ctx, exported)
		require.True(t, result.Success)
		assert.Equal(t, 2, result.Added)
		assert.Equal(t, src.Load(ctx), dst.Load(ctx))
	})
}

func TestMutationsAfterFailedReadKeepStoredLibrary(t *testing.T) {
	ctx := context.Background()
	fs := &flakyStore{MemoryStore: store.NewMemoryStore()}
	svc := newTestService(t, fs)
	_, err := svc.Save(ctx, broilerDraft("keep"))
	require.NoError(t, err)
	stored := svc.Load(ctx)

	fs.failNextGet = true
	_, err = svc.Save(ctx, broilerDraft("during outage"))
	require.NoError(t, err)
	assert.Equal(t, stored, svc.Load(ctx))

	fs.failNextGet = true
	svc.Remove(ctx, stored[0].ID)
	assert.Equal(t, stored, svc.Load(ctx))
}

func TestExportCSV(t *testing.T) {
	ctx := context.Background()

	t.Run("empty library", func(t *testing.T) {
		svc := newTestService(t, store.NewMemoryStore())
		out, err := svc.ExportCSV(ctx)
		require.NoError(t, err)
		assert.Equal(t, "", out)
	})

	t.Run("columns and formatting", func(t *testing.T) {
		svc := newTestService(t, store.NewMemoryStore())

		draft := broilerDraft("with, comma")
		draft.FormulationResult.ChemicalComposition = models.ChemicalComposition{
			"zzz": 1, "calcio": 0.955, "protein": 21.5, "abc": 4,
		}
		draft.FormulationResult.NutritionalAnalysis = "line one\nline two"
		_, err := svc.Save(ctx, draft)
		require.NoError(t, err)

		costed := broilerDraft("costed")
		costed.FormulationResult.CostAnalysis = &models.CostAnalysis{
			IngredientCosts: []models.IngredientCost{{Ingredient: "Corn", Percentage: 100, PricePerUnit: 0.28, CostContribution: 28}},
			TotalDietCost:   28,
		}
		_, err = svc.Save(ctx, costed)
		require.NoError(t, err)

		out, err := svc.ExportCSV(ctx)
		require.NoError(t, err)

		records, err := csv.NewReader(strings.NewReader(out)).ReadAll()
		require.NoError(t, err)
		require.Len(t, records, 3)

		header := records[0]
		chem := header[9 : len(header)-3]
		assert.Equal(t, []string{"Química - protein", "Química - calcio", "Química - abc", "Química - zzz"}, chem)

		col := func(name string) int {
			for i, h := range header {
				if h == name {
					return i
				}
			}
			t.Fatalf("missing column %q", name)
			return -1
		}

		costedRow, plainRow := records[1], records[2]
		assert.Equal(t, "28.00", costedRow[col("Resultado - Análisis Costos: Total")])
		assert.Contains(t, costedRow[col("Resultado - Análisis Costos: Ingredientes (JSON)")], `"costContribution":28`)
		assert.Equal(t, "", costedRow[col("Química - zzz")])

		assert.Equal(t, "with, comma", plainRow[col("Nombre Formulación")])
		assert.Equal(t, "21.50", plainRow[col("Química - protein")])
		assert.Equal(t, "0.95", plainRow[col("Química - calcio")])
		assert.Equal(t, "[]", plainRow[col("Resultado - Análisis Costos: Ingredientes (JSON)")])
		assert.Equal(t, "", plainRow[col("Resultado - Análisis Costos: Total")])
		assert.Equal(t, "line one line two", plainRow[col("Resultado - Análisis Nutricional General")])
	})
}
