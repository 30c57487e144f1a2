package formulate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/agribalance/internal/domain/models"
	"github.com/mamadbah2/agribalance/internal/repository/store"
	"github.com/mamadbah2/agribalance/internal/service/ingredients"
	"github.com/mamadbah2/agribalance/internal/service/requirements"
	"github.com/mamadbah2/agribalance/pkg/clients/llm"
)

type fakeClient struct {
	reply string
	err   error
	calls []llm.Request
	wait  bool
}

func (f *fakeClient) GenerateJSON(ctx context.Context, req llm.Request) (string, error) {
	f.calls = append(f.calls, req)
	if f.wait {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return f.reply, f.err
}

const goodReply = `{
	"dietComposition": [{"ingredient": "Maíz amarillo", "percentage": 60}, {"ingredient": "Harina de soya 46%", "percentage": 40}],
	"chemicalComposition": {"protein": 23.2, "calcio": null},
	"costAnalysis": {"ingredientCosts": [{"ingredient": "Maíz amarillo", "percentage": 60, "pricePerUnit": 0.28, "costContribution": 16.8}], "totalDietCost": 37.6},
	"nutritionalAnalysis": "Balanced starter diet."
}`

func newTestService(t *testing.T, client llm.Client) *Service {
	t.Helper()
	mem := store.NewMemoryStore()
	return NewService(Config{
		Client:      client,
		Ingredients: ingredients.NewService(mem, nil),
		Profiles:    requirements.NewService(mem, nil),
		Render:      requirements.ConstraintsText,
		Timeout:     time.Second,
	})
}

func validRequest() Request {
	return Request{
		AnimalType:            models.AnimalBroilers,
		GrowthStage:           "starter",
		TargetProductionLevel: "high",
		IngredientIDs:         []string{"predef_maiz_amarillo", "predef_harina_soya_46"},
	}
}

func TestFormulate(t *testing.T) {
	ctx := context.Background()

	t.Run("returns result with echoed inputs", func(t *testing.T) {
		client := &fakeClient{reply: goodReply}
		svc := newTestService(t, client)

		req := validRequest()
		req.FeedIngredients = []models.IngredientForm{{Name: "Premezcla", Price: "3"}}
		resp, err := svc.Formulate(ctx, req)
		require.NoError(t, err)

		assert.Len(t, resp.Result.DietComposition, 2)
		assert.Equal(t, 23.2, resp.Result.ChemicalComposition["protein"])
		assert.NotContains(t, resp.Result.ChemicalComposition, "calcio")
		require.NotNil(t, resp.Result.CostAnalysis)
		assert.Equal(t, 37.6, resp.Result.CostAnalysis.TotalDietCost)
		assert.Empty(t, resp.Warnings)

		assert.Equal(t, models.AnimalBroilers, resp.AnimalProfile.AnimalType)
		require.Len(t, resp.FeedIngredientsUsed, 3)
		assert.Equal(t, "Premezcla", resp.FeedIngredientsUsed[0].Name)
		assert.Equal(t, "predef_maiz_amarillo", resp.FeedIngredientsUsed[1].ID)

		require.Len(t, client.calls, 1)
		call := client.calls[0]
		assert.Equal(t, float32(0.3), call.Temperature)
		assert.Contains(t, call.Prompt, "Animal Type: broilers")
		assert.Contains(t, call.Prompt, DefaultConstraints)
		assert.Contains(t, call.Schema.Properties["chemicalComposition"].Properties, "isoleusina")
	})

	t.Run("profile constraints are appended", func(t *testing.T) {
		client := &fakeClient{reply: goodReply}
		svc := newTestService(t, client)

		req := validRequest()
		req.Constraints = "Max fiber 5%"
		req.RequirementProfileID = "broiler_starter_0_2w"
		resp, err := svc.Formulate(ctx, req)
		require.NoError(t, err)

		assert.True(t, strings.HasPrefix(resp.ConstraintsUsed, "Max fiber 5%\n\nRequerimientos del perfil"))
		assert.Contains(t, client.calls[0].Prompt, "Requerimientos del perfil")
	})

	t.Run("warns when percentages drift", func(t *testing.T) {
		client := &fakeClient{reply: `{"dietComposition":[{"ingredient":"a","percentage":90}],"chemicalComposition":{},"nutritionalAnalysis":""}`}
		svc := newTestService(t, client)

		resp, err := svc.Formulate(ctx, validRequest())
		require.NoError(t, err)
		assert.Len(t, resp.Warnings, 2)
		assert.Contains(t, resp.Warnings[0], "90.00")
	})

	t.Run("validation blocks the call", func(t *testing.T) {
		client := &fakeClient{reply: goodReply}
		svc := newTestService(t, client)

		_, err := svc.Formulate(ctx, Request{
			AnimalType:           "cows",
			FeedIngredients:      []models.IngredientForm{{Name: "", Price: "-1"}},
			IngredientIDs:        []string{"missing"},
			RequirementProfileID: "missing",
		})
		var fe models.FieldErrors
		require.True(t, errors.As(err, &fe))
		for _, field := range []string{
			"animalType", "growthStage", "targetProductionLevel",
			"feedIngredients[0].name", "feedIngredients[0].price",
			"ingredientIds[0]", "requirementProfileId",
		} {
			assert.Contains(t, fe, field)
		}
		assert.Empty(t, client.calls)
	})

	t.Run("requires at least one ingredient", func(t *testing.T) {
		svc := newTestService(t, &fakeClient{reply: goodReply})
		req := validRequest()
		req.IngredientIDs = nil

		_, err := svc.Formulate(ctx, req)
		var fe models.FieldErrors
		require.True(t, errors.As(err, &fe))
		assert.Contains(t, fe, "feedIngredients")
	})

	t.Run("non json reply is a generic error", func(t *testing.T) {
		svc := newTestService(t, &fakeClient{reply: "sorry, no"})
		_, err := svc.Formulate(ctx, validRequest())

		var aiErr *Error
		require.True(t, errors.As(err, &aiErr))
		assert.Equal(t, KindGeneric, aiErr.Kind)
	})

	t.Run("missing client is a credentials error", func(t *testing.T) {
		svc := newTestService(t, nil)
		_, err := svc.Formulate(ctx, validRequest())

		var aiErr *Error
		require.True(t, errors.As(err, &aiErr))
		assert.Equal(t, KindCredentials, aiErr.Kind)
	})

	t.Run("timeout", func(t *testing.T) {
		svc := newTestService(t, &fakeClient{wait: true})
		svc.timeout = 10 * time.Millisecond

		_, err := svc.Formulate(ctx, validRequest())
		var aiErr *Error
		require.True(t, errors.As(err, &aiErr))
		assert.Equal(t, KindTimeout, aiErr.Kind)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})
}

func TestClassify(t *testing.T) {
	tests := []struct {
		err  error
		want Kind
	}{
		{errors.New("googleapi: Error 400: API key not valid. Please pass a valid API key."), KindCredentials},
		{errors.New("rpc error: code = PermissionDenied desc = Permission denied"), KindCredentials},
		{errors.New("missing API_KEY"), KindCredentials},
		{errors.New("anthropic api error 401: invalid x-api-key"), KindCredentials},
		{errors.New("Deadline Exceeded"), KindTimeout},
		{fmt.Errorf("call: %w", context.DeadlineExceeded), KindTimeout},
		{errors.New("Error 400: invalid argument"), KindMalformed},
		{errors.New("503 overloaded"), KindGeneric},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			got := classify(tt.err)
			assert.Equal(t, tt.want, got.Kind)
			assert.Equal(t, messages[tt.want], got.Error())
			assert.ErrorIs(t, got, tt.err)
		})
	}
}

func TestSuggestIngredients(t *testing.T) {
	ctx := context.Background()

	client := &fakeClient{reply: `{"suggestedIngredients":["Maíz","Soya","Salvado"]}`}
	svc := newTestService(t, client)

	names, err := svc.SuggestIngredients(ctx, models.AnimalPigs, "growers")
	require.NoError(t, err)
	assert.Equal(t, []string{"Maíz", "Soya", "Salvado"}, names)
	assert.Contains(t, client.calls[0].Prompt, "Animal Type: pigs")
	assert.Equal(t, []string{"suggestedIngredients"}, client.calls[0].Schema.Required)

	_, err = svc.SuggestIngredients(ctx, "", " ")
	var fe models.FieldErrors
	require.True(t, errors.As(err, &fe))
	assert.Len(t, fe, 2)
}

func TestIngredientJSONFillsEveryNutrient(t *testing.T) {
	out, err := ingredientJSON([]models.FeedIngredient{{Name: "Sal", Price: 0.1, Nutrients: map[string]float64{"sodio": 39}}})
	require.NoError(t, err)

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	require.Len(t, decoded, 1)
	assert.Len(t, decoded[0], len(models.NutrientCatalog)+3)
	assert.Equal(t, 39.0, decoded[0]["sodio"])
	assert.Equal(t, 0.0, decoded[0]["calcio"])
	assert.Equal(t, "", decoded[0]["otherNutrients"])
}
