package formulate

import (
	"github.com/mamadbah2/agribalance/internal/domain/models"
	"github.com/mamadbah2/agribalance/pkg/clients/llm"
)

func chemicalCompositionSchema() *llm.Schema {
	props := make(map[string]*llm.Schema, len(models.NutrientCatalog))
	for _, n := range models.NutrientCatalog {
		props[n.Key] = &llm.Schema{Type: llm.TypeNumber, Nullable: true}
	}
	return &llm.Schema{
		Type:       llm.TypeObject,
		Properties: props,
		Order:      models.NutrientKeys(),
	}
}

func dietOutputSchema() *llm.Schema {
	return &llm.Schema{
		Type:  llm.TypeObject,
		Order: []string{"dietComposition", "chemicalComposition", "costAnalysis", "nutritionalAnalysis"},
		Properties: map[string]*llm.Schema{
			"dietComposition": {
				Type: llm.TypeArray,
				Items: &llm.Schema{
					Type: llm.TypeObject,
					Properties: map[string]*llm.Schema{
						"ingredient": {Type: llm.TypeString},
						"percentage": {Type: llm.TypeNumber},
					},
					Required: []string{"ingredient", "percentage"},
				},
			},
			"chemicalComposition": chemicalCompositionSchema(),
			"costAnalysis": {
				Type: llm.TypeObject,
				Properties: map[string]*llm.Schema{
					"ingredientCosts": {
						Type: llm.TypeArray,
						Items: &llm.Schema{
							Type: llm.TypeObject,
							Properties: map[string]*llm.Schema{
								"ingredient":       {Type: llm.TypeString},
								"percentage":       {Type: llm.TypeNumber},
								"pricePerUnit":     {Type: llm.TypeNumber},
								"costContribution": {Type: llm.TypeNumber},
							},
							Required: []string{"ingredient", "percentage", "pricePerUnit", "costContribution"},
						},
					},
					"totalDietCost": {Type: llm.TypeNumber},
				},
				Required: []string{"ingredientCosts", "totalDietCost"},
			},
			"nutritionalAnalysis": {Type: llm.TypeString},
		},
		Required: []string{"dietComposition", "chemicalComposition", "costAnalysis", "nutritionalAnalysis"},
	}
}

func suggestionsSchema() *llm.Schema {
	return &llm.Schema{
		Type: llm.TypeObject,
		Properties: map[string]*llm.Schema{
			"suggestedIngredients": {
				Type:  llm.TypeArray,
				Items: &llm.Schema{Type: llm.TypeString},
			},
		},
		Required: []string{"suggestedIngredients"},
	}
}
