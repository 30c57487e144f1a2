package formulate

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mamadbah2/agribalance/internal/domain/models"
)

// DefaultConstraints is sent when the caller gives no constraints.
const DefaultConstraints = "Optimize for the lowest cost while meeting standard nutritional requirements for the specified animal profile."

const formulatePrompt = `
You are Balance, a world-class AI nutritionist specializing in animal diet formulation. Your task is to create an optimal, cost-effective diet based on the provided data. You must generate a single, complete, and valid JSON object that strictly adheres to the provided JSON schema. Do not output any other text, explanations, or markdown.

**Follow this exact process:**

1.  **Analyze Requirements:** Scrutinize the animal profile and the formulation constraints to understand the nutritional targets (e.g., minimum protein, specific energy levels, maximum fiber).
2.  **Optimize Composition:** Determine the ideal percentage for each available ingredient to meet the nutritional requirements at the lowest possible cost. This is an optimization problem. The sum of all ingredient percentages in ` + "`dietComposition`" + ` **must equal exactly 100**.
3.  **Calculate Final Profile:** Based on the optimized ` + "`dietComposition`" + `, compute the final ` + "`chemicalComposition`" + ` of the diet. This is a weighted average of the nutrients from each ingredient.
4.  **Analyze Costs:** Calculate the ` + "`costAnalysis`" + `, including the cost contribution of each ingredient and the ` + "`totalDietCost`" + ` for 100 units of the diet.
5.  **Summarize:** Write a brief, professional ` + "`nutritionalAnalysis`" + ` explaining the key characteristics of the formulated diet.
6.  **Format Output:** Combine all results into a single JSON object that validates against the required schema.

**Input Data:**

1.  **Animal Profile:**
    *   Animal Type: %s
    *   Growth Stage: %s
    *   Target Production Level: %s

2.  **Available Ingredients (JSON format):**
    ` + "```json" + `
%s
    ` + "```" + `

3.  **Formulation Constraints & Goals:**
    *   %s

Now, generate the JSON output.
`

const suggestPrompt = `
Based on the following animal profile, suggest a list of 5 to 10 common and effective feed ingredients.
- Animal Type: %s
- Growth Stage: %s

Provide the response as a JSON object with a single key "suggestedIngredients" which is an array of strings. For example: {"suggestedIngredients": ["Corn", "Soybean Meal", ...]}.
`

// ingredientJSON renders ingredients with every catalog nutrient present,
// missing values as 0, so the model sees a uniform structure.
func ingredientJSON(ingredients []models.FeedIngredient) (string, error) {
	out := make([]map[string]any, 0, len(ingredients))
	for _, ing := range ingredients {
		m := make(map[string]any, len(models.NutrientCatalog)+3)
		m["name"] = ing.Name
		m["price"] = ing.Price
		m["otherNutrients"] = ing.OtherNutrients
		for _, n := range models.NutrientCatalog {
			v, _ := ing.Nutrient(n.Key)
			m[n.Key] = v
		}
		out = append(out, m)
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode ingredients: %w", err)
	}
	return string(data), nil
}

func buildFormulatePrompt(profile models.AnimalProfile, ingredientsJSON, constraints string) string {
	if strings.TrimSpace(constraints) == "" {
		constraints = DefaultConstraints
	}
	return fmt.Sprintf(formulatePrompt,
		profile.AnimalType, profile.GrowthStage, profile.TargetProductionLevel,
		ingredientsJSON, constraints)
}

func buildSuggestPrompt(animalType models.AnimalType, growthStage string) string {
	return fmt.Sprintf(suggestPrompt, animalType, growthStage)
}
