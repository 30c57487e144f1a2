package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// AnimalType enumerates the supported animal categories.
type AnimalType string

const (
	AnimalPigs       AnimalType = "pigs"
	AnimalLayingHens AnimalType = "laying hens"
	AnimalBroilers   AnimalType = "broilers"
	AnimalPets       AnimalType = "pets"
)

// AnimalTypes lists the supported animal categories.
var AnimalTypes = []AnimalType{AnimalPigs, AnimalLayingHens, AnimalBroilers, AnimalPets}

// Valid reports whether a is one of AnimalTypes.
func (a AnimalType) Valid() bool {
	for _, t := range AnimalTypes {
		if a == t {
			return true
		}
	}
	return false
}

// AnimalProfile describes the animal a diet is formulated for.
type AnimalProfile struct {
	AnimalType            AnimalType `json:"animalType"`
	GrowthStage           string     `json:"growthStage"`
	TargetProductionLevel string     `json:"targetProductionLevel"`
}

// DietComponent is one ingredient share of a proposed diet.
type DietComponent struct {
	Ingredient string  `json:"ingredient"`
	Percentage float64 `json:"percentage"`
}

// IngredientCost is the cost contribution of one ingredient.
type IngredientCost struct {
	Ingredient       string  `json:"ingredient"`
	Percentage       float64 `json:"percentage"`
	PricePerUnit     float64 `json:"pricePerUnit"`
	CostContribution float64 `json:"costContribution"`
}

// CostAnalysis breaks the diet cost down per ingredient.
type CostAnalysis struct {
	IngredientCosts []IngredientCost `json:"ingredientCosts"`
	TotalDietCost   float64          `json:"totalDietCost"`
}

// ChemicalComposition maps nutrient catalog keys to diet-level values.
type ChemicalComposition map[string]float64

// UnmarshalJSON drops null entries, which the collaborator emits for nutrients it could not compute.
func (c *ChemicalComposition) UnmarshalJSON(data []byte) error {
	var raw map[string]*float64
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode chemical composition: %w", err)
	}
	out := make(ChemicalComposition, len(raw))
	for k, v := range raw {
		if v != nil {
			out[k] = *v
		}
	}
	*c = out
	return nil
}

// FormulateDietOutput is the structured result returned by the AI collaborator.
type FormulateDietOutput struct {
	DietComposition     []DietComponent     `json:"dietComposition"`
	ChemicalComposition ChemicalComposition `json:"chemicalComposition"`
	CostAnalysis        *CostAnalysis       `json:"costAnalysis,omitempty"`
	NutritionalAnalysis string              `json:"nutritionalAnalysis"`
}

// CompositionTotal sums the diet percentages. The collaborator is asked for 100.
func (o FormulateDietOutput) CompositionTotal() float64 {
	var total float64
	for _, c := range o.DietComposition {
		total += c.Percentage
	}
	return total
}

// EmptyResult is the placeholder used when imported data carries no result.
func EmptyResult() FormulateDietOutput {
	return FormulateDietOutput{
		DietComposition:     []DietComponent{},
		ChemicalComposition: ChemicalComposition{},
	}
}

// SavedFormulation is an archived formulation with the exact inputs used.
type SavedFormulation struct {
	ID                  string              `json:"id"`
	Name                string              `json:"name"`
	DateSaved           string              `json:"dateSaved"`
	AnimalProfile       AnimalProfile       `json:"animalProfile"`
	FeedIngredientsUsed []FeedIngredient    `json:"feedIngredientsUsed"`
	ConstraintsUsed     string              `json:"constraintsUsed,omitempty"`
	FormulationResult   FormulateDietOutput `json:"formulationResult"`
}

// savedAtLayouts are tried in order. Values without a zone are read as UTC.
var savedAtLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	time.DateTime,
	time.DateOnly,
}

// SavedAt parses DateSaved; unparsable values yield the zero time.
func (s SavedFormulation) SavedAt() time.Time {
	value := strings.TrimSpace(s.DateSaved)
	for _, layout := range savedAtLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	return time.Time{}
}

// FormulationDraft is a formulation about to be saved: no id, no timestamp yet.
type FormulationDraft struct {
	Name                string              `json:"name"`
	AnimalProfile       AnimalProfile       `json:"animalProfile"`
	FeedIngredientsUsed []FeedIngredient    `json:"feedIngredientsUsed"`
	ConstraintsUsed     string              `json:"constraintsUsed,omitempty"`
	FormulationResult   FormulateDietOutput `json:"formulationResult"`
}
