// Package formulate builds diet formulation requests for the AI collaborator
// and interprets its answers.
package formulate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/agribalance/internal/domain/models"
	"github.com/mamadbah2/agribalance/pkg/clients/llm"
)

const (
	temperature = 0.3
	// percentageTolerance is how far the composition total may drift from 100.
	percentageTolerance = 0.5
)

// IngredientLookup resolves library ingredients by id.
type IngredientLookup interface {
	Get(ctx context.Context, id string) (models.FeedIngredient, bool)
}

// ProfileLookup resolves requirement profiles by id.
type ProfileLookup interface {
	Get(ctx context.Context, id string) (models.NutritionalRequirementProfile, bool)
}

// ConstraintsRenderer turns a requirement profile into constraints text.
type ConstraintsRenderer func(models.NutritionalRequirementProfile) string

// Request is a formulation request. Ingredients may be given inline, by
// library id, or both.
type Request struct {
	AnimalType            models.AnimalType       `json:"animalType"`
	GrowthStage           string                  `json:"growthStage"`
	TargetProductionLevel string                  `json:"targetProductionLevel"`
	FeedIngredients       []models.IngredientForm `json:"feedIngredients"`
	IngredientIDs         []string                `json:"ingredientIds"`
	RequirementProfileID  string                  `json:"requirementProfileId"`
	Constraints           string                  `json:"constraints"`
}

// Response carries the result with the exact inputs used, ready to be saved.
type Response struct {
	Result              models.FormulateDietOutput `json:"result"`
	AnimalProfile       models.AnimalProfile       `json:"animalProfile"`
	FeedIngredientsUsed []models.FeedIngredient    `json:"feedIngredientsUsed"`
	ConstraintsUsed     string                     `json:"constraintsUsed"`
	Warnings            []string                   `json:"warnings,omitempty"`
}

// Service talks to the AI collaborator.
type Service struct {
	client      llm.Client
	ingredients IngredientLookup
	profiles    ProfileLookup
	render      ConstraintsRenderer
	timeout     time.Duration
	logger      *zap.Logger
}

// Config wires the service dependencies. Client may be nil when no key is
// configured; calls then fail with a credentials error.
type Config struct {
	Client      llm.Client
	Ingredients IngredientLookup
	Profiles    ProfileLookup
	Render      ConstraintsRenderer
	Timeout     time.Duration
	Logger      *zap.Logger
}

// NewService creates a formulation service.
func NewService(cfg Config) *Service {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		client:      cfg.Client,
		ingredients: cfg.Ingredients,
		profiles:    cfg.Profiles,
		render:      cfg.Render,
		timeout:     cfg.Timeout,
		logger:      logger,
	}
}

// Formulate validates req, asks the collaborator for a diet and returns it
// together with the resolved inputs. Validation failures are FieldErrors;
// collaborator failures are *Error.
func (s *Service) Formulate(ctx context.Context, req Request) (Response, error) {
	profile, ingredients, constraints, err := s.resolve(ctx, req)
	if err != nil {
		return Response{}, err
	}

	ingJSON, err := ingredientJSON(ingredients)
	if err != nil {
		return Response{}, err
	}

	text, err := s.generate(ctx, llm.Request{
		Prompt:      buildFormulatePrompt(profile, ingJSON, constraints),
		Schema:      dietOutputSchema(),
		Temperature: temperature,
	})
	if err != nil {
		return Response{}, err
	}

	var result models.FormulateDietOutput
	if err := json.Unmarshal([]byte(text), &result); err != nil {
		s.logger.Error("unparsable formulation response", zap.Error(err))
		return Response{}, &Error{Kind: KindGeneric, Message: messages[KindGeneric], Err: fmt.Errorf("decode formulation: %w", err)}
	}
	if result.DietComposition == nil {
		result.DietComposition = []models.DietComponent{}
	}
	if result.ChemicalComposition == nil {
		result.ChemicalComposition = models.ChemicalComposition{}
	}

	resp := Response{
		Result:              result,
		AnimalProfile:       profile,
		FeedIngredientsUsed: ingredients,
		ConstraintsUsed:     constraints,
		Warnings:            checkResult(result),
	}

	s.logger.Info("diet formulated",
		zap.String("animal_type", string(profile.AnimalType)),
		zap.Int("ingredients", len(ingredients)),
		zap.Int("warnings", len(resp.Warnings)))
	return resp, nil
}

// SuggestIngredients asks the collaborator for common ingredient names.
func (s *Service) SuggestIngredients(ctx context.Context, animalType models.AnimalType, growthStage string) ([]string, error) {
	errs := models.FieldErrors{}
	if !animalType.Valid() {
		errs.Add("animalType", "animal type is required")
	}
	if strings.TrimSpace(growthStage) == "" {
		errs.Add("growthStage", "growth stage is required")
	}
	if err := errs.OrNil(); err != nil {
		return nil, err
	}

	text, err := s.generate(ctx, llm.Request{
		Prompt: buildSuggestPrompt(animalType, strings.TrimSpace(growthStage)),
		Schema: suggestionsSchema(),
	})
	if err != nil {
		return nil, err
	}

	var out struct {
		SuggestedIngredients []string `json:"suggestedIngredients"`
	}
	if err := json.Unmarshal([]byte(text), &out); err != nil {
		return nil, &Error{Kind: KindGeneric, Message: messages[KindGeneric], Err: fmt.Errorf("decode suggestions: %w", err)}
	}
	if out.SuggestedIngredients == nil {
		out.SuggestedIngredients = []string{}
	}
	return out.SuggestedIngredients, nil
}

func (s *Service) generate(ctx context.Context, req llm.Request) (string, error) {
	if s.client == nil {
		return "", classify(errNoClient)
	}
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	text, err := s.client.GenerateJSON(ctx, req)
	if err != nil {
		classified := classify(err)
		s.logger.Error("ai collaborator call failed", zap.String("kind", string(classified.Kind)), zap.Error(err))
		return "", classified
	}
	return text, nil
}

// resolve validates the request and gathers every input the prompt needs.
func (s *Service) resolve(ctx context.Context, req Request) (models.AnimalProfile, []models.FeedIngredient, string, error) {
	errs := models.FieldErrors{}

	profile := models.AnimalProfile{
		AnimalType:            req.AnimalType,
		GrowthStage:           strings.TrimSpace(req.GrowthStage),
		TargetProductionLevel: strings.TrimSpace(req.TargetProductionLevel),
	}
	if !profile.AnimalType.Valid() {
		errs.Add("animalType", "animal type is required")
	}
	if profile.GrowthStage == "" {
		errs.Add("growthStage", "growth stage is required")
	}
	if profile.TargetProductionLevel == "" {
		errs.Add("targetProductionLevel", "target production level is required")
	}

	ingredients := make([]models.FeedIngredient, 0, len(req.FeedIngredients)+len(req.IngredientIDs))
	for i, form := range req.FeedIngredients {
		ing, err := models.ValidateIngredientForm(form)
		if err != nil {
			var fe models.FieldErrors
			if errors.As(err, &fe) {
				for field, msg := range fe {
					errs.Add(fmt.Sprintf("feedIngredients[%d].%s", i, field), msg)
				}
			}
			continue
		}
		ingredients = append(ingredients, ing)
	}
	for i, id := range req.IngredientIDs {
		ing, ok := s.lookupIngredient(ctx, id)
		if !ok {
			errs.Add(fmt.Sprintf("ingredientIds[%d]", i), "unknown ingredient")
			continue
		}
		ingredients = append(ingredients, ing.Clone())
	}
	if len(req.FeedIngredients)+len(req.IngredientIDs) == 0 {
		errs.Add("feedIngredients", "at least one ingredient is required")
	}

	constraints := strings.TrimSpace(req.Constraints)
	if req.RequirementProfileID != "" {
		rp, ok := s.lookupProfile(ctx, req.RequirementProfileID)
		switch {
		case !ok:
			errs.Add("requirementProfileId", "unknown requirement profile")
		case s.render != nil:
			if constraints != "" {
				constraints += "\n\n"
			}
			constraints += s.render(rp)
		}
	}

	if err := errs.OrNil(); err != nil {
		return models.AnimalProfile{}, nil, "", err
	}
	return profile, ingredients, constraints, nil
}

func (s *Service) lookupIngredient(ctx context.Context, id string) (models.FeedIngredient, bool) {
	if s.ingredients == nil {
		return models.FeedIngredient{}, false
	}
	return s.ingredients.Get(ctx, id)
}

func (s *Service) lookupProfile(ctx context.Context, id string) (models.NutritionalRequirementProfile, bool) {
	if s.profiles == nil {
		return models.NutritionalRequirementProfile{}, false
	}
	return s.profiles.Get(ctx, id)
}

func checkResult(result models.FormulateDietOutput) []string {
	var warnings []string
	if total := result.CompositionTotal(); math.Abs(total-100) > percentageTolerance {
		warnings = append(warnings, fmt.Sprintf("diet composition sums to %.2f%%, not 100%%", total))
	}
	if result.CostAnalysis == nil {
		warnings = append(warnings, "the response has no cost analysis")
	}
	return warnings
}
