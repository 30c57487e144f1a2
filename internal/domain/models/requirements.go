package models

import (
	"fmt"
	"strings"
)

// NutrientRequirement is a target and/or range for one nutrient.
type NutrientRequirement struct {
	Target *float64 `json:"target,omitempty"`
	Min    *float64 `json:"min,omitempty"`
	Max    *float64 `json:"max,omitempty"`
	Unit   string   `json:"unit"`
}

// NutritionalRequirementProfile is a named set of nutrient requirements for an
// animal type and growth stage. AnimalType is free text for imported data.
type NutritionalRequirementProfile struct {
	ID                     string                         `json:"id"`
	ProfileDisplayName     string                         `json:"profileDisplayName"`
	AnimalType             string                         `json:"animalType"`
	GrowthStageDescription string                         `json:"growthStageDescription"`
	Notes                  string                         `json:"notes,omitempty"`
	Nutrients              map[string]NutrientRequirement `json:"nutrients"`
}

// NutrientEntryForm is one editable row of a requirement profile form.
// FieldID only identifies the row while editing.
type NutrientEntryForm struct {
	FieldID      string      `json:"fieldId"`
	NutrientName string      `json:"nutrientName"`
	Target       NumberInput `json:"target"`
	Min          NumberInput `json:"min"`
	Max          NumberInput `json:"max"`
	Unit         string      `json:"unit"`
}

// RequirementProfileForm is the editable array-of-entries representation of a profile.
type RequirementProfileForm struct {
	ID                     string              `json:"id,omitempty"`
	ProfileDisplayName     string              `json:"profileDisplayName"`
	AnimalType             string              `json:"animalType"`
	GrowthStageDescription string              `json:"growthStageDescription"`
	Notes                  string              `json:"notes"`
	NutrientEntries        []NutrientEntryForm `json:"nutrientEntries"`
}

// ValidateRequirementForm checks required fields and that nutrient names are
// unique within the profile. Numeric fields are not checked here: values that
// do not parse are stored as absent.
func ValidateRequirementForm(form RequirementProfileForm) error {
	errs := FieldErrors{}

	if strings.TrimSpace(form.ProfileDisplayName) == "" {
		errs.Add("profileDisplayName", "profile name is required")
	}
	if !AnimalType(form.AnimalType).Valid() {
		errs.Add("animalType", "animal type is required")
	}
	if strings.TrimSpace(form.GrowthStageDescription) == "" {
		errs.Add("growthStageDescription", "growth stage description is required")
	}
	if len(form.NutrientEntries) == 0 {
		errs.Add("nutrientEntries", "at least one nutrient is required")
	}

	seen := make(map[string]bool, len(form.NutrientEntries))
	for i, entry := range form.NutrientEntries {
		name := strings.TrimSpace(entry.NutrientName)
		if name == "" {
			errs.Add(fmt.Sprintf("nutrientEntries[%d].nutrientName", i), "nutrient name is required")
		}
		if strings.TrimSpace(entry.Unit) == "" {
			errs.Add(fmt.Sprintf("nutrientEntries[%d].unit", i), "unit is required")
		}
		if name == "" {
			continue
		}
		if seen[name] {
			errs.Add("nutrientEntries", "nutrient names must be unique within a profile")
		}
		seen[name] = true
	}

	return errs.OrNil()
}
