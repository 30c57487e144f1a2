package models

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// FeedIngredient is a reusable feed component with a price and nutrient profile.
// Nutrients holds only the catalog values that are present.
type FeedIngredient struct {
	ID             string
	Name           string
	Price          float64
	Nutrients      map[string]float64
	OtherNutrients string
}

// Nutrient returns the value stored for key, if any.
func (f FeedIngredient) Nutrient(key string) (float64, bool) {
	v, ok := f.Nutrients[key]
	return v, ok
}

// SetNutrient stores value under key.
func (f *FeedIngredient) SetNutrient(key string, value float64) {
	if f.Nutrients == nil {
		f.Nutrients = make(map[string]float64)
	}
	f.Nutrients[key] = value
}

// Clone returns a deep copy.
func (f FeedIngredient) Clone() FeedIngredient {
	out := f
	if f.Nutrients != nil {
		out.Nutrients = make(map[string]float64, len(f.Nutrients))
		for k, v := range f.Nutrients {
			out.Nutrients[k] = v
		}
	}
	return out
}

// MarshalJSON writes the flat stored shape: identity fields next to the nutrient keys.
func (f FeedIngredient) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(f.Nutrients)+4)
	for k, v := range f.Nutrients {
		out[k] = v
	}
	out["id"] = f.ID
	out["name"] = f.Name
	out["price"] = f.Price
	if f.OtherNutrients != "" {
		out["otherNutrients"] = f.OtherNutrients
	}
	return json.Marshal(out)
}

// UnmarshalJSON reads the flat stored shape. Unknown keys are ignored and
// null nutrient values are treated as absent.
func (f *FeedIngredient) UnmarshalJSON(data []byte) error {
	form, err := decodeIngredientFields(data)
	if err != nil {
		return err
	}

	price, err := form.Price.Parse()
	if err != nil {
		return fmt.Errorf("ingredient %q price: %w", form.Name, err)
	}

	out := FeedIngredient{
		ID:             form.ID,
		Name:           form.Name,
		OtherNutrients: form.OtherNutrients,
	}
	if price != nil {
		out.Price = *price
	}
	for key, raw := range form.Nutrients {
		value, err := raw.Parse()
		if err != nil {
			return fmt.Errorf("ingredient %q %s: %w", form.Name, key, err)
		}
		if value != nil {
			out.SetNutrient(key, *value)
		}
	}

	*f = out
	return nil
}

// IngredientForm is the raw, not yet validated representation of an
// ingredient as submitted by a user or read from an import file.
type IngredientForm struct {
	ID             string
	Name           string
	Price          NumberInput
	Nutrients      map[string]NumberInput
	OtherNutrients string
}

// UnmarshalJSON reads the same flat shape as FeedIngredient, with lenient numbers.
func (f *IngredientForm) UnmarshalJSON(data []byte) error {
	form, err := decodeIngredientFields(data)
	if err != nil {
		return err
	}
	*f = form
	return nil
}

func decodeIngredientFields(data []byte) (IngredientForm, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return IngredientForm{}, fmt.Errorf("decode ingredient: %w", err)
	}

	var form IngredientForm
	for key, value := range raw {
		switch {
		case key == "id":
			if err := decodeOptionalString(value, &form.ID); err != nil {
				return IngredientForm{}, fmt.Errorf("decode ingredient id: %w", err)
			}
		case key == "name":
			if err := decodeOptionalString(value, &form.Name); err != nil {
				return IngredientForm{}, fmt.Errorf("decode ingredient name: %w", err)
			}
		case key == "otherNutrients":
			if err := decodeOptionalString(value, &form.OtherNutrients); err != nil {
				return IngredientForm{}, fmt.Errorf("decode ingredient otherNutrients: %w", err)
			}
		case key == "price":
			if err := json.Unmarshal(value, &form.Price); err != nil {
				return IngredientForm{}, fmt.Errorf("decode ingredient price: %w", err)
			}
		case IsNutrientKey(key):
			var n NumberInput
			if err := json.Unmarshal(value, &n); err != nil {
				return IngredientForm{}, fmt.Errorf("decode ingredient %s: %w", key, err)
			}
			if form.Nutrients == nil {
				form.Nutrients = make(map[string]NumberInput)
			}
			form.Nutrients[key] = n
		}
	}
	return form, nil
}

func decodeOptionalString(raw json.RawMessage, dst *string) error {
	if string(raw) == "null" {
		return nil
	}
	return json.Unmarshal(raw, dst)
}

// ValidateIngredientForm is the single coercion point from raw ingredient
// input into a FeedIngredient. It reports every failing field at once.
func ValidateIngredientForm(form IngredientForm) (FeedIngredient, error) {
	errs := FieldErrors{}
	out := FeedIngredient{
		ID:             strings.TrimSpace(form.ID),
		Name:           strings.TrimSpace(form.Name),
		OtherNutrients: form.OtherNutrients,
	}

	if out.Name == "" {
		errs.Add("name", "ingredient name is required")
	}

	price, err := form.Price.Parse()
	switch {
	case err != nil:
		errs.Add("price", err.Error())
	case price != nil && *price < 0:
		errs.Add("price", "price must be non-negative")
	case price != nil:
		out.Price = *price
	}

	for key, raw := range form.Nutrients {
		if !IsNutrientKey(key) {
			errs.Add(key, "unknown nutrient")
			continue
		}
		value, err := raw.Parse()
		if err != nil {
			errs.Add(key, err.Error())
			continue
		}
		if value != nil {
			out.SetNutrient(key, *value)
		}
	}

	if err := errs.OrNil(); err != nil {
		return FeedIngredient{}, err
	}
	return out, nil
}

// ValidateIngredient checks an already typed ingredient against the same rules.
func ValidateIngredient(ing FeedIngredient) error {
	errs := FieldErrors{}
	if strings.TrimSpace(ing.Name) == "" {
		errs.Add("name", "ingredient name is required")
	}
	if math.IsNaN(ing.Price) || math.IsInf(ing.Price, 0) {
		errs.Add("price", ErrNotFinite.Error())
	} else if ing.Price < 0 {
		errs.Add("price", "price must be non-negative")
	}
	for key, v := range ing.Nutrients {
		if !IsNutrientKey(key) {
			errs.Add(key, "unknown nutrient")
			continue
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			errs.Add(key, ErrNotFinite.Error())
		}
	}
	return errs.OrNil()
}
