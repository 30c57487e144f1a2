package formulations

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/mamadbah2/agribalance/internal/domain/models"
)

// preferredChemicalOrder puts the most read nutrients first in exports.
var preferredChemicalOrder = []string{
	"protein", "humedad", "grasa", "fiber", "ceniza", "almidon", "energy",
	"energiaAves", "energiaCerdos",
	"calcio", "fosforo", "sodio", "cloro",
	"lisina", "metionina", "metCisTotal", "treonina", "triptofano",
	"valina", "isoleusina", "leusinaTotal",
}

// ChemicalKeys returns the union of chemical composition keys across the
// library, preferred keys first and the rest alphabetically.
func ChemicalKeys(library []models.SavedFormulation) []string {
	rank := make(map[string]int, len(preferredChemicalOrder))
	for i, k := range preferredChemicalOrder {
		rank[k] = i
	}

	seen := make(map[string]bool)
	var keys []string
	for _, f := range library {
		for k := range f.FormulationResult.ChemicalComposition {
			if !seen[k] {
				seen[k] = true
				keys = append(keys, k)
			}
		}
	}

	sort.Slice(keys, func(i, j int) bool {
		ri, iok := rank[keys[i]]
		rj, jok := rank[keys[j]]
		switch {
		case iok && jok:
			return ri < rj
		case iok:
			return true
		case jok:
			return false
		default:
			return keys[i] < keys[j]
		}
	})
	return keys
}

// Rows renders the library as a table: header row first, one row per
// formulation. It returns nil for an empty library.
func Rows(library []models.SavedFormulation) ([][]string, error) {
	if len(library) == 0 {
		return nil, nil
	}
	keys := ChemicalKeys(library)

	header := []string{
		"ID Formulación", "Nombre Formulación", "Fecha Guardado",
		"Perfil Animal: Tipo", "Perfil Animal: Etapa Crecimiento", "Perfil Animal: Nivel Producción",
		"Restricciones Usadas",
		"Ingredientes Usados (JSON)",
		"Resultado - Composición Dieta (JSON)",
	}
	for _, k := range keys {
		header = append(header, "Química - "+k)
	}
	header = append(header,
		"Resultado - Análisis Costos: Ingredientes (JSON)",
		"Resultado - Análisis Costos: Total",
		"Resultado - Análisis Nutricional General",
	)

	rows := [][]string{header}
	for _, f := range library {
		result := f.FormulationResult

		ingredientsJSON, err := compactJSON(nonNilIngredients(f.FeedIngredientsUsed))
		if err != nil {
			return nil, fmt.Errorf("formulation %s ingredients: %w", f.ID, err)
		}
		dietJSON, err := compactJSON(nonNilDiet(result.DietComposition))
		if err != nil {
			return nil, fmt.Errorf("formulation %s diet: %w", f.ID, err)
		}

		row := []string{
			f.ID, f.Name, f.DateSaved,
			string(f.AnimalProfile.AnimalType), f.AnimalProfile.GrowthStage, f.AnimalProfile.TargetProductionLevel,
			f.ConstraintsUsed,
			ingredientsJSON,
			dietJSON,
		}
		for _, k := range keys {
			if v, ok := result.ChemicalComposition[k]; ok {
				row = append(row, strconv.FormatFloat(v, 'f', 2, 64))
			} else {
				row = append(row, "")
			}
		}

		costsJSON, total := "[]", ""
		if result.CostAnalysis != nil {
			costs := result.CostAnalysis.IngredientCosts
			if costs == nil {
				costs = []models.IngredientCost{}
			}
			if costsJSON, err = compactJSON(costs); err != nil {
				return nil, fmt.Errorf("formulation %s costs: %w", f.ID, err)
			}
			total = strconv.FormatFloat(result.CostAnalysis.TotalDietCost, 'f', 2, 64)
		}
		row = append(row, costsJSON, total, flattenLines(result.NutritionalAnalysis))
		rows = append(rows, row)
	}
	return rows, nil
}

// ExportRows renders the current library as a table.
func (s *Service) ExportRows(ctx context.Context) ([][]string, error) {
	return Rows(s.Load(ctx))
}

// ExportCSV renders the library in the tabular export format. An empty
// library exports as the empty string.
func (s *Service) ExportCSV(ctx context.Context) (string, error) {
	rows, err := s.ExportRows(ctx)
	if err != nil || len(rows) == 0 {
		return "", err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.WriteAll(rows); err != nil {
		return "", fmt.Errorf("write formulation csv: %w", err)
	}
	return buf.String(), nil
}

// ExportJSON renders the library in the format ImportJSON accepts.
func (s *Service) ExportJSON(ctx context.Context) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s.Load(ctx)); err != nil {
		return "", fmt.Errorf("encode formulation library: %w", err)
	}
	return buf.String(), nil
}

func compactJSON(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

func flattenLines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", " ")
	return strings.ReplaceAll(s, "\n", " ")
}

func nonNilIngredients(in []models.FeedIngredient) []models.FeedIngredient {
	if in == nil {
		return []models.FeedIngredient{}
	}
	return in
}

func nonNilDiet(in []models.DietComponent) []models.DietComponent {
	if in == nil {
		return []models.DietComponent{}
	}
	return in
}
