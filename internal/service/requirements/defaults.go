package requirements

import "github.com/mamadbah2/agribalance/internal/domain/models"

func target(v float64, unit string) models.NutrientRequirement {
	return models.NutrientRequirement{Target: models.Float(v), Unit: unit}
}

func between(min, max float64, unit string) models.NutrientRequirement {
	return models.NutrientRequirement{Min: models.Float(min), Max: models.Float(max), Unit: unit}
}

// Defaults returns a fresh copy of the three built-in profiles.
func Defaults() []models.NutritionalRequirementProfile {
	return []models.NutritionalRequirementProfile{
		{
			ID:                     "broiler_starter_0_2w",
			ProfileDisplayName:     "Pollo Engorde - Iniciador (0-2 sem)",
			AnimalType:             string(models.AnimalBroilers),
			GrowthStageDescription: "0-2 semanas",
			Notes:                  "Requerimientos típicos para pollos de engorde en la fase de inicio.",
			Nutrients: map[string]models.NutrientRequirement{
				"Energía Metabolizable Aves (kcal/kg)": target(3000, "kcal/kg"),
				"Proteína Cruda (%)":                   between(22, 23, "%"),
				"Lisina Total (%)":                     target(1.25, "%"),
				"Metionina Total (%)":                  target(0.55, "%"),
				"Calcio (%)":                           between(0.9, 1.0, "%"),
				"Fósforo Disponible (%)":               between(0.45, 0.5, "%"),
			},
		},
		{
			ID:                     "laying_hens_peak",
			ProfileDisplayName:     "Gallina Ponedora - Pico Postura",
			AnimalType:             string(models.AnimalLayingHens),
			GrowthStageDescription: "Pico de producción (aprox. 25-50 semanas)",
			Notes:                  "Requerimientos para gallinas ponedoras durante su pico de producción.",
			Nutrients: map[string]models.NutrientRequirement{
				"Energía Metabolizable Aves (kcal/kg)": target(2800, "kcal/kg"),
				"Proteína Cruda (%)":                   between(17, 18, "%"),
				"Lisina Total (%)":                     target(0.85, "%"),
				"Metionina Total (%)":                  target(0.40, "%"),
				"Calcio (%)":                           between(3.8, 4.2, "%"),
			},
		},
		{
			ID:                     "pig_starter_5_10kg",
			ProfileDisplayName:     "Cerdo Iniciador (5-10 kg)",
			AnimalType:             string(models.AnimalPigs),
			GrowthStageDescription: "5-10 kg de peso vivo",
			Notes:                  "Requerimientos para lechones recién destetados.",
			Nutrients: map[string]models.NutrientRequirement{
				"Energía Digestible Cerdos (kcal/kg)": target(3450, "kcal/kg"),
				"Proteína Cruda (%)":                  between(20, 22, "%"),
				"Lisina Digestible SID (%)":           target(1.35, "%"),
				"Calcio (%)":                          target(0.80, "%"),
			},
		},
	}
}
