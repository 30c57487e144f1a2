package models

// Nutrient describes one entry of the ingredient nutrient catalog.
type Nutrient struct {
	Key    string // storage and wire key
	Header string // tabular export column
	Label  string
	Unit   string
}

// NutrientCatalog lists every nutrient an ingredient may carry, in the
// canonical column order of the tabular ingredient format.
var NutrientCatalog = []Nutrient{
	{Key: "protein", Header: "Proteína (%)", Label: "Crude protein", Unit: "%"},
	{Key: "humedad", Header: "Humedad (%)", Label: "Moisture", Unit: "%"},
	{Key: "grasa", Header: "Grasa (%)", Label: "Fat", Unit: "%"},
	{Key: "fiber", Header: "Fibra (%)", Label: "Crude fiber", Unit: "%"},
	{Key: "ceniza", Header: "Ceniza (%)", Label: "Ash", Unit: "%"},
	{Key: "almidon", Header: "Almidón (%)", Label: "Starch", Unit: "%"},
	{Key: "fdn", Header: "FDN (%)", Label: "Neutral detergent fiber", Unit: "%"},
	{Key: "fda", Header: "FDA (%)", Label: "Acid detergent fiber", Unit: "%"},
	{Key: "energy", Header: "Energía General (kcal/kg)", Label: "Gross energy", Unit: "kcal/kg"},
	{Key: "energiaAves", Header: "Energía Aves (kcal/kg)", Label: "Metabolizable energy (poultry)", Unit: "kcal/kg"},
	{Key: "energiaCerdos", Header: "Energía Cerdos (kcal/kg)", Label: "Digestible energy (swine)", Unit: "kcal/kg"},
	{Key: "lactosa", Header: "Lactosa (%)", Label: "Lactose", Unit: "%"},
	{Key: "calcio", Header: "Calcio (%)", Label: "Calcium", Unit: "%"},
	{Key: "fosforo", Header: "Fósforo Total (%)", Label: "Total phosphorus", Unit: "%"},
	{Key: "zinc", Header: "Zinc (%)", Label: "Zinc", Unit: "%"},
	{Key: "cobre", Header: "Cobre (%)", Label: "Copper", Unit: "%"},
	{Key: "hierro", Header: "Hierro (%)", Label: "Iron", Unit: "%"},
	{Key: "manganeso", Header: "Manganeso (%)", Label: "Manganese", Unit: "%"},
	{Key: "cloro", Header: "Cloro (%)", Label: "Chlorine", Unit: "%"},
	{Key: "sodio", Header: "Sodio (%)", Label: "Sodium", Unit: "%"},
	{Key: "azufre", Header: "Azufre (%)", Label: "Sulfur", Unit: "%"},
	{Key: "potasio", Header: "Potasio (%)", Label: "Potassium", Unit: "%"},
	{Key: "magnesio", Header: "Magnesio (%)", Label: "Magnesium", Unit: "%"},
	{Key: "fosforoFitico", Header: "Fósforo Fítico (%)", Label: "Phytate phosphorus", Unit: "%"},
	{Key: "lisina", Header: "Lisina Total (%)", Label: "Total lysine", Unit: "%"},
	{Key: "lisinaDigestible", Header: "Lisina Digestible (%)", Label: "Digestible lysine", Unit: "%"},
	{Key: "metionina", Header: "Metionina Total (%)", Label: "Total methionine", Unit: "%"},
	{Key: "metioninaDigestible", Header: "Metionina Digestible (%)", Label: "Digestible methionine", Unit: "%"},
	{Key: "metCisTotal", Header: "Met+Cis Total (%)", Label: "Total Met+Cys", Unit: "%"},
	{Key: "metCisDigestible", Header: "Met+Cis Digestible (%)", Label: "Digestible Met+Cys", Unit: "%"},
	{Key: "triptofano", Header: "Triptófano Total (%)", Label: "Total tryptophan", Unit: "%"},
	{Key: "argininaTotal", Header: "Arginina Total (%)", Label: "Total arginine", Unit: "%"},
	{Key: "argininaDigestible", Header: "Arginina Digestible (%)", Label: "Digestible arginine", Unit: "%"},
	{Key: "leusinaTotal", Header: "Leucina Total (%)", Label: "Total leucine", Unit: "%"},
	{Key: "leusinaDigestible", Header: "Leucina Digestible (%)", Label: "Digestible leucine", Unit: "%"},
	{Key: "valina", Header: "Valina Total (%)", Label: "Total valine", Unit: "%"},
	{Key: "valinaDigestible", Header: "Valina Digestible (%)", Label: "Digestible valine", Unit: "%"},
	{Key: "treonina", Header: "Treonina Total (%)", Label: "Total threonine", Unit: "%"},
	{Key: "isoleusina", Header: "Isoleucina Total (%)", Label: "Total isoleucine", Unit: "%"},
}

var nutrientIndex = func() map[string]int {
	idx := make(map[string]int, len(NutrientCatalog))
	for i, n := range NutrientCatalog {
		idx[n.Key] = i
	}
	return idx
}()

// IsNutrientKey reports whether key belongs to the nutrient catalog.
func IsNutrientKey(key string) bool {
	_, ok := nutrientIndex[key]
	return ok
}

// NutrientKeys returns the catalog keys in canonical order.
func NutrientKeys() []string {
	keys := make([]string, len(NutrientCatalog))
	for i, n := range NutrientCatalog {
		keys[i] = n.Key
	}
	return keys
}
