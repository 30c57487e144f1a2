package ingredients

import "github.com/mamadbah2/agribalance/internal/domain/models"

type seed struct {
	id        string
	name      string
	price     float64
	nutrients map[string]float64
	other     string
}

// Typical feed-table values per kg as fed.
var predefined = []seed{
	{
		id: "predef_maiz_amarillo", name: "Maíz amarillo", price: 0.28,
		nutrients: map[string]float64{
			"protein": 8.0, "humedad": 12.0, "grasa": 3.8, "fiber": 2.2, "ceniza": 1.3, "almidon": 62.0,
			"fdn": 9.5, "fda": 2.8, "energiaAves": 3350, "energiaCerdos": 3500,
			"calcio": 0.02, "fosforo": 0.26, "fosforoFitico": 0.19, "sodio": 0.02, "cloro": 0.05, "potasio": 0.33,
			"lisina": 0.24, "lisinaDigestible": 0.20, "metionina": 0.17, "metioninaDigestible": 0.16,
			"metCisTotal": 0.36, "metCisDigestible": 0.32, "triptofano": 0.06, "treonina": 0.29,
		},
	},
	{
		id: "predef_harina_soya_46", name: "Harina de soya 46%", price: 0.52,
		nutrients: map[string]float64{
			"protein": 46.0, "humedad": 11.5, "grasa": 1.5, "fiber": 5.5, "ceniza": 6.3,
			"fdn": 12.0, "fda": 6.5, "energiaAves": 2280, "energiaCerdos": 3490,
			"calcio": 0.30, "fosforo": 0.65, "fosforoFitico": 0.40, "sodio": 0.02, "cloro": 0.05, "potasio": 2.10,
			"lisina": 2.85, "lisinaDigestible": 2.55, "metionina": 0.64, "metioninaDigestible": 0.58,
			"metCisTotal": 1.33, "metCisDigestible": 1.17, "triptofano": 0.62, "treonina": 1.80,
			"argininaTotal": 3.40, "valina": 2.20, "isoleusina": 2.10, "leusinaTotal": 3.55,
		},
	},
	{
		id: "predef_sorgo", name: "Sorgo", price: 0.24,
		nutrients: map[string]float64{
			"protein": 9.0, "humedad": 12.0, "grasa": 2.9, "fiber": 2.5, "ceniza": 1.6, "almidon": 63.0,
			"energiaAves": 3250, "energiaCerdos": 3380,
			"calcio": 0.03, "fosforo": 0.28, "lisina": 0.21, "metionina": 0.15, "treonina": 0.30, "triptofano": 0.10,
		},
	},
	{
		id: "predef_salvado_trigo", name: "Salvado de trigo", price: 0.18,
		nutrients: map[string]float64{
			"protein": 15.5, "humedad": 11.0, "grasa": 4.0, "fiber": 10.5, "ceniza": 5.8,
			"fdn": 42.0, "fda": 13.0, "energiaAves": 1300, "energiaCerdos": 2450,
			"calcio": 0.12, "fosforo": 1.10, "fosforoFitico": 0.85, "magnesio": 0.55,
			"lisina": 0.60, "metionina": 0.22, "treonina": 0.48,
		},
	},
	{
		id: "predef_aceite_soya", name: "Aceite de soya", price: 1.10,
		nutrients: map[string]float64{"grasa": 99.0, "energiaAves": 8800, "energiaCerdos": 8750},
	},
	{
		id: "predef_carbonato_calcio", name: "Carbonato de calcio", price: 0.06,
		nutrients: map[string]float64{"humedad": 0.5, "ceniza": 98.0, "calcio": 38.0},
	},
	{
		id: "predef_fosfato_dicalcico", name: "Fosfato dicálcico", price: 0.75,
		nutrients: map[string]float64{"ceniza": 85.0, "calcio": 22.0, "fosforo": 18.5},
	},
	{
		id: "predef_sal_comun", name: "Sal común", price: 0.10,
		nutrients: map[string]float64{"sodio": 39.0, "cloro": 60.0},
	},
	{
		id: "predef_dl_metionina", name: "DL-Metionina 99%", price: 3.80,
		nutrients: map[string]float64{"protein": 58.0, "metionina": 99.0, "metioninaDigestible": 99.0, "metCisTotal": 99.0, "metCisDigestible": 99.0},
	},
	{
		id: "predef_l_lisina", name: "L-Lisina HCl 78%", price: 2.20,
		nutrients: map[string]float64{"protein": 95.0, "lisina": 78.0, "lisinaDigestible": 78.0},
		other:     "Aminoácido sintético",
	},
}

// Defaults returns a fresh copy of the built-in ingredient set.
func Defaults() []models.FeedIngredient {
	out := make([]models.FeedIngredient, 0, len(predefined))
	for _, s := range predefined {
		ing := models.FeedIngredient{ID: s.id, Name: s.name, Price: s.price, OtherNutrients: s.other}
		for k, v := range s.nutrients {
			ing.SetNutrient(k, v)
		}
		out = append(out, ing)
	}
	return out
}
