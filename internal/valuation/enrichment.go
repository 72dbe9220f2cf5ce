package valuation

// enrichment.go: capas opcionales sobre el FMV: seasonal → regional → brand → comparables.
//
// No forman parte del FMV base. Cada capa recibe el valor que deja la anterior y
// devuelve {Adjustment, AdjustedValue, Delta} para poder auditar cuánto aportó.

import (
	"fmt"
	"strings"
	"time"

	"github.com/alejandrodnm/flipscore/internal/domain"
	"github.com/alejandrodnm/flipscore/internal/pricing"
	"github.com/shopspring/decimal"
)

const unknownStateFactor = 0.95

// seasonalFactors: picos en Nov/Dic, valles en Ene/Jun/Jul.
var seasonalFactors = map[time.Month]float64{
	time.January:   0.95,
	time.February:  0.97,
	time.March:     1.00,
	time.April:     1.00,
	time.May:       0.98,
	time.June:      0.95,
	time.July:      0.95,
	time.August:    1.03, // vuelta al cole
	time.September: 1.00,
	time.October:   1.02,
	time.November:  1.08,
	time.December:  1.10,
}

// regionalFactors por código de estado de 2 letras.
var regionalFactors = map[string]float64{
	"CA": 1.10, "WA": 1.08, "NY": 1.08, "MA": 1.08,
	"TX": 1.03, "CO": 1.03, "IL": 1.02, "NJ": 1.02, "VA": 1.02,
	"FL": 1.00, "GA": 1.00, "NC": 1.00, "OR": 1.00, "AZ": 1.00, "PA": 1.00,
	"OH": 0.97, "MI": 0.97, "MN": 0.98, "UT": 0.98,
	"WV": 0.90, "MS": 0.90, "AR": 0.90, "VT": 0.90, "AK": 0.90,
	"WY": 0.88, "MT": 0.88, "ND": 0.88, "SD": 0.88,
}

// brandPremium es una entrada de la tabla de marcas. Las entradas más
// específicas van primero: gana la primera que case.
type brandPremium struct {
	brand  string // normalizado
	factor float64
}

var brandPremiums = map[domain.ComponentType][]brandPremium{
	domain.ComponentGPU: {
		{"ROGSTRIX", 1.08}, {"STRIX", 1.07}, {"FOUNDERS", 1.05}, {"EVGA", 1.05},
		{"AORUS", 1.04}, {"SUPRIM", 1.04}, {"MSI", 1.03}, {"ASUS", 1.03},
		{"SAPPHIRE", 1.03}, {"ZOTAC", 0.98},
	},
	domain.ComponentMotherboard: {
		{"ROG", 1.05}, {"AORUS", 1.03}, {"ASUS", 1.02}, {"MSI", 1.02},
	},
	domain.ComponentPSU: {
		{"SEASONIC", 1.05}, {"CORSAIR", 1.03}, {"EVGA", 1.02},
	},
	domain.ComponentCase: {
		{"LIANLI", 1.05}, {"FRACTAL", 1.04}, {"NZXT", 1.03},
	},
	domain.ComponentCooling: {
		{"NOCTUA", 1.06}, {"ARCTIC", 1.02},
	},
}

// EnrichmentRequest es la entrada de Enrich.
type EnrichmentRequest struct {
	Value       decimal.Decimal
	Month       time.Month
	State       string
	Category    domain.ComponentType
	Brand       string
	Comparables []decimal.Decimal // precios de venta observados; vacío = sin blend
}

// Seasonal devuelve el factor del mes. Un mes fuera de rango no se aplica.
func Seasonal(month time.Month) domain.Adjustment {
	factor, ok := seasonalFactors[month]
	if !ok {
		return domain.NewAdjustment(domain.AdjustmentSeasonal, domain.ScopeSubtotal, 1, false, "unknown month")
	}
	return domain.NewAdjustment(domain.AdjustmentSeasonal, domain.ScopeSubtotal, factor, true,
		"seasonal demand in "+month.String())
}

// Regional devuelve el factor del estado. Estado vacío no se aplica;
// estado desconocido usa 0.95.
func Regional(state string) domain.Adjustment {
	code := strings.ToUpper(strings.TrimSpace(state))
	if code == "" {
		return domain.NewAdjustment(domain.AdjustmentRegional, domain.ScopeSubtotal, 1, false, "no location state")
	}
	factor, ok := regionalFactors[code]
	if !ok {
		return domain.NewAdjustment(domain.AdjustmentRegional, domain.ScopeSubtotal, unknownStateFactor, true,
			fmt.Sprintf("unknown market %s", code))
	}
	return domain.NewAdjustment(domain.AdjustmentRegional, domain.ScopeSubtotal, factor, true,
		fmt.Sprintf("regional market %s", code))
}

// Brand devuelve la prima de marca para la categoría. Categoría o marca
// desconocidas no se aplican.
func Brand(category domain.ComponentType, brand string) domain.Adjustment {
	normalized := pricing.Normalize(brand)
	if normalized != "" {
		for _, bp := range brandPremiums[category] {
			if strings.Contains(normalized, bp.brand) {
				adj := domain.NewAdjustment(domain.AdjustmentBrand, domain.ScopeSubtotal, bp.factor, true,
					fmt.Sprintf("%s brand premium (%s)", category, bp.brand))
				adj.Target = category
				return adj
			}
		}
	}
	return domain.NewAdjustment(domain.AdjustmentBrand, domain.ScopeSubtotal, 1, false, "no recognized brand")
}

// Enrich aplica las capas en orden y devuelve el detalle de cada una.
func Enrich(req EnrichmentRequest) domain.EnrichmentResult {
	out := domain.EnrichmentResult{Input: req.Value}
	value := req.Value

	for _, adj := range []domain.Adjustment{
		Seasonal(req.Month),
		Regional(req.State),
		Brand(req.Category, req.Brand),
	} {
		layer := applyLayer(value, adj)
		out.Layers = append(out.Layers, layer)
		value = layer.AdjustedValue
	}

	if layer, ok := blendComparables(value, req.Comparables); ok {
		out.Layers = append(out.Layers, layer)
		value = layer.AdjustedValue
	}

	out.Final = value
	return out
}

// EnrichFMV construye la petición a partir del FMV y del anuncio. La prima
// de marca se toma de la GPU, que es la pieza que más pesa en el precio.
func EnrichFMV(fmv domain.FMVResult, listing domain.Listing, month time.Month, comps []decimal.Decimal) domain.EnrichmentResult {
	req := EnrichmentRequest{
		Value:       fmv.Total,
		Month:       month,
		State:       listing.Location.State,
		Comparables: comps,
	}
	if gpu := listing.Components.GPU; gpu != nil {
		req.Category = domain.ComponentGPU
		req.Brand = gpu.Brand + " " + gpu.Model
	}
	return Enrich(req)
}

func applyLayer(value decimal.Decimal, adj domain.Adjustment) domain.LayerResult {
	adjusted := value
	if adj.Applied {
		adjusted = domain.Scale(value, adj.Factor)
	}
	return domain.LayerResult{
		Adjustment:    adj,
		AdjustedValue: adjusted,
		Delta:         adjusted.Sub(value),
	}
}
