package valuation

import (
	"strings"

	"github.com/alejandrodnm/flipscore/internal/domain"
	"github.com/alejandrodnm/flipscore/internal/pricing"
	"github.com/shopspring/decimal"
)

// Confianzas por origen del valor.
const (
	confidenceTableCore  = 0.95 // CPU/GPU encontradas en tabla
	confidenceTableOther = 0.90
	confidenceEstCore    = 0.75 // CPU/GPU estimadas por keywords
	confidenceEstMemory  = 0.80 // RAM/storage: la capacidad manda, el modelo importa poco
	confidenceEstOther   = 0.70
)

// conditionMultipliers se usan solo cuando el valor sale de la heurística.
var (
	defaultConditionCurve = map[domain.ConditionTier]float64{
		domain.ConditionNew: 1.00, domain.ConditionExcellent: 0.88, domain.ConditionGood: 0.75,
		domain.ConditionFair: 0.62, domain.ConditionPoor: 0.45,
	}
	caseConditionCurve = map[domain.ConditionTier]float64{
		domain.ConditionNew: 1.00, domain.ConditionExcellent: 0.90, domain.ConditionGood: 0.80,
		domain.ConditionFair: 0.65, domain.ConditionPoor: 0.50,
	}
	memoryConditionCurve = map[domain.ConditionTier]float64{
		domain.ConditionNew: 1.00, domain.ConditionExcellent: 0.90, domain.ConditionGood: 0.78,
		domain.ConditionFair: 0.65, domain.ConditionPoor: 0.50,
	}
)

// keywordTier asigna un multiplicador [0,1] sobre el rango min–max del tipo.
type keywordTier struct {
	keywords   []string // normalizados; basta con que case uno
	multiplier float64
}

// Las listas van de mayor a menor: gana la primera que case.
var keywordTiers = map[domain.ComponentType][]keywordTier{
	domain.ComponentCPU: {
		{[]string{"I9", "RYZEN9", "THREADRIPPER"}, 0.85},
		{[]string{"I7", "RYZEN7"}, 0.60},
		{[]string{"I5", "RYZEN5"}, 0.35},
		{[]string{"I3", "RYZEN3"}, 0.15},
		{[]string{"CELERON", "PENTIUM", "ATHLON"}, 0.05},
	},
	domain.ComponentGPU: {
		{[]string{"4090", "7900"}, 1.00},
		{[]string{"4080"}, 0.65},
		{[]string{"3090", "6900", "4070"}, 0.45},
		{[]string{"3080", "6800"}, 0.35},
		{[]string{"3070", "6700", "4060"}, 0.25},
		{[]string{"3060", "6600", "2080"}, 0.18},
		{[]string{"1660", "1070", "1080", "2060", "2070"}, 0.10},
	},
	domain.ComponentMotherboard: {
		{[]string{"Z790", "X670"}, 0.60},
		{[]string{"Z690", "X570", "B650"}, 0.45},
		{[]string{"B760", "B660", "B550"}, 0.25},
		{[]string{"H610", "A520", "B450", "H510"}, 0.12},
	},
	domain.ComponentCase: {
		{[]string{"O11", "LIANLI", "HYTE"}, 0.55},
		{[]string{"FRACTAL", "MESHIFY", "NZXT", "CORSAIR", "PHANTEKS"}, 0.40},
	},
	domain.ComponentCooling: {
		{[]string{"360", "KRAKEN", "LIQUID", "AIO"}, 0.45},
		{[]string{"NOCTUA", "240", "DARKROCK"}, 0.35},
		{[]string{"HYPER212", "ARCTIC"}, 0.12},
	},
}

// defaultMultiplier se usa cuando ningún keyword casa.
var defaultMultiplier = map[domain.ComponentType]float64{
	domain.ComponentCPU:         0.25,
	domain.ComponentGPU:         0.12,
	domain.ComponentMotherboard: 0.20,
	domain.ComponentCase:        0.35,
	domain.ComponentCooling:     0.10,
}

// Valuer valora piezas individuales contra el Store de referencia.
type Valuer struct {
	store *pricing.Store
}

// NewValuer crea un Valuer sobre el store dado.
func NewValuer(store *pricing.Store) *Valuer {
	return &Valuer{store: store}
}

// ValueModel valora una pieza a partir solo del texto libre del modelo.
func (v *Valuer) ValueModel(t domain.ComponentType, model string, cond domain.ConditionTier) domain.ComponentValue {
	return v.Value(t, domain.ComponentSpec{Model: model}, cond)
}

// Value devuelve siempre una valoración: si la tabla no conoce la pieza,
// estima por keywords con la confianza penalizada. Nunca falla.
func (v *Valuer) Value(t domain.ComponentType, spec domain.ComponentSpec, cond domain.ConditionTier) domain.ComponentValue {
	if _, ok := defaultConditionCurve[cond]; !ok {
		cond = domain.ConditionGood
	}

	key := spec.LookupKey(t)
	out := domain.ComponentValue{
		Type:      t,
		Name:      spec.Name(t),
		Condition: cond,
	}

	if tier, ok := v.store.Lookup(t, key); ok {
		out.BaseValue = tier.Price(cond)
		out.AdjustedValue = out.BaseValue
		out.Confidence = tableConfidence(t)
		out.Source = domain.SourcePricingTiers
		return out
	}

	out.BaseValue = v.estimate(t, spec, key, cond)
	out.AdjustedValue = out.BaseValue
	out.Confidence = estimateConfidence(t)
	out.Source = domain.SourceEstimate
	return out
}

// estimate interpola dentro del rango conocido del tipo y aplica la curva de condición.
func (v *Valuer) estimate(t domain.ComponentType, spec domain.ComponentSpec, key string, cond domain.ConditionTier) decimal.Decimal {
	r, ok := v.store.Range(t)
	if !ok {
		return decimal.Zero
	}
	m := estimateMultiplier(t, spec, pricing.Normalize(key))
	return domain.Scale(r.Interpolate(m), conditionCurve(t)[cond])
}

// estimateMultiplier elige el multiplicador de rango para una pieza desconocida.
func estimateMultiplier(t domain.ComponentType, spec domain.ComponentSpec, normalized string) float64 {
	switch t {
	case domain.ComponentRAM:
		return ramMultiplier(spec)
	case domain.ComponentStorage:
		return storageMultiplier(spec, normalized)
	case domain.ComponentPSU:
		return psuMultiplier(spec, normalized)
	}

	for _, kt := range keywordTiers[t] {
		for _, kw := range kt.keywords {
			if strings.Contains(normalized, kw) {
				return kt.multiplier
			}
		}
	}
	return defaultMultiplier[t]
}

func ramMultiplier(spec domain.ComponentSpec) float64 {
	var m float64
	switch gb := spec.CapacityGB; {
	case gb >= 64:
		m = 0.70
	case gb >= 32:
		m = 0.35
	case gb >= 16:
		m = 0.18
	case gb >= 8:
		m = 0.07
	default:
		m = 0.05
	}
	if strings.Contains(strings.ToUpper(spec.Kind+spec.Model), "DDR5") {
		m += 0.10
	}
	return m
}

func storageMultiplier(spec domain.ComponentSpec, normalized string) float64 {
	var m float64
	switch gb := spec.CapacityGB; {
	case gb >= 4000:
		m = 0.90
	case gb >= 2000:
		m = 0.45
	case gb >= 1000:
		m = 0.22
	case gb >= 500:
		m = 0.10
	default:
		m = 0.05
	}
	if strings.Contains(normalized, "HDD") {
		m *= 0.5
	}
	return m
}

func psuMultiplier(spec domain.ComponentSpec, normalized string) float64 {
	var m float64
	switch w := spec.Wattage; {
	case w >= 1000:
		m = 0.55
	case w >= 850:
		m = 0.40
	case w >= 750:
		m = 0.30
	case w >= 650:
		m = 0.22
	default:
		m = 0.12
	}
	switch {
	case strings.Contains(normalized, "PLATINUM"), strings.Contains(normalized, "TITANIUM"):
		m += 0.10
	case strings.Contains(normalized, "GOLD"):
		m += 0.05
	}
	return m
}

func conditionCurve(t domain.ComponentType) map[domain.ConditionTier]float64 {
	switch t {
	case domain.ComponentCase:
		return caseConditionCurve
	case domain.ComponentRAM, domain.ComponentStorage:
		return memoryConditionCurve
	}
	return defaultConditionCurve
}

func tableConfidence(t domain.ComponentType) float64 {
	if t == domain.ComponentCPU || t == domain.ComponentGPU {
		return confidenceTableCore
	}
	return confidenceTableOther
}

func estimateConfidence(t domain.ComponentType) float64 {
	switch t {
	case domain.ComponentCPU, domain.ComponentGPU:
		return confidenceEstCore
	case domain.ComponentRAM, domain.ComponentStorage:
		return confidenceEstMemory
	}
	return confidenceEstOther
}
