package domain

import "github.com/shopspring/decimal"

// PricingStrategy define el sesgo de precios de reventa y de oferta.
type PricingStrategy string

const (
	StrategyAggressive   PricingStrategy = "aggressive"
	StrategyFair         PricingStrategy = "fair"
	StrategyConservative PricingStrategy = "conservative"
)

// Valid devuelve true si es una de las tres estrategias conocidas.
func (s PricingStrategy) Valid() bool {
	switch s {
	case StrategyAggressive, StrategyFair, StrategyConservative:
		return true
	}
	return false
}

// Claves del parts-bin usadas por el cálculo de refurb.
const (
	PartCleaning     = "cleaning"
	PartThermalPaste = "thermal_paste"
	PartSSD          = "ssd"
	PartRAMStick     = "ram_stick"
)

// Settings es un snapshot inmutable de la configuración del usuario.
// Actualizar settings = construir un valor nuevo, nunca mutar campos.
type Settings struct {
	Geography Geography
	Financial Financial
	Strategy  PricingStrategy
	PartsBin  map[string]decimal.Decimal
}

// Geography contiene los parámetros de desplazamiento.
type Geography struct {
	MaxDistanceMiles float64
	GasCostPerMile   decimal.Decimal
	AvgSpeedMPH      float64
}

// Financial contiene los parámetros de coste y objetivos de beneficio.
// Los porcentajes son fracciones (0.08 = 8%).
type Financial struct {
	LaborRate         decimal.Decimal // $/hora
	TaxRate           float64
	MarketplaceFeePct float64
	TargetMarginPct   float64
	MinProfit         decimal.Decimal
	HoldingCostPerDay decimal.Decimal
	MarkupPct         float64
	RefurbLaborHours  float64
}

// Part devuelve el coste de una pieza del parts-bin, o cero si no está.
func (s Settings) Part(name string) decimal.Decimal {
	if v, ok := s.PartsBin[name]; ok {
		return v
	}
	return decimal.Zero
}

// DefaultSettings devuelve unos settings razonables para un revendedor típico.
func DefaultSettings() Settings {
	return Settings{
		Geography: Geography{
			MaxDistanceMiles: 50,
			GasCostPerMile:   Dollars(0.15),
			AvgSpeedMPH:      35,
		},
		Financial: Financial{
			LaborRate:         Dollars(20),
			TaxRate:           0.08,
			MarketplaceFeePct: 0.05,
			TargetMarginPct:   0.20,
			MinProfit:         Dollars(100),
			HoldingCostPerDay: Dollars(1),
			MarkupPct:         0,
			RefurbLaborHours:  1,
		},
		Strategy: StrategyFair,
		PartsBin: map[string]decimal.Decimal{
			PartCleaning:     Dollars(5),
			PartThermalPaste: Dollars(8),
			PartSSD:          Dollars(35),
			PartRAMStick:     Dollars(25),
		},
	}
}
