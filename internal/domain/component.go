package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ComponentType identifica el tipo de pieza.
type ComponentType string

const (
	ComponentCPU         ComponentType = "cpu"
	ComponentGPU         ComponentType = "gpu"
	ComponentRAM         ComponentType = "ram"
	ComponentStorage     ComponentType = "storage"
	ComponentMotherboard ComponentType = "motherboard"
	ComponentPSU         ComponentType = "psu"
	ComponentCase        ComponentType = "case"
	ComponentCooling     ComponentType = "cooling"
)

// PrimaryComponents son los siete slots que cuentan para la cobertura de la valoración.
// Cooling no cuenta: muchos equipos de segunda mano llevan el disipador de stock.
var PrimaryComponents = []ComponentType{
	ComponentCPU, ComponentGPU, ComponentRAM, ComponentStorage,
	ComponentMotherboard, ComponentPSU, ComponentCase,
}

// ComponentSpec describe una pieza tal como la extrajo el parser del anuncio.
// Un spec presente con Model vacío significa "hay pieza pero no sabemos cuál".
type ComponentSpec struct {
	Model      string        `json:"model" yaml:"model"`
	Brand      string        `json:"brand" yaml:"brand"`
	Condition  ConditionTier `json:"condition" yaml:"condition"` // override opcional
	CapacityGB int           `json:"capacity_gb" yaml:"capacity_gb"`
	SpeedMHz   int           `json:"speed_mhz" yaml:"speed_mhz"`
	Wattage    int           `json:"wattage" yaml:"wattage"`
	Kind       string        `json:"kind" yaml:"kind"` // DDR4/DDR5, NVMe/SATA/HDD, Gold/Bronze...
}

// LookupKey devuelve el texto que se usa para buscar la pieza en las tablas:
// el modelo más la metadata numérica relevante para el tipo.
func (s ComponentSpec) LookupKey(t ComponentType) string {
	parts := []string{s.Brand, s.Model}
	switch t {
	case ComponentRAM:
		if s.CapacityGB > 0 {
			parts = append(parts, fmt.Sprintf("%dGB", s.CapacityGB))
		}
		parts = append(parts, s.Kind)
		if s.SpeedMHz > 0 {
			parts = append(parts, fmt.Sprintf("%d", s.SpeedMHz))
		}
	case ComponentStorage:
		if s.CapacityGB > 0 {
			parts = append(parts, capacityLabel(s.CapacityGB))
		}
		parts = append(parts, s.Kind)
	case ComponentPSU:
		if s.Wattage > 0 {
			parts = append(parts, fmt.Sprintf("%dW", s.Wattage))
		}
		parts = append(parts, s.Kind)
	}
	return strings.TrimSpace(strings.Join(nonEmpty(parts), " "))
}

// Name devuelve un nombre legible para reporting.
func (s ComponentSpec) Name(t ComponentType) string {
	if key := s.LookupKey(t); key != "" {
		return key
	}
	return "unknown " + string(t)
}

// Components agrupa las piezas del anuncio. nil / slice vacío = ausente.
type Components struct {
	CPU         *ComponentSpec  `json:"cpu,omitempty" yaml:"cpu,omitempty"`
	GPU         *ComponentSpec  `json:"gpu,omitempty" yaml:"gpu,omitempty"`
	RAM         []ComponentSpec `json:"ram,omitempty" yaml:"ram,omitempty"`
	Storage     []ComponentSpec `json:"storage,omitempty" yaml:"storage,omitempty"`
	Motherboard *ComponentSpec  `json:"motherboard,omitempty" yaml:"motherboard,omitempty"`
	PSU         *ComponentSpec  `json:"psu,omitempty" yaml:"psu,omitempty"`
	Case        *ComponentSpec  `json:"case,omitempty" yaml:"case,omitempty"`
	Cooling     *ComponentSpec  `json:"cooling,omitempty" yaml:"cooling,omitempty"`
}

// Has devuelve true si el slot del tipo dado está presente.
func (c Components) Has(t ComponentType) bool {
	switch t {
	case ComponentCPU:
		return c.CPU != nil
	case ComponentGPU:
		return c.GPU != nil
	case ComponentRAM:
		return len(c.RAM) > 0
	case ComponentStorage:
		return len(c.Storage) > 0
	case ComponentMotherboard:
		return c.Motherboard != nil
	case ComponentPSU:
		return c.PSU != nil
	case ComponentCase:
		return c.Case != nil
	case ComponentCooling:
		return c.Cooling != nil
	}
	return false
}

// HasCore devuelve true si están CPU, GPU y placa base.
func (c Components) HasCore() bool {
	return c.CPU != nil && c.GPU != nil && c.Motherboard != nil
}

// MissingPrimary cuenta los slots primarios ausentes.
func (c Components) MissingPrimary() int {
	missing := 0
	for _, t := range PrimaryComponents {
		if !c.Has(t) {
			missing++
		}
	}
	return missing
}

// TotalRAMGB suma la capacidad declarada de todos los módulos.
func (c Components) TotalRAMGB() int {
	total := 0
	for _, m := range c.RAM {
		total += m.CapacityGB
	}
	return total
}

// HasDDR5 devuelve true si algún módulo es DDR5.
func (c Components) HasDDR5() bool {
	for _, m := range c.RAM {
		if strings.Contains(strings.ToUpper(m.Kind+" "+m.Model), "DDR5") {
			return true
		}
	}
	return false
}

// ComponentValue es la valoración de una pieza dentro de una llamada de valoración.
// Se crea una vez y no se muta: los ajustes producen un valor nuevo.
type ComponentValue struct {
	Type          ComponentType   `json:"type"`
	Name          string          `json:"name"`
	Condition     ConditionTier   `json:"condition"`
	BaseValue     decimal.Decimal `json:"base_value"`
	AdjustedValue decimal.Decimal `json:"adjusted_value"`
	Confidence    float64         `json:"confidence"`
	Source        ValueSource     `json:"source"`
	Adjustments   []Adjustment    `json:"adjustments,omitempty"`
}

// WithAdjustment devuelve una copia con el ajuste aplicado sobre AdjustedValue.
func (v ComponentValue) WithAdjustment(a Adjustment) ComponentValue {
	out := v
	out.Adjustments = append(append([]Adjustment(nil), v.Adjustments...), a)
	if a.Applied {
		out.AdjustedValue = Scale(v.AdjustedValue, a.Factor)
	}
	return out
}

// ValueSource indica de dónde sale el valor base.
type ValueSource string

const (
	SourcePricingTiers ValueSource = "pricing_tiers"
	SourceEstimate     ValueSource = "estimate"
)

func capacityLabel(gb int) string {
	if gb >= 1000 && gb%1000 == 0 {
		return fmt.Sprintf("%dTB", gb/1000)
	}
	if gb >= 1024 && gb%1024 == 0 {
		return fmt.Sprintf("%dTB", gb/1024)
	}
	return fmt.Sprintf("%dGB", gb)
}

func nonEmpty(parts []string) []string {
	out := parts[:0:0]
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			out = append(out, p)
		}
	}
	return out
}
