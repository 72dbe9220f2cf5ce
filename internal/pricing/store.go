package pricing

// store.go: tablas de referencia de precios (solo datos + lookup difuso).
//
// Las tablas viven en YAML versionado aparte del código. El binario embebe una
// copia por defecto; pricing.table_path en la config permite sustituirla sin recompilar.
// Un Store es inmutable tras construirse y se puede compartir entre goroutines.

import (
	_ "embed"
	"fmt"
	"os"
	"sync"

	"github.com/alejandrodnm/flipscore/internal/domain"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

//go:embed data/reference.yaml
var defaultTable []byte

// minMatchLen evita que inputs muy cortos ("RTX", "I7") casen con el primer tier.
const minMatchLen = 3

// Range es el rango de precios conocido de un tipo de pieza (en estado "new").
type Range struct {
	Min decimal.Decimal
	Max decimal.Decimal
}

// Interpolate devuelve Min + m·(Max−Min), con m limitado a [0, 1].
func (r Range) Interpolate(m float64) decimal.Decimal {
	m = domain.ClampFloat(m, 0, 1)
	return domain.RoundCents(r.Min.Add(r.Max.Sub(r.Min).Mul(decimal.NewFromFloat(m))))
}

// Tier es una fila de la tabla de precios.
type Tier struct {
	Type       domain.ComponentType
	Model      string
	CurrentGen bool
	Prices     map[domain.ConditionTier]decimal.Decimal
	normalized string
}

// Price devuelve el precio para la condición dada.
func (t Tier) Price(c domain.ConditionTier) decimal.Decimal {
	if p, ok := t.Prices[c]; ok {
		return p
	}
	return t.Prices[domain.ConditionGood]
}

// GPUTier es una entrada de la jerarquía de rendimiento de GPUs.
type GPUTier struct {
	Model       string
	Tier        int
	Performance int
	Mining      bool
	Hot         bool
	HighDemand  bool
	normalized  string
}

// Store es el conjunto de tablas de referencia.
type Store struct {
	version string
	tiers   map[domain.ComponentType][]Tier
	ranges  map[domain.ComponentType]Range
	gpus    []GPUTier
}

// --- formato YAML ---

type rawTable struct {
	Version    string                  `yaml:"version"`
	Components map[string]rawComponent `yaml:"components"`
	GPUs       []rawGPU                `yaml:"gpus"`
}

type rawComponent struct {
	Range struct {
		Min float64 `yaml:"min"`
		Max float64 `yaml:"max"`
	} `yaml:"range"`
	Tiers []rawTier `yaml:"tiers"`
}

type rawTier struct {
	Model      string             `yaml:"model"`
	CurrentGen bool               `yaml:"current_gen"`
	Prices     map[string]float64 `yaml:"prices"`
}

type rawGPU struct {
	Model       string `yaml:"model"`
	Tier        int    `yaml:"tier"`
	Performance int    `yaml:"performance"`
	Mining      bool   `yaml:"mining"`
	Hot         bool   `yaml:"hot"`
	HighDemand  bool   `yaml:"high_demand"`
}

var defaultStore = sync.OnceValues(func() (*Store, error) {
	return Parse(defaultTable)
})

// Default devuelve el Store construido con la tabla embebida.
// La tabla embebida está cubierta por tests: un error aquí es un bug de build.
func Default() *Store {
	s, err := defaultStore()
	if err != nil {
		panic(fmt.Sprintf("pricing.Default: embedded table: %v", err))
	}
	return s
}

// LoadFile lee una tabla de referencia externa.
func LoadFile(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("pricing.LoadFile: read %q: %w", path, err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("pricing.LoadFile: %q: %w", path, err)
	}
	return s, nil
}

// Parse construye un Store desde YAML y valida que cada tier tenga los cinco precios.
func Parse(data []byte) (*Store, error) {
	var raw rawTable
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse YAML: %w", err)
	}

	s := &Store{
		version: raw.Version,
		tiers:   make(map[domain.ComponentType][]Tier, len(raw.Components)),
		ranges:  make(map[domain.ComponentType]Range, len(raw.Components)),
	}

	for name, rc := range raw.Components {
		ct := domain.ComponentType(name)
		if rc.Range.Max < rc.Range.Min {
			return nil, fmt.Errorf("%s: range max %.2f < min %.2f", name, rc.Range.Max, rc.Range.Min)
		}
		s.ranges[ct] = Range{Min: domain.Dollars(rc.Range.Min), Max: domain.Dollars(rc.Range.Max)}

		tiers := make([]Tier, 0, len(rc.Tiers))
		for _, rt := range rc.Tiers {
			t := Tier{
				Type:       ct,
				Model:      rt.Model,
				CurrentGen: rt.CurrentGen,
				Prices:     make(map[domain.ConditionTier]decimal.Decimal, len(domain.ConditionTiers)),
				normalized: Normalize(rt.Model),
			}
			if len(t.normalized) < minMatchLen {
				return nil, fmt.Errorf("%s: model %q too short", name, rt.Model)
			}
			for _, c := range domain.ConditionTiers {
				p, ok := rt.Prices[string(c)]
				if !ok {
					return nil, fmt.Errorf("%s %q: missing %s price", name, rt.Model, c)
				}
				t.Prices[c] = domain.Dollars(p)
			}
			tiers = append(tiers, t)
		}
		s.tiers[ct] = tiers
	}

	for _, rg := range raw.GPUs {
		s.gpus = append(s.gpus, GPUTier{
			Model:       rg.Model,
			Tier:        rg.Tier,
			Performance: rg.Performance,
			Mining:      rg.Mining,
			Hot:         rg.Hot,
			HighDemand:  rg.HighDemand,
			normalized:  Normalize(rg.Model),
		})
	}

	return s, nil
}

// Version devuelve la versión de la tabla.
func (s *Store) Version() string {
	return s.version
}

// Lookup busca el tier cuyo modelo normalizado casa por substring con el input.
func (s *Store) Lookup(t domain.ComponentType, model string) (Tier, bool) {
	tiers := s.tiers[t]
	names := make([]string, len(tiers))
	for i, tier := range tiers {
		names[i] = tier.normalized
	}
	idx := bestMatch(Normalize(model), names)
	if idx < 0 {
		return Tier{}, false
	}
	return tiers[idx], true
}

// Range devuelve el rango de precios conocido del tipo.
func (s *Store) Range(t domain.ComponentType) (Range, bool) {
	r, ok := s.ranges[t]
	return r, ok
}

// GPU busca el modelo en la jerarquía de GPUs.
func (s *Store) GPU(model string) (GPUTier, bool) {
	names := make([]string, len(s.gpus))
	for i, g := range s.gpus {
		names[i] = g.normalized
	}
	idx := bestMatch(Normalize(model), names)
	if idx < 0 {
		return GPUTier{}, false
	}
	return s.gpus[idx], true
}

// Tiers devuelve una copia de los tiers del tipo, en el orden de la tabla.
func (s *Store) Tiers(t domain.ComponentType) []Tier {
	return append([]Tier(nil), s.tiers[t]...)
}
