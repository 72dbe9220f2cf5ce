package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/alejandrodnm/flipscore/internal/domain"
	"github.com/alejandrodnm/flipscore/internal/pricing"
	"github.com/caarlos0/env/v6"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Config es la configuración completa de flipscore.
type Config struct {
	Scanner  ScannerConfig  `yaml:"scanner"`
	Feed     FeedConfig     `yaml:"feed"`
	Storage  StorageConfig  `yaml:"storage"`
	Log      LogConfig      `yaml:"log"`
	Settings SettingsConfig `yaml:"settings"`
	Pricing  PricingConfig  `yaml:"pricing"`
}

// ScannerConfig controla el loop y los filtros del scanner.
type ScannerConfig struct {
	IntervalSeconds  int     `yaml:"interval_seconds" env:"FLIPSCORE_INTERVAL_SECONDS" validate:"gte=0"`
	Workers          int     `yaml:"workers" env:"FLIPSCORE_WORKERS" validate:"gte=0,lte=256"`
	HotScore         float64 `yaml:"hot_score" env:"FLIPSCORE_HOT_SCORE" validate:"gte=0,lte=100"`
	MinDealScore     float64 `yaml:"min_deal_score" validate:"gte=0,lte=100"`
	MinNetProfit     float64 `yaml:"min_net_profit" validate:"gte=0"`
	MaxRisk          float64 `yaml:"max_risk" validate:"gte=0,lte=10"`
	MaxDistanceMiles float64 `yaml:"max_distance_miles" validate:"gte=0"`
}

// FeedConfig indica de dónde salen los anuncios: fichero local o feed HTTP.
type FeedConfig struct {
	File       string  `yaml:"file" env:"FLIPSCORE_FEED_FILE"`
	URL        string  `yaml:"url" env:"FLIPSCORE_FEED_URL" validate:"omitempty,url"`
	RatePerSec float64 `yaml:"rate_per_sec" validate:"gte=0"`
	Platform   string  `yaml:"platform"` // valor por defecto para anuncios sin plataforma
}

// StorageConfig controla dónde se persiste el histórico.
type StorageConfig struct {
	DSN string `yaml:"dsn" env:"FLIPSCORE_DB"` // ruta al archivo SQLite, o ":memory:"
}

// LogConfig controla el formato y nivel de logging.
type LogConfig struct {
	Level  string `yaml:"level" env:"LOG_LEVEL" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" env:"LOG_FORMAT" validate:"oneof=text json"`
}

// SettingsConfig son los settings del usuario tal como se escriben en YAML.
// Los porcentajes son fracciones (0.08 = 8%).
type SettingsConfig struct {
	MaxDistanceMiles  float64            `yaml:"max_distance_miles" validate:"gte=0"`
	GasCostPerMile    float64            `yaml:"gas_cost_per_mile" validate:"gte=0"`
	AvgSpeedMPH       float64            `yaml:"avg_speed_mph" validate:"gt=0"`
	LaborRate         float64            `yaml:"labor_rate" validate:"gte=0"`
	TaxRate           float64            `yaml:"tax_rate" validate:"gte=0,lt=1"`
	MarketplaceFeePct float64            `yaml:"marketplace_fee_pct" validate:"gte=0,lt=1"`
	TargetMarginPct   float64            `yaml:"target_margin_pct" validate:"gte=0,lt=1"`
	MinProfit         float64            `yaml:"min_profit" validate:"gte=0"`
	HoldingCostPerDay float64            `yaml:"holding_cost_per_day" validate:"gte=0"`
	MarkupPct         float64            `yaml:"markup_pct" validate:"gte=-0.5,lte=1"`
	RefurbLaborHours  float64            `yaml:"refurb_labor_hours" validate:"gte=0"`
	Strategy          string             `yaml:"strategy" env:"FLIPSCORE_STRATEGY" validate:"oneof=aggressive fair conservative"`
	PartsBin          map[string]float64 `yaml:"parts_bin" validate:"dive,gte=0"`
}

// PricingConfig permite sustituir la tabla de precios embebida.
type PricingConfig struct {
	Path string `yaml:"path" env:"FLIPSCORE_PRICING"`
}

// Load carga la configuración desde el archivo YAML y el archivo .env si existe.
// Orden: defaults → YAML → variables de entorno → validación.
func Load(path string) (*Config, error) {
	// Cargar .env si existe (silencia error si no hay archivo)
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config.Load: read %q: %w", path, err)
	}
	return Parse(data)
}

// Parse construye la configuración a partir del YAML dado.
func Parse(data []byte) (*Config, error) {
	cfg := defaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config.Load: parse YAML: %w", err)
	}

	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("config.Load: parse env: %w", err)
	}
	setDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}
	return &cfg, nil
}

// Validate comprueba la estructura de la configuración.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.Feed.File == "" && c.Feed.URL == "" {
		return errors.New("invalid config: feed.file or feed.url is required")
	}
	return nil
}

// ScanInterval devuelve el intervalo de escaneo como time.Duration.
func (c *Config) ScanInterval() time.Duration {
	return time.Duration(c.Scanner.IntervalSeconds) * time.Second
}

// ToDomain convierte los settings de YAML al snapshot inmutable del engine.
func (s SettingsConfig) ToDomain() domain.Settings {
	parts := make(map[string]decimal.Decimal, len(s.PartsBin))
	for name, cost := range s.PartsBin {
		parts[name] = domain.Dollars(cost)
	}
	return domain.Settings{
		Geography: domain.Geography{
			MaxDistanceMiles: s.MaxDistanceMiles,
			GasCostPerMile:   domain.Dollars(s.GasCostPerMile),
			AvgSpeedMPH:      s.AvgSpeedMPH,
		},
		Financial: domain.Financial{
			LaborRate:         domain.Dollars(s.LaborRate),
			TaxRate:           s.TaxRate,
			MarketplaceFeePct: s.MarketplaceFeePct,
			TargetMarginPct:   s.TargetMarginPct,
			MinProfit:         domain.Dollars(s.MinProfit),
			HoldingCostPerDay: domain.Dollars(s.HoldingCostPerDay),
			MarkupPct:         s.MarkupPct,
			RefurbLaborHours:  s.RefurbLaborHours,
		},
		Strategy: domain.PricingStrategy(s.Strategy),
		PartsBin: parts,
	}
}

// LoadPricing devuelve la tabla de precios configurada, o la embebida si no hay ruta.
func (c *Config) LoadPricing() (*pricing.Store, error) {
	if c.Pricing.Path == "" {
		return pricing.Default(), nil
	}
	store, err := pricing.LoadFile(c.Pricing.Path)
	if err != nil {
		return nil, fmt.Errorf("config.LoadPricing: %w", err)
	}
	return store, nil
}

// defaultConfig parte de los settings por defecto del engine; el YAML solo
// sobreescribe las claves presentes.
func defaultConfig() Config {
	d := domain.DefaultSettings()
	parts := make(map[string]float64, len(d.PartsBin))
	for name, cost := range d.PartsBin {
		parts[name] = cost.InexactFloat64()
	}
	return Config{
		Scanner: ScannerConfig{
			IntervalSeconds:  300,
			HotScore:         70,
			MinDealScore:     30,
			MinNetProfit:     50,
			MaxRisk:          7,
			MaxDistanceMiles: d.Geography.MaxDistanceMiles,
		},
		Feed: FeedConfig{Platform: "marketplace"},
		Settings: SettingsConfig{
			MaxDistanceMiles:  d.Geography.MaxDistanceMiles,
			GasCostPerMile:    d.Geography.GasCostPerMile.InexactFloat64(),
			AvgSpeedMPH:       d.Geography.AvgSpeedMPH,
			LaborRate:         d.Financial.LaborRate.InexactFloat64(),
			TaxRate:           d.Financial.TaxRate,
			MarketplaceFeePct: d.Financial.MarketplaceFeePct,
			TargetMarginPct:   d.Financial.TargetMarginPct,
			MinProfit:         d.Financial.MinProfit.InexactFloat64(),
			HoldingCostPerDay: d.Financial.HoldingCostPerDay.InexactFloat64(),
			MarkupPct:         d.Financial.MarkupPct,
			RefurbLaborHours:  d.Financial.RefurbLaborHours,
			Strategy:          string(d.Strategy),
			PartsBin:          parts,
		},
	}
}

// setDefaults asegura que los valores requeridos tengan valores sensatos.
func setDefaults(cfg *Config) {
	if cfg.Scanner.IntervalSeconds <= 0 {
		cfg.Scanner.IntervalSeconds = 300
	}
	if cfg.Storage.DSN == "" {
		cfg.Storage.DSN = "flipscore.db"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
	if cfg.Settings.Strategy == "" {
		cfg.Settings.Strategy = string(domain.StrategyFair)
	}
}
