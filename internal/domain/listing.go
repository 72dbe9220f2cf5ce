package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Listing es la descripción estructurada de un anuncio de PC usado.
// La produce el subsistema de adquisición; el engine solo la lee.
type Listing struct {
	ID       string `json:"id" yaml:"id"`
	Title    string `json:"title" yaml:"title"`
	URL      string `json:"url" yaml:"url"`
	Platform string `json:"platform" yaml:"platform"`
	Seller   string `json:"seller" yaml:"seller"`

	// Price es el precio pedido. Valid=false significa que el anuncio no tiene precio.
	Price decimal.NullDecimal `json:"price" yaml:"price"`

	Components Components `json:"components" yaml:"components"`
	Condition  Condition  `json:"condition" yaml:"condition"`
	Risk       Risk       `json:"risk" yaml:"risk"`
	Location   Location   `json:"location" yaml:"location"`
	Metadata   Metadata   `json:"metadata" yaml:"metadata"`
	Engagement Engagement `json:"engagement" yaml:"engagement"`
}

// HasPrice devuelve true si el anuncio trae precio pedido.
func (l Listing) HasPrice() bool {
	return l.Price.Valid
}

// AskingPrice devuelve el precio pedido, o cero si no hay.
func (l Listing) AskingPrice() decimal.Decimal {
	if !l.Price.Valid {
		return decimal.Zero
	}
	return l.Price.Decimal
}

// Risk contiene la señal de riesgo calculada aguas arriba (0 = ninguno, 10 = máximo).
type Risk struct {
	Score float64 `json:"score" yaml:"score"`
}

// Location es la ubicación del vendedor relativa al comprador.
type Location struct {
	DistanceMiles float64 `json:"distance" yaml:"distance"`
	City          string  `json:"city" yaml:"city"`
	State         string  `json:"state" yaml:"state"` // código de 2 letras
}

// PricePoint es una entrada del histórico de precios del anuncio.
type PricePoint struct {
	Price decimal.Decimal `json:"price" yaml:"price"`
	Date  time.Time       `json:"date" yaml:"date"`
}

// Metadata agrupa la información accesoria del anuncio.
type Metadata struct {
	PriceHistory []PricePoint `json:"price_history" yaml:"price_history"`
}

// PriceDropCount cuenta los pasos estrictamente decrecientes del histórico.
func (m Metadata) PriceDropCount() int {
	drops := 0
	for i := 1; i < len(m.PriceHistory); i++ {
		if m.PriceHistory[i].Price.LessThan(m.PriceHistory[i-1].Price) {
			drops++
		}
	}
	return drops
}

// Engagement son las señales visibles de interés en el anuncio.
type Engagement struct {
	Comments       int     `json:"comments" yaml:"comments"`
	Interested     int     `json:"interested" yaml:"interested"`
	HoursListed    float64 `json:"hours_listed" yaml:"hours_listed"`
	Relists        int     `json:"relists" yaml:"relists"`
	SellerListings int     `json:"seller_listings" yaml:"seller_listings"`
	PriceDrops     int     `json:"price_drops" yaml:"price_drops"`
}

// Condition describe el estado del equipo: un enum grueso, un score 1-5 o ambos.
type Condition struct {
	Tier      ConditionTier `json:"tier" yaml:"tier"`
	Overall   int           `json:"overall" yaml:"overall"`       // 1..5, 0 = ausente
	AgeMonths int           `json:"age_months" yaml:"age_months"` // 0 = ausente
	Issues    []string      `json:"issues" yaml:"issues"`
}

// HasOverall devuelve true si hay un score 1-5 válido.
func (c Condition) HasOverall() bool {
	return c.Overall >= 1 && c.Overall <= 5
}

// HasIssue devuelve true si alguno de los issues contiene alguno de los keywords.
func (c Condition) HasIssue(keywords ...string) bool {
	for _, issue := range c.Issues {
		lower := strings.ToLower(issue)
		for _, kw := range keywords {
			if strings.Contains(lower, kw) {
				return true
			}
		}
	}
	return false
}

// ConditionTier es la escala de cinco niveles usada por las tablas de precios.
type ConditionTier string

const (
	ConditionNew       ConditionTier = "new"
	ConditionExcellent ConditionTier = "excellent"
	ConditionGood      ConditionTier = "good"
	ConditionFair      ConditionTier = "fair"
	ConditionPoor      ConditionTier = "poor"
)

// ConditionTiers lista los niveles de mejor a peor.
var ConditionTiers = []ConditionTier{
	ConditionNew, ConditionExcellent, ConditionGood, ConditionFair, ConditionPoor,
}

// ParseConditionTier normaliza el enum libre del anuncio.
// Devuelve false si el texto no corresponde a ningún nivel conocido.
func ParseConditionTier(s string) (ConditionTier, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "new", "brand new", "sealed":
		return ConditionNew, true
	case "excellent", "like new", "like_new", "mint", "open box":
		return ConditionExcellent, true
	case "good", "used", "used_good":
		return ConditionGood, true
	case "fair", "worn":
		return ConditionFair, true
	case "poor", "for parts", "for_parts", "broken":
		return ConditionPoor, true
	}
	return "", false
}

// TierFromOverall convierte un score 1-5 al nivel equivalente.
func TierFromOverall(score int) (ConditionTier, bool) {
	switch score {
	case 5:
		return ConditionNew, true
	case 4:
		return ConditionExcellent, true
	case 3:
		return ConditionGood, true
	case 2:
		return ConditionFair, true
	case 1:
		return ConditionPoor, true
	}
	return "", false
}
