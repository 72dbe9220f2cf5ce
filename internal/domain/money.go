package domain

import "github.com/shopspring/decimal"

// Todo el dinero del engine es decimal.Decimal en dólares.
// Se redondea a céntimos en cada punto de ajuste y a brackets de $10/$25/$50
// solo donde la negociación lo exige (resale, offers).

// Dollars construye un importe a partir de un float en dólares, redondeado a céntimos.
func Dollars(v float64) decimal.Decimal {
	return RoundCents(decimal.NewFromFloat(v))
}

// RoundCents redondea a 2 decimales (half away from zero).
func RoundCents(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// Scale multiplica un importe por un factor multiplicativo y redondea a céntimos.
func Scale(d decimal.Decimal, factor float64) decimal.Decimal {
	return RoundCents(d.Mul(decimal.NewFromFloat(factor)))
}

// RoundToNearest redondea al múltiplo de step más cercano.
// step <= 0 devuelve el importe sin tocar.
func RoundToNearest(d decimal.Decimal, step int64) decimal.Decimal {
	if step <= 0 {
		return d
	}
	s := decimal.NewFromInt(step)
	return d.Div(s).Round(0).Mul(s)
}

// FloorToMultiple redondea hacia abajo al múltiplo de step.
func FloorToMultiple(d decimal.Decimal, step int64) decimal.Decimal {
	if step <= 0 {
		return d
	}
	s := decimal.NewFromInt(step)
	return d.Div(s).Floor().Mul(s)
}

// NonNegative devuelve 0 si el importe es negativo.
func NonNegative(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// Ratio devuelve num/den como float64, o 0 si den es cero.
// Nunca devuelve NaN ni Inf.
func Ratio(num, den decimal.Decimal) float64 {
	if den.IsZero() {
		return 0
	}
	return num.Div(den).InexactFloat64()
}

// Percent devuelve num/den × 100, o 0 si den es cero.
func Percent(num, den decimal.Decimal) float64 {
	return Ratio(num, den) * 100
}

// ClampFloat limita v al rango [lo, hi].
func ClampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
