// Package inventory contiene la aritmética pura del ledger (servicios de dominio sin I/O).
package inventory

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-bares/internal/domain/entity"
)

// ToMl convierte una cantidad pedida a ml.
// bottles => cantidad * formato del producto (750 si es nulo); ml y units se toman tal cual.
func ToMl(quantity int64, unit entity.UnitType, product *entity.Product) int64 {
	if unit == entity.UnitBottles {
		return quantity * product.EffectiveFormatMl()
	}
	return quantity
}

// FitsMl indica si la cantidad pedida, convertida a ml, cabe en un int64.
func FitsMl(quantity int64, unit entity.UnitType, product *entity.Product) bool {
	if quantity < 0 {
		return false
	}
	if unit != entity.UnitBottles {
		return true
	}
	return quantity <= math.MaxInt64/product.EffectiveFormatMl()
}

// ApplyDelta devuelve la cantidad resultante de sumar delta, recortada en 0.
// Los descuentos se recortan en 0 y los incrementos saturan en math.MaxInt64.
func ApplyDelta(before, delta int64) int64 {
	if delta > 0 && before > math.MaxInt64-delta {
		return math.MaxInt64
	}
	after := before + delta
	if after < 0 {
		return 0
	}
	return after
}

// BottlesFromMl convierte ml a botellas redondeando a 1 decimal (formato de correos y exportaciones).
func BottlesFromMl(ml, formatMl int64) decimal.Decimal {
	if formatMl <= 0 {
		formatMl = entity.DefaultFormatMl
	}
	return decimal.NewFromInt(ml).Div(decimal.NewFromInt(formatMl)).Round(1)
}

// StockStatus clasifica un registro para la exportación de stock: ok, bajo o agotado.
func StockStatus(quantityMl int64, minStockMl *int64) string {
	switch {
	case quantityMl <= 0:
		return "agotado"
	case minStockMl != nil && quantityMl < *minStockMl:
		return "bajo"
	default:
		return "ok"
	}
}
