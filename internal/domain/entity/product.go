package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// DefaultFormatMl formato por defecto de una botella cuando el producto no lo define.
const DefaultFormatMl int64 = 750

// Product representa un producto del catálogo. Code es único.
type Product struct {
	ID         string
	Code       string
	Name       string
	CategoryID string
	FormatMl   *int64           // contenido del envase en ml; nil => 750
	SalePrice  *decimal.Decimal // precio de venta (opcional)
	IsActive   bool
	CreatedAt  time.Time
	UpdatedAt  time.Time

	// Campos unidos (no siempre poblados).
	CategoryName string
}

// EffectiveFormatMl devuelve FormatMl o 750 si es nulo o no positivo.
func (p *Product) EffectiveFormatMl() int64 {
	if p == nil || p.FormatMl == nil || *p.FormatMl <= 0 {
		return DefaultFormatMl
	}
	return *p.FormatMl
}
