package spreadsheet

import (
	"strings"
	"unicode"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-bares/internal/application/usecase"
)

// ProductRows convierte las filas de la planilla de catálogo (nombre, tipo, formato, código, precio).
// La primera fila se descarta si es una cabecera. Los formatos en kg se ignoran.
func ProductRows(records [][]string) []usecase.ImportRow {
	var rows []usecase.ImportRow
	for i, rec := range records {
		if i == 0 && isHeader(rec) {
			continue
		}
		if blank(rec) {
			continue
		}
		cell := func(n int) string {
			if n < len(rec) {
				return strings.TrimSpace(rec[n])
			}
			return ""
		}
		rows = append(rows, usecase.ImportRow{
			Line:      i + 1,
			Name:      cell(0),
			Type:      cell(1),
			FormatMl:  parseFormat(cell(2)),
			Code:      cell(3),
			SalePrice: parsePrice(cell(4)),
		})
	}
	return rows
}

func isHeader(rec []string) bool {
	if len(rec) == 0 {
		return false
	}
	first := strings.ToLower(strings.TrimSpace(rec[0]))
	return first == "name" || first == "nombre" || first == "producto"
}

func blank(rec []string) bool {
	for _, c := range rec {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// parseFormat toma los dígitos iniciales ("700ml", "750") como ml.
func parseFormat(s string) *int64 {
	if s == "" || strings.Contains(strings.ToLower(s), "kg") {
		return nil
	}
	var n int64
	digits := 0
	for _, r := range s {
		if !unicode.IsDigit(r) {
			break
		}
		n = n*10 + int64(r-'0')
		digits++
	}
	if digits == 0 || n <= 0 {
		return nil
	}
	return &n
}

// parsePrice acepta "12", "12.50" o "12,50"; descarta símbolos de moneda.
func parsePrice(s string) *decimal.Decimal {
	s = strings.TrimSpace(strings.NewReplacer("€", "", "$", "", " ", "").Replace(s))
	if s == "" {
		return nil
	}
	if strings.Contains(s, ",") && !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}
	d, err := decimal.NewFromString(s)
	if err != nil || d.IsNegative() {
		return nil
	}
	return &d
}
