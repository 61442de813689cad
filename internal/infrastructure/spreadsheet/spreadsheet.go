// Package spreadsheet lee y escribe tablas en CSV y XLSX para importaciones y exportaciones.
package spreadsheet

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
)

// Format formato de archivo tabular.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ParseFormat acepta "csv" o "xlsx" (por defecto csv).
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "csv":
		return FormatCSV, nil
	case "xlsx", "excel":
		return FormatXLSX, nil
	}
	return "", fmt.Errorf("formato no soportado: %q", s)
}

// ContentType cabecera HTTP del formato.
func (f Format) ContentType() string {
	if f == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}

// Extension extensión del archivo sin punto.
func (f Format) Extension() string { return string(f) }

// utf8BOM hace que Excel abra el CSV como UTF-8.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Write escribe header + rows en el formato indicado.
func Write(w io.Writer, f Format, sheet string, header []string, rows [][]string) error {
	if f == FormatXLSX {
		return WriteXLSX(w, sheet, header, rows)
	}
	return WriteCSV(w, header, rows)
}

// WriteCSV escribe un CSV UTF-8 con BOM.
func WriteCSV(w io.Writer, header []string, rows [][]string) error {
	if _, err := w.Write(utf8BOM); err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("escribir csv: %w", err)
	}
	return nil
}

// WriteXLSX escribe una hoja con cabecera en negrita, filtro y anchos ajustados al contenido.
func WriteXLSX(w io.Writer, sheet string, header []string, rows [][]string) error {
	f := excelize.NewFile()
	defer f.Close()

	if sheet == "" {
		sheet = "Hoja1"
	}
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return fmt.Errorf("xlsx: nombre de hoja: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"00467F"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("xlsx: estilo: %w", err)
	}

	widths := make([]int, len(header))
	write := func(rowIdx int, values []string) error {
		cell, err := excelize.CoordinatesToCellName(1, rowIdx)
		if err != nil {
			return err
		}
		vals := make([]any, len(values))
		for i, v := range values {
			vals[i] = v
			if i < len(widths) && len([]rune(v)) > widths[i] {
				widths[i] = len([]rune(v))
			}
		}
		return f.SetSheetRow(sheet, cell, &vals)
	}

	if err := write(1, header); err != nil {
		return fmt.Errorf("xlsx: cabecera: %w", err)
	}
	for i, r := range rows {
		if err := write(i+2, r); err != nil {
			return fmt.Errorf("xlsx: fila %d: %w", i+2, err)
		}
	}

	if len(header) > 0 {
		last, _ := excelize.ColumnNumberToName(len(header))
		if err := f.SetCellStyle(sheet, "A1", last+"1", bold); err != nil {
			return fmt.Errorf("xlsx: estilo cabecera: %w", err)
		}
		if err := f.AutoFilter(sheet, fmt.Sprintf("A1:%s%d", last, len(rows)+1), nil); err != nil {
			return fmt.Errorf("xlsx: filtro: %w", err)
		}
		for i, width := range widths {
			col, _ := excelize.ColumnNumberToName(i + 1)
			if err := f.SetColWidth(sheet, col, col, float64(min(width+2, 80))); err != nil {
				return fmt.Errorf("xlsx: ancho de columna: %w", err)
			}
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("xlsx: escribir: %w", err)
	}
	return nil
}

// ReadOptions opciones de lectura de CSV.
type ReadOptions struct {
	Latin1 bool // el archivo viene en ISO-8859-1 (exportación antigua de Excel)
}

// Read devuelve todas las filas de la primera hoja (XLSX) o del CSV.
func Read(r io.Reader, f Format, opts ReadOptions) ([][]string, error) {
	if f == FormatXLSX {
		return ReadXLSX(r)
	}
	return ReadCSV(r, opts)
}

// ReadCSV lee un CSV separado por coma o punto y coma (se detecta en la primera línea).
// Quita el BOM si existe.
func ReadCSV(r io.Reader, opts ReadOptions) ([][]string, error) {
	if opts.Latin1 {
		r = charmap.ISO8859_1.NewDecoder().Reader(r)
	}
	br := bufio.NewReader(r)
	if head, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(head, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}
	first, _ := br.Peek(4096)
	firstLine := string(first)
	if i := strings.IndexByte(firstLine, '\n'); i >= 0 {
		firstLine = firstLine[:i]
	}

	cr := csv.NewReader(br)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	if strings.Count(firstLine, ";") > strings.Count(firstLine, ",") {
		cr.Comma = ';'
	}
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("leer csv: %w", err)
	}
	return records, nil
}

// ReadXLSX lee las filas de la primera hoja.
func ReadXLSX(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("leer xlsx: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("leer xlsx: el archivo no tiene hojas")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("leer xlsx: %w", err)
	}
	return rows, nil
}
