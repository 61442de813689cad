// Package pdf genera el comprobante de entrega de una solicitud.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Comprobante de entrega  │  N° solicitud + fecha     │
//	│  ─────────────────────────────────────────────────────────  │
//	│  ORIGEN / DESTINO / SOLICITANTE / ENTREGADO POR              │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Código | Producto | Cantidad | Unidad | Estado       │
//	│  ─────────────────────────────────────────────────────────  │
//	│  FOOTER: QR con el ID + firmas                               │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/jhoicas/inventario-bares/internal/domain"
	"github.com/jhoicas/inventario-bares/internal/domain/entity"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorWhite   = &props.Color{Red: 255, Green: 255, Blue: 255}
	colorMuted   = &props.Color{Red: 170, Green: 170, Blue: 170}
)

// DeliveryReceipt datos del comprobante. Request debe venir con ítems y productos.
type DeliveryReceipt struct {
	Request       *entity.Request
	DelivererName string
	Zone          *time.Location // zona para fechas impresas; nil = UTC
}

// ── Generator ─────────────────────────────────────────────────────────────────

// ReceiptGenerator genera comprobantes con Maroto v2.
type ReceiptGenerator struct{}

// NewReceiptGenerator construye el generador.
func NewReceiptGenerator() *ReceiptGenerator { return &ReceiptGenerator{} }

// Generate devuelve los bytes del PDF. Solo las solicitudes entregadas tienen comprobante.
func (g *ReceiptGenerator) Generate(_ context.Context, in DeliveryReceipt) ([]byte, error) {
	req := in.Request
	if req == nil {
		return nil, domain.ErrNotFound
	}
	if req.Status != entity.RequestDelivered || req.DeliveredAt == nil {
		return nil, fmt.Errorf("%w: la solicitud no está entregada", domain.ErrConflict)
	}
	zone := in.Zone
	if zone == nil {
		zone = time.UTC
	}

	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(12).WithRightMargin(12).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Comprobante de entrega", true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(req, zone))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(partiesRow(req, in.DelivererName, zone))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	m.AddRows(tableItemRows(req.Items)...)

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(notesRow(req.Notes)...)
	m.AddRows(footerRow(req))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func headerRow(req *entity.Request, zone *time.Location) core.Row {
	return row.New(18).Add(
		col.New(7).Add(
			text.New("COMPROBANTE DE ENTREGA", props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("Reposición desde Bodega", props.Text{Size: 9, Top: 9, Color: colorGray}),
		),
		col.New(5).Add(
			text.New("SOLICITUD", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right, Color: colorPrimary, Top: 1,
			}),
			text.New(shortID(req.ID), props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 7,
			}),
			text.New("Entregada: "+req.DeliveredAt.In(zone).Format("02/01/2006 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 14, Color: colorGray,
			}),
		),
	)
}

func partiesRow(req *entity.Request, deliverer string, zone *time.Location) core.Row {
	requester := "—"
	if req.Requester != nil {
		requester = req.Requester.FullName
	}
	label := func(s string, top float64) core.Component {
		return text.New(s, props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: top})
	}
	value := func(s string, top float64) core.Component {
		return text.New(s, props.Text{Size: 9, Top: top})
	}
	return row.New(22).Add(
		col.New(6).Add(
			label("ORIGEN", 1), value(entity.LocationWarehouse.DisplayName(), 5),
			label("DESTINO", 11), value(req.Location.DisplayName(), 15),
		),
		col.New(6).Add(
			label("SOLICITADO POR", 1), value(requester+" · "+req.CreatedAt.In(zone).Format("02/01/2006 15:04"), 5),
			label("ENTREGADO POR", 11), value(nonEmpty(deliverer, "—"), 15),
		),
	)
}

// tableHeaderRow: cabecera de la tabla de ítems.
func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a, Color: colorWhite, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).WithStyle(&props.Cell{BackgroundColor: colorPrimary}).Add(
		h("Código", 2, align.Left),
		h("Producto", 5, align.Left),
		h("Cantidad", 2, align.Right),
		h("Unidad", 1, align.Center),
		h("Estado", 2, align.Center),
	)
}

// tableItemRows: una fila por ítem; los no disponibles se imprimen atenuados.
func tableItemRows(items []entity.RequestItem) []core.Row {
	rows := make([]core.Row, 0, len(items))
	for _, it := range items {
		color := (*props.Color)(nil)
		status := "Entregado"
		if !it.Deliverable() {
			color = colorMuted
			status = "No disponible"
		}
		code, name := "", it.ProductID
		if it.Product != nil {
			code, name = it.Product.Code, it.Product.Name
		}
		cell := func(s string, size int, a align.Type) core.Col {
			return col.New(size).Add(text.New(s, props.Text{Size: 8, Align: a, Top: 1, Left: 1, Right: 1, Color: color}))
		}
		rows = append(rows, row.New(7).Add(
			cell(code, 2, align.Left),
			cell(name, 5, align.Left),
			cell(strconv.FormatInt(it.QuantityRequested, 10), 2, align.Right),
			cell(it.UnitType.Label(), 1, align.Center),
			cell(status, 2, align.Center),
		))
	}
	return rows
}

func notesRow(notes string) []core.Row {
	if notes == "" {
		return nil
	}
	return []core.Row{row.New(12).Add(col.New(12).Add(
		text.New("NOTAS", props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 2}),
		text.New(notes, props.Text{Size: 8, Top: 6, Color: colorGray}),
	))}
}

// footerRow: QR con el ID completo + espacio para firmas.
func footerRow(req *entity.Request) core.Row {
	return row.New(40).Add(
		col.New(3).Add(code.NewQr(req.ID, props.Rect{Percent: 90, Center: true})),
		col.New(9).Add(
			text.New("Firma de quien entrega: ______________________", props.Text{Size: 9, Top: 10, Left: 4}),
			text.New("Firma de quien recibe:  ______________________", props.Text{Size: 9, Top: 22, Left: 4}),
			text.New("ID: "+req.ID, props.Text{Size: 6.5, Top: 33, Left: 4, Color: colorGray}),
		),
	)
}

// ── helpers ───────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

// shortID primeros 8 caracteres del UUID en mayúsculas.
func shortID(id string) string {
	if len(id) > 8 {
		id = id[:8]
	}
	return "#" + strings.ToUpper(id)
}
