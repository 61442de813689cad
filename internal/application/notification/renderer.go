package notification

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/jhoicas/inventario-bares/internal/domain/entity"
)

// Renderer localiza el payload (nombres de ubicación, unidades, números en formato es) y
// produce asunto y cuerpo HTML por tipo de evento.
type Renderer struct {
	tmpl    *template.Template
	printer *message.Printer
	footer  string
}

// NewRenderer construye el renderer con las plantillas en español.
func NewRenderer(footer string) *Renderer {
	r := &Renderer{printer: message.NewPrinter(language.Spanish), footer: footer}
	r.tmpl = template.Must(template.New("email").Funcs(template.FuncMap{
		"loc":  func(l entity.Location) string { return l.DisplayName() },
		"unit": func(u entity.UnitType) string { return u.Label() },
		"num":  r.formatInt,
		"qty":  r.formatQuantity,
	}).Parse(layoutTemplate))
	template.Must(r.tmpl.Parse(bodyTemplates))
	return r
}

type itemView struct {
	Name        string
	Code        string
	Quantity    string
	Unit        string
	Unavailable bool
}

type view struct {
	Title    string
	Subtitle string
	Body     string
	Footer   string
	Data     any
	Items    []itemView
}

// Render devuelve el contenido del correo para el evento.
func (r *Renderer) Render(ev Event) (Content, error) {
	var (
		subject, title, body string
		items                []ItemLine
	)
	switch p := ev.Payload.(type) {
	case RequestCreated:
		subject = fmt.Sprintf("📦 Nueva solicitud de %s - %s", p.RequesterName, p.Location.DisplayName())
		title, body, items = "Nueva Solicitud de Productos", "request_created", p.Items
	case RequestApproved:
		subject = fmt.Sprintf("✅ Solicitud aprobada - %s", p.Location.DisplayName())
		title, body, items = "Solicitud Aprobada", "request_approved", p.Items
	case RequestRejected:
		subject = fmt.Sprintf("❌ Solicitud rechazada - %s", p.Location.DisplayName())
		title, body = "Solicitud Rechazada", "request_rejected"
	case RequestDelivered:
		subject = fmt.Sprintf("🚚 Solicitud entregada - %s", p.Location.DisplayName())
		title, body, items = "Productos Entregados", "request_delivered", p.Items
	case TransferCreated:
		subject = fmt.Sprintf("🔄 Nuevo traspaso: %s → %s", p.FromLocation.DisplayName(), p.ToLocation.DisplayName())
		title, body, items = "Nuevo Traspaso", "transfer_created", p.Items
	case TransferCompleted:
		subject = fmt.Sprintf("✅ Traspaso completado: %s → %s", p.FromLocation.DisplayName(), p.ToLocation.DisplayName())
		title, body, items = "Traspaso Completado", "transfer_completed", p.Items
	case LowStockAlert:
		subject = fmt.Sprintf("🚨 ALERTA: Stock bajo - %s", p.ProductName)
		title, body = "Alerta de Stock Bajo", "low_stock_alert"
	default:
		return Content{}, fmt.Errorf("sin plantilla para el evento %q", ev.Type())
	}

	v := view{
		Title:    title,
		Subtitle: ev.OccurredAt.Format("02/01/2006 15:04"),
		Body:     body,
		Footer:   r.footer,
		Data:     ev.Payload,
		Items:    r.items(items),
	}
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, "layout", v); err != nil {
		return Content{}, fmt.Errorf("render %s: %w", ev.Type(), err)
	}
	return Content{Subject: subject, HTML: buf.String()}, nil
}

func (r *Renderer) items(lines []ItemLine) []itemView {
	out := make([]itemView, 0, len(lines))
	for _, l := range lines {
		out = append(out, itemView{
			Name:        l.Name,
			Code:        l.Code,
			Quantity:    r.formatQuantity(l.Quantity),
			Unit:        l.Unit.Label(),
			Unavailable: l.IsAvailable != nil && !*l.IsAvailable,
		})
	}
	return out
}

func (r *Renderer) formatInt(v any) string {
	switch n := v.(type) {
	case int:
		return r.printer.Sprintf("%d", n)
	case int64:
		return r.printer.Sprintf("%d", n)
	}
	return fmt.Sprint(v)
}

func (r *Renderer) formatQuantity(d decimal.Decimal) string {
	if d.IsInteger() {
		return r.printer.Sprintf("%d", d.IntPart())
	}
	return r.printer.Sprintf("%.1f", d.InexactFloat64())
}

const layoutTemplate = `{{define "layout"}}<!DOCTYPE html>
<html>
<head><meta charset="utf-8"></head>
<body style="font-family: Arial, sans-serif; background: #f8fafc; margin: 0; padding: 20px;">
  <div style="max-width: 600px; margin: 0 auto; background: #ffffff; border-radius: 8px; overflow: hidden;">
    <div style="background: #1e293b; color: #ffffff; padding: 24px; text-align: center;">
      <h1 style="margin: 0; font-size: 22px;">{{.Title}}</h1>
      <p style="margin: 6px 0 0 0; color: #cbd5e1;">{{.Subtitle}}</p>
    </div>
    <div style="padding: 24px;">
      {{template "body" .}}
    </div>
    <div style="padding: 16px; text-align: center; color: #94a3b8; font-size: 12px;">
      <p style="margin: 0;">{{.Footer}}</p>
      <p style="margin: 5px 0 0 0;">Este es un correo automático, por favor no responder.</p>
    </div>
  </div>
</body>
</html>{{end}}`

const bodyTemplates = `
{{define "items"}}{{if .}}
<table style="width: 100%; border-collapse: collapse; margin-top: 16px;">
  <tr style="background: #f1f5f9;"><th style="text-align: left; padding: 8px;">Producto</th><th style="text-align: right; padding: 8px;">Cantidad</th></tr>
  {{range .}}<tr>
    <td style="padding: 8px; border-bottom: 1px solid #e2e8f0;{{if .Unavailable}} color: #94a3b8; text-decoration: line-through;{{end}}">{{.Name}}{{if .Code}} <small>({{.Code}})</small>{{end}}</td>
    <td style="padding: 8px; border-bottom: 1px solid #e2e8f0; text-align: right;">{{.Quantity}} {{.Unit}}{{if .Unavailable}} (no disponible){{end}}</td>
  </tr>{{end}}
</table>{{end}}{{end}}

{{define "body"}}
{{- if eq .Body "request_created"}}{{with .Data}}
<p><strong>{{.RequesterName}}</strong> solicitó {{num .ItemsCount}} producto(s) para <strong>{{loc .Location}}</strong>.</p>
{{if .Notes}}<p style="color: #475569;"><em>Notas: {{.Notes}}</em></p>{{end}}{{end}}
{{template "items" .Items}}
<p style="margin-top: 20px; color: #64748b; text-align: center;">Ingresa al sistema para revisar y aprobar esta solicitud.</p>
{{- else if eq .Body "request_approved"}}{{with .Data}}
<p><strong>{{.ApproverName}}</strong> aprobó tu solicitud para <strong>{{loc .Location}}</strong>.</p>
<p>Productos disponibles: <strong>{{num .ItemsApproved}} de {{num .ItemsTotal}}</strong></p>{{end}}
{{template "items" .Items}}
<p style="margin-top: 20px; color: #64748b; text-align: center;">Pronto se realizará la entrega de los productos.</p>
{{- else if eq .Body "request_rejected"}}{{with .Data}}
<div style="background: #fef2f2; padding: 16px; border-radius: 6px;">
  <p style="margin: 0; color: #991b1b;">Tu solicitud de productos ha sido rechazada.</p>
</div>
<p>Ubicación: <strong>{{loc .Location}}</strong> · Revisada por: <strong>{{.ApproverName}}</strong></p>{{end}}
<p style="margin-top: 20px; color: #64748b; text-align: center;">Por favor contacta al bodeguero para más información.</p>
{{- else if eq .Body "request_delivered"}}{{with .Data}}
<p><strong>{{.DelivererName}}</strong> entregó {{num .ItemsCount}} producto(s) en <strong>{{loc .Location}}</strong>.</p>{{end}}
{{template "items" .Items}}
<p style="margin-top: 20px; color: #059669; text-align: center; font-weight: 500;">✓ El inventario ha sido actualizado automáticamente.</p>
{{- else if eq .Body "transfer_created"}}{{with .Data}}
<p><strong>{{.CreatorName}}</strong> creó un traspaso de <strong>{{loc .FromLocation}}</strong> a <strong>{{loc .ToLocation}}</strong> con {{num .ItemsCount}} producto(s).</p>{{end}}
{{template "items" .Items}}
<p style="margin-top: 20px; color: #f59e0b; text-align: center; font-weight: 500;">⏳ Pendiente de confirmación de recepción.</p>
{{- else if eq .Body "transfer_completed"}}{{with .Data}}
<p><strong>{{.ConfirmerName}}</strong> confirmó la recepción en <strong>{{loc .ToLocation}}</strong> del traspaso desde <strong>{{loc .FromLocation}}</strong>.</p>{{end}}
{{template "items" .Items}}
<p style="margin-top: 20px; color: #059669; text-align: center; font-weight: 500;">✓ El inventario ha sido actualizado en ambas ubicaciones.</p>
{{- else if eq .Body "low_stock_alert"}}{{with .Data}}
<div style="background: #fef2f2; padding: 16px; border-radius: 6px;">
  <p style="margin: 0; color: #991b1b;">El siguiente producto requiere reabastecimiento urgente.</p>
</div>
<table style="width: 100%; margin-top: 16px;">
  <tr><td>Producto</td><td style="text-align: right;"><strong>{{.ProductName}}</strong> ({{.ProductCode}})</td></tr>
  <tr><td>Ubicación</td><td style="text-align: right;">{{loc .Location}}</td></tr>
  <tr><td>Stock actual</td><td style="text-align: right; color: #dc2626;">{{num .CurrentStock}} ml</td></tr>
  <tr><td>Stock mínimo</td><td style="text-align: right;">{{num .MinStock}} ml</td></tr>
  <tr><td>Déficit</td><td style="text-align: right;">{{num .Deficit}} ml</td></tr>
</table>{{end}}
<p style="margin-top: 20px; color: #dc2626; text-align: center; font-weight: 500;">Por favor realiza un reabastecimiento lo antes posible.</p>
{{- end}}
{{end}}`
