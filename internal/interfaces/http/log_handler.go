package http

import (
	"bytes"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-bares/internal/application/audit"
	"github.com/jhoicas/inventario-bares/internal/application/dto"
	"github.com/jhoicas/inventario-bares/internal/domain/entity"
	"github.com/jhoicas/inventario-bares/internal/domain/repository"
	"github.com/jhoicas/inventario-bares/internal/infrastructure/spreadsheet"
)

// LogHandler expone el historial de auditoría (protegido).
type LogHandler struct {
	svc *audit.Service
}

// NewLogHandler construye el handler.
func NewLogHandler(svc *audit.Service) *LogHandler {
	return &LogHandler{svc: svc}
}

// List godoc
// @Summary      Historial de movimientos
// @Tags         logs
// @Security     Bearer
// @Produce      json
// @Param        action    query  string  false  "Acción (request_created, stock_adjustment, ...)"
// @Param        user_id   query  string  false  "Usuario"
// @Param        location  query  string  false  "Ubicación"
// @Param        from      query  string  false  "Desde (YYYY-MM-DD o RFC3339)"
// @Param        to        query  string  false  "Hasta (YYYY-MM-DD o RFC3339)"
// @Param        limit     query  int     false  "Límite"  default(20)
// @Param        offset    query  int     false  "Offset"  default(0)
// @Success      200       {object}  dto.AuditLogListResponse
// @Failure      400       {object}  dto.ErrorResponse
// @Router       /api/logs [get]
func (h *LogHandler) List(c *fiber.Ctx) error {
	filter, err := auditFilter(c)
	if err != nil {
		return badQuery(c, err.Error())
	}
	page := pageFromQuery(c)
	filter.Limit, filter.Offset = page.Limit, page.Offset
	entries, err := h.svc.List(c.UserContext(), filter)
	if err != nil {
		return writeError(c, err)
	}
	items := make([]dto.AuditLogResponse, 0, len(entries))
	for _, e := range entries {
		items = append(items, dto.AuditLogFromEntity(e))
	}
	return c.JSON(dto.AuditLogListResponse{Items: items, Page: page.Response()})
}

// Export godoc
// @Summary      Exportar historial
// @Tags         logs
// @Security     Bearer
// @Produce      octet-stream
// @Param        format    query  string  false  "csv | xlsx"  default(csv)
// @Param        action    query  string  false  "Acción"
// @Param        location  query  string  false  "Ubicación"
// @Param        from      query  string  false  "Desde"
// @Param        to        query  string  false  "Hasta"
// @Success      200
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/logs/export [get]
func (h *LogHandler) Export(c *fiber.Ctx) error {
	format, err := spreadsheet.ParseFormat(c.Query("format", "csv"))
	if err != nil {
		return badQuery(c, "format debe ser csv o xlsx")
	}
	filter, err := auditFilter(c)
	if err != nil {
		return badQuery(c, err.Error())
	}
	rows, err := h.svc.ExportRows(c.UserContext(), filter)
	if err != nil {
		return writeError(c, err)
	}
	values := make([][]string, 0, len(rows))
	for _, r := range rows {
		values = append(values, r.Values())
	}
	var buf bytes.Buffer
	if err := spreadsheet.Write(&buf, format, "Historial", audit.Columns, values); err != nil {
		return writeError(c, err)
	}
	return sendFile(c, format, "historial", buf.Bytes())
}

type queryError string

func (e queryError) Error() string { return string(e) }

func auditFilter(c *fiber.Ctx) (repository.AuditFilter, error) {
	var filter repository.AuditFilter
	if a := c.Query("action"); a != "" {
		action := entity.AuditAction(a)
		filter.Action = &action
	}
	filter.UserID = c.Query("user_id")
	loc, ok := locationQuery(c)
	if !ok {
		return filter, queryError("ubicación desconocida")
	}
	filter.Location = loc
	if filter.From, ok = dateQuery(c, "from", false); !ok {
		return filter, queryError("from inválido")
	}
	if filter.To, ok = dateQuery(c, "to", true); !ok {
		return filter, queryError("to inválido")
	}
	return filter, nil
}
