package http

import (
	"bytes"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-bares/internal/application/dto"
	"github.com/jhoicas/inventario-bares/internal/application/inventory"
	"github.com/jhoicas/inventario-bares/internal/domain/entity"
	"github.com/jhoicas/inventario-bares/internal/infrastructure/spreadsheet"
)

// InventoryHandler maneja las peticiones HTTP del ledger de stock (protegido).
type InventoryHandler struct {
	ledger *inventory.Ledger
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(ledger *inventory.Ledger) *InventoryHandler {
	return &InventoryHandler{ledger: ledger}
}

// List godoc
// @Summary      Listar stock
// @Description  Un bartender con ubicación asignada ve solo su bar salvo que indique otra.
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        location  query  string  false  "warehouse | bar_a | bar_b"
// @Success      200       {array}   dto.InventoryRecordResponse
// @Failure      400       {object}  dto.ErrorResponse
// @Router       /api/inventory [get]
func (h *InventoryHandler) List(c *fiber.Ctx) error {
	loc, ok := h.scope(c)
	if !ok {
		return badQuery(c, "ubicación desconocida")
	}
	records, err := h.ledger.List(c.UserContext(), loc)
	if err != nil {
		return writeError(c, err)
	}
	out := make([]dto.InventoryRecordResponse, 0, len(records))
	for _, r := range records {
		out = append(out, dto.InventoryFromEntity(r))
	}
	return c.JSON(out)
}

// SetQuantity godoc
// @Summary      Editar cantidad de stock
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        product_id  path  string                   true  "ID del producto"
// @Param        location    path  string                   true  "Ubicación"
// @Param        body        body  dto.SetQuantityRequest   true  "Nueva cantidad en ml"
// @Success      200         {object}  dto.LedgerChangeResponse
// @Failure      400         {object}  dto.ErrorResponse
// @Failure      403         {object}  dto.ErrorResponse
// @Failure      404         {object}  dto.ErrorResponse
// @Router       /api/inventory/{product_id}/{location} [put]
func (h *InventoryHandler) SetQuantity(c *fiber.Ctx) error {
	var in dto.SetQuantityRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if in.QuantityMl == nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "quantity_ml es requerido"})
	}
	change, err := h.ledger.SetQuantity(c.UserContext(), ActorFrom(c), c.Params("product_id"), entity.Location(c.Params("location")), *in.QuantityMl)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.LedgerChangesFromEntity([]entity.LedgerChange{change})[0])
}

// SetMinStock godoc
// @Summary      Fijar stock mínimo del registro
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Param        product_id  path  string                  true  "ID del producto"
// @Param        location    path  string                  true  "Ubicación"
// @Param        body        body  dto.SetMinStockRequest  true  "Umbral en ml; null lo elimina"
// @Success      204
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/inventory/{product_id}/{location}/min-stock [put]
func (h *InventoryHandler) SetMinStock(c *fiber.Ctx) error {
	var in dto.SetMinStockRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if err := h.ledger.SetMinStock(c.UserContext(), ActorFrom(c), c.Params("product_id"), entity.Location(c.Params("location")), in.MinStockMl); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Export godoc
// @Summary      Exportar stock
// @Tags         inventory
// @Security     Bearer
// @Produce      octet-stream
// @Param        format    query  string  false  "csv | xlsx"  default(csv)
// @Param        location  query  string  false  "Ubicación"
// @Success      200
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/inventory/export [get]
func (h *InventoryHandler) Export(c *fiber.Ctx) error {
	format, err := spreadsheet.ParseFormat(c.Query("format", "csv"))
	if err != nil {
		return badQuery(c, "format debe ser csv o xlsx")
	}
	loc, ok := locationQuery(c)
	if !ok {
		return badQuery(c, "ubicación desconocida")
	}
	records, err := h.ledger.List(c.UserContext(), loc)
	if err != nil {
		return writeError(c, err)
	}
	rows := inventory.ToStockRows(records)
	values := make([][]string, 0, len(rows))
	for _, r := range rows {
		values = append(values, r.Values())
	}
	var buf bytes.Buffer
	if err := spreadsheet.Write(&buf, format, "Stock", inventory.StockColumns, values); err != nil {
		return writeError(c, err)
	}
	return sendFile(c, format, "stock", buf.Bytes())
}

// scope aplica la ubicación pedida o, para bartenders con bar asignado, la propia.
func (h *InventoryHandler) scope(c *fiber.Ctx) (*entity.Location, bool) {
	loc, ok := locationQuery(c)
	if !ok || loc != nil {
		return loc, ok
	}
	actor := ActorFrom(c)
	if actor.Role == entity.RoleBartender && actor.Location != nil {
		return actor.Location, true
	}
	return nil, true
}

func sendFile(c *fiber.Ctx, format spreadsheet.Format, prefix string, body []byte) error {
	name := fmt.Sprintf("%s_%s.%s", prefix, time.Now().Format("2006-01-02"), format.Extension())
	c.Set(fiber.HeaderContentType, format.ContentType())
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, name))
	return c.Send(body)
}
