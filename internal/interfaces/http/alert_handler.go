package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-bares/internal/application/alert"
	"github.com/jhoicas/inventario-bares/internal/application/dto"
	"github.com/jhoicas/inventario-bares/internal/domain/entity"
)

// AlertHandler maneja las configuraciones de alerta de stock mínimo (protegido).
type AlertHandler struct {
	svc *alert.Service
}

// NewAlertHandler construye el handler.
func NewAlertHandler(svc *alert.Service) *AlertHandler {
	return &AlertHandler{svc: svc}
}

// List godoc
// @Summary      Listar alertas con stock actual
// @Tags         alerts
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.AlertStatusResponse
// @Router       /api/alerts [get]
func (h *AlertHandler) List(c *fiber.Ctx) error {
	list, err := h.svc.ListWithStock(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.AlertStatusesFromEntity(list))
}

// Triggered godoc
// @Summary      Alertas activas disparadas
// @Tags         alerts
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.AlertStatusResponse
// @Router       /api/alerts/triggered [get]
func (h *AlertHandler) Triggered(c *fiber.Ctx) error {
	list, err := h.svc.Triggered(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.AlertStatusesFromEntity(list))
}

// Create godoc
// @Summary      Crear alerta
// @Tags         alerts
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.AlertConfigRequest  true  "Producto, ubicación, umbral y destinatarios"
// @Success      201   {object}  dto.AlertConfigResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/alerts [post]
func (h *AlertHandler) Create(c *fiber.Ctx) error {
	var in dto.AlertConfigRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.svc.Create(c.UserContext(), ActorFrom(c), configInput(in))
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.AlertConfigFromEntity(out))
}

// Update godoc
// @Summary      Editar alerta
// @Tags         alerts
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                  true  "ID de la alerta"
// @Param        body  body  dto.AlertConfigRequest  true  "Campos a modificar"
// @Success      200   {object}  dto.AlertConfigResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/alerts/{id} [put]
func (h *AlertHandler) Update(c *fiber.Ctx) error {
	var in dto.AlertConfigRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.svc.Update(c.UserContext(), ActorFrom(c), c.Params("id"), configInput(in))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.AlertConfigFromEntity(out))
}

// Delete godoc
// @Summary      Eliminar alerta
// @Tags         alerts
// @Security     Bearer
// @Param        id   path  string  true  "ID de la alerta"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/alerts/{id} [delete]
func (h *AlertHandler) Delete(c *fiber.Ctx) error {
	if err := h.svc.Delete(c.UserContext(), ActorFrom(c), c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Notify godoc
// @Summary      Enviar correos de las alertas disparadas
// @Tags         alerts
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.NotifyAlertsResponse
// @Router       /api/alerts/notify [post]
func (h *AlertHandler) Notify(c *fiber.Ctx) error {
	n, err := h.svc.NotifyTriggered(c.UserContext(), ActorFrom(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.NotifyAlertsResponse{Notified: n})
}

func configInput(in dto.AlertConfigRequest) alert.ConfigInput {
	return alert.ConfigInput{
		ProductID:       in.ProductID,
		Location:        entity.Location(in.Location),
		MinStockMl:      in.MinStockMl,
		EmailRecipients: in.EmailRecipients,
		IsActive:        in.IsActive,
	}
}
