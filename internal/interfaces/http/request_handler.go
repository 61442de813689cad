package http

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-bares/internal/application/audit"
	"github.com/jhoicas/inventario-bares/internal/application/dto"
	"github.com/jhoicas/inventario-bares/internal/application/request"
	"github.com/jhoicas/inventario-bares/internal/application/usecase"
	"github.com/jhoicas/inventario-bares/internal/domain/entity"
	"github.com/jhoicas/inventario-bares/internal/domain/repository"
	"github.com/jhoicas/inventario-bares/internal/infrastructure/pdf"
)

// RequestHandler maneja las solicitudes de stock de los bares (protegido).
type RequestHandler struct {
	svc      *request.Service
	users    *usecase.UserUseCase
	receipts *pdf.ReceiptGenerator
}

// NewRequestHandler construye el handler.
func NewRequestHandler(svc *request.Service, users *usecase.UserUseCase, receipts *pdf.ReceiptGenerator) *RequestHandler {
	return &RequestHandler{svc: svc, users: users, receipts: receipts}
}

// Create godoc
// @Summary      Crear solicitud de stock
// @Tags         requests
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateRequestRequest  true  "Destino e ítems"
// @Success      201   {object}  dto.RequestResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Router       /api/requests [post]
func (h *RequestHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateRequestRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	items := make([]request.ItemInput, 0, len(in.Items))
	for _, it := range in.Items {
		items = append(items, request.ItemInput{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			UnitType:  entity.UnitType(it.UnitType),
			Notes:     it.Notes,
		})
	}
	out, err := h.svc.Create(c.UserContext(), ActorFrom(c), request.CreateInput{
		Location: entity.Location(in.Location),
		Items:    items,
		Notes:    in.Notes,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.RequestFromEntity(out))
}

// List godoc
// @Summary      Listar solicitudes
// @Tags         requests
// @Security     Bearer
// @Produce      json
// @Param        status    query  string  false  "pending | approved | rejected | delivered"
// @Param        location  query  string  false  "bar_a | bar_b"
// @Param        limit     query  int     false  "Límite"  default(20)
// @Param        offset    query  int     false  "Offset"  default(0)
// @Success      200       {object}  dto.RequestListResponse
// @Router       /api/requests [get]
func (h *RequestHandler) List(c *fiber.Ctx) error {
	loc, ok := locationQuery(c)
	if !ok {
		return badQuery(c, "ubicación desconocida")
	}
	page := pageFromQuery(c)
	filter := repository.RequestFilter{Location: loc, Limit: page.Limit, Offset: page.Offset}
	if s := c.Query("status"); s != "" {
		status := entity.RequestStatus(s)
		filter.Status = &status
	}
	list, err := h.svc.List(c.UserContext(), ActorFrom(c), filter)
	if err != nil {
		return writeError(c, err)
	}
	items := make([]dto.RequestResponse, 0, len(list))
	for _, r := range list {
		items = append(items, *dto.RequestFromEntity(r))
	}
	return c.JSON(dto.RequestListResponse{Items: items, Page: page.Response()})
}

// GetByID godoc
// @Summary      Obtener solicitud
// @Tags         requests
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la solicitud"
// @Success      200  {object}  dto.RequestResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/requests/{id} [get]
func (h *RequestHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.svc.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.RequestFromEntity(out))
}

// Approve godoc
// @Summary      Aprobar solicitud
// @Description  Marca la disponibilidad por ítem; los ítems omitidos quedan disponibles.
// @Tags         requests
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                     true   "ID de la solicitud"
// @Param        body  body  dto.ApproveRequestRequest  false  "Disponibilidad por ítem"
// @Success      200   {object}  dto.RequestResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/requests/{id}/approve [post]
func (h *RequestHandler) Approve(c *fiber.Ctx) error {
	var in dto.ApproveRequestRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return badBody(c)
		}
	}
	out, err := h.svc.Approve(c.UserContext(), ActorFrom(c), c.Params("id"), in.Availability)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.RequestFromEntity(out))
}

// Reject godoc
// @Summary      Rechazar solicitud
// @Tags         requests
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la solicitud"
// @Success      200  {object}  dto.RequestResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/requests/{id}/reject [post]
func (h *RequestHandler) Reject(c *fiber.Ctx) error {
	out, err := h.svc.Reject(c.UserContext(), ActorFrom(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.RequestFromEntity(out))
}

// Deliver godoc
// @Summary      Entregar solicitud
// @Description  Descuenta bodega y suma al bar de destino en una sola transacción.
// @Tags         requests
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la solicitud"
// @Success      200  {object}  dto.DeliveryResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/requests/{id}/deliver [post]
func (h *RequestHandler) Deliver(c *fiber.Ctx) error {
	res, err := h.svc.Deliver(c.UserContext(), ActorFrom(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	movements := res.StockMovements
	if movements == nil {
		movements = []entity.StockMovement{}
	}
	return c.JSON(dto.DeliveryResponse{Request: *dto.RequestFromEntity(res.Request), StockMovements: movements})
}

// Receipt godoc
// @Summary      Comprobante de entrega en PDF
// @Tags         requests
// @Security     Bearer
// @Produce      application/pdf
// @Param        id   path  string  true  "ID de la solicitud"
// @Success      200  {file}    binary
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/requests/{id}/receipt [get]
func (h *RequestHandler) Receipt(c *fiber.Ctx) error {
	ctx := c.UserContext()
	req, err := h.svc.Get(ctx, c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	var deliverer string
	if req.DeliveredBy != nil {
		if u, err := h.users.GetByID(ctx, *req.DeliveredBy); err == nil {
			deliverer = u.FullName
		}
	}
	body, err := h.receipts.Generate(ctx, pdf.DeliveryReceipt{Request: req, DelivererName: deliverer, Zone: audit.Zone()})
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`inline; filename="entrega_%s.pdf"`, req.ID))
	return c.Send(body)
}
