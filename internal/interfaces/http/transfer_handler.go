package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-bares/internal/application/dto"
	"github.com/jhoicas/inventario-bares/internal/application/transfer"
	"github.com/jhoicas/inventario-bares/internal/domain/entity"
	"github.com/jhoicas/inventario-bares/internal/domain/repository"
)

// TransferHandler maneja los traspasos entre ubicaciones (protegido).
type TransferHandler struct {
	svc *transfer.Service
}

// NewTransferHandler construye el handler.
func NewTransferHandler(svc *transfer.Service) *TransferHandler {
	return &TransferHandler{svc: svc}
}

// Create godoc
// @Summary      Crear traspaso
// @Description  Descuenta el origen al crear; el destino se acredita al confirmar.
// @Tags         transfers
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateTransferRequest  true  "Origen, destino e ítems"
// @Success      201   {object}  dto.TransferWithChangesResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Router       /api/transfers [post]
func (h *TransferHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateTransferRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	items := make([]transfer.ItemInput, 0, len(in.Items))
	for _, it := range in.Items {
		items = append(items, transfer.ItemInput{ProductID: it.ProductID, Quantity: it.Quantity, UnitType: entity.UnitType(it.UnitType)})
	}
	res, err := h.svc.Create(c.UserContext(), ActorFrom(c), transfer.CreateInput{
		FromLocation: entity.Location(in.FromLocation),
		ToLocation:   entity.Location(in.ToLocation),
		Items:        items,
		Notes:        in.Notes,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.TransferWithChangesResponse{
		Transfer: *dto.TransferFromEntity(res.Transfer),
		Changes:  dto.LedgerChangesFromEntity(res.SourceChanges),
	})
}

// Confirm godoc
// @Summary      Confirmar recepción del traspaso
// @Tags         transfers
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del traspaso"
// @Success      200  {object}  dto.TransferWithChangesResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/transfers/{id}/confirm [post]
func (h *TransferHandler) Confirm(c *fiber.Ctx) error {
	res, err := h.svc.Confirm(c.UserContext(), ActorFrom(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.TransferWithChangesResponse{
		Transfer: *dto.TransferFromEntity(res.Transfer),
		Changes:  dto.LedgerChangesFromEntity(res.DestinationChanges),
	})
}

// List godoc
// @Summary      Listar traspasos
// @Tags         transfers
// @Security     Bearer
// @Produce      json
// @Param        status    query  string  false  "pending | completed"
// @Param        location  query  string  false  "Origen o destino"
// @Param        limit     query  int     false  "Límite"  default(20)
// @Param        offset    query  int     false  "Offset"  default(0)
// @Success      200       {object}  dto.TransferListResponse
// @Router       /api/transfers [get]
func (h *TransferHandler) List(c *fiber.Ctx) error {
	loc, ok := locationQuery(c)
	if !ok {
		return badQuery(c, "ubicación desconocida")
	}
	page := pageFromQuery(c)
	filter := repository.TransferFilter{Location: loc, Limit: page.Limit, Offset: page.Offset}
	if s := c.Query("status"); s != "" {
		status := entity.TransferStatus(s)
		filter.Status = &status
	}
	list, err := h.svc.List(c.UserContext(), filter)
	if err != nil {
		return writeError(c, err)
	}
	items := make([]dto.TransferResponse, 0, len(list))
	for _, t := range list {
		items = append(items, *dto.TransferFromEntity(t))
	}
	return c.JSON(dto.TransferListResponse{Items: items, Page: page.Response()})
}

// GetByID godoc
// @Summary      Obtener traspaso
// @Tags         transfers
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del traspaso"
// @Success      200  {object}  dto.TransferResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/transfers/{id} [get]
func (h *TransferHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.svc.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.TransferFromEntity(out))
}
