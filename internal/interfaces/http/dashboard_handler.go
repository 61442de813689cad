package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-bares/internal/application/dashboard"
	"github.com/jhoicas/inventario-bares/internal/domain/entity"
)

// DashboardHandler maneja los endpoints de la pantalla principal.
type DashboardHandler struct {
	uc *dashboard.DashboardUseCase
}

// NewDashboardHandler construye el handler.
func NewDashboardHandler(uc *dashboard.DashboardUseCase) *DashboardHandler {
	return &DashboardHandler{uc: uc}
}

// GetSummary devuelve productos activos, stock bajo, agotados y solicitudes pendientes.
// GET /api/dashboard/summary
//
// ?location= limita los conteos de stock a una ubicación. Un bartender con bar
// asignado recibe siempre el resumen de su bar.
func (h *DashboardHandler) GetSummary(c *fiber.Ctx) error {
	loc, ok := locationQuery(c)
	if !ok {
		return badQuery(c, "ubicación desconocida")
	}
	if actor := ActorFrom(c); actor.Location != nil && actor.Role == entity.RoleBartender {
		loc = actor.Location
	}
	summary, err := h.uc.GetSummary(c.UserContext(), loc)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(summary)
}
