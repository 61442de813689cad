package dto

import (
	"time"

	"github.com/jhoicas/inventario-bares/internal/domain/entity"
)

// RequestItemInput ítem solicitado.
type RequestItemInput struct {
	ProductID string `json:"product_id"`
	Quantity  int64  `json:"quantity"`
	UnitType  string `json:"unit_type"`
	Notes     string `json:"notes,omitempty"`
}

// CreateRequestRequest body para POST /api/requests.
type CreateRequestRequest struct {
	Location string             `json:"location"`
	Notes    string             `json:"notes,omitempty"`
	Items    []RequestItemInput `json:"items"`
}

// ApproveRequestRequest body para POST /api/requests/{id}/approve.
// Availability indexa por ID de ítem; los ítems ausentes quedan disponibles.
type ApproveRequestRequest struct {
	Availability map[string]bool `json:"availability"`
}

// RequestItemResponse ítem de una solicitud.
type RequestItemResponse struct {
	ID                string `json:"id"`
	ProductID         string `json:"product_id"`
	ProductName       string `json:"product_name,omitempty"`
	ProductCode       string `json:"product_code,omitempty"`
	QuantityRequested int64  `json:"quantity_requested"`
	UnitType          string `json:"unit_type"`
	IsAvailable       *bool  `json:"is_available"`
	Notes             string `json:"notes,omitempty"`
}

// RequestResponse salida de una solicitud.
type RequestResponse struct {
	ID            string                `json:"id"`
	RequesterID   string                `json:"requester_id"`
	RequesterName string                `json:"requester_name,omitempty"`
	Location      string                `json:"location"`
	Status        string                `json:"status"`
	Notes         string                `json:"notes,omitempty"`
	ApprovedBy    *string               `json:"approved_by,omitempty"`
	ApprovedAt    *time.Time            `json:"approved_at,omitempty"`
	DeliveredBy   *string               `json:"delivered_by,omitempty"`
	DeliveredAt   *time.Time            `json:"delivered_at,omitempty"`
	CreatedAt     time.Time             `json:"created_at"`
	Items         []RequestItemResponse `json:"items"`
}

// RequestListResponse lista paginada de solicitudes.
type RequestListResponse struct {
	Items []RequestResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}

// DeliveryResponse solicitud entregada y los movimientos aplicados.
type DeliveryResponse struct {
	Request        RequestResponse        `json:"request"`
	StockMovements []entity.StockMovement `json:"stock_movements"`
}

// RequestFromEntity construye la respuesta de la solicitud.
func RequestFromEntity(r *entity.Request) *RequestResponse {
	if r == nil {
		return nil
	}
	out := &RequestResponse{
		ID:          r.ID,
		RequesterID: r.RequesterID,
		Location:    string(r.Location),
		Status:      string(r.Status),
		Notes:       r.Notes,
		ApprovedBy:  r.ApprovedBy,
		ApprovedAt:  r.ApprovedAt,
		DeliveredBy: r.DeliveredBy,
		DeliveredAt: r.DeliveredAt,
		CreatedAt:   r.CreatedAt,
		Items:       make([]RequestItemResponse, 0, len(r.Items)),
	}
	if r.Requester != nil {
		out.RequesterName = r.Requester.FullName
	}
	for _, it := range r.Items {
		item := RequestItemResponse{
			ID:                it.ID,
			ProductID:         it.ProductID,
			QuantityRequested: it.QuantityRequested,
			UnitType:          string(it.UnitType),
			IsAvailable:       it.IsAvailable,
			Notes:             it.Notes,
		}
		if it.Product != nil {
			item.ProductName = it.Product.Name
			item.ProductCode = it.Product.Code
		}
		out.Items = append(out.Items, item)
	}
	return out
}
