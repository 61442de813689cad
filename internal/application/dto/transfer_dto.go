package dto

import (
	"time"

	"github.com/jhoicas/inventario-bares/internal/domain/entity"
)

// TransferItemInput ítem a traspasar (unit_type ml o bottles).
type TransferItemInput struct {
	ProductID string `json:"product_id"`
	Quantity  int64  `json:"quantity"`
	UnitType  string `json:"unit_type"`
}

// CreateTransferRequest body para POST /api/transfers.
type CreateTransferRequest struct {
	FromLocation string              `json:"from_location"`
	ToLocation   string              `json:"to_location"`
	Notes        string              `json:"notes,omitempty"`
	Items        []TransferItemInput `json:"items"`
}

// TransferItemResponse ítem de un traspaso.
type TransferItemResponse struct {
	ID          string `json:"id"`
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name,omitempty"`
	QuantityMl  int64  `json:"quantity_ml"`
}

// TransferResponse salida de un traspaso.
type TransferResponse struct {
	ID           string                 `json:"id"`
	FromLocation string                 `json:"from_location"`
	ToLocation   string                 `json:"to_location"`
	CreatedBy    string                 `json:"created_by"`
	Status       string                 `json:"status"`
	Notes        string                 `json:"notes,omitempty"`
	ConfirmedBy  *string                `json:"confirmed_by,omitempty"`
	ConfirmedAt  *time.Time             `json:"confirmed_at,omitempty"`
	CreatedAt    time.Time              `json:"created_at"`
	Items        []TransferItemResponse `json:"items"`
}

// TransferListResponse lista paginada de traspasos.
type TransferListResponse struct {
	Items []TransferResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}

// TransferWithChangesResponse traspaso junto a los cambios del ledger que produjo.
type TransferWithChangesResponse struct {
	Transfer TransferResponse       `json:"transfer"`
	Changes  []LedgerChangeResponse `json:"changes"`
}

// TransferFromEntity construye la respuesta del traspaso.
func TransferFromEntity(t *entity.Transfer) *TransferResponse {
	if t == nil {
		return nil
	}
	out := &TransferResponse{
		ID:           t.ID,
		FromLocation: string(t.FromLocation),
		ToLocation:   string(t.ToLocation),
		CreatedBy:    t.CreatedBy,
		Status:       string(t.Status),
		Notes:        t.Notes,
		ConfirmedBy:  t.ConfirmedBy,
		ConfirmedAt:  t.ConfirmedAt,
		CreatedAt:    t.CreatedAt,
		Items:        make([]TransferItemResponse, 0, len(t.Items)),
	}
	for _, it := range t.Items {
		item := TransferItemResponse{ID: it.ID, ProductID: it.ProductID, QuantityMl: it.QuantityMl}
		if it.Product != nil {
			item.ProductName = it.Product.Name
		}
		out.Items = append(out.Items, item)
	}
	return out
}
