package entity

import "time"

// RequestStatus estado de una solicitud de stock.
type RequestStatus string

const (
	RequestPending   RequestStatus = "pending"
	RequestApproved  RequestStatus = "approved"
	RequestRejected  RequestStatus = "rejected"
	RequestDelivered RequestStatus = "delivered"
)

// Terminal indica si el estado no admite más transiciones.
func (s RequestStatus) Terminal() bool {
	return s == RequestRejected || s == RequestDelivered
}

// Valid indica si el estado pertenece al enum.
func (s RequestStatus) Valid() bool {
	switch s {
	case RequestPending, RequestApproved, RequestRejected, RequestDelivered:
		return true
	}
	return false
}

// UnitType unidad en que se pidió un ítem.
type UnitType string

const (
	UnitMl      UnitType = "ml"
	UnitBottles UnitType = "bottles"
	UnitUnits   UnitType = "units"
)

// Valid indica si la unidad es conocida.
func (u UnitType) Valid() bool {
	return u == UnitMl || u == UnitBottles || u == UnitUnits
}

// Label etiqueta en español usada en correos y auditoría.
func (u UnitType) Label() string {
	switch u {
	case UnitBottles:
		return "botellas"
	case UnitUnits:
		return "unidades"
	default:
		return "ml"
	}
}

// Request solicitud de un bartender para reponer su bar desde bodega.
type Request struct {
	ID          string
	RequesterID string
	Location    Location // destino; siempre un bar
	Status      RequestStatus
	Notes       string
	ApprovedBy  *string
	ApprovedAt  *time.Time
	DeliveredBy *string
	DeliveredAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Items []RequestItem

	// Campos unidos (no siempre poblados).
	Requester *User
}

// RequestItem ítem fijo de una solicitud. Solo IsAvailable cambia después de crearla.
type RequestItem struct {
	ID                string
	RequestID         string
	ProductID         string
	QuantityRequested int64
	UnitType          UnitType
	QuantityApproved  *int64 // reservado; el flujo actual no lo usa
	IsAvailable       *bool  // nil = sin decidir
	Notes             string

	Product *Product
}

// Deliverable es verdadero salvo que el ítem se haya marcado explícitamente como no disponible.
func (i RequestItem) Deliverable() bool {
	return i.IsAvailable == nil || *i.IsAvailable
}
