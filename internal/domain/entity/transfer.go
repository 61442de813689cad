package entity

import "time"

// TransferStatus estado de un traspaso.
type TransferStatus string

const (
	TransferPending   TransferStatus = "pending"
	TransferCompleted TransferStatus = "completed"
)

// Valid indica si el estado pertenece al enum.
func (s TransferStatus) Valid() bool {
	return s == TransferPending || s == TransferCompleted
}

// Transfer traspaso de stock entre dos ubicaciones distintas.
// El origen se descuenta al crear; el destino se acredita al confirmar.
type Transfer struct {
	ID           string
	FromLocation Location
	ToLocation   Location
	CreatedBy    string
	Status       TransferStatus
	Notes        string
	ConfirmedBy  *string
	ConfirmedAt  *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time

	Items []TransferItem
}

// TransferItem ítem fijo de un traspaso, ya normalizado a ml.
type TransferItem struct {
	ID         string
	TransferID string
	ProductID  string
	QuantityMl int64

	Product *Product
}
