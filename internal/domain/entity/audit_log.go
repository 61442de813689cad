package entity

import (
	"encoding/json"
	"fmt"
	"time"
)

// AuditAction tipo de acción registrada (enum cerrado).
type AuditAction string

const (
	ActionRequestCreated    AuditAction = "request_created"
	ActionRequestApproved   AuditAction = "request_approved"
	ActionRequestRejected   AuditAction = "request_rejected"
	ActionRequestDelivered  AuditAction = "request_delivered"
	ActionTransferCreated   AuditAction = "transfer_created"
	ActionTransferCompleted AuditAction = "transfer_completed"
	ActionStockAdjustment   AuditAction = "stock_adjustment"
	ActionProductCreated    AuditAction = "product_created"
	ActionProductUpdated    AuditAction = "product_updated"
	ActionUserCreated       AuditAction = "user_created"
	ActionUserUpdated       AuditAction = "user_updated"
)

var actionLabels = map[AuditAction]string{
	ActionRequestCreated:    "Solicitud Creada",
	ActionRequestApproved:   "Solicitud Aprobada",
	ActionRequestRejected:   "Solicitud Rechazada",
	ActionRequestDelivered:  "Solicitud Entregada",
	ActionTransferCreated:   "Traspaso Creado",
	ActionTransferCompleted: "Traspaso Completado",
	ActionStockAdjustment:   "Ajuste de Stock",
	ActionProductCreated:    "Producto Creado",
	ActionProductUpdated:    "Producto Actualizado",
	ActionUserCreated:       "Usuario Creado",
	ActionUserUpdated:       "Usuario Actualizado",
}

// Valid indica si la acción pertenece al enum.
func (a AuditAction) Valid() bool {
	_, ok := actionLabels[a]
	return ok
}

// Label etiqueta en español para el historial.
func (a AuditAction) Label() string {
	if l, ok := actionLabels[a]; ok {
		return l
	}
	return string(a)
}

// Tipos de entidad auditada.
const (
	EntityRequest   = "request"
	EntityTransfer  = "transfer"
	EntityInventory = "inventory"
	EntityProduct   = "product"
	EntityUser      = "user"
)

// AuditLogEntry registro inmutable de una mutación.
type AuditLogEntry struct {
	ID         string
	UserID     string
	Action     AuditAction
	EntityType string
	EntityID   string
	Location   *Location
	Details    AuditDetails
	CreatedAt  time.Time

	// Campos unidos (no siempre poblados).
	UserName string
}

// AuditDetails carga tipada por acción. Cada variante declara a qué acción pertenece.
type AuditDetails interface {
	AuditAction() AuditAction
}

// ItemSummary ítem resumido tal como se muestra en el historial.
type ItemSummary struct {
	ProductID   string `json:"product_id,omitempty"`
	Name        string `json:"name"`
	Code        string `json:"code,omitempty"`
	Quantity    int64  `json:"quantity"`
	Unit        string `json:"unit"`
	IsAvailable *bool  `json:"is_available,omitempty"`
}

// StockMovement movimiento bodega → destino registrado al entregar una solicitud.
type StockMovement struct {
	ProductID         string   `json:"product_id"`
	ProductName       string   `json:"product_name"`
	ProductCode       string   `json:"product_code"`
	Quantity          int64    `json:"quantity_moved"`
	Unit              UnitType `json:"unit"`
	QuantityMl        int64    `json:"quantity_ml"`
	WarehouseBefore   int64    `json:"bodega_before"`
	WarehouseAfter    int64    `json:"bodega_after"`
	DestinationBefore int64    `json:"destination_before"`
	DestinationAfter  int64    `json:"destination_after"`
}

type RequestCreatedDetails struct {
	RequesterName string        `json:"requester_name"`
	ItemsCount    int           `json:"items_count"`
	Notes         string        `json:"notes,omitempty"`
	Items         []ItemSummary `json:"items"`
}

type RequestApprovedDetails struct {
	ApproverName  string        `json:"approver_name"`
	ItemsCount    int           `json:"items_count"`
	ItemsApproved int           `json:"items_approved"`
	StatusChange  string        `json:"status_change"`
	Items         []ItemSummary `json:"items"`
}

type RequestRejectedDetails struct {
	ApproverName string `json:"approver_name"`
	StatusChange string `json:"status_change"`
}

type RequestDeliveredDetails struct {
	DelivererName  string          `json:"deliverer_name"`
	StatusChange   string          `json:"status_change"`
	Destination    Location        `json:"destination"`
	ItemsCount     int             `json:"items_count"`
	StockMovements []StockMovement `json:"stock_movements"`
}

type TransferCreatedDetails struct {
	CreatorName   string         `json:"creator_name"`
	FromLocation  Location       `json:"from_location"`
	ToLocation    Location       `json:"to_location"`
	ItemsCount    int            `json:"items_count"`
	Notes         string         `json:"notes,omitempty"`
	Items         []ItemSummary  `json:"items"`
	SourceChanges []LedgerChange `json:"source_changes"`
}

type TransferCompletedDetails struct {
	ConfirmerName      string         `json:"confirmer_name"`
	StatusChange       string         `json:"status_change"`
	FromLocation       Location       `json:"from_location"`
	ToLocation         Location       `json:"to_location"`
	ItemsCount         int            `json:"items_count"`
	DestinationChanges []LedgerChange `json:"destination_changes"`
}

type StockAdjustmentDetails struct {
	ProductName string `json:"product_name"`
	ProductCode string `json:"product_code"`
	Before      int64  `json:"before"`
	After       int64  `json:"after"`
	MinStockMl  *int64 `json:"min_stock_ml,omitempty"`
}

type ProductDetails struct {
	Code     string `json:"code"`
	Name     string `json:"name"`
	FormatMl *int64 `json:"format_ml,omitempty"`
	IsActive bool   `json:"is_active"`
	action   AuditAction
}

type UserDetails struct {
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Role     Role   `json:"role"`
	IsActive bool   `json:"is_active"`
	action   AuditAction
}

func (RequestCreatedDetails) AuditAction() AuditAction    { return ActionRequestCreated }
func (RequestApprovedDetails) AuditAction() AuditAction   { return ActionRequestApproved }
func (RequestRejectedDetails) AuditAction() AuditAction   { return ActionRequestRejected }
func (RequestDeliveredDetails) AuditAction() AuditAction  { return ActionRequestDelivered }
func (TransferCreatedDetails) AuditAction() AuditAction   { return ActionTransferCreated }
func (TransferCompletedDetails) AuditAction() AuditAction { return ActionTransferCompleted }
func (StockAdjustmentDetails) AuditAction() AuditAction   { return ActionStockAdjustment }

func (d ProductDetails) AuditAction() AuditAction {
	if d.action == "" {
		return ActionProductUpdated
	}
	return d.action
}

func (d UserDetails) AuditAction() AuditAction {
	if d.action == "" {
		return ActionUserUpdated
	}
	return d.action
}

// NewProductDetails construye el detalle de product_created o product_updated.
func NewProductDetails(action AuditAction, p *Product) ProductDetails {
	return ProductDetails{Code: p.Code, Name: p.Name, FormatMl: p.FormatMl, IsActive: p.IsActive, action: action}
}

// NewUserDetails construye el detalle de user_created o user_updated.
func NewUserDetails(action AuditAction, u *User) UserDetails {
	return UserDetails{Email: u.Email, FullName: u.FullName, Role: u.Role, IsActive: u.IsActive, action: action}
}

// DecodeAuditDetails reconstruye la variante tipada a partir del JSON persistido.
func DecodeAuditDetails(action AuditAction, raw []byte) (AuditDetails, error) {
	if len(raw) == 0 {
		raw = []byte("{}")
	}
	switch action {
	case ActionRequestCreated:
		return decodeDetails(action, raw, RequestCreatedDetails{})
	case ActionRequestApproved:
		return decodeDetails(action, raw, RequestApprovedDetails{})
	case ActionRequestRejected:
		return decodeDetails(action, raw, RequestRejectedDetails{})
	case ActionRequestDelivered:
		return decodeDetails(action, raw, RequestDeliveredDetails{})
	case ActionTransferCreated:
		return decodeDetails(action, raw, TransferCreatedDetails{})
	case ActionTransferCompleted:
		return decodeDetails(action, raw, TransferCompletedDetails{})
	case ActionStockAdjustment:
		return decodeDetails(action, raw, StockAdjustmentDetails{})
	case ActionProductCreated, ActionProductUpdated:
		return decodeDetails(action, raw, ProductDetails{action: action})
	case ActionUserCreated, ActionUserUpdated:
		return decodeDetails(action, raw, UserDetails{action: action})
	}
	return nil, fmt.Errorf("acción de auditoría desconocida: %q", action)
}

func decodeDetails[T AuditDetails](action AuditAction, raw []byte, v T) (AuditDetails, error) {
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("decodificar detalle %s: %w", action, err)
	}
	return v, nil
}
