// Package notification modela la cola de eventos salientes y su entrega por correo.
//
// Los casos de uso publican un Event tipado después de una mutación confirmada; un Dispatcher
// drena la cola en otra goroutine, resuelve destinatarios, localiza el contenido y envía con reintentos.
package notification

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-bares/internal/domain/entity"
)

// EventType clave de plantilla de la notificación.
type EventType string

const (
	EventRequestCreated    EventType = "request_created"
	EventRequestApproved   EventType = "request_approved"
	EventRequestRejected   EventType = "request_rejected"
	EventRequestDelivered  EventType = "request_delivered"
	EventTransferCreated   EventType = "transfer_created"
	EventTransferCompleted EventType = "transfer_completed"
	EventLowStockAlert     EventType = "low_stock_alert"
)

// AudienceKind cómo se resuelven los destinatarios de un evento.
type AudienceKind string

const (
	// AudienceLocationStaff admins activos y bodegueros activos de la ubicación.
	AudienceLocationStaff AudienceKind = "location_staff"
	// AudienceUser un usuario concreto (p. ej. el solicitante).
	AudienceUser AudienceKind = "user"
	// AudienceAdmins todos los admins activos.
	AudienceAdmins AudienceKind = "admins"
	// AudienceEmails lista explícita (destinatarios de una AlertConfig).
	AudienceEmails AudienceKind = "emails"
)

// Audience destinatarios expresados con identificadores; el Resolver los traduce a correos.
type Audience struct {
	Kind     AudienceKind     `json:"kind"`
	Location *entity.Location `json:"location,omitempty"`
	UserID   string           `json:"user_id,omitempty"`
	Emails   []string         `json:"emails,omitempty"`
}

// LocationStaff audiencia del personal de bodega para una ubicación.
func LocationStaff(loc entity.Location) Audience {
	return Audience{Kind: AudienceLocationStaff, Location: &loc}
}

// User audiencia de un único usuario.
func User(userID string) Audience { return Audience{Kind: AudienceUser, UserID: userID} }

// Admins audiencia de administradores.
func Admins() Audience { return Audience{Kind: AudienceAdmins} }

// Emails audiencia con correos explícitos.
func Emails(emails []string) Audience { return Audience{Kind: AudienceEmails, Emails: emails} }

// Payload contenido tipado del evento; cada variante declara su tipo.
type Payload interface {
	EventType() EventType
}

// ItemLine ítem tal como aparece en un correo. Quantity admite decimales (botellas redondeadas).
type ItemLine struct {
	Name        string          `json:"name"`
	Code        string          `json:"code,omitempty"`
	Quantity    decimal.Decimal `json:"quantity"`
	Unit        entity.UnitType `json:"unit"`
	IsAvailable *bool           `json:"is_available,omitempty"`
}

type RequestCreated struct {
	RequestID     string          `json:"request_id"`
	RequesterName string          `json:"requester_name"`
	Location      entity.Location `json:"location"`
	ItemsCount    int             `json:"items_count"`
	Notes         string          `json:"notes,omitempty"`
	Items         []ItemLine      `json:"items"`
}

type RequestApproved struct {
	RequestID     string          `json:"request_id"`
	ApproverName  string          `json:"approver_name"`
	Location      entity.Location `json:"location"`
	ItemsApproved int             `json:"items_approved"`
	ItemsTotal    int             `json:"items_total"`
	Items         []ItemLine      `json:"items"`
}

type RequestRejected struct {
	RequestID    string          `json:"request_id"`
	ApproverName string          `json:"approver_name"`
	Location     entity.Location `json:"location"`
}

type RequestDelivered struct {
	RequestID     string          `json:"request_id"`
	DelivererName string          `json:"deliverer_name"`
	Location      entity.Location `json:"location"`
	ItemsCount    int             `json:"items_count"`
	Items         []ItemLine      `json:"items"`
}

type TransferCreated struct {
	TransferID   string          `json:"transfer_id"`
	CreatorName  string          `json:"creator_name"`
	FromLocation entity.Location `json:"from_location"`
	ToLocation   entity.Location `json:"to_location"`
	ItemsCount   int             `json:"items_count"`
	Items        []ItemLine      `json:"items"`
}

type TransferCompleted struct {
	TransferID    string          `json:"transfer_id"`
	ConfirmerName string          `json:"confirmer_name"`
	FromLocation  entity.Location `json:"from_location"`
	ToLocation    entity.Location `json:"to_location"`
	ItemsCount    int             `json:"items_count"`
	Items         []ItemLine      `json:"items"`
}

type LowStockAlert struct {
	ProductName  string          `json:"product_name"`
	ProductCode  string          `json:"product_code"`
	Location     entity.Location `json:"location"`
	CurrentStock int64           `json:"current_stock"`
	MinStock     int64           `json:"min_stock"`
}

// Deficit ml que faltan para llegar al mínimo.
func (p LowStockAlert) Deficit() int64 { return p.MinStock - p.CurrentStock }

func (RequestCreated) EventType() EventType    { return EventRequestCreated }
func (RequestApproved) EventType() EventType   { return EventRequestApproved }
func (RequestRejected) EventType() EventType   { return EventRequestRejected }
func (RequestDelivered) EventType() EventType  { return EventRequestDelivered }
func (TransferCreated) EventType() EventType   { return EventTransferCreated }
func (TransferCompleted) EventType() EventType { return EventTransferCompleted }
func (LowStockAlert) EventType() EventType     { return EventLowStockAlert }

// Event notificación pendiente de entrega.
type Event struct {
	Audience   Audience
	Payload    Payload
	OccurredAt time.Time
}

// NewEvent construye un evento con marca de tiempo.
func NewEvent(audience Audience, payload Payload, at time.Time) Event {
	return Event{Audience: audience, Payload: payload, OccurredAt: at}
}

// Type tipo del evento según su payload.
func (e Event) Type() EventType {
	if e.Payload == nil {
		return ""
	}
	return e.Payload.EventType()
}

type envelope struct {
	Type       EventType       `json:"type"`
	Audience   Audience        `json:"audience"`
	Payload    json.RawMessage `json:"payload"`
	OccurredAt time.Time       `json:"occurred_at"`
}

// MarshalJSON serializa el evento con su tipo como discriminador (bus Kafka).
func (e Event) MarshalJSON() ([]byte, error) {
	raw, err := json.Marshal(e.Payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(envelope{Type: e.Type(), Audience: e.Audience, Payload: raw, OccurredAt: e.OccurredAt})
}

// UnmarshalJSON reconstruye la variante tipada del payload.
func (e *Event) UnmarshalJSON(data []byte) error {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return err
	}
	var (
		p   Payload
		err error
	)
	switch env.Type {
	case EventRequestCreated:
		p, err = decodePayload(env.Payload, RequestCreated{})
	case EventRequestApproved:
		p, err = decodePayload(env.Payload, RequestApproved{})
	case EventRequestRejected:
		p, err = decodePayload(env.Payload, RequestRejected{})
	case EventRequestDelivered:
		p, err = decodePayload(env.Payload, RequestDelivered{})
	case EventTransferCreated:
		p, err = decodePayload(env.Payload, TransferCreated{})
	case EventTransferCompleted:
		p, err = decodePayload(env.Payload, TransferCompleted{})
	case EventLowStockAlert:
		p, err = decodePayload(env.Payload, LowStockAlert{})
	default:
		return fmt.Errorf("tipo de evento desconocido: %q", env.Type)
	}
	if err != nil {
		return fmt.Errorf("payload %s: %w", env.Type, err)
	}
	*e = Event{Audience: env.Audience, Payload: p, OccurredAt: env.OccurredAt}
	return nil
}

func decodePayload[T Payload](raw json.RawMessage, v T) (Payload, error) {
	if len(raw) == 0 {
		return v, nil
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	return v, nil
}
