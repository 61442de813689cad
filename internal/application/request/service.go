// Package request implementa el flujo de solicitudes de stock de un bar a bodega:
// pending → approved → delivered, o pending → rejected.
package request

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jhoicas/inventario-bares/internal/application/audit"
	"github.com/jhoicas/inventario-bares/internal/application/inventory"
	"github.com/jhoicas/inventario-bares/internal/application/notification"
	"github.com/jhoicas/inventario-bares/internal/domain"
	"github.com/jhoicas/inventario-bares/internal/domain/entity"
	stock "github.com/jhoicas/inventario-bares/internal/domain/inventory"
	"github.com/jhoicas/inventario-bares/internal/domain/policy"
	"github.com/jhoicas/inventario-bares/internal/domain/repository"
)

// Service casos de uso del flujo de solicitudes.
type Service struct {
	txRunner repository.TxRunner
	requests repository.RequestRepository
	products repository.ProductRepository
	audit    *audit.Writer
	events   notification.Publisher
	log      zerolog.Logger
	tracer   trace.Tracer
	now      func() time.Time
}

// NewService construye el servicio de solicitudes.
func NewService(
	txRunner repository.TxRunner,
	requestRepo repository.RequestRepository,
	productRepo repository.ProductRepository,
	auditWriter *audit.Writer,
	events notification.Publisher,
	log zerolog.Logger,
) *Service {
	return &Service{
		txRunner: txRunner,
		requests: requestRepo,
		products: productRepo,
		audit:    auditWriter,
		events:   events,
		log:      log,
		tracer:   otel.Tracer("inventario-bares/request"),
		now:      time.Now,
	}
}

// SetClock reemplaza la fuente de tiempo (tests).
func (s *Service) SetClock(now func() time.Time) { s.now = now }

// ItemInput ítem pedido.
type ItemInput struct {
	ProductID string
	Quantity  int64
	UnitType  entity.UnitType
	Notes     string
}

// CreateInput datos de una nueva solicitud.
type CreateInput struct {
	Location entity.Location
	Items    []ItemInput
	Notes    string
}

// Create registra una solicitud pending con sus ítems. No toca stock.
func (s *Service) Create(ctx context.Context, actor entity.Actor, in CreateInput) (*entity.Request, error) {
	ctx, span := s.tracer.Start(ctx, "request.Create", trace.WithAttributes(attribute.String("location", string(in.Location))))
	defer span.End()

	if err := authorize(actor, policy.StateNew, entity.RequestPending); err != nil {
		return nil, err
	}
	if !in.Location.IsBar() {
		return nil, domain.Invalid("location", "el destino debe ser un bar")
	}
	if !policy.CanRequestFor(actor, in.Location) {
		return nil, domain.ErrForbidden
	}
	if len(in.Items) == 0 {
		return nil, domain.Invalid("items", "la solicitud debe tener al menos un producto")
	}

	ids := make([]string, 0, len(in.Items))
	for i, it := range in.Items {
		if it.ProductID == "" {
			return nil, domain.Invalid(fmt.Sprintf("items[%d].product_id", i), "requerido")
		}
		if it.Quantity <= 0 {
			return nil, domain.Invalid(fmt.Sprintf("items[%d].quantity", i), "debe ser mayor que 0")
		}
		if !it.UnitType.Valid() {
			return nil, domain.Invalid(fmt.Sprintf("items[%d].unit_type", i), "unidad desconocida")
		}
		ids = append(ids, it.ProductID)
	}
	products, err := s.products.GetByIDs(ctx, ids)
	if err != nil {
		return nil, domain.Persistence("product.get_many", err)
	}
	for i, it := range in.Items {
		if products[it.ProductID] == nil {
			return nil, domain.Invalid(fmt.Sprintf("items[%d].product_id", i), "producto inexistente")
		}
		if !stock.FitsMl(it.Quantity, it.UnitType, products[it.ProductID]) {
			return nil, domain.Invalid(fmt.Sprintf("items[%d].quantity", i), "cantidad fuera de rango")
		}
	}

	now := s.now()
	req := &entity.Request{
		ID:          uuid.New().String(),
		RequesterID: actor.UserID,
		Location:    in.Location,
		Status:      entity.RequestPending,
		Notes:       in.Notes,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	for _, it := range in.Items {
		req.Items = append(req.Items, entity.RequestItem{
			ID:                uuid.New().String(),
			RequestID:         req.ID,
			ProductID:         it.ProductID,
			QuantityRequested: it.Quantity,
			UnitType:          it.UnitType,
			Notes:             it.Notes,
			Product:           products[it.ProductID],
		})
	}

	err = s.txRunner.Run(ctx, func(repos repository.TxRepos) error {
		if err := repos.Requests.Create(ctx, req); err != nil {
			return domain.Persistence("request.create", err)
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "create failed")
		return nil, err
	}

	summary := summarize(req.Items)
	s.audit.Record(ctx, actor, entity.EntityRequest, req.ID, &req.Location, entity.RequestCreatedDetails{
		RequesterName: actor.Name,
		ItemsCount:    len(req.Items),
		Notes:         req.Notes,
		Items:         summary,
	})
	s.events.Publish(ctx, notification.NewEvent(notification.LocationStaff(req.Location), notification.RequestCreated{
		RequestID:     req.ID,
		RequesterName: actor.Name,
		Location:      req.Location,
		ItemsCount:    len(req.Items),
		Notes:         req.Notes,
		Items:         itemLines(req.Items, false),
	}, now))
	s.log.Info().Str("request_id", req.ID).Str("location", string(req.Location)).Int("items", len(req.Items)).Msg("solicitud creada")
	return req, nil
}

// Approve marca disponibilidad por ítem (true si no se indica) y pasa a approved. No mueve stock.
func (s *Service) Approve(ctx context.Context, actor entity.Actor, id string, availability map[string]bool) (*entity.Request, error) {
	ctx, span := s.tracer.Start(ctx, "request.Approve", trace.WithAttributes(attribute.String("request_id", id)))
	defer span.End()

	req, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorize(actor, string(req.Status), entity.RequestApproved); err != nil {
		return nil, err
	}
	known := make(map[string]bool, len(req.Items))
	for _, it := range req.Items {
		known[it.ID] = true
	}
	for itemID := range availability {
		if !known[itemID] {
			return nil, domain.Invalid("availability", fmt.Sprintf("ítem %s no pertenece a la solicitud", itemID))
		}
	}

	now := s.now()
	err = s.txRunner.Run(ctx, func(repos repository.TxRepos) error {
		if err := repos.Requests.UpdateStatus(ctx, req.ID, entity.RequestPending, entity.RequestApproved, actor.UserID, now); err != nil {
			return domain.Persistence("request.update_status", err)
		}
		for i := range req.Items {
			available := true
			if v, ok := availability[req.Items[i].ID]; ok {
				available = v
			}
			if err := repos.Requests.SetItemAvailability(ctx, req.ID, req.Items[i].ID, available); err != nil {
				return domain.Persistence("request.set_item_availability", err)
			}
			req.Items[i].IsAvailable = &available
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	req.Status = entity.RequestApproved
	req.ApprovedBy, req.ApprovedAt = &actor.UserID, &now
	req.UpdatedAt = now

	approved := 0
	for _, it := range req.Items {
		if it.Deliverable() {
			approved++
		}
	}
	s.audit.Record(ctx, actor, entity.EntityRequest, req.ID, &req.Location, entity.RequestApprovedDetails{
		ApproverName:  actor.Name,
		ItemsCount:    len(req.Items),
		ItemsApproved: approved,
		StatusChange:  audit.StatusChange(string(entity.RequestPending), string(entity.RequestApproved)),
		Items:         summarize(req.Items),
	})
	s.events.Publish(ctx, notification.NewEvent(notification.User(req.RequesterID), notification.RequestApproved{
		RequestID:     req.ID,
		ApproverName:  actor.Name,
		Location:      req.Location,
		ItemsApproved: approved,
		ItemsTotal:    len(req.Items),
		Items:         itemLines(req.Items, false),
	}, now))
	return req, nil
}

// Reject pasa una solicitud pending a rejected (terminal).
func (s *Service) Reject(ctx context.Context, actor entity.Actor, id string) (*entity.Request, error) {
	ctx, span := s.tracer.Start(ctx, "request.Reject", trace.WithAttributes(attribute.String("request_id", id)))
	defer span.End()

	req, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorize(actor, string(req.Status), entity.RequestRejected); err != nil {
		return nil, err
	}
	now := s.now()
	err = s.txRunner.Run(ctx, func(repos repository.TxRepos) error {
		if err := repos.Requests.UpdateStatus(ctx, req.ID, entity.RequestPending, entity.RequestRejected, actor.UserID, now); err != nil {
			return domain.Persistence("request.update_status", err)
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	req.Status = entity.RequestRejected
	req.ApprovedBy, req.ApprovedAt = &actor.UserID, &now
	req.UpdatedAt = now

	s.audit.Record(ctx, actor, entity.EntityRequest, req.ID, &req.Location, entity.RequestRejectedDetails{
		ApproverName: actor.Name,
		StatusChange: audit.StatusChange(string(entity.RequestPending), string(entity.RequestRejected)),
	})
	s.events.Publish(ctx, notification.NewEvent(notification.User(req.RequesterID), notification.RequestRejected{
		RequestID:    req.ID,
		ApproverName: actor.Name,
		Location:     req.Location,
	}, now))
	return req, nil
}

// DeliveryResult solicitud entregada junto con los movimientos aplicados.
type DeliveryResult struct {
	Request        *entity.Request
	StockMovements []entity.StockMovement
}

// Deliver mueve stock de bodega al bar para cada ítem disponible y pasa a delivered.
// Todo ocurre en una transacción: si una escritura falla no queda ningún movimiento aplicado.
func (s *Service) Deliver(ctx context.Context, actor entity.Actor, id string) (*DeliveryResult, error) {
	ctx, span := s.tracer.Start(ctx, "request.Deliver", trace.WithAttributes(attribute.String("request_id", id)))
	defer span.End()

	req, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorize(actor, string(req.Status), entity.RequestDelivered); err != nil {
		return nil, err
	}

	now := s.now()
	var movements []entity.StockMovement
	err = s.txRunner.Run(ctx, func(repos repository.TxRepos) error {
		movements = movements[:0]
		if err := repos.Requests.UpdateStatus(ctx, req.ID, entity.RequestApproved, entity.RequestDelivered, actor.UserID, now); err != nil {
			return domain.Persistence("request.update_status", err)
		}
		var keys []inventory.RowKey
		for _, it := range req.Items {
			if it.Deliverable() {
				keys = append(keys,
					inventory.RowKey{ProductID: it.ProductID, Location: entity.LocationWarehouse},
					inventory.RowKey{ProductID: it.ProductID, Location: req.Location},
				)
			}
		}
		if err := inventory.LockRows(ctx, repos.Inventory, keys); err != nil {
			return err
		}
		for _, it := range req.Items {
			if !it.Deliverable() {
				continue
			}
			product := it.Product
			if product == nil {
				p, err := repos.Products.GetByID(ctx, it.ProductID)
				if err != nil {
					return domain.Persistence("product.get", err)
				}
				if p == nil {
					return fmt.Errorf("producto %s: %w", it.ProductID, domain.ErrNotFound)
				}
				product = p
			}
			// El formato pudo cambiar desde que se creó la solicitud.
			if !stock.FitsMl(it.QuantityRequested, it.UnitType, product) {
				return domain.Invalid("quantity", fmt.Sprintf("ítem %s fuera de rango", it.ID))
			}
			ml := stock.ToMl(it.QuantityRequested, it.UnitType, product)
			wh, err := inventory.ApplyDelta(ctx, repos.Inventory, it.ProductID, entity.LocationWarehouse, -ml)
			if err != nil {
				return err
			}
			dst, err := inventory.ApplyDelta(ctx, repos.Inventory, it.ProductID, req.Location, ml)
			if err != nil {
				return err
			}
			movements = append(movements, entity.StockMovement{
				ProductID:         it.ProductID,
				ProductName:       product.Name,
				ProductCode:       product.Code,
				Quantity:          it.QuantityRequested,
				Unit:              it.UnitType,
				QuantityMl:        ml,
				WarehouseBefore:   wh.Before,
				WarehouseAfter:    wh.After,
				DestinationBefore: dst.Before,
				DestinationAfter:  dst.After,
			})
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "deliver failed")
		s.log.Error().Err(err).Str("request_id", req.ID).Msg("entrega revertida")
		return nil, err
	}
	req.Status = entity.RequestDelivered
	req.DeliveredBy, req.DeliveredAt = &actor.UserID, &now
	req.UpdatedAt = now

	s.audit.Record(ctx, actor, entity.EntityRequest, req.ID, &req.Location, entity.RequestDeliveredDetails{
		DelivererName:  actor.Name,
		StatusChange:   audit.StatusChange(string(entity.RequestApproved), string(entity.RequestDelivered)),
		Destination:    req.Location,
		ItemsCount:     len(movements),
		StockMovements: movements,
	})
	s.events.Publish(ctx, notification.NewEvent(notification.User(req.RequesterID), notification.RequestDelivered{
		RequestID:     req.ID,
		DelivererName: actor.Name,
		Location:      req.Location,
		ItemsCount:    len(movements),
		Items:         itemLines(req.Items, true),
	}, now))
	s.log.Info().Str("request_id", req.ID).Int("movements", len(movements)).Msg("solicitud entregada")
	span.SetStatus(codes.Ok, "delivered")
	return &DeliveryResult{Request: req, StockMovements: movements}, nil
}

// Get devuelve la solicitud con ítems y productos.
func (s *Service) Get(ctx context.Context, id string) (*entity.Request, error) {
	return s.load(ctx, id)
}

// List lista solicitudes; un bartender con bar asignado solo ve las de su bar.
func (s *Service) List(ctx context.Context, actor entity.Actor, filter repository.RequestFilter) ([]*entity.Request, error) {
	if filter.Status != nil && !filter.Status.Valid() {
		return nil, domain.Invalid("status", "estado desconocido")
	}
	if actor.Role == entity.RoleBartender && actor.Location != nil {
		filter.Location = actor.Location
	}
	list, err := s.requests.List(ctx, filter)
	if err != nil {
		return nil, domain.Persistence("request.list", err)
	}
	return list, nil
}

func (s *Service) load(ctx context.Context, id string) (*entity.Request, error) {
	if id == "" {
		return nil, domain.Invalid("id", "requerido")
	}
	req, err := s.requests.GetByID(ctx, id)
	if err != nil {
		return nil, domain.Persistence("request.get", err)
	}
	if req == nil {
		return nil, domain.ErrNotFound
	}
	return req, nil
}

// authorize distingue transición inexistente (ErrInvalidTransition) de rol sin permiso (ErrForbidden).
func authorize(actor entity.Actor, from string, to entity.RequestStatus) error {
	if !policy.IsValidTransition(policy.WorkflowRequest, from, string(to)) {
		return domain.ErrInvalidTransition
	}
	if !policy.CanTransition(actor.Role, policy.WorkflowRequest, from, string(to)) {
		return domain.ErrForbidden
	}
	return nil
}

func summarize(items []entity.RequestItem) []entity.ItemSummary {
	out := make([]entity.ItemSummary, 0, len(items))
	for _, it := range items {
		s := entity.ItemSummary{
			ProductID:   it.ProductID,
			Quantity:    it.QuantityRequested,
			Unit:        string(it.UnitType),
			IsAvailable: it.IsAvailable,
		}
		if it.Product != nil {
			s.Name, s.Code = it.Product.Name, it.Product.Code
		}
		out = append(out, s)
	}
	return out
}

func itemLines(items []entity.RequestItem, deliverableOnly bool) []notification.ItemLine {
	out := make([]notification.ItemLine, 0, len(items))
	for _, it := range items {
		if deliverableOnly && !it.Deliverable() {
			continue
		}
		l := notification.ItemLine{
			Quantity:    decimal.NewFromInt(it.QuantityRequested),
			Unit:        it.UnitType,
			IsAvailable: it.IsAvailable,
		}
		if it.Product != nil {
			l.Name, l.Code = it.Product.Name, it.Product.Code
		}
		out = append(out, l)
	}
	return out
}
