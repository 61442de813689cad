// Package transfer implementa los traspasos entre ubicaciones: el origen se descuenta al crear
// y el destino se acredita al confirmar (pending → completed).
package transfer

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

// Service casos de uso de traspasos.
type Service struct {
	txRunner  repository.TxRunner
	transfers repository.TransferRepository
	products  repository.ProductRepository
	audit     *audit.Writer
	events    notification.Publisher
	log       zerolog.Logger
	tracer    trace.Tracer
	now       func() time.Time
}

// NewService construye el servicio de traspasos.
func NewService(
	txRunner repository.TxRunner,
	transferRepo repository.TransferRepository,
	productRepo repository.ProductRepository,
	auditWriter *audit.Writer,
	events notification.Publisher,
	log zerolog.Logger,
) *Service {
	return &Service{
		txRunner:  txRunner,
		transfers: transferRepo,
		products:  productRepo,
		audit:     auditWriter,
		events:    events,
		log:       log,
		tracer:    otel.Tracer("inventario-bares/transfer"),
		now:       time.Now,
	}
}

// SetClock reemplaza la fuente de tiempo (tests).
func (s *Service) SetClock(now func() time.Time) { s.now = now }

// ItemInput ítem a traspasar; se normaliza a ml al crear.
type ItemInput struct {
	ProductID string
	Quantity  int64
	UnitType  entity.UnitType // ml o bottles
}

// CreateInput datos de un nuevo traspaso.
type CreateInput struct {
	FromLocation entity.Location
	ToLocation   entity.Location
	Items        []ItemInput
	Notes        string
}

// CreateResult traspaso creado y el descuento aplicado en origen.
type CreateResult struct {
	Transfer      *entity.Transfer
	SourceChanges []entity.LedgerChange
}

// Create registra el traspaso pending y descuenta el origen de inmediato (recortando en 0).
func (s *Service) Create(ctx context.Context, actor entity.Actor, in CreateInput) (*CreateResult, error) {
	ctx, span := s.tracer.Start(ctx, "transfer.Create", trace.WithAttributes(
		attribute.String("from", string(in.FromLocation)),
		attribute.String("to", string(in.ToLocation)),
	))
	defer span.End()

	if err := authorize(actor, policy.StateNew, entity.TransferPending); err != nil {
		return nil, err
	}
	if !in.FromLocation.Valid() {
		return nil, domain.Invalid("from_location", "ubicación desconocida")
	}
	if !in.ToLocation.Valid() {
		return nil, domain.Invalid("to_location", "ubicación desconocida")
	}
	if in.FromLocation == in.ToLocation {
		return nil, domain.Invalid("to_location", "origen y destino deben ser distintos")
	}
	if len(in.Items) == 0 {
		return nil, domain.Invalid("items", "el traspaso debe tener al menos un producto")
	}
	ids := make([]string, 0, len(in.Items))
	for i, it := range in.Items {
		if it.ProductID == "" {
			return nil, domain.Invalid(fmt.Sprintf("items[%d].product_id", i), "requerido")
		}
		if it.Quantity <= 0 {
			return nil, domain.Invalid(fmt.Sprintf("items[%d].quantity", i), "debe ser mayor que 0")
		}
		if it.UnitType != entity.UnitMl && it.UnitType != entity.UnitBottles {
			return nil, domain.Invalid(fmt.Sprintf("items[%d].unit_type", i), "debe ser ml o bottles")
		}
		ids = append(ids, it.ProductID)
	}
	products, err := s.products.GetByIDs(ctx, ids)
	if err != nil {
		return nil, domain.Persistence("product.get_many", err)
	}

	now := s.now()
	t := &entity.Transfer{
		ID:           uuid.New().String(),
		FromLocation: in.FromLocation,
		ToLocation:   in.ToLocation,
		CreatedBy:    actor.UserID,
		Status:       entity.TransferPending,
		Notes:        in.Notes,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	for i, it := range in.Items {
		p := products[it.ProductID]
		if p == nil {
			return nil, domain.Invalid(fmt.Sprintf("items[%d].product_id", i), "producto inexistente")
		}
		if !stock.FitsMl(it.Quantity, it.UnitType, p) {
			return nil, domain.Invalid(fmt.Sprintf("items[%d].quantity", i), "cantidad fuera de rango")
		}
		t.Items = append(t.Items, entity.TransferItem{
			ID:         uuid.New().String(),
			TransferID: t.ID,
			ProductID:  p.ID,
			QuantityMl: stock.ToMl(it.Quantity, it.UnitType, p),
			Product:    p,
		})
	}

	var changes []entity.LedgerChange
	err = s.txRunner.Run(ctx, func(repos repository.TxRepos) error {
		changes = changes[:0]
		if err := repos.Transfers.Create(ctx, t); err != nil {
			return domain.Persistence("transfer.create", err)
		}
		if err := inventory.LockRows(ctx, repos.Inventory, rowKeys(t.Items, t.FromLocation)); err != nil {
			return err
		}
		for _, it := range t.Items {
			ch, err := inventory.ApplyDelta(ctx, repos.Inventory, it.ProductID, t.FromLocation, -it.QuantityMl)
			if err != nil {
				return err
			}
			ch.ProductName = it.Product.Name
			changes = append(changes, ch)
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "create failed")
		return nil, err
	}

	s.audit.Record(ctx, actor, entity.EntityTransfer, t.ID, &t.FromLocation, entity.TransferCreatedDetails{
		CreatorName:   actor.Name,
		FromLocation:  t.FromLocation,
		ToLocation:    t.ToLocation,
		ItemsCount:    len(t.Items),
		Notes:         t.Notes,
		Items:         summarize(t.Items),
		SourceChanges: changes,
	})
	s.events.Publish(ctx, notification.NewEvent(notification.LocationStaff(t.ToLocation), notification.TransferCreated{
		TransferID:   t.ID,
		CreatorName:  actor.Name,
		FromLocation: t.FromLocation,
		ToLocation:   t.ToLocation,
		ItemsCount:   len(t.Items),
		Items:        itemLines(t.Items, false),
	}, now))
	s.log.Info().Str("transfer_id", t.ID).Str("from", string(t.FromLocation)).Str("to", string(t.ToLocation)).Msg("traspaso creado")
	return &CreateResult{Transfer: t, SourceChanges: changes}, nil
}

// ConfirmResult traspaso completado y el crédito aplicado en destino.
type ConfirmResult struct {
	Transfer           *entity.Transfer
	DestinationChanges []entity.LedgerChange
}

// Confirm acredita el destino por cada ítem (sin recorte) y pasa a completed.
func (s *Service) Confirm(ctx context.Context, actor entity.Actor, id string) (*ConfirmResult, error) {
	ctx, span := s.tracer.Start(ctx, "transfer.Confirm", trace.WithAttributes(attribute.String("transfer_id", id)))
	defer span.End()

	t, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorize(actor, string(t.Status), entity.TransferCompleted); err != nil {
		return nil, err
	}

	now := s.now()
	var changes []entity.LedgerChange
	err = s.txRunner.Run(ctx, func(repos repository.TxRepos) error {
		changes = changes[:0]
		if err := repos.Transfers.UpdateStatus(ctx, t.ID, entity.TransferPending, entity.TransferCompleted, actor.UserID, now); err != nil {
			return domain.Persistence("transfer.update_status", err)
		}
		if err := inventory.LockRows(ctx, repos.Inventory, rowKeys(t.Items, t.ToLocation)); err != nil {
			return err
		}
		for _, it := range t.Items {
			ch, err := inventory.ApplyDelta(ctx, repos.Inventory, it.ProductID, t.ToLocation, it.QuantityMl)
			if err != nil {
				return err
			}
			if it.Product != nil {
				ch.ProductName = it.Product.Name
			}
			changes = append(changes, ch)
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "confirm failed")
		return nil, err
	}
	t.Status = entity.TransferCompleted
	t.ConfirmedBy, t.ConfirmedAt = &actor.UserID, &now
	t.UpdatedAt = now

	s.audit.Record(ctx, actor, entity.EntityTransfer, t.ID, &t.ToLocation, entity.TransferCompletedDetails{
		ConfirmerName:      actor.Name,
		StatusChange:       audit.StatusChange(string(entity.TransferPending), string(entity.TransferCompleted)),
		FromLocation:       t.FromLocation,
		ToLocation:         t.ToLocation,
		ItemsCount:         len(t.Items),
		DestinationChanges: changes,
	})
	s.events.Publish(ctx, notification.NewEvent(notification.LocationStaff(t.FromLocation), notification.TransferCompleted{
		TransferID:    t.ID,
		ConfirmerName: actor.Name,
		FromLocation:  t.FromLocation,
		ToLocation:    t.ToLocation,
		ItemsCount:    len(t.Items),
		Items:         itemLines(t.Items, true),
	}, now))
	return &ConfirmResult{Transfer: t, DestinationChanges: changes}, nil
}

// Get devuelve el traspaso con ítems y productos.
func (s *Service) Get(ctx context.Context, id string) (*entity.Transfer, error) {
	return s.load(ctx, id)
}

// List lista traspasos filtrando por estado y ubicación (origen o destino).
func (s *Service) List(ctx context.Context, filter repository.TransferFilter) ([]*entity.Transfer, error) {
	if filter.Status != nil && !filter.Status.Valid() {
		return nil, domain.Invalid("status", "estado desconocido")
	}
	list, err := s.transfers.List(ctx, filter)
	if err != nil {
		return nil, domain.Persistence("transfer.list", err)
	}
	return list, nil
}

func (s *Service) load(ctx context.Context, id string) (*entity.Transfer, error) {
	if id == "" {
		return nil, domain.Invalid("id", "requerido")
	}
	t, err := s.transfers.GetByID(ctx, id)
	if err != nil {
		return nil, domain.Persistence("transfer.get", err)
	}
	if t == nil {
		return nil, domain.ErrNotFound
	}
	return t, nil
}

func rowKeys(items []entity.TransferItem, loc entity.Location) []inventory.RowKey {
	keys := make([]inventory.RowKey, 0, len(items))
	for _, it := range items {
		keys = append(keys, inventory.RowKey{ProductID: it.ProductID, Location: loc})
	}
	return keys
}

func authorize(actor entity.Actor, from string, to entity.TransferStatus) error {
	if !policy.IsValidTransition(policy.WorkflowTransfer, from, string(to)) {
		return domain.ErrInvalidTransition
	}
	if !policy.CanTransition(actor.Role, policy.WorkflowTransfer, from, string(to)) {
		return domain.ErrForbidden
	}
	return nil
}

func summarize(items []entity.TransferItem) []entity.ItemSummary {
	out := make([]entity.ItemSummary, 0, len(items))
	for _, it := range items {
		s := entity.ItemSummary{ProductID: it.ProductID, Quantity: it.QuantityMl, Unit: string(entity.UnitMl)}
		if it.Product != nil {
			s.Name, s.Code = it.Product.Name, it.Product.Code
		}
		out = append(out, s)
	}
	return out
}

// itemLines arma las líneas del correo; inBottles convierte ml a botellas con 1 decimal.
func itemLines(items []entity.TransferItem, inBottles bool) []notification.ItemLine {
	out := make([]notification.ItemLine, 0, len(items))
	for _, it := range items {
		l := notification.ItemLine{Quantity: decimal.NewFromInt(it.QuantityMl), Unit: entity.UnitMl}
		if it.Product != nil {
			l.Name, l.Code = it.Product.Name, it.Product.Code
		}
		if inBottles {
			l.Quantity = stock.BottlesFromMl(it.QuantityMl, it.Product.EffectiveFormatMl())
			l.Unit = entity.UnitBottles
		}
		out = append(out, l)
	}
	return out
}
