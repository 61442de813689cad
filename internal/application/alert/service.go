package alert

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/inventario-bares/internal/application/notification"
	"github.com/jhoicas/inventario-bares/internal/domain"
	"github.com/jhoicas/inventario-bares/internal/domain/entity"
	"github.com/jhoicas/inventario-bares/internal/domain/policy"
	"github.com/jhoicas/inventario-bares/internal/domain/repository"
)

// Service CRUD de AlertConfig y lectura de alertas recalculadas en cada consulta.
type Service struct {
	configs   repository.AlertConfigRepository
	inventory repository.InventoryRepository
	products  repository.ProductRepository
	events    notification.Publisher
	log       zerolog.Logger
	now       func() time.Time
}

// NewService construye el servicio de alertas.
func NewService(
	configs repository.AlertConfigRepository,
	inventoryRepo repository.InventoryRepository,
	productRepo repository.ProductRepository,
	events notification.Publisher,
	log zerolog.Logger,
) *Service {
	return &Service{configs: configs, inventory: inventoryRepo, products: productRepo, events: events, log: log, now: time.Now}
}

// SetClock reemplaza la fuente de tiempo (tests).
func (s *Service) SetClock(now func() time.Time) { s.now = now }

// ConfigInput datos de alta o edición. En Update los punteros nil no se modifican.
type ConfigInput struct {
	ProductID       string
	Location        entity.Location
	MinStockMl      *int64
	EmailRecipients []string
	IsActive        *bool
}

// ListWithStock todas las configuraciones con su stock actual.
func (s *Service) ListWithStock(ctx context.Context) ([]entity.AlertStatus, error) {
	configs, err := s.configs.List(ctx, false)
	if err != nil {
		return nil, domain.Persistence("alert.list", err)
	}
	quantities, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return Evaluate(configs, quantities), nil
}

// Triggered solo las configuraciones activas bajo su umbral.
func (s *Service) Triggered(ctx context.Context) ([]entity.AlertStatus, error) {
	configs, err := s.configs.List(ctx, true)
	if err != nil {
		return nil, domain.Persistence("alert.list", err)
	}
	quantities, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	var out []entity.AlertStatus
	for _, st := range Evaluate(configs, quantities) {
		if st.IsTriggered {
			out = append(out, st)
		}
	}
	return out, nil
}

func (s *Service) snapshot(ctx context.Context) (map[Key]int64, error) {
	records, err := s.inventory.List(ctx, repository.InventoryFilter{})
	if err != nil {
		return nil, domain.Persistence("inventory.list", err)
	}
	out := make(map[Key]int64, len(records))
	for _, r := range records {
		out[Key{ProductID: r.ProductID, Location: r.Location}] = r.QuantityMl
	}
	return out, nil
}

// Create alta de una configuración.
func (s *Service) Create(ctx context.Context, actor entity.Actor, in ConfigInput) (*entity.AlertConfig, error) {
	if !policy.CanManageCatalog(actor.Role) {
		return nil, domain.ErrForbidden
	}
	if !in.Location.Valid() {
		return nil, domain.Invalid("location", "ubicación desconocida")
	}
	if in.MinStockMl == nil || *in.MinStockMl <= 0 {
		return nil, domain.Invalid("min_stock_ml", "debe ser mayor que 0")
	}
	recipients, err := cleanRecipients(in.EmailRecipients)
	if err != nil {
		return nil, err
	}
	product, err := s.products.GetByID(ctx, in.ProductID)
	if err != nil {
		return nil, domain.Persistence("product.get", err)
	}
	if product == nil {
		return nil, fmt.Errorf("producto %s: %w", in.ProductID, domain.ErrNotFound)
	}
	now := s.now()
	cfg := &entity.AlertConfig{
		ID:              uuid.New().String(),
		ProductID:       product.ID,
		Location:        in.Location,
		MinStockMl:      *in.MinStockMl,
		EmailRecipients: recipients,
		IsActive:        in.IsActive == nil || *in.IsActive,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.configs.Create(ctx, cfg); err != nil {
		return nil, domain.Persistence("alert.create", err)
	}
	cfg.Product = product
	return cfg, nil
}

// Update modifica umbral, destinatarios o estado activo.
func (s *Service) Update(ctx context.Context, actor entity.Actor, id string, in ConfigInput) (*entity.AlertConfig, error) {
	if !policy.CanManageCatalog(actor.Role) {
		return nil, domain.ErrForbidden
	}
	cfg, err := s.configs.GetByID(ctx, id)
	if err != nil {
		return nil, domain.Persistence("alert.get", err)
	}
	if cfg == nil {
		return nil, domain.ErrNotFound
	}
	if in.MinStockMl != nil {
		if *in.MinStockMl <= 0 {
			return nil, domain.Invalid("min_stock_ml", "debe ser mayor que 0")
		}
		cfg.MinStockMl = *in.MinStockMl
	}
	if in.EmailRecipients != nil {
		recipients, err := cleanRecipients(in.EmailRecipients)
		if err != nil {
			return nil, err
		}
		cfg.EmailRecipients = recipients
	}
	if in.IsActive != nil {
		cfg.IsActive = *in.IsActive
	}
	cfg.UpdatedAt = s.now()
	if err := s.configs.Update(ctx, cfg); err != nil {
		return nil, domain.Persistence("alert.update", err)
	}
	return cfg, nil
}

// Delete elimina la configuración.
func (s *Service) Delete(ctx context.Context, actor entity.Actor, id string) error {
	if !policy.CanManageCatalog(actor.Role) {
		return domain.ErrForbidden
	}
	if err := s.configs.Delete(ctx, id); err != nil {
		return domain.Persistence("alert.delete", err)
	}
	return nil
}

// NotifyTriggered publica un low_stock_alert por cada alerta disparada hacia sus propios destinatarios.
// Devuelve cuántos eventos se publicaron.
func (s *Service) NotifyTriggered(ctx context.Context, actor entity.Actor) (int, error) {
	if !policy.CanManageCatalog(actor.Role) {
		return 0, domain.ErrForbidden
	}
	triggered, err := s.Triggered(ctx)
	if err != nil {
		return 0, err
	}
	now := s.now()
	n := 0
	for _, st := range triggered {
		if len(st.Config.EmailRecipients) == 0 {
			continue
		}
		var name, code string
		if st.Config.Product != nil {
			name, code = st.Config.Product.Name, st.Config.Product.Code
		}
		s.events.Publish(ctx, notification.NewEvent(notification.Emails(st.Config.EmailRecipients), notification.LowStockAlert{
			ProductName:  name,
			ProductCode:  code,
			Location:     st.Config.Location,
			CurrentStock: st.CurrentStock,
			MinStock:     st.Config.MinStockMl,
		}, now))
		n++
	}
	s.log.Info().Int("alerts", n).Msg("alertas de stock bajo notificadas")
	return n, nil
}

// cleanRecipients recorta espacios y rechaza correos con formato inválido.
func cleanRecipients(in []string) ([]string, error) {
	out := make([]string, 0, len(in))
	for _, e := range in {
		e = strings.TrimSpace(e)
		if e == "" {
			continue
		}
		if !notification.IsValidEmail(e) {
			return nil, domain.Invalid("email_recipients", fmt.Sprintf("correo inválido: %s", e))
		}
		out = append(out, e)
	}
	return out, nil
}
