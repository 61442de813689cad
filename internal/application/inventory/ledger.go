// Package inventory expone el ledger de stock por (producto, ubicación).
package inventory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/jhoicas/inventario-bares/internal/application/alert"
	"github.com/jhoicas/inventario-bares/internal/application/audit"
	"github.com/jhoicas/inventario-bares/internal/application/notification"
	"github.com/jhoicas/inventario-bares/internal/domain"
	"github.com/jhoicas/inventario-bares/internal/domain/entity"
	"github.com/jhoicas/inventario-bares/internal/domain/inventory"
	"github.com/jhoicas/inventario-bares/internal/domain/policy"
	"github.com/jhoicas/inventario-bares/internal/domain/repository"
)

// ApplyDelta bloquea (o crea en 0) el registro y aplica delta recortando en 0.
// Debe llamarse con un repositorio atado a la transacción en curso.
func ApplyDelta(ctx context.Context, repo repository.InventoryRepository, productID string, loc entity.Location, delta int64) (entity.LedgerChange, error) {
	rec, err := repo.GetForUpdate(ctx, productID, loc)
	if err != nil {
		return entity.LedgerChange{}, domain.Persistence("inventory.get_for_update", err)
	}
	after := inventory.ApplyDelta(rec.QuantityMl, delta)
	if err := repo.SetQuantity(ctx, productID, loc, after); err != nil {
		return entity.LedgerChange{}, domain.Persistence("inventory.set_quantity", err)
	}
	return entity.LedgerChange{ProductID: productID, Location: loc, Before: rec.QuantityMl, After: after}, nil
}

// RowKey identifica una fila del ledger.
type RowKey struct {
	ProductID string
	Location  entity.Location
}

// LockRows bloquea (o crea en 0) las filas ordenadas por (product_id, location).
// Dos transacciones que tocan los mismos productos en distinto orden toman los locks
// en la misma secuencia y no quedan esperándose entre sí.
func LockRows(ctx context.Context, repo repository.InventoryRepository, keys []RowKey) error {
	sorted := append([]RowKey(nil), keys...)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].ProductID != sorted[j].ProductID {
			return sorted[i].ProductID < sorted[j].ProductID
		}
		return sorted[i].Location < sorted[j].Location
	})
	for i, k := range sorted {
		if i > 0 && sorted[i-1] == k {
			continue
		}
		if _, err := repo.GetForUpdate(ctx, k.ProductID, k.Location); err != nil {
			return domain.Persistence("inventory.get_for_update", err)
		}
	}
	return nil
}

// Ledger operaciones directas sobre el stock: lectura, ajuste, edición manual y umbral propio.
type Ledger struct {
	txRunner  repository.TxRunner
	inventory repository.InventoryRepository
	products  repository.ProductRepository
	alerts    repository.AlertConfigRepository
	audit     *audit.Writer
	events    notification.Publisher
	log       zerolog.Logger
	tracer    trace.Tracer
	now       func() time.Time
}

// NewLedger construye el servicio del ledger.
func NewLedger(
	txRunner repository.TxRunner,
	inventoryRepo repository.InventoryRepository,
	productRepo repository.ProductRepository,
	alertRepo repository.AlertConfigRepository,
	auditWriter *audit.Writer,
	events notification.Publisher,
	log zerolog.Logger,
) *Ledger {
	return &Ledger{
		txRunner:  txRunner,
		inventory: inventoryRepo,
		products:  productRepo,
		alerts:    alertRepo,
		audit:     auditWriter,
		events:    events,
		log:       log,
		tracer:    otel.Tracer("inventario-bares/inventory"),
		now:       time.Now,
	}
}

// SetClock reemplaza la fuente de tiempo (tests).
func (l *Ledger) SetClock(now func() time.Time) { l.now = now }

// GetQuantity devuelve la cantidad en ml; 0 si el par no tiene registro.
func (l *Ledger) GetQuantity(ctx context.Context, productID string, loc entity.Location) (int64, error) {
	rec, err := l.inventory.Get(ctx, productID, loc)
	if err != nil {
		return 0, domain.Persistence("inventory.get", err)
	}
	if rec == nil {
		return 0, nil
	}
	return rec.QuantityMl, nil
}

// Adjust suma delta (negativo para descontar) en su propia transacción.
func (l *Ledger) Adjust(ctx context.Context, productID string, loc entity.Location, delta int64) (entity.LedgerChange, error) {
	if productID == "" {
		return entity.LedgerChange{}, domain.Invalid("product_id", "requerido")
	}
	if !loc.Valid() {
		return entity.LedgerChange{}, domain.Invalid("location", "ubicación desconocida")
	}
	var change entity.LedgerChange
	err := l.txRunner.Run(ctx, func(repos repository.TxRepos) error {
		var err error
		change, err = ApplyDelta(ctx, repos.Inventory, productID, loc, delta)
		return err
	})
	if err != nil {
		return entity.LedgerChange{}, domain.Persistence("inventory.adjust", err)
	}
	return change, nil
}

// SetQuantity edición manual del stock. Registra stock_adjustment y evalúa los umbrales del par.
func (l *Ledger) SetQuantity(ctx context.Context, actor entity.Actor, productID string, loc entity.Location, value int64) (entity.LedgerChange, error) {
	ctx, span := l.tracer.Start(ctx, "inventory.SetQuantity", trace.WithAttributes(
		attribute.String("product_id", productID),
		attribute.String("location", string(loc)),
	))
	defer span.End()

	if !policy.CanManageCatalog(actor.Role) {
		return entity.LedgerChange{}, domain.ErrForbidden
	}
	if value < 0 {
		return entity.LedgerChange{}, domain.Invalid("quantity_ml", "no puede ser negativa")
	}
	if !loc.Valid() {
		return entity.LedgerChange{}, domain.Invalid("location", "ubicación desconocida")
	}
	product, err := l.product(ctx, productID)
	if err != nil {
		return entity.LedgerChange{}, err
	}

	var (
		change entity.LedgerChange
		minMl  *int64
	)
	err = l.txRunner.Run(ctx, func(repos repository.TxRepos) error {
		rec, err := repos.Inventory.GetForUpdate(ctx, productID, loc)
		if err != nil {
			return domain.Persistence("inventory.get_for_update", err)
		}
		if err := repos.Inventory.SetQuantity(ctx, productID, loc, value); err != nil {
			return domain.Persistence("inventory.set_quantity", err)
		}
		minMl = rec.MinStockMl
		change = entity.LedgerChange{ProductID: productID, ProductName: product.Name, Location: loc, Before: rec.QuantityMl, After: value}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return entity.LedgerChange{}, err
	}

	l.audit.Record(ctx, actor, entity.EntityInventory, product.ID, &loc, entity.StockAdjustmentDetails{
		ProductName: product.Name,
		ProductCode: product.Code,
		Before:      change.Before,
		After:       change.After,
		MinStockMl:  minMl,
	})
	l.checkLowStock(ctx, product, loc, value, minMl)
	return change, nil
}

// SetMinStock fija o elimina (nil) el umbral propio del registro.
func (l *Ledger) SetMinStock(ctx context.Context, actor entity.Actor, productID string, loc entity.Location, minStockMl *int64) error {
	if !policy.CanManageCatalog(actor.Role) {
		return domain.ErrForbidden
	}
	if minStockMl != nil && *minStockMl < 0 {
		return domain.Invalid("min_stock_ml", "no puede ser negativo")
	}
	if !loc.Valid() {
		return domain.Invalid("location", "ubicación desconocida")
	}
	product, err := l.product(ctx, productID)
	if err != nil {
		return err
	}
	var current int64
	err = l.txRunner.Run(ctx, func(repos repository.TxRepos) error {
		rec, err := repos.Inventory.GetForUpdate(ctx, productID, loc)
		if err != nil {
			return domain.Persistence("inventory.get_for_update", err)
		}
		current = rec.QuantityMl
		if err := repos.Inventory.SetMinStock(ctx, productID, loc, minStockMl); err != nil {
			return domain.Persistence("inventory.set_min_stock", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	l.audit.Record(ctx, actor, entity.EntityInventory, product.ID, &loc, entity.StockAdjustmentDetails{
		ProductName: product.Name,
		ProductCode: product.Code,
		Before:      current,
		After:       current,
		MinStockMl:  minStockMl,
	})
	return nil
}

// List snapshot del stock con datos del producto; loc nil lista todas las ubicaciones.
func (l *Ledger) List(ctx context.Context, loc *entity.Location) ([]*entity.InventoryRecord, error) {
	if loc != nil && !loc.Valid() {
		return nil, domain.Invalid("location", "ubicación desconocida")
	}
	records, err := l.inventory.List(ctx, repository.InventoryFilter{Location: loc})
	if err != nil {
		return nil, domain.Persistence("inventory.list", err)
	}
	return records, nil
}

func (l *Ledger) product(ctx context.Context, productID string) (*entity.Product, error) {
	if productID == "" {
		return nil, domain.Invalid("product_id", "requerido")
	}
	p, err := l.products.GetByID(ctx, productID)
	if err != nil {
		return nil, domain.Persistence("product.get", err)
	}
	if p == nil {
		return nil, fmt.Errorf("producto %s: %w", productID, domain.ErrNotFound)
	}
	return p, nil
}

// checkLowStock compara la nueva cantidad con el umbral del registro (aviso a admins) y con
// cada AlertConfig activa del mismo par (aviso a sus destinatarios).
func (l *Ledger) checkLowStock(ctx context.Context, product *entity.Product, loc entity.Location, quantity int64, recordMin *int64) {
	now := l.now()
	if recordMin != nil && quantity < *recordMin {
		l.events.Publish(ctx, notification.NewEvent(notification.Admins(), notification.LowStockAlert{
			ProductName:  product.Name,
			ProductCode:  product.Code,
			Location:     loc,
			CurrentStock: quantity,
			MinStock:     *recordMin,
		}, now))
	}
	configs, err := l.alerts.ListActiveFor(ctx, product.ID, loc)
	if err != nil {
		l.log.Warn().Err(err).Str("product_id", product.ID).Msg("no se pudieron leer las alertas configuradas")
		return
	}
	for _, st := range alert.Evaluate(configs, map[alert.Key]int64{{ProductID: product.ID, Location: loc}: quantity}) {
		if !st.IsTriggered {
			continue
		}
		l.events.Publish(ctx, notification.NewEvent(notification.Emails(st.Config.EmailRecipients), notification.LowStockAlert{
			ProductName:  product.Name,
			ProductCode:  product.Code,
			Location:     loc,
			CurrentStock: quantity,
			MinStock:     st.Config.MinStockMl,
		}, now))
	}
}
