package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/inventario-bares/internal/domain/entity"
	"github.com/jhoicas/inventario-bares/internal/domain/repository"
)

var _ repository.InventoryRepository = (*InventoryRepo)(nil)

// InventoryRepo ledger en memoria. Dentro de una transacción tx registra los valores previos.
type InventoryRepo struct {
	s  *Store
	tx *txLog
}

func (r *InventoryRepo) Get(_ context.Context, productID string, loc entity.Location) (*entity.InventoryRecord, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rec, ok := r.s.st.inventory[invKey{productID, loc}]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

func (r *InventoryRepo) GetForUpdate(_ context.Context, productID string, loc entity.Location) (*entity.InventoryRecord, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.checkFault("inventory.get_for_update"); err != nil {
		return nil, err
	}
	r.tx.saveInventory(&r.s.st, invKey{productID, loc})
	rec := r.s.ensureRecord(productID, loc)
	return &rec, nil
}

// ensureRecord se llama con mu tomado.
func (s *Store) ensureRecord(productID string, loc entity.Location) entity.InventoryRecord {
	k := invKey{productID, loc}
	rec, ok := s.st.inventory[k]
	if !ok {
		now := time.Now()
		rec = entity.InventoryRecord{ID: uuid.New().String(), ProductID: productID, Location: loc, CreatedAt: now, UpdatedAt: now}
		s.st.inventory[k] = rec
	}
	return rec
}

func (r *InventoryRepo) SetQuantity(_ context.Context, productID string, loc entity.Location, quantityMl int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.checkFault("inventory.set_quantity"); err != nil {
		return err
	}
	r.tx.saveInventory(&r.s.st, invKey{productID, loc})
	rec := r.s.ensureRecord(productID, loc)
	rec.QuantityMl = quantityMl
	rec.UpdatedAt = time.Now()
	r.s.st.inventory[invKey{productID, loc}] = rec
	return nil
}

func (r *InventoryRepo) SetMinStock(_ context.Context, productID string, loc entity.Location, minStockMl *int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.checkFault("inventory.set_min_stock"); err != nil {
		return err
	}
	r.tx.saveInventory(&r.s.st, invKey{productID, loc})
	rec := r.s.ensureRecord(productID, loc)
	if minStockMl != nil {
		v := *minStockMl
		rec.MinStockMl = &v
	} else {
		rec.MinStockMl = nil
	}
	rec.UpdatedAt = time.Now()
	r.s.st.inventory[invKey{productID, loc}] = rec
	return nil
}

func (r *InventoryRepo) List(_ context.Context, f repository.InventoryFilter) ([]*entity.InventoryRecord, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.InventoryRecord
	for k, rec := range r.s.st.inventory {
		if f.Location != nil && k.location != *f.Location {
			continue
		}
		if f.ProductID != "" && k.productID != f.ProductID {
			continue
		}
		rec := rec
		if p, ok := r.s.st.products[k.productID]; ok {
			rec.Product = r.s.withCategory(p)
		}
		out = append(out, &rec)
	}
	sort.Slice(out, func(i, j int) bool {
		ni, nj := productName(out[i].Product), productName(out[j].Product)
		if ni != nj {
			return ni < nj
		}
		return out[i].Location < out[j].Location
	})
	return out, nil
}

func productName(p *entity.Product) string {
	if p == nil {
		return ""
	}
	return p.Name
}
