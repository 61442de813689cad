package memory

import (
	"context"
	"sort"
	"time"

	"github.com/jhoicas/inventario-bares/internal/domain"
	"github.com/jhoicas/inventario-bares/internal/domain/entity"
	"github.com/jhoicas/inventario-bares/internal/domain/repository"
)

var _ repository.TransferRepository = (*TransferRepo)(nil)

// TransferRepo traspasos en memoria.
type TransferRepo struct {
	s  *Store
	tx *txLog
}

func (r *TransferRepo) Create(_ context.Context, t *entity.Transfer) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.checkFault("transfer.create"); err != nil {
		return err
	}
	if _, ok := r.s.st.transfers[t.ID]; ok {
		return domain.ErrDuplicate
	}
	r.tx.saveTransfer(&r.s.st, t.ID)
	stored := *t
	stored.Items = make([]entity.TransferItem, len(t.Items))
	for i, it := range t.Items {
		it.TransferID = t.ID
		it.Product = nil
		stored.Items[i] = it
	}
	r.s.st.transfers[t.ID] = stored
	return nil
}

// hydrate se llama con mu tomado.
func (r *TransferRepo) hydrate(t entity.Transfer) *entity.Transfer {
	items := make([]entity.TransferItem, len(t.Items))
	for i, it := range t.Items {
		if p, ok := r.s.st.products[it.ProductID]; ok {
			it.Product = r.s.withCategory(p)
		}
		items[i] = it
	}
	t.Items = items
	return &t
}

func (r *TransferRepo) GetByID(_ context.Context, id string) (*entity.Transfer, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.st.transfers[id]
	if !ok {
		return nil, nil
	}
	return r.hydrate(t), nil
}

func (r *TransferRepo) List(_ context.Context, f repository.TransferFilter) ([]*entity.Transfer, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.Transfer
	for _, t := range r.s.st.transfers {
		if f.Status != nil && t.Status != *f.Status {
			continue
		}
		if f.Location != nil && t.FromLocation != *f.Location && t.ToLocation != *f.Location {
			continue
		}
		out = append(out, r.hydrate(t))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return paginate(out, f.Limit, f.Offset), nil
}

func (r *TransferRepo) UpdateStatus(_ context.Context, id string, from, to entity.TransferStatus, actorID string, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.checkFault("transfer.update_status"); err != nil {
		return err
	}
	t, ok := r.s.st.transfers[id]
	if !ok {
		return domain.ErrNotFound
	}
	if t.Status != from {
		return domain.ErrInvalidTransition
	}
	r.tx.saveTransfer(&r.s.st, id)
	actor, stamp := actorID, at
	t.Status = to
	t.UpdatedAt = at
	t.ConfirmedBy, t.ConfirmedAt = &actor, &stamp
	r.s.st.transfers[id] = t
	return nil
}
