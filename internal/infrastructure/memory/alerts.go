package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/inventario-bares/internal/domain"
	"github.com/jhoicas/inventario-bares/internal/domain/entity"
	"github.com/jhoicas/inventario-bares/internal/domain/repository"
)

var _ repository.AlertConfigRepository = (*AlertConfigRepo)(nil)

// AlertConfigRepo configuraciones de alerta en memoria.
type AlertConfigRepo struct {
	s *Store
}

func (r *AlertConfigRepo) Create(_ context.Context, c *entity.AlertConfig) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.checkFault("alert.create"); err != nil {
		return err
	}
	if _, ok := r.s.st.alerts[c.ID]; ok {
		return domain.ErrDuplicate
	}
	stored := *c
	stored.EmailRecipients = append([]string(nil), c.EmailRecipients...)
	stored.Product = nil
	r.s.st.alerts[c.ID] = stored
	return nil
}

func (r *AlertConfigRepo) Update(_ context.Context, c *entity.AlertConfig) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.checkFault("alert.update"); err != nil {
		return err
	}
	if _, ok := r.s.st.alerts[c.ID]; !ok {
		return domain.ErrNotFound
	}
	stored := *c
	stored.EmailRecipients = append([]string(nil), c.EmailRecipients...)
	stored.Product = nil
	r.s.st.alerts[c.ID] = stored
	return nil
}

func (r *AlertConfigRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.checkFault("alert.delete"); err != nil {
		return err
	}
	if _, ok := r.s.st.alerts[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.s.st.alerts, id)
	return nil
}

// hydrate se llama con mu tomado.
func (r *AlertConfigRepo) hydrate(c entity.AlertConfig) *entity.AlertConfig {
	c.EmailRecipients = append([]string(nil), c.EmailRecipients...)
	if p, ok := r.s.st.products[c.ProductID]; ok {
		c.Product = r.s.withCategory(p)
	}
	return &c
}

func (r *AlertConfigRepo) GetByID(_ context.Context, id string) (*entity.AlertConfig, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.st.alerts[id]
	if !ok {
		return nil, nil
	}
	return r.hydrate(c), nil
}

func (r *AlertConfigRepo) List(_ context.Context, activeOnly bool) ([]*entity.AlertConfig, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.AlertConfig
	for _, c := range r.s.st.alerts {
		if activeOnly && !c.IsActive {
			continue
		}
		out = append(out, r.hydrate(c))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *AlertConfigRepo) ListActiveFor(_ context.Context, productID string, loc entity.Location) ([]*entity.AlertConfig, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.AlertConfig
	for _, c := range r.s.st.alerts {
		if c.IsActive && c.ProductID == productID && c.Location == loc {
			out = append(out, r.hydrate(c))
		}
	}
	return out, nil
}
