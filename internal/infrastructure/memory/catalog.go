package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/inventario-bares/internal/domain"
	"github.com/jhoicas/inventario-bares/internal/domain/entity"
	"github.com/jhoicas/inventario-bares/internal/domain/repository"
)

var (
	_ repository.ProductRepository  = (*ProductRepo)(nil)
	_ repository.CategoryRepository = (*CategoryRepo)(nil)
)

// ProductRepo productos en memoria.
type ProductRepo struct {
	s  *Store
	tx *txLog
}

// withCategory se llama con mu tomado.
func (s *Store) withCategory(p entity.Product) *entity.Product {
	if c, ok := s.st.categories[p.CategoryID]; ok {
		p.CategoryName = c.Name
	}
	return &p
}

func (r *ProductRepo) Create(_ context.Context, p *entity.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.checkFault("product.create"); err != nil {
		return err
	}
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if _, ok := r.s.st.products[p.ID]; ok {
		return domain.ErrDuplicate
	}
	for _, other := range r.s.st.products {
		if strings.EqualFold(other.Code, p.Code) {
			return domain.ErrDuplicate
		}
	}
	r.tx.saveProduct(&r.s.st, p.ID)
	r.s.st.products[p.ID] = *p
	return nil
}

func (r *ProductRepo) Update(_ context.Context, p *entity.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.checkFault("product.update"); err != nil {
		return err
	}
	if _, ok := r.s.st.products[p.ID]; !ok {
		return domain.ErrNotFound
	}
	for id, other := range r.s.st.products {
		if id != p.ID && strings.EqualFold(other.Code, p.Code) {
			return domain.ErrDuplicate
		}
	}
	r.tx.saveProduct(&r.s.st, p.ID)
	r.s.st.products[p.ID] = *p
	return nil
}

func (r *ProductRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.st.products[id]
	if !ok {
		return nil, nil
	}
	return r.s.withCategory(p), nil
}

func (r *ProductRepo) GetByCode(_ context.Context, code string) (*entity.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.st.products {
		if strings.EqualFold(p.Code, code) {
			return r.s.withCategory(p), nil
		}
	}
	return nil, nil
}

func (r *ProductRepo) GetByIDs(_ context.Context, ids []string) (map[string]*entity.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make(map[string]*entity.Product, len(ids))
	for _, id := range ids {
		if p, ok := r.s.st.products[id]; ok {
			out[id] = r.s.withCategory(p)
		}
	}
	return out, nil
}

func (r *ProductRepo) UpsertByCode(_ context.Context, p *entity.Product) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.checkFault("product.upsert"); err != nil {
		return false, err
	}
	for id, existing := range r.s.st.products {
		if strings.EqualFold(existing.Code, p.Code) {
			p.ID = id
			p.CreatedAt = existing.CreatedAt
			r.tx.saveProduct(&r.s.st, id)
			r.s.st.products[id] = *p
			return false, nil
		}
	}
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	r.tx.saveProduct(&r.s.st, p.ID)
	r.s.st.products[p.ID] = *p
	return true, nil
}

func (r *ProductRepo) List(_ context.Context, f repository.ProductFilter) ([]*entity.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	search := strings.ToLower(strings.TrimSpace(f.Search))
	var out []*entity.Product
	for _, p := range r.s.st.products {
		if f.ActiveOnly && !p.IsActive {
			continue
		}
		if f.CategoryID != "" && p.CategoryID != f.CategoryID {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(p.Name), search) && !strings.Contains(strings.ToLower(p.Code), search) {
			continue
		}
		out = append(out, r.s.withCategory(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return paginate(out, f.Limit, f.Offset), nil
}

func (r *ProductRepo) CountActive(_ context.Context) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n := 0
	for _, p := range r.s.st.products {
		if p.IsActive {
			n++
		}
	}
	return n, nil
}

// CategoryRepo categorías en memoria.
type CategoryRepo struct {
	s *Store
}

func (r *CategoryRepo) Create(_ context.Context, c *entity.Category) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.checkFault("category.create"); err != nil {
		return err
	}
	for _, other := range r.s.st.categories {
		if strings.EqualFold(other.Name, c.Name) {
			return domain.ErrDuplicate
		}
	}
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	r.s.st.categories[c.ID] = *c
	return nil
}

func (r *CategoryRepo) GetByID(_ context.Context, id string) (*entity.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.st.categories[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (r *CategoryRepo) UpsertByName(_ context.Context, c *entity.Category) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, other := range r.s.st.categories {
		if strings.EqualFold(other.Name, c.Name) {
			*c = other
			c.ID = id
			return nil
		}
	}
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	r.s.st.categories[c.ID] = *c
	return nil
}

func (r *CategoryRepo) List(_ context.Context) ([]*entity.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*entity.Category, 0, len(r.s.st.categories))
	for _, c := range r.s.st.categories {
		c := c
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SortOrder != out[j].SortOrder {
			return out[i].SortOrder < out[j].SortOrder
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func paginate[T any](items []T, limit, offset int) []T {
	if offset > 0 {
		if offset >= len(items) {
			return nil
		}
		items = items[offset:]
	}
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
