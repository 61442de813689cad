package memory

import (
	"context"
	"sort"
	"time"

	"github.com/jhoicas/inventario-bares/internal/domain"
	"github.com/jhoicas/inventario-bares/internal/domain/entity"
	"github.com/jhoicas/inventario-bares/internal/domain/repository"
)

var _ repository.RequestRepository = (*RequestRepo)(nil)

// RequestRepo solicitudes en memoria.
type RequestRepo struct {
	s  *Store
	tx *txLog
}

func (r *RequestRepo) Create(_ context.Context, req *entity.Request) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.checkFault("request.create"); err != nil {
		return err
	}
	if _, ok := r.s.st.requests[req.ID]; ok {
		return domain.ErrDuplicate
	}
	r.tx.saveRequest(&r.s.st, req.ID)
	stored := *req
	stored.Items = make([]entity.RequestItem, len(req.Items))
	for i, it := range req.Items {
		it.RequestID = req.ID
		it.Product = nil
		stored.Items[i] = it
	}
	stored.Requester = nil
	r.s.st.requests[req.ID] = stored
	return nil
}

// hydrate se llama con mu tomado.
func (r *RequestRepo) hydrate(req entity.Request) *entity.Request {
	items := make([]entity.RequestItem, len(req.Items))
	for i, it := range req.Items {
		if p, ok := r.s.st.products[it.ProductID]; ok {
			it.Product = r.s.withCategory(p)
		}
		items[i] = it
	}
	req.Items = items
	if u, ok := r.s.st.users[req.RequesterID]; ok {
		req.Requester = &u
	}
	return &req
}

func (r *RequestRepo) GetByID(_ context.Context, id string) (*entity.Request, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	req, ok := r.s.st.requests[id]
	if !ok {
		return nil, nil
	}
	return r.hydrate(req), nil
}

func (r *RequestRepo) List(_ context.Context, f repository.RequestFilter) ([]*entity.Request, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.Request
	for _, req := range r.s.st.requests {
		if f.Status != nil && req.Status != *f.Status {
			continue
		}
		if f.Location != nil && req.Location != *f.Location {
			continue
		}
		if f.RequesterID != "" && req.RequesterID != f.RequesterID {
			continue
		}
		out = append(out, r.hydrate(req))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return paginate(out, f.Limit, f.Offset), nil
}

func (r *RequestRepo) UpdateStatus(_ context.Context, id string, from, to entity.RequestStatus, actorID string, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.checkFault("request.update_status"); err != nil {
		return err
	}
	req, ok := r.s.st.requests[id]
	if !ok {
		return domain.ErrNotFound
	}
	if req.Status != from {
		return domain.ErrInvalidTransition
	}
	r.tx.saveRequest(&r.s.st, id)
	req.Status = to
	req.UpdatedAt = at
	actor, stamp := actorID, at
	switch to {
	case entity.RequestApproved, entity.RequestRejected:
		req.ApprovedBy, req.ApprovedAt = &actor, &stamp
	case entity.RequestDelivered:
		req.DeliveredBy, req.DeliveredAt = &actor, &stamp
	}
	r.s.st.requests[id] = req
	return nil
}

func (r *RequestRepo) SetItemAvailability(_ context.Context, requestID, itemID string, available bool) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.checkFault("request.set_item_availability"); err != nil {
		return err
	}
	req, ok := r.s.st.requests[requestID]
	if !ok {
		return domain.ErrNotFound
	}
	r.tx.saveRequest(&r.s.st, requestID)
	items := append([]entity.RequestItem(nil), req.Items...)
	for i := range items {
		if items[i].ID == itemID {
			v := available
			items[i].IsAvailable = &v
			req.Items = items
			r.s.st.requests[requestID] = req
			return nil
		}
	}
	return domain.ErrNotFound
}

func (r *RequestRepo) CountByStatus(_ context.Context, status entity.RequestStatus, location *entity.Location) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n := 0
	for _, req := range r.s.st.requests {
		if req.Status == status && (location == nil || req.Location == *location) {
			n++
		}
	}
	return n, nil
}
