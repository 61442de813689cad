package memory

import (
	"context"

	"github.com/jhoicas/inventario-bares/internal/domain/entity"
	"github.com/jhoicas/inventario-bares/internal/domain/repository"
)

var _ repository.AuditLogRepository = (*AuditLogRepo)(nil)

// AuditLogRepo historial append-only en memoria.
type AuditLogRepo struct {
	s *Store
}

func (r *AuditLogRepo) Append(_ context.Context, e *entity.AuditLogEntry) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.checkFault("audit.append"); err != nil {
		return err
	}
	r.s.st.audit = append(r.s.st.audit, *e)
	return nil
}

func (r *AuditLogRepo) List(_ context.Context, f repository.AuditFilter) ([]*entity.AuditLogEntry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.AuditLogEntry
	for i := len(r.s.st.audit) - 1; i >= 0; i-- {
		e := r.s.st.audit[i]
		if f.Action != nil && e.Action != *f.Action {
			continue
		}
		if f.UserID != "" && e.UserID != f.UserID {
			continue
		}
		if f.Location != nil && (e.Location == nil || *e.Location != *f.Location) {
			continue
		}
		if f.From != nil && e.CreatedAt.Before(*f.From) {
			continue
		}
		if f.To != nil && e.CreatedAt.After(*f.To) {
			continue
		}
		if u, ok := r.s.st.users[e.UserID]; ok {
			e.UserName = u.FullName
		}
		out = append(out, &e)
	}
	return paginate(out, f.Limit, f.Offset), nil
}
