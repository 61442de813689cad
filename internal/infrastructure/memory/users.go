package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/jhoicas/inventario-bares/internal/domain"
	"github.com/jhoicas/inventario-bares/internal/domain/entity"
	"github.com/jhoicas/inventario-bares/internal/domain/repository"
)

var _ repository.UserRepository = (*UserRepo)(nil)

// UserRepo usuarios en memoria.
type UserRepo struct {
	s *Store
}

func (r *UserRepo) Create(_ context.Context, u *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.checkFault("user.create"); err != nil {
		return err
	}
	for _, other := range r.s.st.users {
		if strings.EqualFold(other.Email, u.Email) {
			return domain.ErrEmailAlreadyExists
		}
	}
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	r.s.st.users[u.ID] = *u
	return nil
}

func (r *UserRepo) Update(_ context.Context, u *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.checkFault("user.update"); err != nil {
		return err
	}
	if _, ok := r.s.st.users[u.ID]; !ok {
		return domain.ErrUserNotFound
	}
	for id, other := range r.s.st.users {
		if id != u.ID && strings.EqualFold(other.Email, u.Email) {
			return domain.ErrEmailAlreadyExists
		}
	}
	r.s.st.users[u.ID] = *u
	return nil
}

func (r *UserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.st.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (r *UserRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.st.users {
		if strings.EqualFold(u.Email, email) {
			u := u
			return &u, nil
		}
	}
	return nil, nil
}

func (r *UserRepo) List(_ context.Context, limit, offset int) ([]*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*entity.User, 0, len(r.s.st.users))
	for _, u := range r.s.st.users {
		u := u
		out = append(out, &u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FullName < out[j].FullName })
	return paginate(out, limit, offset), nil
}

func (r *UserRepo) ListActiveEmails(_ context.Context, roles []entity.Role, location *entity.Location) ([]string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []string
	for _, u := range r.s.st.users {
		if !u.IsActive || !hasRole(roles, u.Role) {
			continue
		}
		if location != nil && u.Role != entity.RoleAdmin && u.Location != nil && *u.Location != *location {
			continue
		}
		out = append(out, u.Email)
	}
	sort.Strings(out)
	return out, nil
}

func hasRole(roles []entity.Role, r entity.Role) bool {
	for _, x := range roles {
		if x == r {
			return true
		}
	}
	return false
}
