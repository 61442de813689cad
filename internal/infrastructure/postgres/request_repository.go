package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/inventario-bares/internal/domain"
	"github.com/jhoicas/inventario-bares/internal/domain/entity"
	"github.com/jhoicas/inventario-bares/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var _ repository.RequestRepository = (*RequestRepo)(nil)

// RequestRepo solicitudes e ítems sobre PostgreSQL. Acepta pool o tx (Querier).
type RequestRepo struct {
	q Querier
}

// NewRequestRepository construye el adaptador de solicitudes.
func NewRequestRepository(q Querier) *RequestRepo {
	return &RequestRepo{q: q}
}

const requestSelect = `
	SELECT r.id, r.requester_id, r.location, r.status, r.notes, r.approved_by, r.approved_at,
	       r.delivered_by, r.delivered_at, r.created_at, r.updated_at,
	       u.id, u.email, u.full_name, u.role, u.location, u.is_active
	FROM requests r
	JOIN users u ON u.id = r.requester_id`

func scanRequest(row pgx.Row) (*entity.Request, error) {
	var req entity.Request
	var u entity.User
	var loc, status, role string
	var userLoc *string
	if err := row.Scan(
		&req.ID, &req.RequesterID, &loc, &status, &req.Notes, &req.ApprovedBy, &req.ApprovedAt,
		&req.DeliveredBy, &req.DeliveredAt, &req.CreatedAt, &req.UpdatedAt,
		&u.ID, &u.Email, &u.FullName, &role, &userLoc, &u.IsActive,
	); err != nil {
		return nil, err
	}
	req.Location = entity.Location(loc)
	req.Status = entity.RequestStatus(status)
	u.Role = entity.Role(role)
	u.Location = toLocation(userLoc)
	req.Requester = &u
	return &req, nil
}

// Create inserta la cabecera y los ítems; debe ir dentro de una tx para ser atómico.
func (r *RequestRepo) Create(ctx context.Context, req *entity.Request) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO requests (id, requester_id, location, status, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		req.ID, req.RequesterID, string(req.Location), string(req.Status), req.Notes, req.CreatedAt, req.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert request: %w", err)
	}
	for i := range req.Items {
		it := &req.Items[i]
		if it.ID == "" {
			it.ID = uuid.New().String()
		}
		it.RequestID = req.ID
		_, err := r.q.Exec(ctx, `
			INSERT INTO request_items (id, request_id, product_id, quantity_requested, unit_type, quantity_approved, is_available, notes, position)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			it.ID, req.ID, it.ProductID, it.QuantityRequested, string(it.UnitType), it.QuantityApproved, it.IsAvailable, it.Notes, i,
		)
		if err != nil {
			return fmt.Errorf("insert request item: %w", err)
		}
	}
	return nil
}

func (r *RequestRepo) GetByID(ctx context.Context, id string) (*entity.Request, error) {
	req, err := scanRequest(r.q.QueryRow(ctx, requestSelect+` WHERE r.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get request: %w", err)
	}
	if err := r.loadItems(ctx, []*entity.Request{req}); err != nil {
		return nil, err
	}
	return req, nil
}

// List devuelve las solicitudes más recientes primero, con ítems.
func (r *RequestRepo) List(ctx context.Context, filter repository.RequestFilter) ([]*entity.Request, error) {
	var w whereBuilder
	if filter.Status != nil {
		w.add("r.status = $%d", string(*filter.Status))
	}
	if filter.Location != nil {
		w.add("r.location = $%d", string(*filter.Location))
	}
	if filter.RequesterID != "" {
		w.add("r.requester_id = $%d", filter.RequesterID)
	}
	query := requestSelect + w.sql() + ` ORDER BY r.created_at DESC` + w.page(filter.Limit, filter.Offset)
	rows, err := r.q.Query(ctx, query, w.args...)
	if err != nil {
		return nil, fmt.Errorf("list requests: %w", err)
	}
	var list []*entity.Request
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan request: %w", err)
		}
		list = append(list, req)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list requests: %w", err)
	}
	if err := r.loadItems(ctx, list); err != nil {
		return nil, err
	}
	return list, nil
}

// loadItems carga en una sola consulta los ítems (con producto) de las solicitudes dadas.
func (r *RequestRepo) loadItems(ctx context.Context, reqs []*entity.Request) error {
	if len(reqs) == 0 {
		return nil
	}
	ids := make([]string, len(reqs))
	byID := make(map[string]*entity.Request, len(reqs))
	for i, req := range reqs {
		ids[i] = req.ID
		byID[req.ID] = req
	}
	rows, err := r.q.Query(ctx, `
		SELECT it.id, it.request_id, it.product_id, it.quantity_requested, it.unit_type, it.quantity_approved,
		       it.is_available, it.notes,
		       p.id, p.code, p.name, p.category_id, p.format_ml, p.sale_price, p.is_active, p.created_at, p.updated_at,
		       COALESCE(c.name, '')
		FROM request_items it
		JOIN products p ON p.id = it.product_id
		LEFT JOIN categories c ON c.id = p.category_id
		WHERE it.request_id = ANY($1::uuid[])
		ORDER BY it.request_id, it.position`, ids)
	if err != nil {
		return fmt.Errorf("list request items: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var it entity.RequestItem
		var p entity.Product
		var unit string
		var price decimal.NullDecimal
		if err := rows.Scan(
			&it.ID, &it.RequestID, &it.ProductID, &it.QuantityRequested, &unit, &it.QuantityApproved,
			&it.IsAvailable, &it.Notes,
			&p.ID, &p.Code, &p.Name, &p.CategoryID, &p.FormatMl, &price, &p.IsActive, &p.CreatedAt, &p.UpdatedAt,
			&p.CategoryName,
		); err != nil {
			return fmt.Errorf("scan request item: %w", err)
		}
		it.UnitType = entity.UnitType(unit)
		if price.Valid {
			v := price.Decimal
			p.SalePrice = &v
		}
		it.Product = &p
		if req, ok := byID[it.RequestID]; ok {
			req.Items = append(req.Items, it)
		}
	}
	return rows.Err()
}

// UpdateStatus aplica from → to con un UPDATE condicionado al estado actual.
func (r *RequestRepo) UpdateStatus(ctx context.Context, id string, from, to entity.RequestStatus, actorID string, at time.Time) error {
	var query string
	switch to {
	case entity.RequestApproved, entity.RequestRejected:
		query = `UPDATE requests SET status = $3, approved_by = $4, approved_at = $5, updated_at = $5 WHERE id = $1 AND status = $2`
	case entity.RequestDelivered:
		query = `UPDATE requests SET status = $3, delivered_by = $4, delivered_at = $5, updated_at = $5 WHERE id = $1 AND status = $2`
	default:
		return domain.ErrInvalidTransition
	}
	tag, err := r.q.Exec(ctx, query, id, string(from), string(to), actorID, at)
	if err != nil {
		return fmt.Errorf("update request status: %w", err)
	}
	if tag.RowsAffected() == 1 {
		return nil
	}
	return missingOrConflict(ctx, r.q, `SELECT EXISTS (SELECT 1 FROM requests WHERE id = $1)`, id)
}

func (r *RequestRepo) SetItemAvailability(ctx context.Context, requestID, itemID string, available bool) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE request_items SET is_available = $3 WHERE request_id = $1 AND id = $2`,
		requestID, itemID, available,
	)
	if err != nil {
		return fmt.Errorf("update request item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *RequestRepo) CountByStatus(ctx context.Context, status entity.RequestStatus, location *entity.Location) (int, error) {
	var n int
	err := r.q.QueryRow(ctx,
		`SELECT COUNT(*) FROM requests WHERE status = $1 AND ($2::text IS NULL OR location = $2)`,
		string(status), fromLocation(location),
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count requests: %w", err)
	}
	return n, nil
}

// missingOrConflict distingue una fila inexistente de una transición rechazada.
func missingOrConflict(ctx context.Context, q Querier, existsQuery, id string) error {
	var exists bool
	if err := q.QueryRow(ctx, existsQuery, id).Scan(&exists); err != nil {
		return fmt.Errorf("check existence: %w", err)
	}
	if !exists {
		return domain.ErrNotFound
	}
	return domain.ErrInvalidTransition
}
