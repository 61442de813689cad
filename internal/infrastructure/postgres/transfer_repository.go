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

var _ repository.TransferRepository = (*TransferRepo)(nil)

// TransferRepo traspasos e ítems sobre PostgreSQL. Acepta pool o tx (Querier).
type TransferRepo struct {
	q Querier
}

// NewTransferRepository construye el adaptador de traspasos.
func NewTransferRepository(q Querier) *TransferRepo {
	return &TransferRepo{q: q}
}

const transferSelect = `
	SELECT t.id, t.from_location, t.to_location, t.created_by, t.status, t.notes, t.confirmed_by, t.confirmed_at,
	       t.created_at, t.updated_at
	FROM transfers t`

func scanTransfer(row pgx.Row) (*entity.Transfer, error) {
	var t entity.Transfer
	var from, to, status string
	if err := row.Scan(
		&t.ID, &from, &to, &t.CreatedBy, &status, &t.Notes, &t.ConfirmedBy, &t.ConfirmedAt, &t.CreatedAt, &t.UpdatedAt,
	); err != nil {
		return nil, err
	}
	t.FromLocation = entity.Location(from)
	t.ToLocation = entity.Location(to)
	t.Status = entity.TransferStatus(status)
	return &t, nil
}

func (r *TransferRepo) Create(ctx context.Context, t *entity.Transfer) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO transfers (id, from_location, to_location, created_by, status, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		t.ID, string(t.FromLocation), string(t.ToLocation), t.CreatedBy, string(t.Status), t.Notes, t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert transfer: %w", err)
	}
	for i := range t.Items {
		it := &t.Items[i]
		if it.ID == "" {
			it.ID = uuid.New().String()
		}
		it.TransferID = t.ID
		_, err := r.q.Exec(ctx, `
			INSERT INTO transfer_items (id, transfer_id, product_id, quantity_ml, position)
			VALUES ($1, $2, $3, $4, $5)`,
			it.ID, t.ID, it.ProductID, it.QuantityMl, i,
		)
		if err != nil {
			return fmt.Errorf("insert transfer item: %w", err)
		}
	}
	return nil
}

func (r *TransferRepo) GetByID(ctx context.Context, id string) (*entity.Transfer, error) {
	t, err := scanTransfer(r.q.QueryRow(ctx, transferSelect+` WHERE t.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get transfer: %w", err)
	}
	if err := r.loadItems(ctx, []*entity.Transfer{t}); err != nil {
		return nil, err
	}
	return t, nil
}

// List devuelve los traspasos más recientes primero; Location coincide con origen o destino.
func (r *TransferRepo) List(ctx context.Context, filter repository.TransferFilter) ([]*entity.Transfer, error) {
	var w whereBuilder
	if filter.Status != nil {
		w.add("t.status = $%d", string(*filter.Status))
	}
	if filter.Location != nil {
		w.add("(t.from_location = $%[1]d OR t.to_location = $%[1]d)", string(*filter.Location))
	}
	query := transferSelect + w.sql() + ` ORDER BY t.created_at DESC` + w.page(filter.Limit, filter.Offset)
	rows, err := r.q.Query(ctx, query, w.args...)
	if err != nil {
		return nil, fmt.Errorf("list transfers: %w", err)
	}
	var list []*entity.Transfer
	for rows.Next() {
		t, err := scanTransfer(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan transfer: %w", err)
		}
		list = append(list, t)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list transfers: %w", err)
	}
	if err := r.loadItems(ctx, list); err != nil {
		return nil, err
	}
	return list, nil
}

func (r *TransferRepo) loadItems(ctx context.Context, transfers []*entity.Transfer) error {
	if len(transfers) == 0 {
		return nil
	}
	ids := make([]string, len(transfers))
	byID := make(map[string]*entity.Transfer, len(transfers))
	for i, t := range transfers {
		ids[i] = t.ID
		byID[t.ID] = t
	}
	rows, err := r.q.Query(ctx, `
		SELECT it.id, it.transfer_id, it.product_id, it.quantity_ml,
		       p.id, p.code, p.name, p.category_id, p.format_ml, p.sale_price, p.is_active, p.created_at, p.updated_at,
		       COALESCE(c.name, '')
		FROM transfer_items it
		JOIN products p ON p.id = it.product_id
		LEFT JOIN categories c ON c.id = p.category_id
		WHERE it.transfer_id = ANY($1::uuid[])
		ORDER BY it.transfer_id, it.position`, ids)
	if err != nil {
		return fmt.Errorf("list transfer items: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var it entity.TransferItem
		var p entity.Product
		var price decimal.NullDecimal
		if err := rows.Scan(
			&it.ID, &it.TransferID, &it.ProductID, &it.QuantityMl,
			&p.ID, &p.Code, &p.Name, &p.CategoryID, &p.FormatMl, &price, &p.IsActive, &p.CreatedAt, &p.UpdatedAt,
			&p.CategoryName,
		); err != nil {
			return fmt.Errorf("scan transfer item: %w", err)
		}
		if price.Valid {
			v := price.Decimal
			p.SalePrice = &v
		}
		it.Product = &p
		if t, ok := byID[it.TransferID]; ok {
			t.Items = append(t.Items, it)
		}
	}
	return rows.Err()
}

// UpdateStatus aplica from → to solo si el estado actual es from y sella confirmed_by/at.
func (r *TransferRepo) UpdateStatus(ctx context.Context, id string, from, to entity.TransferStatus, actorID string, at time.Time) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE transfers SET status = $3, confirmed_by = $4, confirmed_at = $5, updated_at = $5
		WHERE id = $1 AND status = $2`,
		id, string(from), string(to), actorID, at,
	)
	if err != nil {
		return fmt.Errorf("update transfer status: %w", err)
	}
	if tag.RowsAffected() == 1 {
		return nil
	}
	return missingOrConflict(ctx, r.q, `SELECT EXISTS (SELECT 1 FROM transfers WHERE id = $1)`, id)
}
