package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/inventario-bares/internal/domain"
	"github.com/jhoicas/inventario-bares/internal/domain/entity"
	"github.com/jhoicas/inventario-bares/internal/domain/repository"
)

var _ repository.AlertConfigRepository = (*AlertConfigRepo)(nil)

// AlertConfigRepo umbrales configurados sobre PostgreSQL.
type AlertConfigRepo struct {
	q Querier
}

// NewAlertConfigRepository construye el adaptador de alertas.
func NewAlertConfigRepository(q Querier) *AlertConfigRepo {
	return &AlertConfigRepo{q: q}
}

const alertSelect = `
	SELECT a.id, a.product_id, a.location, a.min_stock_ml, a.email_recipients, a.is_active, a.created_at, a.updated_at,
	       p.code, p.name, p.format_ml, p.is_active
	FROM alert_configs a
	JOIN products p ON p.id = a.product_id`

func scanAlert(row pgx.Row) (*entity.AlertConfig, error) {
	var c entity.AlertConfig
	var loc string
	p := &entity.Product{}
	if err := row.Scan(
		&c.ID, &c.ProductID, &loc, &c.MinStockMl, &c.EmailRecipients, &c.IsActive, &c.CreatedAt, &c.UpdatedAt,
		&p.Code, &p.Name, &p.FormatMl, &p.IsActive,
	); err != nil {
		return nil, err
	}
	c.Location = entity.Location(loc)
	p.ID = c.ProductID
	c.Product = p
	return &c, nil
}

func (r *AlertConfigRepo) Create(ctx context.Context, c *entity.AlertConfig) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO alert_configs (id, product_id, location, min_stock_ml, email_recipients, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		c.ID, c.ProductID, string(c.Location), c.MinStockMl, recipients(c.EmailRecipients), c.IsActive, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		if isForeignKeyViolation(err) {
			return domain.Invalid("product_id", "el producto no existe")
		}
		return fmt.Errorf("insert alert config: %w", err)
	}
	return nil
}

func (r *AlertConfigRepo) Update(ctx context.Context, c *entity.AlertConfig) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE alert_configs
		SET min_stock_ml = $2, email_recipients = $3, is_active = $4, updated_at = $5
		WHERE id = $1`,
		c.ID, c.MinStockMl, recipients(c.EmailRecipients), c.IsActive, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update alert config: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *AlertConfigRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM alert_configs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete alert config: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *AlertConfigRepo) GetByID(ctx context.Context, id string) (*entity.AlertConfig, error) {
	c, err := scanAlert(r.q.QueryRow(ctx, alertSelect+` WHERE a.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get alert config: %w", err)
	}
	return c, nil
}

func (r *AlertConfigRepo) List(ctx context.Context, activeOnly bool) ([]*entity.AlertConfig, error) {
	query := alertSelect
	if activeOnly {
		query += ` WHERE a.is_active`
	}
	return r.list(ctx, query+` ORDER BY a.created_at`)
}

func (r *AlertConfigRepo) ListActiveFor(ctx context.Context, productID string, location entity.Location) ([]*entity.AlertConfig, error) {
	return r.list(ctx, alertSelect+` WHERE a.is_active AND a.product_id = $1 AND a.location = $2 ORDER BY a.created_at`,
		productID, string(location))
}

func (r *AlertConfigRepo) list(ctx context.Context, query string, args ...any) ([]*entity.AlertConfig, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list alert configs: %w", err)
	}
	defer rows.Close()
	var list []*entity.AlertConfig
	for rows.Next() {
		c, err := scanAlert(rows)
		if err != nil {
			return nil, fmt.Errorf("scan alert config: %w", err)
		}
		list = append(list, c)
	}
	return list, rows.Err()
}

// recipients evita NULL en la columna TEXT[] NOT NULL.
func recipients(emails []string) []string {
	if emails == nil {
		return []string{}
	}
	return emails
}
