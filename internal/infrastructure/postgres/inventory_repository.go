package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/inventario-bares/internal/domain/entity"
	"github.com/jhoicas/inventario-bares/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var _ repository.InventoryRepository = (*InventoryRepo)(nil)

// InventoryRepo ledger (producto, ubicación) sobre PostgreSQL. Acepta pool o tx (Querier).
type InventoryRepo struct {
	q Querier
}

// NewInventoryRepository construye el adaptador del ledger.
func NewInventoryRepository(q Querier) *InventoryRepo {
	return &InventoryRepo{q: q}
}

const inventoryColumns = `i.id, i.product_id, i.location, i.quantity_ml, i.min_stock_ml, i.created_at, i.updated_at`

func scanRecord(row pgx.Row) (*entity.InventoryRecord, error) {
	var rec entity.InventoryRecord
	var loc string
	if err := row.Scan(&rec.ID, &rec.ProductID, &loc, &rec.QuantityMl, &rec.MinStockMl, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
		return nil, err
	}
	rec.Location = entity.Location(loc)
	return &rec, nil
}

func (r *InventoryRepo) Get(ctx context.Context, productID string, location entity.Location) (*entity.InventoryRecord, error) {
	query := `SELECT ` + inventoryColumns + ` FROM inventory i WHERE i.product_id = $1 AND i.location = $2`
	rec, err := scanRecord(r.q.QueryRow(ctx, query, productID, string(location)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get inventory: %w", err)
	}
	return rec, nil
}

// GetForUpdate garantiza la fila en 0 y la bloquea (SELECT ... FOR UPDATE) hasta el fin de la tx.
func (r *InventoryRepo) GetForUpdate(ctx context.Context, productID string, location entity.Location) (*entity.InventoryRecord, error) {
	_, err := r.q.Exec(ctx, `
		INSERT INTO inventory (id, product_id, location, quantity_ml, created_at, updated_at)
		VALUES ($1, $2, $3, 0, now(), now())
		ON CONFLICT (product_id, location) DO NOTHING`,
		uuid.New().String(), productID, string(location),
	)
	if err != nil {
		return nil, fmt.Errorf("ensure inventory: %w", err)
	}
	query := `SELECT ` + inventoryColumns + ` FROM inventory i WHERE i.product_id = $1 AND i.location = $2 FOR UPDATE`
	rec, err := scanRecord(r.q.QueryRow(ctx, query, productID, string(location)))
	if err != nil {
		return nil, fmt.Errorf("lock inventory: %w", err)
	}
	return rec, nil
}

func (r *InventoryRepo) SetQuantity(ctx context.Context, productID string, location entity.Location, quantityMl int64) error {
	query := `
		INSERT INTO inventory (id, product_id, location, quantity_ml, created_at, updated_at)
		VALUES ($1, $2, $3, $4, now(), now())
		ON CONFLICT (product_id, location)
		DO UPDATE SET quantity_ml = EXCLUDED.quantity_ml, updated_at = now()`
	if _, err := r.q.Exec(ctx, query, uuid.New().String(), productID, string(location), quantityMl); err != nil {
		return fmt.Errorf("upsert inventory: %w", err)
	}
	return nil
}

func (r *InventoryRepo) SetMinStock(ctx context.Context, productID string, location entity.Location, minStockMl *int64) error {
	query := `
		INSERT INTO inventory (id, product_id, location, quantity_ml, min_stock_ml, created_at, updated_at)
		VALUES ($1, $2, $3, 0, $4, now(), now())
		ON CONFLICT (product_id, location)
		DO UPDATE SET min_stock_ml = EXCLUDED.min_stock_ml, updated_at = now()`
	if _, err := r.q.Exec(ctx, query, uuid.New().String(), productID, string(location), minStockMl); err != nil {
		return fmt.Errorf("upsert min stock: %w", err)
	}
	return nil
}

// List devuelve los registros con producto y categoría, por nombre y ubicación.
func (r *InventoryRepo) List(ctx context.Context, filter repository.InventoryFilter) ([]*entity.InventoryRecord, error) {
	var w whereBuilder
	if filter.Location != nil {
		w.add("i.location = $%d", string(*filter.Location))
	}
	if filter.ProductID != "" {
		w.add("i.product_id = $%d", filter.ProductID)
	}
	query := `
		SELECT ` + inventoryColumns + `,
		       p.id, p.code, p.name, p.category_id, p.format_ml, p.sale_price, p.is_active, p.created_at, p.updated_at,
		       COALESCE(c.name, '')
		FROM inventory i
		JOIN products p ON p.id = i.product_id
		LEFT JOIN categories c ON c.id = p.category_id` + w.sql() + `
		ORDER BY p.name, i.location`
	rows, err := r.q.Query(ctx, query, w.args...)
	if err != nil {
		return nil, fmt.Errorf("list inventory: %w", err)
	}
	defer rows.Close()
	var list []*entity.InventoryRecord
	for rows.Next() {
		var rec entity.InventoryRecord
		var p entity.Product
		var loc string
		var price decimal.NullDecimal
		if err := rows.Scan(
			&rec.ID, &rec.ProductID, &loc, &rec.QuantityMl, &rec.MinStockMl, &rec.CreatedAt, &rec.UpdatedAt,
			&p.ID, &p.Code, &p.Name, &p.CategoryID, &p.FormatMl, &price, &p.IsActive, &p.CreatedAt, &p.UpdatedAt,
			&p.CategoryName,
		); err != nil {
			return nil, fmt.Errorf("scan inventory: %w", err)
		}
		rec.Location = entity.Location(loc)
		if price.Valid {
			v := price.Decimal
			p.SalePrice = &v
		}
		rec.Product = &p
		list = append(list, &rec)
	}
	return list, rows.Err()
}
