package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/inventario-bares/internal/domain"
	"github.com/jhoicas/inventario-bares/internal/domain/entity"
	"github.com/jhoicas/inventario-bares/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de persistencia para productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

const productSelect = `
	SELECT p.id, p.code, p.name, p.category_id, p.format_ml, p.sale_price, p.is_active, p.created_at, p.updated_at,
	       COALESCE(c.name, '')
	FROM products p
	LEFT JOIN categories c ON c.id = p.category_id`

func scanProduct(row pgx.Row) (*entity.Product, error) {
	var p entity.Product
	var price decimal.NullDecimal
	if err := row.Scan(
		&p.ID, &p.Code, &p.Name, &p.CategoryID, &p.FormatMl, &price, &p.IsActive, &p.CreatedAt, &p.UpdatedAt,
		&p.CategoryName,
	); err != nil {
		return nil, err
	}
	if price.Valid {
		v := price.Decimal
		p.SalePrice = &v
	}
	return &p, nil
}

// Create persiste un nuevo producto.
func (r *ProductRepo) Create(ctx context.Context, product *entity.Product) error {
	query := `
		INSERT INTO products (id, code, name, category_id, format_ml, sale_price, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(ctx, query,
		product.ID, product.Code, product.Name, product.CategoryID, product.FormatMl, product.SalePrice,
		product.IsActive, product.CreatedAt, product.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		if isForeignKeyViolation(err) {
			return domain.Invalid("category_id", "la categoría no existe")
		}
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

// Update actualiza los campos editables de un producto.
func (r *ProductRepo) Update(ctx context.Context, product *entity.Product) error {
	query := `
		UPDATE products
		SET code = $2, name = $3, category_id = $4, format_ml = $5, sale_price = $6, is_active = $7, updated_at = $8
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query,
		product.ID, product.Code, product.Name, product.CategoryID, product.FormatMl, product.SalePrice,
		product.IsActive, product.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("update product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// GetByID obtiene un producto por ID.
func (r *ProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	p, err := scanProduct(r.q.QueryRow(ctx, productSelect+` WHERE p.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

// GetByCode obtiene un producto por código (sin distinguir mayúsculas).
func (r *ProductRepo) GetByCode(ctx context.Context, code string) (*entity.Product, error) {
	p, err := scanProduct(r.q.QueryRow(ctx, productSelect+` WHERE LOWER(p.code) = LOWER($1)`, code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product by code: %w", err)
	}
	return p, nil
}

// GetByIDs devuelve los productos encontrados indexados por ID.
func (r *ProductRepo) GetByIDs(ctx context.Context, ids []string) (map[string]*entity.Product, error) {
	out := make(map[string]*entity.Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := r.q.Query(ctx, productSelect+` WHERE p.id = ANY($1::uuid[])`, ids)
	if err != nil {
		return nil, fmt.Errorf("get products by ids: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		out[p.ID] = p
	}
	return out, rows.Err()
}

// UpsertByCode inserta o actualiza por código; xmax = 0 identifica la fila recién insertada.
func (r *ProductRepo) UpsertByCode(ctx context.Context, product *entity.Product) (bool, error) {
	query := `
		INSERT INTO products (id, code, name, category_id, format_ml, sale_price, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (LOWER(code)) DO UPDATE
		SET name = EXCLUDED.name, category_id = EXCLUDED.category_id, format_ml = EXCLUDED.format_ml,
		    sale_price = EXCLUDED.sale_price, is_active = EXCLUDED.is_active, updated_at = EXCLUDED.updated_at
		RETURNING id, created_at, (xmax = 0)`
	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	var created bool
	err := r.q.QueryRow(ctx, query,
		product.ID, product.Code, product.Name, product.CategoryID, product.FormatMl, product.SalePrice,
		product.IsActive, product.CreatedAt, product.UpdatedAt,
	).Scan(&product.ID, &product.CreatedAt, &created)
	if err != nil {
		return false, fmt.Errorf("upsert product: %w", err)
	}
	return created, nil
}

// List devuelve productos ordenados por nombre.
func (r *ProductRepo) List(ctx context.Context, filter repository.ProductFilter) ([]*entity.Product, error) {
	var w whereBuilder
	if filter.ActiveOnly {
		w.conds = append(w.conds, "p.is_active")
	}
	if filter.CategoryID != "" {
		w.add("p.category_id = $%d", filter.CategoryID)
	}
	if filter.Search != "" {
		w.add("(p.name ILIKE $%[1]d OR p.code ILIKE $%[1]d)", "%"+filter.Search+"%")
	}
	query := productSelect + w.sql() + ` ORDER BY p.name`
	query += w.page(filter.Limit, filter.Offset)

	rows, err := r.q.Query(ctx, query, w.args...)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()
	var list []*entity.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

func (r *ProductRepo) CountActive(ctx context.Context) (int, error) {
	var n int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM products WHERE is_active`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	return n, nil
}
