package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-bares/internal/application/audit"
	"github.com/jhoicas/inventario-bares/internal/application/dto"
	"github.com/jhoicas/inventario-bares/internal/domain"
	"github.com/jhoicas/inventario-bares/internal/domain/entity"
	"github.com/jhoicas/inventario-bares/internal/domain/policy"
	"github.com/jhoicas/inventario-bares/internal/domain/repository"
)

// DefaultCategory categoría asignada en la importación cuando la fila no trae tipo.
const DefaultCategory = "Otros"

// ProductUseCase casos de uso del catálogo. El stock se maneja vía ledger, nunca aquí.
type ProductUseCase struct {
	repo       repository.ProductRepository
	categories repository.CategoryRepository
	audit      *audit.Writer
	log        zerolog.Logger
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(repo repository.ProductRepository, categories repository.CategoryRepository, auditWriter *audit.Writer, log zerolog.Logger) *ProductUseCase {
	return &ProductUseCase{repo: repo, categories: categories, audit: auditWriter, log: log}
}

// Create crea un producto activo. Devuelve ErrDuplicate si el código ya existe.
func (uc *ProductUseCase) Create(ctx context.Context, actor entity.Actor, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	if !policy.CanManageCatalog(actor.Role) {
		return nil, domain.ErrForbidden
	}
	in.Code = strings.TrimSpace(in.Code)
	in.Name = strings.TrimSpace(in.Name)
	if in.Code == "" {
		return nil, domain.Invalid("code", "requerido")
	}
	if in.Name == "" {
		return nil, domain.Invalid("name", "requerido")
	}
	if err := validateFormat(in.FormatMl, in.SalePrice); err != nil {
		return nil, err
	}
	existing, err := uc.repo.GetByCode(ctx, in.Code)
	if err != nil {
		return nil, domain.Persistence("product.get", err)
	}
	if existing != nil {
		return nil, domain.ErrDuplicate
	}
	category, err := uc.category(ctx, in.CategoryID)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	product := &entity.Product{
		ID:           uuid.New().String(),
		Code:         in.Code,
		Name:         in.Name,
		CategoryID:   category.ID,
		FormatMl:     in.FormatMl,
		SalePrice:    in.SalePrice,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
		CategoryName: category.Name,
	}
	if err := uc.repo.Create(ctx, product); err != nil {
		return nil, domain.Persistence("product.create", err)
	}
	uc.audit.Record(ctx, actor, entity.EntityProduct, product.ID, nil, entity.NewProductDetails(entity.ActionProductCreated, product))
	return dto.ProductFromEntity(product), nil
}

// GetByID obtiene un producto por ID.
func (uc *ProductUseCase) GetByID(ctx context.Context, id string) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, domain.Persistence("product.get", err)
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	return dto.ProductFromEntity(product), nil
}

// Update actualiza nombre, categoría, formato, precio o estado activo.
func (uc *ProductUseCase) Update(ctx context.Context, actor entity.Actor, id string, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	if !policy.CanManageCatalog(actor.Role) {
		return nil, domain.ErrForbidden
	}
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, domain.Persistence("product.get", err)
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	if err := validateFormat(in.FormatMl, in.SalePrice); err != nil {
		return nil, err
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, domain.Invalid("name", "requerido")
		}
		product.Name = name
	}
	if in.CategoryID != nil {
		category, err := uc.category(ctx, *in.CategoryID)
		if err != nil {
			return nil, err
		}
		product.CategoryID = category.ID
		product.CategoryName = category.Name
	}
	if in.FormatMl != nil {
		product.FormatMl = in.FormatMl
	}
	if in.SalePrice != nil {
		product.SalePrice = in.SalePrice
	}
	if in.IsActive != nil {
		product.IsActive = *in.IsActive
	}
	product.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, product); err != nil {
		return nil, domain.Persistence("product.update", err)
	}
	uc.audit.Record(ctx, actor, entity.EntityProduct, product.ID, nil, entity.NewProductDetails(entity.ActionProductUpdated, product))
	return dto.ProductFromEntity(product), nil
}

// List lista productos con filtros y paginación.
func (uc *ProductUseCase) List(ctx context.Context, filter repository.ProductFilter) (*dto.ProductListResponse, error) {
	list, err := uc.repo.List(ctx, filter)
	if err != nil {
		return nil, domain.Persistence("product.list", err)
	}
	items := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		items = append(items, *dto.ProductFromEntity(p))
	}
	return &dto.ProductListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: filter.Limit, Offset: filter.Offset},
	}, nil
}

// ImportRow fila de la planilla de productos: nombre, tipo, formato, código y precio.
type ImportRow struct {
	Line      int
	Name      string
	Type      string
	FormatMl  *int64
	Code      string
	SalePrice *decimal.Decimal
}

// Import crea o actualiza productos por código. Las categorías se crean por nombre
// (primera letra en mayúscula) en el orden en que aparecen. Filas sin nombre o código se omiten.
func (uc *ProductUseCase) Import(ctx context.Context, actor entity.Actor, rows []ImportRow) (*dto.ImportSummary, error) {
	if !policy.CanManageCatalog(actor.Role) {
		return nil, domain.ErrForbidden
	}
	summary := &dto.ImportSummary{}
	categoryIDs := map[string]string{}
	order := 0
	now := time.Now()

	for _, row := range rows {
		row.Name = strings.TrimSpace(row.Name)
		row.Code = strings.TrimSpace(row.Code)
		if row.Name == "" || row.Code == "" {
			summary.Skipped++
			continue
		}
		key := strings.ToLower(strings.TrimSpace(row.Type))
		if key == "" {
			key = strings.ToLower(DefaultCategory)
		}
		categoryID, ok := categoryIDs[key]
		if !ok {
			order++
			c := &entity.Category{Name: capitalize(key), SortOrder: order}
			if err := uc.categories.UpsertByName(ctx, c); err != nil {
				summary.Errors = append(summary.Errors, fmt.Sprintf("línea %d: categoría %q: %v", row.Line, c.Name, err))
				continue
			}
			categoryID = c.ID
			categoryIDs[key] = categoryID
		}

		p := &entity.Product{
			Code:       row.Code,
			Name:       row.Name,
			CategoryID: categoryID,
			FormatMl:   row.FormatMl,
			SalePrice:  row.SalePrice,
			IsActive:   true,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		created, err := uc.repo.UpsertByCode(ctx, p)
		if err != nil {
			summary.Errors = append(summary.Errors, fmt.Sprintf("línea %d: producto %s: %v", row.Line, row.Code, err))
			continue
		}
		action := entity.ActionProductUpdated
		if created {
			summary.Created++
			action = entity.ActionProductCreated
		} else {
			summary.Updated++
		}
		uc.audit.Record(ctx, actor, entity.EntityProduct, p.ID, nil, entity.NewProductDetails(action, p))
	}
	uc.log.Info().
		Int("created", summary.Created).
		Int("updated", summary.Updated).
		Int("skipped", summary.Skipped).
		Int("errors", len(summary.Errors)).
		Msg("importación de productos terminada")
	return summary, nil
}

// CreateCategory crea una categoría. Devuelve ErrDuplicate si el nombre ya existe.
func (uc *ProductUseCase) CreateCategory(ctx context.Context, actor entity.Actor, in dto.CategoryRequest) (*dto.CategoryResponse, error) {
	if !policy.CanManageCatalog(actor.Role) {
		return nil, domain.ErrForbidden
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domain.Invalid("name", "requerido")
	}
	c := &entity.Category{
		ID:          uuid.New().String(),
		Name:        name,
		Description: strings.TrimSpace(in.Description),
		SortOrder:   in.SortOrder,
		CreatedAt:   time.Now(),
	}
	if err := uc.categories.Create(ctx, c); err != nil {
		return nil, domain.Persistence("category.create", err)
	}
	out := dto.CategoryFromEntity(c)
	return &out, nil
}

// ListCategories categorías por orden de presentación.
func (uc *ProductUseCase) ListCategories(ctx context.Context) ([]dto.CategoryResponse, error) {
	list, err := uc.categories.List(ctx)
	if err != nil {
		return nil, domain.Persistence("category.list", err)
	}
	out := make([]dto.CategoryResponse, 0, len(list))
	for _, c := range list {
		out = append(out, dto.CategoryFromEntity(c))
	}
	return out, nil
}

func (uc *ProductUseCase) category(ctx context.Context, id string) (*entity.Category, error) {
	if strings.TrimSpace(id) == "" {
		return nil, domain.Invalid("category_id", "requerido")
	}
	c, err := uc.categories.GetByID(ctx, id)
	if err != nil {
		return nil, domain.Persistence("category.get", err)
	}
	if c == nil {
		return nil, domain.Invalid("category_id", "categoría inexistente")
	}
	return c, nil
}

func validateFormat(formatMl *int64, price *decimal.Decimal) error {
	if formatMl != nil && *formatMl <= 0 {
		return domain.Invalid("format_ml", "debe ser mayor que 0")
	}
	if price != nil && price.IsNegative() {
		return domain.Invalid("sale_price", "no puede ser negativo")
	}
	return nil
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	return strings.ToUpper(string(r[0])) + string(r[1:])
}
