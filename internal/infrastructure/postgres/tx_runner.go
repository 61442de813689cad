package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jhoicas/inventario-bares/internal/domain/repository"
)

var _ repository.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run inicia una transacción, ejecuta fn con repos atados a la tx y hace Commit o Rollback.
// READ COMMITTED basta: el ledger se serializa con SELECT ... FOR UPDATE y los estados con UPDATE condicionado.
func (r *TxRunner) Run(ctx context.Context, fn func(repos repository.TxRepos) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	repos := repository.TxRepos{
		Inventory: NewInventoryRepository(tx),
		Requests:  NewRequestRepository(tx),
		Transfers: NewTransferRepository(tx),
		Products:  NewProductRepository(tx),
	}
	if err := fn(repos); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Repos agrupa los adaptadores atados al pool, igual que memory.Repos.
type Repos struct {
	Products   *ProductRepo
	Categories *CategoryRepo
	Users      *UserRepo
	Inventory  *InventoryRepo
	Requests   *RequestRepo
	Transfers  *TransferRepo
	Alerts     *AlertConfigRepo
	Audit      *AuditLogRepo
	Tx         *TxRunner
}

// NewRepos construye todos los adaptadores sobre el pool.
func NewRepos(pool *pgxpool.Pool) Repos {
	return Repos{
		Products:   NewProductRepository(pool),
		Categories: NewCategoryRepository(pool),
		Users:      NewUserRepository(pool),
		Inventory:  NewInventoryRepository(pool),
		Requests:   NewRequestRepository(pool),
		Transfers:  NewTransferRepository(pool),
		Alerts:     NewAlertConfigRepository(pool),
		Audit:      NewAuditLogRepository(pool),
		Tx:         NewTxRunner(pool),
	}
}
