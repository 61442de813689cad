package repository

import "context"

// TxRepos repositorios atados a una misma transacción.
type TxRepos struct {
	Inventory InventoryRepository
	Requests  RequestRepository
	Transfers TransferRepository
	Products  ProductRepository
}

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Si fn devuelve error se revierte todo: ledger, ítems y estado.
type TxRunner interface {
	Run(ctx context.Context, fn func(repos TxRepos) error) error
}
