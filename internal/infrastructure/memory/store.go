// Package memory implementa los puertos de persistencia en memoria (desarrollo local y tests).
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/jhoicas/inventario-bares/internal/domain/entity"
	"github.com/jhoicas/inventario-bares/internal/domain/repository"
)

type invKey struct {
	productID string
	location  entity.Location
}

type state struct {
	products   map[string]entity.Product
	categories map[string]entity.Category
	users      map[string]entity.User
	inventory  map[invKey]entity.InventoryRecord
	requests   map[string]entity.Request
	transfers  map[string]entity.Transfer
	alerts     map[string]entity.AlertConfig
	audit      []entity.AuditLogEntry
}

func newState() state {
	return state{
		products:   map[string]entity.Product{},
		categories: map[string]entity.Category{},
		users:      map[string]entity.User{},
		inventory:  map[invKey]entity.InventoryRecord{},
		requests:   map[string]entity.Request{},
		transfers:  map[string]entity.Transfer{},
		alerts:     map[string]entity.AlertConfig{},
	}
}

// Store estado compartido por todos los repositorios en memoria.
// mu protege cada operación; txMu serializa transacciones completas entre sí.
// Las escrituras fuera de una transacción no esperan a txMu.
type Store struct {
	mu    sync.Mutex
	txMu  sync.Mutex
	st    state
	fault func(op string) error
}

// NewStore crea un almacenamiento vacío.
func NewStore() *Store {
	return &Store{st: newState()}
}

// SetFault instala un hook invocado antes de cada escritura con el nombre de la operación
// (p. ej. "inventory.set_quantity"). Si devuelve error la escritura falla. Solo para tests.
func (s *Store) SetFault(fn func(op string) error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fault = fn
}

// checkFault se llama con mu tomado.
func (s *Store) checkFault(op string) error {
	if s.fault == nil {
		return nil
	}
	if err := s.fault(op); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Repos devuelve todos los repositorios sobre este almacenamiento.
func (s *Store) Repos() Repos {
	return Repos{
		Products:   &ProductRepo{s: s},
		Categories: &CategoryRepo{s: s},
		Users:      &UserRepo{s: s},
		Inventory:  &InventoryRepo{s: s},
		Requests:   &RequestRepo{s: s},
		Transfers:  &TransferRepo{s: s},
		Alerts:     &AlertConfigRepo{s: s},
		Audit:      &AuditLogRepo{s: s},
		Tx:         &TxRunner{s: s},
	}
}

// Repos agrupa los adaptadores en memoria.
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

var _ repository.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta fn registrando el valor previo de cada clave que escribe;
// si fn falla solo esas claves se restauran.
type TxRunner struct {
	s *Store
}

// Run serializa la transacción y revierte ante error o panic.
func (r *TxRunner) Run(ctx context.Context, fn func(repos repository.TxRepos) error) (err error) {
	r.s.txMu.Lock()
	defer r.s.txMu.Unlock()

	undo := newTxLog()
	rollback := func() {
		r.s.mu.Lock()
		undo.restore(&r.s.st)
		r.s.mu.Unlock()
	}
	defer func() {
		if p := recover(); p != nil {
			rollback()
			panic(p)
		}
	}()

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	repos := repository.TxRepos{
		Inventory: &InventoryRepo{s: r.s, tx: undo},
		Requests:  &RequestRepo{s: r.s, tx: undo},
		Transfers: &TransferRepo{s: r.s, tx: undo},
		Products:  &ProductRepo{s: r.s, tx: undo},
	}
	if err := fn(repos); err != nil {
		rollback()
		return err
	}
	return nil
}

// txLog valor previo de cada clave escrita dentro de una transacción (nil: no existía).
// Los métodos se llaman con mu tomado; un *txLog nil no registra nada.
type txLog struct {
	inventory map[invKey]*entity.InventoryRecord
	requests  map[string]*entity.Request
	transfers map[string]*entity.Transfer
	products  map[string]*entity.Product
}

func newTxLog() *txLog {
	return &txLog{
		inventory: map[invKey]*entity.InventoryRecord{},
		requests:  map[string]*entity.Request{},
		transfers: map[string]*entity.Transfer{},
		products:  map[string]*entity.Product{},
	}
}

func (l *txLog) saveInventory(st *state, k invKey) {
	if l == nil {
		return
	}
	if _, seen := l.inventory[k]; seen {
		return
	}
	if rec, ok := st.inventory[k]; ok {
		l.inventory[k] = &rec
		return
	}
	l.inventory[k] = nil
}

func (l *txLog) saveRequest(st *state, id string) {
	if l == nil {
		return
	}
	if _, seen := l.requests[id]; seen {
		return
	}
	if req, ok := st.requests[id]; ok {
		req.Items = append([]entity.RequestItem(nil), req.Items...)
		l.requests[id] = &req
		return
	}
	l.requests[id] = nil
}

func (l *txLog) saveTransfer(st *state, id string) {
	if l == nil {
		return
	}
	if _, seen := l.transfers[id]; seen {
		return
	}
	if t, ok := st.transfers[id]; ok {
		t.Items = append([]entity.TransferItem(nil), t.Items...)
		l.transfers[id] = &t
		return
	}
	l.transfers[id] = nil
}

func (l *txLog) saveProduct(st *state, id string) {
	if l == nil {
		return
	}
	if _, seen := l.products[id]; seen {
		return
	}
	if p, ok := st.products[id]; ok {
		l.products[id] = &p
		return
	}
	l.products[id] = nil
}

// restore deja las claves registradas como estaban antes de la transacción.
func (l *txLog) restore(st *state) {
	for k, prev := range l.inventory {
		if prev == nil {
			delete(st.inventory, k)
			continue
		}
		st.inventory[k] = *prev
	}
	for id, prev := range l.requests {
		if prev == nil {
			delete(st.requests, id)
			continue
		}
		st.requests[id] = *prev
	}
	for id, prev := range l.transfers {
		if prev == nil {
			delete(st.transfers, id)
			continue
		}
		st.transfers[id] = *prev
	}
	for id, prev := range l.products {
		if prev == nil {
			delete(st.products, id)
			continue
		}
		st.products[id] = *prev
	}
}
