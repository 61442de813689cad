// Package policy centraliza qué rol puede ejecutar cada transición de estado.
package policy

import "github.com/jhoicas/inventario-bares/internal/domain/entity"

// Workflow identifica la máquina de estados evaluada.
type Workflow string

const (
	WorkflowRequest  Workflow = "request"
	WorkflowTransfer Workflow = "transfer"
)

// StateNew representa el estado "sin crear"; CanTransition(role, wf, StateNew, "pending") autoriza la creación.
const StateNew = ""

type transition struct {
	workflow Workflow
	from, to string
}

var (
	staff    = []entity.Role{entity.RoleAdmin, entity.RoleBodeguero}
	everyone = []entity.Role{entity.RoleAdmin, entity.RoleBodeguero, entity.RoleBartender}
)

type rule struct {
	transition
	roles []entity.Role
}

// Transiciones válidas y roles autorizados. Cualquier par ausente es inválido para todos los roles.
var rules = []rule{
	{transition{WorkflowRequest, StateNew, string(entity.RequestPending)}, []entity.Role{entity.RoleAdmin, entity.RoleBartender}},
	{transition{WorkflowRequest, string(entity.RequestPending), string(entity.RequestApproved)}, staff},
	{transition{WorkflowRequest, string(entity.RequestPending), string(entity.RequestRejected)}, staff},
	{transition{WorkflowRequest, string(entity.RequestApproved), string(entity.RequestDelivered)}, staff},

	{transition{WorkflowTransfer, StateNew, string(entity.TransferPending)}, staff},
	{transition{WorkflowTransfer, string(entity.TransferPending), string(entity.TransferCompleted)}, everyone},
}

func lookup(workflow Workflow, from, to string) ([]entity.Role, bool) {
	want := transition{workflow, from, to}
	for _, r := range rules {
		if r.transition == want {
			return r.roles, true
		}
	}
	return nil, false
}

// IsValidTransition indica si from → to existe en la máquina de estados, sin mirar el rol.
func IsValidTransition(workflow Workflow, from, to string) bool {
	_, ok := lookup(workflow, from, to)
	return ok
}

// CanTransition indica si role puede mover workflow de from a to.
func CanTransition(role entity.Role, workflow Workflow, from, to string) bool {
	roles, _ := lookup(workflow, from, to)
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}

// CanRequestFor aplica la restricción de ubicación: un bartender con bar asignado solo pide para su bar.
func CanRequestFor(actor entity.Actor, destination entity.Location) bool {
	if actor.Role != entity.RoleBartender || actor.Location == nil {
		return true
	}
	return *actor.Location == destination
}

// CanManageCatalog productos, categorías, alertas y stock manual.
func CanManageCatalog(role entity.Role) bool {
	return role == entity.RoleAdmin || role == entity.RoleBodeguero
}

// CanManageUsers administración de usuarios.
func CanManageUsers(role entity.Role) bool {
	return role == entity.RoleAdmin
}
