package policy_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/inventario-bares/internal/domain/entity"
	"github.com/jhoicas/inventario-bares/internal/domain/policy"
)

var roles = []entity.Role{entity.RoleAdmin, entity.RoleBodeguero, entity.RoleBartender}

func TestCanTransition_Matriz(t *testing.T) {
	cases := []struct {
		name     string
		workflow policy.Workflow
		from, to string
		allowed  []entity.Role
	}{
		{"crear solicitud", policy.WorkflowRequest, policy.StateNew, "pending", []entity.Role{entity.RoleAdmin, entity.RoleBartender}},
		{"aprobar", policy.WorkflowRequest, "pending", "approved", []entity.Role{entity.RoleAdmin, entity.RoleBodeguero}},
		{"rechazar", policy.WorkflowRequest, "pending", "rejected", []entity.Role{entity.RoleAdmin, entity.RoleBodeguero}},
		{"entregar", policy.WorkflowRequest, "approved", "delivered", []entity.Role{entity.RoleAdmin, entity.RoleBodeguero}},
		{"crear traspaso", policy.WorkflowTransfer, policy.StateNew, "pending", []entity.Role{entity.RoleAdmin, entity.RoleBodeguero}},
		{"confirmar traspaso", policy.WorkflowTransfer, "pending", "completed", roles},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			for _, r := range roles {
				assert.Equal(t, contains(c.allowed, r), policy.CanTransition(r, c.workflow, c.from, c.to), "rol %s", r)
			}
		})
	}
}

// Desde pending solo se llega a approved o rejected; desde approved solo a delivered; los terminales no admiten nada.
func TestCanTransition_ClausuraDeSolicitud(t *testing.T) {
	states := []entity.RequestStatus{entity.RequestPending, entity.RequestApproved, entity.RequestRejected, entity.RequestDelivered}
	reachable := map[entity.RequestStatus][]entity.RequestStatus{
		entity.RequestPending:  {entity.RequestApproved, entity.RequestRejected},
		entity.RequestApproved: {entity.RequestDelivered},
	}
	for _, from := range states {
		for _, to := range states {
			want := containsStatus(reachable[from], to)
			assert.Equal(t, want, policy.IsValidTransition(policy.WorkflowRequest, string(from), string(to)), "%s → %s", from, to)
			if !want {
				for _, r := range roles {
					assert.False(t, policy.CanTransition(r, policy.WorkflowRequest, string(from), string(to)))
				}
			}
		}
	}
}

func TestCanTransition_ClausuraDeTraspaso(t *testing.T) {
	assert.True(t, policy.IsValidTransition(policy.WorkflowTransfer, "pending", "completed"))
	assert.False(t, policy.IsValidTransition(policy.WorkflowTransfer, "completed", "pending"))
	assert.False(t, policy.IsValidTransition(policy.WorkflowTransfer, "completed", "completed"))
	assert.False(t, policy.IsValidTransition(policy.WorkflowTransfer, "pending", "pending"))
}

func TestCanRequestFor_BartenderLimitadoASuBar(t *testing.T) {
	barA := entity.LocationBarA
	bartender := entity.Actor{Role: entity.RoleBartender, Location: &barA}
	assert.True(t, policy.CanRequestFor(bartender, entity.LocationBarA))
	assert.False(t, policy.CanRequestFor(bartender, entity.LocationBarB))
	assert.True(t, policy.CanRequestFor(entity.Actor{Role: entity.RoleBartender}, entity.LocationBarB))
	assert.True(t, policy.CanRequestFor(entity.Actor{Role: entity.RoleAdmin, Location: &barA}, entity.LocationBarB))
}

func contains(list []entity.Role, r entity.Role) bool {
	for _, x := range list {
		if x == r {
			return true
		}
	}
	return false
}

func containsStatus(list []entity.RequestStatus, s entity.RequestStatus) bool {
	for _, x := range list {
		if x == s {
			return true
		}
	}
	return false
}
