package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanResolve(t *testing.T) {
	bossID := int64(2)
	boss := &User{ID: bossID, Role: RoleSupervisor}
	otherBoss := &User{ID: 3, Role: RoleSupervisor}
	admin := &User{ID: 4, Role: RoleAdministrator}
	employee := &User{ID: 10, Role: RoleEmployee, SupervisorID: &bossID}
	orphan := &User{ID: 11, Role: RoleEmployee}

	assert.True(t, boss.CanResolve(employee))
	assert.False(t, otherBoss.CanResolve(employee))
	assert.True(t, admin.CanResolve(employee))
	assert.True(t, admin.CanResolve(orphan))
	assert.False(t, boss.CanResolve(orphan))
	assert.False(t, employee.CanResolve(employee))
	assert.False(t, admin.CanResolve(admin))
}

func TestLeaveStatusIsFinal(t *testing.T) {
	assert.False(t, LeaveStatusPending.IsFinal())
	assert.True(t, LeaveStatusApproved.IsFinal())
	assert.True(t, LeaveStatusRejected.IsFinal())
	assert.True(t, LeaveStatusCancelled.IsFinal())
}
