package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/payroll-engine/payroll"
)

func TestMemory_EmployeeCRUD(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	e := payroll.NewEmployee(7, "Bob", "Home")

	require.NoError(t, m.AddEmployee(ctx, 7, e))
	got, err := m.GetEmployee(ctx, 7)
	require.NoError(t, err)
	assert.Same(t, e, got)

	missing, err := m.GetEmployee(ctx, 8)
	require.NoError(t, err)
	assert.Nil(t, missing)

	require.NoError(t, m.DeleteEmployee(ctx, 7))
	require.NoError(t, m.DeleteEmployee(ctx, 7), "deleting twice is a no-op")
	got, err = m.GetEmployee(ctx, 7)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestMemory_UnionMembersAliasEmployees(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	e := payroll.NewEmployee(1, "Bob", "Home")
	require.NoError(t, m.AddEmployee(ctx, 1, e))
	require.NoError(t, m.AddUnionMember(ctx, 42, e))

	member, err := m.GetUnionMember(ctx, 42)
	require.NoError(t, err)
	member.Name = "Robert"

	byID, _ := m.GetEmployee(ctx, 1)
	assert.Equal(t, "Robert", byID.Name)

	require.NoError(t, m.DeleteUnionMember(ctx, 42))
	member, err = m.GetUnionMember(ctx, 42)
	require.NoError(t, err)
	assert.Nil(t, member)
	byID, _ = m.GetEmployee(ctx, 1)
	assert.NotNil(t, byID, "removing the member keeps the employee")
}

func TestMemory_EmployeeIDsSortedAndClear(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	for _, id := range []payroll.EmployeeID{3, 1, 2} {
		require.NoError(t, m.AddEmployee(ctx, id, payroll.NewEmployee(id, "x", "y")))
	}

	ids, err := m.EmployeeIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []payroll.EmployeeID{1, 2, 3}, ids)

	m.Clear()
	ids, err = m.EmployeeIDs(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids)
}
