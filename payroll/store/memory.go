// Package store provides payroll.Store implementations.
package store

import (
	"context"
	"sort"
	"sync"

	"github.com/warp/payroll-engine/payroll"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

// Memory keeps employees and the union member index in two maps. The member
// map aliases the same *payroll.Employee held in the employee map, so
// mutations through either lookup are visible through both.
type Memory struct {
	mu           sync.RWMutex
	employees    map[payroll.EmployeeID]*payroll.Employee
	unionMembers map[payroll.MemberID]*payroll.Employee
}

var _ payroll.Store = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{
		employees:    make(map[payroll.EmployeeID]*payroll.Employee),
		unionMembers: make(map[payroll.MemberID]*payroll.Employee),
	}
}

func (m *Memory) AddEmployee(_ context.Context, id payroll.EmployeeID, e *payroll.Employee) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.employees[id] = e
	return nil
}

func (m *Memory) GetEmployee(_ context.Context, id payroll.EmployeeID) (*payroll.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.employees[id], nil
}

// DeleteEmployee is a no-op for unknown ids.
func (m *Memory) DeleteEmployee(_ context.Context, id payroll.EmployeeID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.employees, id)
	return nil
}

func (m *Memory) AddUnionMember(_ context.Context, memberID payroll.MemberID, e *payroll.Employee) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.unionMembers[memberID] = e
	return nil
}

func (m *Memory) GetUnionMember(_ context.Context, memberID payroll.MemberID) (*payroll.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.unionMembers[memberID], nil
}

func (m *Memory) DeleteUnionMember(_ context.Context, memberID payroll.MemberID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.unionMembers, memberID)
	return nil
}

// EmployeeIDs returns the ids in ascending order.
func (m *Memory) EmployeeIDs(_ context.Context) ([]payroll.EmployeeID, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]payroll.EmployeeID, 0, len(m.employees))
	for id := range m.employees {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

// Clear drops every employee and member.
func (m *Memory) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.employees = make(map[payroll.EmployeeID]*payroll.Employee)
	m.unionMembers = make(map[payroll.MemberID]*payroll.Employee)
}

// Reset is Clear with the context-taking signature the sqlite store uses.
func (m *Memory) Reset(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.Clear()
	return nil
}
