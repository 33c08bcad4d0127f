/*
store.go - Persistence boundary of the payroll engine

PURPOSE:
  The engine only ever talks to a Store: a keyed collection of employees
  plus a secondary index from union member id to the owning employee.

KEY INTERFACES:
  Store:         Employee and union-member lookup (the core contract)
  EmployeeSaver: Optional capability for stores that hand out copies

CONSISTENCY:
  The member index must agree with each employee's affiliation. Every
  affiliation-changing transaction deregisters the old id before registering
  the new one.

IMPLEMENTATIONS:
  - payroll/store/memory.go: In-memory, hands out shared pointers
  - store/sqlite/sqlite.go:  SQLite snapshot store, implements EmployeeSaver
*/
package payroll

import "context"

// Store is the keyed employee collection the transactions run against.
// Get methods return (nil, nil) when the key is absent.
type Store interface {
	AddEmployee(ctx context.Context, id EmployeeID, e *Employee) error
	GetEmployee(ctx context.Context, id EmployeeID) (*Employee, error)
	DeleteEmployee(ctx context.Context, id EmployeeID) error

	AddUnionMember(ctx context.Context, memberID MemberID, e *Employee) error
	GetUnionMember(ctx context.Context, memberID MemberID) (*Employee, error)
	DeleteUnionMember(ctx context.Context, memberID MemberID) error

	// EmployeeIDs returns every stored id exactly once. Order carries no meaning.
	EmployeeIDs(ctx context.Context) ([]EmployeeID, error)
}

// EmployeeSaver is implemented by stores whose Get methods return detached
// copies. Transactions call SaveEmployee after every successful mutation.
type EmployeeSaver interface {
	SaveEmployee(ctx context.Context, e *Employee) error
}

// save persists e when the store needs it; in-place stores are a no-op.
func save(ctx context.Context, s Store, e *Employee) error {
	if saver, ok := s.(EmployeeSaver); ok {
		return saver.SaveEmployee(ctx, e)
	}
	return nil
}

// fetchEmployee is the shared fetch-or-fail step of every employee transaction.
func fetchEmployee(ctx context.Context, s Store, id EmployeeID) (*Employee, error) {
	e, err := s.GetEmployee(ctx, id)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, employeeNotFound(id)
	}
	return e, nil
}

// fetchMember is fetchEmployee through the union member index.
func fetchMember(ctx context.Context, s Store, id MemberID) (*Employee, error) {
	e, err := s.GetUnionMember(ctx, id)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, memberNotFound(id)
	}
	return e, nil
}
