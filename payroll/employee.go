package payroll

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// EMPLOYEE - Aggregates classification, schedule, method and affiliation
// =============================================================================

// Employee is owned by a Store and mutated only through transactions.
type Employee struct {
	id      EmployeeID
	Name    string
	Address string

	classification Classification
	schedule       Schedule
	method         Method
	affiliation    Affiliation
}

// NewEmployee returns an employee with no classification, schedule or
// method. Callers must set all three before running payroll.
func NewEmployee(id EmployeeID, name, address string) *Employee {
	return &Employee{id: id, Name: name, Address: address}
}

func (e *Employee) ID() EmployeeID                 { return e.id }
func (e *Employee) Classification() Classification { return e.classification }
func (e *Employee) Schedule() Schedule             { return e.schedule }
func (e *Employee) Method() Method                 { return e.method }
func (e *Employee) Affiliation() Affiliation       { return e.affiliation }

func (e *Employee) SetClassification(c Classification) error {
	if isNil(c) {
		return fmt.Errorf("%w: classification must not be nil", ErrInvalidArgument)
	}
	e.classification = c
	return nil
}

func (e *Employee) SetSchedule(s Schedule) error {
	if isNil(s) {
		return fmt.Errorf("%w: schedule must not be nil", ErrInvalidArgument)
	}
	e.schedule = s
	return nil
}

func (e *Employee) SetMethod(m Method) error {
	if isNil(m) {
		return fmt.Errorf("%w: method must not be nil", ErrInvalidArgument)
	}
	e.method = m
	return nil
}

// SetAffiliation accepts nil to clear the membership. A typed nil pointer is
// rejected since it would look like a membership without being one.
func (e *Employee) SetAffiliation(a Affiliation) error {
	if a != nil && isNil(a) {
		return fmt.Errorf("%w: affiliation is a nil %T", ErrInvalidArgument, a)
	}
	e.affiliation = a
	return nil
}

// UnionAffiliation returns the employee's union membership, if any.
func (e *Employee) UnionAffiliation() (*UnionAffiliation, bool) {
	u, ok := e.affiliation.(*UnionAffiliation)
	return u, ok
}

func (e *Employee) IsPayDate(d Date) bool { return e.schedule.IsPayDate(d) }

func (e *Employee) PayPeriodStartDate(payDate Date) Date {
	return e.schedule.PayPeriodStartDate(payDate)
}

// Payday computes and settles pc for this employee: gross from the
// classification, deductions from the affiliation, then the method pays it.
func (e *Employee) Payday(pc *Paycheck) {
	gross := e.classification.CalculatePay(pc.Period)
	deductions := decimal.Zero
	if e.affiliation != nil {
		deductions = e.affiliation.CalculateDeductions(pc.Period)
	}

	pc.EmployeeID = e.id
	pc.GrossPay = gross
	pc.Deductions = deductions
	pc.NetPay = gross.Sub(deductions)
	pc.Disposition = e.method.Disposition()
	e.method.Pay(pc)
}

// isNil catches both untyped nil and nil pointers stored in an interface.
func isNil(v any) bool {
	if v == nil {
		return true
	}
	switch p := v.(type) {
	case *SalariedClassification:
		return p == nil
	case *HourlyClassification:
		return p == nil
	case *CommissionedClassification:
		return p == nil
	case *UnionAffiliation:
		return p == nil
	}
	return false
}
