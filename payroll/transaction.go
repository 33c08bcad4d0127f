/*
transaction.go - Command layer: adding employees and documents

PURPOSE:
  Every change to payroll state is a Transaction: constructed with its
  parameters and a Store, executed exactly once.

FLOW (mutating transactions):
  1. Validate arguments (no store access)
  2. Fetch the employee or member, fail with NotFound if absent
  3. Check the classification/affiliation kind, fail with TypeMismatch
  4. Apply the change
  5. Save (for stores that hand out copies)

SEE ALSO:
  - change.go: ChangeXxx transactions
  - payday.go: PaydayTransaction
*/
package payroll

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
)

// Transaction is a single-shot command against a Store.
type Transaction interface {
	Execute(ctx context.Context) error
}

var (
	_ Transaction = (*AddEmployeeTransaction)(nil)
	_ Transaction = (*AddTimeCardTransaction)(nil)
	_ Transaction = (*AddSalesReceiptTransaction)(nil)
	_ Transaction = (*AddServiceChargeTransaction)(nil)
	_ Transaction = (*DeleteEmployeeTransaction)(nil)
)

// =============================================================================
// PAY CLASS - Classification parameters plus the schedule paired with them
// =============================================================================

// PayClass describes a classification. Each kind has exactly one schedule:
// salaried→monthly, hourly→weekly, commissioned→biweekly from WorkStartDate.
type PayClass struct {
	Kind           ClassificationKind
	Salary         decimal.Decimal
	HourlyRate     decimal.Decimal
	CommissionRate decimal.Decimal
	WorkStartDate  Date
}

func SalariedPay(salary decimal.Decimal) PayClass {
	return PayClass{Kind: ClassSalaried, Salary: salary}
}

func HourlyPay(rate decimal.Decimal) PayClass {
	return PayClass{Kind: ClassHourly, HourlyRate: rate}
}

func CommissionedPay(commissionRate, salary decimal.Decimal, workStart Date) PayClass {
	return PayClass{Kind: ClassCommissioned, CommissionRate: commissionRate, Salary: salary, WorkStartDate: workStart}
}

// Build returns a fresh classification and its paired schedule.
func (p PayClass) Build() (Classification, Schedule, error) {
	switch p.Kind {
	case ClassSalaried:
		if p.Salary.IsNegative() {
			return nil, nil, fmt.Errorf("%w: negative salary %s", ErrInvalidArgument, p.Salary)
		}
		return NewSalariedClassification(p.Salary), MonthlySchedule{}, nil

	case ClassHourly:
		if p.HourlyRate.IsNegative() {
			return nil, nil, fmt.Errorf("%w: negative hourly rate %s", ErrInvalidArgument, p.HourlyRate)
		}
		return NewHourlyClassification(p.HourlyRate), WeeklySchedule{}, nil

	case ClassCommissioned:
		if p.Salary.IsNegative() || p.CommissionRate.IsNegative() {
			return nil, nil, fmt.Errorf("%w: negative salary or commission rate", ErrInvalidArgument)
		}
		if p.WorkStartDate.IsZero() {
			return nil, nil, fmt.Errorf("%w: commissioned pay requires a work start date", ErrInvalidArgument)
		}
		return NewCommissionedClassification(p.CommissionRate, p.Salary), NewBiweeklySchedule(p.WorkStartDate), nil

	default:
		return nil, nil, fmt.Errorf("%w: unknown classification %q", ErrInvalidArgument, p.Kind)
	}
}

// apply swaps classification and schedule together.
func (p PayClass) apply(e *Employee) error {
	c, s, err := p.Build()
	if err != nil {
		return err
	}
	if err := e.SetClassification(c); err != nil {
		return err
	}
	return e.SetSchedule(s)
}

// =============================================================================
// ADD EMPLOYEE
// =============================================================================

// AddEmployeeTransaction creates an employee paid by HoldMethod.
type AddEmployeeTransaction struct {
	store   Store
	ID      EmployeeID
	Name    string
	Address string
	Pay     PayClass
}

func NewAddEmployee(s Store, id EmployeeID, name, address string, pay PayClass) *AddEmployeeTransaction {
	return &AddEmployeeTransaction{store: s, ID: id, Name: name, Address: address, Pay: pay}
}

func NewAddSalariedEmployee(s Store, id EmployeeID, name, address string, salary decimal.Decimal) *AddEmployeeTransaction {
	return NewAddEmployee(s, id, name, address, SalariedPay(salary))
}

func NewAddHourlyEmployee(s Store, id EmployeeID, name, address string, rate decimal.Decimal) *AddEmployeeTransaction {
	return NewAddEmployee(s, id, name, address, HourlyPay(rate))
}

func NewAddCommissionedEmployee(s Store, id EmployeeID, name, address string, commissionRate, salary decimal.Decimal, workStart Date) *AddEmployeeTransaction {
	return NewAddEmployee(s, id, name, address, CommissionedPay(commissionRate, salary, workStart))
}

func (t *AddEmployeeTransaction) Execute(ctx context.Context) error {
	e := NewEmployee(t.ID, t.Name, t.Address)
	if err := t.Pay.apply(e); err != nil {
		return err
	}
	if err := e.SetMethod(HoldMethod{}); err != nil {
		return err
	}

	existing, err := t.store.GetEmployee(ctx, t.ID)
	if err != nil {
		return err
	}
	if existing != nil {
		return fmt.Errorf("%w: id %d", ErrDuplicateEmployee, t.ID)
	}
	return t.store.AddEmployee(ctx, t.ID, e)
}

// =============================================================================
// DOCUMENTS
// =============================================================================

// AddTimeCardTransaction records hours worked by an hourly employee.
type AddTimeCardTransaction struct {
	store Store
	ID    EmployeeID
	Date  Date
	Hours decimal.Decimal
}

func NewAddTimeCard(s Store, id EmployeeID, date Date, hours decimal.Decimal) *AddTimeCardTransaction {
	return &AddTimeCardTransaction{store: s, ID: id, Date: date, Hours: hours}
}

func (t *AddTimeCardTransaction) Execute(ctx context.Context) error {
	if t.Hours.IsNegative() {
		return fmt.Errorf("%w: negative hours %s", ErrInvalidArgument, t.Hours)
	}
	e, err := fetchEmployee(ctx, t.store, t.ID)
	if err != nil {
		return err
	}
	hc, ok := e.Classification().(*HourlyClassification)
	if !ok {
		return &TypeMismatchError{EmployeeID: t.ID, Document: DocTimeCard, Want: string(ClassHourly), Got: kindOf(e.Classification())}
	}
	if err := hc.AddTimeCard(TimeCard{Date: t.Date, Hours: t.Hours}); err != nil {
		return err
	}
	return save(ctx, t.store, e)
}

// AddSalesReceiptTransaction records a sale by a commissioned employee.
type AddSalesReceiptTransaction struct {
	store  Store
	ID     EmployeeID
	Date   Date
	Amount decimal.Decimal
}

func NewAddSalesReceipt(s Store, id EmployeeID, date Date, amount decimal.Decimal) *AddSalesReceiptTransaction {
	return &AddSalesReceiptTransaction{store: s, ID: id, Date: date, Amount: amount}
}

func (t *AddSalesReceiptTransaction) Execute(ctx context.Context) error {
	if t.Amount.IsNegative() {
		return fmt.Errorf("%w: negative sale amount %s", ErrInvalidArgument, t.Amount)
	}
	e, err := fetchEmployee(ctx, t.store, t.ID)
	if err != nil {
		return err
	}
	cc, ok := e.Classification().(*CommissionedClassification)
	if !ok {
		return &TypeMismatchError{EmployeeID: t.ID, Document: DocSalesReceipt, Want: string(ClassCommissioned), Got: kindOf(e.Classification())}
	}
	if err := cc.AddSalesReceipt(SalesReceipt{Date: t.Date, Amount: t.Amount}); err != nil {
		return err
	}
	return save(ctx, t.store, e)
}

// AddServiceChargeTransaction charges a union member, looked up by member id.
type AddServiceChargeTransaction struct {
	store    Store
	MemberID MemberID
	Date     Date
	Amount   decimal.Decimal
}

func NewAddServiceCharge(s Store, memberID MemberID, date Date, amount decimal.Decimal) *AddServiceChargeTransaction {
	return &AddServiceChargeTransaction{store: s, MemberID: memberID, Date: date, Amount: amount}
}

func (t *AddServiceChargeTransaction) Execute(ctx context.Context) error {
	if t.Amount.IsNegative() {
		return fmt.Errorf("%w: negative service charge %s", ErrInvalidArgument, t.Amount)
	}
	e, err := fetchMember(ctx, t.store, t.MemberID)
	if err != nil {
		return err
	}
	ua, ok := e.UnionAffiliation()
	if !ok {
		return &TypeMismatchError{EmployeeID: e.ID(), Document: DocServiceCharge, Want: "union affiliation", Got: "unaffiliated"}
	}
	if err := ua.AddServiceCharge(ServiceCharge{Date: t.Date, Amount: t.Amount}); err != nil {
		return err
	}
	return save(ctx, t.store, e)
}

// =============================================================================
// DELETE EMPLOYEE
// =============================================================================

// DeleteEmployeeTransaction removes an employee and its member index entry.
// A missing id fails with NotFound like every other employee transaction.
type DeleteEmployeeTransaction struct {
	store Store
	ID    EmployeeID
}

func NewDeleteEmployee(s Store, id EmployeeID) *DeleteEmployeeTransaction {
	return &DeleteEmployeeTransaction{store: s, ID: id}
}

func (t *DeleteEmployeeTransaction) Execute(ctx context.Context) error {
	e, err := fetchEmployee(ctx, t.store, t.ID)
	if err != nil {
		return err
	}
	if err := t.store.DeleteEmployee(ctx, t.ID); err != nil {
		return err
	}
	if ua, ok := e.UnionAffiliation(); ok {
		return t.store.DeleteUnionMember(ctx, ua.MemberID)
	}
	return nil
}

func kindOf(c Classification) string {
	if c == nil {
		return "none"
	}
	return string(c.Kind())
}
