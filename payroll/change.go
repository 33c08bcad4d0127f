package payroll

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// CHANGE EMPLOYEE - Fetch, mutate one aspect, save
// =============================================================================

var (
	_ Transaction = (*ChangeNameTransaction)(nil)
	_ Transaction = (*ChangeAddressTransaction)(nil)
	_ Transaction = (*ChangeClassificationTransaction)(nil)
	_ Transaction = (*ChangeMethodTransaction)(nil)
	_ Transaction = (*ChangeMemberTransaction)(nil)
	_ Transaction = (*ChangeUnaffiliatedTransaction)(nil)
)

// change runs fn on the fetched employee and saves it on success.
func change(ctx context.Context, s Store, id EmployeeID, fn func(*Employee) error) error {
	e, err := fetchEmployee(ctx, s, id)
	if err != nil {
		return err
	}
	if err := fn(e); err != nil {
		return err
	}
	return save(ctx, s, e)
}

type ChangeNameTransaction struct {
	store Store
	ID    EmployeeID
	Name  string
}

func NewChangeName(s Store, id EmployeeID, name string) *ChangeNameTransaction {
	return &ChangeNameTransaction{store: s, ID: id, Name: name}
}

func (t *ChangeNameTransaction) Execute(ctx context.Context) error {
	return change(ctx, t.store, t.ID, func(e *Employee) error {
		e.Name = t.Name
		return nil
	})
}

type ChangeAddressTransaction struct {
	store   Store
	ID      EmployeeID
	Address string
}

func NewChangeAddress(s Store, id EmployeeID, address string) *ChangeAddressTransaction {
	return &ChangeAddressTransaction{store: s, ID: id, Address: address}
}

func (t *ChangeAddressTransaction) Execute(ctx context.Context) error {
	return change(ctx, t.store, t.ID, func(e *Employee) error {
		e.Address = t.Address
		return nil
	})
}

// -----------------------------------------------------------------------------
// Classification (always swapped together with its schedule)
// -----------------------------------------------------------------------------

// ChangeClassificationTransaction replaces classification and schedule as a
// pair. Documents recorded on the old classification are discarded.
type ChangeClassificationTransaction struct {
	store Store
	ID    EmployeeID
	Pay   PayClass
}

func NewChangeClassification(s Store, id EmployeeID, pay PayClass) *ChangeClassificationTransaction {
	return &ChangeClassificationTransaction{store: s, ID: id, Pay: pay}
}

func NewChangeHourly(s Store, id EmployeeID, rate decimal.Decimal) *ChangeClassificationTransaction {
	return NewChangeClassification(s, id, HourlyPay(rate))
}

func NewChangeSalaried(s Store, id EmployeeID, salary decimal.Decimal) *ChangeClassificationTransaction {
	return NewChangeClassification(s, id, SalariedPay(salary))
}

func NewChangeCommissioned(s Store, id EmployeeID, salary, commissionRate decimal.Decimal, workStart Date) *ChangeClassificationTransaction {
	return NewChangeClassification(s, id, CommissionedPay(commissionRate, salary, workStart))
}

func (t *ChangeClassificationTransaction) Execute(ctx context.Context) error {
	// Validate before touching the store.
	if _, _, err := t.Pay.Build(); err != nil {
		return err
	}
	return change(ctx, t.store, t.ID, t.Pay.apply)
}

// -----------------------------------------------------------------------------
// Method
// -----------------------------------------------------------------------------

type ChangeMethodTransaction struct {
	store  Store
	ID     EmployeeID
	Method Method
}

func NewChangeMethod(s Store, id EmployeeID, m Method) *ChangeMethodTransaction {
	return &ChangeMethodTransaction{store: s, ID: id, Method: m}
}

func NewChangeHold(s Store, id EmployeeID) *ChangeMethodTransaction {
	return NewChangeMethod(s, id, HoldMethod{})
}

func NewChangeDirect(s Store, id EmployeeID, bank, account string) *ChangeMethodTransaction {
	return NewChangeMethod(s, id, DirectMethod{Bank: bank, Account: account})
}

func NewChangeMail(s Store, id EmployeeID, address string) *ChangeMethodTransaction {
	return NewChangeMethod(s, id, MailMethod{Address: address})
}

func (t *ChangeMethodTransaction) Execute(ctx context.Context) error {
	if t.Method == nil {
		return fmt.Errorf("%w: method must not be nil", ErrInvalidArgument)
	}
	return change(ctx, t.store, t.ID, func(e *Employee) error {
		return e.SetMethod(t.Method)
	})
}

// -----------------------------------------------------------------------------
// Affiliation (keeps the store's member index in step)
// -----------------------------------------------------------------------------

// ChangeMemberTransaction gives the employee a fresh union membership. The
// previous member id, if any, is deregistered once the employee is saved.
type ChangeMemberTransaction struct {
	store    Store
	ID       EmployeeID
	MemberID MemberID
	Dues     decimal.Decimal
}

func NewChangeMember(s Store, id EmployeeID, memberID MemberID, dues decimal.Decimal) *ChangeMemberTransaction {
	return &ChangeMemberTransaction{store: s, ID: id, MemberID: memberID, Dues: dues}
}

func (t *ChangeMemberTransaction) Execute(ctx context.Context) error {
	if t.Dues.IsNegative() {
		return fmt.Errorf("%w: negative dues %s", ErrInvalidArgument, t.Dues)
	}
	e, err := fetchEmployee(ctx, t.store, t.ID)
	if err != nil {
		return err
	}

	owner, err := t.store.GetUnionMember(ctx, t.MemberID)
	if err != nil {
		return err
	}
	if owner != nil && owner.ID() != e.ID() {
		return fmt.Errorf("%w: member %d belongs to employee %d", ErrDuplicateMember, t.MemberID, owner.ID())
	}

	old, hadOld := e.UnionAffiliation()
	if err := e.SetAffiliation(NewUnionAffiliation(t.MemberID, t.Dues)); err != nil {
		return err
	}
	// The employee is saved before the index moves, so a failed save leaves
	// the index pointing where the stored employee says it should.
	if err := save(ctx, t.store, e); err != nil {
		return err
	}
	if hadOld && old.MemberID != t.MemberID {
		if err := t.store.DeleteUnionMember(ctx, old.MemberID); err != nil {
			return err
		}
	}
	return t.store.AddUnionMember(ctx, t.MemberID, e)
}

// ChangeUnaffiliatedTransaction ends the employee's union membership.
type ChangeUnaffiliatedTransaction struct {
	store Store
	ID    EmployeeID
}

func NewChangeUnaffiliated(s Store, id EmployeeID) *ChangeUnaffiliatedTransaction {
	return &ChangeUnaffiliatedTransaction{store: s, ID: id}
}

func (t *ChangeUnaffiliatedTransaction) Execute(ctx context.Context) error {
	e, err := fetchEmployee(ctx, t.store, t.ID)
	if err != nil {
		return err
	}
	old, hadOld := e.UnionAffiliation()
	if err := e.SetAffiliation(nil); err != nil {
		return err
	}
	if err := save(ctx, t.store, e); err != nil {
		return err
	}
	if !hadOld {
		return nil
	}
	return t.store.DeleteUnionMember(ctx, old.MemberID)
}
