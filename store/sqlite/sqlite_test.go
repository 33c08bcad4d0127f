package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/payroll-engine/payroll"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func run(t *testing.T, tx payroll.Transaction) {
	t.Helper()
	require.NoError(t, tx.Execute(context.Background()))
}

func day(s string) payroll.Date { return payroll.MustParseDate(s) }

func TestStore_EmployeeRoundTrip(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	run(t, payroll.NewAddCommissionedEmployee(st, 4, "Bill", "Home", payroll.Money(0.2), payroll.Money(500), day("2022-04-04")))
	run(t, payroll.NewAddSalesReceipt(st, 4, day("2022-05-06"), payroll.Money(200)))
	run(t, payroll.NewChangeDirect(st, 4, "Bank", "1234"))
	run(t, payroll.NewChangeMember(st, 4, 7734, payroll.Money(9.42)))
	run(t, payroll.NewAddServiceCharge(st, 7734, day("2022-05-13"), payroll.Money(19.42)))

	e, err := st.GetEmployee(ctx, 4)
	require.NoError(t, err)
	require.NotNil(t, e)

	assert.Equal(t, payroll.EmployeeID(4), e.ID())
	assert.Equal(t, "Bill", e.Name)

	c, ok := e.Classification().(*payroll.CommissionedClassification)
	require.True(t, ok)
	assert.True(t, c.Salary.Equal(payroll.Money(500)))
	assert.True(t, c.CommissionRate.Equal(payroll.Money(0.2)))
	r, ok := c.SalesReceipt(day("2022-05-06"))
	require.True(t, ok)
	assert.True(t, r.Amount.Equal(payroll.Money(200)))

	assert.Equal(t, payroll.NewBiweeklySchedule(day("2022-04-04")), e.Schedule())
	assert.Equal(t, payroll.DirectMethod{Bank: "Bank", Account: "1234"}, e.Method())

	ua, ok := e.UnionAffiliation()
	require.True(t, ok)
	assert.Equal(t, payroll.MemberID(7734), ua.MemberID)
	assert.True(t, ua.Dues.Equal(payroll.Money(9.42)))
	sc, ok := ua.ServiceCharge(day("2022-05-13"))
	require.True(t, ok)
	assert.True(t, sc.Amount.Equal(payroll.Money(19.42)))
}

func TestStore_GetReturnsDetachedCopies(t *testing.T) {
	// GIVEN: an employee fetched from the store
	// WHEN: the copy is mutated without SaveEmployee
	// THEN: the stored snapshot is unchanged
	ctx := context.Background()
	st := newTestStore(t)
	run(t, payroll.NewAddSalariedEmployee(st, 1, "Bob", "Home", payroll.Money(1000)))

	e, err := st.GetEmployee(ctx, 1)
	require.NoError(t, err)
	e.Name = "Robert"

	again, err := st.GetEmployee(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Bob", again.Name)

	require.NoError(t, st.SaveEmployee(ctx, e))
	again, err = st.GetEmployee(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Robert", again.Name)
}

func TestStore_MissingKeysReturnNil(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	e, err := st.GetEmployee(ctx, 42)
	require.NoError(t, err)
	assert.Nil(t, e)

	m, err := st.GetUnionMember(ctx, 42)
	require.NoError(t, err)
	assert.Nil(t, m)

	assert.NoError(t, st.DeleteEmployee(ctx, 42))
	assert.NoError(t, st.DeleteUnionMember(ctx, 42))
}

func TestStore_ChangeClassificationReplacesDocuments(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	run(t, payroll.NewAddHourlyEmployee(st, 1, "Bill", "Home", payroll.Money(15.25)))
	run(t, payroll.NewAddTimeCard(st, 1, day("2001-11-09"), payroll.Money(8)))

	run(t, payroll.NewChangeSalaried(st, 1, payroll.Money(1000)))
	run(t, payroll.NewChangeHourly(st, 1, payroll.Money(20)))

	e, err := st.GetEmployee(ctx, 1)
	require.NoError(t, err)
	c := e.Classification().(*payroll.HourlyClassification)
	assert.Empty(t, c.TimeCards())
	assert.True(t, c.HourlyRate.Equal(payroll.Money(20)))
	assert.Equal(t, payroll.WeeklySchedule{}, e.Schedule())
}

func TestStore_DuplicateDocumentRejectedThroughTransaction(t *testing.T) {
	st := newTestStore(t)
	run(t, payroll.NewAddHourlyEmployee(st, 1, "Bill", "Home", payroll.Money(15.25)))
	run(t, payroll.NewAddTimeCard(st, 1, day("2001-11-09"), payroll.Money(8)))

	err := payroll.NewAddTimeCard(st, 1, day("2001-11-09"), payroll.Money(2)).Execute(context.Background())

	assert.ErrorIs(t, err, payroll.ErrDuplicateDocument)
}

func TestStore_UnionMemberIndex(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	run(t, payroll.NewAddHourlyEmployee(st, 1, "Bill", "Home", payroll.Money(15.25)))
	run(t, payroll.NewChangeMember(st, 1, 100, payroll.Money(5)))

	m, err := st.GetUnionMember(ctx, 100)
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, payroll.EmployeeID(1), m.ID())

	run(t, payroll.NewChangeMember(st, 1, 200, payroll.Money(5)))
	m, err = st.GetUnionMember(ctx, 100)
	require.NoError(t, err)
	assert.Nil(t, m)

	run(t, payroll.NewChangeUnaffiliated(st, 1))
	m, err = st.GetUnionMember(ctx, 200)
	require.NoError(t, err)
	assert.Nil(t, m)
	e, err := st.GetEmployee(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, e.Affiliation())
}

func TestStore_DeleteEmployeeCascadesDocuments(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	run(t, payroll.NewAddHourlyEmployee(st, 1, "Bill", "Home", payroll.Money(15.25)))
	run(t, payroll.NewAddTimeCard(st, 1, day("2001-11-09"), payroll.Money(8)))
	run(t, payroll.NewChangeMember(st, 1, 100, payroll.Money(5)))

	run(t, payroll.NewDeleteEmployee(st, 1))

	ids, err := st.EmployeeIDs(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids)
	m, err := st.GetUnionMember(ctx, 100)
	require.NoError(t, err)
	assert.Nil(t, m)

	var cards int
	require.NoError(t, st.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM time_cards").Scan(&cards))
	assert.Zero(t, cards)
}

func TestStore_AddEmployeeIDMismatch_Rejected(t *testing.T) {
	st := newTestStore(t)

	err := st.AddEmployee(context.Background(), 2, payroll.NewEmployee(1, "Bob", "Home"))

	assert.ErrorIs(t, err, payroll.ErrInvalidArgument)
}

func TestStore_PaydayThroughSQLite(t *testing.T) {
	st := newTestStore(t)
	run(t, payroll.NewAddHourlyEmployee(st, 33, "Bill", "Home", payroll.Money(15.24)))
	run(t, payroll.NewChangeMember(st, 33, 7735, payroll.Money(9.42)))
	run(t, payroll.NewAddServiceCharge(st, 7735, day("2001-11-30"), payroll.Money(19.42)))
	run(t, payroll.NewAddTimeCard(st, 33, day("2001-11-30"), payroll.Money(8)))
	run(t, payroll.NewAddSalariedEmployee(st, 1, "Bob", "Home", payroll.Money(1000)))

	tx := payroll.NewPayday(st, day("2001-11-30"), payroll.WithWorkers(4))
	run(t, tx)

	pc, ok := tx.Paycheck(33)
	require.True(t, ok)
	assert.Equal(t, day("2001-11-24"), pc.Period.Start)
	assert.True(t, pc.GrossPay.Equal(decimal.RequireFromString("121.92")), pc.GrossPay.String())
	assert.True(t, pc.Deductions.Equal(decimal.RequireFromString("28.84")), pc.Deductions.String())
	assert.True(t, pc.NetPay.Equal(decimal.RequireFromString("93.08")), pc.NetPay.String())

	salaried, ok := tx.Paycheck(1)
	require.True(t, ok)
	assert.True(t, salaried.NetPay.Equal(payroll.Money(1000)))
}

func TestStore_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "payroll.db")

	st, err := New(path)
	require.NoError(t, err)
	run(t, payroll.NewAddSalariedEmployee(st, 1, "Bob", "Home", payroll.Money(1000)))
	require.NoError(t, st.Close())

	st, err = New(path)
	require.NoError(t, err)
	defer st.Close()

	e, err := st.GetEmployee(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, e)
	assert.Equal(t, "Bob", e.Name)
}

func TestStore_Reset(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	run(t, payroll.NewAddSalariedEmployee(st, 1, "Bob", "Home", payroll.Money(1000)))

	require.NoError(t, st.Reset(ctx))

	ids, err := st.EmployeeIDs(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

// failingSave rejects every SaveEmployee call on the wrapped store.
type failingSave struct{ *Store }

var errSaveFailed = errors.New("save failed")

func (f failingSave) SaveEmployee(context.Context, *payroll.Employee) error { return errSaveFailed }

func TestStore_FailedSaveLeavesMemberIndexUntouched(t *testing.T) {
	ctx := context.Background()

	// GIVEN: employee 1 registered as member 100
	st := newTestStore(t)
	run(t, payroll.NewAddHourlyEmployee(st, 1, "Bill", "Home", payroll.Money(15.25)))
	run(t, payroll.NewChangeMember(st, 1, 100, payroll.Money(5)))
	broken := failingSave{st}

	// WHEN: moving to member 200 fails at the save
	err := payroll.NewChangeMember(broken, 1, 200, payroll.Money(5)).Execute(ctx)
	require.ErrorIs(t, err, errSaveFailed)

	// THEN: the index still agrees with the stored employee
	m, err := st.GetUnionMember(ctx, 200)
	require.NoError(t, err)
	assert.Nil(t, m)
	m, err = st.GetUnionMember(ctx, 100)
	require.NoError(t, err)
	require.NotNil(t, m)
	ua, ok := m.UnionAffiliation()
	require.True(t, ok)
	assert.Equal(t, payroll.MemberID(100), ua.MemberID)

	// WHEN: leaving the union fails at the save
	err = payroll.NewChangeUnaffiliated(broken, 1).Execute(ctx)
	require.ErrorIs(t, err, errSaveFailed)

	// THEN: member 100 still resolves
	m, err = st.GetUnionMember(ctx, 100)
	require.NoError(t, err)
	assert.NotNil(t, m)
}

func TestStore_SaveEmployeeIndexesMembership(t *testing.T) {
	ctx := context.Background()

	// GIVEN: a member whose affiliation is set and saved without AddUnionMember
	st := newTestStore(t)
	run(t, payroll.NewAddHourlyEmployee(st, 1, "Bill", "Home", payroll.Money(15.25)))
	e, err := st.GetEmployee(ctx, 1)
	require.NoError(t, err)
	require.NoError(t, e.SetAffiliation(payroll.NewUnionAffiliation(300, payroll.Money(5))))

	// WHEN: the snapshot is saved
	require.NoError(t, st.SaveEmployee(ctx, e))

	// THEN: the member id resolves in the same commit
	m, err := st.GetUnionMember(ctx, 300)
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, payroll.EmployeeID(1), m.ID())

	// WHEN: the affiliation is cleared and saved
	require.NoError(t, e.SetAffiliation(nil))
	require.NoError(t, st.SaveEmployee(ctx, e))

	// THEN: the index row is gone
	var rows int
	require.NoError(t, st.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM union_members").Scan(&rows))
	assert.Zero(t, rows)
}

func TestStore_ChangeMemberToSameIDKeepsIndex(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	run(t, payroll.NewAddHourlyEmployee(st, 1, "Bill", "Home", payroll.Money(15.25)))
	run(t, payroll.NewChangeMember(st, 1, 100, payroll.Money(5)))

	run(t, payroll.NewChangeMember(st, 1, 100, payroll.Money(7)))

	m, err := st.GetUnionMember(ctx, 100)
	require.NoError(t, err)
	require.NotNil(t, m)
	ua, ok := m.UnionAffiliation()
	require.True(t, ok)
	assert.True(t, ua.Dues.Equal(payroll.Money(7)))
}
