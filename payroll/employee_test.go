package payroll_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/payroll-engine/payroll"
)

func TestEmployee_Setters_RejectNil(t *testing.T) {
	e := payroll.NewEmployee(1, "Bob", "Home")

	assert.ErrorIs(t, e.SetClassification(nil), payroll.ErrInvalidArgument)
	assert.ErrorIs(t, e.SetClassification((*payroll.HourlyClassification)(nil)), payroll.ErrInvalidArgument)
	assert.ErrorIs(t, e.SetSchedule(nil), payroll.ErrInvalidArgument)
	assert.ErrorIs(t, e.SetMethod(nil), payroll.ErrInvalidArgument)
	assert.ErrorIs(t, e.SetAffiliation((*payroll.UnionAffiliation)(nil)), payroll.ErrInvalidArgument)

	assert.NoError(t, e.SetAffiliation(nil), "nil clears the membership")
	assert.Nil(t, e.Classification())
}

func TestEmployee_Payday_WritesGrossDeductionsNetAndDisposition(t *testing.T) {
	e := payroll.NewEmployee(7, "Bill", "Home")
	require.NoError(t, e.SetClassification(payroll.NewSalariedClassification(payroll.Money(1000))))
	require.NoError(t, e.SetSchedule(payroll.MonthlySchedule{}))
	require.NoError(t, e.SetMethod(payroll.HoldMethod{}))
	require.NoError(t, e.SetAffiliation(payroll.NewUnionAffiliation(1, payroll.Money(9.42))))

	payDate := date("2001-11-30")
	require.True(t, e.IsPayDate(payDate))
	pc := payroll.NewPaycheck(payDate, e.PayPeriodStartDate(payDate))

	e.Payday(pc)

	assert.Equal(t, payroll.EmployeeID(7), pc.EmployeeID)
	assertMoney(t, "1000", pc.GrossPay)
	assertMoney(t, "47.10", pc.Deductions)
	assertMoney(t, "952.90", pc.NetPay)
	assert.Equal(t, payroll.DispositionHold, pc.Disposition)
}

func TestEmployee_Payday_DirectAndMailReportTheirDisposition(t *testing.T) {
	tests := []struct {
		method payroll.Method
		want   payroll.Disposition
	}{
		{payroll.DirectMethod{Bank: "Bank", Account: "1234"}, payroll.DispositionDirect},
		{payroll.MailMethod{Address: "Home"}, payroll.DispositionMail},
	}
	for _, tt := range tests {
		t.Run(string(tt.method.Kind()), func(t *testing.T) {
			e := payroll.NewEmployee(1, "Bob", "Home")
			require.NoError(t, e.SetClassification(payroll.NewSalariedClassification(payroll.Money(10))))
			require.NoError(t, e.SetSchedule(payroll.MonthlySchedule{}))
			require.NoError(t, e.SetMethod(tt.method))

			pc := payroll.NewPaycheck(date("2001-11-30"), date("2001-11-01"))
			e.Payday(pc)

			assert.Equal(t, tt.want, pc.Disposition)
			assertMoney(t, "10", pc.NetPay)
		})
	}
}

func TestPaycheck_PeriodEndsOnPayDate(t *testing.T) {
	pc := payroll.NewPaycheck(date("2001-11-09"), date("2001-11-03"))

	assert.Equal(t, pc.PayDate, pc.Period.End)
	assert.NoError(t, pc.Period.Validate())
	assert.ErrorIs(t, payroll.Period{Start: date("2001-11-10"), End: date("2001-11-09")}.Validate(), payroll.ErrInvalidPeriod)
}

func TestDate_ParseAndText(t *testing.T) {
	d, err := payroll.ParseDate("2001-11-30")
	require.NoError(t, err)
	assert.Equal(t, payroll.NewDate(2001, 11, 30), d)
	assert.Equal(t, "2001-11-30", d.String())

	var back payroll.Date
	require.NoError(t, back.UnmarshalText([]byte("2024-02-29")))
	assert.True(t, back.IsLastOfMonth())

	_, err = payroll.ParseDate("2001-13-01")
	assert.ErrorIs(t, err, payroll.ErrInvalidArgument)

	assert.Equal(t, payroll.NewDate(2001, 12, 1), payroll.NewDate(2001, 11, 31), "normalized like time.Date")
}
