package payroll_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/payroll-engine/payroll"
)

func date(s string) payroll.Date { return payroll.MustParseDate(s) }

// =============================================================================
// MONTHLY
// =============================================================================

func TestMonthly_IsPayDate_LastDayOfMonthOnly(t *testing.T) {
	s := payroll.MonthlySchedule{}

	tests := []struct {
		day  string
		want bool
	}{
		{"2001-11-30", true},
		{"2001-11-29", false},
		{"2001-12-31", true},
		{"2001-12-01", false},
		{"2001-02-28", true},
		{"2000-02-28", false},
		{"2000-02-29", true},
	}
	for _, tt := range tests {
		t.Run(tt.day, func(t *testing.T) {
			assert.Equal(t, tt.want, s.IsPayDate(date(tt.day)))
		})
	}
}

func TestMonthly_IsPayDate_EveryDayOfAYear(t *testing.T) {
	// GIVEN: every day of a leap year
	// THEN: exactly twelve pay dates, each the last day of its month
	s := payroll.MonthlySchedule{}
	p := payroll.Period{Start: date("2024-01-01"), End: date("2024-12-31")}

	var paydays []payroll.Date
	for _, d := range p.Days() {
		if s.IsPayDate(d) {
			paydays = append(paydays, d)
		}
	}

	require.Len(t, paydays, 12)
	for i, d := range paydays {
		assert.Equal(t, payroll.EndOfMonth(2024, time.Month(i+1)), d)
	}
}

func TestMonthly_PayPeriodStart_FirstOfSameMonth(t *testing.T) {
	s := payroll.MonthlySchedule{}

	tests := []struct {
		payDate string
		want    string
	}{
		{"2001-11-30", "2001-11-01"},
		{"2001-12-31", "2001-12-01"}, // year boundary
		{"2001-01-31", "2001-01-01"},
		{"2024-02-29", "2024-02-01"},
		{"2023-02-28", "2023-02-01"},
		{"2001-03-31", "2001-03-01"},
	}
	for _, tt := range tests {
		t.Run(tt.payDate, func(t *testing.T) {
			start := s.PayPeriodStartDate(date(tt.payDate))
			assert.Equal(t, date(tt.want), start)

			period := payroll.Period{Start: start, End: date(tt.payDate)}
			assert.GreaterOrEqual(t, period.Len(), 28)
			assert.LessOrEqual(t, period.Len(), 31)
		})
	}
}

func TestMonthly_PayPeriodStart_NonPayDates(t *testing.T) {
	// Off-schedule dates get the month ending on that date.
	s := payroll.MonthlySchedule{}

	assert.Equal(t, date("2001-10-16"), s.PayPeriodStartDate(date("2001-11-15")))
	assert.Equal(t, date("2001-12-16"), s.PayPeriodStartDate(date("2002-01-15")))
	// March 31 does not exist in February, clamp to March 1.
	assert.Equal(t, date("2001-03-01"), s.PayPeriodStartDate(date("2001-03-30")))
}

// =============================================================================
// WEEKLY
// =============================================================================

func TestWeekly_IsPayDate_FridaysOnly(t *testing.T) {
	s := payroll.WeeklySchedule{}
	p := payroll.Period{Start: date("2001-11-01"), End: date("2001-11-30")}

	for _, d := range p.Days() {
		assert.Equal(t, d.Weekday() == time.Friday, s.IsPayDate(d), d.String())
	}
}

func TestWeekly_PayPeriodStart_SaturdayBeforeFriday(t *testing.T) {
	// GIVEN: Friday 2001-11-09
	// THEN: period is Saturday 2001-11-03 through the Friday, 7 days
	s := payroll.WeeklySchedule{}
	payDate := date("2001-11-09")

	start := s.PayPeriodStartDate(payDate)

	assert.Equal(t, date("2001-11-03"), start)
	assert.Equal(t, time.Saturday, start.Weekday())
	assert.Equal(t, 7, payroll.Period{Start: start, End: payDate}.Len())
}

func TestWeekly_PayPeriods_AreContiguous(t *testing.T) {
	// Consecutive Fridays: next period starts the day after the previous pay date.
	s := payroll.WeeklySchedule{}
	first := date("2001-11-09")
	second := first.AddDays(7)

	assert.Equal(t, first.AddDays(1), s.PayPeriodStartDate(second))
}

// =============================================================================
// BIWEEKLY
// =============================================================================

func TestBiweekly_IsPayDate_EvenWeeksFromWorkStart(t *testing.T) {
	s := payroll.NewBiweeklySchedule(date("2022-04-04")) // Monday

	tests := []struct {
		day  string
		want bool
	}{
		{"2022-04-01", false}, // Friday before work start
		{"2022-04-08", false}, // week 1
		{"2022-04-15", true},  // week 2
		{"2022-04-18", false}, // Monday
		{"2022-04-22", false}, // week 3
		{"2022-04-29", true},  // week 4
		{"2022-05-13", true},  // week 6
	}
	for _, tt := range tests {
		t.Run(tt.day, func(t *testing.T) {
			assert.Equal(t, tt.want, s.IsPayDate(date(tt.day)))
		})
	}
}

func TestBiweekly_PayPeriodStart_FourteenDaysClampedToWorkStart(t *testing.T) {
	s := payroll.NewBiweeklySchedule(date("2022-04-04"))

	// First pay date: unclamped start 2022-04-02 precedes work start.
	assert.Equal(t, date("2022-04-04"), s.PayPeriodStartDate(date("2022-04-15")))

	start := s.PayPeriodStartDate(date("2022-05-13"))
	assert.Equal(t, date("2022-04-30"), start)
	assert.Equal(t, 14, payroll.Period{Start: start, End: date("2022-05-13")}.Len())
}

func TestBiweekly_WorkStartOnFriday(t *testing.T) {
	// Work start is itself a Friday: it is week 1, so not a pay date.
	s := payroll.NewBiweeklySchedule(date("2022-04-08"))

	assert.False(t, s.IsPayDate(date("2022-04-08")))
	assert.True(t, s.IsPayDate(date("2022-04-15")))
	assert.Equal(t, date("2022-04-08"), s.PayPeriodStartDate(date("2022-04-15")))
}

func TestSchedules_PeriodStartNeverAfterPayDate(t *testing.T) {
	schedules := []payroll.Schedule{
		payroll.MonthlySchedule{},
		payroll.WeeklySchedule{},
		payroll.NewBiweeklySchedule(date("2020-01-06")),
	}
	p := payroll.Period{Start: date("2020-01-01"), End: date("2021-12-31")}

	for _, s := range schedules {
		for _, d := range p.Days() {
			if s.IsPayDate(d) {
				assert.True(t, s.PayPeriodStartDate(d).BeforeOrEqual(d), "%s %s", s.Kind(), d)
			}
		}
	}
}
