package payroll

import "time"

// =============================================================================
// PAYMENT SCHEDULE - Which dates are pay dates
// =============================================================================

type ScheduleKind string

const (
	ScheduleMonthly  ScheduleKind = "monthly"
	ScheduleWeekly   ScheduleKind = "weekly"
	ScheduleBiweekly ScheduleKind = "biweekly"
)

// Schedule decides pay dates and their period starts.
//
// PayPeriodStartDate is meaningful only when IsPayDate holds for the same
// date, but it is defined for every date.
type Schedule interface {
	IsPayDate(d Date) bool
	PayPeriodStartDate(payDate Date) Date
	Kind() ScheduleKind
}

// Compile-time checks
var (
	_ Schedule = MonthlySchedule{}
	_ Schedule = WeeklySchedule{}
	_ Schedule = BiweeklySchedule{}
)

// MonthlySchedule pays on the last calendar day of each month.
type MonthlySchedule struct{}

func (MonthlySchedule) Kind() ScheduleKind { return ScheduleMonthly }

func (MonthlySchedule) IsPayDate(d Date) bool { return d.IsLastOfMonth() }

// PayPeriodStartDate returns the day after payDate moved back one month.
// When that day does not exist in the previous month the period starts on
// the 1st of payDate's month. For a pay date this is always the 1st of the
// same month.
func (MonthlySchedule) PayPeriodStartDate(payDate Date) Date {
	next := payDate.AddDays(1)
	lastOfPrevMonth := payDate.FirstOfMonth().AddDays(-1)
	if lastOfPrevMonth.Day < next.Day {
		return payDate.FirstOfMonth()
	}
	if next.Month == time.January {
		return Date{Year: next.Year - 1, Month: time.December, Day: next.Day}
	}
	return Date{Year: payDate.Year, Month: next.Month - 1, Day: next.Day}
}

// WeeklySchedule pays every Friday for the seven days ending that Friday.
type WeeklySchedule struct{}

func (WeeklySchedule) Kind() ScheduleKind { return ScheduleWeekly }

func (WeeklySchedule) IsPayDate(d Date) bool { return d.IsFriday() }

func (WeeklySchedule) PayPeriodStartDate(payDate Date) Date { return payDate.AddDays(-6) }

// BiweeklySchedule pays every other Friday counted from WorkStartDate.
type BiweeklySchedule struct {
	WorkStartDate Date
}

func NewBiweeklySchedule(workStart Date) BiweeklySchedule {
	return BiweeklySchedule{WorkStartDate: workStart}
}

func (BiweeklySchedule) Kind() ScheduleKind { return ScheduleBiweekly }

// IsPayDate holds for Fridays on or after WorkStartDate whose week number is even.
func (s BiweeklySchedule) IsPayDate(d Date) bool {
	if d.Before(s.WorkStartDate) || !d.IsFriday() {
		return false
	}
	return s.week(d)%2 == 0
}

// PayPeriodStartDate is 13 days before payDate, never before WorkStartDate.
func (s BiweeklySchedule) PayPeriodStartDate(payDate Date) Date {
	start := payDate.AddDays(-13)
	if start.Before(s.WorkStartDate) {
		return s.WorkStartDate
	}
	return start
}

// week is the 1-indexed week number of d: ceil((d - start + 1) / 7).
func (s BiweeklySchedule) week(d Date) int {
	return (DaysBetween(s.WorkStartDate, d) + 7) / 7
}
