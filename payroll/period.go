package payroll

// =============================================================================
// PERIOD - The range a paycheck is computed for
// =============================================================================

// Period is an inclusive date range [Start, End]. For a paycheck, End is
// always the pay date.
type Period struct {
	Start Date
	End   Date
}

// Validate rejects periods whose end precedes their start.
func (p Period) Validate() error {
	if p.End.Before(p.Start) {
		return ErrInvalidPeriod
	}
	return nil
}

// Contains returns true if d is within [Start, End].
func (p Period) Contains(d Date) bool {
	return d.AfterOrEqual(p.Start) && d.BeforeOrEqual(p.End)
}

// Days returns every day of the period in order.
func (p Period) Days() []Date {
	var days []Date
	for current := p.Start; current.BeforeOrEqual(p.End); current = current.AddDays(1) {
		days = append(days, current)
	}
	return days
}

// Len is the number of days in the period, 0 for an inverted one.
func (p Period) Len() int {
	if p.End.Before(p.Start) {
		return 0
	}
	return DaysBetween(p.Start, p.End) + 1
}

// Fridays counts the Fridays in the period.
func (p Period) Fridays() int {
	n := 0
	for _, d := range p.Days() {
		if d.IsFriday() {
			n++
		}
	}
	return n
}

func (p Period) String() string {
	return "[" + p.Start.String() + ", " + p.End.String() + "]"
}
