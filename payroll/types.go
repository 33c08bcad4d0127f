/*
Package payroll provides the transaction-driven payroll computation engine.

PURPOSE:
  Tracks employees with their pay classification, pay-date schedule,
  disbursement method and optional union affiliation, and runs discrete
  transactions that create, modify and pay them.

KEY CONCEPTS:
  - Classification: how gross pay is computed (salaried, hourly, commissioned)
  - Schedule:       which dates are pay dates and where their period starts
  - Method:         what happens to a computed paycheck (hold, direct, mail)
  - Affiliation:    union dues and service charges, deducted per period
  - Transaction:    a single-shot command executed against a Store

DESIGN PRINCIPLES:
  1. Precision: money, hours and rates are decimal.Decimal
  2. Dates, not instants: everything is keyed by calendar Date
  3. Flat commands: one struct per transaction, shared fetch-or-fail helpers
  4. Distinguishable failures: see errors.go

USAGE:
  st := store.NewMemory()
  add := payroll.NewAddSalariedEmployee(st, 1, "Bob", "Home", decimal.NewFromInt(1000))
  if err := add.Execute(ctx); err != nil { ... }

  run := payroll.NewPayday(st, payroll.NewDate(2001, time.November, 30))
  if err := run.Execute(ctx); err != nil { ... }
  pc, ok := run.Paycheck(1)

SEE ALSO:
  - schedule.go: pay date rules
  - classification.go: gross pay rules
  - transaction.go, change.go, payday.go: the command layer
*/
package payroll

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type EmployeeID int
type MemberID int

// =============================================================================
// MONEY
// =============================================================================

var (
	// OvertimeThreshold is the number of hours per time card paid at the base rate.
	OvertimeThreshold = decimal.NewFromInt(8)

	// OvertimeFactor multiplies the hourly rate for hours above the threshold.
	OvertimeFactor = decimal.NewFromFloat(1.5)
)

// Money builds a decimal from a float literal.
func Money(v float64) decimal.Decimal { return decimal.NewFromFloat(v) }

// =============================================================================
// DOCUMENTS - Immutable dated facts
// =============================================================================

type DocumentKind string

const (
	DocTimeCard      DocumentKind = "time card"
	DocSalesReceipt  DocumentKind = "sales receipt"
	DocServiceCharge DocumentKind = "service charge"
)

type TimeCard struct {
	Date  Date
	Hours decimal.Decimal
}

type SalesReceipt struct {
	Date   Date
	Amount decimal.Decimal
}

type ServiceCharge struct {
	Date   Date
	Amount decimal.Decimal
}

// =============================================================================
// PAYCHECK - Result of one employee's pay run
// =============================================================================

type Disposition string

const (
	DispositionNone   Disposition = ""
	DispositionHold   Disposition = "Hold"
	DispositionDirect Disposition = "Direct"
	DispositionMail   Disposition = "Mail"
)

// Paycheck is created once per matching employee per payday run and never
// reused across runs.
type Paycheck struct {
	RunID       string
	EmployeeID  EmployeeID
	PayDate     Date
	Period      Period
	GrossPay    decimal.Decimal
	Deductions  decimal.Decimal
	NetPay      decimal.Decimal
	Disposition Disposition
}

// NewPaycheck builds an unsettled paycheck for [periodStart, payDate].
func NewPaycheck(payDate, periodStart Date) *Paycheck {
	return &Paycheck{
		PayDate: payDate,
		Period:  Period{Start: periodStart, End: payDate},
	}
}
