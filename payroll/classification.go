package payroll

import (
	"sort"

	"github.com/shopspring/decimal"
)

// =============================================================================
// PAYMENT CLASSIFICATION - How gross pay is computed
// =============================================================================

type ClassificationKind string

const (
	ClassSalaried     ClassificationKind = "salaried"
	ClassHourly       ClassificationKind = "hourly"
	ClassCommissioned ClassificationKind = "commissioned"
)

// Classification computes gross pay for a period from its own documents.
// A classification instance belongs to exactly one employee; replacing it
// drops its documents.
type Classification interface {
	CalculatePay(period Period) decimal.Decimal
	Kind() ClassificationKind
}

var (
	_ Classification = (*SalariedClassification)(nil)
	_ Classification = (*HourlyClassification)(nil)
	_ Classification = (*CommissionedClassification)(nil)
)

// -----------------------------------------------------------------------------
// Salaried
// -----------------------------------------------------------------------------

// SalariedClassification pays one salary per pay run regardless of period length.
type SalariedClassification struct {
	Salary decimal.Decimal
}

func NewSalariedClassification(salary decimal.Decimal) *SalariedClassification {
	return &SalariedClassification{Salary: salary}
}

func (c *SalariedClassification) Kind() ClassificationKind { return ClassSalaried }

func (c *SalariedClassification) CalculatePay(Period) decimal.Decimal { return c.Salary }

// -----------------------------------------------------------------------------
// Hourly
// -----------------------------------------------------------------------------

// HourlyClassification pays each time card in the period; hours above
// OvertimeThreshold on a single card are paid at OvertimeFactor.
type HourlyClassification struct {
	HourlyRate decimal.Decimal
	timeCards  map[Date]TimeCard
}

func NewHourlyClassification(rate decimal.Decimal) *HourlyClassification {
	return &HourlyClassification{HourlyRate: rate, timeCards: make(map[Date]TimeCard)}
}

func (c *HourlyClassification) Kind() ClassificationKind { return ClassHourly }

// AddTimeCard registers tc. A second card for the same date is rejected.
func (c *HourlyClassification) AddTimeCard(tc TimeCard) error {
	if _, exists := c.timeCards[tc.Date]; exists {
		return &DuplicateDocumentError{Document: DocTimeCard, Date: tc.Date}
	}
	c.timeCards[tc.Date] = tc
	return nil
}

func (c *HourlyClassification) TimeCard(d Date) (TimeCard, bool) {
	tc, ok := c.timeCards[d]
	return tc, ok
}

// TimeCards returns all cards ordered by date.
func (c *HourlyClassification) TimeCards() []TimeCard {
	cards := make([]TimeCard, 0, len(c.timeCards))
	for _, tc := range c.timeCards {
		cards = append(cards, tc)
	}
	sort.Slice(cards, func(i, j int) bool { return cards[i].Date.Before(cards[j].Date) })
	return cards
}

func (c *HourlyClassification) CalculatePay(period Period) decimal.Decimal {
	total := decimal.Zero
	for _, d := range period.Days() {
		if tc, ok := c.timeCards[d]; ok {
			total = total.Add(c.payFor(tc))
		}
	}
	return total
}

func (c *HourlyClassification) payFor(tc TimeCard) decimal.Decimal {
	overtime := decimal.Max(decimal.Zero, tc.Hours.Sub(OvertimeThreshold))
	normal := tc.Hours.Sub(overtime)
	return c.HourlyRate.Mul(normal).Add(c.HourlyRate.Mul(OvertimeFactor).Mul(overtime))
}

// -----------------------------------------------------------------------------
// Commissioned
// -----------------------------------------------------------------------------

// CommissionedClassification pays a flat salary plus CommissionRate of every
// sales receipt in the period.
type CommissionedClassification struct {
	CommissionRate decimal.Decimal
	Salary         decimal.Decimal
	salesReceipts  map[Date]SalesReceipt
}

func NewCommissionedClassification(commissionRate, salary decimal.Decimal) *CommissionedClassification {
	return &CommissionedClassification{
		CommissionRate: commissionRate,
		Salary:         salary,
		salesReceipts:  make(map[Date]SalesReceipt),
	}
}

func (c *CommissionedClassification) Kind() ClassificationKind { return ClassCommissioned }

// AddSalesReceipt registers r. A second receipt for the same date is rejected.
func (c *CommissionedClassification) AddSalesReceipt(r SalesReceipt) error {
	if _, exists := c.salesReceipts[r.Date]; exists {
		return &DuplicateDocumentError{Document: DocSalesReceipt, Date: r.Date}
	}
	c.salesReceipts[r.Date] = r
	return nil
}

func (c *CommissionedClassification) SalesReceipt(d Date) (SalesReceipt, bool) {
	r, ok := c.salesReceipts[d]
	return r, ok
}

// SalesReceipts returns all receipts ordered by date.
func (c *CommissionedClassification) SalesReceipts() []SalesReceipt {
	receipts := make([]SalesReceipt, 0, len(c.salesReceipts))
	for _, r := range c.salesReceipts {
		receipts = append(receipts, r)
	}
	sort.Slice(receipts, func(i, j int) bool { return receipts[i].Date.Before(receipts[j].Date) })
	return receipts
}

func (c *CommissionedClassification) CalculatePay(period Period) decimal.Decimal {
	total := c.Salary
	for _, d := range period.Days() {
		if r, ok := c.salesReceipts[d]; ok {
			total = total.Add(r.Amount.Mul(c.CommissionRate))
		}
	}
	return total
}
