package payroll

import (
	"sort"

	"github.com/shopspring/decimal"
)

// =============================================================================
// AFFILIATION - Union membership and its deductions
// =============================================================================

// Affiliation computes the deductions for a period. A nil Affiliation on an
// employee means no membership.
type Affiliation interface {
	CalculateDeductions(period Period) decimal.Decimal
}

var _ Affiliation = (*UnionAffiliation)(nil)

// UnionAffiliation charges Dues on every Friday of a period plus any service
// charges registered inside it.
type UnionAffiliation struct {
	MemberID       MemberID
	Dues           decimal.Decimal
	serviceCharges map[Date]ServiceCharge
}

func NewUnionAffiliation(memberID MemberID, dues decimal.Decimal) *UnionAffiliation {
	return &UnionAffiliation{
		MemberID:       memberID,
		Dues:           dues,
		serviceCharges: make(map[Date]ServiceCharge),
	}
}

// AddServiceCharge registers sc. A second charge for the same date is rejected.
func (a *UnionAffiliation) AddServiceCharge(sc ServiceCharge) error {
	if _, exists := a.serviceCharges[sc.Date]; exists {
		return &DuplicateDocumentError{Document: DocServiceCharge, Date: sc.Date}
	}
	a.serviceCharges[sc.Date] = sc
	return nil
}

func (a *UnionAffiliation) ServiceCharge(d Date) (ServiceCharge, bool) {
	sc, ok := a.serviceCharges[d]
	return sc, ok
}

// ServiceCharges returns all charges ordered by date.
func (a *UnionAffiliation) ServiceCharges() []ServiceCharge {
	charges := make([]ServiceCharge, 0, len(a.serviceCharges))
	for _, sc := range a.serviceCharges {
		charges = append(charges, sc)
	}
	sort.Slice(charges, func(i, j int) bool { return charges[i].Date.Before(charges[j].Date) })
	return charges
}

// CalculateDeductions enumerates the days of the period directly, so
// irregular period lengths get exactly one dues charge per Friday.
func (a *UnionAffiliation) CalculateDeductions(period Period) decimal.Decimal {
	total := decimal.Zero
	for _, d := range period.Days() {
		if d.IsFriday() {
			total = total.Add(a.Dues)
		}
		if sc, ok := a.serviceCharges[d]; ok {
			total = total.Add(sc.Amount)
		}
	}
	return total
}
