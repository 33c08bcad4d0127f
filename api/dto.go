/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the payroll domain model from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Complex response wrappers

TYPES:
  Employee:
    EmployeeDTO, ClassificationDTO, ScheduleDTO, MethodDTO, AffiliationDTO
    CreateEmployeeRequest, ChangeNameRequest, ChangeAddressRequest,
    ClassificationRequest, MethodRequest, AffiliationRequest

  Documents:
    TimeCardRequest, SalesReceiptRequest, ServiceChargeRequest, DocumentDTO

  Payday:
    PaydayRequest, PaydayResponse, PaycheckDTO

MONEY:
  Amounts are decimal.Decimal, encoded as JSON strings ("15.25") and
  accepted as strings or numbers.

VALIDATION:
  Validation is done by the payroll transactions, not in DTOs. DTOs are
  pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"github.com/shopspring/decimal"
	"github.com/warp/payroll-engine/payroll"
)

// =============================================================================
// EMPLOYEE
// =============================================================================

// EmployeeDTO represents an employee in API responses.
type EmployeeDTO struct {
	ID             int               `json:"id"`
	Name           string            `json:"name"`
	Address        string            `json:"address"`
	Classification ClassificationDTO `json:"classification"`
	Schedule       ScheduleDTO       `json:"schedule"`
	Method         MethodDTO         `json:"method"`
	Affiliation    *AffiliationDTO   `json:"affiliation,omitempty"`
}

type ClassificationDTO struct {
	Type           string           `json:"type"`
	Salary         *decimal.Decimal `json:"salary,omitempty"`
	HourlyRate     *decimal.Decimal `json:"hourly_rate,omitempty"`
	CommissionRate *decimal.Decimal `json:"commission_rate,omitempty"`
	TimeCards      []DocumentDTO    `json:"time_cards,omitempty"`
	SalesReceipts  []DocumentDTO    `json:"sales_receipts,omitempty"`
}

type ScheduleDTO struct {
	Type          string        `json:"type"`
	WorkStartDate *payroll.Date `json:"work_start_date,omitempty"`
}

type MethodDTO struct {
	Type    string `json:"type"`
	Bank    string `json:"bank,omitempty"`
	Account string `json:"account,omitempty"`
	Address string `json:"address,omitempty"`
}

type AffiliationDTO struct {
	MemberID       int             `json:"member_id"`
	Dues           decimal.Decimal `json:"dues"`
	ServiceCharges []DocumentDTO   `json:"service_charges,omitempty"`
}

// DocumentDTO is a dated amount: hours for time cards, money otherwise.
type DocumentDTO struct {
	Date   payroll.Date    `json:"date"`
	Amount decimal.Decimal `json:"amount"`
}

// CreateEmployeeRequest is the request to add an employee. The embedded
// classification picks the pay rules and the paired schedule.
type CreateEmployeeRequest struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Address string `json:"address"`
	ClassificationRequest
}

// ClassificationRequest selects a classification by type. Only the fields
// of the chosen type are read.
type ClassificationRequest struct {
	Type           string          `json:"type"`
	Salary         decimal.Decimal `json:"salary"`
	HourlyRate     decimal.Decimal `json:"hourly_rate"`
	CommissionRate decimal.Decimal `json:"commission_rate"`
	WorkStartDate  payroll.Date    `json:"work_start_date"`
}

type ChangeNameRequest struct {
	Name string `json:"name"`
}

type ChangeAddressRequest struct {
	Address string `json:"address"`
}

// MethodRequest selects a disbursement method: hold, direct or mail.
type MethodRequest struct {
	Type    string `json:"type"`
	Bank    string `json:"bank"`
	Account string `json:"account"`
	Address string `json:"address"`
}

type AffiliationRequest struct {
	MemberID int             `json:"member_id"`
	Dues     decimal.Decimal `json:"dues"`
}

// =============================================================================
// DOCUMENTS
// =============================================================================

type TimeCardRequest struct {
	Date  payroll.Date    `json:"date"`
	Hours decimal.Decimal `json:"hours"`
}

type SalesReceiptRequest struct {
	Date   payroll.Date    `json:"date"`
	Amount decimal.Decimal `json:"amount"`
}

type ServiceChargeRequest struct {
	Date   payroll.Date    `json:"date"`
	Amount decimal.Decimal `json:"amount"`
}

// =============================================================================
// PAYDAY
// =============================================================================

type PaydayRequest struct {
	Date payroll.Date `json:"date"`
}

type PaycheckDTO struct {
	EmployeeID  int             `json:"employee_id"`
	PayDate     payroll.Date    `json:"pay_date"`
	PeriodStart payroll.Date    `json:"period_start"`
	PeriodEnd   payroll.Date    `json:"period_end"`
	GrossPay    decimal.Decimal `json:"gross_pay"`
	Deductions  decimal.Decimal `json:"deductions"`
	NetPay      decimal.Decimal `json:"net_pay"`
	Disposition string          `json:"disposition"`
}

// PaydayResponse is the result of one pay run.
type PaydayResponse struct {
	RunID     string        `json:"run_id"`
	Date      payroll.Date  `json:"date"`
	Paychecks []PaycheckDTO `json:"paychecks"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// CONVERSIONS
// =============================================================================

func toEmployeeDTO(e *payroll.Employee) EmployeeDTO {
	dto := EmployeeDTO{
		ID:      int(e.ID()),
		Name:    e.Name,
		Address: e.Address,
	}

	switch c := e.Classification().(type) {
	case *payroll.SalariedClassification:
		dto.Classification = ClassificationDTO{Type: string(c.Kind()), Salary: ptr(c.Salary)}
	case *payroll.HourlyClassification:
		dto.Classification = ClassificationDTO{Type: string(c.Kind()), HourlyRate: ptr(c.HourlyRate)}
		for _, tc := range c.TimeCards() {
			dto.Classification.TimeCards = append(dto.Classification.TimeCards, DocumentDTO{Date: tc.Date, Amount: tc.Hours})
		}
	case *payroll.CommissionedClassification:
		dto.Classification = ClassificationDTO{Type: string(c.Kind()), Salary: ptr(c.Salary), CommissionRate: ptr(c.CommissionRate)}
		for _, r := range c.SalesReceipts() {
			dto.Classification.SalesReceipts = append(dto.Classification.SalesReceipts, DocumentDTO{Date: r.Date, Amount: r.Amount})
		}
	}

	if s := e.Schedule(); s != nil {
		dto.Schedule.Type = string(s.Kind())
		if bw, ok := s.(payroll.BiweeklySchedule); ok {
			start := bw.WorkStartDate
			dto.Schedule.WorkStartDate = &start
		}
	}

	switch m := e.Method().(type) {
	case payroll.HoldMethod:
		dto.Method = MethodDTO{Type: string(m.Kind())}
	case payroll.DirectMethod:
		dto.Method = MethodDTO{Type: string(m.Kind()), Bank: m.Bank, Account: m.Account}
	case payroll.MailMethod:
		dto.Method = MethodDTO{Type: string(m.Kind()), Address: m.Address}
	}

	if ua, ok := e.UnionAffiliation(); ok {
		aff := &AffiliationDTO{MemberID: int(ua.MemberID), Dues: ua.Dues}
		for _, sc := range ua.ServiceCharges() {
			aff.ServiceCharges = append(aff.ServiceCharges, DocumentDTO{Date: sc.Date, Amount: sc.Amount})
		}
		dto.Affiliation = aff
	}

	return dto
}

// ptr copies v so the DTO shares nothing with the stored employee.
func ptr[T any](v T) *T { return &v }

func toPaycheckDTO(pc *payroll.Paycheck) PaycheckDTO {
	return PaycheckDTO{
		EmployeeID:  int(pc.EmployeeID),
		PayDate:     pc.PayDate,
		PeriodStart: pc.Period.Start,
		PeriodEnd:   pc.Period.End,
		GrossPay:    pc.GrossPay,
		Deductions:  pc.Deductions,
		NetPay:      pc.NetPay,
		Disposition: string(pc.Disposition),
	}
}

func toPaydayResponse(tx *payroll.PaydayTransaction) PaydayResponse {
	resp := PaydayResponse{RunID: tx.RunID, Date: tx.Date, Paychecks: []PaycheckDTO{}}
	for _, pc := range tx.Paychecks() {
		resp.Paychecks = append(resp.Paychecks, toPaycheckDTO(pc))
	}
	return resp
}

// ScenarioDTO describes a demo data set and the date worth paying it on.
type ScenarioDTO struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	PayDate     payroll.Date `json:"pay_date"`
}
