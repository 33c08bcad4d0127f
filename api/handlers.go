/*
handlers.go - HTTP API handlers for the payroll engine

PURPOSE:
  Exposes the payroll transactions via REST API. Handles HTTP
  request/response, JSON serialization, and delegates to payroll
  transactions.

ENDPOINTS:
  Employees:
    GET    /api/employees                        List all employees
    POST   /api/employees                        Add employee
    GET    /api/employees/{id}                   Get employee details
    DELETE /api/employees/{id}                   Delete employee
    PUT    /api/employees/{id}/name              Change name
    PUT    /api/employees/{id}/address           Change address
    PUT    /api/employees/{id}/classification    Change classification
    PUT    /api/employees/{id}/method            Change payment method
    PUT    /api/employees/{id}/affiliation       Join union
    DELETE /api/employees/{id}/affiliation       Leave union

  Documents:
    POST   /api/employees/{id}/timecards         Post time card
    POST   /api/employees/{id}/salesreceipts     Post sales receipt
    POST   /api/members/{memberID}/servicecharges Post service charge

  Payday:
    POST   /api/payday                           Run payday for a date
    GET    /api/payday/last                      Most recent run

  Scenarios (scenarios.go):
    GET    /api/scenarios                        List demo data sets
    GET    /api/scenarios/current                Loaded data set
    POST   /api/scenarios/load                   Reset and load a data set

REQUEST FLOW:
  1. Parse HTTP request
  2. Build the matching payroll transaction
  3. Execute it under the handler lock
  4. Serialize response
  5. Handle errors

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Invalid input (bad JSON, negative amounts, unknown types)
  - 404: Employee or union member not found
  - 409: Duplicate employee, member id or document
  - 422: Document does not fit the employee's classification
  - 500: Internal errors

CONCURRENCY:
  Transactions and reads are serialized by Handler.mu, so a document
  posted during a pay run lands either before or after it.

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/warp/payroll-engine/payroll"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store   payroll.Store
	Workers int
	Logger  *slog.Logger

	mu              sync.Mutex
	lastRun         *payroll.PaydayTransaction
	currentScenario string
}

// NewHandler creates a new handler with the given store.
func NewHandler(store payroll.Store, logger *slog.Logger, workers int) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		Store:   store,
		Workers: workers,
		Logger:  logger,
	}
}

// execute runs tx under the handler lock and records its outcome.
func (h *Handler) execute(ctx context.Context, name string, tx payroll.Transaction) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.executeLocked(ctx, name, tx)
}

func (h *Handler) executeLocked(ctx context.Context, name string, tx payroll.Transaction) error {
	err := tx.Execute(ctx)

	outcome := outcomeOK
	switch {
	case err == nil:
	case payroll.IsClientError(err):
		outcome = outcomeClientError
		h.Logger.WarnContext(ctx, "transaction rejected",
			"transaction", name, "request_id", middleware.GetReqID(ctx), "error", err)
	default:
		outcome = outcomeServerError
		h.Logger.ErrorContext(ctx, "transaction failed",
			"transaction", name, "request_id", middleware.GetReqID(ctx), "error", err)
	}
	TransactionsTotal.WithLabelValues(name, outcome).Inc()
	return err
}

// RunPayday pays every employee whose pay date is date. Shared by the HTTP
// endpoint and the PaydayScheduler.
func (h *Handler) RunPayday(ctx context.Context, date payroll.Date) (*payroll.PaydayTransaction, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	tx := payroll.NewPayday(h.Store, date,
		payroll.WithWorkers(h.Workers),
		payroll.WithLogger(h.Logger),
	)

	start := time.Now()
	if err := h.executeLocked(ctx, "payday", tx); err != nil {
		return nil, err
	}
	PaydayDuration.Observe(time.Since(start).Seconds())
	PaychecksTotal.Add(float64(len(tx.Paychecks())))

	h.lastRun = tx
	return tx, nil
}

// LastRun returns the most recent successful pay run, or nil.
func (h *Handler) LastRun() *payroll.PaydayTransaction {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.lastRun
}

// employeeDTO loads one employee and converts it under the handler lock.
// The memory store hands out shared employees, so their document maps must
// not be read while another request writes them.
func (h *Handler) employeeDTO(ctx context.Context, id payroll.EmployeeID) (EmployeeDTO, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	e, err := h.Store.GetEmployee(ctx, id)
	if err != nil {
		return EmployeeDTO{}, err
	}
	if e == nil {
		return EmployeeDTO{}, &payroll.NotFoundError{Kind: "employee", ID: int(id)}
	}
	return toEmployeeDTO(e), nil
}

// =============================================================================
// EMPLOYEE HANDLERS
// =============================================================================

// ListEmployees returns all employees ordered by id.
// GET /api/employees
func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	h.mu.Lock()
	defer h.mu.Unlock()

	ids, err := h.Store.EmployeeIDs(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list employees", err)
		return
	}

	dtos := make([]EmployeeDTO, 0, len(ids))
	for _, id := range ids {
		e, err := h.Store.GetEmployee(ctx, id)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to load employee", err)
			return
		}
		if e != nil {
			dtos = append(dtos, toEmployeeDTO(e))
		}
	}

	writeJSON(w, http.StatusOK, dtos)
}

// GetEmployee returns a single employee with its documents.
// GET /api/employees/{id}
func (h *Handler) GetEmployee(w http.ResponseWriter, r *http.Request) {
	id, ok := employeeIDParam(w, r)
	if !ok {
		return
	}

	dto, err := h.employeeDTO(r.Context(), id)
	if err != nil {
		writeTxError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto)
}

// CreateEmployee adds a salaried, hourly or commissioned employee.
// POST /api/employees
func (h *Handler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	var req CreateEmployeeRequest
	if !decodeBody(w, r, &req) {
		return
	}

	pay, err := payClass(req.ClassificationRequest)
	if err != nil {
		writeTxError(w, err)
		return
	}

	id := payroll.EmployeeID(req.ID)
	tx := payroll.NewAddEmployee(h.Store, id, req.Name, req.Address, pay)
	if err := h.execute(r.Context(), "add_employee", tx); err != nil {
		writeTxError(w, err)
		return
	}

	h.respondEmployee(w, r, http.StatusCreated, id)
}

// DeleteEmployee removes an employee.
// DELETE /api/employees/{id}
func (h *Handler) DeleteEmployee(w http.ResponseWriter, r *http.Request) {
	id, ok := employeeIDParam(w, r)
	if !ok {
		return
	}

	if err := h.execute(r.Context(), "delete_employee", payroll.NewDeleteEmployee(h.Store, id)); err != nil {
		writeTxError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ChangeName renames an employee.
// PUT /api/employees/{id}/name
func (h *Handler) ChangeName(w http.ResponseWriter, r *http.Request) {
	id, ok := employeeIDParam(w, r)
	if !ok {
		return
	}
	var req ChangeNameRequest
	if !decodeBody(w, r, &req) {
		return
	}

	h.changeAndRespond(w, r, id, "change_name", payroll.NewChangeName(h.Store, id, req.Name))
}

// ChangeAddress moves an employee.
// PUT /api/employees/{id}/address
func (h *Handler) ChangeAddress(w http.ResponseWriter, r *http.Request) {
	id, ok := employeeIDParam(w, r)
	if !ok {
		return
	}
	var req ChangeAddressRequest
	if !decodeBody(w, r, &req) {
		return
	}

	h.changeAndRespond(w, r, id, "change_address", payroll.NewChangeAddress(h.Store, id, req.Address))
}

// ChangeClassification swaps pay rules and schedule. Documents of the old
// classification are dropped.
// PUT /api/employees/{id}/classification
func (h *Handler) ChangeClassification(w http.ResponseWriter, r *http.Request) {
	id, ok := employeeIDParam(w, r)
	if !ok {
		return
	}
	var req ClassificationRequest
	if !decodeBody(w, r, &req) {
		return
	}

	pay, err := payClass(req)
	if err != nil {
		writeTxError(w, err)
		return
	}

	h.changeAndRespond(w, r, id, "change_classification", payroll.NewChangeClassification(h.Store, id, pay))
}

// ChangeMethod sets how paychecks are disbursed.
// PUT /api/employees/{id}/method
func (h *Handler) ChangeMethod(w http.ResponseWriter, r *http.Request) {
	id, ok := employeeIDParam(w, r)
	if !ok {
		return
	}
	var req MethodRequest
	if !decodeBody(w, r, &req) {
		return
	}

	var tx payroll.Transaction
	switch payroll.MethodKind(strings.ToLower(req.Type)) {
	case payroll.MethodHold:
		tx = payroll.NewChangeHold(h.Store, id)
	case payroll.MethodDirect:
		tx = payroll.NewChangeDirect(h.Store, id, req.Bank, req.Account)
	case payroll.MethodMail:
		tx = payroll.NewChangeMail(h.Store, id, req.Address)
	default:
		writeTxError(w, fmt.Errorf("%w: unknown method type %q", payroll.ErrInvalidArgument, req.Type))
		return
	}

	h.changeAndRespond(w, r, id, "change_method", tx)
}

// ChangeAffiliation makes the employee a union member.
// PUT /api/employees/{id}/affiliation
func (h *Handler) ChangeAffiliation(w http.ResponseWriter, r *http.Request) {
	id, ok := employeeIDParam(w, r)
	if !ok {
		return
	}
	var req AffiliationRequest
	if !decodeBody(w, r, &req) {
		return
	}

	tx := payroll.NewChangeMember(h.Store, id, payroll.MemberID(req.MemberID), req.Dues)
	h.changeAndRespond(w, r, id, "change_member", tx)
}

// RemoveAffiliation ends the employee's union membership.
// DELETE /api/employees/{id}/affiliation
func (h *Handler) RemoveAffiliation(w http.ResponseWriter, r *http.Request) {
	id, ok := employeeIDParam(w, r)
	if !ok {
		return
	}

	h.changeAndRespond(w, r, id, "change_unaffiliated", payroll.NewChangeUnaffiliated(h.Store, id))
}

func (h *Handler) changeAndRespond(w http.ResponseWriter, r *http.Request, id payroll.EmployeeID, name string, tx payroll.Transaction) {
	if err := h.execute(r.Context(), name, tx); err != nil {
		writeTxError(w, err)
		return
	}
	h.respondEmployee(w, r, http.StatusOK, id)
}

func (h *Handler) respondEmployee(w http.ResponseWriter, r *http.Request, status int, id payroll.EmployeeID) {
	dto, err := h.employeeDTO(r.Context(), id)
	if err != nil {
		writeTxError(w, err)
		return
	}
	writeJSON(w, status, dto)
}

// =============================================================================
// DOCUMENT HANDLERS
// =============================================================================

// PostTimeCard records hours worked by an hourly employee.
// POST /api/employees/{id}/timecards
func (h *Handler) PostTimeCard(w http.ResponseWriter, r *http.Request) {
	id, ok := employeeIDParam(w, r)
	if !ok {
		return
	}
	var req TimeCardRequest
	if !decodeBody(w, r, &req) || !requireDate(w, req.Date) {
		return
	}

	if err := h.execute(r.Context(), "add_time_card", payroll.NewAddTimeCard(h.Store, id, req.Date, req.Hours)); err != nil {
		writeTxError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, DocumentDTO{Date: req.Date, Amount: req.Hours})
}

// PostSalesReceipt records a sale by a commissioned employee.
// POST /api/employees/{id}/salesreceipts
func (h *Handler) PostSalesReceipt(w http.ResponseWriter, r *http.Request) {
	id, ok := employeeIDParam(w, r)
	if !ok {
		return
	}
	var req SalesReceiptRequest
	if !decodeBody(w, r, &req) || !requireDate(w, req.Date) {
		return
	}

	if err := h.execute(r.Context(), "add_sales_receipt", payroll.NewAddSalesReceipt(h.Store, id, req.Date, req.Amount)); err != nil {
		writeTxError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, DocumentDTO{Date: req.Date, Amount: req.Amount})
}

// PostServiceCharge charges a union member, addressed by member id.
// POST /api/members/{memberID}/servicecharges
func (h *Handler) PostServiceCharge(w http.ResponseWriter, r *http.Request) {
	memberID, err := strconv.Atoi(chi.URLParam(r, "memberID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid member id", err)
		return
	}
	var req ServiceChargeRequest
	if !decodeBody(w, r, &req) || !requireDate(w, req.Date) {
		return
	}

	tx := payroll.NewAddServiceCharge(h.Store, payroll.MemberID(memberID), req.Date, req.Amount)
	if err := h.execute(r.Context(), "add_service_charge", tx); err != nil {
		writeTxError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, DocumentDTO{Date: req.Date, Amount: req.Amount})
}

// =============================================================================
// PAYDAY HANDLERS
// =============================================================================

// Payday runs payroll for the requested date.
// POST /api/payday
func (h *Handler) Payday(w http.ResponseWriter, r *http.Request) {
	var req PaydayRequest
	if !decodeBody(w, r, &req) || !requireDate(w, req.Date) {
		return
	}

	tx, err := h.RunPayday(r.Context(), req.Date)
	if err != nil {
		writeTxError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toPaydayResponse(tx))
}

// LastPayday returns the most recent pay run.
// GET /api/payday/last
func (h *Handler) LastPayday(w http.ResponseWriter, r *http.Request) {
	tx := h.LastRun()
	if tx == nil {
		writeError(w, http.StatusNotFound, "No payday has run yet", nil)
		return
	}
	writeJSON(w, http.StatusOK, toPaydayResponse(tx))
}

// =============================================================================
// HELPERS
// =============================================================================

// payClass maps a classification request onto the transaction parameter.
func payClass(req ClassificationRequest) (payroll.PayClass, error) {
	switch payroll.ClassificationKind(strings.ToLower(req.Type)) {
	case payroll.ClassSalaried:
		return payroll.SalariedPay(req.Salary), nil
	case payroll.ClassHourly:
		return payroll.HourlyPay(req.HourlyRate), nil
	case payroll.ClassCommissioned:
		return payroll.CommissionedPay(req.CommissionRate, req.Salary, req.WorkStartDate), nil
	}
	return payroll.PayClass{}, fmt.Errorf("%w: unknown classification type %q", payroll.ErrInvalidArgument, req.Type)
}

func employeeIDParam(w http.ResponseWriter, r *http.Request) (payroll.EmployeeID, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid employee id", err)
		return 0, false
	}
	return payroll.EmployeeID(id), true
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return false
	}
	return true
}

func requireDate(w http.ResponseWriter, d payroll.Date) bool {
	if d.IsZero() {
		writeError(w, http.StatusBadRequest, "Missing date (use YYYY-MM-DD)", nil)
		return false
	}
	return true
}

// statusFor maps payroll errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case payroll.IsNotFound(err):
		return http.StatusNotFound
	case payroll.IsConflict(err):
		return http.StatusConflict
	case errors.Is(err, payroll.ErrTypeMismatch):
		return http.StatusUnprocessableEntity
	case errors.Is(err, payroll.ErrInvalidArgument), errors.Is(err, payroll.ErrInvalidPeriod):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func writeTxError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	writeError(w, status, http.StatusText(status), err)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
