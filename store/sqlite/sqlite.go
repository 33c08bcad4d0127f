/*
Package sqlite provides a SQLite-backed implementation of payroll.Store.

PURPOSE:
  Durable employee storage for the CLI and the HTTP server. Each employee is
  persisted as a snapshot: one employees row plus its documents. Reads
  rehydrate a fresh *payroll.Employee, so the store also implements
  payroll.EmployeeSaver and transactions write their changes back.

INTERFACES IMPLEMENTED:
  payroll.Store:         Employee and union-member lookup
  payroll.EmployeeSaver: Snapshot write-back after a mutation

KEY TABLES:
  employees:       Name, address, classification, schedule, method, affiliation
  time_cards:      Hourly documents, one per (employee, date)
  sales_receipts:  Commissioned documents, one per (employee, date)
  service_charges: Union documents, one per (employee, date)
  union_members:   Member id -> employee id index

SNAPSHOT WRITES:
  SaveEmployee upserts the employees row and replaces every document row of
  that employee inside one SQL transaction. Documents that no longer belong
  to the current classification or affiliation disappear with it.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety and a single pooled connection, which
  also keeps ":memory:" databases alive across calls.

USAGE:
  st, err := sqlite.New("./payroll.db")
  if err != nil {
      log.Fatal(err)
  }
  defer st.Close()

  err = payroll.NewAddSalariedEmployee(st, 1, "Bob", "Home", salary).Execute(ctx)

SEE ALSO:
  - payroll/store.go: Interface definitions
  - payroll/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
	"github.com/warp/payroll-engine/payroll"
)

// Store implements payroll.Store using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

var (
	_ payroll.Store         = (*Store)(nil)
	_ payroll.EmployeeSaver = (*Store)(nil)
)

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS employees (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		address TEXT NOT NULL,
		classification TEXT NOT NULL,
		salary TEXT,
		hourly_rate TEXT,
		commission_rate TEXT,
		schedule TEXT NOT NULL,
		work_start_date TEXT,
		method TEXT NOT NULL,
		bank TEXT,
		account TEXT,
		mail_address TEXT,
		member_id INTEGER,
		dues TEXT
	);

	CREATE TABLE IF NOT EXISTS time_cards (
		employee_id INTEGER NOT NULL REFERENCES employees(id) ON DELETE CASCADE,
		date TEXT NOT NULL,
		hours TEXT NOT NULL,
		PRIMARY KEY (employee_id, date)
	);

	CREATE TABLE IF NOT EXISTS sales_receipts (
		employee_id INTEGER NOT NULL REFERENCES employees(id) ON DELETE CASCADE,
		date TEXT NOT NULL,
		amount TEXT NOT NULL,
		PRIMARY KEY (employee_id, date)
	);

	CREATE TABLE IF NOT EXISTS service_charges (
		employee_id INTEGER NOT NULL REFERENCES employees(id) ON DELETE CASCADE,
		date TEXT NOT NULL,
		amount TEXT NOT NULL,
		PRIMARY KEY (employee_id, date)
	);

	-- The member index is rewritten with each employee snapshot and
	-- cleared by DeleteEmployee in the same commit.
	CREATE TABLE IF NOT EXISTS union_members (
		member_id INTEGER PRIMARY KEY,
		employee_id INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_union_members_employee
		ON union_members(employee_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// EMPLOYEES (payroll.Store interface)
// =============================================================================

// AddEmployee writes the full snapshot of e under id.
func (s *Store) AddEmployee(ctx context.Context, id payroll.EmployeeID, e *payroll.Employee) error {
	if e == nil {
		return fmt.Errorf("add employee %d: %w", id, payroll.ErrInvalidArgument)
	}
	if e.ID() != id {
		return fmt.Errorf("add employee %d: snapshot carries id %d: %w", id, e.ID(), payroll.ErrInvalidArgument)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeSnapshot(ctx, e)
}

// SaveEmployee writes back an employee previously returned by GetEmployee
// or GetUnionMember.
func (s *Store) SaveEmployee(ctx context.Context, e *payroll.Employee) error {
	if e == nil {
		return fmt.Errorf("save employee: %w", payroll.ErrInvalidArgument)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeSnapshot(ctx, e)
}

// GetEmployee rehydrates an employee. Returns nil, nil when absent.
func (s *Store) GetEmployee(ctx context.Context, id payroll.EmployeeID) (*payroll.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadEmployee(ctx, id)
}

// DeleteEmployee removes the employee and its documents. Unknown ids are a no-op.
func (s *Store) DeleteEmployee(ctx context.Context, id payroll.EmployeeID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	if _, err := sqlTx.ExecContext(ctx, "DELETE FROM union_members WHERE employee_id = ?", int(id)); err != nil {
		return fmt.Errorf("failed to delete union members of employee %d: %w", id, err)
	}
	if _, err := sqlTx.ExecContext(ctx, "DELETE FROM employees WHERE id = ?", int(id)); err != nil {
		return fmt.Errorf("failed to delete employee %d: %w", id, err)
	}
	return sqlTx.Commit()
}

// EmployeeIDs returns every stored id in ascending order.
func (s *Store) EmployeeIDs(ctx context.Context) ([]payroll.EmployeeID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, "SELECT id FROM employees ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	defer rows.Close()

	var ids []payroll.EmployeeID
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, payroll.EmployeeID(id))
	}
	return ids, rows.Err()
}

// =============================================================================
// UNION MEMBERS (payroll.Store interface)
// =============================================================================

// AddUnionMember points memberID at e. Re-adding an id moves it.
func (s *Store) AddUnionMember(ctx context.Context, memberID payroll.MemberID, e *payroll.Employee) error {
	if e == nil {
		return fmt.Errorf("add union member %d: %w", memberID, payroll.ErrInvalidArgument)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO union_members (member_id, employee_id)
		VALUES (?, ?)
		ON CONFLICT(member_id) DO UPDATE SET employee_id = excluded.employee_id
	`
	if _, err := s.db.ExecContext(ctx, query, int(memberID), int(e.ID())); err != nil {
		return fmt.Errorf("failed to add union member %d: %w", memberID, err)
	}
	return nil
}

// GetUnionMember rehydrates the employee registered under memberID.
// Returns nil, nil when the id is unregistered or its employee is gone.
func (s *Store) GetUnionMember(ctx context.Context, memberID payroll.MemberID) (*payroll.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var employeeID int
	err := s.db.QueryRowContext(ctx,
		"SELECT employee_id FROM union_members WHERE member_id = ?",
		int(memberID),
	).Scan(&employeeID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get union member %d: %w", memberID, err)
	}

	return s.loadEmployee(ctx, payroll.EmployeeID(employeeID))
}

func (s *Store) DeleteUnionMember(ctx context.Context, memberID payroll.MemberID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(ctx, "DELETE FROM union_members WHERE member_id = ?", int(memberID)); err != nil {
		return fmt.Errorf("failed to delete union member %d: %w", memberID, err)
	}
	return nil
}

// =============================================================================
// SNAPSHOT WRITE
// =============================================================================

// employeeRow is the flattened employees row of one snapshot.
type employeeRow struct {
	ID             int
	Name           string
	Address        string
	Classification string
	Salary         sql.NullString
	HourlyRate     sql.NullString
	CommissionRate sql.NullString
	Schedule       string
	WorkStartDate  sql.NullString
	Method         string
	Bank           sql.NullString
	Account        sql.NullString
	MailAddress    sql.NullString
	MemberID       sql.NullInt64
	Dues           sql.NullString
}

type documentRow struct {
	Date  string
	Value string
}

// snapshot is everything writeSnapshot persists for one employee.
type snapshot struct {
	row            employeeRow
	timeCards      []documentRow
	salesReceipts  []documentRow
	serviceCharges []documentRow
}

// flatten maps an employee onto its rows. Unknown variants are rejected
// so a snapshot always round-trips.
func flatten(e *payroll.Employee) (snapshot, error) {
	snap := snapshot{row: employeeRow{
		ID:      int(e.ID()),
		Name:    e.Name,
		Address: e.Address,
	}}

	switch c := e.Classification().(type) {
	case *payroll.SalariedClassification:
		snap.row.Classification = string(payroll.ClassSalaried)
		snap.row.Salary = decimalString(c.Salary)
	case *payroll.HourlyClassification:
		snap.row.Classification = string(payroll.ClassHourly)
		snap.row.HourlyRate = decimalString(c.HourlyRate)
		for _, tc := range c.TimeCards() {
			snap.timeCards = append(snap.timeCards, documentRow{tc.Date.String(), tc.Hours.String()})
		}
	case *payroll.CommissionedClassification:
		snap.row.Classification = string(payroll.ClassCommissioned)
		snap.row.Salary = decimalString(c.Salary)
		snap.row.CommissionRate = decimalString(c.CommissionRate)
		for _, r := range c.SalesReceipts() {
			snap.salesReceipts = append(snap.salesReceipts, documentRow{r.Date.String(), r.Amount.String()})
		}
	default:
		return snap, fmt.Errorf("employee %d: unsupported classification %T: %w", e.ID(), c, payroll.ErrInvalidArgument)
	}

	switch sc := e.Schedule().(type) {
	case payroll.MonthlySchedule:
		snap.row.Schedule = string(payroll.ScheduleMonthly)
	case payroll.WeeklySchedule:
		snap.row.Schedule = string(payroll.ScheduleWeekly)
	case payroll.BiweeklySchedule:
		snap.row.Schedule = string(payroll.ScheduleBiweekly)
		snap.row.WorkStartDate = nullString(sc.WorkStartDate.String())
	default:
		return snap, fmt.Errorf("employee %d: unsupported schedule %T: %w", e.ID(), sc, payroll.ErrInvalidArgument)
	}

	switch m := e.Method().(type) {
	case payroll.HoldMethod:
		snap.row.Method = string(payroll.MethodHold)
	case payroll.DirectMethod:
		snap.row.Method = string(payroll.MethodDirect)
		snap.row.Bank = nullString(m.Bank)
		snap.row.Account = nullString(m.Account)
	case payroll.MailMethod:
		snap.row.Method = string(payroll.MethodMail)
		snap.row.MailAddress = nullString(m.Address)
	default:
		return snap, fmt.Errorf("employee %d: unsupported method %T: %w", e.ID(), m, payroll.ErrInvalidArgument)
	}

	if e.Affiliation() != nil {
		ua, ok := e.UnionAffiliation()
		if !ok {
			return snap, fmt.Errorf("employee %d: unsupported affiliation %T: %w", e.ID(), e.Affiliation(), payroll.ErrInvalidArgument)
		}
		snap.row.MemberID = sql.NullInt64{Int64: int64(ua.MemberID), Valid: true}
		snap.row.Dues = decimalString(ua.Dues)
		for _, sc := range ua.ServiceCharges() {
			snap.serviceCharges = append(snap.serviceCharges, documentRow{sc.Date.String(), sc.Amount.String()})
		}
	}

	return snap, nil
}

// writeSnapshot must be called with s.mu held for writing.
func (s *Store) writeSnapshot(ctx context.Context, e *payroll.Employee) error {
	snap, err := flatten(e)
	if err != nil {
		return err
	}

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	r := snap.row
	query := `
		INSERT INTO employees
		(id, name, address, classification, salary, hourly_rate, commission_rate,
		 schedule, work_start_date, method, bank, account, mail_address, member_id, dues)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			address = excluded.address,
			classification = excluded.classification,
			salary = excluded.salary,
			hourly_rate = excluded.hourly_rate,
			commission_rate = excluded.commission_rate,
			schedule = excluded.schedule,
			work_start_date = excluded.work_start_date,
			method = excluded.method,
			bank = excluded.bank,
			account = excluded.account,
			mail_address = excluded.mail_address,
			member_id = excluded.member_id,
			dues = excluded.dues
	`
	if _, err := sqlTx.ExecContext(ctx, query,
		r.ID, r.Name, r.Address, r.Classification, r.Salary, r.HourlyRate, r.CommissionRate,
		r.Schedule, r.WorkStartDate, r.Method, r.Bank, r.Account, r.MailAddress, r.MemberID, r.Dues,
	); err != nil {
		return fmt.Errorf("failed to save employee %d: %w", r.ID, err)
	}

	// The member index follows employees.member_id in the same commit.
	if _, err := sqlTx.ExecContext(ctx, "DELETE FROM union_members WHERE employee_id = ?", r.ID); err != nil {
		return fmt.Errorf("failed to clear union members of employee %d: %w", r.ID, err)
	}
	if r.MemberID.Valid {
		if _, err := sqlTx.ExecContext(ctx, `
			INSERT INTO union_members (member_id, employee_id)
			VALUES (?, ?)
			ON CONFLICT(member_id) DO UPDATE SET employee_id = excluded.employee_id`,
			r.MemberID, r.ID,
		); err != nil {
			return fmt.Errorf("failed to index union member of employee %d: %w", r.ID, err)
		}
	}

	documents := []struct {
		table  string
		column string
		rows   []documentRow
	}{
		{"time_cards", "hours", snap.timeCards},
		{"sales_receipts", "amount", snap.salesReceipts},
		{"service_charges", "amount", snap.serviceCharges},
	}
	for _, doc := range documents {
		if _, err := sqlTx.ExecContext(ctx, "DELETE FROM "+doc.table+" WHERE employee_id = ?", r.ID); err != nil {
			return fmt.Errorf("failed to clear %s of employee %d: %w", doc.table, r.ID, err)
		}
		insert := "INSERT INTO " + doc.table + " (employee_id, date, " + doc.column + ") VALUES (?, ?, ?)"
		for _, d := range doc.rows {
			if _, err := sqlTx.ExecContext(ctx, insert, r.ID, d.Date, d.Value); err != nil {
				return fmt.Errorf("failed to save %s of employee %d: %w", doc.table, r.ID, err)
			}
		}
	}

	return sqlTx.Commit()
}

// =============================================================================
// SNAPSHOT READ
// =============================================================================

// loadEmployee must be called with s.mu held. Each query's rows are drained
// and closed before the next one runs on the single connection.
func (s *Store) loadEmployee(ctx context.Context, id payroll.EmployeeID) (*payroll.Employee, error) {
	var r employeeRow
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, address, classification, salary, hourly_rate, commission_rate,
		       schedule, work_start_date, method, bank, account, mail_address, member_id, dues
		FROM employees WHERE id = ?`,
		int(id),
	).Scan(
		&r.ID, &r.Name, &r.Address, &r.Classification, &r.Salary, &r.HourlyRate, &r.CommissionRate,
		&r.Schedule, &r.WorkStartDate, &r.Method, &r.Bank, &r.Account, &r.MailAddress, &r.MemberID, &r.Dues,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get employee %d: %w", id, err)
	}

	e := payroll.NewEmployee(payroll.EmployeeID(r.ID), r.Name, r.Address)
	if err := s.loadClassification(ctx, e, r); err != nil {
		return nil, err
	}
	if err := loadSchedule(e, r); err != nil {
		return nil, err
	}
	if err := loadMethod(e, r); err != nil {
		return nil, err
	}
	if err := s.loadAffiliation(ctx, e, r); err != nil {
		return nil, err
	}
	return e, nil
}

func (s *Store) loadClassification(ctx context.Context, e *payroll.Employee, r employeeRow) error {
	switch payroll.ClassificationKind(r.Classification) {
	case payroll.ClassSalaried:
		salary, err := parseDecimal(r.Salary)
		if err != nil {
			return corrupt(r.ID, "salary", err)
		}
		return e.SetClassification(payroll.NewSalariedClassification(salary))

	case payroll.ClassHourly:
		rate, err := parseDecimal(r.HourlyRate)
		if err != nil {
			return corrupt(r.ID, "hourly_rate", err)
		}
		c := payroll.NewHourlyClassification(rate)
		docs, err := s.queryDocuments(ctx, "SELECT date, hours FROM time_cards WHERE employee_id = ? ORDER BY date", r.ID)
		if err != nil {
			return err
		}
		for _, d := range docs {
			if err := c.AddTimeCard(payroll.TimeCard{Date: d.date, Hours: d.value}); err != nil {
				return err
			}
		}
		return e.SetClassification(c)

	case payroll.ClassCommissioned:
		salary, err := parseDecimal(r.Salary)
		if err != nil {
			return corrupt(r.ID, "salary", err)
		}
		rate, err := parseDecimal(r.CommissionRate)
		if err != nil {
			return corrupt(r.ID, "commission_rate", err)
		}
		c := payroll.NewCommissionedClassification(rate, salary)
		docs, err := s.queryDocuments(ctx, "SELECT date, amount FROM sales_receipts WHERE employee_id = ? ORDER BY date", r.ID)
		if err != nil {
			return err
		}
		for _, d := range docs {
			if err := c.AddSalesReceipt(payroll.SalesReceipt{Date: d.date, Amount: d.value}); err != nil {
				return err
			}
		}
		return e.SetClassification(c)
	}
	return corrupt(r.ID, "classification", fmt.Errorf("unknown kind %q", r.Classification))
}

func loadSchedule(e *payroll.Employee, r employeeRow) error {
	switch payroll.ScheduleKind(r.Schedule) {
	case payroll.ScheduleMonthly:
		return e.SetSchedule(payroll.MonthlySchedule{})
	case payroll.ScheduleWeekly:
		return e.SetSchedule(payroll.WeeklySchedule{})
	case payroll.ScheduleBiweekly:
		start, err := payroll.ParseDate(r.WorkStartDate.String)
		if err != nil {
			return corrupt(r.ID, "work_start_date", err)
		}
		return e.SetSchedule(payroll.NewBiweeklySchedule(start))
	}
	return corrupt(r.ID, "schedule", fmt.Errorf("unknown kind %q", r.Schedule))
}

func loadMethod(e *payroll.Employee, r employeeRow) error {
	switch payroll.MethodKind(r.Method) {
	case payroll.MethodHold:
		return e.SetMethod(payroll.HoldMethod{})
	case payroll.MethodDirect:
		return e.SetMethod(payroll.DirectMethod{Bank: r.Bank.String, Account: r.Account.String})
	case payroll.MethodMail:
		return e.SetMethod(payroll.MailMethod{Address: r.MailAddress.String})
	}
	return corrupt(r.ID, "method", fmt.Errorf("unknown kind %q", r.Method))
}

func (s *Store) loadAffiliation(ctx context.Context, e *payroll.Employee, r employeeRow) error {
	if !r.MemberID.Valid {
		return nil
	}
	dues, err := parseDecimal(r.Dues)
	if err != nil {
		return corrupt(r.ID, "dues", err)
	}
	ua := payroll.NewUnionAffiliation(payroll.MemberID(r.MemberID.Int64), dues)
	docs, err := s.queryDocuments(ctx, "SELECT date, amount FROM service_charges WHERE employee_id = ? ORDER BY date", r.ID)
	if err != nil {
		return err
	}
	for _, d := range docs {
		if err := ua.AddServiceCharge(payroll.ServiceCharge{Date: d.date, Amount: d.value}); err != nil {
			return err
		}
	}
	return e.SetAffiliation(ua)
}

type document struct {
	date  payroll.Date
	value decimal.Decimal
}

func (s *Store) queryDocuments(ctx context.Context, query string, employeeID int) ([]document, error) {
	rows, err := s.db.QueryContext(ctx, query, employeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to query documents: %w", err)
	}
	defer rows.Close()

	var docs []document
	for rows.Next() {
		var day, value string
		if err := rows.Scan(&day, &value); err != nil {
			return nil, err
		}
		d, err := payroll.ParseDate(day)
		if err != nil {
			return nil, corrupt(employeeID, "document date", err)
		}
		v, err := decimal.NewFromString(value)
		if err != nil {
			return nil, corrupt(employeeID, "document value", err)
		}
		docs = append(docs, document{date: d, value: v})
	}
	return docs, rows.Err()
}

// =============================================================================
// UTILITIES
// =============================================================================

// Reset clears all data (for testing/demo).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tables := []string{"time_cards", "sales_receipts", "service_charges", "union_members", "employees"}
	for _, table := range tables {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return nil
}

// Helper functions

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func decimalString(d decimal.Decimal) sql.NullString {
	return sql.NullString{String: d.String(), Valid: true}
}

func parseDecimal(ns sql.NullString) (decimal.Decimal, error) {
	if !ns.Valid || strings.TrimSpace(ns.String) == "" {
		return decimal.Zero, errors.New("missing value")
	}
	return decimal.NewFromString(ns.String)
}

func corrupt(employeeID int, column string, err error) error {
	return fmt.Errorf("employee %d: corrupt %s: %w", employeeID, column, err)
}
