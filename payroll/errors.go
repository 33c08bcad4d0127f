/*
errors.go - Centralized error types for the payroll engine

ERROR CATEGORIES:
  1. Lookup errors     - employee or union member absent (NotFound)
  2. Document errors   - a document already exists for that date (DuplicateDocument)
  3. Type errors       - document kind does not match classification/affiliation
  4. Argument errors   - invalid values handed to constructors or setters
  5. Conflict errors   - identifier already taken

All errors are immediate and local. Nothing is retried and no partial
mutation happens before a check fails.

USAGE:
  if errors.Is(err, payroll.ErrNotFound) { ... }

  var dup *payroll.DuplicateDocumentError
  if errors.As(err, &dup) {
      log.Printf("%s already recorded for %s", dup.Document, dup.Date)
  }
*/
package payroll

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrNotFound is returned when an employee id or union member id is absent.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateDocument is returned when a time card, sales receipt or
	// service charge already exists for the same date on the same container.
	ErrDuplicateDocument = errors.New("duplicate document")

	// ErrTypeMismatch is returned when a document targets an employee whose
	// classification (or affiliation) is of another kind.
	ErrTypeMismatch = errors.New("type mismatch")

	// ErrInvalidArgument is returned for construction-time validation failures.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrDuplicateEmployee is returned when adding an employee under a taken id.
	ErrDuplicateEmployee = errors.New("employee already exists")

	// ErrDuplicateMember is returned when a member id already belongs to
	// another employee.
	ErrDuplicateMember = errors.New("union member id already in use")

	// ErrInvalidPeriod is returned when a period ends before it starts.
	ErrInvalidPeriod = errors.New("invalid period: end before start")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// NotFoundError names what was looked up.
type NotFoundError struct {
	Kind string // "employee" or "union member"
	ID   int
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Kind, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// DuplicateDocumentError reports the rejected document. The existing one is
// left untouched.
type DuplicateDocumentError struct {
	Document DocumentKind
	Date     Date
}

func (e *DuplicateDocumentError) Error() string {
	return fmt.Sprintf("%s for %s already exists", e.Document, e.Date)
}

func (e *DuplicateDocumentError) Unwrap() error { return ErrDuplicateDocument }

// TypeMismatchError reports a document aimed at the wrong kind of employee.
type TypeMismatchError struct {
	EmployeeID EmployeeID
	Document   DocumentKind
	Want       string
	Got        string
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("cannot add %s to employee %d: want %s, got %s",
		e.Document, e.EmployeeID, e.Want, e.Got)
}

func (e *TypeMismatchError) Unwrap() error { return ErrTypeMismatch }

func employeeNotFound(id EmployeeID) error {
	return &NotFoundError{Kind: "employee", ID: int(id)}
}

func memberNotFound(id MemberID) error {
	return &NotFoundError{Kind: "union member", ID: int(id)}
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsNotFound returns true if the error indicates a missing employee or member.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsConflict returns true if the error is a uniqueness violation.
func IsConflict(err error) bool {
	return errors.Is(err, ErrDuplicateDocument) ||
		errors.Is(err, ErrDuplicateEmployee) ||
		errors.Is(err, ErrDuplicateMember)
}

// IsClientError returns true if the error is due to invalid caller input.
func IsClientError(err error) bool {
	return IsNotFound(err) ||
		IsConflict(err) ||
		errors.Is(err, ErrTypeMismatch) ||
		errors.Is(err, ErrInvalidArgument) ||
		errors.Is(err, ErrInvalidPeriod)
}
