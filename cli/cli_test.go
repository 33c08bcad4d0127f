package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/payroll-engine/payroll"
	"github.com/warp/payroll-engine/store/sqlite"
)

// runCLI executes one command line against db and returns stdout.
func runCLI(t *testing.T, db string, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--db", db}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func mustRun(t *testing.T, db string, args ...string) string {
	t.Helper()
	out, err := runCLI(t, db, args...)
	require.NoError(t, err, "payroll %v", args)
	return out
}

func tempDB(t *testing.T) string {
	return filepath.Join(t.TempDir(), "payroll.db")
}

func openStore(t *testing.T, db string) *sqlite.Store {
	t.Helper()
	st, err := sqlite.New(db)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func TestCLI_AddEmployees_PersistAcrossInvocations(t *testing.T) {
	db := tempDB(t)

	out := mustRun(t, db, "add", "salaried", "1", "Bob", "Home", "1000")
	assert.Contains(t, out, "added salaried employee 1")
	mustRun(t, db, "add", "hourly", "2", "Bill", "Home", "15.25")
	mustRun(t, db, "add", "commissioned", "3", "Lance", "Home", "500", "0.2", "--start", "2022-04-04")

	st := openStore(t, db)
	ctx := context.Background()

	ids, err := st.EmployeeIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []payroll.EmployeeID{1, 2, 3}, ids)

	e, err := st.GetEmployee(ctx, 3)
	require.NoError(t, err)
	require.NotNil(t, e)
	assert.Equal(t, payroll.ClassCommissioned, e.Classification().Kind())
	assert.Equal(t, payroll.ScheduleBiweekly, e.Schedule().Kind())
}

func TestCLI_List(t *testing.T) {
	db := tempDB(t)
	mustRun(t, db, "add", "salaried", "1", "Bob", "Home", "1000")
	mustRun(t, db, "member", "1", "7734", "9.42")

	out := mustRun(t, db, "list")
	assert.Contains(t, out, "CLASSIFICATION")
	assert.Contains(t, out, "Bob")
	assert.Contains(t, out, "7734")
}

func TestCLI_Payday_HourlyUnionMember(t *testing.T) {
	// GIVEN: an hourly union member with one card and one service charge
	db := tempDB(t)
	mustRun(t, db, "add", "hourly", "1", "Bill", "Home", "15.24")
	mustRun(t, db, "member", "1", "7734", "9.42")
	mustRun(t, db, "timecard", "1", "2001-11-30", "8")
	mustRun(t, db, "charge", "7734", "2001-11-30", "19.42")

	// WHEN: payday runs on the Friday
	out := mustRun(t, db, "payday", "--date", "2001-11-30", "--workers", "2")

	// THEN: one paycheck with dues and charge deducted
	assert.Contains(t, out, "pay date 2001-11-30")
	assert.Contains(t, out, "2001-11-24")
	assert.Contains(t, out, "121.92")
	assert.Contains(t, out, "28.84")
	assert.Contains(t, out, "93.08")
	assert.Contains(t, out, "Hold")
	assert.Contains(t, out, "1 paychecks")
}

func TestCLI_Payday_NobodyDue(t *testing.T) {
	db := tempDB(t)
	mustRun(t, db, "add", "salaried", "1", "Bob", "Home", "1000")

	out := mustRun(t, db, "payday", "--date", "2001-11-29")
	assert.Contains(t, out, "0 paychecks")
}

func TestCLI_ChangeCommands(t *testing.T) {
	db := tempDB(t)
	mustRun(t, db, "add", "hourly", "1", "Bill", "Home", "15.25")
	mustRun(t, db, "timecard", "1", "2001-11-09", "8")

	mustRun(t, db, "name", "1", "William")
	mustRun(t, db, "address", "1", "Office")
	mustRun(t, db, "method", "direct", "1", "First Bank", "12345")
	mustRun(t, db, "classify", "salaried", "1", "2000")

	st := openStore(t, db)
	e, err := st.GetEmployee(context.Background(), 1)
	require.NoError(t, err)
	require.NotNil(t, e)
	assert.Equal(t, "William", e.Name)
	assert.Equal(t, "Office", e.Address)
	assert.Equal(t, payroll.MethodDirect, e.Method().Kind())
	assert.Equal(t, payroll.ClassSalaried, e.Classification().Kind())
	assert.Equal(t, payroll.ScheduleMonthly, e.Schedule().Kind())
}

func TestCLI_MemberThenUnaffiliate(t *testing.T) {
	db := tempDB(t)
	mustRun(t, db, "add", "salaried", "1", "Bob", "Home", "1000")
	mustRun(t, db, "member", "1", "7734", "9.42")
	mustRun(t, db, "unaffiliate", "1")

	_, err := runCLI(t, db, "charge", "7734", "2001-11-30", "10")
	assert.True(t, payroll.IsNotFound(err), "got %v", err)
}

func TestCLI_Delete(t *testing.T) {
	db := tempDB(t)
	mustRun(t, db, "add", "salaried", "1", "Bob", "Home", "1000")

	out := mustRun(t, db, "delete", "1")
	assert.Contains(t, out, "deleted employee 1")

	_, err := runCLI(t, db, "delete", "1")
	assert.True(t, payroll.IsNotFound(err), "got %v", err)
}

func TestCLI_Errors(t *testing.T) {
	db := tempDB(t)
	mustRun(t, db, "add", "salaried", "1", "Bob", "Home", "1000")

	tests := []struct {
		name string
		args []string
	}{
		{"bad id", []string{"delete", "one"}},
		{"bad amount", []string{"add", "salaried", "2", "A", "B", "lots"}},
		{"bad date", []string{"timecard", "1", "30/11/2001", "8"}},
		{"duplicate id", []string{"add", "salaried", "1", "A", "B", "10"}},
		{"time card for salaried", []string{"timecard", "1", "2001-11-30", "8"}},
		{"wrong arg count", []string{"name", "1"}},
		{"missing start", []string{"add", "commissioned", "3", "A", "B", "500", "0.2"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runCLI(t, db, tt.args...)
			assert.Error(t, err)
		})
	}
}
