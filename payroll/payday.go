/*
payday.go - The batch pay run

ALGORITHM:
  For every employee id in the store (read once):
    1. Fetch the employee
    2. Skip unless the date is its pay date
    3. Build a Paycheck for [PayPeriodStartDate(date), date]
    4. employee.Payday(paycheck) computes gross, deductions, net, disposition
    5. Record the paycheck under the employee id

CONCURRENCY:
  Employees have no data dependency on each other, so step 1-5 may fan out
  across workers (WithWorkers). Each paycheck is written by one worker and
  the result map is guarded. Document registration must not run
  concurrently with a pay run; callers serialize the two.
*/
package payroll

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

var _ Transaction = (*PaydayTransaction)(nil)

// PaydayTransaction pays every employee whose schedule matches Date.
type PaydayTransaction struct {
	store   Store
	Date    Date
	RunID   string
	workers int
	logger  *slog.Logger

	mu        sync.Mutex
	paychecks map[EmployeeID]*Paycheck
}

type PaydayOption func(*PaydayTransaction)

// WithWorkers bounds the fan-out. n <= 1 pays employees one at a time.
func WithWorkers(n int) PaydayOption {
	return func(t *PaydayTransaction) { t.workers = n }
}

func WithLogger(l *slog.Logger) PaydayOption {
	return func(t *PaydayTransaction) { t.logger = l }
}

func NewPayday(s Store, date Date, opts ...PaydayOption) *PaydayTransaction {
	t := &PaydayTransaction{
		store:     s,
		Date:      date,
		RunID:     uuid.NewString(),
		workers:   1,
		logger:    slog.Default(),
		paychecks: make(map[EmployeeID]*Paycheck),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *PaydayTransaction) Execute(ctx context.Context) error {
	ids, err := t.store.EmployeeIDs(ctx)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(t.workers, 1))
	for _, id := range ids {
		id := id
		g.Go(func() error { return t.pay(gctx, id) })
	}
	if err := g.Wait(); err != nil {
		return err
	}

	t.logger.InfoContext(ctx, "payday complete",
		"run_id", t.RunID,
		"date", t.Date.String(),
		"employees", len(ids),
		"paid", len(t.paychecks),
	)
	return nil
}

func (t *PaydayTransaction) pay(ctx context.Context, id EmployeeID) error {
	e, err := t.store.GetEmployee(ctx, id)
	if err != nil {
		return err
	}
	if e == nil || !e.IsPayDate(t.Date) {
		return nil
	}

	pc := NewPaycheck(t.Date, e.PayPeriodStartDate(t.Date))
	pc.RunID = t.RunID
	e.Payday(pc)

	t.mu.Lock()
	t.paychecks[id] = pc
	t.mu.Unlock()

	t.logger.DebugContext(ctx, "paycheck settled",
		"run_id", t.RunID,
		"employee_id", int(id),
		"period", pc.Period.String(),
		"gross", pc.GrossPay.String(),
		"deductions", pc.Deductions.String(),
		"net", pc.NetPay.String(),
		"disposition", string(pc.Disposition),
	)
	return nil
}

// Paycheck returns the paycheck recorded for id in this run. Employees whose
// schedule did not match have none.
func (t *PaydayTransaction) Paycheck(id EmployeeID) (*Paycheck, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	pc, ok := t.paychecks[id]
	return pc, ok
}

// Paychecks returns all recorded paychecks ordered by employee id.
func (t *PaydayTransaction) Paychecks() []*Paycheck {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]*Paycheck, 0, len(t.paychecks))
	for _, pc := range t.paychecks {
		out = append(out, pc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EmployeeID < out[j].EmployeeID })
	return out
}
