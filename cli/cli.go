// Package cli is the payroll command line: every subcommand builds one
// payroll transaction and executes it against a SQLite file.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"github.com/warp/payroll-engine/payroll"
	"github.com/warp/payroll-engine/store/sqlite"
)

// app is the state shared by one command invocation.
type app struct {
	dbPath  string
	verbose bool
	store   *sqlite.Store
	logger  *slog.Logger
}

// NewRootCommand builds a fresh command tree.
func NewRootCommand() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "payroll",
		Short: "Run payroll transactions against a SQLite database",
		Long: `Each subcommand records one payroll transaction: adding or changing an
employee, posting a time card, sales receipt or union service charge, or
running payday for a date. State lives in the SQLite file given by --db.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.open(cmd.ErrOrStderr())
		},
	}
	root.PersistentFlags().StringVar(&a.dbPath, "db", "payroll.db", "SQLite database path")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Log every paycheck")

	root.AddCommand(
		a.addCmd(),
		a.deleteCmd(),
		a.listCmd(),
		a.timeCardCmd(),
		a.receiptCmd(),
		a.chargeCmd(),
		a.nameCmd(),
		a.addressCmd(),
		a.classifyCmd(),
		a.methodCmd(),
		a.memberCmd(),
		a.unaffiliateCmd(),
		a.paydayCmd(),
	)
	closeAfterRun(root, a)
	return root
}

// closeAfterRun makes every runnable command close the store on return.
// PersistentPostRunE does not run after a RunE error.
func closeAfterRun(cmd *cobra.Command, a *app) {
	if run := cmd.RunE; run != nil {
		cmd.RunE = func(cmd *cobra.Command, args []string) (err error) {
			defer func() {
				if cerr := a.close(); err == nil {
					err = cerr
				}
			}()
			return run(cmd, args)
		}
	}
	for _, sub := range cmd.Commands() {
		closeAfterRun(sub, a)
	}
}

// Execute runs the command tree with os.Args.
func Execute(ctx context.Context) error {
	return NewRootCommand().ExecuteContext(ctx)
}

func (a *app) open(logOut io.Writer) error {
	level := slog.LevelInfo
	if a.verbose {
		level = slog.LevelDebug
	}
	a.logger = slog.New(slog.NewTextHandler(logOut, &slog.HandlerOptions{Level: level}))

	st, err := sqlite.New(a.dbPath)
	if err != nil {
		return err
	}
	a.store = st
	return nil
}

func (a *app) close() error {
	if a.store == nil {
		return nil
	}
	err := a.store.Close()
	a.store = nil
	return err
}

// run executes tx and prints a one-line confirmation.
func (a *app) run(cmd *cobra.Command, tx payroll.Transaction, format string, args ...any) error {
	if err := tx.Execute(cmd.Context()); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), format+"\n", args...)
	return nil
}

// =============================================================================
// EMPLOYEES
// =============================================================================

func (a *app) addCmd() *cobra.Command {
	add := &cobra.Command{
		Use:   "add",
		Short: "Add an employee",
	}

	add.AddCommand(&cobra.Command{
		Use:   "salaried ID NAME ADDRESS SALARY",
		Short: "Add a monthly-paid salaried employee",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, salary, err := idAndAmount(args[0], args[3])
			if err != nil {
				return err
			}
			return a.run(cmd, payroll.NewAddSalariedEmployee(a.store, id, args[1], args[2], salary),
				"added salaried employee %d", id)
		},
	})

	add.AddCommand(&cobra.Command{
		Use:   "hourly ID NAME ADDRESS RATE",
		Short: "Add a weekly-paid hourly employee",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, rate, err := idAndAmount(args[0], args[3])
			if err != nil {
				return err
			}
			return a.run(cmd, payroll.NewAddHourlyEmployee(a.store, id, args[1], args[2], rate),
				"added hourly employee %d", id)
		},
	})

	commissioned := &cobra.Command{
		Use:   "commissioned ID NAME ADDRESS SALARY COMMISSION_RATE",
		Short: "Add a biweekly-paid commissioned employee",
		Args:  cobra.ExactArgs(5),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, salary, err := idAndAmount(args[0], args[3])
			if err != nil {
				return err
			}
			rate, err := parseAmount(args[4])
			if err != nil {
				return err
			}
			start, err := dateFlag(cmd, "start")
			if err != nil {
				return err
			}
			return a.run(cmd, payroll.NewAddCommissionedEmployee(a.store, id, args[1], args[2], rate, salary, start),
				"added commissioned employee %d", id)
		},
	}
	commissioned.Flags().String("start", "", "Work start date, the biweekly anchor (YYYY-MM-DD)")
	commissioned.MarkFlagRequired("start")
	add.AddCommand(commissioned)

	return add
}

func (a *app) deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete an employee",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseEmployeeID(args[0])
			if err != nil {
				return err
			}
			return a.run(cmd, payroll.NewDeleteEmployee(a.store, id), "deleted employee %d", id)
		},
	}
}

func (a *app) listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List employees",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ids, err := a.store.EmployeeIDs(ctx)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tADDRESS\tCLASSIFICATION\tSCHEDULE\tMETHOD\tMEMBER")
			for _, id := range ids {
				e, err := a.store.GetEmployee(ctx, id)
				if err != nil {
					return err
				}
				if e == nil {
					continue
				}
				member := "-"
				if ua, ok := e.UnionAffiliation(); ok {
					member = strconv.Itoa(int(ua.MemberID))
				}
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
					id, e.Name, e.Address, e.Classification().Kind(), e.Schedule().Kind(), e.Method().Kind(), member)
			}
			return tw.Flush()
		},
	}
}

// =============================================================================
// DOCUMENTS
// =============================================================================

func (a *app) timeCardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "timecard ID DATE HOURS",
		Short: "Post a time card for an hourly employee",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, hours, err := idAndAmount(args[0], args[2])
			if err != nil {
				return err
			}
			d, err := payroll.ParseDate(args[1])
			if err != nil {
				return err
			}
			return a.run(cmd, payroll.NewAddTimeCard(a.store, id, d, hours),
				"time card %s for employee %d: %s hours", d, id, hours)
		},
	}
}

func (a *app) receiptCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "receipt ID DATE AMOUNT",
		Short: "Post a sales receipt for a commissioned employee",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, amount, err := idAndAmount(args[0], args[2])
			if err != nil {
				return err
			}
			d, err := payroll.ParseDate(args[1])
			if err != nil {
				return err
			}
			return a.run(cmd, payroll.NewAddSalesReceipt(a.store, id, d, amount),
				"sales receipt %s for employee %d: %s", d, id, amount)
		},
	}
}

func (a *app) chargeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "charge MEMBER_ID DATE AMOUNT",
		Short: "Post a union service charge",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			memberID, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("%w: member id %q", payroll.ErrInvalidArgument, args[0])
			}
			d, err := payroll.ParseDate(args[1])
			if err != nil {
				return err
			}
			amount, err := parseAmount(args[2])
			if err != nil {
				return err
			}
			return a.run(cmd, payroll.NewAddServiceCharge(a.store, payroll.MemberID(memberID), d, amount),
				"service charge %s for member %d: %s", d, memberID, amount)
		},
	}
}

// =============================================================================
// CHANGES
// =============================================================================

func (a *app) nameCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "name ID NAME",
		Short: "Change an employee's name",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseEmployeeID(args[0])
			if err != nil {
				return err
			}
			return a.run(cmd, payroll.NewChangeName(a.store, id, args[1]), "employee %d renamed", id)
		},
	}
}

func (a *app) addressCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "address ID ADDRESS",
		Short: "Change an employee's address",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseEmployeeID(args[0])
			if err != nil {
				return err
			}
			return a.run(cmd, payroll.NewChangeAddress(a.store, id, args[1]), "employee %d moved", id)
		},
	}
}

func (a *app) classifyCmd() *cobra.Command {
	classify := &cobra.Command{
		Use:   "classify",
		Short: "Change how an employee is paid; posted documents are dropped",
	}

	classify.AddCommand(&cobra.Command{
		Use:   "salaried ID SALARY",
		Short: "Make the employee salaried, paid monthly",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, salary, err := idAndAmount(args[0], args[1])
			if err != nil {
				return err
			}
			return a.run(cmd, payroll.NewChangeSalaried(a.store, id, salary), "employee %d is now salaried", id)
		},
	})

	classify.AddCommand(&cobra.Command{
		Use:   "hourly ID RATE",
		Short: "Make the employee hourly, paid weekly",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, rate, err := idAndAmount(args[0], args[1])
			if err != nil {
				return err
			}
			return a.run(cmd, payroll.NewChangeHourly(a.store, id, rate), "employee %d is now hourly", id)
		},
	})

	commissioned := &cobra.Command{
		Use:   "commissioned ID SALARY COMMISSION_RATE",
		Short: "Make the employee commissioned, paid biweekly",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, salary, err := idAndAmount(args[0], args[1])
			if err != nil {
				return err
			}
			rate, err := parseAmount(args[2])
			if err != nil {
				return err
			}
			start, err := dateFlag(cmd, "start")
			if err != nil {
				return err
			}
			return a.run(cmd, payroll.NewChangeCommissioned(a.store, id, salary, rate, start),
				"employee %d is now commissioned", id)
		},
	}
	commissioned.Flags().String("start", "", "Work start date, the biweekly anchor (YYYY-MM-DD)")
	commissioned.MarkFlagRequired("start")
	classify.AddCommand(commissioned)

	return classify
}

func (a *app) methodCmd() *cobra.Command {
	method := &cobra.Command{
		Use:   "method",
		Short: "Change how paychecks are disbursed",
	}

	method.AddCommand(&cobra.Command{
		Use:   "hold ID",
		Short: "Hold paychecks with the paymaster",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseEmployeeID(args[0])
			if err != nil {
				return err
			}
			return a.run(cmd, payroll.NewChangeHold(a.store, id), "employee %d paychecks held", id)
		},
	})

	method.AddCommand(&cobra.Command{
		Use:   "direct ID BANK ACCOUNT",
		Short: "Deposit paychecks into a bank account",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseEmployeeID(args[0])
			if err != nil {
				return err
			}
			return a.run(cmd, payroll.NewChangeDirect(a.store, id, args[1], args[2]), "employee %d paid by direct deposit", id)
		},
	})

	method.AddCommand(&cobra.Command{
		Use:   "mail ID ADDRESS",
		Short: "Mail paychecks to an address",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseEmployeeID(args[0])
			if err != nil {
				return err
			}
			return a.run(cmd, payroll.NewChangeMail(a.store, id, args[1]), "employee %d paid by mail", id)
		},
	})

	return method
}

func (a *app) memberCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "member ID MEMBER_ID DUES",
		Short: "Enrol an employee in the union",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, dues, err := idAndAmount(args[0], args[2])
			if err != nil {
				return err
			}
			memberID, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("%w: member id %q", payroll.ErrInvalidArgument, args[1])
			}
			return a.run(cmd, payroll.NewChangeMember(a.store, id, payroll.MemberID(memberID), dues),
				"employee %d is union member %d", id, memberID)
		},
	}
}

func (a *app) unaffiliateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unaffiliate ID",
		Short: "Remove an employee from the union",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseEmployeeID(args[0])
			if err != nil {
				return err
			}
			return a.run(cmd, payroll.NewChangeUnaffiliated(a.store, id), "employee %d left the union", id)
		},
	}
}

// =============================================================================
// PAYDAY
// =============================================================================

func (a *app) paydayCmd() *cobra.Command {
	payday := &cobra.Command{
		Use:   "payday",
		Short: "Pay every employee whose pay date is --date",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := dateFlag(cmd, "date")
			if err != nil {
				return err
			}
			workers, _ := cmd.Flags().GetInt("workers")

			tx := payroll.NewPayday(a.store, d, payroll.WithWorkers(workers), payroll.WithLogger(a.logger))
			if err := tx.Execute(cmd.Context()); err != nil {
				return err
			}
			return printPaychecks(cmd.OutOrStdout(), tx)
		},
	}
	payday.Flags().String("date", "", "Pay date (YYYY-MM-DD), default today")
	payday.Flags().Int("workers", 1, "Employees paid concurrently")
	return payday
}

func printPaychecks(w io.Writer, tx *payroll.PaydayTransaction) error {
	fmt.Fprintf(w, "run %s, pay date %s\n", tx.RunID, tx.Date)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "EMPLOYEE\tPERIOD START\tGROSS\tDEDUCTIONS\tNET\tDISPOSITION\t")
	for _, pc := range tx.Paychecks() {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t\n",
			pc.EmployeeID, pc.Period.Start,
			pc.GrossPay.StringFixed(2), pc.Deductions.StringFixed(2), pc.NetPay.StringFixed(2),
			pc.Disposition)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(w, "%d paychecks\n", len(tx.Paychecks()))
	return nil
}

// =============================================================================
// ARGUMENT PARSING
// =============================================================================

func parseEmployeeID(s string) (payroll.EmployeeID, error) {
	id, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: employee id %q", payroll.ErrInvalidArgument, s)
	}
	return payroll.EmployeeID(id), nil
}

func parseAmount(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: amount %q", payroll.ErrInvalidArgument, s)
	}
	return d, nil
}

func idAndAmount(idArg, amountArg string) (payroll.EmployeeID, decimal.Decimal, error) {
	id, err := parseEmployeeID(idArg)
	if err != nil {
		return 0, decimal.Zero, err
	}
	amount, err := parseAmount(amountArg)
	if err != nil {
		return 0, decimal.Zero, err
	}
	return id, amount, nil
}

// dateFlag reads a YYYY-MM-DD flag; an unset flag means today.
func dateFlag(cmd *cobra.Command, name string) (payroll.Date, error) {
	raw, _ := cmd.Flags().GetString(name)
	if raw == "" {
		return payroll.Today(), nil
	}
	return payroll.ParseDate(raw)
}
