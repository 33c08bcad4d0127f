/*
main.go - Payroll command line

PURPOSE:
  Runs single payroll transactions against a SQLite file, for batch
  jobs and shell scripts that do not go through the HTTP server.

EXAMPLES:
  payroll --db=./payroll.db add hourly 2 Bill "12 Elm St" 15.25
  payroll --db=./payroll.db timecard 2 2001-11-09 9
  payroll --db=./payroll.db payday --date=2001-11-09 --workers=4

SEE ALSO:
  - cli/cli.go: Command tree
*/
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/warp/payroll-engine/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cli.Execute(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
