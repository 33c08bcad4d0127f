/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:

	Provides pre-built scenarios that populate the store with employees
	and posted documents, so a pay run can be demonstrated with one call.
	Every scenario is built from ordinary payroll transactions.

AVAILABLE SCENARIOS:

	salaried-union:        Salaried union member, dues plus a service charge
	hourly-week:           Hourly worker with straight time and overtime cards
	commissioned-biweekly: Commissioned salesperson with receipts
	company:               All of the above in one store

HOW SCENARIOS WORK:
 1. Reset the store (clear all data)
 2. Add employees
 3. Change methods and affiliations
 4. Post time cards, sales receipts and service charges

USAGE VIA API:

	POST /api/scenarios/load
	{"scenario_id": "hourly-week"}

	POST /api/payday
	{"date": "<pay_date from the scenario>"}

ADDING NEW SCENARIOS:
 1. Add to 'scenarios' slice with ID, name, description, pay date
 2. Create loader function returning its transactions
 3. Add it to 'scenarioLoaders'

NOTE:

	Scenarios reset the store. Only use in development/demo environments.

SEE ALSO:
  - handlers.go: Transaction execution and metrics
  - payroll/transaction.go: Transactions used by the loaders
*/
package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"
	"github.com/warp/payroll-engine/payroll"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var scenarios = []ScenarioDTO{
	{
		ID:          "salaried-union",
		Name:        "Salaried Union Member",
		Description: "Monthly salary less weekly union dues and a service charge",
		PayDate:     payroll.MustParseDate("2001-11-30"),
	},
	{
		ID:          "hourly-week",
		Name:        "Hourly Worker",
		Description: "Weekly pay with overtime above eight hours per card",
		PayDate:     payroll.MustParseDate("2001-11-09"),
	},
	{
		ID:          "commissioned-biweekly",
		Name:        "Commissioned Salesperson",
		Description: "Biweekly salary plus commission on sales receipts",
		PayDate:     payroll.MustParseDate("2022-04-15"),
	},
	{
		ID:          "company",
		Name:        "Whole Company",
		Description: "Every scenario above loaded into one store",
		PayDate:     payroll.MustParseDate("2001-11-30"),
	},
}

var scenarioLoaders = map[string]func(s payroll.Store) []namedTx{
	"salaried-union":        salariedUnionScenario,
	"hourly-week":           hourlyWeekScenario,
	"commissioned-biweekly": commissionedScenario,
	"company": func(s payroll.Store) []namedTx {
		var txs []namedTx
		txs = append(txs, salariedUnionScenario(s)...)
		txs = append(txs, hourlyWeekScenario(s)...)
		txs = append(txs, commissionedScenario(s)...)
		return txs
	},
}

// namedTx pairs a transaction with its metrics label.
type namedTx struct {
	name string
	tx   payroll.Transaction
}

// resetter is implemented by stores that can drop all data.
type resetter interface {
	Reset(ctx context.Context) error
}

// ListScenarios returns available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// GetCurrentScenario returns the currently loaded scenario, if any.
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	current := h.currentScenario
	h.mu.Unlock()

	if current == "" {
		writeJSON(w, http.StatusOK, nil)
		return
	}
	if s, ok := findScenario(current); ok {
		writeJSON(w, http.StatusOK, s)
		return
	}
	writeJSON(w, http.StatusOK, ScenarioDTO{ID: current, Name: current})
}

// LoadScenario loads a predefined scenario.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ScenarioID string `json:"scenario_id"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	loader, ok := scenarioLoaders[req.ScenarioID]
	if !ok {
		writeError(w, http.StatusBadRequest, "Unknown scenario", nil)
		return
	}

	if err := h.loadScenario(r.Context(), req.ScenarioID, loader); err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to load scenario: %v", err), err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "loaded", "scenario": req.ScenarioID})
}

func (h *Handler) loadScenario(ctx context.Context, id string, loader func(payroll.Store) []namedTx) error {
	rs, ok := h.Store.(resetter)
	if !ok {
		return fmt.Errorf("store %T cannot be reset", h.Store)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	// Reset first
	if err := rs.Reset(ctx); err != nil {
		return fmt.Errorf("reset store: %w", err)
	}
	h.currentScenario = ""
	h.lastRun = nil

	for _, step := range loader(h.Store) {
		if err := h.executeLocked(ctx, step.name, step.tx); err != nil {
			return fmt.Errorf("%s: %w", step.name, err)
		}
	}

	h.currentScenario = id
	h.Logger.InfoContext(ctx, "scenario loaded", "scenario", id)
	return nil
}

func findScenario(id string) (ScenarioDTO, bool) {
	for _, s := range scenarios {
		if s.ID == id {
			return s, true
		}
	}
	return ScenarioDTO{}, false
}

// =============================================================================
// SCENARIO LOADERS
// =============================================================================

func salariedUnionScenario(s payroll.Store) []namedTx {
	// Five Fridays in November 2001: dues 5 x 9.42, plus one 19.42 charge
	return []namedTx{
		{"add_employee", payroll.NewAddSalariedEmployee(s, 1, "Bob", "Home", decimal.RequireFromString("1000"))},
		{"change_member", payroll.NewChangeMember(s, 1, 7734, decimal.RequireFromString("9.42"))},
		{"add_service_charge", payroll.NewAddServiceCharge(s, 7734, payroll.MustParseDate("2001-11-30"), decimal.RequireFromString("19.42"))},
	}
}

func hourlyWeekScenario(s payroll.Store) []namedTx {
	card := func(date, hours string) namedTx {
		return namedTx{"add_time_card", payroll.NewAddTimeCard(s, 2, payroll.MustParseDate(date), decimal.RequireFromString(hours))}
	}
	return []namedTx{
		{"add_employee", payroll.NewAddHourlyEmployee(s, 2, "Bill", "Home", decimal.RequireFromString("15.25"))},
		{"change_method", payroll.NewChangeDirect(s, 2, "First Bank", "12-3456")},
		// Previous week, outside the 2001-11-09 period
		card("2001-11-02", "8"),
		card("2001-11-05", "8"),
		card("2001-11-06", "8"),
		card("2001-11-07", "9"),
		card("2001-11-08", "10"),
		card("2001-11-09", "4"),
	}
}

func commissionedScenario(s payroll.Store) []namedTx {
	receipt := func(date, amount string) namedTx {
		return namedTx{"add_sales_receipt", payroll.NewAddSalesReceipt(s, 3, payroll.MustParseDate(date), decimal.RequireFromString(amount))}
	}
	return []namedTx{
		{"add_employee", payroll.NewAddCommissionedEmployee(s, 3, "Lance", "Home",
			decimal.RequireFromString("0.2"), decimal.RequireFromString("500"), payroll.MustParseDate("2022-04-04"))},
		{"change_method", payroll.NewChangeMail(s, 3, "PO Box 42")},
		receipt("2022-04-05", "100"),
		receipt("2022-04-12", "200"),
		// Next period
		receipt("2022-04-20", "300"),
	}
}
