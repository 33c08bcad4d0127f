package payroll

// =============================================================================
// PAYMENT METHOD - What happens to a settled paycheck
// =============================================================================

type MethodKind string

const (
	MethodHold   MethodKind = "hold"
	MethodDirect MethodKind = "direct"
	MethodMail   MethodKind = "mail"
)

// Method disposes of a computed paycheck. Direct deposit and mail are
// settled by external disbursement systems, so their Pay is a no-op here.
type Method interface {
	Pay(pc *Paycheck)
	Disposition() Disposition
	Kind() MethodKind
}

var (
	_ Method = HoldMethod{}
	_ Method = DirectMethod{}
	_ Method = MailMethod{}
)

// HoldMethod keeps the paycheck with the paymaster.
type HoldMethod struct{}

func (HoldMethod) Kind() MethodKind         { return MethodHold }
func (HoldMethod) Disposition() Disposition { return DispositionHold }
func (HoldMethod) Pay(pc *Paycheck)         { pc.Disposition = DispositionHold }

// DirectMethod deposits into a bank account.
type DirectMethod struct {
	Bank    string
	Account string
}

func (DirectMethod) Kind() MethodKind         { return MethodDirect }
func (DirectMethod) Disposition() Disposition { return DispositionDirect }
func (DirectMethod) Pay(*Paycheck)            {}

// MailMethod mails the paycheck to Address.
type MailMethod struct {
	Address string
}

func (MailMethod) Kind() MethodKind         { return MethodMail }
func (MailMethod) Disposition() Disposition { return DispositionMail }
func (MailMethod) Pay(*Paycheck)            {}
