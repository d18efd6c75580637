// Package ledger derives an order's financial state from its payment events.
// The stored paid amount and balance are a cache of this computation, never an
// independent source of truth.
package ledger

import (
	"lorryops/internal/model"
	"lorryops/internal/money"

	"github.com/shopspring/decimal"
)

// Recompute recalculates PaidAmount and Balance from the order's attached
// payment set and Total, mutating the two fields in place. Only POSTED
// payments count; voided payments are ignored regardless of amount. The
// function is pure over (Payments, Total), performs no I/O and is idempotent:
// it must be re-run whenever the payment set changes.
func Recompute(o *model.Order) {
	paid := decimal.Zero
	for _, p := range o.Payments {
		if p.Status == model.PaymentStatusPosted {
			paid = paid.Add(p.Amount)
		}
	}

	o.PaidAmount = paid.RoundBank(money.Scale)
	o.Balance = o.Total.Sub(o.PaidAmount).RoundBank(money.Scale)
}
