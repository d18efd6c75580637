package ledger

import (
	"testing"

	"lorryops/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestRecompute(t *testing.T) {
	tests := []struct {
		name     string
		total    string
		payments []model.Payment
		wantPaid string
		wantBal  string
	}{
		{
			name:     "no payments",
			total:    "150.00",
			payments: nil,
			wantPaid: "0.00",
			wantBal:  "150.00",
		},
		{
			name:  "voided payments excluded",
			total: "200.00",
			payments: []model.Payment{
				{Amount: dec("100"), Status: model.PaymentStatusPosted},
				{Amount: dec("50"), Status: model.PaymentStatusPosted},
				{Amount: dec("20"), Status: model.PaymentStatusVoided},
			},
			wantPaid: "150.00",
			wantBal:  "50.00",
		},
		{
			name:  "only voided payments",
			total: "80.00",
			payments: []model.Payment{
				{Amount: dec("80"), Status: model.PaymentStatusVoided},
			},
			wantPaid: "0.00",
			wantBal:  "80.00",
		},
		{
			name:  "overpayment gives negative balance",
			total: "100.00",
			payments: []model.Payment{
				{Amount: dec("120.00"), Status: model.PaymentStatusPosted},
			},
			wantPaid: "120.00",
			wantBal:  "-20.00",
		},
		{
			name:  "sum rounded half to even",
			total: "10.00",
			payments: []model.Payment{
				{Amount: dec("3.3325"), Status: model.PaymentStatusPosted},
				{Amount: dec("3.3325"), Status: model.PaymentStatusPosted},
			},
			wantPaid: "6.66",
			wantBal:  "3.34",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := &model.Order{
				Total:    dec(tt.total),
				Payments: tt.payments,
				// Seed stale cached values to prove they are overwritten.
				PaidAmount: dec("999.99"),
				Balance:    dec("-999.99"),
			}

			Recompute(o)

			assert.Equal(t, tt.wantPaid, o.PaidAmount.StringFixed(2))
			assert.Equal(t, tt.wantBal, o.Balance.StringFixed(2))
		})
	}
}

func TestRecompute_FixedPoint(t *testing.T) {
	o := &model.Order{
		Total: dec("200.00"),
		Payments: []model.Payment{
			{Amount: dec("33.33"), Status: model.PaymentStatusPosted},
			{Amount: dec("66.67"), Status: model.PaymentStatusPosted},
			{Amount: dec("10.00"), Status: model.PaymentStatusVoided},
		},
	}

	Recompute(o)
	firstPaid, firstBal := o.PaidAmount, o.Balance

	// Unchanged payment set must reproduce identical results.
	Recompute(o)

	assert.True(t, o.PaidAmount.Equal(firstPaid))
	assert.True(t, o.Balance.Equal(firstBal))
	assert.Equal(t, "100.00", o.PaidAmount.StringFixed(2))
	assert.Equal(t, "100.00", o.Balance.StringFixed(2))
}

func TestRecompute_DoesNotTouchOtherFields(t *testing.T) {
	o := &model.Order{
		Code:     "ORD-100",
		Status:   model.OrderStatusNew,
		Total:    dec("50.00"),
		Subtotal: dec("50.00"),
		Payments: []model.Payment{
			{Amount: dec("25.00"), Status: model.PaymentStatusPosted},
		},
	}

	Recompute(o)

	assert.Equal(t, "ORD-100", o.Code)
	assert.Equal(t, model.OrderStatusNew, o.Status)
	assert.Equal(t, "50.00", o.Subtotal.StringFixed(2))
	assert.Equal(t, "25.00", o.PaidAmount.StringFixed(2))
	assert.Equal(t, "25.00", o.Balance.StringFixed(2))
}
