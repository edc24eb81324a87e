package domain

import "testing"

func TestRoundCents(t *testing.T) {
	cases := []struct {
		name string
		in   float64
		want float64
	}{
		{"exact", 3.00, 3.00},
		{"half rounds up", 0.125, 0.13},
		{"truncates below half", 2.994, 2.99},
		{"three percent of 100", 100 * 0.03, 3.00},
		{"negative half away from zero", -0.125, -0.13},
		{"zero", 0, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := RoundCents(tc.in); got != tc.want {
				t.Fatalf("RoundCents(%v) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}
}

func TestFeeAndRefundSumToTotal(t *testing.T) {
	totals := []float64{100.00, 99.99, 0.01, 1234.56, 19.95, 3333.33}

	for _, total := range totals {
		fee := RoundCents(total * 0.03)
		refund := RoundCents(total - fee)
		if got := RoundCents(fee + refund); got != RoundCents(total) {
			t.Fatalf("total=%v: fee %v + refund %v = %v", total, fee, refund, got)
		}
	}
}

func TestOrderStatus(t *testing.T) {
	for _, s := range []OrderStatus{OrderPending, OrderDispatched, OrderInTransit, OrderDelivered, OrderCancelled} {
		if !s.Valid() {
			t.Errorf("%q should be valid", s)
		}
	}
	if OrderStatus("shipped").Valid() {
		t.Error("unknown status should be invalid")
	}

	if OrderPending.Terminal() || OrderDispatched.Terminal() || OrderInTransit.Terminal() {
		t.Error("non-terminal status reported terminal")
	}
	if !OrderDelivered.Terminal() || !OrderCancelled.Terminal() {
		t.Error("terminal status not reported terminal")
	}
}
