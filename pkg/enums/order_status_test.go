package enums

import "testing"

func TestOrderStatusForwardTransitions(t *testing.T) {
	steps := []struct {
		from OrderStatus
		to   OrderStatus
	}{
		{OrderStatusPending, OrderStatusConfirmed},
		{OrderStatusConfirmed, OrderStatusProcessing},
		{OrderStatusProcessing, OrderStatusShipped},
		{OrderStatusShipped, OrderStatusDelivered},
	}
	for _, step := range steps {
		if !step.from.CanTransitionTo(step.to) {
			t.Fatalf("expected %s -> %s to be allowed", step.from, step.to)
		}
	}
}

func TestOrderStatusRejectsSkipsAndBackwardMoves(t *testing.T) {
	cases := []struct {
		from OrderStatus
		to   OrderStatus
	}{
		{OrderStatusPending, OrderStatusShipped},
		{OrderStatusPending, OrderStatusDelivered},
		{OrderStatusConfirmed, OrderStatusPending},
		{OrderStatusDelivered, OrderStatusShipped},
		{OrderStatusShipped, OrderStatusConfirmed},
	}
	for _, c := range cases {
		if c.from.CanTransitionTo(c.to) {
			t.Fatalf("expected %s -> %s to be rejected", c.from, c.to)
		}
	}
}

func TestOrderStatusCancellation(t *testing.T) {
	for _, from := range []OrderStatus{OrderStatusPending, OrderStatusConfirmed, OrderStatusProcessing, OrderStatusShipped} {
		if !from.CanTransitionTo(OrderStatusCancelled) {
			t.Fatalf("expected %s to be cancellable", from)
		}
	}
	for _, from := range []OrderStatus{OrderStatusDelivered, OrderStatusCancelled} {
		if from.CanTransitionTo(OrderStatusCancelled) {
			t.Fatalf("expected terminal %s to not be cancellable", from)
		}
	}
}

func TestParseOrderStatus(t *testing.T) {
	if _, err := ParseOrderStatus("shipped"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := ParseOrderStatus("teleported"); err == nil {
		t.Fatal("expected invalid status to error")
	}
}
