package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransitionOrder(t *testing.T) {
	allowed := map[OrderStatus][]OrderStatus{
		OrderRequested: {OrderApproved, OrderRejected},
		OrderApproved:  {OrderInvoiced, OrderCompleted},
		OrderInvoiced:  {OrderCompleted},
	}
	statuses := []OrderStatus{OrderRequested, OrderApproved, OrderRejected, OrderInvoiced, OrderCompleted}

	for _, from := range statuses {
		for _, to := range statuses {
			want := false
			for _, next := range allowed[from] {
				if next == to {
					want = true
				}
			}
			assert.Equal(t, want, CanTransitionOrder(from, to), "%s -> %s", from, to)
		}
	}
}

func TestCanTransitionOrderTerminalStates(t *testing.T) {
	for _, terminal := range []OrderStatus{OrderRejected, OrderCompleted} {
		for _, to := range []OrderStatus{OrderRequested, OrderApproved, OrderRejected, OrderInvoiced, OrderCompleted} {
			assert.False(t, CanTransitionOrder(terminal, to), "%s must be terminal", terminal)
		}
	}
}

func TestCanTransitionOrderNoSkipping(t *testing.T) {
	assert.False(t, CanTransitionOrder(OrderRequested, OrderInvoiced))
	assert.False(t, CanTransitionOrder(OrderRequested, OrderCompleted))
	assert.False(t, CanTransitionOrder(OrderApproved, OrderRejected))
}
