package synchronizer

import "order-ledger/internal/features/orders/domain"

// State is the lifecycle of a synchronized order: either Provisional or Confirmed.
type State interface {
	isState()
}

// Provisional is an order created locally and not yet acknowledged by the server.
// Its Order.ID equals ClientRef.
type Provisional struct {
	ClientRef string
	Order     domain.Order
}

// Confirmed is an order known to the server, or kept locally after the server was unreachable.
type Confirmed struct {
	Order domain.Order
	// LocalOnly marks an order confirmed while offline.
	LocalOnly bool
}

func (Provisional) isState() {}
func (Confirmed) isState()   {}

// OrderOf returns the order carried by a state.
func OrderOf(st State) domain.Order {
	return orderOf(st)
}

func orderOf(st State) domain.Order {
	switch v := st.(type) {
	case Provisional:
		return v.Order
	case Confirmed:
		return v.Order
	}
	return domain.Order{}
}

func withOrder(st State, o domain.Order) State {
	switch v := st.(type) {
	case Provisional:
		v.Order = o
		return v
	case Confirmed:
		v.Order = o
		return v
	}
	return st
}
