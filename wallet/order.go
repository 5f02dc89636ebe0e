package wallet

import (
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/google/uuid"
)

// OrderSide distinguishes which token a party is offering versus requesting in
// an order.
type OrderSide int

const (
	// Buy is the buy side of an order: the party wants base, offers quote.
	Buy OrderSide = iota
	// Sell is the sell side of an order: the party offers base, wants quote.
	Sell
)

// FromScalars converts a slice of scalars to an OrderSide
func (s *OrderSide) FromScalars(scalars *ScalarIterator) error {
	scalar, err := scalars.Next()
	if err != nil {
		return err
	}

	elt := fr.Element(scalar)
	if !(elt.IsZero() || elt.IsOne()) {
		return fmt.Errorf("invalid OrderSide value: %v", scalar)
	}

	*s = OrderSide(elt.Uint64()) //nolint:gosec
	return nil
}

// ToScalars converts an OrderSide to a slice of scalars
func (s *OrderSide) ToScalars() ([]Scalar, error) {
	return []Scalar{Scalar(fr.NewElement(uint64(*s)))}, nil //nolint:gosec
}

// NumScalars returns the number of scalars in the OrderSide
func (s *OrderSide) NumScalars() int {
	return 1
}

// Order is a resting order in a wallet: a request to trade up to Amount of
// BaseMint against QuoteMint at no worse than WorstCasePrice.
type Order struct {
	// Id is the id of the order
	Id uuid.UUID `scalar_serialize:"skip"` //nolint:revive
	// QuoteMint is the erc20 address of the quote asset
	QuoteMint Scalar
	// BaseMint is the erc20 address of the base asset
	BaseMint Scalar
	// Side is the side of the order (0 for buy, 1 for sell)
	Side Scalar
	// Amount is the amount of the order
	Amount Scalar
	// WorstCasePrice is the worst case price of the order
	WorstCasePrice FixedPoint
}

// NewEmptyOrder creates a new empty order with a fresh id.
func NewEmptyOrder() Order {
	return Order{Id: uuid.New()}
}

// NewOrder constructs an order over the given mints, side, amount and worst-case
// price, assigning it a fresh id.
func NewOrder(quoteMint, baseMint Scalar, side OrderSide, amount Scalar, worstCasePrice FixedPoint) Order {
	sideScalars, _ := side.ToScalars() //nolint:errcheck
	return Order{
		Id:             uuid.New(),
		QuoteMint:      quoteMint,
		BaseMint:       baseMint,
		Side:           sideScalars[0],
		Amount:         amount,
		WorstCasePrice: worstCasePrice,
	}
}

// IsZero returns whether the volume of the order is zero
func (o *Order) IsZero() bool {
	return o.Amount.IsZero()
}

// GetNonzeroOrders gets all non-empty orders
func (w *Wallet) GetNonzeroOrders() []Order {
	nonzero := make([]Order, 0, len(w.Orders))
	for _, order := range w.Orders {
		if !order.IsZero() {
			nonzero = append(nonzero, order)
		}
	}

	return nonzero
}

// NewOrder places an order into the wallet, reusing the first empty order slot if
// one exists and appending otherwise.
func (w *Wallet) NewOrder(order Order) error {
	if idx := w.emptyOrderIndex(); idx != -1 {
		w.Orders[idx] = order
		return nil
	}

	if len(w.Orders) >= MaxOrders {
		return fmt.Errorf("wallet already has the maximum number of orders")
	}

	w.Orders = append(w.Orders, order)
	return nil
}

// emptyOrderIndex returns the index of the first zero-volume order slot, or -1
// if every slot is occupied.
func (w *Wallet) emptyOrderIndex() int {
	for i, order := range w.Orders {
		if order.IsZero() {
			return i
		}
	}

	return -1
}

// CancelOrder cancels an order by ID, replacing its slot with an empty order so
// that the wallet's order count never shrinks mid-lifecycle.
func (w *Wallet) CancelOrder(orderID uuid.UUID) error {
	for i, order := range w.Orders {
		if order.Id == orderID {
			w.Orders[i] = NewEmptyOrder()
			return nil
		}
	}

	return fmt.Errorf("order not found")
}
