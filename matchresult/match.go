// Package matchresult implements the match-result algebra that settlement tasks
// use to describe what a match moved between two parties' balances: the internal
// two-party MatchResult, the relayer-facing ExternalMatchResult, and the
// range-bounded BoundedMatchResult used by malleable atomic matches.
package matchresult

import "github.com/renegade-fi/wallet-engine/wallet"

// OrderSettlementIndices identifies where in a wallet's balance and order arrays a
// settlement should apply its effects.
type OrderSettlementIndices struct {
	// BalanceSend is the index of the balance the wallet will debit if the match settles
	BalanceSend int
	// BalanceReceive is the index of the balance the wallet will credit if the match settles
	BalanceReceive int
	// Order is the index of the order being matched
	Order int
}

// MatchResult is the cleartext result of a two-party match.
//
// Direction convention: `Direction == false` means party 0 buys the base and sells
// the quote; `Direction == true` means party 0 buys the quote and sells the base.
type MatchResult struct {
	QuoteMint   wallet.Address
	BaseMint    wallet.Address
	QuoteAmount wallet.Amount
	BaseAmount  wallet.Amount
	// Direction: false => party 0 buys base/sells quote, true => party 0 buys quote/sells base
	Direction bool
	// MinAmountOrderIndex is 0 or 1, naming the order fully filled by this match
	MinAmountOrderIndex int
}

// SendMintAmount returns the mint and amount a party on the given side sends
func (m *MatchResult) SendMintAmount(side wallet.OrderSide) (wallet.Address, wallet.Amount) {
	if side == wallet.Buy {
		return m.QuoteMint, m.QuoteAmount
	}
	return m.BaseMint, m.BaseAmount
}

// ReceiveMintAmount returns the mint and amount a party on the given side receives
func (m *MatchResult) ReceiveMintAmount(side wallet.OrderSide) (wallet.Address, wallet.Amount) {
	if side == wallet.Buy {
		return m.BaseMint, m.BaseAmount
	}
	return m.QuoteMint, m.QuoteAmount
}

// ExternalMatchResult is the result of a match between an internal (darkpool)
// order and an external counterparty settled atomically via token transfers.
//
// Direction convention: `Direction == true` means the internal party buys the
// quote and sells the base; equivalently the external party buys the base.
type ExternalMatchResult struct {
	QuoteMint   wallet.Address
	BaseMint    wallet.Address
	QuoteAmount wallet.Amount
	BaseAmount  wallet.Amount
	Direction   bool
}

// ExternalPartyReceive returns the mint and amount the external party receives
func (m *ExternalMatchResult) ExternalPartyReceive() (wallet.Address, wallet.Amount) {
	if m.Direction {
		return m.BaseMint, m.BaseAmount
	}
	return m.QuoteMint, m.QuoteAmount
}

// ExternalPartySend returns the mint and amount the external party sends
func (m *ExternalMatchResult) ExternalPartySend() (wallet.Address, wallet.Amount) {
	if m.Direction {
		return m.QuoteMint, m.QuoteAmount
	}
	return m.BaseMint, m.BaseAmount
}

// InternalPartySide returns the OrderSide of the internal (darkpool) party
func (m *ExternalMatchResult) InternalPartySide() wallet.OrderSide {
	if m.Direction {
		return wallet.Sell
	}
	return wallet.Buy
}

// ToMatchResult converts an ExternalMatchResult to a MatchResult, treating the
// internal party as party 0 and the external party as party 1. MinAmountOrderIndex
// is meaningless for external matches and is left at its zero value.
func (m *ExternalMatchResult) ToMatchResult() MatchResult {
	return MatchResult{
		QuoteMint:   m.QuoteMint,
		BaseMint:    m.BaseMint,
		QuoteAmount: m.QuoteAmount,
		BaseAmount:  m.BaseAmount,
		Direction:   m.Direction,
	}
}

// FromMatchResult projects a MatchResult down to an ExternalMatchResult, dropping
// the min-amount-order hint the internal representation carries.
func FromMatchResult(m MatchResult) ExternalMatchResult {
	return ExternalMatchResult{
		QuoteMint:   m.QuoteMint,
		BaseMint:    m.BaseMint,
		QuoteAmount: m.QuoteAmount,
		BaseAmount:  m.BaseAmount,
		Direction:   m.Direction,
	}
}

// BoundedMatchResult describes a match whose exact traded amount is not yet fixed,
// only bounded, as used by malleable atomic matches where the external party picks
// a base amount within [MinBaseAmount, MaxBaseAmount] at submission time.
type BoundedMatchResult struct {
	QuoteMint     wallet.Address
	BaseMint      wallet.Address
	Price         wallet.FixedPoint
	MinBaseAmount wallet.Amount
	MaxBaseAmount wallet.Amount
	Direction     bool
}

// QuoteAmount computes the quote amount owed for a given base amount at this
// match's price, flooring to the nearest integer token unit. This floor is the
// only rounding point the match settlement pipeline performs.
func (m *BoundedMatchResult) QuoteAmount(baseAmount wallet.Amount) wallet.Amount {
	return m.Price.MulAmountFloor(baseAmount)
}

// ExternalPartyReceive returns the mint and amount the external party receives at a
// given trade size
func (m *BoundedMatchResult) ExternalPartyReceive(baseAmount wallet.Amount) (wallet.Address, wallet.Amount) {
	if m.Direction {
		return m.BaseMint, baseAmount
	}
	return m.QuoteMint, m.QuoteAmount(baseAmount)
}

// ExternalPartySend returns the mint and amount the external party sends at a given
// trade size
func (m *BoundedMatchResult) ExternalPartySend(baseAmount wallet.Amount) (wallet.Address, wallet.Amount) {
	if m.Direction {
		return m.QuoteMint, m.QuoteAmount(baseAmount)
	}
	return m.BaseMint, baseAmount
}

// ToExternalMatchResult fixes a BoundedMatchResult at a concrete base amount
func (m *BoundedMatchResult) ToExternalMatchResult(baseAmount wallet.Amount) ExternalMatchResult {
	return ExternalMatchResult{
		QuoteMint:   m.QuoteMint,
		BaseMint:    m.BaseMint,
		QuoteAmount: m.QuoteAmount(baseAmount),
		BaseAmount:  baseAmount,
		Direction:   m.Direction,
	}
}
