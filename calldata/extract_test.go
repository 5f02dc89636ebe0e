package calldata

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/renegade-fi/wallet-engine/fees"
	"github.com/renegade-fi/wallet-engine/matchresult"
	"github.com/renegade-fi/wallet-engine/wallet"
)

func limbsFromShare(t *testing.T, share wallet.WalletShare) []shareLimbs {
	t.Helper()
	scalars, err := wallet.ToScalarsRecursive(&share)
	require.NoError(t, err)

	limbs := make([]shareLimbs, len(scalars))
	for i, s := range scalars {
		limbs[i] = ScalarToUintLimbs(s)
	}
	return limbs
}

func TestParseSharesFromNewWallet(t *testing.T) {
	share, err := wallet.EmptyWalletShare(wallet.PublicKeychain{})
	require.NoError(t, err)

	call := NewWalletCall{
		ValidWalletCreateStatement: ValidWalletCreateStatement{
			PublicWalletShares: limbsFromShare(t, share),
		},
	}

	parsed, err := ParseSharesFromNewWallet(call)
	require.NoError(t, err)
	assert.True(t, parsed.Blinder.Equal(&share.Blinder))
}

func TestParseSharesFromProcessMatchSettle_Disambiguates(t *testing.T) {
	party0, err := wallet.EmptyWalletShare(wallet.PublicKeychain{})
	require.NoError(t, err)
	party0.Blinder = wallet.NewAmountFromUint64(1).ToScalar()

	party1, err := wallet.EmptyWalletShare(wallet.PublicKeychain{})
	require.NoError(t, err)
	party1.Blinder = wallet.NewAmountFromUint64(2).ToScalar()

	call := ProcessMatchSettleCall{
		ValidMatchSettleStatement: ValidMatchSettleStatement{
			Party0ModifiedShares: limbsFromShare(t, party0),
			Party1ModifiedShares: limbsFromShare(t, party1),
		},
	}

	parsed, err := ParseSharesFromProcessMatchSettle(call, party1.Blinder)
	require.NoError(t, err)
	assert.True(t, parsed.Blinder.Equal(&party1.Blinder))

	unknownBlinder := wallet.NewAmountFromUint64(3).ToScalar()
	_, err = ParseSharesFromProcessMatchSettle(call, unknownBlinder)
	require.Error(t, err)
	var blinderErr *BlinderNotFoundError
	assert.ErrorAs(t, err, &blinderErr)
}

// TestParseSharesFromProcessMalleableAtomicMatchSettle checks that share
// extraction from a malleable match call applies the match to the embedded
// pre-match shares exactly the way the settlement algebra does, since the
// contract performs the same derivation on-chain.
func TestParseSharesFromProcessMalleableAtomicMatchSettle(t *testing.T) {
	var quote, base wallet.Address
	quote[19] = 1
	base[19] = 2

	share, err := wallet.EmptyWalletShare(wallet.PublicKeychain{})
	require.NoError(t, err)
	share.Balances[0].Mint = quote.ToScalar()
	share.Balances[0].Amount = wallet.NewAmountFromUint64(100).ToScalar()
	share.Balances[1].Mint = base.ToScalar()
	share.Balances[1].Amount = wallet.NewAmountFromUint64(500).ToScalar()
	share.Orders[0].Amount = wallet.NewAmountFromUint64(100).ToScalar()

	boundedWire := BoundedMatchResultWire{
		QuoteMint:     quote,
		BaseMint:      base,
		Price:         wallet.FixedPointFromFloat(0.5),
		MinBaseAmount: *uint256.NewInt(10),
		MaxBaseAmount: *uint256.NewInt(100),
		Direction:     true,
	}
	ratesWire := FeeTakeRateWire{
		RelayerFeeRate:  wallet.FixedPointFromFloat(0.05),
		ProtocolFeeRate: wallet.FixedPointFromFloat(0.05),
	}
	indicesWire := OrderSettlementIndicesWire{BalanceSend: 1, BalanceReceive: 0, Order: 0}

	call := ProcessMalleableAtomicMatchSettleCall{
		ValidMatchSettleStatement: ValidMalleableMatchSettleAtomicStatement{
			InternalPartyPublicShares: limbsFromShare(t, share),
			MatchResult:               boundedWire,
			InternalFeeRates:          ratesWire,
		},
		BaseAmount: *uint256.NewInt(40),
		InternalPartyMatchPayload: MatchPayload{
			ValidCommitmentsStatement: ValidCommitmentsStatement{Indices: indicesWire},
		},
	}

	parsed, err := ParseSharesFromProcessMalleableAtomicMatchSettle(call)
	require.NoError(t, err)

	// Independently apply the same match to the same pre-match share.
	expected := share
	err = matchresult.ApplyMalleableMatchResultToShare(
		&expected,
		wallet.NewAmountFromUint64(40),
		matchresult.OrderSettlementIndices{BalanceSend: 1, BalanceReceive: 0, Order: 0},
		matchresult.BoundedMatchResult{
			QuoteMint:     quote,
			BaseMint:      base,
			Price:         wallet.FixedPointFromFloat(0.5),
			MinBaseAmount: wallet.NewAmountFromUint64(10),
			MaxBaseAmount: wallet.NewAmountFromUint64(100),
			Direction:     true,
		},
		fees.FeeTakeRate{
			RelayerFeeRate:  wallet.FixedPointFromFloat(0.05),
			ProtocolFeeRate: wallet.FixedPointFromFloat(0.05),
		},
	)
	require.NoError(t, err)

	assert.True(t, parsed.Balances[1].Amount.Equal(&expected.Balances[1].Amount))
	assert.True(t, parsed.Balances[0].Amount.Equal(&expected.Balances[0].Amount))
	assert.True(t, parsed.Balances[0].RelayerFeeBalance.Equal(&expected.Balances[0].RelayerFeeBalance))
	assert.True(t, parsed.Balances[0].ProtocolFeeBalance.Equal(&expected.Balances[0].ProtocolFeeBalance))
	assert.True(t, parsed.Orders[0].Amount.Equal(&expected.Orders[0].Amount))
}
