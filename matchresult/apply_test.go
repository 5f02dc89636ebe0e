package matchresult

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/renegade-fi/wallet-engine/fees"
	"github.com/renegade-fi/wallet-engine/wallet"
)

func TestApplyMatchToShare(t *testing.T) {
	quote, base := testMints()

	keys := wallet.PublicKeychain{}
	share, err := wallet.EmptyWalletShare(keys)
	require.NoError(t, err)

	share.Balances[0].Mint = quote.ToScalar()
	share.Balances[0].Amount = wallet.NewAmountFromUint64(1000).ToScalar()
	share.Balances[1].Mint = base.ToScalar()
	share.Balances[1].Amount = wallet.NewAmountFromUint64(0).ToScalar()
	share.Orders[0].Amount = wallet.NewAmountFromUint64(10).ToScalar()

	match := MatchResult{
		QuoteMint:   quote,
		BaseMint:    base,
		QuoteAmount: wallet.NewAmountFromUint64(1000),
		BaseAmount:  wallet.NewAmountFromUint64(10),
	}
	feeTake := fees.FeeTake{
		RelayerFee:  wallet.NewAmountFromUint64(1),
		ProtocolFee: wallet.NewAmountFromUint64(1),
	}
	indices := OrderSettlementIndices{BalanceSend: 0, BalanceReceive: 1, Order: 0}

	err = ApplyMatchToShare(&share, indices, feeTake, match, wallet.Buy)
	require.NoError(t, err)

	sendAmt, err := wallet.AmountFromScalar(share.Balances[0].Amount)
	require.NoError(t, err)
	require.Equal(t, 0, sendAmt.Cmp(wallet.NewAmountFromUint64(0)))

	recvAmt, err := wallet.AmountFromScalar(share.Balances[1].Amount)
	require.NoError(t, err)
	require.Equal(t, 0, recvAmt.Cmp(wallet.NewAmountFromUint64(8)))

	relayerFee, err := wallet.AmountFromScalar(share.Balances[1].RelayerFeeBalance)
	require.NoError(t, err)
	require.Equal(t, 0, relayerFee.Cmp(wallet.NewAmountFromUint64(1)))

	orderAmt, err := wallet.AmountFromScalar(share.Orders[0].Amount)
	require.NoError(t, err)
	require.Equal(t, 0, orderAmt.Cmp(wallet.NewAmountFromUint64(0)))
}

// TestApplyMalleableMatchResultToShare fixes a bounded match at a concrete
// base amount and checks every slot the application touches: with price 0.5
// and base 40 the quote owed is exactly 20, the fees are computed on the
// internal party's receive amount, and the order is decremented by the base
// traded.
func TestApplyMalleableMatchResultToShare(t *testing.T) {
	quote, base := testMints()

	share, err := wallet.EmptyWalletShare(wallet.PublicKeychain{})
	require.NoError(t, err)

	share.Balances[0].Mint = quote.ToScalar()
	share.Balances[0].Amount = wallet.NewAmountFromUint64(100).ToScalar()
	share.Balances[1].Mint = base.ToScalar()
	share.Balances[1].Amount = wallet.NewAmountFromUint64(500).ToScalar()
	share.Orders[0].Amount = wallet.NewAmountFromUint64(100).ToScalar()

	bounded := BoundedMatchResult{
		QuoteMint:     quote,
		BaseMint:      base,
		Price:         wallet.FixedPointFromFloat(0.5),
		MinBaseAmount: wallet.NewAmountFromUint64(10),
		MaxBaseAmount: wallet.NewAmountFromUint64(100),
		// The external party buys the base, so the internal party sells it
		Direction: true,
	}
	baseAmount := wallet.NewAmountFromUint64(40)

	require.Equal(t, 0, bounded.QuoteAmount(baseAmount).Cmp(wallet.NewAmountFromUint64(20)))
	recvMint, recvAmount := bounded.ExternalPartyReceive(baseAmount)
	assert.Equal(t, base, recvMint)
	require.Equal(t, 0, recvAmount.Cmp(baseAmount))
	externalResult := bounded.ToExternalMatchResult(baseAmount)
	assert.Equal(t, wallet.Sell, externalResult.InternalPartySide())

	// 5% each of the internal party's 20-token receive: 1 to the relayer, 1
	// to the protocol
	feeRates := fees.FeeTakeRate{
		RelayerFeeRate:  wallet.FixedPointFromFloat(0.05),
		ProtocolFeeRate: wallet.FixedPointFromFloat(0.05),
	}
	indices := OrderSettlementIndices{BalanceSend: 1, BalanceReceive: 0, Order: 0}

	err = ApplyMalleableMatchResultToShare(&share, baseAmount, indices, bounded, feeRates)
	require.NoError(t, err)

	baseBal, err := wallet.AmountFromScalar(share.Balances[1].Amount)
	require.NoError(t, err)
	require.Equal(t, 0, baseBal.Cmp(wallet.NewAmountFromUint64(460)))

	quoteBal, err := wallet.AmountFromScalar(share.Balances[0].Amount)
	require.NoError(t, err)
	require.Equal(t, 0, quoteBal.Cmp(wallet.NewAmountFromUint64(118)))

	relayerFee, err := wallet.AmountFromScalar(share.Balances[0].RelayerFeeBalance)
	require.NoError(t, err)
	require.Equal(t, 0, relayerFee.Cmp(wallet.NewAmountFromUint64(1)))

	protocolFee, err := wallet.AmountFromScalar(share.Balances[0].ProtocolFeeBalance)
	require.NoError(t, err)
	require.Equal(t, 0, protocolFee.Cmp(wallet.NewAmountFromUint64(1)))

	orderAmt, err := wallet.AmountFromScalar(share.Orders[0].Amount)
	require.NoError(t, err)
	require.Equal(t, 0, orderAmt.Cmp(wallet.NewAmountFromUint64(60)))
}
