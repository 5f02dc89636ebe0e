package matchresult

import (
	"fmt"

	"github.com/renegade-fi/wallet-engine/fees"
	"github.com/renegade-fi/wallet-engine/wallet"
)

// ApplyMatchToShare applies a match's effects to one party's wallet share in
// place: debiting the send balance by the matched send amount, crediting the
// receive balance by the matched receive amount net of the relayer/protocol fee
// take, accruing those fees onto the receive balance, and reducing the matched
// order's remaining amount by the base amount traded.
// The mutation is pure field arithmetic on the share's slots, never a
// bounds-checked Amount conversion: the same routine runs against cleartext
// shares (a task updating its own wallet) and against blinded public shares
// extracted from calldata, whose slots are full-width field elements.
func ApplyMatchToShare(
	share *wallet.WalletShare,
	indices OrderSettlementIndices,
	feeTake fees.FeeTake,
	match MatchResult,
	side wallet.OrderSide,
) error {
	_, sendAmount := match.SendMintAmount(side)
	_, receiveAmount := match.ReceiveMintAmount(side)

	totalFee := feeTake.Total()
	if totalFee.Cmp(receiveAmount) > 0 {
		return fmt.Errorf(
			"fee take %s exceeds receive amount %s", totalFee.String(), receiveAmount.String(),
		)
	}
	netReceive := receiveAmount.Sub(totalFee)

	sendBalance := &share.Balances[indices.BalanceSend]
	sendBalance.Amount = sendBalance.Amount.Sub(sendAmount.ToScalar())

	recvBalance := &share.Balances[indices.BalanceReceive]
	recvBalance.Amount = recvBalance.Amount.Add(netReceive.ToScalar())
	recvBalance.RelayerFeeBalance = recvBalance.RelayerFeeBalance.Add(feeTake.RelayerFee.ToScalar())
	recvBalance.ProtocolFeeBalance = recvBalance.ProtocolFeeBalance.Add(feeTake.ProtocolFee.ToScalar())

	order := &share.Orders[indices.Order]
	order.Amount = order.Amount.Sub(match.BaseAmount.ToScalar())

	return nil
}

// ApplyMalleableMatchResultToShare applies a malleable atomic match to a wallet
// share once the external party has chosen a concrete base amount within the
// bounded match's range: it fixes the bounded match at baseAmount, computes the
// fee due on what the external party sends, and applies the resulting match to
// the internal party's share.
func ApplyMalleableMatchResultToShare(
	share *wallet.WalletShare,
	baseAmount wallet.Amount,
	indices OrderSettlementIndices,
	bounded BoundedMatchResult,
	feeRates fees.FeeTakeRate,
) error {
	externalMatch := bounded.ToExternalMatchResult(baseAmount)
	matchRes := externalMatch.ToMatchResult()

	_, recvAmount := externalMatch.ExternalPartySend()
	feeTake := feeRates.ComputeFeeTake(recvAmount)

	side := externalMatch.InternalPartySide()
	return ApplyMatchToShare(share, indices, feeTake, matchRes, side)
}
