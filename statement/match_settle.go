package statement

import (
	"github.com/renegade-fi/wallet-engine/matchresult"
	"github.com/renegade-fi/wallet-engine/wallet"
)

// MatchSettleStatement is the public-input side of a processMatchSettle call: the
// two parties' post-match public shares plus the match itself.
type MatchSettleStatement struct {
	Party0ModifiedShares wallet.WalletShare
	Party1ModifiedShares wallet.WalletShare
	Match                matchresult.MatchResult
}

// MatchSettleWitness is the private side of a processMatchSettle call for the local
// party only; the counterparty's witness is held by its own relayer and never
// observed here.
type MatchSettleWitness struct {
	Indices              matchresult.OrderSettlementIndices
	OriginalPublicShares wallet.WalletShare
	UpdatedPrivateShares wallet.WalletShare
}

// BuildMatchSettle assembles the caller's half of a two-party match settlement. The
// counterparty's ModifiedShares come from its own validity proof and are supplied by
// the caller once received over the network queue.
func BuildMatchSettle(
	localOriginalShare wallet.WalletShare,
	localUpdatedWallet *wallet.Wallet,
	counterpartyModifiedShares wallet.WalletShare,
	isParty0 bool,
	match matchresult.MatchResult,
	indices matchresult.OrderSettlementIndices,
) (MatchSettleStatement, MatchSettleWitness) {
	var statement MatchSettleStatement
	if isParty0 {
		statement = MatchSettleStatement{
			Party0ModifiedShares: localUpdatedWallet.BlindedPublicShares,
			Party1ModifiedShares: counterpartyModifiedShares,
			Match:                match,
		}
	} else {
		statement = MatchSettleStatement{
			Party0ModifiedShares: counterpartyModifiedShares,
			Party1ModifiedShares: localUpdatedWallet.BlindedPublicShares,
			Match:                match,
		}
	}

	witness := MatchSettleWitness{
		Indices:              indices,
		OriginalPublicShares: localOriginalShare,
		UpdatedPrivateShares: localUpdatedWallet.PrivateShares,
	}

	return statement, witness
}
