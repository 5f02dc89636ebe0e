// Package contractclient models the darkpool contract as an external
// collaborator: a typed client surface over its ten settlement entry points.
// Calldata arrives pre-assembled; EthClient signs it into a transaction and
// sends it over JSON-RPC, and FakeClient stands in for a chain in tests.
package contractclient

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	gethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/renegade-fi/wallet-engine/wallet"
)

// TxReceipt is the subset of an on-chain transaction receipt a task needs in
// order to find the merkle opening its new wallet share was inserted at.
type TxReceipt struct {
	TxHash      [32]byte
	BlockNumber uint64
}

// SubmissionError wraps a failed contract call. It is retryable: a dropped
// transaction or a transient RPC failure does not mean the underlying wallet
// update is invalid, only that this attempt to land it did not succeed.
type SubmissionError struct {
	Entrypoint string
	Err        error
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("darkpool submission to %s failed: %v", e.Entrypoint, e.Err)
}

func (e *SubmissionError) Unwrap() error {
	return e.Err
}

// Retryable reports that a submission failure may succeed on a later attempt.
func (e *SubmissionError) Retryable() bool {
	return true
}

func newSubmissionError(entrypoint string, err error) error {
	return &SubmissionError{Entrypoint: entrypoint, Err: err}
}

// Client is the darkpool contract's ten settlement entry points, one method
// per calldata.*Call type the calldata package knows how to decode. Each
// method accepts pre-assembled calldata bytes (the proof system's job, not
// this package's) and returns the receipt once the transaction lands.
type Client interface {
	NewWallet(ctx context.Context, calldata []byte) (TxReceipt, error)
	UpdateWallet(ctx context.Context, calldata []byte) (TxReceipt, error)
	ProcessMatchSettle(ctx context.Context, calldata []byte) (TxReceipt, error)
	ProcessAtomicMatchSettle(ctx context.Context, calldata []byte) (TxReceipt, error)
	ProcessAtomicMatchSettleWithReceiver(ctx context.Context, calldata []byte) (TxReceipt, error)
	ProcessMalleableAtomicMatchSettle(ctx context.Context, calldata []byte) (TxReceipt, error)
	ProcessMalleableAtomicMatchSettleWithReceiver(ctx context.Context, calldata []byte) (TxReceipt, error)
	SettleOnlineRelayerFee(ctx context.Context, calldata []byte) (TxReceipt, error)
	SettleOfflineFee(ctx context.Context, calldata []byte) (TxReceipt, error)
	RedeemFee(ctx context.Context, calldata []byte) (TxReceipt, error)

	// FindMerklePath locates the merkle opening a wallet's new share commitment
	// was inserted at following a settled transaction.
	FindMerklePath(ctx context.Context, commitment wallet.Commitment, receipt TxReceipt) (wallet.MerkleOpening, error)
}

// EthClient is a Client backed by a real JSON-RPC node, submitting each
// entry point as a signed dynamic-fee transaction.
type EthClient struct {
	rpc        *ethclient.Client
	darkpool   common.Address
	chainID    *big.Int
	signingKey *ecdsa.PrivateKey
}

// NewEthClient dials rpcURL and constructs an EthClient submitting transactions
// to the darkpool contract at darkpoolAddress, signed by signingKey.
func NewEthClient(
	ctx context.Context,
	rpcURL string,
	darkpoolAddress common.Address,
	chainID uint64,
	signingKey *ecdsa.PrivateKey,
) (*EthClient, error) {
	rpc, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, fmt.Errorf("failed to dial rpc: %w", err)
	}

	return &EthClient{
		rpc:        rpc,
		darkpool:   darkpoolAddress,
		chainID:    new(big.Int).SetUint64(chainID),
		signingKey: signingKey,
	}, nil
}

func (c *EthClient) submit(ctx context.Context, entrypoint string, calldata []byte) (TxReceipt, error) {
	from := gethcrypto.PubkeyToAddress(c.signingKey.PublicKey)

	gasPrice, err := c.rpc.SuggestGasPrice(ctx)
	if err != nil {
		return TxReceipt{}, newSubmissionError(entrypoint, err)
	}
	nonce, err := c.rpc.PendingNonceAt(ctx, from)
	if err != nil {
		return TxReceipt{}, newSubmissionError(entrypoint, err)
	}

	tx := types.NewTx(&types.DynamicFeeTx{
		ChainID:   c.chainID,
		Nonce:     nonce,
		GasTipCap: gasPrice,
		GasFeeCap: new(big.Int).Mul(gasPrice, big.NewInt(2)),
		Gas:       10_000_000,
		To:        &c.darkpool,
		Data:      calldata,
	})

	signer := types.LatestSignerForChainID(c.chainID)
	signedTx, err := types.SignTx(tx, signer, c.signingKey)
	if err != nil {
		return TxReceipt{}, newSubmissionError(entrypoint, err)
	}

	if err := c.rpc.SendTransaction(ctx, signedTx); err != nil {
		return TxReceipt{}, newSubmissionError(entrypoint, err)
	}

	receipt, err := c.rpc.TransactionReceipt(ctx, signedTx.Hash())
	for errors.Is(err, ethereum.NotFound) {
		select {
		case <-ctx.Done():
			return TxReceipt{}, newSubmissionError(entrypoint, ctx.Err())
		case <-time.After(time.Second):
		}
		receipt, err = c.rpc.TransactionReceipt(ctx, signedTx.Hash())
	}
	if err != nil {
		return TxReceipt{}, newSubmissionError(entrypoint, err)
	}

	return TxReceipt{
		TxHash:      signedTx.Hash(),
		BlockNumber: receipt.BlockNumber.Uint64(),
	}, nil
}

func (c *EthClient) NewWallet(ctx context.Context, calldata []byte) (TxReceipt, error) {
	return c.submit(ctx, "newWallet", calldata)
}

func (c *EthClient) UpdateWallet(ctx context.Context, calldata []byte) (TxReceipt, error) {
	return c.submit(ctx, "updateWallet", calldata)
}

func (c *EthClient) ProcessMatchSettle(ctx context.Context, calldata []byte) (TxReceipt, error) {
	return c.submit(ctx, "processMatchSettle", calldata)
}

func (c *EthClient) ProcessAtomicMatchSettle(ctx context.Context, calldata []byte) (TxReceipt, error) {
	return c.submit(ctx, "processAtomicMatchSettle", calldata)
}

func (c *EthClient) ProcessAtomicMatchSettleWithReceiver(ctx context.Context, calldata []byte) (TxReceipt, error) {
	return c.submit(ctx, "processAtomicMatchSettleWithReceiver", calldata)
}

func (c *EthClient) ProcessMalleableAtomicMatchSettle(ctx context.Context, calldata []byte) (TxReceipt, error) {
	return c.submit(ctx, "processMalleableAtomicMatchSettle", calldata)
}

func (c *EthClient) ProcessMalleableAtomicMatchSettleWithReceiver(ctx context.Context, calldata []byte) (TxReceipt, error) {
	return c.submit(ctx, "processMalleableAtomicMatchSettleWithReceiver", calldata)
}

func (c *EthClient) SettleOnlineRelayerFee(ctx context.Context, calldata []byte) (TxReceipt, error) {
	return c.submit(ctx, "settleOnlineRelayerFee", calldata)
}

func (c *EthClient) SettleOfflineFee(ctx context.Context, calldata []byte) (TxReceipt, error) {
	return c.submit(ctx, "settleOfflineFee", calldata)
}

func (c *EthClient) RedeemFee(ctx context.Context, calldata []byte) (TxReceipt, error) {
	return c.submit(ctx, "redeemFee", calldata)
}

// FindMerklePath does not look anything up: decoding the darkpool's Merkle
// insertion events depends on the darkpool's ABI, which this client does not
// carry, so it always returns an error and never an opening.
func (c *EthClient) FindMerklePath(
	_ context.Context,
	_ wallet.Commitment,
	_ TxReceipt,
) (wallet.MerkleOpening, error) {
	return wallet.MerkleOpening{}, fmt.Errorf("FindMerklePath requires a darkpool indexer, not available to this client")
}

// FakeClient is an in-memory Client used in tests and in the absence of a live
// darkpool deployment. It never fails and returns a monotonically increasing
// fake block/tx hash per call, along with a caller-supplied merkle opening.
type FakeClient struct {
	nextBlock uint64
	Openings  map[wallet.Commitment]wallet.MerkleOpening
}

// NewFakeClient constructs a FakeClient with an empty opening table.
func NewFakeClient() *FakeClient {
	return &FakeClient{
		nextBlock: 1,
		Openings:  make(map[wallet.Commitment]wallet.MerkleOpening),
	}
}

func (f *FakeClient) fakeReceipt() TxReceipt {
	block := f.nextBlock
	f.nextBlock++

	var hash [32]byte
	hash[0] = byte(block)
	hash[1] = byte(block >> 8)
	return TxReceipt{TxHash: hash, BlockNumber: block}
}

func (f *FakeClient) NewWallet(context.Context, []byte) (TxReceipt, error) { return f.fakeReceipt(), nil }
func (f *FakeClient) UpdateWallet(context.Context, []byte) (TxReceipt, error) {
	return f.fakeReceipt(), nil
}
func (f *FakeClient) ProcessMatchSettle(context.Context, []byte) (TxReceipt, error) {
	return f.fakeReceipt(), nil
}
func (f *FakeClient) ProcessAtomicMatchSettle(context.Context, []byte) (TxReceipt, error) {
	return f.fakeReceipt(), nil
}
func (f *FakeClient) ProcessAtomicMatchSettleWithReceiver(context.Context, []byte) (TxReceipt, error) {
	return f.fakeReceipt(), nil
}
func (f *FakeClient) ProcessMalleableAtomicMatchSettle(context.Context, []byte) (TxReceipt, error) {
	return f.fakeReceipt(), nil
}
func (f *FakeClient) ProcessMalleableAtomicMatchSettleWithReceiver(context.Context, []byte) (TxReceipt, error) {
	return f.fakeReceipt(), nil
}
func (f *FakeClient) SettleOnlineRelayerFee(context.Context, []byte) (TxReceipt, error) {
	return f.fakeReceipt(), nil
}
func (f *FakeClient) SettleOfflineFee(context.Context, []byte) (TxReceipt, error) {
	return f.fakeReceipt(), nil
}
func (f *FakeClient) RedeemFee(context.Context, []byte) (TxReceipt, error) {
	return f.fakeReceipt(), nil
}

// FindMerklePath returns the opening registered for commitment, or a zero
// opening if none was registered (most unit tests only need a non-error path).
func (f *FakeClient) FindMerklePath(
	_ context.Context,
	commitment wallet.Commitment,
	_ TxReceipt,
) (wallet.MerkleOpening, error) {
	return f.Openings[commitment], nil
}

var (
	_ Client = (*EthClient)(nil)
	_ Client = (*FakeClient)(nil)
)
