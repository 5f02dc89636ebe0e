// Package config holds process-wide configuration. The task driver threads a
// single ProtocolConfig through every task's context rather than reading a
// global accessor, so the protocol's signing/fee keys have one clear
// construction point at process startup and one clear teardown point at
// shutdown.
package config

import (
	"github.com/renegade-fi/wallet-engine/wallet"
)

// FeeKeyPair is the relayer's (or protocol's) fee encryption keypair. SecretKey is
// nil when only the public half is known, mirroring the Rust decryption_key being
// an Option: a relayer can hold a wallet's fees without yet having provisioned the
// key material needed to redeem them.
type FeeKeyPair struct {
	PublicKey wallet.FeeEncryptionKey
	SecretKey *wallet.Scalar
}

// HasSecretKey reports whether this key pair can decrypt (and thus redeem) notes
// encrypted under its public key.
func (k *FeeKeyPair) HasSecretKey() bool {
	return k.SecretKey != nil
}

// ProtocolConfig is the process-wide configuration threaded through every
// task's context: a single dependency-injected struct rather than per-call
// constructor arguments or a global key accessor.
type ProtocolConfig struct {
	// ChainID is the chain the darkpool contract is deployed on
	ChainID uint64
	// ProtocolKey is the protocol's fee encryption public key, used to encrypt
	// protocol-fee notes produced by PayOfflineFeeTask
	ProtocolKey wallet.FeeEncryptionKey
	// ProtocolFeeRate is the fixed-point fraction of a match's receive amount owed
	// to the protocol
	ProtocolFeeRate wallet.FixedPoint
	// DefaultRelayerFeeRate is the fixed-point fraction of a match's receive
	// amount owed to the managing relayer cluster, absent a per-wallet override
	DefaultRelayerFeeRate wallet.FixedPoint
	// AutoRedeemFees records the auto-redeem policy the process was started
	// with. PayOfflineFeeTask does not read this field; it takes the policy
	// from statestore.Store.GetAutoRedeemFees
	AutoRedeemFees bool
}

// New constructs a ProtocolConfig, the single point at which process-wide protocol
// keys are loaded for the lifetime of the process.
func New(
	chainID uint64,
	protocolKey wallet.FeeEncryptionKey,
	protocolFeeRate wallet.FixedPoint,
	defaultRelayerFeeRate wallet.FixedPoint,
	autoRedeemFees bool,
) *ProtocolConfig {
	return &ProtocolConfig{
		ChainID:               chainID,
		ProtocolKey:           protocolKey,
		ProtocolFeeRate:       protocolFeeRate,
		DefaultRelayerFeeRate: defaultRelayerFeeRate,
		AutoRedeemFees:        autoRedeemFees,
	}
}
