package task

import (
	"crypto/ecdsa"
	"crypto/rand"
	"testing"

	"github.com/ethereum/go-ethereum/crypto/secp256k1"
	"github.com/stretchr/testify/require"

	"github.com/renegade-fi/wallet-engine/config"
	"github.com/renegade-fi/wallet-engine/networkqueue"
	"github.com/renegade-fi/wallet-engine/wallet"
)

// fakeQueue records every message published to it, standing in for a real
// networkqueue.Hub in tests.
type fakeQueue struct {
	messages []networkqueue.Message
}

func (q *fakeQueue) Publish(msg networkqueue.Message) {
	q.messages = append(q.messages, msg)
}

var _ networkqueue.Queue = (*fakeQueue)(nil)

// newTestWallet constructs an empty wallet under a freshly generated key, the
// way wallet_test.go's own TestNewEmptyWalletFromEthKey does.
func newTestWallet(t *testing.T) *wallet.Wallet {
	t.Helper()

	privateKey, err := ecdsa.GenerateKey(secp256k1.S256(), rand.Reader)
	require.NoError(t, err)

	w, err := wallet.NewEmptyWallet(privateKey, 1 /* chainId */)
	require.NoError(t, err)

	return w
}

// testMint returns a distinct token address for use as a balance's mint in tests.
func testMint(b byte) wallet.Address {
	var addr wallet.Address
	addr[19] = b
	return addr
}

// testConfig returns a ProtocolConfig with zero fee rates, suitable for tests
// that don't exercise fee computation directly.
func testConfig() *config.ProtocolConfig {
	return config.New(1 /* chainID */, wallet.FeeEncryptionKey{}, wallet.ZeroFixedPoint(), wallet.ZeroFixedPoint(), false)
}
