package calldata

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/renegade-fi/wallet-engine/wallet"
)

func TestSerializeWithdrawalTransfer(t *testing.T) {
	mint, err := wallet.AddressFromHexString("0x1111111111111111111111111111111111111111")
	require.NoError(t, err)
	destination, err := wallet.AddressFromHexString("0x2222222222222222222222222222222222222222")
	require.NoError(t, err)

	encoded, err := SerializeWithdrawalTransfer(mint, wallet.NewAmountFromUint64(100), destination)
	require.NoError(t, err)

	// 20 bytes destination + 20 bytes mint + varint amount + withdraw flag byte
	assert.Greater(t, len(encoded), 40)
	assert.Equal(t, byte(1), encoded[len(encoded)-1])
}
