package wallet

import (
	"math/big"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScalarLimbRoundTrip(t *testing.T) {
	limit := new(big.Int).Lsh(big.NewInt(1), 256)
	r := rand.New(rand.NewSource(0))
	original := new(big.Int).Rand(r, limit)

	limbs := bigIntToScalarLimbs(*original)
	recovered := scalarLimbsToBigInt(limbs)

	assert.Equal(t, 0, original.Cmp(recovered), "limb round trip changed value: original %v, recovered %v", original, recovered)
}

func TestScalarLimbRoundTripZero(t *testing.T) {
	var zero big.Int
	limbs := bigIntToScalarLimbs(zero)
	recovered := scalarLimbsToBigInt(limbs)

	assert.Equal(t, 0, zero.Cmp(recovered))
}
