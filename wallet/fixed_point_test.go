package wallet

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

// fixedPointTolerance bounds the acceptable round-trip error introduced by the
// fixed point's finite binary precision.
const fixedPointTolerance = 1e-10

func TestFixedPointFloatRoundTrip(t *testing.T) {
	original := rand.Float64() * 1000

	fp := FixedPointFromFloat(original)
	recovered := fp.ToFloat()

	assert.InDelta(t, original, recovered, fixedPointTolerance)
}

func TestFixedPointZero(t *testing.T) {
	fp := ZeroFixedPoint()
	assert.Equal(t, 0.0, fp.ToFloat())
	assert.True(t, math.Abs(fp.ToFloat()) < fixedPointTolerance)
}
