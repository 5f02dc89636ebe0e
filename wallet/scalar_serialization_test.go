package wallet

import (
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/stretchr/testify/assert"
)

type nestedSerializeFixture struct {
	NestedScalar Scalar
	NestedUint64 Uint64
}

type serializeFixture struct {
	ScalarField  Scalar
	Uint64Field  Uint64
	NestedStruct nestedSerializeFixture
	ArrayField   [2]Scalar
}

func freshScalar(t *testing.T) Scalar {
	t.Helper()
	s, err := RandomScalar()
	assert.NoError(t, err)
	return s
}

func roundTrip(t *testing.T, value interface{}, expectedLen int) []Scalar {
	t.Helper()
	scalars, err := ToScalarsRecursive(value)
	assert.NoError(t, err)
	assert.Equal(t, expectedLen, len(scalars))
	return scalars
}

func TestScalarSerializeSingleValue(t *testing.T) {
	scalar := freshScalar(t)
	assert.Equal(t, 1, scalar.NumScalars())

	scalars, err := scalar.ToScalars()
	assert.NoError(t, err)
	assert.Equal(t, []Scalar{scalar}, scalars)

	var reconstructed Scalar
	assert.NoError(t, reconstructed.FromScalars(NewScalarIterator(scalars)))
	assert.Equal(t, scalar, reconstructed)
}

func TestScalarSerializeArray(t *testing.T) {
	original := [3]Scalar{freshScalar(t), freshScalar(t), freshScalar(t)}
	scalars := roundTrip(t, &original, 3)

	var reconstructed [3]Scalar
	assert.NoError(t, FromScalarsRecursive(&reconstructed, NewScalarIterator(scalars)))
	assert.Equal(t, original, reconstructed)
}

func TestScalarSerializeNestedStruct(t *testing.T) {
	original := nestedSerializeFixture{
		NestedScalar: freshScalar(t),
		NestedUint64: Uint64(42),
	}
	scalars := roundTrip(t, &original, 2)

	var reconstructed nestedSerializeFixture
	assert.NoError(t, FromScalarsRecursive(&reconstructed, NewScalarIterator(scalars)))
	assert.Equal(t, original, reconstructed)
}

func TestScalarSerializeDeeplyNestedStruct(t *testing.T) {
	original := serializeFixture{
		ScalarField: freshScalar(t),
		Uint64Field: Uint64(1),
		NestedStruct: nestedSerializeFixture{
			NestedScalar: freshScalar(t),
			NestedUint64: Uint64(2),
		},
		ArrayField: [2]Scalar{freshScalar(t), freshScalar(t)},
	}
	scalars := roundTrip(t, &original, 6)

	var reconstructed serializeFixture
	assert.NoError(t, FromScalarsRecursive(&reconstructed, NewScalarIterator(scalars)))
	assert.Equal(t, original, reconstructed)
}

func TestScalarIteratorExhaustion(t *testing.T) {
	it := NewScalarIterator([]Scalar{Scalar(fr.NewElement(1))})
	assert.Equal(t, 1, it.NumRemaining())

	_, err := it.Next()
	assert.NoError(t, err)
	assert.Equal(t, 0, it.NumRemaining())

	_, err = it.Next()
	assert.Error(t, err)
}
