package crypto

import "github.com/consensys/gnark-crypto/ecc/bn254/fr"

// PoseidonCSPRNG is a deterministic stream of field elements derived from a seed by
// repeatedly squeezing a Poseidon2 sponge. Wallet reblinding uses this to derive new
// secret shares and a new blinder from the previous wallet's private share stream
// without an interactive exchange of randomness between the two parties holding a
// wallet's shares.
type PoseidonCSPRNG struct {
	sponge *Poseidon2Sponge
}

// NewPoseidonCSPRNG seeds a new CSPRNG from a single field element.
func NewPoseidonCSPRNG(seed fr.Element) *PoseidonCSPRNG {
	sponge := NewPoseidon2Sponge()
	// Absorb cannot fail on a freshly constructed sponge.
	_ = sponge.Absorb(seed)
	return &PoseidonCSPRNG{sponge: sponge}
}

// Next squeezes the next field element out of the stream.
func (c *PoseidonCSPRNG) Next() fr.Element {
	return c.sponge.Squeeze()
}

// NextN squeezes the next n field elements out of the stream, in order.
func (c *PoseidonCSPRNG) NextN(n int) []fr.Element {
	out := make([]fr.Element, n)
	for i := 0; i < n; i++ {
		out[i] = c.sponge.Squeeze()
	}
	return out
}
