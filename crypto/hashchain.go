package crypto

import "github.com/consensys/gnark-crypto/ecc/bn254/fr"

// EvaluateHashChain evaluates a length-`length` hash chain seeded by `seed`, returning
// the chain's outputs in order. Wallet reblinding calls this twice: seeded by the
// second-to-last private share to derive the new private shares, and seeded by the
// previous blinder's private share to derive the new blinder and its private share,
// so both the sender and receiver of a reblinded wallet arrive at the same new
// shares without exchanging fresh randomness.
func EvaluateHashChain(seed fr.Element, length int) []fr.Element {
	csprng := NewPoseidonCSPRNG(seed)
	return csprng.NextN(length)
}
