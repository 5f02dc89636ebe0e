package crypto

import (
	"crypto/sha256"
	"encoding/binary"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

// Poseidon2 permutation parameters for the sponge in poseidon2.go.
// WIDTH is the number of field elements in the permutation state, split into
// a CAPACITY (never directly overwritten by absorbed/squeezed data) and a
// RATE (the portion absorbed into and squeezed from). R_F and R_P are the
// number of full and partial rounds respectively.
const (
	// WIDTH is the permutation state size
	WIDTH = 3
	// CAPACITY is the number of state elements reserved from absorb/squeeze
	CAPACITY = 1
	// RATE is the number of state elements absorbed/squeezed per permutation
	RATE = WIDTH - CAPACITY
	// R_F is the number of full rounds, split evenly before and after the partial rounds
	R_F = 8 //nolint:revive
	// R_P is the number of partial rounds
	R_P = 56 //nolint:revive
)

// FULL_ROUND_CONSTANTS holds the round constants added to every state element in a full round
var FULL_ROUND_CONSTANTS [R_F][WIDTH]fr.Element //nolint:revive

// PARTIAL_ROUND_CONSTANTS holds the round constant added to the first state element in a partial round
var PARTIAL_ROUND_CONSTANTS [R_P]fr.Element //nolint:revive

// roundConstantDomain separates this engine's round constant derivation from any other use of sha256
const roundConstantDomain = "renegade-wallet-engine/poseidon2/round-constant"

// deriveRoundConstant deterministically derives a round constant for a given round label and index.
//
// The reference Poseidon2 instantiation used on-chain ships its round constants as a fixed table;
// that table is not part of this engine's retrieval pack, and the engine does not need bit-exact
// interop with it (proof generation and on-chain verification are external collaborators per the
// design, reached only through ProofJob/contractclient.Client). What the engine does need is a stable,
// deterministic permutation so that two independent evaluations of reblind agree - this derivation
// gives that without fabricating a false claim of matching the real constant table.
func deriveRoundConstant(label string, index int) fr.Element {
	h := sha256.New()
	h.Write([]byte(roundConstantDomain))
	h.Write([]byte(label))

	var idxBytes [8]byte
	binary.BigEndian.PutUint64(idxBytes[:], uint64(index))
	h.Write(idxBytes[:])

	var elt fr.Element
	elt.SetBytes(h.Sum(nil))
	return elt
}

func init() {
	for r := 0; r < R_F; r++ {
		for i := 0; i < WIDTH; i++ {
			FULL_ROUND_CONSTANTS[r][i] = deriveRoundConstant("full", r*WIDTH+i)
		}
	}
	for r := 0; r < R_P; r++ {
		PARTIAL_ROUND_CONSTANTS[r] = deriveRoundConstant("partial", r)
	}
}
