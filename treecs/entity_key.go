package treecs

import "fmt"

// EntityKey encodes both the slot generation (upper 32 bits) and the slot index (lower 32 bits).
// Generations start at 1, so the zero key never refers to a live entity.
type EntityKey uint64

// NewEntityKey creates an EntityKey from a generation and a slot index
func NewEntityKey(generation uint32, index uint32) EntityKey {
	return EntityKey(uint64(generation)<<32 | uint64(index))
}

// Generation extracts the slot generation from the key
func (k EntityKey) Generation() uint32 {
	return uint32(k >> 32)
}

// Index extracts the slot index from the key
func (k EntityKey) Index() uint32 {
	return uint32(k & 0xFFFFFFFF)
}

// IsZero reports whether k is the zero key.
func (k EntityKey) IsZero() bool {
	return k == 0
}

func (k EntityKey) String() string {
	return fmt.Sprintf("%dv%d", k.Index(), k.Generation())
}
