package docstore

// LockState is the encryption state of a store's artifacts.
type LockState int

const (
	// Unlocked means the artifacts hold plaintext and may be read and written.
	Unlocked LockState = iota
	// Locked means the artifacts hold ciphertext.
	Locked
)

func (s LockState) String() string {
	switch s {
	case Unlocked:
		return "unlocked"
	case Locked:
		return "locked"
	default:
		return "unknown"
	}
}
