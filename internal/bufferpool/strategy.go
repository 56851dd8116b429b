package bufferpool

import "fmt"

// Strategy selects the replacement policy a Pool uses when it is full and
// needs to choose a victim frame.
type Strategy int

const (
	// FIFO evicts the frame that has been resident longest, but (per the
	// adopted ambiguity resolution in spec.md §9) refreshes a frame's
	// position in the queue on every access, not only on load — so it
	// behaves identically to LRU.
	FIFO Strategy = iota
	// LRU evicts the least-recently-accessed unpinned frame.
	LRU
	// LRUK is accepted for forward compatibility with the spec's
	// vocabulary but falls back to LRU: this module tracks only the most
	// recent access per frame, not a K-length history.
	LRUK
	// CLOCK evicts via the second-chance sweep of a circular hand.
	CLOCK
)

func (s Strategy) String() string {
	switch s {
	case FIFO:
		return "fifo"
	case LRU:
		return "lru"
	case LRUK:
		return "lru_k"
	case CLOCK:
		return "clock"
	default:
		return "unknown"
	}
}

// ParseStrategy parses the strategy names used in configuration files
// ("fifo", "lru", "lru_k", "clock") into a Strategy.
func ParseStrategy(s string) (Strategy, error) {
	switch s {
	case "fifo":
		return FIFO, nil
	case "lru":
		return LRU, nil
	case "lru_k", "lruk":
		return LRUK, nil
	case "clock":
		return CLOCK, nil
	default:
		return 0, fmt.Errorf("bufferpool: unknown strategy %q: %w", s, ErrInvalidRequest)
	}
}
