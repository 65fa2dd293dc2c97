// Package compare assigns the two result sets to blind left/right slots and
// gates the one vote allowed per comparison.
package compare

import (
	"fmt"
	"math/rand/v2"

	"github.com/cloo-solutions/khub/internal/domain"
)

// Side is the random arrangement of a comparison. Its integer value is what
// gets persisted.
type Side int

const (
	SideGraphLeft Side = iota
	SideDocumentLeft
)

func (s Side) String() string {
	switch s {
	case SideGraphLeft:
		return "graph-left"
	case SideDocumentLeft:
		return "document-left"
	default:
		return fmt.Sprintf("Side(%d)", int(s))
	}
}

// Slot is a display position.
type Slot string

const (
	SlotLeft  Slot = "left"
	SlotRight Slot = "right"
)

func ParseSlot(value string) (Slot, error) {
	switch Slot(value) {
	case SlotLeft, SlotRight:
		return Slot(value), nil
	}
	return "", fmt.Errorf("%w: %q", domain.ErrInvalidSlot, value)
}

// slotSources is the only place slots are resolved to sources.
var slotSources = map[Side]map[Slot]domain.Source{
	SideGraphLeft: {
		SlotLeft:  domain.SourceGraph,
		SlotRight: domain.SourceDocument,
	},
	SideDocumentLeft: {
		SlotLeft:  domain.SourceDocument,
		SlotRight: domain.SourceGraph,
	},
}

// SourceFor returns the backend shown in slot.
func (s Side) SourceFor(slot Slot) domain.Source {
	return slotSources[s][slot]
}

// Coin returns an unweighted random bit.
type Coin func() bool

// RandomCoin flips a fair coin.
func RandomCoin() bool {
	return rand.IntN(2) == 0
}

// PickSide chooses the arrangement for a new comparison.
func PickSide(coin Coin) Side {
	if coin() {
		return SideDocumentLeft
	}
	return SideGraphLeft
}

// PickSource chooses the backend for a single-source query.
func PickSource(coin Coin) domain.Source {
	if coin() {
		return domain.SourceDocument
	}
	return domain.SourceGraph
}
