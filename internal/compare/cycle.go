package compare

import (
	"github.com/cloo-solutions/khub/internal/domain"
)

// Cycle is one query/compare round. Left and Right stay nil until the
// comparison resolves.
type Cycle struct {
	Query string                `json:"query"`
	Side  Side                  `json:"randomSide"`
	Left  []domain.SearchResult `json:"left"`
	Right []domain.SearchResult `json:"right"`
	Voted bool                  `json:"voted"`
}

// NewCycle arranges resolved outcomes according to side. The vote gate starts
// open.
func NewCycle(query string, side Side, outcomes map[domain.Source][]domain.SearchResult) Cycle {
	return Cycle{
		Query: query,
		Side:  side,
		Left:  outcomes[side.SourceFor(SlotLeft)],
		Right: outcomes[side.SourceFor(SlotRight)],
	}
}

// Resolved reports whether both slots have an outcome.
func (c Cycle) Resolved() bool {
	return c.Left != nil && c.Right != nil
}

// Size is the number of results across both slots, -1 while unresolved.
func (c Cycle) Size() int {
	if !c.Resolved() {
		return -1
	}
	return len(c.Left) + len(c.Right)
}

// Results returns the list shown in slot.
func (c Cycle) Results(slot Slot) []domain.SearchResult {
	if slot == SlotLeft {
		return c.Left
	}
	return c.Right
}

// CanVote reports whether the vote control is enabled.
func (c Cycle) CanVote() bool {
	return !c.Voted && c.Size() > 0
}

// Vote closes the gate and returns the source the user preferred. A second
// vote in the same cycle changes nothing and returns domain.ErrAlreadyVoted.
func (c *Cycle) Vote(slot Slot) (domain.Source, error) {
	if c.Voted {
		return "", domain.ErrAlreadyVoted
	}
	if c.Size() <= 0 {
		return "", domain.ErrNothingToVote
	}
	c.Voted = true
	return c.Side.SourceFor(slot), nil
}
