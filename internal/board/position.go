package board

import (
	"time"

	"github.com/weekplan/weekplan/internal/domain"
)

// tailStride is the gap left past the highest position when a task is dropped
// at the end of a group, so later tail inserts keep room below them.
const tailStride = 1000

// nowMillis is swapped out in tests.
var nowMillis = func() float64 {
	return float64(time.Now().UnixMilli())
}

// PositionFor computes the fractional sort key for the task at idx in group.
// group must be the destination (workspace, column) sequence after the moved
// task has been provisionally relocated into it, sorted in display order.
//
// The codec never touches neighbor positions: a fresh key is derived from the
// gap around idx, which keeps every insert O(1) at the cost of shrinking
// float64 gaps. Repeated inserts at the same boundary eventually collapse two
// keys to the same value; sort order then falls back to array order. No
// rebalancing pass exists.
func PositionFor(group []*domain.Task, idx int) float64 {
	switch {
	case len(group) == 1:
		// Only member of the group: any fresh, growing value works.
		return nowMillis()
	case idx == 0:
		return group[1].Position / 2
	case idx == len(group)-1:
		return group[idx-1].Position + tailStride
	default:
		return (group[idx-1].Position + group[idx+1].Position) / 2
	}
}
