package engine

import (
	"math"
	"time"
)

// TimeManager computes an absolute deadline for the current move from the
// remaining clock, increment, moves-to-go and game phase.
type TimeManager struct {
	start    time.Time
	deadline time.Time
	fixed    bool
}

// Start computes the allocation and latches the absolute deadline.
// remainingMs/incMs are the mover's clock; movesToGo is 0 if unknown;
// phase is the game-phase counter in [0,256]. fixedMoveMs, if
// positive, overrides the formula with a literal per-move budget.
func (tm *TimeManager) Start(now time.Time, remainingMs, incMs int64, movesToGo, phase int, fixedMoveMs int64) {
	tm.start = now
	if fixedMoveMs > 0 {
		tm.fixed = true
		tm.deadline = now.Add(time.Duration(fixedMoveMs) * time.Millisecond)
		return
	}
	tm.fixed = false

	budget := remainingMs
	var allocationMs float64

	if movesToGo == 1 {
		secs := float64(remainingMs) / 1000
		allocationMs = float64(remainingMs) * math.Pow(secs, 1.1) / math.Pow(secs+1, 1.1)
	} else {
		m := 40
		if movesToGo > 0 && movesToGo < 40 {
			m = movesToGo
		}
		divisor := float64(m*(256-phase)+8*phase) / 256
		if divisor < 1 {
			divisor = 1
		}
		allocationMs = float64(budget) / divisor
	}

	if allocationMs < 1 {
		allocationMs = 1
	}
	tm.deadline = now.Add(time.Duration(allocationMs) * time.Millisecond)
}

func (tm *TimeManager) Expired(now time.Time) bool { return !now.Before(tm.deadline) }

func (tm *TimeManager) ElapsedMillis(now time.Time) int64 { return now.Sub(tm.start).Milliseconds() }
