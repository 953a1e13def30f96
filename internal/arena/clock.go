package arena

import (
	"time"

	"gauntlet/internal/domain"
	"gauntlet/pkg/variant"
)

const minMoveBudget = 10 * time.Millisecond

// gameClock simulates a base+increment time control for both sides.
type gameClock struct {
	remaining [2]time.Duration
	increment time.Duration
}

func newGameClock(tc domain.TimeControl) *gameClock {
	if !tc.Clocked() {
		return nil
	}
	var c = &gameClock{increment: tc.Increment}
	c.remaining[variant.White] = tc.Base
	c.remaining[variant.Black] = tc.Base
	return c
}

// budget suggests how long the side should think: a twentieth of its bank
// plus half the increment, never below the floor.
func (c *gameClock) budget(side variant.Color) time.Duration {
	var b = c.remaining[side]/20 + c.increment/2
	if b < minMoveBudget {
		b = minMoveBudget
	}
	return b
}

// charge subtracts the time a move actually took. It reports a forfeit
// when the bank would go negative; otherwise the bank is floored at zero
// and the increment is credited.
func (c *gameClock) charge(side variant.Color, elapsed time.Duration) bool {
	c.remaining[side] -= elapsed
	if c.remaining[side] < 0 {
		c.remaining[side] = 0
		return true
	}
	c.remaining[side] += c.increment
	return false
}
