package arena

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"gauntlet/internal/domain"
	"gauntlet/pkg/variant"
)

func TestClockBudget(t *testing.T) {
	var c = newGameClock(domain.TimeControl{Base: 10 * time.Second, Increment: time.Second})
	require.Equal(t, time.Second, c.budget(variant.White))

	c = newGameClock(domain.TimeControl{Base: 100 * time.Millisecond})
	require.Equal(t, minMoveBudget, c.budget(variant.White), "budget never drops below the floor")
}

func TestClockCharge(t *testing.T) {
	var c = newGameClock(domain.TimeControl{Base: 100 * time.Millisecond, Increment: 20 * time.Millisecond})

	require.False(t, c.charge(variant.White, 50*time.Millisecond))
	require.Equal(t, 70*time.Millisecond, c.remaining[variant.White])
	require.Equal(t, 100*time.Millisecond, c.remaining[variant.Black], "sides keep separate banks")

	require.True(t, c.charge(variant.White, 80*time.Millisecond))
	require.Equal(t, time.Duration(0), c.remaining[variant.White], "an overdrawn bank is floored, not carried negative")

	require.False(t, c.charge(variant.Black, 100*time.Millisecond), "landing exactly on zero is not a forfeit")
	require.Equal(t, 20*time.Millisecond, c.remaining[variant.Black])
}

func TestClockOnlyForBaseControls(t *testing.T) {
	require.Nil(t, newGameClock(domain.TimeControl{MoveTime: 100 * time.Millisecond}))
	require.Nil(t, newGameClock(domain.TimeControl{}))
	require.NotNil(t, newGameClock(domain.TimeControl{Base: time.Second}))
}
