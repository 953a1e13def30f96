package arena

import "math"

// Stat summarizes a match from the new role's side.
// https://www.chessprogramming.org/Match_Statistics
type Stat struct {
	WinningFraction float64
	EloDifference   float64
	LOS             float64
}

func ComputeStat(wins, losses, draws int) Stat {
	var games = wins + losses + draws
	if games == 0 {
		return Stat{WinningFraction: 0.5}
	}
	var fraction = (float64(wins) + 0.5*float64(draws)) / float64(games)
	var elo = -math.Log(1/fraction-1) * 400 / math.Ln10
	var los = 0.5
	if wins+losses > 0 {
		los = 0.5 + 0.5*math.Erf(float64(wins-losses)/math.Sqrt(2*float64(wins+losses)))
	}
	return Stat{
		WinningFraction: fraction,
		EloDifference:   elo,
		LOS:             los,
	}
}
