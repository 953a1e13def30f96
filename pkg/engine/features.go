package engine

import (
	"math"

	"gauntlet/pkg/variant"
)

// Tunable evaluation terms. Each name is one dataset feature and one tuner
// parameter; the value stored per sample is the White-minus-Black unit
// count for that term.
const (
	FeatRookBehindEnemy  = "rook_behind_enemy"
	FeatQueenBehindEnemy = "queen_behind_enemy"
	FeatRookOpenFile     = "rook_open_file"
	FeatRookSemiOpen     = "rook_semi_open"
	FeatBishopPair       = "bishop_pair"
	FeatBishopDiag       = "bishop_diag"
	FeatKnightCentrality = "knight_centrality"
	FeatKingTropism      = "king_tropism"
	FeatPawnShield       = "pawn_shield"
	FeatKingExposed      = "king_exposed"
	FeatCastleShelter    = "castle_shelter"
	FeatPawnAdvance      = "pawn_advance"
	FeatPawnCentral      = "pawn_central"
	FeatPassedPawn       = "passed_pawn"
	FeatPassedRank       = "passed_rank"
	FeatDoubledPawn      = "doubled_pawn"
	FeatIsolatedPawn     = "isolated_pawn"
	FeatDevelopment      = "development"
)

// Ranks beyond which a heavy piece counts as operating behind enemy lines.
const (
	whiteEnemyLine = 7
	blackEnemyLine = 2
)

// DefaultWeights is the evaluator's current tunable constants, the seed
// values the tuner starts from.
func DefaultWeights() map[string]float64 {
	return map[string]float64{
		FeatRookBehindEnemy:  30,
		FeatQueenBehindEnemy: 25,
		FeatRookOpenFile:     25,
		FeatRookSemiOpen:     15,
		FeatBishopPair:       30,
		FeatBishopDiag:       5,
		FeatKnightCentrality: 10,
		FeatKingTropism:      3,
		FeatPawnShield:       15,
		FeatKingExposed:      -15,
		FeatCastleShelter:    10,
		FeatPawnAdvance:      3,
		FeatPawnCentral:      5,
		FeatPassedPawn:       8,
		FeatPassedRank:       5,
		FeatDoubledPawn:      -3,
		FeatIsolatedPawn:     -2,
		FeatDevelopment:      5,
	}
}

// PieceValueFeature is the dataset feature carrying the net count of one
// piece type. These names form the tuner's structural denylist.
func PieceValueFeature(pt variant.PieceType) string {
	return pt.String() + "_value"
}

// PieceValueWeights maps every material feature to its fixed value.
func PieceValueWeights() map[string]float64 {
	w := make(map[string]float64)
	for pt := variant.Pawn; pt <= variant.Rose; pt++ {
		w[PieceValueFeature(pt)] = float64(variant.PieceValue(pt))
	}
	return w
}

// ScoringWeights builds the full map the evaluator scores with: fixed
// piece values, default tunables, then any overrides on top. Tunables
// missing from the overrides keep their defaults.
func ScoringWeights(overrides map[string]float64) map[string]float64 {
	w := PieceValueWeights()
	for name, v := range DefaultWeights() {
		w[name] = v
	}
	for name, v := range overrides {
		w[name] = v
	}
	return w
}

// KnownFeature reports whether name is a feature the evaluator can emit.
func KnownFeature(name string) bool {
	if _, ok := DefaultWeights()[name]; ok {
		return true
	}
	_, ok := PieceValueWeights()[name]
	return ok
}

// Eval scores a position in centipawns from White's perspective as the dot
// product of its features with the given scoring weights.
func Eval(p *variant.Position, weights map[string]float64) int {
	var score float64
	for name, units := range Features(p) {
		score += weights[name] * units
	}
	return int(math.Round(score))
}

// Features computes the White-minus-Black unit counts for every evaluation
// term present in the position. Zero-valued terms are omitted, so rows stay
// sparse and the tuner only sees names that actually occur.
func Features(p *variant.Position) map[string]float64 {
	f := make(map[string]float64)
	add := func(name string, units float64) {
		if units != 0 {
			f[name] += units
			if f[name] == 0 {
				delete(f, name)
			}
		}
	}
	sign := func(c variant.Color) float64 {
		if c == variant.White {
			return 1
		}
		return -1
	}

	var whitePawns, blackPawns []variant.Coord
	var whiteBishops, blackBishops int
	whiteRoyal, blackRoyal := findRoyals(p)

	for sq, pc := range p.Pieces {
		add(PieceValueFeature(pc.Type), sign(pc.Owner))
		switch pc.Type {
		case variant.Pawn:
			if pc.Owner == variant.White {
				whitePawns = append(whitePawns, sq)
			} else {
				blackPawns = append(blackPawns, sq)
			}
		case variant.Bishop:
			if pc.Owner == variant.White {
				whiteBishops++
			} else {
				blackBishops++
			}
		}
	}

	for sq, pc := range p.Pieces {
		s := sign(pc.Owner)
		enemyRoyal := blackRoyal
		if pc.Owner == variant.Black {
			enemyRoyal = whiteRoyal
		}
		switch pc.Type {
		case variant.Rook:
			if behindEnemyLine(sq, pc.Owner) {
				add(FeatRookBehindEnemy, s)
			}
			own, enemy := pawnsOnFile(sq.X, pc.Owner, whitePawns, blackPawns)
			if own == 0 {
				if enemy == 0 {
					add(FeatRookOpenFile, s)
				} else {
					add(FeatRookSemiOpen, s)
				}
			}
			if enemyRoyal != nil {
				d := minInt64(manhattan(sq, *enemyRoyal), 20)
				add(FeatKingTropism, s*float64(20-d)*0.5)
			}
		case variant.Queen:
			if behindEnemyLine(sq, pc.Owner) {
				add(FeatQueenBehindEnemy, s)
			}
			if enemyRoyal != nil {
				d := minInt64(manhattan(sq, *enemyRoyal), 15)
				add(FeatKingTropism, s*float64(15-d))
			}
		case variant.Knight:
			d := absInt64(sq.X-4) + absInt64(sq.Y-4)
			if d <= 2 {
				add(FeatKnightCentrality, s*2)
			} else if d <= 4 {
				add(FeatKnightCentrality, s)
			}
			if enemyRoyal != nil && manhattan(sq, *enemyRoyal) <= 3 {
				add(FeatKingTropism, s*3)
			}
		case variant.Bishop:
			if absInt64(sq.X-sq.Y) <= 1 || absInt64(sq.X+sq.Y-9) <= 1 {
				add(FeatBishopDiag, s)
			}
		case variant.Pawn:
			add(FeatPawnAdvance, s*float64(pawnAdvance(sq, pc.Owner)))
			if sq.X >= 3 && sq.X <= 5 {
				add(FeatPawnCentral, s)
			}
		}
		if pc.Type != variant.Pawn && !pc.Type.IsRoyal() {
			if (pc.Owner == variant.White && sq.Y != 1) || (pc.Owner == variant.Black && sq.Y != 8) {
				add(FeatDevelopment, s)
			}
		}
	}

	if whiteBishops >= 2 {
		add(FeatBishopPair, 1)
	}
	if blackBishops >= 2 {
		add(FeatBishopPair, -1)
	}

	addShelter(add, p, whiteRoyal, variant.White)
	addShelter(add, p, blackRoyal, variant.Black)

	addPawnStructure(add, variant.White, whitePawns, blackPawns)
	addPawnStructure(add, variant.Black, blackPawns, whitePawns)

	return f
}

func findRoyals(p *variant.Position) (white, black *variant.Coord) {
	for sq, pc := range p.Pieces {
		if !pc.Type.IsRoyal() {
			continue
		}
		sq := sq
		if pc.Owner == variant.White {
			if white == nil || sq.Y < white.Y || (sq.Y == white.Y && sq.X < white.X) {
				white = &sq
			}
		} else {
			if black == nil || sq.Y < black.Y || (sq.Y == black.Y && sq.X < black.X) {
				black = &sq
			}
		}
	}
	return white, black
}

func behindEnemyLine(sq variant.Coord, owner variant.Color) bool {
	if owner == variant.White {
		return sq.Y > whiteEnemyLine
	}
	return sq.Y < blackEnemyLine
}

func pawnAdvance(sq variant.Coord, owner variant.Color) int64 {
	if owner == variant.White {
		return maxInt64(0, sq.Y-2)
	}
	return maxInt64(0, 7-sq.Y)
}

func pawnsOnFile(x int64, owner variant.Color, whitePawns, blackPawns []variant.Coord) (own, enemy int) {
	ownPawns, enemyPawns := whitePawns, blackPawns
	if owner == variant.Black {
		ownPawns, enemyPawns = blackPawns, whitePawns
	}
	for _, sq := range ownPawns {
		if sq.X == x {
			own++
		}
	}
	for _, sq := range enemyPawns {
		if sq.X == x {
			enemy++
		}
	}
	return own, enemy
}

// addShelter counts friendly pawns on the eight squares around the royal:
// a full unit in front, half a unit beside or behind. A royal with no
// shield at all is exposed, and a royal parked on the castled squares
// earns shelter units.
func addShelter(add func(string, float64), p *variant.Position, royal *variant.Coord, owner variant.Color) {
	if royal == nil {
		return
	}
	s := 1.0
	forward := int64(1)
	if owner == variant.Black {
		s = -1
		forward = -1
	}
	var shield float64
	for dx := int64(-1); dx <= 1; dx++ {
		for dy := int64(-1); dy <= 1; dy++ {
			if dx == 0 && dy == 0 {
				continue
			}
			pc, ok := p.Pieces[variant.Coord{X: royal.X + dx, Y: royal.Y + dy}]
			if !ok || pc.Type != variant.Pawn || pc.Owner != owner {
				continue
			}
			if dy == forward {
				shield += 1
			} else {
				shield += 0.5
			}
		}
	}
	if shield > 0 {
		add(FeatPawnShield, s*shield)
	} else {
		add(FeatKingExposed, s)
	}

	if owner == variant.White {
		if royal.X == 6 && royal.Y == 2 {
			add(FeatCastleShelter, 2)
		} else if royal.X >= 6 && royal.X <= 7 && royal.Y <= 2 {
			add(FeatCastleShelter, 1)
		}
	} else {
		if royal.X == 6 && royal.Y == 7 {
			add(FeatCastleShelter, -2)
		} else if royal.X >= 6 && royal.X <= 7 && royal.Y >= 7 {
			add(FeatCastleShelter, -1)
		}
	}
}

func addPawnStructure(add func(string, float64), owner variant.Color, own, enemy []variant.Coord) {
	s := 1.0
	if owner == variant.Black {
		s = -1
	}

	files := make(map[int64]int)
	for _, sq := range own {
		files[sq.X]++
	}
	for _, n := range files {
		if n > 1 {
			add(FeatDoubledPawn, s*float64(n-1))
		}
	}

	for _, sq := range own {
		isolated := true
		for _, other := range own {
			if absInt64(other.X-sq.X) == 1 {
				isolated = false
				break
			}
		}
		if isolated {
			add(FeatIsolatedPawn, s)
		}

		if isPassed(sq, owner, enemy) {
			add(FeatPassedPawn, s)
			add(FeatPassedRank, s*float64(pawnAdvance(sq, owner)))
		}
	}
}

func isPassed(sq variant.Coord, owner variant.Color, enemy []variant.Coord) bool {
	for _, e := range enemy {
		if absInt64(e.X-sq.X) > 1 {
			continue
		}
		if owner == variant.White && e.Y > sq.Y {
			return false
		}
		if owner == variant.Black && e.Y < sq.Y {
			return false
		}
	}
	return true
}

func manhattan(a, b variant.Coord) int64 {
	return absInt64(a.X-b.X) + absInt64(a.Y-b.Y)
}

func absInt64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}

func minInt64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}

func maxInt64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}
