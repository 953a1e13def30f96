package engine

import (
	"sort"

	"gauntlet/pkg/variant"
)

// Sliding on an unbounded board has to stop somewhere: rays are cut off
// once they leave the occupied bounding box by this margin, far enough to
// keep every capture and any square that can matter within one move.
const slideMargin = 2

// Huygen rays scan prime distances up to this bound when no blocker caps
// them first.
const huygenScanLimit = 50

var compassDirs = [8][2]int64{
	{-1, 1}, {0, 1}, {1, 1},
	{-1, 0}, {1, 0},
	{-1, -1}, {0, -1}, {1, -1},
}

var orthoDirs = [4][2]int64{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}
var diagDirs = [4][2]int64{{1, 1}, {1, -1}, {-1, 1}, {-1, -1}}
var knightDirs = [8][2]int64{
	{-2, -1}, {-1, -2}, {1, -2}, {2, -1},
	{2, 1}, {1, 2}, {-1, 2}, {-2, 1},
}

type bounds struct {
	minX, maxX, minY, maxY int64
}

func boardBounds(p *variant.Position) bounds {
	b := bounds{}
	first := true
	for sq := range p.Pieces {
		if first {
			b = bounds{sq.X, sq.X, sq.Y, sq.Y}
			first = false
			continue
		}
		if sq.X < b.minX {
			b.minX = sq.X
		}
		if sq.X > b.maxX {
			b.maxX = sq.X
		}
		if sq.Y < b.minY {
			b.minY = sq.Y
		}
		if sq.Y > b.maxY {
			b.maxY = sq.Y
		}
	}
	return b
}

func (b bounds) contains(sq variant.Coord, margin int64) bool {
	return sq.X >= b.minX-margin && sq.X <= b.maxX+margin &&
		sq.Y >= b.minY-margin && sq.Y <= b.maxY+margin
}

type generator struct {
	pos   *variant.Position
	bb    bounds
	moves []variant.Move
}

// Moves generates every pseudo-legal move for the side to move, in a
// deterministic order. Royal safety is not checked here; the search treats
// losing a royal as losing the game, which filters unsound moves the same
// way the replay harness does.
func Moves(p *variant.Position) []variant.Move {
	g := &generator{pos: p, bb: boardBounds(p)}
	for sq, pc := range p.Pieces {
		if pc.Owner != p.SideToMove {
			continue
		}
		g.pieceMoves(sq, pc)
	}
	sortMoves(p, g.moves)
	return g.moves
}

func (g *generator) pieceMoves(from variant.Coord, pc variant.Piece) {
	switch pc.Type {
	case variant.Pawn:
		g.pawnMoves(from, pc)
	case variant.Knight:
		g.leaper(from, pc, 1, 2)
	case variant.Camel:
		g.leaper(from, pc, 1, 3)
	case variant.Giraffe:
		g.leaper(from, pc, 1, 4)
	case variant.Zebra:
		g.leaper(from, pc, 2, 3)
	case variant.Hawk:
		g.compass(from, pc, 2)
		g.compass(from, pc, 3)
	case variant.King:
		g.compass(from, pc, 1)
		g.castling(from, pc)
	case variant.RoyalCentaur:
		g.compass(from, pc, 1)
		g.leaper(from, pc, 1, 2)
		g.castling(from, pc)
	case variant.Guard:
		g.compass(from, pc, 1)
	case variant.Centaur:
		g.compass(from, pc, 1)
		g.leaper(from, pc, 1, 2)
	case variant.Rook:
		g.slider(from, pc, orthoDirs[:])
	case variant.Bishop:
		g.slider(from, pc, diagDirs[:])
	case variant.Queen, variant.RoyalQueen:
		g.slider(from, pc, orthoDirs[:])
		g.slider(from, pc, diagDirs[:])
	case variant.Chancellor:
		g.leaper(from, pc, 1, 2)
		g.slider(from, pc, orthoDirs[:])
	case variant.Archbishop:
		g.leaper(from, pc, 1, 2)
		g.slider(from, pc, diagDirs[:])
	case variant.Amazon:
		g.leaper(from, pc, 1, 2)
		g.slider(from, pc, orthoDirs[:])
		g.slider(from, pc, diagDirs[:])
	case variant.Knightrider:
		g.slider(from, pc, knightDirs[:])
	case variant.Huygen:
		g.huygen(from, pc)
	case variant.Rose:
		g.rose(from, pc)
	}
}

func (g *generator) add(from, to variant.Coord) {
	g.moves = append(g.moves, variant.Move{From: from, To: to})
}

// tryStep emits a quiet move or capture to the target square. It reports
// whether a ride could continue past it.
func (g *generator) tryStep(from, to variant.Coord, owner variant.Color) bool {
	if target, ok := g.pos.Pieces[to]; ok {
		if target.Owner != owner {
			g.add(from, to)
		}
		return false
	}
	g.add(from, to)
	return true
}

func (g *generator) compass(from variant.Coord, pc variant.Piece, dist int64) {
	for _, d := range compassDirs {
		to := variant.Coord{X: from.X + d[0]*dist, Y: from.Y + d[1]*dist}
		g.tryStep(from, to, pc.Owner)
	}
}

func (g *generator) leaper(from variant.Coord, pc variant.Piece, m, n int64) {
	offsets := [8][2]int64{
		{-n, m}, {-m, n}, {m, n}, {n, m},
		{-n, -m}, {-m, -n}, {m, -n}, {n, -m},
	}
	for _, d := range offsets {
		to := variant.Coord{X: from.X + d[0], Y: from.Y + d[1]}
		g.tryStep(from, to, pc.Owner)
	}
}

func (g *generator) slider(from variant.Coord, pc variant.Piece, dirs [][2]int64) {
	for _, d := range dirs {
		to := from
		for {
			to = variant.Coord{X: to.X + d[0], Y: to.Y + d[1]}
			if !g.bb.contains(to, slideMargin) {
				break
			}
			if !g.tryStep(from, to, pc.Owner) {
				break
			}
		}
	}
}

func (g *generator) pawnMoves(from variant.Coord, pc variant.Piece) {
	dir := int64(1)
	if pc.Owner == variant.Black {
		dir = -1
	}
	promoRank := variant.PromotionRank(pc.Owner)

	one := variant.Coord{X: from.X, Y: from.Y + dir}
	if _, blocked := g.pos.Pieces[one]; !blocked {
		g.addPawn(from, one, promoRank)
		if _, hasRight := g.pos.Rights[from]; hasRight {
			two := variant.Coord{X: from.X, Y: from.Y + 2*dir}
			if _, blocked := g.pos.Pieces[two]; !blocked {
				g.add(from, two)
			}
		}
	}

	for _, dx := range [2]int64{-1, 1} {
		to := variant.Coord{X: from.X + dx, Y: from.Y + dir}
		if target, ok := g.pos.Pieces[to]; ok {
			if target.Owner != pc.Owner {
				g.addPawn(from, to, promoRank)
			}
		} else if ep := g.pos.EnPassant; ep != nil && to == ep.Square {
			g.add(from, to)
		}
	}
}

var promotionChoices = [4]variant.PieceType{variant.Queen, variant.Rook, variant.Bishop, variant.Knight}

func (g *generator) addPawn(from, to variant.Coord, promoRank int64) {
	if to.Y == promoRank {
		for _, pt := range promotionChoices {
			g.moves = append(g.moves, variant.Move{From: from, To: to, Promotion: pt})
		}
		return
	}
	g.add(from, to)
}

// castling pairs a righted royal with a righted non-royal, non-pawn piece
// on its rank. The path between them must be clear; the king always lands
// two files toward the partner.
func (g *generator) castling(from variant.Coord, pc variant.Piece) {
	if _, ok := g.pos.Rights[from]; !ok {
		return
	}
	for sq := range g.pos.Rights {
		if sq == from || sq.Y != from.Y {
			continue
		}
		partner, ok := g.pos.Pieces[sq]
		if !ok || partner.Owner != pc.Owner || partner.Type == variant.Pawn || partner.Type.IsRoyal() {
			continue
		}
		dir := int64(1)
		if sq.X < from.X {
			dir = -1
		}
		clear := true
		for x := from.X + dir; x != sq.X; x += dir {
			if _, occupied := g.pos.Pieces[variant.Coord{X: x, Y: from.Y}]; occupied {
				clear = false
				break
			}
		}
		to := variant.Coord{X: from.X + 2*dir, Y: from.Y}
		if _, occupied := g.pos.Pieces[to]; clear && !occupied {
			g.add(from, to)
		}
	}
}

// huygen rides orthogonally but only to prime distances; pieces at
// non-prime distances do not block it. The nearest piece at a prime
// distance caps the ride and may be captured.
func (g *generator) huygen(from variant.Coord, pc variant.Piece) {
	for _, d := range orthoDirs {
		blocker := int64(0)
		var blockerOwner variant.Color
		blockerFound := false
		for sq := range g.pos.Pieces {
			var dist int64
			switch {
			case d[0] != 0 && sq.Y == from.Y:
				dist = (sq.X - from.X) * d[0]
			case d[1] != 0 && sq.X == from.X:
				dist = (sq.Y - from.Y) * d[1]
			default:
				continue
			}
			if dist <= 0 || !isPrime(dist) {
				continue
			}
			if !blockerFound || dist < blocker {
				blocker = dist
				blockerOwner = g.pos.Pieces[sq].Owner
				blockerFound = true
			}
		}
		limit := int64(huygenScanLimit)
		if blockerFound {
			limit = blocker
		}
		for s := int64(2); s <= limit; s++ {
			if !isPrime(s) {
				continue
			}
			to := variant.Coord{X: from.X + d[0]*s, Y: from.Y + d[1]*s}
			if blockerFound && s == blocker {
				if blockerOwner != pc.Owner {
					g.add(from, to)
				}
				break
			}
			g.add(from, to)
		}
	}
}

// rose follows circular knight paths: from each starting knight vector it
// keeps turning one step clockwise or counterclockwise, up to seven hops,
// stopping at the first occupied square.
func (g *generator) rose(from variant.Coord, pc variant.Piece) {
	seen := make(map[variant.Coord]bool)
	for start := range knightDirs {
		for _, turn := range [2]int{1, -1} {
			cur := from
			idx := start
			for hop := 0; hop < 7; hop++ {
				d := knightDirs[idx]
				cur = variant.Coord{X: cur.X + d[0], Y: cur.Y + d[1]}
				if target, ok := g.pos.Pieces[cur]; ok {
					if target.Owner != pc.Owner && !seen[cur] {
						seen[cur] = true
						g.add(from, cur)
					}
					break
				}
				if !seen[cur] {
					seen[cur] = true
					g.add(from, cur)
				}
				idx = (idx + turn + len(knightDirs)) % len(knightDirs)
			}
		}
	}
}

func isPrime(n int64) bool {
	if n < 2 {
		return false
	}
	for d := int64(2); d*d <= n; d++ {
		if n%d == 0 {
			return false
		}
	}
	return true
}

// sortMoves orders captures by falling victim value, then everything by
// coordinates, so move lists are independent of map iteration order.
func sortMoves(p *variant.Position, moves []variant.Move) {
	victim := func(m variant.Move) int {
		if target, ok := p.Pieces[m.To]; ok {
			return variant.PieceValue(target.Type)
		}
		return 0
	}
	sort.Slice(moves, func(i, j int) bool {
		a, b := moves[i], moves[j]
		va, vb := victim(a), victim(b)
		if va != vb {
			return va > vb
		}
		if a.From != b.From {
			if a.From.Y != b.From.Y {
				return a.From.Y < b.From.Y
			}
			return a.From.X < b.From.X
		}
		if a.To != b.To {
			if a.To.Y != b.To.Y {
				return a.To.Y < b.To.Y
			}
			return a.To.X < b.To.X
		}
		return variant.PieceValue(a.Promotion) > variant.PieceValue(b.Promotion)
	})
}
