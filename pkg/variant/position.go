package variant

import (
	"errors"
	"fmt"
	"hash/fnv"
	"sort"
	"strconv"
	"strings"
)

// ErrIllegalMove reports a move whose source square is empty or whose
// mover does not own the turn. Application never mutates on this error.
var ErrIllegalMove = errors.New("illegal move")

// Coord is a 1-based square on the unbounded board.
type Coord struct {
	X, Y int64
}

func (c Coord) String() string {
	return strconv.FormatInt(c.X, 10) + "," + strconv.FormatInt(c.Y, 10)
}

// ParseCoord reads the "x,y" form used in logs and opening files.
func ParseCoord(s string) (Coord, error) {
	i := strings.IndexByte(s, ',')
	if i < 0 {
		return Coord{}, fmt.Errorf("coord %q: missing comma", s)
	}
	x, err := strconv.ParseInt(strings.TrimSpace(s[:i]), 10, 64)
	if err != nil {
		return Coord{}, fmt.Errorf("coord %q: %w", s, err)
	}
	y, err := strconv.ParseInt(strings.TrimSpace(s[i+1:]), 10, 64)
	if err != nil {
		return Coord{}, fmt.Errorf("coord %q: %w", s, err)
	}
	return Coord{X: x, Y: y}, nil
}

// Move relocates the piece at From to To. Promotion is NoPiece unless the
// move promotes a pawn.
type Move struct {
	From      Coord
	To        Coord
	Promotion PieceType
}

func (m Move) String() string {
	s := m.From.String() + ">" + m.To.String()
	if m.Promotion != NoPiece {
		s += "=" + m.Promotion.String()
	}
	return s
}

// ParseMove reads the "x,y>x,y" form, with an optional "=piece" suffix.
func ParseMove(s string) (Move, error) {
	var m Move
	if i := strings.IndexByte(s, '='); i >= 0 {
		pt, ok := ParsePieceType(strings.TrimSpace(s[i+1:]))
		if !ok {
			return Move{}, fmt.Errorf("move %q: unknown promotion", s)
		}
		m.Promotion = pt
		s = s[:i]
	}
	i := strings.IndexByte(s, '>')
	if i < 0 {
		return Move{}, fmt.Errorf("move %q: missing '>'", s)
	}
	from, err := ParseCoord(strings.TrimSpace(s[:i]))
	if err != nil {
		return Move{}, err
	}
	to, err := ParseCoord(strings.TrimSpace(s[i+1:]))
	if err != nil {
		return Move{}, err
	}
	m.From = from
	m.To = to
	return m, nil
}

// EnPassant marks the square a double-stepped pawn skipped and the square
// the pawn now occupies.
type EnPassant struct {
	Square     Coord
	PawnSquare Coord
}

// Position is the full replayable game state. Rights holds the coordinates
// still eligible for a special move: castling for kings and rooks, the
// double step for pawns.
type Position struct {
	Pieces         map[Coord]Piece
	SideToMove     Color
	Rights         map[Coord]struct{}
	EnPassant      *EnPassant
	HalfmoveClock  int
	FullmoveNumber int
}

func NewPosition() *Position {
	return &Position{
		Pieces:         make(map[Coord]Piece),
		Rights:         make(map[Coord]struct{}),
		FullmoveNumber: 1,
	}
}

func (p *Position) Clone() *Position {
	c := &Position{
		Pieces:         make(map[Coord]Piece, len(p.Pieces)),
		SideToMove:     p.SideToMove,
		Rights:         make(map[Coord]struct{}, len(p.Rights)),
		HalfmoveClock:  p.HalfmoveClock,
		FullmoveNumber: p.FullmoveNumber,
	}
	for sq, pc := range p.Pieces {
		c.Pieces[sq] = pc
	}
	for sq := range p.Rights {
		c.Rights[sq] = struct{}{}
	}
	if p.EnPassant != nil {
		ep := *p.EnPassant
		c.EnPassant = &ep
	}
	return c
}

func (p *Position) PieceCount() int {
	return len(p.Pieces)
}

// Apply plays m on p in place. It validates the source square and mover
// color before touching any state, so a returned error leaves p unchanged.
func (p *Position) Apply(m Move) error {
	pc, ok := p.Pieces[m.From]
	if !ok {
		return fmt.Errorf("%w: no piece at %v", ErrIllegalMove, m.From)
	}
	if pc.Owner != p.SideToMove {
		return fmt.Errorf("%w: %v moves out of turn at %v", ErrIllegalMove, pc.Owner, m.From)
	}

	_, captured := p.Pieces[m.To]
	delete(p.Pieces, m.From)
	if captured {
		delete(p.Pieces, m.To)
	}

	// En passant: a pawn landing on the skipped square removes the
	// double-stepped pawn.
	epCapture := false
	if pc.Type == Pawn && p.EnPassant != nil && m.To == p.EnPassant.Square {
		if _, ok := p.Pieces[p.EnPassant.PawnSquare]; ok {
			delete(p.Pieces, p.EnPassant.PawnSquare)
			epCapture = true
		}
	}

	delete(p.Rights, m.From)
	if captured {
		delete(p.Rights, m.To)
	}

	// A royal displaced by more than one file on its rank is castling:
	// the first piece found past the destination relocates to the square
	// the king passed over, if it is an allied rook.
	if pc.Type.IsRoyal() {
		dx := m.To.X - m.From.X
		if dx > 1 || dx < -1 {
			dir := int64(1)
			if dx < 0 {
				dir = -1
			}
			p.castleRook(m, pc.Owner, dir)
		}
	}

	placed := pc
	if m.Promotion != NoPiece {
		placed.Type = m.Promotion
	}
	p.Pieces[m.To] = placed

	p.EnPassant = nil
	if pc.Type == Pawn {
		dy := m.To.Y - m.From.Y
		if dy == 2 || dy == -2 {
			p.EnPassant = &EnPassant{
				Square:     Coord{X: m.From.X, Y: m.From.Y + dy/2},
				PawnSquare: m.To,
			}
		}
	}

	if pc.Type == Pawn || captured || epCapture {
		p.HalfmoveClock = 0
	} else {
		p.HalfmoveClock++
	}
	if p.SideToMove == Black {
		p.FullmoveNumber++
	}
	p.SideToMove = p.SideToMove.Opponent()
	return nil
}

func (p *Position) castleRook(m Move, owner Color, dir int64) {
	var nearest Coord
	found := false
	for sq := range p.Pieces {
		if sq.Y != m.From.Y {
			continue
		}
		if (dir > 0 && sq.X <= m.To.X) || (dir < 0 && sq.X >= m.To.X) {
			continue
		}
		if !found || (dir > 0 && sq.X < nearest.X) || (dir < 0 && sq.X > nearest.X) {
			nearest = sq
			found = true
		}
	}
	if !found {
		return
	}
	r := p.Pieces[nearest]
	if r.Type != Rook || r.Owner != owner {
		return
	}
	delete(p.Pieces, nearest)
	delete(p.Rights, nearest)
	p.Pieces[Coord{X: m.To.X - dir, Y: m.From.Y}] = r
}

// MaterialVerdict approximates terminality from material alone: with fewer
// than two royals the game is decided for the side still holding one, and
// with two or fewer total pieces nothing can force progress.
type MaterialVerdict struct {
	Over    bool
	Decided bool
	Winner  Color
}

func (p *Position) Material() MaterialVerdict {
	royals := 0
	var winner Color
	for _, pc := range p.Pieces {
		if pc.Type.IsRoyal() {
			royals++
			winner = pc.Owner
		}
	}
	if royals < 2 {
		return MaterialVerdict{Over: true, Decided: royals == 1, Winner: winner}
	}
	if len(p.Pieces) <= 2 {
		return MaterialVerdict{Over: true}
	}
	return MaterialVerdict{}
}

// PositionKey identifies a position for repetition counting. Promotions and
// anything beyond owner, type and square are ignored, matching repetition
// semantics that disregard how the arrangement was reached.
type PositionKey uint64

// Key digests side to move plus the sorted owner+type+square list.
func (p *Position) Key() PositionKey {
	entries := make([]string, 0, len(p.Pieces))
	for sq, pc := range p.Pieces {
		entries = append(entries, pc.Owner.String()+pc.Type.String()+sq.String())
	}
	sort.Strings(entries)
	h := fnv.New64a()
	h.Write([]byte(p.SideToMove.String()))
	for _, e := range entries {
		h.Write([]byte{'|'})
		h.Write([]byte(e))
	}
	return PositionKey(h.Sum64())
}
