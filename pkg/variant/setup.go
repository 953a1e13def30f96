package variant

// NewStandardPosition places the classical eight-file army inside the
// unbounded board, with castling rights on both kings and all four rooks
// and the double-step right on every pawn.
func NewStandardPosition() *Position {
	p := NewPosition()

	back := []PieceType{Rook, Knight, Bishop, Queen, King, Bishop, Knight, Rook}
	for i, pt := range back {
		x := int64(i + 1)
		p.Pieces[Coord{X: x, Y: 1}] = Piece{Type: pt, Owner: White}
		p.Pieces[Coord{X: x, Y: 8}] = Piece{Type: pt, Owner: Black}
	}
	for x := int64(1); x <= 8; x++ {
		p.Pieces[Coord{X: x, Y: 2}] = Piece{Type: Pawn, Owner: White}
		p.Pieces[Coord{X: x, Y: 7}] = Piece{Type: Pawn, Owner: Black}
	}

	for _, sq := range []Coord{{1, 1}, {5, 1}, {8, 1}, {1, 8}, {5, 8}, {8, 8}} {
		p.Rights[sq] = struct{}{}
	}
	for x := int64(1); x <= 8; x++ {
		p.Rights[Coord{X: x, Y: 2}] = struct{}{}
		p.Rights[Coord{X: x, Y: 7}] = struct{}{}
	}
	return p
}

// PromotionRank is where a pawn of the given color promotes in the
// standard setup.
func PromotionRank(c Color) int64 {
	if c == White {
		return 8
	}
	return 1
}
